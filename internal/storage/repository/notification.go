package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

// CreateNotification сохраняет уведомление и возвращает его ID.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) (int, error) {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if n.Payload == nil {
		payload = []byte("{}")
	}

	query := `INSERT INTO notifications (user_uid, type, title, message, payload)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query,
		n.UserUID, n.Type, n.Title, n.Message, payload).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListNotifications возвращает уведомления пользователя с пагинацией,
// новые первыми. unreadOnly ограничивает выборку непрочитанными.
func (s *Storage) ListNotifications(ctx context.Context, userUID string, limit, offset int, unreadOnly bool) ([]*models.Notification, error) {
	const op = "storage.ListNotifications"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, type, title, message, payload, is_read, created_at
			  FROM notifications
			  WHERE user_uid = $1
			    AND ($2::boolean = FALSE OR is_read = FALSE)
			  ORDER BY created_at DESC
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, userUID, unreadOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var payload []byte
		if err := rows.Scan(&n.ID, &n.UserUID, &n.Type, &n.Title, &n.Message,
			&payload, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &n.Payload); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountUnreadNotifications возвращает число непрочитанных уведомлений пользователя.
func (s *Storage) CountUnreadNotifications(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountUnreadNotifications"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_uid = $1 AND is_read = FALSE`
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// MarkNotificationRead отмечает уведомление пользователя прочитанным
// и возвращает число затронутых строк.
func (s *Storage) MarkNotificationRead(ctx context.Context, id int, userUID string) (int64, error) {
	const op = "storage.MarkNotificationRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}
