package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

const subscriptionColumns = `id, subscription_number, tenant_id, provider_id, tenant_user_uid,
			      provider_user_uid, plan, breakfast, lunch, dinner, price_breakfast, price_lunch,
			      price_dinner, total_meals_per_day, daily_price, total_price, start_date, end_date,
			      status, payment_mode, special_instructions, delivery_time, pause_history, created_at`

// CreateSubscription вставляет подписку и занимает слот поставщика в одной
// транзакции. Слот занимается условным обновлением: если свободных слотов нет,
// ни одна строка не изменяется, транзакция откатывается и возвращается
// ErrCapacityExceeded. Проверка и инкремент — одна атомарная операция.
// Коллизия по subscription_number (одновременные создания получили один
// дневной счётчик) возвращается как ErrDuplicateSubscriptionNumber.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	reserve := `UPDATE providers
			  SET current_tenants = current_tenants + 1,
			      total_subscriptions = total_subscriptions + 1
			  WHERE id = $1 AND current_tenants < max_tenants`
	result, err := tx.ExecContext(ctx, reserve, sub.ProviderID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrCapacityExceeded)
	}

	insert := `INSERT INTO subscriptions (subscription_number, tenant_id, provider_id,
			      tenant_user_uid, provider_user_uid, plan, breakfast, lunch, dinner,
			      price_breakfast, price_lunch, price_dinner, total_meals_per_day,
			      daily_price, total_price, start_date, end_date, status, payment_mode,
			      special_instructions, delivery_time)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			      $17, $18, $19, $20, $21)
			  RETURNING id`
	var newID int
	err = tx.QueryRowContext(ctx, insert,
		sub.Number, sub.TenantID, sub.ProviderID, sub.TenantUserUID, sub.ProviderUserUID,
		sub.Plan, sub.Meals.Breakfast, sub.Meals.Lunch, sub.Meals.Dinner,
		sub.PricePerMeal.Breakfast, sub.PricePerMeal.Lunch, sub.PricePerMeal.Dinner,
		sub.TotalMealsPerDay, sub.DailyPrice, sub.TotalPrice, sub.StartDate, sub.EndDate,
		sub.Status, sub.PaymentMode, sub.SpecialInstructions, sub.DeliveryTime).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return 0, fmt.Errorf("%s: %w", op, ErrDuplicateSubscriptionNumber)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// CountSubscriptionsCreatedOn возвращает число подписок, созданных в указанный
// день. Используется для порядкового номера в SUB-YYYYMMDD-NNNN.
func (s *Storage) CountSubscriptionsCreatedOn(ctx context.Context, day time.Time) (int, error) {
	const op = "storage.CountSubscriptionsCreatedOn"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM subscriptions WHERE created_at::date = $1::date`
	if err := s.DB.QueryRowContext(ctx, query, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// GetSubscriptionByID возвращает подписку по её ID.
func (s *Storage) GetSubscriptionByID(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	sub, err := scanSubscription(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ListSubscriptionsByTenant возвращает подписки арендатора, новые первыми.
// Непустой statusFilter ограничивает выборку одним статусом.
func (s *Storage) ListSubscriptionsByTenant(ctx context.Context, tenantUserUID, statusFilter string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptionsByTenant"
	return s.listSubscriptions(ctx, op, `tenant_user_uid`, tenantUserUID, statusFilter)
}

// ListSubscriptionsByProvider возвращает подписки поставщика, новые первыми.
func (s *Storage) ListSubscriptionsByProvider(ctx context.Context, providerUserUID, statusFilter string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptionsByProvider"
	return s.listSubscriptions(ctx, op, `provider_user_uid`, providerUserUID, statusFilter)
}

func (s *Storage) listSubscriptions(ctx context.Context, op, column, userUID, statusFilter string) ([]*models.Subscription, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE ` + column + ` = $1
			    AND ($2::text = '' OR status = $2)
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID, statusFilter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanSubscription(scan func(dest ...any) error) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var pauseHistory []byte
	if err := scan(&sub.ID, &sub.Number, &sub.TenantID, &sub.ProviderID, &sub.TenantUserUID,
		&sub.ProviderUserUID, &sub.Plan, &sub.Meals.Breakfast, &sub.Meals.Lunch, &sub.Meals.Dinner,
		&sub.PricePerMeal.Breakfast, &sub.PricePerMeal.Lunch, &sub.PricePerMeal.Dinner,
		&sub.TotalMealsPerDay, &sub.DailyPrice, &sub.TotalPrice, &sub.StartDate, &sub.EndDate,
		&sub.Status, &sub.PaymentMode, &sub.SpecialInstructions, &sub.DeliveryTime,
		&pauseHistory, &sub.CreatedAt); err != nil {
		return nil, err
	}
	if len(pauseHistory) > 0 {
		if err := json.Unmarshal(pauseHistory, &sub.PauseHistory); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// UpdateSubscriptionStatus изменяет статус подписки и возвращает число
// затронутых строк.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, id int, status string) (int64, error) {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET status = $1 WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// CancelSubscription переводит подписку в cancelled и освобождает слот
// поставщика в одной транзакции. Счётчик слотов не опускается ниже нуля.
func (s *Storage) CancelSubscription(ctx context.Context, id, providerID int) error {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE subscriptions SET status = 'cancelled' WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE providers SET current_tenants = GREATEST(current_tenants - 1, 0) WHERE id = $1`,
		providerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AppendPause переводит подписку в paused и дописывает интервал в журнал приостановок.
func (s *Storage) AppendPause(ctx context.Context, id int, entry models.PauseEntry) error {
	const op = "storage.AppendPause"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE subscriptions
			  SET status = 'paused', pause_history = pause_history || $1::jsonb
			  WHERE id = $2`
	if _, err := s.DB.ExecContext(ctx, query, payload, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
