package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

const requestColumns = `id, tenant_id, provider_id, tenant_user_uid, provider_user_uid, requested_by,
			      message, sample_food_request, sample_food_approved, status, contact_shared,
			      tenant_kyc_verified, provider_kyc_verified, provider_message, responded_at,
			      expires_at, created_at`

const uniqueViolationCode = "23505"

// CreateRequest вставляет новую заявку на знакомство и возвращает её ID.
// Дубликат pending-заявки для пары (tenant, provider) отклоняется частичным
// уникальным индексом и возвращается как ErrDuplicatePendingRequest —
// проверка и вставка выполняются одной операцией, без гонки.
func (s *Storage) CreateRequest(ctx context.Context, req models.ConnectionRequest) (int, error) {
	const op = "storage.CreateRequest"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO connection_requests (tenant_id, provider_id, tenant_user_uid,
			      provider_user_uid, requested_by, message, sample_food_request,
			      tenant_kyc_verified, provider_kyc_verified, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		req.TenantID, req.ProviderID, req.TenantUserUID, req.ProviderUserUID,
		req.RequestedBy, req.Message, req.SampleFoodRequest,
		req.TenantKycVerified, req.ProviderKycVerified, req.ExpiresAt).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return 0, fmt.Errorf("%s: %w", op, ErrDuplicatePendingRequest)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetRequestByID возвращает заявку по её ID.
func (s *Storage) GetRequestByID(ctx context.Context, id int) (*models.ConnectionRequest, error) {
	const op = "storage.GetRequestByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + requestColumns + ` FROM connection_requests WHERE id = $1`
	return scanRequest(s.DB.QueryRowContext(ctx, query, id), op)
}

// FindRequest возвращает последнюю заявку для пары (tenant, provider)
// с заданным статусом. Если статус пустой, статус не фильтруется.
func (s *Storage) FindRequest(ctx context.Context, tenantID, providerID int, status string) (*models.ConnectionRequest, error) {
	const op = "storage.FindRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + requestColumns + `
			  FROM connection_requests
			  WHERE tenant_id = $1
			    AND provider_id = $2
			    AND ($3::text = '' OR status = $3)
			  ORDER BY created_at DESC
			  LIMIT 1`
	return scanRequest(s.DB.QueryRowContext(ctx, query, tenantID, providerID, status), op)
}

func scanRequest(row *sql.Row, op string) (*models.ConnectionRequest, error) {
	r := &models.ConnectionRequest{}
	var respondedAt sql.NullTime
	if err := row.Scan(&r.ID, &r.TenantID, &r.ProviderID, &r.TenantUserUID, &r.ProviderUserUID,
		&r.RequestedBy, &r.Message, &r.SampleFoodRequest, &r.SampleFoodApproved, &r.Status,
		&r.ContactShared, &r.TenantKycVerified, &r.ProviderKycVerified, &r.ProviderMessage,
		&respondedAt, &r.ExpiresAt, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if respondedAt.Valid {
		r.RespondedAt = &respondedAt.Time
	}
	return r, nil
}

// ListRequestsByTenant возвращает заявки арендатора, новые первыми.
func (s *Storage) ListRequestsByTenant(ctx context.Context, tenantUserUID string) ([]*models.ConnectionRequest, error) {
	const op = "storage.ListRequestsByTenant"
	return s.listRequests(ctx, op, `tenant_user_uid`, tenantUserUID)
}

// ListRequestsByProvider возвращает заявки поставщика, новые первыми.
func (s *Storage) ListRequestsByProvider(ctx context.Context, providerUserUID string) ([]*models.ConnectionRequest, error) {
	const op = "storage.ListRequestsByProvider"
	return s.listRequests(ctx, op, `provider_user_uid`, providerUserUID)
}

func (s *Storage) listRequests(ctx context.Context, op, column, userUID string) ([]*models.ConnectionRequest, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + requestColumns + `
			  FROM connection_requests
			  WHERE ` + column + ` = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.ConnectionRequest
	for rows.Next() {
		r := &models.ConnectionRequest{}
		var respondedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.TenantID, &r.ProviderID, &r.TenantUserUID, &r.ProviderUserUID,
			&r.RequestedBy, &r.Message, &r.SampleFoodRequest, &r.SampleFoodApproved, &r.Status,
			&r.ContactShared, &r.TenantKycVerified, &r.ProviderKycVerified, &r.ProviderMessage,
			&respondedAt, &r.ExpiresAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if respondedAt.Valid {
			r.RespondedAt = &respondedAt.Time
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RespondRequest записывает ответ поставщика: статус, сообщение, решение по
// пробной еде и момент ответа. Обновляется только pending-заявка; если она
// уже отвечена, ни одна строка не затрагивается и возвращается ErrNotFound.
func (s *Storage) RespondRequest(ctx context.Context, id int, status, providerMessage string,
	sampleFoodApproved, contactShared bool, respondedAt time.Time) (int64, error) {
	const op = "storage.RespondRequest"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE connection_requests
			  SET status = $1, provider_message = $2, sample_food_approved = $3,
			      contact_shared = $4, responded_at = $5
			  WHERE id = $6 AND status = 'pending'`
	result, err := s.DB.ExecContext(ctx, query,
		status, providerMessage, sampleFoodApproved, contactShared, respondedAt, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ExpireStaleRequests переводит просроченные pending-заявки в статус expired
// и возвращает их вместе с uid арендаторов для уведомления.
func (s *Storage) ExpireStaleRequests(ctx context.Context, now time.Time) ([]*models.ConnectionRequest, error) {
	const op = "storage.ExpireStaleRequests"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE connection_requests
			  SET status = 'expired'
			  WHERE status = 'pending' AND expires_at < $1
			  RETURNING id, tenant_id, provider_id, tenant_user_uid, provider_user_uid`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.ConnectionRequest
	for rows.Next() {
		r := &models.ConnectionRequest{Status: models.RequestExpired}
		if err := rows.Scan(&r.ID, &r.TenantID, &r.ProviderID,
			&r.TenantUserUID, &r.ProviderUserUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
