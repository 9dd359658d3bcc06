package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

const tenantColumns = `id, user_uid, display_name, kyc_status, monthly_budget, created_at`

// GetTenantByUserUID возвращает профиль арендатора по uid пользователя.
func (s *Storage) GetTenantByUserUID(ctx context.Context, userUID string) (*models.Tenant, error) {
	const op = "storage.GetTenantByUserUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE user_uid = $1`
	return scanTenant(s.DB.QueryRowContext(ctx, query, userUID), op)
}

// GetTenantByID возвращает профиль арендатора по id профиля.
func (s *Storage) GetTenantByID(ctx context.Context, id int) (*models.Tenant, error) {
	const op = "storage.GetTenantByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return scanTenant(s.DB.QueryRowContext(ctx, query, id), op)
}

func scanTenant(row *sql.Row, op string) (*models.Tenant, error) {
	t := &models.Tenant{}
	if err := row.Scan(&t.ID, &t.UserUID, &t.DisplayName, &t.KycStatus,
		&t.MonthlyBudget, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// CreateTenant сохраняет профиль арендатора и возвращает его id.
func (s *Storage) CreateTenant(ctx context.Context, t models.Tenant) (int, error) {
	const op = "storage.CreateTenant"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO tenants (user_uid, display_name, kyc_status, monthly_budget)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query,
		t.UserUID, t.DisplayName, t.KycStatus, t.MonthlyBudget).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

const providerColumns = `id, user_uid, display_name, bio, address, area, city, pincode, kyc_status,
			      max_tenants, current_tenants, total_subscriptions, is_active, is_available, created_at`

// GetProviderByID возвращает профиль поставщика по id профиля.
func (s *Storage) GetProviderByID(ctx context.Context, id int) (*models.Provider, error) {
	const op = "storage.GetProviderByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1`
	return scanProvider(s.DB.QueryRowContext(ctx, query, id), op)
}

// GetProviderByUserUID возвращает профиль поставщика по uid пользователя.
func (s *Storage) GetProviderByUserUID(ctx context.Context, userUID string) (*models.Provider, error) {
	const op = "storage.GetProviderByUserUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + providerColumns + ` FROM providers WHERE user_uid = $1`
	return scanProvider(s.DB.QueryRowContext(ctx, query, userUID), op)
}

func scanProvider(row *sql.Row, op string) (*models.Provider, error) {
	p := &models.Provider{}
	if err := row.Scan(&p.ID, &p.UserUID, &p.DisplayName, &p.Bio, &p.Address, &p.Area,
		&p.City, &p.Pincode, &p.KycStatus, &p.MaxTenants, &p.CurrentTenants,
		&p.TotalSubscriptions, &p.IsActive, &p.IsAvailable, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// CreateProvider сохраняет профиль поставщика и возвращает его id.
func (s *Storage) CreateProvider(ctx context.Context, p models.Provider) (int, error) {
	const op = "storage.CreateProvider"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO providers (user_uid, display_name, bio, address, area, city, pincode,
			      kyc_status, max_tenants, is_active, is_available)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query,
		p.UserUID, p.DisplayName, p.Bio, p.Address, p.Area, p.City, p.Pincode,
		p.KycStatus, p.MaxTenants, p.IsActive, p.IsAvailable).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListProviders возвращает активных поставщиков с пагинацией.
func (s *Storage) ListProviders(ctx context.Context, limit, offset int) ([]*models.Provider, error) {
	const op = "storage.ListProviders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + providerColumns + `
			  FROM providers
			  WHERE is_active = TRUE
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Provider
	for rows.Next() {
		p := &models.Provider{}
		if err := rows.Scan(&p.ID, &p.UserUID, &p.DisplayName, &p.Bio, &p.Address, &p.Area,
			&p.City, &p.Pincode, &p.KycStatus, &p.MaxTenants, &p.CurrentTenants,
			&p.TotalSubscriptions, &p.IsActive, &p.IsAvailable, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReleaseSlot освобождает слот поставщика при отмене подписки.
// Счётчик не опускается ниже нуля.
func (s *Storage) ReleaseSlot(ctx context.Context, providerID int) error {
	const op = "storage.ReleaseSlot"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE providers
			  SET current_tenants = GREATEST(current_tenants - 1, 0)
			  WHERE id = $1`
	if _, err := s.DB.ExecContext(ctx, query, providerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
