package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

const reviewColumns = `id, subscription_id, tenant_id, provider_id, tenant_user_uid,
			      rating, comment, created_at`

// CreateReview вставляет отзыв и возвращает его ID. Повторный отзыв той же
// пары (арендатор, подписка) отклоняется уникальным индексом и возвращается
// как ErrDuplicateReview.
func (s *Storage) CreateReview(ctx context.Context, rev models.Review) (int, error) {
	const op = "storage.CreateReview"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO reviews (subscription_id, tenant_id, provider_id,
			      tenant_user_uid, rating, comment)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		rev.SubscriptionID, rev.TenantID, rev.ProviderID,
		rev.TenantUserUID, rev.Rating, rev.Comment).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return 0, fmt.Errorf("%s: %w", op, ErrDuplicateReview)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListReviewsByProvider возвращает отзывы о поставщике, новые первыми.
func (s *Storage) ListReviewsByProvider(ctx context.Context, providerID, limit, offset int) ([]*models.Review, error) {
	const op = "storage.ListReviewsByProvider"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reviewColumns + `
			  FROM reviews
			  WHERE provider_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, providerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Review
	for rows.Next() {
		rev := &models.Review{}
		if err := rows.Scan(&rev.ID, &rev.SubscriptionID, &rev.TenantID, &rev.ProviderID,
			&rev.TenantUserUID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetProviderRating возвращает средний балл поставщика, округлённый до одного
// знака, и число отзывов. Для поставщика без отзывов среднее равно нулю.
func (s *Storage) GetProviderRating(ctx context.Context, providerID int) (models.ProviderRating, error) {
	const op = "storage.GetProviderRating"
	select {
	case <-ctx.Done():
		return models.ProviderRating{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var rating models.ProviderRating
	query := `SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0), COUNT(*)
			  FROM reviews
			  WHERE provider_id = $1`
	if err := s.DB.QueryRowContext(ctx, query, providerID).Scan(&rating.Average, &rating.Count); err != nil {
		return models.ProviderRating{}, fmt.Errorf("%s: %w", op, err)
	}
	return rating, nil
}
