package models

import "time"

// Review — отзыв арендатора о поставщике, привязанный к подписке.
// Один арендатор оставляет не более одного отзыва на подписку.
type Review struct {
	ID             int
	SubscriptionID int
	TenantID       int
	ProviderID     int
	TenantUserUID  string
	Rating         int // Оценка от 1 до 5
	Comment        string
	CreatedAt      time.Time
}

// ProviderRating — агрегированный рейтинг поставщика по всем отзывам.
// Среднее округляется до одного знака после запятой.
type ProviderRating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// DummyReview используется для приёма нового отзыва из JSON-запроса.
type DummyReview struct {
	SubscriptionID int    `json:"subscription_id" validate:"required,gt=0"`
	Rating         int    `json:"rating" validate:"required,min=1,max=5"`
	Comment        string `json:"comment" validate:"required,max=500"`
}
