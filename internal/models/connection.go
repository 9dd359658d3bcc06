package models

import "time"

// Статусы заявки на знакомство.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
	RequestExpired  = "expired"
)

// RequestTTL — срок жизни заявки: через 7 дней без ответа поставщика
// фоновый процесс переводит её в статус expired.
const RequestTTL = 7 * 24 * time.Hour

// ConnectionRequest представляет заявку арендатора на знакомство с поставщиком.
// Идентификаторы сторон хранятся парами (id профиля и uid пользователя) —
// это сознательная денормализация для удобных выборок; оба поля всегда
// ссылаются на одну и ту же личность и обновляются вместе.
// Поля *KycVerified — снимок статусов KYC на момент создания заявки,
// позже они не перепроверяются.
type ConnectionRequest struct {
	ID                  int
	TenantID            int
	ProviderID          int
	TenantUserUID       string
	ProviderUserUID     string
	RequestedBy         string // tenant или provider
	Message             string
	SampleFoodRequest   bool
	SampleFoodApproved  bool
	Status              string
	ContactShared       bool
	TenantKycVerified   bool
	ProviderKycVerified bool
	ProviderMessage     string
	RespondedAt         *time.Time
	ExpiresAt           time.Time
	CreatedAt           time.Time
}

// DummyConnectionRequest используется для приёма данных из JSON-запроса
// на создание заявки, прежде чем конвертировать их в ConnectionRequest.
type DummyConnectionRequest struct {
	ProviderID        int    `json:"provider_id" validate:"required,gt=0"`   // ID профиля поставщика
	Message           string `json:"message" validate:"omitempty,max=500"`   // Сообщение поставщику
	SampleFoodRequest bool   `json:"sample_food_request"`                    // Просьба о пробной еде
}

// DummyConnectionResponse используется для приёма ответа поставщика на заявку.
type DummyConnectionResponse struct {
	Status             string `json:"status" validate:"required,oneof=accepted rejected"` // accepted или rejected
	Message            string `json:"message" validate:"omitempty,max=500"`               // Ответное сообщение
	SampleFoodApproved *bool  `json:"sample_food_approved,omitempty"`                     // Решение по пробной еде
}
