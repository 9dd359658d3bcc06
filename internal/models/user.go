// Package models содержит доменные структуры маркетплейса домашней еды:
// пользователей, профили арендаторов и поваров-поставщиков, заявки на знакомство
// и подписки на питание, а также вспомогательные типы для приёма JSON-запросов.
package models

import "time"

// Роли пользователей системы.
const (
	RoleTenant   = "tenant"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// Статусы KYC-проверки профиля.
const (
	KycPending   = "pending"
	KycSubmitted = "submitted"
	KycVerified  = "verified"
	KycRejected  = "rejected"
)

// User представляет учётную запись пользователя системы.
// Premium-поля читаются ядром как внешний факт: ядро их не выдаёт,
// а только проверяет при расчёте видимости контактов.
type User struct {
	UID              string     // Уникальный идентификатор пользователя
	Email            string     // Электронная почта
	Name             string     // Отображаемое имя
	Phone            string     // Телефон (скрывается правилами видимости)
	PasswordHash     string     // Хэш пароля
	Role             string     // Роль: tenant, provider или admin
	IsPremium        bool       // Признак активной premium-подписки
	PremiumExpiresAt *time.Time // Дата окончания premium (nil — бессрочно)
	CreatedAt        time.Time
}

// PremiumActive сообщает, действует ли premium-доступ пользователя на момент now.
func (u *User) PremiumActive(now time.Time) bool {
	if !u.IsPremium {
		return false
	}
	if u.PremiumExpiresAt == nil {
		return true
	}
	return u.PremiumExpiresAt.After(now)
}

// DummyRegister используется для приёма данных из JSON-запроса на регистрацию.
// Профильные поля читаются по роли: арендатору нужен бюджет, поставщику —
// адрес, район и вместимость.
type DummyRegister struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"required,max=20"`
	Role        string `json:"role" validate:"required,oneof=tenant provider"`
	DisplayName string `json:"display_name" validate:"required,max=100"`

	// Поля профиля арендатора.
	MonthlyBudget int `json:"monthly_budget" validate:"omitempty,gt=0"`

	// Поля профиля поставщика.
	Bio        string `json:"bio" validate:"omitempty,max=1000"`
	Address    string `json:"address" validate:"omitempty,max=300"`
	Area       string `json:"area" validate:"omitempty,max=100"`
	City       string `json:"city" validate:"omitempty,max=100"`
	Pincode    string `json:"pincode" validate:"omitempty,len=6"`
	MaxTenants int    `json:"max_tenants" validate:"omitempty,gt=0"`
}

// DummyLogin используется для приёма данных из JSON-запроса на вход.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Identity — факт об аутентифицированном пользователе, который middleware
// кладёт в контекст запроса. Сервисы читают его, но никогда не изменяют.
type Identity struct {
	UserUID          string
	Role             string
	IsPremium        bool
	PremiumExpiresAt *time.Time
}

// PremiumActive сообщает, действует ли premium-доступ на момент now.
func (id Identity) PremiumActive(now time.Time) bool {
	if !id.IsPremium {
		return false
	}
	if id.PremiumExpiresAt == nil {
		return true
	}
	return id.PremiumExpiresAt.After(now)
}
