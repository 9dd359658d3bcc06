package models

import "time"

// Планы подписки на питание.
const (
	PlanDaily   = "daily"
	PlanWeekly  = "weekly"
	PlanMonthly = "monthly"
)

// Статусы подписки. Переходы pending→active и active→completed выполняются
// только явным запросом стороны подписки: автоматического завершения по
// end_date нет. Статусы cancelled и completed — терминальные.
const (
	SubscriptionPending   = "pending"
	SubscriptionActive    = "active"
	SubscriptionPaused    = "paused"
	SubscriptionCompleted = "completed"
	SubscriptionCancelled = "cancelled"
)

// Режимы оплаты подписки.
const (
	PaymentWeekly  = "weekly"
	PaymentMonthly = "monthly"
	PaymentAdvance = "advance"
)

// MealSet отмечает, какие приёмы пищи входят в подписку.
type MealSet struct {
	Breakfast bool `json:"breakfast"`
	Lunch     bool `json:"lunch"`
	Dinner    bool `json:"dinner"`
}

// Count возвращает число включённых приёмов пищи в день.
func (m MealSet) Count() int {
	n := 0
	if m.Breakfast {
		n++
	}
	if m.Lunch {
		n++
	}
	if m.Dinner {
		n++
	}
	return n
}

// MealPrices задаёт цену каждого приёма пищи в рупиях.
type MealPrices struct {
	Breakfast int `json:"breakfast"`
	Lunch     int `json:"lunch"`
	Dinner    int `json:"dinner"`
}

// DailyTotal возвращает стоимость одного дня для выбранного набора приёмов пищи.
func (p MealPrices) DailyTotal(meals MealSet) int {
	total := 0
	if meals.Breakfast {
		total += p.Breakfast
	}
	if meals.Lunch {
		total += p.Lunch
	}
	if meals.Dinner {
		total += p.Dinner
	}
	return total
}

// PauseEntry — запись в журнале приостановок подписки.
type PauseEntry struct {
	PausedFrom time.Time `json:"paused_from"`
	PausedTo   time.Time `json:"paused_to"`
	Reason     string    `json:"reason"`
}

// Subscription представляет соглашение о регулярном питании между арендатором
// и поставщиком. Создаётся только после принятой заявки на знакомство.
// Как и в ConnectionRequest, стороны хранятся денормализованными парами
// (id профиля, uid пользователя).
type Subscription struct {
	ID                  int
	Number              string // Номер вида SUB-YYYYMMDD-NNNN
	TenantID            int
	ProviderID          int
	TenantUserUID       string
	ProviderUserUID     string
	Plan                string
	Meals               MealSet
	StartDate           time.Time
	EndDate             time.Time
	PricePerMeal        MealPrices
	TotalMealsPerDay    int
	DailyPrice          int
	TotalPrice          int
	Status              string
	PaymentMode         string
	SpecialInstructions string
	DeliveryTime        string
	PauseHistory        []PauseEntry
	CreatedAt           time.Time
}

// Terminal сообщает, находится ли подписка в терминальном статусе.
func (s *Subscription) Terminal() bool {
	return s.Status == SubscriptionCancelled || s.Status == SubscriptionCompleted
}

// DummySubscription используется для приёма данных из JSON-запроса
// на создание подписки. Дата начала приходит строкой в формате 02-01-2006.
type DummySubscription struct {
	ProviderID          int        `json:"provider_id" validate:"required,gt=0"`
	Plan                string     `json:"plan" validate:"required,oneof=daily weekly monthly"`
	Meals               MealSet    `json:"meals_included"`
	StartDate           string     `json:"start_date" validate:"required"`
	PricePerMeal        MealPrices `json:"price_per_meal"`
	PaymentMode         string     `json:"payment_mode" validate:"required,oneof=weekly monthly advance"`
	SpecialInstructions string     `json:"special_instructions" validate:"omitempty,max=500"`
	DeliveryTime        string     `json:"delivery_time" validate:"omitempty,max=100"`
}

// DummyStatusUpdate используется для приёма нового статуса подписки.
type DummyStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=active paused completed cancelled"`
}

// DummyPause используется для приёма интервала приостановки подписки.
// Даты приходят строками в формате 02-01-2006.
type DummyPause struct {
	PausedFrom string `json:"paused_from" validate:"required"`
	PausedTo   string `json:"paused_to" validate:"required"`
	Reason     string `json:"reason" validate:"omitempty,max=500"`
}
