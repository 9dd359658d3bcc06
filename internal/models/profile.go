package models

import "time"

// Tenant представляет профиль арендатора (студента или жильца PG),
// который ищет домашнюю еду по подписке.
type Tenant struct {
	ID            int
	UserUID       string // Ссылка на учётную запись
	DisplayName   string
	KycStatus     string // pending, submitted, verified, rejected
	MonthlyBudget int    // Бюджет на питание в месяц, в рупиях
	CreatedAt     time.Time
}

// Provider представляет профиль повара-поставщика домашней еды.
// Пара (CurrentTenants, MaxTenants) образует учёт вместимости:
// слот занимает только создание подписки, освобождает — её отмена.
type Provider struct {
	ID                 int
	UserUID            string
	DisplayName        string
	Bio                string
	Address            string // Точный адрес (скрывается правилами видимости)
	Area               string
	City               string
	Pincode            string // Почтовый индекс (скрывается правилами видимости)
	KycStatus          string
	MaxTenants         int
	CurrentTenants     int
	TotalSubscriptions int
	IsActive           bool
	IsAvailable        bool
	CreatedAt          time.Time
}

// HasCapacity сообщает, остались ли у поставщика свободные слоты.
// Проверка консультативная: резервирование слота выполняется атомарно в хранилище.
func (p *Provider) HasCapacity() bool {
	return p.CurrentTenants < p.MaxTenants
}
