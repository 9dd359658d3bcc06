// Package visibility реализует правила видимости контактных данных.
//
// Контакты поставщика (телефон, email, точный адрес, индекс) и арендатора
// скрыты по умолчанию. Право на просмотр определяется по приоритету:
// администратор, владелец записи, принятое знакомство, активный premium.
// Телефон арендатора — исключение: поставщик не видит его никогда,
// независимо от знакомства и premium.
package visibility

import (
	"time"

	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

// Viewer — закрытое множество вариантов наблюдателя. Вариант вычисляется
// один раз на границе запроса, дальше сервисы ветвятся только по нему.
type Viewer int

// Варианты наблюдателя.
const (
	Anonymous Viewer = iota
	TenantViewer
	ProviderViewer
	Admin
)

// Context — наблюдатель и его атрибуты, влияющие на видимость.
type Context struct {
	Viewer  Viewer
	UserUID string
	Premium bool
}

// NewContext строит контекст наблюдателя из факта аутентификации.
// nil означает анонимный запрос.
func NewContext(id *models.Identity, now time.Time) Context {
	if id == nil {
		return Context{Viewer: Anonymous}
	}
	c := Context{
		UserUID: id.UserUID,
		Premium: id.PremiumActive(now),
	}
	switch id.Role {
	case models.RoleAdmin:
		c.Viewer = Admin
	case models.RoleTenant:
		c.Viewer = TenantViewer
	case models.RoleProvider:
		c.Viewer = ProviderViewer
	default:
		c.Viewer = Anonymous
	}
	return c
}

// Access перечисляет контактные поля, открытые наблюдателю.
type Access struct {
	Contact bool // email, адрес, индекс
	Phone   bool
}

// Full сообщает, открыты ли все контактные поля.
func (a Access) Full() bool { return a.Contact && a.Phone }

// ProviderAccess возвращает права наблюдателя на контакты поставщика.
// connected — существует принятое знакомство между сторонами.
func ProviderAccess(c Context, ownerUID string, connected bool) Access {
	switch {
	case c.Viewer == Admin:
		return Access{Contact: true, Phone: true}
	case c.UserUID != "" && c.UserUID == ownerUID:
		return Access{Contact: true, Phone: true}
	case connected:
		return Access{Contact: true, Phone: true}
	case c.Premium:
		return Access{Contact: true, Phone: true}
	default:
		return Access{}
	}
}

// TenantAccess возвращает права наблюдателя на контакты арендатора.
// Телефон арендатора для поставщика закрыт всегда.
func TenantAccess(c Context, ownerUID string, connected bool) Access {
	var a Access
	switch {
	case c.Viewer == Admin:
		a = Access{Contact: true, Phone: true}
	case c.UserUID != "" && c.UserUID == ownerUID:
		a = Access{Contact: true, Phone: true}
	case connected:
		a = Access{Contact: true, Phone: true}
	case c.Premium:
		a = Access{Contact: true, Phone: true}
	default:
		return Access{}
	}
	if c.Viewer == ProviderViewer && c.UserUID != ownerUID {
		a.Phone = false
	}
	return a
}
