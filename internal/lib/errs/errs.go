// Package errs определяет классификацию ошибок бизнес-логики.
//
// Каждая ошибка относится к одному из пяти видов: нет прав, сущность не найдена,
// операция недопустима в текущем статусе, не выполнено предусловие или
// некорректный ввод. Вид проверяется через errors.Is, человекочитаемое
// сообщение возвращает Error(). HTTP-слой отображает вид в статус-код.
package errs

import "errors"

// Виды ошибок бизнес-логики.
var (
	// ErrNotAuthorized — вызывающий не имеет права на операцию
	// (чужая роль или не сторона записи).
	ErrNotAuthorized = errors.New("not authorized")
	// ErrNotFound — сущность по идентификатору не найдена.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState — операция недопустима в текущем статусе сущности.
	ErrInvalidState = errors.New("invalid state")
	// ErrPreconditionFailed — не выполнено предусловие операции
	// (KYC не подтверждён, вместимость исчерпана, дубликат заявки).
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrValidation — некорректная форма или диапазон входных данных.
	ErrValidation = errors.New("validation error")
)

// Error связывает вид ошибки с сообщением для пользователя.
type Error struct {
	kind error
	msg  string
}

// New создаёт ошибку заданного вида с человекочитаемым сообщением.
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Unwrap возвращает вид ошибки, что позволяет проверять его через errors.Is.
func (e *Error) Unwrap() error { return e.kind }
