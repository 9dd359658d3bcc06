// Package sl содержит короткие помощники для логгера slog, используемые
// во всех сервисах маркетплейса: и в HTTP API, и в фоновых воркерах
// уведомлений. Сервисы пишут ошибки в лог единым полем.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
// Все слои приложения логируют ошибки через этот помощник, чтобы поле
// называлось одинаково независимо от места возникновения.
//
// Пример:
//
//	log.Error("failed to create subscription", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
