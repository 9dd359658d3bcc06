// Package repository реализует хранилище данных на основе PostgreSQL
// для маркетплейса домашней еды. Предоставляет методы работы с пользователями,
// профилями арендаторов и поставщиков, заявками на знакомство, подписками
// и уведомлениями, включая атомарный учёт вместимости поставщика.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища. Сервисный слой отображает их в ошибки бизнес-логики.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicatePendingRequest — нарушен частичный уникальный индекс
	// pending-заявок для пары (tenant, provider).
	ErrDuplicatePendingRequest = errors.New("pending request already exists")
	// ErrDuplicateEmail — пользователь с таким e-mail уже зарегистрирован.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrCapacityExceeded — условное обновление счётчика вместимости
	// не затронуло ни одной строки: свободных слотов нет.
	ErrCapacityExceeded = errors.New("provider capacity exceeded")
	// ErrDuplicateSubscriptionNumber — номер подписки уже занят: два
	// одновременных создания получили одинаковый дневной счётчик.
	ErrDuplicateSubscriptionNumber = errors.New("subscription number already taken")
	// ErrDuplicateReview — арендатор уже оставил отзыв на эту подписку.
	ErrDuplicateReview = errors.New("review already exists for this subscription")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных к работе.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'connection_requests'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table connection_requests missing or query error: %w", err)
	}
	return nil
}
