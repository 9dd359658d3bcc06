// Команда seed-admin создает администратора для нового окружения.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/magabrotheeeer/tiffin-connect/internal/config"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/password"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/sl"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
	"github.com/magabrotheeeer/tiffin-connect/internal/storage/repository"
)

func main() {
	email := flag.String("email", "", "admin email")
	name := flag.String("name", "Administrator", "admin display name")
	pass := flag.String("password", "", "admin password")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if *email == "" || *pass == "" {
		logger.Error("email and password are required")
		os.Exit(1)
	}

	cfg := config.MustLoad()

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	hash, err := password.GetHash(*pass)
	if err != nil {
		logger.Error("failed to hash password", sl.Err(err))
		os.Exit(1)
	}

	uid, err := db.CreateUser(context.Background(), models.User{
		Email:        *email,
		Name:         *name,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		logger.Error("failed to create admin", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("admin created", slog.String("uid", uid), slog.String("email", *email))
}
