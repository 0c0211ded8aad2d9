package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/game-storefront/internal/adapter/storage"
	"github.com/spf13/pflag"
)

const storagePathFlag = "storage-path"

func main() {
	storagePath := getFlagValue()
	validateFlag(storagePath)
	makeMigrations(storagePath)
}

func getFlagValue() string {
	storagePath := pflag.StringP(storagePathFlag, "s", "", "sqlite database file")
	pflag.Parse()
	return *storagePath
}

func validateFlag(storagePath string) {
	if storagePath == "" {
		slog.Error("too few args", "err", fmt.Errorf("--%s flag: required", storagePathFlag))
		fallDown()
	}
}

func makeMigrations(storagePath string) {
	db, err := storage.NewSQLDB(context.Background(), storagePath)
	if err != nil {
		slog.Error("failed to open storage", "err", err)
		fallDown()
	}
	defer db.Close()

	if err := db.Migrate(storage.NewMigrationLogger(true)); err != nil {
		slog.Error("failed to migrate", "err", err)
		db.Close()
		fallDown()
	}
	slog.Info("storage is up to date", "path", storagePath)
}

func fallDown() {
	os.Exit(2)
}
