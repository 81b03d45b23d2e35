package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-room-reservation/internal/config"
	"github.com/iliyamo/hotel-room-reservation/internal/database"
)

func main() {
	cfg := config.Load()
	if cfg.Storage != config.StorageMySQL {
		logrus.Infof("storage driver %q needs no migration", cfg.Storage)
		return
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database unavailable")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		logrus.WithError(err).Fatal("migrate")
	}
	logrus.Info("schema up to date")
}
