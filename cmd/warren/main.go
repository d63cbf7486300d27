package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"warren/internal/config"
	"warren/internal/server"
	"warren/internal/storage/sqlite"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open credential database")
	}

	users := sqlite.NewUserStore(db)
	defer users.Close()

	if count, err := users.Count(ctx); err != nil {
		logrus.WithError(err).Warn("failed to count users")
	} else {
		logrus.WithFields(logrus.Fields{
			"path":  cfg.DBPath,
			"users": count,
		}).Info("credential database ready")
	}

	s := server.New(cfg.Addr, users)
	if err := s.ListenAndServe(ctx); err != nil {
		logrus.WithError(err).Fatal("server terminated")
	}
}
