// Command migrate aplica o schema do banco sem subir a API
package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/live-performance-api/infrastructure/migration"
	"github.com/vfg2006/live-performance-api/internal/config"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	if err := migration.Up(cfg.Database.DSN); err != nil {
		logrus.WithError(err).Fatal("Erro ao aplicar migrações do banco")
	}
}
