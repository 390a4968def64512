// Package migration aplica o schema do banco a partir dos arquivos SQL embarcados
package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/live-performance-api/infrastructure/migration/schema"
)

// Up aplica todas as migrações pendentes até schema.Version
func Up(dsn string) error {
	driver, err := iofs.New(schema.FS, ".")
	if err != nil {
		return fmt.Errorf("erro ao abrir migrações embarcadas: %w", err)
	}
	defer driver.Close()

	mg, err := migrate.NewWithSourceInstance("iofs", driver, dsn)
	if err != nil {
		return fmt.Errorf("erro ao conectar para migração: %w", err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}

	if dirty {
		return fmt.Errorf("banco em estado inconsistente na versão %d", version)
	}

	if err = mg.Migrate(schema.Version); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logrus.WithField("version", version).Info("migration: schema já está atualizado")
			return nil
		}
		return err
	}

	logrus.WithField("version", schema.Version).Info("migration: schema atualizado com sucesso")

	return nil
}
