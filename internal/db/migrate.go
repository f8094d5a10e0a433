package db

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate aplica las migraciones embebidas contra la base configurada.
// El esquema incluye el índice único de email, la red de seguridad real
// contra registros duplicados concurrentes.
func Migrate(databaseURL string) error {
	// migrate registra el driver de pgx/v5 bajo el esquema pgx5.
	if rest, ok := strings.CutPrefix(databaseURL, "postgresql://"); ok {
		databaseURL = "pgx5://" + rest
	} else if rest, ok := strings.CutPrefix(databaseURL, "postgres://"); ok {
		databaseURL = "pgx5://" + rest
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
