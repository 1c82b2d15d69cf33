// Command recipemcp-migrate applies the license registry schema to Postgres.
//
// Usage:
//
//	recipemcp-migrate -database "postgres://..." [-rollback]
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/migrate"

	migrations "github.com/open-rails/recipemcp/migrations/postgres"
)

func main() {
	log := logrus.New()

	databaseURL := flag.String("database", os.Getenv("RECIPEMCP_POSTGRES_URL"), "postgres connection string")
	rollback := flag.Bool("rollback", false, "roll back the last migration group")
	flag.Parse()

	if *databaseURL == "" {
		log.Fatal("no database configured, set -database or RECIPEMCP_POSTGRES_URL")
	}

	sqldb, err := sql.Open("pgx", *databaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, pgdialect.New())
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	ctx := context.Background()
	if err := migrator.Init(ctx); err != nil {
		log.WithError(err).Fatal("failed to init migration tables")
	}

	if *rollback {
		group, err := migrator.Rollback(ctx)
		if err != nil {
			log.WithError(err).Fatal("rollback failed")
		}
		log.WithField("group", group.String()).Info("rolled back")
		return
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	if group.IsZero() {
		log.Info("database is up to date")
		return
	}
	log.WithField("group", group.String()).Info("migrated")
}
