// libraryctl is the operations companion to the API server: it creates the
// schema and seeds the first admin account, so a fresh environment can be
// brought up without touching psql.
package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/mityuk17/library-service-api/model"
	"github.com/mityuk17/library-service-api/util/hash"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT    NOT NULL,
	login         TEXT    NOT NULL UNIQUE,
	password_hash TEXT    NOT NULL,
	role          TEXT    NOT NULL DEFAULT 'user',
	active        BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS authors (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS genres (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS publishers (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS books (
	id           BIGSERIAL PRIMARY KEY,
	name         TEXT    NOT NULL UNIQUE,
	author_id    BIGINT  REFERENCES authors(id),
	publisher_id BIGINT  REFERENCES publishers(id),
	genre_id     BIGINT  REFERENCES genres(id),
	reserved_at  BIGINT  NOT NULL DEFAULT 0,
	reserved_by  BIGINT  REFERENCES users(id),
	in_stock     BOOLEAN NOT NULL DEFAULT TRUE,
	owner_id     BIGINT  REFERENCES users(id)
);`

func connect() (*sqlx.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := db.Exec(schema); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			fmt.Println("schema up to date")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var email, login, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			hashed, err := hash.HashPassword(password)
			if err != nil {
				return err
			}

			var id int64
			err = db.QueryRow(`
				INSERT INTO users (email, login, password_hash, role, active)
				VALUES ($1, $2, $3, $4, TRUE)
				RETURNING id`,
				email, login, hashed, model.RoleAdmin,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("insert admin: %w", err)
			}
			fmt.Printf("admin %q created with id %d\n", login, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&login, "login", "", "admin login")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func main() {
	root := &cobra.Command{
		Use:           "libraryctl",
		Short:         "Library service operations tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(), createAdminCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
