package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DSN builds a PostgreSQL connection string from the individual parts.
func DSN(user, pass, host, port, name string) string {
	auth := url.User(user)
	if pass != "" {
		auth = url.UserPassword(user, pass)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     auth,
		Host:     fmt.Sprintf("%s:%s", host, port),
		Path:     "/" + name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Open connects to PostgreSQL through the pgx stdlib driver and verifies the
// connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("pgx", DSN(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
