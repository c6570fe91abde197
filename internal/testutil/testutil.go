// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/marquee/marquee-go/internal/config"
	"github.com/marquee/marquee-go/internal/tmdb"
	"github.com/marquee/marquee-go/migrations"
)

// NewDB returns an in-memory SQLite database with the embedded schema applied.
// The schema is written to run unchanged on MySQL and SQLite.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection, so every query sees the same in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}

	schema, err := migrations.FS.ReadFile("000001_init.up.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v\n%s", err, stmt)
		}
	}
	return db
}

// NewTMDB starts handler as a fake TMDB API and returns an uncached client for it.
func NewTMDB(t testing.TB, handler http.Handler) *tmdb.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return tmdb.New(config.TMDBConfig{APIToken: "test", BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
}

// JSON returns a handler that always answers body with status 200.
func JSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

// Status returns a handler that always answers with status.
func Status(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}
