// Package dbtest opens throwaway in-memory SQLite databases with the
// production schema applied.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jordanlanch/printfast/pkg/database"
	_ "github.com/mattn/go-sqlite3"
)

// Open returns a migrated client backed by a private in-memory database.
// The database is closed when the test finishes.
func Open(t testing.TB) *database.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("failed opening sqlite: %v", err)
	}
	// A single connection keeps the in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)

	client := database.Wrap(db)
	if err := client.Migrate(context.Background()); err != nil {
		t.Fatalf("failed applying schema: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })
	return client
}
