package dbscout

import (
	"context"
	"errors"
	"testing"

	"dbscout/internal/query"
)

// Unsafe statements must be rejected before any connection attempt, so
// these tests need no database and no environment.
func TestRunQueryRejectsUnsafeSQLWithoutConnecting(t *testing.T) {
	_, err := RunQuery(context.Background(), "UNCONFIGURED", "DROP TABLE customers", 10)

	var unsafeErr *query.UnsafeQueryError
	if !errors.As(err, &unsafeErr) {
		t.Fatalf("expected UnsafeQueryError, got %v", err)
	}
	if unsafeErr.Statement != "DROP TABLE customers" {
		t.Errorf("error statement = %q", unsafeErr.Statement)
	}
}

func TestExplainQueryRejectsUnsafeSQLWithoutConnecting(t *testing.T) {
	_, err := ExplainQuery(context.Background(), "UNCONFIGURED", "TRUNCATE TABLE t")

	var unsafeErr *query.UnsafeQueryError
	if !errors.As(err, &unsafeErr) {
		t.Fatalf("expected UnsafeQueryError, got %v", err)
	}
}
