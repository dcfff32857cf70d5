package db

import (
	"context"
	"fmt"
	"time"

	"dbscout/internal/dialect"
)

// DefaultVerifyTimeout bounds a single connection attempt during Verify.
const DefaultVerifyTimeout = 15 * time.Second

// Verify opens the alias, runs the dialect's ping statement, and closes the
// connection. The whole attempt is bounded by timeout so an unreachable host
// reports a timeout failure instead of hanging.
func Verify(ctx context.Context, alias string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := Open(ctx, alias)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s: timeout after %s", alias, timeout)
		}
		return err
	}
	defer func() { _ = client.Close() }()

	var one int
	if err := client.DB().QueryRowContext(ctx, dialect.PingSQL(client.Kind)).Scan(&one); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s: timeout after %s", alias, timeout)
		}
		return fmt.Errorf("%s: %w", alias, err)
	}
	return nil
}
