package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by Get-style methods when no row matches.
var ErrNotFound = errors.New("store: not found")

// notFoundOrErr maps pgx.ErrNoRows to ErrNotFound (wrapped with what kind
// of record was being looked up) and passes through any other error
// wrapped with the same context.
func notFoundOrErr(err error, kind string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", kind, ErrNotFound)
	}
	return fmt.Errorf("store: fetching %s: %w", kind, err)
}
