package scanner

import (
	"context"

	"phishguard/pkg/models"
)

// Scanner turns one raw user input into a report. The only error it returns
// is an *InvalidInputError; upstream failures degrade individual fields.
type Scanner[R any] interface {
	Scan(ctx context.Context, raw string) (*R, error)
}

var (
	_ Scanner[models.URLReport]   = (*URLScanner)(nil)
	_ Scanner[models.EmailReport] = (*EmailScanner)(nil)
)
