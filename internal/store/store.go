// Package store persists scan history, user accounts and contact messages.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"phishguard/internal/config"
	"phishguard/pkg/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmailExists = errors.New("email already exists")
)

// DefaultHistoryLimit caps ListScans when the caller passes no limit.
const DefaultHistoryLimit = 50

type Store interface {
	Ping(ctx context.Context) error

	// SaveScan assigns an ID and, when unset, a timestamp to rec.
	SaveScan(ctx context.Context, rec *models.ScanRecord) error
	// ListScans returns the newest records of userID first.
	ListScans(ctx context.Context, userID string, limit int) ([]models.ScanRecord, error)
	// DeleteScan returns ErrNotFound unless id exists and belongs to userID.
	DeleteScan(ctx context.Context, userID, id string) error
	ClearScans(ctx context.Context, userID string) (int64, error)

	// CreateUser returns ErrEmailExists when the address is taken.
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error

	SaveContact(ctx context.Context, msg *models.ContactMessage) error

	Close() error
}

// New opens the backend selected by cfg.
func New(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (Store, error) {
	switch cfg.Mode {
	case config.StoreModeMem, "":
		log.Info("store initialized", slog.String("mode", "memory"))
		return NewMemoryStore(), nil
	case config.StoreModePostgres:
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		log.Info("store initialized", slog.String("mode", "postgres"))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store mode '%s'", cfg.Mode)
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > DefaultHistoryLimit {
		return DefaultHistoryLimit
	}
	return limit
}
