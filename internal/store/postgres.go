package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"phishguard/pkg/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolation = "23505"

type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to url and applies pending migrations.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	// connections stay owned by the pool
	db := stdlib.OpenDBFromPool(pool)
	return goose.UpContext(ctx, db, "migrations")
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) SaveScan(ctx context.Context, rec *models.ScanRecord) error {
	rec.ID = uuid.NewString()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO scan_history (id, user_id, user_email, scan_type, domain, url, safety, ip_address, location, ssl, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.ID, rec.UserID, rec.UserEmail, rec.ScanType, rec.Domain, rec.URL, rec.Safety, rec.IPAddress,
		rec.Location, rec.SSL, rec.Timestamp)
	return err
}

func (p *PostgresStore) ListScans(ctx context.Context, userID string, limit int) ([]models.ScanRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, user_id, user_email, scan_type, domain, url, safety, ip_address, location, ssl, scanned_at
		FROM scan_history
		WHERE user_id = $1
		ORDER BY scanned_at DESC, id
		LIMIT $2
	`, userID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ScanRecord, 0)
	for rows.Next() {
		var rec models.ScanRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.UserEmail, &rec.ScanType, &rec.Domain, &rec.URL,
			&rec.Safety, &rec.IPAddress, &rec.Location, &rec.SSL, &rec.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *PostgresStore) DeleteScan(ctx context.Context, userID, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM scan_history WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) ClearScans(ctx context.Context, userID string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM scan_history WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailExists
	}
	return err
}

func (p *PostgresStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := p.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE email = $1`, email, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) SaveContact(ctx context.Context, msg *models.ContactMessage) error {
	msg.ID = uuid.NewString()
	if msg.SubmittedAt.IsZero() {
		msg.SubmittedAt = time.Now().UTC()
	}
	if msg.Status == "" {
		msg.Status = models.ContactPending
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.Status, msg.SubmittedAt)
	return err
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
