package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"phishguard/pkg/models"
)

// MemoryStore keeps everything in process memory. It is the default backend
// and the one used by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	scans    map[string]models.ScanRecord
	users    map[string]models.User
	contacts []models.ContactMessage
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scans: make(map[string]models.ScanRecord),
		users: make(map[string]models.User),
		now:   time.Now,
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) SaveScan(ctx context.Context, rec *models.ScanRecord) error {
	rec.ID = uuid.NewString()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = m.now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans[rec.ID] = *rec
	return nil
}

func (m *MemoryStore) ListScans(ctx context.Context, userID string, limit int) ([]models.ScanRecord, error) {
	m.mu.RLock()
	out := make([]models.ScanRecord, 0)
	for _, rec := range m.scans {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.ScanRecord) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) DeleteScan(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.scans[id]
	if !ok || rec.UserID != userID {
		return ErrNotFound
	}
	delete(m.scans, id)
	return nil
}

func (m *MemoryStore) ClearScans(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, rec := range m.scans {
		if rec.UserID == userID {
			delete(m.scans, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[u.Email]; exists {
		return ErrEmailExists
	}
	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now().UTC()
	}
	m.users[u.Email] = *u
	return nil
}

func (m *MemoryStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	m.users[email] = u
	return nil
}

func (m *MemoryStore) SaveContact(ctx context.Context, msg *models.ContactMessage) error {
	msg.ID = uuid.NewString()
	if msg.SubmittedAt.IsZero() {
		msg.SubmittedAt = m.now().UTC()
	}
	if msg.Status == "" {
		msg.Status = models.ContactPending
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = append(m.contacts, *msg)
	return nil
}

// Contacts returns a copy of every saved contact message.
func (m *MemoryStore) Contacts() []models.ContactMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.contacts)
}

func (m *MemoryStore) Close() error {
	return nil
}
