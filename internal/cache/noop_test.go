package cache

import (
	"context"
	"testing"

	"phishguard/pkg/models"
)

func TestNoOpStore_Get(t *testing.T) {
	store := NewNoOpStore[*models.EmailReport]()

	report, found := store.Get(context.Background(), "email:user@example.com")

	if found {
		t.Error("NoOpStore should never return found=true")
	}
	if report != nil {
		t.Error("NoOpStore should never return a report")
	}
}

func TestNoOpStore_Set(t *testing.T) {
	store := NewNoOpStore[*models.EmailReport]()
	ctx := context.Background()

	store.Set(ctx, "email:user@example.com", &models.EmailReport{Email: "user@example.com"})

	if _, found := store.Get(ctx, "email:user@example.com"); found {
		t.Error("NoOpStore should not store anything")
	}
	if store.Size() != 0 {
		t.Errorf("Expected size 0, got %d", store.Size())
	}
}

func TestStoreImplementations(t *testing.T) {
	var _ Store[string] = NewNoOpStore[string]()
	var _ Store[string] = NewMemoryStore[string](0)
}
