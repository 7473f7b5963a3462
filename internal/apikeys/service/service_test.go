package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/global-church/church-search-api/internal/apikeys/repository"
	"github.com/global-church/church-search-api/platform/apperr"

	"github.com/google/uuid"
)

type fakeKeyStore struct {
	keys      []repository.Key
	insertErr error
}

func (f *fakeKeyStore) Insert(_ context.Context, key repository.Key) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeKeyStore) List(_ context.Context) ([]repository.Key, error) {
	return f.keys, nil
}

func (f *fakeKeyStore) Revoke(_ context.Context, id uuid.UUID, when time.Time) (bool, error) {
	for i := range f.keys {
		if f.keys[i].ID == id && f.keys[i].RevokedAt == nil {
			f.keys[i].RevokedAt = &when
			return true, nil
		}
	}
	return false, nil
}

func TestCreateMintsTokenAndStoresOnlyHash(t *testing.T) {
	store := &fakeKeyStore{}
	svc := New(store)

	created, err := svc.Create(context.Background(), "staging importer")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !strings.HasPrefix(created.Key, "gc_") {
		t.Fatalf("token %q must carry the gc_ prefix", created.Key)
	}
	if !strings.HasPrefix(created.Key, created.Prefix) {
		t.Fatalf("display prefix %q must be a prefix of the token", created.Prefix)
	}

	if len(store.keys) != 1 {
		t.Fatalf("stored %d keys, want 1", len(store.keys))
	}
	stored := store.keys[0]
	if stored.KeyHash == created.Key || strings.Contains(stored.KeyHash, created.Key) {
		t.Fatal("the raw token must never be persisted")
	}
	digest := sha256.Sum256([]byte(created.Key))
	if stored.KeyHash != hex.EncodeToString(digest[:]) {
		t.Fatal("stored hash must be the SHA-256 of the token")
	}
}

func TestCreateTokensAreUnique(t *testing.T) {
	svc := New(&fakeKeyStore{})

	first, err := svc.Create(context.Background(), "one")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(context.Background(), "two")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Key == second.Key {
		t.Fatal("two keys must never share a token")
	}
}

func TestListOmitsSecretMaterial(t *testing.T) {
	store := &fakeKeyStore{}
	svc := New(store)
	if _, err := svc.Create(context.Background(), "reader"); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("listed %d keys, want 1", len(list.Items))
	}
	item := list.Items[0]
	if item.Name != "reader" || item.Prefix == "" {
		t.Fatalf("item = %+v, want name and prefix populated", item)
	}
}

func TestRevoke(t *testing.T) {
	store := &fakeKeyStore{}
	svc := New(store)
	if _, err := svc.Create(context.Background(), "doomed"); err != nil {
		t.Fatalf("create: %v", err)
	}
	id := store.keys[0].ID.String()

	if err := svc.Revoke(context.Background(), id); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if store.keys[0].RevokedAt == nil {
		t.Fatal("revocation must be recorded")
	}

	err := svc.Revoke(context.Background(), id)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("revoking an already-revoked key: got %v, want not found", err)
	}

	err = svc.Revoke(context.Background(), "not-a-uuid")
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("revoking a malformed id: got %v, want bad request", err)
	}
}
