// Package service implements developer API key management for the portal:
// key generation, hashing and lifecycle. Keys are minted as high-entropy
// random tokens and only their SHA-256 digest is stored.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/global-church/church-search-api/internal/apikeys/repository"
	"github.com/global-church/church-search-api/internal/apikeys/transport"
	"github.com/global-church/church-search-api/platform/apperr"

	"github.com/google/uuid"
)

const (
	keyByteLength = 32
	keyPrefixTag  = "gc_"
	prefixDisplay = 8
)

// KeyStore is the persistence surface the service depends on.
type KeyStore interface {
	Insert(ctx context.Context, key repository.Key) error
	List(ctx context.Context) ([]repository.Key, error)
	Revoke(ctx context.Context, id uuid.UUID, when time.Time) (bool, error)
}

type Service struct {
	repo KeyStore
}

func New(repo KeyStore) *Service {
	return &Service{repo: repo}
}

// Create mints a new API key and returns it in full, exactly once.
func (s *Service) Create(ctx context.Context, name string) (*transport.CreatedKeyResponse, error) {
	token, err := generateToken()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "key generation failed", err).WithOp("apikeys.Create")
	}

	digest := sha256.Sum256([]byte(token))
	key := repository.Key{
		ID:        uuid.New(),
		Name:      name,
		Prefix:    token[:len(keyPrefixTag)+prefixDisplay],
		KeyHash:   hex.EncodeToString(digest[:]),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, key); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to store key", err).WithOp("apikeys.Create")
	}

	return &transport.CreatedKeyResponse{
		KeyResponse: toResponse(key),
		Key:         token,
	}, nil
}

// List returns all keys, newest first, without secret material.
func (s *Service) List(ctx context.Context) (*transport.ListKeysResponse, error) {
	keys, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list keys", err).WithOp("apikeys.List")
	}

	items := make([]transport.KeyResponse, len(keys))
	for i, key := range keys {
		items[i] = toResponse(key)
	}
	return &transport.ListKeysResponse{Items: items}, nil
}

// Revoke permanently disables a key.
func (s *Service) Revoke(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return apperr.BadRequest("invalid key id")
	}

	revoked, err := s.repo.Revoke(ctx, id, time.Now().UTC())
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to revoke key", err).WithOp("apikeys.Revoke")
	}
	if !revoked {
		return apperr.NotFound("key not found")
	}
	return nil
}

func generateToken() (string, error) {
	raw := make([]byte, keyByteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return keyPrefixTag + base64.RawURLEncoding.EncodeToString(raw), nil
}

func toResponse(key repository.Key) transport.KeyResponse {
	return transport.KeyResponse{
		ID:        key.ID.String(),
		Name:      key.Name,
		Prefix:    key.Prefix,
		CreatedAt: key.CreatedAt,
		RevokedAt: key.RevokedAt,
	}
}
