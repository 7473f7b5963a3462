package transport

import "time"

// CreateKeyRequest is the body for POST /v1/keys.
type CreateKeyRequest struct {
	Name string `json:"name" binding:"required" validate:"required,min=2,max=64"`
}

// KeyResponse describes an API key without its secret material.
type KeyResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Prefix    string     `json:"prefix"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}

// CreatedKeyResponse additionally carries the full key. It is returned
// exactly once, at creation; only the hash is stored.
type CreatedKeyResponse struct {
	KeyResponse
	Key string `json:"key"`
}

// ListKeysResponse is the body for GET /v1/keys.
type ListKeysResponse struct {
	Items []KeyResponse `json:"items"`
}
