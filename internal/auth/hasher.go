package auth

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/simple-bulletin/simple-bulletin/internal/config"
)

// Hasher computes and verifies argon2id hashes. At most workers computations run at once;
// callers wait for a free worker or until their context ends.
type Hasher struct {
	params  *argon2id.Params
	workers *semaphore.Weighted
	dummy   string
}

// NewHasher returns a Hasher for the given settings.
func NewHasher(cfg config.Auth) *Hasher {
	workers := cfg.HashWorkers
	if workers < 1 {
		workers = 1
	}

	h := &Hasher{
		params: &argon2id.Params{
			Memory:      cfg.Argon2.Memory,
			Iterations:  cfg.Argon2.Iterations,
			Parallelism: cfg.Argon2.Parallelism,
			SaltLength:  cfg.Argon2.SaltLength,
			KeyLength:   cfg.Argon2.KeyLength,
		},
		workers: semaphore.NewWeighted(int64(workers)),
	}

	// verified for unknown usernames so both failure paths cost the same
	dummy, err := argon2id.CreateHash("dummy password", h.params)
	if err != nil {
		log.Fatal().Err(err).Msg("argon2id parameters are invalid")
	}

	h.dummy = dummy

	return h
}

// Hash returns the encoded argon2id hash of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.workers.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for hash worker: %w", err)
	}
	defer h.workers.Release(1)

	hash, err := argon2id.CreateHash(password, h.params)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return hash, nil
}

// Verify compares password with the encoded hash in constant time.
func (h *Hasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := h.workers.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("waiting for hash worker: %w", err)
	}
	defer h.workers.Release(1)

	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}

	return match, nil
}

// VerifyDummy burns the cost of one verification without a stored hash.
func (h *Hasher) VerifyDummy(ctx context.Context, password string) {
	_, _ = h.Verify(ctx, password, h.dummy)
}
