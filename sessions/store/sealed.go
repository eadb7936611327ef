package store

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// SealedRepo encrypts values with XChaCha20-Poly1305 before handing them to the
// wrapped Repo. The key name is bound as additional data, so a value copied to a
// different key fails to open.
type SealedRepo struct {
	next Repo
	key  []byte
}

var _ Repo = (*SealedRepo)(nil)

func NewSealedRepo(next Repo, key []byte) (*SealedRepo, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.Wrapf(errors.ErrInvalidSealKey, "need %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &SealedRepo{next: next, key: k}, nil
}

func (r *SealedRepo) Get(ctx context.Context, key string) (string, error) {
	sealed, err := r.next.Get(ctx, key)
	if err != nil {
		return "", err
	}

	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < chacha20poly1305.NonceSizeX {
		return "", errors.Wrapf(errors.ErrSealedValue, "key %s", key)
	}

	aead, err := chacha20poly1305.NewX(r.key)
	if err != nil {
		return "", err
	}
	nonce, ciphertext := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", errors.Wrapf(errors.ErrSealedValue, "key %s", key)
	}
	return string(plain), nil
}

func (r *SealedRepo) Set(ctx context.Context, key, value string) error {
	aead, err := chacha20poly1305.NewX(r.key)
	if err != nil {
		return err
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX, chacha20poly1305.NonceSizeX+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return r.next.Set(ctx, key, base64.RawStdEncoding.EncodeToString(sealed))
}

func (r *SealedRepo) Delete(ctx context.Context, key string) error {
	return r.next.Delete(ctx, key)
}
