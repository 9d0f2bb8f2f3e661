package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"
)

var (
	ErrInvalidRequest     = errors.New("invalid auth request")
	ErrInvalidCredentials = errors.New("invalid gm credentials")
	ErrGMDisabled         = errors.New("gm key not configured")
)

type VerifyRequest struct {
	GMKey string
}

// VerifyUseCase guards game-master operations. Only a salted hash of the
// configured key is kept in memory.
type VerifyUseCase struct {
	salt []byte
	hash []byte
}

func NewVerifyUseCase(gmKey string) (VerifyUseCase, error) {
	gmKey = strings.TrimSpace(gmKey)
	if gmKey == "" {
		return VerifyUseCase{}, nil
	}
	salt, err := randomBytes(16)
	if err != nil {
		return VerifyUseCase{}, err
	}
	return VerifyUseCase{salt: salt, hash: credentialHash(salt, gmKey)}, nil
}

func (u VerifyUseCase) Enabled() bool {
	return len(u.hash) > 0
}

func (u VerifyUseCase) Execute(_ context.Context, req VerifyRequest) error {
	if !u.Enabled() {
		return ErrGMDisabled
	}
	req.GMKey = strings.TrimSpace(req.GMKey)
	if req.GMKey == "" {
		return ErrInvalidRequest
	}
	got := credentialHash(u.salt, req.GMKey)
	if subtle.ConstantTimeCompare(got, u.hash) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func credentialHash(salt []byte, key string) []byte {
	b := make([]byte, 0, len(salt)+len(key))
	b = append(b, salt...)
	b = append(b, key...)
	sum := sha256.Sum256(b)
	return sum[:]
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
