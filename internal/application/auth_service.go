package application

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// KeyVerifier compares a stored hash with a presented admin key.
type KeyVerifier func(encodedHash, key string) error

// Credentials are the identity claims presented with a request.
type Credentials struct {
	AdminKey  string
	ProfileID string
}

// AuthService turns request credentials into a Principal. An admin key wins
// over a profile id; no credentials yield the anonymous principal.
type AuthService struct {
	adminKeyHash string
	verify       KeyVerifier
	logger       *slog.Logger

	mu       sync.RWMutex
	verified map[[sha256.Size]byte]struct{}
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(adminKeyHash string, verify KeyVerifier) *AuthService {
	return NewAuthServiceWithLogger(adminKeyHash, verify, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(adminKeyHash string, verify KeyVerifier, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyAdminKey
	}
	return &AuthService{
		adminKeyHash: adminKeyHash,
		verify:       verify,
		logger:       defaultLogger(logger),
		verified:     make(map[[sha256.Size]byte]struct{}),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Resolve validates the credentials. A wrong admin key is ErrInvalidAdminKey
// rather than a downgrade to anonymous.
func (s *AuthService) Resolve(ctx context.Context, creds Credentials) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	key := strings.TrimSpace(creds.AdminKey)
	profileID := strings.TrimSpace(creds.ProfileID)

	if key == "" {
		principal = Principal{ProfileID: profileID}
		return
	}

	logger := s.loggerWith(ctx, "Resolve")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "admin key rejected", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	digest := sha256.Sum256([]byte(key))
	s.mu.RLock()
	_, known := s.verified[digest]
	s.mu.RUnlock()

	if !known {
		if s.adminKeyHash == "" {
			err = ErrInvalidAdminKey
			return
		}
		if err = s.verify(s.adminKeyHash, key); err != nil {
			return
		}
		s.mu.Lock()
		s.verified[digest] = struct{}{}
		s.mu.Unlock()
	}

	principal = Principal{ProfileID: profileID, IsAdmin: true}
	return
}
