package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marketsport/rinkside/core"
	"github.com/marketsport/rinkside/ports"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// AuthService handles the server side of the SIWE challenge-response flow:
// nonce issuance, signature verification and access-token lifecycle.
type AuthService struct {
	tokenizer ports.Tokenizer
	store     ports.Store
	eventPub  ports.EventPublisher
	logger    *slog.Logger

	nonceTTL  time.Duration
	accessTTL time.Duration
}

// ServiceOption configures the auth service.
type ServiceOption func(*AuthService)

// WithNonceTTL sets how long an issued nonce stays valid.
func WithNonceTTL(ttl time.Duration) ServiceOption {
	return func(s *AuthService) { s.nonceTTL = ttl }
}

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *AuthService) { s.accessTTL = ttl }
}

// NewAuthService creates a new authentication service
func NewAuthService(
	tokenizer ports.Tokenizer,
	store ports.Store,
	eventPub ports.EventPublisher,
	logger *slog.Logger,
	opts ...ServiceOption,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &AuthService{
		tokenizer: tokenizer,
		store:     store,
		eventPub:  eventPub,
		logger:    logger,
		nonceTTL:  5 * time.Minute,
		accessTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNonce issues a fresh nonce for an address, replacing any previous
// one. The nonce must appear in the message signed during Authenticate.
func (s *AuthService) CreateNonce(ctx context.Context, address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if !addressPattern.MatchString(address) {
		return "", core.ErrInvalidAddress
	}

	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now()
	challenge := &core.Challenge{
		Address:   address,
		Nonce:     hex.EncodeToString(nonceBytes),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.nonceTTL),
	}

	if err := s.store.PutNonce(ctx, challenge); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}

	s.logger.Debug("nonce issued", "address", address)
	return challenge.Nonce, nil
}

// Authenticate verifies a signed sign-in message and issues an access token.
// The signature must recover to the claimed address and the message must
// embed the nonce previously issued to that address. Nonces are single use.
func (s *AuthService) Authenticate(ctx context.Context, address, signature, message string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if !addressPattern.MatchString(address) {
		return "", core.ErrInvalidAddress
	}

	if err := s.tokenizer.VerifySignedMessage(message, signature, address); err != nil {
		s.logger.Warn("signature verification failed", "address", address, "err", err)
		return "", fmt.Errorf("signature verification failed: %w", err)
	}

	challenge, err := s.store.TakeNonce(ctx, address)
	if err != nil {
		return "", err
	}

	if !strings.Contains(message, "Nonce: "+challenge.Nonce) {
		return "", core.ErrNonceMismatch
	}

	now := time.Now()
	session := &core.Session{
		ID:           uuid.New().String(),
		Address:      address,
		IssuedAt:     now,
		AccessExpiry: now.Add(s.accessTTL),
	}

	accessToken, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", fmt.Errorf("failed to create access token: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogin(ctx, address, session.ID); err != nil {
			// The token is already issued; a missed notification is not fatal.
			s.logger.Warn("failed to publish login event", "err", err)
		}
	}

	s.logger.Info("authenticated", "address", address, "session", session.ID)
	return accessToken, nil
}

// ValidateAccessToken parses an access token and checks expiry and revocation.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.Session, error) {
	session, err := s.tokenizer.TokenToSession(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	if time.Now().After(session.AccessExpiry) {
		return nil, core.ErrTokenExpired
	}

	invalidated, err := s.store.IsTokenInvalidated(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token invalidation: %w", err)
	}
	if invalidated {
		return nil, core.ErrTokenInvalidated
	}

	return session, nil
}

// Logout revokes an access token for the remainder of its lifetime.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	session, err := s.tokenizer.TokenToSession(accessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	// Even an expired token gets a short-lived revocation record so it
	// cannot be replayed through clock skew.
	remaining := time.Until(session.AccessExpiry)
	if remaining <= 0 {
		remaining = time.Hour
	}

	if err := s.store.InvalidateToken(ctx, session.ID, remaining); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogout(ctx, session.Address, session.ID); err != nil {
			s.logger.Warn("failed to publish logout event", "err", err)
		}
	}

	return nil
}
