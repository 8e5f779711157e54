package service

import (
	"context"
	"fmt"

	"github.com/gabzin/SerialBoxBot/internal/api/auth"
	"github.com/gabzin/SerialBoxBot/internal/api/sse"
	"github.com/gabzin/SerialBoxBot/internal/database/models"
)

// UserDirectory resolves or creates platform users by telegram id.
type UserDirectory interface {
	UpsertUser(ctx context.Context, user *models.User) (*models.User, error)
}

// SessionStore remembers which login session ids the API issued.
type SessionStore interface {
	CreateLoginSession(ctx context.Context, sessionID string) error
	LoginSessionExists(ctx context.Context, sessionID string) (bool, error)
}

// TokenResult is the outcome of one authentication. AccessToken is always
// populated; SentViaSSE reports whether it already left over the stream,
// in which case the HTTP body must not repeat it.
type TokenResult struct {
	AccessToken string
	User        *models.User
	SentViaSSE  bool
}

type tokenEvent struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

// AuthService coordinates the handoff: verify the identity assertion,
// resolve the user, mint the access token, and deliver it over the
// waiting stream when one exists.
type AuthService struct {
	verifier *auth.Verifier
	broker   *sse.Broker
	users    UserDirectory
	sessions SessionStore
	secret   []byte
}

func NewAuthService(verifier *auth.Verifier, broker *sse.Broker, users UserDirectory, sessions SessionStore, secret []byte) *AuthService {
	return &AuthService{
		verifier: verifier,
		broker:   broker,
		users:    users,
		sessions: sessions,
		secret:   secret,
	}
}

func (s *AuthService) Verifier() *auth.Verifier {
	return s.verifier
}

func (s *AuthService) Broker() *sse.Broker {
	return s.broker
}

// NewLoginSession issues a fresh session id and records it so the stream
// and bot endpoints can tell issued ids from junk.
func (s *AuthService) NewLoginSession(ctx context.Context) (string, error) {
	id, err := sse.NewSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	if err := s.sessions.CreateLoginSession(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *AuthService) LoginSessionExists(ctx context.Context, sessionID string) (bool, error) {
	return s.sessions.LoginSessionExists(ctx, sessionID)
}

// IssueToken authenticates rawInitData and mints an access token. With an
// empty sessionID the token is returned directly. Otherwise one push to
// the session's stream is attempted; when the push fails the token still
// comes back in the result and the caller responds with it synchronously.
// No retries anywhere in this path; a bot retry starts the whole call
// over and may legitimately deliver a second token.
func (s *AuthService) IssueToken(ctx context.Context, rawInitData, sessionID string) (*TokenResult, error) {
	claim, err := s.verifier.Verify(rawInitData)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpsertUser(ctx, &models.User{
		TelegramID:   claim.TelegramID,
		Username:     claim.Username,
		FirstName:    claim.FirstName,
		LastName:     claim.LastName,
		LanguageCode: claim.LanguageCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	accessToken, err := auth.GenerateAccessToken(user.TelegramID, user.ID, s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	result := &TokenResult{AccessToken: accessToken, User: user}
	if sessionID == "" {
		return result, nil
	}

	result.SentViaSSE = s.broker.Push(sessionID, "token", tokenEvent{
		AccessToken: accessToken,
		User:        user,
	})
	return result, nil
}
