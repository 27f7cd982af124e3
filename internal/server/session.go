package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"paketomat/internal/portal"
)

// Portal is the subset of portal.Client the label service uses
type Portal interface {
	Senders(ctx context.Context) ([]portal.Sender, error)
	CreateRecipient(ctx context.Context, r *portal.Recipient) error
	FindRoute(ctx context.Context, senderID int, r portal.Recipient, weight decimal.Decimal) (portal.Route, error)
	CreateParcel(ctx context.Context, req portal.ParcelRequest) ([]byte, error)
	TrackingNumber(ctx context.Context, referenceNumber string) (string, error)
	CancelParcel(ctx context.Context, trackingNumber string) error
	ParcelWeight(ctx context.Context, trackingNumber string) (decimal.Decimal, error)
}

// Reauthenticator is implemented by portals that can tell an expired
// session apart and log in again
type Reauthenticator interface {
	SessionActive(ctx context.Context) (bool, error)
	Login(ctx context.Context, username, password string) error
}

// Credentials are used to log an expired session back in
type Credentials struct {
	Username string
	Password string
}

// Session serializes access to one logged-in portal session. The portal
// tracks state per session, so requests must not interleave.
type Session struct {
	slot   chan struct{}
	portal Portal

	creds  *Credentials
	logger *slog.Logger
}

// NewSession wraps an authenticated portal client
func NewSession(p Portal) *Session {
	return &Session{
		slot:   make(chan struct{}, 1),
		portal: p,
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithRelogin lets the session log in again when the portal expired it.
// It has no effect when the portal cannot report its session state.
func (s *Session) WithRelogin(creds Credentials, logger *slog.Logger) *Session {
	s.creds = &creds
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Do runs fn with exclusive use of the portal. It gives up waiting when ctx
// is done. When fn fails because the portal session expired, the session is
// logged in again and fn runs once more.
func (s *Session) Do(ctx context.Context, fn func(Portal) error) error {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", errRequestCancelled, ctx.Err())
	}
	defer func() { <-s.slot }()

	err := fn(s.portal)
	if err == nil || !s.expired(ctx, err) {
		return err
	}

	s.logger.Warn("Portal session expired, logging in again", "error", err)
	if err := s.portal.(Reauthenticator).Login(ctx, s.creds.Username, s.creds.Password); err != nil {
		s.logger.Error("Portal re-login failed", "error", err)
		return fmt.Errorf("portal session expired: %w", err)
	}
	return fn(s.portal)
}

// expired reports whether err came from a page the portal served to a
// logged-out session
func (s *Session) expired(ctx context.Context, err error) bool {
	if s.creds == nil {
		return false
	}
	switch portal.KindOf(err) {
	case portal.KindExtraction, portal.KindUnexpectedResponse:
	default:
		return false
	}
	r, ok := s.portal.(Reauthenticator)
	if !ok {
		return false
	}

	active, checkErr := r.SessionActive(ctx)
	if checkErr != nil {
		s.logger.Debug("Portal session check failed", "error", checkErr)
		return false
	}
	return !active
}
