// Package identity signs the admin in and out and restores the session
// persisted on the device.
package identity

import (
	"context"
	"errors"
	"strconv"

	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/identity"
	"github.com/optica/admin/internal/domain/shared"
	"github.com/optica/admin/internal/infrastructure/api"
	"go.uber.org/zap"
)

// AuthAPI is the remote authentication surface
type AuthAPI interface {
	Login(ctx context.Context, creds identity.Credentials) (api.LoginResult, error)
	Register(ctx context.Context, reg identity.Registration) (api.LoginResult, error)
	Logout(ctx context.Context) error
}

// TokenChecker tells whether a stored token is known to be expired
type TokenChecker interface {
	Expired(token string) bool
}

// AuthService handles authentication operations
type AuthService struct {
	api       AuthAPI
	session   *identity.Session
	store     shared.KVStore
	tokens    TokenChecker
	validator *screen.Validator
	notifier  screen.Notifier
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	api AuthAPI,
	session *identity.Session,
	store shared.KVStore,
	tokens TokenChecker,
	notifier screen.Notifier,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = screen.NewLogNotifier(logger)
	}
	return &AuthService{
		api:       api,
		session:   session,
		store:     store,
		tokens:    tokens,
		validator: screen.NewValidator(),
		notifier:  notifier,
		logger:    logger.Named("auth"),
	}
}

// Login authenticates the admin and persists the session
func (s *AuthService) Login(ctx context.Context, creds identity.Credentials) (identity.User, error) {
	s.logger.Info("Login attempt", zap.String("email", creds.Email))

	if err := s.validator.Validate(creds); err != nil {
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: screen.ErrorText(err, "Invalid credentials")})
		return identity.User{}, err
	}
	res, err := s.api.Login(ctx, creds)
	if err != nil {
		s.logger.Warn("Login failed", zap.String("email", creds.Email), zap.Error(err))
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: screen.ErrorText(err, "Login failed")})
		return identity.User{}, err
	}
	if err := s.attach(ctx, res); err != nil {
		return identity.User{}, err
	}
	s.logger.Info("User logged in successfully", zap.Int("user_id", res.User.ID))
	return res.User, nil
}

// Register creates an account and signs it in
func (s *AuthService) Register(ctx context.Context, reg identity.Registration) (identity.User, error) {
	if err := s.validator.Validate(reg); err != nil {
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: screen.ErrorText(err, "Registration failed")})
		return identity.User{}, err
	}
	res, err := s.api.Register(ctx, reg)
	if err != nil {
		s.logger.Warn("Registration failed", zap.String("email", reg.Email), zap.Error(err))
		s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: screen.ErrorText(err, "Registration failed")})
		return identity.User{}, err
	}
	if err := s.attach(ctx, res); err != nil {
		return identity.User{}, err
	}
	s.logger.Info("User registered", zap.Int("user_id", res.User.ID))
	return res.User, nil
}

// Logout revokes the token on the server when possible and always clears
// the local session.
func (s *AuthService) Logout(ctx context.Context) error {
	if s.session.LoggedIn() {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.Warn("Remote logout failed, clearing local session anyway", zap.Error(err))
		}
	}
	return s.clear(ctx)
}

// Restore re-attaches the persisted session. It reports false when there
// is none, or when the stored token is an expired JWT, in which case the
// stored session is discarded.
func (s *AuthService) Restore(ctx context.Context) (bool, error) {
	token, ok, err := s.store.Get(ctx, shared.KeySessionToken)
	if err != nil {
		return false, err
	}
	if !ok || token == "" {
		return false, nil
	}
	if s.tokens != nil && s.tokens.Expired(token) {
		s.logger.Info("Stored token expired, discarding session")
		return false, s.clear(ctx)
	}

	var user identity.User
	if raw, ok, err := s.store.Get(ctx, shared.KeySessionUser); err != nil {
		return false, err
	} else if ok {
		if user, err = identity.DecodeUser(raw); err != nil {
			s.logger.Warn("Stored user is unreadable", zap.Error(err))
		}
	}
	s.session.Attach(user, token)
	s.logger.Info("Session restored", zap.Int("user_id", user.ID))
	return true, nil
}

// HandleUnauthorized signs out when err says the token was rejected
func (s *AuthService) HandleUnauthorized(ctx context.Context, err error) bool {
	if !errors.Is(err, shared.ErrUnauthorized) {
		return false
	}
	s.logger.Warn("Token rejected by server, signing out")
	if cerr := s.clear(ctx); cerr != nil {
		s.logger.Warn("Failed to clear session", zap.Error(cerr))
	}
	s.notifier.Notify(ctx, screen.Notification{Kind: screen.KindError, Text: "Session expired, please log in again"})
	return true
}

// Session returns the live session
func (s *AuthService) Session() *identity.Session {
	return s.session
}

// UserID returns the signed-in user id for log context, "" when signed out
func (s *AuthService) UserID() string {
	u, ok := s.session.User()
	if !ok || u.ID == 0 {
		return ""
	}
	return strconv.Itoa(u.ID)
}

func (s *AuthService) attach(ctx context.Context, res api.LoginResult) error {
	raw, err := identity.EncodeUser(res.User)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, shared.KeySessionUser, raw); err != nil {
		return err
	}
	if err := s.store.Set(ctx, shared.KeySessionToken, res.Token); err != nil {
		return err
	}
	s.session.Attach(res.User, res.Token)
	return nil
}

func (s *AuthService) clear(ctx context.Context) error {
	s.session.Clear()
	return errors.Join(
		s.store.Delete(ctx, shared.KeySessionUser),
		s.store.Delete(ctx, shared.KeySessionToken),
	)
}
