package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/weekplan/internal/config"
	"github.com/fdg312/weekplan/internal/mailer"
	"github.com/fdg312/weekplan/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrEmailTaken         = errors.New("email already registered")
)

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, v ...any)
}

// SessionListener is notified after sign-in and sign-out.
type SessionListener func(ctx context.Context, event SessionEvent, session Session)

// Service: email/password авторизация и JWT-сессии
type Service struct {
	config   *config.Config
	users    storage.UsersStorage
	profiles storage.ProfilesStorage
	mail     mailer.Sender
	logger   Logger
	now      func() time.Time

	mu        sync.RWMutex
	listeners []SessionListener
	revoked   map[string]time.Time // jti -> token expiry
}

func NewService(cfg *config.Config, users storage.UsersStorage, profiles storage.ProfilesStorage, mail mailer.Sender, logger Logger) *Service {
	return &Service{
		config:   cfg,
		users:    users,
		profiles: profiles,
		mail:     mail,
		logger:   logger,
		now:      time.Now,
		revoked:  make(map[string]time.Time),
	}
}

// OnSessionChange registers a listener for sign-in / sign-out.
func (s *Service) OnSessionChange(listener SessionListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}

func (s *Service) notify(ctx context.Context, event SessionEvent, session Session) {
	s.mu.RLock()
	listeners := append([]SessionListener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, event, session)
	}
}

// SignUp creates an account and returns a session for it.
func (s *Service) SignUp(ctx context.Context, email, password string) (*SessionResponse, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < s.minPasswordLength() {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &storage.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.sendWelcome(ctx, user.Email)

	resp, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	resp.Created = true
	return resp, nil
}

// SignIn checks credentials of an existing account.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SessionResponse, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// SignInOrSignUp signs in and, when no account has the email, registers
// one with the same credentials. A wrong password for an existing account
// stays ErrInvalidCredentials.
func (s *Service) SignInOrSignUp(ctx context.Context, email, password string) (*SessionResponse, error) {
	resp, err := s.SignIn(ctx, email, password)
	if err == nil || !errors.Is(err, ErrInvalidCredentials) {
		return resp, err
	}

	normalized, nerr := normalizeEmail(email)
	if nerr != nil {
		return nil, nerr
	}
	if _, lookupErr := s.users.GetUserByEmail(ctx, normalized); lookupErr == nil {
		return nil, ErrInvalidCredentials
	} else if !errors.Is(lookupErr, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", lookupErr)
	}

	return s.SignUp(ctx, email, password)
}

// EnsureProfile upserts the public profile row of the user.
func (s *Service) EnsureProfile(ctx context.Context, user *storage.User) error {
	_, err := s.profiles.UpsertProfile(ctx, storage.Profile{ID: user.ID, Email: user.Email})
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// SignOut revokes the token and notifies listeners.
func (s *Service) SignOut(ctx context.Context, tokenString string) error {
	session, err := s.VerifyJWT(tokenString)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.revoked[session.TokenID] = session.ExpiresAt
	s.pruneRevokedLocked()
	s.mu.Unlock()

	s.notify(ctx, SessionSignedOut, *session)
	return nil
}

// GetSession returns the session of a token, or nil when the token is
// missing, invalid, expired or revoked.
func (s *Service) GetSession(tokenString string) *Session {
	if strings.TrimSpace(tokenString) == "" {
		return nil
	}
	session, err := s.VerifyJWT(tokenString)
	if err != nil {
		return nil
	}
	return session
}

func (s *Service) startSession(ctx context.Context, user *storage.User) (*SessionResponse, error) {
	// профиль не критичен для входа
	if err := s.EnsureProfile(ctx, user); err != nil {
		s.logf("WARN auth: ensure profile user=%s: %v", user.ID, err)
	}

	ttl := time.Duration(s.config.JWTTTLMinutes) * time.Minute
	token, session, err := s.generateJWTWithTTL(user.ID, user.Email, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	s.notify(ctx, SessionSignedIn, session)

	return &SessionResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		UserID:      user.ID,
		Email:       user.Email,
	}, nil
}

func (s *Service) sendWelcome(ctx context.Context, email string) {
	if s.mail == nil {
		return
	}
	msg, err := mailer.WelcomeMessage(email, s.config.AppPublicURL)
	if err != nil {
		s.logf("WARN auth: welcome mail: %v", err)
		return
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logf("WARN auth: welcome mail to=%s: %v", email, err)
	}
}

func (s *Service) generateJWTWithTTL(userID, email string, ttl time.Duration) (string, Session, error) {
	now := s.now()
	exp := now.Add(ttl)
	jti := uuid.New().String()

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"jti":   jti,
		"iss":   s.config.JWTIssuer,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", Session{}, err
	}

	return signed, Session{
		UserID:    userID,
		Email:     email,
		TokenID:   jti,
		ExpiresAt: time.Unix(exp.Unix(), 0).UTC(),
	}, nil
}

// VerifyJWT: проверка JWT токена
func (s *Service) VerifyJWT(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithIssuer(s.config.JWTIssuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	jti, _ := claims["jti"].(string)

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time.UTC()
	}

	if jti != "" {
		s.mu.RLock()
		_, revoked := s.revoked[jti]
		s.mu.RUnlock()
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	return &Session{UserID: sub, Email: email, TokenID: jti, ExpiresAt: expiresAt}, nil
}

func (s *Service) pruneRevokedLocked() {
	now := s.now()
	for jti, exp := range s.revoked {
		if !exp.IsZero() && exp.Before(now) {
			delete(s.revoked, jti)
		}
	}
}

func (s *Service) minPasswordLength() int {
	if s.config.PasswordMinLength > 0 {
		return s.config.PasswordMinLength
	}
	return 6
}

func (s *Service) logf(format string, v ...any) {
	if s.logger != nil {
		s.logger.Printf(format, v...)
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
