// Package auth gates the administrator API: a password check starts a login,
// an emailed one-time code completes it, and the result is a signed session
// token.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrInvalidToken       = errors.New("invalid or expired session token")
)

type Config struct {
	AdminEmail   string
	PasswordHash string
	Secret       []byte
	CodeTTL      time.Duration
	SessionTTL   time.Duration
}

// Claims are carried by admin session tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Challenge is the outcome of a successful password check. The code is only
// exposed in development mode, when no mailer is configured.
type Challenge struct {
	Message          string `json:"message"`
	DevelopmentMode  bool   `json:"developmentMode"`
	VerificationCode string `json:"verificationCode,omitempty"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	cfg    Config
	Codes  CodeStore
	Mailer Mailer
	Log    logrus.FieldLogger
	Now    func() time.Time
}

// NewService builds the admin gate. A nil mailer puts it in development mode.
func NewService(cfg Config, codes CodeStore, mailer Mailer, log logrus.FieldLogger) (*Service, error) {
	if cfg.AdminEmail == "" || cfg.PasswordHash == "" {
		return nil, errors.New("admin email and password hash must be set")
	}
	if len(cfg.Secret) < 16 {
		return nil, errors.New("session secret must be at least 16 bytes")
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 10 * time.Minute
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 8 * time.Hour
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{cfg: cfg, Codes: codes, Mailer: mailer, Log: log, Now: time.Now}, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) isAdmin(email string) bool {
	given := strings.ToLower(strings.TrimSpace(email))
	want := strings.ToLower(strings.TrimSpace(s.cfg.AdminEmail))
	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}

// StartLogin checks the admin password and issues a verification code.
func (s *Service) StartLogin(ctx context.Context, email, password string) (Challenge, error) {
	emailOK := s.isAdmin(email)
	// always run bcrypt so the response time doesn't reveal the address
	pwErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password))
	if !emailOK || pwErr != nil {
		s.Log.WithField("email", email).Warn("admin login rejected")
		return Challenge{}, ErrInvalidCredentials
	}

	code, err := newCode()
	if err != nil {
		return Challenge{}, err
	}
	if err := s.Codes.Save(ctx, email, code, s.cfg.CodeTTL); err != nil {
		return Challenge{}, err
	}

	if s.Mailer == nil {
		s.Log.Warn("no mailer configured; returning verification code in response")
		return Challenge{
			Message:          "Verification code generated",
			DevelopmentMode:  true,
			VerificationCode: code,
		}, nil
	}
	if err := s.Mailer.SendCode(ctx, s.cfg.AdminEmail, code); err != nil {
		return Challenge{}, err
	}
	s.Log.Info("admin verification code sent")
	return Challenge{Message: "Verification code sent"}, nil
}

// CompleteLogin consumes the code and returns a session token.
func (s *Service) CompleteLogin(ctx context.Context, email, code string) (Session, error) {
	if !s.isAdmin(email) {
		return Session{}, ErrInvalidCode
	}
	stored, err := s.Codes.Consume(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(stored)) != 1 {
		return Session{}, ErrInvalidCode
	}

	session, err := s.issue(s.cfg.AdminEmail)
	if err != nil {
		return Session{}, err
	}
	s.Log.WithField("expiresAt", session.ExpiresAt).Info("admin session issued")
	return session, nil
}

func (s *Service) issue(email string) (Session, error) {
	now := s.now()
	expires := now.Add(s.cfg.SessionTTL)
	claims := &Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return Session{}, fmt.Errorf("error signing session token: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires.Truncate(time.Second)}, nil
}

// Verify parses a session token and checks it grants the admin role.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Role != RoleAdmin || !s.isAdmin(claims.Subject) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
