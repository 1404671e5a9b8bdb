package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yanqian/familylog/internal/domain/reminder"
	apperrors "github.com/yanqian/familylog/pkg/errors"
)

// Service validates bearer tokens issued by the account service.
type Service interface {
	ValidateToken(ctx context.Context, token string) (Claims, error)
	IssueToken(subject, tokenType string, ttl time.Duration) (string, error)
	ActiveSession(ctx context.Context) (reminder.Session, bool, error)
}

type service struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

const (
	TokenTypeAccess = "access"
	TokenTypeDevice = "device"
)

// NewService constructs a Service instance.
func NewService(cfg Config, logger *slog.Logger) Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &service{
		cfg:    cfg,
		logger: logger.With("component", "auth.service"),
		now:    time.Now,
	}
}

// ValidateToken accepts access and device tokens.
func (s *service) ValidateToken(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing", nil)
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != TokenTypeAccess && claims.TokenType != TokenTypeDevice {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token type mismatch", nil)
	}
	return claims, nil
}

// IssueToken signs a token. Used by operators and tests; accounts live elsewhere.
func (s *service) IssueToken(subject, tokenType string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "subject is required", nil)
	}
	if ttl <= 0 {
		ttl = s.cfg.TokenTTL
	}
	now := s.now()
	claims := tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.cfg.Issuer,
			ID:        newTokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUnauthorized, "failed to sign token", err)
	}
	return signed, nil
}

// ActiveSession reports the configured device session. A missing, expired or
// rejected token means there is no session; that is not an error.
func (s *service) ActiveSession(ctx context.Context) (reminder.Session, bool, error) {
	if strings.TrimSpace(s.cfg.DeviceToken) == "" {
		return reminder.Session{}, false, nil
	}
	claims, err := s.ValidateToken(ctx, s.cfg.DeviceToken)
	if err != nil {
		s.logger.Warn("device session rejected", "error", err)
		return reminder.Session{}, false, nil
	}
	return reminder.Session{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt}, true, nil
}

func (s *service) parseToken(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token invalid", nil)
	}
	return Claims{
		Subject:   claims.Subject,
		TokenType: claims.TokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

func newTokenID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}

var _ reminder.SessionSource = (*service)(nil)
