package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/yichen-lab/congee-pos/internal/common"
)

const defaultAccessTTL = 12 * time.Hour

// RoleOwner is the subject carried by owner access tokens. Register
// endpoints are open on the local network; owner endpoints require it.
const RoleOwner = "owner"

// Service verifies the owner PIN and issues access tokens for the
// management screens.
type Service struct {
	secret    []byte
	pinHash   string
	accessTTL time.Duration
	now       func() time.Time
	signer    jwa.SignatureAlgorithm
	validator TokenValidator
	issuer    string
	audience  string
	clockSkew time.Duration
}

// Config configures the auth service.
type Config struct {
	Secret         string
	OwnerPINHash   string
	AccessTokenTTL time.Duration
	Issuer         string
	Audience       string
	ClockSkew      time.Duration
	Now            func() time.Time
}

// LoginResult bundles token material returned after a successful login.
type LoginResult struct {
	Role        string    `json:"role"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// NewService constructs a Service instance with sane defaults.
func NewService(cfg Config) (*Service, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	pinHash := strings.TrimSpace(cfg.OwnerPINHash)
	if pinHash == "" {
		return nil, errors.New("auth: owner pin hash is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "congee-pos"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "congee-pos-register"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		secret:    []byte(secret),
		pinHash:   pinHash,
		accessTTL: accessTTL,
		now:       nowFn,
		signer:    jwa.HS256,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: clockSkew,
			Algorithm: jwa.HS256,
		},
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
	}, nil
}

// Login verifies the owner PIN and returns a signed access token.
func (s *Service) Login(ctx context.Context, pin string) (LoginResult, error) {
	if strings.TrimSpace(pin) == "" {
		return LoginResult{}, common.NewAppError("UNAUTHORIZED", "pin is required", http.StatusUnauthorized, nil)
	}
	match, err := argon2id.ComparePasswordAndHash(pin, s.pinHash)
	if err != nil {
		return LoginResult{}, common.NewAppError("INTERNAL", "verify pin", http.StatusInternalServerError, err)
	}
	if !match {
		return LoginResult{}, common.NewAppError("UNAUTHORIZED", "incorrect pin", http.StatusUnauthorized, nil)
	}
	token, expiresAt, err := s.signAccessToken(RoleOwner)
	if err != nil {
		return LoginResult{}, common.NewAppError("INTERNAL", "sign token", http.StatusInternalServerError, err)
	}
	return LoginResult{Role: RoleOwner, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// ParseAccessToken validates a token and returns the role it carries.
func (s *Service) ParseAccessToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if s.validator.Algorithm != "" && algorithm != s.validator.Algorithm {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret))
	if err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	return parsed.Subject(), nil
}

func (s *Service) signAccessToken(role string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	builder := jwt.NewBuilder().
		Subject(role).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt)
	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", fmt.Errorf("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}

// HashPIN produces an argon2id hash suitable for the OWNER_PIN_HASH setting.
func HashPIN(pin string) (string, error) {
	if strings.TrimSpace(pin) == "" {
		return "", errors.New("auth: pin is required")
	}
	return argon2id.CreateHash(pin, argon2id.DefaultParams)
}
