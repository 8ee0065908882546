// Package passport issues and verifies short-lived signed attribute
// bearer tokens.
package passport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	"github.com/dev-mohitbeniwal/themis/fetcher"
	"github.com/dev-mohitbeniwal/themis/fetcher/registry"
	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/model"
)

const (
	ID = "passport"

	DefaultAlgorithm = "HS256"
	DefaultIssuer    = "themis"
	DefaultTTL       = 7200

	idPrefix = "psp_"
)

type Config struct {
	JWTSecret        string `mapstructure:"jwt_secret" validate:"required"`
	JWTAlgorithm     string `mapstructure:"jwt_algorithm" validate:"oneof=HS256 HS384 HS512"`
	JWTIssuer        string `mapstructure:"jwt_issuer" validate:"required"`
	JWTDefaultTTL    int64  `mapstructure:"jwt_default_ttl" validate:"gt=0"`
	RequiresRegistry bool   `mapstructure:"requires_registry"`
}

func DefaultConfig() *Config {
	return &Config{
		JWTAlgorithm:  DefaultAlgorithm,
		JWTIssuer:     DefaultIssuer,
		JWTDefaultTTL: DefaultTTL,
	}
}

// Claims is the passport payload: registered claims plus the attribute bag.
type Claims struct {
	Attributes model.Attributes `json:"attr"`
	jwt.RegisteredClaims
}

// EntityGetter is the registry capability passports need.
type EntityGetter interface {
	Get(ctx context.Context, uri string) (*model.Entity, error)
}

// Registration wires passports into a fetcher.Factory.
func Registration() fetcher.Registration {
	return fetcher.Define(DefaultConfig, func(_ context.Context, cfg *Config) (fetcher.Fetcher, error) {
		return New(*cfg)
	}, func(f fetcher.Fetcher) fetcher.RouteRegistrar {
		return NewController(f.(*Passport)).RegisterRoutes
	})
}

type Passport struct {
	cfg      Config
	secret   []byte
	method   jwt.SigningMethod
	registry EntityGetter
	now      func() time.Time
}

func New(cfg Config) (*Passport, error) {
	method := jwt.GetSigningMethod(cfg.JWTAlgorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: unsupported passport algorithm %q", themis_errors.ErrInvalidFetcherConfig, cfg.JWTAlgorithm)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: jwt_secret is required", themis_errors.ErrInvalidFetcherConfig)
	}
	return &Passport{
		cfg:    cfg,
		secret: []byte(cfg.JWTSecret),
		method: method,
		now:    time.Now,
	}, nil
}

// PostInit binds the registry when subjects must be registered.
func (p *Passport) PostInit(_ context.Context, factory *fetcher.Factory) error {
	if !p.cfg.RequiresRegistry {
		return nil
	}
	f, err := factory.Get(registry.ID)
	if err != nil {
		return fmt.Errorf("passport requires registry but registry fetcher is not initialized: %w", err)
	}
	getter, ok := f.(EntityGetter)
	if !ok {
		return fmt.Errorf("%w: registry fetcher cannot look up entities", themis_errors.ErrInvalidFetcherConfig)
	}
	p.registry = getter
	return nil
}

// BindRegistry attaches the entity lookup used when subjects must be
// registered.
func (p *Passport) BindRegistry(getter EntityGetter) {
	p.registry = getter
}

// Issue signs a passport for uri. With a registry bound, the subject must be
// registered and stored attributes fill in keys the caller did not supply.
func (p *Passport) Issue(ctx context.Context, uri string, attrs model.Attributes, ttl *int64) (*model.PassportIssueResponse, error) {
	token, jti, expiresIn, err := p.issue(ctx, uri, attrs, ttl)
	if err != nil {
		logger.Warn("Passport issuance FAILURE", zap.String("uri", uri), zap.Error(err))
		return nil, err
	}
	logger.Info("Passport issuance SUCCESS", zap.String("uri", uri), zap.String("jti", jti))
	return &model.PassportIssueResponse{Passport: token, PassportID: jti, ExpiresIn: expiresIn}, nil
}

func (p *Passport) issue(ctx context.Context, uri string, attrs model.Attributes, ttl *int64) (string, string, int64, error) {
	if uri == "" {
		return "", "", 0, fmt.Errorf("%w: uri is required", themis_errors.ErrSchemaViolation)
	}
	expiresIn := p.cfg.JWTDefaultTTL
	if ttl != nil {
		expiresIn = *ttl
	}
	if expiresIn <= 0 {
		return "", "", 0, fmt.Errorf("%w: ttl must be positive", themis_errors.ErrSchemaViolation)
	}

	merged := make(model.Attributes)
	if p.cfg.RequiresRegistry {
		if p.registry == nil {
			return "", "", 0, fmt.Errorf("%w: %s", themis_errors.ErrFetcherNotInitialized, registry.ID)
		}
		entity, err := p.registry.Get(ctx, uri)
		if err != nil {
			if errors.Is(err, themis_errors.ErrEntityNotFound) {
				return "", "", 0, fmt.Errorf("%w: %s", themis_errors.ErrUnregisteredSubject, uri)
			}
			return "", "", 0, err
		}
		for k, v := range entity.AttributeMap() {
			merged[k] = v
		}
	}
	for k, v := range attrs {
		merged[k] = v
	}

	now := p.now()
	jti := newPassportID()
	claims := Claims{
		Attributes: merged,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   uri,
			Issuer:    p.cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiresIn) * time.Second)),
		},
	}
	token, err := jwt.NewWithClaims(p.method, claims).SignedString(p.secret)
	if err != nil {
		return "", "", 0, fmt.Errorf("sign passport: %w", err)
	}
	return token, jti, expiresIn, nil
}

// Verify checks signature, algorithm, issuer and the exp/iat window.
func (p *Passport) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{p.method.Alg()}),
		jwt.WithIssuer(p.cfg.JWTIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", themis_errors.ErrInvalidPassport, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid claims", themis_errors.ErrInvalidPassport)
	}
	if claims.IssuedAt == nil || !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return nil, fmt.Errorf("%w: exp must follow iat", themis_errors.ErrInvalidPassport)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", themis_errors.ErrInvalidPassport)
	}
	return claims, nil
}

// FetchAttributes verifies the passport and returns its attributes with
// "uri" set to the subject.
func (p *Passport) FetchAttributes(_ context.Context, token string) (model.Attributes, error) {
	claims, err := p.Verify(token)
	if err != nil {
		return nil, err
	}
	attrs := claims.Attributes.Clone()
	attrs["uri"] = model.StringValue(claims.Subject)
	return attrs, nil
}

// MatchURI claims inputs shaped like a compact JWS whose header names an alg.
func (p *Passport) MatchURI(uri string) bool {
	return LooksLikeToken(uri)
}

func LooksLikeToken(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return false
	}
	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	var fields map[string]any
	if err := json.Unmarshal(header, &fields); err != nil {
		return false
	}
	_, ok := fields["alg"]
	return ok
}

func newPassportID() string {
	return idPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
