package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRole is stamped on every token issued for a registered user.
const DefaultRole = "user"

// Minimum secret length accepted by NewManager.
const MinSecretLength = 32

// Config holds token lifetimes and the two HMAC secrets.
//
// AccessSecret and RefreshSecret must differ so a refresh token can never be
// presented as an access token.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	RequireIAT    bool
	MaxFutureIAT  time.Duration
}

// Manager issues and parses HS256 access and refresh tokens.
type Manager struct {
	config Config
	now    func() time.Time
}

// Claims is the payload of both token kinds.
type Claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Pair is one issued access/refresh token pair.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

var (
	ErrMissingSecret = errors.New("jwt: access and refresh secrets are required")
	ErrWeakSecret    = errors.New("jwt: secret too short")
	ErrSharedSecret  = errors.New("jwt: access and refresh secrets must differ")
)

func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL must not be shorter than access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	if err := CheckSecrets(cfg.AccessSecret, cfg.RefreshSecret); err != nil {
		return nil, err
	}

	return &Manager{config: cfg, now: time.Now}, nil
}

// CheckSecrets reports whether the pair is usable for signing.
func CheckSecrets(access, refresh []byte) error {
	if len(access) == 0 || len(refresh) == 0 {
		return ErrMissingSecret
	}
	if len(access) < MinSecretLength || len(refresh) < MinSecretLength {
		return fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLength)
	}
	if string(access) == string(refresh) {
		return ErrSharedSecret
	}
	return nil
}

func (j *Manager) AccessTTL() time.Duration {
	return j.config.AccessTTL
}

func (j *Manager) RefreshTTL() time.Duration {
	return j.config.RefreshTTL
}

// IssuePair signs an access token and a refresh token for subject.
// Either signing failure fails the whole call.
func (j *Manager) IssuePair(subject string) (Pair, error) {
	now := j.now()

	access, err := j.sign(subject, now, j.config.AccessTTL, j.config.AccessSecret)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := j.sign(subject, now, j.config.RefreshTTL, j.config.RefreshSecret)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(j.config.AccessTTL),
		RefreshExpiresAt: now.Add(j.config.RefreshTTL),
	}, nil
}

func (j *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	return j.parse(tokenStr, j.config.AccessSecret)
}

func (j *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	return j.parse(tokenStr, j.config.RefreshSecret)
}

func (j *Manager) sign(subject string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := Claims{
		ID:   subject,
		Role: DefaultRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.config.Issuer,
		},
	}
	if j.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{j.config.Audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (j *Manager) parse(tokenStr string, secret []byte) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(j.config.Leeway))
	}
	if j.config.RequireIAT {
		options = append(options, jwt.WithIssuedAt())
	}
	if j.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(j.config.Issuer))
	}
	if j.config.Audience != "" {
		options = append(options, jwt.WithAudience(j.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.ID == "" {
		return nil, errors.New("token has no subject id")
	}
	if claims.IssuedAt != nil && j.config.MaxFutureIAT > 0 {
		maxAllowed := j.now().Add(j.config.MaxFutureIAT)
		if claims.IssuedAt.Time.After(maxAllowed) {
			return nil, errors.New("token iat too far in the future")
		}
	}

	return claims, nil
}
