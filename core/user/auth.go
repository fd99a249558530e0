package user

import (
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/classio/classio/core"
)

var ErrInvalidToken = errors.New("invalid or expired session token")

// Provider yields the currently authenticated user, if any.
type Provider interface {
	CurrentUser() (User, bool)
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ParseToken verifies a signed JWT session token and extracts its Claims.
func ParseToken(token string) (*Claims, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return []byte(core.Conf.SecretKey), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateToken signs a JWT token string representing the user's Claims.
func GenerateToken(usr User, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:  usr.Name,
		Email: usr.Email,
		Role:  usr.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(core.Conf.SecretKey))
}

// TokenProvider is a Provider fed by a session token. It is safe for
// concurrent use.
type TokenProvider struct {
	mu  sync.RWMutex
	usr *User
}

var _ Provider = (*TokenProvider)(nil)

func NewTokenProvider() *TokenProvider {
	return &TokenProvider{}
}

// Login parses and verifies the token and installs the user it describes.
func (p *TokenProvider) Login(token string) error {
	claims, err := ParseToken(token)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.usr = &User{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}
	p.mu.Unlock()
	return nil
}

func (p *TokenProvider) Logout() {
	p.mu.Lock()
	p.usr = nil
	p.mu.Unlock()
}

func (p *TokenProvider) CurrentUser() (User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.usr == nil {
		return User{}, false
	}
	return *p.usr, true
}

// StaticProvider always yields the same user; used in tests and tooling.
type StaticProvider struct {
	User User
}

var _ Provider = StaticProvider{}

func (p StaticProvider) CurrentUser() (User, bool) {
	return p.User, true
}
