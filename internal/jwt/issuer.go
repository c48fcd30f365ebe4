// Package jwt emite y valida los bearer tokens de sesión (HS256).
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired indica un token vencido.
	ErrTokenExpired = errors.New("jwt: token expired")
	// ErrTokenInvalid indica firma, formato o claims inválidos.
	ErrTokenInvalid = errors.New("jwt: token invalid")
	// ErrWeakSecret indica un secreto HMAC demasiado corto.
	ErrWeakSecret = errors.New("jwt: secret must be at least 32 bytes")
)

const (
	DefaultTTL = 24 * time.Hour
	leeway     = 30 * time.Second
)

// Issuer firma y valida tokens HS256 con un secreto compartido.
type Issuer struct {
	Iss    string        // "iss"
	TTL    time.Duration // vida del token
	secret []byte
	now    func() time.Time
}

// NewIssuer crea un Issuer. ttl <= 0 usa DefaultTTL.
func NewIssuer(iss string, secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		Iss:    iss,
		TTL:    ttl,
		secret: append([]byte(nil), secret...),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Issue emite un token para subject y devuelve su expiración.
func (i *Issuer) Issue(subject string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.TTL)
	claims := jwtv5.RegisteredClaims{
		Issuer:    i.Iss,
		Subject:   subject,
		IssuedAt:  jwtv5.NewNumericDate(now),
		NotBefore: jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(exp),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

// Verify valida firma, iss, exp y nbf, y devuelve el subject.
func (i *Issuer) Verify(token string) (string, error) {
	var claims jwtv5.RegisteredClaims
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithLeeway(leeway),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(i.now),
	}
	if i.Iss != "" {
		opts = append(opts, jwtv5.WithIssuer(i.Iss))
	}
	_, err := jwtv5.ParseWithClaims(token, &claims, func(*jwtv5.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	switch {
	case err == nil:
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return "", ErrTokenExpired
	default:
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing sub", ErrTokenInvalid)
	}
	return claims.Subject, nil
}
