package auth

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalid = errors.New("invalid token")

// Claims identify the UI shell holding a bridge token.
type Claims struct {
	Shell string `json:"shell"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 bridge tokens.
type Issuer struct {
	secret []byte
}

// NewIssuer uses secret when given; otherwise a random per-process key, so
// tokens do not survive a restart.
func NewIssuer(secret string) *Issuer {
	if secret != "" {
		return &Issuer{secret: []byte(secret)}
	}
	key := make([]byte, 32)
	_, _ = rand.Read(key)
	return &Issuer{secret: key}
}

func (i *Issuer) Generate(shell string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Shell: shell,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   shell,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalid
	}
	if claims, ok := token.Claims.(*Claims); ok {
		return claims, nil
	}
	return nil, ErrInvalid
}

// HashSecret produces the bcrypt hash configured as the shell secret.
func HashSecret(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckSecret reports whether secret matches a HashSecret result.
func CheckSecret(hash, secret string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
