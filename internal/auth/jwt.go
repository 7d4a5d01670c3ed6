package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is fixed; there is no refresh or revocation.
const TokenLifetime = 24 * time.Hour

// Claims is the decoded payload of a Mintern token. The JSON names match what
// the web client decodes.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// Validate is called by the jwt parser after the signature and the registered
// claims have been checked.
func (c Claims) Validate() error {
	if c.UserID == "" || c.Email == "" {
		return errors.New("subject claims missing")
	}
	if !c.Role.Valid() {
		return errors.New("unknown role")
	}
	if c.IssuedAt == nil {
		return errors.New("iat missing")
	}
	return nil
}

type Codec struct {
	secret []byte
	now    func() time.Time
}

type CodecOption func(*Codec)

// WithClock overrides the wall clock used for issuing and verifying tokens.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	c := &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Codec) Issue(subjectID, email string, role Role) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: subjectID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks the signature first and the expiry second. An expired token is
// rejected from the exact expiry second on, no leeway is granted.
func (c *Codec) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformedToken
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
