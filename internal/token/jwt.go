package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/dailyphrase/internal/model"
)

// ErrNotOperator is returned for valid tokens that do not carry the admin role.
var ErrNotOperator = errors.New("token does not grant operator access")

const (
	operatorTTL  = 12 * time.Hour
	typeOperator = "operator"
)

// Claims are the claims of an operator token.
type Claims struct {
	jwt.RegisteredClaims
	Role      model.Role `json:"role"`
	TokenType string     `json:"typ"`
}

// JWT implements model.OperatorTokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: secretKey, ttl: operatorTTL, now: time.Now}
}

var _ model.OperatorTokenManager = (*JWT)(nil)

// GenerateOperatorToken signs a token for subject. Only admins may hold one.
func (j *JWT) GenerateOperatorToken(subject string, role model.Role) (string, error) {
	if role != model.RoleAdmin {
		return "", ErrNotOperator
	}

	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Role:      role,
		TokenType: typeOperator,
	})

	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign operator token: %w", err)
	}
	return signed, nil
}

func (j *JWT) ParseOperatorToken(tokenString string) (model.Operator, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return model.Operator{}, fmt.Errorf("failed to parse operator token: %w", err)
	}
	if !token.Valid {
		return model.Operator{}, fmt.Errorf("operator token is invalid")
	}
	if claims.TokenType != typeOperator {
		return model.Operator{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.Role != model.RoleAdmin {
		return model.Operator{}, ErrNotOperator
	}
	return model.Operator{Subject: claims.Subject, Role: claims.Role}, nil
}
