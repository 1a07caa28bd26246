package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims is the payload baked into every session token.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// AuthEngine issues and verifies session tokens and handles password
// hashing. The signing secret and token lifetime come from configuration;
// there is no default secret.
type AuthEngine struct {
	logger     *zap.Logger
	secretKey  []byte
	tokenTTL   time.Duration
	bcryptCost int
}

func NewAuthEngine(secret string, tokenTTL time.Duration, bcryptCost int, logger *zap.Logger) (*AuthEngine, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	logger.Info("Auth Engine initialized", zap.Duration("token_ttl", tokenTTL))

	return &AuthEngine{
		logger:     logger,
		secretKey:  []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}, nil
}

// HashPassword returns the bcrypt hash of plaintext.
func (e *AuthEngine) HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), e.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plaintext matches the stored bcrypt hash.
func (e *AuthEngine) CheckPassword(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

// IssueToken creates a signed JWT for a user. The token expires tokenTTL
// after issuance.
func (e *AuthEngine) IssueToken(username, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(e.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(e.secretKey)
}

// VerifyToken parses and validates a session token.
func (e *AuthEngine) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return e.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Identify resolves an Authorization header into an authenticated identity.
// A missing header, malformed value, bad signature, or expired token all
// yield nil: the request proceeds unauthenticated and the operation decides
// what that means.
func (e *AuthEngine) Identify(authHeader string) *Claims {
	if authHeader == "" {
		return nil
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := e.VerifyToken(tokenString)
	if err != nil {
		return nil
	}
	return claims
}
