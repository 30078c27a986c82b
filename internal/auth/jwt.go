package auth

import (
	"errors"
	"strconv"
	"time"

	"fleet-backend/internal/config"
	"fleet-backend/internal/models"
	"fleet-backend/internal/timeutil"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the user snapshot taken at login. Middleware reloads the
// user by UserID, so Role here is informational.
type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	ttl := time.Duration(cfg.JWT.ExpirationHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{
		secret: []byte(cfg.JWT.Secret),
		issuer: cfg.JWT.Issuer,
		ttl:    ttl,
	}
}

// GenerateToken signs an HS256 token for user.
func (j *JWTManager) GenerateToken(user *models.User) (string, error) {
	if len(j.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := timeutil.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// ValidateToken parses tokenString and returns its claims. Only HS256 is
// accepted, and the issuer must match when one is configured.
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
