package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var ErrInvalidToken = errors.New("invalid auth token")

type AuthService interface {
	GenerateToken(userID, email string) (string, error)
	ParseToken(tokenString string) (string, error)
}

type authServiceImpl struct {
	secretKey string
}

func NewAuthService(secretKey string) AuthService {
	return &authServiceImpl{
		secretKey: secretKey,
	}
}

func (that *authServiceImpl) GenerateToken(userID, email string) (string, error) {
	claims := jwt.MapClaims{}
	claims["sub"] = userID
	claims["email"] = email
	claims["exp"] = time.Now().Add(time.Hour * 24).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(that.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken - validates a token and returns the user ID it carries.
func (that *authServiceImpl) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, token.Header["alg"])
		}
		return []byte(that.secretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return userID, nil
}
