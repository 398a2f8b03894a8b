package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"todoSync/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

type Credential struct {
	Username     string
	PasswordHash string
}

// AuthService проверяет пароли и выдаёт подписанные HS256 токены
type AuthService struct {
	users  map[string][]byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(secret string, ttl time.Duration, users []Credential) (*AuthService, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("генерация ключа подписи: %w", err)
		}
		logger.Warn("Service: Ключ подписи не задан, токены не переживут перезапуск")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	registry := make(map[string][]byte, len(users))
	for _, u := range users {
		if u.Username == "" {
			return nil, errors.New("пустое имя пользователя в конфиге")
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("хеш пароля пользователя %s: %w", u.Username, err)
		}
		registry[u.Username] = []byte(u.PasswordHash)
	}

	return &AuthService{
		users:  registry,
		secret: key,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// IssueToken сверяет пароль и возвращает токен с именем пользователя в sub
func (s *AuthService) IssueToken(ctx context.Context, username, password string) (string, error) {
	hash, ok := s.users[username]
	if !ok {
		logger.Info("Service: Неизвестный пользователь", zap.String("username", username))
		return "", NewInvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		logger.Info("Service: Неверный пароль", zap.String("username", username))
		return "", NewInvalidCredentials()
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}
	return token, nil
}

// Authenticate возвращает владельца токена
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", NewUnauthorized("Invalid token.")
	}

	if _, ok := s.users[claims.Subject]; !ok {
		return "", NewUnauthorized("Invalid token.")
	}
	return claims.Subject, nil
}
