package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"fitdex_battle/internal/domain"
	"fitdex_battle/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

var (
	ErrInvalidToken    = errors.New("невалидный токен")
	ErrInvalidInitData = errors.New("невалидные данные Telegram")
	ErrTelegramOff     = errors.New("вход через Telegram не настроен")
)

// сколько живет подпись Telegram init_data
const initDataMaxAge = time.Hour

// выдает и проверяет токены, заводит профили при входе
type AuthService struct {
	users    *repository.UserRepository
	audit    *AuditService
	secret   []byte
	ttl      time.Duration
	botToken string
	clock    clockwork.Clock
}

func NewAuthService(users *repository.UserRepository, audit *AuditService, secret string, ttl time.Duration, botToken string, clock clockwork.Clock) *AuthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		audit:    audit,
		secret:   []byte(secret),
		ttl:      ttl,
		botToken: botToken,
		clock:    clock,
	}
}

// LoginResult - ответ на вход
type LoginResult struct {
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
	Created bool         `json:"created"`
}

// Login - вход по имени, профиля нет - создается новый
func (s *AuthService) Login(ctx context.Context, name, ip, userAgent string) (*LoginResult, error) {
	u, created, err := s.users.GetOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.users.Touch(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("touch user: %w", err)
	}

	token, err := s.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	s.audit.LogLogin(ctx, u.ID, ip, userAgent, created)
	return &LoginResult{Token: token, User: u, Created: created}, nil
}

// LoginTelegram - вход из Telegram WebApp, имя берется из подписанного init_data
func (s *AuthService) LoginTelegram(ctx context.Context, initData, ip, userAgent string) (*LoginResult, error) {
	if s.botToken == "" {
		return nil, ErrTelegramOff
	}
	values, err := ValidateInitData(initData, s.botToken, s.clock.Now())
	if err != nil {
		return nil, err
	}

	var tg struct {
		FirstName string `json:"first_name"`
		Username  string `json:"username"`
	}
	if err := json.Unmarshal([]byte(values.Get("user")), &tg); err != nil {
		return nil, ErrInvalidInitData
	}
	name := tg.FirstName
	if name == "" {
		name = tg.Username
	}
	return s.Login(ctx, name, ip, userAgent)
}

// Issue подписывает токен для пользователя (HS256)
func (s *AuthService) Issue(userID string) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse проверяет токен и возвращает id пользователя
func (s *AuthService) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// ValidateInitData проверяет HMAC Telegram WebApp init_data и свежесть auth_date
func ValidateInitData(initData, botToken string, now time.Time) (url.Values, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	provided, err := hex.DecodeString(values.Get("hash"))
	if err != nil || len(provided) == 0 {
		return nil, ErrInvalidInitData
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for k, v := range values {
		pairs = append(pairs, k+"="+strings.Join(v, ""))
	}
	sort.Strings(pairs)

	if !hmac.Equal(initDataHash(botToken, strings.Join(pairs, "\n")), provided) {
		return nil, ErrInvalidInitData
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrInvalidInitData
	}
	// небольшой допуск на рассинхрон часов вперед
	age := now.Sub(time.Unix(authDate, 0))
	if age > initDataMaxAge || age < -5*time.Minute {
		return nil, ErrInvalidInitData
	}
	return values, nil
}

// ключ HMAC в WebApp - HMAC("WebAppData", botToken)
func initDataHash(botToken, data string) []byte {
	key := hmac.New(sha256.New, []byte("WebAppData"))
	key.Write([]byte(botToken))

	h := hmac.New(sha256.New, key.Sum(nil))
	h.Write([]byte(data))
	return h.Sum(nil)
}
