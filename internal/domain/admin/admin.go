package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/GriffinCanCode/portfolio/internal/shared/id"
)

var (
	ErrNotFound           = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactive           = errors.New("admin account is disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const issuer = "portfolio"

// Account is an administrator.
type Account struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	Active       bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	LoginCount   int        `json:"login_count"`
	DateCreated  time.Time  `json:"date_created"`
}

// Repository persists admin accounts.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	Admin       *Account `json:"admin"`
}

// Claims are carried by access tokens.
type Claims struct {
	Username string `json:"username"`
	jwtgo.RegisteredClaims
}

// Config configures the admin service.
type Config struct {
	Secret   string
	TokenTTL time.Duration
	Cost     int
}

// Service authenticates administrators and verifies their tokens.
type Service struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
	cost   int
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an admin service.
func NewService(repo Repository, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * time.Minute
	}
	if cfg.Cost == 0 {
		cfg.Cost = bcrypt.DefaultCost
	}
	return &Service{
		repo:   repo,
		secret: []byte(cfg.Secret),
		ttl:    cfg.TokenTTL,
		cost:   cfg.Cost,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureAccount creates the account when no admin with that username exists.
func (s *Service) EnsureAccount(ctx context.Context, username, password, email string) (*Account, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	existing, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acc := &Account{
		ID:           id.NewAdminID().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Active:       true,
		DateCreated:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("admin account created", zap.String("username", username))
	return acc, nil
}

// Login checks credentials and issues an access token.
func (s *Service) Login(ctx context.Context, c Credentials) (*Token, error) {
	username := strings.ToLower(strings.TrimSpace(c.Username))
	acc, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(c.Password)); err != nil {
		s.logger.Warn("admin login failed", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if !acc.Active {
		return nil, ErrInactive
	}

	now := s.now().UTC()
	if err := s.repo.RecordLogin(ctx, acc.ID, now); err != nil {
		s.logger.Warn("failed to record admin login", zap.String("username", username), zap.Error(err))
	} else {
		acc.LastLogin = &now
		acc.LoginCount++
	}

	signed, err := s.issue(acc, now)
	if err != nil {
		return nil, err
	}
	return &Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
		Admin:       acc,
	}, nil
}

func (s *Service) issue(acc *Account, now time.Time) (string, error) {
	claims := Claims{
		Username: acc.Username,
		RegisteredClaims: jwtgo.RegisteredClaims{
			Issuer:    issuer,
			Subject:   acc.ID,
			IssuedAt:  jwtgo.NewNumericDate(now),
			ExpiresAt: jwtgo.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwtgo.NewWithClaims(jwtgo.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses an access token and returns its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwtgo.ParseWithClaims(token, claims, func(*jwtgo.Token) (interface{}, error) {
		return s.secret, nil
	}, jwtgo.WithValidMethods([]string{jwtgo.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != issuer || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
