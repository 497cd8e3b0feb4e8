package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/easypayhq/easypay/internal/domain/entity"
	repo "github.com/easypayhq/easypay/internal/domain/repository"
	"github.com/easypayhq/easypay/internal/infrastructure/secrets"
	"github.com/easypayhq/easypay/pkg/helpers"
	"github.com/easypayhq/easypay/pkg/mailer"
)

var (
	// ErrInvalidCredentials covers unknown usernames and wrong passwords alike;
	// callers cannot distinguish the two cases.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrAccountNotFound    = errors.New("account not found")
)

const sessionTTL = 24 * time.Hour

// AccountService handles seller registration, authentication and account
// mutations. Stored passwords and provider keys are ciphertext; the service
// never persists a plaintext secret.
type AccountService struct {
	Repo   repo.AccountRepository
	Cipher *secrets.Cipher
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Mail   *helpers.RabbitPublisher
	Logger *logrus.Logger
}

func NewAccountService(r repo.AccountRepository, cipher *secrets.Cipher, jwt *helpers.JWTManager, rdb *redis.Client, mail *helpers.RabbitPublisher, logger *logrus.Logger) *AccountService {
	return &AccountService{Repo: r, Cipher: cipher, JWT: jwt, Redis: rdb, Mail: mail, Logger: logger}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	ProviderKey string
}

// Register creates a seller account. The username is checked for uniqueness
// before insert, and the password and payment provider key are encrypted
// before they touch the database.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.Account, error) {
	taken, err := s.Repo.Exists(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUsername
	}

	password, err := s.Cipher.Encrypt(in.Password)
	if err != nil {
		return nil, err
	}
	providerKey, err := s.Cipher.Encrypt(in.ProviderKey)
	if err != nil {
		return nil, err
	}

	a := &entity.Account{
		Username:    in.Username,
		Email:       in.Email,
		Password:    password,
		ProviderKey: providerKey,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.sendWelcomeEmail(ctx, a)
	return a, nil
}

// sendWelcomeEmail queues the welcome message. Registration never fails on a
// mail error.
func (s *AccountService) sendWelcomeEmail(ctx context.Context, a *entity.Account) {
	job := mailer.EmailJob{
		To:       a.Email,
		Template: "welcome",
		Data:     map[string]any{"Username": a.Username, "Email": a.Email},
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("username", a.Username).Warn("welcome email enqueue failed")
	}
}

// Authenticate verifies a username/password pair. Unknown usernames and wrong
// passwords both map to ErrInvalidCredentials so responses leak nothing about
// which part was wrong; storage failures are surfaced as such, never as a
// credential rejection.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*entity.Account, error) {
	a, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	stored, err := s.Cipher.Decrypt(a.Password)
	if err != nil || stored != password {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// IssueTokens generates an access/refresh pair and records the session in Redis.
func (s *AccountService) IssueTokens(ctx context.Context, a *entity.Account) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(a.Username, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(a.Username, sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := helpers.SessionKey(a.Username)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"username":   a.Username,
			"email":      a.Email,
			"sid":        sid,
			"created_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, sessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Login authenticates and starts a session.
func (s *AccountService) Login(ctx context.Context, username, password string) (*entity.Account, TokenPair, error) {
	a, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, a)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return a, pair, nil
}

// Refresh rotates the session id and both tokens. The refresh token must
// match the live session recorded in Redis.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	a, err := s.Repo.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, "", ErrInvalidCredentials
		}
		return TokenPair{}, "", fmt.Errorf("load account: %w", err)
	}
	if s.Redis != nil {
		key := helpers.SessionKey(a.Username)
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}

	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(a.Username, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(a.Username, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		key := helpers.SessionKey(a.Username)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{"sid": sid, "updated_at": nowRFC3339()})
		pipe.Expire(ctx, key, sessionTTL)
		_, _ = pipe.Exec(ctx)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, a.Username, nil
}

// Logout drops the Redis session; outstanding tokens stop validating.
func (s *AccountService) Logout(ctx context.Context, username string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(ctx, helpers.SessionKey(username)).Err()
}

// GetProfile returns the account without secret material decrypted.
func (s *AccountService) GetProfile(ctx context.Context, username string) (*entity.Account, error) {
	a, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return a, nil
}

// ChangeEmail re-authenticates with the current password and stores the new
// address.
func (s *AccountService) ChangeEmail(ctx context.Context, username, password, newEmail string) error {
	if _, err := s.Authenticate(ctx, username, password); err != nil {
		return err
	}
	return s.Repo.UpdateEmail(ctx, username, newEmail)
}

// ChangePassword re-authenticates with the current password and stores the
// new one encrypted.
func (s *AccountService) ChangePassword(ctx context.Context, username, password, newPassword string) error {
	if _, err := s.Authenticate(ctx, username, password); err != nil {
		return err
	}
	ciphertext, err := s.Cipher.Encrypt(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, username, ciphertext)
}

// ChangeProviderKey re-authenticates and swaps the payment provider API key.
func (s *AccountService) ChangeProviderKey(ctx context.Context, username, password, newKey string) error {
	if _, err := s.Authenticate(ctx, username, password); err != nil {
		return err
	}
	ciphertext, err := s.Cipher.Encrypt(newKey)
	if err != nil {
		return err
	}
	return s.Repo.UpdateProviderKey(ctx, username, ciphertext)
}

// ChangeUsername re-authenticates, checks the new name is free and renames
// the account together with its catalog rows. The caller must start a fresh
// session afterwards; the old session is torn down here.
func (s *AccountService) ChangeUsername(ctx context.Context, username, password, newUsername string) error {
	if _, err := s.Authenticate(ctx, username, password); err != nil {
		return err
	}
	taken, err := s.Repo.Exists(ctx, newUsername)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateUsername
	}
	if err := s.Repo.Rename(ctx, username, newUsername); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if s.Redis != nil {
		_ = s.Redis.Del(ctx, helpers.SessionKey(username)).Err()
	}
	return nil
}

// ProviderKey returns the seller's decrypted payment provider API key.
func (s *AccountService) ProviderKey(ctx context.Context, username string) (string, error) {
	a, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("load account: %w", err)
	}
	return s.Cipher.Decrypt(a.ProviderKey)
}
