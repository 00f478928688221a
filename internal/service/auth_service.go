package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fieldvisit/internal/domain"
	"fieldvisit/internal/repository"
	"fieldvisit/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL       = 24 * time.Hour
	tokenKeyPrefix = "fieldvisit:token:"
)

// ErrInvalidCredentials is returned for a wrong username or password. The
// caller gets the same message for both so usernames cannot be probed.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrInvalidToken is returned when a presented token is unknown or expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates opaque session tokens backed by the KV
// store. It is glue around the credential table, not part of the visit state
// machine.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Register(ctx context.Context, username, password, accessLevel string) (*domain.Credential, error)
	Validate(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, token string) error

	ListUsers(ctx context.Context) ([]*domain.Credential, error)
	DeleteUser(ctx context.Context, id int64) error
	ActiveSessions(ctx context.Context) ([]*Session, error)
}

type LoginResponse struct {
	Token       string
	Username    string
	AccessLevel string
}

// Session is the identity attached to an authenticated request.
type Session struct {
	Username    string `json:"username"`
	AccessLevel string `json:"access_level"`
}

type authService struct {
	credsRepo repository.CredentialsRepository
	kv        store.KV
	logger    *zap.Logger
}

func NewAuthService(credsRepo repository.CredentialsRepository, kv store.KV, logger *zap.Logger) AuthService {
	return &authService{credsRepo: credsRepo, kv: kv, logger: logger}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	if username == "" || password == "" {
		return nil, NewValidationError("username and password are required")
	}

	cred, err := s.credsRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login failed", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	session, err := json.Marshal(Session{Username: cred.Username, AccessLevel: cred.AccessLevel})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	token := uuid.NewString()
	if err := s.kv.Set(ctx, tokenKeyPrefix+token, string(session), tokenTTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info("login", zap.String("username", cred.Username), zap.String("access_level", cred.AccessLevel))
	return &LoginResponse{Token: token, Username: cred.Username, AccessLevel: cred.AccessLevel}, nil
}

func (s *authService) Register(ctx context.Context, username, password, accessLevel string) (*domain.Credential, error) {
	if username == "" || password == "" {
		return nil, NewValidationError("username and password are required")
	}
	if accessLevel == "" {
		accessLevel = "user"
	}

	if _, err := s.credsRepo.GetByUsername(ctx, username); err == nil {
		return nil, NewValidationError("username %q already exists", username)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	cred := &domain.Credential{
		Username:     username,
		PasswordHash: string(hash),
		AccessLevel:  accessLevel,
	}
	id, err := s.credsRepo.Create(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("create credential: %w", err)
	}
	cred.ID = id
	return cred, nil
}

func (s *authService) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	raw, err := s.kv.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, ErrInvalidToken
	}
	return &session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.kv.Delete(ctx, tokenKeyPrefix+token)
}

func (s *authService) ListUsers(ctx context.Context) ([]*domain.Credential, error) {
	creds, err := s.credsRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return creds, nil
}

func (s *authService) DeleteUser(ctx context.Context, id int64) error {
	err := s.credsRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return NewNotFoundError("user %d not found", id)
	}
	return err
}

// ActiveSessions lists the identities behind every live token. Tokens that
// expire mid-scan are skipped.
func (s *authService) ActiveSessions(ctx context.Context) ([]*Session, error) {
	keys, err := s.kv.ScanKeys(ctx, tokenKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	sessions := []*Session{}
	for _, key := range keys {
		raw, err := s.kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, store.ErrMiss) {
				continue
			}
			return nil, fmt.Errorf("load session: %w", err)
		}
		var session Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			continue
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}
