package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// AccountOptions configures an AccountService.
type AccountOptions struct {
	JWTSecret     string
	TokenExpiry   time.Duration
	ContactPrefix string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type AccountService struct {
	store store.Store
	opts  AccountOptions
	// dummyHash is compared against when the username is unknown so that
	// both failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewAccountService(s store.Store, opts AccountOptions) (*AccountService, error) {
	if opts.JWTSecret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if opts.TokenExpiry <= 0 {
		opts.TokenExpiry = auth.DefaultTokenExpiry
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("najdeno-dummy-password"), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("preparing password hasher: %w", err)
	}
	return &AccountService{store: s, opts: opts, dummyHash: dummy}, nil
}

// TokenExpiry is the lifetime of tokens issued by Login.
func (s *AccountService) TokenExpiry() time.Duration {
	return s.opts.TokenExpiry
}

type RegisterRequest struct {
	Username string
	Password string
	Contact  string
}

// Register creates a new account.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}
	if err := model.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Contact:      model.NormalizeContact(req.Contact, s.opts.ContactPrefix),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Login checks credentials and issues a signed token.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.opts.JWTSecret, user.ID, user.Username, s.opts.TokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}
	return token, user, nil
}

// Authenticate validates a bearer token and checks it has not been revoked.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ValidateToken(s.opts.JWTSecret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.ID != "" {
		revoked, err := s.store.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("checking token revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", ErrUnauthorized)
		}
	}
	return claims, nil
}

// Logout revokes the token described by claims until it would have expired.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	expiresAt := time.Now().Add(s.opts.TokenExpiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.store.RevokeToken(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// Profile returns the account of userID.
func (s *AccountService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return user, nil
}

// UpdateContact replaces the phone number stored on the account.
func (s *AccountService) UpdateContact(ctx context.Context, userID, contact string) (*model.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Contact = model.NormalizeContact(contact, s.opts.ContactPrefix)
	if err := s.store.UpdateUserContact(ctx, userID, user.Contact); err != nil {
		return nil, fmt.Errorf("updating contact: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AccountService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return fmt.Errorf("%w: current and new password required", ErrValidation)
	}
	if err := model.ValidatePassword(next); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.store.UpdateUserPassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}
