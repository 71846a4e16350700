package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/ports"
)

// ErrInvalidCredentials covers both unknown users and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	minPasswordLength = 6
	maxPasswordBytes  = 72 // bcrypt rejects longer inputs
)

type AuthEventKind string

const (
	UserRegistered AuthEventKind = "registered"
	UserLoggedIn   AuthEventKind = "logged_in"
	UserDeleted    AuthEventKind = "deleted"
)

// AuthEvent is delivered to subscribers after the change is committed.
type AuthEvent struct {
	Kind AuthEventKind
	User core.User
	At   time.Time
}

type RegisterInput struct {
	Username string
	Name     string
	Email    string
	Password string
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      core.User
}

type AuthService struct {
	users  ports.UserStore
	txs    ports.TransactionStore
	hasher auth.PasswordHasher
	tokens *auth.TokenIssuer

	// dummyHash keeps login timing similar for unknown usernames.
	dummyHash string

	mu        sync.RWMutex
	observers []func(context.Context, AuthEvent)
}

func NewAuthService(users ports.UserStore, txs ports.TransactionStore, hasher auth.PasswordHasher, tokens *auth.TokenIssuer) (*AuthService, error) {
	dummy, err := hasher.Hash("fintrack-timing-equalizer")
	if err != nil {
		return nil, err
	}
	return &AuthService{users: users, txs: txs, hasher: hasher, tokens: tokens, dummyHash: dummy}, nil
}

// Subscribe registers fn for every later auth event. Observers run
// synchronously on the request goroutine and must not block.
func (s *AuthService) Subscribe(fn func(context.Context, AuthEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *AuthService) notify(ctx context.Context, kind AuthEventKind, u core.User) {
	s.mu.RLock()
	observers := append([]func(context.Context, AuthEvent){}, s.observers...)
	s.mu.RUnlock()

	ev := AuthEvent{Kind: kind, User: u, At: time.Now()}
	for _, fn := range observers {
		fn(ctx, ev)
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	u := core.User{
		Username: strings.TrimSpace(in.Username),
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if len(in.Password) < minPasswordLength {
		return core.User{}, core.ErrPasswordTooShort
	}
	if len(in.Password) > maxPasswordBytes {
		return core.User{}, core.ErrPasswordTooLong
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return core.User{}, err
	}
	u.PasswordHash = hash

	created, err := s.users.CreateUser(ctx, u)
	if err != nil {
		return core.User{}, fmt.Errorf("register: %w", err)
	}
	slog.InfoContext(ctx, "User registered",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldUserID, created.ID)
	s.notify(ctx, UserRegistered, created)
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ports.ErrNotFound) {
		_ = s.hasher.Check(s.dummyHash, password)
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	if err := s.hasher.Check(u.PasswordHash, password); err != nil {
		slog.WarnContext(ctx, "Login rejected",
			applog.FieldComponent, applog.ComponentAuth,
			applog.FieldUserID, u.ID)
		return Session{}, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return Session{}, err
	}
	s.notify(ctx, UserLoggedIn, u)
	return Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (core.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// DeleteAccount removes the user and all of their transactions after
// checking the password. It returns the number of transactions removed.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64, password string) (int64, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.hasher.Check(u.PasswordHash, password); err != nil {
		return 0, ErrInvalidCredentials
	}

	removed, err := s.txs.DeleteUserTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete account transactions: %w", err)
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return removed, fmt.Errorf("delete account: %w", err)
	}
	slog.InfoContext(ctx, "Account deleted",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldUserID, userID,
		applog.FieldCount, removed)
	s.notify(ctx, UserDeleted, u)
	return removed, nil
}
