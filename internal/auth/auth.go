// Package auth implements registration and login against the user store.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/projtrack/internal/logger"
	"github.com/existflow/projtrack/internal/model"
	"github.com/existflow/projtrack/internal/store"
)

// Reason classifies a rejected registration or login
type Reason string

const (
	ReasonInvalidInput Reason = "invalid_input"
	ReasonUserExists   Reason = "user_exists"
	ReasonLoginFailed  Reason = "login_failed"
)

// Error is a rejection that presentation shows as a titled message
type Error struct {
	Reason  Reason
	Title   string
	Message string
}

func (e *Error) Error() string {
	return e.Title + ": " + e.Message
}

// Is matches any *Error with the same Reason
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Reason == e.Reason
}

// Sentinels for errors.Is
var (
	ErrInvalidInput = &Error{Reason: ReasonInvalidInput}
	ErrUserExists   = &Error{Reason: ReasonUserExists}
	ErrLoginFailed  = &Error{Reason: ReasonLoginFailed}
)

func invalidInput(msg string) error {
	return &Error{Reason: ReasonInvalidInput, Title: "Invalid Input", Message: msg}
}

// Gate registers and authenticates users
type Gate struct {
	store store.Store
	cost  int
	now   func() time.Time
}

// NewGate creates a gate hashing passwords with the given bcrypt cost.
// A cost of 0 uses bcrypt.DefaultCost.
func NewGate(s store.Store, cost int) *Gate {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Gate{store: s, cost: cost, now: time.Now}
}

// Register creates a user. A successful registration counts as a login.
func (g *Gate) Register(ctx context.Context, username, password, confirm string) (model.User, error) {
	if username == "" || password == "" {
		return model.User{}, invalidInput("Please enter a username and password.")
	}
	if password != confirm {
		return model.User{}, invalidInput("Passwords do not match.")
	}

	if _, err := g.store.FindUser(ctx, username); err == nil {
		logger.Info("Registration rejected, username taken", logger.F("username", username))
		return model.User{}, userExists()
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword(passwordKey(password), g.cost)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    g.now().UTC(),
	}
	err = store.WithTx(ctx, g.store, func(tx store.Tx) error {
		return tx.InsertUser(ctx, u)
	})
	if errors.Is(err, store.ErrConflict) {
		return model.User{}, userExists()
	}
	if err != nil {
		logger.Error("Failed to register user", logger.F("username", username), logger.F("error", err))
		return model.User{}, err
	}

	logger.Info("User registered", logger.F("username", username))
	return u, nil
}

// Login returns the user iff username exists and password matches its hash
func (g *Gate) Login(ctx context.Context, username, password string) (model.User, error) {
	if username == "" || password == "" {
		return model.User{}, invalidInput("Please enter a username and password.")
	}

	u, err := g.store.FindUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		logger.Info("Login failed, unknown user", logger.F("username", username))
		return model.User{}, loginFailed()
	}
	if err != nil {
		return model.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), passwordKey(password)); err != nil {
		logger.Info("Login failed, wrong password", logger.F("username", username))
		return model.User{}, loginFailed()
	}

	logger.Info("User logged in", logger.F("username", username))
	return u, nil
}

// passwordKey digests password to a fixed 44 bytes, under bcrypt's 72 byte limit
func passwordKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	key := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(key, sum[:])
	return key
}

func userExists() error {
	return &Error{Reason: ReasonUserExists, Title: "User Exists", Message: "A user with this username already exists."}
}

func loginFailed() error {
	return &Error{Reason: ReasonLoginFailed, Title: "Login Failed", Message: "Invalid username or password."}
}
