package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"prediction-dashboard/internal/middleware"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Argon2id parameters for operator passwords
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// Authenticator checks the operator's password and issues bearer tokens for
// the history management routes.
type Authenticator struct {
	username     string
	passwordHash string
	secret       []byte
	ttl          time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthenticator creates an authenticator for a single operator account
func NewAuthenticator(username, passwordHash string, secret []byte, ttl time.Duration, logger *zap.Logger) *Authenticator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		username:     username,
		passwordHash: passwordHash,
		secret:       secret,
		ttl:          ttl,
		logger:       logger,
		now:          time.Now,
	}
}

// Login returns a signed token and its expiry for valid credentials.
func (a *Authenticator) Login(username, password string) (string, time.Time, error) {
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) != 1 || !VerifyPassword(a.passwordHash, password) {
		a.logger.Warn("Rejected operator login", zap.String("username", username))
		return "", time.Time{}, ErrInvalidCredentials
	}

	expires := a.now().Add(a.ttl)
	token, err := middleware.IssueToken(a.secret, username, "operator", a.ttl)
	if err != nil {
		a.logger.Error("Failed to generate JWT token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	a.logger.Info("Operator logged in", zap.String("username", username))
	return token, expires, nil
}

// HashPassword encodes password as $argon2id$v=19$m=65536,t=1,p=4$salt$hash.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword compares password with an encoded hash from HashPassword.
func VerifyPassword(encoded, password string) bool {
	// ["", "argon2id", "v=19", "m=65536,t=1,p=4", salt, hash]
	sections := strings.Split(encoded, "$")
	if len(sections) != 6 || sections[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(sections[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(sections[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(sections[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(sections[5])
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
