// Package auth implements account registration, login and the OTP based
// password reset flow.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"phishguard/internal/cache"
	"phishguard/internal/heuristics"
	"phishguard/internal/mailer"
	"phishguard/internal/store"
	"phishguard/pkg/models"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrOTPNotFound        = errors.New("OTP not found or expired")
	ErrOTPInvalid         = errors.New("invalid OTP")
	ErrResetTokenInvalid  = errors.New("reset token invalid or expired")
)

const (
	minNameLength     = 2
	minPasswordLength = 6
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72

	// A code is discarded after this many wrong guesses.
	maxOTPAttempts = 5

	otpPrefix      = "otp:"
	attemptsPrefix = "otp-attempts:"
	resetPrefix    = "reset:"
)

type userStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

type Options struct {
	AppName    string
	OTPTTL     time.Duration
	BcryptCost int
	Logger     *slog.Logger
}

// Service owns credentials. One-time codes and reset tokens live in codes,
// an expiring store whose TTL bounds their validity.
type Service struct {
	users userStore
	codes cache.Store[string]
	mail  mailer.Sender
	opts  Options

	// serializes the read-compare-count sequence in VerifyOTP
	verifyMu sync.Mutex
}

func NewService(users userStore, codes cache.Store[string], mail mailer.Sender, opts Options) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{users: users, codes: codes, mail: mail, opts: opts}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if !heuristics.ValidEmailFormat(email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, maxPasswordBytes)
	}
	return nil
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if len([]rune(name)) < minNameLength {
		return nil, fmt.Errorf("%w: name must be at least %d characters", ErrValidation, minNameLength)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.opts.Logger.Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// SendOTP stores a fresh code for email and mails it. A delivery failure is
// logged and does not invalidate the stored code. The code is returned so
// callers running in debug mode can expose it.
func (s *Service) SendOTP(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return "", err
	}

	otp, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	s.codes.Set(ctx, otpPrefix+email, otp)
	s.codes.Delete(ctx, attemptsPrefix+email)

	msg := mailer.OTPMessage(s.opts.AppName, email, otp, s.opts.OTPTTL)
	if err := s.mail.Send(ctx, msg); err != nil {
		s.opts.Logger.Warn("OTP email delivery failed",
			slog.String("email", email),
			slog.String("error", err.Error()))
	}
	return otp, nil
}

// VerifyOTP consumes a matching code and returns a one-time reset token.
// After maxOTPAttempts wrong guesses the code is discarded and the caller
// has to request a new one.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	email = normalizeEmail(email)
	key := otpPrefix + email
	attemptsKey := attemptsPrefix + email

	s.verifyMu.Lock()
	defer s.verifyMu.Unlock()

	stored, ok := s.codes.Get(ctx, key)
	if !ok {
		return "", ErrOTPNotFound
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(otp))) != 1 {
		failed := 1
		if v, ok := s.codes.Get(ctx, attemptsKey); ok {
			if n, err := strconv.Atoi(v); err == nil {
				failed = n + 1
			}
		}
		if failed >= maxOTPAttempts {
			s.codes.Delete(ctx, key)
			s.codes.Delete(ctx, attemptsKey)
			s.opts.Logger.Warn("OTP discarded after repeated failures", slog.String("email", email))
			return "", ErrOTPInvalid
		}
		s.codes.Set(ctx, attemptsKey, strconv.Itoa(failed))
		return "", ErrOTPInvalid
	}
	s.codes.Delete(ctx, key)
	s.codes.Delete(ctx, attemptsKey)

	token := uuid.NewString()
	s.codes.Set(ctx, resetPrefix+token, email)
	return token, nil
}

// ResetPassword consumes token and replaces the account password.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}

	key := resetPrefix + strings.TrimSpace(token)
	email, ok := s.codes.Get(ctx, key)
	if !ok {
		return ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	s.codes.Delete(ctx, key)

	if err := s.users.UpdatePassword(ctx, email, string(hash)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: no account for this email", ErrResetTokenInvalid)
		}
		return err
	}
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
