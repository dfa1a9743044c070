package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/repository/ports"
	"github.com/taskloop/taskloop-api/internal/util"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrOTPRateLimited      = errors.New("an OTP was sent recently, try again later")
	ErrOTPMissingOrExpired = errors.New("no valid OTP found for this email")
	ErrOTPInvalid          = errors.New("incorrect OTP")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrInvalidCredentials  = errors.New("incorrect email or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrMailDelivery        = errors.New("could not send email")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// OTPSender delivers the plaintext code to the address that requested it.
type OTPSender interface {
	SendOTP(ctx context.Context, email, code string) error
}

type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users  ports.UserRepository
	otps   ports.OTPRepository
	mailer OTPSender
	jwt    *util.JWTManager

	otpTTL      time.Duration
	otpCooldown time.Duration
	otpLength   int

	// decoy credentials burn an argon2 comparison when the email is
	// unknown, so login latency does not reveal account existence.
	decoyHash []byte
	decoySalt []byte
}

func NewAuthService(users ports.UserRepository, otps ports.OTPRepository, mailer OTPSender, jwt *util.JWTManager, otpTTL, otpCooldown time.Duration, otpLength int) *AuthService {
	decoyHash, decoySalt, err := util.DeriveSecret("taskloop-decoy-credential")
	if err != nil {
		decoyHash, decoySalt = nil, nil
	}
	return &AuthService{
		users:       users,
		otps:        otps,
		mailer:      mailer,
		jwt:         jwt,
		otpTTL:      otpTTL,
		otpCooldown: otpCooldown,
		otpLength:   otpLength,
		decoyHash:   decoyHash,
		decoySalt:   decoySalt,
	}
}

// RequestOTP issues a fresh verification code for the email and mails it.
// Older unconsumed codes are invalidated so the newest code is the only
// one that verifies.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: email is not valid", ErrValidation)
	}

	latest, err := s.otps.FindLatestByEmail(ctx, email)
	if err != nil && !isNotFound(err) {
		return err
	}
	if latest != nil && time.Since(latest.CreatedAt) < s.otpCooldown {
		return ErrOTPRateLimited
	}

	code, err := util.GenerateNumericOTP(s.otpLength)
	if err != nil {
		return err
	}
	hash, salt, err := util.DeriveSecret(code)
	if err != nil {
		return err
	}

	if err := s.otps.ConsumeByEmail(ctx, email); err != nil {
		return err
	}
	if _, err := s.otps.Create(ctx, email, hash, salt, time.Now().Add(s.otpTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// Register verifies the OTP for the email and creates the account. The
// matched code is marked consumed so it cannot be replayed.
func (s *AuthService) Register(ctx context.Context, email, password, fullName, otp string) (*domain.User, error) {
	email = normalizeEmail(email)
	switch {
	case email == "":
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	case !emailPattern.MatchString(email):
		return nil, fmt.Errorf("%w: email is not valid", ErrValidation)
	case password == "":
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	case strings.TrimSpace(otp) == "":
		return nil, fmt.Errorf("%w: otp is required", ErrValidation)
	}

	active, err := s.otps.FindActiveByEmail(ctx, email, time.Now())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOTPMissingOrExpired
		}
		return nil, err
	}
	if !util.VerifySecret(strings.TrimSpace(otp), active.OTPSalt, active.OTPHash) {
		return nil, ErrOTPInvalid
	}

	hash, salt, err := util.DeriveSecret(password)
	if err != nil {
		return nil, err
	}

	var name *string
	if trimmed := strings.TrimSpace(fullName); trimmed != "" {
		name = &trimmed
	}

	user, err := s.users.Create(ctx, email, name, hash, salt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if err := s.otps.MarkConsumed(ctx, active.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password and issues a signed session token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			util.VerifySecret(password, s.decoySalt, s.decoyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifySecret(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, user.FullName)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a session token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
