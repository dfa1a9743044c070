package ports

import (
	"context"
	"time"

	"github.com/taskloop/taskloop-api/internal/domain"
)

type OTPRepository interface {
	Create(ctx context.Context, email string, otpHash, otpSalt []byte, expiresAt time.Time) (*domain.EmailOTP, error)
	// FindLatestByEmail returns the newest row for the email regardless of
	// consumed or expiry state. Used for the resend cooldown.
	FindLatestByEmail(ctx context.Context, email string) (*domain.EmailOTP, error)
	// FindActiveByEmail returns the newest unconsumed row that expires
	// after now.
	FindActiveByEmail(ctx context.Context, email string, now time.Time) (*domain.EmailOTP, error)
	MarkConsumed(ctx context.Context, id int64) error
	ConsumeByEmail(ctx context.Context, email string) error
}
