package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/taskloop/taskloop-api/internal/domain"
)

type OTPRepository struct {
	db *sqlx.DB
}

func NewOTPRepo(db *sqlx.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Create(ctx context.Context, email string, otpHash, otpSalt []byte, expiresAt time.Time) (*domain.EmailOTP, error) {
	const query = `
        INSERT INTO email_otp (email, otp_hash, otp_salt, expires_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, email, otp_hash, otp_salt, consumed, expires_at, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, email, otpHash, otpSalt, expiresAt)
	var otp domain.EmailOTP
	if err := row.StructScan(&otp); err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *OTPRepository) FindLatestByEmail(ctx context.Context, email string) (*domain.EmailOTP, error) {
	const query = `
        SELECT id, email, otp_hash, otp_salt, consumed, expires_at, created_at
        FROM email_otp
        WHERE email = $1
        ORDER BY created_at DESC
        LIMIT 1
    `
	var otp domain.EmailOTP
	if err := r.db.GetContext(ctx, &otp, query, email); err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *OTPRepository) FindActiveByEmail(ctx context.Context, email string, now time.Time) (*domain.EmailOTP, error) {
	const query = `
        SELECT id, email, otp_hash, otp_salt, consumed, expires_at, created_at
        FROM email_otp
        WHERE email = $1 AND consumed = FALSE AND expires_at >= $2
        ORDER BY created_at DESC
        LIMIT 1
    `
	var otp domain.EmailOTP
	if err := r.db.GetContext(ctx, &otp, query, email, now); err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *OTPRepository) MarkConsumed(ctx context.Context, id int64) error {
	const query = `
        UPDATE email_otp
        SET consumed = TRUE
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *OTPRepository) ConsumeByEmail(ctx context.Context, email string) error {
	const query = `
        UPDATE email_otp
        SET consumed = TRUE
        WHERE email = $1 AND consumed = FALSE
    `
	_, err := r.db.ExecContext(ctx, query, email)
	return err
}
