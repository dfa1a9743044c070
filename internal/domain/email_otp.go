package domain

import "time"

// EmailOTP is one issued verification code. Only the salted hash of the
// code is stored; the newest unconsumed, unexpired row per email wins.
type EmailOTP struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	OTPHash   []byte    `db:"otp_hash" json:"-"`
	OTPSalt   []byte    `db:"otp_salt" json:"-"`
	Consumed  bool      `db:"consumed" json:"consumed"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
