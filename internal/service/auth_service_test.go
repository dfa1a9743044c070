package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/util"
)

type fakeUserRepo struct {
	users     map[string]*domain.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, email string, fullName *string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.users[email]; exists {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: append([]byte(nil), passwordHash...),
		PasswordSalt: append([]byte(nil), passwordSalt...),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[email] = user
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if user, ok := f.users[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeOTPRepo struct {
	rows   []*domain.EmailOTP
	nextID int64
}

func (f *fakeOTPRepo) Create(ctx context.Context, email string, otpHash, otpSalt []byte, expiresAt time.Time) (*domain.EmailOTP, error) {
	f.nextID++
	row := &domain.EmailOTP{
		ID:        f.nextID,
		Email:     email,
		OTPHash:   append([]byte(nil), otpHash...),
		OTPSalt:   append([]byte(nil), otpSalt...),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeOTPRepo) FindLatestByEmail(ctx context.Context, email string) (*domain.EmailOTP, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].Email == email {
			clone := *f.rows[i]
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOTPRepo) FindActiveByEmail(ctx context.Context, email string, now time.Time) (*domain.EmailOTP, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		row := f.rows[i]
		if row.Email == email && !row.Consumed && row.ExpiresAt.After(now) {
			clone := *row
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOTPRepo) MarkConsumed(ctx context.Context, id int64) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.Consumed = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeOTPRepo) ConsumeByEmail(ctx context.Context, email string) error {
	for _, row := range f.rows {
		if row.Email == email {
			row.Consumed = true
		}
	}
	return nil
}

type fakeOTPMailer struct {
	sent []struct {
		email string
		code  string
	}
	err error
}

func (f *fakeOTPMailer) SendOTP(ctx context.Context, email, code string) error {
	f.sent = append(f.sent, struct {
		email string
		code  string
	}{email: email, code: code})
	return f.err
}

func newAuthServiceForTests(users *fakeUserRepo, otps *fakeOTPRepo, mailer *fakeOTPMailer) *AuthService {
	if users == nil {
		users = newFakeUserRepo()
	}
	if otps == nil {
		otps = &fakeOTPRepo{}
	}
	if mailer == nil {
		mailer = &fakeOTPMailer{}
	}
	jwtManager := util.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(users, otps, mailer, jwtManager, 10*time.Minute, 3*time.Minute, 6)
}

func TestRequestOTPSuccess(t *testing.T) {
	ctx := context.Background()
	otps := &fakeOTPRepo{}
	mailer := &fakeOTPMailer{}
	svc := newAuthServiceForTests(nil, otps, mailer)

	if err := svc.RequestOTP(ctx, " User@Example.com "); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one OTP mail, got %d", len(mailer.sent))
	}
	if mailer.sent[0].email != "user@example.com" {
		t.Fatalf("email should be normalized, got %q", mailer.sent[0].email)
	}
	if len(mailer.sent[0].code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", mailer.sent[0].code)
	}

	if len(otps.rows) != 1 {
		t.Fatalf("expected one stored OTP row, got %d", len(otps.rows))
	}
	row := otps.rows[0]
	if string(row.OTPHash) == mailer.sent[0].code {
		t.Fatalf("plaintext code must never be stored")
	}
	if !util.VerifySecret(mailer.sent[0].code, row.OTPSalt, row.OTPHash) {
		t.Fatalf("stored hash should match the mailed code")
	}
	if !row.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected expiry in the future")
	}
}

func TestRequestOTPRateLimited(t *testing.T) {
	ctx := context.Background()
	otps := &fakeOTPRepo{}
	svc := newAuthServiceForTests(nil, otps, nil)

	if err := svc.RequestOTP(ctx, "user@example.com"); err != nil {
		t.Fatalf("first RequestOTP returned error: %v", err)
	}
	if err := svc.RequestOTP(ctx, "user@example.com"); !errors.Is(err, ErrOTPRateLimited) {
		t.Fatalf("expected ErrOTPRateLimited within cooldown, got %v", err)
	}

	// Once the cooldown elapses, a new code is issued and the old one is
	// invalidated.
	otps.rows[0].CreatedAt = time.Now().Add(-5 * time.Minute)
	if err := svc.RequestOTP(ctx, "user@example.com"); err != nil {
		t.Fatalf("RequestOTP after cooldown returned error: %v", err)
	}
	if len(otps.rows) != 2 {
		t.Fatalf("expected two OTP rows, got %d", len(otps.rows))
	}
	if !otps.rows[0].Consumed {
		t.Fatalf("expected the older code to be invalidated")
	}
}

func TestRequestOTPRejectsBadEmail(t *testing.T) {
	svc := newAuthServiceForTests(nil, nil, nil)

	for _, email := range []string{"", "   ", "not-an-email", "two@@example.com"} {
		if err := svc.RequestOTP(context.Background(), email); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation for %q, got %v", email, err)
		}
	}
}

func TestRequestOTPMailFailure(t *testing.T) {
	mailer := &fakeOTPMailer{err: errors.New("smtp down")}
	svc := newAuthServiceForTests(nil, nil, mailer)

	err := svc.RequestOTP(context.Background(), "user@example.com")
	if !errors.Is(err, ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery, got %v", err)
	}
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	otps := &fakeOTPRepo{}
	mailer := &fakeOTPMailer{}
	svc := newAuthServiceForTests(users, otps, mailer)

	if err := svc.RequestOTP(ctx, "a@b.com"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	code := mailer.sent[0].code

	user, err := svc.Register(ctx, "a@b.com", "pw1", "A", code)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "a@b.com" {
		t.Fatalf("unexpected email %q", user.Email)
	}
	if user.FullName == nil || *user.FullName != "A" {
		t.Fatalf("expected full name to be stored")
	}
	if string(user.PasswordHash) == "pw1" {
		t.Fatalf("plaintext password must never be stored")
	}

	result, err := svc.Login(ctx, "a@b.com", "pw1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a session token")
	}
	if result.User.Email != "a@b.com" || result.User.FullName == nil || *result.User.FullName != "A" {
		t.Fatalf("login should return the registered identity")
	}
}

func TestRegisterConsumesOTP(t *testing.T) {
	ctx := context.Background()
	otps := &fakeOTPRepo{}
	mailer := &fakeOTPMailer{}
	svc := newAuthServiceForTests(nil, otps, mailer)

	if err := svc.RequestOTP(ctx, "a@b.com"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	code := mailer.sent[0].code

	if _, err := svc.Register(ctx, "a@b.com", "pw1", "A", code); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	// The code is single-use: a second registration attempt with it (for
	// a fresh account store) must not find it.
	svc2 := newAuthServiceForTests(newFakeUserRepo(), otps, mailer)
	if _, err := svc2.Register(ctx, "a@b.com", "pw2", "A", code); !errors.Is(err, ErrOTPMissingOrExpired) {
		t.Fatalf("expected ErrOTPMissingOrExpired for a consumed code, got %v", err)
	}
}

func TestRegisterWithoutOTP(t *testing.T) {
	svc := newAuthServiceForTests(nil, nil, nil)

	if _, err := svc.Register(context.Background(), "a@b.com", "pw1", "A", "123456"); !errors.Is(err, ErrOTPMissingOrExpired) {
		t.Fatalf("expected ErrOTPMissingOrExpired, got %v", err)
	}
}

func TestRegisterWrongOTP(t *testing.T) {
	ctx := context.Background()
	otps := &fakeOTPRepo{}
	mailer := &fakeOTPMailer{}
	svc := newAuthServiceForTests(nil, otps, mailer)

	if err := svc.RequestOTP(ctx, "a@b.com"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	wrong := "000000"
	if mailer.sent[0].code == wrong {
		wrong = "999999"
	}

	if _, err := svc.Register(ctx, "a@b.com", "pw1", "A", wrong); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}
}

func TestRegisterExpiredOTP(t *testing.T) {
	ctx := context.Background()
	otps := &fakeOTPRepo{}
	mailer := &fakeOTPMailer{}
	svc := newAuthServiceForTests(nil, otps, mailer)

	if err := svc.RequestOTP(ctx, "a@b.com"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	otps.rows[0].ExpiresAt = time.Now().Add(-time.Minute)

	if _, err := svc.Register(ctx, "a@b.com", "pw1", "A", mailer.sent[0].code); !errors.Is(err, ErrOTPMissingOrExpired) {
		t.Fatalf("expected ErrOTPMissingOrExpired for an expired code, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	otps := &fakeOTPRepo{}
	mailer := &fakeOTPMailer{}
	svc := newAuthServiceForTests(users, otps, mailer)

	if err := svc.RequestOTP(ctx, "a@b.com"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	if _, err := svc.Register(ctx, "a@b.com", "pw1", "A", mailer.sent[0].code); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	otps.rows[0].Consumed = false
	if _, err := svc.Register(ctx, "a@b.com", "pw2", "A", mailer.sent[0].code); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginWrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	otps := &fakeOTPRepo{}
	mailer := &fakeOTPMailer{}
	svc := newAuthServiceForTests(users, otps, mailer)

	if err := svc.RequestOTP(ctx, "a@b.com"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	if _, err := svc.Register(ctx, "a@b.com", "pw1", "A", mailer.sent[0].code); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, errWrongPassword := svc.Login(ctx, "a@b.com", "nope")
	_, errUnknownUser := svc.Login(ctx, "nobody@b.com", "nope")

	if !errors.Is(errWrongPassword, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", errWrongPassword)
	}
	if !errors.Is(errUnknownUser, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", errUnknownUser)
	}
	if errWrongPassword.Error() != errUnknownUser.Error() {
		t.Fatalf("login errors must not reveal whether the account exists")
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	otps := &fakeOTPRepo{}
	mailer := &fakeOTPMailer{}
	svc := newAuthServiceForTests(users, otps, mailer)

	if err := svc.RequestOTP(ctx, "a@b.com"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	if _, err := svc.Register(ctx, "a@b.com", "pw1", "A", mailer.sent[0].code); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	result, err := svc.Login(ctx, "a@b.com", "pw1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	user, err := svc.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user.Email != "a@b.com" {
		t.Fatalf("unexpected authenticated email %q", user.Email)
	}

	if _, err := svc.Authenticate(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
