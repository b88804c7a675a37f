package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
)

// fakeOTPRepo mirrors the storage contract: Consume is atomic with respect to
// concurrent callers for the same code.
type fakeOTPRepo struct {
	mu   sync.Mutex
	otps []*models.OTP
}

func (f *fakeOTPRepo) Create(_ context.Context, otp *models.OTP) (*models.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *otp
	stored.ID = primitive.NewObjectID()
	f.otps = append(f.otps, &stored)
	return &stored, nil
}

func (f *fakeOTPRepo) Consume(_ context.Context, email, code, purpose string, now time.Time) (*models.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, otp := range f.otps {
		if otp.Email == email && otp.Code == code && otp.Purpose == purpose && !otp.Consumed && now.Before(otp.ExpiresAt) {
			otp.Consumed = true
			found := *otp
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeOTPRepo) DeleteExpired(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.otps[:0]
	for _, otp := range f.otps {
		if otp.ExpiresAt.After(time.Now()) {
			kept = append(kept, otp)
		}
	}
	f.otps = kept
	return nil
}

func (f *fakeOTPRepo) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.otps) == 0 {
		return ""
	}
	return f.otps[len(f.otps)-1].Code
}

func (f *fakeOTPRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.otps)
}

type fakeUserRepo struct {
	usersByEmail map[string]*models.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if _, exists := f.usersByEmail[user.Email]; exists {
		return nil, models.ErrEmailTaken
	}
	stored := *user
	f.usersByEmail[user.Email] = &stored
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return f.usersByEmail[email], nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	for _, u := range f.usersByEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindBilled(_ context.Context) ([]models.User, error) {
	var users []models.User
	for _, u := range f.usersByEmail {
		if u.SubscriptionID != "" {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) UpdatePasswordByEmail(_ context.Context, email, hash string) error {
	u, ok := f.usersByEmail[email]
	if !ok {
		return models.ErrUserNotFound
	}
	u.Password = hash
	return nil
}

func (f *fakeUserRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(f.usersByEmail)), nil
}

type fakeEmailService struct {
	mu    sync.Mutex
	sent  []string
	fails bool
}

func (f *fakeEmailService) SendEmail(to, subject, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails {
		return errors.New("smtp: connection refused")
	}
	f.sent = append(f.sent, to)
	return nil
}

func newOTPFixture(existingEmails ...string) (*fakeUserRepo, *fakeOTPRepo, *fakeEmailService, OTPService) {
	userRepo := &fakeUserRepo{usersByEmail: map[string]*models.User{}}
	for _, email := range existingEmails {
		userRepo.usersByEmail[email] = &models.User{ID: primitive.NewObjectID(), Email: email}
	}
	otpRepo := &fakeOTPRepo{}
	emails := &fakeEmailService{}
	return userRepo, otpRepo, emails, NewOTPService(userRepo, otpRepo, emails)
}

func TestIssueSignupCode(t *testing.T) {
	t.Run("stores a six digit code and sends it", func(t *testing.T) {
		_, otpRepo, emails, svc := newOTPFixture()

		err := svc.IssueSignupCode(context.Background(), "new@example.com")
		assert.NoError(t, err)
		assert.Equal(t, 1, otpRepo.count())
		assert.Len(t, otpRepo.lastCode(), 6)
		assert.Equal(t, []string{"new@example.com"}, emails.sent)
	})

	t.Run("rejects existing account", func(t *testing.T) {
		_, otpRepo, _, svc := newOTPFixture("taken@example.com")

		err := svc.IssueSignupCode(context.Background(), "taken@example.com")
		assert.ErrorIs(t, err, models.ErrEmailTaken)
		assert.Equal(t, 0, otpRepo.count())
	})

	t.Run("rejects malformed address", func(t *testing.T) {
		_, _, _, svc := newOTPFixture()

		err := svc.IssueSignupCode(context.Background(), "not-an-email")
		assert.ErrorIs(t, err, models.ErrInvalidEmail)
	})

	t.Run("delivery failure is surfaced and the code is left to expire", func(t *testing.T) {
		_, otpRepo, emails, svc := newOTPFixture()
		emails.fails = true

		err := svc.IssueSignupCode(context.Background(), "new@example.com")
		assert.ErrorIs(t, err, models.ErrDeliveryFailed)
		assert.Equal(t, 1, otpRepo.count(), "orphaned code stays stored")
	})

	t.Run("outstanding codes coexist", func(t *testing.T) {
		_, otpRepo, _, svc := newOTPFixture()

		assert.NoError(t, svc.IssueSignupCode(context.Background(), "new@example.com"))
		assert.NoError(t, svc.IssueSignupCode(context.Background(), "new@example.com"))
		assert.Equal(t, 2, otpRepo.count())
	})
}

func TestIssueResetCodeDoesNotRevealAccounts(t *testing.T) {
	_, otpRepo, emails, svc := newOTPFixture("known@example.com")

	// identical nil response either way
	assert.NoError(t, svc.IssueResetCode(context.Background(), "known@example.com"))
	assert.NoError(t, svc.IssueResetCode(context.Background(), "unknown@example.com"))

	// only the known account produced a stored code and an email
	assert.Equal(t, 1, otpRepo.count())
	assert.Equal(t, []string{"known@example.com"}, emails.sent)
}

func TestVerify(t *testing.T) {
	t.Run("valid code consumes once", func(t *testing.T) {
		_, otpRepo, _, svc := newOTPFixture()
		assert.NoError(t, svc.IssueSignupCode(context.Background(), "new@example.com"))
		code := otpRepo.lastCode()

		assert.NoError(t, svc.Verify(context.Background(), "new@example.com", code, models.OTPPurposeSignup))
		assert.ErrorIs(t, svc.Verify(context.Background(), "new@example.com", code, models.OTPPurposeSignup), models.ErrInvalidCode)
	})

	t.Run("wrong code is invalid", func(t *testing.T) {
		_, _, _, svc := newOTPFixture()
		assert.NoError(t, svc.IssueSignupCode(context.Background(), "new@example.com"))

		err := svc.Verify(context.Background(), "new@example.com", "000000", models.OTPPurposeSignup)
		assert.ErrorIs(t, err, models.ErrInvalidCode)
	})

	t.Run("purpose mismatch is invalid", func(t *testing.T) {
		_, otpRepo, _, svc := newOTPFixture()
		assert.NoError(t, svc.IssueSignupCode(context.Background(), "new@example.com"))
		code := otpRepo.lastCode()

		err := svc.Verify(context.Background(), "new@example.com", code, models.OTPPurposePasswordReset)
		assert.ErrorIs(t, err, models.ErrInvalidCode)
	})

	t.Run("expired code is invalid even when never consumed", func(t *testing.T) {
		_, otpRepo, _, svc := newOTPFixture()
		otpRepo.Create(context.Background(), &models.OTP{
			Email:     "new@example.com",
			Code:      "123456",
			Purpose:   models.OTPPurposeSignup,
			ExpiresAt: time.Now().Add(-time.Second),
		})

		err := svc.Verify(context.Background(), "new@example.com", "123456", models.OTPPurposeSignup)
		assert.ErrorIs(t, err, models.ErrInvalidCode)
	})

	t.Run("code just inside its window is valid", func(t *testing.T) {
		_, otpRepo, _, svc := newOTPFixture()
		otpRepo.Create(context.Background(), &models.OTP{
			Email:     "new@example.com",
			Code:      "123456",
			Purpose:   models.OTPPurposeSignup,
			ExpiresAt: time.Now().Add(time.Second),
		})

		assert.NoError(t, svc.Verify(context.Background(), "new@example.com", "123456", models.OTPPurposeSignup))
	})
}

func TestVerifyConcurrentAtMostOnce(t *testing.T) {
	_, otpRepo, _, svc := newOTPFixture()
	assert.NoError(t, svc.IssueSignupCode(context.Background(), "race@example.com"))
	code := otpRepo.lastCode()

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Verify(context.Background(), "race@example.com", code, models.OTPPurposeSignup)
		}()
	}
	wg.Wait()
	close(results)

	valid := 0
	for err := range results {
		if err == nil {
			valid++
		} else {
			assert.ErrorIs(t, err, models.ErrInvalidCode)
		}
	}
	assert.Equal(t, 1, valid, "exactly one concurrent attempt may consume the code")
}
