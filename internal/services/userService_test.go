package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/clients"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
)

type fakeProvisioner struct {
	signups []clients.SignupRequest
	err     error
}

func (f *fakeProvisioner) Signup(_ context.Context, req clients.SignupRequest) error {
	if f.err != nil {
		return f.err
	}
	f.signups = append(f.signups, req)
	return nil
}

func newUserFixture() (*fakeUserRepo, *fakeOTPRepo, *fakeProvisioner, UserService) {
	userRepo := &fakeUserRepo{usersByEmail: map[string]*models.User{}}
	otpRepo := &fakeOTPRepo{}
	emails := &fakeEmailService{}
	otpService := NewOTPService(userRepo, otpRepo, emails)
	provisioner := &fakeProvisioner{}
	return userRepo, otpRepo, provisioner, NewUserService(userRepo, otpService, provisioner, "test-secret")
}

func registrationFor(email, code string) *models.Registration {
	return &models.Registration{
		Name:              "Test User",
		Email:             email,
		Password:          "hunter22",
		ExchangeAPIKey:    "key",
		ExchangeAPISecret: "secret",
		InitialFunds:      1000,
		Code:              code,
	}
}

func TestRegister(t *testing.T) {
	t.Run("verified code creates the user and provisions trading", func(t *testing.T) {
		userRepo, otpRepo, provisioner, svc := newUserFixture()
		otpService := NewOTPService(userRepo, otpRepo, &fakeEmailService{})
		assert.NoError(t, otpService.IssueSignupCode(context.Background(), "new@example.com"))

		user, err := svc.Register(context.Background(), registrationFor("new@example.com", otpRepo.lastCode()))
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Empty(t, user.Password)

		stored := userRepo.usersByEmail["new@example.com"]
		assert.NotNil(t, stored)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter22")))
		assert.Len(t, provisioner.signups, 1)
		assert.Equal(t, "new@example.com", provisioner.signups[0].Email)
	})

	t.Run("wrong code persists nothing", func(t *testing.T) {
		userRepo, _, provisioner, svc := newUserFixture()

		_, err := svc.Register(context.Background(), registrationFor("new@example.com", "000000"))
		assert.ErrorIs(t, err, models.ErrInvalidCode)
		assert.Empty(t, userRepo.usersByEmail)
		assert.Empty(t, provisioner.signups)
	})

	t.Run("second registration for the same email is rejected", func(t *testing.T) {
		userRepo, otpRepo, _, svc := newUserFixture()
		otpService := NewOTPService(userRepo, otpRepo, &fakeEmailService{})

		// two outstanding codes for the same address coexist by design
		assert.NoError(t, otpService.IssueSignupCode(context.Background(), "new@example.com"))
		codeA := otpRepo.lastCode()
		assert.NoError(t, otpService.IssueSignupCode(context.Background(), "new@example.com"))
		codeB := otpRepo.lastCode()

		_, err := svc.Register(context.Background(), registrationFor("new@example.com", codeA))
		assert.NoError(t, err)

		_, err = svc.Register(context.Background(), registrationFor("new@example.com", codeB))
		assert.ErrorIs(t, err, models.ErrEmailTaken)
		assert.Len(t, userRepo.usersByEmail, 1)
	})

	t.Run("funds below the minimum are rejected before code consumption", func(t *testing.T) {
		userRepo, otpRepo, _, svc := newUserFixture()
		otpService := NewOTPService(userRepo, otpRepo, &fakeEmailService{})
		assert.NoError(t, otpService.IssueSignupCode(context.Background(), "new@example.com"))
		code := otpRepo.lastCode()

		reg := registrationFor("new@example.com", code)
		reg.InitialFunds = 499
		_, err := svc.Register(context.Background(), reg)
		assert.ErrorIs(t, err, models.ErrFundsBelowFloor)

		// the code survives the rejected attempt
		reg.InitialFunds = 500
		_, err = svc.Register(context.Background(), reg)
		assert.NoError(t, err)
	})
}

func TestLogin(t *testing.T) {
	userRepo, _, _, svc := newUserFixture()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	assert.NoError(t, err)
	userRepo.Create(context.Background(), &models.User{Email: "user@example.com", Password: string(hash)})

	t.Run("correct password yields a token", func(t *testing.T) {
		token, err := svc.Login(context.Background(), &models.Login{Email: "user@example.com", Password: "hunter22"})
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &models.Login{Email: "user@example.com", Password: "nope"})
		assert.ErrorIs(t, err, models.ErrBadCredentials)
	})

	t.Run("unknown user rejected identically", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &models.Login{Email: "ghost@example.com", Password: "hunter22"})
		assert.ErrorIs(t, err, models.ErrBadCredentials)
	})
}

func TestResetPassword(t *testing.T) {
	userRepo, otpRepo, _, svc := newUserFixture()
	emails := &fakeEmailService{}
	otpService := NewOTPService(userRepo, otpRepo, emails)

	userRepo.Create(context.Background(), &models.User{Email: "user@example.com", Password: "oldhash"})
	assert.NoError(t, otpService.IssueResetCode(context.Background(), "user@example.com"))
	code := otpRepo.lastCode()

	t.Run("valid code replaces the password hash", func(t *testing.T) {
		err := svc.ResetPassword(context.Background(), &models.ResetPassword{
			Email:       "user@example.com",
			Code:        code,
			NewPassword: "newpassword",
		})
		assert.NoError(t, err)
		stored := userRepo.usersByEmail["user@example.com"]
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("newpassword")))
	})

	t.Run("replayed code is rejected", func(t *testing.T) {
		err := svc.ResetPassword(context.Background(), &models.ResetPassword{
			Email:       "user@example.com",
			Code:        code,
			NewPassword: "another",
		})
		assert.ErrorIs(t, err, models.ErrInvalidCode)
	})
}
