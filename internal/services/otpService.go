package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/repositories"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/utils"
)

const (
	OTPExpirationMinutes = 10
	otpCodeLength        = 6
	otpSweepInterval     = time.Hour
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type OTPService interface {
	// IssueSignupCode mails a signup code. Rejects addresses that already
	// belong to an account.
	IssueSignupCode(ctx context.Context, email string) error
	// IssueResetCode mails a password-reset code. Returns nil whether or not
	// the account exists; a code is only stored and sent when it does.
	IssueResetCode(ctx context.Context, email string) error
	// Verify consumes a code. Wrong, expired and replayed codes are all
	// reported as models.ErrInvalidCode with no further detail.
	Verify(ctx context.Context, email, code, purpose string) error
}

type otpService struct {
	userRepo     repositories.UserRepository
	otpRepo      repositories.OTPRepository
	emailService EmailService
}

func NewOTPService(userRepo repositories.UserRepository, otpRepo repositories.OTPRepository, emailService EmailService) OTPService {
	return &otpService{userRepo: userRepo, otpRepo: otpRepo, emailService: emailService}
}

func (s *otpService) IssueSignupCode(ctx context.Context, email string) error {
	if !emailRx.MatchString(email) {
		return models.ErrInvalidEmail
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user != nil {
		log.Warn().Str("email", email).Msg("Signup code requested for existing account")
		return models.ErrEmailTaken
	}

	return s.issue(ctx, email, models.OTPPurposeSignup,
		"Verify your email",
		"Your verification code is: %s. It expires in 10 minutes.")
}

func (s *otpService) IssueResetCode(ctx context.Context, email string) error {
	if !emailRx.MatchString(email) {
		return models.ErrInvalidEmail
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		// Account existence is not revealed: report success, send nothing.
		log.Debug().Str("email", email).Msg("Reset code requested for unknown email")
		return nil
	}

	return s.issue(ctx, email, models.OTPPurposePasswordReset,
		"Your password reset code",
		"Your password reset code is: %s. It expires in 10 minutes.")
}

func (s *otpService) issue(ctx context.Context, email, purpose, subject, bodyFormat string) error {
	code, err := utils.GenerateSecureOTP(otpCodeLength)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	otp := &models.OTP{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(OTPExpirationMinutes * time.Minute),
		Consumed:  false,
	}

	if _, err := s.otpRepo.Create(ctx, otp); err != nil {
		return err
	}

	// A failed send leaves the stored code behind; it expires on its own.
	if err := s.emailService.SendEmail(email, subject, fmt.Sprintf(bodyFormat, code)); err != nil {
		log.Error().Err(err).Str("email", email).Str("purpose", purpose).Msg("Failed to deliver OTP email")
		return models.ErrDeliveryFailed
	}

	log.Info().Str("email", email).Str("purpose", purpose).Msg("OTP issued")
	return nil
}

func (s *otpService) Verify(ctx context.Context, email, code, purpose string) error {
	otp, err := s.otpRepo.Consume(ctx, email, code, purpose, time.Now())
	if err != nil {
		return err
	}
	if otp == nil {
		utils.OTPVerificationsTotal.WithLabelValues(purpose, "invalid").Inc()
		log.Warn().Str("email", email).Str("purpose", purpose).Msg("OTP verification failed")
		return models.ErrInvalidCode
	}

	utils.OTPVerificationsTotal.WithLabelValues(purpose, "valid").Inc()
	log.Info().Str("email", email).Str("purpose", purpose).Msg("OTP verified")
	return nil
}

// SweepExpiredOTPs periodically purges expired codes. Housekeeping only; the
// validity check never relies on it.
func SweepExpiredOTPs(ctx context.Context, otpRepo repositories.OTPRepository) {
	ticker := time.NewTicker(otpSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := otpRepo.DeleteExpired(sweepCtx); err != nil {
				log.Error().Err(err).Msg("Error sweeping expired OTPs")
			}
			cancel()
		}
	}
}
