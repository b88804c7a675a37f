package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/clients"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/repositories"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/utils"
)

// MinimumInvestment is the smallest initial funding accepted at signup, in dollars.
const MinimumInvestment = 500

// accountProvisioner creates the trading account after a verified registration.
type accountProvisioner interface {
	Signup(ctx context.Context, req clients.SignupRequest) error
}

type UserService interface {
	Register(ctx context.Context, reg *models.Registration) (*models.User, error)
	Login(ctx context.Context, creds *models.Login) (string, error)
	ResetPassword(ctx context.Context, req *models.ResetPassword) error
	Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
}

type userService struct {
	userRepo    repositories.UserRepository
	otpService  OTPService
	provisioner accountProvisioner
	jwtSecret   string
}

func NewUserService(userRepo repositories.UserRepository, otpService OTPService, provisioner accountProvisioner, jwtSecret string) UserService {
	s := &userService{
		userRepo:    userRepo,
		otpService:  otpService,
		provisioner: provisioner,
		jwtSecret:   jwtSecret,
	}
	go s.updateTotalUsersPeriodically()
	return s
}

func (s *userService) updateTotalUsersPeriodically() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		count, err := s.userRepo.CountAll(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Error updating total users gauge")
		} else {
			utils.AppTotalUsers.Set(float64(count))
		}
		cancel()
	}
}

// Register materializes a pending registration once its signup code verifies.
// Nothing is persisted when the code is wrong, expired or replayed.
func (s *userService) Register(ctx context.Context, reg *models.Registration) (*models.User, error) {
	log.Debug().Str("email", reg.Email).Msg("Attempting to register user")
	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		return nil, models.ErrInvalidEmail
	}
	if reg.InitialFunds < MinimumInvestment {
		log.Warn().Str("email", reg.Email).Float64("funds", reg.InitialFunds).Msg("Initial funds below minimum")
		return nil, models.ErrFundsBelowFloor
	}

	// Uniqueness is re-checked here because several outstanding signup codes
	// for one address may coexist; the check runs before Verify so a rejected
	// duplicate does not consume a code. The unique index on users.email
	// backstops the remaining race at insert time.
	existing, err := s.userRepo.FindByEmail(ctx, reg.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Warn().Str("email", reg.Email).Msg("Registration attempted for an existing account")
		return nil, models.ErrEmailTaken
	}

	if err := s.otpService.Verify(ctx, reg.Email, reg.Code, models.OTPPurposeSignup); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password during registration")
		return nil, err
	}

	user := &models.User{
		ID:                primitive.NewObjectID(),
		Name:              reg.Name,
		Email:             reg.Email,
		Password:          string(hashedPassword),
		ExchangeAPIKey:    reg.ExchangeAPIKey,
		ExchangeAPISecret: reg.ExchangeAPISecret,
		InitialFunds:      reg.InitialFunds,
	}

	createdUser, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	// Provisioning is best effort here; a failure is operational, not a
	// reason to roll back a verified account.
	if err := s.provisioner.Signup(ctx, clients.SignupRequest{
		Name:              reg.Name,
		Email:             reg.Email,
		ExchangeAPIKey:    reg.ExchangeAPIKey,
		ExchangeAPISecret: reg.ExchangeAPISecret,
		InitialFunds:      reg.InitialFunds,
	}); err != nil {
		log.Error().Err(err).Str("email", reg.Email).Msg("Failed to provision trading account")
	}

	createdUser.Password = ""
	log.Info().Str("user_id", createdUser.ID.Hex()).Str("email", createdUser.Email).Msg("User registered successfully")
	return createdUser, nil
}

func (s *userService) Login(ctx context.Context, creds *models.Login) (string, error) {
	log.Debug().Str("email", creds.Email).Msg("Attempting user login")
	user, err := s.userRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		log.Error().Err(err).Str("email", creds.Email).Msg("Error finding user for login")
		return "", err
	}
	if user == nil {
		return "", models.ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		log.Warn().Str("email", creds.Email).Msg("Invalid credentials during login attempt")
		return "", models.ErrBadCredentials
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, s.jwtSecret)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Could not generate token for user")
		return "", err
	}

	log.Info().Str("user_id", user.ID.Hex()).Msg("User logged in successfully")
	return token, nil
}

func (s *userService) ResetPassword(ctx context.Context, req *models.ResetPassword) error {
	if err := s.otpService.Verify(ctx, req.Email, req.Code, models.OTPPurposePasswordReset); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password during reset")
		return err
	}

	if err := s.userRepo.UpdatePasswordByEmail(ctx, req.Email, string(hashedPassword)); err != nil {
		return err
	}

	log.Info().Str("email", req.Email).Msg("Password reset successfully")
	return nil
}

func (s *userService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	user.Password = ""
	return user, nil
}
