package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/clients"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/config"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/database"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/middlewares"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/repositories"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/scheduler"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/services"
)

type Server struct {
	port           int
	cfg            *config.Config
	httpServer     *http.Server
	db             database.Service
	otpRepo        repositories.OTPRepository
	otpService     services.OTPService
	userService    services.UserService
	accountService services.AccountService
	usageReporter  *services.UsageReporter
	reportSchedule *scheduler.Daily
}

func NewServer(cfg *config.Config) *Server {
	db := database.New(cfg.MongoURI)

	userRepo := repositories.NewUserRepository(db)
	otpRepo := repositories.NewOTPRepository(db)

	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	cryptoBot := clients.NewCryptoBot(cfg.CryptoBotURL)
	billing := clients.NewBilling(cfg.BillingAPIURL, cfg.BillingAPIKey)

	otpService := services.NewOTPService(userRepo, otpRepo, emailService)

	s := &Server{
		port:           cfg.Port,
		cfg:            cfg,
		db:             db,
		otpRepo:        otpRepo,
		otpService:     otpService,
		userService:    services.NewUserService(userRepo, otpService, cryptoBot, cfg.JWTSecret),
		accountService: services.NewAccountService(cryptoBot),
		usageReporter:  services.NewUsageReporter(userRepo, cryptoBot, billing),
		reportSchedule: scheduler.NewDaily(cfg.ReportHour, cfg.ReportMinute, time.Now()),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.port).Time("next_usage_report", s.reportSchedule.Next()).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

// RunBackgroundJobs drives the daily usage report off a minute ticker and the
// expired-OTP sweep until ctx is cancelled.
func (s *Server) RunBackgroundJobs(ctx context.Context) {
	go services.SweepExpiredOTPs(ctx, s.otpRepo)
	go middlewares.CleanupVisitors()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.reportSchedule.Tick(now) {
				s.usageReporter.Run(ctx)
			}
		}
	}
}

func (s *Server) GracefulShutdown(cancelJobs context.CancelFunc, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()
	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	if err := s.db.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
