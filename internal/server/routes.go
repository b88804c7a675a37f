package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/handlers"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	prom := middlewares.NewPrometheusMiddleware()
	r.Use(middlewares.CorsMiddleware(s.cfg.AllowedOrigins))
	r.Use(prom.Instrument)

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.HelloWorldHandler)
	r.HandleFunc("/health", ch.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	auth := middlewares.AuthMiddleware(s.cfg.JWTSecret)
	s.registerAuthRoutes(r, auth)
	s.registerAccountRoutes(r, auth)

	return r
}

// Public routes are limited per client IP. Protected routes run the limiter
// after auth so limiting is per authenticated user.
func (s *Server) registerAuthRoutes(r *mux.Router, auth func(http.Handler) http.Handler) {
	uh := handlers.NewUserHandler(s.userService)
	ah := handlers.NewAuthHandler(s.otpService, s.userService)

	limited := func(h http.HandlerFunc) http.Handler {
		return middlewares.RateLimit(h)
	}

	r.Handle("/api/auth/register/send-code", limited(ah.SendSignupCode)).Methods("POST", "OPTIONS")
	r.Handle("/api/auth/register", limited(ah.Register)).Methods("POST", "OPTIONS")
	r.Handle("/api/auth/login", limited(uh.Login)).Methods("POST", "OPTIONS")
	r.Handle("/api/auth/forgot-password", limited(ah.ForgotPassword)).Methods("POST", "OPTIONS")
	r.Handle("/api/auth/reset-password", limited(ah.ResetPassword)).Methods("POST", "OPTIONS")
	r.Handle("/api/me", auth(middlewares.RateLimit(http.HandlerFunc(uh.GetMyProfile)))).Methods("GET", "OPTIONS")
}

func (s *Server) registerAccountRoutes(r *mux.Router, auth func(http.Handler) http.Handler) {
	ah := handlers.NewAccountHandler(s.accountService)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth(middlewares.RateLimit(h))
	}

	r.Handle("/api/account/funds", protected(ah.GetFunds)).Methods("GET", "OPTIONS")
	r.Handle("/api/account/profit", protected(ah.GetProfitHistory)).Methods("GET", "OPTIONS")
	r.Handle("/api/account/state", protected(ah.GetTradingState)).Methods("GET", "OPTIONS")
	r.Handle("/api/account/state", protected(ah.SetTradingState)).Methods("POST", "OPTIONS")
}
