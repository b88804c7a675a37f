package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/database"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
)

type OTPRepository interface {
	Create(ctx context.Context, otp *models.OTP) (*models.OTP, error)
	// Consume atomically marks the matching unconsumed, unexpired code as
	// consumed and returns it, or (nil, nil) when no such code exists. Two
	// concurrent calls for the same code cannot both succeed.
	Consume(ctx context.Context, email, code, purpose string, now time.Time) (*models.OTP, error)
	DeleteExpired(ctx context.Context) error
}

type otpRepository struct {
	db database.Service
}

func NewOTPRepository(db database.Service) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) collection() *mongo.Collection {
	return r.db.Client().Database(database.Name).Collection("otps")
}

func (r *otpRepository) Create(ctx context.Context, otp *models.OTP) (*models.OTP, error) {
	queryType := "create"
	repository := "otp"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		observeQuery(queryType, repository, status, v)
	}))
	defer timer.ObserveDuration()

	otp.ID = primitive.NewObjectID()
	otp.CreatedAt = time.Now()
	otp.UpdatedAt = time.Now()
	_, err := r.collection().InsertOne(ctx, otp)
	if err != nil {
		status = "error"
		countQueryError(queryType, repository)
		log.Error().Err(err).Str("email", otp.Email).Str("purpose", otp.Purpose).Msg("Failed to store OTP")
		return nil, fmt.Errorf("failed to store otp: %w", err)
	}
	return otp, nil
}

func (r *otpRepository) Consume(ctx context.Context, email, code, purpose string, now time.Time) (*models.OTP, error) {
	queryType := "consume"
	repository := "otp"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		observeQuery(queryType, repository, status, v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{
		"email":      email,
		"code":       code,
		"purpose":    purpose,
		"consumed":   false,
		"expires_at": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{"consumed": true, "updated_at": now}}

	var otp models.OTP
	err := r.collection().FindOneAndUpdate(ctx, filter, update).Decode(&otp)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		status = "error"
		countQueryError(queryType, repository)
		return nil, fmt.Errorf("failed to consume otp: %w", err)
	}
	return &otp, nil
}

func (r *otpRepository) DeleteExpired(ctx context.Context) error {
	queryType := "deleteExpired"
	repository := "otp"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		observeQuery(queryType, repository, status, v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"expires_at": bson.M{"$lt": time.Now()}}
	_, err := r.collection().DeleteMany(ctx, filter)
	if err != nil {
		status = "error"
		countQueryError(queryType, repository)
		return fmt.Errorf("failed to delete expired otps: %w", err)
	}
	return nil
}
