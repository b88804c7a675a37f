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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sukrit1990/cryptobot-ui-sub000/internal/database"
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	FindBilled(ctx context.Context) ([]models.User, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
	CountAll(ctx context.Context) (int64, error)
}

type userRepository struct {
	db database.Service
}

func NewUserRepository(db database.Service) UserRepository {
	r := &userRepository{db: db}
	if err := r.ensureIndexes(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to ensure user collection indexes")
	}
	return r
}

func (r *userRepository) collection() *mongo.Collection {
	return r.db.Client().Database(database.Name).Collection("users")
}

// ensureIndexes enforces email uniqueness at the collection level. Signup
// codes for one address may coexist, so two verified registrations can race;
// the index makes the second insert fail instead of duplicating the account.
func (r *userRepository) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	queryType := "create"
	repository := "user"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		observeQuery(queryType, repository, status, v)
	}))
	defer timer.ObserveDuration()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	_, err := r.collection().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrEmailTaken
		}
		status = "error"
		countQueryError(queryType, repository)
		log.Error().Err(err).Str("email", user.Email).Msg("Failed to insert user into database")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	queryType := "findByEmail"
	repository := "user"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		observeQuery(queryType, repository, status, v)
	}))
	defer timer.ObserveDuration()

	var user models.User
	err := r.collection().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		status = "error"
		countQueryError(queryType, repository)
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	queryType := "findById"
	repository := "user"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		observeQuery(queryType, repository, status, v)
	}))
	defer timer.ObserveDuration()

	var user models.User
	err := r.collection().FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		status = "error"
		countQueryError(queryType, repository)
		return nil, err
	}
	return &user, nil
}

// FindBilled returns every user carrying a subscription identifier. These are
// the audience for the daily usage-reporting run.
func (r *userRepository) FindBilled(ctx context.Context) ([]models.User, error) {
	queryType := "findBilled"
	repository := "user"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		observeQuery(queryType, repository, status, v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"subscription_id": bson.M{"$nin": bson.A{"", nil}}}
	cursor, err := r.collection().Find(ctx, filter)
	if err != nil {
		status = "error"
		countQueryError(queryType, repository)
		log.Error().Err(err).Msg("Failed to list billed users")
		return nil, fmt.Errorf("failed to list billed users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		status = "error"
		countQueryError(queryType, repository)
		return nil, fmt.Errorf("failed to decode billed users: %w", err)
	}
	return users, nil
}

func (r *userRepository) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	queryType := "updatePassword"
	repository := "user"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		observeQuery(queryType, repository, status, v)
	}))
	defer timer.ObserveDuration()

	update := bson.M{"$set": bson.M{"password": passwordHash, "updated_at": time.Now()}}
	result, err := r.collection().UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		status = "error"
		countQueryError(queryType, repository)
		log.Error().Err(err).Str("email", email).Msg("Error updating user password")
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) CountAll(ctx context.Context) (int64, error) {
	queryType := "countAll"
	repository := "user"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		observeQuery(queryType, repository, status, v)
	}))
	defer timer.ObserveDuration()

	count, err := r.collection().CountDocuments(ctx, bson.M{})
	if err != nil {
		status = "error"
		countQueryError(queryType, repository)
		log.Error().Err(err).Msg("Failed to count total users")
		return 0, fmt.Errorf("failed to count total users: %w", err)
	}
	return count, nil
}
