package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name"`
	Email             string             `json:"email" bson:"email"`
	Password          string             `json:"password,omitempty" bson:"password"`
	ExchangeAPIKey    string             `json:"-" bson:"exchange_api_key"`
	ExchangeAPISecret string             `json:"-" bson:"exchange_api_secret"`
	InitialFunds      float64            `json:"initial_funds" bson:"initial_funds"`
	SubscriptionID    string             `json:"subscription_id,omitempty" bson:"subscription_id"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}
