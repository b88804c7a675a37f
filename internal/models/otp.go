package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OTPPurposeSignup        = "signup"
	OTPPurposePasswordReset = "password-reset"
)

// OTP is a one-time code gating signup and password reset. Codes are keyed by
// email rather than user ID because a signup code exists before the user row does.
type OTP struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Code      string             `json:"code" bson:"code"`
	Purpose   string             `json:"purpose" bson:"purpose"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
	Consumed  bool               `json:"consumed" bson:"consumed"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
