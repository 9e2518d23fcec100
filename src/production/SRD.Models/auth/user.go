package auth_models

import (
	"time"
)

// User represents an account binding a dashboard login to one sensor device.
// Users are created once and never mutated or deleted by the system.
type User struct {
	UserID    string    `bson:"user_id" db:"user_id" json:"userId"`
	Username  string    `bson:"username" db:"username" json:"username"`
	Password  string    `bson:"password" db:"password" json:"-"` // bcrypt hash, never exposed
	DeviceID  string    `bson:"device_id" db:"device_id" json:"deviceId"`
	CreatedAt time.Time `bson:"created_at" db:"created_at" json:"createdAt"`
}

// UserSummary is the public projection returned by the user listing.
type UserSummary struct {
	Username string `bson:"username" json:"username"`
	DeviceID string `bson:"device_id" json:"deviceId"`
}

// NewUser creates a new User instance. Password must already be hashed.
func NewUser(userID, username, hashedPassword, deviceID string) *User {
	return &User{
		UserID:    userID,
		Username:  username,
		Password:  hashedPassword,
		DeviceID:  deviceID,
		CreatedAt: time.Now().UTC(),
	}
}
