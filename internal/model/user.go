package model

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	Telegram         Telegram             `bson:"telegram"`
	Email            string               `bson:"email"`
	Notifications    bool                 `bson:"notifications"`
	Microcontrollers []primitive.ObjectID `bson:"microcontrollers"`
	CreatedAt        primitive.DateTime   `bson:"created_at"`
	UpdatedAt        primitive.DateTime   `bson:"updated_at"`
}

// Telegram identity. UserID alone is the lookup key; first/last name are
// display data refreshed from incoming messages and never part of identity.
type Telegram struct {
	UserID    int64  `bson:"user_id"`
	FirstName string `bson:"first_name"`
	LastName  string `bson:"last_name"`
}
