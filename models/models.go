package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile - документ пользователя в MongoDB.
// Уникальность username проверяется перед вставкой (check-then-insert), индекса нет
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Password     string             `bson:"password"`
	ProfilePhoto string             `bson:"profile_photo,omitempty"`
	Description  string             `bson:"description,omitempty"`
}

type Comment struct {
	Username  string    `bson:"username"`
	Text      string    `bson:"text"`
	Timestamp time.Time `bson:"timestamp"`
}

type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Owner       primitive.ObjectID `bson:"owner"`
	ImagePath   string             `bson:"image_path"`
	Description string             `bson:"description,omitempty"`
	Timestamp   time.Time          `bson:"timestamp"`
	Likes       []string           `bson:"likes"`
	Comments    []Comment          `bson:"comments"`
}

// BlacklistedToken - отозванный токен. Просроченные записи не удаляются (внешняя очистка)
type BlacklistedToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Token     string             `bson:"token"`
	ExpiresAt time.Time          `bson:"expires_at"`
}
