package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VitaminP8/picstream/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const tokensCollection = "blacklisted_tokens"

type TokenMongoStorage struct{}

func NewTokenMongoStorage() *TokenMongoStorage {
	return &TokenMongoStorage{}
}

func (s *TokenMongoStorage) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	err := DB.Collection(tokensCollection).FindOne(ctx, bson.M{"token": token}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return true, nil
}

func (s *TokenMongoStorage) BlacklistToken(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := DB.Collection(tokensCollection).InsertOne(ctx, models.BlacklistedToken{
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}
