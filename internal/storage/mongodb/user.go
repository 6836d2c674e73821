package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/VitaminP8/picstream/graph/model"
	"github.com/VitaminP8/picstream/internal/apperrors"
	"github.com/VitaminP8/picstream/internal/auth"
	"github.com/VitaminP8/picstream/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const profilesCollection = "profiles"

type UserMongoStorage struct{}

func NewUserMongoStorage() *UserMongoStorage {
	return &UserMongoStorage{}
}

func (s *UserMongoStorage) RegisterUser(ctx context.Context, username, password string) error {
	coll := DB.Collection(profilesCollection)

	// проверка - существует ли такой пользователь (две операции, не атомарно)
	err := coll.FindOne(ctx, bson.M{"username": username}).Err()
	if err == nil {
		return apperrors.NewConflict(fmt.Sprintf("username %s already taken", username))
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = coll.InsertOne(ctx, models.Profile{
		Username: username,
		Password: string(hashedPassword),
	})
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (s *UserMongoStorage) LoginUser(ctx context.Context, username, password string) (string, error) {
	coll := DB.Collection(profilesCollection)

	var profile models.Profile
	err := coll.FindOne(ctx, bson.M{"username": username}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", apperrors.NewNotFound(fmt.Sprintf("user %s not found", username))
	}
	if err != nil {
		return "", fmt.Errorf("failed to find profile: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(password))
	if err != nil {
		return "", apperrors.NewInvalidCredentials("invalid credentials")
	}

	return auth.GenerateToken(username)
}

func (s *UserMongoStorage) GetProfile(ctx context.Context, username string) (*model.Profile, error) {
	coll := DB.Collection(profilesCollection)

	var profile models.Profile
	err := coll.FindOne(ctx, bson.M{"username": username}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound(fmt.Sprintf("profile %s not found", username))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return toProfileModel(&profile), nil
}

func (s *UserMongoStorage) GetProfilesByUsernames(ctx context.Context, usernames []string) ([]*model.Profile, error) {
	// nil-срез кодируется как {$in: null} и сервер отвечает BadValue
	if len(usernames) == 0 {
		return []*model.Profile{}, nil
	}

	coll := DB.Collection(profilesCollection)

	cursor, err := coll.Find(ctx, bson.M{"username": bson.M{"$in": usernames}})
	if err != nil {
		return nil, fmt.Errorf("failed to find profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*model.Profile
	for cursor.Next(ctx) {
		var profile models.Profile
		if err := cursor.Decode(&profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, toProfileModel(&profile))
	}

	return profiles, cursor.Err()
}

func (s *UserMongoStorage) UpdateProfile(ctx context.Context, profilePhoto, description *string) (*model.Profile, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	set := bson.M{}
	if profilePhoto != nil {
		set["profile_photo"] = *profilePhoto
	}
	if description != nil {
		set["description"] = *description
	}

	coll := DB.Collection(profilesCollection)

	// пустой $set сервер отвергает - без полей возвращаем текущий профиль как есть
	if len(set) == 0 {
		var profile models.Profile
		err = coll.FindOne(ctx, bson.M{"username": username}).Decode(&profile)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFound(fmt.Sprintf("profile %s not found", username))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find profile: %w", err)
		}
		return toProfileModel(&profile), nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var profile models.Profile
	err = coll.FindOneAndUpdate(ctx, bson.M{"username": username}, bson.M{"$set": set}, opts).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound(fmt.Sprintf("profile %s not found", username))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return toProfileModel(&profile), nil
}

func (s *UserMongoStorage) DeleteProfile(ctx context.Context) error {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return apperrors.NewUnauthorized("not authenticated")
	}

	coll := DB.Collection(profilesCollection)
	res, err := coll.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFound(fmt.Sprintf("profile %s not found", username))
	}

	return nil
}

func (s *UserMongoStorage) SearchUsers(ctx context.Context, username string) ([]*model.Profile, error) {
	caller, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	coll := DB.Collection(profilesCollection)

	// точное совпадение в коллации по умолчанию (регистрозависимо), сам пользователь исключен
	cursor, err := coll.Find(ctx, bson.M{
		"username": bson.M{"$eq": username, "$ne": caller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := make([]*model.Profile, 0)
	for cursor.Next(ctx) {
		var profile models.Profile
		if err := cursor.Decode(&profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, toProfileModel(&profile))
	}

	return profiles, cursor.Err()
}

func (s *UserMongoStorage) ListUsernames(ctx context.Context, exclude string) ([]string, error) {
	coll := DB.Collection(profilesCollection)

	opts := options.Find().SetProjection(bson.M{"username": 1})
	cursor, err := coll.Find(ctx, bson.M{"username": bson.M{"$ne": exclude}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list usernames: %w", err)
	}
	defer cursor.Close(ctx)

	usernames := make([]string, 0)
	for cursor.Next(ctx) {
		var profile models.Profile
		if err := cursor.Decode(&profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		usernames = append(usernames, profile.Username)
	}

	return usernames, cursor.Err()
}

func toProfileModel(p *models.Profile) *model.Profile {
	result := &model.Profile{
		ID:       p.ID.Hex(),
		Username: p.Username,
	}
	if p.ProfilePhoto != "" {
		photo := p.ProfilePhoto
		result.ProfilePhoto = &photo
	}
	if p.Description != "" {
		description := p.Description
		result.Description = &description
	}
	return result
}
