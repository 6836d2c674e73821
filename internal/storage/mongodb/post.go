package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VitaminP8/picstream/graph/model"
	"github.com/VitaminP8/picstream/internal/apperrors"
	"github.com/VitaminP8/picstream/internal/auth"
	"github.com/VitaminP8/picstream/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postsCollection = "posts"

type PostMongoStorage struct{}

func NewPostMongoStorage() *PostMongoStorage {
	return &PostMongoStorage{}
}

func (s *PostMongoStorage) CreatePost(ctx context.Context, imagePath string, description *string) (*model.Post, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	var owner models.Profile
	err = DB.Collection(profilesCollection).FindOne(ctx, bson.M{"username": username}).Decode(&owner)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound(fmt.Sprintf("profile %s not found", username))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find owner profile: %w", err)
	}

	doc := models.Post{
		Owner:     owner.ID,
		ImagePath: imagePath,
		Timestamp: time.Now().UTC(),
		Likes:     []string{},
		Comments:  []models.Comment{},
	}
	if description != nil {
		doc.Description = *description
	}

	res, err := DB.Collection(postsCollection).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)

	return toPostModel(&doc, toProfileModel(&owner)), nil
}

func (s *PostMongoStorage) GetPostById(ctx context.Context, id string) (*model.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewNotFound("post not found")
	}

	var doc models.Post
	err = DB.Collection(postsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound("post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	owner, err := s.ownerProfile(ctx, doc.Owner)
	if err != nil {
		return nil, err
	}

	return toPostModel(&doc, owner), nil
}

func (s *PostMongoStorage) GetPostsByOwnerIds(ctx context.Context, ownerIds []string) ([]*model.Post, error) {
	oids := make([]primitive.ObjectID, 0, len(ownerIds))
	for _, id := range ownerIds {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}

	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	cursor, err := DB.Collection(postsCollection).Find(ctx, bson.M{"owner": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Post
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	// "populate": профили владельцев одним запросом
	ownerSet := make(map[primitive.ObjectID]bool)
	for _, doc := range docs {
		ownerSet[doc.Owner] = true
	}
	ownerList := make([]primitive.ObjectID, 0, len(ownerSet))
	for oid := range ownerSet {
		ownerList = append(ownerList, oid)
	}

	ownerCursor, err := DB.Collection(profilesCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ownerList}})
	if err != nil {
		return nil, fmt.Errorf("failed to find owner profiles: %w", err)
	}
	defer ownerCursor.Close(ctx)

	owners := make(map[primitive.ObjectID]*model.Profile)
	for ownerCursor.Next(ctx) {
		var profile models.Profile
		if err := ownerCursor.Decode(&profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		owners[profile.ID] = toProfileModel(&profile)
	}
	if err := ownerCursor.Err(); err != nil {
		return nil, err
	}

	posts := make([]*model.Post, 0, len(docs))
	for i := range docs {
		owner, ok := owners[docs[i].Owner]
		if !ok {
			// пост осиротел: профиль удален из документной базы, пост остался
			continue
		}
		posts = append(posts, toPostModel(&docs[i], owner))
	}

	return posts, nil
}

func (s *PostMongoStorage) DeletePostById(ctx context.Context, id string) error {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return apperrors.NewUnauthorized("not authenticated")
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.NewNotFound("post not found")
	}

	var doc models.Post
	err = DB.Collection(postsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NewNotFound("post not found")
	}
	if err != nil {
		return fmt.Errorf("failed to find post: %w", err)
	}

	owner, err := s.ownerProfile(ctx, doc.Owner)
	if err != nil {
		return err
	}
	if owner.Username != username {
		return apperrors.NewForbidden("you are not the owner of this post")
	}

	_, err = DB.Collection(postsCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

func (s *PostMongoStorage) DeletePostsByOwnerId(ctx context.Context, ownerId string) error {
	oid, err := primitive.ObjectIDFromHex(ownerId)
	if err != nil {
		return apperrors.NewNotFound("profile not found")
	}

	_, err = DB.Collection(postsCollection).DeleteMany(ctx, bson.M{"owner": oid})
	if err != nil {
		return fmt.Errorf("failed to delete posts: %w", err)
	}

	return nil
}

func (s *PostMongoStorage) LikePost(ctx context.Context, id string) (*model.Post, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	post, err := s.GetPostById(ctx, id)
	if err != nil {
		return nil, err
	}

	// check-then-act: два раунда до базы, конкурирующие запросы могут продублировать лайк
	for _, likedBy := range post.Likes {
		if likedBy == username {
			return nil, apperrors.NewConflict("Post already liked")
		}
	}

	oid, _ := primitive.ObjectIDFromHex(id)
	_, err = DB.Collection(postsCollection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$push": bson.M{"likes": username}})
	if err != nil {
		return nil, fmt.Errorf("failed to like post: %w", err)
	}

	post.Likes = append(post.Likes, username)
	post.LikeCount = len(post.Likes)
	return post, nil
}

func (s *PostMongoStorage) UnlikePost(ctx context.Context, id string) (*model.Post, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	post, err := s.GetPostById(ctx, id)
	if err != nil {
		return nil, err
	}

	oid, _ := primitive.ObjectIDFromHex(id)
	_, err = DB.Collection(postsCollection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$pull": bson.M{"likes": username}})
	if err != nil {
		return nil, fmt.Errorf("failed to unlike post: %w", err)
	}

	for i, likedBy := range post.Likes {
		if likedBy == username {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			break
		}
	}
	post.LikeCount = len(post.Likes)
	return post, nil
}

func (s *PostMongoStorage) AddComment(ctx context.Context, id, text string) (*model.Comment, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewNotFound("post not found")
	}

	now := time.Now().UTC()
	res, err := DB.Collection(postsCollection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$push": bson.M{"comments": models.Comment{
			Username:  username,
			Text:      text,
			Timestamp: now,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.NewNotFound("post not found")
	}

	return &model.Comment{
		Username:  username,
		Text:      text,
		CreatedAt: now.Format(time.RFC3339),
	}, nil
}

func (s *PostMongoStorage) ownerProfile(ctx context.Context, ownerID primitive.ObjectID) (*model.Profile, error) {
	var profile models.Profile
	err := DB.Collection(profilesCollection).FindOne(ctx, bson.M{"_id": ownerID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound("post owner profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find owner profile: %w", err)
	}
	return toProfileModel(&profile), nil
}

func toPostModel(doc *models.Post, owner *model.Profile) *model.Post {
	post := &model.Post{
		ID:        doc.ID.Hex(),
		Owner:     owner,
		ImagePath: doc.ImagePath,
		CreatedAt: doc.Timestamp.Format(time.RFC3339),
		Likes:     doc.Likes,
		LikeCount: len(doc.Likes),
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if doc.Description != "" {
		description := doc.Description
		post.Description = &description
	}
	post.Comments = make([]*model.Comment, 0, len(doc.Comments))
	for _, c := range doc.Comments {
		post.Comments = append(post.Comments, &model.Comment{
			Username:  c.Username,
			Text:      c.Text,
			CreatedAt: c.Timestamp.Format(time.RFC3339),
		})
	}
	return post
}
