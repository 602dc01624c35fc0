package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/pairwise/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrNotFound          = errors.New("not found")
)

type UsersRepository struct {
	mongoRepo *MongoRepository
}

func NewUsersRepository(mongoRepo *MongoRepository) *UsersRepository {
	return &UsersRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *UsersRepository) EnsureIndexes(ctx context.Context) error {
	err := r.mongoRepo.CreateIndexes(ctx, usersCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (r *UsersRepository) InsertUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now().UTC()

	err := r.mongoRepo.InsertOne(ctx, usersCollection, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByUsername returns ErrNotFound when no user has that name
func (r *UsersRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	filter := bson.M{"username": username}

	var user models.User
	err := r.mongoRepo.FindOne(ctx, usersCollection, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}
