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

const alignmentsCollection = "alignments"

type AlignmentsRepository struct {
	mongoRepo *MongoRepository
}

func NewAlignmentsRepository(mongoRepo *MongoRepository) *AlignmentsRepository {
	return &AlignmentsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *AlignmentsRepository) EnsureIndexes(ctx context.Context) error {
	err := r.mongoRepo.CreateIndexes(ctx, alignmentsCollection, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create alignment indexes: %w", err)
	}
	return nil
}

func (r *AlignmentsRepository) InsertAlignment(ctx context.Context, alignment *models.Alignment) error {
	if alignment.CreatedAt.IsZero() {
		alignment.CreatedAt = time.Now().UTC()
	}

	err := r.mongoRepo.InsertOne(ctx, alignmentsCollection, alignment)
	if err != nil {
		return fmt.Errorf("failed to insert alignment: %w", err)
	}

	return nil
}

// GetAlignment returns the record only when it belongs to userID
func (r *AlignmentsRepository) GetAlignment(ctx context.Context, userID, id string) (*models.Alignment, error) {
	filter := bson.M{"_id": id, "userId": userID}

	var alignment models.Alignment
	err := r.mongoRepo.FindOne(ctx, alignmentsCollection, filter).Decode(&alignment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find alignment: %w", err)
	}

	return &alignment, nil
}

// ListAlignmentsByUser returns the newest records first, without file
// contents or aligned rows
func (r *AlignmentsRepository) ListAlignmentsByUser(ctx context.Context, userID string, limit int64) ([]*models.Alignment, error) {
	filter := bson.M{"userId": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{
			"file1Content":  0,
			"file2Content":  0,
			"alignedFirst":  0,
			"alignedSecond": 0,
			"operations":    0,
		})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.mongoRepo.FindMany(ctx, alignmentsCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find alignments: %w", err)
	}
	defer cursor.Close(ctx)

	alignments := make([]*models.Alignment, 0)
	if err := cursor.All(ctx, &alignments); err != nil {
		return nil, fmt.Errorf("failed to decode alignments: %w", err)
	}

	return alignments, nil
}

// ListRecentAlignmentIDs returns the ids of the user's n newest alignments
func (r *AlignmentsRepository) ListRecentAlignmentIDs(ctx context.Context, userID string, n int) ([]string, error) {
	filter := bson.M{"userId": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"_id": 1}).
		SetLimit(int64(n))

	cursor, err := r.mongoRepo.FindMany(ctx, alignmentsCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent alignments: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode recent alignments: %w", err)
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}
