package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/realtime"
)

// StoryRepository keeps stories in MongoDB and their views in PostgreSQL.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	// GetStoriesByUserIDs returns unexpired stories, oldest first.
	GetStoriesByUserIDs(ctx context.Context, userIDs []uint) ([]models.Story, error)
	// DeleteCreatedBefore removes stories created before cutoff and returns their ids.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
	MarkSeen(ctx context.Context, storyID string, viewerID uint) error
	HasSeen(ctx context.Context, storyID string, viewerID uint) (bool, error)
	GetSeenStoryIDs(ctx context.Context, viewerID uint, storyIDs []string) ([]string, error)
	DeleteViews(ctx context.Context, storyIDs []string) (int64, error)
}

type storyRepository struct {
	mongoCollection *mongo.Collection
	pgDB            *gorm.DB
	feed
}

func NewStoryRepository(mongoDB *mongo.Database, pgDB *gorm.DB, pub realtime.Publisher, log *zap.Logger) StoryRepository {
	return &storyRepository{
		mongoCollection: mongoDB.Collection("stories"),
		pgDB:            pgDB,
		feed:            newFeed(pub, log),
	}
}

func (r *storyRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now().UTC()
	}
	if story.ExpiresAt.IsZero() {
		story.ExpiresAt = story.CreatedAt.Add(24 * time.Hour)
	}
	if _, err := r.mongoCollection.InsertOne(ctx, story); err != nil {
		return err
	}
	r.inserted(ctx, TableStories, story)
	return nil
}

func (r *storyRepository) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	objID, err := objectID(id, "story")
	if err != nil {
		return nil, err
	}
	var story models.Story
	if err := r.mongoCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&story); err != nil {
		return nil, notFound(err, "story")
	}
	return &story, nil
}

func (r *storyRepository) GetStoriesByUserIDs(ctx context.Context, userIDs []uint) ([]models.Story, error) {
	stories := []models.Story{}
	if len(userIDs) == 0 {
		return stories, nil
	}
	filter := bson.M{
		"user_id":    bson.M{"$in": userIDs},
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.mongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *storyRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	filter := bson.M{"created_at": bson.M{"$lt": cutoff}}
	cursor, err := r.mongoCollection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1, "user_id": 1}))
	if err != nil {
		return nil, err
	}
	var expired []models.Story
	if err := cursor.All(ctx, &expired); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	oids := make([]primitive.ObjectID, len(expired))
	ids := make([]string, len(expired))
	for i, s := range expired {
		oids[i] = s.ID
		ids[i] = s.ID.Hex()
	}
	if _, err := r.mongoCollection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}}); err != nil {
		return nil, err
	}
	for i := range expired {
		r.deleted(ctx, TableStories, &expired[i])
	}
	return ids, nil
}

// MarkSeen is idempotent on (story, viewer).
func (r *storyRepository) MarkSeen(ctx context.Context, storyID string, viewerID uint) error {
	view := models.StoryView{StoryID: storyID, ViewerID: viewerID}
	return r.pgDB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&view).Error
}

func (r *storyRepository) HasSeen(ctx context.Context, storyID string, viewerID uint) (bool, error) {
	var count int64
	err := r.pgDB.WithContext(ctx).Model(&models.StoryView{}).Where("story_id = ? AND viewer_id = ?", storyID, viewerID).Count(&count).Error
	return count > 0, err
}

func (r *storyRepository) GetSeenStoryIDs(ctx context.Context, viewerID uint, storyIDs []string) ([]string, error) {
	var seen []string
	if len(storyIDs) == 0 {
		return seen, nil
	}
	err := r.pgDB.WithContext(ctx).Model(&models.StoryView{}).
		Where("viewer_id = ? AND story_id IN ?", viewerID, storyIDs).
		Pluck("story_id", &seen).Error
	return seen, err
}

func (r *storyRepository) DeleteViews(ctx context.Context, storyIDs []string) (int64, error) {
	if len(storyIDs) == 0 {
		return 0, nil
	}
	res := r.pgDB.WithContext(ctx).Where("story_id IN ?", storyIDs).Delete(&models.StoryView{})
	return res.RowsAffected, res.Error
}
