package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/reviews-service/internal/app/reviews/entity"
	"storefront/reviews-service/internal/app/reviews/moderation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrReviewNotFound = errors.New("review not found")

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает новый репозиторий отзывов
// Автоматически создает индекс по product_id для быстрой выборки
func NewReviewRepository(ctx context.Context, db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("product_created_idx"),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Индекс может уже существовать, работа без него просто медленнее
		logger.Warn().Err(err).Msg("Failed to create reviews index")
	}

	return &reviewRepository{collection: collection}
}

// GetByID получает отзыв по ID.
// Некорректный ObjectID не может существовать в коллекции и считается отсутствующим.
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer timer.ObserveDuration()

	var review entity.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	review.Status = moderation.Classify(review.Approved, review.Comment)
	return &review, nil
}

// ListByProduct получает отзывы товара, новые первыми
func (r *reviewRepository) ListByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]entity.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	moderation.Apply(reviews)
	return reviews, nil
}

// SetApproved выставляет approved=true
func (r *reviewRepository) SetApproved(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrReviewNotFound
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "reviews")
	defer timer.ObserveDuration()

	update := bson.M{
		"$set": bson.M{
			"approved":   true,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to approve review: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// Delete удаляет отзыв из MongoDB
func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrReviewNotFound
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "reviews")
	defer timer.ObserveDuration()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}
