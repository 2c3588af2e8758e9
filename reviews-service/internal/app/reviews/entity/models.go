package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModerationStatus - производное состояние отзыва, в MongoDB не хранится
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID string             `json:"product_id" bson:"product_id"` // ID товара из Catalog Service
	UserID    string             `json:"user_id" bson:"user_id"`
	Rating    int                `json:"rating" bson:"rating"` // Оценка от 1 до 5
	Comment   *string            `json:"comment,omitempty" bson:"comment,omitempty"`
	Approved  *bool              `json:"approved,omitempty" bson:"approved,omitempty"` // nil - решение еще не принято
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`

	// Status вычисляется один раз при чтении из репозитория
	Status ModerationStatus `json:"status" bson:"-"`
}

// ModerationCounts - сводка модерации по товару
// Rejected включает отзывы, которые уже удалены из хранилища
type ModerationCounts struct {
	Pending    int  `json:"pending"`
	Approved   int  `json:"approved"`
	Rejected   int  `json:"rejected"`
	Total      int  `json:"total"`
	HasPending bool `json:"has_pending"`
}

type ReviewEvent struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"` // REVIEW_APPROVED, REVIEW_REJECTED
	ReviewID  string           `json:"review_id"`
	ProductID string           `json:"product_id"`
	UserID    string           `json:"user_id"`
	Status    ModerationStatus `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
}

const (
	EventReviewApproved = "REVIEW_APPROVED"
	EventReviewRejected = "REVIEW_REJECTED"
)
