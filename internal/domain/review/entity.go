// internal/domain/review/entity.go
package review

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status represents the moderation state of a review
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	ErrNotFound          = errors.New("review not found")
	ErrInvalidTransition = errors.New("invalid review status transition")
	ErrAlreadyReviewed   = errors.New("you have already reviewed this product")
)

// validTransitions defines the moderation state machine. Decisions are final.
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

// IsValid reports whether the value is a known review status
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine permits the move
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionError builds the rejection for a disallowed move
func (s Status) TransitionError(target Status) error {
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, s, target)
}

// Review represents a product review awaiting or past moderation
type Review struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;index:idx_review_once,unique" json:"product_id"`
	UserID    uint   `gorm:"not null;index:idx_review_once,unique" json:"user_id"`
	Rating    int    `gorm:"not null" json:"rating"` // 1..5
	Title     string `gorm:"size:255" json:"title"`
	Comment   string `gorm:"type:text" json:"comment"`
	Status    Status `gorm:"not null;default:'pending';index" json:"status"`

	// Set when the reviewer has a delivered order containing the product
	VerifiedPurchase bool `gorm:"default:false" json:"verified_purchase"`

	ModeratedBy *uint      `json:"moderated_by,omitempty"`
	ModeratedAt *time.Time `json:"moderated_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Review) TableName() string { return "reviews" }

// RatingSummary aggregates approved reviews for a product
type RatingSummary struct {
	ProductID     uint          `json:"product_id"`
	ReviewCount   int64         `json:"review_count"`
	AverageRating float64       `json:"average_rating"`
	Distribution  map[int]int64 `json:"distribution"` // rating -> count
}
