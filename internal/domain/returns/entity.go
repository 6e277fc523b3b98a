// internal/domain/returns/entity.go
package returns

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status represents the return request lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
)

// Reason is why the shopper wants to return the goods
type Reason string

const (
	ReasonDefective        Reason = "defective"
	ReasonWrongItem        Reason = "wrong_item"
	ReasonSizeIssue        Reason = "size_issue"
	ReasonQualityIssue     Reason = "quality_issue"
	ReasonNotAsDescribed   Reason = "not_as_described"
	ReasonChangedMind      Reason = "changed_mind"
	ReasonDamagedInTransit Reason = "damaged_in_transit"
	ReasonOther            Reason = "other"
)

var (
	ErrNotFound           = errors.New("return request not found")
	ErrInvalidTransition  = errors.New("invalid return status transition")
	ErrAlreadyRefunded    = errors.New("refund has already been processed")
	ErrOrderNotReturnable = errors.New("order is not eligible for return")
	ErrOpenReturnExists   = errors.New("an open return already exists for this order")
	ErrInvalidReason      = errors.New("invalid return reason")
)

// validTransitions defines the return state machine. Rejected, refunded and
// cancelled are terminal. A refund can only follow an approval.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusRefunded, StatusCancelled},
	StatusRejected:  {},
	StatusRefunded:  {},
	StatusCancelled: {},
}

var validReasons = map[Reason]bool{
	ReasonDefective:        true,
	ReasonWrongItem:        true,
	ReasonSizeIssue:        true,
	ReasonQualityIssue:     true,
	ReasonNotAsDescribed:   true,
	ReasonChangedMind:      true,
	ReasonDamagedInTransit: true,
	ReasonOther:            true,
}

// IsValid reports whether the value is a known return status
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

// IsValid reports whether the value is a known return reason
func (r Reason) IsValid() bool {
	return validReasons[r]
}

// Return represents a return/refund request for a delivered order.
// RefundAmount is fixed when the request is created and never recomputed
// from later catalog prices. Amounts are in paise.
type Return struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ReturnNumber string `gorm:"uniqueIndex;not null;size:50" json:"return_number"`
	OrderID      uint   `gorm:"not null;index" json:"order_id"`
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	Status       Status `gorm:"not null;default:'pending';index" json:"status"`
	Reason       Reason `gorm:"not null;size:50" json:"reason"`
	Description  string `gorm:"type:text" json:"description"`

	RefundAmount      int64      `gorm:"not null" json:"refund_amount"`
	RefundProcessedAt *time.Time `json:"refund_processed_at"`
	AdminComment      string     `gorm:"size:500" json:"admin_comment"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Items         []ReturnItem          `gorm:"foreignKey:ReturnID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
	StatusHistory []ReturnStatusHistory `gorm:"foreignKey:ReturnID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// ReturnItem is a returned line, frozen from the order item it refers to
type ReturnItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ReturnID    uint      `gorm:"not null;index" json:"return_id"`
	OrderItemID uint      `gorm:"not null;index" json:"order_item_id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	Color       string    `gorm:"size:50" json:"color"`
	Size        string    `gorm:"size:50" json:"size"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Amount      int64     `gorm:"not null" json:"amount"` // Refundable amount for this line
	CreatedAt   time.Time `json:"created_at"`
}

// ReturnStatusHistory records every status change for auditing
type ReturnStatusHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReturnID   uint      `gorm:"not null;index" json:"return_id"`
	FromStatus Status    `gorm:"size:20" json:"from_status"`
	ToStatus   Status    `gorm:"not null;size:20" json:"to_status"`
	Comment    string    `gorm:"size:500" json:"comment"`
	CreatedBy  *uint     `gorm:"index" json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides
func (Return) TableName() string              { return "returns" }
func (ReturnItem) TableName() string          { return "return_items" }
func (ReturnStatusHistory) TableName() string { return "return_status_history" }

// IsOpen reports whether the request still needs a decision or a refund
func (r *Return) IsOpen() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// NewReturnNumber derives the human-facing reference from the row ID and
// creation date, e.g. RET-20250114-00007.
func NewReturnNumber(id uint, createdAt time.Time) string {
	return fmt.Sprintf("RET-%s-%05d", createdAt.Format("20060102"), id%100000)
}
