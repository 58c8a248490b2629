package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission — готовая работа по одобренной заявке, ждёт проверки и оплаты.
type Submission struct {
	ID       uuid.UUID `db:"id" json:"id"`
	BidID    uuid.UUID `db:"bid_id" json:"bid_id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Username string    `db:"username" json:"username"`
	TaskType string    `db:"task_type" json:"task_type"`
	Content  string    `db:"content" json:"content"`
	// PaymentAmount копируется из заявки при создании и больше не меняется.
	PaymentAmount int64     `db:"payment_amount" json:"payment_amount"`
	Status        string    `db:"status" json:"status"`
	AdminNotes    *string   `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
