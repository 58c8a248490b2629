package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid — заявка пользователя на право написать контент, ждёт решения админа.
type Bid struct {
	ID     uuid.UUID `db:"id" json:"id"`
	UserID uuid.UUID `db:"user_id" json:"user_id"`
	// Username денормализован для списков; пишется один раз при создании.
	Username     string    `db:"username" json:"username"`
	TaskType     string    `db:"task_type" json:"task_type"`
	PayoutAmount int64     `db:"payout_amount" json:"payout_amount"`
	SampleText   string    `db:"sample_text" json:"sample_text"`
	Status       string    `db:"status" json:"status"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
