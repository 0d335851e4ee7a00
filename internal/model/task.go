package model

import (
	"time"
)

type Task struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BoardID    uint      `gorm:"not null;index" json:"boardId"`
	Title      string    `gorm:"not null" json:"title"`
	Completed  bool      `gorm:"not null" json:"completed"`
	AssignedTo *string   `json:"assignedTo"` // free-text nickname, not a user reference
	CreatedAt  time.Time `json:"createdAt"`

	Board Board `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
}
