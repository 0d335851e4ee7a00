package model

import (
	"time"
)

type Board struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	OwnerUserID uint   `gorm:"not null;index"`
	CreatedAt   time.Time

	Owner User `gorm:"foreignKey:OwnerUserID;constraint:OnDelete:CASCADE"`
}
