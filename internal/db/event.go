package db

import (
	"time"

	"gorm.io/datatypes"
)

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    string         `gorm:"size:36;index;not null"`
	PlayerID  *string        `gorm:"size:36;index"`
	StoryID   *string        `gorm:"size:36;index"`
	Seq       uint64         `gorm:"not null;default:0"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
