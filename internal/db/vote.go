package db

import "time"

type Vote struct {
	PlayerID  string    `gorm:"primaryKey;size:36"`
	StoryID   string    `gorm:"primaryKey;size:36;index"`
	Value     string    `gorm:"size:32;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
