package db

import (
	"time"

	"gorm.io/datatypes"
)

type Room struct {
	ID                  string         `gorm:"primaryKey;size:36"`
	JoinCode            string         `gorm:"size:12;uniqueIndex;not null"`
	Name                string         `gorm:"size:64;not null"`
	DeckType            string         `gorm:"size:32;not null"`
	DeckTheme           string         `gorm:"size:32;not null;default:''"`
	Deck                datatypes.JSON `gorm:"type:jsonb;not null"`
	ActiveStoryID       *string        `gorm:"size:36;index"`
	AutoRevealVotes     bool           `gorm:"not null;default:false"`
	CelebrationsEnabled bool           `gorm:"not null;default:true"`
	EmojisEnabled       bool           `gorm:"not null;default:true"`
	CreatedAt           time.Time      `gorm:"not null"`
	UpdatedAt           time.Time      `gorm:"not null"`
	Players             []Player       `gorm:"constraint:OnDelete:CASCADE"`
	Stories             []Story        `gorm:"constraint:OnDelete:CASCADE"`
	Events              []Event        `gorm:"constraint:OnDelete:CASCADE"`
}
