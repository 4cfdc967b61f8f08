package db

import "time"

type Story struct {
	ID             string    `gorm:"primaryKey;size:36"`
	RoomID         string    `gorm:"size:36;index;not null"`
	Title          string    `gorm:"size:140;not null"`
	Description    string    `gorm:"size:1000;not null;default:''"`
	Status         string    `gorm:"size:32;not null"`
	VotesRevealed  bool      `gorm:"not null;default:false"`
	FinalScore     *float64  `gorm:""`
	ManualOverride bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
	Votes          []Vote    `gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE"`
}
