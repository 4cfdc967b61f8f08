package db

import (
	"time"

	"gorm.io/datatypes"
)

type Player struct {
	ID            string         `gorm:"primaryKey;size:36"`
	RoomID        string         `gorm:"size:36;index;not null;uniqueIndex:idx_players_room_name"`
	Name          string         `gorm:"size:64;not null;uniqueIndex:idx_players_room_name"`
	IsHost        bool           `gorm:"not null;default:false"`
	AvatarStyle   string         `gorm:"size:32;not null;default:''"`
	AvatarSeed    string         `gorm:"size:64;not null;default:''"`
	AvatarOptions datatypes.JSON `gorm:"type:jsonb"`
	JoinedAt      time.Time      `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"not null"`
	UpdatedAt     time.Time      `gorm:"not null"`
	Votes         []Vote         `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE"`
}
