package server

import (
	"encoding/json"
	"log"
	"time"

	"planning-poker/internal/db"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The database mirrors the in-memory store so rooms survive a restart. The
// store has already committed when these run, so mirror failures are logged
// and do not unwind the mutation.

func (s *Server) persistRoom(room *Room) {
	if s.db == nil {
		return
	}
	deck, err := json.Marshal(room.Deck)
	if err != nil {
		log.Printf("persist room failed room_id=%s error=%v", room.ID, err)
		return
	}
	record := db.Room{
		ID:                  room.ID,
		JoinCode:            room.JoinCode,
		Name:                room.Name,
		DeckType:            room.DeckType,
		DeckTheme:           room.DeckTheme,
		Deck:                datatypes.JSON(deck),
		ActiveStoryID:       nullableID(room.ActiveStoryID),
		AutoRevealVotes:     room.AutoRevealVotes,
		CelebrationsEnabled: room.CelebrationsEnabled,
		EmojisEnabled:       room.EmojisEnabled,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
			return err
		}
		for i := range room.Players {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(playerRecord(room.ID, &room.Players[i])).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("persist room failed room_id=%s error=%v", room.ID, err)
	}
}

func playerRecord(roomID string, player *Player) *db.Player {
	return &db.Player{
		ID:          player.ID,
		RoomID:      roomID,
		Name:        player.Name,
		IsHost:      player.IsHost,
		AvatarStyle: player.AvatarStyle,
		AvatarSeed:  player.AvatarSeed,
		JoinedAt:    time.Now().UTC(),
	}
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func (s *Server) persistPlayer(room *Room, player *Player) {
	if s.db == nil {
		return
	}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(playerRecord(room.ID, player)).Error; err != nil {
		log.Printf("persist player failed room_id=%s player_id=%s error=%v", room.ID, player.ID, err)
	}
}

func (s *Server) persistPlayerProfile(room *Room, player *Player) {
	if s.db == nil {
		return
	}
	err := s.db.Model(&db.Player{}).
		Where("id = ?", player.ID).
		Updates(map[string]any{
			"name":         player.Name,
			"avatar_style": player.AvatarStyle,
			"avatar_seed":  player.AvatarSeed,
		}).Error
	if err != nil {
		log.Printf("persist player profile failed player_id=%s error=%v", player.ID, err)
	}
}

func storyRecord(roomID string, story *Story) *db.Story {
	return &db.Story{
		ID:             story.ID,
		RoomID:         roomID,
		Title:          story.Title,
		Description:    story.Description,
		Status:         story.Status,
		VotesRevealed:  story.VotesRevealed,
		FinalScore:     story.FinalScore,
		ManualOverride: story.ManualOverride,
	}
}

func (s *Server) persistStory(room *Room, story *Story) {
	if s.db == nil {
		return
	}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(storyRecord(room.ID, story)).Error; err != nil {
		log.Printf("persist story failed room_id=%s story_id=%s error=%v", room.ID, story.ID, err)
	}
}

func (s *Server) persistStoryDeletion(room *Room, storyID string) {
	if s.db == nil {
		return
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", storyID).Delete(&db.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", storyID).Delete(&db.Story{}).Error; err != nil {
			return err
		}
		return tx.Model(&db.Room{}).
			Where("id = ? AND active_story_id = ?", room.ID, storyID).
			Update("active_story_id", nil).Error
	})
	if err != nil {
		log.Printf("persist story deletion failed room_id=%s story_id=%s error=%v", room.ID, storyID, err)
	}
}

// persistActiveStoryChange writes the whole single-active transition: every
// demoted story, the target's cleared reveal state, the stale vote purge and
// the room pointer, in one transaction.
func (s *Server) persistActiveStoryChange(room *Room, storyID string) {
	if s.db == nil {
		return
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range room.Stories {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(storyRecord(room.ID, &room.Stories[i])).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("story_id = ?", storyID).Delete(&db.Vote{}).Error; err != nil {
			return err
		}
		return tx.Model(&db.Room{}).
			Where("id = ?", room.ID).
			Update("active_story_id", storyID).Error
	})
	if err != nil {
		log.Printf("persist active story failed room_id=%s story_id=%s error=%v", room.ID, storyID, err)
	}
}

func (s *Server) persistStoryCompletion(room *Room, story *Story) {
	if s.db == nil {
		return
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(storyRecord(room.ID, story)).Error; err != nil {
			return err
		}
		return tx.Model(&db.Room{}).
			Where("id = ? AND active_story_id = ?", room.ID, story.ID).
			Update("active_story_id", nil).Error
	})
	if err != nil {
		log.Printf("persist completion failed room_id=%s story_id=%s error=%v", room.ID, story.ID, err)
	}
}

// persistVoteUpsert mirrors the atomic submit: a single ON CONFLICT upsert
// keyed by (player_id, story_id), plus the reveal flag when auto-reveal
// fired in the same logical operation.
func (s *Server) persistVoteUpsert(room *Room, storyID, playerID, value string, revealed bool) {
	if s.db == nil {
		return
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		vote := db.Vote{
			PlayerID: playerID,
			StoryID:  storyID,
			Value:    value,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}, {Name: "story_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&vote).Error
		if err != nil {
			return err
		}
		if revealed {
			return tx.Model(&db.Story{}).
				Where("id = ?", storyID).
				Update("votes_revealed", true).Error
		}
		return nil
	})
	if err != nil {
		log.Printf("persist vote failed room_id=%s story_id=%s player_id=%s error=%v", room.ID, storyID, playerID, err)
	}
}

func (s *Server) persistVoteRemoval(room *Room, storyID, playerID string) {
	if s.db == nil {
		return
	}
	err := s.db.Where("player_id = ? AND story_id = ?", playerID, storyID).Delete(&db.Vote{}).Error
	if err != nil {
		log.Printf("persist vote removal failed room_id=%s story_id=%s error=%v", room.ID, storyID, err)
	}
}

func (s *Server) persistReveal(room *Room, storyID string) {
	if s.db == nil {
		return
	}
	err := s.db.Model(&db.Story{}).Where("id = ?", storyID).Update("votes_revealed", true).Error
	if err != nil {
		log.Printf("persist reveal failed room_id=%s story_id=%s error=%v", room.ID, storyID, err)
	}
}

func (s *Server) persistVotesReset(room *Room, storyID string) {
	if s.db == nil {
		return
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", storyID).Delete(&db.Vote{}).Error; err != nil {
			return err
		}
		return tx.Model(&db.Story{}).Where("id = ?", storyID).Update("votes_revealed", false).Error
	})
	if err != nil {
		log.Printf("persist reset failed room_id=%s story_id=%s error=%v", room.ID, storyID, err)
	}
}

func (s *Server) persistRoomSettings(room *Room) {
	if s.db == nil {
		return
	}
	deck, err := json.Marshal(room.Deck)
	if err != nil {
		log.Printf("persist settings failed room_id=%s error=%v", room.ID, err)
		return
	}
	err = s.db.Model(&db.Room{}).
		Where("id = ?", room.ID).
		Updates(map[string]any{
			"name":                 room.Name,
			"deck_type":            room.DeckType,
			"deck_theme":           room.DeckTheme,
			"deck":                 datatypes.JSON(deck),
			"auto_reveal_votes":    room.AutoRevealVotes,
			"celebrations_enabled": room.CelebrationsEnabled,
			"emojis_enabled":       room.EmojisEnabled,
		}).Error
	if err != nil {
		log.Printf("persist settings failed room_id=%s error=%v", room.ID, err)
	}
}

// deletePlayerRecord removes a player row and their votes across all
// stories in one transaction, leaving no orphans.
func (s *Server) deletePlayerRecord(room *Room, playerID string) {
	if s.db == nil {
		return
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("player_id = ?", playerID).Delete(&db.Vote{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", playerID).Delete(&db.Player{}).Error
	})
	if err != nil {
		log.Printf("delete player failed room_id=%s player_id=%s error=%v", room.ID, playerID, err)
	}
}

func (s *Server) persistLeave(room *Room, playerID, newHostID string) {
	if s.db == nil {
		return
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if newHostID != "" {
			if err := tx.Model(&db.Player{}).Where("id = ?", newHostID).Update("is_host", true).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("player_id = ?", playerID).Delete(&db.Vote{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", playerID).Delete(&db.Player{}).Error
	})
	if err != nil {
		log.Printf("persist leave failed room_id=%s player_id=%s error=%v", room.ID, playerID, err)
	}
}

func (s *Server) deleteRoomRecord(roomID string) {
	if s.db == nil {
		return
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id IN (?)", tx.Model(&db.Story{}).Select("id").Where("room_id = ?", roomID)).Delete(&db.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&db.Story{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&db.Player{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&db.Event{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", roomID).Delete(&db.Room{}).Error
	})
	if err != nil {
		log.Printf("delete room failed room_id=%s error=%v", roomID, err)
	}
}

func (s *Server) persistEvent(ev Event) {
	if s.db == nil {
		return
	}
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		log.Printf("persist event failed room_id=%s type=%s error=%v", ev.RoomID, ev.Name, err)
		return
	}
	record := db.Event{
		RoomID:   ev.RoomID,
		PlayerID: nullableID(ev.Payload.PlayerID),
		StoryID:  nullableID(ev.Payload.StoryID),
		Seq:      ev.Seq,
		Type:     ev.Name,
		Payload:  datatypes.JSON(payload),
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("persist event failed room_id=%s type=%s error=%v", ev.RoomID, ev.Name, err)
	}
}
