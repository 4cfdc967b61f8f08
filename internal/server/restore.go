package server

import (
	"encoding/json"
	"log"

	"planning-poker/internal/db"
)

// RestoreRooms loads persisted rooms back into the in-memory store at
// startup so a restart does not strand players mid-session.
func (s *Server) RestoreRooms() error {
	if s.db == nil {
		return nil
	}
	var records []db.Room
	if err := s.db.Find(&records).Error; err != nil {
		return err
	}
	restored := 0
	for i := range records {
		room, err := s.loadRoom(&records[i])
		if err != nil {
			log.Printf("restore room failed room_id=%s error=%v", records[i].ID, err)
			continue
		}
		if err := s.store.RestoreRoom(room); err != nil {
			log.Printf("restore room skipped room_id=%s error=%v", room.ID, err)
			continue
		}
		restored++
	}
	if restored > 0 {
		log.Printf("rooms restored count=%d", restored)
	}
	return nil
}

func (s *Server) loadRoom(record *db.Room) (*Room, error) {
	deck, ok := ParseDeck(json.RawMessage(record.Deck))
	if !ok {
		// A room without a readable deck falls back to the configured
		// preset rather than being dropped.
		deck, _ = deckForType(s.cfg.DefaultDeckType)
	}
	room := &Room{
		ID:                  record.ID,
		JoinCode:            record.JoinCode,
		Name:                record.Name,
		DeckType:            record.DeckType,
		DeckTheme:           record.DeckTheme,
		Deck:                deck,
		AutoRevealVotes:     record.AutoRevealVotes,
		CelebrationsEnabled: record.CelebrationsEnabled,
		EmojisEnabled:       record.EmojisEnabled,
	}
	if record.ActiveStoryID != nil {
		room.ActiveStoryID = *record.ActiveStoryID
	}

	var players []db.Player
	if err := s.db.Where("room_id = ?", record.ID).Order("joined_at").Find(&players).Error; err != nil {
		return nil, err
	}
	for _, player := range players {
		room.Players = append(room.Players, Player{
			ID:          player.ID,
			Name:        player.Name,
			IsHost:      player.IsHost,
			AvatarStyle: player.AvatarStyle,
			AvatarSeed:  player.AvatarSeed,
		})
	}

	var stories []db.Story
	if err := s.db.Where("room_id = ?", record.ID).Order("created_at").Find(&stories).Error; err != nil {
		return nil, err
	}
	for _, story := range stories {
		loaded := Story{
			ID:             story.ID,
			Title:          story.Title,
			Description:    story.Description,
			Status:         story.Status,
			VotesRevealed:  story.VotesRevealed,
			FinalScore:     story.FinalScore,
			ManualOverride: story.ManualOverride,
		}
		var votes []db.Vote
		if err := s.db.Where("story_id = ?", story.ID).Order("created_at").Find(&votes).Error; err != nil {
			return nil, err
		}
		for _, vote := range votes {
			loaded.Votes = append(loaded.Votes, VoteEntry{PlayerID: vote.PlayerID, Value: vote.Value})
		}
		room.Stories = append(room.Stories, loaded)
	}

	var maxSeq *uint64
	row := s.db.Model(&db.Event{}).Where("room_id = ?", record.ID).Select("MAX(seq)").Row()
	if row != nil {
		_ = row.Scan(&maxSeq)
	}
	if maxSeq != nil {
		room.EventSeq = *maxSeq
	}
	return room, nil
}
