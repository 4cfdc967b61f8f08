package server

import (
	"log"

	"github.com/google/uuid"
)

// hostPlayer re-reads the caller's player row and checks host privilege.
// Authorization is verified per call, never cached across requests.
func hostPlayer(room *Room, playerID string) (*Player, error) {
	player := findPlayer(room, playerID)
	if player == nil {
		return nil, ErrUnauthenticated
	}
	if !player.IsHost {
		return nil, ErrUnauthorized
	}
	return player, nil
}

func (s *Server) AddStory(ctx SessionContext, title, description string) ([]Event, error) {
	var events []Event
	var created Story
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		if _, err := hostPlayer(room, ctx.PlayerID); err != nil {
			return err
		}
		created = Story{
			ID:          uuid.NewString(),
			Title:       title,
			Description: description,
			Status:      storyIdle,
		}
		room.Stories = append(room.Stories, created)
		events = append(events, nextEvent(room, eventStoryAdded, EventPayload{
			ID:          created.ID,
			Title:       created.Title,
			Description: created.Description,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistStory(room, &created)
	return events, nil
}

func (s *Server) UpdateStory(ctx SessionContext, storyID, title, description string) ([]Event, error) {
	var events []Event
	var updated Story
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		if _, err := hostPlayer(room, ctx.PlayerID); err != nil {
			return err
		}
		story := findStory(room, storyID)
		if story == nil {
			return ErrNotFound
		}
		if story.Status == storyCompleted {
			return ErrInvalidState
		}
		story.Title = title
		story.Description = description
		updated = *story
		events = append(events, nextEvent(room, eventStoryUpdated, EventPayload{
			ID:          story.ID,
			Title:       story.Title,
			Description: story.Description,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistStory(room, &updated)
	return events, nil
}

func (s *Server) DeleteStory(ctx SessionContext, storyID string) ([]Event, error) {
	var events []Event
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		if _, err := hostPlayer(room, ctx.PlayerID); err != nil {
			return err
		}
		index := -1
		for i := range room.Stories {
			if room.Stories[i].ID == storyID {
				index = i
				break
			}
		}
		if index < 0 {
			return ErrNotFound
		}
		room.Stories = append(room.Stories[:index], room.Stories[index+1:]...)
		if room.ActiveStoryID == storyID {
			room.ActiveStoryID = ""
		}
		events = append(events, nextEvent(room, eventStoryDeleted, EventPayload{ID: storyID}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistStoryDeletion(room, storyID)
	return events, nil
}

// SetActiveStory moves a story to active and enforces the single-active
// invariant: every other story drops back to idle, the target's reveal flag
// and any stale votes are cleared, and Room.ActiveStoryID tracks the target.
func (s *Server) SetActiveStory(ctx SessionContext, storyID string) ([]Event, error) {
	var events []Event
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		if _, err := hostPlayer(room, ctx.PlayerID); err != nil {
			return err
		}
		story := findStory(room, storyID)
		if story == nil {
			return ErrNotFound
		}
		if story.Status == storyCompleted {
			return ErrInvalidState
		}
		for i := range room.Stories {
			if room.Stories[i].ID == storyID {
				continue
			}
			if room.Stories[i].Status == storyActive {
				room.Stories[i].Status = storyIdle
				room.Stories[i].VotesRevealed = false
				room.Stories[i].Votes = nil
			}
		}
		story.Status = storyActive
		story.VotesRevealed = false
		story.Votes = nil
		room.ActiveStoryID = story.ID
		events = append(events, nextEvent(room, eventActiveStoryChanged, EventPayload{
			ID:            story.ID,
			Title:         story.Title,
			Description:   story.Description,
			Status:        story.Status,
			VotesRevealed: boolPtr(story.VotesRevealed),
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistActiveStoryChange(room, storyID)
	return events, nil
}

// CompleteStory finishes the active story. With a manual override the score
// is taken as supplied; otherwise it comes from the vote tally.
func (s *Server) CompleteStory(ctx SessionContext, storyID string, override *float64) ([]Event, error) {
	var events []Event
	var completed Story
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		if _, err := hostPlayer(room, ctx.PlayerID); err != nil {
			return err
		}
		story := findStory(room, storyID)
		if story == nil {
			return ErrNotFound
		}
		if story.Status != storyActive {
			return ErrInvalidState
		}
		if override != nil {
			story.FinalScore = override
			story.ManualOverride = true
		} else {
			story.FinalScore = finalScoreFor(story.Votes)
		}
		story.Status = storyCompleted
		if room.ActiveStoryID == story.ID {
			room.ActiveStoryID = ""
		}
		completed = *story
		events = append(events, nextEvent(room, eventStoryCompleted, EventPayload{
			ID:                story.ID,
			FinalScore:        story.FinalScore,
			Status:            story.Status,
			ResetCurrentStory: true,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("story completed room_id=%s story_id=%s manual=%t", room.ID, completed.ID, completed.ManualOverride)
	s.persistStoryCompletion(room, &completed)
	return events, nil
}
