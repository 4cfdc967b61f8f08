package server

import "log"

// SubmitVote upserts the caller's vote for the active story. The story
// lookup, deck validation, upsert, count and conditional auto-reveal all run
// inside one UpdateRoom closure so concurrent votes cannot lose updates or
// double-fire the reveal.
func (s *Server) SubmitVote(ctx SessionContext, storyID, value string) ([]Event, error) {
	var events []Event
	var revealed bool
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		player := findPlayer(room, ctx.PlayerID)
		if player == nil {
			return ErrUnauthenticated
		}
		story := findStory(room, storyID)
		if story == nil {
			return ErrNotFound
		}
		if story.Status != storyActive {
			return ErrInvalidState
		}
		if !room.Deck.Contains(value) {
			return ErrInvalidVote
		}
		upsertVote(story, player.ID, value)

		totalVotes := len(story.Votes)
		totalPlayers := len(room.Players)
		complete := totalVotes >= totalPlayers
		events = append(events, nextEvent(room, eventVoteSubmitted, EventPayload{
			PlayerID:     player.ID,
			PlayerName:   player.Name,
			StoryID:      story.ID,
			Value:        value,
			TotalVotes:   totalVotes,
			TotalPlayers: totalPlayers,
			IsComplete:   complete,
		}))
		if complete && room.AutoRevealVotes && !story.VotesRevealed {
			story.VotesRevealed = true
			revealed = true
			events = append(events, nextEvent(room, eventVotesRevealed, EventPayload{
				StoryID: story.ID,
				Votes:   revealedVotes(room, story),
			}))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistVoteUpsert(room, storyID, ctx.PlayerID, value, revealed)
	return events, nil
}

// RemoveVote deletes the caller's vote unconditionally; a player may retract
// even after the story left the active state.
func (s *Server) RemoveVote(ctx SessionContext, storyID string) ([]Event, error) {
	var events []Event
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		player := findPlayer(room, ctx.PlayerID)
		if player == nil {
			return ErrUnauthenticated
		}
		story := findStory(room, storyID)
		if story == nil {
			return ErrNotFound
		}
		removeVoteEntry(story, player.ID)
		events = append(events, nextEvent(room, eventVoteRemoved, EventPayload{
			PlayerID: player.ID,
			StoryID:  story.ID,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistVoteRemoval(room, storyID, ctx.PlayerID)
	return events, nil
}

// RevealVotes makes every submitted value visible. The payload carries the
// complete vote list as it exists at reveal time, not a delta.
func (s *Server) RevealVotes(ctx SessionContext, storyID string) ([]Event, error) {
	var events []Event
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		if _, err := hostPlayer(room, ctx.PlayerID); err != nil {
			return err
		}
		story := findStory(room, storyID)
		if story == nil {
			return ErrNotFound
		}
		if story.Status != storyActive || story.VotesRevealed {
			return ErrInvalidState
		}
		story.VotesRevealed = true
		events = append(events, nextEvent(room, eventVotesRevealed, EventPayload{
			StoryID: story.ID,
			Votes:   revealedVotes(room, story),
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("votes revealed room_id=%s story_id=%s", room.ID, storyID)
	s.persistReveal(room, storyID)
	return events, nil
}

// ResetVotes clears the reveal flag and deletes every vote for the story.
func (s *Server) ResetVotes(ctx SessionContext, storyID string) ([]Event, error) {
	var events []Event
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
		story.VotesRevealed = false
		story.Votes = nil
		events = append(events, nextEvent(room, eventVotesReset, EventPayload{
			StoryID: story.ID,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistVotesReset(room, storyID)
	return events, nil
}
