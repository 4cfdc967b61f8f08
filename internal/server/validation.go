package server

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength        = 20
	maxRoomNameLength    = 64
	maxStoryTitleLength  = 140
	maxDescriptionLength = 1000
	maxEmojiLength       = 16
)

func validatePlayerName(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

func validateRoomName(name string) (string, error) {
	return validateText("room name", name, maxRoomNameLength)
}

func validateStoryTitle(title string) (string, error) {
	return validateText("title", title, maxStoryTitleLength)
}

func validateDescription(text string) (string, error) {
	trimmed := normalizeText(text)
	if utf8.RuneCountInString(trimmed) > maxDescriptionLength {
		return "", fmt.Errorf("description must be %d characters or fewer", maxDescriptionLength)
	}
	return trimmed, nil
}

func validateEmoji(emoji string) (string, error) {
	trimmed := strings.TrimSpace(emoji)
	if trimmed == "" {
		return "", fmt.Errorf("emoji is required")
	}
	if len(trimmed) > maxEmojiLength {
		return "", fmt.Errorf("emoji must be %d bytes or fewer", maxEmojiLength)
	}
	return trimmed, nil
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", fmt.Errorf("%s must be %d characters or fewer", label, maxLen)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
