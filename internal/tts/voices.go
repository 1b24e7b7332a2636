package tts

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Voice represents a voice offered by the remote engine.
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Voices is the fixed set of selectable voices.
var Voices = []Voice{
	{ID: "alloy", Name: "Alloy"},
	{ID: "echo", Name: "Echo"},
	{ID: "fable", Name: "Fable"},
	{ID: "onyx", Name: "Onyx"},
	{ID: "nova", Name: "Nova"},
	{ID: "shimmer", Name: "Shimmer"},
}

// DefaultVoice is used when the caller does not pick one.
const DefaultVoice = "alloy"

// VoiceIDs returns the identifiers of all voices.
func VoiceIDs() []string {
	ids := make([]string, len(Voices))
	for i, v := range Voices {
		ids[i] = v.ID
	}
	return ids
}

// IsVoice reports whether id is a known voice.
func IsVoice(id string) bool {
	for _, v := range Voices {
		if v.ID == id {
			return true
		}
	}
	return false
}

// SuggestVoice returns the closest known voice for a mistyped id, or "".
func SuggestVoice(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return ""
	}
	matches := fuzzy.Find(id, VoiceIDs())
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

// ValidateVoice checks id against the voice set.
func ValidateVoice(id string) error {
	if IsVoice(id) {
		return nil
	}
	if s := SuggestVoice(id); s != "" {
		return fmt.Errorf("%w: %q, did you mean %q?", ErrInvalidVoice, id, s)
	}
	return fmt.Errorf("%w: %q (supported: %s)", ErrInvalidVoice, id, strings.Join(VoiceIDs(), ", "))
}
