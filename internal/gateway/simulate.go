package gateway

import "fmt"

const (
	// PreviewLength is the number of characters kept in a simulated preview.
	PreviewLength = 30

	// SimulatedMIMEType is reported by every SimulatedSuccess.
	SimulatedMIMEType = "audio/mpeg"

	// NoticeTemplate is filled with the preview and the voice.
	NoticeTemplate = "Demo mode: simulated speech generation for %q (%s voice). No audio was produced."
)

// Simulate builds the demo-mode stand-in for a request. It is pure.
func Simulate(text, voice string) SimulatedSuccess {
	preview := Preview(text)
	return SimulatedSuccess{
		OriginalText:     text,
		Voice:            voice,
		TruncatedPreview: preview,
		Notice:           fmt.Sprintf(NoticeTemplate, preview, voice),
		MIMEType:         SimulatedMIMEType,
	}
}

// Preview returns the first PreviewLength characters of text followed by
// "..." when text is longer, or text unchanged otherwise.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength]) + "..."
}
