package gateway

import (
	"strings"
	"testing"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short text", strings.Repeat("a", 25), strings.Repeat("a", 25)},
		{"exactly limit", strings.Repeat("b", 30), strings.Repeat("b", 30)},
		{"one over limit", strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{"empty", "", ""},
		{"multibyte", strings.Repeat("音", 31), strings.Repeat("音", 30) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.text); got != tt.want {
				t.Errorf("Preview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSimulate(t *testing.T) {
	got := Simulate(strings.Repeat("a", 25), "echo")
	if got.TruncatedPreview != strings.Repeat("a", 25) {
		t.Errorf("unexpected preview %q", got.TruncatedPreview)
	}

	got = Simulate(strings.Repeat("a", 31), "nova")
	if got.TruncatedPreview != strings.Repeat("a", 30)+"..." {
		t.Errorf("unexpected preview %q", got.TruncatedPreview)
	}
	if got.OriginalText != strings.Repeat("a", 31) {
		t.Error("original text must be kept intact")
	}
	if got.Voice != "nova" {
		t.Errorf("voice = %q, want nova", got.Voice)
	}
	if !strings.Contains(got.Notice, got.TruncatedPreview) || !strings.Contains(got.Notice, "nova") {
		t.Errorf("notice %q must embed preview and voice", got.Notice)
	}
	if got.MIMEType != SimulatedMIMEType {
		t.Errorf("mime type = %q, want %q", got.MIMEType, SimulatedMIMEType)
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	a := Simulate("Hello world", "alloy")
	b := Simulate("Hello world", "alloy")
	if a != b {
		t.Errorf("Simulate is not deterministic: %+v vs %+v", a, b)
	}
}
