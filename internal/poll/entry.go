package poll

import "strings"

const (
	// OtherValue marks the entry that opens the custom-emotion panel.
	OtherValue = "Other"
	// CustomMarker prefixes the label of a custom emotion.
	CustomMarker = "🗨️"
)

// DefaultEmotions is the stock list shown before the Other entry.
var DefaultEmotions = []string{"Happy", "Sad", "Angry", "Excited", "Anxious", "Calm", "Surprised"}

// Entry is one selectable emotion. Value is what gets voted for.
type Entry struct {
	Label    string
	Value    string
	Selected bool
}

// IsOther reports whether the entry still opens the custom panel.
func (e Entry) IsOther() bool { return e.Value == OtherValue }

func customLabel(text string) string { return CustomMarker + " " + text }

func buildEntries(emotions []string) ([]Entry, error) {
	seen := make(map[string]struct{}, len(emotions))
	out := make([]Entry, 0, len(emotions)+1)
	for _, raw := range emotions {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, ErrInvalidEmotions
		}
		if strings.EqualFold(name, OtherValue) {
			return nil, ErrInvalidEmotions
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, ErrInvalidEmotions
		}
		seen[key] = struct{}{}
		out = append(out, Entry{Label: name, Value: name})
	}
	if len(out) == 0 {
		return nil, ErrInvalidEmotions
	}
	return append(out, Entry{Label: OtherValue, Value: OtherValue}), nil
}
