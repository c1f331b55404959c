package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "studytrack/internal/platform/errors"
)

const DefaultColor = "#89b4fa"

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Subject is a user-defined study category. Sessions keep referencing a
// subject id after the subject itself is deleted.
type Subject struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s Subject) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: subject name is required", apperrors.ErrInvalidInput)
	}
	if !hexColor.MatchString(s.Color) {
		return fmt.Errorf("%w: color must look like #RRGGBB, got %q", apperrors.ErrInvalidInput, s.Color)
	}
	return nil
}

// NormalizeColor lowercases a hex color and falls back to DefaultColor.
func NormalizeColor(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return DefaultColor
	}
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	return strings.ToLower(color)
}

// Find returns the subject with id from list.
func Find(list []Subject, id string) (Subject, bool) {
	for _, s := range list {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}
