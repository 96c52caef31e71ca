package domain

import (
	"fmt"
	"maps"
	"slices"

	apperrors "github.com/louisbranch/ringcolor/internal/platform/errors"
)

// Token field paths accepted by Patch.
const (
	PathRingEnabled         = "ring.enabled"
	PathRingColor           = "ring.colors.ring"
	PathRingBackgroundColor = "ring.colors.background"
)

// Patch is a partial token update keyed by dotted field path.
type Patch map[string]any

// RingPatch enables the ring and sets both ring colors.
func RingPatch(color, background string) Patch {
	return Patch{
		PathRingEnabled:         true,
		PathRingColor:           color,
		PathRingBackgroundColor: background,
	}
}

// Paths returns the patch paths in sorted order.
func (p Patch) Paths() []string {
	return slices.Sorted(maps.Keys(p))
}

// Apply returns token with every path of the patch set. Nothing is applied
// when any path is unknown or carries a value of the wrong type.
func (p Patch) Apply(token Token) (Token, error) {
	if len(p) == 0 {
		return Token{}, invalidPatch("", "patch is empty")
	}
	next := token
	for _, path := range p.Paths() {
		value := p[path]
		switch path {
		case PathRingEnabled:
			enabled, ok := value.(bool)
			if !ok {
				return Token{}, invalidPatch(path, fmt.Sprintf("%s must be a bool, got %T", path, value))
			}
			next.Ring.Enabled = enabled
		case PathRingColor:
			color, ok := value.(string)
			if !ok {
				return Token{}, invalidPatch(path, fmt.Sprintf("%s must be a string, got %T", path, value))
			}
			next.Ring.Color = color
		case PathRingBackgroundColor:
			color, ok := value.(string)
			if !ok {
				return Token{}, invalidPatch(path, fmt.Sprintf("%s must be a string, got %T", path, value))
			}
			next.Ring.Background = color
		default:
			return Token{}, invalidPatch(path, fmt.Sprintf("unknown token field %q", path))
		}
	}
	return next, nil
}

func invalidPatch(path, message string) error {
	return apperrors.WithMetadata(apperrors.CodeTokenPatchInvalid, message, map[string]string{"Path": path})
}
