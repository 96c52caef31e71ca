package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/ringcolor/internal/platform/errors"
)

// ActorType is the host's creature template category.
type ActorType string

const (
	// ActorTypeCharacter is the reserved type of player characters.
	ActorTypeCharacter ActorType = "character"
	// ActorTypeNPC indicates a non-player creature.
	ActorTypeNPC ActorType = "npc"
	// ActorTypeVehicle indicates a vehicle template.
	ActorTypeVehicle ActorType = "vehicle"
	// ActorTypeGroup indicates a party or encounter group.
	ActorTypeGroup ActorType = "group"
)

// ErrInvalidActorType indicates a missing or unknown actor type.
var ErrInvalidActorType = apperrors.New(apperrors.CodeActorInvalidType, "actor type is invalid")

// Actor is the creature template a token represents.
type Actor struct {
	ID   string
	Name string
	Type ActorType
}

// IsPlayerCharacter reports whether the actor is a player character.
func (a Actor) IsPlayerCharacter() bool {
	return a.Type == ActorTypeCharacter
}

// ParseActorType parses a label into an ActorType.
// It trims whitespace and matches case-insensitively. Bare ("npc"),
// prefixed ("ACTOR_TYPE_NPC") and the "PC" alias for characters are accepted.
func ParseActorType(value string) (ActorType, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperrors.WithMetadata(apperrors.CodeActorInvalidType, "actor type is required", map[string]string{"Type": ""})
	}
	switch strings.TrimPrefix(strings.ToUpper(trimmed), "ACTOR_TYPE_") {
	case "CHARACTER", "PC":
		return ActorTypeCharacter, nil
	case "NPC":
		return ActorTypeNPC, nil
	case "VEHICLE":
		return ActorTypeVehicle, nil
	case "GROUP":
		return ActorTypeGroup, nil
	default:
		return "", apperrors.WithMetadata(
			apperrors.CodeActorInvalidType,
			fmt.Sprintf("unknown actor type: %s", trimmed),
			map[string]string{"Type": trimmed},
		)
	}
}
