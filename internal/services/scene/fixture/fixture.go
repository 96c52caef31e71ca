// Package fixture loads scene fixtures and writes them to a scene store.
//
// A fixture describes one scene, the actors its tokens represent and the
// token placements in collection order. Fixtures are authored either as Lua
// scripts returning a Scene built with the Scene DSL or as YAML documents.
package fixture

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	apperrors "github.com/louisbranch/ringcolor/internal/platform/errors"
	"github.com/louisbranch/ringcolor/internal/platform/id"
	"github.com/louisbranch/ringcolor/internal/services/scene/domain"
	"github.com/louisbranch/ringcolor/internal/services/scene/storage"
)

// Fixture is a scene definition ready to be written to a store.
type Fixture struct {
	Scene  string  `yaml:"scene"`
	Actors []Actor `yaml:"actors"`
	Tokens []Token `yaml:"tokens"`
}

// Actor declares an actor referenced by tokens through Key.
type Actor struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Token declares one token placement. Actor is an actor key or empty.
type Token struct {
	Name  string `yaml:"name"`
	Actor string `yaml:"actor"`
	Ring  Ring   `yaml:"ring"`
}

// Ring is the token ring state a fixture starts from.
type Ring struct {
	Enabled    bool   `yaml:"enabled"`
	Color      string `yaml:"color"`
	Background string `yaml:"background"`
}

// Result reports the records written by Apply.
type Result struct {
	SceneID  string
	ActorIDs map[string]string
	TokenIDs []string
}

var newID = id.NewID

// LoadFile loads a fixture from a .lua, .yaml or .yml file.
func LoadFile(path string) (*Fixture, error) {
	var (
		fixture *Fixture
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		fixture, err = loadLuaFile(path)
	case ".yaml", ".yml":
		fixture, err = loadYAMLFile(path)
	default:
		return nil, invalid(fmt.Sprintf("unsupported fixture extension %q", filepath.Ext(path)))
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(fixture.Scene) == "" {
		fixture.Scene = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := fixture.Validate(); err != nil {
		return nil, err
	}
	return fixture, nil
}

// Validate checks names, actor types and actor references.
func (f *Fixture) Validate() error {
	if f == nil {
		return invalid("fixture is required")
	}
	if strings.TrimSpace(f.Scene) == "" {
		return invalid("scene name is required")
	}
	keys := make(map[string]struct{}, len(f.Actors))
	for i, actor := range f.Actors {
		key := strings.TrimSpace(actor.Key)
		if key == "" {
			return invalid(fmt.Sprintf("actor %d: key is required", i+1))
		}
		if _, exists := keys[key]; exists {
			return invalid(fmt.Sprintf("actor %q is declared twice", key))
		}
		if strings.TrimSpace(actor.Name) == "" {
			return invalid(fmt.Sprintf("actor %q: name is required", key))
		}
		if _, err := domain.ParseActorType(actor.Type); err != nil {
			return apperrors.WrapWithMetadata(
				apperrors.CodeFixtureInvalid,
				fmt.Sprintf("actor %q: %v", key, err),
				map[string]string{"Reason": fmt.Sprintf("actor %q: %v", key, err)},
				err,
			)
		}
		keys[key] = struct{}{}
	}
	for i, token := range f.Tokens {
		if strings.TrimSpace(token.Name) == "" {
			return invalid(fmt.Sprintf("token %d: name is required", i+1))
		}
		ref := strings.TrimSpace(token.Actor)
		if ref == "" {
			continue
		}
		if _, exists := keys[ref]; !exists {
			return invalid(fmt.Sprintf("token %q: unknown actor %q", token.Name, ref))
		}
	}
	return nil
}

// Apply writes the fixture with generated ids and makes its scene the active
// one. Tokens keep fixture order. All writes share one batch, so a failed
// write leaves the store as it was.
func Apply(ctx context.Context, store storage.BatchWriter, fixture *Fixture) (Result, error) {
	if store == nil {
		return Result{}, fmt.Errorf("scene writer is required")
	}
	if err := fixture.Validate(); err != nil {
		return Result{}, err
	}
	var result Result
	err := store.WriteBatch(ctx, func(writer storage.Writer) error {
		var err error
		result, err = apply(ctx, writer, fixture)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func apply(ctx context.Context, writer storage.Writer, fixture *Fixture) (Result, error) {
	sceneID, err := newID()
	if err != nil {
		return Result{}, fmt.Errorf("scene id: %w", err)
	}
	if err := writer.PutScene(ctx, domain.Scene{ID: sceneID, Name: strings.TrimSpace(fixture.Scene)}); err != nil {
		return Result{}, fmt.Errorf("put scene: %w", err)
	}

	result := Result{SceneID: sceneID, ActorIDs: make(map[string]string, len(fixture.Actors))}
	for _, actor := range fixture.Actors {
		actorID, err := newID()
		if err != nil {
			return Result{}, fmt.Errorf("actor id: %w", err)
		}
		actorType, _ := domain.ParseActorType(actor.Type)
		if err := writer.PutActor(ctx, domain.Actor{ID: actorID, Name: strings.TrimSpace(actor.Name), Type: actorType}); err != nil {
			return Result{}, fmt.Errorf("put actor %s: %w", actor.Key, err)
		}
		result.ActorIDs[strings.TrimSpace(actor.Key)] = actorID
	}

	for i, token := range fixture.Tokens {
		tokenID, err := newID()
		if err != nil {
			return Result{}, fmt.Errorf("token id: %w", err)
		}
		record := domain.Token{
			ID:      tokenID,
			SceneID: sceneID,
			Name:    strings.TrimSpace(token.Name),
			ActorID: result.ActorIDs[strings.TrimSpace(token.Actor)],
			Ring: domain.RingConfig{
				Enabled:    token.Ring.Enabled,
				Color:      token.Ring.Color,
				Background: token.Ring.Background,
			},
			Sort: i + 1,
		}
		if err := writer.PutToken(ctx, record); err != nil {
			return Result{}, fmt.Errorf("put token %s: %w", record.Name, err)
		}
		result.TokenIDs = append(result.TokenIDs, tokenID)
	}

	if err := writer.ActivateScene(ctx, sceneID); err != nil {
		return Result{}, fmt.Errorf("activate scene: %w", err)
	}
	return result, nil
}

func invalid(reason string) error {
	return apperrors.WithMetadata(apperrors.CodeFixtureInvalid, "invalid fixture: "+reason, map[string]string{"Reason": reason})
}
