// Package storage defines the host contracts tools use to read and mutate
// scene documents.
package storage

import (
	"context"

	apperrors "github.com/louisbranch/ringcolor/internal/platform/errors"
	"github.com/louisbranch/ringcolor/internal/services/scene/domain"
)

var (
	// ErrNotFound indicates a requested scene record is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	// ErrNoActiveScene indicates no scene is currently active.
	ErrNoActiveScene = apperrors.New(apperrors.CodeSceneNotActive, "no active scene")
)

// SceneSource resolves the scene currently shown to players.
type SceneSource interface {
	// ActiveScene returns ErrNoActiveScene when no scene is active.
	ActiveScene(ctx context.Context) (SceneHandle, error)
}

// SceneHandle is a live reference to a host scene.
type SceneHandle interface {
	ID() string
	Name() string
	// Tokens returns the scene's token placements in collection order.
	Tokens() []TokenHandle
}

// TokenHandle is a live reference to one host token placement. The host owns
// the document; callers change it only through Update.
type TokenHandle interface {
	ID() string
	Name() string
	// Actor returns the linked actor, or false when the token has none.
	Actor() (domain.Actor, bool)
	Ring() domain.RingConfig
	// Update applies patch atomically to this token. A successful update is
	// visible through the handle's accessors.
	Update(ctx context.Context, patch domain.Patch) error
}

// Reader loads scene documents by id.
type Reader interface {
	GetScene(ctx context.Context, sceneID string) (domain.Scene, error)
	GetActor(ctx context.Context, actorID string) (domain.Actor, error)
	ListTokens(ctx context.Context, sceneID string) ([]domain.Token, error)
}

// Writer creates or replaces scene documents.
type Writer interface {
	PutScene(ctx context.Context, scene domain.Scene) error
	PutActor(ctx context.Context, actor domain.Actor) error
	// PutToken appends the token to its scene when Sort is zero.
	PutToken(ctx context.Context, token domain.Token) error
	// ActivateScene makes sceneID the only active scene.
	ActivateScene(ctx context.Context, sceneID string) error
}

// BatchWriter groups writes so they land together or not at all.
type BatchWriter interface {
	// WriteBatch runs fn with a Writer scoped to one transaction. When fn
	// returns an error none of its writes are kept.
	WriteBatch(ctx context.Context, fn func(Writer) error) error
}
