package sqlite

import (
	"context"

	"github.com/louisbranch/ringcolor/internal/services/scene/domain"
	"github.com/louisbranch/ringcolor/internal/services/scene/storage"
)

type sceneHandle struct {
	scene  domain.Scene
	tokens []storage.TokenHandle
}

func (h *sceneHandle) ID() string                    { return h.scene.ID }
func (h *sceneHandle) Name() string                  { return h.scene.Name }
func (h *sceneHandle) Tokens() []storage.TokenHandle { return h.tokens }

// tokenHandle writes through to the store and keeps the stored result, so a
// handle always reflects the last successful update.
type tokenHandle struct {
	store *Store
	token domain.Token
	actor *domain.Actor
}

func (h *tokenHandle) ID() string              { return h.token.ID }
func (h *tokenHandle) Name() string            { return h.token.Name }
func (h *tokenHandle) Ring() domain.RingConfig { return h.token.Ring }

func (h *tokenHandle) Actor() (domain.Actor, bool) {
	if h.actor == nil {
		return domain.Actor{}, false
	}
	return *h.actor, true
}

func (h *tokenHandle) Update(ctx context.Context, patch domain.Patch) error {
	updated, err := h.store.updateToken(ctx, h.token.ID, patch)
	if err != nil {
		return err
	}
	h.token = updated
	return nil
}
