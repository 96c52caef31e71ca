package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/ringcolor/internal/services/scene/domain"
	"github.com/louisbranch/ringcolor/internal/services/scene/storage"
)

// txWriter writes inside a WriteBatch transaction.
type txWriter struct {
	tx  *sql.Tx
	now func() time.Time
}

func (w *txWriter) PutScene(ctx context.Context, scene domain.Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return putScene(ctx, w.tx, w.now(), scene)
}

func (w *txWriter) PutActor(ctx context.Context, actor domain.Actor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return putActor(ctx, w.tx, w.now(), actor)
}

func (w *txWriter) PutToken(ctx context.Context, token domain.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return putToken(ctx, w.tx, w.now(), token)
}

func (w *txWriter) ActivateScene(ctx context.Context, sceneID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return activateScene(ctx, w.tx, w.now(), sceneID)
}

func putScene(ctx context.Context, db execer, at time.Time, scene domain.Scene) error {
	sceneID := strings.TrimSpace(scene.ID)
	name := strings.TrimSpace(scene.Name)
	if sceneID == "" {
		return fmt.Errorf("scene id is required")
	}
	if name == "" {
		return fmt.Errorf("scene name is required")
	}
	now := toMillis(at)
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO scenes (id, name, active, created_at, updated_at)
		 VALUES (?, ?, 0, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name,
		   updated_at = excluded.updated_at`,
		sceneID, name, now, now,
	)
	if err != nil {
		return fmt.Errorf("put scene: %w", err)
	}
	return nil
}

func activateScene(ctx context.Context, db execer, at time.Time, sceneID string) error {
	sceneID = strings.TrimSpace(sceneID)
	if sceneID == "" {
		return fmt.Errorf("scene id is required")
	}
	now := toMillis(at)
	if _, err := db.ExecContext(ctx, `UPDATE scenes SET active = 0, updated_at = ? WHERE active = 1`, now); err != nil {
		return fmt.Errorf("deactivate scenes: %w", err)
	}
	result, err := db.ExecContext(ctx, `UPDATE scenes SET active = 1, updated_at = ? WHERE id = ?`, now, sceneID)
	if err != nil {
		return fmt.Errorf("activate scene: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate scene: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func putActor(ctx context.Context, db execer, at time.Time, actor domain.Actor) error {
	actorID := strings.TrimSpace(actor.ID)
	name := strings.TrimSpace(actor.Name)
	if actorID == "" {
		return fmt.Errorf("actor id is required")
	}
	if name == "" {
		return fmt.Errorf("actor name is required")
	}
	actorType, err := domain.ParseActorType(string(actor.Type))
	if err != nil {
		return err
	}
	now := toMillis(at)
	_, err = db.ExecContext(
		ctx,
		`INSERT INTO actors (id, name, type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name,
		   type = excluded.type,
		   updated_at = excluded.updated_at`,
		actorID, name, string(actorType), now, now,
	)
	if err != nil {
		return fmt.Errorf("put actor: %w", err)
	}
	return nil
}

func putToken(ctx context.Context, db execer, at time.Time, token domain.Token) error {
	tokenID := strings.TrimSpace(token.ID)
	sceneID := strings.TrimSpace(token.SceneID)
	name := strings.TrimSpace(token.Name)
	if tokenID == "" {
		return fmt.Errorf("token id is required")
	}
	if sceneID == "" {
		return fmt.Errorf("scene id is required")
	}
	if name == "" {
		return fmt.Errorf("token name is required")
	}
	now := toMillis(at)
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO tokens (
		   id, scene_id, name, actor_id,
		   ring_enabled, ring_color, ring_background,
		   sort, created_at, updated_at
		 ) VALUES (
		   ?, ?, ?, ?,
		   ?, ?, ?,
		   CASE WHEN ? > 0 THEN ? ELSE (SELECT COALESCE(MAX(sort), 0) + 1 FROM tokens WHERE scene_id = ?) END,
		   ?, ?
		 )
		 ON CONFLICT (id) DO UPDATE SET
		   scene_id = excluded.scene_id,
		   name = excluded.name,
		   actor_id = excluded.actor_id,
		   ring_enabled = excluded.ring_enabled,
		   ring_color = excluded.ring_color,
		   ring_background = excluded.ring_background,
		   sort = excluded.sort,
		   updated_at = excluded.updated_at`,
		tokenID, sceneID, name, nullID(token.ActorID),
		token.Ring.Enabled, nullText(token.Ring.Color), nullText(token.Ring.Background),
		token.Sort, token.Sort, sceneID,
		now, now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("put token %s: scene or actor: %w", tokenID, storage.ErrNotFound)
		}
		return fmt.Errorf("put token: %w", err)
	}
	return nil
}
