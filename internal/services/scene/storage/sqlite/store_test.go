package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	apperrors "github.com/louisbranch/ringcolor/internal/platform/errors"
	"github.com/louisbranch/ringcolor/internal/services/scene/domain"
	"github.com/louisbranch/ringcolor/internal/services/scene/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scenes.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("open store pass %d: %v", i+1, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close store pass %d: %v", i+1, err)
		}
	}
}

func TestActiveSceneReturnsErrNoActiveScene(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.PutScene(ctx, domain.Scene{ID: "scene-1", Name: "Crypt"}); err != nil {
		t.Fatalf("put scene: %v", err)
	}

	_, err := store.ActiveScene(ctx)
	if !errors.Is(err, storage.ErrNoActiveScene) {
		t.Fatalf("active scene error = %v, want %v", err, storage.ErrNoActiveScene)
	}
}

func TestActivateSceneKeepsSingleActiveScene(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for _, scene := range []domain.Scene{{ID: "scene-1", Name: "Crypt"}, {ID: "scene-2", Name: "Harbor"}} {
		if err := store.PutScene(ctx, scene); err != nil {
			t.Fatalf("put scene %s: %v", scene.ID, err)
		}
	}
	if err := store.ActivateScene(ctx, "scene-1"); err != nil {
		t.Fatalf("activate scene-1: %v", err)
	}
	if err := store.ActivateScene(ctx, "scene-2"); err != nil {
		t.Fatalf("activate scene-2: %v", err)
	}

	first, err := store.GetScene(ctx, "scene-1")
	if err != nil {
		t.Fatalf("get scene-1: %v", err)
	}
	if first.Active {
		t.Fatal("expected scene-1 to be deactivated")
	}
	active, err := store.ActiveScene(ctx)
	if err != nil {
		t.Fatalf("active scene: %v", err)
	}
	if active.ID() != "scene-2" || active.Name() != "Harbor" {
		t.Fatalf("active scene = %s/%s, want scene-2/Harbor", active.ID(), active.Name())
	}
}

func TestActivateSceneMissing(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.ActivateScene(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("activate error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestPutActorValidatesType(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.PutActor(context.Background(), domain.Actor{ID: "actor-1", Name: "Imp", Type: "familiar"})
	if apperrors.GetCode(err) != apperrors.CodeActorInvalidType {
		t.Fatalf("put actor error = %v, want %s", err, apperrors.CodeActorInvalidType)
	}
}

func TestPutActorNormalizesType(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.PutActor(ctx, domain.Actor{ID: "actor-1", Name: "Aria", Type: "PC"}); err != nil {
		t.Fatalf("put actor: %v", err)
	}
	got, err := store.GetActor(ctx, "actor-1")
	if err != nil {
		t.Fatalf("get actor: %v", err)
	}
	if got.Type != domain.ActorTypeCharacter {
		t.Fatalf("actor type = %q, want %q", got.Type, domain.ActorTypeCharacter)
	}
}

func TestPutTokenRequiresExistingScene(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.PutToken(context.Background(), domain.Token{ID: "tok-1", SceneID: "missing", Name: "Goblin"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("put token error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListTokensKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedScene(t, store, "scene-1")
	for _, id := range []string{"tok-c", "tok-a", "tok-b"} {
		if err := store.PutToken(ctx, domain.Token{ID: id, SceneID: "scene-1", Name: "Token " + id}); err != nil {
			t.Fatalf("put token %s: %v", id, err)
		}
	}

	tokens, err := store.ListTokens(ctx, "scene-1")
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	want := []string{"tok-c", "tok-a", "tok-b"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens len = %d, want %d", len(tokens), len(want))
	}
	for i, id := range want {
		if tokens[i].ID != id {
			t.Fatalf("tokens[%d] = %q, want %q", i, tokens[i].ID, id)
		}
		if tokens[i].Sort != i+1 {
			t.Fatalf("tokens[%d].Sort = %d, want %d", i, tokens[i].Sort, i+1)
		}
	}
}

func TestActiveSceneLoadsTokensWithActors(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedScene(t, store, "scene-1")
	if err := store.PutActor(ctx, domain.Actor{ID: "actor-npc", Name: "Goblin", Type: domain.ActorTypeNPC}); err != nil {
		t.Fatalf("put actor: %v", err)
	}
	tokens := []domain.Token{
		{ID: "tok-1", SceneID: "scene-1", Name: "Goblin", ActorID: "actor-npc"},
		{ID: "tok-2", SceneID: "scene-1", Name: "Torch", Ring: domain.RingConfig{Background: "#000000"}},
	}
	for _, token := range tokens {
		if err := store.PutToken(ctx, token); err != nil {
			t.Fatalf("put token %s: %v", token.ID, err)
		}
	}
	if err := store.ActivateScene(ctx, "scene-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	scene, err := store.ActiveScene(ctx)
	if err != nil {
		t.Fatalf("active scene: %v", err)
	}
	handles := scene.Tokens()
	if len(handles) != 2 {
		t.Fatalf("tokens len = %d, want 2", len(handles))
	}
	actor, ok := handles[0].Actor()
	if !ok {
		t.Fatal("expected first token to have an actor")
	}
	if actor.Type != domain.ActorTypeNPC || actor.Name != "Goblin" {
		t.Fatalf("actor = %+v", actor)
	}
	if _, ok := handles[1].Actor(); ok {
		t.Fatal("expected second token to have no actor")
	}
	if got := handles[1].Ring(); got.Background != "#000000" || got.Color != "" {
		t.Fatalf("ring = %+v", got)
	}
}

func TestTokenHandleUpdateWritesThrough(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedScene(t, store, "scene-1")
	if err := store.PutToken(ctx, domain.Token{ID: "tok-1", SceneID: "scene-1", Name: "Goblin"}); err != nil {
		t.Fatalf("put token: %v", err)
	}
	if err := store.ActivateScene(ctx, "scene-1"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	scene, err := store.ActiveScene(ctx)
	if err != nil {
		t.Fatalf("active scene: %v", err)
	}
	handle := scene.Tokens()[0]

	if err := handle.Update(ctx, domain.RingPatch("#d4af37", "#1b1b1b")); err != nil {
		t.Fatalf("update: %v", err)
	}

	want := domain.RingConfig{Enabled: true, Color: "#d4af37", Background: "#1b1b1b"}
	if got := handle.Ring(); got != want {
		t.Fatalf("handle ring = %+v, want %+v", got, want)
	}
	stored := listOnlyToken(t, store, "scene-1")
	if stored.Ring != want {
		t.Fatalf("stored ring = %+v, want %+v", stored.Ring, want)
	}
}

func TestUpdateTokenRejectsInvalidPatchWithoutWriting(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedScene(t, store, "scene-1")
	if err := store.PutToken(ctx, domain.Token{ID: "tok-1", SceneID: "scene-1", Name: "Goblin"}); err != nil {
		t.Fatalf("put token: %v", err)
	}

	_, err := store.updateToken(ctx, "tok-1", domain.Patch{domain.PathRingColor: "#ffffff", "ring.effects": 3})
	if apperrors.GetCode(err) != apperrors.CodeTokenPatchInvalid {
		t.Fatalf("update error = %v, want %s", err, apperrors.CodeTokenPatchInvalid)
	}
	stored := listOnlyToken(t, store, "scene-1")
	if stored.Ring != (domain.RingConfig{}) {
		t.Fatalf("stored ring = %+v, want unchanged", stored.Ring)
	}
}

func TestUpdateTokenMissing(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.updateToken(context.Background(), "missing", domain.RingPatch("#ffffff", "#000000"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestPutTokenKeepsWhitespaceColors(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedScene(t, store, "scene-1")
	ring := domain.RingConfig{Color: " ", Background: "\t"}
	if err := store.PutToken(ctx, domain.Token{ID: "tok-1", SceneID: "scene-1", Name: "Shade", Ring: ring}); err != nil {
		t.Fatalf("put token: %v", err)
	}

	stored := listOnlyToken(t, store, "scene-1")
	if stored.Ring != ring {
		t.Fatalf("stored ring = %#v, want %#v", stored.Ring, ring)
	}
	if !stored.Ring.HasCustomColors() {
		t.Fatal("expected whitespace colors to count as custom")
	}
}

func TestWriteBatchCommits(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	err := store.WriteBatch(ctx, func(w storage.Writer) error {
		if err := w.PutScene(ctx, domain.Scene{ID: "scene-1", Name: "Crypt"}); err != nil {
			return err
		}
		if err := w.PutToken(ctx, domain.Token{ID: "tok-1", SceneID: "scene-1", Name: "Goblin"}); err != nil {
			return err
		}
		return w.ActivateScene(ctx, "scene-1")
	})
	if err != nil {
		t.Fatalf("write batch: %v", err)
	}

	scene, err := store.ActiveScene(ctx)
	if err != nil {
		t.Fatalf("active scene: %v", err)
	}
	if len(scene.Tokens()) != 1 {
		t.Fatalf("tokens len = %d, want 1", len(scene.Tokens()))
	}
}

func TestWriteBatchRollsBackOnError(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	err := store.WriteBatch(ctx, func(w storage.Writer) error {
		if err := w.PutScene(ctx, domain.Scene{ID: "scene-1", Name: "Crypt"}); err != nil {
			return err
		}
		if err := w.PutActor(ctx, domain.Actor{ID: "actor-1", Name: "Goblin", Type: domain.ActorTypeNPC}); err != nil {
			return err
		}
		return w.PutToken(ctx, domain.Token{ID: "tok-1", SceneID: "scene-1", Name: "Goblin", ActorID: "missing"})
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("write batch error = %v, want %v", err, storage.ErrNotFound)
	}

	if _, err := store.GetScene(ctx, "scene-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get scene error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.GetActor(ctx, "actor-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get actor error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestStoreRejectsCancelledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.ActiveScene(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("active scene error = %v, want %v", err, context.Canceled)
	}
}

func listOnlyToken(t *testing.T, store *Store, sceneID string) domain.Token {
	t.Helper()
	tokens, err := store.ListTokens(context.Background(), sceneID)
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("tokens len = %d, want 1", len(tokens))
	}
	return tokens[0]
}

func seedScene(t *testing.T, store *Store, sceneID string) {
	t.Helper()
	if err := store.PutScene(context.Background(), domain.Scene{ID: sceneID, Name: "Scene " + sceneID}); err != nil {
		t.Fatalf("put scene: %v", err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "scenes.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
