// Package sqlite provides a SQLite-backed scene document store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/ringcolor/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/ringcolor/internal/platform/timeouts"
	"github.com/louisbranch/ringcolor/internal/services/scene/domain"
	"github.com/louisbranch/ringcolor/internal/services/scene/storage"
	"github.com/louisbranch/ringcolor/internal/services/scene/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var dsnPragmas = fmt.Sprintf(
	"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
	timeouts.StoreBusy.Milliseconds(),
)

// Store persists scene documents in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite scene store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	sqlDB, err := sql.Open("sqlite", filepath.Clean(path)+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	queryer
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) inTx(ctx context.Context, name string, fn func(tx *sql.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

// WriteBatch runs fn in one transaction. Nothing fn wrote is kept when it
// returns an error.
func (s *Store) WriteBatch(ctx context.Context, fn func(storage.Writer) error) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, "write batch", func(tx *sql.Tx) error {
		return fn(&txWriter{tx: tx, now: s.now})
	})
}

// PutScene inserts or renames a scene. The active flag is only changed by
// ActivateScene.
func (s *Store) PutScene(ctx context.Context, scene domain.Scene) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return putScene(ctx, s.sqlDB, s.now(), scene)
}

// GetScene returns one scene by id.
func (s *Store) GetScene(ctx context.Context, sceneID string) (domain.Scene, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Scene{}, err
	}
	var scene domain.Scene
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, active FROM scenes WHERE id = ?`,
		strings.TrimSpace(sceneID),
	).Scan(&scene.ID, &scene.Name, &scene.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Scene{}, storage.ErrNotFound
		}
		return domain.Scene{}, fmt.Errorf("get scene: %w", err)
	}
	return scene, nil
}

// ActivateScene deactivates every scene and activates sceneID in one
// transaction.
func (s *Store) ActivateScene(ctx context.Context, sceneID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, "activate scene", func(tx *sql.Tx) error {
		return activateScene(ctx, tx, s.now(), sceneID)
	})
}

// PutActor inserts or replaces an actor.
func (s *Store) PutActor(ctx context.Context, actor domain.Actor) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return putActor(ctx, s.sqlDB, s.now(), actor)
}

// GetActor returns one actor by id.
func (s *Store) GetActor(ctx context.Context, actorID string) (domain.Actor, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Actor{}, err
	}
	var actor domain.Actor
	var actorType string
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, type FROM actors WHERE id = ?`,
		strings.TrimSpace(actorID),
	).Scan(&actor.ID, &actor.Name, &actorType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Actor{}, storage.ErrNotFound
		}
		return domain.Actor{}, fmt.Errorf("get actor: %w", err)
	}
	actor.Type = domain.ActorType(actorType)
	return actor, nil
}

// PutToken inserts or replaces a token placement. A zero Sort appends the
// token after the scene's current last token.
func (s *Store) PutToken(ctx context.Context, token domain.Token) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return putToken(ctx, s.sqlDB, s.now(), token)
}

// ListTokens returns a scene's tokens in collection order.
func (s *Store) ListTokens(ctx context.Context, sceneID string) ([]domain.Token, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+tokenColumns+`
		   FROM tokens
		  WHERE scene_id = ?
		  ORDER BY sort ASC, id ASC`,
		strings.TrimSpace(sceneID),
	)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.Token
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("list tokens: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	return tokens, nil
}

// updateToken applies patch to one token inside a transaction and returns the
// stored result.
func (s *Store) updateToken(ctx context.Context, tokenID string, patch domain.Patch) (domain.Token, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Token{}, err
	}
	var next domain.Token
	err := s.inTx(ctx, "update token", func(tx *sql.Tx) error {
		current, err := getToken(ctx, tx, strings.TrimSpace(tokenID))
		if err != nil {
			return err
		}
		next, err = patch.Apply(current)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE tokens
			    SET ring_enabled = ?, ring_color = ?, ring_background = ?, updated_at = ?
			  WHERE id = ?`,
			next.Ring.Enabled,
			nullText(next.Ring.Color),
			nullText(next.Ring.Background),
			toMillis(s.now()),
			next.ID,
		); err != nil {
			return fmt.Errorf("update token: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Token{}, err
	}
	return next, nil
}

// ActiveScene loads the active scene with its tokens and their actors.
func (s *Store) ActiveScene(ctx context.Context) (storage.SceneHandle, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var scene domain.Scene
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, active FROM scenes WHERE active = 1`,
	).Scan(&scene.ID, &scene.Name, &scene.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNoActiveScene
		}
		return nil, fmt.Errorf("get active scene: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT t.id, t.scene_id, t.name, t.actor_id,
		        t.ring_enabled, t.ring_color, t.ring_background, t.sort,
		        a.id, a.name, a.type
		   FROM tokens t
		   LEFT JOIN actors a ON a.id = t.actor_id
		  WHERE t.scene_id = ?
		  ORDER BY t.sort ASC, t.id ASC`,
		scene.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("load scene tokens: %w", err)
	}
	defer rows.Close()

	handle := &sceneHandle{scene: scene}
	for rows.Next() {
		var (
			token                       domain.Token
			actorRef, color, background sql.NullString
			actorID, actorName, actType sql.NullString
		)
		if err := rows.Scan(
			&token.ID, &token.SceneID, &token.Name, &actorRef,
			&token.Ring.Enabled, &color, &background, &token.Sort,
			&actorID, &actorName, &actType,
		); err != nil {
			return nil, fmt.Errorf("load scene tokens: %w", err)
		}
		token.ActorID = actorRef.String
		token.Ring.Color = color.String
		token.Ring.Background = background.String

		tokenHandle := &tokenHandle{store: s, token: token}
		if actorID.Valid {
			tokenHandle.actor = &domain.Actor{
				ID:   actorID.String,
				Name: actorName.String,
				Type: domain.ActorType(actType.String),
			}
		}
		handle.tokens = append(handle.tokens, tokenHandle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load scene tokens: %w", err)
	}
	return handle, nil
}

const tokenColumns = `id, scene_id, name, actor_id, ring_enabled, ring_color, ring_background, sort`

type rowScanner interface {
	Scan(dest ...any) error
}

func getToken(ctx context.Context, q queryer, tokenID string) (domain.Token, error) {
	token, err := scanToken(q.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE id = ?`, tokenID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Token{}, storage.ErrNotFound
		}
		return domain.Token{}, fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

func scanToken(row rowScanner) (domain.Token, error) {
	var (
		token                      domain.Token
		actorID, color, background sql.NullString
	)
	if err := row.Scan(
		&token.ID, &token.SceneID, &token.Name, &actorID,
		&token.Ring.Enabled, &color, &background, &token.Sort,
	); err != nil {
		return domain.Token{}, err
	}
	token.ActorID = actorID.String
	token.Ring.Color = color.String
	token.Ring.Background = background.String
	return token, nil
}

// nullID stores a blank reference as NULL.
func nullID(value string) sql.NullString {
	trimmed := strings.TrimSpace(value)
	return sql.NullString{String: trimmed, Valid: trimmed != ""}
}

// nullText stores only the empty string as NULL; other values are kept
// verbatim.
func nullText(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

var (
	_ storage.SceneSource = (*Store)(nil)
	_ storage.Reader      = (*Store)(nil)
	_ storage.Writer      = (*Store)(nil)
	_ storage.BatchWriter = (*Store)(nil)
)
