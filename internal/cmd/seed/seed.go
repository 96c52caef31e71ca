// Package seed parses seed flags and writes a scene fixture to the store.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	entrypoint "github.com/louisbranch/ringcolor/internal/platform/cmd"
	"github.com/louisbranch/ringcolor/internal/services/scene/fixture"
	"github.com/louisbranch/ringcolor/internal/services/scene/storage"
	"github.com/louisbranch/ringcolor/internal/services/scene/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath  string `env:"DB_PATH" envDefault:"data/ringcolor.db"`
	Fixture string `env:"SEED_FIXTURE"`
	Verbose bool   `env:"VERBOSE"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.DBPath, "db-path", "", "Scene database path (default $RINGCOLOR_DB_PATH or data/ringcolor.db)")
	fs.StringVar(&cfg.Fixture, "fixture", "", "Scene fixture (.lua, .yaml or .yml)")
	fs.BoolVar(&cfg.Verbose, "v", false, "List written token ids")
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the fixture, writes it and activates its scene.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if strings.TrimSpace(cfg.Fixture) == "" {
		return errors.New("fixture path is required")
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		scene, err := fixture.LoadFile(cfg.Fixture)
		if err != nil {
			return err
		}
		if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open scene store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				fmt.Fprintf(errOut, "close store: %v\n", err)
			}
		}()

		result, err := fixture.Apply(ctx, store, scene)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Seeded scene %q (%s): %d actors, %d tokens\n",
			scene.Scene, result.SceneID, len(result.ActorIDs), len(result.TokenIDs))
		if cfg.Verbose {
			return printScene(ctx, out, store, result.SceneID)
		}
		return nil
	})
}

// printScene lists the stored tokens of sceneID as the store reads them back.
func printScene(ctx context.Context, out io.Writer, reader storage.Reader, sceneID string) error {
	scene, err := reader.GetScene(ctx, sceneID)
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}
	tokens, err := reader.ListTokens(ctx, scene.ID)
	if err != nil {
		return fmt.Errorf("read tokens: %w", err)
	}
	fmt.Fprintf(out, "Scene %s active=%t\n", scene.Name, scene.Active)
	for _, token := range tokens {
		if token.ActorID == "" {
			fmt.Fprintf(out, "  %s %s\n", token.ID, token.Name)
			continue
		}
		actor, err := reader.GetActor(ctx, token.ActorID)
		if err != nil {
			return fmt.Errorf("read actor for %s: %w", token.Name, err)
		}
		fmt.Fprintf(out, "  %s %s (%s, %s)\n", token.ID, token.Name, actor.Name, actor.Type)
	}
	return nil
}
