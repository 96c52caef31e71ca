// Package ringcolor parses colorizer flags and runs one batch ring update.
package ringcolor

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	entrypoint "github.com/louisbranch/ringcolor/internal/platform/cmd"
	"github.com/louisbranch/ringcolor/internal/services/ringcolor"
	"github.com/louisbranch/ringcolor/internal/services/scene/storage/sqlite"
)

// Config holds ringcolor command configuration.
type Config struct {
	DBPath  string `env:"DB_PATH" envDefault:"data/ringcolor.db"`
	Locale  string `env:"LOCALE" envDefault:"en-US"`
	Verbose bool   `env:"VERBOSE"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.DBPath, "db-path", "", "Scene database path (default $RINGCOLOR_DB_PATH or data/ringcolor.db)")
	fs.StringVar(&cfg.Locale, "locale", "", "Notification locale (default $RINGCOLOR_LOCALE or en-US)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log one line per token")
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Notified reports whether err was already shown to the user as the run's
// error notification.
func Notified(err error) bool {
	return errors.Is(err, ringcolor.ErrNoActiveScene) || errors.Is(err, ringcolor.ErrUnexpected)
}

// Run colors the rings of the active scene's NPC tokens. Notifications go to
// out and logs to errOut. An empty scene is reported but is not an error.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRingColor, func(ctx context.Context) error {
		store, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				fmt.Fprintf(errOut, "close store: %v\n", err)
			}
		}()

		colorizer, err := ringcolor.New(ringcolor.Config{
			Scenes:   store,
			Notifier: ringcolor.NewWriterNotifier(out),
			Logger:   log.New(errOut, entrypoint.LogPrefix(entrypoint.ServiceRingColor), 0),
			Locale:   cfg.Locale,
			Verbose:  cfg.Verbose,
		})
		if err != nil {
			return err
		}
		if _, err := colorizer.Run(ctx); err != nil {
			if errors.Is(err, ringcolor.ErrEmptyScene) {
				return nil
			}
			return err
		}
		return nil
	})
}

func openStore(path string) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene store: %w", err)
	}
	return store, nil
}
