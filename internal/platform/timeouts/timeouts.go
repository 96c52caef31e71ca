// Package timeouts defines the durations shared by ringcolor commands.
package timeouts

import "time"

// TelemetryShutdown caps how long a command waits for spans to flush on exit.
const TelemetryShutdown = 5 * time.Second

// StoreBusy is how long a SQLite connection waits on a locked database
// before failing the statement.
const StoreBusy = 5 * time.Second
