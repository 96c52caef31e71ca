package ringcolor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Severity describes the notification class shown to the user.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Notifier displays a message to the user. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}

// WriterNotifier prints notifications as "[WARN] message" lines.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier returns a notifier writing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify writes one notification line. Write errors are dropped.
func (n *WriterNotifier) Notify(_ context.Context, severity Severity, message string) {
	if n == nil || n.w == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.w, "[%s] %s\n", strings.ToUpper(string(severity)), message)
}
