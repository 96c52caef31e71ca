// Package ringcolor enables and colors the token rings of every NPC token on
// the active scene.
//
// A run walks the scene's tokens in collection order and updates each
// eligible token with one awaited partial update. Player characters, tokens
// without an actor and tokens whose ring already carries a color are left
// untouched. Every run ends with exactly one user notification.
package ringcolor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	apperrors "github.com/louisbranch/ringcolor/internal/platform/errors"
	"github.com/louisbranch/ringcolor/internal/platform/i18n/catalog"
	"github.com/louisbranch/ringcolor/internal/services/scene/domain"
	"github.com/louisbranch/ringcolor/internal/services/scene/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Target ring colors written to eligible tokens.
const (
	RingColor       = "#d4af37"
	BackgroundColor = "#1b1b1b"
)

const tracerName = "github.com/louisbranch/ringcolor/internal/services/ringcolor"

var (
	// ErrNoActiveScene indicates the run found no scene to work on.
	ErrNoActiveScene = apperrors.New(apperrors.CodeSceneNotActive, "no active scene")
	// ErrEmptyScene indicates the active scene has no tokens. It is a notice,
	// not a failure.
	ErrEmptyScene = apperrors.New(apperrors.CodeSceneEmpty, "scene has no tokens")
	// ErrUnexpected indicates a failure outside the per-token boundary.
	ErrUnexpected = apperrors.New(apperrors.CodeUnexpectedFailure, "unexpected failure")
)

// Config wires a Colorizer.
type Config struct {
	Scenes   storage.SceneSource
	Notifier Notifier
	// Logger defaults to a stderr logger.
	Logger *log.Logger
	// Tracer defaults to the global tracer provider.
	Tracer trace.Tracer
	// Locale selects the notification language; unknown locales use en-US.
	Locale string
	// Verbose logs one line per token.
	Verbose bool
}

// Colorizer runs the batch ring update.
type Colorizer struct {
	scenes   storage.SceneSource
	notifier Notifier
	logger   *log.Logger
	tracer   trace.Tracer
	locale   string
	verbose  bool
}

// New validates cfg and returns a Colorizer.
func New(cfg Config) (*Colorizer, error) {
	if cfg.Scenes == nil {
		return nil, fmt.Errorf("scene source is required")
	}
	if cfg.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Colorizer{
		scenes:   cfg.Scenes,
		notifier: cfg.Notifier,
		logger:   logger,
		tracer:   tracer,
		locale:   catalog.Default().ResolveLocale(cfg.Locale),
		verbose:  cfg.Verbose,
	}, nil
}

// run carries the state of one invocation.
type run struct {
	*Colorizer
	summary  Summary
	notified bool
}

// Run processes the active scene once. It returns ErrNoActiveScene or
// ErrEmptyScene from the guards, and an UNEXPECTED_FAILURE error when the run
// aborts. Per-token failures are reported in the summary, never as an error.
// The summary holds the outcomes recorded before any abort.
func (c *Colorizer) Run(ctx context.Context) (summary Summary, err error) {
	ctx, span := c.tracer.Start(ctx, "ringcolor.run")
	defer span.End()

	r := &run{Colorizer: c}
	defer func() {
		if recovered := recover(); recovered != nil {
			err = r.fail(ctx, span, fmt.Errorf("panic: %v", recovered))
		}
		summary = r.summary
	}()
	err = r.execute(ctx, span)
	return r.summary, err
}

func (r *run) execute(ctx context.Context, span trace.Span) error {
	scene, err := r.scenes.ActiveScene(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoActiveScene) {
			r.logger.Printf("no active scene")
			span.SetStatus(codes.Error, ErrNoActiveScene.Message)
			r.notify(ctx, SeverityError, apperrors.LocalizedMessage(ErrNoActiveScene, r.locale))
			return ErrNoActiveScene
		}
		return r.fail(ctx, span, err)
	}
	if scene == nil {
		return r.fail(ctx, span, errors.New("scene source returned no scene"))
	}

	tokens := scene.Tokens()
	r.summary = Summary{SceneID: scene.ID(), SceneName: scene.Name(), TotalTokens: len(tokens)}
	span.SetAttributes(
		attribute.String("ringcolor.scene_id", scene.ID()),
		attribute.Int("ringcolor.tokens", len(tokens)),
	)
	if len(tokens) == 0 {
		empty := apperrors.WithMetadata(ErrEmptyScene.Code, ErrEmptyScene.Message, map[string]string{"Scene": scene.Name()})
		r.logger.Printf("scene %q has no tokens", scene.Name())
		r.notify(ctx, SeverityWarn, apperrors.LocalizedMessage(empty, r.locale))
		return empty
	}

	r.logger.Printf("processing %d tokens on scene %q", len(tokens), scene.Name())
	for _, token := range tokens {
		r.summary.Outcomes = append(r.summary.Outcomes, r.process(ctx, token))
	}
	r.report(ctx, span)
	return nil
}

// process applies the eligibility filter to one token and updates it when it
// passes. The first matching rule wins.
func (r *run) process(ctx context.Context, token storage.TokenHandle) Outcome {
	outcome := Outcome{TokenID: token.ID(), TokenName: token.Name()}

	actor, ok := token.Actor()
	if !ok {
		r.logger.Printf("skipping %s: no actor", token.Name())
		outcome.Kind = OutcomeSkippedNoActor
		return outcome
	}
	if actor.IsPlayerCharacter() {
		r.debugf("skipping %s: player character", token.Name())
		outcome.Kind = OutcomeSkippedPC
		return outcome
	}
	if token.Ring().HasCustomColors() {
		r.debugf("skipping %s: ring already colored", token.Name())
		outcome.Kind = OutcomeSkippedColored
		return outcome
	}

	ctx, span := r.tracer.Start(ctx, "ringcolor.update_token", trace.WithAttributes(
		attribute.String("ringcolor.token_id", token.ID()),
	))
	defer span.End()

	if err := token.Update(ctx, domain.RingPatch(RingColor, BackgroundColor)); err != nil {
		outcome.Kind = OutcomeErrored
		outcome.Err = apperrors.WrapWithMetadata(
			apperrors.CodeTokenUpdateFailed,
			fmt.Sprintf("Failed to update %s: %v", token.Name(), err),
			map[string]string{"Token": token.Name(), "Reason": err.Error()},
			err,
		)
		r.logger.Print(outcome.Err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		outcome.Kind = OutcomeUpdated
		r.debugf("updated %s", token.Name())
	}
	span.SetAttributes(attribute.String("ringcolor.outcome", string(outcome.Kind)))
	return outcome
}

func (r *run) report(ctx context.Context, span trace.Span) {
	s := r.summary
	text := s.Message(catalog.Default().Printer(r.locale))
	span.SetAttributes(
		attribute.Int("ringcolor.updated", s.SuccessCount()),
		attribute.Int("ringcolor.errors", s.ErrorCount()),
		attribute.Int("ringcolor.skipped_pcs", s.SkippedPCs()),
		attribute.Int("ringcolor.skipped_existing_colors", s.SkippedExistingColors()),
	)
	if s.ErrorCount() > 0 {
		r.logger.Printf("%d token updates failed:", s.ErrorCount())
		for _, msg := range s.Errors() {
			r.logger.Printf("  %s", msg)
		}
	}
	r.notify(ctx, s.Severity(), text)
	r.logger.Printf(
		"ring %s background %s: updated=%d errors=%d skipped_pcs=%d skipped_existing_colors=%d",
		RingColor, BackgroundColor,
		s.SuccessCount(), s.ErrorCount(), s.SkippedPCs(), s.SkippedExistingColors(),
	)
}

// fail reports err as the run's single error notification, unless one was
// already shown, and returns it wrapped as UNEXPECTED_FAILURE.
func (r *run) fail(ctx context.Context, span trace.Span, err error) error {
	reason := strings.TrimSpace(err.Error())
	wrapped := apperrors.WrapWithMetadata(
		ErrUnexpected.Code,
		"ring color update failed: "+reason,
		map[string]string{"Reason": reason},
		err,
	)
	r.logger.Printf("%v", wrapped)
	span.RecordError(err)
	span.SetStatus(codes.Error, wrapped.Message)
	if !r.notified {
		r.notify(ctx, SeverityError, apperrors.LocalizedMessage(wrapped, r.locale))
	}
	return wrapped
}

func (r *run) notify(ctx context.Context, severity Severity, message string) {
	r.notified = true
	r.notifier.Notify(ctx, severity, message)
}

func (r *run) debugf(format string, args ...any) {
	if r.verbose {
		r.logger.Printf(format, args...)
	}
}
