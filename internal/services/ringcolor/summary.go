package ringcolor

import (
	"golang.org/x/text/message"
)

// OutcomeKind classifies what happened to one token.
type OutcomeKind string

const (
	OutcomeUpdated        OutcomeKind = "updated"
	OutcomeSkippedNoActor OutcomeKind = "skipped_no_actor"
	OutcomeSkippedPC      OutcomeKind = "skipped_pc"
	OutcomeSkippedColored OutcomeKind = "skipped_colored"
	OutcomeErrored        OutcomeKind = "errored"
)

// Outcome records the result for one token. Err is set only for
// OutcomeErrored.
type Outcome struct {
	Kind      OutcomeKind
	TokenID   string
	TokenName string
	Err       error
}

// Summary aggregates the outcomes of one run in token order.
type Summary struct {
	SceneID     string
	SceneName   string
	TotalTokens int
	Outcomes    []Outcome
}

func (s Summary) count(kind OutcomeKind) int {
	n := 0
	for _, outcome := range s.Outcomes {
		if outcome.Kind == kind {
			n++
		}
	}
	return n
}

// SuccessCount is the number of tokens updated.
func (s Summary) SuccessCount() int { return s.count(OutcomeUpdated) }

// ErrorCount is the number of tokens whose update failed.
func (s Summary) ErrorCount() int { return s.count(OutcomeErrored) }

// SkippedPCs is the number of player character tokens left untouched.
func (s Summary) SkippedPCs() int { return s.count(OutcomeSkippedPC) }

// SkippedExistingColors is the number of tokens skipped because their ring
// already had a color or background.
func (s Summary) SkippedExistingColors() int { return s.count(OutcomeSkippedColored) }

// SkippedNoActor is the number of tokens without an actor.
func (s Summary) SkippedNoActor() int { return s.count(OutcomeSkippedNoActor) }

// EligibleTokens is the denominator of the report ratio. Tokens with existing
// colors stay in it; player characters and actorless tokens do not.
func (s Summary) EligibleTokens() int {
	return s.TotalTokens - s.SkippedPCs() - s.SkippedNoActor()
}

// Errors returns the per-token failure messages in token order.
func (s Summary) Errors() []string {
	var messages []string
	for _, outcome := range s.Outcomes {
		if outcome.Kind == OutcomeErrored && outcome.Err != nil {
			messages = append(messages, outcome.Err.Error())
		}
	}
	return messages
}

// Severity is warn when any update failed and info otherwise.
func (s Summary) Severity() Severity {
	if s.ErrorCount() > 0 {
		return SeverityWarn
	}
	return SeverityInfo
}

// Message renders the user-facing report, e.g.
// "1/2 NPCs updated (1 PCs skipped) (1 with existing colors skipped)".
func (s Summary) Message(p *message.Printer) string {
	text := p.Sprintf("ringcolor.summary.updated", s.SuccessCount(), s.EligibleTokens())
	if n := s.SkippedPCs(); n > 0 {
		text += p.Sprintf("ringcolor.summary.skipped_pcs", n)
	}
	if n := s.SkippedExistingColors(); n > 0 {
		text += p.Sprintf("ringcolor.summary.skipped_colored", n)
	}
	if n := s.ErrorCount(); n > 0 {
		text += p.Sprintf("ringcolor.summary.errors", n)
	}
	return text
}
