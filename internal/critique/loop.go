// Package critique implements the bounded generate/critique state machine
// that gates a sentiment report on usefulness and groundedness.
package critique

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"SentimentReporter/internal/domain"
	"SentimentReporter/internal/ports"
)

// State enumerates the loop's positions. Pass and Exhausted are terminal.
type State int

const (
	StateGenerate State = iota
	StateEvaluateUsefulness
	StateEvaluateGroundedness
	StateRetry
	StatePass
	StateExhausted
)

// String makes states readable in logs and test failures.
func (s State) String() string {
	switch s {
	case StateGenerate:
		return "generate"
	case StateEvaluateUsefulness:
		return "evaluate_usefulness"
	case StateEvaluateGroundedness:
		return "evaluate_groundedness"
	case StateRetry:
		return "retry"
	case StatePass:
		return "pass"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// transition is the pure routing function for grading states. Usefulness
// gates groundedness: a report that is not even responsive never reaches the
// factuality check that round.
func transition(s State, verdict domain.Verdict) State {
	switch s {
	case StateEvaluateUsefulness:
		if verdict.Passed {
			return StateEvaluateGroundedness
		}
		return StateRetry
	case StateEvaluateGroundedness:
		if verdict.Passed {
			return StatePass
		}
		return StateRetry
	}
	return s
}

// routeRetry decides between another generation round and giving up. The
// threshold counts total turns, not rounds: each round contributes one report
// turn and, on failure, one criticism turn, so maxRounds*2 models maxRounds
// completed generate+critique cycles.
func routeRetry(turns, maxRounds int) State {
	if turns >= maxRounds*2 {
		return StateExhausted
	}
	return StateGenerate
}

// FormatCriticisms renders a critic's criticism list as the bulleted block
// appended to the conversation.
func FormatCriticisms(criticisms []string) string {
	var b strings.Builder
	b.WriteString("Criticisms:\n")
	for _, criticism := range criticisms {
		b.WriteString("-")
		b.WriteString(criticism)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Result is the terminal outcome of one loop run. Report is only meaningful
// when Passed is true.
type Result struct {
	Passed       bool
	Report       domain.Report
	Conversation domain.Conversation
}

// Loop drives generation and grading until a report is accepted or the retry
// budget is exhausted.
type Loop struct {
	generator ports.Generator
	critic    ports.Critic
	maxRounds int
	logger    *slog.Logger
}

// NewLoop wires the generator and critic roles. maxRounds must be positive;
// values below one are clamped to one.
func NewLoop(generator ports.Generator, critic ports.Critic, maxRounds int, logger *slog.Logger) *Loop {
	if maxRounds < 1 {
		maxRounds = 1
	}
	return &Loop{
		generator: generator,
		critic:    critic,
		maxRounds: maxRounds,
		logger:    logger,
	}
}

// Run executes the state machine for one asset and digest. A model failure
// or cancellation aborts the run with an error; a partial report is never
// surfaced as accepted.
func (l *Loop) Run(ctx context.Context, asset domain.Asset, digest string) (Result, error) {
	var (
		conv      domain.Conversation
		candidate domain.Report
		state     = StateGenerate
	)

	for {
		if err := ctx.Err(); err != nil {
			return Result{Conversation: conv}, fmt.Errorf("critique loop for %s: %w", asset.Symbol, err)
		}

		switch state {
		case StateGenerate:
			report, err := l.generator.GenerateReport(ctx, asset, digest, conv)
			if err != nil {
				return Result{Conversation: conv}, fmt.Errorf("generate report for %s: %w", asset.Symbol, err)
			}
			candidate = report
			conv.Append(domain.TurnReport, report.Text)
			state = StateEvaluateUsefulness

		case StateEvaluateUsefulness:
			verdict, err := l.critic.GradeUsefulness(ctx, asset, candidate.Text)
			if err != nil {
				return Result{Conversation: conv}, fmt.Errorf("grade usefulness for %s: %w", asset.Symbol, err)
			}
			state = l.applyVerdict(StateEvaluateUsefulness, verdict, &conv)

		case StateEvaluateGroundedness:
			verdict, err := l.critic.GradeGroundedness(ctx, digest, candidate.Text)
			if err != nil {
				return Result{Conversation: conv}, fmt.Errorf("grade groundedness for %s: %w", asset.Symbol, err)
			}
			state = l.applyVerdict(StateEvaluateGroundedness, verdict, &conv)

		case StateRetry:
			state = routeRetry(conv.Len(), l.maxRounds)

		case StatePass:
			return Result{Passed: true, Report: candidate, Conversation: conv}, nil

		case StateExhausted:
			l.warn("retry budget exhausted", "asset", asset.Symbol, "turns", conv.Len())
			return Result{Conversation: conv}, nil
		}
	}
}

func (l *Loop) applyVerdict(state State, verdict domain.Verdict, conv *domain.Conversation) State {
	next := transition(state, verdict)
	if next == StateRetry {
		conv.Append(domain.TurnCriticism, FormatCriticisms(verdict.Criticisms))
		l.debug("report rejected", "state", state.String(), "criticisms", len(verdict.Criticisms))
	}
	return next
}

func (l *Loop) debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l *Loop) warn(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}
