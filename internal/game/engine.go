package game

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxQuestions is the question budget of a Twenty Questions session.
const MaxQuestions = 20

var (
	ErrSessionTerminal = errors.New("session accepts no more questions")
	ErrEmptyInput      = errors.New("input must not be empty")
	ErrUnknownCategory = errors.New("unknown category")
)

// Engine runs Twenty Questions sessions against an oracle. Every
// state-mutating action is followed by an auto-save; oracle failures leave
// the session untouched so a retry never double-charges the budget.
type Engine struct {
	oracle Oracle
	store  Saver
	log    zerolog.Logger
}

// NewEngine builds a Twenty Questions engine.
func NewEngine(oracle Oracle, store Saver, log zerolog.Logger) *Engine {
	return &Engine{oracle: oracle, store: store, log: log}
}

// NewSession starts a fresh session: the oracle invents a secret subject
// for the category and the question budget is reset to MaxQuestions.
func (e *Engine) NewSession(ctx context.Context, category Category) (*Session, error) {
	switch category {
	case CategoryPerson, CategoryPlace, CategoryThing:
	default:
		return nil, ErrUnknownCategory
	}

	subject, err := e.oracle.GenerateSubject(ctx, category)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        uuid.NewString(),
		Category:  category,
		Subject:   subject,
		Questions: []QA{},
		Remaining: MaxQuestions,
		Status:    StatusInProgress,
		StartedAt: time.Now().UTC(),
	}
	e.log.Info().Str("session", session.ID).Str("category", string(category)).Msg("new session")
	e.autosave(session)
	return session, nil
}

// AskQuestion forwards a question to the oracle and records the answer.
// It fails with ErrSessionTerminal when the session has ended or the
// question budget is exhausted. The budget is only charged after a
// successful oracle round-trip.
func (e *Engine) AskQuestion(ctx context.Context, session *Session, text string) (Answer, error) {
	if session.Terminal() || session.Remaining <= 0 {
		return "", ErrSessionTerminal
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	answer, err := e.oracle.Ask(ctx, session.Subject, text)
	if err != nil {
		return "", err
	}

	session.Remaining--
	session.Questions = append(session.Questions, QA{Question: text, Answer: answer})
	e.log.Info().Str("session", session.ID).Str("answer", string(answer)).Int("remaining", session.Remaining).Msg("question answered")
	e.autosave(session)
	return answer, nil
}

// MakeGuess submits a final guess. The session becomes terminal whatever
// the verdict: Won on a correct guess, Lost otherwise.
func (e *Engine) MakeGuess(ctx context.Context, session *Session, text string) (GuessResult, error) {
	if session.Terminal() {
		return GuessResult{}, ErrSessionTerminal
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return GuessResult{}, ErrEmptyInput
	}

	verdict, err := e.oracle.Judge(ctx, session.Subject, text)
	if err != nil {
		return GuessResult{}, err
	}

	result := GuessResult{Guess: text, Correct: verdict == AnswerYes}
	if result.Correct {
		session.Status = StatusWon
	} else {
		session.Status = StatusLost
	}
	e.log.Info().Str("session", session.ID).Bool("correct", result.Correct).Msg("guess made")
	e.autosave(session)
	return result, nil
}

// Abandon marks a session abandoned. Abandoning a finished session is a
// no-op.
func (e *Engine) Abandon(session *Session) {
	if session.Terminal() {
		return
	}
	session.Status = StatusAbandoned
	e.log.Info().Str("session", session.ID).Msg("session abandoned")
	e.autosave(session)
}

// autosave persists the session. Save failures are reported but do not
// undo the action that was just played.
func (e *Engine) autosave(session *Session) {
	if err := e.store.SaveSession(session); err != nil {
		e.log.Warn().Err(err).Str("session", session.ID).Msg("auto-save failed")
	}
}
