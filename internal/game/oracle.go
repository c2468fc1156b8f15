package game

import (
	"context"
	"errors"
)

// Oracle failure modes surfaced to the engines. The shell maps each one to
// a user-facing message; none of them ends the process.
var (
	ErrUnavailable     = errors.New("oracle unavailable")
	ErrRateLimited     = errors.New("oracle rate limited")
	ErrInvalidResponse = errors.New("oracle returned an unusable response")
)

// Oracle is the generative back end the engines consult. Implementations
// live outside this package; the engines only depend on this interface.
type Oracle interface {
	// GenerateSubject invents a secret subject for the given category.
	GenerateSubject(ctx context.Context, category Category) (string, error)

	// Ask answers a yes/no question about the secret subject. An
	// unparseable reply degrades to AnswerUnknown rather than failing.
	Ask(ctx context.Context, subject, question string) (Answer, error)

	// Judge decides whether a final guess names the secret subject.
	// Unlike Ask, an unparseable reply fails with ErrInvalidResponse so
	// a game is never decided on a garbled verdict.
	Judge(ctx context.Context, subject, guess string) (Answer, error)

	// Narrate continues the adventure from the given history and prompt.
	Narrate(ctx context.Context, history []Message, prompt string) (string, error)
}

// Saver is the auto-save hook the engines invoke after every
// state-mutating action.
type Saver interface {
	SaveSession(session *Session) error
	SaveAdventure(adventure *Adventure) error
}
