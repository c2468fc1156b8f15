package game

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

// fakeOracle returns scripted responses, or fails every call when err is set.
type fakeOracle struct {
	subject    string
	answers    []Answer
	verdict    Answer
	narrations []string
	err        error

	askCalls int
}

func (f *fakeOracle) GenerateSubject(_ context.Context, _ Category) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.subject, nil
}

func (f *fakeOracle) Ask(_ context.Context, _, _ string) (Answer, error) {
	f.askCalls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.answers) == 0 {
		return AnswerNo, nil
	}
	answer := f.answers[0]
	f.answers = f.answers[1:]
	return answer, nil
}

func (f *fakeOracle) Judge(_ context.Context, _, _ string) (Answer, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.verdict, nil
}

func (f *fakeOracle) Narrate(_ context.Context, _ []Message, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(f.narrations) == 0 {
		return "The story continues.", nil
	}
	narration := f.narrations[0]
	f.narrations = f.narrations[1:]
	return narration, nil
}

// fakeSaver counts saves and optionally fails.
type fakeSaver struct {
	sessions   int
	adventures int
	err        error
}

func (f *fakeSaver) SaveSession(_ *Session) error { f.sessions++; return f.err }
func (f *fakeSaver) SaveAdventure(_ *Adventure) error { f.adventures++; return f.err }

func testEngine(oracle *fakeOracle) (*Engine, *fakeSaver) {
	saver := &fakeSaver{}
	return NewEngine(oracle, saver, zerolog.Nop()), saver
}

func TestNewSessionStartsFull(t *testing.T) {
	engine, saver := testEngine(&fakeOracle{subject: "Eiffel Tower"})
	session, err := engine.NewSession(context.Background(), CategoryPlace)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if session.Subject != "Eiffel Tower" {
		t.Errorf("Expected subject from oracle, got %q", session.Subject)
	}
	if session.Remaining != MaxQuestions {
		t.Errorf("Expected %d questions remaining, got %d", MaxQuestions, session.Remaining)
	}
	if session.Status != StatusInProgress {
		t.Errorf("Expected in-progress status, got %q", session.Status)
	}
	if session.ID == "" {
		t.Error("Expected a session ID")
	}
	if saver.sessions != 1 {
		t.Errorf("Expected 1 auto-save, got %d", saver.sessions)
	}
}

func TestNewSessionUnknownCategory(t *testing.T) {
	engine, saver := testEngine(&fakeOracle{subject: "x"})
	if _, err := engine.NewSession(context.Background(), Category("animal")); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Expected ErrUnknownCategory, got %v", err)
	}
	if saver.sessions != 0 {
		t.Errorf("Expected no auto-save, got %d", saver.sessions)
	}
}

func TestAskQuestionRecordsAnswer(t *testing.T) {
	oracle := &fakeOracle{subject: "x", answers: []Answer{AnswerYes}}
	engine, saver := testEngine(oracle)
	session, _ := engine.NewSession(context.Background(), CategoryThing)

	answer, err := engine.AskQuestion(context.Background(), session, "Is it man-made?")
	if err != nil {
		t.Fatalf("AskQuestion failed: %v", err)
	}
	if answer != AnswerYes {
		t.Errorf("Expected yes, got %q", answer)
	}
	if session.Remaining != MaxQuestions-1 {
		t.Errorf("Expected %d remaining, got %d", MaxQuestions-1, session.Remaining)
	}
	if len(session.Questions) != 1 || session.Questions[0].Question != "Is it man-made?" {
		t.Errorf("Question not recorded: %+v", session.Questions)
	}
	if saver.sessions != 2 {
		t.Errorf("Expected 2 auto-saves, got %d", saver.sessions)
	}
}

func TestAskQuestionEmptyInput(t *testing.T) {
	oracle := &fakeOracle{subject: "x"}
	engine, _ := testEngine(oracle)
	session, _ := engine.NewSession(context.Background(), CategoryThing)

	if _, err := engine.AskQuestion(context.Background(), session, "   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
	if session.Remaining != MaxQuestions || oracle.askCalls != 0 {
		t.Error("Empty input must not reach the oracle or charge the budget")
	}
}

func TestQuestionBudgetExhaustion(t *testing.T) {
	engine, _ := testEngine(&fakeOracle{subject: "x"})
	session, _ := engine.NewSession(context.Background(), CategoryPerson)

	for i := 0; i < MaxQuestions; i++ {
		if _, err := engine.AskQuestion(context.Background(), session, "Is it alive?"); err != nil {
			t.Fatalf("Question %d failed: %v", i+1, err)
		}
		if session.Remaining < 0 {
			t.Fatalf("Remaining went negative: %d", session.Remaining)
		}
	}
	if session.Remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", session.Remaining)
	}
	if session.Status != StatusInProgress {
		t.Errorf("Exhausting the budget must not end the session, got %q", session.Status)
	}

	if _, err := engine.AskQuestion(context.Background(), session, "One more?"); !errors.Is(err, ErrSessionTerminal) {
		t.Errorf("Expected ErrSessionTerminal past the budget, got %v", err)
	}

	// The final guess is still available.
	result, err := engine.MakeGuess(context.Background(), session, "a wizard")
	if err != nil {
		t.Fatalf("MakeGuess failed after budget exhaustion: %v", err)
	}
	if result.Correct {
		t.Error("Fake oracle judges no by default")
	}
	if session.Status != StatusLost {
		t.Errorf("Expected lost status, got %q", session.Status)
	}
}

func TestAskQuestionAfterFinish(t *testing.T) {
	engine, _ := testEngine(&fakeOracle{subject: "x", verdict: AnswerYes})
	session, _ := engine.NewSession(context.Background(), CategoryThing)

	if _, err := engine.MakeGuess(context.Background(), session, "a kettle"); err != nil {
		t.Fatalf("MakeGuess failed: %v", err)
	}
	if session.Status != StatusWon {
		t.Errorf("Expected won status, got %q", session.Status)
	}
	if _, err := engine.AskQuestion(context.Background(), session, "Hello?"); !errors.Is(err, ErrSessionTerminal) {
		t.Errorf("Expected ErrSessionTerminal, got %v", err)
	}
	if _, err := engine.MakeGuess(context.Background(), session, "again"); !errors.Is(err, ErrSessionTerminal) {
		t.Errorf("Expected ErrSessionTerminal on second guess, got %v", err)
	}
}

func TestOracleFailureLeavesSessionUntouched(t *testing.T) {
	oracle := &fakeOracle{subject: "x"}
	engine, saver := testEngine(oracle)
	session, _ := engine.NewSession(context.Background(), CategoryThing)
	savesBefore := saver.sessions

	oracle.err = ErrUnavailable
	if _, err := engine.AskQuestion(context.Background(), session, "Is it red?"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
	if session.Remaining != MaxQuestions {
		t.Errorf("Failed question must not charge the budget, remaining %d", session.Remaining)
	}
	if len(session.Questions) != 0 {
		t.Errorf("Failed question must not be recorded: %+v", session.Questions)
	}
	if saver.sessions != savesBefore {
		t.Error("Failed question must not trigger a save")
	}

	if _, err := engine.MakeGuess(context.Background(), session, "a barn"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
	if session.Status != StatusInProgress {
		t.Errorf("Failed guess must not end the session, got %q", session.Status)
	}

	// Recovery: the same question succeeds once the oracle is back.
	oracle.err = nil
	if _, err := engine.AskQuestion(context.Background(), session, "Is it red?"); err != nil {
		t.Fatalf("Retry after recovery failed: %v", err)
	}
	if session.Remaining != MaxQuestions-1 {
		t.Errorf("Retry should charge the budget once, remaining %d", session.Remaining)
	}
}

func TestAbandon(t *testing.T) {
	engine, saver := testEngine(&fakeOracle{subject: "x"})
	session, _ := engine.NewSession(context.Background(), CategoryPlace)

	engine.Abandon(session)
	if session.Status != StatusAbandoned {
		t.Errorf("Expected abandoned status, got %q", session.Status)
	}
	saves := saver.sessions

	// Abandoning a finished session is a no-op.
	session.Status = StatusWon
	engine.Abandon(session)
	if session.Status != StatusWon || saver.sessions != saves {
		t.Error("Abandon must not touch a finished session")
	}
}

func TestAutosaveFailureIsNotFatal(t *testing.T) {
	saver := &fakeSaver{err: errors.New("disk full")}
	engine := NewEngine(&fakeOracle{subject: "x"}, saver, zerolog.Nop())

	session, err := engine.NewSession(context.Background(), CategoryThing)
	if err != nil {
		t.Fatalf("NewSession must survive a save failure: %v", err)
	}
	if _, err := engine.AskQuestion(context.Background(), session, "Is it heavy?"); err != nil {
		t.Fatalf("AskQuestion must survive a save failure: %v", err)
	}
	if session.Remaining != MaxQuestions-1 {
		t.Errorf("Expected the question to count, remaining %d", session.Remaining)
	}
}
