package domain

import (
	"errors"
	"testing"
	"time"

	apperrors "studytrack/internal/platform/errors"
)

func TestPauseResumeChainAccumulates(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := Idle()
	s.Begin(Segment{MarkerID: "m1", SubjectID: "math", StartTime: start}, true)
	for i := 0; i < 5; i++ {
		s.Tick()
	}
	closed := s.EndSegment()
	if closed.MarkerID != "m1" || s.Phase != PhasePaused {
		t.Fatalf("unexpected pause result %+v / %+v", closed, s)
	}
	if s.AccumulatedSeconds != 5 || s.ElapsedSeconds != 0 {
		t.Fatalf("expected 5 accumulated, got %+v", s)
	}
	s.Tick()
	if s.DisplaySeconds() != 5 {
		t.Fatal("ticks must not count while paused")
	}

	s.Begin(Segment{MarkerID: "m2", SubjectID: s.LastSubjectID, StartTime: start.Add(time.Minute)}, false)
	for i := 0; i < 5; i++ {
		s.Tick()
	}
	if s.DisplaySeconds() != 10 {
		t.Fatalf("resume must keep the chain, display=%d", s.DisplaySeconds())
	}
	s.Reset()
	if s.Phase != PhaseIdle || s.AccumulatedSeconds != 0 || s.ElapsedSeconds != 0 {
		t.Fatalf("reset must zero the chain, got %+v", s)
	}
	if s.LastSubjectID != "math" {
		t.Fatalf("reset keeps last subject, got %q", s.LastSubjectID)
	}
}

func TestBeginWithResetZeroesChain(t *testing.T) {
	t.Parallel()
	s := Paused(PausedDraft{AccumulatedSeconds: 40, LastSubjectID: "bio"})
	s.Begin(Segment{MarkerID: "m", SubjectID: "chem"}, true)
	if s.AccumulatedSeconds != 0 || s.LastSubjectID != "chem" || !s.IsRunning() {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	t.Parallel()
	s := Paused(PausedDraft{AccumulatedSeconds: 12, LastSubjectID: "art"})
	if s.Draft() != (PausedDraft{AccumulatedSeconds: 12, LastSubjectID: "art"}) {
		t.Fatalf("unexpected draft %+v", s.Draft())
	}
}

func TestSessionValidate(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ok := Session{SubjectID: "math", StartTime: start, EndTime: start.Add(90 * time.Second)}
	if err := ok.Validate(); err != nil || ok.Seconds() != 90 {
		t.Fatalf("expected valid 90s session, got %v %d", err, ok.Seconds())
	}
	bad := Session{SubjectID: "math", StartTime: start, EndTime: start.Add(-time.Second)}
	if err := bad.Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if ElapsedSeconds(start, start.Add(-time.Hour)) != 0 {
		t.Fatal("elapsed must clamp at zero")
	}
}
