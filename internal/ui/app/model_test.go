package app

import (
	"context"
	"strings"
	"testing"

	"studytrack/internal/modules/focus/dto"
	subjectdto "studytrack/internal/modules/subject/dto"
)

type fakeFocus struct {
	started string
	polls   int
	state   dto.StateOutput
}

func (f *fakeFocus) Start(_ context.Context, in dto.StartInput) (dto.StateOutput, error) {
	f.started = in.SubjectID
	f.state = dto.StateOutput{Status: "running", SubjectID: in.SubjectID, MarkerID: "m1"}
	return f.state, nil
}
func (f *fakeFocus) Pause(context.Context) (dto.StateOutput, error)   { return f.state, nil }
func (f *fakeFocus) Resume(context.Context) (dto.StateOutput, error)  { return f.state, nil }
func (f *fakeFocus) Stop(context.Context) (dto.StateOutput, error)    { return f.state, nil }
func (f *fakeFocus) Restore(context.Context) (dto.StateOutput, error) { return f.state, nil }
func (f *fakeFocus) Poll(context.Context) (dto.StateOutput, error) {
	f.polls++
	return f.state, nil
}
func (f *fakeFocus) Tick(context.Context) dto.StateOutput { return f.state }

type fakeSubjects struct{ created subjectdto.CreateInput }

func (f *fakeSubjects) List(context.Context) ([]subjectdto.SubjectOutput, error) { return nil, nil }
func (f *fakeSubjects) Create(_ context.Context, in subjectdto.CreateInput) (subjectdto.SubjectOutput, error) {
	f.created = in
	return subjectdto.SubjectOutput{ID: "s1", Name: in.Name, Color: in.Color}, nil
}

func TestPaletteStartsFocusAndReportsState(t *testing.T) {
	t.Parallel()
	focus := &fakeFocus{state: dto.StateOutput{Status: "idle"}}
	m := NewModel(focus, &fakeSubjects{}, nil, 0)

	next, cmd := m.executePalette("focus:start math")
	if cmd == nil {
		t.Fatalf("focus:start must return a command")
	}
	msg := cmd()
	if focus.started != "math" {
		t.Fatalf("expected start for math, got %q", focus.started)
	}
	updated, _ := next.(Model).Update(msg)
	got := updated.(Model)
	if got.state.Status != "running" || !strings.HasPrefix(got.status, "start: running") {
		t.Fatalf("unexpected state %q with status %q", got.state.Status, got.status)
	}
}

func TestPaletteAddsSubjectWithColor(t *testing.T) {
	t.Parallel()
	subjects := &fakeSubjects{}
	m := NewModel(&fakeFocus{}, subjects, nil, 0)

	_, cmd := m.executePalette("subject:add Linear Algebra #ff8800")
	if cmd == nil {
		t.Fatalf("subject:add must return a command")
	}
	cmd()
	if subjects.created.Name != "Linear Algebra" || subjects.created.Color != "#ff8800" {
		t.Fatalf("unexpected create input: %+v", subjects.created)
	}
}

func TestPaletteRejectsBadInput(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakeFocus{}, &fakeSubjects{}, nil, 0)

	cases := map[string]string{
		"journal:export zero": "invalid days",
		"subject:add":         "usage: subject:add",
		"stats:window":        "usage: stats:window",
		"teleport":            "unknown command",
	}
	for input, want := range cases {
		next, _ := m.executePalette(input)
		if status := next.(Model).status; !strings.HasPrefix(status, want) {
			t.Fatalf("%q: expected status %q, got %q", input, want, status)
		}
	}
}

func TestTodayTotalFollowsLiveSegment(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakeFocus{}, &fakeSubjects{}, nil, 0)
	m.today = 600
	m.todayAt = 100
	m.state = dto.StateOutput{Status: "running", ElapsedSeconds: 160}
	if got := m.todaySeconds(); got != 660 {
		t.Fatalf("expected 660, got %d", got)
	}
	m.state = dto.StateOutput{Status: "paused"}
	if got := m.todaySeconds(); got != 600 {
		t.Fatalf("expected 600 while paused, got %d", got)
	}
}

func TestPollErrorsStayOutOfStatusBar(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakeFocus{}, &fakeSubjects{}, nil, 0)
	updated, _ := m.Update(stateMsg{action: "poll", err: context.DeadlineExceeded})
	if got := updated.(Model).status; got != "ready" {
		t.Fatalf("poll failures must not replace the status, got %q", got)
	}
	updated, _ = m.Update(stateMsg{action: "pause", err: context.DeadlineExceeded})
	if got := updated.(Model).status; !strings.HasPrefix(got, "pause: ") {
		t.Fatalf("expected pause error in status, got %q", got)
	}
}
