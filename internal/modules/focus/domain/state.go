package domain

import "time"

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePaused  Phase = "paused"
	PhaseRunning Phase = "running"
)

// Segment is the open interval of a running state.
type Segment struct {
	MarkerID  string    `json:"marker_id"`
	SubjectID string    `json:"subject_id"`
	StartTime time.Time `json:"start_time"`
	Pending   bool      `json:"pending"`
}

// FocusState is the in-memory timer. Segment is meaningful only while
// Phase is PhaseRunning; ElapsedSeconds counts the open segment and
// AccumulatedSeconds the closed segments of the current pause/resume chain.
type FocusState struct {
	Phase              Phase   `json:"phase"`
	Segment            Segment `json:"segment"`
	ElapsedSeconds     int64   `json:"elapsed_seconds"`
	AccumulatedSeconds int64   `json:"accumulated_seconds"`
	LastSubjectID      string  `json:"last_subject_id"`
}

func Idle() FocusState {
	return FocusState{Phase: PhaseIdle}
}

func Paused(draft PausedDraft) FocusState {
	return FocusState{
		Phase:              PhasePaused,
		AccumulatedSeconds: draft.AccumulatedSeconds,
		LastSubjectID:      draft.LastSubjectID,
	}
}

func Running(seg Segment, elapsed, accumulated int64) FocusState {
	return FocusState{
		Phase:              PhaseRunning,
		Segment:            seg,
		ElapsedSeconds:     elapsed,
		AccumulatedSeconds: accumulated,
		LastSubjectID:      seg.SubjectID,
	}
}

func (s FocusState) IsRunning() bool { return s.Phase == PhaseRunning }

func (s FocusState) DisplaySeconds() int64 {
	return s.AccumulatedSeconds + s.ElapsedSeconds
}

// Begin opens seg. Start passes resetAccumulated; Resume keeps the chain.
func (s *FocusState) Begin(seg Segment, resetAccumulated bool) {
	acc := s.AccumulatedSeconds
	if resetAccumulated {
		acc = 0
	}
	*s = Running(seg, 0, acc)
}

// EndSegment folds the open segment into the chain and pauses.
func (s *FocusState) EndSegment() Segment {
	seg := s.Segment
	s.AccumulatedSeconds += s.ElapsedSeconds
	s.ElapsedSeconds = 0
	s.Segment = Segment{}
	s.Phase = PhasePaused
	if seg.SubjectID != "" {
		s.LastSubjectID = seg.SubjectID
	}
	return seg
}

// Reset is the hard stop. LastSubjectID survives.
func (s *FocusState) Reset() {
	last := s.LastSubjectID
	if s.Segment.SubjectID != "" {
		last = s.Segment.SubjectID
	}
	*s = Idle()
	s.LastSubjectID = last
}

func (s *FocusState) Tick() {
	if s.Phase == PhaseRunning {
		s.ElapsedSeconds++
	}
}

func (s FocusState) Draft() PausedDraft {
	return PausedDraft{AccumulatedSeconds: s.AccumulatedSeconds, LastSubjectID: s.LastSubjectID}
}
