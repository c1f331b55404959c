package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"studytrack/internal/modules/focus/domain"
	focusout "studytrack/internal/modules/focus/port/out"
	"studytrack/internal/platform/clock"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/id"
	"studytrack/internal/platform/tx"
)

const (
	MarkerKey = "active_session"
	DraftKey  = "focus_draft"
	OutboxKey = "session_outbox"
	// DeleteKey holds ids of closed markers whose store delete has not
	// landed yet. Such markers are never adopted.
	DeleteKey = "marker_deletes"
)

type Options struct {
	OwnerID     string
	HistoryDays int

	// HistoryRefresh bounds how stale the recent sessions may get while
	// polling. Defaults to one minute.
	HistoryRefresh time.Duration
}

// missingMarker remembers a running marker that was absent on the last poll.
type missingMarker struct {
	markerID string
	elapsed  int64
}

// Reconciler owns the focus state machine and keeps it consistent with the
// durable marker and the local cache.
//
// Store-touching operations are serialized by flight; user transitions that
// overlap each other fail with ErrTransitionInFlight and Poll skips a round
// instead of waiting. mu guards only the in-memory state and is never held
// across store I/O, so Tick never waits on the network. missing and
// historyAt belong to flight.
type Reconciler struct {
	clock    clock.Clock
	ids      id.Generator
	markers  focusout.MarkerStore
	sessions focusout.SessionStore
	cache    focusout.Cache
	tx       tx.Manager
	logger   *slog.Logger
	opts     Options

	flight    sync.Mutex
	busy      atomic.Bool
	missing   missingMarker
	historyAt time.Time

	mu       sync.Mutex
	state    domain.FocusState
	recent   []domain.Session
	revision uint64
}

func NewReconciler(
	clock clock.Clock,
	ids id.Generator,
	markers focusout.MarkerStore,
	sessions focusout.SessionStore,
	cache focusout.Cache,
	txm tx.Manager,
	logger *slog.Logger,
	opts Options,
) *Reconciler {
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 90
	}
	if opts.HistoryRefresh <= 0 {
		opts.HistoryRefresh = time.Minute
	}
	if txm == nil {
		txm = tx.NoopManager{}
	}
	return &Reconciler{
		clock:    clock,
		ids:      ids,
		markers:  markers,
		sessions: sessions,
		cache:    cache,
		tx:       txm,
		logger:   logger.With("owner_id", opts.OwnerID),
		opts:     opts,
		state:    domain.Idle(),
	}
}

func (r *Reconciler) OwnerID() string { return r.opts.OwnerID }

// State returns a snapshot of the focus state.
func (r *Reconciler) State() domain.FocusState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// RecentSessions returns a copy of the loaded history and its revision,
// which changes whenever the history does.
func (r *Reconciler) RecentSessions() ([]domain.Session, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Session, len(r.recent))
	copy(out, r.recent)
	return out, r.revision
}

func (r *Reconciler) Tick() {
	r.mu.Lock()
	r.state.Tick()
	r.mu.Unlock()
}

// Start opens a new segment and a new accumulation chain.
func (r *Reconciler) Start(ctx context.Context, subjectID string) (domain.FocusState, error) {
	release, err := r.acquire()
	if err != nil {
		return r.State(), err
	}
	defer release()

	if subjectID == "" {
		return r.State(), fmt.Errorf("%w: subject id is required", apperrors.ErrInvalidInput)
	}
	if r.State().IsRunning() {
		return r.State(), apperrors.ErrAlreadyRunning
	}
	return r.open(ctx, subjectID, true)
}

// Resume reopens the paused chain for its last subject.
func (r *Reconciler) Resume(ctx context.Context) (domain.FocusState, error) {
	release, err := r.acquire()
	if err != nil {
		return r.State(), err
	}
	defer release()

	st := r.State()
	if st.Phase != domain.PhasePaused || st.LastSubjectID == "" {
		return st, apperrors.ErrNothingToResume
	}
	return r.open(ctx, st.LastSubjectID, false)
}

// Pause closes the running segment into a completed session and keeps the
// accumulated chain as a draft.
func (r *Reconciler) Pause(ctx context.Context) (domain.FocusState, error) {
	release, err := r.acquire()
	if err != nil {
		return r.State(), err
	}
	defer release()

	st := r.State()
	if !st.IsRunning() {
		return st, apperrors.ErrNotRunning
	}
	session, err := r.closeSegment(ctx, st.Segment)
	if err != nil {
		return st, err
	}

	r.mu.Lock()
	r.appendRecentLocked(session)
	r.state.EndSegment()
	draft := r.state.Draft()
	snapshot := r.state
	r.mu.Unlock()

	r.saveCache(DraftKey, draft)
	r.removeCache(MarkerKey)
	r.logger.Info("focus paused", "subject_id", session.SubjectID, "seconds", session.Seconds(), "accumulated", snapshot.AccumulatedSeconds)
	return snapshot, nil
}

// Stop closes a running segment like Pause and then resets the chain. From
// Paused it only resets.
func (r *Reconciler) Stop(ctx context.Context) (domain.FocusState, error) {
	release, err := r.acquire()
	if err != nil {
		return r.State(), err
	}
	defer release()

	st := r.State()
	switch st.Phase {
	case domain.PhaseIdle:
		return st, apperrors.ErrNotRunning
	case domain.PhaseRunning:
		session, err := r.closeSegment(ctx, st.Segment)
		if err != nil {
			return st, err
		}
		r.mu.Lock()
		r.appendRecentLocked(session)
		r.mu.Unlock()
		r.logger.Info("focus stopped", "subject_id", session.SubjectID, "seconds", session.Seconds())
	}

	r.mu.Lock()
	r.state.Reset()
	snapshot := r.state
	r.mu.Unlock()

	r.removeCache(DraftKey)
	r.removeCache(MarkerKey)
	return snapshot, nil
}

// Restore rebuilds the focus state from the store, then the local cache.
// Calling it twice without a transition in between yields the same state.
func (r *Reconciler) Restore(ctx context.Context) (domain.FocusState, error) {
	r.flight.Lock()
	defer r.flight.Unlock()

	r.flushOutbox(ctx)
	r.flushDeletes(ctx)
	r.loadHistory(ctx)
	r.missing = missingMarker{}

	now := r.now()
	var draft domain.PausedDraft
	hasDraft := r.cache.Load(DraftKey, &draft)
	var cached domain.CachedMarker
	hasCached := r.cache.Load(MarkerKey, &cached) && cached.Marker.ID != ""

	marker, found, err := r.markers.FindRunning(ctx, r.opts.OwnerID)
	storeUp := err == nil
	if err != nil {
		r.logger.Warn("restore: marker lookup failed, using local cache", "error", err)
	}
	if found && r.dropClosed(ctx, marker) {
		found = false
	}

	next, resolved := domain.FocusState{}, false
	switch {
	case found:
		next, resolved = r.adopt(marker, now, draft, hasDraft), true
	case hasCached && cached.Pending && storeUp:
		if err := r.confirm(ctx, cached.Marker); err == nil {
			r.saveCache(MarkerKey, domain.CachedMarker{Marker: cached.Marker})
			next, resolved = runningFrom(cached.Marker, false, now, draft, hasDraft), true
		} else if errors.Is(err, apperrors.ErrStoreUnavailable) {
			next, resolved = runningFrom(cached.Marker, true, now, draft, hasDraft), true
		} else {
			r.logger.Error("restore: start intent rejected by store, dropping it", "marker_id", cached.Marker.ID, "error", err)
			r.removeCache(MarkerKey)
			hasCached = false
		}
	case hasCached && !storeUp:
		next, resolved = runningFrom(cached.Marker, cached.Pending, now, draft, hasDraft), true
	}

	if !resolved {
		if hasCached {
			// The store is reachable and no longer has this marker.
			r.removeCache(MarkerKey)
		}
		if hasDraft {
			next = domain.Paused(draft)
		} else {
			next = domain.Idle()
			next.LastSubjectID = r.State().LastSubjectID
		}
	}

	r.mu.Lock()
	r.state = next
	r.mu.Unlock()
	return next, nil
}

// Poll reconciles local state with the store once. It is skipped while a
// transition is in flight.
//
// A running marker must be absent on two consecutive polls before the
// segment is closed as stopped elsewhere, so the device that removed it has
// time to record its session.
func (r *Reconciler) Poll(ctx context.Context) (domain.FocusState, error) {
	if !r.flight.TryLock() {
		return r.State(), nil
	}
	defer r.flight.Unlock()

	reload := r.flushOutbox(ctx) > 0
	r.flushDeletes(ctx)
	if r.now().Sub(r.historyAt) >= r.opts.HistoryRefresh {
		reload = true
	}

	st := r.State()
	if st.IsRunning() && st.Segment.Pending {
		st = r.confirmPending(ctx, st)
	}

	marker, found, err := r.markers.FindRunning(ctx, r.opts.OwnerID)
	if err != nil {
		r.logger.Debug("poll: marker lookup failed", "error", err)
		return r.State(), nil
	}
	if found && r.dropClosed(ctx, marker) {
		found = false
	}

	missing := r.missing
	r.missing = missingMarker{}
	switch {
	case found && st.IsRunning() && marker.ID == st.Segment.MarkerID:
	case found:
		if st.IsRunning() && !st.Segment.Pending {
			r.closeExternally(ctx, st.Segment, st.ElapsedSeconds)
		}
		var draft domain.PausedDraft
		hasDraft := r.cache.Load(DraftKey, &draft)
		next := r.adopt(marker, r.now(), draft, hasDraft)
		r.mu.Lock()
		r.state = next
		r.mu.Unlock()
		reload = true
		r.logger.Info("poll: adopted running marker", "marker_id", marker.ID, "subject_id", marker.SubjectID)
	case st.IsRunning() && !st.Segment.Pending:
		if missing.markerID != st.Segment.MarkerID {
			r.missing = missingMarker{markerID: st.Segment.MarkerID, elapsed: st.ElapsedSeconds}
			r.logger.Debug("poll: running marker missing, checking again next round", "marker_id", st.Segment.MarkerID)
			break
		}
		r.closeExternally(ctx, st.Segment, missing.elapsed)
		reload = true
	}

	if reload {
		r.loadHistory(ctx)
	}
	return r.State(), nil
}

func (r *Reconciler) acquire() (func(), error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, apperrors.ErrTransitionInFlight
	}
	r.flight.Lock()
	return func() {
		r.flight.Unlock()
		r.busy.Store(false)
	}, nil
}

func (r *Reconciler) now() time.Time {
	// Stored times carry microseconds; matching precision keeps dedup exact.
	return r.clock.Now().UTC().Truncate(time.Microsecond)
}

// open writes the start intent locally, then demotes and inserts the marker
// in one store transaction. An unreachable store leaves the intent pending.
func (r *Reconciler) open(ctx context.Context, subjectID string, resetAccumulated bool) (domain.FocusState, error) {
	now := r.now()
	marker := domain.Marker{
		ID:        r.ids.New(),
		OwnerID:   r.opts.OwnerID,
		SubjectID: subjectID,
		StartTime: now,
		Status:    domain.MarkerRunning,
		UpdatedAt: now,
	}
	r.saveCache(MarkerKey, domain.CachedMarker{Marker: marker, Pending: true})

	pending := false
	err := r.tx.Within(ctx, func(txCtx context.Context) error {
		if _, err := r.markers.DemoteRunning(txCtx, r.opts.OwnerID, now); err != nil {
			return err
		}
		return r.markers.Insert(txCtx, marker)
	})
	switch {
	case err == nil:
		r.saveCache(MarkerKey, domain.CachedMarker{Marker: marker})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		pending = true
		r.logger.Warn("store unavailable, segment runs locally until confirmed", "marker_id", marker.ID, "error", err)
	default:
		r.removeCache(MarkerKey)
		r.logger.Error("start segment failed", "subject_id", subjectID, "error", err)
		return r.State(), fmt.Errorf("start segment: %w", err)
	}

	r.mu.Lock()
	r.state.Begin(domain.Segment{MarkerID: marker.ID, SubjectID: subjectID, StartTime: now, Pending: pending}, resetAccumulated)
	snapshot := r.state
	r.mu.Unlock()

	if resetAccumulated {
		r.removeCache(DraftKey)
	}
	r.logger.Info("focus running", "subject_id", subjectID, "marker_id", marker.ID, "pending", pending)
	return snapshot, nil
}

// confirm lands a pending start intent. A marker that already made it to
// the store before the connection dropped is accepted as is.
func (r *Reconciler) confirm(ctx context.Context, marker domain.Marker) error {
	return r.tx.Within(ctx, func(txCtx context.Context) error {
		current, found, err := r.markers.FindRunning(txCtx, r.opts.OwnerID)
		if err != nil {
			return err
		}
		if found && current.ID == marker.ID {
			return nil
		}
		if _, err := r.markers.DemoteRunning(txCtx, r.opts.OwnerID, r.now()); err != nil {
			return err
		}
		return r.markers.Insert(txCtx, marker)
	})
}

func (r *Reconciler) confirmPending(ctx context.Context, st domain.FocusState) domain.FocusState {
	var cached domain.CachedMarker
	marker := domain.Marker{
		ID:        st.Segment.MarkerID,
		OwnerID:   r.opts.OwnerID,
		SubjectID: st.Segment.SubjectID,
		StartTime: st.Segment.StartTime,
		Status:    domain.MarkerRunning,
		UpdatedAt: st.Segment.StartTime,
	}
	if r.cache.Load(MarkerKey, &cached) && cached.Marker.ID == marker.ID {
		marker = cached.Marker
	}
	if err := r.confirm(ctx, marker); err != nil {
		if !errors.Is(err, apperrors.ErrStoreUnavailable) {
			r.logger.Error("confirm start intent", "marker_id", marker.ID, "error", err)
		}
		return st
	}
	r.saveCache(MarkerKey, domain.CachedMarker{Marker: marker})

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.IsRunning() && r.state.Segment.MarkerID == marker.ID {
		r.state.Segment.Pending = false
	}
	r.logger.Info("start intent confirmed", "marker_id", marker.ID)
	return r.state
}

// closeSegment removes the segment's marker and records the completed
// session. A write failure aborts before any in-memory change.
func (r *Reconciler) closeSegment(ctx context.Context, seg domain.Segment) (domain.Session, error) {
	now := r.now()
	// A pending intent may have landed before the connection dropped, so
	// its marker is deleted too.
	deferred := false
	n, err := r.markers.Delete(ctx, r.opts.OwnerID, seg.MarkerID)
	switch {
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		r.logger.Warn("store unavailable while closing segment, delete deferred", "marker_id", seg.MarkerID, "error", err)
		deferred = true
	case err != nil:
		return domain.Session{}, fmt.Errorf("delete marker: %w", err)
	case n == 0:
		r.logger.Debug("marker already gone, closing with local bounds", "marker_id", seg.MarkerID)
	}

	end := now
	if end.Before(seg.StartTime) {
		end = seg.StartTime
	}
	session := domain.Session{
		ID:        r.ids.New(),
		OwnerID:   r.opts.OwnerID,
		SubjectID: seg.SubjectID,
		StartTime: seg.StartTime,
		EndTime:   end,
		CreatedAt: now,
	}
	if err := r.persist(ctx, session); err != nil {
		r.logger.Error("record session failed", "subject_id", seg.SubjectID, "error", err)
		return domain.Session{}, fmt.Errorf("record session: %w", err)
	}
	if deferred {
		if err := r.deferDelete(seg.MarkerID); err != nil {
			r.logger.Error("closed segment may be adopted again", "marker_id", seg.MarkerID, "error", err)
		}
	}
	return session, nil
}

// closeExternally handles a segment whose marker vanished from the store.
// It records a synthetic interrupted session bounded by elapsed unless a
// session with the same subject and start already exists.
func (r *Reconciler) closeExternally(ctx context.Context, seg domain.Segment, elapsed int64) {
	now := r.now()
	end := seg.StartTime.Add(time.Duration(elapsed) * time.Second)
	if end.After(now) {
		end = now
	}
	if end.Before(seg.StartTime) {
		end = seg.StartTime
	}

	var recorded domain.Session
	existing, err := r.sessions.List(ctx, domain.SessionFilter{
		OwnerID:   r.opts.OwnerID,
		SubjectID: seg.SubjectID,
		StartTime: seg.StartTime,
		Limit:     1,
	})
	switch {
	case err == nil && len(existing) > 0:
		recorded = existing[0]
	default:
		recorded = domain.Session{
			ID:            r.ids.New(),
			OwnerID:       r.opts.OwnerID,
			SubjectID:     seg.SubjectID,
			StartTime:     seg.StartTime,
			EndTime:       end,
			IsInterrupted: true,
			CreatedAt:     now,
		}
		if err := r.persist(ctx, recorded); err != nil {
			r.logger.Error("record interrupted session failed", "subject_id", seg.SubjectID, "error", err)
			recorded = domain.Session{}
		}
	}

	r.mu.Lock()
	if !r.state.IsRunning() || r.state.Segment.MarkerID != seg.MarkerID {
		r.mu.Unlock()
		return
	}
	if recorded.ID != "" {
		r.appendRecentLocked(recorded)
	}
	r.state.ElapsedSeconds = elapsed
	r.state.EndSegment()
	draft := r.state.Draft()
	r.mu.Unlock()

	r.saveCache(DraftKey, draft)
	r.removeCache(MarkerKey)
	r.logger.Info("segment stopped elsewhere", "marker_id", seg.MarkerID, "subject_id", seg.SubjectID, "accumulated", draft.AccumulatedSeconds)
}

// persist inserts session, queueing it locally when the store is down.
func (r *Reconciler) persist(ctx context.Context, session domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	err := r.sessions.Insert(ctx, session)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrStoreUnavailable) {
		return err
	}
	var outbox []domain.Session
	r.cache.Load(OutboxKey, &outbox)
	outbox = append(outbox, session)
	if saveErr := r.cache.Save(OutboxKey, outbox); saveErr != nil {
		return fmt.Errorf("queue session locally: %w", saveErr)
	}
	r.logger.Warn("store unavailable, session queued", "session_id", session.ID, "queued", len(outbox))
	return nil
}

// flushOutbox writes queued sessions and reports how many left the queue.
func (r *Reconciler) flushOutbox(ctx context.Context) int {
	var outbox []domain.Session
	if !r.cache.Load(OutboxKey, &outbox) || len(outbox) == 0 {
		return 0
	}
	remaining := outbox[:0:0]
	for i, s := range outbox {
		err := r.sessions.Insert(ctx, s)
		if errors.Is(err, apperrors.ErrStoreUnavailable) {
			remaining = append(remaining, outbox[i:]...)
			break
		}
		if err != nil {
			r.logger.Error("dropping queued session rejected by store", "session_id", s.ID, "error", err)
		}
	}
	if len(remaining) == 0 {
		r.removeCache(OutboxKey)
	} else {
		r.saveCache(OutboxKey, remaining)
	}
	flushed := len(outbox) - len(remaining)
	if flushed > 0 {
		r.logger.Info("flushed queued sessions", "count", flushed)
	}
	return flushed
}

func (r *Reconciler) deferDelete(markerID string) error {
	var ids []string
	r.cache.Load(DeleteKey, &ids)
	if slices.Contains(ids, markerID) {
		return nil
	}
	if err := r.cache.Save(DeleteKey, append(ids, markerID)); err != nil {
		return fmt.Errorf("queue marker delete locally: %w", err)
	}
	return nil
}

// flushDeletes retries deferred marker deletes. It runs after flushOutbox
// so a closed segment's session is stored before its marker disappears.
func (r *Reconciler) flushDeletes(ctx context.Context) {
	var ids []string
	if !r.cache.Load(DeleteKey, &ids) || len(ids) == 0 {
		return
	}
	remaining := ids[:0:0]
	for i, markerID := range ids {
		_, err := r.markers.Delete(ctx, r.opts.OwnerID, markerID)
		if errors.Is(err, apperrors.ErrStoreUnavailable) {
			remaining = append(remaining, ids[i:]...)
			break
		}
		if err != nil {
			r.logger.Error("deferred marker delete failed", "marker_id", markerID, "error", err)
			remaining = append(remaining, markerID)
		}
	}
	if len(remaining) == 0 {
		r.removeCache(DeleteKey)
	} else {
		r.saveCache(DeleteKey, remaining)
	}
}

// dropClosed reports whether marker belongs to a segment closed locally
// and retries its delete.
func (r *Reconciler) dropClosed(ctx context.Context, marker domain.Marker) bool {
	var ids []string
	if !r.cache.Load(DeleteKey, &ids) || !slices.Contains(ids, marker.ID) {
		return false
	}
	if _, err := r.markers.Delete(ctx, r.opts.OwnerID, marker.ID); err == nil {
		ids = slices.DeleteFunc(ids, func(queued string) bool { return queued == marker.ID })
		if len(ids) == 0 {
			r.removeCache(DeleteKey)
		} else {
			r.saveCache(DeleteKey, ids)
		}
	}
	r.logger.Info("ignoring marker of a locally closed segment", "marker_id", marker.ID)
	return true
}

// loadHistory replaces the recent sessions with the store's view of the
// last HistoryDays, plus anything still queued locally.
func (r *Reconciler) loadHistory(ctx context.Context) {
	from := r.now().AddDate(0, 0, -r.opts.HistoryDays)
	sessions, err := r.sessions.List(ctx, domain.SessionFilter{OwnerID: r.opts.OwnerID, From: from})
	if err != nil {
		r.logger.Warn("load session history failed, keeping local copy", "error", err)
		return
	}
	var queued []domain.Session
	r.cache.Load(OutboxKey, &queued)
	sessions = append(sessions, queued...)
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].StartTime.Before(sessions[j].StartTime) })
	r.historyAt = r.now()

	r.mu.Lock()
	if !sameSessions(r.recent, sessions) {
		r.revision++
	}
	r.recent = sessions
	r.mu.Unlock()
}

func sameSessions(a, b []domain.Session) bool {
	return slices.EqualFunc(a, b, func(x, y domain.Session) bool {
		return x.ID == y.ID && x.EndTime.Equal(y.EndTime) && x.SubjectID == y.SubjectID
	})
}

func (r *Reconciler) appendRecentLocked(session domain.Session) {
	for _, s := range r.recent {
		if s.ID == session.ID {
			return
		}
	}
	r.recent = append(r.recent, session)
	r.revision++
}

func (r *Reconciler) adopt(marker domain.Marker, now time.Time, draft domain.PausedDraft, hasDraft bool) domain.FocusState {
	r.saveCache(MarkerKey, domain.CachedMarker{Marker: marker})
	return runningFrom(marker, false, now, draft, hasDraft)
}

func runningFrom(marker domain.Marker, pending bool, now time.Time, draft domain.PausedDraft, hasDraft bool) domain.FocusState {
	var accumulated int64
	// A draft only continues its own subject's chain.
	if hasDraft && draft.LastSubjectID == marker.SubjectID {
		accumulated = draft.AccumulatedSeconds
	}
	seg := domain.Segment{MarkerID: marker.ID, SubjectID: marker.SubjectID, StartTime: marker.StartTime, Pending: pending}
	return domain.Running(seg, domain.ElapsedSeconds(marker.StartTime, now), accumulated)
}

func (r *Reconciler) saveCache(key string, value any) {
	if err := r.cache.Save(key, value); err != nil {
		r.logger.Warn("local cache write failed", "key", key, "error", err)
	}
}

func (r *Reconciler) removeCache(key string) {
	if err := r.cache.Remove(key); err != nil {
		r.logger.Warn("local cache remove failed", "key", key, "error", err)
	}
}
