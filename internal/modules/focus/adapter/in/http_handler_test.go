package in

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	focusdto "studytrack/internal/modules/focus/dto"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/httpx"
)

type fakeUsecase struct {
	state focusdto.StateOutput
}

func (f *fakeUsecase) Start(_ context.Context, input focusdto.StartInput) (focusdto.StateOutput, error) {
	if input.SubjectID != "math" {
		return f.state, apperrors.ErrUnknownSubject
	}
	if f.state.Status == "running" {
		return f.state, apperrors.ErrAlreadyRunning
	}
	f.state = focusdto.StateOutput{Status: "running", SubjectID: input.SubjectID, LastSubjectID: input.SubjectID}
	return f.state, nil
}

func (f *fakeUsecase) Pause(context.Context) (focusdto.StateOutput, error) {
	if f.state.Status != "running" {
		return f.state, apperrors.ErrNotRunning
	}
	f.state = focusdto.StateOutput{Status: "paused", AccumulatedSeconds: 30, DisplaySeconds: 30, LastSubjectID: f.state.SubjectID}
	return f.state, nil
}

func (f *fakeUsecase) Resume(context.Context) (focusdto.StateOutput, error) {
	if f.state.Status != "paused" {
		return f.state, apperrors.ErrNothingToResume
	}
	f.state.Status = "running"
	return f.state, nil
}

func (f *fakeUsecase) Stop(context.Context) (focusdto.StateOutput, error) {
	f.state = focusdto.StateOutput{Status: "idle", LastSubjectID: f.state.LastSubjectID}
	return f.state, nil
}

func (f *fakeUsecase) Restore(context.Context) (focusdto.StateOutput, error) { return f.state, nil }
func (f *fakeUsecase) Poll(context.Context) (focusdto.StateOutput, error)    { return f.state, nil }
func (f *fakeUsecase) State(context.Context) focusdto.StateOutput            { return f.state }
func (f *fakeUsecase) Tick(context.Context) focusdto.StateOutput             { return f.state }
func (f *fakeUsecase) Run(context.Context) error                             { return nil }

func (f *fakeUsecase) RecentSessions(context.Context) focusdto.RecentSessionsOutput {
	return focusdto.RecentSessionsOutput{Revision: 3, Sessions: []focusdto.SessionOutput{{ID: "s-1", SubjectID: "math", DurationSeconds: 30}}}
}

func post(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFocusRoutes(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)
	router := httpx.NewRouter(NewHTTPHandler(&fakeUsecase{state: focusdto.StateOutput{Status: "idle"}}).RegisterRoutes)

	if rec := post(t, router, "/api/focus/start", map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("start without subject: status %d", rec.Code)
	}
	if rec := post(t, router, "/api/focus/start", map[string]string{"subject_id": "art"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("start with unknown subject: status %d", rec.Code)
	}
	if rec := post(t, router, "/api/focus/pause", nil); rec.Code != http.StatusConflict {
		t.Fatalf("pause while idle: status %d", rec.Code)
	}
	if rec := post(t, router, "/api/focus/start", map[string]string{"subject_id": "math"}); rec.Code != http.StatusOK {
		t.Fatalf("start: status %d body %s", rec.Code, rec.Body.String())
	}

	rec := post(t, router, "/api/focus/pause", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pause: status %d", rec.Code)
	}
	var paused focusdto.StateOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &paused); err != nil {
		t.Fatalf("decode pause: %v", err)
	}
	if paused.Status != "paused" || paused.AccumulatedSeconds != 30 {
		t.Fatalf("unexpected pause body %+v", paused)
	}

	if rec := post(t, router, "/api/focus/resume", nil); rec.Code != http.StatusOK {
		t.Fatalf("resume: status %d", rec.Code)
	}
	if rec := post(t, router, "/api/focus/stop", nil); rec.Code != http.StatusOK {
		t.Fatalf("stop: status %d", rec.Code)
	}

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/api/focus/sessions", nil))
	var sessions focusdto.RecentSessionsOutput
	if err := json.Unmarshal(get.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	if sessions.Revision != 3 || len(sessions.Sessions) != 1 {
		t.Fatalf("unexpected sessions body %s", get.Body.String())
	}

	get = httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/api/focus", nil))
	if get.Code != http.StatusOK || !bytes.Contains(get.Body.Bytes(), []byte(`"status":"idle"`)) {
		t.Fatalf("unexpected state body %d %s", get.Code, get.Body.String())
	}
}
