package bootstrap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"

	focusdto "studytrack/internal/modules/focus/dto"
	apperrors "studytrack/internal/platform/errors"
)

func newTestApp(t *testing.T, environ map[string]string) *App {
	t.Helper()
	app, err := New(Options{DataDir: t.TempDir(), LogOutput: io.Discard, Environ: environ})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func TestAppWiresModulesOverSQLite(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, map[string]string{"STUDYTRACK_CACHE_BACKEND": "memory"})
	ctx := context.Background()

	subject, err := app.SubjectCLI.Add(ctx, "Physics", "", "")
	if err != nil {
		t.Fatalf("add subject: %v", err)
	}
	st, err := app.FocusCLI.Start(ctx, subject.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if st.Status != "running" || st.Pending {
		t.Fatalf("expected a confirmed running state, got %+v", st)
	}
	if _, err := app.FocusCLI.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	sessions, err := app.FocusCLI.Sessions(ctx)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions.Sessions) != 1 || sessions.Sessions[0].SubjectID != subject.ID {
		t.Fatalf("expected one session for %s, got %+v", subject.ID, sessions.Sessions)
	}
	if _, err := app.AnalyticsCLI.Stats(ctx, "today"); err != nil {
		t.Fatalf("stats: %v", err)
	}
}

func TestAppRunsOfflineWithoutStore(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, map[string]string{"STUDYTRACK_DB_DRIVER": "none", "STUDYTRACK_CACHE_BACKEND": "memory"})
	ctx := context.Background()

	if _, err := app.focus.Start(ctx, focusdto.StartInput{SubjectID: "ghost"}); !errors.Is(err, apperrors.ErrUnknownSubject) {
		t.Fatalf("unknown subject must be rejected even offline, got %v", err)
	}
	state, err := app.FocusCLI.Status(ctx)
	if err != nil {
		t.Fatalf("status offline: %v", err)
	}
	if state.Status != "idle" {
		t.Fatalf("expected idle, got %s", state.Status)
	}
}

func TestRouterServesFocusState(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, map[string]string{"STUDYTRACK_CACHE_BACKEND": "memory"})
	router, err := do.Invoke[*gin.Engine](app.injector)
	if err != nil {
		t.Fatalf("resolve router: %v", err)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/focus", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	_, err := New(Options{DataDir: t.TempDir(), LogOutput: io.Discard, Environ: map[string]string{"STUDYTRACK_DB_DRIVER": "oracle"}})
	if err == nil {
		t.Fatalf("expected unsupported driver to fail")
	}
}
