package in

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	subjectdto "studytrack/internal/modules/subject/dto"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/httpx"
)

type fakeUsecase struct {
	subjects map[string]subjectdto.SubjectOutput
}

func (f *fakeUsecase) Create(_ context.Context, input subjectdto.CreateInput) (subjectdto.SubjectOutput, error) {
	if input.Name == "" {
		return subjectdto.SubjectOutput{}, apperrors.ErrInvalidInput
	}
	out := subjectdto.SubjectOutput{ID: "s-" + input.Name, Name: input.Name, Color: "#89b4fa", CreatedAt: time.Unix(0, 0).UTC()}
	f.subjects[out.ID] = out
	return out, nil
}

func (f *fakeUsecase) Update(_ context.Context, input subjectdto.UpdateInput) (subjectdto.SubjectOutput, error) {
	out, ok := f.subjects[input.ID]
	if !ok {
		return subjectdto.SubjectOutput{}, apperrors.ErrNotFound
	}
	if input.Name != nil {
		out.Name = *input.Name
	}
	f.subjects[input.ID] = out
	return out, nil
}

func (f *fakeUsecase) Delete(_ context.Context, id string) error {
	delete(f.subjects, id)
	return nil
}

func (f *fakeUsecase) List(context.Context) ([]subjectdto.SubjectOutput, error) {
	out := []subjectdto.SubjectOutput{}
	for _, s := range f.subjects {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeUsecase) Get(_ context.Context, id string) (subjectdto.SubjectOutput, error) {
	out, ok := f.subjects[id]
	if !ok {
		return subjectdto.SubjectOutput{}, apperrors.ErrNotFound
	}
	return out, nil
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubjectRoutes(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)
	router := httpx.NewRouter(NewHTTPHandler(&fakeUsecase{subjects: map[string]subjectdto.SubjectOutput{}}).RegisterRoutes)

	rec := doJSON(t, router, http.MethodPost, "/api/subjects", map[string]string{"name": "Math"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPatch, "/api/subjects/s-Math", map[string]string{"name": "Algebra"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}
	var updated subjectdto.SubjectOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil || updated.Name != "Algebra" {
		t.Fatalf("unexpected update body %s (%v)", rec.Body.String(), err)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/subjects/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/subjects", map[string]string{"color": "#000000"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without name, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/subjects/s-Math", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
