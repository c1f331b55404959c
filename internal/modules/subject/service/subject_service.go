package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"studytrack/internal/modules/subject/domain"
	subjectout "studytrack/internal/modules/subject/port/out"
	"studytrack/internal/platform/clock"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/id"
)

const MirrorKey = "subjects"

type SubjectService struct {
	clock  clock.Clock
	idGen  id.Generator
	store  subjectout.SubjectStore
	mirror subjectout.Mirror
	owner  string
	logger *slog.Logger
}

func NewSubjectService(clock clock.Clock, idGen id.Generator, store subjectout.SubjectStore, mirror subjectout.Mirror, owner string, logger *slog.Logger) *SubjectService {
	return &SubjectService{clock: clock, idGen: idGen, store: store, mirror: mirror, owner: owner, logger: logger}
}

func (s *SubjectService) Create(ctx context.Context, name, color, image string) (domain.Subject, error) {
	subject := domain.Subject{
		ID:        s.idGen.New(),
		OwnerID:   s.owner,
		Name:      strings.TrimSpace(name),
		Color:     domain.NormalizeColor(color),
		Image:     strings.TrimSpace(image),
		CreatedAt: s.clock.Now(),
	}
	if err := subject.Validate(); err != nil {
		return domain.Subject{}, err
	}
	if err := s.store.Insert(ctx, subject); err != nil {
		return domain.Subject{}, fmt.Errorf("insert subject: %w", err)
	}
	s.refreshMirror(ctx)
	return subject, nil
}

func (s *SubjectService) Update(ctx context.Context, id string, name, color, image *string) (domain.Subject, error) {
	subject, err := s.Get(ctx, id)
	if err != nil {
		return domain.Subject{}, err
	}
	if name != nil {
		subject.Name = strings.TrimSpace(*name)
	}
	if color != nil {
		subject.Color = domain.NormalizeColor(*color)
	}
	if image != nil {
		subject.Image = strings.TrimSpace(*image)
	}
	if err := subject.Validate(); err != nil {
		return domain.Subject{}, err
	}
	if err := s.store.Update(ctx, subject); err != nil {
		return domain.Subject{}, fmt.Errorf("update subject: %w", err)
	}
	s.refreshMirror(ctx)
	return subject, nil
}

// Delete removes the subject row only; its sessions stay untouched.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: subject id is required", apperrors.ErrInvalidInput)
	}
	if err := s.store.Delete(ctx, s.owner, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	s.refreshMirror(ctx)
	return nil
}

// List reads the store and mirrors the result locally. When the store is
// unavailable the mirrored list is served instead.
func (s *SubjectService) List(ctx context.Context) ([]domain.Subject, error) {
	subjects, err := s.store.List(ctx, s.owner)
	if err != nil {
		if errors.Is(err, apperrors.ErrStoreUnavailable) {
			s.logger.Warn("subject store unavailable, serving mirrored list", "error", err)
			return s.mirrored(), nil
		}
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	sortSubjects(subjects)
	if err := s.mirror.Save(MirrorKey, subjects); err != nil {
		s.logger.Warn("mirror subjects", "error", err)
	}
	return subjects, nil
}

func (s *SubjectService) Get(ctx context.Context, id string) (domain.Subject, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Subject{}, fmt.Errorf("%w: subject id is required", apperrors.ErrInvalidInput)
	}
	subject, found, err := s.store.Get(ctx, s.owner, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrStoreUnavailable) {
			return domain.Subject{}, fmt.Errorf("get subject: %w", err)
		}
		subject, found = domain.Find(s.mirrored(), id)
	}
	if !found {
		return domain.Subject{}, fmt.Errorf("%w: subject %s", apperrors.ErrNotFound, id)
	}
	return subject, nil
}

func (s *SubjectService) mirrored() []domain.Subject {
	var subjects []domain.Subject
	if !s.mirror.Load(MirrorKey, &subjects) {
		return []domain.Subject{}
	}
	return subjects
}

func (s *SubjectService) refreshMirror(ctx context.Context) {
	if _, err := s.List(ctx); err != nil {
		s.logger.Warn("refresh subject mirror", "error", err)
	}
}

func sortSubjects(subjects []domain.Subject) {
	sort.SliceStable(subjects, func(i, j int) bool {
		if subjects[i].CreatedAt.Equal(subjects[j].CreatedAt) {
			return subjects[i].ID < subjects[j].ID
		}
		return subjects[i].CreatedAt.Before(subjects[j].CreatedAt)
	})
}
