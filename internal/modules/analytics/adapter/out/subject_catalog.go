package out

import (
	"context"

	"studytrack/internal/modules/analytics/domain"
	analyticsout "studytrack/internal/modules/analytics/port/out"
	subjectin "studytrack/internal/modules/subject/port/in"
)

type SubjectCatalog struct {
	subjects subjectin.Usecase
}

func NewSubjectCatalog(subjects subjectin.Usecase) analyticsout.SubjectCatalog {
	return &SubjectCatalog{subjects: subjects}
}

func (a *SubjectCatalog) Subjects(ctx context.Context) ([]domain.SubjectInfo, error) {
	subjects, err := a.subjects.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SubjectInfo, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, domain.SubjectInfo{ID: s.ID, Name: s.Name, Color: s.Color})
	}
	return out, nil
}
