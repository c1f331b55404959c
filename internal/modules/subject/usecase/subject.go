package usecase

import (
	"context"

	"studytrack/internal/modules/subject/domain"
	subjectdto "studytrack/internal/modules/subject/dto"
	subjectin "studytrack/internal/modules/subject/port/in"
	"studytrack/internal/modules/subject/service"
)

type Interactor struct {
	svc *service.SubjectService
}

func NewInteractor(svc *service.SubjectService) subjectin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Create(ctx context.Context, input subjectdto.CreateInput) (subjectdto.SubjectOutput, error) {
	subject, err := i.svc.Create(ctx, input.Name, input.Color, input.Image)
	if err != nil {
		return subjectdto.SubjectOutput{}, err
	}
	return toOutput(subject), nil
}

func (i *Interactor) Update(ctx context.Context, input subjectdto.UpdateInput) (subjectdto.SubjectOutput, error) {
	subject, err := i.svc.Update(ctx, input.ID, input.Name, input.Color, input.Image)
	if err != nil {
		return subjectdto.SubjectOutput{}, err
	}
	return toOutput(subject), nil
}

func (i *Interactor) Delete(ctx context.Context, id string) error {
	return i.svc.Delete(ctx, id)
}

func (i *Interactor) List(ctx context.Context) ([]subjectdto.SubjectOutput, error) {
	subjects, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]subjectdto.SubjectOutput, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, toOutput(s))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id string) (subjectdto.SubjectOutput, error) {
	subject, err := i.svc.Get(ctx, id)
	if err != nil {
		return subjectdto.SubjectOutput{}, err
	}
	return toOutput(subject), nil
}

func toOutput(s domain.Subject) subjectdto.SubjectOutput {
	return subjectdto.SubjectOutput{ID: s.ID, Name: s.Name, Color: s.Color, Image: s.Image, CreatedAt: s.CreatedAt}
}
