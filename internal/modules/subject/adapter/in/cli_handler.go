package in

import (
	"context"

	subjectdto "studytrack/internal/modules/subject/dto"
	subjectin "studytrack/internal/modules/subject/port/in"
)

type CLIHandler struct {
	usecase subjectin.Usecase
}

func NewCLIHandler(usecase subjectin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Add(ctx context.Context, name, color, image string) (subjectdto.SubjectOutput, error) {
	return h.usecase.Create(ctx, subjectdto.CreateInput{Name: name, Color: color, Image: image})
}

func (h CLIHandler) Edit(ctx context.Context, input subjectdto.UpdateInput) (subjectdto.SubjectOutput, error) {
	return h.usecase.Update(ctx, input)
}

func (h CLIHandler) Remove(ctx context.Context, id string) error {
	return h.usecase.Delete(ctx, id)
}

func (h CLIHandler) List(ctx context.Context) ([]subjectdto.SubjectOutput, error) {
	return h.usecase.List(ctx)
}
