package in

import (
	"context"

	"studytrack/internal/modules/subject/dto"
)

type Usecase interface {
	Create(ctx context.Context, input dto.CreateInput) (dto.SubjectOutput, error)
	Update(ctx context.Context, input dto.UpdateInput) (dto.SubjectOutput, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]dto.SubjectOutput, error)
	Get(ctx context.Context, id string) (dto.SubjectOutput, error)
}
