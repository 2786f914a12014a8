package repository

import (
	"context"

	"github.com/oksasatya/devfolio-api/internal/domain/entity"
)

// ProjectRepository stores projects. Every method is scoped by owner id;
// a project owned by someone else is reported as ErrNotFound.
type ProjectRepository interface {
	// Create assigns p.ID, p.CreatedAt and p.UpdatedAt.
	Create(ctx context.Context, p *entity.Project) error
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Project, error)
	GetByID(ctx context.Context, ownerID, id string) (*entity.Project, error)
	Update(ctx context.Context, ownerID, id string, f entity.ProjectFields) (*entity.Project, error)
	Delete(ctx context.Context, ownerID, id string) error
}
