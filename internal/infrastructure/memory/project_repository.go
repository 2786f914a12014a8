package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/devfolio-api/internal/domain/entity"
	"github.com/oksasatya/devfolio-api/internal/domain/repository"
)

type ProjectRepository struct {
	mu    sync.RWMutex
	rows  map[string]*entity.Project
	order []string // insertion order, for stable listing
	now   func() time.Time
}

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{
		rows: make(map[string]*entity.Project),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *ProjectRepository) Create(_ context.Context, p *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = uuid.NewString()
	p.CreatedAt = r.now()
	p.UpdatedAt = p.CreatedAt
	r.rows[p.ID] = clone(p)
	r.order = append(r.order, p.ID)
	return nil
}

func (r *ProjectRepository) ListByOwner(_ context.Context, ownerID string) ([]*entity.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Project, 0)
	for _, id := range r.order {
		if p := r.rows[id]; p.OwnerID == ownerID {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r *ProjectRepository) GetByID(_ context.Context, ownerID, id string) (*entity.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, err := r.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	return clone(p), nil
}

func (r *ProjectRepository) Update(_ context.Context, ownerID, id string, f entity.ProjectFields) (*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	p.Apply(cloneFields(f))
	p.UpdatedAt = r.now()
	return clone(p), nil
}

func (r *ProjectRepository) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.owned(ownerID, id)
	if err != nil {
		return err
	}
	delete(r.rows, p.ID)
	for i, oid := range r.order {
		if oid == p.ID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// owned must be called with the lock held.
func (r *ProjectRepository) owned(ownerID, id string) (*entity.Project, error) {
	p, ok := r.rows[strings.ToLower(id)]
	if !ok || p.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func clone(p *entity.Project) *entity.Project {
	cp := *p
	cp.Description = cloneStr(p.Description)
	cp.Status = cloneStr(p.Status)
	return &cp
}

func cloneFields(f entity.ProjectFields) entity.ProjectFields {
	f.Description = cloneStr(f.Description)
	f.Status = cloneStr(f.Status)
	return f
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)
