package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devfolio-api/internal/domain/entity"
	repo "github.com/oksasatya/devfolio-api/internal/domain/repository"
	"github.com/oksasatya/devfolio-api/pkg/apperror"
	"github.com/oksasatya/devfolio-api/pkg/helpers"
)

const (
	MsgNameTechRequired = "Name and tech are required"
	MsgProjectNotFound  = "Project not found"
	MsgQueryRequired    = "Search query is required"

	defaultSearchSize = 10
	maxSearchSize     = 50
)

// ProjectIndex is a secondary full-text index over projects.
// Search returns matching project ids for one owner, best match first.
type ProjectIndex interface {
	Index(ctx context.Context, p *entity.Project) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, ownerID, q string, size int) ([]string, error)
}

// ProjectInput is a create/update payload. Nil means the client omitted the field.
type ProjectInput struct {
	Name        *string
	Tech        *string
	Description *string
	Status      *string
	URL         *string
	StartDate   *string
	EndDate     *string
}

// Fields validates the input and fills defaults for url/startDate/endDate.
func (in ProjectInput) Fields() (entity.ProjectFields, error) {
	if isBlank(in.Name) || isBlank(in.Tech) {
		return entity.ProjectFields{}, apperror.NewValidation(MsgNameTechRequired)
	}
	return entity.ProjectFields{
		Name:        *in.Name,
		Tech:        *in.Tech,
		Description: in.Description,
		Status:      in.Status,
		URL:         orEmpty(in.URL),
		StartDate:   orEmpty(in.StartDate),
		EndDate:     orEmpty(in.EndDate),
	}, nil
}

type ProjectService struct {
	Repo   repo.ProjectRepository
	Index  ProjectIndex // optional
	Logger *logrus.Logger
}

func NewProjectService(r repo.ProjectRepository, index ProjectIndex, logger *logrus.Logger) *ProjectService {
	return &ProjectService{Repo: r, Index: index, Logger: logger}
}

// Create stores a new project owned by ownerID.
func (s *ProjectService) Create(ctx context.Context, ownerID string, in ProjectInput) (*entity.Project, error) {
	f, err := in.Fields()
	if err != nil {
		return nil, err
	}
	p := &entity.Project{OwnerID: ownerID}
	p.Apply(f)
	if err := s.Repo.Create(ctx, p); err != nil {
		helpers.LogError(s.Logger, "create project failed", err, logrus.Fields{"user_id": ownerID})
		return nil, apperror.NewInternal(err)
	}
	s.index(ctx, p)
	return p, nil
}

// List returns the owner's projects in storage order; never nil.
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]*entity.Project, error) {
	list, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		helpers.LogError(s.Logger, "list projects failed", err, logrus.Fields{"user_id": ownerID})
		return nil, apperror.NewInternal(err)
	}
	if list == nil {
		list = []*entity.Project{}
	}
	return list, nil
}

// Get returns one of the owner's projects.
func (s *ProjectService) Get(ctx context.Context, ownerID, id string) (*entity.Project, error) {
	p, err := s.Repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, s.mapRepoErr("get project failed", ownerID, id, err)
	}
	return p, nil
}

// Update replaces every mutable field of the owner's project.
func (s *ProjectService) Update(ctx context.Context, ownerID, id string, in ProjectInput) (*entity.Project, error) {
	f, err := in.Fields()
	if err != nil {
		return nil, err
	}
	p, err := s.Repo.Update(ctx, ownerID, id, f)
	if err != nil {
		return nil, s.mapRepoErr("update project failed", ownerID, id, err)
	}
	s.index(ctx, p)
	return p, nil
}

// Delete removes the owner's project.
func (s *ProjectService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.Repo.Delete(ctx, ownerID, id); err != nil {
		return s.mapRepoErr("delete project failed", ownerID, id, err)
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			helpers.LogError(s.Logger, "unindex project failed", err, logrus.Fields{"project_id": id})
		}
	}
	return nil
}

// Search finds the owner's projects matching q. Index hits are re-checked
// against the owner's rows, so a stale index cannot leak other owners' data.
func (s *ProjectService) Search(ctx context.Context, ownerID, q string, size int) ([]*entity.Project, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.NewValidation(MsgQueryRequired)
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	owned, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if s.Index != nil {
		ids, err := s.Index.Search(ctx, ownerID, q, size)
		if err == nil {
			return pickByIDs(owned, ids), nil
		}
		helpers.LogError(s.Logger, "project search via index failed, matching locally", err, logrus.Fields{"user_id": ownerID})
	}
	return matchLocal(owned, q, size), nil
}

func (s *ProjectService) index(ctx context.Context, p *entity.Project) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil {
		helpers.LogError(s.Logger, "index project failed", err, logrus.Fields{"project_id": p.ID})
	}
}

func (s *ProjectService) mapRepoErr(msg, ownerID, id string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NewNotFound(MsgProjectNotFound)
	}
	helpers.LogError(s.Logger, msg, err, logrus.Fields{"user_id": ownerID, "project_id": id})
	return apperror.NewInternal(err)
}

func pickByIDs(owned []*entity.Project, ids []string) []*entity.Project {
	byID := make(map[string]*entity.Project, len(owned))
	for _, p := range owned {
		byID[p.ID] = p
	}
	out := make([]*entity.Project, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func matchLocal(owned []*entity.Project, q string, size int) []*entity.Project {
	needle := strings.ToLower(q)
	out := make([]*entity.Project, 0)
	for _, p := range owned {
		if len(out) == size {
			break
		}
		hay := []string{p.Name, p.Tech, orEmpty(p.Description), orEmpty(p.Status)}
		for _, h := range hay {
			if strings.Contains(strings.ToLower(h), needle) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
