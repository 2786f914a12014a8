package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/devfolio-api/internal/domain/entity"
	"github.com/oksasatya/devfolio-api/internal/domain/repository"
)

const projectColumns = `id, owner_id, name, tech, description, status, url, start_date, end_date, created_at, updated_at`

type ProjectRepository struct {
	db DBTX
}

func NewProjectRepository(db DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO projects (owner_id, name, tech, description, status, url, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, p.OwnerID, p.Name, p.Tech, textOf(p.Description), textOf(p.Status), p.URL, p.StartDate, p.EndDate)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Project, error) {
	out := make([]*entity.Project, 0)
	if !validID(ownerID) {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE owner_id = $1
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, ownerID, id string) (*entity.Project, error) {
	if !validID(ownerID) || !validID(id) {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) Update(ctx context.Context, ownerID, id string, f entity.ProjectFields) (*entity.Project, error) {
	if !validID(ownerID) || !validID(id) {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `
		UPDATE projects
		SET name = $1, tech = $2, description = $3, status = $4, url = $5,
		    start_date = $6, end_date = $7, updated_at = $8
		WHERE id = $9 AND owner_id = $10
		RETURNING `+projectColumns,
		f.Name, f.Tech, textOf(f.Description), textOf(f.Status), f.URL,
		f.StartDate, f.EndDate, time.Now().UTC(), id, ownerID)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id string) error {
	if !validID(ownerID) || !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*entity.Project, error) {
	p := &entity.Project{}
	var desc, status pgtype.Text
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Tech, &desc, &status,
		&p.URL, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Description = stringOf(desc)
	p.Status = stringOf(status)
	return p, nil
}

// Non-UUID ids cannot match any row; rejecting them early also keeps
// Postgres from answering with a cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func textOf(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func stringOf(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)
