package entity

import "time"

// Project is a portfolio entry owned by exactly one user.
// OwnerID is fixed at creation; Description and Status are nil when the
// client never supplied them.
type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"-"`
	Name        string    `json:"name"`
	Tech        string    `json:"tech"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	URL         string    `json:"url"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectFields are the mutable fields of a Project. Update replaces all of them.
type ProjectFields struct {
	Name        string
	Tech        string
	Description *string
	Status      *string
	URL         string
	StartDate   string
	EndDate     string
}

// Apply overwrites every mutable field of p with f.
func (p *Project) Apply(f ProjectFields) {
	p.Name = f.Name
	p.Tech = f.Tech
	p.Description = f.Description
	p.Status = f.Status
	p.URL = f.URL
	p.StartDate = f.StartDate
	p.EndDate = f.EndDate
}
