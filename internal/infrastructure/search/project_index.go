package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/devfolio-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// owner_id must be a keyword so the term filter matches whole UUIDs.
const projectMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "owner_id":    {"type": "keyword"},
      "name":        {"type": "text"},
      "tech":        {"type": "text"},
      "description": {"type": "text"},
      "status":      {"type": "text"},
      "created_at":  {"type": "date"},
      "updated_at":  {"type": "date"}
    }
  }
}`

// ProjectIndex keeps a full-text copy of projects in Elasticsearch.
type ProjectIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewProjectIndex(es *elasticsearch.Client, index string) *ProjectIndex {
	return &ProjectIndex{ES: es, IndexName: index}
}

type projectDoc struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	Name        string  `json:"name"`
	Tech        string  `json:"tech"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *ProjectIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Indices.Exists([]string{x.IndexName}, x.ES.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = x.ES.Indices.Create(x.IndexName,
		x.ES.Indices.Create.WithContext(c),
		x.ES.Indices.Create.WithBody(bytes.NewReader([]byte(projectMapping))),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", x.IndexName, res.Status())
	}
	return nil
}

// Index upserts p under its id.
func (x *ProjectIndex) Index(ctx context.Context, p *entity.Project) error {
	b, err := json.Marshal(projectDoc{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Tech:        p.Tech,
		Description: p.Description,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: p.ID, Body: bytes.NewReader(b), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index project %s: %s", p.ID, res.Status())
	}
	return nil
}

// Delete removes a document; a missing document is not an error.
func (x *ProjectIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: id}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete project %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over the text fields, filtered to one owner,
// and returns the ids of the hits in score order.
func (x *ProjectIndex) Search(ctx context.Context, ownerID, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"name^2", "tech", "description", "status"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"owner_id": ownerID},
				},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search projects: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
