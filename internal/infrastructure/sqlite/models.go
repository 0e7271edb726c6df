package sqlite

import (
	"path"
	"time"

	"github.com/zjrosen/mirrorkit/internal/domain/feature"
)

// ImportModel represents a row of the imports table.
type ImportModel struct {
	ID        string
	Root      string
	Added     int
	Updated   int
	Unchanged int
	CreatedAt int64
}

// ImportResult summarizes one Import call.
type ImportResult struct {
	ID        string    `json:"id"`
	Root      string    `json:"root"`
	Added     int       `json:"added"`
	Updated   int       `json:"updated"`
	Unchanged int       `json:"unchanged"`
	CreatedAt time.Time `json:"created_at"`
}

// Total is the number of payloads the import visited.
func (r *ImportResult) Total() int {
	return r.Added + r.Updated + r.Unchanged
}

func (m *ImportModel) toResult() *ImportResult {
	return &ImportResult{
		ID:        m.ID,
		Root:      m.Root,
		Added:     m.Added,
		Updated:   m.Updated,
		Unchanged: m.Unchanged,
		CreatedAt: time.Unix(m.CreatedAt, 0),
	}
}

// kindForKey infers the stored kind from the key's extension.
func kindForKey(key string) string {
	if path.Ext(key) == ".css" {
		return feature.KindStyle.String()
	}
	return feature.KindScript.String()
}
