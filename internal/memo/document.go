// Package memo holds the shared memo/category data model. A Document is the
// unit of sync: the complete state for one credential, exchanged as a single
// JSON blob between the local cache and the remote tenant store.
package memo

import (
	"time"
)

// DefaultCategoryID is reserved. Every document carries exactly one category
// with this id and it can never be deleted.
const DefaultCategoryID = "default"

const (
	defaultCategoryName  = "Default"
	defaultCategoryColor = "#4361ee"
)

type Memo struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CategoryID string    `json:"categoryId"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	// Count is derived from the memos and recomputed on load and on every
	// listing. The serialized value is a convenience for readers of the raw
	// JSON, never a source of truth.
	Count int `json:"count"`
}

type Document struct {
	Memos      []Memo     `json:"memos"`
	Categories []Category `json:"categories"`
}

// DefaultDocument returns the canonical empty document: no memos and the
// default category only. This shape is used uniformly by the server fallback,
// the client fallback and first use of a fresh credential.
func DefaultDocument() *Document {
	return &Document{
		Memos: []Memo{},
		Categories: []Category{
			{ID: DefaultCategoryID, Name: defaultCategoryName, Color: defaultCategoryColor},
		},
	}
}

// Normalize repairs a loaded document so the model invariants hold:
// the default category exists, every memo references an existing category
// and the derived counts match the memos. Documents arriving from storage
// may predate these rules or carry stale counts.
func (d *Document) Normalize() {
	if d.Memos == nil {
		d.Memos = []Memo{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}

	if d.categoryByID(DefaultCategoryID) == nil {
		d.Categories = append([]Category{
			{ID: DefaultCategoryID, Name: defaultCategoryName, Color: defaultCategoryColor},
		}, d.Categories...)
	}

	for i := range d.Memos {
		if d.categoryByID(d.Memos[i].CategoryID) == nil {
			d.Memos[i].CategoryID = DefaultCategoryID
		}
	}

	d.refreshCounts()
}

func (d *Document) categoryByID(id string) *Category {
	for i := range d.Categories {
		if d.Categories[i].ID == id {
			return &d.Categories[i]
		}
	}
	return nil
}

func (d *Document) memoIndex(id string) int {
	for i := range d.Memos {
		if d.Memos[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) counts() map[string]int {
	counts := make(map[string]int, len(d.Categories))
	for _, c := range d.Categories {
		counts[c.ID] = 0
	}
	for _, m := range d.Memos {
		counts[m.CategoryID]++
	}
	return counts
}

func (d *Document) refreshCounts() {
	counts := d.counts()
	for i := range d.Categories {
		d.Categories[i].Count = counts[d.Categories[i].ID]
	}
}
