package memo

import (
	"sort"
	"strings"
	"time"

	"shared-memo-pad/internal/errors"

	"github.com/google/uuid"
)

// Model owns a Document and exposes the mutation entry points that preserve
// its invariants. Every mutator either fully succeeds or leaves the document
// untouched.
//
// Model is not safe for concurrent use. Mutations are expected from a single
// control flow per client instance; cross-device writes under the same
// credential are resolved last-write-wins at the tenant store.
type Model struct {
	doc *Document
	now func() time.Time
}

// NewModel wraps doc, normalizing it first. A nil doc starts from the
// canonical empty document.
func NewModel(doc *Document) *Model {
	if doc == nil {
		doc = DefaultDocument()
	}
	doc.Normalize()
	return &Model{
		doc: doc,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Document returns the underlying document, counts refreshed. The caller
// commits it after a successful mutation.
func (m *Model) Document() *Document {
	m.doc.refreshCounts()
	return m.doc
}

// CreateCategory adds a category with a fresh id.
func (m *Model) CreateCategory(name, color string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("Category name is required", nil)
	}

	category := Category{
		ID:    uuid.NewString(),
		Name:  name,
		Color: color,
	}
	m.doc.Categories = append(m.doc.Categories, category)
	return &category, nil
}

// UpdateCategory renames or recolors an existing category.
func (m *Model) UpdateCategory(id, name, color string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("Category name is required", nil)
	}

	category := m.doc.categoryByID(id)
	if category == nil {
		return nil, errors.NotFound("Category not found", nil)
	}

	category.Name = name
	category.Color = color
	out := *category
	return &out, nil
}

// DeleteCategory removes a category, reassigning its memos to the default
// category first so no memo ever references a missing category.
func (m *Model) DeleteCategory(id string) error {
	if id == DefaultCategoryID {
		return errors.Forbidden("Cannot delete the default category", nil)
	}
	if m.doc.categoryByID(id) == nil {
		return errors.NotFound("Category not found", nil)
	}

	// cascade before removal
	for i := range m.doc.Memos {
		if m.doc.Memos[i].CategoryID == id {
			m.doc.Memos[i].CategoryID = DefaultCategoryID
		}
	}

	kept := m.doc.Categories[:0]
	for _, c := range m.doc.Categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	m.doc.Categories = kept
	return nil
}

type CreateMemoParams struct {
	Title      string
	Content    string
	CategoryID string
	Image      string
}

// CreateMemo adds a memo. An empty CategoryID falls back to the default
// category; an unknown one is rejected rather than silently coerced.
func (m *Model) CreateMemo(params CreateMemoParams) (*Memo, error) {
	title := strings.TrimSpace(params.Title)
	content := strings.TrimSpace(params.Content)
	if title == "" && content == "" {
		return nil, errors.Validation("Title and content cannot both be empty", nil)
	}

	categoryID := params.CategoryID
	if categoryID == "" {
		categoryID = DefaultCategoryID
	}
	if m.doc.categoryByID(categoryID) == nil {
		return nil, errors.NotFound("Category not found", nil)
	}

	now := m.now()
	memo := Memo{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		CategoryID: categoryID,
		Image:      params.Image,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.doc.Memos = append(m.doc.Memos, memo)
	return &memo, nil
}

type UpdateMemoParams struct {
	Title      string
	Content    string
	CategoryID string
	// Image nil keeps the current image; RemoveImage clears it. Clearing is
	// a distinct signal so an omitted upload never drops an existing image.
	Image       *string
	RemoveImage bool
}

// UpdateMemo edits a memo in place. CreatedAt is immutable; UpdatedAt is
// refreshed.
func (m *Model) UpdateMemo(id string, params UpdateMemoParams) (*Memo, error) {
	idx := m.doc.memoIndex(id)
	if idx < 0 {
		return nil, errors.NotFound("Memo not found", nil)
	}

	title := strings.TrimSpace(params.Title)
	content := strings.TrimSpace(params.Content)
	if title == "" && content == "" {
		return nil, errors.Validation("Title and content cannot both be empty", nil)
	}

	// omission keeps the current category, like omission keeps the image
	categoryID := params.CategoryID
	if categoryID == "" {
		categoryID = m.doc.Memos[idx].CategoryID
	}
	if m.doc.categoryByID(categoryID) == nil {
		return nil, errors.NotFound("Category not found", nil)
	}

	memo := &m.doc.Memos[idx]
	memo.Title = title
	memo.Content = content
	memo.CategoryID = categoryID
	switch {
	case params.RemoveImage:
		memo.Image = ""
	case params.Image != nil:
		memo.Image = *params.Image
	}
	memo.UpdatedAt = m.now()

	out := *memo
	return &out, nil
}

// DeleteMemo removes a memo. No cascade.
func (m *Model) DeleteMemo(id string) error {
	idx := m.doc.memoIndex(id)
	if idx < 0 {
		return errors.NotFound("Memo not found", nil)
	}
	m.doc.Memos = append(m.doc.Memos[:idx], m.doc.Memos[idx+1:]...)
	return nil
}

// AllCategories is the filter accepted by ListMemos to list every memo.
const AllCategories = "all"

// ListMemos returns memos in the given category ("all" for every memo),
// most recently updated first. The ordering is a user-visible contract.
func (m *Model) ListMemos(categoryID string) []Memo {
	memos := make([]Memo, 0, len(m.doc.Memos))
	for _, memo := range m.doc.Memos {
		if categoryID == AllCategories || memo.CategoryID == categoryID {
			memos = append(memos, memo)
		}
	}

	sort.SliceStable(memos, func(i, j int) bool {
		return memos[i].UpdatedAt.After(memos[j].UpdatedAt)
	})
	return memos
}

// CategoryCounts recomputes memo counts per category from the current memos.
func (m *Model) CategoryCounts() map[string]int {
	return m.doc.counts()
}

// Categories returns all categories with counts filled in, the default
// category first.
func (m *Model) Categories() []Category {
	m.doc.refreshCounts()

	categories := make([]Category, 0, len(m.doc.Categories))
	for _, c := range m.doc.Categories {
		if c.ID == DefaultCategoryID {
			categories = append(categories, c)
		}
	}
	for _, c := range m.doc.Categories {
		if c.ID != DefaultCategoryID {
			categories = append(categories, c)
		}
	}
	return categories
}
