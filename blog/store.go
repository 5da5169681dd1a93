package blog

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

// DraftFields is the full overwrite set applied by draft reconciliation.
// Zero values are written as-is; the caller decides blank-vs-preserve before
// building one.
type DraftFields struct {
	Title   string
	Content string
	Tags    []string
}

// Store is the persistence port for the blog core. UpsertDraft and
// PromoteDraft must each execute as a single atomic operation on the
// author's draft slot; they are what closes the check-then-act race between
// overlapping auto-save and publish calls.
type Store interface {
	Insert(ctx context.Context, b *models.Blog) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	FindDraftByAuthor(ctx context.Context, author primitive.ObjectID) (*models.Blog, error)

	// UpsertDraft overwrites the author's draft with fields, creating it if
	// absent. Returns the resulting draft.
	UpsertDraft(ctx context.Context, author primitive.ObjectID, fields DraftFields) (*models.Blog, error)

	// PromoteDraft overwrites the author's draft with fields and flips it to
	// published, keeping its id. Returns ErrNoDraft when the author has none.
	PromoteDraft(ctx context.Context, author primitive.ObjectID, fields DraftFields) (*models.Blog, error)

	// Replace persists a loaded blog in full. Returns ErrDraftExists when the
	// write would give the author a second draft, ErrNotFound when the blog
	// no longer exists.
	Replace(ctx context.Context, b *models.Blog) error

	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Blog, error)

	// ListPublished returns the requested page of published blogs, newest
	// created first, plus the total published count.
	ListPublished(ctx context.Context, page, limit int) ([]models.Blog, int64, error)
}

// AuthorResolver resolves an author id to its public projection.
type AuthorResolver interface {
	Resolve(ctx context.Context, id primitive.ObjectID) (*models.AuthorProfile, error)
}

// Pagination is the metadata attached to published-feed pages.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalBlogs  int64 `json:"totalBlogs"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}
