package blog

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// EditFields carries the optional fields of an edit request. Nil means the
// field was omitted and the prior value is kept.
type EditFields struct {
	Title   *string
	Content *string
	Tags    []string
	Status  *string
}

// Service exposes the blog operations consumed by the HTTP boundary.
type Service struct {
	store      Store
	reconciler *Reconciler
	authors    AuthorResolver
}

func NewService(store Store, authors AuthorResolver) *Service {
	return &Service{
		store:      store,
		reconciler: NewReconciler(store),
		authors:    authors,
	}
}

// Publish is the boundary's "create". It promotes the caller's draft when
// one exists, so the name reflects what actually happens.
func (s *Service) Publish(ctx context.Context, author primitive.ObjectID, title, content string, tags []string) (*models.Blog, error) {
	return s.reconciler.Publish(ctx, author, title, content, tags)
}

func (s *Service) AutoSave(ctx context.Context, author primitive.ObjectID, title, content string, tags []string) (*models.Blog, error) {
	return s.reconciler.AutoSave(ctx, author, title, content, tags)
}

func (s *Service) SaveDraft(ctx context.Context, author, id primitive.ObjectID, title, content string, tags []string) (*models.Blog, error) {
	return s.reconciler.SaveDraft(ctx, author, id, title, content, tags)
}

func (s *Service) FetchDraft(ctx context.Context, author primitive.ObjectID) (*models.Blog, error) {
	return s.reconciler.FetchDraft(ctx, author)
}

// Edit overwrites only the provided fields. Length bounds are not re-checked
// here; they apply to the publish transition only.
func (s *Service) Edit(ctx context.Context, caller, id primitive.ObjectID, fields EditFields) (*models.Blog, error) {
	b, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if fields.Title != nil {
		b.Title = *fields.Title
	}
	if fields.Content != nil {
		b.Content = *fields.Content
	}
	if fields.Tags != nil {
		b.Tags = dedupeTags(fields.Tags)
	}
	if fields.Status != nil {
		if *fields.Status != models.StatusDraft && *fields.Status != models.StatusPublished {
			return nil, validationErr("status", "Status must be draft or published")
		}
		b.Status = *fields.Status
	}
	b.UpdatedAt = time.Now()

	if err := s.store.Replace(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) AddTags(ctx context.Context, caller, id primitive.ObjectID, tags []string) (*models.Blog, error) {
	b, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	b.Tags = mergeTags(b.Tags, tags)
	b.UpdatedAt = time.Now()

	if err := s.store.Replace(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, caller, id primitive.ObjectID) error {
	if _, err := s.loadOwned(ctx, caller, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Get is a public read: no ownership check, and the author is resolved to
// its public projection. A missing author (deleted account) is not an error.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.BlogWithAuthor, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &models.BlogWithAuthor{Blog: *b}
	author, err := s.authors.Resolve(ctx, b.Author)
	switch {
	case err == nil:
		out.AuthorInfo = author
	case errors.Is(err, ErrNotFound):
		// Deleted account: the blog is still served, without a projection.
	default:
		return nil, err
	}
	return out, nil
}

func (s *Service) ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Blog, error) {
	return s.store.ListByAuthor(ctx, author)
}

func (s *Service) ListPublished(ctx context.Context, page, limit int) ([]models.Blog, *Pagination, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	blogs, total, err := s.store.ListPublished(ctx, page, limit)
	if err != nil {
		return nil, nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return blogs, &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalBlogs:  total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}, nil
}

func (s *Service) loadOwned(ctx context.Context, caller, id primitive.ObjectID) (*models.Blog, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, err
	}
	if err := Authorize(caller, b); err != nil {
		return nil, err
	}
	return b, nil
}
