package blog

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

// MemoryStore is a mutex-guarded in-memory Store used by tests and local
// development. It upholds the same single-draft-per-author guarantee the
// Mongo partial unique index provides.
type MemoryStore struct {
	mu    sync.Mutex
	blogs map[primitive.ObjectID]*models.Blog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blogs: make(map[primitive.ObjectID]*models.Blog)}
}

func (s *MemoryStore) draftOf(author primitive.ObjectID) *models.Blog {
	for _, b := range s.blogs {
		if b.Author == author && b.Status == models.StatusDraft {
			return b
		}
	}
	return nil
}

func (s *MemoryStore) Insert(_ context.Context, b *models.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.Status == models.StatusDraft && s.draftOf(b.Author) != nil {
		return ErrDraftExists
	}
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	cp := *b
	s.blogs[b.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) FindDraftByAuthor(_ context.Context, author primitive.ObjectID) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.draftOf(author)
	if b == nil {
		return nil, ErrNoDraft
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) UpsertDraft(_ context.Context, author primitive.ObjectID, fields DraftFields) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.draftOf(author)
	if b == nil {
		b = &models.Blog{
			ID:        primitive.NewObjectID(),
			Status:    models.StatusDraft,
			Author:    author,
			CreatedAt: time.Now(),
		}
		s.blogs[b.ID] = b
	}
	b.Title = fields.Title
	b.Content = fields.Content
	b.Tags = fields.Tags
	b.UpdatedAt = time.Now()

	cp := *b
	return &cp, nil
}

func (s *MemoryStore) PromoteDraft(_ context.Context, author primitive.ObjectID, fields DraftFields) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.draftOf(author)
	if b == nil {
		return nil, ErrNoDraft
	}
	b.Title = fields.Title
	b.Content = fields.Content
	b.Tags = fields.Tags
	b.Status = models.StatusPublished
	b.UpdatedAt = time.Now()

	cp := *b
	return &cp, nil
}

func (s *MemoryStore) Replace(_ context.Context, b *models.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blogs[b.ID]; !ok {
		return ErrNotFound
	}
	if b.Status == models.StatusDraft {
		if d := s.draftOf(b.Author); d != nil && d.ID != b.ID {
			return ErrDraftExists
		}
	}
	cp := *b
	s.blogs[b.ID] = &cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blogs[id]; !ok {
		return ErrNotFound
	}
	delete(s.blogs, id)
	return nil
}

func (s *MemoryStore) ListByAuthor(_ context.Context, author primitive.ObjectID) ([]models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Blog{}
	for _, b := range s.blogs {
		if b.Author == author {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryStore) ListPublished(_ context.Context, page, limit int) ([]models.Blog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := []models.Blog{}
	for _, b := range s.blogs {
		if b.Status == models.StatusPublished {
			all = append(all, *b)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []models.Blog{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}
