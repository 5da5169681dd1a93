package blog

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

const (
	maxTitleLen   = 50
	minContentLen = 50
	maxContentLen = 2000
)

// Reconciler owns the draft lifecycle: every write that can touch an
// author's single draft slot goes through here.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// AutoSave captures in-progress content into the author's draft, creating it
// on first call. Omitted fields are written as empty, they never fall back to
// prior values: the editor state is the draft state. Safe under rapid
// repeated calls from the same author.
func (r *Reconciler) AutoSave(ctx context.Context, author primitive.ObjectID, title, content string, tags []string) (*models.Blog, error) {
	return r.store.UpsertDraft(ctx, author, DraftFields{
		Title:   title,
		Content: content,
		Tags:    dedupeTags(tags),
	})
}

// SaveDraft is the explicit "save as draft" action. With an id it overwrites
// the named blog, keeping prior values for omitted fields and forcing draft
// status. Without an id it requires title and content and reconciles through
// the draft slot, so an author who already holds a draft overwrites it
// instead of growing a second one.
func (r *Reconciler) SaveDraft(ctx context.Context, author, id primitive.ObjectID, title, content string, tags []string) (*models.Blog, error) {
	if id.IsZero() {
		if title == "" {
			return nil, validationErr("title", "Title and content are required")
		}
		if content == "" {
			return nil, validationErr("content", "Title and content are required")
		}
		return r.store.UpsertDraft(ctx, author, DraftFields{
			Title:   title,
			Content: content,
			Tags:    dedupeTags(tags),
		})
	}

	b, err := r.store.FindByID(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := Authorize(author, b); err != nil {
		return nil, err
	}

	applyFields(b, title, content, tags)
	b.Status = models.StatusDraft
	b.UpdatedAt = time.Now()

	if err := r.store.Replace(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Publish validates the content bounds, then promotes the author's draft to
// published, or creates the blog directly as published when no draft exists.
// The promoted blog keeps its id, so an auto-saved draft becomes the
// published post.
func (r *Reconciler) Publish(ctx context.Context, author primitive.ObjectID, title, content string, tags []string) (*models.Blog, error) {
	if err := validatePublish(title, content); err != nil {
		return nil, err
	}

	fields := DraftFields{Title: title, Content: content, Tags: dedupeTags(tags)}

	b, err := r.store.PromoteDraft(ctx, author, fields)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNoDraft) {
		return nil, err
	}

	now := time.Now()
	b = &models.Blog{
		ID:        primitive.NewObjectID(),
		Title:     fields.Title,
		Content:   fields.Content,
		Tags:      fields.Tags,
		Status:    models.StatusPublished,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.Insert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// FetchDraft returns the author's draft, or ErrNoDraft.
func (r *Reconciler) FetchDraft(ctx context.Context, author primitive.ObjectID) (*models.Blog, error) {
	return r.store.FindDraftByAuthor(ctx, author)
}

func validatePublish(title, content string) error {
	if title == "" {
		return validationErr("title", "Title and content are required")
	}
	if content == "" {
		return validationErr("content", "Title and content are required")
	}
	// Bounds are in characters, not bytes, so multibyte text measures the
	// way it reads.
	if utf8.RuneCountInString(title) > maxTitleLen {
		return validationErr("title", fmt.Sprintf("Title cannot exceed %d characters", maxTitleLen))
	}
	if n := utf8.RuneCountInString(content); n < minContentLen {
		return validationErr("content", fmt.Sprintf("Content must be at least %d characters", minContentLen))
	} else if n > maxContentLen {
		return validationErr("content", fmt.Sprintf("Content cannot exceed %d characters", maxContentLen))
	}
	return nil
}

// applyFields overwrites only the provided fields, the preserve-on-omission
// half of the reconciliation asymmetry. Auto-save takes the other half by
// writing DraftFields wholesale.
func applyFields(b *models.Blog, title, content string, tags []string) {
	if title != "" {
		b.Title = title
	}
	if content != "" {
		b.Content = content
	}
	if tags != nil {
		b.Tags = dedupeTags(tags)
	}
}

// dedupeTags drops repeated tags, keeping first-seen order. Always returns a
// non-nil slice so drafts serialize with [] rather than null.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// mergeTags appends incoming tags to existing ones with set semantics:
// existing order first, then new tags in input order.
func mergeTags(existing, incoming []string) []string {
	return dedupeTags(append(dedupeTags(existing), incoming...))
}
