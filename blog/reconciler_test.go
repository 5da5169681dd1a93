package blog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

func newTestReconciler() (*Reconciler, *MemoryStore) {
	store := NewMemoryStore()
	return NewReconciler(store), store
}

func countDrafts(t *testing.T, store *MemoryStore, author primitive.ObjectID) int {
	t.Helper()
	blogs, err := store.ListByAuthor(context.Background(), author)
	if err != nil {
		t.Fatalf("ListByAuthor failed: %v", err)
	}
	n := 0
	for _, b := range blogs {
		if b.Status == models.StatusDraft {
			n++
		}
	}
	return n
}

func validContent() string {
	return strings.Repeat("a", 60)
}

func TestAutoSaveCreatesDraft(t *testing.T) {
	r, store := newTestReconciler()
	author := primitive.NewObjectID()

	b, err := r.AutoSave(context.Background(), author, "T", "", nil)
	if err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}
	if b.Status != models.StatusDraft {
		t.Errorf("expected draft status, got %q", b.Status)
	}
	if b.Title != "T" || b.Content != "" {
		t.Errorf("unexpected draft fields: title=%q content=%q", b.Title, b.Content)
	}
	if b.Tags == nil {
		t.Error("expected non-nil tags slice")
	}
	if countDrafts(t, store, author) != 1 {
		t.Errorf("expected 1 draft, got %d", countDrafts(t, store, author))
	}
}

func TestAutoSaveOverwritesNotDuplicates(t *testing.T) {
	r, store := newTestReconciler()
	author := primitive.NewObjectID()

	first, err := r.AutoSave(context.Background(), author, "one", "first pass", []string{"a"})
	if err != nil {
		t.Fatalf("first AutoSave failed: %v", err)
	}
	second, err := r.AutoSave(context.Background(), author, "two", "second pass", []string{"b"})
	if err != nil {
		t.Fatalf("second AutoSave failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("auto-save created a second draft: %s vs %s", first.ID.Hex(), second.ID.Hex())
	}
	if countDrafts(t, store, author) != 1 {
		t.Errorf("expected 1 draft, got %d", countDrafts(t, store, author))
	}

	final, err := store.FindByID(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if final.Title != "two" || final.Content != "second pass" {
		t.Errorf("draft not overwritten: title=%q content=%q", final.Title, final.Content)
	}
	if len(final.Tags) != 1 || final.Tags[0] != "b" {
		t.Errorf("tags not overwritten: %v", final.Tags)
	}
}

func TestAutoSaveBlanksOmittedFields(t *testing.T) {
	r, store := newTestReconciler()
	author := primitive.NewObjectID()

	if _, err := r.AutoSave(context.Background(), author, "title", "body", []string{"x"}); err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}
	b, err := r.AutoSave(context.Background(), author, "title only", "", nil)
	if err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}

	if b.Content != "" {
		t.Errorf("auto-save must not preserve omitted content, got %q", b.Content)
	}
	if len(b.Tags) != 0 {
		t.Errorf("auto-save must not preserve omitted tags, got %v", b.Tags)
	}

	stored, _ := store.FindDraftByAuthor(context.Background(), author)
	if stored.Content != "" {
		t.Errorf("stored draft kept stale content %q", stored.Content)
	}
}

func TestSingleDraftInvariantAcrossOperations(t *testing.T) {
	r, store := newTestReconciler()
	author := primitive.NewObjectID()
	ctx := context.Background()

	if _, err := r.AutoSave(ctx, author, "a", "", nil); err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}
	if _, err := r.SaveDraft(ctx, author, primitive.NilObjectID, "b", "explicit body", nil); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	if _, err := r.AutoSave(ctx, author, "c", "more", nil); err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}
	if countDrafts(t, store, author) != 1 {
		t.Fatalf("invariant broken: %d drafts", countDrafts(t, store, author))
	}

	if _, err := r.Publish(ctx, author, "Title", validContent(), nil); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if countDrafts(t, store, author) != 0 {
		t.Fatalf("draft survived publish: %d drafts", countDrafts(t, store, author))
	}
}

func TestPublishPromotesExistingDraft(t *testing.T) {
	r, _ := newTestReconciler()
	author := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := r.AutoSave(ctx, author, "T", "", nil)
	if err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}

	published, err := r.Publish(ctx, author, "Full Title", validContent(), []string{"go"})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if published.ID != draft.ID {
		t.Errorf("publish did not promote the draft: %s vs %s", published.ID.Hex(), draft.ID.Hex())
	}
	if published.Status != models.StatusPublished {
		t.Errorf("expected published status, got %q", published.Status)
	}
	if published.Title != "Full Title" {
		t.Errorf("expected overwritten title, got %q", published.Title)
	}

	if _, err := r.FetchDraft(ctx, author); !errors.Is(err, ErrNoDraft) {
		t.Errorf("expected ErrNoDraft after promotion, got %v", err)
	}
}

func TestPublishWithoutDraftCreates(t *testing.T) {
	r, store := newTestReconciler()
	author := primitive.NewObjectID()

	b, err := r.Publish(context.Background(), author, "Title", validContent(), nil)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if b.Status != models.StatusPublished {
		t.Errorf("expected published status, got %q", b.Status)
	}
	if b.Author != author {
		t.Errorf("author not set on created blog")
	}
	if countDrafts(t, store, author) != 0 {
		t.Errorf("publish created a draft")
	}
}

func TestPublishValidation(t *testing.T) {
	r, _ := newTestReconciler()
	author := primitive.NewObjectID()
	ctx := context.Background()

	cases := []struct {
		name    string
		title   string
		content string
		field   string
	}{
		{"missing title", "", validContent(), "title"},
		{"missing content", "Title", "", "content"},
		{"title too long", strings.Repeat("t", 51), validContent(), "title"},
		{"content too short", "Title", strings.Repeat("c", 49), "content"},
		{"content too long", "Title", strings.Repeat("c", 2001), "content"},
		{"multibyte content under floor", "Title", strings.Repeat("日", 30), "content"},
		{"multibyte content over cap", "Title", strings.Repeat("日", 2001), "content"},
	}

	for _, tc := range cases {
		_, err := r.Publish(ctx, author, tc.title, tc.content, nil)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
			continue
		}
		if verr.Field != tc.field {
			t.Errorf("%s: expected field %q, got %q", tc.name, tc.field, verr.Field)
		}
	}

	// Boundary values are accepted.
	if _, err := r.Publish(ctx, author, strings.Repeat("t", 50), strings.Repeat("c", 50), nil); err != nil {
		t.Errorf("boundary publish rejected: %v", err)
	}

	// Bounds count characters, not bytes: a 20-rune multibyte title and
	// 60-rune multibyte content are both within range.
	if _, err := r.Publish(ctx, primitive.NewObjectID(), strings.Repeat("日", 20), strings.Repeat("本", 60), nil); err != nil {
		t.Errorf("multibyte publish within bounds rejected: %v", err)
	}
}

func TestSaveDraftCreateRequiresTitleAndContent(t *testing.T) {
	r, _ := newTestReconciler()
	author := primitive.NewObjectID()

	_, err := r.SaveDraft(context.Background(), author, primitive.NilObjectID, "", "", nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSaveDraftCreateReconcilesExistingDraft(t *testing.T) {
	r, store := newTestReconciler()
	author := primitive.NewObjectID()
	ctx := context.Background()

	existing, err := r.AutoSave(ctx, author, "auto", "", nil)
	if err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}

	saved, err := r.SaveDraft(ctx, author, primitive.NilObjectID, "explicit", "explicit body", nil)
	if err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}

	if saved.ID != existing.ID {
		t.Errorf("explicit save created a second draft")
	}
	if countDrafts(t, store, author) != 1 {
		t.Errorf("expected 1 draft, got %d", countDrafts(t, store, author))
	}
}

func TestSaveDraftPreservesOmittedFields(t *testing.T) {
	r, _ := newTestReconciler()
	author := primitive.NewObjectID()
	ctx := context.Background()

	b, err := r.SaveDraft(ctx, author, primitive.NilObjectID, "keep me", "original body", []string{"x"})
	if err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}

	updated, err := r.SaveDraft(ctx, author, b.ID, "", "new body", nil)
	if err != nil {
		t.Fatalf("SaveDraft with id failed: %v", err)
	}

	if updated.Title != "keep me" {
		t.Errorf("omitted title not preserved, got %q", updated.Title)
	}
	if updated.Content != "new body" {
		t.Errorf("provided content not applied, got %q", updated.Content)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "x" {
		t.Errorf("omitted tags not preserved: %v", updated.Tags)
	}
}

func TestSaveDraftForcesDraftStatus(t *testing.T) {
	r, _ := newTestReconciler()
	author := primitive.NewObjectID()
	ctx := context.Background()

	published, err := r.Publish(ctx, author, "Title", validContent(), nil)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	demoted, err := r.SaveDraft(ctx, author, published.ID, "", "", nil)
	if err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	if demoted.Status != models.StatusDraft {
		t.Errorf("expected draft status, got %q", demoted.Status)
	}
}

func TestSaveDraftRejectsNonOwner(t *testing.T) {
	r, _ := newTestReconciler()
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	ctx := context.Background()

	b, err := r.SaveDraft(ctx, owner, primitive.NilObjectID, "mine", "private body", nil)
	if err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}

	if _, err := r.SaveDraft(ctx, stranger, b.ID, "stolen", "", nil); !errors.Is(err, ErrNotFoundOrUnauthorized) {
		t.Errorf("expected ErrNotFoundOrUnauthorized, got %v", err)
	}
}

func TestAutoDraftBecomesPublishedPost(t *testing.T) {
	// The spec scenario: an empty-bodied auto-draft is promoted wholesale by
	// a later publish.
	r, _ := newTestReconciler()
	author := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := r.AutoSave(ctx, author, "T", "", []string{})
	if err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}
	if draft.Title != "T" || draft.Content != "" {
		t.Fatalf("unexpected draft: %+v", draft)
	}

	published, err := r.Publish(ctx, author, "Full Title", validContent(), []string{"go"})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if published.ID != draft.ID {
		t.Errorf("expected same blog id across promotion")
	}
	if published.Status != models.StatusPublished || published.Title != "Full Title" {
		t.Errorf("unexpected published blog: %+v", published)
	}
}

func TestDedupeTags(t *testing.T) {
	got := dedupeTags([]string{"x", "x", "y", "x"})
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("dedupeTags = %v, want [x y]", got)
	}

	if got := dedupeTags(nil); got == nil || len(got) != 0 {
		t.Errorf("dedupeTags(nil) = %v, want empty non-nil", got)
	}
}

func TestMergeTags(t *testing.T) {
	got := mergeTags([]string{"x"}, []string{"x", "x", "y"})
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("mergeTags = %v, want [x y]", got)
	}
}
