package services

import (
	"testing"

	"github.com/promptdir/backend/internal/models"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"10 Tips for Better AI Prompts", "10-tips-for-better-ai-prompts"},
		{"  Leading & Trailing Spaces  ", "leading-trailing-spaces"},
		{"Hello, World!", "hello-world"},
		{"already-a-slug", "already-a-slug"},
		{"UPPERCASE TITLE", "uppercase-title"},
		{"multiple   spaces --- and symbols!!!", "multiple-spaces-and-symbols"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := generateSlug(tt.title); got != tt.want {
				t.Errorf("generateSlug(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestBlogMatchesSearch(t *testing.T) {
	post := &models.Blog{
		Title:   "Planning a Youth Retreat",
		Excerpt: "A weekend away with the youth group",
		Content: "Checklists and schedules for a retreat weekend",
		Tags:    models.StringList{"ministry", "events"},
	}

	tests := []struct {
		name   string
		needle string
		want   bool
	}{
		{"title match", "retreat", true},
		{"excerpt match", "weekend away", true},
		{"content match", "checklists", true},
		{"tag-only match", "ministry", true},
		{"fields are lowered against the needle", "youth retreat", true},
		{"no match", "sermon", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := blogMatchesSearch(post, tt.needle); got != tt.want {
				t.Errorf("blogMatchesSearch(%q) = %v, want %v", tt.needle, got, tt.want)
			}
		})
	}
}

func TestBuildBlogPatch_PublishSetsTimestamp(t *testing.T) {
	current := &models.Blog{Status: models.BlogStatusDraft}
	status := models.BlogStatusPublished

	patch, err := buildBlogPatch(current, &UpdateBlogRequest{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patch["status"] != models.BlogStatusPublished {
		t.Errorf("status = %v", patch["status"])
	}
	if _, ok := patch["published_at"]; !ok {
		t.Error("first publish must set the publish timestamp")
	}
}

func TestBuildBlogPatch_PublishTimestampWriteOnce(t *testing.T) {
	firstPublish := int64(1700000000000)
	status := models.BlogStatusPublished

	// Republishing an already-published post keeps the original timestamp.
	current := &models.Blog{Status: models.BlogStatusPublished, PublishedAt: &firstPublish}
	patch, err := buildBlogPatch(current, &UpdateBlogRequest{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := patch["published_at"]; ok {
		t.Error("republish must not overwrite the publish timestamp")
	}

	// A post that was published, reverted to draft, then published again
	// still carries its first-publish timestamp.
	current = &models.Blog{Status: models.BlogStatusDraft, PublishedAt: &firstPublish}
	patch, err = buildBlogPatch(current, &UpdateBlogRequest{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := patch["published_at"]; ok {
		t.Error("re-publish after unpublish must not reset the timestamp")
	}
}

func TestBuildBlogPatch_UnpublishKeepsTimestamp(t *testing.T) {
	ts := int64(1700000000000)
	current := &models.Blog{Status: models.BlogStatusPublished, PublishedAt: &ts}
	status := models.BlogStatusDraft

	patch, err := buildBlogPatch(current, &UpdateBlogRequest{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patch["status"] != models.BlogStatusDraft {
		t.Errorf("status = %v", patch["status"])
	}
	if _, ok := patch["published_at"]; ok {
		t.Error("reverting to draft must not touch the publish timestamp")
	}
}

func TestBuildBlogPatch_InvalidStatus(t *testing.T) {
	bad := "archived"
	_, err := buildBlogPatch(&models.Blog{}, &UpdateBlogRequest{Status: &bad})
	if err == nil {
		t.Error("unknown status should be rejected")
	}
}

func TestBuildBlogPatch_EmptySlugRejected(t *testing.T) {
	empty := ""
	_, err := buildBlogPatch(&models.Blog{}, &UpdateBlogRequest{Slug: &empty})
	if err == nil {
		t.Error("empty slug should be rejected")
	}
}

func TestBuildBlogPatch_UnsetFieldsOmitted(t *testing.T) {
	title := "Updated Title"
	patch, err := buildBlogPatch(&models.Blog{}, &UpdateBlogRequest{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patch) != 1 || patch["title"] != "Updated Title" {
		t.Errorf("patch = %v, want only title", patch)
	}
}

func TestPublishedAtOf(t *testing.T) {
	ts := int64(42)
	if got := publishedAtOf(&models.Blog{PublishedAt: &ts}); got != 42 {
		t.Errorf("publishedAtOf = %d, want 42", got)
	}
	if got := publishedAtOf(&models.Blog{}); got != 0 {
		t.Errorf("missing timestamp should sort last, got %d", got)
	}
}
