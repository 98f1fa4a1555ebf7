package services

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/promptdir/backend/internal/models"
	"github.com/promptdir/backend/pkg/response"
)

func approvedFixture() []models.Prompt {
	return []models.Prompt{
		{
			ID: "a", Title: "Sermon Outline Helper", Content: "Draft a three-point sermon outline on GRACE",
			Excerpt: "Draft a three-point sermon outline", Category: "sermon-prep",
			Tags: models.StringList{"sermon", "outline"}, AuthorName: "Ann",
			Status: models.PromptStatusApproved, UsageCount: 5, Featured: false, CreatedAt: 100,
		},
		{
			ID: "b", Title: "Youth Game Night Ideas", Content: "List icebreaker games for teens",
			Excerpt: "List icebreaker games", Category: "youth-ministry",
			Tags: models.StringList{"games", "youth"}, AuthorName: "Ben",
			Status: models.PromptStatusApproved, UsageCount: 10, Featured: true, CreatedAt: 200,
		},
		{
			ID: "c", Title: "Newsletter Draft", Content: "Write a monthly newsletter intro",
			Excerpt: "Write a monthly newsletter", Category: "outreach",
			Tags: models.StringList{"newsletter"}, AuthorName: "Cam",
			Status: models.PromptStatusPending, UsageCount: 99, Featured: true, CreatedAt: 300,
		},
		{
			ID: "d", Title: "Worship Set Builder", Content: "Suggest a worship set around Psalm 23",
			Excerpt: "Suggest a worship set", Category: "worship",
			Tags: models.StringList{"worship", "music"}, AuthorName: "Dee",
			Status: models.PromptStatusApproved, UsageCount: 7, Featured: true, CreatedAt: 400,
		},
	}
}

// approvedOnly mirrors the indexed status fetch that precedes the
// in-memory pipeline, so the pure tail can be exercised on fixtures.
func approvedOnly(prompts []models.Prompt, category string) []models.Prompt {
	var out []models.Prompt
	for _, p := range prompts {
		if p.Status != models.PromptStatusApproved {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func ids(summaries []PromptSummary) []string {
	out := make([]string, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s.ID)
	}
	return out
}

func TestFilterSortProject_DefaultSort(t *testing.T) {
	prompts := []models.Prompt{
		{ID: "a", Status: models.PromptStatusApproved, UsageCount: 5, Featured: false},
		{ID: "b", Status: models.PromptStatusApproved, UsageCount: 10, Featured: true},
		{ID: "c", Status: models.PromptStatusPending, UsageCount: 99, Featured: true},
	}

	got := filterSortProject(approvedOnly(prompts, ""), ApprovedListParams{})
	want := []string{"b", "a"}

	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Errorf("result[%d] = %q, want %q (featured beats usage count; pending excluded)", i, gotIDs[i], want[i])
		}
	}
}

func TestFilterSortProject_StatusFilter(t *testing.T) {
	base := approvedOnly(approvedFixture(), "")
	got := filterSortProject(base, ApprovedListParams{})

	for _, s := range got {
		if s.ID == "c" {
			t.Error("pending prompt leaked into approved listing")
		}
	}
	if len(got) != 3 {
		t.Errorf("expected 3 approved results, got %d", len(got))
	}
}

func TestFilterSortProject_CategoryFilter(t *testing.T) {
	base := approvedOnly(approvedFixture(), "worship")
	got := filterSortProject(base, ApprovedListParams{Category: "worship"})

	if len(got) != 1 || got[0].ID != "d" {
		t.Fatalf("category filter: got %v, want [d]", ids(got))
	}
	for _, s := range got {
		if s.Category != "worship" {
			t.Errorf("result %s has category %q", s.ID, s.Category)
		}
	}
}

func TestFilterSortProject_SearchCaseInsensitive(t *testing.T) {
	base := approvedOnly(approvedFixture(), "")

	got := filterSortProject(base, ApprovedListParams{Search: "SERMON"})
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("search SERMON: got %v, want [a]", ids(got))
	}

	// Content is searched too, not just title/excerpt.
	got = filterSortProject(base, ApprovedListParams{Search: "psalm"})
	if len(got) != 1 || got[0].ID != "d" {
		t.Fatalf("search psalm: got %v, want [d]", ids(got))
	}

	// Tags participate in the match.
	got = filterSortProject(base, ApprovedListParams{Search: "MUSIC"})
	if len(got) != 1 || got[0].ID != "d" {
		t.Fatalf("search MUSIC (tag): got %v, want [d]", ids(got))
	}
}

func TestFilterSortProject_EmptySearchMatchesAll(t *testing.T) {
	base := approvedOnly(approvedFixture(), "")

	for _, search := range []string{"", "   ", "\t"} {
		got := filterSortProject(base, ApprovedListParams{Search: search})
		if len(got) != len(base) {
			t.Errorf("search %q should match everything: got %d of %d", search, len(got), len(base))
		}
	}
}

func TestFilterSortProject_SearchKeepsPadding(t *testing.T) {
	base := approvedOnly(approvedFixture(), "")

	// The padded needle matches raw: " sermon " appears with its spaces in
	// a's content.
	got := filterSortProject(base, ApprovedListParams{Search: " sermon "})
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("search %q: got %v, want [a]", " sermon ", ids(got))
	}

	// d's tag is "music" with no surrounding spaces, so the padded needle
	// no longer matches it.
	got = filterSortProject(base, ApprovedListParams{Search: " music "})
	if len(got) != 0 {
		t.Errorf("search %q: got %v, want no matches", " music ", ids(got))
	}
}

func TestFilterSortProject_SearchNoMatch(t *testing.T) {
	base := approvedOnly(approvedFixture(), "")
	got := filterSortProject(base, ApprovedListParams{Search: "zzz-no-such-term"})
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", ids(got))
	}
}

func TestFilterSortProject_SortModes(t *testing.T) {
	tests := []struct {
		sort string
		want []string
	}{
		{SortUsage, []string{"b", "d", "a"}},            // usage desc: 10, 7, 5
		{SortRecent, []string{"d", "b", "a"}},           // createdAt desc: 400, 200, 100
		{SortFeatured, []string{"b", "d", "a"}},         // featured first, fetch order kept on ties
		{"", []string{"b", "d", "a"}},                   // default: featured then usage desc
		{"unrecognized", []string{"b", "d", "a"}},       // unknown modes fall through to default
	}

	for _, tt := range tests {
		t.Run("sort="+tt.sort, func(t *testing.T) {
			base := approvedOnly(approvedFixture(), "")
			got := ids(filterSortProject(base, ApprovedListParams{Sort: tt.sort}))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("result[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFilterSortProject_Deterministic(t *testing.T) {
	base := approvedOnly(approvedFixture(), "")

	first := ids(filterSortProject(base, ApprovedListParams{Sort: SortFeatured}))
	for i := 0; i < 20; i++ {
		again := ids(filterSortProject(approvedOnly(approvedFixture(), ""), ApprovedListParams{Sort: SortFeatured}))
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d diverged: %v vs %v", i, again, first)
			}
		}
	}
}

func TestFilterSortProject_Limit(t *testing.T) {
	base := approvedOnly(approvedFixture(), "")

	tests := []struct {
		limit int
		want  int
	}{
		{0, 3},  // omitted
		{-5, 3}, // non-positive means no cap
		{2, 2},
		{10, 3}, // larger than the set
	}

	for _, tt := range tests {
		got := filterSortProject(base, ApprovedListParams{Limit: tt.limit})
		if len(got) != tt.want {
			t.Errorf("limit %d: got %d results, want %d", tt.limit, len(got), tt.want)
		}
	}

	// Truncation happens after sorting: limit 1 keeps the top-ranked row.
	got := filterSortProject(base, ApprovedListParams{Sort: SortUsage, Limit: 1})
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("limit after sort: got %v, want [b]", ids(got))
	}
}

func TestProjectSummary_Fields(t *testing.T) {
	p := &approvedFixture()[0]
	s := projectSummary(p)

	if s.ID != p.ID || s.Title != p.Title || s.Excerpt != p.Excerpt ||
		s.Category != p.Category || s.AuthorName != p.AuthorName ||
		s.UsageCount != p.UsageCount || s.ExecutionCount != p.ExecutionCount ||
		s.CreatedAt != p.CreatedAt || s.Featured != p.Featured {
		t.Error("summary fields do not mirror the source record")
	}
	if len(s.Tags) != len(p.Tags) {
		t.Errorf("tags not carried over: %v", s.Tags)
	}
}

func TestProjectSummary_NilTags(t *testing.T) {
	s := projectSummary(&models.Prompt{ID: "x"})
	if s.Tags == nil {
		t.Error("nil tags should project as an empty list, not null")
	}
}

func TestDeriveExcerpt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short content passes through", "short prompt", "short prompt"},
		{"empty content", "", ""},
		{"exactly at limit", strings.Repeat("x", 150), strings.Repeat("x", 150)},
		{"one over limit", strings.Repeat("x", 151), strings.Repeat("x", 150) + "..."},
		{"long content truncated", strings.Repeat("ab", 200), strings.Repeat("ab", 75) + "..."},
		{"multibyte cut on a rune boundary", strings.Repeat("x", 149) + "église", strings.Repeat("x", 149) + "é" + "..."},
		{"multibyte content within limit", strings.Repeat("é", 150), strings.Repeat("é", 150)},
		{"multibyte content over limit", strings.Repeat("祷", 151), strings.Repeat("祷", 150) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveExcerpt(tt.content)
			if got != tt.want {
				t.Errorf("deriveExcerpt() = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("deriveExcerpt() produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestValidateDelta(t *testing.T) {
	if _, err := validateDelta(-1); err == nil {
		t.Error("negative delta should be rejected")
	}
	if _, err := validateDelta(0); err == nil {
		t.Error("zero delta should be rejected")
	}

	got, err := validateDelta(3)
	if err != nil || got != 3 {
		t.Errorf("validateDelta(3) = %d, %v", got, err)
	}

	_, err = validateDelta(-1)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 400 {
		t.Errorf("expected invalid-argument error, got %v", err)
	}
}

func TestBuildPromptPatch(t *testing.T) {
	title := "New Title"
	content := strings.Repeat("y", 200)
	featured := true

	patch := buildPromptPatch(&UpdatePromptRequest{
		Title:    &title,
		Content:  &content,
		Featured: &featured,
	})

	if patch["title"] != "New Title" {
		t.Errorf("title = %v", patch["title"])
	}
	if patch["featured"] != true {
		t.Errorf("featured = %v", patch["featured"])
	}
	// A content change recomputes the excerpt with the 150-char rule.
	wantExcerpt := strings.Repeat("y", 150) + "..."
	if patch["excerpt"] != wantExcerpt {
		t.Errorf("excerpt = %v, want recomputed excerpt", patch["excerpt"])
	}
	if _, ok := patch["category"]; ok {
		t.Error("unset fields must not appear in the patch")
	}
	if _, ok := patch["tags"]; ok {
		t.Error("unset tags must not appear in the patch")
	}
}

func TestBuildPromptPatch_ExplicitExcerptWins(t *testing.T) {
	content := strings.Repeat("z", 300)
	excerpt := "hand-written excerpt"

	patch := buildPromptPatch(&UpdatePromptRequest{Content: &content, Excerpt: &excerpt})
	if patch["excerpt"] != "hand-written excerpt" {
		t.Errorf("explicit excerpt should override the derived one, got %v", patch["excerpt"])
	}
}

func TestBuildPromptPatch_Empty(t *testing.T) {
	patch := buildPromptPatch(&UpdatePromptRequest{})
	if len(patch) != 0 {
		t.Errorf("empty request should produce an empty patch, got %v", patch)
	}
}
