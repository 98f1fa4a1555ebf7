package services

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/promptdir/backend/internal/models"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

var slugCollapse = regexp.MustCompile(`[^a-z0-9]+`)

// generateSlug derives a URL slug from a title: lowercase, runs of
// non-alphanumerics collapse to a single hyphen, edge hyphens trimmed.
func generateSlug(title string) string {
	slug := strings.ToLower(title)
	slug = slugCollapse.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

type BlogService struct {
	db *gorm.DB
}

func NewBlogService(db *gorm.DB) *BlogService {
	return &BlogService{db: db}
}

// PublishedListParams filters the public blog listing.
type PublishedListParams struct {
	Search string
	Limit  int
}

// ListPublished returns published posts, most recently published first.
// Search is a case-insensitive substring match over title, excerpt,
// content and tags.
func (s *BlogService) ListPublished(params PublishedListParams) ([]models.Blog, error) {
	var blogs []models.Blog
	if err := s.db.Where("status = ?", models.BlogStatusPublished).Find(&blogs).Error; err != nil {
		return nil, err
	}

	// Trimming only decides whether to filter at all; the needle keeps any
	// surrounding whitespace the caller sent.
	if strings.TrimSpace(params.Search) != "" {
		lowered := strings.ToLower(params.Search)
		filtered := make([]models.Blog, 0, len(blogs))
		for _, b := range blogs {
			if blogMatchesSearch(&b, lowered) {
				filtered = append(filtered, b)
			}
		}
		blogs = filtered
	}

	sort.SliceStable(blogs, func(i, j int) bool {
		return publishedAtOf(&blogs[i]) > publishedAtOf(&blogs[j])
	})

	if params.Limit > 0 && params.Limit < len(blogs) {
		blogs = blogs[:params.Limit]
	}

	return blogs, nil
}

// blogMatchesSearch reports whether the lowercased needle appears in the
// post's title, excerpt, content or any tag.
func blogMatchesSearch(b *models.Blog, lowered string) bool {
	if strings.Contains(strings.ToLower(b.Title), lowered) ||
		strings.Contains(strings.ToLower(b.Excerpt), lowered) ||
		strings.Contains(strings.ToLower(b.Content), lowered) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), lowered) {
			return true
		}
	}
	return false
}

// publishedAtOf orders posts with no publish timestamp last.
func publishedAtOf(b *models.Blog) int64 {
	if b.PublishedAt != nil {
		return *b.PublishedAt
	}
	return 0
}

// GetBySlug resolves a published post by slug. Draft posts are invisible
// on this path.
func (s *BlogService) GetBySlug(slug string) (*models.Blog, error) {
	var blog models.Blog
	err := s.db.Where("slug = ? AND status = ?", slug, models.BlogStatusPublished).First(&blog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("blog post not found")
		}
		return nil, err
	}
	return &blog, nil
}

// GetByID returns a post regardless of status, for the editorial view.
func (s *BlogService) GetByID(id string) (*models.Blog, error) {
	var blog models.Blog
	if err := s.db.First(&blog, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("blog post not found")
		}
		return nil, err
	}
	return &blog, nil
}

// ListAll returns every post, drafts included, newest first.
func (s *BlogService) ListAll() ([]models.Blog, error) {
	var blogs []models.Blog
	if err := s.db.Order("created_at DESC").Find(&blogs).Error; err != nil {
		return nil, err
	}
	return blogs, nil
}

// CreateBlogRequest is the editorial creation payload. Slug is derived
// from the title when not supplied.
type CreateBlogRequest struct {
	Title      string   `json:"title" binding:"required"`
	Slug       string   `json:"slug"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content" binding:"required"`
	AuthorName string   `json:"authorName"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status"`
}

// Create stores a new post. Posts created directly as published get a
// publish timestamp at creation time.
func (s *BlogService) Create(req *CreateBlogRequest) (*models.Blog, error) {
	slug := req.Slug
	if slug == "" {
		slug = generateSlug(req.Title)
	}
	if slug == "" {
		return nil, response.NewBadRequest("title produces an empty slug")
	}

	var count int64
	if err := s.db.Model(&models.Blog{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("a blog post with slug '" + slug + "' already exists")
	}

	status := req.Status
	if status == "" {
		status = models.BlogStatusDraft
	}
	if status != models.BlogStatusDraft && status != models.BlogStatusPublished {
		return nil, response.NewBadRequest("invalid status: " + status)
	}

	blog := models.Blog{
		ID:         uuid.NewString(),
		Slug:       slug,
		Title:      req.Title,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		AuthorName: req.AuthorName,
		Tags:       req.Tags,
		Status:     status,
	}
	if status == models.BlogStatusPublished {
		now := models.NowMillis()
		blog.PublishedAt = &now
	}

	if err := s.db.Create(&blog).Error; err != nil {
		return nil, err
	}
	return &blog, nil
}

// UpdateBlogRequest is an explicit optional-field patch.
type UpdateBlogRequest struct {
	Title      *string   `json:"title"`
	Slug       *string   `json:"slug"`
	Excerpt    *string   `json:"excerpt"`
	Content    *string   `json:"content"`
	AuthorName *string   `json:"authorName"`
	Tags       *[]string `json:"tags"`
	Status     *string   `json:"status"`
}

// buildBlogPatch converts the set fields into a column patch against the
// current record. The publish timestamp is written exactly once: only a
// transition into published on a post that has never carried one sets it.
func buildBlogPatch(current *models.Blog, req *UpdateBlogRequest) (map[string]interface{}, error) {
	patch := map[string]interface{}{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Slug != nil {
		slug := *req.Slug
		if slug == "" {
			return nil, response.NewBadRequest("slug cannot be empty")
		}
		patch["slug"] = slug
	}
	if req.Excerpt != nil {
		patch["excerpt"] = *req.Excerpt
	}
	if req.Content != nil {
		patch["content"] = *req.Content
	}
	if req.AuthorName != nil {
		patch["author_name"] = *req.AuthorName
	}
	if req.Tags != nil {
		patch["tags"] = models.StringList(*req.Tags)
	}
	if req.Status != nil {
		status := *req.Status
		if status != models.BlogStatusDraft && status != models.BlogStatusPublished {
			return nil, response.NewBadRequest("invalid status: " + status)
		}
		patch["status"] = status
		if status == models.BlogStatusPublished &&
			current.Status != models.BlogStatusPublished &&
			current.PublishedAt == nil {
			patch["published_at"] = models.NowMillis()
		}
	}
	return patch, nil
}

// Update applies a partial patch. A slug change is checked for collisions
// against other posts.
func (s *BlogService) Update(id string, req *UpdateBlogRequest) (*models.Blog, error) {
	current, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	patch, err := buildBlogPatch(current, req)
	if err != nil {
		return nil, err
	}

	if newSlug, ok := patch["slug"].(string); ok && newSlug != current.Slug {
		var count int64
		if err := s.db.Model(&models.Blog{}).Where("slug = ? AND id <> ?", newSlug, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, response.NewConflict("a blog post with slug '" + newSlug + "' already exists")
		}
	}

	if len(patch) > 0 {
		patch["updated_at"] = models.NowMillis()
		if err := s.db.Model(&models.Blog{}).Where("id = ?", id).Updates(patch).Error; err != nil {
			return nil, err
		}
	}

	return s.GetByID(id)
}

// Delete removes a post by ID.
func (s *BlogService) Delete(id string) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.db.Delete(&models.Blog{}, "id = ?", id).Error
}
