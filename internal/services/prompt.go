package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/promptdir/backend/internal/models"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

// excerptLimit is the maximum excerpt length before truncation.
const excerptLimit = 150

// Sort modes accepted by the approved-prompts listing.
const (
	SortUsage    = "usage"
	SortRecent   = "recent"
	SortFeatured = "featured"
)

type PromptService struct {
	db *gorm.DB
}

func NewPromptService(db *gorm.DB) *PromptService {
	return &PromptService{db: db}
}

// ApprovedListParams is the query shape for the public directory listing.
type ApprovedListParams struct {
	Category string
	Search   string
	Sort     string
	Limit    int
}

// PromptSummary is the projection exposed to list views. Full content is
// withheld from listings.
type PromptSummary struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Excerpt        string            `json:"excerpt"`
	Category       string            `json:"category"`
	AuthorName     string            `json:"authorName"`
	UsageCount     int64             `json:"usageCount"`
	ExecutionCount int64             `json:"executionCount"`
	Tags           models.StringList `json:"tags"`
	CreatedAt      int64             `json:"createdAt"`
	Featured       bool              `json:"featured"`
}

// ListApproved returns the ordered, capped, projected directory listing.
// The base set is fetched by indexed status (and category) lookup; search,
// sort, limit and projection run in memory over that set. Never errors on
// empty input: no matches yields an empty slice.
func (s *PromptService) ListApproved(params ApprovedListParams) ([]PromptSummary, error) {
	query := s.db.Where("status = ?", models.PromptStatusApproved)
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var prompts []models.Prompt
	if err := query.Find(&prompts).Error; err != nil {
		return nil, err
	}

	return filterSortProject(prompts, params), nil
}

// filterSortProject is the in-memory tail of the retrieval pipeline. Split
// out as a pure function so ordering and projection behavior is testable
// against a fixed collection.
func filterSortProject(prompts []models.Prompt, params ApprovedListParams) []PromptSummary {
	results := prompts

	// Trimming only decides whether to filter at all; the needle keeps any
	// surrounding whitespace the caller sent.
	if strings.TrimSpace(params.Search) != "" {
		lowered := strings.ToLower(params.Search)
		filtered := make([]models.Prompt, 0, len(results))
		for _, p := range results {
			if matchesSearch(&p, lowered) {
				filtered = append(filtered, p)
			}
		}
		results = filtered
	}

	sortPrompts(results, params.Sort)

	if params.Limit > 0 && params.Limit < len(results) {
		results = results[:params.Limit]
	}

	summaries := make([]PromptSummary, 0, len(results))
	for _, p := range results {
		summaries = append(summaries, projectSummary(&p))
	}
	return summaries
}

// matchesSearch reports whether the lowercased needle appears in the
// prompt's title, content, excerpt or any tag.
func matchesSearch(p *models.Prompt, lowered string) bool {
	if strings.Contains(strings.ToLower(p.Title), lowered) ||
		strings.Contains(strings.ToLower(p.Content), lowered) ||
		strings.Contains(strings.ToLower(p.Excerpt), lowered) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), lowered) {
			return true
		}
	}
	return false
}

// sortPrompts orders the slice per the requested mode. sort.SliceStable is
// stable, so records comparing equal keep their fetch order; that stability
// is the committed tie-break behavior.
func sortPrompts(prompts []models.Prompt, mode string) {
	switch mode {
	case SortUsage:
		sort.SliceStable(prompts, func(i, j int) bool {
			return prompts[i].UsageCount > prompts[j].UsageCount
		})
	case SortRecent:
		sort.SliceStable(prompts, func(i, j int) bool {
			return prompts[i].CreatedAt > prompts[j].CreatedAt
		})
	case SortFeatured:
		sort.SliceStable(prompts, func(i, j int) bool {
			return prompts[i].Featured && !prompts[j].Featured
		})
	default:
		// Featured first, then usage count descending.
		sort.SliceStable(prompts, func(i, j int) bool {
			if prompts[i].Featured != prompts[j].Featured {
				return prompts[i].Featured
			}
			return prompts[i].UsageCount > prompts[j].UsageCount
		})
	}
}

func projectSummary(p *models.Prompt) PromptSummary {
	tags := p.Tags
	if tags == nil {
		tags = models.StringList{}
	}
	return PromptSummary{
		ID:             p.ID,
		Title:          p.Title,
		Excerpt:        p.Excerpt,
		Category:       p.Category,
		AuthorName:     p.AuthorName,
		UsageCount:     p.UsageCount,
		ExecutionCount: p.ExecutionCount,
		Tags:           tags,
		CreatedAt:      p.CreatedAt,
		Featured:       p.Featured,
	}
}

// deriveExcerpt returns content unchanged when it fits, otherwise the first
// 150 characters plus an ellipsis marker. The limit counts runes, so
// multibyte content is never cut mid-character.
func deriveExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLimit {
		return content
	}
	return string(runes[:excerptLimit]) + "..."
}

// GetByID returns the full prompt record.
func (s *PromptService) GetByID(id string) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := s.db.First(&prompt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("prompt not found")
		}
		return nil, err
	}
	return &prompt, nil
}

// ListByAuthor returns an author's prompts, newest first, any status.
func (s *PromptService) ListByAuthor(authorID string) ([]models.Prompt, error) {
	var prompts []models.Prompt
	if err := s.db.Where("author_id = ?", authorID).Order("created_at DESC").Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

// AdminListParams filters the moderation listing.
type AdminListParams struct {
	Page     int
	PageSize int
	Status   string
	Category string
	Search   string
}

type AdminListResult struct {
	Items []models.Prompt `json:"items"`
	Total int64           `json:"total"`
}

// List returns the paginated moderation view across all statuses.
func (s *PromptService) List(params AdminListParams) (*AdminListResult, error) {
	var prompts []models.Prompt
	var total int64

	query := s.db.Model(&models.Prompt{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		query = query.Where("title LIKE ?", "%"+params.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}
	offset := (params.Page - 1) * params.PageSize
	if err := query.Offset(offset).Limit(params.PageSize).Order("created_at DESC").Find(&prompts).Error; err != nil {
		return nil, err
	}

	return &AdminListResult{Items: prompts, Total: total}, nil
}

// CreatePromptRequest is the submission payload. Excerpt is optional and
// derived from content when absent.
type CreatePromptRequest struct {
	Title    string   `json:"title" binding:"required"`
	Content  string   `json:"content" binding:"required"`
	Excerpt  string   `json:"excerpt"`
	Category string   `json:"category" binding:"required"`
	Tags     []string `json:"tags"`
}

// Create stores a new submission as pending with zeroed counters.
func (s *PromptService) Create(req *CreatePromptRequest, authorID, authorName string) (*models.Prompt, error) {
	excerpt := req.Excerpt
	if excerpt == "" {
		excerpt = deriveExcerpt(req.Content)
	}

	prompt := models.Prompt{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    excerpt,
		Category:   req.Category,
		Tags:       req.Tags,
		AuthorID:   authorID,
		AuthorName: authorName,
		Status:     models.PromptStatusPending,
	}

	if err := s.db.Create(&prompt).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

// UpdatePromptRequest is an explicit optional-field patch: only non-nil
// fields are applied.
type UpdatePromptRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Excerpt  *string   `json:"excerpt"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
	Featured *bool     `json:"featured"`
}

// buildPromptPatch converts the set fields into a column patch. A content
// change recomputes the excerpt unless the patch provides one explicitly.
func buildPromptPatch(req *UpdatePromptRequest) map[string]interface{} {
	patch := map[string]interface{}{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Content != nil {
		patch["content"] = *req.Content
		patch["excerpt"] = deriveExcerpt(*req.Content)
	}
	if req.Excerpt != nil {
		patch["excerpt"] = *req.Excerpt
	}
	if req.Category != nil {
		patch["category"] = *req.Category
	}
	if req.Tags != nil {
		patch["tags"] = models.StringList(*req.Tags)
	}
	if req.Featured != nil {
		patch["featured"] = *req.Featured
	}
	return patch
}

// Update applies a partial field patch to an existing prompt.
func (s *PromptService) Update(id string, req *UpdatePromptRequest) (*models.Prompt, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}

	patch := buildPromptPatch(req)
	if len(patch) > 0 {
		patch["updated_at"] = models.NowMillis()
		if err := s.db.Model(&models.Prompt{}).Where("id = ?", id).Updates(patch).Error; err != nil {
			return nil, err
		}
	}

	return s.GetByID(id)
}

// UpdateStatus moves a prompt to any of the three states. Deliberately
// unconditional: re-approving an approved prompt succeeds and re-timestamps
// updated_at.
func (s *PromptService) UpdateStatus(id, status string) (*models.Prompt, error) {
	if status != models.PromptStatusPending && status != models.PromptStatusApproved && status != models.PromptStatusRejected {
		return nil, response.NewBadRequest("invalid status: " + status)
	}

	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}

	patch := map[string]interface{}{
		"status":     status,
		"updated_at": models.NowMillis(),
	}
	if err := s.db.Model(&models.Prompt{}).Where("id = ?", id).Updates(patch).Error; err != nil {
		return nil, err
	}

	return s.GetByID(id)
}

// Delete removes a prompt and its favorites.
func (s *PromptService) Delete(id string) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Prompt{}, "id = ?", id).Error
	})
}

// validateDelta checks a counter increment amount. The omitted-delta
// default of 1 is resolved by the caller; anything non-positive that
// reaches the service is rejected before any write.
func validateDelta(delta int64) (int64, error) {
	if delta <= 0 {
		return 0, response.NewBadRequest("delta must be a positive number")
	}
	return delta, nil
}

// IncrementUsageCount atomically adds delta to the usage counter and
// returns the new value.
func (s *PromptService) IncrementUsageCount(id string, delta int64) (int64, error) {
	return s.incrementCounter(id, "usage_count", delta)
}

// IncrementExecutionCount atomically adds delta to the execution counter
// and returns the new value.
func (s *PromptService) IncrementExecutionCount(id string, delta int64) (int64, error) {
	return s.incrementCounter(id, "execution_count", delta)
}

// incrementCounter performs a single store-side counter = counter + delta
// update; per-row atomicity is the only concurrency guarantee relied on.
func (s *PromptService) incrementCounter(id, column string, delta int64) (int64, error) {
	inc, err := validateDelta(delta)
	if err != nil {
		return 0, err
	}

	result := s.db.Model(&models.Prompt{}).Where("id = ?", id).Updates(map[string]interface{}{
		column:       gorm.Expr(column+" + ?", inc),
		"updated_at": models.NowMillis(),
	})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, response.NewNotFound("prompt not found")
	}

	var prompt models.Prompt
	if err := s.db.First(&prompt, "id = ?", id).Error; err != nil {
		return 0, err
	}
	if column == "usage_count" {
		return prompt.UsageCount, nil
	}
	return prompt.ExecutionCount, nil
}
