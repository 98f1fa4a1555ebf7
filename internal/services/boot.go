package services

import (
	"github.com/promptdir/backend/internal/models"
	"gorm.io/gorm"
)

// BootService assembles the aggregate the frontend loads on startup, so
// the first paint needs a single request.
type BootService struct {
	db         *gorm.DB
	categories *CategoryService
	prompts    *PromptService
}

func NewBootService(db *gorm.DB) *BootService {
	return &BootService{
		db:         db,
		categories: NewCategoryService(db),
		prompts:    NewPromptService(db),
	}
}

// BootData is the startup aggregate.
type BootData struct {
	Categories    []models.Category `json:"categories"`
	RecentPrompts []PromptSummary   `json:"recentPrompts"`
	Stats         BootStats         `json:"stats"`
}

// BootStats carries the headline numbers for the landing page.
type BootStats struct {
	ApprovedPrompts int64 `json:"approvedPrompts"`
	PublishedBlogs  int64 `json:"publishedBlogs"`
	TotalUsage      int64 `json:"totalUsage"`
}

// Load gathers categories, the latest approved prompts and headline stats.
func (s *BootService) Load() (*BootData, error) {
	categories, err := s.categories.List()
	if err != nil {
		return nil, err
	}

	recent, err := s.prompts.ListApproved(ApprovedListParams{Sort: SortRecent, Limit: 12})
	if err != nil {
		return nil, err
	}

	var stats BootStats
	if err := s.db.Model(&models.Prompt{}).
		Where("status = ?", models.PromptStatusApproved).
		Count(&stats.ApprovedPrompts).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Blog{}).
		Where("status = ?", models.BlogStatusPublished).
		Count(&stats.PublishedBlogs).Error; err != nil {
		return nil, err
	}
	row := s.db.Model(&models.Prompt{}).
		Where("status = ?", models.PromptStatusApproved).
		Select("COALESCE(SUM(usage_count), 0)").
		Row()
	if err := row.Scan(&stats.TotalUsage); err != nil {
		return nil, err
	}

	return &BootData{
		Categories:    categories,
		RecentPrompts: recent,
		Stats:         stats,
	}, nil
}
