package services

import (
	"errors"
	"sort"

	"github.com/promptdir/backend/internal/models"
	"github.com/promptdir/backend/pkg/logger"
	"github.com/promptdir/backend/pkg/response"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type CategoryService struct {
	db       *gorm.DB
	collator *collate.Collator
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{
		db:       db,
		collator: collate.New(language.English, collate.IgnoreCase),
	}
}

// List returns all categories ordered by display name using locale-aware
// collation, so names compare the way they read rather than by byte value.
func (s *CategoryService) List() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Find(&categories).Error; err != nil {
		return nil, err
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return s.collator.CompareString(categories[i].Name, categories[j].Name) < 0
	})

	return categories, nil
}

// GetByCategoryID resolves a category by its stable string identifier.
func (s *CategoryService) GetByCategoryID(categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("category_id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("category not found")
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategoryRequest is the admin creation payload.
type CreateCategoryRequest struct {
	CategoryID  string `json:"categoryId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Create adds a category. The stable identifier must be unique.
func (s *CategoryService) Create(req *CreateCategoryRequest) (*models.Category, error) {
	var count int64
	if err := s.db.Model(&models.Category{}).Where("category_id = ?", req.CategoryID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("category '" + req.CategoryID + "' already exists")
	}

	category := models.Category{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategoryRequest patches display fields. The stable identifier is
// immutable since prompts reference it.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

// Update applies a partial patch to a category's display fields.
func (s *CategoryService) Update(categoryID string, req *UpdateCategoryRequest) (*models.Category, error) {
	if _, err := s.GetByCategoryID(categoryID); err != nil {
		return nil, err
	}

	patch := map[string]interface{}{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Icon != nil {
		patch["icon"] = *req.Icon
	}

	if len(patch) > 0 {
		patch["updated_at"] = models.NowMillis()
		if err := s.db.Model(&models.Category{}).Where("category_id = ?", categoryID).Updates(patch).Error; err != nil {
			return nil, err
		}
	}

	return s.GetByCategoryID(categoryID)
}

// Delete removes a category. Prompts keep their category string; they show
// as uncategorized until reassigned.
func (s *CategoryService) Delete(categoryID string) error {
	if _, err := s.GetByCategoryID(categoryID); err != nil {
		return err
	}
	return s.db.Where("category_id = ?", categoryID).Delete(&models.Category{}).Error
}

// RecountPromptCounts recomputes each category's approved-prompt count
// from the prompts table. Run periodically rather than per-write, so the
// counts are eventually consistent.
func (s *CategoryService) RecountPromptCounts() error {
	var categories []models.Category
	if err := s.db.Find(&categories).Error; err != nil {
		return err
	}

	for _, category := range categories {
		var count int64
		if err := s.db.Model(&models.Prompt{}).
			Where("category = ? AND status = ?", category.CategoryID, models.PromptStatusApproved).
			Count(&count).Error; err != nil {
			return err
		}
		if count == category.PromptCount {
			continue
		}
		if err := s.db.Model(&models.Category{}).
			Where("id = ?", category.ID).
			Updates(map[string]interface{}{"prompt_count": count, "updated_at": models.NowMillis()}).Error; err != nil {
			return err
		}
		logger.Get().Debug().
			Str("category", category.CategoryID).
			Int64("from", category.PromptCount).
			Int64("to", count).
			Msg("Category prompt count updated")
	}

	return nil
}
