package services

import (
	"errors"
	"strings"

	"github.com/promptdir/backend/internal/models"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// Add favorites a prompt for a user. Favoriting twice is a no-op: the
// unique (user, prompt) index guards the race between concurrent adds.
func (s *FavoriteService) Add(userID, promptID string) error {
	var count int64
	if err := s.db.Model(&models.Prompt{}).Where("id = ?", promptID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return response.NewNotFound("prompt not found")
	}

	fav := models.Favorite{UserID: userID, PromptID: promptID}
	if err := s.db.Create(&fav).Error; err != nil {
		if isDuplicateKey(err) {
			return nil
		}
		return err
	}
	return nil
}

// isDuplicateKey matches unique-constraint violations across the three
// supported drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// Remove unfavorites a prompt. Removing an absent favorite is a no-op.
func (s *FavoriteService) Remove(userID, promptID string) error {
	return s.db.Where("user_id = ? AND prompt_id = ?", userID, promptID).Delete(&models.Favorite{}).Error
}

// IsFavorited reports whether the user has favorited the prompt.
func (s *FavoriteService) IsFavorited(userID, promptID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Favorite{}).
		Where("user_id = ? AND prompt_id = ?", userID, promptID).
		Count(&count).Error
	return count > 0, err
}

// List returns the user's favorited prompts as directory summaries, most
// recently favorited first. Prompts that were deleted or unapproved since
// being favorited are dropped from the view.
func (s *FavoriteService) List(userID string) ([]PromptSummary, error) {
	var favorites []models.Favorite
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&favorites).Error; err != nil {
		return nil, err
	}
	if len(favorites) == 0 {
		return []PromptSummary{}, nil
	}

	ids := make([]string, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.PromptID)
	}

	var prompts []models.Prompt
	if err := s.db.Where("id IN ? AND status = ?", ids, models.PromptStatusApproved).Find(&prompts).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Prompt, len(prompts))
	for i := range prompts {
		byID[prompts[i].ID] = &prompts[i]
	}

	summaries := make([]PromptSummary, 0, len(favorites))
	for _, f := range favorites {
		if p, ok := byID[f.PromptID]; ok {
			summaries = append(summaries, projectSummary(p))
		}
	}
	return summaries, nil
}
