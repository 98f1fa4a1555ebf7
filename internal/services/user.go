package services

import (
	"errors"

	"github.com/promptdir/backend/internal/models"
	"github.com/promptdir/backend/pkg/logger"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// IdentityProfile is the slice of an identity-provider event that the
// user record mirrors.
type IdentityProfile struct {
	SubjectID string
	Email     string
	Name      string
}

// GetBySubject resolves a user by the provider's subject id.
func (s *UserService) GetBySubject(subjectID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("subject_id = ?", subjectID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// UpsertFromIdentity creates the user for a subject id, or refreshes the
// profile fields when the record already exists. Both the created and
// updated provider events land here, so replays and out-of-order delivery
// converge on the same row.
func (s *UserService) UpsertFromIdentity(profile IdentityProfile) (*models.User, error) {
	var user models.User
	err := s.db.Where("subject_id = ?", profile.SubjectID).First(&user).Error
	if err == nil {
		patch := map[string]interface{}{
			"email":      profile.Email,
			"name":       profile.Name,
			"updated_at": models.NowMillis(),
		}
		if err := s.db.Model(&user).Updates(patch).Error; err != nil {
			return nil, err
		}
		return s.GetBySubject(profile.SubjectID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		SubjectID: profile.SubjectID,
		Email:     profile.Email,
		Name:      profile.Name,
		Role:      models.RoleUser,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	logger.Get().Info().Str("subject", profile.SubjectID).Msg("User created from identity event")
	return &user, nil
}

// DeleteBySubject removes the user and their favorites. Deleting an
// already-deleted subject is a no-op, so event replays are safe.
func (s *UserService) DeleteBySubject(subjectID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", subjectID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Where("subject_id = ?", subjectID).Delete(&models.User{}).Error
	})
}

// EnsureUser returns the user for a subject, creating a minimal record
// when the identity webhook has not delivered one yet.
func (s *UserService) EnsureUser(subjectID, name string) (*models.User, error) {
	user, err := s.GetBySubject(subjectID)
	if err == nil {
		return user, nil
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		return nil, err
	}
	return s.UpsertFromIdentity(IdentityProfile{SubjectID: subjectID, Name: name})
}

// SetRole changes a user's role.
func (s *UserService) SetRole(subjectID, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, response.NewBadRequest("invalid role: " + role)
	}
	if _, err := s.GetBySubject(subjectID); err != nil {
		return nil, err
	}
	patch := map[string]interface{}{"role": role, "updated_at": models.NowMillis()}
	if err := s.db.Model(&models.User{}).Where("subject_id = ?", subjectID).Updates(patch).Error; err != nil {
		return nil, err
	}
	return s.GetBySubject(subjectID)
}

// SetSubscribed flips the newsletter subscription flag.
func (s *UserService) SetSubscribed(subjectID string, subscribed bool) (*models.User, error) {
	if _, err := s.GetBySubject(subjectID); err != nil {
		return nil, err
	}
	patch := map[string]interface{}{"is_subscribed": subscribed, "updated_at": models.NowMillis()}
	if err := s.db.Model(&models.User{}).Where("subject_id = ?", subjectID).Updates(patch).Error; err != nil {
		return nil, err
	}
	return s.GetBySubject(subjectID)
}

// IncrementPromptViewCount bumps the per-user view counter.
func (s *UserService) IncrementPromptViewCount(subjectID string) error {
	return s.db.Model(&models.User{}).
		Where("subject_id = ?", subjectID).
		Updates(map[string]interface{}{
			"prompt_view_count": gorm.Expr("prompt_view_count + 1"),
			"updated_at":        models.NowMillis(),
		}).Error
}

// UserListParams filters the admin user listing.
type UserListParams struct {
	Page     int
	PageSize int
	Search   string
	Role     string
}

type UserListResult struct {
	Items []models.User `json:"items"`
	Total int64         `json:"total"`
}

// List returns the paginated admin user view.
func (s *UserService) List(params UserListParams) (*UserListResult, error) {
	var users []models.User
	var total int64

	query := s.db.Model(&models.User{})
	if params.Role != "" {
		query = query.Where("role = ?", params.Role)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
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
	if err := query.Offset(offset).Limit(params.PageSize).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	return &UserListResult{Items: users, Total: total}, nil
}
