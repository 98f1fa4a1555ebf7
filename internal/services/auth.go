package services

import (
	"errors"

	"github.com/promptdir/backend/internal/models"
	"github.com/promptdir/backend/internal/utils"
	"github.com/promptdir/backend/pkg/logger"
	"github.com/promptdir/backend/pkg/response"
	"gorm.io/gorm"
)

// localSubjectPrefix marks moderator accounts created locally rather than
// synced from the identity provider.
const localSubjectPrefix = "local:"

type AuthService struct {
	db          *gorm.DB
	expireHours int
}

func NewAuthService(db *gorm.DB, expireHours int) *AuthService {
	return &AuthService{db: db, expireHours: expireHours}
}

// LoginRequest is the local moderator login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login authenticates a local moderator account by email and password.
// Provider-synced users have no password hash and cannot log in here.
func (s *AuthService) Login(req *LoginRequest) (*LoginResult, error) {
	var user models.User
	err := s.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}

	if user.Password == "" || !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	token, err := utils.GenerateToken(user.SubjectID, user.Name, user.Role, s.expireHours)
	if err != nil {
		return nil, err
	}

	logger.Get().Info().Str("subject", user.SubjectID).Msg("Moderator login")
	return &LoginResult{Token: token, User: &user}, nil
}

// CreateAdminIfNotExists seeds the initial local admin account on first
// boot. A second boot with the account present is a no-op.
func (s *AuthService) CreateAdminIfNotExists(email, password, name string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ? AND role = ?", email, models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		SubjectID: localSubjectPrefix + email,
		Name:      name,
		Email:     email,
		Role:      models.RoleAdmin,
		Password:  hash,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Get().Info().Str("email", email).Msg("Initial admin account created")
	return nil
}

// ChangePassword updates a local account's password after verifying the
// current one.
func (s *AuthService) ChangePassword(subjectID, oldPassword, newPassword string) error {
	var user models.User
	if err := s.db.Where("subject_id = ?", subjectID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("user not found")
		}
		return err
	}

	if user.Password == "" {
		return response.NewBadRequest("account has no local password")
	}
	if !utils.CheckPassword(oldPassword, user.Password) {
		return response.NewUnauthorized("current password is incorrect")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.Model(&user).Updates(map[string]interface{}{
		"password":   hash,
		"updated_at": models.NowMillis(),
	}).Error
}
