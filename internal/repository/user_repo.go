package repository

import (
	"go-rewards-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberFilter narrows member listings for the admin panel.
type MemberFilter struct {
	StakeholderType model.StakeholderType
	ApprovalStatus  model.BlockStatus
	Search          string // matched against phone and full name
	Limit           int
	Offset          int
}

type UserRepository interface {
	FindByEmail(email string) (*model.User, error)
	FindByPhone(phone string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	Create(tx *gorm.DB, user *model.User) error
	Update(user *model.User) error
	Delete(id uuid.UUID) error
	FindAll() ([]model.User, error)
	FindMembers(filter MemberFilter) ([]model.User, int64, error)
	UpdateApprovalStatus(id uuid.UUID, from, to model.BlockStatus) (int64, error)
	UpdatePassword(userID uuid.UUID, hashedPassword string) error
	UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege) error
	UpdateTokenVersion(userID uuid.UUID, version string) error
	UpdateLastSeen(userID uuid.UUID) error

	CreateScopeMapping(m *model.UserScopeMapping) error
	ScopesForUser(userID uuid.UUID) ([]model.UserScopeMapping, error)

	Transaction(fn func(tx *gorm.DB) error) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Role").Preload("Privileges").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByPhone(phone string) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("UserTypeEntity").Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Role").Preload("Privileges").Preload("UserTypeEntity").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(tx *gorm.DB, user *model.User) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(user).Error
}

func (r *userRepo) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *userRepo) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepo) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Preload("Role").Preload("Privileges").Where("role_id IS NOT NULL").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) FindMembers(filter MemberFilter) ([]model.User, int64, error) {
	q := r.db.Model(&model.User{}).Where("role_id IS NULL") // members have no admin role
	if filter.StakeholderType != "" {
		q = q.Where("stakeholder_type = ?", filter.StakeholderType)
	}
	if filter.ApprovalStatus != "" {
		q = q.Where("approval_status = ?", filter.ApprovalStatus)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("phone LIKE ? OR full_name LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var users []model.User
	err := q.Preload("UserTypeEntity").Order("created_at DESC").Find(&users).Error
	return users, total, err
}

// UpdateApprovalStatus performs a conditional transition and returns the
// affected row count so the caller can detect a lost race.
func (r *userRepo) UpdateApprovalStatus(id uuid.UUID, from, to model.BlockStatus) (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND approval_status = ?", id, from).
		Update("approval_status", to)
	return result.RowsAffected, result.Error
}

func (r *userRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword).Error
}

func (r *userRepo) UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege) error {
	var user model.User
	if err := r.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	return r.db.Model(&user).Association("Privileges").Replace(privileges)
}

func (r *userRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("token_version", version).Error
}

func (r *userRepo) UpdateLastSeen(userID uuid.UUID) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("last_seen_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *userRepo) CreateScopeMapping(m *model.UserScopeMapping) error {
	return r.db.Create(m).Error
}

func (r *userRepo) ScopesForUser(userID uuid.UUID) ([]model.UserScopeMapping, error) {
	var scopes []model.UserScopeMapping
	err := r.db.Preload("LocationEntity").Preload("SKUEntity").
		Where("user_id = ?", userID).
		Find(&scopes).Error
	return scopes, err
}
