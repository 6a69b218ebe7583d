package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/pkg/apperr"
)

// maxReferralDepth bounds the referrer chain walk, mirroring the tree-depth
// guard in the hierarchy service.
const maxReferralDepth = 32

// RegisterMemberRequest creates a program member (retailer, electrician or
// counter-sales agent) together with their stakeholder profile.
type RegisterMemberRequest struct {
	Phone            string                `json:"phone" validate:"required,indian_mobile"`
	FullName         string                `json:"full_name" validate:"required"`
	Email            *string               `json:"email,omitempty" validate:"omitempty,email"`
	StakeholderType  model.StakeholderType `json:"stakeholder_type" validate:"required,oneof=retailer electrician counter_sales"`
	UserTypeEntityID *uuid.UUID            `json:"user_type_entity_id,omitempty"`
	ReferrerPhone    string                `json:"referrer_phone,omitempty"`

	// Profile fields, used depending on StakeholderType
	ShopName        string `json:"shop_name,omitempty"`
	GSTNumber       string `json:"gst_number,omitempty"`
	CounterSize     string `json:"counter_size,omitempty"`
	LicenseNumber   string `json:"license_number,omitempty"`
	YearsExperience int    `json:"years_experience,omitempty"`
	CounterName     string `json:"counter_name,omitempty"`

	Actor string `json:"-"`
}

type AssignScopeRequest struct {
	UserID           uuid.UUID  `json:"user_id" validate:"uuid_required"`
	UserTypeEntityID *uuid.UUID `json:"user_type_entity_id,omitempty"`
	LocationEntityID *uuid.UUID `json:"location_entity_id,omitempty"`
	SKUEntityID      *uuid.UUID `json:"sku_entity_id,omitempty"`
	Actor            string     `json:"-"`
}

type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	RoleCode string `json:"role_code" validate:"required"`
	Actor    string `json:"-"`
}

type UserService interface {
	RegisterMember(req RegisterMemberRequest) (*model.User, error)
	GetMember(id uuid.UUID) (*model.User, error)
	ListMembers(filter repository.MemberFilter) ([]model.User, int64, error)
	// TransitionBlockStatus moves a member along the registration/approval
	// state machine, rejecting transitions the machine does not allow and
	// concurrent writers that got there first.
	TransitionBlockStatus(userID uuid.UUID, to model.BlockStatus, actor string) error
	// ChangeReferrer revalidates the referral chain so the forest stays
	// acyclic.
	ChangeReferrer(userID uuid.UUID, newReferrerID *uuid.UUID, actor string) error
	AssignScope(req AssignScopeRequest) (*model.UserScopeMapping, error)
	ScopesForUser(userID uuid.UUID) ([]model.UserScopeMapping, error)

	CreateAdmin(req CreateAdminRequest) (*model.User, error)
	ListAdmins() ([]model.User, error)
	SetAdminPrivileges(userID uuid.UUID, codes []string, actor string) error
	DeactivateAdmin(userID uuid.UUID, actor string) error
}

type userService struct {
	userRepo      repository.UserRepository
	profileRepo   repository.ProfileRepository
	roleRepo      repository.RoleRepository
	privilegeRepo repository.PrivilegeRepository
	auditRepo     repository.AuditRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	roleRepo repository.RoleRepository,
	privilegeRepo repository.PrivilegeRepository,
	auditRepo repository.AuditRepository,
) UserService {
	return &userService{
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		roleRepo:      roleRepo,
		privilegeRepo: privilegeRepo,
		auditRepo:     auditRepo,
	}
}

func (s *userService) RegisterMember(req RegisterMemberRequest) (*model.User, error) {
	// 1. Phone is the member identity; duplicates are a conflict
	if existing, err := s.userRepo.FindByPhone(req.Phone); err == nil && existing != nil {
		return nil, apperr.Conflict("phone %s is already registered", req.Phone)
	}

	if !req.StakeholderType.IsValid() {
		return nil, apperr.Validation("unknown stakeholder type %q", req.StakeholderType)
	}

	// 2. Resolve the referrer, if named
	var referrerID *uuid.UUID
	if req.ReferrerPhone != "" {
		if req.ReferrerPhone == req.Phone {
			return nil, apperr.Validation("member cannot refer themselves")
		}
		referrer, err := s.userRepo.FindByPhone(req.ReferrerPhone)
		if err != nil {
			return nil, apperr.NotFound("referrer phone %s", req.ReferrerPhone)
		}
		if referrer.ApprovalStatus != model.StatusApproved {
			return nil, apperr.Validation("referrer %s is not an approved member", req.ReferrerPhone)
		}
		referrerID = &referrer.ID
	}

	user := &model.User{
		Phone:            req.Phone,
		Email:            req.Email,
		FullName:         req.FullName,
		StakeholderType:  req.StakeholderType,
		UserTypeEntityID: req.UserTypeEntityID,
		ReferrerID:       referrerID,
		ApprovalStatus:   model.StatusBasicRegistration,
		IsActive:         true,
	}
	user.CreatedBy = req.Actor

	// 3. User and stakeholder profile land together or not at all
	err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(tx, user); err != nil {
			return err
		}
		return s.createProfile(tx, user, req)
	})
	if err != nil {
		return nil, err
	}

	s.writeAudit(req.Actor, "user", user.ID.String(), "register")
	return user, nil
}

func (s *userService) createProfile(tx *gorm.DB, user *model.User, req RegisterMemberRequest) error {
	switch req.StakeholderType {
	case model.StakeholderRetailer:
		p := &model.RetailerProfile{
			UserID:      user.ID,
			ShopName:    req.ShopName,
			GSTNumber:   req.GSTNumber,
			CounterSize: req.CounterSize,
		}
		p.CreatedBy = req.Actor
		return s.profileRepo.CreateRetailer(tx, p)
	case model.StakeholderElectrician:
		p := &model.ElectricianProfile{
			UserID:          user.ID,
			LicenseNumber:   req.LicenseNumber,
			YearsExperience: req.YearsExperience,
		}
		p.CreatedBy = req.Actor
		return s.profileRepo.CreateElectrician(tx, p)
	default:
		p := &model.CounterSalesProfile{
			UserID:      user.ID,
			CounterName: req.CounterName,
		}
		p.CreatedBy = req.Actor
		return s.profileRepo.CreateCounterSales(tx, p)
	}
}

func (s *userService) GetMember(id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, apperr.NotFound("user %s", id)
	}
	return user, nil
}

func (s *userService) ListMembers(filter repository.MemberFilter) ([]model.User, int64, error) {
	return s.userRepo.FindMembers(filter)
}

func (s *userService) TransitionBlockStatus(userID uuid.UUID, to model.BlockStatus, actor string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return apperr.NotFound("user %s", userID)
	}

	from := user.ApprovalStatus
	if !from.CanTransitionTo(to) {
		return apperr.Validation("cannot move member from %s to %s", from, to)
	}

	// Conditional update: zero rows means another admin changed the status
	// between our read and write
	rows, err := s.userRepo.UpdateApprovalStatus(userID, from, to)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.Conflict("member %s status changed concurrently", userID)
	}

	s.writeAudit(actor, "user", userID.String(), "status:"+string(to))
	return nil
}

func (s *userService) ChangeReferrer(userID uuid.UUID, newReferrerID *uuid.UUID, actor string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return apperr.NotFound("user %s", userID)
	}

	if newReferrerID != nil {
		if *newReferrerID == userID {
			return apperr.Validation("member cannot refer themselves")
		}
		// Walk up from the new referrer; reaching the member means the
		// referral chain would loop
		cursor, err := s.userRepo.FindByID(*newReferrerID)
		if err != nil {
			return apperr.NotFound("referrer %s", *newReferrerID)
		}
		for depth := 0; cursor.ReferrerID != nil; depth++ {
			if depth >= maxReferralDepth {
				return apperr.Conflict("referral chain exceeds max depth at %s", cursor.ID)
			}
			if *cursor.ReferrerID == userID {
				return apperr.Validation("referrer change would create a referral cycle")
			}
			cursor, err = s.userRepo.FindByID(*cursor.ReferrerID)
			if err != nil {
				return err
			}
		}
	}

	user.ReferrerID = newReferrerID
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	s.writeAudit(actor, "user", userID.String(), "change_referrer")
	return nil
}

func (s *userService) AssignScope(req AssignScopeRequest) (*model.UserScopeMapping, error) {
	if _, err := s.userRepo.FindByID(req.UserID); err != nil {
		return nil, apperr.NotFound("user %s", req.UserID)
	}
	if req.UserTypeEntityID == nil && req.LocationEntityID == nil && req.SKUEntityID == nil {
		return nil, apperr.Validation("scope mapping must name at least one entity")
	}

	m := &model.UserScopeMapping{
		UserID:           req.UserID,
		UserTypeEntityID: req.UserTypeEntityID,
		LocationEntityID: req.LocationEntityID,
		SKUEntityID:      req.SKUEntityID,
	}
	m.CreatedBy = req.Actor
	if err := s.userRepo.CreateScopeMapping(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *userService) ScopesForUser(userID uuid.UUID) ([]model.UserScopeMapping, error) {
	return s.userRepo.ScopesForUser(userID)
}

func (s *userService) CreateAdmin(req CreateAdminRequest) (*model.User, error) {
	if existing, err := s.userRepo.FindByEmail(req.Email); err == nil && existing != nil {
		return nil, apperr.Conflict("email %s is already registered", req.Email)
	}

	role, err := s.roleRepo.FindByCode(req.RoleCode)
	if err != nil {
		return nil, apperr.NotFound("role %q", req.RoleCode)
	}

	user := &model.User{
		Phone:          req.Phone,
		Email:          &req.Email,
		FullName:       req.FullName,
		RoleID:         &role.ID,
		IsActive:       true,
		ApprovalStatus: model.StatusNone,
	}
	user.CreatedBy = req.Actor
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(nil, user); err != nil {
		return nil, err
	}

	// Admins start with their role's privilege set
	if len(role.Privileges) > 0 {
		if err := s.userRepo.UpdatePrivileges(user.ID, role.Privileges); err != nil {
			return nil, err
		}
	}

	s.writeAudit(req.Actor, "user", user.ID.String(), "create_admin")
	return user, nil
}

func (s *userService) ListAdmins() ([]model.User, error) {
	return s.userRepo.FindAll()
}

func (s *userService) SetAdminPrivileges(userID uuid.UUID, codes []string, actor string) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return apperr.NotFound("user %s", userID)
	}

	privileges, err := s.privilegeRepo.FindByCodes(codes)
	if err != nil {
		return err
	}
	if len(privileges) != len(codes) {
		return apperr.Validation("one or more privilege codes are unknown")
	}

	if err := s.userRepo.UpdatePrivileges(userID, privileges); err != nil {
		return err
	}
	// Force re-login so the new privilege set takes effect
	if err := s.userRepo.UpdateTokenVersion(userID, uuid.New().String()); err != nil {
		return err
	}

	s.writeAudit(actor, "user", userID.String(), "set_privileges")
	return nil
}

func (s *userService) DeactivateAdmin(userID uuid.UUID, actor string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return apperr.NotFound("user %s", userID)
	}
	if !user.IsActive {
		return apperr.Conflict("user %s is already inactive", userID)
	}

	user.IsActive = false
	user.TokenVersion = uuid.New().String() // kill the live session
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	s.writeAudit(actor, "user", userID.String(), "deactivate")
	return nil
}

func (s *userService) writeAudit(actor, entity, entityID, action string) {
	_ = s.auditRepo.WriteAudit(&model.AuditLog{
		ActorID:    actor,
		EntityName: entity,
		EntityID:   entityID,
		Action:     action,
	})
}
