package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/pkg/apperr"
	"go-rewards-admin/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

const (
	otpValidity    = 5 * time.Minute
	otpMaxAttempts = 5
)

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ResetPassword(email, oldPassword, newPassword string) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Heartbeat(userID uuid.UUID) error

	// IssueOTP creates a one-time password for a member phone. The plain code
	// is returned for the SMS gateway to deliver; only a bcrypt hash is
	// stored.
	IssueOTP(phone string, otpType model.OTPType) (*OTPIssueResult, error)
	VerifyOTP(phone string, otpType model.OTPType, code string) (*model.User, error)
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type OTPIssueResult struct {
	Code      string    `json:"-"` // handed to the delivery channel, never serialized
	ExpiresAt time.Time `json:"expires_at"`
}

type authService struct {
	userRepo repository.UserRepository
	otpRepo  repository.OTPRepository
}

func NewAuthService(userRepo repository.UserRepository, otpRepo repository.OTPRepository) AuthService {
	return &authService{
		userRepo: userRepo,
		otpRepo:  otpRepo,
	}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Get role code
	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}

	// 5. Single session: rotate the token version so older tokens die
	newTokenVersion := uuid.New().String()
	now := time.Now()
	user.TokenVersion = newTokenVersion
	user.LastSeenAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.New("failed to update session")
	}

	// 6. Generate JWT token with TokenVersion
	emailStr := ""
	if user.Email != nil {
		emailStr = *user.Email
	}
	token, err := jwt.GenerateToken(user.ID, emailStr, user.FullName, roleCode, user.GetPrivilegeCodes(), newTokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}

	// 2. Verify old password
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}

	// 3. Set new password
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}

	// 4. Update in database and invalidate existing sessions
	user.TokenVersion = uuid.New().String()
	return s.userRepo.Update(user)
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	// 1. Validate JWT token
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	// 2. Find user by ID from token claims
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 3. Check if user is still active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 4. Check against DB for strict session (TokenVersion)
	if user.TokenVersion != claims.TokenVersion {
		return nil, errors.New("session expired (logged in on another device)")
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(userID uuid.UUID) error {
	return s.userRepo.UpdateLastSeen(userID)
}

func (s *authService) IssueOTP(phone string, otpType model.OTPType) (*OTPIssueResult, error) {
	// 1. Pre-registration OTPs have no user yet; every other type does
	var userID *uuid.UUID
	user, err := s.userRepo.FindByPhone(phone)
	if err == nil && user != nil {
		userID = &user.ID
	} else if otpType != model.OTPRegistration {
		return nil, apperr.NotFound("no member registered with phone %s", phone)
	}

	// 2. Generate a 6-digit code and store only its hash
	code, err := generateOTPCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	otp := &model.OTPMaster{
		UserID:    userID,
		Phone:     phone,
		CodeHash:  string(hash),
		Type:      otpType,
		ExpiresAt: time.Now().Add(otpValidity),
	}
	if err := s.otpRepo.Create(otp); err != nil {
		return nil, err
	}

	return &OTPIssueResult{Code: code, ExpiresAt: otp.ExpiresAt}, nil
}

func (s *authService) VerifyOTP(phone string, otpType model.OTPType, code string) (*model.User, error) {
	// 1. Only the newest unverified OTP counts
	otp, err := s.otpRepo.LatestUnverified(phone, otpType)
	if err != nil {
		return nil, err
	}
	if otp == nil {
		return nil, apperr.NotFound("no pending OTP for phone %s", phone)
	}

	if otp.Expired(time.Now()) {
		return nil, apperr.Validation("OTP has expired")
	}
	if otp.Attempts >= otpMaxAttempts {
		return nil, apperr.Conflict("too many failed attempts, request a new OTP")
	}

	// 2. Wrong codes burn an attempt
	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		otp.Attempts++
		_ = s.otpRepo.Save(otp)
		return nil, apperr.Validation("incorrect OTP")
	}

	now := time.Now()
	otp.VerifiedAt = &now
	if err := s.otpRepo.Save(otp); err != nil {
		return nil, err
	}

	if otp.UserID == nil {
		return nil, nil // pre-registration verification, no user yet
	}
	return s.userRepo.FindByID(*otp.UserID)
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
