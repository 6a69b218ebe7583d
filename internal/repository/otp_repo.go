package repository

import (
	"go-rewards-admin/internal/model"

	"gorm.io/gorm"
)

type OTPRepository interface {
	Create(otp *model.OTPMaster) error
	// LatestUnverified returns the newest unverified OTP for a phone and
	// purpose, or nil.
	LatestUnverified(phone string, otpType model.OTPType) (*model.OTPMaster, error)
	Save(otp *model.OTPMaster) error
}

type otpRepo struct {
	db *gorm.DB
}

func NewOTPRepo(db *gorm.DB) OTPRepository {
	return &otpRepo{db}
}

func (r *otpRepo) Create(otp *model.OTPMaster) error {
	return r.db.Create(otp).Error
}

func (r *otpRepo) LatestUnverified(phone string, otpType model.OTPType) (*model.OTPMaster, error) {
	var otp model.OTPMaster
	err := r.db.Where("phone = ? AND type = ? AND verified_at IS NULL", phone, otpType).
		Order("created_at DESC").
		First(&otp).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *otpRepo) Save(otp *model.OTPMaster) error {
	return r.db.Save(otp).Error
}
