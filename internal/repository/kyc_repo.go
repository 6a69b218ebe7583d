package repository

import (
	"go-rewards-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KYCRepository interface {
	FindByID(id uuid.UUID) (*model.KYCDocument, error)
	FindByUserAndType(userID uuid.UUID, docType string) (*model.KYCDocument, error)
	DocumentsForUser(userID uuid.UUID) ([]model.KYCDocument, error)
	PendingDocuments(limit, offset int) ([]model.KYCDocument, int64, error)
	Create(doc *model.KYCDocument) error
	Save(doc *model.KYCDocument) error
	// TransitionStatus conditionally moves a document out of `from` and
	// returns the affected row count.
	TransitionStatus(id uuid.UUID, from model.KYCStatus, updates map[string]interface{}) (int64, error)
}

type kycRepo struct {
	db *gorm.DB
}

func NewKYCRepo(db *gorm.DB) KYCRepository {
	return &kycRepo{db}
}

func (r *kycRepo) FindByID(id uuid.UUID) (*model.KYCDocument, error) {
	var doc model.KYCDocument
	if err := r.db.Preload("User").First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *kycRepo) FindByUserAndType(userID uuid.UUID, docType string) (*model.KYCDocument, error) {
	var doc model.KYCDocument
	err := r.db.Where("user_id = ? AND document_type = ?", userID, docType).First(&doc).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *kycRepo) DocumentsForUser(userID uuid.UUID) ([]model.KYCDocument, error) {
	var docs []model.KYCDocument
	err := r.db.Where("user_id = ?", userID).Order("document_type").Find(&docs).Error
	return docs, err
}

func (r *kycRepo) PendingDocuments(limit, offset int) ([]model.KYCDocument, int64, error) {
	q := r.db.Model(&model.KYCDocument{}).Where("verification_status = ?", model.KYCPending)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var docs []model.KYCDocument
	err := q.Preload("User").Order("created_at ASC").Find(&docs).Error
	return docs, total, err
}

func (r *kycRepo) Create(doc *model.KYCDocument) error {
	return r.db.Create(doc).Error
}

func (r *kycRepo) Save(doc *model.KYCDocument) error {
	return r.db.Save(doc).Error
}

func (r *kycRepo) TransitionStatus(id uuid.UUID, from model.KYCStatus, updates map[string]interface{}) (int64, error) {
	result := r.db.Model(&model.KYCDocument{}).
		Where("id = ? AND verification_status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}
