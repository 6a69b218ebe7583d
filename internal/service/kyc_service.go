package service

import (
	"time"

	"github.com/google/uuid"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/internal/ws"
	"go-rewards-admin/pkg/apperr"
)

// requiredKYCDocuments must all be verified before a member's KYC is
// considered complete.
var requiredKYCDocuments = []string{"aadhaar", "pan"}

type SubmitDocumentRequest struct {
	UserID        uuid.UUID `json:"user_id" validate:"uuid_required"`
	DocumentType  string    `json:"document_type" validate:"required"`
	DocumentValue string    `json:"document_value" validate:"required"`
	DocumentURL   string    `json:"document_url"`
	Actor         string    `json:"-"`
}

type DocumentDecisionRequest struct {
	DocumentID uuid.UUID
	AdminID    uuid.UUID
	Verified   bool
	Reason     string // required on rejection
}

type KYCService interface {
	// SubmitDocument stores a document or, for a previously rejected one,
	// overwrites it in place and resets it to pending. Verified documents
	// are final.
	SubmitDocument(req SubmitDocumentRequest) (*model.KYCDocument, error)
	// SetDocumentStatus records an admin verify/reject decision. When the
	// decision completes the member's required document set, the member's
	// block status advances to kyc_verified.
	SetDocumentStatus(req DocumentDecisionRequest) error
	DocumentsForUser(userID uuid.UUID) ([]model.KYCDocument, error)
	PendingDocuments(limit, offset int) ([]model.KYCDocument, int64, error)
}

type kycService struct {
	kycRepo   repository.KYCRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	wsHub     *ws.Hub
}

func NewKYCService(
	kycRepo repository.KYCRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	hub *ws.Hub,
) KYCService {
	return &kycService{
		kycRepo:   kycRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		wsHub:     hub,
	}
}

func (s *kycService) SubmitDocument(req SubmitDocumentRequest) (*model.KYCDocument, error) {
	user, err := s.userRepo.FindByID(req.UserID)
	if err != nil {
		return nil, apperr.NotFound("user %s", req.UserID)
	}

	// 1. One row per (user, document type); resubmission rules depend on the
	// existing row's status
	doc, err := s.kycRepo.FindByUserAndType(req.UserID, req.DocumentType)
	if err != nil {
		return nil, err
	}

	switch {
	case doc == nil:
		doc = &model.KYCDocument{
			UserID:             req.UserID,
			DocumentType:       req.DocumentType,
			DocumentValue:      req.DocumentValue,
			DocumentURL:        req.DocumentURL,
			VerificationStatus: model.KYCPending,
		}
		doc.CreatedBy = req.Actor
		if err := s.kycRepo.Create(doc); err != nil {
			return nil, err
		}
	case doc.VerificationStatus == model.KYCVerified:
		return nil, apperr.Conflict("%s document is already verified", req.DocumentType)
	case doc.VerificationStatus == model.KYCPending:
		return nil, apperr.Conflict("%s document is already under review", req.DocumentType)
	default:
		// Rejected: overwrite in place and reset to pending
		doc.DocumentValue = req.DocumentValue
		doc.DocumentURL = req.DocumentURL
		doc.VerificationStatus = model.KYCPending
		doc.RejectionReason = ""
		doc.VerifiedBy = nil
		doc.VerifiedAt = nil
		doc.UpdatedBy = req.Actor
		if err := s.kycRepo.Save(doc); err != nil {
			return nil, err
		}
	}

	// 2. First submission moves the member to kyc_submitted
	if user.ApprovalStatus == model.StatusKYCPending {
		if _, err := s.userRepo.UpdateApprovalStatus(req.UserID, model.StatusKYCPending, model.StatusKYCSubmitted); err != nil {
			return nil, err
		}
	}

	s.wsHub.Notify(ws.EventKYCSubmitted, map[string]interface{}{
		"user_id":       req.UserID,
		"document_type": req.DocumentType,
	})
	return doc, nil
}

func (s *kycService) SetDocumentStatus(req DocumentDecisionRequest) error {
	doc, err := s.kycRepo.FindByID(req.DocumentID)
	if err != nil {
		return apperr.NotFound("KYC document %s", req.DocumentID)
	}
	if doc.VerificationStatus != model.KYCPending {
		return apperr.Conflict("document %s is already %s", req.DocumentID, doc.VerificationStatus)
	}

	target := model.KYCRejected
	updates := map[string]interface{}{
		"verified_by": req.AdminID,
		"verified_at": time.Now(),
		"updated_at":  time.Now(),
	}
	if req.Verified {
		target = model.KYCVerified
	} else {
		if req.Reason == "" {
			return apperr.Validation("rejection requires a reason")
		}
		updates["rejection_reason"] = req.Reason
	}
	updates["verification_status"] = target

	// Conditional update: a second reviewer deciding the same pending
	// document loses the race instead of overwriting
	rows, err := s.kycRepo.TransitionStatus(req.DocumentID, model.KYCPending, updates)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.Conflict("document %s was decided concurrently", req.DocumentID)
	}

	if req.Verified {
		if err := s.advanceUserIfComplete(doc.UserID); err != nil {
			return err
		}
	}

	n := &model.Notification{
		UserID: &doc.UserID,
		Title:  "KYC " + string(target),
		Body:   "Your " + doc.DocumentType + " document has been " + string(target),
		Kind:   "kyc_update",
	}
	_ = s.auditRepo.CreateNotification(n)
	return nil
}

// advanceUserIfComplete moves the member to kyc_verified once every required
// document is verified.
func (s *kycService) advanceUserIfComplete(userID uuid.UUID) error {
	docs, err := s.kycRepo.DocumentsForUser(userID)
	if err != nil {
		return err
	}

	verified := map[string]bool{}
	for _, d := range docs {
		if d.VerificationStatus == model.KYCVerified {
			verified[d.DocumentType] = true
		}
	}
	for _, required := range requiredKYCDocuments {
		if !verified[required] {
			return nil
		}
	}

	// Best effort: the member may already be past kyc_submitted
	_, err = s.userRepo.UpdateApprovalStatus(userID, model.StatusKYCSubmitted, model.StatusKYCVerified)
	return err
}

func (s *kycService) DocumentsForUser(userID uuid.UUID) ([]model.KYCDocument, error) {
	return s.kycRepo.DocumentsForUser(userID)
}

func (s *kycService) PendingDocuments(limit, offset int) ([]model.KYCDocument, int64, error) {
	return s.kycRepo.PendingDocuments(limit, offset)
}
