package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/pkg/apperr"
)

func kycMember(t *testing.T, e *env, phone string) *model.User {
	t.Helper()
	user, err := e.users.RegisterMember(RegisterMemberRequest{
		Phone:           phone,
		FullName:        "KYC Member " + phone,
		StakeholderType: model.StakeholderRetailer,
		Actor:           "test",
	})
	require.NoError(t, err)
	require.NoError(t, e.users.TransitionBlockStatus(user.ID, model.StatusKYCPending, "admin"))
	return user
}

func TestSubmitDocumentAdvancesMember(t *testing.T) {
	e := newEnv(t)
	user := kycMember(t, e, "9300000001")

	doc, err := e.kyc.SubmitDocument(SubmitDocumentRequest{
		UserID:        user.ID,
		DocumentType:  "aadhaar",
		DocumentValue: "1234-5678-9012",
		Actor:         user.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, model.KYCPending, doc.VerificationStatus)

	got, err := e.users.GetMember(user.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusKYCSubmitted, got.ApprovalStatus)
}

func TestSubmitDocumentResubmissionRules(t *testing.T) {
	e := newEnv(t)
	user := kycMember(t, e, "9300000002")
	admin := uuid.New()

	doc, err := e.kyc.SubmitDocument(SubmitDocumentRequest{
		UserID:        user.ID,
		DocumentType:  "pan",
		DocumentValue: "ABCDE1234F",
		Actor:         user.ID.String(),
	})
	require.NoError(t, err)

	// A pending document cannot be submitted again
	_, err = e.kyc.SubmitDocument(SubmitDocumentRequest{
		UserID:        user.ID,
		DocumentType:  "pan",
		DocumentValue: "ABCDE1234F",
		Actor:         user.ID.String(),
	})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))

	// Reject it, then resubmission overwrites the same row
	require.NoError(t, e.kyc.SetDocumentStatus(DocumentDecisionRequest{
		DocumentID: doc.ID,
		AdminID:    admin,
		Verified:   false,
		Reason:     "blurry scan",
	}))

	resubmitted, err := e.kyc.SubmitDocument(SubmitDocumentRequest{
		UserID:        user.ID,
		DocumentType:  "pan",
		DocumentValue: "ABCDE1234F",
		DocumentURL:   "https://files.example.com/pan-2.jpg",
		Actor:         user.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, doc.ID, resubmitted.ID)
	require.Equal(t, model.KYCPending, resubmitted.VerificationStatus)
	require.Empty(t, resubmitted.RejectionReason)

	docs, err := e.kyc.DocumentsForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestVerifiedDocumentIsFinal(t *testing.T) {
	e := newEnv(t)
	user := kycMember(t, e, "9300000003")
	admin := uuid.New()

	doc, err := e.kyc.SubmitDocument(SubmitDocumentRequest{
		UserID:        user.ID,
		DocumentType:  "aadhaar",
		DocumentValue: "1234-5678-9012",
		Actor:         user.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, e.kyc.SetDocumentStatus(DocumentDecisionRequest{
		DocumentID: doc.ID,
		AdminID:    admin,
		Verified:   true,
	}))

	_, err = e.kyc.SubmitDocument(SubmitDocumentRequest{
		UserID:        user.ID,
		DocumentType:  "aadhaar",
		DocumentValue: "changed",
		Actor:         user.ID.String(),
	})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))

	// A decided document cannot be decided again
	err = e.kyc.SetDocumentStatus(DocumentDecisionRequest{
		DocumentID: doc.ID,
		AdminID:    admin,
		Verified:   false,
		Reason:     "changed my mind",
	})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))
}

func TestRejectionRequiresReason(t *testing.T) {
	e := newEnv(t)
	user := kycMember(t, e, "9300000004")

	doc, err := e.kyc.SubmitDocument(SubmitDocumentRequest{
		UserID:        user.ID,
		DocumentType:  "pan",
		DocumentValue: "ABCDE1234F",
		Actor:         user.ID.String(),
	})
	require.NoError(t, err)

	err = e.kyc.SetDocumentStatus(DocumentDecisionRequest{
		DocumentID: doc.ID,
		AdminID:    uuid.New(),
		Verified:   false,
	})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))
}

func TestCompletingRequiredSetVerifiesMember(t *testing.T) {
	e := newEnv(t)
	user := kycMember(t, e, "9300000005")
	admin := uuid.New()

	aadhaar, err := e.kyc.SubmitDocument(SubmitDocumentRequest{
		UserID:        user.ID,
		DocumentType:  "aadhaar",
		DocumentValue: "1234-5678-9012",
		Actor:         user.ID.String(),
	})
	require.NoError(t, err)
	pan, err := e.kyc.SubmitDocument(SubmitDocumentRequest{
		UserID:        user.ID,
		DocumentType:  "pan",
		DocumentValue: "ABCDE1234F",
		Actor:         user.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, e.kyc.SetDocumentStatus(DocumentDecisionRequest{
		DocumentID: aadhaar.ID, AdminID: admin, Verified: true,
	}))

	// Half the set verified: still kyc_submitted
	got, err := e.users.GetMember(user.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusKYCSubmitted, got.ApprovalStatus)

	require.NoError(t, e.kyc.SetDocumentStatus(DocumentDecisionRequest{
		DocumentID: pan.ID, AdminID: admin, Verified: true,
	}))

	got, err = e.users.GetMember(user.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusKYCVerified, got.ApprovalStatus)

	// Nothing pending left for the review queue
	pending, total, err := e.kyc.PendingDocuments(10, 0)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, pending)
}
