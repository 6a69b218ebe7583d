package service

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/internal/ws"
	"go-rewards-admin/pkg/apperr"
	"go-rewards-admin/pkg/config"
)

// SubmitRedemptionRequest is a member's request to convert points.
type SubmitRedemptionRequest struct {
	UserID           uuid.UUID        `json:"user_id" validate:"uuid_required"`
	RewardKind       model.RewardKind `json:"reward_kind" validate:"required,oneof=amazon_voucher physical bank_transfer"`
	Points           int64            `json:"points"` // ignored for physical rewards
	PhysicalRewardID *uuid.UUID       `json:"physical_reward_id,omitempty"`
	Actor            string           `json:"-"`
}

type DecisionRequest struct {
	RedemptionID uuid.UUID
	AdminID      uuid.UUID
	Notes        string
}

// FulfillRequest closes out an approved redemption. For amazon_voucher kinds
// the marketplace order reference and raw order payload are recorded
// alongside.
type FulfillRequest struct {
	RedemptionID  uuid.UUID
	AdminID       uuid.UUID
	AmazonOrderID string
	OrderStatus   string
	OrderData     datatypes.JSON
}

type RedemptionService interface {
	Submit(req SubmitRedemptionRequest) (*model.Redemption, error)
	Approve(req DecisionRequest) error
	Reject(req DecisionRequest) error
	Escalate(req DecisionRequest) error
	Fulfill(req FulfillRequest) error
	Get(id uuid.UUID) (*model.Redemption, error)
	List(filter repository.RedemptionFilter) ([]model.Redemption, int64, error)
	AuditTrail(redemptionID uuid.UUID) ([]model.ApprovalAuditLog, error)
	SetThreshold(t *model.RedemptionThreshold) error
	ListPhysicalRewards(activeOnly bool) ([]model.PhysicalReward, error)
	SavePhysicalReward(rw *model.PhysicalReward) error
	AmazonOrdersForUser(userID uuid.UUID) ([]model.UserAmazonOrder, error)
}

type redemptionService struct {
	redemptionRepo repository.RedemptionRepository
	userRepo       repository.UserRepository
	auditRepo      repository.AuditRepository
	points         PointsService
	cfg            config.RedemptionConfig
	wsHub          *ws.Hub
}

func NewRedemptionService(
	redemptionRepo repository.RedemptionRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	points PointsService,
	cfg config.RedemptionConfig,
	hub *ws.Hub,
) RedemptionService {
	return &redemptionService{
		redemptionRepo: redemptionRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
		points:         points,
		cfg:            cfg,
		wsHub:          hub,
	}
}

// Submit debits the member's points and opens the approval workflow in a
// single transaction. Requests under the configured threshold auto-approve
// with a synthetic audit row; everything else waits for a human decision.
func (s *redemptionService) Submit(req SubmitRedemptionRequest) (*model.Redemption, error) {
	// 1. Only approved members redeem
	user, err := s.userRepo.FindByID(req.UserID)
	if err != nil {
		return nil, apperr.NotFound("user %s", req.UserID)
	}
	if user.ApprovalStatus != model.StatusApproved {
		return nil, apperr.Validation("member is %s, not eligible to redeem", user.ApprovalStatus)
	}

	points := req.Points

	// 2. Physical rewards fix the point cost from the catalogue
	var reward *model.PhysicalReward
	if req.RewardKind == model.RewardPhysical {
		if req.PhysicalRewardID == nil {
			return nil, apperr.Validation("physical redemption requires a reward id")
		}
		reward, err = s.redemptionRepo.FindPhysicalReward(*req.PhysicalRewardID)
		if err != nil {
			return nil, apperr.NotFound("physical reward %s", *req.PhysicalRewardID)
		}
		if !reward.IsActive {
			return nil, apperr.Validation("reward %q is no longer available", reward.Name)
		}
		points = reward.PointsCost
	}
	if points <= 0 {
		return nil, apperr.Validation("redemption points must be positive, got %d", points)
	}

	// 3. Decide up front whether this request needs a human
	autoApprove, level, err := s.approvalPolicy(req.RewardKind, user.StakeholderType, points)
	if err != nil {
		return nil, err
	}

	pendingStatus, err := s.redemptionRepo.StatusByCode(model.RedemptionPending)
	if err != nil {
		return nil, err
	}

	red := &model.Redemption{
		UserID:           req.UserID,
		StakeholderType:  user.StakeholderType,
		Points:           points,
		RewardKind:       req.RewardKind,
		StatusID:         pendingStatus.ID,
		PhysicalRewardID: req.PhysicalRewardID,
	}
	red.CreatedBy = req.Actor

	err = s.redemptionRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.redemptionRepo.Create(tx, red); err != nil {
			return err
		}

		// 4. Physical stock is reserved at submit, not at approval
		if reward != nil {
			rows, err := s.redemptionRepo.DecrementStock(tx, reward.ID)
			if err != nil {
				return err
			}
			if rows == 0 {
				return apperr.Conflict("reward %q is out of stock", reward.Name)
			}
		}

		// 5. Debit the points; fails the whole submit on insufficient balance
		if _, err := s.points.Post(tx, LedgerRequest{
			UserID:          req.UserID,
			StakeholderType: user.StakeholderType,
			EntryType:       model.LedgerDebit,
			Amount:          points,
			ReferenceID:     &red.ID,
			ReferenceKind:   "redemption",
			Narration:       "Redemption " + string(req.RewardKind),
			Actor:           req.Actor,
		}); err != nil {
			return err
		}

		approval := &model.RedemptionApproval{
			RedemptionID:   red.ID,
			ApprovalStatus: model.ApprovalPending,
			ApprovalLevel:  level,
		}

		if autoApprove {
			now := time.Now()
			approval.ApprovalStatus = model.ApprovalApproved
			approval.ApprovalLevel = "AUTO"
			approval.ApprovedAt = &now
			if err := s.redemptionRepo.CreateApproval(tx, approval); err != nil {
				return err
			}
			approvedStatus, err := s.redemptionRepo.StatusByCode(model.RedemptionApproved)
			if err != nil {
				return err
			}
			if err := s.redemptionRepo.UpdateStatus(tx, red.ID, approvedStatus.ID); err != nil {
				return err
			}
			red.StatusID = approvedStatus.ID
			return s.redemptionRepo.CreateAuditLog(tx, &model.ApprovalAuditLog{
				RedemptionID:   red.ID,
				PreviousStatus: model.ApprovalPending,
				NewStatus:      model.ApprovalApproved,
				PerformedBy:    "system",
				Notes:          "auto-approved below threshold",
			})
		}

		if err := s.redemptionRepo.CreateApproval(tx, approval); err != nil {
			return err
		}
		return s.redemptionRepo.CreateAuditLog(tx, &model.ApprovalAuditLog{
			RedemptionID: red.ID,
			NewStatus:    model.ApprovalPending,
			PerformedBy:  req.Actor,
			Notes:        "redemption submitted",
		})
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Notify(ws.EventRedemptionSubmitted, red)
	return red, nil
}

// approvalPolicy returns whether the request auto-approves and, if not, which
// level must act. A matching thresholds row wins; otherwise the configured
// default threshold applies.
func (s *redemptionService) approvalPolicy(kind model.RewardKind, st model.StakeholderType, points int64) (bool, string, error) {
	t, err := s.redemptionRepo.FindThreshold(kind, st)
	if err != nil {
		return false, "", err
	}
	if t != nil {
		if !t.RequiresApproval && points < t.ThresholdValue {
			return true, t.ApprovalLevel, nil
		}
		return false, t.ApprovalLevel, nil
	}
	if points < s.cfg.DefaultThreshold {
		return true, s.cfg.DefaultApprovalLevel, nil
	}
	return false, s.cfg.DefaultApprovalLevel, nil
}

func (s *redemptionService) Approve(req DecisionRequest) error {
	return s.decide(req, model.ApprovalApproved, model.RedemptionApproved)
}

// Reject refunds the debited points in the same transaction that records the
// decision, so a rejected member never loses points.
func (s *redemptionService) Reject(req DecisionRequest) error {
	return s.decide(req, model.ApprovalRejected, model.RedemptionRejected)
}

// decide moves a pending or escalated approval into a terminal state. The
// conditional update is the concurrency guard: if another admin decided first,
// zero rows change and the caller gets a conflict instead of a double
// decision.
func (s *redemptionService) decide(req DecisionRequest, target model.ApprovalStatus, statusCode string) error {
	red, err := s.redemptionRepo.FindByID(req.RedemptionID)
	if err != nil {
		return apperr.NotFound("redemption %s", req.RedemptionID)
	}

	err = s.redemptionRepo.Transaction(func(tx *gorm.DB) error {
		approval, err := s.redemptionRepo.FindApproval(tx, req.RedemptionID)
		if err != nil {
			return apperr.NotFound("no approval record for redemption %s", req.RedemptionID)
		}
		if approval.ApprovalStatus.IsTerminal() {
			return apperr.Conflict("redemption %s is already %s", req.RedemptionID, approval.ApprovalStatus)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"approval_status": target,
			"approved_by":     req.AdminID,
			"approved_at":     now,
		}
		if target == model.ApprovalRejected {
			updates["rejection_reason"] = req.Notes
		}

		rows, err := s.redemptionRepo.TransitionApproval(tx, req.RedemptionID,
			[]model.ApprovalStatus{model.ApprovalPending, model.ApprovalEscalated}, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.Conflict("redemption %s was decided concurrently", req.RedemptionID)
		}

		status, err := s.redemptionRepo.StatusByCode(statusCode)
		if err != nil {
			return err
		}
		if err := s.redemptionRepo.UpdateStatus(tx, req.RedemptionID, status.ID); err != nil {
			return err
		}

		// Rejection gives the points back in the same transaction
		if target == model.ApprovalRejected {
			if _, err := s.points.Post(tx, LedgerRequest{
				UserID:          red.UserID,
				StakeholderType: red.StakeholderType,
				EntryType:       model.LedgerCredit,
				Amount:          red.Points,
				ReferenceID:     &red.ID,
				ReferenceKind:   "refund",
				Narration:       "Redemption rejected: " + req.Notes,
				Actor:           req.AdminID.String(),
			}); err != nil {
				return err
			}
		}

		return s.redemptionRepo.CreateAuditLog(tx, &model.ApprovalAuditLog{
			RedemptionID:   req.RedemptionID,
			PreviousStatus: approval.ApprovalStatus,
			NewStatus:      target,
			PerformedBy:    req.AdminID.String(),
			Notes:          req.Notes,
		})
	})
	if err != nil {
		return err
	}

	s.notifyDecision(red.UserID, req.RedemptionID, target)
	return nil
}

func (s *redemptionService) Escalate(req DecisionRequest) error {
	err := s.redemptionRepo.Transaction(func(tx *gorm.DB) error {
		approval, err := s.redemptionRepo.FindApproval(tx, req.RedemptionID)
		if err != nil {
			return apperr.NotFound("no approval record for redemption %s", req.RedemptionID)
		}
		if approval.ApprovalStatus != model.ApprovalPending {
			return apperr.Conflict("only pending redemptions can be escalated, %s is %s", req.RedemptionID, approval.ApprovalStatus)
		}

		rows, err := s.redemptionRepo.TransitionApproval(tx, req.RedemptionID,
			[]model.ApprovalStatus{model.ApprovalPending}, map[string]interface{}{
				"approval_status":  model.ApprovalEscalated,
				"approval_level":   model.RoleAdmin,
				"escalation_notes": req.Notes,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.Conflict("redemption %s was decided concurrently", req.RedemptionID)
		}

		status, err := s.redemptionRepo.StatusByCode(model.RedemptionEscalated)
		if err != nil {
			return err
		}
		if err := s.redemptionRepo.UpdateStatus(tx, req.RedemptionID, status.ID); err != nil {
			return err
		}

		return s.redemptionRepo.CreateAuditLog(tx, &model.ApprovalAuditLog{
			RedemptionID:   req.RedemptionID,
			PreviousStatus: model.ApprovalPending,
			NewStatus:      model.ApprovalEscalated,
			PerformedBy:    req.AdminID.String(),
			Notes:          req.Notes,
		})
	})
	if err != nil {
		return err
	}

	s.wsHub.Notify(ws.EventRedemptionEscalated, map[string]interface{}{"redemption_id": req.RedemptionID})
	return nil
}

func (s *redemptionService) Fulfill(req FulfillRequest) error {
	red, err := s.redemptionRepo.FindByID(req.RedemptionID)
	if err != nil {
		return apperr.NotFound("redemption %s", req.RedemptionID)
	}
	if red.RewardKind == model.RewardAmazonVoucher && req.AmazonOrderID == "" {
		return apperr.Validation("amazon voucher fulfilment requires an order id")
	}

	approved, err := s.redemptionRepo.StatusByCode(model.RedemptionApproved)
	if err != nil {
		return err
	}
	fulfilled, err := s.redemptionRepo.StatusByCode(model.RedemptionFulfilled)
	if err != nil {
		return err
	}

	return s.redemptionRepo.Transaction(func(tx *gorm.DB) error {
		// Conditional update: two admins fulfilling the same redemption must
		// not both succeed and record two orders
		rows, err := s.redemptionRepo.TransitionStatus(tx, req.RedemptionID, approved.ID, fulfilled.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.Conflict("only approved redemptions can be fulfilled")
		}

		if red.RewardKind == model.RewardAmazonVoucher {
			order := &model.UserAmazonOrder{
				UserID:        red.UserID,
				RedemptionID:  &red.ID,
				AmazonOrderID: req.AmazonOrderID,
				Amount:        red.MonetaryValue,
				OrderStatus:   req.OrderStatus,
				OrderData:     req.OrderData,
			}
			order.CreatedBy = req.AdminID.String()
			if err := s.redemptionRepo.CreateAmazonOrder(tx, order); err != nil {
				return err
			}
		}

		return s.redemptionRepo.CreateAuditLog(tx, &model.ApprovalAuditLog{
			RedemptionID:   req.RedemptionID,
			PreviousStatus: model.ApprovalApproved,
			NewStatus:      model.ApprovalApproved,
			PerformedBy:    req.AdminID.String(),
			Notes:          "fulfilled",
		})
	})
}

func (s *redemptionService) notifyDecision(userID, redemptionID uuid.UUID, status model.ApprovalStatus) {
	n := &model.Notification{
		UserID: &userID,
		Title:  "Redemption " + string(status),
		Body:   "Your redemption request has been " + string(status),
		Kind:   "redemption_update",
	}
	_ = s.auditRepo.CreateNotification(n)
	s.wsHub.Notify(ws.EventRedemptionDecided, map[string]interface{}{
		"redemption_id": redemptionID,
		"status":        status,
	})
}

func (s *redemptionService) Get(id uuid.UUID) (*model.Redemption, error) {
	red, err := s.redemptionRepo.FindByID(id)
	if err != nil {
		return nil, apperr.NotFound("redemption %s", id)
	}
	return red, nil
}

func (s *redemptionService) List(filter repository.RedemptionFilter) ([]model.Redemption, int64, error) {
	return s.redemptionRepo.FindAll(filter)
}

func (s *redemptionService) AuditTrail(redemptionID uuid.UUID) ([]model.ApprovalAuditLog, error) {
	return s.redemptionRepo.AuditLogsFor(redemptionID)
}

func (s *redemptionService) SetThreshold(t *model.RedemptionThreshold) error {
	if t.ThresholdValue <= 0 {
		return apperr.Validation("threshold value must be positive")
	}
	if !t.StakeholderType.IsValid() {
		return apperr.Validation("unknown stakeholder type %q", t.StakeholderType)
	}
	return s.redemptionRepo.UpsertThreshold(t)
}

func (s *redemptionService) ListPhysicalRewards(activeOnly bool) ([]model.PhysicalReward, error) {
	return s.redemptionRepo.ListPhysicalRewards(activeOnly)
}

func (s *redemptionService) SavePhysicalReward(rw *model.PhysicalReward) error {
	return s.redemptionRepo.SavePhysicalReward(rw)
}

func (s *redemptionService) AmazonOrdersForUser(userID uuid.UUID) ([]model.UserAmazonOrder, error) {
	return s.redemptionRepo.AmazonOrdersForUser(userID)
}
