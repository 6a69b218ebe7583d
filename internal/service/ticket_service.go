package service

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/internal/ws"
	"go-rewards-admin/pkg/apperr"
)

type CreateTicketRequest struct {
	UserID      uuid.UUID            `json:"user_id" validate:"uuid_required"`
	TypeCode    string               `json:"type_code" validate:"required"`
	Priority    model.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Subject     string               `json:"subject" validate:"required"`
	Description string               `json:"description"`

	// Set for redemption-type tickets about an Amazon order
	AmazonOrderID *uuid.UUID `json:"amazon_order_id,omitempty"`
	IssueCode     string     `json:"issue_code,omitempty"`

	Actor string `json:"-"`
}

type ResolveTicketRequest struct {
	TicketID uuid.UUID
	AdminID  uuid.UUID
	Notes    string
}

type TicketService interface {
	Create(req CreateTicketRequest) (*model.Ticket, error)
	Get(id uuid.UUID) (*model.Ticket, error)
	List(filter repository.TicketFilter) ([]model.Ticket, int64, error)
	Assign(ticketID, adminID uuid.UUID) error
	// Resolve moves a ticket out of open/in_progress, stamping the resolution
	// once. Resolved and closed tickets cannot be resolved again.
	Resolve(req ResolveTicketRequest) error
	Close(ticketID, adminID uuid.UUID) error
}

type ticketService struct {
	ticketRepo repository.TicketRepository
	userRepo   repository.UserRepository
	auditRepo  repository.AuditRepository
	wsHub      *ws.Hub
}

func NewTicketService(
	ticketRepo repository.TicketRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	hub *ws.Hub,
) TicketService {
	return &ticketService{
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		wsHub:      hub,
	}
}

func (s *ticketService) Create(req CreateTicketRequest) (*model.Ticket, error) {
	if _, err := s.userRepo.FindByID(req.UserID); err != nil {
		return nil, apperr.NotFound("user %s", req.UserID)
	}

	ticketType, err := s.ticketRepo.TypeByCode(req.TypeCode)
	if err != nil {
		return nil, apperr.NotFound("ticket type %q", req.TypeCode)
	}
	openStatus, err := s.ticketRepo.StatusByCode(model.TicketOpen)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	ticket := &model.Ticket{
		UserID:      req.UserID,
		TypeID:      ticketType.ID,
		StatusID:    openStatus.ID,
		Priority:    priority,
		Subject:     req.Subject,
		Description: req.Description,
	}
	ticket.CreatedBy = req.Actor

	// Ticket and its marketplace linkage land together or not at all
	err = s.ticketRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.ticketRepo.Create(tx, ticket); err != nil {
			return err
		}
		if req.AmazonOrderID != nil || req.IssueCode != "" {
			at := &model.AmazonTicket{
				TicketID:      ticket.ID,
				AmazonOrderID: req.AmazonOrderID,
				IssueCode:     req.IssueCode,
			}
			at.CreatedBy = req.Actor
			return s.ticketRepo.CreateAmazonTicket(tx, at)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Notify(ws.EventTicketCreated, ticket)
	return ticket, nil
}

func (s *ticketService) Get(id uuid.UUID) (*model.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(id)
	if err != nil {
		return nil, apperr.NotFound("ticket %s", id)
	}
	return ticket, nil
}

func (s *ticketService) List(filter repository.TicketFilter) ([]model.Ticket, int64, error) {
	return s.ticketRepo.FindAll(filter)
}

func (s *ticketService) Assign(ticketID, adminID uuid.UUID) error {
	admin, err := s.userRepo.FindByID(adminID)
	if err != nil {
		return apperr.NotFound("admin %s", adminID)
	}
	if admin.RoleID == nil {
		return apperr.Validation("tickets can only be assigned to admin users")
	}

	openStatus, err := s.ticketRepo.StatusByCode(model.TicketOpen)
	if err != nil {
		return err
	}
	inProgress, err := s.ticketRepo.StatusByCode(model.TicketInProgress)
	if err != nil {
		return err
	}

	rows, err := s.ticketRepo.TransitionStatus(ticketID,
		[]uint{openStatus.ID, inProgress.ID}, map[string]interface{}{
			"assigned_to": adminID,
			"status_id":   inProgress.ID,
			"updated_at":  time.Now(),
		})
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.Conflict("ticket %s is not open for assignment", ticketID)
	}
	return nil
}

func (s *ticketService) Resolve(req ResolveTicketRequest) error {
	if req.Notes == "" {
		return apperr.Validation("resolution requires notes")
	}

	openStatus, err := s.ticketRepo.StatusByCode(model.TicketOpen)
	if err != nil {
		return err
	}
	inProgress, err := s.ticketRepo.StatusByCode(model.TicketInProgress)
	if err != nil {
		return err
	}
	resolved, err := s.ticketRepo.StatusByCode(model.TicketResolved)
	if err != nil {
		return err
	}

	rows, err := s.ticketRepo.TransitionStatus(req.TicketID,
		[]uint{openStatus.ID, inProgress.ID}, map[string]interface{}{
			"status_id":        resolved.ID,
			"resolved_at":      time.Now(),
			"resolution_notes": req.Notes,
			"updated_by":       req.AdminID.String(),
			"updated_at":       time.Now(),
		})
	if err != nil {
		return err
	}
	if rows == 0 {
		// Distinguish a missing ticket from one already past resolution
		ticket, findErr := s.ticketRepo.FindByID(req.TicketID)
		if findErr != nil {
			return apperr.NotFound("ticket %s", req.TicketID)
		}
		return apperr.Conflict("ticket %s is already %s", req.TicketID, ticket.Status.Code)
	}

	ticket, err := s.ticketRepo.FindByID(req.TicketID)
	if err == nil {
		n := &model.Notification{
			UserID: &ticket.UserID,
			Title:  "Ticket resolved",
			Body:   ticket.Subject + ": " + req.Notes,
			Kind:   "ticket_update",
		}
		_ = s.auditRepo.CreateNotification(n)
	}
	return nil
}

func (s *ticketService) Close(ticketID, adminID uuid.UUID) error {
	resolved, err := s.ticketRepo.StatusByCode(model.TicketResolved)
	if err != nil {
		return err
	}
	closed, err := s.ticketRepo.StatusByCode(model.TicketClosed)
	if err != nil {
		return err
	}

	rows, err := s.ticketRepo.TransitionStatus(ticketID,
		[]uint{resolved.ID}, map[string]interface{}{
			"status_id":  closed.ID,
			"updated_by": adminID.String(),
			"updated_at": time.Now(),
		})
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.Conflict("only resolved tickets can be closed")
	}
	return nil
}
