package repository

import (
	"go-rewards-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketFilter narrows ticket listings.
type TicketFilter struct {
	StatusCode string
	TypeCode   string
	AssignedTo *uuid.UUID
	Limit      int
	Offset     int
}

type TicketRepository interface {
	Create(tx *gorm.DB, t *model.Ticket) error
	FindByID(id uuid.UUID) (*model.Ticket, error)
	FindAll(filter TicketFilter) ([]model.Ticket, int64, error)
	// TransitionStatus conditionally updates a ticket currently in one of the
	// given statuses; returns affected rows.
	TransitionStatus(id uuid.UUID, fromStatusIDs []uint, updates map[string]interface{}) (int64, error)

	StatusByCode(code string) (*model.TicketStatus, error)
	TypeByCode(code string) (*model.TicketType, error)
	SeedLookups() error

	CreateAmazonTicket(tx *gorm.DB, t *model.AmazonTicket) error

	Transaction(fn func(tx *gorm.DB) error) error
}

type ticketRepo struct {
	db *gorm.DB
}

func NewTicketRepo(db *gorm.DB) TicketRepository {
	return &ticketRepo{db}
}

func (r *ticketRepo) Create(tx *gorm.DB, t *model.Ticket) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(t).Error
}

func (r *ticketRepo) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *ticketRepo) FindByID(id uuid.UUID) (*model.Ticket, error) {
	var t model.Ticket
	err := r.db.Preload("User").Preload("Type").Preload("Status").Preload("Assignee").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ticketRepo) FindAll(filter TicketFilter) ([]model.Ticket, int64, error) {
	q := r.db.Model(&model.Ticket{})
	if filter.StatusCode != "" {
		q = q.Joins("JOIN ticket_statuses ts ON ts.id = tickets.status_id").
			Where("ts.code = ?", filter.StatusCode)
	}
	if filter.TypeCode != "" {
		q = q.Joins("JOIN ticket_types tt ON tt.id = tickets.type_id").
			Where("tt.code = ?", filter.TypeCode)
	}
	if filter.AssignedTo != nil {
		q = q.Where("tickets.assigned_to = ?", *filter.AssignedTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var tickets []model.Ticket
	err := q.Preload("User").Preload("Type").Preload("Status").
		Order("tickets.created_at DESC").
		Find(&tickets).Error
	return tickets, total, err
}

func (r *ticketRepo) TransitionStatus(id uuid.UUID, fromStatusIDs []uint, updates map[string]interface{}) (int64, error) {
	result := r.db.Model(&model.Ticket{}).
		Where("id = ? AND status_id IN ?", id, fromStatusIDs).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *ticketRepo) StatusByCode(code string) (*model.TicketStatus, error) {
	var status model.TicketStatus
	if err := r.db.Where("code = ?", code).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *ticketRepo) TypeByCode(code string) (*model.TicketType, error) {
	var tt model.TicketType
	if err := r.db.Where("code = ?", code).First(&tt).Error; err != nil {
		return nil, err
	}
	return &tt, nil
}

// SeedLookups creates ticket status/type lookup rows if missing
func (r *ticketRepo) SeedLookups() error {
	for _, s := range model.DefaultTicketStatuses {
		var existing model.TicketStatus
		if err := r.db.Where("code = ?", s.Code).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := r.db.Create(&s).Error; err != nil {
				return err
			}
		}
	}
	for _, tt := range model.DefaultTicketTypes {
		var existing model.TicketType
		if err := r.db.Where("code = ?", tt.Code).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := r.db.Create(&tt).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *ticketRepo) CreateAmazonTicket(tx *gorm.DB, t *model.AmazonTicket) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(t).Error
}
