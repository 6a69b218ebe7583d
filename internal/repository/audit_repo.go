package repository

import (
	"go-rewards-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	WriteAudit(log *model.AuditLog) error
	WriteSystemLog(log *model.SystemLog) error
	CreateNotification(n *model.Notification) error
	NotificationsForUser(userID uuid.UUID, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(id uuid.UUID) error
	AuditTrail(entityName, entityID string) ([]model.AuditLog, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) WriteAudit(log *model.AuditLog) error {
	return r.db.Create(log).Error
}

func (r *auditRepo) WriteSystemLog(log *model.SystemLog) error {
	return r.db.Create(log).Error
}

func (r *auditRepo) CreateNotification(n *model.Notification) error {
	return r.db.Create(n).Error
}

func (r *auditRepo) NotificationsForUser(userID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	q := r.db.Where("user_id = ? OR user_id IS NULL", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var notifications []model.Notification
	err := q.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (r *auditRepo) MarkNotificationRead(id uuid.UUID) error {
	return r.db.Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *auditRepo) AuditTrail(entityName, entityID string) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.Where("entity_name = ? AND entity_id = ?", entityName, entityID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
