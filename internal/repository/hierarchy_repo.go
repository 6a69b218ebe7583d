package repository

import (
	"time"

	"go-rewards-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HierarchyRepository gives the hierarchy service a uniform view over the
// three self-referencing master trees. Reads project entity rows joined with
// their level master onto model.TreeNode; writes go through generic
// table-targeted statements so one implementation serves all kinds.
type HierarchyRepository interface {
	FindNode(tx *gorm.DB, kind model.HierarchyKind, id uuid.UUID) (*model.TreeNode, error)
	NodesAtLevel(kind model.HierarchyKind, clientID uuid.UUID, levelNumber int) ([]model.TreeNode, error)
	Children(tx *gorm.DB, kind model.HierarchyKind, parentID uuid.UUID) ([]model.TreeNode, error)
	FindLevel(kind model.HierarchyKind, levelID uuid.UUID) (*LevelRow, error)
	CreateLevel(kind model.HierarchyKind, clientID uuid.UUID, name string, levelNumber int, parentLevelID *uuid.UUID, actor string) (uuid.UUID, error)
	CreateNode(tx *gorm.DB, kind model.HierarchyKind, node *model.TreeNode, code, actor string) error
	UpdateParent(tx *gorm.DB, kind model.HierarchyKind, id uuid.UUID, newParent *uuid.UUID, actor string) error
	Transaction(fn func(tx *gorm.DB) error) error
}

type LevelRow struct {
	ID          uuid.UUID
	LevelNumber int
	Name        string
}

type hierarchyRepo struct {
	db *gorm.DB
}

func NewHierarchyRepo(db *gorm.DB) HierarchyRepository {
	return &hierarchyRepo{db}
}

func (r *hierarchyRepo) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

const treeNodeSelect = "e.id AS id, e.client_id AS client_id, e.name AS name, e.level_id AS level_id, l.level_number AS level_number, e.parent_entity_id AS parent_entity_id"

func (r *hierarchyRepo) FindNode(tx *gorm.DB, kind model.HierarchyKind, id uuid.UUID) (*model.TreeNode, error) {
	if tx == nil {
		tx = r.db
	}
	var node model.TreeNode
	err := tx.Table(kind.EntityTable()+" AS e").
		Select(treeNodeSelect).
		Joins("JOIN "+kind.LevelTable()+" AS l ON l.id = e.level_id").
		Where("e.id = ? AND e.deleted_at IS NULL", id).
		Take(&node).Error
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *hierarchyRepo) NodesAtLevel(kind model.HierarchyKind, clientID uuid.UUID, levelNumber int) ([]model.TreeNode, error) {
	var nodes []model.TreeNode
	err := r.db.Table(kind.EntityTable()+" AS e").
		Select(treeNodeSelect).
		Joins("JOIN "+kind.LevelTable()+" AS l ON l.id = e.level_id").
		Where("e.client_id = ? AND l.level_number = ? AND e.deleted_at IS NULL", clientID, levelNumber).
		Order("e.name").
		Find(&nodes).Error
	return nodes, err
}

func (r *hierarchyRepo) Children(tx *gorm.DB, kind model.HierarchyKind, parentID uuid.UUID) ([]model.TreeNode, error) {
	if tx == nil {
		tx = r.db
	}
	var nodes []model.TreeNode
	err := tx.Table(kind.EntityTable()+" AS e").
		Select(treeNodeSelect).
		Joins("JOIN "+kind.LevelTable()+" AS l ON l.id = e.level_id").
		Where("e.parent_entity_id = ? AND e.deleted_at IS NULL", parentID).
		Order("e.name").
		Find(&nodes).Error
	return nodes, err
}

func (r *hierarchyRepo) FindLevel(kind model.HierarchyKind, levelID uuid.UUID) (*LevelRow, error) {
	var lvl LevelRow
	err := r.db.Table(kind.LevelTable()).
		Select("id", "level_number", "name").
		Where("id = ? AND deleted_at IS NULL", levelID).
		Take(&lvl).Error
	if err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (r *hierarchyRepo) CreateLevel(kind model.HierarchyKind, clientID uuid.UUID, name string, levelNumber int, parentLevelID *uuid.UUID, actor string) (uuid.UUID, error) {
	id := uuid.New()
	now := time.Now()
	err := r.db.Table(kind.LevelTable()).Create(map[string]interface{}{
		"id":              id,
		"client_id":       clientID,
		"name":            name,
		"level_number":    levelNumber,
		"parent_level_id": parentLevelID,
		"created_at":      now,
		"updated_at":      now,
		"created_by":      actor,
		"updated_by":      actor,
	}).Error
	return id, err
}

func (r *hierarchyRepo) CreateNode(tx *gorm.DB, kind model.HierarchyKind, node *model.TreeNode, code, actor string) error {
	if node.ID == uuid.Nil {
		node.ID = uuid.New()
	}
	now := time.Now()
	return tx.Table(kind.EntityTable()).Create(map[string]interface{}{
		"id":               node.ID,
		"client_id":        node.ClientID,
		"name":             node.Name,
		"code":             code,
		"level_id":         node.LevelID,
		"parent_entity_id": node.ParentEntityID,
		"created_at":       now,
		"updated_at":       now,
		"created_by":       actor,
		"updated_by":       actor,
	}).Error
}

func (r *hierarchyRepo) UpdateParent(tx *gorm.DB, kind model.HierarchyKind, id uuid.UUID, newParent *uuid.UUID, actor string) error {
	return tx.Table(kind.EntityTable()).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"parent_entity_id": newParent,
			"updated_at":       time.Now(),
			"updated_by":       actor,
		}).Error
}
