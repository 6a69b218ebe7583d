package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/pkg/apperr"
)

// maxTreeDepth bounds every ancestor walk. The schema cannot prevent cycles,
// so any walk longer than this is treated as a corrupted tree rather than
// looping forever.
const maxTreeDepth = 32

type CreateLevelRequest struct {
	Kind          model.HierarchyKind `json:"kind" validate:"required"`
	ClientID      uuid.UUID           `json:"client_id" validate:"uuid_required"`
	Name          string              `json:"name" validate:"required"`
	LevelNumber   int                 `json:"level_number" validate:"gt=0"`
	ParentLevelID *uuid.UUID          `json:"parent_level_id,omitempty"`
	Actor         string              `json:"-"`
}

type CreateNodeRequest struct {
	Kind           model.HierarchyKind `json:"kind" validate:"required"`
	ClientID       uuid.UUID           `json:"client_id" validate:"uuid_required"`
	Name           string              `json:"name" validate:"required"`
	Code           string              `json:"code"`
	LevelID        uuid.UUID           `json:"level_id" validate:"uuid_required"`
	ParentEntityID *uuid.UUID          `json:"parent_entity_id,omitempty"`
	Actor          string              `json:"-"`
}

// HierarchyService is the single resolver over the three master trees
// (location, SKU, user type). All structural rules live here: a node's level
// must be exactly one below its parent's, and no write may introduce a cycle.
type HierarchyService interface {
	AtLevel(kind model.HierarchyKind, clientID uuid.UUID, levelNumber int) ([]model.TreeNode, error)
	Children(kind model.HierarchyKind, parentID uuid.UUID) ([]model.TreeNode, error)
	// Ancestors returns the chain from the node's parent up to the root,
	// nearest first.
	Ancestors(kind model.HierarchyKind, id uuid.UUID) ([]model.TreeNode, error)
	// Descendants returns the full subtree below a node, breadth-first.
	Descendants(kind model.HierarchyKind, id uuid.UUID) ([]model.TreeNode, error)
	CreateLevel(req CreateLevelRequest) (uuid.UUID, error)
	CreateNode(req CreateNodeRequest) (*model.TreeNode, error)
	Reparent(kind model.HierarchyKind, id uuid.UUID, newParentID *uuid.UUID, actor string) error
}

type hierarchyService struct {
	repo repository.HierarchyRepository
}

func NewHierarchyService(repo repository.HierarchyRepository) HierarchyService {
	return &hierarchyService{repo: repo}
}

func (s *hierarchyService) AtLevel(kind model.HierarchyKind, clientID uuid.UUID, levelNumber int) ([]model.TreeNode, error) {
	if !kind.IsValid() {
		return nil, apperr.Validation("unknown hierarchy kind %q", kind)
	}
	return s.repo.NodesAtLevel(kind, clientID, levelNumber)
}

func (s *hierarchyService) Children(kind model.HierarchyKind, parentID uuid.UUID) ([]model.TreeNode, error) {
	if !kind.IsValid() {
		return nil, apperr.Validation("unknown hierarchy kind %q", kind)
	}
	return s.repo.Children(nil, kind, parentID)
}

func (s *hierarchyService) Ancestors(kind model.HierarchyKind, id uuid.UUID) ([]model.TreeNode, error) {
	if !kind.IsValid() {
		return nil, apperr.Validation("unknown hierarchy kind %q", kind)
	}
	node, err := s.repo.FindNode(nil, kind, id)
	if err != nil {
		return nil, apperr.NotFound("%s node %s", kind, id)
	}

	var chain []model.TreeNode
	seen := map[uuid.UUID]bool{node.ID: true}
	for node.ParentEntityID != nil {
		if len(chain) >= maxTreeDepth {
			return nil, apperr.Conflict("%s tree exceeds max depth at node %s", kind, id)
		}
		parent, err := s.repo.FindNode(nil, kind, *node.ParentEntityID)
		if err != nil {
			return nil, apperr.NotFound("%s node %s has dangling parent %s", kind, node.ID, *node.ParentEntityID)
		}
		if seen[parent.ID] {
			return nil, apperr.Conflict("cycle detected in %s tree at node %s", kind, parent.ID)
		}
		seen[parent.ID] = true
		chain = append(chain, *parent)
		node = parent
	}
	return chain, nil
}

func (s *hierarchyService) Descendants(kind model.HierarchyKind, id uuid.UUID) ([]model.TreeNode, error) {
	if !kind.IsValid() {
		return nil, apperr.Validation("unknown hierarchy kind %q", kind)
	}
	if _, err := s.repo.FindNode(nil, kind, id); err != nil {
		return nil, apperr.NotFound("%s node %s", kind, id)
	}

	var result []model.TreeNode
	seen := map[uuid.UUID]bool{id: true}
	frontier := []uuid.UUID{id}
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= maxTreeDepth {
			return nil, apperr.Conflict("%s tree exceeds max depth below node %s", kind, id)
		}
		var next []uuid.UUID
		for _, parentID := range frontier {
			children, err := s.repo.Children(nil, kind, parentID)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				if seen[child.ID] {
					return nil, apperr.Conflict("cycle detected in %s tree at node %s", kind, child.ID)
				}
				seen[child.ID] = true
				result = append(result, child)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}
	return result, nil
}

func (s *hierarchyService) CreateLevel(req CreateLevelRequest) (uuid.UUID, error) {
	if !req.Kind.IsValid() {
		return uuid.Nil, apperr.Validation("unknown hierarchy kind %q", req.Kind)
	}
	if req.LevelNumber <= 0 {
		return uuid.Nil, apperr.Validation("level number must be positive, got %d", req.LevelNumber)
	}

	// A non-root level must sit directly under its parent level
	if req.ParentLevelID != nil {
		parent, err := s.repo.FindLevel(req.Kind, *req.ParentLevelID)
		if err != nil {
			return uuid.Nil, apperr.NotFound("%s level %s", req.Kind, *req.ParentLevelID)
		}
		if parent.LevelNumber != req.LevelNumber-1 {
			return uuid.Nil, apperr.Validation(
				"level %d cannot hang under parent level %d", req.LevelNumber, parent.LevelNumber)
		}
	} else if req.LevelNumber != 1 {
		return uuid.Nil, apperr.Validation("level %d requires a parent level", req.LevelNumber)
	}

	return s.repo.CreateLevel(req.Kind, req.ClientID, req.Name, req.LevelNumber, req.ParentLevelID, req.Actor)
}

// CreateNode inserts a tree node, checking the parent/level relationship
// inside the transaction so concurrent structural writes cannot slip an
// invalid edge in.
func (s *hierarchyService) CreateNode(req CreateNodeRequest) (*model.TreeNode, error) {
	if !req.Kind.IsValid() {
		return nil, apperr.Validation("unknown hierarchy kind %q", req.Kind)
	}

	level, err := s.repo.FindLevel(req.Kind, req.LevelID)
	if err != nil {
		return nil, apperr.NotFound("%s level %s", req.Kind, req.LevelID)
	}

	node := &model.TreeNode{
		ClientID:       req.ClientID,
		Name:           req.Name,
		LevelID:        req.LevelID,
		LevelNumber:    level.LevelNumber,
		ParentEntityID: req.ParentEntityID,
	}

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		if req.ParentEntityID != nil {
			parent, err := s.repo.FindNode(tx, req.Kind, *req.ParentEntityID)
			if err != nil {
				return apperr.NotFound("%s parent node %s", req.Kind, *req.ParentEntityID)
			}
			if parent.LevelNumber != level.LevelNumber-1 {
				return apperr.Validation(
					"node at level %d cannot hang under parent at level %d", level.LevelNumber, parent.LevelNumber)
			}
			if parent.ClientID != req.ClientID {
				return apperr.Validation("parent node belongs to a different client")
			}
		} else if level.LevelNumber != 1 {
			return apperr.Validation("node at level %d requires a parent", level.LevelNumber)
		}
		return s.repo.CreateNode(tx, req.Kind, node, req.Code, req.Actor)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// Reparent moves a node under a new parent. Besides the level rule, the walk
// up from the new parent must not pass through the node being moved, or the
// edge would close a cycle.
func (s *hierarchyService) Reparent(kind model.HierarchyKind, id uuid.UUID, newParentID *uuid.UUID, actor string) error {
	if !kind.IsValid() {
		return apperr.Validation("unknown hierarchy kind %q", kind)
	}

	return s.repo.Transaction(func(tx *gorm.DB) error {
		node, err := s.repo.FindNode(tx, kind, id)
		if err != nil {
			return apperr.NotFound("%s node %s", kind, id)
		}

		if newParentID == nil {
			if node.LevelNumber != 1 {
				return apperr.Validation("only level-1 nodes can be roots")
			}
			return s.repo.UpdateParent(tx, kind, id, nil, actor)
		}

		if *newParentID == id {
			return apperr.Validation("node cannot be its own parent")
		}

		parent, err := s.repo.FindNode(tx, kind, *newParentID)
		if err != nil {
			return apperr.NotFound("%s node %s", kind, *newParentID)
		}
		if parent.LevelNumber != node.LevelNumber-1 {
			return apperr.Validation(
				"node at level %d cannot hang under parent at level %d", node.LevelNumber, parent.LevelNumber)
		}

		// Walk up from the new parent; reaching the moved node means the
		// edge would close a cycle
		cursor := parent
		for depth := 0; cursor.ParentEntityID != nil; depth++ {
			if depth >= maxTreeDepth {
				return apperr.Conflict("%s tree exceeds max depth above node %s", kind, parent.ID)
			}
			if *cursor.ParentEntityID == id {
				return apperr.Validation("reparenting %s under %s would create a cycle", id, *newParentID)
			}
			cursor, err = s.repo.FindNode(tx, kind, *cursor.ParentEntityID)
			if err != nil {
				return err
			}
		}

		return s.repo.UpdateParent(tx, kind, id, newParentID, actor)
	})
}
