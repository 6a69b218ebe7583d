package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/pkg/apperr"
)

type locationTree struct {
	clientID uuid.UUID
	levels   [3]uuid.UUID // zone, state, district
	zoneA    *model.TreeNode
	zoneB    *model.TreeNode
	state1   *model.TreeNode
	district *model.TreeNode
}

func buildLocationTree(t *testing.T, e *env) *locationTree {
	t.Helper()
	tr := &locationTree{clientID: uuid.New()}

	names := []string{"Zone", "State", "District"}
	var parent *uuid.UUID
	for i, name := range names {
		id, err := e.hierarchy.CreateLevel(CreateLevelRequest{
			Kind:          model.HierarchyLocation,
			ClientID:      tr.clientID,
			Name:          name,
			LevelNumber:   i + 1,
			ParentLevelID: parent,
			Actor:         "test",
		})
		require.NoError(t, err)
		tr.levels[i] = id
		parent = &tr.levels[i]
	}

	mk := func(name string, levelID uuid.UUID, parentID *uuid.UUID) *model.TreeNode {
		node, err := e.hierarchy.CreateNode(CreateNodeRequest{
			Kind:           model.HierarchyLocation,
			ClientID:       tr.clientID,
			Name:           name,
			LevelID:        levelID,
			ParentEntityID: parentID,
			Actor:          "test",
		})
		require.NoError(t, err)
		return node
	}

	tr.zoneA = mk("North Zone", tr.levels[0], nil)
	tr.zoneB = mk("South Zone", tr.levels[0], nil)
	tr.state1 = mk("Punjab", tr.levels[1], &tr.zoneA.ID)
	tr.district = mk("Ludhiana", tr.levels[2], &tr.state1.ID)
	return tr
}

func TestCreateLevelRequiresParentChain(t *testing.T) {
	e := newEnv(t)
	clientID := uuid.New()

	// A non-root level with no parent is rejected
	_, err := e.hierarchy.CreateLevel(CreateLevelRequest{
		Kind:        model.HierarchyLocation,
		ClientID:    clientID,
		Name:        "State",
		LevelNumber: 2,
		Actor:       "test",
	})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	rootID, err := e.hierarchy.CreateLevel(CreateLevelRequest{
		Kind:        model.HierarchyLocation,
		ClientID:    clientID,
		Name:        "Zone",
		LevelNumber: 1,
		Actor:       "test",
	})
	require.NoError(t, err)

	// Level 3 cannot hang directly under level 1
	_, err = e.hierarchy.CreateLevel(CreateLevelRequest{
		Kind:          model.HierarchyLocation,
		ClientID:      clientID,
		Name:          "District",
		LevelNumber:   3,
		ParentLevelID: &rootID,
		Actor:         "test",
	})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))
}

func TestCreateNodeEnforcesLevelRule(t *testing.T) {
	e := newEnv(t)
	tr := buildLocationTree(t, e)

	// A level-2 node must have a parent
	_, err := e.hierarchy.CreateNode(CreateNodeRequest{
		Kind:     model.HierarchyLocation,
		ClientID: tr.clientID,
		Name:     "Orphan State",
		LevelID:  tr.levels[1],
		Actor:    "test",
	})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	// A level-3 node cannot hang directly under a level-1 parent
	_, err = e.hierarchy.CreateNode(CreateNodeRequest{
		Kind:           model.HierarchyLocation,
		ClientID:       tr.clientID,
		Name:           "Skipping District",
		LevelID:        tr.levels[2],
		ParentEntityID: &tr.zoneA.ID,
		Actor:          "test",
	})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))
}

func TestAncestorsWalkToRoot(t *testing.T) {
	e := newEnv(t)
	tr := buildLocationTree(t, e)

	chain, err := e.hierarchy.Ancestors(model.HierarchyLocation, tr.district.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	// Nearest ancestor first
	require.Equal(t, tr.state1.ID, chain[0].ID)
	require.Equal(t, tr.zoneA.ID, chain[1].ID)
}

func TestDescendantsCoverSubtree(t *testing.T) {
	e := newEnv(t)
	tr := buildLocationTree(t, e)

	subtree, err := e.hierarchy.Descendants(model.HierarchyLocation, tr.zoneA.ID)
	require.NoError(t, err)
	require.Len(t, subtree, 2)

	ids := map[uuid.UUID]bool{}
	for _, n := range subtree {
		ids[n.ID] = true
	}
	require.True(t, ids[tr.state1.ID])
	require.True(t, ids[tr.district.ID])

	// Sibling zone has nothing below it
	empty, err := e.hierarchy.Descendants(model.HierarchyLocation, tr.zoneB.ID)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestReparentRejectsCycles(t *testing.T) {
	e := newEnv(t)
	tr := buildLocationTree(t, e)

	// A node cannot be its own parent
	err := e.hierarchy.Reparent(model.HierarchyLocation, tr.state1.ID, &tr.state1.ID, "test")
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	// Moving a node under its own descendant would close a cycle; it is also
	// a level violation, either way the write must not land
	err = e.hierarchy.Reparent(model.HierarchyLocation, tr.state1.ID, &tr.district.ID, "test")
	require.Error(t, err)

	chain, err := e.hierarchy.Ancestors(model.HierarchyLocation, tr.district.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
}

func TestReparentMovesSubtree(t *testing.T) {
	e := newEnv(t)
	tr := buildLocationTree(t, e)

	require.NoError(t, e.hierarchy.Reparent(model.HierarchyLocation, tr.state1.ID, &tr.zoneB.ID, "test"))

	chain, err := e.hierarchy.Ancestors(model.HierarchyLocation, tr.district.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	require.Equal(t, tr.zoneB.ID, chain[1].ID)

	empty, err := e.hierarchy.Descendants(model.HierarchyLocation, tr.zoneA.ID)
	require.NoError(t, err)
	require.Empty(t, empty)
}
