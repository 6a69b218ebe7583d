package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/pkg/apperr"
)

func seedFinanceRole(t *testing.T, e *env) *model.Role {
	t.Helper()
	privileges := []model.Privilege{
		{Code: "redemption:view", Name: "View Redemptions"},
		{Code: "redemption:approve", Name: "Approve Redemptions"},
	}
	for i := range privileges {
		require.NoError(t, e.db.Create(&privileges[i]).Error)
	}
	role := &model.Role{
		Code:       model.RoleFinanceAdmin,
		Name:       "Finance Administrator",
		Privileges: privileges,
	}
	require.NoError(t, e.db.Create(role).Error)
	return role
}

func TestCreateAdminInheritsRolePrivileges(t *testing.T) {
	e := newEnv(t)
	seedFinanceRole(t, e)

	admin, err := e.users.CreateAdmin(CreateAdminRequest{
		Email:    "finance@example.com",
		Phone:    "8200000001",
		FullName: "Finance Admin",
		Password: "long-enough-pass",
		RoleCode: model.RoleFinanceAdmin,
		Actor:    "root",
	})
	require.NoError(t, err)

	got, err := e.users.GetMember(admin.ID)
	require.NoError(t, err)
	require.True(t, got.HasPrivilege("redemption:approve"))
	require.True(t, got.HasPrivilege("redemption:view"))

	// Email is the admin identity
	_, err = e.users.CreateAdmin(CreateAdminRequest{
		Email:    "finance@example.com",
		Phone:    "8200000002",
		FullName: "Second Finance Admin",
		Password: "long-enough-pass",
		RoleCode: model.RoleFinanceAdmin,
		Actor:    "root",
	})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))

	// Unknown role is rejected up front
	_, err = e.users.CreateAdmin(CreateAdminRequest{
		Email:    "ghost@example.com",
		Phone:    "8200000003",
		FullName: "Ghost",
		Password: "long-enough-pass",
		RoleCode: "NO_SUCH_ROLE",
		Actor:    "root",
	})
	require.Error(t, err)
	require.True(t, apperr.IsNotFound(err))
}

func TestSetAdminPrivilegesForcesRelogin(t *testing.T) {
	e := newEnv(t)
	seedFinanceRole(t, e)

	admin, err := e.users.CreateAdmin(CreateAdminRequest{
		Email:    "finance2@example.com",
		Phone:    "8200000004",
		FullName: "Finance Admin",
		Password: "long-enough-pass",
		RoleCode: model.RoleFinanceAdmin,
		Actor:    "root",
	})
	require.NoError(t, err)

	login, err := e.auth.Login("finance2@example.com", "long-enough-pass")
	require.NoError(t, err)

	// Unknown codes leave the set unchanged
	err = e.users.SetAdminPrivileges(admin.ID, []string{"redemption:view", "bogus:code"}, "root")
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	require.NoError(t, e.users.SetAdminPrivileges(admin.ID, []string{"redemption:view"}, "root"))

	got, err := e.users.GetMember(admin.ID)
	require.NoError(t, err)
	require.True(t, got.HasPrivilege("redemption:view"))
	require.False(t, got.HasPrivilege("redemption:approve"))

	// The privilege change killed the old session
	_, err = e.auth.ValidateToken(login.Token)
	require.Error(t, err)
}

func TestDeactivateAdminKillsSession(t *testing.T) {
	e := newEnv(t)
	seedFinanceRole(t, e)

	admin, err := e.users.CreateAdmin(CreateAdminRequest{
		Email:    "finance3@example.com",
		Phone:    "8200000005",
		FullName: "Finance Admin",
		Password: "long-enough-pass",
		RoleCode: model.RoleFinanceAdmin,
		Actor:    "root",
	})
	require.NoError(t, err)

	login, err := e.auth.Login("finance3@example.com", "long-enough-pass")
	require.NoError(t, err)

	require.NoError(t, e.users.DeactivateAdmin(admin.ID, "root"))

	_, err = e.auth.ValidateToken(login.Token)
	require.Error(t, err)

	// Idempotence is a conflict, not a silent no-op
	err = e.users.DeactivateAdmin(admin.ID, "root")
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))
}
