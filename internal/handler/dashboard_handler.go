package handler

import (
	"go-rewards-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats returns the admin overview counters
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.Stats()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

// PointsMovement returns per-day issued vs redeemed points
// GET /api/v1/dashboard/points-movement?start_date=...&end_date=...
func (h *DashboardHandler) PointsMovement(c *fiber.Ctx) error {
	data, err := h.dashboardService.PointsMovement(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"movement": data})
}

// MemberCounts returns member counts by stakeholder type and status
// GET /api/v1/dashboard/member-counts
func (h *DashboardHandler) MemberCounts(c *fiber.Ctx) error {
	rows, err := h.dashboardService.MemberCounts()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"counts": rows})
}

// TopEarners returns the MIS top-earners report
// GET /api/v1/dashboard/top-earners?start_date=...&end_date=...&limit=10
func (h *DashboardHandler) TopEarners(c *fiber.Ctx) error {
	rows, err := h.dashboardService.TopEarners(
		c.Query("start_date"), c.Query("end_date"), c.QueryInt("limit", 10))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"top_earners": rows})
}
