package service

import (
	"time"

	"go-rewards-admin/internal/repository"
	"go-rewards-admin/pkg/apperr"
)

// DashboardService backs the admin overview and MIS report screens.
type DashboardService interface {
	Stats() (*repository.DashboardStats, error)
	// PointsMovement returns per-day issued vs redeemed totals between two
	// dates, inclusive, formatted YYYY-MM-DD.
	PointsMovement(startDate, endDate string) ([]repository.PointsMovementData, error)
	MemberCounts() ([]repository.MemberCountRow, error)
	TopEarners(startDate, endDate string, limit int) ([]repository.TopEarnerRow, error)
}

type dashboardService struct {
	misRepo repository.MISRepository
}

func NewDashboardService(misRepo repository.MISRepository) DashboardService {
	return &dashboardService{misRepo: misRepo}
}

func (s *dashboardService) Stats() (*repository.DashboardStats, error) {
	return s.misRepo.GetDashboardStats()
}

func (s *dashboardService) PointsMovement(startDate, endDate string) ([]repository.PointsMovementData, error) {
	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.misRepo.GetPointsMovement(start, end)
}

func (s *dashboardService) MemberCounts() ([]repository.MemberCountRow, error) {
	return s.misRepo.GetMemberCounts()
}

func (s *dashboardService) TopEarners(startDate, endDate string, limit int) ([]repository.TopEarnerRow, error) {
	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.misRepo.GetTopEarners(start, end, limit)
}

func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	// Default to the last 30 days
	if startDate == "" && endDate == "" {
		end := time.Now()
		return end.AddDate(0, 0, -30), end, nil
	}

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("invalid start date %q, want YYYY-MM-DD", startDate)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("invalid end date %q, want YYYY-MM-DD", endDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperr.Validation("end date is before start date")
	}
	// Make the end date inclusive
	return start, end.Add(24*time.Hour - time.Nanosecond), nil
}
