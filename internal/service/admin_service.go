package service

import (
	"fmt"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	adminTopCategoryLimit = 5
	adminTopSpenderLimit  = 5
)

// AdminService serves the admin dashboard and user management
type AdminService struct {
	statsRepo   domain.AdminStatsRepository
	userRepo    domain.UserRepository
	expenseRepo domain.ExpenseRepository
	budgetRepo  domain.BudgetRepository
	clock       domain.Clock
	owners      OwnerCache
}

// OwnerCache forgets a user's resolved Owner once their access changes
type OwnerCache interface {
	ForgetUser(auth0ID string)
}

// NewAdminService creates a new AdminService
func NewAdminService(
	statsRepo domain.AdminStatsRepository,
	userRepo domain.UserRepository,
	expenseRepo domain.ExpenseRepository,
	budgetRepo domain.BudgetRepository,
	clock domain.Clock,
) *AdminService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &AdminService{
		statsRepo:   statsRepo,
		userRepo:    userRepo,
		expenseRepo: expenseRepo,
		budgetRepo:  budgetRepo,
		clock:       clock,
	}
}

// SetOwnerCache makes role and status changes take effect on the next request
func (s *AdminService) SetOwnerCache(cache OwnerCache) {
	s.owners = cache
}

func (s *AdminService) accessChanged(user *domain.User) {
	if s.owners != nil {
		s.owners.ForgetUser(user.Auth0ID)
	}
}

// GetStats builds the dashboard for the current month across all workspaces.
// The queries are independent and run concurrently.
func (s *AdminService) GetStats() (*domain.AdminStats, error) {
	month := util.NormalizeMonth(s.clock.Now())
	start, end := util.MonthBounds(month)
	prevStart, prevEnd := util.MonthBounds(util.PreviousMonthStart(month))
	all := domain.AllWorkspaces()

	stats := &domain.AdminStats{Month: month}
	var counts *domain.UserCounts
	var categories []*domain.CategorySpend

	var g errgroup.Group
	g.Go(func() (err error) {
		counts, err = s.statsRepo.CountUsers()
		return err
	})
	g.Go(func() (err error) {
		stats.ThisMonthTotal, err = s.expenseRepo.SumTotal(all, start, end)
		return err
	})
	g.Go(func() (err error) {
		stats.LastMonthTotal, err = s.expenseRepo.SumTotal(all, prevStart, prevEnd)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.expenseRepo.SumByCategory(all, start, end)
		return err
	})
	g.Go(func() (err error) {
		stats.TopSpenders, err = s.statsRepo.TopSpenders(start, end, adminTopSpenderLimit)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveBudgets, err = s.budgetRepo.CountByMonth(month)
		return err
	})
	g.Go(func() (err error) {
		stats.ExpenseCount, err = s.statsRepo.CountExpenses(start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load admin stats: %w", err)
	}

	stats.TotalUsers = counts.Total
	stats.ActiveUsers = counts.Active
	stats.AdminUsers = counts.Admins
	if stats.LastMonthTotal.IsPositive() {
		growth := stats.ThisMonthTotal.Sub(stats.LastMonthTotal).Div(stats.LastMonthTotal).Mul(hundred).Round(2)
		stats.GrowthPercent = &growth
	}
	if len(categories) > adminTopCategoryLimit {
		categories = categories[:adminTopCategoryLimit]
	}
	for _, c := range categories {
		if c.CategoryID == nil {
			c.CategoryName = domain.UncategorizedName
		}
	}
	stats.TopCategories = categories
	if stats.TopSpenders == nil {
		stats.TopSpenders = []*domain.SpenderTotal{}
	}
	return stats, nil
}

// ListUsers lists users with optional role, status and search filters
func (s *AdminService) ListUsers(filters domain.UserFilters) ([]*domain.User, error) {
	if filters.Role != nil && !filters.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	return s.userRepo.List(filters)
}

// ChangeRole sets the role of another user
func (s *AdminService) ChangeRole(actor domain.Owner, userID uuid.UUID, role domain.Role) (*domain.User, error) {
	if !role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	if actor.UserID == userID {
		return nil, domain.ErrCannotModifySelf
	}
	user, err := s.userRepo.UpdateRole(userID, role)
	if err != nil {
		return nil, err
	}
	s.accessChanged(user)
	log.Info().Str("admin_id", actor.UserID.String()).Str("user_id", userID.String()).Str("role", string(role)).Msg("User role changed")
	return user, nil
}

// ToggleStatus activates a deactivated user or deactivates an active one
func (s *AdminService) ToggleStatus(actor domain.Owner, userID uuid.UUID) (*domain.User, error) {
	if actor.UserID == userID {
		return nil, domain.ErrCannotModifySelf
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	updated, err := s.userRepo.SetActive(userID, !user.IsActive)
	if err != nil {
		return nil, err
	}
	s.accessChanged(updated)
	log.Info().Str("admin_id", actor.UserID.String()).Str("user_id", userID.String()).Bool("active", updated.IsActive).Msg("User status changed")
	return updated, nil
}


func normalizeAdminExpenseFilters(filters *domain.AdminExpenseFilters) error {
	if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(*filters.EndDate) {
		return domain.ErrInvalidDateRange
	}
	if filters.MinAmount != nil && filters.MaxAmount != nil && filters.MinAmount.GreaterThan(*filters.MaxAmount) {
		return domain.ErrInvalidAmountRange
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}
	return nil
}

// ListExpenses pages through every workspace's expenses, newest first
func (s *AdminService) ListExpenses(filters domain.AdminExpenseFilters) (*domain.PaginatedAdminExpenses, error) {
	if err := normalizeAdminExpenseFilters(&filters); err != nil {
		return nil, err
	}
	return s.statsRepo.ListExpenses(filters)
}

// SummarizeExpenses totals the expenses matching filters and ranks the
// biggest spenders and categories. Paging fields are ignored.
func (s *AdminService) SummarizeExpenses(filters domain.AdminExpenseFilters) (*domain.AdminExpenseSummary, error) {
	if err := normalizeAdminExpenseFilters(&filters); err != nil {
		return nil, err
	}
	summary, err := s.statsRepo.SummarizeExpenses(filters, domain.AdminSummaryTopLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range summary.ByCategory {
		if c.CategoryID == nil {
			c.CategoryName = domain.UncategorizedName
		}
	}
	return summary, nil
}
