package service

import (
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// usageMonths is how many months, ending with the current one, a system
// category's usage breakdown covers
const usageMonths = 6

// CatalogService lets admins curate the system categories and income
// sources every workspace shares
type CatalogService struct {
	categoryRepo domain.CategoryRepository
	sourceRepo   domain.IncomeSourceRepository
	clock        domain.Clock
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(categoryRepo domain.CategoryRepository, sourceRepo domain.IncomeSourceRepository, clock domain.Clock) *CatalogService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &CatalogService{categoryRepo: categoryRepo, sourceRepo: sourceRepo, clock: clock}
}

func (s *CatalogService) ListSystemCategories() ([]*domain.SystemCategory, error) {
	return s.categoryRepo.ListSystem()
}

func (s *CatalogService) CreateSystemCategory(input CategoryInput) (*domain.Category, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.Create(&domain.Category{
		Name:       input.Name,
		IsSystem:   true,
		Icon:       input.Icon,
		ColorToken: input.ColorToken,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int32("category_id", category.ID).Str("name", category.Name).Msg("System category created")
	return category, nil
}

func (s *CatalogService) UpdateSystemCategory(id int32, input CategoryInput) (*domain.Category, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	return s.categoryRepo.UpdateSystem(id, input.Name, input.Icon, input.ColorToken)
}

// DeleteSystemCategory removes a system category. Expenses in it become uncategorized.
func (s *CatalogService) DeleteSystemCategory(id int32) error {
	if err := s.categoryRepo.DeleteSystem(id); err != nil {
		return err
	}
	log.Info().Int32("category_id", id).Msg("System category deleted")
	return nil
}

// SystemCategoryUsage aggregates a system category across every workspace.
// Monthly always holds one entry per month of the window, oldest first.
func (s *CatalogService) SystemCategoryUsage(id int32) (*domain.UsageStats, error) {
	current := util.NormalizeMonth(s.clock.Now())
	since := current.AddDate(0, -(usageMonths - 1), 0)

	stats, err := s.categoryRepo.UsageStats(id, since)
	if err != nil {
		return nil, err
	}
	stats.Monthly = fillMonths(since, usageMonths, stats.Monthly)
	return stats, nil
}

func fillMonths(since time.Time, n int, recorded []*domain.MonthlyUsage) []*domain.MonthlyUsage {
	byMonth := make(map[string]*domain.MonthlyUsage, len(recorded))
	for _, m := range recorded {
		byMonth[m.Month.Format("2006-01")] = m
	}
	months := make([]*domain.MonthlyUsage, n)
	for i := range months {
		month := since.AddDate(0, i, 0)
		if m, ok := byMonth[month.Format("2006-01")]; ok {
			months[i] = &domain.MonthlyUsage{Month: month, Total: m.Total, Count: m.Count}
			continue
		}
		months[i] = &domain.MonthlyUsage{Month: month, Total: decimal.Zero}
	}
	return months
}

func (s *CatalogService) ListSystemIncomeSources() ([]*domain.SystemIncomeSource, error) {
	return s.sourceRepo.ListSystem()
}

func (s *CatalogService) CreateSystemIncomeSource(name string) (*domain.IncomeSource, error) {
	name, err := normalizeSourceName(name)
	if err != nil {
		return nil, err
	}
	source, err := s.sourceRepo.Create(&domain.IncomeSource{Name: name, IsSystem: true})
	if err != nil {
		return nil, err
	}
	log.Info().Int32("source_id", source.ID).Str("name", source.Name).Msg("System income source created")
	return source, nil
}

func (s *CatalogService) UpdateSystemIncomeSource(id int32, name string) (*domain.IncomeSource, error) {
	name, err := normalizeSourceName(name)
	if err != nil {
		return nil, err
	}
	return s.sourceRepo.UpdateSystem(id, name)
}

// DeleteSystemIncomeSource removes a system source. Incomes keep their recorded name.
func (s *CatalogService) DeleteSystemIncomeSource(id int32) error {
	if err := s.sourceRepo.DeleteSystem(id); err != nil {
		return err
	}
	log.Info().Int32("source_id", id).Msg("System income source deleted")
	return nil
}

func (s *CatalogService) SystemIncomeSourceUsage(id int32) (*domain.UsageStats, error) {
	return s.sourceRepo.UsageStats(id)
}
