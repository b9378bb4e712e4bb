package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrIncomeNotFound      = errors.New("income not found")
	ErrIncomeSourceMissing = errors.New("income source name is required")
)

// Income is money received for a month. Month is always the first day of the month.
// SourceName keeps the label the income was recorded under even after its source is deleted.
type Income struct {
	ID          int32           `json:"id"`
	WorkspaceID int32           `json:"workspaceId"`
	Month       time.Time       `json:"month"`
	SourceID    *int32          `json:"sourceId,omitempty"`
	SourceName  string          `json:"sourceName"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type IncomeRepository interface {
	Create(income *Income) (*Income, error)
	GetByMonth(workspaceID int32, month time.Time) ([]*Income, error)
	SumByMonth(workspaceID int32, month time.Time) (decimal.Decimal, error)
	Delete(workspaceID int32, id int32) error
	ListForExport(scope ReportScope) ([]*Income, error)
}
