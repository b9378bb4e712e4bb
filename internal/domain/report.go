package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ReportScope selects whose data a report covers. A nil WorkspaceID means every workspace.
type ReportScope struct {
	WorkspaceID *int32
}

// WorkspaceScope limits a report to one workspace
func WorkspaceScope(workspaceID int32) ReportScope {
	return ReportScope{WorkspaceID: &workspaceID}
}

// AllWorkspaces covers every workspace
func AllWorkspaces() ReportScope {
	return ReportScope{}
}

// ScopeFor gives admins every workspace and everyone else their own
func ScopeFor(owner Owner) ReportScope {
	if owner.IsAdmin() {
		return AllWorkspaces()
	}
	return WorkspaceScope(owner.WorkspaceID)
}

type SummaryReport struct {
	Start         time.Time
	End           time.Time
	Total         decimal.Decimal
	AveragePerDay decimal.Decimal
	ByCategory    []CategoryShare
}

type CategoryShare struct {
	CategoryID   *int32
	CategoryName string
	Total        decimal.Decimal
	Count        int64
	Percent      decimal.Decimal
}

type MonthOverMonth struct {
	Month         time.Time
	PreviousMonth time.Time
	Current       decimal.Decimal
	Previous      decimal.Decimal
	Delta         decimal.Decimal
	PercentChange *decimal.Decimal
}

var ErrInvalidBucket = errors.New("bucket must be one of: daily, weekly")

type TimeBucket string

const (
	BucketDaily  TimeBucket = "daily"
	BucketWeekly TimeBucket = "weekly"
)

func (b TimeBucket) IsValid() bool {
	return b == BucketDaily || b == BucketWeekly
}

type TimeSeries struct {
	Bucket TimeBucket
	Start  time.Time
	End    time.Time
	Points []PeriodTotal
}
