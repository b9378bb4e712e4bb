package handler

import (
	"strconv"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// parseIDParam reads a positive int32 path parameter
func parseIDParam(c echo.Context, name string) (int32, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

// monthQuery reads ?month=, defaulting to the current month
func monthQuery(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("month")
	if raw == "" {
		return util.NormalizeMonth(time.Now()), nil
	}
	return util.ParseMonth(raw)
}

// optionalDateQuery reads an optional YYYY-MM-DD query parameter
func optionalDateQuery(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := util.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dateRangeQuery reads ?start=&end=, defaulting to the current month
func dateRangeQuery(c echo.Context) (start, end time.Time, field string, err error) {
	start, end = util.MonthBounds(time.Now())
	if s, err := optionalDateQuery(c, "start"); err != nil {
		return start, end, "start", err
	} else if s != nil {
		start = *s
	}
	if e, err := optionalDateQuery(c, "end"); err != nil {
		return start, end, "end", err
	} else if e != nil {
		end = *e
	}
	return start, end, "", nil
}

func dateValidationError(c echo.Context, field string) error {
	return NewValidationError(c, "Invalid date", []ValidationError{
		{Field: field, Message: "Must be in YYYY-MM-DD format"},
	})
}

func monthValidationError(c echo.Context) error {
	return NewValidationError(c, "Invalid month", []ValidationError{
		{Field: "month", Message: "Must be in YYYY-MM or YYYY-MM-DD format"},
	})
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatMoneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatMonth(t time.Time) string {
	return t.Format("2006-01")
}
