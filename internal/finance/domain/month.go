package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/purple-water/accounting/internal/finance/errors"
)

// YearMonth scopes the transaction listing to one calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

func CurrentYearMonth(now time.Time) YearMonth {
	return YearMonth{Year: now.Year(), Month: now.Month()}
}

// ParseYearMonth builds a YearMonth from query values. When either value is
// missing the month containing now is used.
func ParseYearMonth(year, month string, now time.Time) (YearMonth, error) {
	year = strings.TrimSpace(year)
	month = strings.TrimSpace(month)
	if year == "" || month == "" {
		return CurrentYearMonth(now), nil
	}

	y, err := strconv.Atoi(year)
	if err != nil || y < 1 || y > 9999 {
		return YearMonth{}, errors.NewValidationError("Invalid year")
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return YearMonth{}, errors.NewValidationError("Invalid month")
	}
	return YearMonth{Year: y, Month: time.Month(m)}, nil
}

// Start is the first day of the month.
func (ym YearMonth) Start() Date {
	return NewDate(ym.Year, ym.Month, 1)
}

// End is the first day of the following month (exclusive bound).
func (ym YearMonth) End() Date {
	return Date{Time: ym.Start().AddDate(0, 1, 0)}
}

func (ym YearMonth) Contains(d Date) bool {
	return d.Year() == ym.Year && d.Month() == ym.Month
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}
