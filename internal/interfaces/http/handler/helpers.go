package handler

import (
	"errors"
	"strconv"

	"github.com/cf1/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// maxPageSize caps the page_size query parameter on list endpoints
const maxPageSize = 100

// parseListFilter reads page and page_size query parameters, falling back to
// the shared defaults when absent
func parseListFilter(c *gin.Context) (shared.Filter, error) {
	filter := shared.DefaultFilter()

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, errors.New("page must be a positive integer")
		}
		filter.Page = page
	}
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return filter, errors.New("page_size must be a positive integer")
		}
		if size > maxPageSize {
			size = maxPageSize
		}
		filter.PageSize = size
	}
	return filter, nil
}

// pageSlice returns the window of items selected by the filter
func pageSlice[T any](items []T, filter shared.Filter) []T {
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(items) {
		return nil
	}
	end := start + filter.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// toDecimalPtr converts a float64 to a *decimal.Decimal
func toDecimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// toDecimal converts a float64 to a decimal.Decimal
func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
