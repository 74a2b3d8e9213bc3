package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Every list endpoint of the API (clients, credits, repayments, users)
// shares the page/limit query contract defined here. A page outside the
// allowed range is clamped rather than rejected.

// DefaultLimit is the page size used when the caller does not ask for one
const DefaultLimit = 20

// MaxLimit caps the page size; portfolio listings preload their credit
// associations, so unbounded pages would get expensive
const MaxLimit = 100

// Params is a normalized page request
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Normalize clamps a raw page and limit into range and computes the row
// offset repositories paginate with
func Normalize(page, limit int) *Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return &Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetParams extracts pagination parameters from the request query
func GetParams(c *fiber.Ctx) *Params {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))

	return Normalize(page, limit)
}

// PageCount returns how many pages are needed for total rows at the
// given page size
func PageCount(total int64, limit int) int {
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}
