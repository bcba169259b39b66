package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const DefaultPageSize = 10

// PageSizes are the page sizes the summary tables offer.
var PageSizes = []int{5, 10, 15}

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page     int
	PageSize int
}

// FromContext reads page (1-based) and page_size from the query string.
// Unsupported sizes fall back to DefaultPageSize.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	if !allowedSize(size) {
		size = DefaultPageSize
	}

	return Params{Page: page, PageSize: size}
}

func allowedSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset()+p.PageSize < total
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Page > 1
}

// Response wraps a paginated API response.
type Response struct {
	Data      interface{} `json:"data"`
	Total     int         `json:"total"`
	Page      int         `json:"page"`
	PageSize  int         `json:"page_size"`
	PageSizes []int       `json:"page_sizes"`
	HasMore   bool        `json:"has_more"`
	HasPrev   bool        `json:"has_previous"`
}

func NewResponse(data interface{}, total int, p Params) *Response {
	return &Response{
		Data:      data,
		Total:     total,
		Page:      p.Page,
		PageSize:  p.PageSize,
		PageSizes: PageSizes,
		HasMore:   p.HasNext(total),
		HasPrev:   p.HasPrevious(),
	}
}

// Slice returns the items of items that fall on page p.
func Slice[T any](items []T, p Params) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
