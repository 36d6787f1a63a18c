package model

import (
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 2000
)

type SortOrder struct {
	Property string
	Desc     bool
}

func (o SortOrder) String() string {
	if o.Desc {
		return o.Property + ",desc"
	}
	return o.Property + ",asc"
}

// PageRequest is a zero based page index, a page size and sort orders.
type PageRequest struct {
	Page int
	Size int
	Sort []SortOrder
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// TotalPages returns how many pages of p.Size cover total elements.
func (p PageRequest) TotalPages(total int64) int {
	if p.Size <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}

// ParseSortOrder parses "property[,asc|desc]".
func ParseSortOrder(raw string) (SortOrder, error) {
	parts := strings.Split(raw, ",")
	order := SortOrder{Property: strings.TrimSpace(parts[0])}
	if order.Property == "" {
		return SortOrder{}, fmt.Errorf("empty sort property in %q", raw)
	}
	if len(parts) > 2 {
		return SortOrder{}, fmt.Errorf("malformed sort %q", raw)
	}
	if len(parts) == 2 {
		switch strings.ToLower(strings.TrimSpace(parts[1])) {
		case "asc", "":
		case "desc":
			order.Desc = true
		default:
			return SortOrder{}, fmt.Errorf("unknown sort direction in %q", raw)
		}
	}
	return order, nil
}

// EventSortColumns maps sortable JSON property names to their columns.
var EventSortColumns = map[string]string{
	"id":                      "id",
	"name":                    "name",
	"description":             "description",
	"beginEnrollmentDateTime": "begin_enrollment_date_time",
	"closeEnrollmentDateTime": "close_enrollment_date_time",
	"beginEventDateTime":      "begin_event_date_time",
	"endEventDateTime":        "end_event_date_time",
	"location":                "location",
	"basePrice":               "base_price",
	"maxPrice":                "max_price",
	"limitOfEnrollment":       "limit_of_enrollment",
	"eventStatus":             "event_status",
}
