package dto

import "github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"

// Response is the success envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error"`
	Code    string                `json:"code"`
	Details []apperror.FieldError `json:"details,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// PageQuery is the common ?page=&limit= query.
type PageQuery struct {
	Page  int `query:"page" json:"page" validate:"omitempty,min=1,max=10000"`
	Limit int `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

const DefaultPageLimit = 20

// Normalize fills defaults for absent values.
func (q *PageQuery) Normalize() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultPageLimit
	}
}

type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Timestamp   string `json:"timestamp"`
	DB          string `json:"db"`
}
