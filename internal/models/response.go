package models

// Error codes carried in ApiError.Code.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotFound       = "NOT_FOUND"
	CodeNotConfigured  = "SUPABASE_NOT_CONFIGURED"
	CodeUpstream       = "UPSTREAM_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
)

type ApiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ApiResponse is the envelope for every API reply. Build it with Success or
// Failure so that exactly one of Data and Error is set.
type ApiResponse[T any] struct {
	Success bool      `json:"success"`
	Data    *T        `json:"data,omitempty"`
	Error   *ApiError `json:"error,omitempty"`
}

func Success[T any](data T) ApiResponse[T] {
	return ApiResponse[T]{Success: true, Data: &data}
}

func Failure[T any](code, message string) ApiResponse[T] {
	return ApiResponse[T]{Success: false, Error: &ApiError{Code: code, Message: message}}
}

// Valid reports whether the envelope is consistent with its Success flag.
func (r ApiResponse[T]) Valid() bool {
	if r.Success {
		return r.Data != nil && r.Error == nil
	}
	return r.Error != nil && r.Data == nil
}

// PaginatedResponse is one page of results. Count is the number of matching
// rows across all pages.
type PaginatedResponse[T any] struct {
	Data    []T   `json:"data"`
	Count   int64 `json:"count"`
	HasMore bool  `json:"hasMore"`
}

// NewPaginatedResponse builds a page that starts at offset. A nil items
// slice is encoded as an empty list.
func NewPaginatedResponse[T any](items []T, count int64, offset int) PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}
	// some callers do not request an exact count
	if count < int64(len(items)) {
		count = int64(offset + len(items))
	}
	return PaginatedResponse[T]{
		Data:    items,
		Count:   count,
		HasMore: int64(offset+len(items)) < count,
	}
}

type HealthResponse struct {
	Status string `json:"status"`
}
