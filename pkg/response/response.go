package response

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// Meta carries pagination info for list responses
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// PagedResponse is a success response for paginated listings
type PagedResponse struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data"`
	Meta       Meta        `json:"meta"`
}

// Paged returns a success response carrying a page of results plus metadata
func Paged(statusCode int, data interface{}, page, limit int, total int64) PagedResponse {
	return PagedResponse{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
		Meta:       Meta{Page: page, Limit: limit, Total: total},
	}
}
