package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Params holds skip/limit values extracted from a request.
type Params struct {
	Skip  int
	Limit int
}

// FromContext reads ?skip= and ?limit=. Missing or invalid values fall back
// to the defaults and limit is capped at MaxLimit.
func FromContext(c echo.Context) Params {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	skip, err := strconv.Atoi(c.QueryParam("skip"))
	if err != nil || skip < 0 {
		skip = 0
	}

	return Params{Skip: skip, Limit: limit}
}

// Response is the list envelope: one page of data plus the total match count.
type Response struct {
	Data  interface{} `json:"data"`
	Count int         `json:"count"`
}

// NewResponse never encodes a nil slice as null.
func NewResponse[T any](data []T, count int) *Response {
	if data == nil {
		data = []T{}
	}
	return &Response{Data: data, Count: count}
}
