package pagination

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(query string) Params {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor("")

	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Skip != 0 {
		t.Errorf("expected default skip 0, got %d", p.Skip)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := paramsFor("?skip=10&limit=50")

	if p.Limit != 50 {
		t.Errorf("expected limit 50, got %d", p.Limit)
	}
	if p.Skip != 10 {
		t.Errorf("expected skip 10, got %d", p.Skip)
	}
}

func TestFromContext_MaxLimit(t *testing.T) {
	p := paramsFor("?limit=500")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_InvalidValues(t *testing.T) {
	tests := []struct {
		query string
		skip  int
		limit int
	}{
		{"?skip=-5", 0, DefaultLimit},
		{"?skip=abc&limit=xyz", 0, DefaultLimit},
		{"?limit=0", 0, DefaultLimit},
		{"?limit=-1", 0, DefaultLimit},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := paramsFor(tt.query)
			if p.Skip != tt.skip || p.Limit != tt.limit {
				t.Errorf("expected skip=%d limit=%d, got skip=%d limit=%d", tt.skip, tt.limit, p.Skip, p.Limit)
			}
		})
	}
}

func TestNewResponse_NilData(t *testing.T) {
	var items []string
	b, err := json.Marshal(NewResponse(items, 0))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"data":[],"count":0}` {
		t.Errorf("unexpected body %s", b)
	}
}
