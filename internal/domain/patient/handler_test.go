package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler(newTestService())
	return h, echo.New()
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func assertHTTPCode(t *testing.T, err error, code int) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
	}
	if httpErr.Code != code {
		t.Errorf("expected %d, got %d", code, httpErr.Code)
	}
}

func TestHandler_CreatePatient(t *testing.T) {
	h, e := newTestHandler()

	body := `{"ssn":"999-00-1111","full_name":"Ana Souza","birth_date":"1990-05-01T00:00:00Z","income":1200.5}`
	c, rec := jsonContext(e, http.MethodPost, "/api/v1/patients", body)

	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var p Patient
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if p.FullName == nil || *p.FullName != "Ana Souza" {
		t.Errorf("expected Ana Souza, got %v", p.FullName)
	}
	if p.Income == nil || *p.Income != 1200.5 {
		t.Errorf("expected income 1200.5, got %v", p.Income)
	}
}

func TestHandler_CreatePatient_DuplicateSSN(t *testing.T) {
	h, e := newTestHandler()
	h.svc.CreatePatient(context.Background(), Demographics{SSN: strPtr("111")})

	c, _ := jsonContext(e, http.MethodPost, "/", `{"ssn":"111"}`)
	assertHTTPCode(t, h.CreatePatient(c), http.StatusBadRequest)
}

func TestHandler_CreatePatient_MissingSSN(t *testing.T) {
	h, e := newTestHandler()
	c, _ := jsonContext(e, http.MethodPost, "/", `{"full_name":"No SSN"}`)
	assertHTTPCode(t, h.CreatePatient(c), http.StatusBadRequest)
}

func TestHandler_GetPatient(t *testing.T) {
	h, e := newTestHandler()
	p, _ := h.svc.CreatePatient(context.Background(), Demographics{SSN: strPtr("111")})

	c, rec := jsonContext(e, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.GetPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	h, e := newTestHandler()

	c, _ := jsonContext(e, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	assertHTTPCode(t, h.GetPatient(c), http.StatusNotFound)
}

func TestHandler_GetPatient_InvalidID(t *testing.T) {
	h, e := newTestHandler()

	c, _ := jsonContext(e, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	assertHTTPCode(t, h.GetPatient(c), http.StatusBadRequest)
}

func TestHandler_ListPatients(t *testing.T) {
	h, e := newTestHandler()
	ctx := context.Background()
	for _, ssn := range []string{"1", "2", "3"} {
		h.svc.CreatePatient(ctx, Demographics{SSN: strPtr(ssn)})
	}

	c, rec := jsonContext(e, http.MethodGet, "/api/v1/patients?skip=1&limit=1", "")
	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		Data  []Patient `json:"data"`
		Count int       `json:"count"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Count != 3 {
		t.Errorf("expected count 3, got %d", resp.Count)
	}
	if len(resp.Data) != 1 || *resp.Data[0].SSN != "2" {
		t.Errorf("expected second patient only, got %+v", resp.Data)
	}
}

func TestHandler_UpdatePatient(t *testing.T) {
	h, e := newTestHandler()
	p, _ := h.svc.CreatePatient(context.Background(), Demographics{SSN: strPtr("111"), City: strPtr("Recife")})

	c, rec := jsonContext(e, http.MethodPut, "/", `{"city":"Olinda"}`)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.UpdatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Patient
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.City == nil || *got.City != "Olinda" {
		t.Errorf("expected city Olinda, got %v", got.City)
	}
	if got.SSN == nil || *got.SSN != "111" {
		t.Errorf("expected SSN kept, got %v", got.SSN)
	}
}

func TestHandler_UpdatePatient_NullClearsField(t *testing.T) {
	h, e := newTestHandler()
	p, _ := h.svc.CreatePatient(context.Background(), Demographics{
		SSN:     strPtr("111"),
		City:    strPtr("Recife"),
		ZipCode: strPtr("50000-000"),
	})

	c, rec := jsonContext(e, http.MethodPut, "/", `{"city":null}`)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.UpdatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Patient
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.City != nil {
		t.Errorf("expected city cleared, got %v", *got.City)
	}
	if got.ZipCode == nil || *got.ZipCode != "50000-000" {
		t.Errorf("expected zip code kept, got %v", got.ZipCode)
	}
}

func TestHandler_UpdatePatient_NullSSN(t *testing.T) {
	h, e := newTestHandler()
	p, _ := h.svc.CreatePatient(context.Background(), Demographics{SSN: strPtr("111")})

	c, _ := jsonContext(e, http.MethodPut, "/", `{"ssn":null}`)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	assertHTTPCode(t, h.UpdatePatient(c), http.StatusBadRequest)
}

func TestHandler_DeletePatient(t *testing.T) {
	h, e := newTestHandler()
	p, _ := h.svc.CreatePatient(context.Background(), Demographics{SSN: strPtr("111")})

	c, rec := jsonContext(e, http.MethodDelete, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	if err := h.DeletePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, _ = jsonContext(e, http.MethodDelete, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	assertHTTPCode(t, h.DeletePatient(c), http.StatusNotFound)
}

func TestHandler_GetPatientBySSN(t *testing.T) {
	h, e := newTestHandler()
	h.svc.CreatePatient(context.Background(), Demographics{SSN: strPtr("111")})

	c, rec := jsonContext(e, http.MethodGet, "/", "")
	c.SetParamNames("ssn")
	c.SetParamValues("111")
	if err := h.GetPatientBySSN(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, _ = jsonContext(e, http.MethodGet, "/", "")
	c.SetParamNames("ssn")
	c.SetParamValues("999")
	assertHTTPCode(t, h.GetPatientBySSN(c), http.StatusNotFound)
}

func TestHandler_SearchPatientsByName(t *testing.T) {
	h, e := newTestHandler()
	ctx := context.Background()
	h.svc.CreatePatient(ctx, Demographics{SSN: strPtr("1"), FullName: strPtr("Maria Silva")})
	h.svc.CreatePatient(ctx, Demographics{SSN: strPtr("2"), FullName: strPtr("Ana Costa")})

	c, rec := jsonContext(e, http.MethodGet, "/", "")
	c.SetParamNames("name")
	c.SetParamValues("SILVA")
	if err := h.SearchPatientsByName(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Count int `json:"count"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Count != 1 {
		t.Errorf("expected 1 match, got %d", resp.Count)
	}
}

func TestHandler_GetBasicData(t *testing.T) {
	h, e := newTestHandler()
	p, _ := h.svc.CreatePatient(context.Background(), Demographics{SSN: strPtr("1"), FullName: strPtr("Maria Silva")})

	c, rec := jsonContext(e, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	if err := h.GetBasicData(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		PatientID uuid.UUID `json:"patient_id"`
		BasicData BasicData `json:"basic_data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.PatientID != p.ID {
		t.Errorf("expected patient_id %s, got %s", p.ID, resp.PatientID)
	}
	if resp.BasicData.FullName != "Maria Silva" {
		t.Errorf("expected Maria Silva, got %q", resp.BasicData.FullName)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, e := newTestHandler()
	h.RegisterRoutes(e.Group("/api/v1"))

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/patients",
		"GET /api/v1/patients",
		"GET /api/v1/patients/:id",
		"PUT /api/v1/patients/:id",
		"DELETE /api/v1/patients/:id",
		"GET /api/v1/patients/search/by-ssn/:ssn",
		"GET /api/v1/patients/search/by-name/:name",
		"GET /api/v1/patients/:id/basic-data",
	} {
		if !routes[want] {
			t.Errorf("missing route %s", want)
		}
	}
}
