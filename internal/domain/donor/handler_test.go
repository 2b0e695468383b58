package donor

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lifeline/lifeline/internal/domain/compat"
)

func newTestHandler() (*Handler, *mockRepo) {
	repo := newMockRepo()
	return NewHandler(NewService(repo)), repo
}

func doRequest(h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec
}

func doRequestErr(t *testing.T, h echo.HandlerFunc, method, target, body string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	err := h(e.NewContext(req, rec))
	if err == nil {
		return rec.Code
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	return he.Code
}

func TestHandlerSearch_OK(t *testing.T) {
	h, repo := newTestHandler()
	seedDonor(repo, compat.ONegative, "Pune", nil)

	rec := doRequest(h.Search, http.MethodPost, "/donors/search",
		`{"required_blood_type":"A+","hospital_location":"Pune"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"total_found":1`) {
		t.Errorf("unexpected body: %s", rec.Body)
	}
}

func TestHandlerSearch_Validation(t *testing.T) {
	h, _ := newTestHandler()
	code := doRequestErr(t, h.Search, http.MethodPost, "/donors/search",
		`{"required_blood_type":"Z+","hospital_location":"Pune"}`)
	if code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandlerRegister_Created(t *testing.T) {
	h, repo := newTestHandler()
	rec := doRequest(h.Register, http.MethodPost, "/donors",
		`{"full_name":"Asha Rao","phone":"+919812345678","blood_type":"O-","location":"Pune"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	if len(repo.donors) != 1 {
		t.Errorf("expected 1 donor persisted, got %d", len(repo.donors))
	}
}
