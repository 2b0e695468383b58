package bloodrequest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func submitRequest(t *testing.T, h *Handler, body string) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/emergency-requests", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	err := h.Submit(e.NewContext(req, rec))
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he.Code, ""
		}
		t.Fatalf("unexpected error type: %v", err)
	}
	return rec.Code, rec.Body.String()
}

func TestHandlerSubmit_Created(t *testing.T) {
	h := NewHandler(NewService(newMockRepo(), nil))
	code, body := submitRequest(t, h,
		`{"blood_type":"O-","hospital_name":"City General","contact_info":"+911234567890","urgency":"critical"}`)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	for _, want := range []string{`"request_id"`, `"next_steps"`, `"units_needed":1`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %s: %s", want, body)
		}
	}
}

func TestHandlerSubmit_Validation(t *testing.T) {
	h := NewHandler(NewService(newMockRepo(), nil))
	code, _ := submitRequest(t, h, `{"blood_type":"O-","hospital_name":"","contact_info":"+91","urgency":"high"}`)
	if code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandlerUpdateStatus(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	h := NewHandler(svc)
	ack, _ := svc.Submit(httptest.NewRequest(http.MethodGet, "/", nil).Context(), validSubmission())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"status":"processing"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(ack.RequestID)
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if repo.requests[ack.RequestID].Status != StatusProcessing {
		t.Errorf("expected status processing, got %s", repo.requests[ack.RequestID].Status)
	}
}
