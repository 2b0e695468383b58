package compat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func doLookup(t *testing.T, bloodType, direction string) (*httptest.ResponseRecorder, int) {
	t.Helper()
	e := echo.New()
	target := "/compatibility/" + bloodType
	if direction != "" {
		target += "?direction=" + direction
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("type")
	c.SetParamValues(bloodType)

	err := NewHandler().Lookup(c)
	if err == nil {
		return rec, rec.Code
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	return rec, he.Code
}

func TestLookup_DefaultsToReceiveFrom(t *testing.T) {
	rec, code := doLookup(t, "O-", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, rec.Body)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"canReceiveFrom"`) {
		t.Errorf("expected canReceiveFrom direction, got %s", body)
	}
	// O- only accepts O-.
	if !strings.Contains(body, `"compatible_types":["O-"]`) {
		t.Errorf("unexpected compatible types: %s", body)
	}
}

func TestLookup_DonateTo(t *testing.T) {
	rec, code := doLookup(t, "AB+", "canDonateTo")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"compatible_types":["AB+"]`) {
		t.Errorf("unexpected compatible types: %s", rec.Body)
	}
}

func TestLookup_InvalidInput(t *testing.T) {
	if _, code := doLookup(t, "Z+", ""); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad blood type, got %d", code)
	}
	if _, code := doLookup(t, "A+", "sideways"); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad direction, got %d", code)
	}
}
