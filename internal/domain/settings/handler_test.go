package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type mockRepo struct {
	store map[string]string
}

func (m *mockRepo) GetAll(_ context.Context) (map[string]string, error) {
	return m.store, nil
}

func (m *mockRepo) SaveAll(_ context.Context, values map[string]string) error {
	for k, v := range values {
		m.store[k] = v
	}
	return nil
}

func TestSaveSettings_StringifiesValues(t *testing.T) {
	repo := &mockRepo{store: make(map[string]string)}
	h := NewHandler(repo)
	e := echo.New()

	body := `{"lab_name":"kLab Diagnostic Centre","print_margin_top":20,"show_header":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/settings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.SaveSettings(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if repo.store["lab_name"] != "kLab Diagnostic Centre" {
		t.Errorf("lab_name = %q", repo.store["lab_name"])
	}
	if repo.store["print_margin_top"] != "20" {
		t.Errorf("expected numeric value stringified, got %q", repo.store["print_margin_top"])
	}
	if repo.store["show_header"] != "true" {
		t.Errorf("expected bool value stringified, got %q", repo.store["show_header"])
	}
}

func TestGetSettings_FlatObject(t *testing.T) {
	repo := &mockRepo{store: map[string]string{"lab_name": "kLab", "lab_address": "Pune"}}
	h := NewHandler(repo)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	if err := h.GetSettings(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["lab_name"] != "kLab" || got["lab_address"] != "Pune" {
		t.Errorf("unexpected payload: %v", got)
	}
}
