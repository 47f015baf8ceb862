package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/abrezinsky/luckydraw/internal/handlers"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/services"
)

func TestGetSettings_Defaults(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/settings", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got models.Settings
	decodeBody(t, rec, &got)
	if got != models.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestUpdateSettings_Partial(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPut, "/api/settings", map[string]bool{"sound_enabled": false}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got models.Settings
	decodeBody(t, rec, &got)
	want := models.Settings{SoundEnabled: false, DarkModeEnabled: true, VibrationEnabled: true}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	stored, _ := setup.settings.Get(context.Background())
	if stored != want {
		t.Errorf("expected update to persist, got %+v", stored)
	}
}

func TestUpdateSettings_EmptyBody(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPut, "/api/settings", nil, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var apiErr handlers.APIError
	decodeBody(t, rec, &apiErr)
	if apiErr.Message != "Request body is empty" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestSettings_StorageFailure(t *testing.T) {
	setup, repo := newTestSetupWithMockRepo(t)
	repo.SetSettingError = errors.New("readonly database")

	rec := setup.do(t, http.MethodPut, "/api/settings", map[string]bool{"vibration_enabled": false}, false)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	repo.GetSettingError = errors.New("database is locked")
	rec = setup.do(t, http.MethodGet, "/api/settings", nil, false)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on read, got %d", rec.Code)
	}
}

func TestResetSettings(t *testing.T) {
	setup := newTestSetup(t)
	setup.do(t, http.MethodPut, "/api/settings", map[string]bool{"dark_mode_enabled": false, "sound_enabled": false}, false)

	rec := setup.do(t, http.MethodPost, "/api/admin/settings/reset", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without login, got %d", rec.Code)
	}

	rec = setup.do(t, http.MethodPost, "/api/admin/settings/reset", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got models.Settings
	decodeBody(t, rec, &got)
	if got != models.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}

	select {
	case <-setup.settings.ResetSignal():
	default:
		t.Error("expected reset signal to be raised")
	}
}

func TestResetSettings_Storage(t *testing.T) {
	setup, repo := newTestSetupWithMockRepo(t)
	repo.SetSettingError = errors.New("disk I/O error")

	rec := setup.do(t, http.MethodPost, "/api/admin/settings/reset", nil, true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if setup.runner.State() != services.StateIdle {
		t.Error("runner must be untouched")
	}
}
