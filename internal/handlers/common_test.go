package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"tradetide-backend/internal/models"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, 10},
		{"explicit", "page=3&limit=25", 3, 25},
		{"zero page clamps", "page=0&limit=5", 1, 5},
		{"negative values clamp", "page=-1&limit=-5", 1, 10},
		{"garbage falls back", "page=abc&limit=xyz", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users?"+tt.query, nil)
			page, limit := parsePagination(req)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("parsePagination() = (%d, %d), want (%d, %d)",
					page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int
		limit int
		want  int
	}{
		{15, 10, 2},
		{10, 10, 1},
		{0, 10, 0},
		{1, 10, 1},
		{21, 10, 3},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := totalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"guitar", []string{"guitar"}},
		{"guitar,piano", []string{"guitar", "piano"}},
		{" guitar , piano ", []string{"guitar", "piano"}},
		{"guitar,,piano,", []string{"guitar", "piano"}},
	}

	for _, tt := range tests {
		if got := splitCSV(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("bad input: %w", models.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("chat x: %w", models.ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("nope: %w", models.ErrForbidden), http.StatusForbidden},
		{"conflict", fmt.Errorf("dup: %w", models.ErrConflict), http.StatusConflict},
		{"unknown", fmt.Errorf("pg: connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			respondServiceError(rr, tt.err)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if tt.wantStatus == http.StatusInternalServerError && body.Error != "Internal server error" {
				t.Errorf("internal error leaked cause: %q", body.Error)
			}
		})
	}
}
