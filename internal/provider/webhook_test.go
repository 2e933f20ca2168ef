package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/provider"
)

func bulletin() *domain.Bulletin {
	return &domain.Bulletin{
		Date:          "19/10/2026",
		Zone:          domain.DefaultZone,
		CityMaxAQI:    87,
		PrintFilename: domain.PrintFilename("19/10/2026"),
	}
}

func TestWebhookSurface_Deliver(t *testing.T) {
	var (
		got         domain.Bulletin
		gotFilename string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotFilename, _ = url.PathUnescape(r.Header.Get("X-Print-Filename"))
		if r.Header.Get("Idempotency-Key") == "" {
			t.Error("expected an Idempotency-Key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"jobId":"job-1","status":"accepted"}`))
	}))
	defer srv.Close()

	p := provider.NewWebhookSurface(srv.URL, time.Second)
	resp, err := p.Deliver(context.Background(), bulletin())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.JobID != "job-1" {
		t.Fatalf("expected job-1, got %q", resp.JobID)
	}
	if got.CityMaxAQI != 87 || got.Date != "19/10/2026" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if gotFilename != "Bulletin Qualité de l'air du 19-10-2026" {
		t.Errorf("unexpected print filename header %q", gotFilename)
	}
}

func TestWebhookSurface_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := provider.NewWebhookSurface(srv.URL, time.Second)
	if _, err := p.Deliver(context.Background(), bulletin()); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}
