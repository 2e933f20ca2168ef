package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ricirt/aqi-bulletin/internal/api/handler"
	"github.com/ricirt/aqi-bulletin/internal/domain"
)

func TestStreamURL(t *testing.T) {
	tests := []struct {
		base    string
		want    string
		wantErr bool
	}{
		{base: "http://localhost:8080", want: "ws://localhost:8080/api/v1/toasts/ws"},
		{base: "https://aqi.example.org", want: "wss://aqi.example.org/api/v1/toasts/ws"},
		{base: "ws://10.0.0.2:9000/ignored", want: "ws://10.0.0.2:9000/api/v1/toasts/ws"},
		{base: "ftp://host", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := streamURL(tt.base)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDiffSets(t *testing.T) {
	a := domain.Toast{ID: "a"}
	b := domain.Toast{ID: "b"}
	c := domain.Toast{ID: "c"}

	added, removed := diffSets([]domain.Toast{a, b}, []domain.Toast{b, c})
	if len(added) != 1 || added[0].ID != "c" {
		t.Errorf("expected [c] added, got %v", added)
	}
	if len(removed) != 1 || removed[0].ID != "a" {
		t.Errorf("expected [a] removed, got %v", removed)
	}

	added, removed = diffSets(nil, []domain.Toast{a, b})
	if len(added) != 2 || added[0].ID != "a" || added[1].ID != "b" {
		t.Errorf("expected [a b] added in order, got %v", added)
	}
	if len(removed) != 0 {
		t.Errorf("expected nothing removed, got %v", removed)
	}
}

func TestRenderToast_IncludesText(t *testing.T) {
	line := renderToast(domain.Toast{
		ID:          "x",
		Title:       "Bulletin publié",
		Description: "ZONE DE BAMAKO, 12/03/2025",
		Variant:     domain.VariantDestructive,
		CreatedAt:   time.Now(),
	})
	if !strings.Contains(line, "Bulletin publié") || !strings.Contains(line, "ZONE DE BAMAKO") {
		t.Errorf("rendered line is missing toast text: %q", line)
	}
}

func TestFollow_PrintsAddedAndRemovedToasts(t *testing.T) {
	frames := []handler.ToastSet{
		{Toasts: []domain.Toast{}},
		{Toasts: []domain.Toast{{ID: "1", Title: "Premier"}}},
		{Toasts: []domain.Toast{{ID: "1", Title: "Premier"}, {ID: "2", Title: "Second"}}},
		{Toasts: []domain.Toast{{ID: "2", Title: "Second"}}},
	}

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
	}))
	defer srv.Close()

	endpoint, err := streamURL(srv.URL)
	if err != nil {
		t.Fatalf("streamURL: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var out bytes.Buffer
	if err := follow(conn, &out); err != nil {
		t.Fatalf("follow returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines (2 added, 1 removed), got %d: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "Premier") || !strings.Contains(lines[1], "Second") || !strings.Contains(lines[2], "Premier") {
		t.Errorf("unexpected output order: %q", lines)
	}
}
