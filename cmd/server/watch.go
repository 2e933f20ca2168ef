package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/ricirt/aqi-bulletin/internal/api/handler"
	"github.com/ricirt/aqi-bulletin/internal/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the live toast stream of a running server",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("server", "http://localhost:8080", "base URL of the bulletin server")
}

var (
	timeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#505868"))
	titleStyle       = lipgloss.NewStyle().Bold(true)
	descriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0c4d0"))
	removedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Italic(true)

	// Toast variant colors, matching the bulletin's AQI palette ends
	variantColors = map[domain.Variant]lipgloss.Color{
		domain.VariantDefault:     lipgloss.Color("#4ade80"),
		domain.VariantDestructive: lipgloss.Color("#be123c"),
	}
)

func runWatch(cmd *cobra.Command, args []string) error {
	base, _ := cmd.Flags().GetString("server")
	endpoint, err := streamURL(base)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close()

	stopped := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		close(stopped)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	err = follow(conn, cmd.OutOrStdout())
	select {
	case <-stopped:
		return nil
	default:
		return err
	}
}

// follow prints every toast as it appears and disappears until the stream ends.
func follow(conn *websocket.Conn, out io.Writer) error {
	var prev []domain.Toast
	for {
		var set handler.ToastSet
		if err := conn.ReadJSON(&set); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read toast stream: %w", err)
		}

		added, removed := diffSets(prev, set.Toasts)
		for _, t := range removed {
			fmt.Fprintln(out, renderRemoved(t))
		}
		for _, t := range added {
			fmt.Fprintln(out, renderToast(t))
		}
		prev = set.Toasts
	}
}

// streamURL maps http(s)://host to ws(s)://host/api/v1/toasts/ws.
func streamURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
	u.Path = "/api/v1/toasts/ws"
	return u.String(), nil
}

// diffSets returns the toasts of next missing from prev, and those of prev
// missing from next, each in the order of its set.
func diffSets(prev, next []domain.Toast) (added, removed []domain.Toast) {
	seen := make(map[string]bool, len(prev))
	for _, t := range prev {
		seen[t.ID] = true
	}
	kept := make(map[string]bool, len(next))
	for _, t := range next {
		kept[t.ID] = true
		if !seen[t.ID] {
			added = append(added, t)
		}
	}
	for _, t := range prev {
		if !kept[t.ID] {
			removed = append(removed, t)
		}
	}
	return added, removed
}

func renderToast(t domain.Toast) string {
	color, ok := variantColors[t.Variant]
	if !ok {
		color = variantColors[domain.VariantDefault]
	}
	marker := lipgloss.NewStyle().Foreground(color).Bold(true).Render("●")

	line := timeStyle.Render(t.CreatedAt.Local().Format("15:04:05")) + " " + marker
	if t.Title != "" {
		line += " " + titleStyle.Foreground(color).Render(t.Title)
	}
	if t.Description != "" {
		line += " " + descriptionStyle.Render(t.Description)
	}
	return line
}

func renderRemoved(t domain.Toast) string {
	label := t.Title
	if label == "" {
		label = t.ID
	}
	return timeStyle.Render(time.Now().Format("15:04:05")) + " " + removedStyle.Render(label)
}
