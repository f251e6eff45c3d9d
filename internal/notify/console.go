package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	bodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	linkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Underline(true)
)

// Console prints notifications to a terminal.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	baseURL string
}

// NewConsole writes to w. baseURL, when set, is prefixed to notification links.
func NewConsole(w io.Writer, baseURL string) *Console {
	return &Console{w: w, baseURL: baseURL}
}

func (c *Console) Notify(_ context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := "🔔 " + titleStyle.Render(n.Title) + "\n"
	if n.Body != "" {
		out += "   " + bodyStyle.Render(n.Body) + "\n"
	}
	if n.URL != "" && c.baseURL != "" {
		out += "   " + linkStyle.Render(c.baseURL+n.URL) + "\n"
	}
	_, err := fmt.Fprint(c.w, out)
	return err
}
