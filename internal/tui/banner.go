package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/jobboard/internal/notify"
)

var errNoProgram = errors.New("browser not running")

// Banner is a notifier that shows alerts at the top of a running browser.
type Banner struct {
	mu sync.Mutex
	p  *tea.Program
}

func NewBanner() *Banner {
	return &Banner{}
}

func (b *Banner) attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.p = p
}

func (b *Banner) Notify(_ context.Context, n notify.Notification) error {
	b.mu.Lock()
	p := b.p
	b.mu.Unlock()

	if p == nil {
		return errNoProgram
	}
	p.Send(bannerMsg{n: n})
	return nil
}
