package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/jobboard/internal/bookmark"
	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/notify"
	"github.com/user/jobboard/internal/query"
	"github.com/user/jobboard/internal/render"
)

// API is the part of the listing client the browser uses.
type API interface {
	Jobs(ctx context.Context, f query.Filter) ([]db.Job, error)
	JobCount(ctx context.Context, f query.Filter) (int, error)
	Results(ctx context.Context, limit int) ([]db.Result, error)
	AdmitCards(ctx context.Context, limit int) ([]db.AdmitCard, error)
	AnswerKeys(ctx context.Context, limit int) ([]db.AnswerKey, error)
}

type Deps struct {
	API       API
	Bookmarks *bookmark.Store
	Renderer  *render.Renderer
	BaseURL   string
	Limit     int

	// Watcher and Banner are optional. With both set the browser offers the
	// notification prompt and shows alerts as a banner.
	Watcher *notify.Watcher
	Banner  *Banner
}

type model struct {
	deps      Deps
	ctx       context.Context
	delegator *render.Delegator

	searchInput textinput.Model
	list        list.Model
	searching   bool

	tab      int // index into db.Kinds
	category string
	gen      int // bumped on every fetch; older results are dropped
	jobs     []db.Job
	panelErr string
	counts   map[string]int

	prompt    bool
	promptGen int
	banner    string
	status    string
	width     int
	height    int
}

type jobItem struct {
	job        db.Job
	bookmarked bool
	r          *render.Renderer
}

func (j jobItem) Title() string {
	mark := "  "
	if j.bookmarked {
		mark = "♥ "
	}
	return mark + j.job.Title
}

func (j jobItem) Description() string {
	parts := []string{j.job.Department, j.job.Category}
	if j.job.Posts > 0 {
		parts = append(parts, j.r.Number(j.job.Posts)+" posts")
	}
	parts = append(parts, "Last date: "+j.r.Date(j.job.LastDate))
	return strings.Join(parts, " · ")
}

func (j jobItem) FilterValue() string {
	return j.job.Title + " " + j.job.Department
}

type recordItem struct {
	title string
	desc  string
	link  string
}

func (r recordItem) Title() string       { return r.title }
func (r recordItem) Description() string { return r.desc }
func (r recordItem) FilterValue() string { return r.title }

func newModel(ctx context.Context, deps Deps) model {
	if deps.Renderer == nil {
		deps.Renderer = render.New("")
	}
	if deps.Limit <= 0 {
		deps.Limit = 20
	}

	ti := textinput.New()
	ti.Placeholder = "Search jobs by title or department..."
	ti.CharLimit = 256
	ti.Width = 50

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "JobBoard"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	m := model{
		deps:        deps,
		ctx:         ctx,
		delegator:   render.NewDelegator(),
		searchInput: ti,
		list:        l,
		counts:      make(map[string]int),
	}
	m.bindActions()
	return m
}

// bindActions registers the card actions once; key presses dispatch to them.
func (m model) bindActions() {
	m.delegator.Bind(render.ActionBookmark, func(_ context.Context, ev render.Event) error {
		if m.deps.Bookmarks == nil {
			return fmt.Errorf("bookmarks unavailable")
		}
		_, err := m.deps.Bookmarks.Toggle(ev.JobID)
		return err
	})
	m.delegator.Bind(render.ActionShare, func(_ context.Context, ev render.Event) error {
		_, err := render.Share(m.deps.BaseURL, ev.JobID)
		return err
	})
}

func (m model) kind() db.Kind {
	return db.Kinds[m.tab]
}

type listMsg struct {
	gen   int
	kind  db.Kind
	jobs  []db.Job
	items []list.Item
	err   error
}

type countMsg struct {
	category string
	n        int
	err      error
}

type actionMsg struct {
	ev  render.Event
	err error
}

type promptMsg struct {
	due bool
}

type promptTimeoutMsg struct {
	gen int
}

type promptDoneMsg struct {
	enabled bool
	err     error
}

type bannerMsg struct {
	n notify.Notification
}

type clearBannerMsg struct{}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetch(m.gen)}
	cmds = append(cmds, m.loadCounts()...)
	if m.deps.Watcher != nil {
		cmds = append(cmds, m.checkPrompt)
	}
	return tea.Batch(cmds...)
}

// fetch loads the current tab for generation gen.
func (m model) fetch(gen int) tea.Cmd {
	kind := m.kind()
	filter := query.Filter{
		Category: m.category,
		Search:   strings.TrimSpace(m.searchInput.Value()),
		Limit:    m.deps.Limit,
	}
	api, r, ctx := m.deps.API, m.deps.Renderer, m.ctx

	return func() tea.Msg {
		msg := listMsg{gen: gen, kind: kind}
		switch kind {
		case db.KindJobs:
			msg.jobs, msg.err = api.Jobs(ctx, filter)
		case db.KindResults:
			var out []db.Result
			out, msg.err = api.Results(ctx, filter.Limit)
			for _, res := range out {
				msg.items = append(msg.items, recordItem{res.Title, res.ExamName + " · Published: " + r.Date(res.PublishedDate), res.ResultLink})
			}
		case db.KindAdmitCards:
			var out []db.AdmitCard
			out, msg.err = api.AdmitCards(ctx, filter.Limit)
			for _, c := range out {
				msg.items = append(msg.items, recordItem{c.Title, c.ExamName + " · Exam date: " + r.Date(c.ExamDate), c.DownloadLink})
			}
		case db.KindAnswerKeys:
			var out []db.AnswerKey
			out, msg.err = api.AnswerKeys(ctx, filter.Limit)
			for _, k := range out {
				msg.items = append(msg.items, recordItem{k.Title, k.ExamName + " · Published: " + r.Date(k.PublishedDate), k.DownloadLink})
			}
		}
		return msg
	}
}

// loadCounts issues one independent request per category. Each reply only
// updates its own entry, so they may arrive in any order.
func (m model) loadCounts() []tea.Cmd {
	api, ctx := m.deps.API, m.ctx
	cmds := make([]tea.Cmd, 0, len(db.Categories))
	for _, c := range db.Categories {
		category := c
		cmds = append(cmds, func() tea.Msg {
			n, err := api.JobCount(ctx, query.Filter{Category: category})
			return countMsg{category: category, n: n, err: err}
		})
	}
	return cmds
}

func (m model) checkPrompt() tea.Msg {
	due, err := m.deps.Watcher.PromptDue(time.Now())
	if err != nil {
		return promptMsg{}
	}
	return promptMsg{due: due}
}

// refetch starts a new generation for the current view.
func (m model) refetch() (model, tea.Cmd) {
	m.gen++
	return m, m.fetch(m.gen)
}

func (m model) jobItems() []list.Item {
	items := make([]list.Item, 0, len(m.jobs))
	for _, j := range m.jobs {
		marked := m.deps.Bookmarks != nil && m.deps.Bookmarks.IsBookmarked(j.ID)
		items = append(items, jobItem{job: j, bookmarked: marked, r: m.deps.Renderer})
	}
	return items
}

func (m model) dispatch(action string) tea.Cmd {
	item, ok := m.list.SelectedItem().(jobItem)
	if !ok {
		return nil
	}
	ev := render.Event{Action: action, JobID: item.job.ID}
	d, ctx := m.delegator, m.ctx
	return func() tea.Msg {
		return actionMsg{ev: ev, err: d.Dispatch(ctx, ev)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.searching {
			switch msg.String() {
			case "esc":
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			case "enter":
				m.searching = false
				m.searchInput.Blur()
				return m.refetch()
			}
			break
		}
		if m.prompt {
			switch msg.String() {
			case "y":
				m.prompt = false
				return m, m.enableNotifications
			case "n":
				m.prompt = false
				return m, m.dismissPrompt
			}
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "/":
			m.searching = true
			m.searchInput.Focus()
			return m, textinput.Blink
		case "tab":
			m.tab = (m.tab + 1) % len(db.Kinds)
			return m.refetch()
		case "shift+tab":
			m.tab = (m.tab + len(db.Kinds) - 1) % len(db.Kinds)
			return m.refetch()
		case "r":
			m.gen++
			cmds = append(cmds, m.fetch(m.gen))
			cmds = append(cmds, m.loadCounts()...)
			return m, tea.Batch(cmds...)
		case "0":
			m.category = ""
			return m.refetch()
		case "1", "2", "3", "4", "5", "6":
			c := db.Categories[int(msg.String()[0]-'1')]
			if m.category == c {
				m.category = ""
			} else {
				m.category = c
			}
			return m.refetch()
		case "j", "down":
			m.list.CursorDown()
			return m, nil
		case "k", "up":
			m.list.CursorUp()
			return m, nil
		case "g":
			m.list.Select(0)
			return m, nil
		case "G":
			if n := len(m.list.Items()); n > 0 {
				m.list.Select(n - 1)
			}
			return m, nil
		case "b":
			return m, m.dispatch(render.ActionBookmark)
		case "s":
			return m, m.dispatch(render.ActionShare)
		case "o":
			switch item := m.list.SelectedItem().(type) {
			case jobItem:
				openBrowser(item.job.ApplicationLink)
			case recordItem:
				openBrowser(item.link)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-7)
		m.searchInput.Width = msg.Width - 20

	case listMsg:
		if msg.gen != m.gen {
			// the view changed since this fetch started
			return m, nil
		}
		if msg.err != nil {
			m.panelErr = render.FailureText(msg.kind)
			m.jobs = nil
			m.list.SetItems(nil)
			return m, nil
		}
		m.panelErr = ""
		if msg.kind == db.KindJobs {
			m.jobs = msg.jobs
			m.list.SetItems(m.jobItems())
		} else {
			m.jobs = nil
			m.list.SetItems(msg.items)
		}
		return m, nil

	case countMsg:
		if msg.err == nil {
			m.counts[msg.category] = msg.n
		}
		return m, nil

	case actionMsg:
		switch {
		case msg.err != nil:
			m.status = "Error: " + msg.err.Error()
		case msg.ev.Action == render.ActionBookmark:
			m.status = "Bookmark updated successfully!"
			idx := m.list.Index()
			m.list.SetItems(m.jobItems())
			m.list.Select(idx)
		case msg.ev.Action == render.ActionShare:
			m.status = "Job link copied to clipboard!"
		}
		return m, nil

	case promptMsg:
		if !msg.due {
			return m, nil
		}
		m.prompt = true
		m.promptGen++
		gen := m.promptGen
		timeout := m.deps.Watcher.Config().PromptTimeout
		if timeout <= 0 {
			return m, nil
		}
		return m, tea.Tick(timeout, func(time.Time) tea.Msg { return promptTimeoutMsg{gen: gen} })

	case promptTimeoutMsg:
		// hiding on timeout does not count as a dismissal
		if msg.gen == m.promptGen {
			m.prompt = false
		}
		return m, nil

	case promptDoneMsg:
		switch {
		case msg.err != nil:
			m.status = "Error: " + msg.err.Error()
		case msg.enabled:
			m.status = "Notifications enabled"
		}
		return m, nil

	case bannerMsg:
		m.banner = msg.n.Title
		if msg.n.Body != "" {
			m.banner += " " + msg.n.Body
		}
		return m, tea.Tick(10*time.Second, func(time.Time) tea.Msg { return clearBannerMsg{} })

	case clearBannerMsg:
		m.banner = ""
		return m, nil
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) enableNotifications() tea.Msg {
	err := m.deps.Watcher.Enable(m.ctx)
	return promptDoneMsg{enabled: err == nil, err: err}
}

func (m model) dismissPrompt() tea.Msg {
	return promptDoneMsg{err: m.deps.Watcher.Dismiss(time.Now())}
}

var (
	tabActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).Underline(true)
	tabInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	promptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (m model) View() string {
	var b strings.Builder

	if m.banner != "" {
		b.WriteString(bannerStyle.Render("🔔 " + m.banner))
		b.WriteString("\n")
	}
	if m.prompt {
		b.WriteString(promptStyle.Render("Stay Updated! Get notifications for new government jobs.  [y] Enable  [n] Maybe later"))
		b.WriteString("\n")
	}

	// Tabs
	tabs := make([]string, 0, len(db.Kinds))
	for i, k := range db.Kinds {
		label := strings.ToUpper(k.Label()[:1]) + k.Label()[1:]
		if i == m.tab {
			tabs = append(tabs, tabActive.Render(label))
		} else {
			tabs = append(tabs, tabInactive.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, "  "))
	b.WriteString("\n")

	// Search and category counts
	searchStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	activeFilter := lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)

	filters := make([]string, 0, len(db.Categories))
	for i, c := range db.Categories {
		label := fmt.Sprintf("[%d] %s (%d)", i+1, c, m.counts[c])
		if c == m.category {
			filters = append(filters, activeFilter.Render(label))
		} else {
			filters = append(filters, mutedStyle.Render(label))
		}
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, searchStyle.Render(m.searchInput.View()), "  ", strings.Join(filters, " ")))
	b.WriteString("\n\n")

	switch {
	case m.panelErr != "":
		b.WriteString(errorStyle.Render(m.panelErr))
	case len(m.list.Items()) == 0:
		b.WriteString(mutedStyle.Render(render.NoDataText(m.kind())))
	default:
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(mutedStyle.Render(m.status))
		b.WriteString("\n")
	}

	help := "[tab]kind [j/k]nav [/]search [1-6]category [0]all [b]ookmark [s]hare [o]pen [r]efresh [q]uit"
	b.WriteString(mutedStyle.MarginTop(1).Render(help))

	return b.String()
}

func openBrowser(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		cmd.Start()
	}
}

// Run starts the browser. When a watcher and banner are configured the
// watcher runs alongside it until the browser exits.
func Run(ctx context.Context, deps Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	if deps.Banner != nil {
		deps.Banner.attach(p)
		defer deps.Banner.attach(nil)
	}
	if deps.Watcher != nil {
		go deps.Watcher.Run(ctx)
	}

	_, err := p.Run()
	return err
}
