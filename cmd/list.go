package cmd

import (
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/spf13/cobra"

	"github.com/user/jobboard/internal/bookmark"
	"github.com/user/jobboard/internal/config"
	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/query"
	"github.com/user/jobboard/internal/render"
)

var (
	jsonOutput      bool
	plaintextOutput bool
	htmlOutput      bool
	listCategory    string
	listSearch      string
	listLimit       int
)

var listCmd = &cobra.Command{
	Use:   "list [jobs|results|admit-cards|answer-keys]",
	Short: "List records from the server",
	Long:  "List the latest jobs (optionally filtered by category and search text), results, admit cards or answer keys.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := db.KindJobs
		if len(args) == 1 {
			k, ok := db.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown kind %q", args[0])
			}
			kind = k
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		api := newClient(cfg)
		r := render.New(cfg.Client.Locale)
		ctx := cmd.Context()

		var out listing
		switch kind {
		case db.KindJobs:
			jobs, err := api.Jobs(ctx, query.Filter{Category: listCategory, Search: listSearch, Limit: listLimit})
			if err != nil {
				return loadFailed(kind, err)
			}
			marks, err := loadBookmarks(cfg)
			if err != nil {
				return err
			}
			out = jobListing{jobs: jobs, marks: marks}
		case db.KindResults:
			res, err := api.Results(ctx, listLimit)
			if err != nil {
				return loadFailed(kind, err)
			}
			out = resultListing(res)
		case db.KindAdmitCards:
			cards, err := api.AdmitCards(ctx, listLimit)
			if err != nil {
				return loadFailed(kind, err)
			}
			out = admitCardListing(cards)
		case db.KindAnswerKeys:
			keys, err := api.AnswerKeys(ctx, listLimit)
			if err != nil {
				return loadFailed(kind, err)
			}
			out = answerKeyListing(keys)
		}

		switch {
		case jsonOutput:
			return outputJSON(out.value())
		case htmlOutput:
			return outputHTML(r, kind, out)
		case plaintextOutput:
			return outputPlaintext(r, out)
		}
		return outputDefault(r, kind, out)
	},
}

// listing is one page of records of a single kind.
type listing interface {
	value() any
	len() int
	html(r *render.Renderer) (template.HTML, error)
	// rows returns title, detail and link per record.
	rows(r *render.Renderer) [][3]string
}

type jobListing struct {
	jobs  []db.Job
	marks bookmark.Snapshot
}

func (l jobListing) value() any { return l.jobs }
func (l jobListing) len() int   { return len(l.jobs) }
func (l jobListing) html(r *render.Renderer) (template.HTML, error) {
	return r.JobCards(l.jobs, l.marks)
}
func (l jobListing) rows(r *render.Renderer) [][3]string {
	out := make([][3]string, 0, len(l.jobs))
	for _, j := range l.jobs {
		title := j.Title
		if l.marks.IsBookmarked(j.ID) {
			title = "♥ " + title
		}
		detail := fmt.Sprintf("#%d %s · %s · Last date: %s", j.ID, j.Department, j.Category, r.Date(j.LastDate))
		if j.Posts > 0 {
			detail += " · " + r.Number(j.Posts) + " posts"
		}
		out = append(out, [3]string{title, detail, j.ApplicationLink})
	}
	return out
}

type resultListing []db.Result

func (l resultListing) value() any { return []db.Result(l) }
func (l resultListing) len() int   { return len(l) }
func (l resultListing) html(r *render.Renderer) (template.HTML, error) {
	return r.ResultItems(l)
}
func (l resultListing) rows(r *render.Renderer) [][3]string {
	out := make([][3]string, 0, len(l))
	for _, x := range l {
		out = append(out, [3]string{x.Title, x.ExamName + " · Published: " + r.Date(x.PublishedDate), x.ResultLink})
	}
	return out
}

type admitCardListing []db.AdmitCard

func (l admitCardListing) value() any { return []db.AdmitCard(l) }
func (l admitCardListing) len() int   { return len(l) }
func (l admitCardListing) html(r *render.Renderer) (template.HTML, error) {
	return r.AdmitCardItems(l)
}
func (l admitCardListing) rows(r *render.Renderer) [][3]string {
	out := make([][3]string, 0, len(l))
	for _, x := range l {
		out = append(out, [3]string{x.Title, x.ExamName + " · Exam date: " + r.Date(x.ExamDate), x.DownloadLink})
	}
	return out
}

type answerKeyListing []db.AnswerKey

func (l answerKeyListing) value() any { return []db.AnswerKey(l) }
func (l answerKeyListing) len() int   { return len(l) }
func (l answerKeyListing) html(r *render.Renderer) (template.HTML, error) {
	return r.AnswerKeyItems(l)
}
func (l answerKeyListing) rows(r *render.Renderer) [][3]string {
	out := make([][3]string, 0, len(l))
	for _, x := range l {
		out = append(out, [3]string{x.Title, x.ExamName + " · Published: " + r.Date(x.PublishedDate), x.DownloadLink})
	}
	return out
}

// loadBookmarks reads the bookmark set without holding the state file open.
func loadBookmarks(cfg *config.Config) (bookmark.Snapshot, error) {
	kv, err := openState(cfg)
	if err != nil {
		return bookmark.Snapshot{}, err
	}
	defer kv.Close()

	marks, err := bookmark.Load(kv)
	if err != nil {
		return bookmark.Snapshot{}, fmt.Errorf("failed to load bookmarks: %w", err)
	}
	return marks.Snapshot(), nil
}

func loadFailed(kind db.Kind, err error) error {
	return fmt.Errorf("%s: %w", render.FailureText(kind), err)
}

func outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func outputHTML(r *render.Renderer, kind db.Kind, l listing) error {
	if l.len() == 0 {
		fmt.Println(render.NoData(kind))
		return nil
	}
	markup, err := l.html(r)
	if err != nil {
		return err
	}
	fmt.Println(markup)
	return nil
}

func outputPlaintext(r *render.Renderer, l listing) error {
	for _, row := range l.rows(r) {
		fmt.Printf("%s\t%s\t%s\n", row[0], row[1], row[2])
	}
	return nil
}

func outputDefault(r *render.Renderer, kind db.Kind, l listing) error {
	if l.len() == 0 {
		fmt.Println(render.NoDataText(kind))
		return nil
	}
	for i, row := range l.rows(r) {
		fmt.Printf("%d. %s\n   %s\n", i+1, row[0], row[1])
		if row[2] != "" {
			fmt.Printf("   %s\n", row[2])
		}
		fmt.Println()
	}
	return nil
}

func init() {
	listCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	listCmd.Flags().BoolVarP(&plaintextOutput, "plaintext", "p", false, "Output as plaintext")
	listCmd.Flags().BoolVar(&htmlOutput, "html", false, "Output the rendered HTML markup")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only jobs in this category")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only jobs whose title or department contains this text")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", query.DefaultLimit, "Maximum number of records")
	rootCmd.AddCommand(listCmd)
}
