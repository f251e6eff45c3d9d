// Package render turns listing records into HTML fragments.
//
// Rendering is a pure function of the records, the viewer's locale and a
// bookmark snapshot: no network or storage access happens here. Every text
// field goes through html/template, so markup in a title shows up as text.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/user/jobboard/internal/db"
)

// Bookmarks reports whether a job is bookmarked.
type Bookmarks interface {
	IsBookmarked(id int64) bool
}

type noBookmarks struct{}

func (noBookmarks) IsBookmarked(int64) bool { return false }

const isoDate = "2006-01-02"

var (
	supported = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.MustParse("en-IN"),
		language.German,
	}
	matcher = language.NewMatcher(supported)

	dateLayouts = []string{
		"1/2/2006",
		"02/01/2006",
		"02/01/2006",
		"02.01.2006",
	}
)

// Renderer formats records for one viewer locale.
type Renderer struct {
	Locale string

	dateLayout string
	printer    *message.Printer
}

// New returns a renderer for a BCP 47 locale such as "en-IN". Unknown or
// empty locales fall back to ISO dates and English digit grouping.
func New(locale string) *Renderer {
	r := &Renderer{
		Locale:     locale,
		dateLayout: isoDate,
		printer:    message.NewPrinter(language.English),
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return r
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return r
	}
	r.dateLayout = dateLayouts[idx]
	r.printer = message.NewPrinter(supported[idx])
	return r
}

// Date formats a YYYY-MM-DD string for the viewer. Values that are not
// calendar dates are shown as-is.
func (r *Renderer) Date(s string) string {
	if s == "" {
		return notSpecified
	}
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return s
	}
	return t.Format(r.dateLayout)
}

// Number groups digits the way the viewer's locale does.
func (r *Renderer) Number(n int) string {
	return r.printer.Sprintf("%d", n)
}

type jobView struct {
	ID              int64
	Title           string
	Department      string
	Category        string
	Location        string
	Qualification   string
	Posts           string
	LastDate        string
	ApplicationLink string
	Bookmarked      bool
}

type itemView struct {
	Title    string
	ExamName string
	Date     string
	Link     string
}

type messageView struct {
	Class string
	Text  string
}

// JobCards renders one card per job. bookmarks may be nil.
func (r *Renderer) JobCards(jobs []db.Job, bookmarks Bookmarks) (template.HTML, error) {
	if len(jobs) == 0 {
		return NoData(db.KindJobs), nil
	}
	if bookmarks == nil {
		bookmarks = noBookmarks{}
	}

	views := make([]jobView, len(jobs))
	for i, j := range jobs {
		views[i] = jobView{
			ID:              j.ID,
			Title:           j.Title,
			Department:      j.Department,
			Category:        j.Category,
			Location:        OrNotSpecified(j.Location),
			Qualification:   OrNotSpecified(j.Qualification),
			Posts:           notSpecified,
			LastDate:        r.Date(j.LastDate),
			ApplicationLink: j.ApplicationLink,
			Bookmarked:      bookmarks.IsBookmarked(j.ID),
		}
		if j.Posts > 0 {
			views[i].Posts = r.Number(j.Posts)
		}
	}
	return execute("jobs", views)
}

func (r *Renderer) ResultItems(results []db.Result) (template.HTML, error) {
	if len(results) == 0 {
		return NoData(db.KindResults), nil
	}
	views := make([]itemView, len(results))
	for i, res := range results {
		views[i] = itemView{res.Title, res.ExamName, r.Date(res.PublishedDate), res.ResultLink}
	}
	return execute("results", views)
}

func (r *Renderer) AdmitCardItems(cards []db.AdmitCard) (template.HTML, error) {
	if len(cards) == 0 {
		return NoData(db.KindAdmitCards), nil
	}
	views := make([]itemView, len(cards))
	for i, c := range cards {
		views[i] = itemView{c.Title, c.ExamName, r.Date(c.ExamDate), c.DownloadLink}
	}
	return execute("admit-cards", views)
}

func (r *Renderer) AnswerKeyItems(keys []db.AnswerKey) (template.HTML, error) {
	if len(keys) == 0 {
		return NoData(db.KindAnswerKeys), nil
	}
	views := make([]itemView, len(keys))
	for i, k := range keys {
		views[i] = itemView{k.Title, k.ExamName, r.Date(k.PublishedDate), k.DownloadLink}
	}
	return execute("answer-keys", views)
}

// NoData is the placeholder for an empty listing.
func NoData(kind db.Kind) template.HTML {
	return notice("no-data", NoDataText(kind))
}

func NoDataText(kind db.Kind) string {
	if kind == db.KindJobs {
		return "No jobs found matching your criteria."
	}
	return "No " + kind.Label() + " available at the moment."
}

// Failure is the retry invitation shown when a listing could not be fetched.
func Failure(kind db.Kind) template.HTML {
	return notice("error", FailureText(kind))
}

func FailureText(kind db.Kind) string {
	return fmt.Sprintf("Failed to load %s. Please try again.", kind.Label())
}

func notice(class, text string) template.HTML {
	out, err := execute("message", messageView{Class: class, Text: text})
	if err != nil {
		// the message template only prints two strings
		panic(err)
	}
	return out
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// OrNotSpecified returns s, or the "Not specified" placeholder when s is empty.
func OrNotSpecified(s string) string {
	if s == "" {
		return notSpecified
	}
	return s
}
