// Package seed loads sample listings into an empty store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/jobboard/internal/db"
)

//go:embed sample.yaml
var sample []byte

type job struct {
	Title           string `yaml:"title"`
	Department      string `yaml:"department"`
	Category        string `yaml:"category"`
	Location        string `yaml:"location"`
	Qualification   string `yaml:"qualification"`
	Posts           int    `yaml:"posts"`
	LastDate        string `yaml:"last_date"`
	ApplicationLink string `yaml:"application_link"`
}

type result struct {
	Title         string `yaml:"title"`
	ExamName      string `yaml:"exam_name"`
	ResultLink    string `yaml:"result_link"`
	PublishedDate string `yaml:"published_date"`
}

type admitCard struct {
	Title        string `yaml:"title"`
	ExamName     string `yaml:"exam_name"`
	DownloadLink string `yaml:"download_link"`
	ExamDate     string `yaml:"exam_date"`
}

type answerKey struct {
	Title         string `yaml:"title"`
	ExamName      string `yaml:"exam_name"`
	DownloadLink  string `yaml:"download_link"`
	PublishedDate string `yaml:"published_date"`
}

// Fixtures is a set of records to insert, one list per table.
type Fixtures struct {
	Jobs       []job       `yaml:"jobs"`
	Results    []result    `yaml:"results"`
	AdmitCards []admitCard `yaml:"admit_cards"`
	AnswerKeys []answerKey `yaml:"answer_keys"`
}

// Load returns the built-in sample data.
func Load() (*Fixtures, error) {
	return Parse(sample)
}

// LoadFile reads fixtures from a YAML file with the same layout as the
// built-in sample.
func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	for i, j := range f.Jobs {
		if j.Title == "" || j.Department == "" || j.Category == "" {
			return nil, fmt.Errorf("job %d: title, department and category are required", i+1)
		}
	}
	return &f, nil
}

// Report counts the records inserted per table.
type Report map[db.Kind]int

func (r Report) Total() int {
	n := 0
	for _, c := range r {
		n += c
	}
	return n
}

// Apply inserts fixtures into every table that is still empty. Tables that
// already hold records are left alone, so Apply is safe to run on each start.
func Apply(ctx context.Context, store *db.Store, f *Fixtures) (Report, error) {
	report := Report{}

	steps := []struct {
		kind   db.Kind
		n      int
		insert func(i int) error
	}{
		{db.KindJobs, len(f.Jobs), func(i int) error {
			j := f.Jobs[i]
			return store.InsertJob(ctx, &db.Job{
				Title:           j.Title,
				Department:      j.Department,
				Category:        j.Category,
				Location:        j.Location,
				Qualification:   j.Qualification,
				Posts:           j.Posts,
				LastDate:        j.LastDate,
				ApplicationLink: j.ApplicationLink,
			})
		}},
		{db.KindResults, len(f.Results), func(i int) error {
			r := f.Results[i]
			return store.InsertResult(ctx, &db.Result{Title: r.Title, ExamName: r.ExamName, ResultLink: r.ResultLink, PublishedDate: r.PublishedDate})
		}},
		{db.KindAdmitCards, len(f.AdmitCards), func(i int) error {
			a := f.AdmitCards[i]
			return store.InsertAdmitCard(ctx, &db.AdmitCard{Title: a.Title, ExamName: a.ExamName, DownloadLink: a.DownloadLink, ExamDate: a.ExamDate})
		}},
		{db.KindAnswerKeys, len(f.AnswerKeys), func(i int) error {
			k := f.AnswerKeys[i]
			return store.InsertAnswerKey(ctx, &db.AnswerKey{Title: k.Title, ExamName: k.ExamName, DownloadLink: k.DownloadLink, PublishedDate: k.PublishedDate})
		}},
	}

	for _, step := range steps {
		existing, err := store.Count(ctx, step.kind)
		if err != nil {
			return report, err
		}
		if existing > 0 || step.n == 0 {
			continue
		}
		for i := 0; i < step.n; i++ {
			if err := step.insert(i); err != nil {
				return report, fmt.Errorf("seed %s: %w", step.kind, err)
			}
		}
		report[step.kind] = step.n
	}
	return report, nil
}
