package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/jobboard/internal/db"
)

// Notification is one user-visible alert.
type Notification struct {
	Title string
	Body  string
	Tag   string // alerts with the same tag replace each other
	URL   string // page opened when the alert is followed, relative to the site
}

// Notifier delivers notifications somewhere the user will see them.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewJobsMessage describes a non-empty delta, newest job first.
func NewJobsMessage(jobs []db.Job) Notification {
	n := Notification{Tag: "new-jobs", URL: "/jobs"}
	if len(jobs) == 1 {
		n.Title = "New Government Job Available!"
		n.Body = jobs[0].Title
		return n
	}
	n.Title = fmt.Sprintf("%d New Government Jobs Available!", len(jobs))
	n.Body = fmt.Sprintf("Latest: %s and %d more", jobs[0].Title, len(jobs)-1)
	return n
}

// WelcomeMessage confirms that notifications were switched on.
func WelcomeMessage() Notification {
	return Notification{
		Title: "Job alerts enabled!",
		Body:  "You'll now receive updates about new government jobs and exam results.",
		Tag:   "welcome",
	}
}
