package db

import "time"

// Kind names one of the four record tables. The value doubles as the
// URL segment of its listing endpoint.
type Kind string

const (
	KindJobs       Kind = "jobs"
	KindResults    Kind = "results"
	KindAdmitCards Kind = "admit-cards"
	KindAnswerKeys Kind = "answer-keys"
)

// Kinds lists every record kind in display order.
var Kinds = []Kind{KindJobs, KindResults, KindAdmitCards, KindAnswerKeys}

// ParseKind accepts the endpoint form ("admit-cards") and the table form ("admit_cards").
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "jobs", "job":
		return KindJobs, true
	case "results", "result":
		return KindResults, true
	case "admit-cards", "admit_cards", "admitcards":
		return KindAdmitCards, true
	case "answer-keys", "answer_keys", "answerkeys":
		return KindAnswerKeys, true
	}
	return "", false
}

// Label is the human name of a kind, used in messages.
func (k Kind) Label() string {
	switch k {
	case KindJobs:
		return "jobs"
	case KindResults:
		return "results"
	case KindAdmitCards:
		return "admit cards"
	case KindAnswerKeys:
		return "answer keys"
	default:
		return string(k)
	}
}

// Categories are the job categories the site counts as first-class.
// Jobs with any other category are listed but never counted.
var Categories = []string{
	"Central Government",
	"State Government",
	"Railway",
	"Banking",
	"Defence",
	"Teaching",
}

type Job struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Department      string    `json:"department"`
	Category        string    `json:"category"`
	Location        string    `json:"location,omitempty"`
	Qualification   string    `json:"qualification,omitempty"`
	Posts           int       `json:"posts,omitempty"`
	LastDate        string    `json:"last_date,omitempty"` // YYYY-MM-DD
	ApplicationLink string    `json:"application_link,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type Result struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	ExamName      string    `json:"exam_name"`
	ResultLink    string    `json:"result_link,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type AdmitCard struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	ExamName     string    `json:"exam_name"`
	DownloadLink string    `json:"download_link,omitempty"`
	ExamDate     string    `json:"exam_date,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type AnswerKey struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	ExamName      string    `json:"exam_name"`
	DownloadLink  string    `json:"download_link,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CategoryCount is one bucket of the category summary.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// PushSubscription is the descriptor a client registers for push delivery.
type PushSubscription struct {
	ID             string    `json:"id"`
	Endpoint       string    `json:"endpoint"`
	ExpirationTime *int64    `json:"expirationTime"`
	Keys           PushKeys  `json:"keys"`
	CreatedAt      time.Time `json:"created_at"`
}

type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}
