package render

import "html/template"

const notSpecified = "Not specified"

var templates = template.Must(template.New("render").Parse(`
{{define "jobs"}}{{range .}}
<div class="job-card" data-job-id="{{.ID}}">
  <div class="job-header">
    <h3 class="job-title">{{.Title}}</h3>
    <div class="job-department">{{.Department}}</div>
  </div>
  <div class="job-details">
    <div class="job-detail"><span>📍</span><span>{{.Location}}</span></div>
    <div class="job-detail"><span>🎓</span><span>{{.Qualification}}</span></div>
    <div class="job-detail"><span>👥</span><span>{{.Posts}} Posts</span></div>
    <div class="job-detail"><span>📅</span><span>Last Date: {{.LastDate}}</span></div>
  </div>
  <div class="job-tags">
    <span class="job-tag">{{.Category}}</span>
    {{- if .Department}}
    <span class="job-tag">{{.Department}}</span>
    {{- end}}
  </div>
  <div class="job-actions">
    {{- if .ApplicationLink}}
    <a href="{{.ApplicationLink}}" class="apply-btn" target="_blank" rel="noopener">Apply Now</a>
    {{- end}}
    <button class="bookmark-btn{{if .Bookmarked}} bookmarked{{end}}" data-action="bookmark" data-job-id="{{.ID}}" title="{{if .Bookmarked}}Remove from bookmarks{{else}}Add to bookmarks{{end}}">{{if .Bookmarked}}❤️{{else}}🤍{{end}}</button>
    <button class="share-btn" data-action="share" data-job-id="{{.ID}}" title="Share job">🔗</button>
  </div>
</div>
{{- end}}{{end}}

{{define "results"}}{{range .}}
<div class="result-item">
  <h3 class="result-title">{{.Title}}</h3>
  <div class="result-exam">{{.ExamName}}</div>
  <div class="result-actions">
    <div class="result-date">Published: {{.Date}}</div>
    {{- if .Link}}
    <a href="{{.Link}}" class="download-btn" target="_blank" rel="noopener">View Result</a>
    {{- end}}
  </div>
</div>
{{- end}}{{end}}

{{define "admit-cards"}}{{range .}}
<div class="result-item">
  <h3 class="result-title">{{.Title}}</h3>
  <div class="result-exam">{{.ExamName}}</div>
  <div class="result-actions">
    <div class="result-date">Exam Date: {{.Date}}</div>
    {{- if .Link}}
    <a href="{{.Link}}" class="download-btn" target="_blank" rel="noopener">Download Admit Card</a>
    {{- end}}
  </div>
</div>
{{- end}}{{end}}

{{define "answer-keys"}}{{range .}}
<div class="result-item">
  <h3 class="result-title">{{.Title}}</h3>
  <div class="result-exam">{{.ExamName}}</div>
  <div class="result-actions">
    <div class="result-date">Published: {{.Date}}</div>
    {{- if .Link}}
    <a href="{{.Link}}" class="download-btn" target="_blank" rel="noopener">Download Answer Key</a>
    {{- end}}
  </div>
</div>
{{- end}}{{end}}

{{define "message"}}<p class="{{.Class}}">{{.Text}}</p>{{end}}
`))
