package ui

import (
	"io"
	"strings"
	"sync"
	"text/template"

	"mergington-portal/internal/models"
)

// Form names (status metric labels) and field names of the two forms.
const (
	RegisterFormName = "register"
	SignupFormName   = "signup"

	FieldEmail     = "email"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldPassword  = "password"
	FieldActivity  = "activity"
)

// Document is the in-memory page: every element the controller needs, built
// once. Hosts either render it (Render) or read the handles directly.
type Document struct {
	ActivitiesList  *ActivityList
	ActivitySelect  *ActivitySelect
	RegisterForm    *Form
	RegisterMessage *StatusArea
	SignupForm      *Form
	SignupMessage   *StatusArea

	mu        sync.RWMutex
	listeners []func()
}

func NewDocument() *Document {
	d := &Document{
		ActivitiesList:  &ActivityList{},
		ActivitySelect:  &ActivitySelect{},
		RegisterForm:    newForm(FieldEmail, FieldFirstName, FieldLastName, FieldPassword),
		RegisterMessage: &StatusArea{},
		SignupForm:      newForm(FieldEmail, FieldActivity),
		SignupMessage:   &StatusArea{},
	}

	d.ActivitiesList.onChange = d.notify
	d.ActivitySelect.onChange = d.notify
	d.RegisterForm.onChange = d.notify
	d.RegisterMessage.onChange = d.notify
	d.SignupForm.onChange = d.notify
	d.SignupMessage.onChange = d.notify
	return d
}

// OnChange registers fn to run after any element mutation. fn runs on the
// mutating goroutine and must not block.
func (d *Document) OnChange(fn func()) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

func (d *Document) notify() {
	d.mu.RLock()
	listeners := make([]func(), len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

type statusView struct {
	Text string
	Kind models.StatusKind
}

type pageView struct {
	Cards           []Card
	Fallback        string
	Options         []Option
	RegisterForm    []fieldView
	RegisterMessage *statusView
	SignupForm      []fieldView
	SignupMessage   *statusView
}

type fieldView struct {
	Name  string
	Value string
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
}).Parse(`Mergington High School
Extracurricular Activities

== Available Activities ==
{{- if .Fallback}}
{{.Fallback}}
{{- else}}{{range .Cards}}
[{{.ActivityID}}] {{.Name}}
    {{.Description}}
    Schedule: {{.Schedule}}
    Availability: {{.SpotsLeft}} spots left
{{- end}}{{end}}

== Sign Up for an Activity ==
{{- range .SignupForm}}
  {{.Name}}: {{.Value}}
{{- end}}
  options: -- Select an activity --{{range .Options}} | {{.Value}}={{.Label}}{{end}}
{{- with .SignupMessage}}
  [{{upper (printf "%s" .Kind)}}] {{.Text}}
{{- end}}

== Register ==
{{- range .RegisterForm}}
  {{.Name}}: {{.Value}}
{{- end}}
{{- with .RegisterMessage}}
  [{{upper (printf "%s" .Kind)}}] {{.Text}}
{{- end}}
`))

// Render writes the page as plain text. Password values are masked and
// hidden status messages are omitted.
func (d *Document) Render(w io.Writer) error {
	view := pageView{
		Cards:           d.ActivitiesList.Cards(),
		Fallback:        d.ActivitiesList.Fallback(),
		Options:         d.ActivitySelect.Options(),
		RegisterForm:    formView(d.RegisterForm),
		RegisterMessage: statusViewOf(d.RegisterMessage),
		SignupForm:      formView(d.SignupForm),
		SignupMessage:   statusViewOf(d.SignupMessage),
	}
	return pageTemplate.Execute(w, view)
}

func formView(f *Form) []fieldView {
	fields := f.Fields()
	out := make([]fieldView, 0, len(fields))
	for _, name := range fields {
		value := f.Value(name)
		if name == FieldPassword && value != "" {
			value = strings.Repeat("*", len(value))
		}
		out = append(out, fieldView{Name: name, Value: value})
	}
	return out
}

func statusViewOf(a *StatusArea) *statusView {
	msg := a.Snapshot()
	if !msg.Visible {
		return nil
	}
	return &statusView{Text: msg.Text, Kind: msg.Kind}
}
