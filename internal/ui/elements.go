// Package ui holds the element handles the view controller renders into and
// a plain-text renderer for terminals.
//
// Every handle is safe for concurrent use: submits run on the caller's
// goroutine while status hide timers fire on their own.
package ui

import (
	"sync"

	"mergington-portal/internal/models"
)

// Card is one rendered activity.
type Card struct {
	ActivityID  models.ActivityID
	Name        string
	Description string
	Schedule    string
	SpotsLeft   int
}

// CardFor derives the card for an activity; spots left is computed here on
// every render.
func CardFor(a models.Activity) Card {
	return Card{
		ActivityID:  a.ID,
		Name:        a.Name,
		Description: a.Description,
		Schedule:    a.Schedule,
		SpotsLeft:   a.SpotsLeft(),
	}
}

// Option is one entry of the activity dropdown.
type Option struct {
	Value string
	Label string
}

type element struct {
	onChange func()
}

func (e *element) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

// ActivityList is the activities panel. It shows either cards or a single
// fallback text.
type ActivityList struct {
	element
	mu       sync.RWMutex
	cards    []Card
	fallback string
}

func (l *ActivityList) Clear() {
	l.mu.Lock()
	l.cards = nil
	l.fallback = ""
	l.mu.Unlock()
	l.changed()
}

func (l *ActivityList) AppendCard(c Card) {
	l.mu.Lock()
	l.cards = append(l.cards, c)
	l.mu.Unlock()
	l.changed()
}

// ShowFallback replaces the panel content with text.
func (l *ActivityList) ShowFallback(text string) {
	l.mu.Lock()
	l.cards = nil
	l.fallback = text
	l.mu.Unlock()
	l.changed()
}

func (l *ActivityList) Cards() []Card {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Card, len(l.cards))
	copy(out, l.cards)
	return out
}

func (l *ActivityList) Fallback() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fallback
}

// ActivitySelect is the dropdown of the signup form. The placeholder entry is
// part of the rendering, not of Options.
type ActivitySelect struct {
	element
	mu      sync.RWMutex
	options []Option
}

func (s *ActivitySelect) Clear() {
	s.mu.Lock()
	s.options = nil
	s.mu.Unlock()
	s.changed()
}

func (s *ActivitySelect) AppendOption(o Option) {
	s.mu.Lock()
	s.options = append(s.options, o)
	s.mu.Unlock()
	s.changed()
}

func (s *ActivitySelect) Options() []Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Option, len(s.options))
	copy(out, s.options)
	return out
}

// Label returns the label of the option with value, if present.
func (s *ActivitySelect) Label(value string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.options {
		if o.Value == value {
			return o.Label, true
		}
	}
	return "", false
}

// Form is a set of named text fields.
type Form struct {
	element
	fields []string
	mu     sync.RWMutex
	values map[string]string
}

func newForm(fields ...string) *Form {
	return &Form{fields: fields, values: make(map[string]string)}
}

// Fields lists the field names in display order.
func (f *Form) Fields() []string {
	out := make([]string, len(f.fields))
	copy(out, f.fields)
	return out
}

func (f *Form) Set(field, value string) {
	f.mu.Lock()
	f.values[field] = value
	f.mu.Unlock()
	f.changed()
}

// Value returns the field verbatim; unknown fields read as "".
func (f *Form) Value(field string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[field]
}

// Reset empties every field.
func (f *Form) Reset() {
	f.mu.Lock()
	f.values = make(map[string]string)
	f.mu.Unlock()
	f.changed()
}

// StatusArea is the message element attached to a form.
type StatusArea struct {
	element
	mu  sync.RWMutex
	msg models.StatusMessage
}

func (a *StatusArea) Show(text string, kind models.StatusKind) {
	a.mu.Lock()
	a.msg = models.StatusMessage{Text: text, Kind: kind, Visible: true}
	a.mu.Unlock()
	a.changed()
}

// Hide keeps the text but marks the message hidden.
func (a *StatusArea) Hide() {
	a.mu.Lock()
	a.msg.Visible = false
	a.mu.Unlock()
	a.changed()
}

func (a *StatusArea) Snapshot() models.StatusMessage {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.msg
}
