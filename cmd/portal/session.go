package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"mergington-portal/internal/ui"
)

const sessionHelp = `commands:
  refresh                                   reload the activity list
  register <email> <first> <last> <pass>    create an account
  signup <email> <activity-id>              sign up for an activity
  unregister                                not available yet
  show                                      print the page
  help                                      this text
  quit                                      leave the session
`

// session is the interactive loop. The page is printed after every command
// and again whenever it changes between commands, e.g. when a status message
// hides itself.
type session struct {
	app *app
	in  io.Reader

	outMu sync.Mutex
	out   io.Writer

	busy  atomic.Bool
	dirty chan struct{}
}

func newSession(a *app, in io.Reader, out io.Writer) *session {
	return &session{
		app:   a,
		in:    in,
		out:   out,
		dirty: make(chan struct{}, 1),
	}
}

func (s *session) Run(ctx context.Context) error {
	s.app.doc.OnChange(s.markDirty)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.renderChanges(ctx)

	s.busy.Store(true)
	s.app.controller.Init(ctx)
	s.busy.Store(false)
	s.render()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			if quit := s.execute(ctx, line); quit {
				return nil
			}
		}
	}
}

// execute runs one command line and reports whether the session should end.
func (s *session) execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	if cmd := strings.ToLower(fields[0]); cmd == "quit" || cmd == "exit" {
		return true
	}

	s.busy.Store(true)
	rendered := s.dispatch(ctx, strings.ToLower(fields[0]), fields[1:])
	// Changes from here on (a hide timer) go through renderChanges.
	s.busy.Store(false)

	if rendered {
		s.render()
	}
	return false
}

// dispatch runs cmd and reports whether the page should be printed
// afterwards.
func (s *session) dispatch(ctx context.Context, cmd string, args []string) bool {
	switch cmd {
	case "help":
		s.print(sessionHelp)
		return false
	case "show":
	case "refresh":
		s.app.controller.RefreshActivities(ctx)
	case "register":
		form := s.app.doc.RegisterForm
		form.Set(ui.FieldEmail, arg(args, 0))
		form.Set(ui.FieldFirstName, arg(args, 1))
		form.Set(ui.FieldLastName, arg(args, 2))
		form.Set(ui.FieldPassword, arg(args, 3))
		s.app.controller.SubmitRegistration(ctx)
	case "signup":
		email, activity := arg(args, 0), arg(args, 1)
		if label, ok := s.app.doc.ActivitySelect.Label(activity); ok {
			s.print(fmt.Sprintf("signing up %s for %s\n", email, label))
		}
		form := s.app.doc.SignupForm
		form.Set(ui.FieldEmail, email)
		form.Set(ui.FieldActivity, activity)
		s.app.controller.SubmitSignup(ctx)
	case "unregister":
		s.app.controller.HandleUnregister()
		s.print("unregister is not available\n")
		return false
	default:
		s.print(fmt.Sprintf("unknown command %q, type help\n", cmd))
		return false
	}
	return true
}

// markDirty queues a render for changes made outside a command.
func (s *session) markDirty() {
	if s.busy.Load() {
		return
	}
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *session) renderChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.dirty:
			s.render()
		}
	}
}

func (s *session) render() {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if err := s.app.doc.Render(s.out); err != nil {
		s.app.zap.Error("Failed to render page", zap.Error(err))
	}
	fmt.Fprint(s.out, "> ")
}

func (s *session) print(text string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprint(s.out, text)
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
