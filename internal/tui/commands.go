package tui

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/profissa/profissa/internal/agenda"
	"github.com/profissa/profissa/internal/booking"
	"github.com/profissa/profissa/internal/directory"
	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
	"github.com/profissa/profissa/internal/session"
)

// Responses for a view carry the generation of the view that asked for
// them; Update drops those whose view has been left.

type sessionMsg struct {
	snap session.Snapshot
	ok   bool
}

type authDoneMsg struct{ err error }

type signedOutMsg struct{ err error }

type directoryMsg struct {
	gen int
	dir directory.Directory
}

type agendaMsg struct {
	gen     int
	entries []agenda.Entry
}

type streamMsg struct {
	gen int
	ch  <-chan dto.StatusEvent
}

type statusMsg struct {
	gen int
	ev  dto.StatusEvent
	ch  <-chan dto.StatusEvent
}

type profileMsg struct {
	gen  int
	user models.User
	err  error
}

type bookedMsg struct {
	gen int
	res booking.Result
	err error
}

func waitSession(ch <-chan session.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		return sessionMsg{snap: snap, ok: ok}
	}
}

func signIn(ctx context.Context, s *session.Store, email, password string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.SignIn(ctx, email, password)
		return authDoneMsg{err: err}
	}
}

func signUp(ctx context.Context, accounts Accounts, s *session.Store, req dto.SignUpRequest) tea.Cmd {
	return func() tea.Msg {
		if _, err := accounts.SignUp(ctx, req); err != nil {
			return authDoneMsg{err: err}
		}
		_, err := s.SignIn(ctx, req.Email, req.Password)
		return authDoneMsg{err: err}
	}
}

func signOut(ctx context.Context, s *session.Store) tea.Cmd {
	return func() tea.Msg {
		return signedOutMsg{err: s.SignOut(ctx)}
	}
}

func loadDirectory(ctx context.Context, gen int, svc *directory.Service, f directory.Filter) tea.Cmd {
	return func() tea.Msg {
		return directoryMsg{gen: gen, dir: svc.Load(ctx, f)}
	}
}

func loadAgenda(ctx context.Context, gen int, svc *agenda.Service) tea.Cmd {
	return func() tea.Msg {
		return agendaMsg{gen: gen, entries: svc.Load(ctx)}
	}
}

// openStream subscribes for the lifetime of ctx. A failure only costs live
// updates, so it is logged and the agenda stays as loaded.
func openStream(ctx context.Context, gen int, s Streamer) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		ch, err := s.Subscribe(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("tui: agenda stream: %v", err)
			}
			return nil
		}
		return streamMsg{gen: gen, ch: ch}
	}
}

func waitStatus(gen int, ch <-chan dto.StatusEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return statusMsg{gen: gen, ev: ev, ch: ch}
	}
}

func loadProfile(ctx context.Context, gen int, accounts Accounts, s *session.Store) tea.Cmd {
	return func() tea.Msg {
		u, err := accounts.CurrentUser(ctx)
		if err != nil {
			return profileMsg{gen: gen, err: err}
		}
		if err := s.SetUser(ctx, u); err != nil {
			log.Printf("tui: cache user: %v", err)
		}
		return profileMsg{gen: gen, user: u}
	}
}

func submitBooking(ctx context.Context, gen int, sub *booking.Submitter, f booking.Form) tea.Cmd {
	return func() tea.Msg {
		res, err := sub.Submit(ctx, f)
		return bookedMsg{gen: gen, res: res, err: err}
	}
}
