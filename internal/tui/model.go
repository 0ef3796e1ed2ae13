// Package tui is the terminal client: sign-in, four tabs and the booking modal.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/profissa/profissa/internal/agenda"
	"github.com/profissa/profissa/internal/backend"
	"github.com/profissa/profissa/internal/booking"
	"github.com/profissa/profissa/internal/directory"
	"github.com/profissa/profissa/internal/format"
	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
	"github.com/profissa/profissa/internal/session"
)

const (
	signInFailed  = "E-mail ou senha inválidos"
	networkFailed = "Não foi possível conectar"
	signUpFailed  = "Não foi possível criar a conta"
	comingSoon    = "Em breve"
)

// Accounts is the part of the backend the shell uses directly.
type Accounts interface {
	SignUp(ctx context.Context, req dto.SignUpRequest) (models.User, error)
	CurrentUser(ctx context.Context) (models.User, error)
}

type Streamer interface {
	Subscribe(ctx context.Context) (<-chan dto.StatusEvent, error)
}

type Deps struct {
	Session   *session.Store
	Accounts  Accounts
	Directory *directory.Service
	Agenda    *agenda.Service
	Booking   *booking.Submitter
	Stream    Streamer
	Location  *time.Location
	Now       func() time.Time
}

type screen int

const (
	screenLogin screen = iota
	screenHome
	screenSearch
	screenAgenda
	screenProfile
)

var tabs = []struct {
	screen screen
	title  string
}{
	{screenHome, "Início"},
	{screenSearch, "Buscar"},
	{screenAgenda, "Agenda"},
	{screenProfile, "Perfil"},
}

var profileMenu = []string{"Configurações", "Pagamento", "Notificações", "Ajuda", "Sair"}

// scope ties requests to the view that issued them.
type scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	gen    int
}

type field struct {
	label  string
	value  string
	secret bool
}

type loginForm struct {
	signUp       bool
	professional bool
	fields       []field
	focus        int
	busy         bool
}

func newLoginForm(signUp bool) loginForm {
	f := loginForm{signUp: signUp}
	if signUp {
		f.fields = append(f.fields, field{label: "Nome"})
	}
	f.fields = append(f.fields, field{label: "E-mail"}, field{label: "Senha", secret: true})
	return f
}

func (f loginForm) value(label string) string {
	for _, fl := range f.fields {
		if fl.label == label {
			return strings.TrimSpace(fl.value)
		}
	}
	return ""
}

type searchState struct {
	area  int // 0 is "Todos", i > 0 is areas[i-1]
	query string
}

type modal struct {
	open        bool
	form        booking.Form
	date        string
	focus       int // 0 date, 1 description
	submitting  bool
	message     string
	messageFail bool
}

type Model struct {
	deps Deps
	root context.Context

	snap        session.Snapshot
	updates     <-chan session.Snapshot
	unsubscribe func()

	screen  screen
	view    scope
	loading bool
	message string
	initCmd tea.Cmd

	login   loginForm
	dir     directory.Directory
	search  searchState
	cursor  int
	agenda  []agenda.Entry
	profile models.User
	modal   modal

	quitting bool
}

// New builds the shell on top of a restored session store. ctx bounds
// every request the shell makes.
func New(ctx context.Context, deps Deps) Model {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	updates, unsubscribe := deps.Session.Subscribe()
	m := Model{
		deps:        deps,
		root:        ctx,
		snap:        deps.Session.Current(),
		updates:     updates,
		unsubscribe: unsubscribe,
		login:       newLoginForm(false),
	}
	if m.snap.State == session.SignedIn {
		m.initCmd = m.enter(screenHome)
	}
	return m
}

// Close releases the session subscription and the active view.
func (m Model) Close() {
	if m.view.cancel != nil {
		m.view.cancel()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitSession(m.updates), m.initCmd)
}

// rescope cancels the current view's requests and opens a fresh scope.
func (m *Model) rescope() {
	if m.view.cancel != nil {
		m.view.cancel()
	}
	ctx, cancel := context.WithCancel(m.root)
	m.view = scope{ctx: ctx, cancel: cancel, gen: m.view.gen + 1}
}

// enter switches to s and starts its loads.
func (m *Model) enter(s screen) tea.Cmd {
	m.rescope()
	m.screen = s
	m.cursor = 0
	m.message = ""
	m.modal = modal{}
	m.loading = true

	switch s {
	case screenHome:
		return loadDirectory(m.view.ctx, m.view.gen, m.deps.Directory, directory.Filter{})
	case screenSearch:
		m.search = searchState{}
		return loadDirectory(m.view.ctx, m.view.gen, m.deps.Directory, directory.Filter{})
	case screenAgenda:
		m.agenda = nil
		return tea.Batch(
			loadAgenda(m.view.ctx, m.view.gen, m.deps.Agenda),
			openStream(m.view.ctx, m.view.gen, m.deps.Stream),
		)
	case screenProfile:
		m.profile = m.snap.User
		return loadProfile(m.view.ctx, m.view.gen, m.deps.Accounts, m.deps.Session)
	default:
		m.loading = false
		m.login = newLoginForm(false)
		return nil
	}
}

// filter reloads the search results for the selected area chip.
func (m *Model) filter() tea.Cmd {
	m.rescope()
	m.cursor = 0
	m.loading = true
	f := directory.Filter{Query: m.search.query}
	if m.search.area > 0 && m.search.area <= len(m.dir.Areas) {
		id := m.dir.Areas[m.search.area-1].ID
		f.AreaID = &id
	}
	return loadDirectory(m.view.ctx, m.view.gen, m.deps.Directory, f)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			m.Close()
			return m, tea.Quit
		}
		if m.modal.open {
			return m.updateModal(msg)
		}
		if m.screen == screenLogin {
			return m.updateLogin(msg)
		}
		return m.updateTabs(msg)

	case sessionMsg:
		if !msg.ok {
			return m, nil
		}
		return m.applySession(msg.snap)

	case authDoneMsg:
		m.login.busy = false
		if msg.err != nil {
			m.message = authMessage(m.login.signUp, msg.err)
		}
		return m, nil

	case signedOutMsg:
		if msg.err != nil {
			m.message = msg.err.Error()
		}
		return m, nil

	case directoryMsg:
		if msg.gen != m.view.gen {
			return m, nil
		}
		m.loading = false
		areas := m.dir.Areas
		m.dir = msg.dir
		if m.screen == screenSearch && len(msg.dir.Areas) == 0 {
			m.dir.Areas = areas
		}
		return m, nil

	case agendaMsg:
		if msg.gen != m.view.gen {
			return m, nil
		}
		m.loading = false
		m.agenda = msg.entries
		return m, nil

	case streamMsg:
		if msg.gen != m.view.gen {
			return m, nil
		}
		return m, waitStatus(msg.gen, msg.ch)

	case statusMsg:
		if msg.gen != m.view.gen {
			return m, nil
		}
		m.agenda, _ = agenda.Apply(m.agenda, msg.ev)
		return m, waitStatus(msg.gen, msg.ch)

	case profileMsg:
		if msg.gen != m.view.gen {
			return m, nil
		}
		m.loading = false
		if msg.err == nil {
			m.profile = msg.user
		}
		return m, nil

	case bookedMsg:
		if msg.gen != m.view.gen || !m.modal.open {
			return m, nil
		}
		m.modal.submitting = false
		if msg.res.Close {
			m.modal = modal{}
			m.message = msg.res.Message
			return m, nil
		}
		m.modal.form = msg.res.Form
		m.modal.message = msg.res.Message
		m.modal.messageFail = msg.err != nil
		return m, nil
	}
	return m, nil
}

func (m Model) applySession(snap session.Snapshot) (tea.Model, tea.Cmd) {
	m.snap = snap
	next := waitSession(m.updates)
	switch snap.State {
	case session.SignedIn:
		if m.screen == screenLogin {
			return m, tea.Batch(next, m.enter(screenHome))
		}
	case session.SignedOut:
		if m.screen != screenLogin {
			m.enter(screenLogin)
		}
	}
	return m, next
}

func authMessage(signUp bool, err error) string {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return signInFailed
	case signUp:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return signUpFailed
		}
	}
	return networkFailed
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	f := &m.login
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % len(f.fields)
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + len(f.fields) - 1) % len(f.fields)
	case tea.KeyCtrlN:
		m.login = newLoginForm(!f.signUp)
		m.message = ""
	case tea.KeyCtrlP:
		if f.signUp {
			f.professional = !f.professional
		}
	case tea.KeyEnter:
		for _, fl := range f.fields {
			if strings.TrimSpace(fl.value) == "" {
				m.message = booking.MissingFieldsMessage
				return m, nil
			}
		}
		f.busy = true
		m.message = ""
		email, password := f.value("E-mail"), f.value("Senha")
		if !f.signUp {
			return m, signIn(m.root, m.deps.Session, email, password)
		}
		req := dto.SignUpRequest{Name: f.value("Nome"), Email: email, Password: password, Role: models.RoleUser}
		if f.professional {
			req.Role = models.RoleProfessional
		}
		return m, signUp(m.root, m.deps.Accounts, m.deps.Session, req)
	default:
		f.fields[f.focus].value = edit(f.fields[f.focus].value, msg)
	}
	return m, nil
}

func (m Model) updateTabs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		return m, m.enter(tabs[(m.tabIndex()+1)%len(tabs)].screen)
	case tea.KeyShiftTab:
		return m, m.enter(tabs[(m.tabIndex()+len(tabs)-1)%len(tabs)].screen)
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
		return m, nil
	}

	if m.screen == screenSearch {
		return m.updateSearch(msg)
	}

	switch s := msg.String(); s {
	case "1", "2", "3", "4":
		return m, m.enter(tabs[s[0]-'1'].screen)
	case "q":
		m.quitting = true
		m.Close()
		return m, tea.Quit
	case "r":
		return m, m.enter(m.screen)
	case "enter":
		switch m.screen {
		case screenHome:
			m.openModal()
		case screenProfile:
			return m.selectMenu()
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyLeft:
		if m.search.area > 0 {
			m.search.area--
			return m, m.filter()
		}
	case tea.KeyRight:
		if m.search.area < len(m.dir.Areas) {
			m.search.area++
			return m, m.filter()
		}
	case tea.KeyEnter:
		m.openModal()
	default:
		m.search.query = edit(m.search.query, msg)
	}
	return m, nil
}

func (m Model) selectMenu() (tea.Model, tea.Cmd) {
	if profileMenu[m.cursor] == "Sair" {
		return m, signOut(m.root, m.deps.Session)
	}
	m.message = comingSoon
	return m, nil
}

func (m *Model) openModal() {
	if m.cursor >= len(m.dir.Professionals) {
		return
	}
	now := m.deps.Now().In(m.deps.Location)
	form := booking.NewForm(m.dir.Professionals[m.cursor], now)
	m.modal = modal{open: true, form: form, date: format.DateTime(now)}
	m.message = ""
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal.submitting {
		return m, nil
	}
	md := &m.modal
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = modal{}
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		md.focus = 1 - md.focus
	case tea.KeyEnter:
		form := md.form
		form.Date = time.Time{}
		if strings.TrimSpace(md.date) != "" {
			when, err := format.ParseDateTime(md.date, m.deps.Location)
			if err != nil {
				md.message = format.InvalidDate
				md.messageFail = true
				return m, nil
			}
			form.Date = when
		}
		md.form = form
		md.submitting = true
		md.message = ""
		return m, submitBooking(m.view.ctx, m.view.gen, m.deps.Booking, form)
	default:
		if md.focus == 0 {
			md.date = edit(md.date, msg)
		} else {
			md.form.Description = edit(md.form.Description, msg)
		}
	}
	return m, nil
}

func (m Model) tabIndex() int {
	for i, t := range tabs {
		if t.screen == m.screen {
			return i
		}
	}
	return 0
}

func (m Model) listLen() int {
	switch m.screen {
	case screenHome, screenSearch:
		return len(m.dir.Professionals)
	case screenAgenda:
		return len(m.agenda)
	case screenProfile:
		return len(profileMenu)
	}
	return 0
}

// edit applies a key press to a text value.
func edit(v string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		r := []rune(v)
		if len(r) > 0 {
			return string(r[:len(r)-1])
		}
	case tea.KeySpace:
		return v + " "
	case tea.KeyRunes:
		return v + string(msg.Runes)
	}
	return v
}
