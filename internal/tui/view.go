package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/profissa/profissa/internal/booking"
	"github.com/profissa/profissa/internal/format"
	"github.com/profissa/profissa/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("Profissa"))
	s.WriteString("\n")

	if m.screen == screenLogin {
		s.WriteString(m.viewLogin())
		return s.String()
	}

	s.WriteString(m.viewTabs())
	s.WriteString("\n\n")

	if m.modal.open {
		s.WriteString(m.viewModal())
		return s.String()
	}

	if m.loading {
		s.WriteString(mutedStyle.Render("Carregando..."))
		s.WriteString("\n")
	} else {
		switch m.screen {
		case screenHome:
			s.WriteString(m.viewHome())
		case screenSearch:
			s.WriteString(m.viewSearch())
		case screenAgenda:
			s.WriteString(m.viewAgenda())
		case screenProfile:
			s.WriteString(m.viewProfile())
		}
	}

	if m.message != "" {
		style := successStyle
		if m.message != booking.SuccessMessage {
			style = mutedStyle
		}
		s.WriteString("\n" + style.Render(m.message) + "\n")
	}
	s.WriteString("\n" + mutedStyle.Render(m.help()) + "\n")
	return s.String()
}

func (m Model) viewTabs() string {
	parts := make([]string, 0, len(tabs))
	for i, t := range tabs {
		label := fmt.Sprintf("%d %s", i+1, t.title)
		if t.screen == m.screen {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) viewLogin() string {
	var s strings.Builder
	f := m.login
	if f.signUp {
		s.WriteString(promptStyle.Render("Criar conta") + "\n\n")
	} else {
		s.WriteString(promptStyle.Render("Entrar") + "\n\n")
	}

	for i, fl := range f.fields {
		value := fl.value
		if fl.secret {
			value = strings.Repeat("•", len([]rune(value)))
		}
		line := fmt.Sprintf("%s: %s", fl.label, value)
		if i == f.focus {
			s.WriteString(inputStyle.Render("> "+line+"_") + "\n")
		} else {
			s.WriteString(normalStyle.Render(line) + "\n")
		}
	}
	if f.signUp {
		box := "[ ]"
		if f.professional {
			box = "[x]"
		}
		s.WriteString("\n" + normalStyle.Render(box+" Sou profissional (ctrl+p)") + "\n")
	}

	switch {
	case f.busy:
		s.WriteString("\n" + mutedStyle.Render("Entrando...") + "\n")
	case m.message != "":
		s.WriteString("\n" + errorStyle.Render(m.message) + "\n")
	}

	if f.signUp {
		s.WriteString("\n" + mutedStyle.Render("Enter cadastra · ctrl+n já tenho conta · ctrl+c sai") + "\n")
	} else {
		s.WriteString("\n" + mutedStyle.Render("Enter entra · ctrl+n criar conta · ctrl+c sai") + "\n")
	}
	return s.String()
}

func (m Model) viewHome() string {
	var s strings.Builder
	name := m.snap.User.Name
	if first, _, ok := strings.Cut(name, " "); ok {
		name = first
	}
	s.WriteString(promptStyle.Render("Olá, "+name) + "\n\n")

	if len(m.dir.Areas) > 0 {
		chips := make([]string, 0, len(m.dir.Areas))
		for _, a := range m.dir.Areas {
			chips = append(chips, chipStyle.Render(a.Icon+" "+a.Name))
		}
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...) + "\n\n")
	}

	s.WriteString(promptStyle.Render("Profissionais") + "\n")
	s.WriteString(m.viewProfessionals())
	return s.String()
}

func (m Model) viewSearch() string {
	var s strings.Builder
	chips := []string{m.chip(0, "Todos")}
	for i, a := range m.dir.Areas {
		chips = append(chips, m.chip(i+1, a.Icon+" "+a.Name))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...) + "\n")
	s.WriteString(inputStyle.Render("Buscar: "+m.search.query+"_") + "\n\n")
	s.WriteString(m.viewProfessionals())
	return s.String()
}

func (m Model) chip(i int, label string) string {
	if i == m.search.area {
		return activeChipStyle.Render(label)
	}
	return chipStyle.Render(label)
}

func (m Model) viewProfessionals() string {
	if len(m.dir.Professionals) == 0 {
		return normalStyle.Render("Nenhum profissional encontrado") + "\n"
	}
	var s strings.Builder
	for i, p := range m.dir.Professionals {
		line := fmt.Sprintf("%s %s", avatar(p), p.Name)
		if p.Specialty != nil && *p.Specialty != "" {
			line += " · " + *p.Specialty
		}
		line += " · " + format.Price(p.Price)
		if i == m.cursor {
			s.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString(normalStyle.Render(line) + "\n")
		}
	}
	return s.String()
}

// avatar stands in for the profile picture; an empty image gets the placeholder.
func avatar(p models.User) string {
	if p.Image == nil || *p.Image == "" {
		return "👤"
	}
	return "🖼"
}

func (m Model) viewAgenda() string {
	if len(m.agenda) == 0 {
		return normalStyle.Render("Nenhum agendamento") + "\n"
	}
	var s strings.Builder
	for i, e := range m.agenda {
		line := fmt.Sprintf("%s %s  %s", e.Date, e.Time, e.Professional)
		if e.Specialty != "" {
			line += " (" + e.Specialty + ")"
		}
		line += "  " + badge(e.Status, e.Label())
		if e.Description != "" {
			line += "  " + mutedStyle.Render(e.Description)
		}
		if i == m.cursor {
			s.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString(normalStyle.Render(line) + "\n")
		}
	}
	return s.String()
}

func (m Model) viewProfile() string {
	var s strings.Builder
	u := m.profile
	s.WriteString(promptStyle.Render(avatar(u)+" "+u.Name) + "\n")
	s.WriteString(normalStyle.Render(u.Email) + "\n")
	if u.IsProfessional() {
		s.WriteString(normalStyle.Render("Profissional") + "\n")
	}
	s.WriteString("\n")
	for i, item := range profileMenu {
		if i == m.cursor {
			s.WriteString(selectedStyle.Render("> "+item) + "\n")
		} else {
			s.WriteString(normalStyle.Render(item) + "\n")
		}
	}
	return s.String()
}

func (m Model) viewModal() string {
	md := m.modal
	p := md.form.Professional

	var s strings.Builder
	s.WriteString(promptStyle.Render("Agendar com "+p.Name) + "\n")
	s.WriteString(normalStyle.Render(format.Price(p.Price)) + "\n\n")

	fields := []struct{ label, value string }{
		{"Data (dd/mm/aaaa hh:mm)", md.date},
		{"Descrição", md.form.Description},
	}
	for i, f := range fields {
		line := f.label + ": " + f.value
		if i == md.focus {
			s.WriteString(inputStyle.Render("> "+line+"_") + "\n")
		} else {
			s.WriteString(normalStyle.Render(line) + "\n")
		}
	}

	s.WriteString("\n")
	if md.submitting {
		s.WriteString(mutedStyle.Render("Agendando...") + "\n")
	} else {
		s.WriteString(selectedStyle.Render("[Enter] Confirmar") + "  " + mutedStyle.Render("[Esc] Cancelar") + "\n")
	}
	if md.message != "" {
		style := successStyle
		if md.messageFail {
			style = errorStyle
		}
		s.WriteString("\n" + style.Render(md.message) + "\n")
	}
	return modalStyle.Render(s.String())
}

func (m Model) help() string {
	switch m.screen {
	case screenSearch:
		return "←/→ área · ↑/↓ escolher · Enter agendar · Tab próxima aba"
	case screenHome:
		return "↑/↓ escolher · Enter agendar · 1-4 abas · r recarregar · q sair"
	case screenProfile:
		return "↑/↓ escolher · Enter abrir · 1-4 abas · q sair"
	}
	return "1-4 abas · r recarregar · q sair"
}
