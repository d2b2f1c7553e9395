package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/taskmgr/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Done, Help                          lipgloss.Style
	High, Medium, Low                             lipgloss.Style
	InProgress                                    lipgloss.Style

	Border                lipgloss.Border
	BorderColor           lipgloss.TerminalColor
	SymDone, SymUnchecked string
	SymOK, SymFail        string
}

var current = classic()

func classic() Theme {
	return Theme{
		Title:       lipgloss.NewStyle().Bold(true),
		Muted:       lipgloss.NewStyle().Faint(true),
		Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Selected:    lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:        lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:        lipgloss.NewStyle().Faint(true),
		High:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Medium:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Low:         lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		InProgress:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("8"),
		SymDone:     "✔", SymUnchecked: "•",
		SymOK: "✔", SymFail: "✖",
	}
}

// SetTheme switches the palette: classic (default), neon or mono.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		t := classic()
		t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
		t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		t.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		t.InProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		t.BorderColor = lipgloss.Color("13")
		current = t
	case "mono":
		plain := lipgloss.NewStyle()
		current = Theme{
			Title: plain.Bold(true), Muted: plain, Accent: plain,
			Success: plain, Error: plain, Pending: plain,
			Selected: plain.Reverse(true), Done: plain, Help: plain,
			High: plain, Medium: plain, Low: plain, InProgress: plain,
			Border:      lipgloss.NormalBorder(),
			BorderColor: lipgloss.NoColor{},
			SymDone:     "x", SymUnchecked: "-",
			SymOK: "ok", SymFail: "error:",
		}
	default: // classic
		current = classic()
	}
}

// Expose what renderers need
func Current() Theme { return current }

// PriorityStyle colors High red, Medium yellow, everything else green.
func PriorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityHigh:
		return current.High
	case model.PriorityMedium:
		return current.Medium
	default:
		return current.Low
	}
}

// StatusStyle colors Pending yellow, In Progress blue, everything else green.
func StatusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusPending:
		return current.Pending
	case model.StatusInProgress:
		return current.InProgress
	default:
		return current.Success
	}
}
