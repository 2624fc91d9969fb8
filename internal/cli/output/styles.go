package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the commands.
type Styles struct {
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Key     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),
		Key:     r.NewStyle().Foreground(lipgloss.Color("8")).Width(14),
	}
}

// FormatKeyValue formats an aligned "key value" line.
func (s *Styles) FormatKeyValue(key, value string) string {
	return s.Key.Render(key) + " " + value
}
