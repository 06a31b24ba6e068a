// Package theme holds the color palette for rendering and the severity
// classification used to color the change tree.
package theme

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
)

// Severity classifies a changed file for display. Higher values win when a
// folder aggregates the colors of its descendants.
type Severity int

const (
	SeverityUntracked Severity = iota
	SeverityModified
	SeverityAdded
	SeverityRenamed
	SeverityConflict
	SeverityDeleted
)

// Max returns the higher-severity of the two.
func Max(a, b Severity) Severity {
	if a > b {
		return a
	}
	return b
}

// Theme defines customizable colors for rendering.
type Theme struct {
	AddColor       string `toml:"add_color"`
	DelColor       string `toml:"del_color"`
	MetaColor      string `toml:"meta_color"`
	DividerColor   string `toml:"divider_color"`
	EditColor      string `toml:"edit_color"`
	ConflictColor  string `toml:"conflict_color"`
	UntrackedColor string `toml:"untracked_color"`
	RenameColor    string `toml:"rename_color"`
}

// Default returns the built-in dark palette.
func Default() Theme {
	return Theme{
		AddColor:       "34",
		DelColor:       "196",
		MetaColor:      "63",
		DividerColor:   "240",
		EditColor:      "220",
		ConflictColor:  "201",
		UntrackedColor: "244",
		RenameColor:    "39",
	}
}

// LoadFromRepo merges .redline/theme.toml at repoRoot over the defaults.
// A missing or unreadable file yields the defaults.
func LoadFromRepo(repoRoot string) Theme {
	t := Default()
	path := filepath.Join(repoRoot, ".redline", "theme.toml")
	if _, err := os.Stat(path); err != nil {
		return t
	}
	var u Theme
	if _, err := toml.DecodeFile(path, &u); err != nil {
		return t
	}
	if u.AddColor != "" {
		t.AddColor = u.AddColor
	}
	if u.DelColor != "" {
		t.DelColor = u.DelColor
	}
	if u.MetaColor != "" {
		t.MetaColor = u.MetaColor
	}
	if u.DividerColor != "" {
		t.DividerColor = u.DividerColor
	}
	if u.EditColor != "" {
		t.EditColor = u.EditColor
	}
	if u.ConflictColor != "" {
		t.ConflictColor = u.ConflictColor
	}
	if u.UntrackedColor != "" {
		t.UntrackedColor = u.UntrackedColor
	}
	if u.RenameColor != "" {
		t.RenameColor = u.RenameColor
	}
	return t
}

func (t Theme) AddText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.AddColor)).Render(s)
}

func (t Theme) DelText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.DelColor)).Render(s)
}

func (t Theme) MetaText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.MetaColor)).Render(s)
}

func (t Theme) DividerText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.DividerColor)).Render(s)
}

func (t Theme) EditText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.EditColor)).Render(s)
}

// SeverityColor maps a severity class to its display color.
func (t Theme) SeverityColor(sev Severity) string {
	switch sev {
	case SeverityDeleted:
		return t.DelColor
	case SeverityConflict:
		return t.ConflictColor
	case SeverityRenamed:
		return t.RenameColor
	case SeverityAdded:
		return t.AddColor
	case SeverityModified:
		return t.MetaColor
	default:
		return t.UntrackedColor
	}
}

// SeverityText renders s in the color for sev.
func (t Theme) SeverityText(sev Severity, s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.SeverityColor(sev))).Render(s)
}
