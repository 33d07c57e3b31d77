package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

var currentTheme Theme = ThemeDark

// Dark Theme - Tokyo Night
var darkColors = struct {
	Bg, Text, TextDim, Accent    lipgloss.Color
	Green, Yellow, Red, Comment  lipgloss.Color
	Highlight, Marker, Selection lipgloss.Color
}{
	Bg:        lipgloss.Color("#1a1b26"),
	Text:      lipgloss.Color("#c0caf5"),
	TextDim:   lipgloss.Color("#787fa0"),
	Accent:    lipgloss.Color("#7aa2f7"),
	Green:     lipgloss.Color("#9ece6a"),
	Yellow:    lipgloss.Color("#e0af68"),
	Red:       lipgloss.Color("#f7768e"),
	Comment:   lipgloss.Color("#787fa0"),
	Highlight: lipgloss.Color("#ff9e64"),
	Marker:    lipgloss.Color("#bb9af7"),
	Selection: lipgloss.Color("#24283b"),
}

// Light Theme - Tokyo Night Light variant
var lightColors = struct {
	Bg, Text, TextDim, Accent    lipgloss.Color
	Green, Yellow, Red, Comment  lipgloss.Color
	Highlight, Marker, Selection lipgloss.Color
}{
	Bg:        lipgloss.Color("#d5d6db"),
	Text:      lipgloss.Color("#343b58"),
	TextDim:   lipgloss.Color("#6a6d7c"),
	Accent:    lipgloss.Color("#34548a"),
	Green:     lipgloss.Color("#485e30"),
	Yellow:    lipgloss.Color("#8f5e15"),
	Red:       lipgloss.Color("#8c4351"),
	Comment:   lipgloss.Color("#6a6d7c"),
	Highlight: lipgloss.Color("#965027"),
	Marker:    lipgloss.Color("#7847bd"),
	Selection: lipgloss.Color("#e9e9ec"),
}

// Active color variables (set by InitTheme)
var (
	ColorBg        lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextDim   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorGreen     lipgloss.Color
	ColorYellow    lipgloss.Color
	ColorRed       lipgloss.Color
	ColorComment   lipgloss.Color
	ColorHighlight lipgloss.Color
	ColorMarker    lipgloss.Color
	ColorSelection lipgloss.Color
)

// Styles rebuilt by InitTheme.
var (
	promptStyle    lipgloss.Style
	counterStyle   lipgloss.Style
	rowStyle       lipgloss.Style
	cursorRowStyle lipgloss.Style
	highlightStyle lipgloss.Style
	markerStyle    lipgloss.Style
	helpStyle      lipgloss.Style
)

// themeMu protects the global color/style variables during live theme
// switches from the config watcher.
var themeMu sync.RWMutex

// InitTheme sets the active color palette based on theme name.
// Must be called before any UI rendering.
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()

	colors := darkColors
	currentTheme = ThemeDark
	if theme == "light" {
		colors = lightColors
		currentTheme = ThemeLight
	}

	ColorBg = colors.Bg
	ColorText = colors.Text
	ColorTextDim = colors.TextDim
	ColorAccent = colors.Accent
	ColorGreen = colors.Green
	ColorYellow = colors.Yellow
	ColorRed = colors.Red
	ColorComment = colors.Comment
	ColorHighlight = colors.Highlight
	ColorMarker = colors.Marker
	ColorSelection = colors.Selection

	promptStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	counterStyle = lipgloss.NewStyle().Foreground(ColorYellow)
	rowStyle = lipgloss.NewStyle().Foreground(ColorText)
	cursorRowStyle = lipgloss.NewStyle().Foreground(ColorText).Background(ColorSelection).Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	markerStyle = lipgloss.NewStyle().Foreground(ColorMarker).Bold(true)
	helpStyle = lipgloss.NewStyle().Foreground(ColorComment)
}

// CurrentTheme returns the active theme.
func CurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

func init() {
	InitTheme("dark")
}
