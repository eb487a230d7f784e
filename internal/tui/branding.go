package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/flick/internal/config"
)

const AppName = "flick"

// LogoLines is the canonical ASCII logo.
var LogoLines = []string{
	"▄████ ██     ██  ▄████ ██  ▄█▀",
	"██▄▄  ██     ██ ██     ██▄██  ",
	"██▀▀  ██     ██ ██     ██▀██  ",
	"██    ██████ ██  ▀████ ██  ▀█▄",
}

// Brand colors, overridable through ui.colors.
var (
	PrimaryColor   = lipgloss.Color("#AB8BFF") // Light violet
	SecondaryColor = lipgloss.Color("#D6C7FF") // Lavender
	AccentColor    = lipgloss.Color("#AB8BFF")

	BackgroundColor = lipgloss.Color("#030014") // Near black
	SurfaceColor    = lipgloss.Color("#0F0D23") // Card background
	TextColor       = lipgloss.Color("#EAEAEA")
	MutedColor      = lipgloss.Color("#9CA4AB")

	RatingColor  = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#EF4444")
	SuccessColor = lipgloss.Color("#10B981")
)

// Styled components
var (
	LogoStyle          lipgloss.Style
	HeaderStyle        lipgloss.Style
	StatusBarStyle     lipgloss.Style
	HelpStyle          lipgloss.Style
	ErrorMessageStyle  lipgloss.Style
	SeparatorStyle     lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
	CardStyle          lipgloss.Style
	SelectedCardStyle  lipgloss.Style
	CardTitleStyle     lipgloss.Style
	PosterStyle        lipgloss.Style
	RatingStyle        lipgloss.Style
)

func init() {
	buildStyles()
}

// ApplyTheme replaces the brand colors with any set in colors.
func ApplyTheme(colors config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, colors.Primary)
	set(&SecondaryColor, colors.Secondary)
	set(&AccentColor, colors.Accent)
	set(&BackgroundColor, colors.Background)
	set(&SurfaceColor, colors.Surface)
	set(&TextColor, colors.Text)
	set(&MutedColor, colors.Muted)
	set(&ErrorColor, colors.Error)
	set(&SuccessColor, colors.Success)
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(RatingColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SurfaceColor).
		Padding(0, 1)

	SelectedCardStyle = CardStyle.
		BorderForeground(AccentColor)

	CardTitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true)

	PosterStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Background(SurfaceColor).
		Align(lipgloss.Center, lipgloss.Center)

	RatingStyle = lipgloss.NewStyle().
		Foreground(RatingColor)
}

func renderLogo() string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
}

// Banner returns the startup banner used by the version command.
func Banner(version string) string {
	lines := make([]string, 0, len(LogoLines)+2)
	for _, line := range LogoLines {
		lines = append(lines, LogoStyle.Render(line))
	}
	lines = append(lines, "")

	tagline := "    Movie Search"
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tagline = fmt.Sprintf("    Movie Search %s", version)
	}
	lines = append(lines, HeaderStyle.Render(tagline))

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	banner := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, lines...))

	return lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		Render(banner)
}

func ShowBanner(version string) {
	fmt.Println(Banner(version))
}
