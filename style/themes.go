package style

import "github.com/charmbracelet/lipgloss"

// Theme defines a complete color palette for the TUI.
type Theme struct {
	Name                                        string
	Primary, Secondary, Success, Warning, Error lipgloss.TerminalColor
	Muted, Dim, Border                          lipgloss.TerminalColor
}

// Built-in themes.
var (
	darkTheme = Theme{
		Name:      "dark",
		Primary:   lipgloss.Color("#2563EB"), // blue-600
		Secondary: lipgloss.Color("#0EA5E9"), // sky-500
		Success:   lipgloss.Color("#22C55E"), // green-500
		Warning:   lipgloss.Color("#F59E0B"), // amber-500
		Error:     lipgloss.Color("#EF4444"), // red-500
		Muted:     lipgloss.Color("#6B7280"), // gray-500
		Dim:       lipgloss.Color("#374151"), // gray-700
		Border:    lipgloss.Color("#4B5563"), // gray-600
	}

	lightTheme = Theme{
		Name:      "light",
		Primary:   lipgloss.Color("#1D4ED8"), // blue-700
		Secondary: lipgloss.Color("#0284C7"), // sky-600
		Success:   lipgloss.Color("#16A34A"), // green-600
		Warning:   lipgloss.Color("#D97706"), // amber-600
		Error:     lipgloss.Color("#DC2626"), // red-600
		Muted:     lipgloss.Color("#9CA3AF"), // gray-400
		Dim:       lipgloss.Color("#D1D5DB"), // gray-300
		Border:    lipgloss.Color("#9CA3AF"), // gray-400
	}
)

// Themes maps theme names to their definitions.
var Themes = map[string]Theme{
	"dark":  darkTheme,
	"light": lightTheme,
}

// ThemeNames lists available themes in display order.
var ThemeNames = []string{"dark", "light"}

// CurrentThemeName tracks the active theme name.
var CurrentThemeName = "dark"

// Apply switches the package palette to the named theme. Unknown names are
// ignored and the current theme stays in effect.
func Apply(name string) {
	t, ok := Themes[name]
	if !ok {
		return
	}
	CurrentThemeName = t.Name
	Primary, Secondary, Success = t.Primary.(lipgloss.Color), t.Secondary.(lipgloss.Color), t.Success.(lipgloss.Color)
	Warning, Error = t.Warning.(lipgloss.Color), t.Error.(lipgloss.Color)
	Muted, Dim, Border = t.Muted.(lipgloss.Color), t.Dim.(lipgloss.Color), t.Border.(lipgloss.Color)

	Faint = Faint.Foreground(Muted)
	ErrorText = ErrorText.Foreground(Error)
	BannerTitle = BannerTitle.Foreground(Primary)
	BannerDetail = BannerDetail.Foreground(Muted)
	PromptChar = PromptChar.Foreground(Primary)
	UserLabel = UserLabel.Foreground(Secondary)
	BotLabel = BotLabel.Foreground(Primary)
	SystemText = SystemText.Foreground(Muted)
	Pending = Pending.Foreground(Warning)
	Failed = Failed.Foreground(Error)
	Attachment = Attachment.Foreground(Secondary)
	Reference = Reference.Foreground(Dim)
	SessionActive = SessionActive.Foreground(Primary)
	SessionMeta = SessionMeta.Foreground(Muted)
	StatusBar = StatusBar.Foreground(Muted)
	StatusTopic = StatusTopic.Foreground(Secondary)
	SpinnerStyle = SpinnerStyle.Foreground(Primary)
	Hint = Hint.Foreground(Dim)
	LoginTitle = LoginTitle.Foreground(Primary)
	LoginField = LoginField.Foreground(Muted)
}
