package style

import "github.com/charmbracelet/lipgloss"

// Colors — matches SPLASH branding.
var (
	Primary   = lipgloss.Color("#2563EB") // blue-600
	Secondary = lipgloss.Color("#0EA5E9") // sky-500
	Success   = lipgloss.Color("#22C55E") // green-500
	Warning   = lipgloss.Color("#F59E0B") // amber-500
	Error     = lipgloss.Color("#EF4444") // red-500
	Muted     = lipgloss.Color("#6B7280") // gray-500
	Dim       = lipgloss.Color("#374151") // gray-700
	Fg        = lipgloss.Color("#E5E7EB") // gray-200
	Border    = lipgloss.Color("#4B5563") // gray-600
)

// Base styles.
var (
	Bold      = lipgloss.NewStyle().Bold(true)
	Faint     = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)

	// Banner
	BannerTitle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
	BannerDetail = lipgloss.NewStyle().
			Foreground(Muted)

	// Prompt
	PromptChar = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// Chat
	UserLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)
	BotLabel = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
	SystemText = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Delivery state markers
	Pending = lipgloss.NewStyle().
		Foreground(Warning)
	Failed = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	// Attachment chip
	Attachment = lipgloss.NewStyle().
			Foreground(Secondary)

	// References under an assistant reply
	Reference = lipgloss.NewStyle().
			Foreground(Dim)

	// Session list
	SessionActive = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
	SessionTitle = lipgloss.NewStyle().
			Foreground(Fg)
	SessionMeta = lipgloss.NewStyle().
			Foreground(Muted)

	// Status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(Muted).
			PaddingLeft(1)
	StatusTopic = lipgloss.NewStyle().
			Foreground(Secondary)

	// Spinner
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)

	// Hint text (tab completion, key help)
	Hint = lipgloss.NewStyle().
		Foreground(Dim)

	// Login screen
	LoginTitle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
	LoginField = lipgloss.NewStyle().
			Foreground(Muted)
)
