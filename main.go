package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/miosa/splash-tui/app"
	"github.com/miosa/splash-tui/auth"
	"github.com/miosa/splash-tui/client"
	"github.com/miosa/splash-tui/config"
	"github.com/miosa/splash-tui/kv"
	"github.com/miosa/splash-tui/session"
	"github.com/miosa/splash-tui/style"
)

var version = "dev"

const (
	defaultBackendURL  = "http://localhost:8000"
	defaultIdentityURL = "https://identitytoolkit.googleapis.com"
)

func main() {
	profileFlag := flag.String("profile", "", "Named profile for state isolation (~/.splash/profiles/<name>)")
	noColor := flag.Bool("no-color", false, "Disable ANSI colors")
	debug := flag.Bool("debug", false, "Verbose logging to the profile log file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.BoolVar(showVersion, "V", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("splash %s\n", version)
		os.Exit(0)
	}

	if *noColor {
		lipgloss.SetColorProfile(0)
	}

	home, _ := os.UserHomeDir()
	profileDir := filepath.Join(home, ".splash")
	if *profileFlag != "" {
		profileDir = filepath.Join(profileDir, "profiles", *profileFlag)
	}
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "splash: create profile dir: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(filepath.Join(profileDir, "splash.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err == nil {
		defer logFile.Close()
		log.SetOutput(logFile)
	}
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg := config.Load(profileDir)
	backendURL := firstOf(os.Getenv("SPLASH_URL"), cfg.BackendURL, defaultBackendURL)
	identityURL := firstOf(os.Getenv("SPLASH_IDENTITY_URL"), cfg.IdentityURL, defaultIdentityURL)
	apiKey := firstOf(os.Getenv("SPLASH_API_KEY"), cfg.APIKey)

	theme := cfg.Theme
	if theme == "" {
		if lipgloss.HasDarkBackground() {
			theme = "dark"
		} else {
			theme = "light"
		}
	}
	style.Apply(theme)

	db, err := kv.Open(filepath.Join(profileDir, "state.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "splash: open state database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	guard := auth.NewReadyGuard()
	creds := auth.NewStore(db)
	c := client.New(backendURL, identityURL, apiKey, guard)
	if cred, ok := creds.Load(); ok && creds.IsValid(time.Now()) {
		c.SetToken(cred.IDToken)
		log.Debug("restored credentials", "user", cred.UserID, "expires", cred.ExpiresAt)
	}

	store := session.NewStore(app.NewGateway(c), db)

	app.Version = version
	m := app.New(c, creds, store)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "splash: %v\n", err)
		os.Exit(1)
	}
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
