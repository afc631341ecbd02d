package app

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/miosa/splash-tui/client"
	"github.com/miosa/splash-tui/msg"
	"github.com/miosa/splash-tui/session"
)

// Command functions return tea.Cmd closures so every network round trip runs
// off the update loop. Each closure captures what it needs by value.

func (m Model) doLogin(emailOrUsername, password string) tea.Cmd {
	c := m.client
	creds := m.creds
	return func() tea.Msg {
		resp, err := c.Login(client.LoginRequest{EmailOrUsername: emailOrUsername, Password: password})
		if err != nil {
			return msg.LoginResult{Err: err}
		}
		exch, err := c.ExchangeToken(resp.Token)
		if err != nil {
			return msg.LoginResult{Err: err}
		}
		expiresIn := exch.ExpiresInSeconds()
		if err := creds.Save(resp.UserID, exch.IDToken, exch.RefreshToken, expiresIn); err != nil {
			// The session still works in memory; persistence is what failed.
			log.Warn("persist credentials", "err", err)
		}
		return msg.LoginResult{UserID: resp.UserID, ExpiresIn: expiresIn}
	}
}

func (m Model) doSignup(email, username, password string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		resp, err := c.Signup(client.SignupRequest{Email: email, Username: username, Password: password})
		if err != nil {
			return msg.SignupResult{Err: err}
		}
		return msg.SignupResult{UserID: resp.UserID}
	}
}

func (m Model) doLogout() tea.Cmd {
	c := m.client
	creds := m.creds
	store := m.store
	return func() tea.Msg {
		err := creds.Clear()
		c.SetToken("")
		store.Reset()
		return msg.LogoutResult{Err: err}
	}
}

func (m Model) loadHistory() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if err := store.LoadHistory(); err != nil {
			return msg.HistoryLoaded{Err: err}
		}
		return msg.HistoryLoaded{Count: len(store.History())}
	}
}

func (m Model) openSession(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return msg.SessionSelected{ID: id, Err: store.Select(id)}
	}
}

func (m Model) sendMessage(text string, file *session.FileUpload) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return msg.SendDone{Err: store.Send(text, file)}
	}
}

func (m Model) deleteSession(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return msg.DeleteResult{ID: id, Err: store.Delete(id)}
	}
}

func (m Model) clearAll() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return msg.ClearResult{Err: store.ClearAll()}
	}
}

// stageFile reads and validates a local file for attachment. Validation
// happens here so a bad file never leaves a half-staged state behind.
func (m Model) stageFile(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return msg.FileStaged{Err: err}
		}
		name := filepath.Base(path)
		mimeType := mime.TypeByExtension(filepath.Ext(path))
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		upload := session.FileUpload{Name: name, Mime: mimeType, Size: int64(len(data)), Data: data}
		if err := upload.Validate(); err != nil {
			return msg.FileStaged{Err: err}
		}
		return msg.FileStaged{Name: name, Mime: mimeType, Size: upload.Size, Data: data}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return msg.TickMsg{} })
}
