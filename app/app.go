// Package app is the top-level bubbletea model: the state machine over
// login, history loading, idle input and in-flight sends, plus the slash
// command surface. All domain logic lives in the session store; this layer
// only dispatches commands and renders the read model.
package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/miosa/splash-tui/auth"
	"github.com/miosa/splash-tui/client"
	"github.com/miosa/splash-tui/model"
	"github.com/miosa/splash-tui/msg"
	"github.com/miosa/splash-tui/session"
	"github.com/miosa/splash-tui/style"
)

// Version is stamped by main at startup.
var Version = "dev"

var slashCommands = []string{
	"/attach", "/clear", "/delete", "/detach", "/exit", "/help", "/login",
	"/logout", "/new", "/open", "/quit", "/sessions", "/signup", "/topic",
}

type Model struct {
	chat  model.ChatModel
	input model.InputModel
	state State
	keys  KeyMap

	client *client.Client
	creds  *auth.Store
	store  *session.Store

	flow        *loginFlow
	loginNotice string
	userID      string
	staged      *session.FileUpload
	sendStart   time.Time
	confirmQuit bool

	width  int
	height int
}

// New wires the TUI over an already-configured client, credential store and
// session store. When the stored credential is still valid the caller has
// set the bearer token and the model boots straight into history loading.
func New(c *client.Client, creds *auth.Store, store *session.Store) Model {
	input := model.NewInput()
	input.SetCommands(slashCommands)

	m := Model{
		chat:   model.NewChat(80, 20),
		input:  input,
		client: c,
		creds:  creds,
		store:  store,
		keys:   DefaultKeyMap(),
		width:  80,
		height: 24,
	}
	if cred, ok := creds.Load(); ok && creds.IsValid(time.Now()) {
		m.userID = cred.UserID
		m.state = StateLoading
	} else {
		m.state = StateLogin
		m.flow = newLoginFlow(flowLogin)
		m.applyFlowPrompt()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.input.Focus(), tea.WindowSize()}
	if m.state == StateLoading {
		cmds = append(cmds, m.loadHistory())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(rawMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := rawMsg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.chat.SetSize(v.Width, m.chatHeight())
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(v)
	case msg.SignupResult:
		return m.handleSignup(v)
	case msg.LoginResult:
		return m.handleLogin(v)
	case msg.LogoutResult:
		return m.handleLogout(v)
	case msg.HistoryLoaded:
		return m.handleHistoryLoaded(v)
	case msg.SessionSelected:
		return m.handleSessionSelected(v)
	case msg.SendDone:
		return m.handleSendDone(v)
	case msg.DeleteResult:
		if v.Err != nil {
			m.chat.AddNotice(fmt.Sprintf("Delete failed: %v", v.Err))
			return m, nil
		}
		m.refreshChat()
		m.chat.AddNotice("Conversation deleted.")
		return m, nil
	case msg.ClearResult:
		if v.Err != nil {
			m.chat.AddNotice(fmt.Sprintf("Clear failed: %v", v.Err))
			return m, nil
		}
		m.refreshChat()
		m.chat.AddNotice("All conversations cleared. /new starts a fresh one.")
		return m, nil
	case msg.FileStaged:
		if v.Err != nil {
			m.chat.AddNotice(fmt.Sprintf("Attach failed: %v", v.Err))
			return m, nil
		}
		m.staged = &session.FileUpload{Name: v.Name, Mime: v.Mime, Size: v.Size, Data: v.Data}
		m.chat.AddNotice(fmt.Sprintf("Attached %s. It will be sent with your next message. /detach removes it.", v.Name))
		return m, nil
	case msg.TickMsg:
		if m.state == StateSending {
			return m, m.tickCmd()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case StateLogin:
		return m.viewLogin()
	case StateLoading:
		return style.BannerTitle.Render("  SPLASHBot") + "\n\n" +
			style.Faint.Render("  Loading your conversations…")
	default:
		var sections []string
		sections = append(sections, m.headerView())
		sections = append(sections, m.chat.View())
		sections = append(sections, m.statusView())
		sections = append(sections, m.input.View())
		if m.confirmQuit {
			sections = append(sections, style.Hint.Render("  Press Ctrl+C again to quit, or any key to cancel."))
		}
		return strings.Join(sections, "\n")
	}
}

func (m Model) viewLogin() string {
	mode := "Sign in"
	if m.flow != nil && m.flow.mode == flowSignup {
		mode = "Create account"
	}
	var sb strings.Builder
	sb.WriteString(style.LoginTitle.Render("  SPLASHBot — your macroeconomics assistant"))
	sb.WriteString(style.BannerDetail.Render("  " + Version))
	sb.WriteString("\n\n")
	sb.WriteString(style.LoginField.Render("  " + mode))
	if m.flow != nil {
		sb.WriteString(style.LoginField.Render(fmt.Sprintf("  ·  %s", m.flow.prompt())))
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")
	sb.WriteString(style.Hint.Render("  Enter to continue · /signup to create an account · Ctrl+C to quit"))
	if m.loginNotice != "" {
		sb.WriteString("\n\n")
		sb.WriteString(style.ErrorText.Render("  " + m.loginNotice))
	}
	return sb.String()
}

func (m Model) headerView() string {
	title := "New Conversation"
	if cur, ok := m.store.Current(); ok {
		title = cur.Title
	}
	return style.BannerTitle.Render(" SPLASHBot") + style.BannerDetail.Render(" · "+title)
}

func (m Model) statusView() string {
	parts := []string{style.StatusTopic.Render(string(m.store.Topic()))}
	if m.userID != "" {
		parts = append(parts, "user "+shortID(m.userID))
	}
	if m.staged != nil {
		parts = append(parts, style.Attachment.Render("📎 "+m.staged.Name))
	}
	if m.state == StateSending {
		parts = append(parts, style.Pending.Render(fmt.Sprintf("sending… %ds", int(time.Since(m.sendStart).Seconds()))))
	}
	return style.StatusBar.Render(strings.Join(parts, "  ·  "))
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmQuit {
		if key.Matches(k, m.keys.Cancel) {
			return m, tea.Quit
		}
		m.confirmQuit = false
		return m, nil
	}
	switch m.state {
	case StateLogin:
		return m.handleLoginKey(k)
	case StateIdle:
		return m.handleIdleKey(k)
	case StateSending:
		return m.handleSendingKey(k)
	}
	if key.Matches(k, m.keys.Cancel) {
		m.confirmQuit = true
	}
	return m, nil
}

func (m Model) handleLoginKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Cancel), key.Matches(k, m.keys.QuitEOF):
		return m, tea.Quit
	case key.Matches(k, m.keys.Escape):
		// Restart the flow from the first field.
		m.flow = newLoginFlow(m.flow.mode)
		m.loginNotice = ""
		m.input.Reset()
		m.applyFlowPrompt()
		return m, nil
	case key.Matches(k, m.keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		switch text {
		case "/signup":
			m.flow = newLoginFlow(flowSignup)
			m.loginNotice = ""
			m.input.Reset()
			m.applyFlowPrompt()
			return m, nil
		case "/login":
			m.flow = newLoginFlow(flowLogin)
			m.loginNotice = ""
			m.input.Reset()
			m.applyFlowPrompt()
			return m, nil
		case "/quit", "/exit":
			return m, tea.Quit
		}
		if text == "" {
			return m, nil
		}
		m.input.Submit(text)
		if done := m.flow.advance(text); done {
			flow := m.flow
			m.loginNotice = ""
			m.input.SetMasked(false)
			m.input.SetPlaceholder("")
			if flow.mode == flowSignup {
				return m, m.doSignup(flow.email, flow.username, flow.password)
			}
			return m, m.doLogin(flow.email, flow.password)
		}
		m.applyFlowPrompt()
		return m, nil
	}
	updated, cmd := m.input.Update(k)
	if inp, ok := updated.(model.InputModel); ok {
		m.input = inp
	}
	return m, cmd
}

func (m *Model) applyFlowPrompt() {
	m.input.SetPlaceholder(m.flow.prompt())
	m.input.SetMasked(m.flow.masked())
}

func (m Model) handleIdleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Escape):
		m.input.Reset()
		return m, nil
	case key.Matches(k, m.keys.Cancel):
		if m.input.Value() == "" {
			m.confirmQuit = true
			return m, nil
		}
		m.input.Reset()
		return m, nil
	case key.Matches(k, m.keys.QuitEOF):
		if m.input.Value() == "" {
			return m, tea.Quit
		}
	case key.Matches(k, m.keys.NewSession):
		m.store.NewSession()
		m.refreshChat()
		return m, nil
	case key.Matches(k, m.keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Submit(text)
		return m.submitInput(text)
	case key.Matches(k, m.keys.PageUp), key.Matches(k, m.keys.PageDown):
		updated, cmd := m.chat.Update(k)
		if c, ok := updated.(model.ChatModel); ok {
			m.chat = c
		}
		return m, cmd
	}
	updated, cmd := m.input.Update(k)
	if inp, ok := updated.(model.InputModel); ok {
		m.input = inp
	}
	return m, cmd
}

func (m Model) handleSendingKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The round trip cannot be cancelled; only scrolling works here.
	if key.Matches(k, m.keys.PageUp) || key.Matches(k, m.keys.PageDown) {
		updated, cmd := m.chat.Update(k)
		if c, ok := updated.(model.ChatModel); ok {
			m.chat = c
		}
		return m, cmd
	}
	if key.Matches(k, m.keys.Cancel) {
		m.confirmQuit = true
	}
	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}
	file := m.staged
	m.staged = nil
	m.state = StateSending
	m.sendStart = time.Now()
	m.input.Blur()
	cmd := m.sendMessage(text, file)
	// Show the optimistic message as soon as the store appends it.
	return m, tea.Batch(cmd, m.tickCmd())
}

func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	parts := strings.SplitN(text, " ", 2)
	cmd := parts[0]
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	switch cmd {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/help":
		m.chat.AddNotice(helpText())
		return m, nil
	case "/login":
		m.state = StateLogin
		m.flow = newLoginFlow(flowLogin)
		m.applyFlowPrompt()
		return m, nil
	case "/signup":
		m.state = StateLogin
		m.flow = newLoginFlow(flowSignup)
		m.applyFlowPrompt()
		return m, nil
	case "/logout":
		return m, m.doLogout()
	case "/new":
		m.store.NewSession()
		m.staged = nil
		m.refreshChat()
		return m, nil
	case "/sessions":
		m.chat.AddNotice(m.sessionListText())
		return m, nil
	case "/open":
		id, err := m.resolveSession(arg)
		if err != nil {
			m.chat.AddNotice(err.Error())
			return m, nil
		}
		return m, m.openSession(id)
	case "/delete":
		id := arg
		if id == "" {
			cur, ok := m.store.Current()
			if !ok {
				m.chat.AddNotice("Nothing to delete.")
				return m, nil
			}
			id = cur.ID
		} else {
			resolved, err := m.resolveSession(id)
			if err != nil {
				m.chat.AddNotice(err.Error())
				return m, nil
			}
			id = resolved
		}
		return m, m.deleteSession(id)
	case "/clear":
		return m, m.clearAll()
	case "/topic":
		return m.runTopic(arg)
	case "/attach":
		if arg == "" {
			m.chat.AddNotice("Usage: /attach <path to PDF or image>")
			return m, nil
		}
		if !m.store.CanAttach() {
			m.chat.AddNotice(fmt.Sprintf("File upload is only available for %s. Switch with /topic.", session.DefaultTopic))
			return m, nil
		}
		return m, m.stageFile(arg)
	case "/detach":
		if m.staged == nil {
			m.chat.AddNotice("No file attached.")
			return m, nil
		}
		m.chat.AddNotice(fmt.Sprintf("Removed %s.", m.staged.Name))
		m.staged = nil
		return m, nil
	default:
		m.chat.AddNotice(fmt.Sprintf("Unknown command %s. Try /help.", cmd))
		return m, nil
	}
}

func (m Model) runTopic(arg string) (tea.Model, tea.Cmd) {
	if arg == "" {
		var sb strings.Builder
		sb.WriteString("Topics:\n")
		for _, t := range session.Topics {
			marker := "  "
			if t == m.store.Topic() {
				marker = "▸ "
			}
			note := ""
			if t.AllowsUpload() {
				note = "  (file upload available)"
			}
			sb.WriteString(fmt.Sprintf("  %s%s%s\n", marker, t, note))
		}
		m.chat.AddNotice(strings.TrimRight(sb.String(), "\n"))
		return m, nil
	}
	if err := m.store.SetTopic(arg); err != nil {
		m.chat.AddNotice(err.Error())
		return m, nil
	}
	if m.staged != nil && !m.store.CanAttach() {
		m.chat.AddNotice(fmt.Sprintf("Removed %s: the %s topic does not accept files.", m.staged.Name, m.store.Topic()))
		m.staged = nil
	}
	m.chat.AddNotice(fmt.Sprintf("Topic set to %s.", m.store.Topic()))
	return m, nil
}

// -- Result handlers --

func (m Model) handleSignup(r msg.SignupResult) (tea.Model, tea.Cmd) {
	if r.Err != nil {
		m.loginNotice = fmt.Sprintf("Signup failed: %v", r.Err)
		m.flow = newLoginFlow(flowSignup)
		m.applyFlowPrompt()
		return m, nil
	}
	m.loginNotice = "Account created. Sign in to continue."
	m.flow = newLoginFlow(flowLogin)
	m.applyFlowPrompt()
	return m, nil
}

func (m Model) handleLogin(r msg.LoginResult) (tea.Model, tea.Cmd) {
	if r.Err != nil {
		m.loginNotice = fmt.Sprintf("Login failed: %v", r.Err)
		m.flow = newLoginFlow(flowLogin)
		m.applyFlowPrompt()
		return m, nil
	}
	m.userID = r.UserID
	m.loginNotice = ""
	m.flow = nil
	m.state = StateLoading
	return m, m.loadHistory()
}

func (m Model) handleLogout(r msg.LogoutResult) (tea.Model, tea.Cmd) {
	if r.Err != nil {
		m.chat.AddNotice(fmt.Sprintf("Logout warning: %v", r.Err))
	}
	m.userID = ""
	m.staged = nil
	m.chat.ClearSession()
	m.state = StateLogin
	m.flow = newLoginFlow(flowLogin)
	m.applyFlowPrompt()
	return m, m.input.Focus()
}

func (m Model) handleHistoryLoaded(r msg.HistoryLoaded) (tea.Model, tea.Cmd) {
	if r.Err != nil {
		m.state = StateIdle
		m.refreshChat()
		m.chat.AddNotice(fmt.Sprintf("Could not load history: %v", r.Err))
		return m, m.input.Focus()
	}
	if cur, ok := m.store.Current(); ok && !cur.Loaded {
		// Resume the persisted session: fetch its transcript first.
		return m, m.openSession(cur.ID)
	}
	m.state = StateIdle
	m.refreshChat()
	return m, m.input.Focus()
}

func (m Model) handleSessionSelected(r msg.SessionSelected) (tea.Model, tea.Cmd) {
	wasLoading := m.state == StateLoading
	m.state = StateIdle
	m.refreshChat()
	if r.Err != nil {
		m.chat.AddNotice(fmt.Sprintf("Could not open conversation: %v", r.Err))
	}
	if wasLoading {
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) handleSendDone(r msg.SendDone) (tea.Model, tea.Cmd) {
	m.state = StateIdle
	m.refreshChat()
	if r.Err != nil {
		m.chat.AddNotice(fmt.Sprintf("Send failed: %v. The message is kept above, marked undelivered.", r.Err))
	}
	return m, m.input.Focus()
}

// -- Helpers --

func (m *Model) refreshChat() {
	if cur, ok := m.store.Current(); ok {
		m.chat.SetSession(cur)
	} else {
		m.chat.ClearSession()
	}
}

// resolveSession accepts a 1-based index from /sessions or a session id
// (full or unique prefix).
func (m Model) resolveSession(arg string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("Usage: /open <number or id> (see /sessions)")
	}
	entries := m.store.History()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(entries) {
			return "", fmt.Errorf("No conversation %d; /sessions lists %d.", n, len(entries))
		}
		return entries[n-1].ID, nil
	}
	var match string
	for _, e := range entries {
		if e.ID == arg {
			return e.ID, nil
		}
		if strings.HasPrefix(e.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("Id prefix %q is ambiguous.", arg)
			}
			match = e.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("No conversation matches %q.", arg)
	}
	return match, nil
}

func (m Model) sessionListText() string {
	entries := m.store.History()
	if len(entries) == 0 {
		return "No conversations yet. /new starts one."
	}
	cur, hasCur := m.store.Current()
	var sb strings.Builder
	sb.WriteString("Conversations:\n")
	for i, e := range entries {
		marker := "  "
		if hasCur && e.ID == cur.ID {
			marker = "▸ "
		}
		when := ""
		if !e.Timestamp.IsZero() {
			when = " — " + e.Timestamp.Local().Format("Jan 2 15:04")
		}
		sb.WriteString(fmt.Sprintf("  %s%d. %s [%s]%s\n", marker, i+1, e.Title, shortID(e.ID), when))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// chatHeight calculates available lines for the chat viewport.
func (m Model) chatHeight() int {
	reserved := 4 // header, status bar, input, spacing
	h := m.height - reserved
	if h < 5 {
		h = 5
	}
	return h
}

// shortID truncates an ID to 8 characters for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func helpText() string {
	return `Commands:
  /help           Show this help
  /new            Start a new conversation
  /sessions       List conversations
  /open <n|id>    Open a conversation
  /delete [n|id]  Delete a conversation (default: current)
  /clear          Delete all conversations
  /topic [name]   Show or switch the chat topic
  /attach <path>  Attach a PDF or image (10 MB max)
  /detach         Remove the staged attachment
  /login          Sign in
  /signup         Create an account
  /logout         Sign out
  /exit           Quit

Keybindings:
  Enter        Submit message
  Ctrl+N       New conversation
  Ctrl+C       Cancel / quit
  PgUp/PgDn    Scroll the transcript
  Tab          Autocomplete commands
  Up/Down      Navigate input history`
}
