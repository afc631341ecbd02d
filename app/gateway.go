package app

import (
	"time"

	"github.com/miosa/splash-tui/client"
	"github.com/miosa/splash-tui/session"
)

// gatewayAdapter bridges the HTTP client to the session store's Gateway
// interface, translating wire shapes (string timestamps, chat_options) into
// the store's types.
type gatewayAdapter struct {
	c *client.Client
}

// NewGateway wraps the HTTP client for the session store.
func NewGateway(c *client.Client) session.Gateway {
	return gatewayAdapter{c: c}
}

func (g gatewayAdapter) History() ([]session.HistoryEntry, error) {
	items, err := g.c.History()
	if err != nil {
		return nil, err
	}
	out := make([]session.HistoryEntry, 0, len(items))
	for _, it := range items {
		out = append(out, session.HistoryEntry{
			ID:        it.SessionID(),
			Title:     it.Title,
			Timestamp: parseTime(it.Timestamp),
		})
	}
	return out, nil
}

func (g gatewayAdapter) Messages(sessionID string) ([]session.RemoteMessage, error) {
	records, err := g.c.Messages(sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]session.RemoteMessage, 0, len(records))
	for _, r := range records {
		out = append(out, session.RemoteMessage{
			ID:         r.MessageID,
			Role:       r.Role,
			Content:    r.Content,
			Timestamp:  parseTime(r.Timestamp),
			FileID:     r.FileID,
			References: r.References,
		})
	}
	return out, nil
}

func (g gatewayAdapter) Send(sessionID string, req session.SendRequest) (*session.SendResult, error) {
	resp, err := g.c.SendMessage(sessionID, client.ChatRequest{
		Prompt:      req.Prompt,
		FileID:      req.FileID,
		ChatOptions: req.Topic,
	})
	if err != nil {
		return nil, err
	}
	return &session.SendResult{
		Content:    resp.Response,
		CreatedAt:  parseTime(resp.CreatedAt),
		References: resp.References,
	}, nil
}

func (g gatewayAdapter) Upload(f session.FileUpload) (*session.UploadResult, error) {
	resp, err := g.c.UploadFile(f.Name, f.Mime, f.Data)
	if err != nil {
		return nil, err
	}
	return &session.UploadResult{FileID: resp.FileID, URL: resp.URL}, nil
}

func (g gatewayAdapter) Delete(sessionID string) error {
	_, err := g.c.DeleteChat(sessionID)
	return err
}

func (g gatewayAdapter) ClearAll() error {
	_, err := g.c.ClearHistory()
	return err
}

// parseTime accepts the backend's timestamp formats; a zero time means the
// caller should substitute its own clock.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
