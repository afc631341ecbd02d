package session

import "strings"

// Topic is one of the backend's chat_options values. The backend treats it
// as an opaque string; the client owns the list.
type Topic string

// DefaultTopic is the only topic with file upload enabled.
const DefaultTopic Topic = "General Macroeconomics"

// Topics in presentation order.
var Topics = []Topic{
	DefaultTopic,
	"2 Wheels",
	"4 Wheels",
	"Retail General",
	"Retail Beauty",
	"Retail FnB",
	"Retail Drugstore",
}

// AllowsUpload reports whether file attachments are available on this topic.
func (t Topic) AllowsUpload() bool {
	return t == DefaultTopic
}

// ParseTopic resolves a user-typed name, case-insensitively.
func ParseTopic(name string) (Topic, bool) {
	for _, t := range Topics {
		if strings.EqualFold(string(t), name) {
			return t, true
		}
	}
	return "", false
}
