package assistant

import (
	"strings"
	"time"

	"github.com/xaenox/wallet-assistant/internal/models"
)

// PrimingMessage asks the model to fetch the categories before the user
// speaks.
const PrimingMessage = "call GetCategories to pre-load category"

// Session is the ordered message history of a single turn. It is created
// fresh for every turn and never shared.
type Session struct {
	messages []models.Message
}

// NewSession opens a turn with the system prompt, {today} replaced by the
// date of today.
func NewSession(systemPrompt string, today time.Time) *Session {
	prompt := strings.ReplaceAll(systemPrompt, "{today}", today.Format(models.DateLayout))
	return &Session{
		messages: []models.Message{{Role: models.RoleSystem, Content: prompt}},
	}
}

// Prime appends the priming instruction.
func (s *Session) Prime() {
	s.append(models.Message{Role: models.RoleSystem, Content: PrimingMessage})
}

func (s *Session) AddUser(content string) {
	s.append(models.Message{Role: models.RoleUser, Content: content})
}

func (s *Session) AddAssistant(content string) {
	s.append(models.Message{Role: models.RoleAssistant, Content: content})
}

// AddFunctionResult records the result of the call name(arguments).
func (s *Session) AddFunctionResult(name, arguments, content string) {
	s.append(models.Message{
		Role:      models.RoleFunction,
		Name:      name,
		Arguments: arguments,
		Content:   content,
	})
}

// FollowsSystem reports whether the message before the last one is a system
// message. After a function result this means the call answered a priming
// instruction and needs no follow-up completion.
func (s *Session) FollowsSystem() bool {
	n := len(s.messages)
	return n >= 2 && s.messages[n-2].Role == models.RoleSystem
}

// Messages returns a copy of the history.
func (s *Session) Messages() []models.Message {
	return append([]models.Message(nil), s.messages...)
}

func (s *Session) Len() int {
	return len(s.messages)
}

// Clear drops the whole history, system prompt included.
func (s *Session) Clear() {
	s.messages = nil
}

func (s *Session) append(m models.Message) {
	s.messages = append(s.messages, m)
}
