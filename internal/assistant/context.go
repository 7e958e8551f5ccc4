package assistant

// Role marks who said an entry in the running transcript.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one line of the conversation transcript.
type Entry struct {
	Role Role
	Text string
}

// Context is the running transcript for one session. It is owned by the
// processing goroutine, grows monotonically and is never persisted.
type Context struct {
	entries []Entry
}

func NewContext() *Context { return &Context{} }

func (c *Context) Append(role Role, text string) {
	c.entries = append(c.entries, Entry{Role: role, Text: text})
}

func (c *Context) Len() int { return len(c.entries) }

// Entries returns a copy of the whole transcript.
func (c *Context) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Window returns the last n entries. The transcript itself keeps growing;
// only the slice handed to the language model is capped.
func (c *Context) Window(n int) []Entry {
	if n <= 0 || n >= len(c.entries) {
		return c.Entries()
	}
	return append([]Entry(nil), c.entries[len(c.entries)-n:]...)
}
