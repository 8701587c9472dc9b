package memory

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type Turn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// Window keeps the most recent turns up to a fixed capacity, evicting the
// oldest first.
type Window struct {
	buf   []Turn
	cap   int
	start int
	size  int
}

func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{
		buf: make([]Turn, capacity),
		cap: capacity,
	}
}

// FromTurns builds a window holding the last capacity turns of history.
func FromTurns(capacity int, history []Turn) *Window {
	w := NewWindow(capacity)
	for _, t := range history {
		w.Append(t)
	}
	return w
}

func (w *Window) Append(t Turn) {
	if w.size < w.cap {
		pos := (w.start + w.size) % w.cap
		w.buf[pos] = t
		w.size++
		return
	}
	w.buf[w.start] = t
	w.start = (w.start + 1) % w.cap
}

func (w *Window) Len() int {
	return w.size
}

// Turns returns the retained turns oldest first.
func (w *Window) Turns() []Turn {
	out := make([]Turn, 0, w.size)
	for i := 0; i < w.size; i++ {
		out = append(out, w.buf[(w.start+i)%w.cap])
	}
	return out
}
