package daemon

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultInboxCapacity = 100

// Inbox is a threadsafe, bounded record of OPEN requests received from other
// instances. It satisfies remote.MessageHandler.
type Inbox struct {
	mu       sync.RWMutex
	capacity int
	msgs     []InboxMessage
	now      func() time.Time
}

// NewInbox keeps at most capacity messages, dropping the oldest first.
func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = defaultInboxCapacity
	}
	return &Inbox{capacity: capacity, now: func() time.Time { return time.Now().UTC() }}
}

// HandleCommandLineArguments records args as a new message.
func (in *Inbox) HandleCommandLineArguments(args []string) {
	msg := InboxMessage{
		ID:         uuid.NewString(),
		Args:       append([]string(nil), args...),
		ReceivedAt: in.now(),
	}

	in.mu.Lock()
	in.msgs = append(in.msgs, msg)
	if over := len(in.msgs) - in.capacity; over > 0 {
		in.msgs = append([]InboxMessage(nil), in.msgs[over:]...)
	}
	in.mu.Unlock()

	log.Printf("remote open request id=%s args=[%s]", msg.ID, strings.Join(msg.Args, ", "))
}

// List returns a copy of the stored messages, oldest first.
func (in *Inbox) List() []InboxMessage {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]InboxMessage, len(in.msgs))
	for i, m := range in.msgs {
		m.Args = append([]string(nil), m.Args...)
		out[i] = m
	}
	return out
}

// Len returns the number of stored messages.
func (in *Inbox) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.msgs)
}
