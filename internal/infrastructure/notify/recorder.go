package notify

import "sync"

// Notification is one recorded notification.
type Notification struct {
	Class   Class
	Title   string
	Message string
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify implements Notifier.
func (r *Recorder) Notify(class Class, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Notification{Class: class, Title: title, Message: message})
}

// All returns a copy of every recorded notification.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

// CountClass returns how many notifications of the given class were recorded.
func (r *Recorder) CountClass(class Class) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Class == class {
			n++
		}
	}
	return n
}

// Reset discards recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
