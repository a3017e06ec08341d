package host

import "sync"

// StatusEvent is one status or progress update.
type StatusEvent struct {
	Text     string
	Progress int
	Maximum  int
	// IsProgress distinguishes progress updates from status text.
	IsProgress bool
}

// StatusChannel fans status and progress out to subscribers and keeps the
// latest of each.
type StatusChannel struct {
	mu       sync.Mutex
	text     string
	progress int
	maximum  int
	subs     map[int]func(StatusEvent)
	nextSub  int
	closed   bool
}

func NewStatusChannel() *StatusChannel {
	return &StatusChannel{subs: make(map[int]func(StatusEvent))}
}

// Subscribe calls fn for every later update until the returned cancel func
// is called or the channel is closed.
func (c *StatusChannel) Subscribe(fn func(StatusEvent)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// ShowStatus publishes text.
func (c *StatusChannel) ShowStatus(text string) {
	c.publish(StatusEvent{Text: text}, func() { c.text = text })
}

// ShowProgress publishes current out of maximum.
func (c *StatusChannel) ShowProgress(current, maximum int) {
	c.publish(StatusEvent{Progress: current, Maximum: maximum, IsProgress: true}, func() {
		c.progress, c.maximum = current, maximum
	})
}

func (c *StatusChannel) publish(ev StatusEvent, store func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	store()

	subs := make([]func(StatusEvent), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Text returns the latest status text.
func (c *StatusChannel) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.text
}

// Progress returns the latest progress.
func (c *StatusChannel) Progress() (current, maximum int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.progress, c.maximum
}

// Close drops every subscriber and ignores later updates.
func (c *StatusChannel) Close() {
	c.mu.Lock()
	c.closed = true
	c.subs = nil
	c.mu.Unlock()
}
