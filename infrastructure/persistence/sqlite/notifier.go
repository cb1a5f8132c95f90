package sqlite

import "sync"

// Notifier fans out table change events so callers can keep query results
// live. Each subscription gets a buffered signal channel; a slow consumer
// coalesces signals instead of blocking writers.
type Notifier struct {
	mu   sync.Mutex
	subs map[string][]chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string][]chan struct{})}
}

// Watch subscribes to changes on a table. The returned cancel func must be
// called when the watcher is done.
func (n *Notifier) Watch(table string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	n.subs[table] = append(n.subs[table], ch)
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		watchers := n.subs[table]
		for i, w := range watchers {
			if w == ch {
				n.subs[table] = append(watchers[:i], watchers[i+1:]...)
				break
			}
		}
	}
	return ch, cancel
}

// Notify signals every watcher of the given tables. Non-blocking; a signal
// already pending satisfies the new one.
func (n *Notifier) Notify(tables ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, table := range tables {
		for _, ch := range n.subs[table] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}
