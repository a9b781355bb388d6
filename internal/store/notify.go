package store

import "sync"

// Table names a table whose changes can be watched.
type Table string

const (
	TableDeck Table = "rdeck"
	TableGame Table = "rgame"
	TablePack Table = "rpack"
)

// notifier fans table-changed events out to subscribed streams.
//
// Each subscription has a signal channel with a buffer of 1, so any number
// of changes between two reads coalesce into one wake-up. Publishing never
// blocks the writer.
type notifier struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscription
	done   chan struct{} // closed by close()
	closed bool
}

type subscription struct {
	tables map[Table]struct{}
	signal chan struct{}
}

func newNotifier() *notifier {
	return &notifier{
		subs: make(map[uint64]*subscription),
		done: make(chan struct{}),
	}
}

// subscribe registers interest in tables and returns the subscription id and
// its signal channel.
func (n *notifier) subscribe(tables ...Table) (uint64, <-chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()

	sub := &subscription{
		tables: make(map[Table]struct{}, len(tables)),
		signal: make(chan struct{}, 1),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	n.nextID++
	id := n.nextID
	if !n.closed {
		n.subs[id] = sub
	}
	return id, sub.signal
}

func (n *notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}

// publish wakes every subscription watching any of tables.
func (n *notifier) publish(tables ...Table) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, sub := range n.subs {
		if !sub.watches(tables) {
			continue
		}
		select {
		case sub.signal <- struct{}{}:
		default:
		}
	}
}

// close ends every subscription. Safe to call more than once.
func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	n.subs = make(map[uint64]*subscription)
	close(n.done)
}

func (n *notifier) subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

func (s *subscription) watches(tables []Table) bool {
	for _, t := range tables {
		if _, ok := s.tables[t]; ok {
			return true
		}
	}
	return false
}
