package consumer

// pendingLedger tracks delivery tags that have been dispatched to the handler
// but not yet resolved. It is owned exclusively by the consumer's event loop
// and therefore needs no locking.
type pendingLedger struct {
	tags map[uint64]struct{}
}

func newPendingLedger() *pendingLedger {
	return &pendingLedger{tags: make(map[uint64]struct{})}
}

// Insert records a dispatched tag. Returns false if the tag was already
// pending.
func (l *pendingLedger) Insert(tag uint64) bool {
	if _, ok := l.tags[tag]; ok {
		return false
	}
	l.tags[tag] = struct{}{}
	return true
}

// Remove resolves a tag. Removing an absent tag is a no-op returning false;
// this defends against duplicate resolve events, for example after the ledger
// was cleared on reconnect.
func (l *pendingLedger) Remove(tag uint64) bool {
	if _, ok := l.tags[tag]; !ok {
		return false
	}
	delete(l.tags, tag)
	return true
}

// Clear abandons all pending tags. Used when the connection handle is
// replaced: the broker will redeliver the unacked messages on the new handle.
func (l *pendingLedger) Clear() {
	clear(l.tags)
}

func (l *pendingLedger) Len() int {
	return len(l.tags)
}
