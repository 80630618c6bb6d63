package roomsync

// Guard is a per-stream fetch sequence counter. Every issued request
// takes a ticket; a completed fetch applies only while its ticket is
// still the newest issued for the stream. Guards are not safe for
// concurrent use on their own; the engine holds them under its mutex.
type Guard struct {
	seq uint64
}

// Issue increments the sequence and returns the new ticket
func (g *Guard) Issue() uint64 {
	g.seq++
	return g.seq
}

// Current reports whether the ticket is still the newest issued
func (g *Guard) Current(ticket uint64) bool {
	return g.seq == ticket
}

// Invalidate discards all outstanding tickets
func (g *Guard) Invalidate() {
	g.seq++
}
