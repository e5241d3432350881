// Package sequence tracks the per-direction MiniTel-Lite nonce counters.
//
// Client-originated and server-originated nonces are independent sequences:
// the client counts 0, 2, 4, ... and the server 1, 3, 5, ... The protocol has
// no resynchronization mechanism, so a mismatched inbound nonce is a hard
// violation, never a resync point.
package sequence

// Tracker holds the two nonce counters for one connection. It is owned
// exclusively by one mission execution and must be Reset per fresh
// connection.
type Tracker struct {
	nextClient uint32
	nextServer uint32
}

func NewTracker() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// NextOutbound returns the nonce for the next client-originated frame and
// advances the client counter. Called exactly once per frame sent.
func (t *Tracker) NextOutbound() uint32 {
	n := t.nextClient
	t.nextClient += 2
	return n
}

// AcceptInbound advances the server counter and reports true iff nonce is
// exactly the expected value. On mismatch the state is left unchanged; the
// caller must treat that as a protocol violation.
func (t *Tracker) AcceptInbound(nonce uint32) bool {
	if nonce != t.nextServer {
		return false
	}
	t.nextServer += 2
	return true
}

// Expected reports the server nonce the tracker will accept next. Used for
// violation diagnostics only.
func (t *Tracker) Expected() uint32 {
	return t.nextServer
}

// Reset restores the fresh-connection state: client 0, server 1.
func (t *Tracker) Reset() {
	t.nextClient = 0
	t.nextServer = 1
}
