package event

import "time"

// Participant accumulates one member's presence time across join/leave
// cycles of a live event. At most one interval is open at a time; an open
// interval does not count toward Total until it is closed.
type Participant struct {
	MemberID string

	total     time.Duration
	startedAt *time.Time
}

func NewParticipant(memberID string) *Participant {
	return &Participant{MemberID: memberID}
}

// Join opens a presence interval starting at now. Calling Join while an
// interval is open restarts it, so callers check Present first.
func (p *Participant) Join(now time.Time) {
	t := now
	p.startedAt = &t
}

// Present reports whether the member currently has an open interval.
func (p *Participant) Present() bool {
	return p.startedAt != nil
}

// Leave closes the open interval at now, adding its length to the running
// total. No-op when no interval is open.
func (p *Participant) Leave(now time.Time) {
	if p.startedAt == nil {
		return
	}
	p.total += now.Sub(*p.startedAt)
	p.startedAt = nil
}

// Flush closes any still-open interval at session end. Called exactly once
// per participant when the event finalizes.
func (p *Participant) Flush(now time.Time) {
	p.Leave(now)
}

// Total returns the accumulated presence time over all closed intervals.
func (p *Participant) Total() time.Duration {
	return p.total
}
