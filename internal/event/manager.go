package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goodco/bankbot/internal/bank"
)

var (
	ErrSessionActive   = errors.New("an event session is already live")
	ErrNoActiveSession = errors.New("no event session is live")
)

// Manager owns the single active session. Exactly one session may be live at
// a time; activation and completion transitions are guarded.
type Manager struct {
	mu      sync.Mutex
	current *Session

	store           *bank.Store
	roster          Roster
	notifier        Notifier
	announcer       channelSender
	reviewChannelID string
	artifactDir     string
	now             func() time.Time
}

func NewManager(store *bank.Store, roster Roster, notifier Notifier, announcer channelSender, reviewChannelID, artifactDir string) *Manager {
	return &Manager{
		store:           store,
		roster:          roster,
		notifier:        notifier,
		announcer:       announcer,
		reviewChannelID: reviewChannelID,
		artifactDir:     artifactDir,
	}
}

// SetClock overrides the session clock. Tests only.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Activate transitions idle -> live, seeding timers for current channel
// occupants. Fails when a session is already live.
func (m *Manager) Activate(desc Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return ErrSessionActive
	}
	session := newSession(m.store, m.roster, m.notifier, m.announcer, m.reviewChannelID, m.artifactDir, m.now)
	session.start(desc.ChannelID)
	m.current = session
	return nil
}

// Complete finalizes the live session and resets to idle. Fails when no
// session is live.
func (m *Manager) Complete(ctx context.Context, desc Descriptor) error {
	m.mu.Lock()
	session := m.current
	m.current = nil
	m.mu.Unlock()

	if session == nil {
		return ErrNoActiveSession
	}
	return session.finalize(ctx, desc)
}

// Live reports whether a session is currently live, and its channel.
func (m *Manager) Live() (channelID string, live bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return "", false
	}
	return m.current.channelID, true
}

// MemberJoined records a member entering the live session's channel. No-op
// when idle.
func (m *Manager) MemberJoined(memberID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	m.current.memberJoined(memberID)
}

// MemberLeft records a member leaving the live session's channel. No-op when
// idle or when the member has no timer.
func (m *Manager) MemberLeft(memberID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	m.current.memberLeft(memberID)
}
