package event

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/goodco/bankbot/internal/bank"
	"github.com/goodco/bankbot/internal/notify"
)

// Descriptor carries the metadata of a scheduled event at activation or
// completion.
type Descriptor struct {
	Name        string
	Description string
	ChannelID   string
}

// Member is a resolved guild member.
type Member struct {
	ID          string
	DisplayName string
	RoleIDs     []string
}

// Roster resolves live guild membership. Satisfied by the bot's Discord
// session wrapper.
type Roster interface {
	// ChannelMembers lists the member IDs currently in the voice channel.
	ChannelMembers(channelID string) []string
	// Member resolves a guild member by ID; ok=false when they have left.
	Member(memberID string) (Member, bool)
}

// Notifier delivers paginated DMs; delivery failure is non-fatal.
type Notifier interface {
	SendPaginated(recipientID, title string, fields []notify.Field, pageSize int) bool
}

// Minimal session interface for posting to the review channel.
type channelSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Session owns the lifecycle of one live event: occupancy tracking while the
// event runs, then token awards, notifications and the summary artifact at
// finalize.
type Session struct {
	store           *bank.Store
	roster          Roster
	notifier        Notifier
	announcer       channelSender
	reviewChannelID string
	artifactDir     string
	now             func() time.Time

	channelID    string
	startTime    time.Time
	endTime      time.Time
	participants map[string]*Participant
}

func newSession(store *bank.Store, roster Roster, notifier Notifier, announcer channelSender, reviewChannelID, artifactDir string, now func() time.Time) *Session {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Session{
		store:           store,
		roster:          roster,
		notifier:        notifier,
		announcer:       announcer,
		reviewChannelID: reviewChannelID,
		artifactDir:     artifactDir,
		now:             now,
		participants:    make(map[string]*Participant),
	}
}

// start captures the start time and seeds a timer per current occupant, each
// with an interval opened at the start time.
func (s *Session) start(channelID string) {
	s.channelID = channelID
	s.startTime = s.now()
	for _, memberID := range s.roster.ChannelMembers(channelID) {
		p := NewParticipant(memberID)
		p.Join(s.startTime)
		s.participants[memberID] = p
	}
	log.Printf("Event started in channel %s with %d participants", channelID, len(s.participants))
}

func (s *Session) memberJoined(memberID string) {
	p, ok := s.participants[memberID]
	if !ok {
		p = NewParticipant(memberID)
		s.participants[memberID] = p
	}
	if p.Present() {
		// Double-join from presence drift; the open interval stands.
		return
	}
	p.Join(s.now())
}

func (s *Session) memberLeft(memberID string) {
	p, ok := s.participants[memberID]
	if !ok {
		// Presence tracking drift, not corruption.
		log.Printf("Member %s left the event channel without a timer", memberID)
		return
	}
	p.Leave(s.now())
}

// awardResult captures one member's processed award for the summary artifact
// and their DM.
type awardResult struct {
	MemberID     string
	DisplayName  string
	StartBalance int
	EndBalance   int
	TokenType    string
	Duration     time.Duration
}

// finalize awards the classified token to every processed participant,
// persists the balance mutations as one write, sends the notifications and
// emits the event summary artifact.
func (s *Session) finalize(ctx context.Context, desc Descriptor) error {
	tokenType := bank.ClassifyEventToken(desc.Description)
	s.endTime = s.now()
	eventDuration := s.endTime.Sub(s.startTime)
	log.Printf("Event %q ended; awarding %s", desc.Name, tokenType)

	memberIDs := make([]string, 0, len(s.participants))
	for id := range s.participants {
		memberIDs = append(memberIDs, id)
	}
	sort.Strings(memberIDs)

	var awarded []awardResult
	var pendingReview []Member
	err := s.store.Update(ctx, func(rec bank.Record) (bool, error) {
		for _, memberID := range memberIDs {
			member, ok := s.roster.Member(memberID)
			if !ok {
				continue
			}
			p := s.participants[memberID]
			p.Flush(s.endTime)
			duration := p.Total()

			if tokenType == bank.WarToken && !bank.HasLeadRole(member.RoleIDs) {
				pendingReview = append(pendingReview, member)
				continue
			}

			role, ok := bank.ResolveCompanyRole(member.RoleIDs)
			if !ok {
				// No company role means no balance scope.
				continue
			}
			start, end := rec.Add(role, memberID, tokenType, 1)
			awarded = append(awarded, awardResult{
				MemberID:     memberID,
				DisplayName:  member.DisplayName,
				StartBalance: start,
				EndBalance:   end,
				TokenType:    tokenType,
				Duration:     duration,
			})
		}
		return len(awarded) > 0, nil
	})
	if err != nil {
		return fmt.Errorf("failed to finalize event %q: %w", desc.Name, err)
	}

	for _, member := range pendingReview {
		fields := []notify.Field{{
			Name:  fmt.Sprintf("Pending %s", tokenType),
			Value: fmt.Sprintf("You just received a pending %s for taking part in %s. Post a VOD review to receive the token!", tokenType, desc.Name),
		}}
		s.notifier.SendPaginated(member.ID, "You just received a Pending Token!", fields, notify.DefaultPageSize)
	}

	for _, award := range awarded {
		fields := []notify.Field{
			{
				Name:  fmt.Sprintf("You just received a %s!", award.TokenType),
				Value: fmt.Sprintf("Congrats! You just received a %s for taking part in %s", award.TokenType, desc.Name),
			},
			{
				Name:  fmt.Sprintf("Current %s balance:", award.TokenType),
				Value: fmt.Sprintf("%d", award.EndBalance),
			},
		}
		s.notifier.SendPaginated(award.MemberID, "Event Token Award", fields, notify.DefaultPageSize)
	}

	if tokenType == bank.WarToken && len(pendingReview) > 0 {
		names := make([]string, len(pendingReview))
		for i, member := range pendingReview {
			names[i] = member.DisplayName
		}
		content := fmt.Sprintf("**%s VOD Reviews Needed:**\n%s", tokenType, strings.Join(names, ", "))
		if _, err := s.announcer.ChannelMessageSend(s.reviewChannelID, content); err != nil {
			log.Printf("Failed to post review list for event %q: %v", desc.Name, err)
		}
	}

	if err := writeEventFile(s.artifactDir, desc.Name, eventDuration, awarded); err != nil {
		log.Printf("Failed to write event file for %q: %v", desc.Name, err)
	}
	return nil
}
