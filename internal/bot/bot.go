package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/goodco/bankbot/internal/bank"
	"github.com/goodco/bankbot/internal/commands"
	"github.com/goodco/bankbot/internal/config"
	"github.com/goodco/bankbot/internal/event"
	"github.com/goodco/bankbot/internal/notify"
	"github.com/goodco/bankbot/internal/payout"
)

type Bot struct {
	session  *discordgo.Session
	store    *bank.Store
	notifier *notify.Dispatcher
	events   *event.Manager
	engine   *payout.Engine
	cfg      *config.Config
}

func New(cfg *config.Config, store *bank.Store) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	notifier := notify.New(session)
	roster := &stateRoster{session: session}

	bot := &Bot{
		session:  session,
		store:    store,
		notifier: notifier,
		events:   event.NewManager(store, roster, notifier, session, cfg.ReviewChannelID, "event_files"),
		engine:   payout.NewEngine(store, notifier, cfg.DryRunRecipientID, "weekly_payouts"),
		cfg:      cfg,
	}

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onInteractionCreate)
	session.AddHandler(bot.onVoiceStateUpdate)
	session.AddHandler(bot.onScheduledEventUpdate)
	session.AddHandler(bot.onGuildMemberRemove)

	session.Identify.Intents = discordgo.IntentsAll

	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	log.Println("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

// Engine exposes the settlement engine for other frontends (admin API).
func (b *Bot) Engine() *payout.Engine {
	return b.engine
}

// ResolveDisplayName maps a member ID to their guild display name.
func (b *Bot) ResolveDisplayName(memberID string) (string, bool) {
	member, ok := (&stateRoster{session: b.session}).Member(memberID)
	if !ok {
		return "", false
	}
	return member.DisplayName, true
}

func (b *Bot) registerGuildCommands(guildID string) error {
	cmds := commands.GetCommands()
	// Delete existing commands and register new ones
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, guildID, cmds)
	if err != nil {
		return err
	}

	log.Printf("Registered application commands for guild %s", guildID)
	return nil
}

// stateRoster resolves live membership through the session state cache, with
// an API fallback for members the cache has not seen.
type stateRoster struct {
	session *discordgo.Session
}

func (r *stateRoster) ChannelMembers(channelID string) []string {
	var memberIDs []string
	for _, guild := range r.session.State.Guilds {
		for _, vs := range guild.VoiceStates {
			if vs.ChannelID == channelID {
				memberIDs = append(memberIDs, vs.UserID)
			}
		}
	}
	return memberIDs
}

func (r *stateRoster) Member(memberID string) (event.Member, bool) {
	for _, guild := range r.session.State.Guilds {
		member, err := r.session.State.Member(guild.ID, memberID)
		if err != nil {
			member, err = r.session.GuildMember(guild.ID, memberID)
		}
		if err != nil || member == nil {
			continue
		}
		name := member.Nick
		if name == "" && member.User != nil {
			name = member.User.Username
		}
		return event.Member{
			ID:          memberID,
			DisplayName: name,
			RoleIDs:     member.Roles,
		}, true
	}
	return event.Member{}, false
}
