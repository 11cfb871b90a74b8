package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/goodco/bankbot/internal/commands"
	"github.com/goodco/bankbot/internal/event"
)

func (b *Bot) onReady(s *discordgo.Session, e *discordgo.Ready) {
	log.Printf("%s is connected!", e.User.Username)

	// Register commands for all guilds
	for _, guild := range e.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			log.Printf("Failed to register commands for guild %s: %v", guild.ID, err)
		}
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, e *discordgo.GuildCreate) {
	log.Printf("Guild available/joined: %s (id=%s) — ensuring commands", e.Name, e.ID)
	if err := b.registerGuildCommands(e.ID); err != nil {
		log.Printf("Failed to register commands for guild %s: %v", e.ID, err)
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "addtokens":
		commands.HandleAddTokens(s, i, b.store, b.notifier)
	case "removetokens":
		commands.HandleRemoveTokens(s, i, b.store)
	case "balance":
		commands.HandleBalance(s, i, b.store)
	case "ledger":
		commands.HandleLedger(s, i, b.store)
	case "payout":
		commands.HandlePayout(s, i, b.engine)
	}
}

// onVoiceStateUpdate feeds presence transitions to the live event session.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	channelID, live := b.events.Live()
	if !live {
		return
	}

	beforeChannel := ""
	if vs.BeforeUpdate != nil {
		beforeChannel = vs.BeforeUpdate.ChannelID
	}
	if vs.ChannelID == beforeChannel {
		// Mute/deafen toggles, not movement.
		return
	}

	if vs.ChannelID == channelID {
		log.Printf("Member %s joined the event channel", vs.UserID)
		b.events.MemberJoined(vs.UserID)
	} else if beforeChannel == channelID {
		log.Printf("Member %s left the event channel", vs.UserID)
		b.events.MemberLeft(vs.UserID)
	}
}

// onScheduledEventUpdate drives the session lifecycle from scheduled event
// status changes.
func (b *Bot) onScheduledEventUpdate(s *discordgo.Session, e *discordgo.GuildScheduledEventUpdate) {
	desc := event.Descriptor{
		Name:        e.Name,
		Description: e.Description,
		ChannelID:   e.ChannelID,
	}

	switch e.Status {
	case discordgo.GuildScheduledEventStatusActive:
		if err := b.events.Activate(desc); err != nil {
			if errors.Is(err, event.ErrSessionActive) {
				log.Printf("Ignoring activation of %q: %v", e.Name, err)
				return
			}
			log.Printf("Failed to activate event %q: %v", e.Name, err)
		}
	case discordgo.GuildScheduledEventStatusCompleted:
		if err := b.events.Complete(context.Background(), desc); err != nil {
			log.Printf("Failed to finalize event %q: %v", e.Name, err)
		}
	}
}

// onGuildMemberRemove drops a departing member's balances and posts a notice
// to the leave channel.
func (b *Bot) onGuildMemberRemove(s *discordgo.Session, e *discordgo.GuildMemberRemove) {
	removed, err := b.store.DropMember(context.Background(), e.User.ID)
	if err != nil {
		log.Printf("Failed to drop bank entries for member %s: %v", e.User.ID, err)
	} else if removed {
		log.Printf("Removed %s from bank", e.User.Username)
	}

	if b.cfg.LeaveChannelID == "" {
		return
	}
	name := e.Nick
	if name == "" {
		name = e.User.Username
	}
	var roleNames []string
	for _, roleID := range e.Roles {
		roleNames = append(roleNames, fmt.Sprintf("<@&%s>", roleID))
	}
	_, err = s.ChannelMessageSendEmbed(b.cfg.LeaveChannelID, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s has left the server!", name),
		Description: fmt.Sprintf("Member was in the following roles: %s", strings.Join(roleNames, ", ")),
		Color:       0xed4245,
	})
	if err != nil {
		log.Printf("Failed to send leave message for member %s: %v", e.User.ID, err)
	}
}
