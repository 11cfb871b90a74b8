package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"github.com/goodco/bankbot/internal/payout"
)

func HandlePayout(s *discordgo.Session, i *discordgo.InteractionCreate, engine *payout.Engine) {
	if !isAdministrator(i) {
		respondEphemeral(s, i, "You do not have permission to use this command.")
		return
	}

	opts := optionMap(i.ApplicationCommandData())
	income := decimal.NewFromFloat(opts["income"].FloatValue())
	dryRun := false
	if opt, ok := opts["dry_run"]; ok {
		dryRun = opt.BoolValue()
	}

	// Settlement reads the whole bank and DMs every member; defer the reply.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Printf("Failed to defer payout response: %v", err)
		return
	}

	guildID := i.GuildID
	resolve := func(memberID string) (string, bool) {
		member, err := guildMember(s, guildID, memberID)
		if err != nil {
			return "", false
		}
		return displayName(member), true
	}

	result, err := engine.Run(context.Background(), income, resolve, dryRun)
	if err != nil {
		log.Printf("payout failed: %v", err)
		editResponse(s, i, "An error occurred while processing the payout.")
		return
	}

	if result.NoPayout {
		editResponse(s, i, "No tokens have been earned this week. No payout necessary.")
		return
	}

	label := "Payout complete"
	if dryRun {
		label = "Dry run complete (no balances were reset)"
	}
	editResponse(s, i, fmt.Sprintf(
		"%s: %s gold distributed across %d member(s). War: %s, Leadership: %s, Competitive: %s.",
		label,
		result.Breakdown.War.Add(result.Breakdown.Leadership).Add(result.Breakdown.Competitive).StringFixed(2),
		len(result.Members),
		result.Breakdown.War.StringFixed(2),
		result.Breakdown.Leadership.StringFixed(2),
		result.Breakdown.Competitive.StringFixed(2),
	))
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	}); err != nil {
		log.Printf("Failed to edit interaction response: %v", err)
	}
}
