package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/goodco/bankbot/internal/bank"
	"github.com/goodco/bankbot/internal/notify"
)

func HandleAddTokens(s *discordgo.Session, i *discordgo.InteractionCreate, store *bank.Store, notifier *notify.Dispatcher) {
	if !isAdministrator(i) {
		respondEphemeral(s, i, "You don't have permissions to add Tokens.")
		return
	}

	opts := optionMap(i.ApplicationCommandData())
	user := opts["user"].UserValue(s)
	tokens := int(opts["tokens"].IntValue())

	tokenType, ok := bank.NormalizeTokenType(opts["tokentype"].StringValue())
	if !ok {
		respondEphemeral(s, i, fmt.Sprintf("%s is not a recognized token type. Use one of the following: %s",
			opts["tokentype"].StringValue(), strings.Join(bank.TokenTypes, ", ")))
		return
	}

	member, err := guildMember(s, i.GuildID, user.ID)
	if err != nil {
		respondEphemeral(s, i, "Could not resolve that member.")
		return
	}
	role, ok := bank.ResolveCompanyRole(member.Roles)
	if !ok {
		respondEphemeral(s, i, "The user doesn't have a recognized company role.")
		return
	}

	newBalance, err := store.AddTokens(context.Background(), role, user.ID, tokenType, tokens)
	if err != nil {
		log.Printf("addtokens failed for %s: %v", user.ID, err)
		respondEphemeral(s, i, "An error occurred while processing your request.")
		return
	}

	respondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Added %d %s(s) to %s's %s balance.", tokens, tokenType, displayName(member), role),
		Description: fmt.Sprintf("New balance: %d %s(s)", newBalance, tokenType),
		Color:       0x3498db,
	})

	// Let the member know; a closed DM is not an error.
	notifier.SendPaginated(user.ID, fmt.Sprintf("Added %d token(s) to your %s %s Balance", tokens, role, tokenType), []notify.Field{
		{Name: "New balance:", Value: fmt.Sprintf("%d Token(s)", newBalance)},
	}, notify.DefaultPageSize)
}

func HandleRemoveTokens(s *discordgo.Session, i *discordgo.InteractionCreate, store *bank.Store) {
	if !isAdministrator(i) {
		respondEphemeral(s, i, "You don't have permissions to remove tokens.")
		return
	}

	opts := optionMap(i.ApplicationCommandData())
	user := opts["user"].UserValue(s)
	tokens := int(opts["tokens"].IntValue())

	tokenType, ok := bank.NormalizeTokenType(opts["tokentype"].StringValue())
	if !ok {
		respondEphemeral(s, i, fmt.Sprintf("%s is not a recognized token type. Use one of the following: %s",
			opts["tokentype"].StringValue(), strings.Join(bank.TokenTypes, ", ")))
		return
	}
	if tokens < 0 {
		respondEphemeral(s, i, "You can't remove a negative amount of tokens.")
		return
	}

	member, err := guildMember(s, i.GuildID, user.ID)
	if err != nil {
		respondEphemeral(s, i, "Could not resolve that member.")
		return
	}
	role, ok := bank.ResolveCompanyRole(member.Roles)
	if !ok {
		respondEphemeral(s, i, "The user doesn't have a recognized company role.")
		return
	}

	newBalance, err := store.RemoveTokens(context.Background(), role, user.ID, tokenType, tokens)
	if errors.Is(err, bank.ErrNoBalance) {
		respondEphemeral(s, i, fmt.Sprintf("%s does not have any %s to remove.", displayName(member), tokenType))
		return
	}
	if err != nil {
		log.Printf("removetokens failed for %s: %v", user.ID, err)
		respondEphemeral(s, i, "An error occurred while processing your request.")
		return
	}

	respondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Removed %d token(s) from %s's %s Balance.", tokens, displayName(member), tokenType),
		Description: fmt.Sprintf("New %s balance: %d", tokenType, newBalance),
		Color:       0x3498db,
	})
}

func HandleBalance(s *discordgo.Session, i *discordgo.InteractionCreate, store *bank.Store) {
	data := i.ApplicationCommandData()
	opts := optionMap(data)

	// Default to the caller; a mentionable option may name a member or a
	// company role instead.
	targetUserID := i.Member.User.ID
	targetRoleName := ""
	if opt, ok := opts["target"]; ok {
		value, _ := opt.Value.(string)
		if data.Resolved != nil {
			if _, ok := data.Resolved.Users[value]; ok {
				targetUserID = value
			} else if role, ok := data.Resolved.Roles[value]; ok {
				name, ok := bank.CompanyRoleByName(role.Name)
				if !ok {
					respondEphemeral(s, i, "That is not a valid role.")
					return
				}
				targetRoleName = name
			}
		}
	}

	if targetRoleName != "" {
		totals, err := store.RoleBalances(context.Background(), targetRoleName)
		if err != nil {
			log.Printf("balance failed for role %s: %v", targetRoleName, err)
			respondEphemeral(s, i, "An error occurred while processing your request.")
			return
		}
		if allZero(totals) {
			respondEphemeral(s, i, fmt.Sprintf("No members have any tokens in the bank for the %s role.", targetRoleName))
			return
		}
		respondEmbedEphemeral(s, i, balanceEmbed(fmt.Sprintf("Total balances for %s role", targetRoleName), totals))
		return
	}

	if targetUserID != i.Member.User.ID && !canManageEvents(i) {
		respondEphemeral(s, i, "You don't have the required permissions to view other members' balances.")
		return
	}

	totals, err := store.MemberBalances(context.Background(), targetUserID)
	if err != nil {
		log.Printf("balance failed for member %s: %v", targetUserID, err)
		respondEphemeral(s, i, "An error occurred while processing your request.")
		return
	}
	if allZero(totals) {
		respondEphemeral(s, i, "You don't have any tokens in the bank.")
		return
	}

	title := "Your current balances"
	if member, err := guildMember(s, i.GuildID, targetUserID); err == nil {
		title = fmt.Sprintf("%s's current balances", displayName(member))
	}
	respondEmbedEphemeral(s, i, balanceEmbed(title, totals))
}

func HandleLedger(s *discordgo.Session, i *discordgo.InteractionCreate, store *bank.Store) {
	if !canManageEvents(i) {
		respondEphemeral(s, i, "You don't have permissions to view the ledger.")
		return
	}

	opts := optionMap(i.ApplicationCommandData())
	tokenType, ok := bank.NormalizeTokenType(opts["tokentype"].StringValue())
	if !ok {
		respondEphemeral(s, i, fmt.Sprintf("%s is not a recognized token type. Use one of the following: %s",
			opts["tokentype"].StringValue(), strings.Join(bank.TokenTypes, ", ")))
		return
	}

	rec, err := store.Load(context.Background())
	if err != nil {
		log.Printf("ledger failed: %v", err)
		respondEphemeral(s, i, "An error occurred while processing your request.")
		return
	}

	embed := &discordgo.MessageEmbed{Title: "Good Company Ledger", Color: 0x3498db}
	noTokensFound := true
	for _, role := range bank.CompanyRoles {
		memberIDs := make([]string, 0, len(rec[role.Name]))
		for memberID := range rec[role.Name] {
			memberIDs = append(memberIDs, memberID)
		}
		sort.Strings(memberIDs)

		var lines []string
		for _, memberID := range memberIDs {
			balance := rec[role.Name][memberID][tokenType]
			if balance <= 0 {
				continue
			}
			member, err := guildMember(s, i.GuildID, memberID)
			if err != nil {
				continue
			}
			noTokensFound = false
			lines = append(lines, fmt.Sprintf("%s's %s: %d", displayName(member), tokenType, balance))
		}
		if len(lines) > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  fmt.Sprintf("**%s Balances**", capitalize(role.Name)),
				Value: strings.Join(lines, "\n"),
			})
		}
	}
	if noTokensFound {
		embed.Description = fmt.Sprintf("No members have any tokens in the bank for the %s type.", tokenType)
	}
	respondEmbedEphemeral(s, i, embed)
}

func balanceEmbed(title string, totals map[string]int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Title: title, Color: 0x3498db}
	for _, tokenType := range bank.TokenTypes {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s Balance:", tokenType),
			Value: fmt.Sprintf("%d Token(s)", totals[tokenType]),
		})
	}
	return embed
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func allZero(totals map[string]int) bool {
	for _, balance := range totals {
		if balance != 0 {
			return false
		}
	}
	return true
}
