package commands

import "github.com/bwmarrin/discordgo"

func GetCommands() []*discordgo.ApplicationCommand {
	minAmount := 0.0
	return []*discordgo.ApplicationCommand{
		{
			Name:         "addtokens",
			Description:  "Adds tokens to a player's Token Balance.",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to credit",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tokentype",
					Description: "Token type to credit",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "tokens",
					Description: "Number of tokens",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:         "removetokens",
			Description:  "Removes tokens from a player's Token Balance.",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to debit",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tokentype",
					Description: "Token type to debit",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "tokens",
					Description: "Number of tokens",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:         "balance",
			Description:  "Shows your current Event Balance.",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionMentionable,
					Name:        "target",
					Description: "Member or company role to inspect (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:         "ledger",
			Description:  "Lists all member's balances for a token type.",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tokentype",
					Description: "Token type to list",
					Required:    true,
				},
			},
		},
		{
			Name:         "payout",
			Description:  "Pays out gold income to all members of a role based on tokens.",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        "income",
					Description: "Weekly company income in gold",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "dry_run",
					Description: "Compute without resetting balances",
					Required:    false,
				},
			},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
