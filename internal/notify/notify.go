package notify

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

// DefaultPageSize is the number of fields shown per DM embed.
const DefaultPageSize = 5

type Field struct {
	Name  string
	Value string
}

// Minimal session interface for opening DM channels and sending embeds.
type dmSender interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Dispatcher delivers paginated embed DMs. Delivery failures are tolerated:
// they halt the remaining pages for that recipient and are reported through
// the return value, never as an error that aborts the caller.
type Dispatcher struct {
	session dmSender
}

func New(session dmSender) *Dispatcher {
	return &Dispatcher{session: session}
}

// SendPaginated splits fields into fixed-size pages and sends one embed per
// page, titling each with its page index and the page count. The first page
// that fails to deliver (recipient unreachable, privacy settings) halts the
// rest; true means every page was delivered.
func (d *Dispatcher) SendPaginated(recipientID, title string, fields []Field, pageSize int) bool {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	channel, err := d.session.UserChannelCreate(recipientID)
	if err != nil {
		log.Printf("Failed to open DM channel to %s: %v", recipientID, err)
		return false
	}

	var pages [][]Field
	for start := 0; start < len(fields); start += pageSize {
		end := start + pageSize
		if end > len(fields) {
			end = len(fields)
		}
		pages = append(pages, fields[start:end])
	}

	for i, page := range pages {
		embed := &discordgo.MessageEmbed{
			Title: fmt.Sprintf("%s (Page %d/%d)", title, i+1, len(pages)),
			Color: 0x57f287,
		}
		for _, field := range page {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   field.Name,
				Value:  field.Value,
				Inline: false,
			})
		}
		if _, err := d.session.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
			log.Printf("Failed to send page %d/%d to %s: %v", i+1, len(pages), recipientID, err)
			return false
		}
	}
	return true
}
