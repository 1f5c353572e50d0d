package discord

import "github.com/poporinglife/price-bot/internal/resolve"

const (
	helpUsage = "Just @ the bot followed by an item name to get its latest price, " +
		"prepend s/ or g/ to specify the server, or use a command below to change the default one\n\n" +
		"**cmd/myserver=global** Set your default server to Global\n" +
		"**cmd/myserver=sea** Set your default server to SEA\n" +
		"**cmd/myserver=auto** Use the channel's default server"

	helpDM = "\n\n**cmd/dm=global** Set this DM channel's default server to Global\n" +
		"**cmd/dm=sea** Set this DM channel's default server to SEA"

	helpAdmin = "\n\nChannel and Server Settings:\n" +
		"**cmd/channel=global** Set this channel's default server to Global\n" +
		"**cmd/channel=sea** Set this channel's default server to SEA\n" +
		"**cmd/channel=auto** Use this server's default\n" +
		"**cmd/default=global** Set this server's default to Global\n" +
		"**cmd/default=sea** Set this server's default to SEA"
)

// discordTemplates carries the Discord-flavored reply strings: bold
// markdown in the help texts and server wording matching guild vocabulary.
var discordTemplates = func() resolve.Templates {
	t := resolve.DefaultTemplates()

	t.SettingChannelAuto = "Default Server for this Channel set to this Discord's Default"
	t.SettingServerGlobal = "Default Server for this Discord set to Global"
	t.SettingServerSEA = "Default Server for this Discord set to SEA"

	t.HelpUserDM = helpUsage + helpDM
	t.HelpUserChannel = helpUsage
	t.HelpAdminChannel = helpUsage + helpAdmin
	t.HelpAdminServer = helpUsage + helpAdmin

	return t
}()
