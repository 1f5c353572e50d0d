package resolve

// Templates holds every user-facing reply string. Adapters start from
// DefaultTemplates and override individual entries where the platform
// has richer markup (Discord uses bold text and mentions).
type Templates struct {
	ServerError string
	NotFound    string
	Footnote    string

	SettingMyGlobal string
	SettingMySEA    string
	SettingMyAuto   string

	SettingChannelGlobal string
	SettingChannelSEA    string
	SettingChannelAuto   string

	SettingDMGlobal string
	SettingDMSEA    string

	SettingServerGlobal string
	SettingServerSEA    string

	HelpUserDM       string
	HelpUserChannel  string
	HelpAdminChannel string
	HelpAdminServer  string
}

const (
	helpUsage = "Just @ the bot followed by an item name to get its latest price, " +
		"prepend s/ or g/ to specify the server, or use a command below to change the default one\n\n" +
		"cmd/myserver=global Set your default server to Global\n" +
		"cmd/myserver=sea Set your default server to SEA\n" +
		"cmd/myserver=auto Use the channel's default server"

	helpChannelAdmin = "\n\ncmd/channel=global Set this channel's default server to Global\n" +
		"cmd/channel=sea Set this channel's default server to SEA\n" +
		"cmd/channel=auto Use the server's default"

	helpServerAdmin = "\n\ncmd/default=global Set this server's default to Global\n" +
		"cmd/default=sea Set this server's default to SEA"
)

// DefaultTemplates returns the platform-neutral reply strings.
func DefaultTemplates() Templates {
	return Templates{
		ServerError: "%[1]s%[2]s : Server Error, Please try again later",
		NotFound:    "%[1]s not found!",
		Footnote:    "Last Price from: %[1]s",

		SettingMyGlobal: "Default Server for %[1]s set to Global",
		SettingMySEA:    "Default Server for %[1]s set to SEA",
		SettingMyAuto:   "Default Server for %[1]s set to Channel's Default",

		SettingChannelGlobal: "Default Server for this Channel set to Global",
		SettingChannelSEA:    "Default Server for this Channel set to SEA",
		SettingChannelAuto:   "Default Server for this Channel set to Server's Default",

		SettingDMGlobal: "Default Server for this DM Channel set to Global",
		SettingDMSEA:    "Default Server for this DM Channel set to SEA",

		SettingServerGlobal: "Default Server for this Server set to Global",
		SettingServerSEA:    "Default Server for this Server set to SEA",

		HelpUserDM:       helpUsage,
		HelpUserChannel:  helpUsage,
		HelpAdminChannel: helpUsage + helpChannelAdmin,
		HelpAdminServer:  helpUsage + helpChannelAdmin + helpServerAdmin,
	}
}
