package bot

import "github.com/bwmarrin/discordgo"

// Slash command names.
const (
	CommandVerify                = "verify"
	CommandPoints                = "points"
	CommandLeaderboard           = "leaderboard"
	CommandResetPoints           = "resetpoints"
	CommandEditScores            = "editscores"
	CommandSetReactionChannel    = "setreactionchannel"
	CommandRemoveReactionChannel = "removereactionchannel"
	CommandConnectWallet         = "connectwallet"
	CommandNotifyToggle          = "notifytoggle"
)

var adminPermission = int64(discordgo.PermissionAdministrator)

// commandDefinitions describes every slash command the bot registers.
var commandDefinitions = []*discordgo.ApplicationCommand{
	{
		Name:        CommandVerify,
		Description: "Link your Twitter handle to start earning gold points",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "handle",
				Description: "Your Twitter handle, with or without the @",
				Required:    true,
			},
		},
	},
	{
		Name:        CommandPoints,
		Description: "Show your gold points and rank",
	},
	{
		Name:        CommandLeaderboard,
		Description: "Show the top 10 gold point holders",
	},
	{
		Name:                     CommandResetPoints,
		Description:              "Reset a member's gold points to zero",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "The member to reset",
				Required:    true,
			},
		},
	},
	{
		Name:                     CommandEditScores,
		Description:              "Change a scoring policy value",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "key",
				Description: "The scoring key to change",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionNumber,
				Name:        "value",
				Description: "The new value",
				Required:    true,
			},
		},
	},
	{
		Name:                     CommandSetReactionChannel,
		Description:              "Allow reaction points in a channel",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "The channel to enable",
				Required:    true,
			},
		},
	},
	{
		Name:                     CommandRemoveReactionChannel,
		Description:              "Stop awarding reaction points in a channel",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "The channel to disable",
				Required:    true,
			},
		},
	},
	{
		Name:        CommandConnectWallet,
		Description: "Connect your wallet address (one-time)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "address",
				Description: "Your wallet address",
				Required:    true,
			},
		},
	},
	{
		Name:        CommandNotifyToggle,
		Description: "Toggle award notifications",
	},
}
