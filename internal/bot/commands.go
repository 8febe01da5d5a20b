package bot

import "github.com/bwmarrin/discordgo"

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type: discordgo.ApplicationCommandOptionUser, Name: name, Description: description, Required: required,
	}
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type: discordgo.ApplicationCommandOptionString, Name: name, Description: description, Required: required,
	}
}

func intOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type: discordgo.ApplicationCommandOptionInteger, Name: name, Description: description, Required: required,
	}
}

func roleOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type: discordgo.ApplicationCommandOptionRole, Name: name, Description: description, Required: required,
	}
}

func channelOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type: discordgo.ApplicationCommandOptionChannel, Name: name, Description: description, Required: required,
	}
}

func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: "ban", Description: "Ban a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to ban", true),
			stringOption("time", "Ban duration, like 1d", false),
			stringOption("reason", "Reason for the ban", false),
		}},
		{Name: "unban", Description: "Unban a user by ID", Options: []*discordgo.ApplicationCommandOption{
			stringOption("user", "ID of the banned user", true),
			stringOption("reason", "Reason for the unban", false),
		}},
		{Name: "kick", Description: "Kick a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to kick", true),
			stringOption("reason", "Reason for the kick", false),
		}},
		{Name: "mute", Description: "Time a member out", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to mute", true),
			stringOption("time", "Mute duration, like 2h", false),
			stringOption("reason", "Reason for the mute", false),
		}},
		{Name: "unmute", Description: "Lift a member's timeout", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to unmute", true),
			stringOption("reason", "Reason for the unmute", false),
		}},
		{Name: "warn", Description: "Warn a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to warn", true),
			stringOption("reason", "Reason for the warning", false),
		}},
		{Name: "softban", Description: "Kick a member and prune their recent messages", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to softban", true),
			stringOption("reason", "Reason for the softban", false),
		}},
		{Name: "lock", Description: "Lock this channel", Options: []*discordgo.ApplicationCommandOption{
			stringOption("time", "Unlock automatically after this long", false),
		}},
		{Name: "unlock", Description: "Unlock this channel"},
		{Name: "clean", Description: "Remove my recent messages from this channel"},
		{Name: "deafen", Description: "Deafen a member in voice", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to deafen", true),
		}},
		{Name: "undeafen", Description: "Undeafen a member in voice", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to undeafen", true),
		}},
		{Name: "warnings", Description: "List a member's warnings", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to inspect", true),
		}},
		{Name: "clearwarn", Description: "Clear all warnings for a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to clear", true),
		}},
		{Name: "delwarn", Description: "Remove one warning from a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to edit", true),
			intOption("number", "Warning number from the warnings list", true),
		}},
		{Name: "modlogs", Description: "Show a member's moderation history", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to inspect", true),
		}},
		{Name: "case", Description: "Show one moderation case", Options: []*discordgo.ApplicationCommandOption{
			intOption("case", "Case number", true),
		}},
		{Name: "reason", Description: "Change the reason on a case", Options: []*discordgo.ApplicationCommandOption{
			intOption("case", "Case number", true),
			stringOption("reason", "New reason", true),
		}},
		{Name: "notes", Description: "Show the notes on a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to inspect", true),
		}},
		{Name: "note", Description: "Add a note on a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to note", true),
			stringOption("text", "Note text", true),
		}},
		{Name: "delnote", Description: "Remove one note from a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to edit", true),
			intOption("number", "Note number from the notes list", true),
		}},
		{Name: "clearnotes", Description: "Clear all notes on a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to clear", true),
		}},
		{Name: "afk", Description: "Set your AFK status", Options: []*discordgo.ApplicationCommandOption{
			stringOption("status", "What to tell people who ping you", false),
		}},
		{Name: "highlights", Description: "Show your highlight phrases"},
		{Name: "rolepersist", Description: "Toggle restoring roles on rejoin", Options: []*discordgo.ApplicationCommandOption{
			stringOption("state", "on or off", false),
		}},
		{Name: "prefix", Description: "Show or change my prefix", Options: []*discordgo.ApplicationCommandOption{
			stringOption("prefix", "New prefix", false),
		}},
		{Name: "modrole", Description: "View or change the moderator roles", Options: []*discordgo.ApplicationCommandOption{
			stringOption("action", "add, remove, or list", false),
			roleOption("role", "Role to add or remove", false),
		}},
		{Name: "ignorechannel", Description: "Toggle ignoring commands in a channel", Options: []*discordgo.ApplicationCommandOption{
			channelOption("channel", "Channel to toggle", false),
		}},
		{Name: "ignoreuser", Description: "Toggle ignoring commands from a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to toggle", true),
		}},
		{Name: "ignorerole", Description: "Toggle ignoring commands from a role", Options: []*discordgo.ApplicationCommandOption{
			roleOption("role", "Role to toggle", true),
		}},
		{Name: "roll", Description: "Roll dice", Options: []*discordgo.ApplicationCommandOption{
			stringOption("dice", "A maximum like 20, or dice like 3d6", false),
		}},
		{Name: "ranks", Description: "List the self-assignable ranks"},
		{Name: "rank", Description: "Join or leave a rank", Options: []*discordgo.ApplicationCommandOption{
			roleOption("role", "Rank to toggle", true),
		}},
		{Name: "addrank", Description: "Make a role self-assignable", Options: []*discordgo.ApplicationCommandOption{
			roleOption("role", "Role to open up", true),
		}},
		{Name: "delrank", Description: "Make a role no longer self-assignable", Options: []*discordgo.ApplicationCommandOption{
			roleOption("role", "Role to close", true),
		}},
		{Name: "role", Description: "Apply a batch of +role and -role changes to a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to change", true),
			stringOption("changes", "Changes such as +Muted -Verified", true),
		}},
		{Name: "addrole", Description: "Give a role to a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to change", true),
			roleOption("role", "Role to give", true),
		}},
		{Name: "delrole", Description: "Take a role from a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to change", true),
			roleOption("role", "Role to take", true),
		}},
		{Name: "rolename", Description: "Rename a role", Options: []*discordgo.ApplicationCommandOption{
			roleOption("role", "Role to rename", true),
			stringOption("name", "New name", true),
		}},
		{Name: "rolecolor", Description: "Recolor a role", Options: []*discordgo.ApplicationCommandOption{
			roleOption("role", "Role to recolor", true),
			stringOption("color", "Hex color like #ff8800", true),
		}},
		{Name: "mentionable", Description: "Toggle whether a role is mentionable", Options: []*discordgo.ApplicationCommandOption{
			roleOption("role", "Role to toggle", true),
		}},
		{Name: "setnick", Description: "Change a member's nickname", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to rename", true),
			stringOption("nickname", "New nickname, empty to reset", false),
		}},
		{Name: "announce", Description: "Post an announcement", Options: []*discordgo.ApplicationCommandOption{
			stringOption("message", "Announcement text", true),
			channelOption("channel", "Where to post it", false),
		}},
		{Name: "purge", Description: "Delete recent messages", Options: []*discordgo.ApplicationCommandOption{
			intOption("count", "How many messages, up to 100", true),
		}},
		{Name: "roles", Description: "List this server's roles"},
		{Name: "roleinfo", Description: "Show details about a role", Options: []*discordgo.ApplicationCommandOption{
			roleOption("role", "Role to inspect", true),
		}},
		{Name: "members", Description: "List members holding a role", Options: []*discordgo.ApplicationCommandOption{
			roleOption("role", "Role to inspect", true),
		}},
		{Name: "whois", Description: "Show details about a member", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Member to inspect", false),
		}},
		{Name: "serverinfo", Description: "Show details about this server"},
		{Name: "membercount", Description: "Show how many members this server has"},
		{Name: "avatar", Description: "Show a member's avatar", Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "Whose avatar to show", false),
		}},
		{Name: "emotes", Description: "List this server's custom emotes"},
		{Name: "uptime", Description: "Show how long I have been running"},
		{Name: "info", Description: "Show information about me"},
		{Name: "flip", Description: "Flip a coin"},
		{Name: "rps", Description: "Play rock, paper, scissors", Options: []*discordgo.ApplicationCommandOption{
			stringOption("choice", "rock, paper or scissors", true),
		}},
		{Name: "randomcolor", Description: "Show a random color"},
		{Name: "color", Description: "Preview a hex color", Options: []*discordgo.ApplicationCommandOption{
			stringOption("color", "Hex color like #ff8800", true),
		}},
		{Name: "distance", Description: "Distance between two coordinates", Options: []*discordgo.ApplicationCommandOption{
			stringOption("from", "First point as lat,lon", true),
			stringOption("to", "Second point as lat,lon", true),
		}},
		{Name: "cat", Description: "A random cat picture"},
		{Name: "dog", Description: "A random dog picture"},
		{Name: "pug", Description: "A random pug picture"},
		{Name: "dadjoke", Description: "A random dad joke"},
		{Name: "norris", Description: "A Chuck Norris fact"},
		{Name: "pokemon", Description: "Look up a pokemon", Options: []*discordgo.ApplicationCommandOption{
			stringOption("name", "Pokemon name", true),
		}},
		{Name: "github", Description: "Look up a GitHub repository", Options: []*discordgo.ApplicationCommandOption{
			stringOption("repository", "Repository as owner/name", true),
		}},
		{Name: "space", Description: "Who is in space right now"},
		{Name: "itunes", Description: "Search for a song", Options: []*discordgo.ApplicationCommandOption{
			stringOption("song", "Song to search for", true),
		}},
		{Name: "covid", Description: "COVID-19 statistics", Options: []*discordgo.ApplicationCommandOption{
			stringOption("location", "Country or US state, empty for worldwide", false),
		}},
	}
}

// registerCommands reconciles the global application commands with the
// desired set: edit what exists, create what is missing, prune the rest.
// Stale guild-scoped commands from older deployments are pruned too.
func (b *Bot) registerCommands() error {
	commands := slashCommands()

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, "", cmd.ID)
	}

	for _, guild := range b.session.State.Guilds {
		if guild == nil {
			continue
		}
		guildCmds, err := b.session.ApplicationCommands(appID, guild.ID)
		if err != nil {
			continue
		}
		for _, cmd := range guildCmds {
			if _, ok := desired[cmd.Name]; ok {
				continue
			}
			_ = b.session.ApplicationCommandDelete(appID, guild.ID, cmd.ID)
		}
	}
	return nil
}
