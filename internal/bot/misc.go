package bot

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"aura/internal/router"

	"github.com/bwmarrin/discordgo"
)

const lookupTimeout = 10 * time.Second

func (b *Bot) cmdWhois(c *router.Context, args []string) error {
	target := b.targetMember(c, "user", args, 0)
	if target == nil {
		target = c.Member
	}
	if target == nil || target.User == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}

	embed := b.infoEmbed(target.User.String(), "")
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: target.User.AvatarURL("256")}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "ID", Value: target.User.ID, Inline: true},
		{Name: "Roles", Value: strconv.Itoa(len(target.Roles)), Inline: true},
	}
	if target.Nick != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Nickname", Value: target.Nick, Inline: true})
	}
	if !target.JoinedAt.IsZero() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Joined", Value: target.JoinedAt.Format("2006-01-02"), Inline: true,
		})
	}
	return replyEmbed(c, embed)
}

func (b *Bot) cmdServerInfo(c *router.Context, args []string) error {
	guild := c.Guild
	embed := b.infoEmbed(guild.Name, "")
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guild.IconURL("256")}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "ID", Value: guild.ID, Inline: true},
		{Name: "Owner", Value: fmt.Sprintf("<@%s>", guild.OwnerID), Inline: true},
		{Name: "Members", Value: strconv.Itoa(guild.MemberCount), Inline: true},
		{Name: "Roles", Value: strconv.Itoa(len(guild.Roles)), Inline: true},
		{Name: "Channels", Value: strconv.Itoa(len(guild.Channels)), Inline: true},
		{Name: "Emotes", Value: strconv.Itoa(len(guild.Emojis)), Inline: true},
	}
	return replyEmbed(c, embed)
}

func (b *Bot) cmdMemberCount(c *router.Context, args []string) error {
	return replyText(c, "**%s** has **%d** members.", c.Guild.Name, c.Guild.MemberCount)
}

func (b *Bot) cmdAvatar(c *router.Context, args []string) error {
	target := b.targetUser(c, "user", args, 0)
	if target == nil {
		target = c.User
	}

	embed := b.infoEmbed(fmt.Sprintf("Avatar of %s", target.String()), "")
	embed.Image = &discordgo.MessageEmbedImage{URL: target.AvatarURL("1024")}
	return replyEmbed(c, embed)
}

func (b *Bot) cmdEmotes(c *router.Context, args []string) error {
	if len(c.Guild.Emojis) == 0 {
		return replyEmbed(c, b.infoEmbed("Emotes", "This server has no custom emotes."))
	}

	var parts []string
	for _, emoji := range c.Guild.Emojis {
		parts = append(parts, emoji.MessageFormat())
	}
	listing := strings.Join(parts, " ")
	if len(listing) > 4000 {
		listing = listing[:4000]
	}
	return replyEmbed(c, b.infoEmbed(fmt.Sprintf("Emotes (%d)", len(c.Guild.Emojis)), listing))
}

func (b *Bot) cmdUptime(c *router.Context, args []string) error {
	return replyText(c, "I have been up for **%s**.", formatDuration(time.Since(b.startedAt)))
}

func (b *Bot) cmdInfo(c *router.Context, args []string) error {
	embed := b.infoEmbed("About me", "A moderation and utility bot.")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Uptime", Value: formatDuration(time.Since(b.startedAt)), Inline: true},
		{Name: "Prefixes", Value: "`" + strings.Join(b.cfg.Prefixes, "` `") + "`", Inline: true},
	}
	return replyEmbed(c, embed)
}

func (b *Bot) cmdFlip(c *router.Context, args []string) error {
	side := "Heads"
	if rand.Intn(2) == 1 {
		side = "Tails"
	}
	return replyText(c, "🪙 **%s**!", side)
}

func (b *Bot) cmdRPS(c *router.Context, args []string) error {
	choice := strings.ToLower(stringArg(c, "choice", args, 0))
	if choice != "rock" && choice != "paper" && choice != "scissors" {
		return router.Rejectf("Pick rock, paper or scissors.")
	}

	mine := []string{"rock", "paper", "scissors"}[rand.Intn(3)]
	outcome := "It's a tie!"
	switch {
	case choice == mine:
	case (choice == "rock" && mine == "scissors") ||
		(choice == "paper" && mine == "rock") ||
		(choice == "scissors" && mine == "paper"):
		outcome = "You win!"
	default:
		outcome = "I win!"
	}
	return replyText(c, "You chose **%s**, I chose **%s**. %s", choice, mine, outcome)
}

func (b *Bot) cmdRandomColor(c *router.Context, args []string) error {
	color := rand.Intn(0x1000000)
	embed := b.embed(color, fmt.Sprintf("#%06X", color), "")
	return replyEmbed(c, embed)
}

func (b *Bot) cmdColor(c *router.Context, args []string) error {
	color, ok := parseHexColor(stringArg(c, "color", args, 0))
	if !ok {
		return router.Rejectf("Please give the color as hex, like #ff8800.")
	}
	embed := b.embed(color, fmt.Sprintf("#%06X", color),
		fmt.Sprintf("RGB: %d, %d, %d", color>>16&0xff, color>>8&0xff, color&0xff))
	return replyEmbed(c, embed)
}

// cmdDistance computes the great-circle distance between two lat,lon pairs.
func (b *Bot) cmdDistance(c *router.Context, args []string) error {
	from := stringArg(c, "from", args, 0)
	to := stringArg(c, "to", args, 1)
	lat1, lon1, ok1 := parseCoordinate(from)
	lat2, lon2, ok2 := parseCoordinate(to)
	if !ok1 || !ok2 {
		return router.Rejectf("Usage: distance <lat,lon> <lat,lon>")
	}

	const earthRadiusKm = 6371.0
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	km := earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return replyText(c, "That is about **%.1f km** (%.1f mi).", km, km*0.621371)
}

func parseCoordinate(raw string) (lat, lon float64, ok bool) {
	first, second, found := strings.Cut(raw, ",")
	if !found {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(first), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(second), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

func (b *Bot) lookupContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), lookupTimeout)
}

func (b *Bot) cmdCat(c *router.Context, args []string) error {
	ctx, cancel := b.lookupContext()
	defer cancel()
	url, ok := b.lookup.CatImage(ctx)
	if !ok {
		return router.Rejectf("The cat pictures are hiding right now. Try again later.")
	}
	embed := b.infoEmbed("🐱 Meow", "")
	embed.Image = &discordgo.MessageEmbedImage{URL: url}
	return replyEmbed(c, embed)
}

func (b *Bot) cmdDog(c *router.Context, args []string) error {
	ctx, cancel := b.lookupContext()
	defer cancel()
	url, ok := b.lookup.DogImage(ctx)
	if !ok {
		return router.Rejectf("The dog pictures ran away. Try again later.")
	}
	embed := b.infoEmbed("🐶 Woof", "")
	embed.Image = &discordgo.MessageEmbedImage{URL: url}
	return replyEmbed(c, embed)
}

func (b *Bot) cmdPug(c *router.Context, args []string) error {
	ctx, cancel := b.lookupContext()
	defer cancel()
	url, ok := b.lookup.PugImage(ctx)
	if !ok {
		return router.Rejectf("No pugs available right now. Try again later.")
	}
	embed := b.infoEmbed("🐶 Pug", "")
	embed.Image = &discordgo.MessageEmbedImage{URL: url}
	return replyEmbed(c, embed)
}

func (b *Bot) cmdDadJoke(c *router.Context, args []string) error {
	ctx, cancel := b.lookupContext()
	defer cancel()
	joke, ok := b.lookup.DadJoke(ctx)
	if !ok {
		return router.Rejectf("I'm out of jokes right now. Try again later.")
	}
	return replyText(c, "%s", joke)
}

func (b *Bot) cmdNorris(c *router.Context, args []string) error {
	ctx, cancel := b.lookupContext()
	defer cancel()
	fact, ok := b.lookup.ChuckNorris(ctx)
	if !ok {
		return router.Rejectf("Chuck Norris broke the API. Try again later.")
	}
	return replyText(c, "%s", fact)
}

func (b *Bot) cmdPokemon(c *router.Context, args []string) error {
	name := stringArg(c, "name", args, 0)
	if name == "" {
		return router.Rejectf("Please name a pokemon.")
	}

	ctx, cancel := b.lookupContext()
	defer cancel()
	pokemon, ok := b.lookup.Pokemon(ctx, name)
	if !ok {
		return router.Rejectf("I could not find that pokemon.")
	}

	display := pokemon.Name
	if display != "" {
		display = strings.ToUpper(display[:1]) + display[1:]
	}
	embed := b.infoEmbed(fmt.Sprintf("#%d %s", pokemon.ID, display), "")
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: pokemon.Sprites.FrontDefault}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Types", Value: strings.Join(pokemon.TypeNames(), ", "), Inline: true},
		{Name: "Height", Value: fmt.Sprintf("%.1f m", float64(pokemon.Height)/10), Inline: true},
		{Name: "Weight", Value: fmt.Sprintf("%.1f kg", float64(pokemon.Weight)/10), Inline: true},
	}
	return replyEmbed(c, embed)
}

func (b *Bot) cmdGithub(c *router.Context, args []string) error {
	name := stringArg(c, "repository", args, 0)
	if name == "" || !strings.Contains(name, "/") {
		return router.Rejectf("Please give the repository as owner/name.")
	}

	ctx, cancel := b.lookupContext()
	defer cancel()
	repo, ok := b.lookup.GithubRepo(ctx, name)
	if !ok {
		return router.Rejectf("I could not find that repository.")
	}

	embed := b.infoEmbed(repo.FullName, repo.Description)
	embed.URL = repo.HTMLURL
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Stars", Value: strconv.Itoa(repo.Stars), Inline: true},
		{Name: "Forks", Value: strconv.Itoa(repo.Forks), Inline: true},
		{Name: "Open issues", Value: strconv.Itoa(repo.OpenIssues), Inline: true},
	}
	if repo.Language != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Language", Value: repo.Language, Inline: true})
	}
	return replyEmbed(c, embed)
}

func (b *Bot) cmdSpace(c *router.Context, args []string) error {
	ctx, cancel := b.lookupContext()
	defer cancel()
	station, ok := b.lookup.SpaceStation(ctx)
	if !ok {
		return router.Rejectf("Lost contact with the space station. Try again later.")
	}

	var names []string
	for _, person := range station.People {
		names = append(names, fmt.Sprintf("%s (%s)", person.Name, person.Craft))
	}
	return replyEmbed(c, b.infoEmbed(
		fmt.Sprintf("🛰️ %d people are in space", station.Number),
		strings.Join(names, "\n")))
}

func (b *Bot) cmdItunes(c *router.Context, args []string) error {
	query := restArg(c, "song", args, 0)
	if query == "" {
		return router.Rejectf("Please give a song to search for.")
	}

	ctx, cancel := b.lookupContext()
	defer cancel()
	song, ok := b.lookup.Song(ctx, query)
	if !ok {
		return router.Rejectf("I could not find that song.")
	}

	embed := b.infoEmbed(song.TrackName, fmt.Sprintf("by %s", song.ArtistName))
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: song.ArtworkURL}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Album", Value: song.CollectionName, Inline: true},
		{Name: "Genre", Value: song.Genre, Inline: true},
	}
	if song.PreviewURL != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Preview", Value: song.PreviewURL})
	}
	return replyEmbed(c, embed)
}

func (b *Bot) cmdCovid(c *router.Context, args []string) error {
	location := restArg(c, "location", args, 0)

	ctx, cancel := b.lookupContext()
	defer cancel()
	stats, ok := b.lookup.Covid(ctx, location)
	if !ok {
		return router.Rejectf("I could not find stats for that place.")
	}

	title := "COVID-19, worldwide"
	if stats.Country != "" {
		title = "COVID-19, " + stats.Country
	} else if location != "" {
		title = "COVID-19, " + location
	}
	embed := b.infoEmbed(title, "")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Cases", Value: strconv.FormatInt(stats.Cases, 10), Inline: true},
		{Name: "Deaths", Value: strconv.FormatInt(stats.Deaths, 10), Inline: true},
		{Name: "Recovered", Value: strconv.FormatInt(stats.Recovered, 10), Inline: true},
		{Name: "Active", Value: strconv.FormatInt(stats.Active, 10), Inline: true},
		{Name: "Today cases", Value: strconv.FormatInt(stats.TodayCases, 10), Inline: true},
		{Name: "Today deaths", Value: strconv.FormatInt(stats.TodayDeaths, 10), Inline: true},
	}
	return replyEmbed(c, embed)
}
