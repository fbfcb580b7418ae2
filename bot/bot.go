package bot

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lfg-bot/command"
	"lfg-bot/config"
	"lfg-bot/database"
	"lfg-bot/lfg"
	"lfg-bot/models"
	"lfg-bot/stats"
	"lfg-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// Bot encapsulates the bot's state: the Discord session, the storage layer,
// and the matchmaking engine built on top of it.
type Bot struct {
	Session *discordgo.Session
	DB      *sql.DB

	GuildConfigs *database.GuildConfigDB
	Ads          *database.AdDB
	Posts        *database.PostedMessageDB
	Counters     *database.CounterDB
	Cooldowns    *database.CooldownDB

	Recorder *stats.Recorder
	Registry *lfg.Registry
	Fanout   *lfg.Fanout
	Arbiter  *lfg.Arbiter
	Limiter  *utils.WindowLimiter

	StartedAt time.Time

	statsServer *stats.Server
}

// NewBot creates and initializes a new Bot instance.
func NewBot() (*Bot, error) {
	config.LoadConfig()
	token := viper.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	db, err := database.InitDB(viper.GetString("database.path"))
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	var lfgCfg models.LFGConfig
	if err := viper.UnmarshalKey("lfg", &lfgCfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("error parsing lfg config: %w", err)
	}

	b := &Bot{
		Session:      dg,
		DB:           db,
		GuildConfigs: database.NewGuildConfigDB(db),
		Ads:          database.NewAdDB(db),
		Posts:        database.NewPostedMessageDB(db),
		Counters:     database.NewCounterDB(db),
		Cooldowns:    database.NewCooldownDB(db),
	}

	messenger := lfg.NewDiscordMessenger(dg)
	b.Recorder = stats.NewRecorder(b.Counters)
	b.Registry = lfg.NewRegistry(b.Ads, b.Recorder, lfgCfg)
	b.Fanout = lfg.NewFanout(b.GuildConfigs, b.Posts, messenger, lfgCfg)
	b.Arbiter = lfg.NewArbiter(b.Ads, b.Posts, b.Recorder, messenger, lfgCfg)
	b.Limiter = utils.NewWindowLimiter(
		time.Duration(viper.GetInt("lfg.spamWindowSeconds"))*time.Second,
		viper.GetInt("lfg.spamMaxPosts"),
	)
	b.statsServer = stats.NewServer(viper.GetString("bot.statsListenAddr"), b.Counters, b.GuildConfigs)

	return b, nil
}

// Start opens the bot's session, registers handlers and slash commands, and
// brings up the scheduler and the stats HTTP server.
func (b *Bot) Start(registerHandlers func(*Bot)) error {
	registerHandlers(b)

	err := b.Session.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	utils.InitLogger(b.Session)

	b.StartedAt = time.Now()
	if err := b.Counters.SetMeta(database.MetaKeyBotStartTime, b.StartedAt.UTC().Format(time.RFC3339)); err != nil {
		log.Printf("Cannot record bot start time: %v", err)
	}

	// Register slash commands
	for _, def := range command.GetCommandDefinitions() {
		_, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", def)
		if err != nil {
			log.Printf("Cannot create '%v' command: %v", def.Name, err)
		}
	}

	startScheduler(b)
	go b.statsServer.Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully closes the bot's session and its background services.
func (b *Bot) Stop() {
	stopScheduler()
	if b.statsServer != nil {
		b.statsServer.Stop()
	}
	if b.Session != nil {
		b.Session.Close()
	}
	if b.DB != nil {
		b.DB.Close()
	}
	fmt.Println("Bot stopped gracefully.")
}

// Run is the main entry point for the bot application.
func Run(registerHandlers func(*Bot)) {
	bot, err := NewBot()
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	if err := bot.Start(registerHandlers); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	bot.Stop()
}
