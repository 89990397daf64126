package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"incoin/bot/common"
	"incoin/bot/features/account"
	"incoin/bot/features/admin"
	"incoin/bot/features/balance"
	"incoin/bot/features/chatreward"
	"incoin/bot/features/company"
	"incoin/bot/features/income"
	"incoin/bot/features/jobs"
	"incoin/bot/features/stock"
	"incoin/bot/features/transfer"
	"incoin/config"
	"incoin/domain/interfaces"
	"incoin/domain/services"
	"incoin/events"
	"incoin/store"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const notRegisteredMessage = "いんコインシステムに登録されていません。`/register` で登録してください。"

// Config holds bot configuration
type Config struct {
	Token string
}

// Metrics receives command and settlement measurements
type Metrics interface {
	RecordCommand(ctx context.Context, command string, duration time.Duration, err error)
	RecordSettlement(ctx context.Context, job string, duration time.Duration, err error)
}

// Bot manages the Discord session and all feature modules
type Bot struct {
	// Core components
	config   Config
	session  *discordgo.Session
	stores   *store.Service
	bus      *events.Bus
	metrics  Metrics
	notifier *DirectMessageNotifier

	// Feature modules
	account    *account.Feature
	balance    *balance.Feature
	income     *income.Feature
	transfer   *transfer.Feature
	admin      *admin.Feature
	chatReward *chatreward.Feature
	jobs       *jobs.Feature
	company    *company.Feature
	stock      *stock.Feature

	// Worker cleanup functions
	stopSettlementWorker func()
	stopStockWorker      func()
}

// New creates a bot instance, opens the gateway and registers the slash commands
func New(config Config, stores *store.Service, bus *events.Bus, metrics Metrics) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll

	bot := &Bot{
		config:   config,
		session:  dg,
		stores:   stores,
		bus:      bus,
		metrics:  metrics,
		notifier: NewDirectMessageNotifier(dg),
	}

	// Create feature modules
	bot.account = account.New(account.StoreLoader{Stores: stores})
	bot.balance = balance.New()
	bot.income = income.New()
	bot.transfer = transfer.New()
	bot.admin = admin.New()
	bot.chatReward = chatreward.New()
	bot.jobs = jobs.New()
	bot.company = company.New()
	bot.stock = stock.New(stock.NewChartGenerator(settlementLocation()))

	// Register handlers
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleAutocomplete)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleGuildDelete)
	dg.AddHandler(bot.handleMessageCreate)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// StartWorkers launches the settlement and stock workers
func (b *Bot) StartWorkers(ctx context.Context) {
	b.stopSettlementWorker = b.StartSettlementWorker(ctx)
	b.stopStockWorker = b.StartStockWorker(ctx)
	log.Info("Background workers started")
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	if b.stopSettlementWorker != nil {
		b.stopSettlementWorker()
	}
	if b.stopStockWorker != nil {
		b.stopStockWorker()
	}
	log.Info("Background workers stopped")

	return b.session.Close()
}

// services builds the per-command economy services of one guild
func (b *Bot) services(guildID int64, publisher interfaces.EventPublisher) *common.Services {
	return common.NewServices(services.Dependencies{
		Store:     b.stores.Guild(guildID),
		Publisher: publisher,
		Notifier:  b.notifier,
		Random:    services.NewRandomSource(),
		Now:       time.Now,
	})
}

// handleCommands runs slash commands inside a deferred response
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		common.RespondWithError(s, i, "このコマンドはサーバー内でのみ使用できます。")
		return
	}

	start := time.Now()
	name := i.ApplicationCommandData().Name
	ctx := context.Background()

	if err := common.DeferResponse(s, i, false); err != nil {
		log.WithFields(log.Fields{
			"command": name,
			"error":   err,
		}).Error("Failed to defer interaction")
		return
	}

	err := b.runCommand(ctx, s, i)
	if err != nil {
		common.HandleError(s, i, err, true)
	}
	if b.metrics != nil {
		b.metrics.RecordCommand(ctx, name, time.Since(start), err)
	}
}

func (b *Bot) runCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Failed to parse guild ID")
	}
	userID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		return common.NewSystemError(err, "Failed to parse user ID")
	}

	tx := events.NewTransactionalBus(b.bus)
	cmd := &common.Command{
		Ctx:         ctx,
		Session:     s,
		Interaction: i,
		GuildID:     guildID,
		UserID:      userID,
		User:        i.Member.User,
		IsAdmin:     common.IsAdministrator(i),
		Services:    b.services(guildID, tx),
	}

	if requiresRegistration(cmd) {
		if err := checkRegistration(ctx, cmd.Services.Registration, userID); err != nil {
			tx.Discard()
			return err
		}
	}

	if err := b.route(cmd); err != nil {
		tx.Discard()
		b.applyPenalty(ctx, guildID, userID)
		return err
	}
	tx.Flush(ctx)

	b.applyPenalty(ctx, guildID, userID)
	return nil
}

func (b *Bot) route(cmd *common.Command) error {
	switch cmd.Name() {
	case "register", "money", "load":
		return b.account.HandleCommand(cmd)
	case "deposit", "withdraw":
		return b.balance.HandleCommand(cmd)
	case "work", "gambling", "rob":
		return b.income.HandleCommand(cmd)
	case "give-money":
		return b.transfer.HandleCommand(cmd)
	case "add-money", "remove-money":
		return b.admin.HandleCommand(cmd)
	case "channel-money":
		return b.chatReward.HandleCommand(cmd)
	case "jobs", "job-change":
		return b.jobs.HandleCommand(cmd)
	case "company":
		return b.company.HandleCommand(cmd)
	case "stock":
		return b.stock.HandleCommand(cmd)
	}
	return common.NewUserError("不明なコマンドです。", "Unknown command "+cmd.Name())
}

// checkRegistration rejects users who have not signed up. When the account
// cannot be loaded the user is asked to retry instead.
func checkRegistration(ctx context.Context, registration *services.RegistrationService, userID int64) error {
	registered, err := registration.IsRegistered(ctx, userID)
	if err != nil {
		return common.NewSystemError(err, "Failed to check registration")
	}
	if !registered {
		return common.NewUserError(notRegisteredMessage, "Unregistered user")
	}
	return nil
}

// requiresRegistration reports whether the command is gated on sign-up
func requiresRegistration(cmd *common.Command) bool {
	return commandRequiresRegistration(cmd.Name(), cmd.Subcommand())
}

func commandRequiresRegistration(name, subcommand string) bool {
	switch {
	case name == "register":
		return false
	case name == "company" && subcommand == "add":
		return false
	case subcommand == "help":
		return false
	}
	return true
}

// applyPenalty runs the negative-credit check after a command. The penalty
// service sends its own direct message.
func (b *Bot) applyPenalty(ctx context.Context, guildID, userID int64) {
	tx := events.NewTransactionalBus(b.bus)
	result, err := b.services(guildID, tx).Penalty.Apply(ctx, userID)
	if err != nil {
		tx.Discard()
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"user_id":  userID,
			"error":    err,
		}).Error("Failed to apply negative credit penalty")
		return
	}
	tx.Flush(ctx)

	if result != nil {
		log.WithFields(log.Fields{
			"guild_id":    guildID,
			"user_id":     userID,
			"percentage":  result.Percentage,
			"from_bank":   result.FromBank,
			"from_wallet": result.FromWallet,
		}).Info("Negative credit penalty applied")
	}
}

// handleAutocomplete answers autocomplete requests for job and company names
func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommandAutocomplete || i.GuildID == "" {
		return
	}

	data := i.ApplicationCommandData()
	focused := common.FocusedOption(data.Options)
	if focused == nil {
		return
	}
	typed, _ := focused.Value.(string)

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", i.GuildID, err)
		return
	}
	ctx := context.Background()
	svc := b.services(guildID, nil)

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch {
	case focused.Name == "job_name":
		choices = b.jobs.Choices(typed)
	case data.Name == "company" && focused.Name == "company_name":
		choices, err = b.company.Choices(ctx, svc, typed)
	case data.Name == "stock" && focused.Name == "company":
		choices, err = b.stock.Choices(ctx, svc, typed)
	default:
		return
	}
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"command":  data.Name,
			"error":    err,
		}).Warn("Failed to build autocomplete choices")
	}

	if err := common.RespondWithChoices(s, i, choices); err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"command":  data.Name,
			"error":    err,
		}).Debug("Failed to respond to autocomplete")
	}
}

// handleGuildCreate warms the record cache when a guild becomes available
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := strconv.ParseInt(g.ID, 10, 64)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", g.ID, err)
		return
	}

	go func() {
		ctx := context.Background()
		report, err := b.stores.Resync(ctx, guildID)
		fields := log.Fields{
			"guild_id":   guildID,
			"guild_name": g.Name,
		}
		if report != nil {
			fields["users"] = report.Users
			fields["companies"] = report.Companies
			fields["stocks"] = report.Stocks
		}
		if err != nil {
			fields["error"] = err
			if errors.Is(err, store.ErrUnavailable) {
				log.WithFields(fields).Warn("Record store unavailable during guild warm-up")
				return
			}
			log.WithFields(fields).Error("Failed to load guild records")
			return
		}
		log.WithFields(fields).Info("Guild records loaded")
	}()
}

// handleGuildDelete drops the cache of a guild the bot left
func (b *Bot) handleGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	// Unavailable guilds come back, only removal drops the cache
	if g.Unavailable {
		return
	}
	guildID, err := strconv.ParseInt(g.ID, 10, 64)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", g.ID, err)
		return
	}
	b.stores.Forget(guildID)
	log.WithField("guild_id", guildID).Info("Left guild, cache dropped")
}

// handleMessageCreate pays chat rewards for guild messages
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}

	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		return
	}
	channelID, err := common.ParseID(m.ChannelID)
	if err != nil {
		return
	}
	userID, err := common.ParseID(m.Author.ID)
	if err != nil {
		return
	}

	ctx := context.Background()
	tx := events.NewTransactionalBus(b.bus)
	b.chatReward.HandleMessage(ctx, b.services(guildID, tx), channelID, userID)
	tx.Flush(ctx)
}

// GetSession returns the Discord session
func (b *Bot) GetSession() *discordgo.Session {
	return b.session
}

// guildIDs lists the guilds the session currently knows about
func (b *Bot) guildIDs() []int64 {
	b.session.State.RLock()
	defer b.session.State.RUnlock()

	ids := make([]int64, 0, len(b.session.State.Guilds))
	for _, g := range b.session.State.Guilds {
		id, err := strconv.ParseInt(g.ID, 10, 64)
		if err != nil {
			log.Errorf("Error parsing guild ID %s: %v", g.ID, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// settlementLocation is the timezone of the daily and weekly schedules
func settlementLocation() *time.Location {
	return config.Get().Location()
}
