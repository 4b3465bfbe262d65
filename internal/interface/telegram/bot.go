package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gradehub/gradehub-bot/internal/infrastructure/external/telegram"
	"github.com/gradehub/gradehub-bot/internal/interface/telegram/handler"
	"github.com/gradehub/gradehub-bot/internal/interface/telegram/middleware"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig contains configuration for the Telegram bot.
type BotConfig struct {
	// Token is the Telegram Bot API token.
	Token string

	// APIBaseURL overrides the Telegram API base URL (tests only).
	APIBaseURL string

	// PollingTimeout is the long-polling timeout in seconds.
	PollingTimeout int

	// Debug enables debug logging.
	Debug bool

	// Logger for structured logging.
	Logger *slog.Logger

	// MaxConcurrentUpdates limits concurrent update processing.
	MaxConcurrentUpdates int

	// RateLimit configures the per-user rate limiter. Zero values fall
	// back to middleware defaults.
	RateLimit middleware.RateLimitConfig

	// GracefulShutdownTimeout bounds how long Stop waits for in-flight
	// handlers.
	GracefulShutdownTimeout time.Duration
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig(token string) BotConfig {
	return BotConfig{
		Token:                   token,
		PollingTimeout:          30,
		MaxConcurrentUpdates:    100,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// BotDependencies contains the handlers behind each command.
type BotDependencies struct {
	Start  *handler.StartHandler
	Marks  *handler.MarksHandler
	Stats  *handler.StatsHandler
	Reset  *handler.ResetHandler
	Future *handler.FutureHandler
	Search *handler.SearchHandler
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// ══════════════════════════════════════════════════════════════════════════════

// Bot is the main Telegram bot controller.
type Bot struct {
	config BotConfig
	client *telegram.Client
	router *Router
	marks  *handler.MarksHandler
	logger *slog.Logger

	rateLimiter *middleware.RateLimiter
	recovery    *middleware.RecoveryMiddleware

	running   bool
	runningMu sync.RWMutex
	updateSem chan struct{}
	wg        sync.WaitGroup
}

// NewBot creates a Telegram bot with all dependencies wired.
func NewBot(config BotConfig, deps BotDependencies) (*Bot, error) {
	if config.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.MaxConcurrentUpdates <= 0 {
		config.MaxConcurrentUpdates = 100
	}

	clientConfig := telegram.DefaultClientConfig(config.Token)
	clientConfig.Logger = config.Logger
	clientConfig.Debug = config.Debug
	if config.APIBaseURL != "" {
		clientConfig.BaseURL = config.APIBaseURL
	}
	if config.PollingTimeout > 0 {
		clientConfig.PollTimeout = config.PollingTimeout
	}
	client := telegram.NewClient(clientConfig)

	router := NewRouter(config.Logger)
	router.RegisterCommand("start", deps.Start)
	router.RegisterCommand("help", deps.Start)
	router.RegisterCommand("marks", deps.Marks)
	router.RegisterCommand("cancel", CommandHandlerFunc(deps.Marks.Cancel))
	router.RegisterCommand("mystats", deps.Stats)
	router.RegisterCommand("reset", deps.Reset)
	router.RegisterCommand("future", deps.Future)
	router.RegisterCommand("yt", deps.Search)
	router.RegisterTextHandler(deps.Marks)

	recoveryConfig := middleware.DefaultRecoveryConfig()
	recoveryConfig.Logger = config.Logger

	return &Bot{
		config:      config,
		client:      client,
		router:      router,
		marks:       deps.Marks,
		logger:      config.Logger,
		rateLimiter: middleware.NewRateLimiter(config.RateLimit),
		recovery:    middleware.NewRecoveryMiddleware(recoveryConfig),
		updateSem:   make(chan struct{}, config.MaxConcurrentUpdates),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start verifies the token and begins long polling. It blocks until the
// context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("bot is already running")
	}
	b.running = true
	b.runningMu.Unlock()

	me, err := b.client.GetMe(ctx)
	if err != nil {
		return err
	}
	b.logger.Info("bot verified",
		"id", me.ID,
		"username", me.Username,
	)

	// Long polling conflicts with a leftover webhook registration.
	if err := b.client.DeleteWebhook(ctx, false); err != nil {
		b.logger.Warn("failed to delete webhook", "error", err)
	}

	return b.client.StartPolling(ctx, b.handleUpdate)
}

// Stop waits for in-flight handlers to finish, bounded by the configured
// shutdown timeout.
func (b *Bot) Stop(ctx context.Context) error {
	b.runningMu.Lock()
	if !b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = false
	b.runningMu.Unlock()

	b.logger.Info("stopping telegram bot")
	b.rateLimiter.Stop()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(b.config.GracefulShutdownTimeout):
		b.logger.Warn("graceful shutdown timeout exceeded")
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the bot is currently polling.
func (b *Bot) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE HANDLING
// ══════════════════════════════════════════════════════════════════════════════

// handleUpdate processes a single Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, update *telegram.Update) error {
	select {
	case b.updateSem <- struct{}{}:
		defer func() { <-b.updateSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	b.wg.Add(1)
	defer b.wg.Done()

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return nil
	}

	traceID := uuid.NewString()
	logger := b.logger.With(
		"trace_id", traceID,
		"update_id", update.UpdateID,
		"telegram_id", msg.From.ID,
	)

	req := handler.Request{
		TelegramID:  msg.From.ID,
		ChatID:      msg.Chat.ID,
		DisplayName: msg.From.FullName(),
		Args:        telegram.ExtractCommandArgs(msg),
	}

	limit := b.rateLimiter.Check(msg.From.ID)
	if !limit.Allowed {
		_, err := b.client.SendText(ctx, req.ChatID, limit.ResponseMessage)
		return err
	}

	cmd := telegram.ExtractCommand(msg)
	if b.config.Debug {
		logger.Debug("incoming message", "command", cmd, "text", msg.Text)
	}

	result := b.recovery.RecoverWithHandler(msg.From.ID, cmd, func() error {
		if cmd != "" {
			return b.router.RouteCommand(ctx, b.client, cmd, req)
		}
		return b.router.RouteText(ctx, b.client, req, msg.Text)
	})

	if result.Recovered {
		_, err := b.client.SendText(ctx, req.ChatID, result.UserMessage)
		return err
	}
	if result.Err != nil {
		logger.Error("failed to handle message", "error", result.Err)

		// The dialogue flow reports its own failures; everything else
		// gets a generic apology so the user is not left hanging.
		_, sendErr := b.client.SendText(ctx, req.ChatID,
			"😔 Something went wrong. Please try again.")
		if sendErr != nil {
			return sendErr
		}
	}

	return nil
}

// Client returns the underlying Telegram client. Use sparingly.
func (b *Bot) Client() *telegram.Client {
	return b.client
}
