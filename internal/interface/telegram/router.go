// Package telegram implements the Telegram bot interface for Gradehub.
// It is the entry point for all Telegram interactions: receiving updates,
// routing them to handlers, and managing the bot lifecycle.
package telegram

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gradehub/gradehub-bot/internal/infrastructure/external/telegram"
	"github.com/gradehub/gradehub-bot/internal/interface/telegram/handler"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// Routes commands and free-text messages to the right handler.
// ══════════════════════════════════════════════════════════════════════════════

// CommandHandler is the interface every command handler implements.
type CommandHandler interface {
	Handle(ctx context.Context, req handler.Request) (handler.Response, error)
}

// CommandHandlerFunc adapts a function to the CommandHandler interface.
type CommandHandlerFunc func(ctx context.Context, req handler.Request) (handler.Response, error)

// Handle implements CommandHandler.
func (f CommandHandlerFunc) Handle(ctx context.Context, req handler.Request) (handler.Response, error) {
	return f(ctx, req)
}

// TextHandler handles non-command text messages (dialogue input).
type TextHandler interface {
	HandleText(ctx context.Context, req handler.Request, text string) (handler.Response, error)
}

// Router routes Telegram updates to registered handlers.
type Router struct {
	logger *slog.Logger

	mu          sync.RWMutex
	commands    map[string]CommandHandler
	textHandler TextHandler

	// unknownHandler answers commands nobody registered.
	unknownHandler CommandHandler
}

// NewRouter creates a router.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		logger:   logger,
		commands: make(map[string]CommandHandler),
		unknownHandler: CommandHandlerFunc(func(context.Context, handler.Request) (handler.Response, error) {
			return handler.Response{
				Messages: []string{"Sorry, I didn't understand that. Type /help for commands."},
			}, nil
		}),
	}
}

// RegisterCommand registers a handler for a command (without the leading /).
func (r *Router) RegisterCommand(command string, h CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[command] = h
}

// RegisterTextHandler registers the handler for free-text messages.
func (r *Router) RegisterTextHandler(h TextHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textHandler = h
}

// RouteCommand dispatches a command and sends the handler's replies.
func (r *Router) RouteCommand(ctx context.Context, client *telegram.Client, command string, req handler.Request) error {
	r.mu.RLock()
	h, ok := r.commands[command]
	r.mu.RUnlock()

	if !ok {
		h = r.unknownHandler
	}

	resp, err := h.Handle(ctx, req)
	if err != nil {
		return err
	}

	return r.send(ctx, client, req.ChatID, resp)
}

// RouteText dispatches a free-text message. Without a registered text
// handler it falls back to the unknown-command reply.
func (r *Router) RouteText(ctx context.Context, client *telegram.Client, req handler.Request, text string) error {
	r.mu.RLock()
	th := r.textHandler
	r.mu.RUnlock()

	if th == nil {
		resp, err := r.unknownHandler.Handle(ctx, req)
		if err != nil {
			return err
		}
		return r.send(ctx, client, req.ChatID, resp)
	}

	resp, err := th.HandleText(ctx, req, text)
	if err != nil {
		return err
	}

	return r.send(ctx, client, req.ChatID, resp)
}

// RegisteredCommands returns the registered command names.
func (r *Router) RegisteredCommands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]string, 0, len(r.commands))
	for cmd := range r.commands {
		commands = append(commands, cmd)
	}
	return commands
}

// send delivers the response messages in order. Replies within one response
// are ordered (results before the save prompt), so a failed send aborts the
// rest.
func (r *Router) send(ctx context.Context, client *telegram.Client, chatID int64, resp handler.Response) error {
	for _, msg := range resp.Messages {
		if msg == "" {
			continue
		}
		if _, err := client.SendText(ctx, chatID, msg); err != nil {
			return err
		}
	}
	return nil
}
