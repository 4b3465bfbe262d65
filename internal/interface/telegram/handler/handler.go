// Package handler contains the command handlers behind the bot's Telegram
// commands. Handlers are transport-agnostic: they take a Request and return
// the messages to send, leaving delivery to the router.
package handler

// Request carries the per-update data a command handler needs.
type Request struct {
	// TelegramID is the sender's Telegram user ID.
	TelegramID int64

	// ChatID is the chat the command was sent in.
	ChatID int64

	// DisplayName is the sender's name as reported by Telegram.
	DisplayName string

	// Args is the text after the command, trimmed.
	Args string
}

// Response is the ordered list of messages to send back.
type Response struct {
	Messages []string
}

// reply builds a single-message response.
func reply(text string) Response {
	return Response{Messages: []string{text}}
}
