package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/gradehub/gradehub-bot/internal/application/command"
	"github.com/gradehub/gradehub-bot/internal/domain/grading"
	"github.com/gradehub/gradehub-bot/internal/domain/shared"
	"github.com/gradehub/gradehub-bot/internal/domain/student"
)

// Prompts and notices sent during the dialogue.
const (
	promptMid1     = "Enter your Mid-1 marks (just the number). If not taken, send 0."
	promptMid2     = "Now enter your Mid-2 marks (just the number). If not taken, send 0."
	promptWeeklies = "Enter your weekly test marks separated by spaces (7 or 8 values). If you haven't taken them, send 0.\nExample: 5 4 4.5 3 5 4 3.5 4"
	promptConfirm  = "Do you want me to save this data for you? (Yes/No)"

	invalidMid1     = "Please send a valid number for Mid-1 (e.g., 18.5)."
	invalidMid2     = "Please send a valid number for Mid-2 (e.g., 20)."
	invalidWeeklies = "Please send weekly marks as numbers separated by spaces."

	noticeSaved     = "Saved ✅. You can later view with /mystats"
	noticeSaveError = "Sorry, I couldn't save your data (internal error)."
	noticeNotSaved  = "Okay, not saved."
	noticeCancelled = "Marks entry cancelled."
)

// affirmatives are the answers that trigger persistence, matched
// case-insensitively.
var affirmatives = map[string]bool{
	"yes":  true,
	"y":    true,
	"sure": true,
}

// Result is the outcome of one dialogue step: the replies to deliver and
// the stage the session ended up in.
type Result struct {
	Replies []string
	Stage   Stage
}

// Engine drives the marks collection state machine.
// Stage transitions are serialized; the persistence call happens after the
// session has already been removed from the store, so a slow database
// never blocks other users' dialogue steps.
type Engine struct {
	mu             sync.Mutex
	store          *Store
	save           *command.SaveRecordHandler
	passingPercent float64
	logger         *slog.Logger
}

// NewEngine creates a dialogue engine.
func NewEngine(store *Store, save *command.SaveRecordHandler, passingPercent float64, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if passingPercent <= 0 {
		passingPercent = grading.DefaultPassingPercent
	}
	return &Engine{
		store:          store,
		save:           save,
		passingPercent: passingPercent,
		logger:         logger,
	}
}

// Start begins a new dialogue for the user. A dialogue already in progress
// for the same user is discarded and restarted from the first stage.
func (e *Engine) Start(id student.TelegramID, displayName string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.store.Begin(id, displayName)
	return Result{Replies: []string{promptMid1}, Stage: sess.Stage}
}

// Active reports whether the user has a dialogue in progress.
func (e *Engine) Active(id student.TelegramID) bool {
	return e.store.Active(id)
}

// Cancel aborts the user's dialogue from any stage without computing or
// saving anything. The boolean is false when the user had no dialogue in
// progress, in which case nothing was cancelled and the notice is empty.
func (e *Engine) Cancel(id student.TelegramID) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store.End(id) == nil {
		return "", false
	}
	return noticeCancelled, true
}

// HandleMessage advances the user's dialogue with one free-text reply.
// Unparsable input re-prompts and keeps the session in the same stage.
// Returns shared.ErrSessionNotFound when the user has no active dialogue.
func (e *Engine) HandleMessage(ctx context.Context, id student.TelegramID, displayName, text string) (Result, error) {
	e.mu.Lock()

	sess := e.store.Get(id)
	if sess == nil {
		e.mu.Unlock()
		return Result{}, shared.ErrSessionNotFound
	}

	// Keep the display name fresh; Telegram users rename themselves.
	if displayName != "" {
		sess.DisplayName = displayName
	}

	switch sess.Stage {
	case StageMid1:
		res := e.handleMid(sess, text)
		e.mu.Unlock()
		return res, nil

	case StageMid2:
		res := e.handleMid(sess, text)
		e.mu.Unlock()
		return res, nil

	case StageWeeklies:
		res := e.handleWeeklies(sess, text)
		e.mu.Unlock()
		return res, nil

	case StageConfirmSave:
		// Both branches tear the session down; pop it before any I/O.
		e.store.End(id)
		e.mu.Unlock()
		return e.handleConfirm(ctx, sess, text), nil

	default:
		e.mu.Unlock()
		return Result{}, shared.ErrSessionTerminated
	}
}

// handleMid processes StageMid1 and StageMid2, which share the parse
// contract: a single real number.
func (e *Engine) handleMid(sess *Session, text string) Result {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		if sess.Stage == StageMid1 {
			return Result{Replies: []string{invalidMid1}, Stage: StageMid1}
		}
		return Result{Replies: []string{invalidMid2}, Stage: StageMid2}
	}

	if sess.Stage == StageMid1 {
		sess.Mid1 = v
		sess.Stage = StageMid2
		return Result{Replies: []string{promptMid2}, Stage: StageMid2}
	}

	sess.Mid2 = v
	sess.Stage = StageWeeklies
	return Result{Replies: []string{promptWeeklies}, Stage: StageWeeklies}
}

// handleWeeklies parses the space-separated weekly scores. Every token must
// parse or the whole input is rejected; partial acceptance would leave the
// session with marks the user never confirmed.
func (e *Engine) handleWeeklies(sess *Session, text string) Result {
	tokens := strings.Fields(text)
	weeklies := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Result{Replies: []string{invalidWeeklies}, Stage: StageWeeklies}
		}
		weeklies = append(weeklies, v)
	}

	breakdown := grading.Internals(sess.Mid1, sess.Mid2, weeklies)
	roundedTotal := grading.Round2(breakdown.Total)
	required := grading.NeededExternalToPass(roundedTotal, e.passingPercent)

	sess.Weeklies = weeklies
	sess.Internals = roundedTotal
	sess.Stage = StageConfirmSave

	return Result{
		Replies: []string{e.formatResults(breakdown, required), promptConfirm},
		Stage:   StageConfirmSave,
	}
}

// handleConfirm handles the yes/no persistence answer. The session has
// already been removed from the store by the caller.
func (e *Engine) handleConfirm(ctx context.Context, sess *Session, text string) Result {
	answer := strings.ToLower(strings.TrimSpace(text))
	if !affirmatives[answer] {
		return Result{Replies: []string{noticeNotSaved}, Stage: StageDone}
	}

	err := e.save.Handle(ctx, command.SaveRecordInput{
		TelegramID:  sess.TelegramID,
		DisplayName: sess.DisplayName,
		Mid1:        sess.Mid1,
		Mid2:        sess.Mid2,
		Weeklies:    sess.Weeklies,
		Internals:   sess.Internals,
	})
	if err != nil {
		e.logger.Error("failed to save student record",
			"telegram_id", int64(sess.TelegramID),
			"error", err,
		)
		return Result{Replies: []string{noticeSaveError}, Stage: StageDone}
	}

	return Result{Replies: []string{noticeSaved}, Stage: StageDone}
}

// formatResults renders the calculation summary sent after the weeklies
// stage.
func (e *Engine) formatResults(b grading.Breakdown, req grading.ExternalRequirement) string {
	var sb strings.Builder

	sb.WriteString("📝 Calculation Results:\n\n")
	sb.WriteString(fmt.Sprintf("Mid component (out of 25): %s\n", grading.FormatMark(b.Mids)))
	sb.WriteString(fmt.Sprintf("Weekly component (out of 5): %s\n", grading.FormatMark(b.Weekly)))
	sb.WriteString(fmt.Sprintf("Internals total (out of 30): %s\n\n", grading.FormatMark(b.Total)))

	percent := grading.FormatMark(e.passingPercent)
	if req.Achievable() {
		sb.WriteString(fmt.Sprintf(
			"To reach %s%% overall (i.e., %s marks out of 100), you need %s marks in the external (out of 70).",
			percent, percent, grading.FormatMark(req.Capped),
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"⚠️ The %s%% target needs %s external marks, but the external is out of 70. It is not achievable even with a perfect score.",
			percent, grading.FormatMark(req.Raw),
		))
	}

	return sb.String()
}
