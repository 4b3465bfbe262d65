package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradehub/gradehub-bot/internal/application/command"
	"github.com/gradehub/gradehub-bot/internal/application/dialogue"
	"github.com/gradehub/gradehub-bot/internal/application/query"
	"github.com/gradehub/gradehub-bot/internal/domain/shared"
	"github.com/gradehub/gradehub-bot/internal/domain/student"
	"github.com/gradehub/gradehub-bot/internal/domain/video"
	"github.com/gradehub/gradehub-bot/internal/interface/telegram/presenter"
)

// fakeRepo is an in-memory student.Repository.
type fakeRepo struct {
	records map[student.TelegramID]*student.Record
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[student.TelegramID]*student.Record)}
}

func (r *fakeRepo) Upsert(_ context.Context, rec *student.Record) error {
	r.records[rec.TelegramID] = rec
	return nil
}

func (r *fakeRepo) Fetch(_ context.Context, id student.TelegramID) (*student.Record, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return rec, nil
}

func (r *fakeRepo) Delete(_ context.Context, id student.TelegramID) error {
	delete(r.records, id)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func req(id int64, args string) Request {
	return Request{TelegramID: id, ChatID: id, DisplayName: "Aliya", Args: args}
}

// ─── /start and /help ────────────────────────────────────────────────────────

func TestStartHandler_Greets(t *testing.T) {
	resp, err := NewStartHandler().Handle(context.Background(), req(1, ""))
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Contains(t, resp.Messages[0], "Hi Aliya! 👋")
	assert.Contains(t, resp.Messages[0], "/marks - Enter marks and calculate")
	assert.Contains(t, resp.Messages[0], "/future <attended> <total> <future_attend> <future_total>")
}

func TestStartHandler_DefaultsName(t *testing.T) {
	resp, err := NewStartHandler().Handle(context.Background(), Request{TelegramID: 1, ChatID: 1})
	require.NoError(t, err)
	assert.Contains(t, resp.Messages[0], "Hi Student!")
}

// ─── /mystats ────────────────────────────────────────────────────────────────

func TestStatsHandler_NoSavedData(t *testing.T) {
	repo := newFakeRepo()
	h := NewStatsHandler(query.NewGetStatsHandler(repo, 40), presenter.NewStatsPresenter(40))

	resp, err := h.Handle(context.Background(), req(7, ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"No saved data found. Use /marks to compute and save your data."}, resp.Messages)
}

func TestStatsHandler_RendersSavedRecord(t *testing.T) {
	repo := newFakeRepo()
	rec, err := student.NewRecord(7, "Aliya", 20, 18, []float64{5, 4, 4.5, 3, 5, 4, 3.5, 4}, 24.23)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), rec))

	h := NewStatsHandler(query.NewGetStatsHandler(repo, 40), presenter.NewStatsPresenter(40))

	resp, err := h.Handle(context.Background(), req(7, ""))
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)

	msg := resp.Messages[0]
	assert.Contains(t, msg, "Saved data for Aliya:")
	assert.Contains(t, msg, "Mid-1: 20")
	assert.Contains(t, msg, "Mid-2: 18")
	assert.Contains(t, msg, "Weeklies: 5 4 4.5 3 5 4 3.5 4")
	assert.Contains(t, msg, "Computed mids component (out of 25): 19.6")
	assert.Contains(t, msg, "Computed weekly component (out of 5): 4.63")
	assert.Contains(t, msg, "Internals (out of 30): 24.23")
	assert.Contains(t, msg, "reach 40% overall: 15.77")
}

// ─── /reset ──────────────────────────────────────────────────────────────────

func TestResetHandler_DeletesRecord(t *testing.T) {
	repo := newFakeRepo()
	rec, err := student.NewRecord(7, "Aliya", 20, 18, nil, 19.6)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), rec))

	h := NewResetHandler(command.NewResetStudentHandler(repo))

	resp, err := h.Handle(context.Background(), req(7, ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Your saved data has been reset."}, resp.Messages)

	_, err = repo.Fetch(context.Background(), 7)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestResetHandler_NothingSavedStillSucceeds(t *testing.T) {
	h := NewResetHandler(command.NewResetStudentHandler(newFakeRepo()))

	resp, err := h.Handle(context.Background(), req(7, ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Your saved data has been reset."}, resp.Messages)
}

// ─── /future ─────────────────────────────────────────────────────────────────

func TestFutureHandler_Forecast(t *testing.T) {
	h := NewFutureHandler(75)

	resp, err := h.Handle(context.Background(), req(7, "40 50 8 10"))
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)

	msg := resp.Messages[0]
	assert.Contains(t, msg, "📊 Attendance Forecast:")
	assert.Contains(t, msg, "Final: 48/60 (80%)")
	assert.Contains(t, msg, "skip up to 4 classes")
	assert.Contains(t, msg, "≥ 75%")
}

func TestFutureHandler_BadInput(t *testing.T) {
	h := NewFutureHandler(75)
	usage := []string{"⚠️ Usage: /future <attended> <total> <future_attend> <future_total>"}

	for _, args := range []string{"", "1 2 3", "1 2 3 4 5", "a b c d", "1 2 3 x", "-40 50 8 10", "40 50 -8 10", "40 -1 8 10"} {
		resp, err := h.Handle(context.Background(), req(7, args))
		require.NoError(t, err)
		assert.Equal(t, usage, resp.Messages, "args: %q", args)
	}
}

func TestFutureHandler_ZeroTotalIsUsageError(t *testing.T) {
	h := NewFutureHandler(75)

	resp, err := h.Handle(context.Background(), req(7, "0 0 0 0"))
	require.NoError(t, err)
	assert.Contains(t, resp.Messages[0], "Usage:")
}

// ─── /yt ─────────────────────────────────────────────────────────────────────

type fakeSearcher struct {
	results []video.Video
	err     error
	calls   int
}

func (s *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]video.Video, error) {
	s.calls++
	return s.results, s.err
}

type fakeCache struct {
	store map[string][]video.Video
}

func (c *fakeCache) Get(_ context.Context, topic string) ([]video.Video, error) {
	if r, ok := c.store[topic]; ok {
		return r, nil
	}
	return nil, errors.New("miss")
}

func (c *fakeCache) Set(_ context.Context, topic string, results []video.Video) error {
	c.store[topic] = results
	return nil
}

func TestSearchHandler_Usage(t *testing.T) {
	h := NewSearchHandler(&fakeSearcher{}, nil, discardLogger())

	resp, err := h.Handle(context.Background(), req(7, "  "))
	require.NoError(t, err)
	assert.Equal(t, []string{"Usage: /yt <topic>. Example: /yt Data Structures linked lists"}, resp.Messages)
}

func TestSearchHandler_FormatsResults(t *testing.T) {
	searcher := &fakeSearcher{results: []video.Video{
		{Title: "Linked Lists in 10 minutes", URL: "https://www.youtube.com/watch?v=a1"},
		{Title: "Pointers deep dive", URL: "https://www.youtube.com/watch?v=b2"},
	}}
	h := NewSearchHandler(searcher, nil, discardLogger())

	resp, err := h.Handle(context.Background(), req(7, "linked lists"))
	require.NoError(t, err)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "Searching YouTube for: linked lists ...", resp.Messages[0])
	assert.Contains(t, resp.Messages[1], "Top YouTube results:")
	assert.Contains(t, resp.Messages[1], "• Linked Lists in 10 minutes\nhttps://www.youtube.com/watch?v=a1")
	assert.Contains(t, resp.Messages[1], "• Pointers deep dive\nhttps://www.youtube.com/watch?v=b2")
}

func TestSearchHandler_TruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("x", 120)
	searcher := &fakeSearcher{results: []video.Video{{Title: long, URL: "https://www.youtube.com/watch?v=a1"}}}
	h := NewSearchHandler(searcher, nil, discardLogger())

	resp, err := h.Handle(context.Background(), req(7, "topic"))
	require.NoError(t, err)
	assert.Contains(t, resp.Messages[1], strings.Repeat("x", 77)+"...")
	assert.NotContains(t, resp.Messages[1], strings.Repeat("x", 78))
}

func TestSearchHandler_SearchFailureIsNoResults(t *testing.T) {
	h := NewSearchHandler(&fakeSearcher{err: errors.New("api down")}, nil, discardLogger())

	resp, err := h.Handle(context.Background(), req(7, "topic"))
	require.NoError(t, err)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "No results or API error. Make sure YOUTUBE_API_KEY is set and valid.", resp.Messages[1])
}

func TestSearchHandler_UsesCache(t *testing.T) {
	cache := &fakeCache{store: map[string][]video.Video{}}
	searcher := &fakeSearcher{results: []video.Video{{Title: "Cached hit", URL: "https://www.youtube.com/watch?v=c3"}}}
	h := NewSearchHandler(searcher, cache, discardLogger())

	// First call hits the API and populates the cache.
	_, err := h.Handle(context.Background(), req(7, "graphs"))
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.calls)

	// Second call is served from cache.
	resp, err := h.Handle(context.Background(), req(7, "graphs"))
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.calls)
	assert.Contains(t, resp.Messages[1], "Cached hit")
}

// ─── /marks dialogue wiring ──────────────────────────────────────────────────

func newMarksHandler(repo student.Repository) *MarksHandler {
	store := dialogue.NewStore()
	engine := dialogue.NewEngine(store, command.NewSaveRecordHandler(repo), 40, discardLogger())
	return NewMarksHandler(engine)
}

func TestMarksHandler_StartsDialogue(t *testing.T) {
	h := newMarksHandler(newFakeRepo())

	resp, err := h.Handle(context.Background(), req(7, ""))
	require.NoError(t, err)
	assert.Contains(t, resp.Messages[0], "Enter your Mid-1 marks")
	assert.True(t, h.InDialogue(7))
}

func TestMarksHandler_TextWithoutDialogueIsUnknown(t *testing.T) {
	h := newMarksHandler(newFakeRepo())

	resp, err := h.HandleText(context.Background(), req(7, ""), "18.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sorry, I didn't understand that. Type /help for commands."}, resp.Messages)
}

func TestMarksHandler_CancelEndsDialogue(t *testing.T) {
	h := newMarksHandler(newFakeRepo())

	_, err := h.Handle(context.Background(), req(7, ""))
	require.NoError(t, err)

	resp, err := h.Cancel(context.Background(), req(7, ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Marks entry cancelled."}, resp.Messages)
	assert.False(t, h.InDialogue(7))
}

func TestMarksHandler_CancelWithoutDialogueIsUnknown(t *testing.T) {
	h := newMarksHandler(newFakeRepo())

	resp, err := h.Cancel(context.Background(), req(7, ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sorry, I didn't understand that. Type /help for commands."}, resp.Messages)
}

func TestMarksHandler_FullFlowPersists(t *testing.T) {
	repo := newFakeRepo()
	h := newMarksHandler(repo)
	ctx := context.Background()

	_, err := h.Handle(ctx, req(7, ""))
	require.NoError(t, err)

	for _, input := range []string{"20", "18", "5 4 4.5 3 5 4 3.5 4"} {
		_, err = h.HandleText(ctx, req(7, ""), input)
		require.NoError(t, err)
	}

	resp, err := h.HandleText(ctx, req(7, ""), "yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"Saved ✅. You can later view with /mystats"}, resp.Messages)

	rec, err := repo.Fetch(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Aliya", rec.DisplayName)
	assert.InDelta(t, 24.23, rec.LastInternals, 1e-9)
}
