package flow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanko/ledgerbot/internal/category"
	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/period"
	"github.com/evanko/ledgerbot/internal/report"
	"github.com/evanko/ledgerbot/internal/service"
	"github.com/evanko/ledgerbot/internal/session"
	"github.com/evanko/ledgerbot/internal/storage"
)

var testSender = model.Identity{ExternalID: "u1", Handle: "tester"}

type stubRenderer struct {
	artifact *service.Artifact
	err      error
	calls    int
}

func (r *stubRenderer) Render(_ context.Context, _ []service.TransactionEntry, _ service.Summary, rng period.Range) (*service.Artifact, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.artifact != nil {
		return r.artifact, nil
	}
	return &service.Artifact{
		Filename: fmt.Sprintf("report_%s.csv", rng.Start.Format("2006-01-02")),
		Data:     []byte("data"),
	}, nil
}

type routerFixture struct {
	router   *Router
	store    *storage.SQLiteStorage
	sessions *session.Store
	renderer *stubRenderer
	gate     *AllowListGate
}

func newTestRouter(t *testing.T) *routerFixture {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	categories := category.NewService(store)
	require.NoError(t, categories.EnsureDefaults(ctx))

	sessions := session.NewStore()
	renderer := &stubRenderer{}
	gate := NewAllowListGate("")

	return &routerFixture{
		router:   NewRouter(store, sessions, categories, report.NewEngine(store), renderer, gate),
		store:    store,
		sessions: sessions,
		renderer: renderer,
		gate:     gate,
	}
}

func (f *routerFixture) command(t *testing.T, cmd Command) []Reply {
	t.Helper()
	return f.router.Handle(context.Background(), Event{Sender: testSender, Command: cmd})
}

func (f *routerFixture) text(t *testing.T, text string) []Reply {
	t.Helper()
	return f.router.Handle(context.Background(), Event{Sender: testSender, Text: text})
}

func (f *routerFixture) callback(t *testing.T, data string) []Reply {
	t.Helper()
	cb := ParseCallback(data)
	require.NotNil(t, cb, "bad callback token %q", data)
	return f.router.Handle(context.Background(), Event{Sender: testSender, Callback: cb})
}

func allText(replies []Reply) string {
	parts := make([]string, 0, len(replies))
	for _, r := range replies {
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, "\n")
}

func TestRecordExpenseEndToEnd(t *testing.T) {
	f := newTestRouter(t)

	replies := f.command(t, CmdExpense)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Expense amount")

	replies = f.text(t, "1 250,50")
	require.Len(t, replies, 1)
	require.NotEmpty(t, replies[0].Keyboard, "expected category keyboard")

	replies = f.callback(t, "category:food")
	assert.Contains(t, allText(replies), "Comment")

	replies = f.text(t, "groceries")
	assert.Contains(t, allText(replies), "Expense saved: 1250.50 — Food")

	// Dialog is finished.
	assert.Nil(t, f.sessions.Get(testSender.ExternalID))

	// The record landed with its comment.
	user, err := f.store.FindOrCreateUser(context.Background(), testSender)
	require.NoError(t, err)
	page, _, err := f.store.GetTransactionPage(context.Background(), user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "1250.50", page[0].Amount.StringFixed(2))
	// Kind always matches the chosen category's kind.
	assert.Equal(t, model.KindExpense, page[0].Kind)
	assert.Equal(t, "Food", page[0].CategoryName)
	require.NotNil(t, page[0].Comment)
	assert.Equal(t, "groceries", *page[0].Comment)
}

func TestRecordSkipsComment(t *testing.T) {
	f := newTestRouter(t)

	f.command(t, CmdIncome)
	f.text(t, "45.5")
	f.callback(t, "category:work")
	replies := f.text(t, "-")
	assert.Contains(t, allText(replies), "Income saved: 45.50 — Work")

	user, err := f.store.FindOrCreateUser(context.Background(), testSender)
	require.NoError(t, err)
	page, _, err := f.store.GetTransactionPage(context.Background(), user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Nil(t, page[0].Comment)
}

func TestRecordInvalidAmountKeepsStep(t *testing.T) {
	f := newTestRouter(t)

	f.command(t, CmdExpense)
	replies := f.text(t, "abc")
	assert.Contains(t, allText(replies), "Invalid amount")

	// An amount that rounds down to zero re-prompts the same way.
	replies = f.text(t, "0.004")
	assert.Contains(t, allText(replies), "Invalid amount")

	// Still on the amount step, a valid retry continues.
	replies = f.text(t, "10")
	require.Len(t, replies, 1)
	assert.NotEmpty(t, replies[0].Keyboard)
}

func TestStaleCallbackStartsOver(t *testing.T) {
	f := newTestRouter(t)

	// A category selection with no active dialog.
	replies := f.callback(t, "category:food")
	assert.Contains(t, allText(replies), "Start over")
}

func TestCancelEndsDialog(t *testing.T) {
	f := newTestRouter(t)

	f.command(t, CmdExpense)
	require.NotNil(t, f.sessions.Get(testSender.ExternalID))

	replies := f.command(t, CmdCancel)
	assert.Contains(t, allText(replies), "Cancelled")
	assert.Nil(t, f.sessions.Get(testSender.ExternalID))
}

func TestPauseSilencesUntilStart(t *testing.T) {
	f := newTestRouter(t)

	replies := f.command(t, CmdPause)
	assert.Contains(t, allText(replies), "Paused")

	// Everything but /start is swallowed.
	assert.Nil(t, f.command(t, CmdStats))
	assert.Nil(t, f.text(t, "hello"))

	replies = f.command(t, CmdStart)
	assert.NotEmpty(t, replies)

	// Back to normal.
	replies = f.command(t, CmdStats)
	assert.NotEmpty(t, replies)
}

func TestUnauthorizedSenderDenied(t *testing.T) {
	f := newTestRouter(t)
	f.gate.allowedID = "someone-else"

	replies := f.command(t, CmdStats)
	assert.Contains(t, allText(replies), "Access denied")
}

func TestSummaryFlow(t *testing.T) {
	f := newTestRouter(t)

	f.command(t, CmdIncome)
	f.text(t, "1000")
	f.callback(t, "category:work")
	f.text(t, "-")

	f.command(t, CmdStats)
	f.callback(t, "stats_mode:summary")
	replies := f.callback(t, "stats_period:today")

	text := allText(replies)
	assert.Contains(t, text, "Income: 1000.00")
	assert.Contains(t, text, "Balance: 1000.00")
	assert.Nil(t, f.sessions.Get(testSender.ExternalID))
}

func TestSummaryCustomPeriodFlow(t *testing.T) {
	f := newTestRouter(t)

	f.command(t, CmdStats)
	f.callback(t, "stats_mode:summary")
	replies := f.callback(t, "stats_period:custom")
	assert.Contains(t, allText(replies), "YYYY-MM-DD")

	// A malformed pair keeps the step alive.
	replies = f.text(t, "01.01.2025 31.01.2025")
	assert.Contains(t, allText(replies), "Invalid format")

	replies = f.text(t, "2025-01-01 2025-01-31")
	text := allText(replies)
	assert.Contains(t, text, "Period: 2025-01-01 — 2025-01-31")
	assert.Contains(t, text, "Income: 0.00")
}

func TestRatingEmptyPeriod(t *testing.T) {
	f := newTestRouter(t)

	f.command(t, CmdRating)
	replies := f.callback(t, "rating_period:today")
	assert.Contains(t, allText(replies), "No expenses in that period")
}

func TestCategoryOverviewSortsOtherLast(t *testing.T) {
	f := newTestRouter(t)

	f.command(t, CmdCategories)
	replies := f.callback(t, "category_manage:view")
	text := allText(replies)

	// "Other" trails its section despite seed order already placing it last;
	// the sort must hold even after renames shuffle display names.
	lines := strings.Split(text, "\n")
	var incomeLines []string
	inIncome := false
	for _, line := range lines {
		if strings.HasPrefix(line, "Income:") {
			inIncome = true
			continue
		}
		if strings.HasPrefix(line, "Expense:") {
			break
		}
		if inIncome && line != "" {
			incomeLines = append(incomeLines, line)
		}
	}
	require.Len(t, incomeLines, 3)
	assert.Contains(t, incomeLines[2], "Other")
}

func TestManageAddCategory(t *testing.T) {
	f := newTestRouter(t)

	f.command(t, CmdCategories)
	f.callback(t, "category_manage:add")
	f.callback(t, "category_manage_add_type:expense")
	replies := f.text(t, "Coffee & Snacks!")
	assert.Contains(t, allText(replies), `Category "Coffee & Snacks!" added`)

	cat, err := f.store.GetCategoryByCode(context.Background(), model.KindExpense, "coffee_snacks")
	require.NoError(t, err)
	assert.Equal(t, "Coffee & Snacks!", cat.DisplayName)
}

func TestManageAddDuplicateKeepsStep(t *testing.T) {
	f := newTestRouter(t)

	f.command(t, CmdCategories)
	f.callback(t, "category_manage:add")
	f.callback(t, "category_manage_add_type:expense")
	replies := f.text(t, "food")
	assert.Contains(t, allText(replies), "already exists")

	// Retry on the same step succeeds.
	replies = f.text(t, "Coffee")
	assert.Contains(t, allText(replies), "added")
}

func TestManageDeleteInUseReoffersSelection(t *testing.T) {
	f := newTestRouter(t)

	// Put a transaction in food.
	f.command(t, CmdExpense)
	f.text(t, "10")
	f.callback(t, "category:food")
	f.text(t, "-")

	f.command(t, CmdCategories)
	f.callback(t, "category_manage:delete")
	f.callback(t, "category_manage_delete_type:expense")
	replies := f.callback(t, "category_manage_delete:food")
	assert.Contains(t, allText(replies), "cannot be deleted")

	// The selection step survives; an empty category deletes fine.
	replies = f.callback(t, "category_manage_delete:cinema")
	assert.Contains(t, allText(replies), "Category deleted")
}

func TestManageRenameCategory(t *testing.T) {
	f := newTestRouter(t)

	f.command(t, CmdCategories)
	f.callback(t, "category_manage:edit")
	f.callback(t, "category_manage_edit_type:expense")
	f.callback(t, "category_manage_edit:food")
	replies := f.text(t, "Groceries")
	assert.Contains(t, allText(replies), `renamed to "Groceries"`)
}

func TestExportDeliversArtifact(t *testing.T) {
	f := newTestRouter(t)

	f.command(t, CmdExport)
	replies := f.callback(t, "export_period:today")

	require.NotEmpty(t, replies)
	require.NotNil(t, replies[0].Artifact)
	assert.Equal(t, 1, f.renderer.calls)
	assert.Nil(t, f.sessions.Get(testSender.ExternalID))
}

func TestExportFailureClearsSession(t *testing.T) {
	f := newTestRouter(t)
	f.renderer.err = errors.New("sheets quota exhausted")

	f.command(t, CmdExport)
	replies := f.callback(t, "export_period:today")

	// The render failure surfaces its own wording, not the generic one.
	assert.Contains(t, allText(replies), "Export failed")
	assert.NotContains(t, allText(replies), "Something went wrong")
	// One attempt only, and the dialog is gone.
	assert.Equal(t, 1, f.renderer.calls)
	assert.Nil(t, f.sessions.Get(testSender.ExternalID))
}

func TestLastEmpty(t *testing.T) {
	f := newTestRouter(t)

	replies := f.command(t, CmdLast)
	assert.Contains(t, allText(replies), "No transactions yet")
}

func TestLastPaginates(t *testing.T) {
	f := newTestRouter(t)

	for i := 0; i < 11; i++ {
		f.command(t, CmdExpense)
		f.text(t, fmt.Sprintf("%d", i+1))
		f.callback(t, "category:food")
		f.text(t, "-")
	}

	replies := f.command(t, CmdLast)
	require.Len(t, replies, 1)
	require.NotEmpty(t, replies[0].Keyboard, "expected a show-more button")

	more := replies[0].Keyboard[0][0]
	replies = f.callback(t, more.Data)
	text := allText(replies)
	assert.Contains(t, text, "1.00")
	// The final page ends with the menu, not another show-more button.
	assert.NotContains(t, text, "No more transactions")
	for _, reply := range replies {
		for _, row := range reply.Keyboard {
			for _, button := range row {
				assert.False(t, strings.HasPrefix(button.Data, "last_more:"))
			}
		}
	}
}

func TestCommandViaMenuButton(t *testing.T) {
	f := newTestRouter(t)

	// Menu buttons carry cmd: tokens that dispatch like slash commands.
	replies := f.callback(t, "cmd:expense")
	assert.Contains(t, allText(replies), "Expense amount")
}

func TestTextWithoutSessionPointsAtMenu(t *testing.T) {
	f := newTestRouter(t)

	replies := f.text(t, "50")
	assert.Contains(t, allText(replies), "Start over")
}
