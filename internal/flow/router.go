package flow

import (
	"context"
	"errors"
	"strings"

	"github.com/evanko/ledgerbot/internal/category"
	"github.com/evanko/ledgerbot/internal/common"
	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/report"
	"github.com/evanko/ledgerbot/internal/service"
	"github.com/evanko/ledgerbot/internal/session"
)

// Fixed responses shared by every flow.
const (
	msgStartOver     = "Nothing in progress for that. Start over from the menu."
	msgChooseAction  = "Choose an action:"
	msgCancelled     = "Cancelled."
	msgDenied        = "Access denied."
	msgFailure       = "Something went wrong. Please try again."
	msgEnterPeriod   = "Enter a period as YYYY-MM-DD YYYY-MM-DD."
	msgBadPeriod     = "Invalid format. Example: 2025-01-01 2025-01-31"
	msgChoosePeriod  = "Choose a period:"
	msgChooseKind    = "Choose a type:"
	msgChooseCat     = "Choose a category:"
	msgUnknownButton = "Could not read that selection."
)

// lastPageSize is the page length of the recent-transactions listing.
const lastPageSize = 10

// Router resolves each inbound event against the sender's session and
// forwards it to the matching flow controller.
type Router struct {
	storage    service.Storage
	sessions   *session.Store
	categories *category.Service
	reports    *report.Engine
	renderer   service.ReportRenderer
	gate       service.Gate
}

// NewRouter wires the flow controllers to their collaborators.
func NewRouter(
	storage service.Storage,
	sessions *session.Store,
	categories *category.Service,
	reports *report.Engine,
	renderer service.ReportRenderer,
	gate service.Gate,
) *Router {
	return &Router{
		storage:    storage,
		sessions:   sessions,
		categories: categories,
		reports:    reports,
		renderer:   renderer,
		gate:       gate,
	}
}

// Handle processes one inbound event to completion and returns the replies
// to deliver. Events for the same sender are serialized around the session
// read-modify-write. No error escapes to the transport; every failure turns
// into a user-visible reply scoped to this turn.
func (r *Router) Handle(ctx context.Context, ev Event) []Reply {
	senderID := ev.Sender.ExternalID
	if senderID == "" {
		return nil
	}

	if !r.gate.Authorized(senderID) {
		return []Reply{textReply(msgDenied)}
	}

	cmd := ev.Command
	if ev.Callback != nil && ev.Callback.Namespace == nsCommand {
		cmd = ParseCommand(ev.Callback.Payload)
	}

	// A paused sender only gets through with /start.
	if r.gate.Paused(senderID) && cmd != CmdStart {
		return nil
	}

	unlock := r.sessions.Acquire(senderID)
	defer unlock()

	user, err := r.storage.FindOrCreateUser(ctx, ev.Sender)
	if err != nil {
		return r.fail(senderID, err, "failed to resolve user")
	}

	switch {
	case cmd != CmdNone:
		return r.handleCommand(ctx, cmd, user, senderID)
	case ev.Callback != nil:
		return r.handleCallback(ctx, ev.Callback, user, senderID)
	default:
		return r.handleText(ctx, strings.TrimSpace(ev.Text), user, senderID)
	}
}

func (r *Router) handleCommand(ctx context.Context, cmd Command, user *model.User, senderID string) []Reply {
	switch cmd {
	case CmdStart:
		r.gate.Resume(senderID)
		r.sessions.Clear(senderID)
		return []Reply{
			textReply("Hi! I keep your income and expense ledger."),
			keyboardReply(msgChooseAction, mainMenuKeyboard()),
		}
	case CmdIncome:
		return r.startRecord(senderID, model.KindIncome)
	case CmdExpense:
		return r.startRecord(senderID, model.KindExpense)
	case CmdStats:
		return r.startStats(senderID)
	case CmdRating:
		return r.startRating(senderID)
	case CmdCategories:
		return r.startManage(senderID)
	case CmdExport:
		return r.startExport(senderID)
	case CmdLast:
		return r.sendLastPage(ctx, user, 0)
	case CmdCancel:
		r.sessions.Clear(senderID)
		return []Reply{
			textReply(msgCancelled),
			keyboardReply(msgChooseAction, mainMenuKeyboard()),
		}
	case CmdPause:
		r.gate.Pause(senderID)
		r.sessions.Clear(senderID)
		return []Reply{textReply("Paused. Send /start to resume.")}
	case CmdHelp:
		return r.sendHelp()
	default:
		return []Reply{
			textReply("Unknown command. Use the menu."),
			keyboardReply(msgChooseAction, mainMenuKeyboard()),
		}
	}
}

// handleText routes free text by the session's current step. Text with no
// active session is a menu miss.
func (r *Router) handleText(ctx context.Context, text string, user *model.User, senderID string) []Reply {
	if text == "" {
		return nil
	}

	switch state := r.sessions.Get(senderID).(type) {
	case session.RecordAmount:
		return r.recordAmountEntered(ctx, state, text, senderID)
	case session.RecordComment:
		return r.recordCommentEntered(ctx, state, text, user, senderID)
	case session.StatsCustomPeriod:
		return r.statsCustomPeriodEntered(ctx, text, user, senderID)
	case session.StatsCategoryCustomPeriod:
		return r.statsCategoryCustomPeriodEntered(ctx, state, text, user, senderID)
	case session.RatingCustomPeriod:
		return r.ratingCustomPeriodEntered(ctx, text, user, senderID)
	case session.ExportCustomPeriod:
		return r.exportCustomPeriodEntered(ctx, text, user, senderID)
	case session.ManageAddName:
		return r.manageAddNameEntered(ctx, state, text, senderID)
	case session.ManageEditName:
		return r.manageEditNameEntered(ctx, state, text, senderID)
	case nil:
		return []Reply{
			textReply(msgStartOver),
			keyboardReply(msgChooseAction, mainMenuKeyboard()),
		}
	default:
		// A session exists but this step expects a button, not text.
		return []Reply{textReply("Use the buttons above, or /cancel.")}
	}
}

func (r *Router) handleCallback(ctx context.Context, cb *Callback, user *model.User, senderID string) []Reply {
	switch cb.Namespace {
	case nsCategory:
		return r.recordCategorySelected(senderID, cb.Payload)
	case nsStatsMode:
		return r.statsModeSelected(senderID, cb.Payload)
	case nsStatsType:
		return r.statsKindSelected(ctx, senderID, cb.Payload)
	case nsStatsCategory:
		return r.statsCategorySelected(senderID, cb.Payload)
	case nsStatsPeriod:
		return r.statsPeriodSelected(ctx, user, senderID, cb.Payload)
	case nsStatsCatPeriod:
		return r.statsCategoryPeriodSelected(ctx, user, senderID, cb.Payload)
	case nsRatingPeriod:
		return r.ratingPeriodSelected(ctx, user, senderID, cb.Payload)
	case nsExportPeriod:
		return r.exportPeriodSelected(ctx, user, senderID, cb.Payload)
	case nsManageAction:
		return r.manageActionSelected(ctx, senderID, cb.Payload)
	case nsManageAddType, nsManageEditType, nsManageDeleteType:
		return r.manageKindSelected(ctx, senderID, cb.Namespace, cb.Payload)
	case nsManageEdit:
		return r.manageEditSelected(ctx, senderID, cb.Payload)
	case nsManageDelete:
		return r.manageDeleteSelected(ctx, senderID, cb.Payload)
	case nsLastMore:
		return r.lastMoreSelected(ctx, user, cb.Payload)
	default:
		return []Reply{textReply(msgUnknownButton)}
	}
}

func (r *Router) sendHelp() []Reply {
	help := strings.Join([]string{
		"Available commands:",
		"/income — record an income",
		"/expense — record an expense",
		"/stats — summary or per-category statistics",
		"/rating — expense rating by category",
		"/categories — manage categories",
		"/last — recent transactions",
		"/export — spreadsheet report for a period",
		"/pause — mute the bot until /start",
		"/cancel — abort the current dialog",
		"/help — this message",
	}, "\n")

	return []Reply{
		textReply(help),
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}

// fail logs an internal error, clears the session, and degrades to a
// user-visible failure. A UserError in the chain supplies the wording shown
// to the user; anything else gets the generic message. Never crashes the turn.
func (r *Router) fail(senderID string, err error, msg string) []Reply {
	common.LogError(err, msg, common.Fields{"sender": senderID})
	r.sessions.Clear(senderID)

	text := msgFailure
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		text = userErr.UserMessage
	}

	return []Reply{
		textReply(text),
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}

// startOver clears nothing (there may be nothing to clear) and points the
// user back at the menu.
func (r *Router) startOver() []Reply {
	return []Reply{
		textReply(msgStartOver),
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}
