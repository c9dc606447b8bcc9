package flow

import (
	"context"

	"github.com/evanko/ledgerbot/internal/common"
	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/period"
	"github.com/evanko/ledgerbot/internal/session"
)

func (r *Router) startExport(senderID string) []Reply {
	if r.renderer == nil {
		return []Reply{
			textReply("Export is not configured."),
			keyboardReply(msgChooseAction, mainMenuKeyboard()),
		}
	}

	r.sessions.Set(senderID, session.ExportPeriod{})
	return []Reply{keyboardReply(msgChoosePeriod, periodKeyboard(nsExportPeriod))}
}

func (r *Router) exportPeriodSelected(ctx context.Context, user *model.User, senderID, payload string) []Reply {
	if _, ok := r.sessions.Get(senderID).(session.ExportPeriod); !ok {
		return r.startOver()
	}

	if payload == periodCustom {
		r.sessions.Set(senderID, session.ExportCustomPeriod{})
		return []Reply{textReply(msgEnterPeriod)}
	}

	rng, ok := resolvePreset(payload)
	if !ok {
		return []Reply{textReply(msgUnknownButton)}
	}
	return r.sendExport(ctx, user, senderID, rng)
}

func (r *Router) exportCustomPeriodEntered(ctx context.Context, text string, user *model.User, senderID string) []Reply {
	rng, err := ParseCustomRange(text)
	if err != nil {
		return []Reply{textReply(msgBadPeriod)}
	}
	return r.sendExport(ctx, user, senderID, rng)
}

// sendExport runs exactly one render attempt; any failure ends the dialog so
// a retry starts from the period choice.
func (r *Router) sendExport(ctx context.Context, user *model.User, senderID string, rng period.Range) []Reply {
	entries, err := r.storage.GetTransactionsByRange(ctx, user.ID, rng.Start, rng.End)
	if err != nil {
		return r.fail(senderID, err, "failed to load transactions for export")
	}

	summary, err := r.reports.Summary(ctx, user.ID, rng)
	if err != nil {
		return r.fail(senderID, err, "failed to compute export summary")
	}

	artifact, err := r.renderer.Render(ctx, entries, summary, rng)
	if err != nil {
		return r.fail(senderID,
			common.NewUserError("Export failed. Please try again later.", err),
			"failed to render export")
	}
	if artifact.Caption == "" {
		artifact.Caption = exportCaption(rng)
	}

	r.sessions.Clear(senderID)
	return []Reply{
		{Text: artifact.Caption, Artifact: artifact},
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}
