package flow

import (
	"context"

	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/period"
	"github.com/evanko/ledgerbot/internal/session"
)

func (r *Router) startRating(senderID string) []Reply {
	r.sessions.Set(senderID, session.RatingPeriod{})
	return []Reply{keyboardReply(msgChoosePeriod, periodKeyboard(nsRatingPeriod))}
}

func (r *Router) ratingPeriodSelected(ctx context.Context, user *model.User, senderID, payload string) []Reply {
	if _, ok := r.sessions.Get(senderID).(session.RatingPeriod); !ok {
		return r.startOver()
	}

	if payload == periodCustom {
		r.sessions.Set(senderID, session.RatingCustomPeriod{})
		return []Reply{textReply(msgEnterPeriod)}
	}

	rng, ok := resolvePreset(payload)
	if !ok {
		return []Reply{textReply(msgUnknownButton)}
	}
	return r.sendRating(ctx, user, senderID, rng)
}

func (r *Router) ratingCustomPeriodEntered(ctx context.Context, text string, user *model.User, senderID string) []Reply {
	rng, err := ParseCustomRange(text)
	if err != nil {
		return []Reply{textReply(msgBadPeriod)}
	}
	return r.sendRating(ctx, user, senderID, rng)
}

func (r *Router) sendRating(ctx context.Context, user *model.User, senderID string, rng period.Range) []Reply {
	rating, err := r.reports.ExpenseRating(ctx, user.ID, rng)
	if err != nil {
		return r.fail(senderID, err, "failed to compute expense rating")
	}

	r.sessions.Clear(senderID)
	if len(rating) == 0 {
		return []Reply{
			textReply("No expenses in that period."),
			keyboardReply(msgChooseAction, mainMenuKeyboard()),
		}
	}
	return []Reply{
		textReply(formatRating(rng, rating)),
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}
