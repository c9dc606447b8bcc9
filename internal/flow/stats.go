package flow

import (
	"context"
	"errors"

	"github.com/evanko/ledgerbot/internal/common"
	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/period"
	"github.com/evanko/ledgerbot/internal/session"
)

// Stats-mode callback payloads.
const (
	statsModeSummary    = "summary"
	statsModeByCategory = "by_category"
)

func (r *Router) startStats(senderID string) []Reply {
	r.sessions.Set(senderID, session.StatsMode{})
	keyboard := [][]Button{
		{{Label: "Summary", Data: nsStatsMode + ":" + statsModeSummary}},
		{{Label: "By category", Data: nsStatsMode + ":" + statsModeByCategory}},
	}
	return []Reply{keyboardReply("What kind of statistics?", keyboard)}
}

func (r *Router) statsModeSelected(senderID, payload string) []Reply {
	if _, ok := r.sessions.Get(senderID).(session.StatsMode); !ok {
		return r.startOver()
	}

	switch payload {
	case statsModeSummary:
		r.sessions.Set(senderID, session.StatsPeriod{})
		return []Reply{keyboardReply(msgChoosePeriod, periodKeyboard(nsStatsPeriod))}
	case statsModeByCategory:
		r.sessions.Set(senderID, session.StatsKind{})
		return []Reply{keyboardReply(msgChooseKind, kindKeyboard(nsStatsType))}
	default:
		return []Reply{textReply(msgUnknownButton)}
	}
}

func (r *Router) statsKindSelected(ctx context.Context, senderID, payload string) []Reply {
	if _, ok := r.sessions.Get(senderID).(session.StatsKind); !ok {
		return r.startOver()
	}

	kind, err := model.ParseKind(payload)
	if err != nil {
		return []Reply{textReply(msgUnknownButton)}
	}

	categories, err := r.categories.ListByKind(ctx, kind)
	if err != nil {
		return r.fail(senderID, err, "failed to list categories")
	}
	if len(categories) == 0 {
		r.sessions.Clear(senderID)
		return []Reply{
			textReply("No categories of that type yet."),
			keyboardReply(msgChooseAction, mainMenuKeyboard()),
		}
	}

	r.sessions.Set(senderID, session.StatsCategorySelect{Kind: kind})
	return []Reply{keyboardReply(msgChooseCat, categoriesKeyboard(categories, nsStatsCategory))}
}

func (r *Router) statsCategorySelected(senderID, code string) []Reply {
	state, ok := r.sessions.Get(senderID).(session.StatsCategorySelect)
	if !ok {
		return r.startOver()
	}

	r.sessions.Set(senderID, session.StatsCategoryPeriod{Kind: state.Kind, CategoryCode: code})
	return []Reply{keyboardReply(msgChoosePeriod, periodKeyboard(nsStatsCatPeriod))}
}

func (r *Router) statsPeriodSelected(ctx context.Context, user *model.User, senderID, payload string) []Reply {
	if _, ok := r.sessions.Get(senderID).(session.StatsPeriod); !ok {
		return r.startOver()
	}

	if payload == periodCustom {
		r.sessions.Set(senderID, session.StatsCustomPeriod{})
		return []Reply{textReply(msgEnterPeriod)}
	}

	rng, ok := resolvePreset(payload)
	if !ok {
		return []Reply{textReply(msgUnknownButton)}
	}
	return r.sendSummary(ctx, user, senderID, rng)
}

func (r *Router) statsCustomPeriodEntered(ctx context.Context, text string, user *model.User, senderID string) []Reply {
	rng, err := ParseCustomRange(text)
	if err != nil {
		return []Reply{textReply(msgBadPeriod)}
	}
	return r.sendSummary(ctx, user, senderID, rng)
}

func (r *Router) statsCategoryPeriodSelected(ctx context.Context, user *model.User, senderID, payload string) []Reply {
	state, ok := r.sessions.Get(senderID).(session.StatsCategoryPeriod)
	if !ok {
		return r.startOver()
	}

	if payload == periodCustom {
		r.sessions.Set(senderID, session.StatsCategoryCustomPeriod{
			Kind:         state.Kind,
			CategoryCode: state.CategoryCode,
		})
		return []Reply{textReply(msgEnterPeriod)}
	}

	rng, ok := resolvePreset(payload)
	if !ok {
		return []Reply{textReply(msgUnknownButton)}
	}
	return r.sendCategoryStats(ctx, user, senderID, state.Kind, state.CategoryCode, rng)
}

func (r *Router) statsCategoryCustomPeriodEntered(ctx context.Context, state session.StatsCategoryCustomPeriod, text string, user *model.User, senderID string) []Reply {
	rng, err := ParseCustomRange(text)
	if err != nil {
		return []Reply{textReply(msgBadPeriod)}
	}
	return r.sendCategoryStats(ctx, user, senderID, state.Kind, state.CategoryCode, rng)
}

func (r *Router) sendSummary(ctx context.Context, user *model.User, senderID string, rng period.Range) []Reply {
	summary, err := r.reports.Summary(ctx, user.ID, rng)
	if err != nil {
		return r.fail(senderID, err, "failed to compute summary")
	}

	r.sessions.Clear(senderID)
	return []Reply{
		textReply(formatSummary(rng, summary)),
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}

func (r *Router) sendCategoryStats(ctx context.Context, user *model.User, senderID string, kind model.Kind, code string, rng period.Range) []Reply {
	cat, err := r.categories.GetByCode(ctx, kind, code)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			r.sessions.Clear(senderID)
			return []Reply{
				textReply("That category no longer exists."),
				keyboardReply(msgChooseAction, mainMenuKeyboard()),
			}
		}
		return r.fail(senderID, err, "failed to load category")
	}

	stats, err := r.reports.CategoryStats(ctx, user.ID, cat.ID, rng)
	if err != nil {
		return r.fail(senderID, err, "failed to compute category stats")
	}

	r.sessions.Clear(senderID)
	return []Reply{
		textReply(formatCategoryStats(rng, cat.DisplayName, stats)),
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}
