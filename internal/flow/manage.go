package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/evanko/ledgerbot/internal/common"
	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/session"
)

// Manage-action callback payloads.
const (
	manageActionAdd    = "add"
	manageActionEdit   = "edit"
	manageActionDelete = "delete"
	manageActionView   = "view"
)

func (r *Router) startManage(senderID string) []Reply {
	r.sessions.Set(senderID, session.ManageAction{})
	return []Reply{keyboardReply("Category management:", manageActionKeyboard())}
}

func (r *Router) manageActionSelected(ctx context.Context, senderID, payload string) []Reply {
	if _, ok := r.sessions.Get(senderID).(session.ManageAction); !ok {
		return r.startOver()
	}

	switch payload {
	case manageActionAdd:
		r.sessions.Set(senderID, session.ManageAddKind{})
		return []Reply{keyboardReply(msgChooseKind, kindKeyboard(nsManageAddType))}
	case manageActionEdit:
		r.sessions.Set(senderID, session.ManageEditKind{})
		return []Reply{keyboardReply(msgChooseKind, kindKeyboard(nsManageEditType))}
	case manageActionDelete:
		r.sessions.Set(senderID, session.ManageDeleteKind{})
		return []Reply{keyboardReply(msgChooseKind, kindKeyboard(nsManageDeleteType))}
	case manageActionView:
		return r.sendCategoryOverview(ctx, senderID)
	default:
		return []Reply{textReply(msgUnknownButton)}
	}
}

// manageKindSelected handles the kind choice for all three mutating actions;
// the callback namespace tells them apart.
func (r *Router) manageKindSelected(ctx context.Context, senderID, namespace, payload string) []Reply {
	kind, err := model.ParseKind(payload)
	if err != nil {
		return []Reply{textReply(msgUnknownButton)}
	}

	switch namespace {
	case nsManageAddType:
		if _, ok := r.sessions.Get(senderID).(session.ManageAddKind); !ok {
			return r.startOver()
		}
		r.sessions.Set(senderID, session.ManageAddName{Kind: kind})
		return []Reply{textReply("Name for the new category:")}

	case nsManageEditType:
		if _, ok := r.sessions.Get(senderID).(session.ManageEditKind); !ok {
			return r.startOver()
		}
		return r.offerCategorySelection(ctx, senderID, kind, nsManageEdit,
			session.ManageEditSelect{Kind: kind}, "Which category to rename?")

	case nsManageDeleteType:
		if _, ok := r.sessions.Get(senderID).(session.ManageDeleteKind); !ok {
			return r.startOver()
		}
		return r.offerCategorySelection(ctx, senderID, kind, nsManageDelete,
			session.ManageDeleteSelect{Kind: kind}, "Which category to delete?")

	default:
		return []Reply{textReply(msgUnknownButton)}
	}
}

func (r *Router) offerCategorySelection(ctx context.Context, senderID string, kind model.Kind, namespace string, next session.State, prompt string) []Reply {
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

	r.sessions.Set(senderID, next)
	return []Reply{keyboardReply(prompt, categoriesKeyboard(categories, namespace))}
}

func (r *Router) manageAddNameEntered(ctx context.Context, state session.ManageAddName, text, senderID string) []Reply {
	cat, err := r.categories.Create(ctx, state.Kind, text)
	if err != nil {
		if reply, ok := nameErrorReply(err); ok {
			return reply
		}
		return r.fail(senderID, err, "failed to create category")
	}

	r.sessions.Clear(senderID)
	return []Reply{
		textReply(fmt.Sprintf("Category %q added.", cat.DisplayName)),
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}

func (r *Router) manageEditSelected(ctx context.Context, senderID, code string) []Reply {
	state, ok := r.sessions.Get(senderID).(session.ManageEditSelect)
	if !ok {
		return r.startOver()
	}

	r.sessions.Set(senderID, session.ManageEditName{Kind: state.Kind, CategoryCode: code})
	return []Reply{textReply("New name:")}
}

func (r *Router) manageEditNameEntered(ctx context.Context, state session.ManageEditName, text, senderID string) []Reply {
	cat, err := r.categories.Rename(ctx, state.Kind, state.CategoryCode, text)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrSameName):
			return []Reply{textReply("That is already the category's name. Enter a different one.")}
		case errors.Is(err, common.ErrNotFound):
			r.sessions.Clear(senderID)
			return []Reply{
				textReply("That category no longer exists."),
				keyboardReply(msgChooseAction, mainMenuKeyboard()),
			}
		}
		if reply, ok := nameErrorReply(err); ok {
			return reply
		}
		return r.fail(senderID, err, "failed to rename category")
	}

	r.sessions.Clear(senderID)
	return []Reply{
		textReply(fmt.Sprintf("Category renamed to %q.", cat.DisplayName)),
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}

func (r *Router) manageDeleteSelected(ctx context.Context, senderID, code string) []Reply {
	state, ok := r.sessions.Get(senderID).(session.ManageDeleteSelect)
	if !ok {
		return r.startOver()
	}

	err := r.categories.Delete(ctx, state.Kind, code)
	switch {
	case err == nil:
		r.sessions.Clear(senderID)
		return []Reply{
			textReply("Category deleted."),
			keyboardReply(msgChooseAction, mainMenuKeyboard()),
		}
	case errors.Is(err, common.ErrCategoryInUse):
		// Session stays on the selection step so another pick still works.
		return r.offerCategorySelection(ctx, senderID, state.Kind, nsManageDelete,
			state, "That category still has transactions and cannot be deleted. Pick another:")
	case errors.Is(err, common.ErrNotFound):
		r.sessions.Clear(senderID)
		return []Reply{
			textReply("That category no longer exists."),
			keyboardReply(msgChooseAction, mainMenuKeyboard()),
		}
	default:
		return r.fail(senderID, err, "failed to delete category")
	}
}

// sendCategoryOverview is the one stateless manage action: it lists both
// kinds and ends the dialog.
func (r *Router) sendCategoryOverview(ctx context.Context, senderID string) []Reply {
	income, err := r.categories.ListByKind(ctx, model.KindIncome)
	if err != nil {
		return r.fail(senderID, err, "failed to list income categories")
	}
	expense, err := r.categories.ListByKind(ctx, model.KindExpense)
	if err != nil {
		return r.fail(senderID, err, "failed to list expense categories")
	}

	r.sessions.Clear(senderID)
	return []Reply{
		textReply(formatCategoryOverview(income, expense)),
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}

// nameErrorReply maps name-validation failures to retry prompts that keep
// the current step alive.
func nameErrorReply(err error) ([]Reply, bool) {
	switch {
	case errors.Is(err, common.ErrEmptyName):
		return []Reply{textReply("The name cannot be empty. Try again.")}, true
	case errors.Is(err, common.ErrNameTooLong):
		return []Reply{textReply(fmt.Sprintf("The name is too long, %d characters max.", model.MaxCategoryNameLen))}, true
	case errors.Is(err, common.ErrDuplicateEntry):
		return []Reply{textReply("A category with that name already exists. Enter a different one.")}, true
	default:
		return nil, false
	}
}
