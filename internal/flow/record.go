package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/evanko/ledgerbot/internal/common"
	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/session"
)

// noCommentToken is the text that records a transaction without a comment.
const noCommentToken = "-"

func (r *Router) startRecord(senderID string, kind model.Kind) []Reply {
	r.sessions.Set(senderID, session.RecordAmount{Kind: kind})
	return []Reply{textReply(fmt.Sprintf("%s amount:", kindLabel(kind)))}
}

func (r *Router) recordAmountEntered(ctx context.Context, state session.RecordAmount, text, senderID string) []Reply {
	amount, err := ParseAmount(text)
	if err != nil {
		// Session stays on the same step; the user just retries.
		return []Reply{textReply("Invalid amount. Enter a positive number, like 1250 or 99.50.")}
	}

	categories, err := r.categories.ListByKind(ctx, state.Kind)
	if err != nil {
		return r.fail(senderID, err, "failed to list categories")
	}
	if len(categories) == 0 {
		r.sessions.Clear(senderID)
		return []Reply{
			textReply("No categories of that type yet. Add one first."),
			keyboardReply(msgChooseAction, mainMenuKeyboard()),
		}
	}

	r.sessions.Set(senderID, session.RecordCategory{Kind: state.Kind, Amount: amount})
	return []Reply{keyboardReply(msgChooseCat, categoriesKeyboard(categories, nsCategory))}
}

func (r *Router) recordCategorySelected(senderID, code string) []Reply {
	state, ok := r.sessions.Get(senderID).(session.RecordCategory)
	if !ok {
		return r.startOver()
	}

	r.sessions.Set(senderID, session.RecordComment{
		Kind:         state.Kind,
		CategoryCode: code,
		Amount:       state.Amount,
	})
	return []Reply{textReply(`Comment (send "-" to skip):`)}
}

func (r *Router) recordCommentEntered(ctx context.Context, state session.RecordComment, text string, user *model.User, senderID string) []Reply {
	var comment *string
	if text != noCommentToken {
		if len([]rune(text)) > model.MaxCommentLen {
			return []Reply{textReply(fmt.Sprintf("Comment is too long, %d characters max.", model.MaxCommentLen))}
		}
		comment = &text
	}

	cat, err := r.categories.GetByCode(ctx, state.Kind, state.CategoryCode)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Category vanished mid-dialog, likely deleted from another turn.
			r.sessions.Clear(senderID)
			return []Reply{
				textReply("That category no longer exists. Start over."),
				keyboardReply(msgChooseAction, mainMenuKeyboard()),
			}
		}
		return r.fail(senderID, err, "failed to load category")
	}

	txn := &model.Transaction{
		UserID:     user.ID,
		CategoryID: cat.ID,
		Kind:       state.Kind,
		Amount:     state.Amount,
		Comment:    comment,
	}
	if err := r.storage.RecordTransaction(ctx, txn); err != nil {
		return r.fail(senderID, err, "failed to record transaction")
	}

	r.sessions.Clear(senderID)
	return []Reply{
		textReply(fmt.Sprintf("%s saved: %s — %s", kindLabel(state.Kind), state.Amount.StringFixed(2), cat.DisplayName)),
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}
