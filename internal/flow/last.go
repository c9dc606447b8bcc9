package flow

import (
	"context"
	"strconv"
	"strings"

	"github.com/evanko/ledgerbot/internal/model"
)

// sendLastPage lists one page of recent transactions, newest first. The flow
// is stateless: the next offset rides in the "show more" button token, so
// paging survives restarts and never touches the session store.
func (r *Router) sendLastPage(ctx context.Context, user *model.User, offset int) []Reply {
	entries, hasMore, err := r.storage.GetTransactionPage(ctx, user.ID, lastPageSize, offset)
	if err != nil {
		return r.fail(user.ExternalID, err, "failed to load transaction page")
	}

	if len(entries) == 0 {
		if offset == 0 {
			return []Reply{
				textReply("No transactions yet."),
				keyboardReply(msgChooseAction, mainMenuKeyboard()),
			}
		}
		return []Reply{
			textReply("No more transactions."),
			keyboardReply(msgChooseAction, mainMenuKeyboard()),
		}
	}

	text := strings.Join(formatTransactionLines(entries), "\n")
	if hasMore {
		return []Reply{keyboardReply(text, lastMoreKeyboard(offset + len(entries)))}
	}
	return []Reply{
		textReply(text),
		keyboardReply(msgChooseAction, mainMenuKeyboard()),
	}
}

func (r *Router) lastMoreSelected(ctx context.Context, user *model.User, payload string) []Reply {
	offset, err := strconv.Atoi(payload)
	if err != nil || offset < 0 {
		return []Reply{textReply(msgUnknownButton)}
	}
	return r.sendLastPage(ctx, user, offset)
}
