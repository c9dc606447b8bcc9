package flow

import (
	"fmt"

	"github.com/evanko/ledgerbot/internal/model"
)

// Period keys carried in period-select callback payloads.
const (
	periodToday  = "today"
	periodLast7  = "last7"
	periodMonth  = "month"
	periodCustom = "custom"
)

func mainMenuKeyboard() [][]Button {
	return [][]Button{
		{
			{Label: "Income", Data: nsCommand + ":income"},
			{Label: "Expense", Data: nsCommand + ":expense"},
		},
		{
			{Label: "Statistics", Data: nsCommand + ":stats"},
			{Label: "Rating", Data: nsCommand + ":rating"},
		},
		{
			{Label: "Recent", Data: nsCommand + ":last"},
			{Label: "Export", Data: nsCommand + ":export"},
		},
	}
}

func periodKeyboard(namespace string) [][]Button {
	return [][]Button{
		{{Label: "Today", Data: namespace + ":" + periodToday}},
		{{Label: "Last 7 days", Data: namespace + ":" + periodLast7}},
		{{Label: "Current month", Data: namespace + ":" + periodMonth}},
		{{Label: "Custom period", Data: namespace + ":" + periodCustom}},
	}
}

func categoriesKeyboard(categories []model.Category, namespace string) [][]Button {
	keyboard := make([][]Button, 0, len(categories))
	for _, cat := range categories {
		keyboard = append(keyboard, []Button{{
			Label: cat.DisplayName,
			Data:  namespace + ":" + cat.Code,
		}})
	}
	return keyboard
}

func kindKeyboard(namespace string) [][]Button {
	return [][]Button{
		{{Label: "Income", Data: namespace + ":" + string(model.KindIncome)}},
		{{Label: "Expense", Data: namespace + ":" + string(model.KindExpense)}},
	}
}

func manageActionKeyboard() [][]Button {
	return [][]Button{
		{{Label: "Add", Data: nsManageAction + ":add"}},
		{{Label: "Rename", Data: nsManageAction + ":edit"}},
		{{Label: "Delete", Data: nsManageAction + ":delete"}},
		{{Label: "View", Data: nsManageAction + ":view"}},
	}
}

func lastMoreKeyboard(nextOffset int) [][]Button {
	return [][]Button{
		{{Label: "Show more", Data: fmt.Sprintf("%s:%d", nsLastMore, nextOffset)}},
	}
}
