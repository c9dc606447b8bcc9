// Package flow drives the per-user dialog state machines: it consumes inbound
// chat events, validates them against the active session step, calls the
// stores and the report engine, and emits transport-agnostic replies.
package flow

import (
	"strings"

	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/service"
)

// Command identifies a direct entry point. Dispatch runs on these ids, never
// on display text; labels are the transport's concern.
type Command int

// Known commands.
const (
	CmdNone Command = iota
	CmdStart
	CmdIncome
	CmdExpense
	CmdStats
	CmdRating
	CmdCategories
	CmdLast
	CmdExport
	CmdCancel
	CmdPause
	CmdHelp
)

var commandNames = map[string]Command{
	"start":      CmdStart,
	"income":     CmdIncome,
	"expense":    CmdExpense,
	"stats":      CmdStats,
	"rating":     CmdRating,
	"categories": CmdCategories,
	"last":       CmdLast,
	"export":     CmdExport,
	"cancel":     CmdCancel,
	"pause":      CmdPause,
	"help":       CmdHelp,
}

// ParseCommand maps a slash command ("/stats") or bare name to its id,
// returning CmdNone for anything unknown.
func ParseCommand(s string) Command {
	return commandNames[strings.TrimPrefix(strings.TrimSpace(s), "/")]
}

// Callback token namespaces. These strings ride inside outbound buttons and
// come back verbatim on selection; they are the only state carried between
// turns, so they must stay stable.
const (
	nsCommand          = "cmd"
	nsCategory         = "category"
	nsStatsMode        = "stats_mode"
	nsStatsType        = "stats_type"
	nsStatsCategory    = "stats_category"
	nsStatsPeriod      = "stats_period"
	nsStatsCatPeriod   = "stats_category_period"
	nsRatingPeriod     = "rating_period"
	nsExportPeriod     = "export_period"
	nsManageAction     = "category_manage"
	nsManageAddType    = "category_manage_add_type"
	nsManageEditType   = "category_manage_edit_type"
	nsManageDeleteType = "category_manage_delete_type"
	nsManageEdit       = "category_manage_edit"
	nsManageDelete     = "category_manage_delete"
	nsLastMore         = "last_more"
)

// Callback is a parsed button-selection token.
type Callback struct {
	Namespace string
	Payload   string
}

// ParseCallback splits a "namespace:payload" token. Returns nil for tokens
// without a namespace separator.
func ParseCallback(data string) *Callback {
	ns, payload, ok := strings.Cut(data, ":")
	if !ok || ns == "" {
		return nil
	}
	return &Callback{Namespace: ns, Payload: payload}
}

// Event is one inbound chat turn: a command, a button selection, or free
// text, always tagged with the sender identity.
type Event struct {
	Sender   model.Identity
	Command  Command
	Text     string
	Callback *Callback
}

// Button is one outbound choice; Data is the callback token echoed back on
// selection.
type Button struct {
	Label string
	Data  string
}

// Reply is one outbound message: text, optionally a choice keyboard or a file
// artifact.
type Reply struct {
	Text     string
	Keyboard [][]Button
	Artifact *service.Artifact
}

func textReply(text string) Reply {
	return Reply{Text: text}
}

func keyboardReply(text string, keyboard [][]Button) Reply {
	return Reply{Text: text, Keyboard: keyboard}
}
