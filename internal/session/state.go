// Package session holds the ephemeral per-user dialog state: which flow is
// active, the current step, and the payload collected so far.
package session

import (
	"github.com/shopspring/decimal"

	"github.com/evanko/ledgerbot/internal/model"
)

// Flow names a multi-step conversation.
type Flow string

// Known flows.
const (
	FlowRecord Flow = "record"
	FlowStats  Flow = "stats"
	FlowRating Flow = "rating"
	FlowManage Flow = "manage"
	FlowExport Flow = "export"
)

// State is the sealed union of dialog steps. Each step carries exactly the
// payload its flow has collected by that point, so an impossible combination
// (a comment step without an amount, say) cannot be constructed.
type State interface {
	Flow() Flow
}

// Record-transaction flow: amount -> category -> comment.

// RecordAmount awaits the amount text for a new transaction.
type RecordAmount struct {
	Kind model.Kind
}

// RecordCategory awaits the category selection.
type RecordCategory struct {
	Kind   model.Kind
	Amount decimal.Decimal
}

// RecordComment awaits the free-text comment ("-" for none).
type RecordComment struct {
	Kind         model.Kind
	CategoryCode string
	Amount       decimal.Decimal
}

func (RecordAmount) Flow() Flow   { return FlowRecord }
func (RecordCategory) Flow() Flow { return FlowRecord }
func (RecordComment) Flow() Flow  { return FlowRecord }

// Stats flow: mode -> [kind -> category] -> period [-> custom period].

// StatsMode awaits the summary/by-category choice.
type StatsMode struct{}

// StatsPeriod awaits the period choice for a summary.
type StatsPeriod struct{}

// StatsCustomPeriod awaits the typed date pair for a summary.
type StatsCustomPeriod struct{}

// StatsKind awaits the income/expense choice for category statistics.
type StatsKind struct{}

// StatsCategorySelect awaits the category choice.
type StatsCategorySelect struct {
	Kind model.Kind
}

// StatsCategoryPeriod awaits the period choice for one category.
type StatsCategoryPeriod struct {
	Kind         model.Kind
	CategoryCode string
}

// StatsCategoryCustomPeriod awaits the typed date pair for one category.
type StatsCategoryCustomPeriod struct {
	Kind         model.Kind
	CategoryCode string
}

func (StatsMode) Flow() Flow                 { return FlowStats }
func (StatsPeriod) Flow() Flow               { return FlowStats }
func (StatsCustomPeriod) Flow() Flow         { return FlowStats }
func (StatsKind) Flow() Flow                 { return FlowStats }
func (StatsCategorySelect) Flow() Flow       { return FlowStats }
func (StatsCategoryPeriod) Flow() Flow       { return FlowStats }
func (StatsCategoryCustomPeriod) Flow() Flow { return FlowStats }

// Rating flow: period [-> custom period].

// RatingPeriod awaits the period choice for the expense rating.
type RatingPeriod struct{}

// RatingCustomPeriod awaits the typed date pair.
type RatingCustomPeriod struct{}

func (RatingPeriod) Flow() Flow       { return FlowRating }
func (RatingCustomPeriod) Flow() Flow { return FlowRating }

// Category management flow: action -> kind -> (name | select [-> name]).

// ManageAction awaits the add/edit/delete/view choice.
type ManageAction struct{}

// ManageAddKind awaits the kind for a new category.
type ManageAddKind struct{}

// ManageAddName awaits the new category's display name.
type ManageAddName struct {
	Kind model.Kind
}

// ManageEditKind awaits the kind for a rename.
type ManageEditKind struct{}

// ManageEditSelect awaits the category to rename.
type ManageEditSelect struct {
	Kind model.Kind
}

// ManageEditName awaits the replacement display name.
type ManageEditName struct {
	Kind         model.Kind
	CategoryCode string
}

// ManageDeleteKind awaits the kind for a deletion.
type ManageDeleteKind struct{}

// ManageDeleteSelect awaits the category to delete.
type ManageDeleteSelect struct {
	Kind model.Kind
}

func (ManageAction) Flow() Flow       { return FlowManage }
func (ManageAddKind) Flow() Flow      { return FlowManage }
func (ManageAddName) Flow() Flow      { return FlowManage }
func (ManageEditKind) Flow() Flow     { return FlowManage }
func (ManageEditSelect) Flow() Flow   { return FlowManage }
func (ManageEditName) Flow() Flow     { return FlowManage }
func (ManageDeleteKind) Flow() Flow   { return FlowManage }
func (ManageDeleteSelect) Flow() Flow { return FlowManage }

// Export flow: period [-> custom period] -> generate.

// ExportPeriod awaits the period choice for the export.
type ExportPeriod struct{}

// ExportCustomPeriod awaits the typed date pair.
type ExportCustomPeriod struct{}

func (ExportPeriod) Flow() Flow       { return FlowExport }
func (ExportCustomPeriod) Flow() Flow { return FlowExport }
