package costing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TimeLayout is the minute-precision format operators enter start and end times in
const TimeLayout = "2006-01-02 15:04"

var secondsPerHour = decimal.NewFromInt(3600)

// ProcessType is the production step a time entry covers
type ProcessType string

const (
	ProcessCrushing  ProcessType = "CRUSHING"
	ProcessDrying    ProcessType = "DRYING"
	ProcessFiltering ProcessType = "FILTERING"
)

// IsValid returns true if the process type is known
func (p ProcessType) IsValid() bool {
	switch p {
	case ProcessCrushing, ProcessDrying, ProcessFiltering:
		return true
	default:
		return false
	}
}

// ParseProcessType accepts any letter case and defaults to crushing
func ParseProcessType(s string) (ProcessType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ProcessCrushing, nil
	}
	p := ProcessType(s)
	if !p.IsValid() {
		return "", shared.NewValidationError("invalid process type: %s", s)
	}
	return p, nil
}

// TimeEntry is the measured run time of one batch process. Per-hour cost
// elements are charged on BilledHours, the duration rounded up to whole hours.
type TimeEntry struct {
	ID           uuid.UUID
	BatchID      uuid.UUID
	ProcessType  ProcessType
	Start        time.Time
	End          time.Time
	TotalHours   decimal.Decimal
	BilledHours  decimal.Decimal
	OperatorName string
	Notes        string
	CreatedAt    time.Time
}

// NewTimeEntry measures a process run between start and end
func NewTimeEntry(process ProcessType, start, end time.Time, operator, notes string) (*TimeEntry, error) {
	if !process.IsValid() {
		return nil, shared.NewValidationError("invalid process type: %s", process)
	}
	if start.IsZero() || end.IsZero() {
		return nil, shared.NewValidationError("start and end times are required")
	}
	if !end.After(start) {
		return nil, shared.NewValidationError("end time must be after start time")
	}

	seconds := decimal.NewFromInt(int64(end.Sub(start) / time.Second))
	total := seconds.Div(secondsPerHour)
	return &TimeEntry{
		ID:           uuid.New(),
		ProcessType:  process,
		Start:        start,
		End:          end,
		TotalHours:   total.Round(4),
		BilledHours:  total.Ceil(),
		OperatorName: strings.TrimSpace(operator),
		Notes:        strings.TrimSpace(notes),
		CreatedAt:    time.Now(),
	}, nil
}

// ParseTimeEntry is NewTimeEntry over operator-entered strings in TimeLayout
func ParseTimeEntry(process, start, end, operator, notes string) (*TimeEntry, error) {
	p, err := ParseProcessType(process)
	if err != nil {
		return nil, err
	}
	from, err := time.Parse(TimeLayout, strings.TrimSpace(start))
	if err != nil {
		return nil, shared.NewValidationError("start time %q must be in YYYY-MM-DD HH:MM format", start)
	}
	to, err := time.Parse(TimeLayout, strings.TrimSpace(end))
	if err != nil {
		return nil, shared.NewValidationError("end time %q must be in YYYY-MM-DD HH:MM format", end)
	}
	return NewTimeEntry(p, from, to, operator, notes)
}

// TimeCosts prices every active per-hour element of stage at hours.
// Elements whose IDs are in skip are left out.
func TimeCosts(elements []CostElement, stage Applicability, hours decimal.Decimal, skip map[uuid.UUID]bool) ([]CostDetail, error) {
	var details []CostDetail
	for i := range elements {
		e := &elements[i]
		if !e.Active || e.Method != MethodPerHour || !e.ApplicableTo.AppliesTo(stage) || skip[e.ID] {
			continue
		}
		id := e.ID
		detail, err := NewCostDetail(&id, e.Name, e.Category, e.DefaultRate, nil, hours)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// ModuleBatch marks override entries raised while recording a batch
const ModuleBatch = "BATCH"

// DefaultOverrideReason is recorded when an override gives no reason
const DefaultOverrideReason = "Manual adjustment"

// OverrideEntry audits a cost captured at a rate other than the element's
// master rate.
type OverrideEntry struct {
	ID           uuid.UUID
	Module       string
	RecordID     uuid.UUID
	ElementID    *uuid.UUID
	ElementName  string
	OriginalRate decimal.Decimal
	OverrideRate decimal.Decimal
	Reason       string
	OverriddenBy string
	CreatedAt    time.Time
}

// NewOverrideEntry records the override carried by d. The record it belongs
// to is bound with For once it exists.
func NewOverrideEntry(module string, d CostDetail, reason, by string) (*OverrideEntry, error) {
	if d.OverrideRate == nil {
		return nil, shared.NewValidationError("%s has no override rate", d.ElementName)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultOverrideReason
	}
	by = strings.TrimSpace(by)
	if by == "" {
		by = "System"
	}
	return &OverrideEntry{
		ID:           uuid.New(),
		Module:       module,
		ElementID:    d.ElementID,
		ElementName:  d.ElementName,
		OriginalRate: d.MasterRate,
		OverrideRate: *d.OverrideRate,
		Reason:       reason,
		OverriddenBy: by,
		CreatedAt:    time.Now(),
	}, nil
}

// For binds the entry to the record the override was applied on
func (o *OverrideEntry) For(recordID uuid.UUID) *OverrideEntry {
	o.RecordID = recordID
	return o
}

// Difference is how far the override moved the rate from the master rate
func (o *OverrideEntry) Difference() decimal.Decimal {
	return o.OverrideRate.Sub(o.OriginalRate)
}
