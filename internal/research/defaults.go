package research

import (
	"context"

	"go.uber.org/zap"

	"github.com/gimiv/stayfull-research/internal/model"
)

// Fallback values used when neither research nor location tables help.
const (
	FallbackTimezone = "America/New_York"
	DefaultLanguage  = "en"
	DefaultCheckIn   = "15:00"
	DefaultCheckOut  = "11:00"
)

// TimezoneLookup resolves an IANA timezone id from coordinates.
type TimezoneLookup interface {
	TimezoneAt(ctx context.Context, lat, lng float64) (string, error)
}

// DefaultsApplier fills the always-required fields that research left empty.
type DefaultsApplier struct {
	tz TimezoneLookup
}

// NewDefaultsApplier creates an applier. tz may be nil, in which case
// timezones come from the location table only.
func NewDefaultsApplier(tz TimezoneLookup) *DefaultsApplier {
	return &DefaultsApplier{tz: tz}
}

// Apply fills timezone, currency, tax rate, check-in/out times and language
// when absent, tagging each with the reason it was defaulted.
func (d *DefaultsApplier) Apply(ctx context.Context, p *model.Profile, q model.Query) {
	loc, known := LookupLocation(q.CountryCode(), q.State)
	if !known {
		loc, _ = LookupLocation("US", "")
	}
	locReason := model.ReasonLocationInference
	if !known {
		locReason = model.ReasonDefault
	}

	if !p.Has(model.FieldTimezone) {
		tz, reason := d.timezone(ctx, p, loc)
		p.Timezone = &tz
		p.Tag(model.FieldTimezone, model.DefaultedBy(reason))
	}

	if !p.Has(model.FieldCurrency) {
		cur := loc.Currency
		p.Currency = &cur
		p.Tag(model.FieldCurrency, model.DefaultedBy(locReason))
	}
	if !p.Has(model.FieldTaxRate) {
		rate := loc.TaxRate
		p.TaxRate = &rate
		p.Tag(model.FieldTaxRate, model.DefaultedBy(locReason))
	}

	if !p.Has(model.FieldCheckInTime) {
		v := DefaultCheckIn
		p.CheckInTime = &v
		p.Tag(model.FieldCheckInTime, model.DefaultedBy(model.ReasonIndustryStandard))
	}
	if !p.Has(model.FieldCheckOutTime) {
		v := DefaultCheckOut
		p.CheckOutTime = &v
		p.Tag(model.FieldCheckOutTime, model.DefaultedBy(model.ReasonIndustryStandard))
	}

	if !p.Has(model.FieldLanguage) {
		lang := loc.Language
		if lang == "" {
			lang = DefaultLanguage
		}
		p.Language = &lang
		p.Tag(model.FieldLanguage, model.DefaultedBy(model.ReasonDefault))
	}
}

func (d *DefaultsApplier) timezone(ctx context.Context, p *model.Profile, loc LocationDefaults) (string, string) {
	if d.tz != nil && p.Latitude != nil && p.Longitude != nil {
		tz, err := d.tz.TimezoneAt(ctx, *p.Latitude, *p.Longitude)
		if err == nil && tz != "" {
			return tz, model.ReasonGPSInference
		}
		if err != nil {
			zap.L().Warn("research: timezone lookup failed, using location table",
				zap.Float64("lat", *p.Latitude),
				zap.Float64("lng", *p.Longitude),
				zap.Error(err),
			)
		}
	}
	if loc.Timezone != "" {
		return loc.Timezone, model.ReasonLocationInference
	}
	return FallbackTimezone, model.ReasonDefault
}
