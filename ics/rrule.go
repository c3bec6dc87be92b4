package ics

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"

	"github.com/orvane/libsched/instant"
	"github.com/orvane/libsched/recurrence"
)

// RRULE parts the rule model cannot represent. WKST is handled
// separately: Monday is the fixed week start, so only other values are
// rejected.
var unsupportedRuleParts = map[string]bool{
	"BYMONTH":    true,
	"BYMONTHDAY": true,
	"BYYEARDAY":  true,
	"BYWEEKNO":   true,
	"BYSETPOS":   true,
	"BYHOUR":     true,
	"BYMINUTE":   true,
	"BYSECOND":   true,
	"BYEASTER":   true,
}

// parseRule converts an RRULE value into a recurrence rule anchored at
// the event's start.
func parseRule(text string, anchor instant.Instant, offset instant.ZoneOffset) (recurrence.Rule, error) {
	if err := checkRuleParts(text); err != nil {
		return recurrence.Rule{}, err
	}

	opt, err := rrule.StrToROption(text)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("%w: RRULE %q: %v", ErrInvalidCalendar, text, err)
	}

	cfg := recurrence.RuleConfig{
		Anchor: anchor,
		Offset: offset,
		Step:   opt.Interval,
		Count:  opt.Count,
	}

	switch opt.Freq {
	case rrule.DAILY:
		cfg.Frequency = recurrence.Daily
	case rrule.WEEKLY:
		cfg.Frequency = recurrence.Weekly
	case rrule.MONTHLY:
		cfg.Frequency = recurrence.Monthly
	case rrule.YEARLY:
		cfg.Frequency = recurrence.Yearly
	default:
		return recurrence.Rule{}, fmt.Errorf("%w: sub-daily frequency in RRULE %q", ErrUnsupportedFeature, text)
	}

	if !opt.Until.IsZero() {
		until, err := instant.FromTime(opt.Until)
		if err != nil {
			return recurrence.Rule{}, fmt.Errorf("%w: UNTIL in RRULE %q: %v", ErrInvalidCalendar, text, err)
		}
		cfg.Until = &until
	}

	if len(opt.Byweekday) > 0 {
		if opt.Freq != rrule.WEEKLY {
			return recurrence.Rule{}, fmt.Errorf("%w: BYDAY on non-weekly RRULE %q", ErrUnsupportedFeature, text)
		}
		days := make([]instant.Weekday, 0, len(opt.Byweekday))
		for _, wd := range opt.Byweekday {
			if wd.N() != 0 {
				return recurrence.Rule{}, fmt.Errorf("%w: ordinal BYDAY in RRULE %q", ErrUnsupportedFeature, text)
			}
			days = append(days, instant.Weekday(wd.Day()))
		}
		cfg.Weekdays = recurrence.Weekdays(days...)
	}

	rule, err := recurrence.NewRule(cfg)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("RRULE %q: %w", text, err)
	}
	return rule, nil
}

// checkRuleParts scans the raw RRULE text for parts outside the
// supported subset before handing it to the parser.
func checkRuleParts(text string) error {
	for _, part := range strings.Split(text, ";") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.ToUpper(strings.TrimSpace(key))
		switch {
		case unsupportedRuleParts[key]:
			return fmt.Errorf("%w: %s in RRULE %q", ErrUnsupportedFeature, key, text)
		case key == "WKST" && strings.ToUpper(strings.TrimSpace(value)) != "MO":
			return fmt.Errorf("%w: week start %s in RRULE %q", ErrUnsupportedFeature, strings.TrimSpace(value), text)
		}
	}
	return nil
}
