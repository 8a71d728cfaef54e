package evaluator

import (
	"math"
	"time"
	_ "time/tzdata" // zone names must resolve without a system zoneinfo

	"github.com/sandrolain/gojslt/pkg/value"
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

// fnNow returns the current time in seconds since the epoch, with
// millisecond precision.
func fnNow(_ value.Value, _ []value.Value) (value.Value, error) {
	return value.Double(float64(nowFunc().UnixMilli()) / 1000), nil
}

// fnParseTime parses text with a date pattern and returns seconds since the
// epoch. Patterns without a zone are read as UTC.
func fnParseTime(_ value.Value, args []value.Value) (value.Value, error) {
	text, ok := asNullableString(args[0])
	if !ok {
		return value.Null, nil
	}
	format := asString(args[1])
	tokens, err := parseTimePattern(format)
	if err == nil {
		var layout string
		layout, err = parseLayout(tokens)
		if err == nil {
			t, perr := time.ParseInLocation(layout, text, time.UTC)
			if perr != nil {
				if len(args) > 2 {
					return args[2], nil
				}
				return nil, argError("parse-time: Unparseable date: %s", value.String(value.Text(text)))
			}
			return value.Double(float64(t.UnixMilli()) / 1000), nil
		}
	}
	return nil, argError("parse-time: Couldn't parse format '%s': %s", format, err)
}

// fnFormatTime renders a timestamp in seconds with a date pattern, in UTC or
// in the named zone.
func fnFormatTime(_ value.Value, args []value.Value) (value.Value, error) {
	n, err := toNumber(args[0], false, nil)
	if err != nil {
		return nil, err
	}
	if value.IsNull(n) {
		return value.Null, nil
	}
	seconds, _ := value.ToFloat(n)
	format := asString(args[1])

	loc := time.UTC
	if len(args) == 3 {
		zone := asString(args[2])
		if zone == "" || zone == "Local" {
			return nil, argError("format-time: Unknown timezone %s", zone)
		}
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return nil, argError("format-time: Unknown timezone %s", zone)
		}
	}

	tokens, err := parseTimePattern(format)
	if err != nil {
		return nil, argError("format-time: Couldn't parse format '%s': %s", format, err)
	}
	ms := int64(math.Round(seconds * 1000))
	return value.Text(formatTime(time.UnixMilli(ms).In(loc), tokens)), nil
}
