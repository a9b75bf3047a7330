package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dynamicDatePrefix = "$date:"

// Layouts accepted as the format part of a dynamic date.
var dateLayouts = map[string]string{
	"day":      "2006-01-02",
	"month":    "2006-01",
	"year":     "2006",
	"datetime": "2006-01-02 15:04:05",
	"stamp":    "2006-01-02-15-04-05",
}

// ParseDynamicDate parses a parameter value of the form "$date:format:unit:offset".
// Example: "$date:day:day:-1" -> yesterday in "2006-01-02" format.
// Values without the prefix are returned unchanged.
func ParseDynamicDate(expression string, baseTime time.Time) (string, error) {
	if !strings.HasPrefix(expression, dynamicDatePrefix) {
		return expression, nil
	}

	parts := strings.Split(expression, ":")
	if len(parts) != 4 {
		return "", fmt.Errorf("invalid dynamic date format: %s", expression)
	}
	format, unit, offsetStr := parts[1], parts[2], parts[3]

	offset, err := strconv.Atoi(offsetStr)
	if err != nil {
		return "", fmt.Errorf("invalid offset in dynamic date: %s", expression)
	}

	target := baseTime
	switch unit {
	case "day":
		target = target.AddDate(0, 0, offset)
	case "week":
		target = target.AddDate(0, 0, 7*offset)
	case "month":
		target = target.AddDate(0, offset, 0)
	case "year":
		target = target.AddDate(offset, 0, 0)
	default:
		return "", fmt.Errorf("unsupported unit in dynamic date: %s", unit)
	}

	return formatTime(target, format), nil
}

// formatTime formats t with a named layout; unknown names fall back to "day".
func formatTime(t time.Time, format string) string {
	layout, ok := dateLayouts[format]
	if !ok {
		layout = dateLayouts["day"]
	}
	return t.Format(layout)
}
