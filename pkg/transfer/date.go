package transfer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var digitGroups = regexp.MustCompile(`\d+`)

// ParseMandateDate parses a mandate signature date as entered in MOCO.
//
// Text containing a hyphen is read in ISO order (2023-03-05). Anything else
// is read day first, month, then year from its digit runs (05.03.2023).
func ParseMandateDate(raw string) (time.Time, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return time.Time{}, &InvalidDateError{Input: raw, Reason: "empty"}
	}

	groups := digitGroups.FindAllString(input, -1)
	if len(groups) < 3 {
		return time.Time{}, &InvalidDateError{Input: raw, Reason: "expected day, month and year"}
	}

	var yearStr, monthStr, dayStr string
	if strings.Contains(input, "-") {
		yearStr, monthStr, dayStr = groups[0], groups[1], groups[2]
	} else {
		dayStr, monthStr, yearStr = groups[0], groups[1], groups[2]
	}

	year, err1 := strconv.Atoi(yearStr)
	month, err2 := strconv.Atoi(monthStr)
	day, err3 := strconv.Atoi(dayStr)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, &InvalidDateError{Input: raw, Reason: "number out of range"}
	}
	if len(yearStr) == 2 {
		year += 2000
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	// time.Date normalizes overflow; reject anything that rolled over.
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, &InvalidDateError{Input: raw, Reason: "not a calendar date"}
	}

	return date, nil
}
