/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rtc

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTime means a caller supplied malformed calendar fields to SetTime.
var ErrInvalidTime = errors.New("invalid calendar time")

// ErrTimeOutOfRange means the accumulated time fell outside the span
// representable by CalendarTime.
var ErrTimeOutOfRange = errors.New("time out of representable range")

// The representable span. Accumulated time is a signed 64-bit nanosecond
// duration since the Unix epoch, which caps the calendar at early 2262;
// MaxYear is the last year fully inside that range.
const (
	MinYear = 1970
	MaxYear = 2261
)

var unixEpoch = time.Unix(0, 0).UTC()

// CalendarTime is a broken-down calendar timestamp, always UTC.
type CalendarTime struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Day    int        `json:"day"`
	Hour   int        `json:"hour"`
	Minute int        `json:"minute"`
	Second int        `json:"second"`
}

// Valid checks that the fields form a well-formed calendar value inside the
// representable span. Any failure wraps ErrInvalidTime.
func (tm CalendarTime) Valid() error {
	if tm.Year < MinYear || tm.Year > MaxYear {
		return fmt.Errorf("%w: year %d outside [%d, %d]", ErrInvalidTime, tm.Year, MinYear, MaxYear)
	}
	if tm.Month < time.January || tm.Month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidTime, tm.Month)
	}
	if tm.Day < 1 || tm.Day > daysIn(tm.Year, tm.Month) {
		return fmt.Errorf("%w: day %d of %s %d", ErrInvalidTime, tm.Day, tm.Month, tm.Year)
	}
	if tm.Hour < 0 || tm.Hour > 23 {
		return fmt.Errorf("%w: hour %d", ErrInvalidTime, tm.Hour)
	}
	if tm.Minute < 0 || tm.Minute > 59 {
		return fmt.Errorf("%w: minute %d", ErrInvalidTime, tm.Minute)
	}
	if tm.Second < 0 || tm.Second > 59 {
		return fmt.Errorf("%w: second %d", ErrInvalidTime, tm.Second)
	}
	return nil
}

// Time converts to a time.Time in UTC.
func (tm CalendarTime) Time() time.Time {
	return time.Date(tm.Year, tm.Month, tm.Day, tm.Hour, tm.Minute, tm.Second, 0, time.UTC)
}

func (tm CalendarTime) String() string {
	return tm.Time().Format("2006-01-02T15:04:05")
}

// sinceEpoch converts a valid CalendarTime to accumulated time.
func (tm CalendarTime) sinceEpoch() time.Duration {
	return tm.Time().Sub(unixEpoch)
}

// calendarTimeOf breaks a time.Time down into calendar fields.
func calendarTimeOf(t time.Time) CalendarTime {
	t = t.UTC()
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()
	return CalendarTime{
		Year:   year,
		Month:  month,
		Day:    day,
		Hour:   hour,
		Minute: minute,
		Second: sec,
	}
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
