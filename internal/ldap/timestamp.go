package ldap

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// TimestampLayout is the rendering used for every converted timestamp.
	TimestampLayout = "01/02/2006 15:04:05"

	// NeverLabel replaces AD's "no value" sentinels (0 and MaxInt64).
	NeverLabel = "Never"

	// Seconds between 1601-01-01 and 1970-01-01.
	fileTimeEpochOffset = 11644473600
	ticksPerSecond      = 10_000_000

	generalizedTimeLayout = "20060102150405"
)

// ConvertTimestamp renders an AD timestamp attribute in UTC. Values ending
// in Z are generalized time; anything else is a FILETIME tick count.
// Values that cannot be parsed are returned unchanged.
func ConvertTimestamp(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasSuffix(raw, "Z") || strings.HasSuffix(raw, "z") {
		return convertGeneralizedTime(raw)
	}

	return convertFileTime(raw)
}

// convertGeneralizedTime reads YYYYMMDDHHMMSS from the front of the value.
// Fractional seconds and the zone marker are ignored.
func convertGeneralizedTime(raw string) string {
	if len(raw) < len(generalizedTimeLayout)+1 {
		return raw
	}

	t, err := time.Parse(generalizedTimeLayout, raw[:len(generalizedTimeLayout)])
	if err != nil {
		return raw
	}

	return t.UTC().Format(TimestampLayout)
}

func convertFileTime(raw string) string {
	ticks, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ticks < 0 {
		return raw
	}

	if ticks == 0 || ticks == math.MaxInt64 {
		return NeverLabel
	}

	return FileTimeToTime(ticks).Format(TimestampLayout)
}

// FileTimeToTime converts 100ns ticks since 1601-01-01 to a UTC time.
func FileTimeToTime(ticks int64) time.Time {
	sec := ticks/ticksPerSecond - fileTimeEpochOffset
	nsec := (ticks % ticksPerSecond) * 100
	return time.Unix(sec, nsec).UTC()
}

// TimeToFileTime converts a time to 100ns ticks since 1601-01-01.
func TimeToFileTime(t time.Time) int64 {
	return (t.Unix()+fileTimeEpochOffset)*ticksPerSecond + int64(t.Nanosecond()/100)
}
