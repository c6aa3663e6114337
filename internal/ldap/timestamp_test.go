package ldap

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConvertTimestamp(t *testing.T) {
	tests := map[string]struct {
		raw  string
		want string
	}{
		"generalized time":           {raw: "20230401120000Z", want: "04/01/2023 12:00:00"},
		"generalized with fraction":  {raw: "20230401120000.0Z", want: "04/01/2023 12:00:00"},
		"generalized lower z":        {raw: "20231231235959z", want: "12/31/2023 23:59:59"},
		"generalized afternoon":      {raw: "20240229154501.0Z", want: "02/29/2024 15:45:01"},
		"generalized too short":      {raw: "202304Z", want: "202304Z"},
		"generalized not a date":     {raw: "2023ab01120000Z", want: "2023ab01120000Z"},
		"filetime":                   {raw: "133247808000000000", want: "04/01/2023 00:00:00"},
		"filetime unix epoch":        {raw: "116444736000000000", want: "01/01/1970 00:00:00"},
		"filetime with sub-seconds":  {raw: "133247808009999999", want: "04/01/2023 00:00:00"},
		"zero is never":              {raw: "0", want: NeverLabel},
		"max int64 is never":         {raw: "9223372036854775807", want: NeverLabel},
		"surrounding whitespace":     {raw: " 20230401120000Z ", want: "04/01/2023 12:00:00"},
		"negative kept verbatim":     {raw: "-1", want: "-1"},
		"garbage kept verbatim":      {raw: "yesterday", want: "yesterday"},
		"overflowing kept verbatim":  {raw: "99999999999999999999", want: "99999999999999999999"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ConvertTimestamp(tt.raw))
		})
	}
}

func TestFileTimeRoundTrip(t *testing.T) {
	for _, want := range []time.Time{
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2001, 9, 9, 1, 46, 40, 0, time.UTC),
		time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2038, 1, 19, 3, 14, 8, 500, time.UTC),
	} {
		ticks := TimeToFileTime(want)
		assert.True(t, want.Equal(FileTimeToTime(ticks)), "round trip of %s", want)
		assert.Equal(t, want.Format(TimestampLayout), ConvertTimestamp(strconv.FormatInt(ticks, 10)))
	}
}
