// internal/producer/sources.go
package producer

import "time"

const (
	LabelUTCSeconds uint8 = 0o150 // seconds of day, BNR
	LabelUTCTime    uint8 = 0o125 // hhmm, BCD
)

// SecondsOfDay reads the UTC seconds since midnight.
func SecondsOfDay(now time.Time) float64 {
	u := now.UTC()
	return float64(u.Hour()*3600 + u.Minute()*60 + u.Second())
}

// HoursMinutes reads the UTC time as the decimal number hhmm.
func HoursMinutes(now time.Time) float64 {
	u := now.UTC()
	return float64(u.Hour()*100 + u.Minute())
}

// UTCSources are the clock labels of the reference ADIRU set.
func UTCSources() map[uint8]Source {
	return map[uint8]Source{
		LabelUTCSeconds: SecondsOfDay,
		LabelUTCTime:    HoursMinutes,
	}
}

// Constant returns a source that always yields v.
func Constant(v float64) Source {
	return func(time.Time) float64 { return v }
}
