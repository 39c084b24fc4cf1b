package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Bucharest")
	if err != nil {
		panic(err)
	}
}

// force timestamps into the gym's local timezone, the booking window
// math goes wrong as soon as the host clock is in another zone and we
// start comparing against <time.Time>.Year()/Month()/Day()/Hour()/...
func Now() time.Time {
	return time.Now().In(Location)
}
