package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Moscow")
	if err != nil {
		panic(err)
	}
}

// force the timezone to be Moscow's since the origin pages carry
// Moscow-local clock times, and date math based on
// <time.Time>.Year()/Month()/Day() must not depend on wherever
// the server happens to be deployed
func Now() time.Time {
	return time.Now().In(Location)
}
