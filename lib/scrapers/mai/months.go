package mai

import (
	"strings"
	"time"
)

// the origin renders dates in the genitive case ("29 января");
// abbreviated renderings have shown up too, so both are accepted
var genitiveMonths = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

var abbreviatedMonths = map[string]time.Month{
	"янв": time.January,
	"фев": time.February,
	"мар": time.March,
	"апр": time.April,
	"май": time.May,
	"июн": time.June,
	"июл": time.July,
	"авг": time.August,
	"сен": time.September,
	"окт": time.October,
	"ноя": time.November,
	"дек": time.December,
}

func monthFromToken(token string) (time.Month, bool) {
	token = strings.ToLower(strings.Trim(token, " ."))
	if m, ok := genitiveMonths[token]; ok {
		return m, true
	}
	if m, ok := abbreviatedMonths[token]; ok {
		return m, true
	}
	return 0, false
}
