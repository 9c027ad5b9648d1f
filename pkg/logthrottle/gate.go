package logthrottle

import (
	"fmt"
	"sync"
)

// FrequencyFormat is appended to a reported message when earlier visits of
// the same type were suppressed. The arguments are the number of visits and
// the milliseconds elapsed since the previous report.
const FrequencyFormat = " -visited %d logs of same type in last %d millis"

// decision is the outcome of a single visit to a typeGate.
type decision struct {
	report  bool
	suffix  string
	count   int64
	elapsed int64
}

// annotate appends the frequency suffix to msg.
func (d decision) annotate(msg string) string {
	return msg + d.suffix
}

// typeGate tracks visits for one type key.
type typeGate struct {
	mu          sync.Mutex
	minDistance int64

	// unreported counts visits since the last report, including the current one.
	unreported int64
	lastReport int64
	reported   bool
}

func newTypeGate(minDistanceMillis int64) *typeGate {
	return &typeGate{minDistance: minDistanceMillis}
}

// recordVisit counts a visit at now and decides whether it is reported.
// A visit is reported only when strictly more than minDistance milliseconds
// passed since the previous report; the first visit is always reported.
func (g *typeGate) recordVisit(now int64) decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.unreported++

	var elapsed int64
	if g.reported {
		elapsed = now - g.lastReport
		if elapsed <= g.minDistance {
			return decision{}
		}
	}

	count := g.unreported
	g.unreported = 0
	g.lastReport = now
	g.reported = true

	d := decision{report: true, count: count, elapsed: elapsed}
	if count > 1 {
		d.suffix = fmt.Sprintf(FrequencyFormat, count, elapsed)
	}
	return d
}

// pending returns the number of visits not yet reported.
func (g *typeGate) pending() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unreported
}
