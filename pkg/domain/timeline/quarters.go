package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/rag"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// QuarterEpic is one epic placed on the quarter board.
type QuarterEpic struct {
	Epic           tracker.Epic `json:"epic"`
	Status         rag.Status   `json:"status"`
	CompletionRate float64      `json:"completion_rate"`
}

// Quarter is one calendar quarter's epics, worst first.
type Quarter struct {
	Label string        `json:"label"` // e.g. "Q2 2026"
	Year  int           `json:"year"`
	Q     int           `json:"q"`
	Epics []QuarterEpic `json:"epics"`
}

// QuarterLabel formats a date's calendar quarter.
func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
}

// Quarters buckets epics into calendar quarters by their first present
// date (start, then due, then end). Epics without any date are skipped.
// The current quarter is always present, even when empty. Within a
// quarter, epics sort by severity (red, amber, green) then ascending
// completion.
func Quarters(epics []tracker.Epic, now time.Time) []Quarter {
	buckets := make(map[string]*Quarter)

	ensure := func(t time.Time) *Quarter {
		label := QuarterLabel(t)
		q, ok := buckets[label]
		if !ok {
			q = &Quarter{Label: label, Year: t.Year(), Q: (int(t.Month())-1)/3 + 1}
			buckets[label] = q
		}
		return q
	}
	ensure(now)

	for _, e := range epics {
		anchor := firstDate(&e)
		if anchor == nil {
			continue
		}
		q := ensure(*anchor)
		q.Epics = append(q.Epics, QuarterEpic{
			Epic:           e,
			Status:         quarterStatus(&e, now),
			CompletionRate: completionRate(&e),
		})
	}

	quarters := make([]Quarter, 0, len(buckets))
	for _, q := range buckets {
		sort.SliceStable(q.Epics, func(i, j int) bool {
			si, sj := q.Epics[i].Status.Severity(), q.Epics[j].Status.Severity()
			if si != sj {
				return si > sj
			}
			return q.Epics[i].CompletionRate < q.Epics[j].CompletionRate
		})
		quarters = append(quarters, *q)
	}
	sort.Slice(quarters, func(i, j int) bool {
		if quarters[i].Year != quarters[j].Year {
			return quarters[i].Year < quarters[j].Year
		}
		return quarters[i].Q < quarters[j].Q
	})
	return quarters
}

// quarterStatus is the quarter board's simplified RAG rule set.
func quarterStatus(e *tracker.Epic, now time.Time) rag.Status {
	completion := completionRate(e)
	deadline := e.Deadline()
	open := !e.State.IsClosed()

	if deadline != nil && deadline.Before(now) && open {
		return rag.StatusRed
	}
	if deadline != nil && open {
		days := deadline.Sub(now).Hours() / 24
		if days <= 14 && completion < 80 {
			return rag.StatusAmber
		}
	}
	for i := range e.Issues {
		is := &e.Issues[i]
		if !is.IsClosed() && tracker.IsBlocked(is) {
			return rag.StatusAmber
		}
	}
	if completion < 30 && open {
		return rag.StatusAmber
	}
	return rag.StatusGreen
}

func completionRate(e *tracker.Epic) float64 {
	if len(e.Issues) == 0 {
		return 0
	}
	closed := 0
	for i := range e.Issues {
		if e.Issues[i].IsClosed() {
			closed++
		}
	}
	return float64(closed) / float64(len(e.Issues)) * 100
}

func firstDate(e *tracker.Epic) *time.Time {
	if e.StartDate != nil {
		return e.StartDate
	}
	if e.DueDate != nil {
		return e.DueDate
	}
	return e.EndDate
}
