package application

import (
	"github.com/felixgeelhaar/pulse/pkg/domain/search"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// SearchService queries and filters snapshot entities.
type SearchService struct{}

func NewSearchService() *SearchService {
	return &SearchService{}
}

// Issues applies the substring query and then the compound filter.
func (s *SearchService) Issues(snap *tracker.Snapshot, query string, filter search.Filter) []tracker.Issue {
	matched := search.Issues(snap.Issues, query)
	return filter.Apply(matched, snap.TakenAt)
}

// Epics applies the substring query over epics.
func (s *SearchService) Epics(snap *tracker.Snapshot, query string) []tracker.Epic {
	return search.Epics(snap.Epics, query)
}

// Milestones applies the substring query over milestones.
func (s *SearchService) Milestones(snap *tracker.Snapshot, query string) []tracker.Milestone {
	return search.Milestones(snap.Milestones, query)
}
