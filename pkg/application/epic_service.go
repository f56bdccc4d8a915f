package application

import (
	"sort"

	"github.com/felixgeelhaar/pulse/pkg/domain/rag"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

// EpicService runs the rule-based risk analysis over the snapshot's
// epics.
type EpicService struct {
	velocity *VelocityService
}

func NewEpicService(velocity *VelocityService) *EpicService {
	return &EpicService{velocity: velocity}
}

// EpicResult pairs an epic with its analysis.
type EpicResult struct {
	Epic   tracker.Epic `json:"epic"`
	Result rag.Result   `json:"result"`
}

// Analyze evaluates every epic in the snapshot, most severe first.
func (s *EpicService) Analyze(scope storage.Scope, snap *tracker.Snapshot) ([]EpicResult, error) {
	engine, err := s.velocity.Engine(scope)
	if err != nil {
		return nil, err
	}
	analyzer := rag.NewAnalyzer(engine)

	results := make([]EpicResult, 0, len(snap.Epics))
	for i := range snap.Epics {
		epic := snap.Epics[i]
		results = append(results, EpicResult{
			Epic:   epic,
			Result: analyzer.Analyze(&epic, snap.Iterations, snap.TakenAt),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result.Status.Severity() > results[j].Result.Status.Severity()
	})
	return results, nil
}

// AnalyzeOne evaluates a single epic by id.
func (s *EpicService) AnalyzeOne(scope storage.Scope, snap *tracker.Snapshot, epicID int) (*EpicResult, error) {
	engine, err := s.velocity.Engine(scope)
	if err != nil {
		return nil, err
	}
	analyzer := rag.NewAnalyzer(engine)

	for i := range snap.Epics {
		if snap.Epics[i].ID == epicID {
			epic := snap.Epics[i]
			result := analyzer.Analyze(&epic, snap.Iterations, snap.TakenAt)
			return &EpicResult{Epic: epic, Result: result}, nil
		}
	}
	return nil, &NotFoundError{Kind: "epic", ID: epicID}
}
