package match

import "github.com/poiesic/talentrank/core"

// RankMonitor provides hooks to observe a ranking pass.
// Implement this interface to track per-candidate outcomes during ranking.
// Scored and Failed may be called concurrently from worker goroutines.
type RankMonitor interface {
	Start(description string, candidateCount int)
	Scored(candidate *core.CandidateProfile, breakdown *core.ScoreBreakdown)
	Failed(candidate *core.CandidateProfile, err error)
	Finish(ranked []*RankedCandidate)
}

// noopMonitor is a no-op implementation of RankMonitor
type noopMonitor struct{}

var _ RankMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                                    {}
func (n *noopMonitor) Scored(_ *core.CandidateProfile, _ *core.ScoreBreakdown) {}
func (n *noopMonitor) Failed(_ *core.CandidateProfile, _ error)                {}
func (n *noopMonitor) Finish(_ []*RankedCandidate)                             {}
