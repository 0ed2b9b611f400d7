package domain

import "github.com/google/uuid"

// InsightSets are the weakness-radar topic sets consumed by the planner.
type InsightSets struct {
	FalseSecurity map[uuid.UUID]bool
	BlindSpot     map[uuid.UUID]bool
	OverRevised   map[uuid.UUID]bool
}

// EmptyInsights returns sets with no members.
func EmptyInsights() InsightSets {
	return InsightSets{
		FalseSecurity: map[uuid.UUID]bool{},
		BlindSpot:     map[uuid.UUID]bool{},
		OverRevised:   map[uuid.UUID]bool{},
	}
}

// InsightKind labels a weakness-radar set.
type InsightKind string

const (
	InsightFalseSecurity InsightKind = "false_security"
	InsightBlindSpot     InsightKind = "blind_spot"
	InsightOverRevised   InsightKind = "over_revised"
)

func (k InsightKind) IsValid() bool {
	switch k {
	case InsightFalseSecurity, InsightBlindSpot, InsightOverRevised:
		return true
	}
	return false
}

// Kinds lists the topic IDs of every set, keyed by kind.
func (s InsightSets) Kinds() map[InsightKind][]uuid.UUID {
	out := map[InsightKind][]uuid.UUID{}
	add := func(k InsightKind, set map[uuid.UUID]bool) {
		for id, ok := range set {
			if ok {
				out[k] = append(out[k], id)
			}
		}
	}
	add(InsightFalseSecurity, s.FalseSecurity)
	add(InsightBlindSpot, s.BlindSpot)
	add(InsightOverRevised, s.OverRevised)
	return out
}
