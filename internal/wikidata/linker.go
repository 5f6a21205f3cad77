package wikidata

import (
	"github.com/ppiankov/claimflow/internal/amr"
	"github.com/ppiankov/claimflow/internal/extract"
)

// EventCandidate is a resolved event Qnode with the PropBank frame it was
// found under.
type EventCandidate struct {
	PB string
	*Candidate
}

// EventLinker resolves a claim graph's event to a Qnode using the overlay and
// master tables.
type EventLinker struct {
	tables *Tables
}

// NewEventLinker creates a linker over loaded tables.
func NewEventLinker(tables *Tables) *EventLinker {
	return &EventLinker{tables: tables}
}

// PropbankLabels returns the graph's PropBank frame labels in graph order,
// root first.
func PropbankLabels(g *amr.Graph) []string {
	var labels []string
	for _, label := range g.OrderedNodeLabels() {
		if extract.IsPropbankFrame(label) {
			labels = append(labels, label)
		}
	}
	return labels
}

// BestEvent picks the event Qnode for a claim graph. Overlay results are
// preferred since they tend to be more precise; a master result wins only
// when it comes from the root frame or the overlay has nothing.
func (l *EventLinker) BestEvent(g *amr.Graph) *EventCandidate {
	pbLabels := PropbankLabels(g)
	if len(pbLabels) == 0 {
		return nil
	}
	rootLabel := pbLabels[0]

	best, overlayFromRoot := l.overlayResult(pbLabels, rootLabel)
	if best == nil || !overlayFromRoot {
		masterBest, masterFromRoot := l.masterResult(pbLabels, rootLabel)
		if masterBest != nil && (masterFromRoot || best == nil) {
			best = masterBest
		}
	}
	return best
}

// overlayResult walks the frame labels root-first and returns the first
// overlay hit, noting whether it came from the root frame.
func (l *EventLinker) overlayResult(pbLabels []string, rootLabel string) (*EventCandidate, bool) {
	for _, label := range pbLabels {
		candidates := l.tables.Overlay[label]
		if len(candidates) == 0 {
			continue
		}
		if len(candidates) == 1 {
			return &EventCandidate{PB: label, Candidate: candidates[0]}, label == rootLabel
		}
		if best := bestByNameSimilarity(label, candidates); best != nil {
			return &EventCandidate{PB: label, Candidate: best}, label == rootLabel
		}
	}
	return nil, false
}

// masterResult prefers the most general Qnode by the parent hierarchy, then
// the best name match.
func (l *EventLinker) masterResult(pbLabels []string, rootLabel string) (*EventCandidate, bool) {
	for _, label := range pbLabels {
		candidates := l.tables.Master[label]
		if len(candidates) == 0 {
			continue
		}
		if len(candidates) == 1 {
			return &EventCandidate{PB: label, Candidate: candidates[0]}, label == rootLabel
		}
		if general := l.mostGeneralQnode(label, candidates); general != nil {
			return &EventCandidate{PB: label, Candidate: general}, label == rootLabel
		}
		if best := bestByNameSimilarity(label, candidates); best != nil {
			return &EventCandidate{PB: label, Candidate: best}, label == rootLabel
		}
	}
	return nil, false
}

// mostGeneralQnode narrows a candidate set to the candidate whose Qnode is an
// ancestor of the others, following the master export's parent links. A
// candidate named exactly like the frame wins outright.
func (l *EventLinker) mostGeneralQnode(pb string, candidates []*Candidate) *Candidate {
	byID := make(map[string]*Candidate, len(candidates))
	for _, candidate := range candidates {
		byID[candidate.Qnode] = candidate
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	// Each narrowing step climbs one parent link, so a chain longer than the
	// candidate set means a parent cycle.
	var narrow func(list []string, depth int) string
	narrow = func(list []string, depth int) string {
		if depth > len(byID) {
			return ""
		}
		var keep []string
		for _, id := range list {
			if byID[id].Name == pb {
				return id
			}
			for _, parent := range l.tables.parents[id] {
				if _, ok := byID[parent]; ok {
					keep = append(keep, parent)
				}
			}
		}
		if len(keep) == 1 {
			return keep[0]
		}
		if len(keep) > 1 {
			return narrow(keep, depth+1)
		}
		return ""
	}

	if id := narrow(ids, 0); id != "" {
		return byID[id]
	}
	return nil
}
