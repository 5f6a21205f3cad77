package wikidata

import "strings"

// Bigrams returns the set of character bigrams of a string.
func Bigrams(s string) map[string]bool {
	set := make(map[string]bool)
	for i := 0; i+2 <= len(s); i++ {
		set[s[i:i+2]] = true
	}
	return set
}

// Dice computes the Dice coefficient between two bigram sets.
func Dice(a, b map[string]bool) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	overlap := 0
	for bigram := range a {
		if b[bigram] {
			overlap++
		}
	}
	return float64(overlap) * 2.0 / float64(len(a)+len(b))
}

// bestByNameSimilarity picks the candidate whose name is closest to the
// PropBank frame (sense number stripped) by Dice coefficient over character
// bigrams. The first candidate is the fallback when nothing scores above zero.
func bestByNameSimilarity(pb string, candidates []*Candidate) *Candidate {
	if len(candidates) == 0 {
		return nil
	}
	pbString := pb
	if i := strings.LastIndex(pb, "-"); i >= 0 {
		pbString = pb[:i]
	}
	pbBigrams := Bigrams(pbString)

	best := candidates[0]
	bestScore := 0.0
	for _, candidate := range candidates {
		score := Dice(pbBigrams, Bigrams(candidate.Name))
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best
}
