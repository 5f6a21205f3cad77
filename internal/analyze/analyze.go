// Package analyze summarizes a claim output file: topic distributions,
// extraction coverage, and entity reuse.
package analyze

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/ppiankov/claimflow/internal/model"
)

// Stats aggregates per-claim counts over one claim output file.
type Stats struct {
	NumClaims      int
	TopicCounts    map[string]int
	SubtopicCounts map[string]int

	NumXVariables      int
	NumXIdentityQnodes int
	NumXTypeQnodes     int

	NumClaimers              int
	NumClaimerIdentityQnodes int
	NumClaimerTypeQnodes     int

	NumSemanticArgs int

	// EntityMentions counts, per EDL entity id, how many claim mentions
	// resolved to it.
	EntityMentions map[string]int
}

// Analyze computes stats over a claim set.
func Analyze(claims []*model.Claim) *Stats {
	stats := &Stats{
		NumClaims:      len(claims),
		TopicCounts:    make(map[string]int),
		SubtopicCounts: make(map[string]int),
		EntityMentions: make(map[string]int),
	}

	for _, claim := range claims {
		stats.TopicCounts[claim.Topic]++
		stats.SubtopicCounts[claim.Subtopic]++

		if claim.XVariable != nil {
			stats.NumXVariables++
			stats.countEntity(claim.XVariable)
		}
		if claim.XVariableIdentityQnode != nil {
			stats.NumXIdentityQnodes++
		}
		if claim.XVariableTypeQnode != nil {
			stats.NumXTypeQnodes++
		}

		if claim.Claimer != nil {
			stats.NumClaimers++
			stats.countEntity(claim.Claimer)
		}
		if claim.ClaimerIdentityQnode != nil {
			stats.NumClaimerIdentityQnodes++
		}
		if claim.ClaimerTypeQnode != nil {
			stats.NumClaimerTypeQnodes++
		}

		for _, semantics := range claim.ClaimSemantics {
			for _, arg := range semantics.Args {
				stats.NumSemanticArgs++
				if arg != nil {
					stats.countEntity(&arg.Mention)
				}
			}
		}
	}
	return stats
}

func (s *Stats) countEntity(mention *model.Mention) {
	if mention.Entity != nil {
		s.EntityMentions[mention.Entity.EntID]++
	}
}

// MentionsWithEntities returns how many mentions resolved to an entity.
func (s *Stats) MentionsWithEntities() int {
	total := 0
	for _, count := range s.EntityMentions {
		total += count
	}
	return total
}

// EntitiesWithMultipleMentions returns how many entities back more than one
// mention.
func (s *Stats) EntitiesWithMultipleMentions() int {
	count := 0
	for _, mentions := range s.EntityMentions {
		if mentions > 1 {
			count++
		}
	}
	return count
}

// WriteDistributions writes topic_distribution.csv and
// subtopic_distribution.csv into dir, sorted by count descending.
func (s *Stats) WriteDistributions(dir string) error {
	if err := writeDistribution(s.TopicCounts, filepath.Join(dir, "topic_distribution.csv")); err != nil {
		return err
	}
	return writeDistribution(s.SubtopicCounts, filepath.Join(dir, "subtopic_distribution.csv"))
}

func writeDistribution(counts map[string]int, path string) error {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create distribution file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	for _, key := range keys {
		if err := writer.Write([]string{key, strconv.Itoa(counts[key])}); err != nil {
			return fmt.Errorf("write distribution row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSummary prints the coverage report.
func (s *Stats) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "Num of claims: %d\n", s.NumClaims)

	fmt.Fprintln(w, "---- X Variables ----")
	fmt.Fprintf(w, "%% X variables found: %s\n", ratio(s.NumXVariables, s.NumClaims))
	fmt.Fprintf(w, "%% X variable identity qnodes found: %s\n", ratio(s.NumXIdentityQnodes, s.NumXVariables))
	fmt.Fprintf(w, "%% X variable type qnodes found: %s\n", ratio(s.NumXTypeQnodes, s.NumXVariables))

	fmt.Fprintln(w, "---- Claimers ----")
	fmt.Fprintf(w, "%% claims with identified claimers: %s\n", ratio(s.NumClaimers, s.NumClaims))
	fmt.Fprintf(w, "%% of claimer identity qnodes found: %s\n", ratio(s.NumClaimerIdentityQnodes, s.NumClaimers))
	fmt.Fprintf(w, "%% of claimer type qnodes found: %s\n", ratio(s.NumClaimerTypeQnodes, s.NumClaimers))

	fmt.Fprintln(w, "---- Entities ----")
	fmt.Fprintf(w, "# of entities found: %d\n", len(s.EntityMentions))
	totalMentions := s.NumXVariables + s.NumClaimers + s.NumSemanticArgs
	fmt.Fprintf(w, "%% of entities found wrt mentions found: %s\n", ratio(s.MentionsWithEntities(), totalMentions))
	fmt.Fprintf(w, "# of entities with more than one mention: %d\n", s.EntitiesWithMultipleMentions())
}

func ratio(n, d int) string {
	if d == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", float64(n)/float64(d))
}
