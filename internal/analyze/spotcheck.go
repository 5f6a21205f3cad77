package analyze

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/claimflow/internal/model"
)

// SpotCheckResult is the outcome of an interactive Qnode review.
type SpotCheckResult struct {
	Total int
	Good  int
}

// Accuracy returns the fraction of Qnodes judged appropriate.
func (r SpotCheckResult) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Good) / float64(r.Total)
}

// SpotCheck walks every linked Qnode and asks the reviewer whether it fits
// the claim sentence (1 = yes, 0 = no). Input ends the review early on EOF.
func SpotCheck(claims []*model.Claim, in io.Reader, out io.Writer) (SpotCheckResult, error) {
	reader := bufio.NewScanner(in)
	var result SpotCheckResult

	ask := func(sentence, kind string, qnode *model.Qnode) error {
		if qnode == nil {
			return nil
		}
		fmt.Fprintln(out, sentence)
		for {
			fmt.Fprintf(out, "Is this %s qnode appropriate for the sentence above? (1=yes, 0=no):\n%s (%s)\n",
				kind, qnode.QnodeID, qnode.Label)
			if !reader.Scan() {
				if err := reader.Err(); err != nil {
					return err
				}
				return io.EOF
			}
			switch strings.TrimSpace(reader.Text()) {
			case "1":
				result.Good++
				result.Total++
				return nil
			case "0":
				result.Total++
				return nil
			default:
				fmt.Fprintf(out, "Invalid input: %q. Please only input a 1 for yes or a 0 for no.\n", reader.Text())
			}
		}
	}

	for _, claim := range claims {
		checks := []struct {
			kind  string
			qnode *model.Qnode
		}{
			{"X Variable", claim.XVariableTypeQnode},
			{"claimer", claim.ClaimerIdentityQnode},
		}
		for _, check := range checks {
			if err := ask(claim.ClaimSentence, check.kind, check.qnode); err != nil {
				if err == io.EOF {
					return result, nil
				}
				return result, err
			}
		}
		for _, semantics := range claim.ClaimSemantics {
			if semantics.Event == nil || semantics.Event.QnodeID == "" {
				continue
			}
			event := &model.Qnode{QnodeID: semantics.Event.QnodeID, Label: semantics.Event.Text}
			if err := ask(claim.ClaimSentence, "event", event); err != nil {
				if err == io.EOF {
					return result, nil
				}
				return result, err
			}
		}
	}
	return result, nil
}
