package extract

import "strings"

// irregularVerbs maps common irregular past/participle forms to their lemma.
// Statement verbs dominate the claim graphs, so the table is biased to them.
var irregularVerbs = map[string]string{
	"said":    "say",
	"told":    "tell",
	"wrote":   "write",
	"written": "write",
	"spoke":   "speak",
	"spoken":  "speak",
	"thought": "think",
	"found":   "find",
	"made":    "make",
	"meant":   "mean",
	"held":    "hold",
	"saw":     "see",
	"seen":    "see",
	"knew":    "know",
	"known":   "know",
	"gave":    "give",
	"given":   "give",
	"shown":   "show",
	"were":    "be",
	"was":     "be",
	"is":      "be",
	"are":     "be",
	"been":    "be",
}

// LemmaNoun reduces a plural noun to its singular form.
func LemmaNoun(token string) string {
	token = strings.ToLower(token)
	switch {
	case strings.HasSuffix(token, "ies") && len(token) > 4:
		return token[:len(token)-3] + "y"
	case strings.HasSuffix(token, "ses") || strings.HasSuffix(token, "xes") ||
		strings.HasSuffix(token, "zes") || strings.HasSuffix(token, "ches") ||
		strings.HasSuffix(token, "shes"):
		return token[:len(token)-2]
	case strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") && len(token) > 3:
		return token[:len(token)-1]
	}
	return token
}

// LemmaVerb reduces an inflected verb to its base form. Irregulars come from a
// small table; the rest is suffix stripping.
func LemmaVerb(token string) string {
	token = strings.ToLower(token)
	if lemma, ok := irregularVerbs[token]; ok {
		return lemma
	}
	switch {
	case strings.HasSuffix(token, "ies") && len(token) > 4:
		return token[:len(token)-3] + "y"
	case strings.HasSuffix(token, "ied") && len(token) > 4:
		return token[:len(token)-3] + "y"
	case strings.HasSuffix(token, "ing") && len(token) > 5:
		stem := token[:len(token)-3]
		if len(stem) >= 2 && stem[len(stem)-1] == stem[len(stem)-2] {
			return stem[:len(stem)-1] // stating is not statting
		}
		return stem
	case strings.HasSuffix(token, "ed") && len(token) > 4:
		stem := token[:len(token)-2]
		if len(stem) >= 2 && stem[len(stem)-1] == stem[len(stem)-2] {
			return stem[:len(stem)-1]
		}
		if strings.HasSuffix(token, "ated") || strings.HasSuffix(token, "ued") ||
			strings.HasSuffix(token, "ared") || strings.HasSuffix(token, "ised") ||
			strings.HasSuffix(token, "ized") {
			return stem + "e"
		}
		return stem
	case strings.HasSuffix(token, "es") && len(token) > 3:
		return token[:len(token)-1] // states -> state
	case strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") && len(token) > 3:
		return token[:len(token)-1]
	}
	return token
}
