package extract

// statementVerbs is the inventory of statement and reasoning verbs used to
// locate claim nodes in AMR graphs. It covers the lexical units of the
// FrameNet Statement and Reasoning frames; multi-word units are hyphenated to
// match AMR concept labels ("point-out").
var statementVerbs = map[string]bool{
	"acknowledge": true,
	"add":         true,
	"address":     true,
	"admit":       true,
	"affirm":      true,
	"allege":      true,
	"announce":    true,
	"argue":       true,
	"assert":      true,
	"attest":      true,
	"aver":        true,
	"avow":        true,
	"caution":     true,
	"claim":       true,
	"comment":     true,
	"conclude":    true,
	"confirm":     true,
	"conjecture":  true,
	"contend":     true,
	"declare":     true,
	"deduce":      true,
	"demonstrate": true,
	"deny":        true,
	"describe":    true,
	"explain":     true,
	"gloss":       true,
	"infer":       true,
	"insist":      true,
	"maintain":    true,
	"mention":     true,
	"note":        true,
	"observe":     true,
	"point-out":   true,
	"preach":      true,
	"proclaim":    true,
	"profess":     true,
	"prove":       true,
	"reaffirm":    true,
	"reason":      true,
	"recount":     true,
	"relate":      true,
	"remark":      true,
	"report":      true,
	"say":         true,
	"speak":       true,
	"state":       true,
	"suggest":     true,
	"talk":        true,
	"tell":        true,
	"write":       true,
}

// IsStatementLabel reports whether an AMR node label denotes a statement or
// reasoning event ("say-01" → say).
func IsStatementLabel(label string) bool {
	return statementVerbs[StripSense(label)]
}
