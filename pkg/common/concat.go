package common

import "strings"

var concatEscaper = strings.NewReplacer(
	" ", "_",
	"(", "_LP_",
	")", "_RP_",
	".", "_DOT_",
	",", "_COMMA_",
	"'", "_APOS_",
	"-", "_DASH_",
	":", "_COLON_",
	`"`, "_QUOT_",
	"&", "_AMP_",
	";", "_SEMI_",
	"!", "_EXC_",
	"?", "_QUE_",
	">", "_RT_",
	"<", "_LT_",
	"/", "_SLASH_",
)

// ConcatEntity returns the surface form the generation service uses for an
// entity: the trimmed, unquoted identifier with punctuation spelled out,
// upper-cased and wrapped in ENT_ ... _ENT.
//
//	ConcatEntity("Eiffel Tower (Paris)") == "ENT_EIFFEL_TOWER__LP_PARIS_RP__ENT"
func ConcatEntity(entity string) string {
	e := strings.Trim(strings.TrimSpace(entity), `"`)
	return "ENT_" + strings.ToUpper(concatEscaper.Replace(e)) + "_ENT"
}

// ConcatMapFor builds the ConcatMap of every entity in g using ConcatEntity.
func ConcatMapFor(g Graph) ConcatMap {
	m := make(ConcatMap)
	for _, e := range g.Entities() {
		m[e] = ConcatEntity(e)
	}
	return m
}
