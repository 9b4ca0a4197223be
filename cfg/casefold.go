package cfg

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// identifier case-folds id-like fields before they are checked against
// the lowercase_name pattern, so that a config authored with e.g.
// "Host-A" as a host id is accepted the way a hand-authored YAML file
// realistically would be, rather than failing structural validation on
// a cosmetic case mismatch.
var foldCaser = cases.Lower(language.Und)

func foldIdentifier(s string) string {
	return foldCaser.String(s)
}
