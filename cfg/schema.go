package cfg

import "regexp"

// These patterns mirror the "definitions" block of the original system's
// normalized-config JSON schema (xact/cfg/validate.py): lowercase_name,
// hex_string, id_edge. We re-express them as plain regexps rather than
// pulling in a JSON-schema library, since our input is already a typed
// Go RawConfig rather than parsed-from-disk JSON/YAML text - see
// DESIGN.md for why this is a standard-library-only corner of the
// validator.
var (
	reLowercaseName = regexp.MustCompile(`^[a-z0-9_]*$`)
	reHexString     = regexp.MustCompile(`^[a-f0-9]*$`)
	reIDEdgePath    = regexp.MustCompile(`^[a-z0-9_./-]*$`)
)

func isLowercaseName(s string) bool { return reLowercaseName.MatchString(s) }
func isHexString(s string) bool     { return reHexString.MatchString(s) }
func isEdgePathChar(s string) bool  { return reIDEdgePath.MatchString(s) }
