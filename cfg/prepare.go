package cfg

// Prepare merges one or more config sources, applies a sequence of
// address-value override pairs (split on delim), computes IDCfg over the
// merged mapping, and validates the result against the normalized schema.
// Validation is two-phase: decode performs the
// structural check while converting RawConfig into a typed Config, and
// validateReferential performs the referential-consistency check
// described above. Either phase returns a *CfgError; no other error kind
// escapes Prepare.
func Prepare(sources []RawConfig, overrides []Override, delim string) (*Config, error) {
	if len(sources) == 0 {
		return nil, NewCfgError("no configuration data has been provided")
	}
	if delim == "" {
		delim = "."
	}

	merged := MergeAll(sources...)
	merged = ApplyOverrides(merged, overrides, delim)

	idCfg := IDCfg(merged, 16)

	c, err := decode(merged)
	if err != nil {
		return nil, err
	}

	if err := validateReferential(c); err != nil {
		return nil, WrapCfgError("referential validation failed", err)
	}

	c.Runtime = Runtime{
		IDSystem:  c.System.IDSystem,
		IDCfg:     idCfg,
		IDHost:    "tbd",
		IDProcess: "tbd",
		IDNode:    "tbd",
		TSRun:     "00000000000000",
		IDRun:     "00000000",
	}

	return c, nil
}
