package cfg

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// decode converts a merged+overridden RawConfig into a typed Config,
// performing the structural half of validation (required fields
// present, identifier fields well-formed) as it goes. It mirrors the
// shape of the original system's _normalized_cfg_schema, re-expressed as
// direct field decoding instead of a JSON-schema document.
func decode(raw RawConfig) (*Config, error) {
	var errs *multierror.Error

	cfg := &Config{
		Host:    map[string]*Host{},
		Process: map[string]*Process{},
		Node:    map[string]*Node{},
		Queue:   map[string]string{},
	}

	sysRaw, _ := raw["system"].(RawConfig)
	idSystem := foldIdentifier(getString(sysRaw, "id_system"))
	if idSystem == "" {
		errs = multierror.Append(errs, xerrors.New("system.id_system is required"))
	} else if !isLowercaseName(idSystem) {
		errs = multierror.Append(errs, xerrors.Errorf("system.id_system %q is not a lowercase_name", idSystem))
	}
	cfg.System = System{IDSystem: idSystem}

	hostRaw, _ := raw["host"].(RawConfig)
	for id, v := range hostRaw {
		id = foldIdentifier(id)
		hv, ok := v.(RawConfig)
		if !ok {
			errs = multierror.Append(errs, xerrors.Errorf("host.%s must be a mapping", id))
			continue
		}
		h := &Host{
			ID:               id,
			Hostname:         getString(hv, "hostname"),
			RunAccount:       getString(hv, "acct_run"),
			ProvisionAccount: getString(hv, "acct_provision"),
			VenvPath:         getString(hv, "dirpath_venv"),
			LogDir:           getString(hv, "dirpath_log"),
			LogLevel:         defaultString(getString(hv, "log_level"), "info"),
		}
		if pr := getString(hv, "port_range"); pr != "" {
			lo, hi, err := parsePortRange(pr)
			if err != nil {
				errs = multierror.Append(errs, xerrors.Errorf("host.%s.port_range: %w", id, err))
			}
			h.PortRangeLo, h.PortRangeHi = lo, hi
		}
		if !isLowercaseName(id) {
			errs = multierror.Append(errs, xerrors.Errorf("host id %q is not a lowercase_name", id))
		}
		cfg.Host[id] = h
	}

	procRaw, _ := raw["process"].(RawConfig)
	for id, v := range procRaw {
		id = foldIdentifier(id)
		pv, ok := v.(RawConfig)
		if !ok {
			errs = multierror.Append(errs, xerrors.Errorf("process.%s must be a mapping", id))
			continue
		}
		hostID := foldIdentifier(getString(pv, "host"))
		if !isLowercaseName(id) {
			errs = multierror.Append(errs, xerrors.Errorf("process id %q is not a lowercase_name", id))
		}
		cfg.Process[id] = &Process{ID: id, HostID: hostID}
	}

	nodeRaw, _ := raw["node"].(RawConfig)
	for id, v := range nodeRaw {
		id = foldIdentifier(id)
		nv, ok := v.(RawConfig)
		if !ok {
			errs = multierror.Append(errs, xerrors.Errorf("node.%s must be a mapping", id))
			continue
		}
		if !isLowercaseName(id) {
			errs = multierror.Append(errs, xerrors.Errorf("node id %q is not a lowercase_name", id))
		}
		fn, err := decodeFunctionality(nv)
		if err != nil {
			errs = multierror.Append(errs, xerrors.Errorf("node.%s.functionality: %w", id, err))
		}
		var nodeCfg map[string]interface{}
		if c, ok := nv["config"].(RawConfig); ok {
			nodeCfg = c
		}
		cfg.Node[id] = &Node{
			ID:            id,
			ProcessID:     foldIdentifier(getString(nv, "process")),
			StateType:     getString(nv, "state_type"),
			RequirementID: getString(nv, "req_host_cfg"),
			Functionality: fn,
			Config:        nodeCfg,
		}
	}

	edgeRaw, _ := raw["edge"].([]interface{})
	for i, v := range edgeRaw {
		ev, ok := v.(RawConfig)
		if !ok {
			errs = multierror.Append(errs, xerrors.Errorf("edge[%d] must be a mapping", i))
			continue
		}
		src := getString(ev, "src")
		dst := getString(ev, "dst")
		if !isEdgePathChar(src) {
			errs = multierror.Append(errs, xerrors.Errorf("edge[%d].src %q is not a valid edge path", i, src))
		}
		if !isEdgePathChar(dst) {
			errs = multierror.Append(errs, xerrors.Errorf("edge[%d].dst %q is not a valid edge path", i, dst))
		}
		dir := Feedforward
		if d := getString(ev, "dirn"); d == string(Feedback) {
			dir = Feedback
		}
		cfg.Edge = append(cfg.Edge, &Edge{
			OwnerNodeID: foldIdentifier(getString(ev, "owner")),
			DataType:    getString(ev, "data"),
			SrcPath:     src,
			DstPath:     dst,
			Direction:   dir,
		})
	}

	if dataRaw, ok := raw["data"].(RawConfig); ok {
		cfg.Data = dataRaw
	}
	if queueRaw, ok := raw["queue"].(RawConfig); ok {
		for k, v := range queueRaw {
			if s, ok := v.(string); ok {
				cfg.Queue[k] = s
			}
		}
	}

	if errs.ErrorOrNil() != nil {
		return nil, WrapCfgError("structural validation failed", errs)
	}
	return cfg, nil
}

func decodeFunctionality(nv RawConfig) (Functionality, error) {
	fnRaw, ok := nv["functionality"].(RawConfig)
	if !ok {
		return Functionality{}, xerrors.New("required")
	}
	if module := getString(fnRaw, "module"); module != "" {
		args, _ := fnRaw["args"].(RawConfig)
		return Functionality{Kind: FunctionalityModule, Module: module, Args: args}, nil
	}
	if coro := getString(fnRaw, "coro"); coro != "" {
		args, _ := fnRaw["args"].(RawConfig)
		return Functionality{Kind: FunctionalityCoro, Module: coro, Args: args}, nil
	}
	srcReset := getString(fnRaw, "src_reset")
	srcStep := getString(fnRaw, "src_step")
	if srcReset != "" || srcStep != "" {
		return Functionality{Kind: FunctionalitySerialized, SrcReset: srcReset, SrcStep: srcStep}, nil
	}
	return Functionality{}, xerrors.New("must set one of module, coro, or src_reset/src_step")
}

func getString(m RawConfig, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func parsePortRange(s string) (lo, hi int, err error) {
	_, err = fmt.Sscanf(s, "%d-%d", &lo, &hi)
	if err != nil {
		return 0, 0, xerrors.Errorf("port_range %q must be LO-HI: %w", s, err)
	}
	if hi < lo {
		return 0, 0, xerrors.Errorf("port_range %q has hi < lo", s)
	}
	return lo, hi, nil
}
