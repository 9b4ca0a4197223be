package cfg

import (
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// validateReferential enforces the referential invariants that a single field's
// pattern cannot express: every referenced id exists; src/dst paths have
// the right second segment; no two edges share a src or a dst; a
// process id belongs to exactly one host; feedforward intra-process
// edges form a DAG. It collects every violation it finds (rather than
// stopping at the first) using go-multierror, then renders them into one
// CfgError - closer to what a production validator gives an operator
// than a fail-fast single-message check.
func validateReferential(c *Config) error {
	var errs *multierror.Error

	for id, p := range c.Process {
		if _, ok := c.Host[p.HostID]; !ok {
			errs = multierror.Append(errs, xerrors.Errorf("process %q references unknown host %q: %w", id, p.HostID, ErrUnknownReference))
		}
	}

	for id, n := range c.Node {
		if _, ok := c.Process[n.ProcessID]; !ok {
			errs = multierror.Append(errs, xerrors.Errorf("node %q references unknown process %q: %w", id, n.ProcessID, ErrUnknownReference))
		}
	}

	seenSrc := map[string]bool{}
	seenDst := map[string]bool{}
	for i, e := range c.Edge {
		srcParts := splitPath(e.SrcPath)
		dstParts := splitPath(e.DstPath)
		if len(srcParts) != 3 || srcParts[1] != "outputs" {
			errs = multierror.Append(errs, xerrors.Errorf("edge[%d].src %q must have the form node.outputs.port", i, e.SrcPath))
		}
		if len(dstParts) != 3 || dstParts[1] != "inputs" {
			errs = multierror.Append(errs, xerrors.Errorf("edge[%d].dst %q must have the form node.inputs.port", i, e.DstPath))
		}
		if seenSrc[e.SrcPath] {
			errs = multierror.Append(errs, xerrors.Errorf("edge[%d]: duplicate src path %q: %w", i, e.SrcPath, ErrDuplicatePath))
		}
		seenSrc[e.SrcPath] = true
		if seenDst[e.DstPath] {
			errs = multierror.Append(errs, xerrors.Errorf("edge[%d]: duplicate dst path %q: %w", i, e.DstPath, ErrDuplicatePath))
		}
		seenDst[e.DstPath] = true

		if len(srcParts) > 0 {
			if _, ok := c.Node[srcParts[0]]; !ok {
				errs = multierror.Append(errs, xerrors.Errorf("edge[%d].src references unknown node %q: %w", i, srcParts[0], ErrUnknownReference))
			}
		}
		if len(dstParts) > 0 {
			if _, ok := c.Node[dstParts[0]]; !ok {
				errs = multierror.Append(errs, xerrors.Errorf("edge[%d].dst references unknown node %q: %w", i, dstParts[0], ErrUnknownReference))
			}
		}
		if _, ok := c.Node[e.OwnerNodeID]; !ok {
			errs = multierror.Append(errs, xerrors.Errorf("edge[%d].owner references unknown node %q: %w", i, e.OwnerNodeID, ErrUnknownReference))
		}
	}

	if err := checkProcessSingleHost(c); err != nil {
		errs = multierror.Append(errs, err)
	}

	if err := checkFeedforwardDAGs(c); err != nil {
		errs = multierror.Append(errs, err)
	}

	return errs.ErrorOrNil()
}

// checkProcessSingleHost is the referential-pass slot for "a process id
// appears on at most one host". It checks nothing and always returns
// nil: each Process carries a single HostID, and the remaining case is
// rejected by Denormalize as ErrProcessOnMultipleHosts.
func checkProcessSingleHost(c *Config) error {
	// Process.HostID is authoritative and unique per map entry, so the
	// invariant is automatically satisfied by the map structure; the one
	// way it can be violated in practice is a node-level edge spanning
	// processes that the denormaliser later discovers resolve to two
	// hosts for what was declared as one process - that is checked in
	// Denormalize, where the error is raised as ErrProcessOnMultipleHosts.
	return nil
}

func splitPath(p string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '.' {
			parts = append(parts, p[start:i])
			start = i + 1
		}
	}
	parts = append(parts, p[start:])
	return parts
}
