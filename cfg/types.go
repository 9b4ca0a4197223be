// Package cfg implements the declarative graph configuration model: the
// merge/override/validate pipeline (Config Model & Validator) and the
// denormaliser that derives edge locality, scheduling, and per-host
// metadata from it.
package cfg

// Direction is the declared direction of an Edge.
type Direction string

const (
	Feedforward Direction = "feedforward"
	Feedback    Direction = "feedback"
)

// IPCClass names the locality of an edge, derived by Denormalize.
type IPCClass string

const (
	IntraProcess IPCClass = "intra_process"
	InterProcess IPCClass = "inter_process"
	InterHost    IPCClass = "inter_host"
)

// Host is a machine hosting one or more processes.
type Host struct {
	ID                string
	Hostname          string
	RunAccount        string
	ProvisionAccount  string
	PortRangeLo       int
	PortRangeHi       int
	VenvPath          string
	LogDir            string
	LogLevel          string

	// IsInterHostEdgeOwner is derived by Denormalize: true when this host
	// owns at least one inter-host edge (binds the server socket).
	IsInterHostEdgeOwner bool
}

// Process is the unit of OS-level isolation and of scheduling.
type Process struct {
	ID     string
	HostID string
}

// Functionality describes how a node's reset/step pair is obtained.
type FunctionalityKind string

const (
	FunctionalityModule     FunctionalityKind = "module"
	FunctionalitySerialized FunctionalityKind = "serialized"
	FunctionalityCoro       FunctionalityKind = "coro"
)

// Functionality is one of: a named importable module providing
// reset+step or a coro factory; a pair of serialized callables (source
// text); or a coroutine factory in one of those forms.
type Functionality struct {
	Kind FunctionalityKind

	// Module is the registry name used when Kind == FunctionalityModule
	// or FunctionalityCoro and the coroutine/reset/step pair is resolved
	// through the process-local Registry.
	Module string

	// SrcReset / SrcStep hold source text to evaluate when
	// Kind == FunctionalitySerialized.
	SrcReset string
	SrcStep  string

	// Args is the frozen argument record passed to the named factory.
	// Stands in for the original system's binary closure-pickle support
	// with a module reference plus a frozen argument record instead.
	Args map[string]interface{}
}

// Node is a stateful compute unit exposing reset/step (or a coroutine).
type Node struct {
	ID            string
	ProcessID     string
	StateType     string
	RequirementID string
	Functionality Functionality
	Config        map[string]interface{}

	// HostID is derived by Denormalize (copied from the owning process).
	HostID string
}

// Edge is a directed typed connection between an output port and an
// input port.
type Edge struct {
	OwnerNodeID string
	DataType    string
	SrcPath     string // node_id.outputs.port
	DstPath     string // node_id.inputs.port
	Direction   Direction

	// The following fields are populated by Denormalize.
	IDEdge       string
	RelPathSrc   []string
	RelPathDst   []string
	SrcNodeID    string
	DstNodeID    string
	SrcHostID    string
	DstHostID    string
	OwnerHostID  string
	IPCType      IPCClass
	ProcessIDs   []string
	HostIDs      []string
	EdgeIdx      int // only meaningful when IPCType == InterHost
	hasEdgeIdx   bool
}

// HasEdgeIdx reports whether EdgeIdx has been assigned (true only for
// inter-host edges, after Denormalize runs).
func (e *Edge) HasEdgeIdx() bool { return e.hasEdgeIdx }

// System identifies the root of a configuration.
type System struct {
	IDSystem string
}

// Runtime carries the per-run identifiers stamped by the orchestrator
// and is treated as write-once from the moment Denormalize returns.
type Runtime struct {
	IDSystem  string
	IDCfg     string
	IDRun     string
	TSRun     string
	IDHost    string
	IDProcess string
	IDNode    string
	IsLocal   bool
}

// Config is the fully merged, validated (and, once Denormalize has run,
// denormalised) representation of a data-flow graph.
type Config struct {
	System  System
	Host    map[string]*Host
	Process map[string]*Process
	Node    map[string]*Node
	Edge    []*Edge
	Data    map[string]interface{}

	// Queue is the queue-implementation selector table, keyed by IPC
	// class name ("intra_process", "inter_process", "inter_host_server",
	// "inter_host_client"). Populated with defaults by Denormalize when
	// absent from the source config.
	Queue map[string]string

	Runtime Runtime

	denormalized bool
}

// IsDenormalized reports whether Denormalize has already run on this
// config instance.
func (c *Config) IsDenormalized() bool { return c.denormalized }

// Clone returns a deep-enough copy of cfg for use by the orchestrator
// when rewriting a config for local-mode execution or per-host dispatch:
// the Host, Process, Node, Edge and Queue collections are fresh, and
// each Node/Host/Process/Edge value is copied into a fresh pointer, so
// reassigning a field of a cloned value never affects the original.
// Data, and any map or slice held inside a copied value, is shared with
// the original.
func (c *Config) Clone() *Config {
	out := &Config{
		System:  c.System,
		Host:    make(map[string]*Host, len(c.Host)),
		Process: make(map[string]*Process, len(c.Process)),
		Node:    make(map[string]*Node, len(c.Node)),
		Edge:    make([]*Edge, len(c.Edge)),
		Data:    c.Data,
		Queue:   make(map[string]string, len(c.Queue)),
		Runtime: c.Runtime,

		denormalized: c.denormalized,
	}
	for k, v := range c.Host {
		h := *v
		out.Host[k] = &h
	}
	for k, v := range c.Process {
		p := *v
		out.Process[k] = &p
	}
	for k, v := range c.Node {
		n := *v
		out.Node[k] = &n
	}
	for i, e := range c.Edge {
		cp := *e
		out.Edge[i] = &cp
	}
	for k, v := range c.Queue {
		out.Queue[k] = v
	}
	return out
}
