// Package xacttest runs end-to-end dataflow scenarios against the real
// cfg/node/scheduler/orchestrator stack inside a single test process,
// without spawning child processes. Most scenarios run in local mode;
// scenario 2 drives two RunProcess calls over a real Unix domain socket.
package xacttest

import (
	"github.com/xplain-systems/xact/cfg"
)

// counterGraph returns the two-node "a increments, b halts at 10" raw
// config of scenario 1, parameterised by the node's
// functionality kind so scenarios 1 and 3 can share it.
func counterGraph(idSystem string, aFn, bFn cfg.RawConfig) cfg.RawConfig {
	return cfg.RawConfig{
		"system": cfg.RawConfig{"id_system": idSystem},
		"host": cfg.RawConfig{
			"localhost": cfg.RawConfig{
				"hostname":   "localhost",
				"port_range": "21000-21100",
				"log_level":  "error",
			},
		},
		"process": cfg.RawConfig{
			"p": cfg.RawConfig{"host": "localhost"},
		},
		"node": cfg.RawConfig{
			"a": cfg.RawConfig{
				"process":       "p",
				"state_type":    "int64",
				"functionality": aFn,
			},
			"b": cfg.RawConfig{
				"process":       "p",
				"functionality": bFn,
			},
		},
		"edge": []interface{}{
			cfg.RawConfig{
				"owner": "a",
				"data":  "counter_state",
				"src":   "a.outputs.output",
				"dst":   "b.inputs.input",
			},
		},
		"data": cfg.RawConfig{
			"counter_state": cfg.RawConfig{
				"fields": cfg.RawConfig{"count": "int64"},
			},
		},
	}
}

// dualProcessCounterGraph is scenario 2: as counterGraph, but a and b
// live in different processes on the same host, forcing the edge to
// inter_process rather than intra_process.
func dualProcessCounterGraph(idSystem string) cfg.RawConfig {
	return cfg.RawConfig{
		"system": cfg.RawConfig{"id_system": idSystem},
		"host": cfg.RawConfig{
			"localhost": cfg.RawConfig{
				"hostname":   "localhost",
				"port_range": "21000-21100",
				"log_level":  "error",
			},
		},
		"process": cfg.RawConfig{
			"p1": cfg.RawConfig{"host": "localhost"},
			"p2": cfg.RawConfig{"host": "localhost"},
		},
		"node": cfg.RawConfig{
			"a": cfg.RawConfig{
				"process":       "p1",
				"state_type":    "int64",
				"functionality": cfg.RawConfig{"module": "counter"},
			},
			"b": cfg.RawConfig{
				"process": "p2",
				"functionality": cfg.RawConfig{
					"module": "threshold_halt",
					"args":   cfg.RawConfig{"threshold": 10.0},
				},
			},
		},
		"edge": []interface{}{
			cfg.RawConfig{
				"owner": "a",
				"data":  "counter_state",
				"src":   "a.outputs.output",
				"dst":   "b.inputs.input",
			},
		},
		"data": cfg.RawConfig{
			"counter_state": cfg.RawConfig{
				"fields": cfg.RawConfig{"count": "int64"},
			},
		},
	}
}

// feedbackGraph is scenario 4: a emits count on a feedforward edge to
// b; b emits do_halt = (count >= 10) back to a on a feedback edge; a
// halts once it observes do_halt == true.
func feedbackGraph(idSystem string) cfg.RawConfig {
	return cfg.RawConfig{
		"system": cfg.RawConfig{"id_system": idSystem},
		"host": cfg.RawConfig{
			"localhost": cfg.RawConfig{
				"hostname":   "localhost",
				"port_range": "21000-21100",
				"log_level":  "error",
			},
		},
		"process": cfg.RawConfig{
			"p": cfg.RawConfig{"host": "localhost"},
		},
		"node": cfg.RawConfig{
			"a": cfg.RawConfig{
				"process":    "p",
				"state_type": "int64",
				"functionality": cfg.RawConfig{
					"module": "feedback_counter",
				},
			},
			"b": cfg.RawConfig{
				"process": "p",
				"functionality": cfg.RawConfig{
					"module": "feedback_threshold",
					"args":   cfg.RawConfig{"threshold": 10.0},
				},
			},
		},
		"edge": []interface{}{
			cfg.RawConfig{
				"owner": "a",
				"data":  "counter_state",
				"src":   "a.outputs.output",
				"dst":   "b.inputs.input",
			},
			cfg.RawConfig{
				"owner": "b",
				"data":  "halt_flag",
				"src":   "b.outputs.output",
				"dst":   "a.inputs.input",
				"dirn":  "feedback",
			},
		},
		"data": cfg.RawConfig{
			"counter_state": cfg.RawConfig{
				"fields": cfg.RawConfig{"count": "int64"},
			},
			"halt_flag": cfg.RawConfig{
				"fields": cfg.RawConfig{"do_halt": "bool"},
			},
		},
	}
}

// prepareLocal runs cfg.Prepare then marks the result for single-process
// local execution, as orchestrator.Start expects to find it for any
// config whose runtime is local.
func prepareLocal(raw cfg.RawConfig) (*cfg.Config, error) {
	c, err := cfg.Prepare([]cfg.RawConfig{raw}, nil, ".")
	if err != nil {
		return nil, err
	}
	c.Runtime.IsLocal = true
	return c, nil
}
