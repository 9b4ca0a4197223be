// Package script implements the tiny expression sub-runtime used to run
// serialized-callable node functionality, a small sandboxed scripting
// sub-runtime. It understands one
// statement-per-line programs of the form `target = expr`, where target
// is a dotted path into outputs or state and expr is an arithmetic
// expression over dotted input/state identifiers and numeric literals.
// It is deliberately small: embedding a full scripting VM is out of
// proportion to the one-line reset/step bodies the functionality
// encoding needs to support.
package script

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// ErrUnknownIdentifier is returned when an expression references a
// dotted path not present in the evaluation environment.
var ErrUnknownIdentifier = xerrors.New("unknown identifier in scripted expression")

// Env resolves a dotted identifier (e.g. "inputs.a", "state.count") to
// its current numeric value.
type Env map[string]float64

// Run applies an `lhs = rhs` style program, line by line, writing
// each resolved result back into assign. Blank lines and lines starting
// with "#" are skipped, a sparse-comment register rather than
// inventing a comment syntax of its own.
func Run(src string, env Env, assign func(target string, value float64) error) error {
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			return xerrors.Errorf("scripted line %q is not an assignment", line)
		}
		target := strings.TrimSpace(line[:idx])
		exprSrc := strings.TrimSpace(line[idx+1:])

		val, err := Eval(exprSrc, env)
		if err != nil {
			return xerrors.Errorf("evaluating %q: %w", line, err)
		}
		if err := assign(target, val); err != nil {
			return xerrors.Errorf("assigning %q: %w", target, err)
		}
	}
	return nil
}

// Eval parses and evaluates a single arithmetic expression against env.
func Eval(src string, env Env) (float64, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return 0, xerrors.Errorf("parsing expression %q: %w", src, err)
	}
	return evalNode(expr, env)
}

func evalNode(n ast.Expr, env Env) (float64, error) {
	switch e := n.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT && e.Kind != token.FLOAT {
			return 0, xerrors.Errorf("unsupported literal kind %v", e.Kind)
		}
		v, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			return 0, xerrors.Errorf("parsing literal %q: %w", e.Value, err)
		}
		return v, nil

	case *ast.Ident:
		return lookup(e.Name, env)

	case *ast.SelectorExpr:
		return lookup(selectorPath(e), env)

	case *ast.ParenExpr:
		return evalNode(e.X, env)

	case *ast.UnaryExpr:
		v, err := evalNode(e.X, env)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case token.SUB:
			return -v, nil
		case token.ADD:
			return v, nil
		default:
			return 0, xerrors.Errorf("unsupported unary operator %v", e.Op)
		}

	case *ast.BinaryExpr:
		lhs, err := evalNode(e.X, env)
		if err != nil {
			return 0, err
		}
		rhs, err := evalNode(e.Y, env)
		if err != nil {
			return 0, err
		}
		return applyBinary(e.Op, lhs, rhs)

	default:
		return 0, xerrors.Errorf("unsupported expression node %T", n)
	}
}

func applyBinary(op token.Token, lhs, rhs float64) (float64, error) {
	switch op {
	case token.ADD:
		return lhs + rhs, nil
	case token.SUB:
		return lhs - rhs, nil
	case token.MUL:
		return lhs * rhs, nil
	case token.QUO:
		if rhs == 0 {
			return 0, xerrors.New("division by zero in scripted expression")
		}
		return lhs / rhs, nil
	case token.EQL:
		return boolToFloat(lhs == rhs), nil
	case token.NEQ:
		return boolToFloat(lhs != rhs), nil
	case token.LSS:
		return boolToFloat(lhs < rhs), nil
	case token.LEQ:
		return boolToFloat(lhs <= rhs), nil
	case token.GTR:
		return boolToFloat(lhs > rhs), nil
	case token.GEQ:
		return boolToFloat(lhs >= rhs), nil
	default:
		return 0, xerrors.Errorf("unsupported binary operator %v", op)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func selectorPath(e *ast.SelectorExpr) string {
	switch x := e.X.(type) {
	case *ast.Ident:
		return fmt.Sprintf("%s.%s", x.Name, e.Sel.Name)
	case *ast.SelectorExpr:
		return fmt.Sprintf("%s.%s", selectorPath(x), e.Sel.Name)
	default:
		return e.Sel.Name
	}
}

func lookup(path string, env Env) (float64, error) {
	v, ok := env[path]
	if !ok {
		return 0, xerrors.Errorf("%q: %w", path, ErrUnknownIdentifier)
	}
	return v, nil
}
