package sem

import (
	"errors"
	"strings"

	"github.com/gogpu/shaderfront/ir"
)

// Resolution failures. Both are user errors, recorded as diagnostics by
// the caller; resolution never mutates any table state on failure.
var (
	ErrNoMatch   = errors.New("no matching overload")
	ErrAmbiguous = errors.New("ambiguous call, two overloads match equally well")
)

// mangleCall builds the exact-match lookup key for a call site.
func mangleCall(name string, args []ir.Type) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteByte(';')
		}
		a.Mangle(&b)
	}
	b.WriteByte(')')
	return b.String()
}

// viable reports whether the candidate accepts the argument list under the
// given narrowing mode.
func viable(f *Function, args []ir.Type, allowNarrowing bool) bool {
	if len(args) < f.RequiredArgs() || len(args) > len(f.Params) {
		return false
	}
	for i, a := range args {
		if !Convertible(a, f.Params[i].Type, f.Op, i, allowNarrowing) {
			return false
		}
	}
	return true
}

// betterCandidate reports whether f1 beats f2 for the argument list: f1
// must be better on at least one argument and worse on none.
func betterCandidate(f1, f2 *Function, args []ir.Type) bool {
	someBetter := false
	for i, a := range args {
		t1, t2 := f1.Params[i].Type, f2.Params[i].Type
		if Better(a, t2, t1) {
			return false
		}
		if Better(a, t1, t2) {
			someBetter = true
		}
	}
	return someBetter
}

// selectBest ranks viable candidates under Better. A tie between two
// distinct candidates is reported as ambiguous, never resolved by
// declaration order.
func selectBest(viables []*Function, args []ir.Type) (*Function, error) {
	best := viables[0]
	for _, f := range viables[1:] {
		if betterCandidate(f, best, args) {
			best = f
		}
	}
	// The winner must beat or tie every other candidate without any
	// other candidate tying it; a survivor means a real tie.
	for _, f := range viables {
		if f != best && !betterCandidate(best, f, args) {
			return nil, ErrAmbiguous
		}
	}
	return best, nil
}

// Resolve selects the best-matching signature from candidates for the
// argument types. The first pass permits upward promotion only; the
// narrowing pass runs only when the first pass finds no viable candidate.
// The result is deterministic and independent of candidate order.
func Resolve(candidates []*Function, args []ir.Type) (*Function, error) {
	if len(candidates) == 0 {
		return nil, ErrNoMatch
	}
	var viables []*Function
	for _, f := range candidates {
		if viable(f, args, false) {
			viables = append(viables, f)
		}
	}
	if len(viables) == 0 {
		for _, f := range candidates {
			if viable(f, args, true) {
				viables = append(viables, f)
			}
		}
	}
	if len(viables) == 0 {
		return nil, ErrNoMatch
	}
	if len(viables) == 1 {
		return viables[0], nil
	}
	return selectBest(viables, args)
}

// ResolveCall resolves a call site against the table: exact mangled-name
// match first, then ranked overload resolution. When the winner is a
// built-in intrinsic, the argument types are re-promoted to the winner's
// parameter types and resolution runs once more on the promoted types;
// built-in primitive operations accept families of related signatures
// that only become distinguishable after normalizing the arguments.
func (t *Table) ResolveCall(name string, args []ir.Type) (*Function, error) {
	if f := t.LookupExact(mangleCall(name, args)); f != nil {
		return f, nil
	}

	candidates := t.Candidates(name)
	f, err := Resolve(candidates, args)
	if err != nil {
		return nil, err
	}

	if f.IsBuiltinOp() {
		promoted := make([]ir.Type, len(args))
		for i := range args {
			if i < len(f.Params) {
				promoted[i] = promoteArgument(args[i], f.Params[i].Type)
			} else {
				promoted[i] = args[i]
			}
		}
		if refined, err := Resolve(candidates, promoted); err == nil {
			return refined, nil
		}
	}
	return f, nil
}

// promoteArgument normalizes an argument type to the parameter's basic
// kind while keeping the argument's own shape where the parameter merely
// broadcasts or truncates.
func promoteArgument(arg, param ir.Type) ir.Type {
	p := arg
	if promotionRank(arg.Basic) >= 0 && promotionRank(param.Basic) >= 0 {
		p.Basic = param.Basic
	}
	if arg.SameShape(param) {
		return p
	}
	p.VectorSize = param.VectorSize
	p.MatrixCols = param.MatrixCols
	p.MatrixRows = param.MatrixRows
	return p
}

// AppendDefaults pads a short argument list with the selected candidate's
// trailing default values. Each default is cloned so every call site owns
// its own subtree.
func AppendDefaults(f *Function, args []ir.Node) []ir.Node {
	for i := len(args); i < len(f.Params); i++ {
		if f.Params[i].Default == nil {
			break
		}
		args = append(args, ir.Clone(f.Params[i].Default))
	}
	return args
}
