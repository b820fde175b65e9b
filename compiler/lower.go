package compiler

import (
	"fmt"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Lowerer: translates routine bodies into flat command units
// ---------------------------------------------------------------------------

// Host scoreboard values are 32-bit signed integers.
const (
	minScore = -2147483648
	maxScore = 2147483647
)

// Lowerer walks routine statement trees and emits host commands into output
// units. One Lowerer spans a whole compilation run: its counters and the
// suspension registration list are shared across every file and routine so
// generated unit names stay unique and dispatch order follows source order.
type Lowerer struct {
	ns      string
	out     *Output
	defines DefineTable

	// Current-position state, updated as files and routines are entered.
	path          string // source path, for faults
	fileBase      string // source-relative base without extension
	routine       string // current routine name
	storagePrefix string

	// Monotonic per-kind counters for extracted sub-units.
	ifCount    int
	whileCount int

	// Suspension bookkeeping (see schedule.go).
	queue []queueEntry
	slots map[string]bool
}

// NewLowerer creates a lowering engine for one compilation run.
func NewLowerer(namespace string, defines DefineTable) *Lowerer {
	if defines == nil {
		defines = DefineTable{}
	}
	return &Lowerer{
		ns:      namespace,
		out:     NewOutput(namespace),
		defines: defines,
		slots:   make(map[string]bool),
	}
}

// score renders a ScoreRef in the host's "holder objective" order.
func score(r ScoreRef) string {
	return r.Name + " " + r.Obj
}

// fn renders a fully qualified function reference.
func (lw *Lowerer) fn(path string) string {
	return lw.ns + ":" + path
}

// mainUnitPath returns the unit path of a named routine in the current file.
func (lw *Lowerer) mainUnitPath(name string) string {
	return lw.fileBase + "/functions/" + name
}

// LowerFile lowers every routine of one parsed source file. fileBase is the
// source path relative to the input root, without extension, using forward
// slashes; it becomes the unit path prefix.
func (lw *Lowerer) LowerFile(file *SourceFile, fileBase string) error {
	lw.path = file.Path
	lw.fileBase = fileBase
	lw.storagePrefix = fmt.Sprintf("mcfn_%s:%s", lw.ns, fileBase)

	for _, r := range file.Routines {
		lw.routine = r.Name
		u := lw.out.Unit(lw.mainUnitPath(r.Name))
		if bodyHasSuspension(r.Body) {
			u.Line("scoreboard objectives add mcfq dummy")
		}
		u.Linef("data modify storage %s return set value 0", lw.storagePrefix)
		if err := lw.lowerBlock(u, r.Body); err != nil {
			return err
		}

		switch r.Special() {
		case SpecialReady:
			lw.out.Load = append(lw.out.Load, lw.fn(lw.mainUnitPath(r.Name)))
		case SpecialTick:
			lw.out.Tick = append(lw.out.Tick, lw.fn(lw.mainUnitPath(r.Name)))
		}
	}
	return nil
}

// Finish writes the run-wide dispatcher and aggregator units and returns
// the collected output.
func (lw *Lowerer) Finish() *Output {
	lw.writeScheduler()
	return lw.out
}

// lowerBlock lowers a statement list into u. A suspension-annotated
// statement splits the block: the statements after it continue in a fresh
// continuation unit that only the dispatcher invokes.
func (lw *Lowerer) lowerBlock(u *Unit, body []Stmt) error {
	cur := u
	for _, s := range body {
		if err := lw.lowerStmt(cur, s); err != nil {
			return err
		}
		if slot := suspensionSlot(s); slot != "" {
			next, err := lw.suspend(cur, slot)
			if err != nil {
				return err
			}
			cur = next
		}
	}
	return nil
}

// lowerStmt lowers one statement. Every Stmt variant is handled; reaching
// the default branch is a compiler defect.
func (lw *Lowerer) lowerStmt(u *Unit, s Stmt) error {
	switch s := s.(type) {
	case *ObjDecl:
		for _, pair := range s.Pairs {
			u.Linef("scoreboard objectives add %s %s", pair.Name, pair.Criterion)
		}
		return nil

	case *VarDecl:
		for _, r := range s.Refs {
			u.Linef("scoreboard players set %s 0", score(r))
		}
		return nil

	case *Assign:
		return lw.lowerExprInto(u, s.Target, s.Value, 0)

	case *CompoundAssign:
		return lw.lowerCompound(u, s)

	case *If:
		return lw.lowerIf(u, s)

	case *While:
		return lw.lowerWhile(u, s)

	case *Rand:
		lo, hi := 0, 100
		if s.HasRange {
			lo, hi = s.Lo, s.Hi
		}
		u.Linef("execute store result score %s run random value %d..%d", score(s.Target), lo, hi)
		return nil

	case *Run:
		return lw.lowerRun(u, s)

	case *Runs:
		for _, ln := range s.Lines {
			u.Line(ln)
		}
		return nil

	case *Show:
		text, err := lw.substitute(s.Pos, s.Text)
		if err != nil {
			return err
		}
		return lw.emitTellraw(u, text)

	case *Title:
		text, err := lw.substitute(s.Pos, s.Text)
		if err != nil {
			return err
		}
		if strings.Contains(text, "\n") {
			return lw.errf(s.Pos, "title(...) text must not contain a newline")
		}
		obj, err := TitleJSON(text)
		if err != nil {
			return err
		}
		u.Linef("title @a title %s", obj)
		return nil

	case *Stor:
		return lw.lowerStor(u, s)

	case *Call:
		u.Linef("function %s", lw.fn(lw.mainUnitPath(s.Name)))
		return nil

	case *VCall:
		u.Linef("data modify storage %s return set value 0", lw.storagePrefix)
		u.Linef("function %s", lw.fn(lw.mainUnitPath(s.Name)))
		u.Linef("execute if data storage %s {return:1} run execute store result score %s run data get storage %s retval",
			lw.storagePrefix, score(s.Dst), lw.storagePrefix)
		return nil

	case *Return:
		return lw.lowerReturn(u, s)

	case *Exec:
		for _, ln := range s.RunLines {
			u.Linef("execute as %s at @s run %s", s.Selector, ln)
		}
		for _, ln := range s.DataLines {
			u.Linef("execute as %s at @s run data %s", s.Selector, ln)
		}
		return nil

	default:
		return internalErr("unhandled statement %T", s)
	}
}

// ---------------------------------------------------------------------------
// Expressions and assignment
// ---------------------------------------------------------------------------

// scratchName returns the scratch holder for a nesting depth. Scratch
// holders are reused across statements; the host has no release concept.
func scratchName(depth int) string {
	if depth == 0 {
		return "__tmp"
	}
	return fmt.Sprintf("__tmp%d", depth+1)
}

// lowerExprInto emits commands leaving the expression's value in target.
// The left subtree is lowered into the target itself; a literal right
// operand is first materialized into a scratch holder of the target's
// objective, because the host's combine instruction takes two registers.
func (lw *Lowerer) lowerExprInto(u *Unit, target ScoreRef, e Expr, depth int) error {
	switch e := e.(type) {
	case *IntLit:
		u.Linef("scoreboard players set %s %d", score(target), e.Value)
		return nil

	case *RefExpr:
		u.Linef("scoreboard players operation %s = %s", score(target), score(e.Ref))
		return nil

	case *StrLit:
		return lw.errf(e.Pos, "a string cannot be stored in a scoreboard register")

	case *BinaryExpr:
		if err := lw.lowerExprInto(u, target, e.Left, depth); err != nil {
			return err
		}
		var rhs ScoreRef
		switch r := e.Right.(type) {
		case *IntLit:
			rhs = ScoreRef{Obj: target.Obj, Name: scratchName(depth)}
			u.Linef("scoreboard players set %s %d", score(rhs), r.Value)
		case *RefExpr:
			rhs = r.Ref
		case *BinaryExpr:
			rhs = ScoreRef{Obj: target.Obj, Name: scratchName(depth)}
			if err := lw.lowerExprInto(u, rhs, r, depth+1); err != nil {
				return err
			}
		case *StrLit:
			return lw.errf(r.Pos, "a string cannot be stored in a scoreboard register")
		default:
			return internalErr("unhandled expression %T", e.Right)
		}
		u.Linef("scoreboard players operation %s %s= %s", score(target), e.Op, score(rhs))
		return nil

	default:
		return internalErr("unhandled expression %T", e)
	}
}

// lowerCompound lowers += -= *= /=. The additive forms accept a literal
// directly; multiply and divide always go through the scratch holder.
func (lw *Lowerer) lowerCompound(u *Unit, s *CompoundAssign) error {
	switch v := s.Value.(type) {
	case *IntLit:
		switch s.Op {
		case "+=":
			u.Linef("scoreboard players add %s %d", score(s.Target), v.Value)
		case "-=":
			u.Linef("scoreboard players remove %s %d", score(s.Target), abs(v.Value))
		default: // *= /=
			scratch := ScoreRef{Obj: s.Target.Obj, Name: scratchName(0)}
			u.Linef("scoreboard players set %s %d", score(scratch), v.Value)
			u.Linef("scoreboard players operation %s %s %s", score(s.Target), s.Op, score(scratch))
		}
		return nil

	case *RefExpr:
		u.Linef("scoreboard players operation %s %s %s", score(s.Target), s.Op, score(v.Ref))
		return nil

	case *StrLit, *BinaryExpr:
		return lw.errf(s.Pos, "compound assignment needs an integer or register operand")

	default:
		return internalErr("unhandled expression %T", s.Value)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ---------------------------------------------------------------------------
// Conditionals and loops
// ---------------------------------------------------------------------------

// matchesRange compiles an ordered or equality comparison against a literal
// into the host's range syntax. The second result is false when the
// comparison is unsatisfiable at the integer boundary; the caller elides
// the instruction entirely in that case.
func matchesRange(op string, k int) (string, bool) {
	switch op {
	case "==":
		return fmt.Sprintf("%d..%d", k, k), true
	case "<=":
		return fmt.Sprintf("..%d", k), true
	case ">=":
		return fmt.Sprintf("%d..", k), true
	case "<":
		if k <= minScore {
			return "", false
		}
		return fmt.Sprintf("..%d", k-1), true
	case ">":
		if k >= maxScore {
			return "", false
		}
		return fmt.Sprintf("%d..", k+1), true
	}
	return "", false
}

// lowerGuardedCall emits the guarded invocation of target for a comparison.
// The host has no "not equal" relational test, so != lowers through the
// negated ("unless") form of equality.
func (lw *Lowerer) lowerGuardedCall(u *Unit, pos Position, lhs Expr, op string, rhs Expr, target string) error {
	lref, ok := lhs.(*RefExpr)
	if !ok {
		return lw.errf(pos, "the left side of a condition must be a register reference")
	}

	switch r := rhs.(type) {
	case *RefExpr:
		if op == "!=" {
			u.Linef("execute unless score %s = %s run function %s",
				score(lref.Ref), score(r.Ref), lw.fn(target))
			return nil
		}
		hostOp := op
		if op == "==" {
			hostOp = "="
		}
		u.Linef("execute if score %s %s %s run function %s",
			score(lref.Ref), hostOp, score(r.Ref), lw.fn(target))
		return nil

	case *IntLit:
		if op == "!=" {
			u.Linef("execute unless score %s matches %d..%d run function %s",
				score(lref.Ref), r.Value, r.Value, lw.fn(target))
			return nil
		}
		rng, ok := matchesRange(op, r.Value)
		if !ok {
			return nil // unsatisfiable at the boundary: dead code, elided
		}
		u.Linef("execute if score %s matches %s run function %s",
			score(lref.Ref), rng, lw.fn(target))
		return nil

	default:
		return lw.errf(pos, "the right side of a condition must be a register or integer")
	}
}

func (lw *Lowerer) lowerIf(u *Unit, s *If) error {
	lw.ifCount++
	subPath := fmt.Sprintf("%s/functions/ifs/if_%s_%d", lw.fileBase, lw.routine, lw.ifCount)
	sub := lw.out.Unit(subPath)
	if err := lw.lowerBlock(sub, s.Body); err != nil {
		return err
	}
	return lw.lowerGuardedCall(u, s.Pos, s.LHS, s.Op, s.RHS, subPath)
}

// lowerWhile extracts the body into a sub-unit ending with a guarded
// self-invocation: iteration is recursion, bounded only by the host's own
// call-depth limit.
func (lw *Lowerer) lowerWhile(u *Unit, s *While) error {
	lw.whileCount++
	subPath := fmt.Sprintf("%s/functions/whiles/while_%s_%d", lw.fileBase, lw.routine, lw.whileCount)
	sub := lw.out.Unit(subPath)
	if err := lw.lowerBlock(sub, s.Body); err != nil {
		return err
	}
	sub.Linef("execute if score %s matches 1.. run function %s", score(s.Cond), lw.fn(subPath))
	u.Linef("function %s", lw.fn(subPath))
	return nil
}

// ---------------------------------------------------------------------------
// Passthrough, broadcast, storage, return
// ---------------------------------------------------------------------------

var soleDefRefRe = regexp.MustCompile(`^\s*\$def\(([A-Za-z_][A-Za-z0-9_]*)\)\s*$`)

func (lw *Lowerer) lowerRun(u *Unit, s *Run) error {
	// A v-string that is exactly one $def(NAME) emits the define's raw
	// fragment flattened to a single line, with no tellraw conversion.
	if s.Interp {
		if m := soleDefRefRe.FindStringSubmatch(s.Text); m != nil {
			d, ok := lw.defines.Get(m[1])
			if !ok {
				return lw.errf(s.Pos, "undefined $def(%s)", m[1])
			}
			if str, ok := d.Value.(string); ok {
				u.Line(strings.TrimSpace(newlineRunRe.ReplaceAllString(str, " ")))
				return nil
			}
			if d.HasRaw() {
				if line := FlattenTight(d.Raw); line != "" {
					u.Line(line)
				}
				return nil
			}
			// otherwise fall through to the normal v-string path
		}
	}

	text, err := lw.substitute(s.Pos, s.Text)
	if err != nil {
		return err
	}
	if !s.Interp {
		u.Line(text)
		return nil
	}
	msg := strings.TrimSpace(text)
	msg = strings.TrimPrefix(msg, "say ")
	return lw.emitTellraw(u, msg)
}

var newlineRunRe = regexp.MustCompile(`[\r\n]+`)

// emitTellraw interpolates text and emits its tellraw broadcast.
func (lw *Lowerer) emitTellraw(u *Unit, text string) error {
	arr, err := TellrawJSON(Interpolate(text, nil))
	if err != nil {
		return err
	}
	u.Linef("tellraw @a %s", arr)
	return nil
}

func (lw *Lowerer) lowerStor(u *Unit, s *Stor) error {
	for _, item := range s.Items {
		var rendered string
		switch v := item.Value.(type) {
		case *StorInt:
			rendered = fmt.Sprintf("%d", v.Value)

		case *StorString:
			text, err := lw.substitute(s.Pos, v.Value)
			if err != nil {
				return err
			}
			b, err := marshalNoEscape(text)
			if err != nil {
				return err
			}
			rendered = string(b)

		case *StorJSON:
			text, err := lw.substitute(s.Pos, v.Text)
			if err != nil {
				return err
			}
			rendered = text

		case *StorDef:
			d, ok := lw.defines.Get(v.Name)
			if !ok {
				return lw.errf(s.Pos, "undefined $def(%s)", v.Name)
			}
			if str, ok := d.Value.(string); ok {
				b, err := marshalNoEscape(str)
				if err != nil {
					return err
				}
				rendered = string(b)
			} else {
				rendered = d.Render()
			}

		default:
			return internalErr("unhandled storage value %T", item.Value)
		}
		u.Linef("data modify storage %s %s set value %s", lw.storagePrefix, item.Key, rendered)
	}
	return nil
}

// lowerReturn sets the storage return flag and publishes the value, if any,
// under the retval key.
func (lw *Lowerer) lowerReturn(u *Unit, s *Return) error {
	u.Linef("data modify storage %s return set value 1", lw.storagePrefix)
	switch v := s.Value.(type) {
	case nil:
		u.Linef("data remove storage %s retval", lw.storagePrefix)
		return nil
	case *IntLit:
		u.Linef("data modify storage %s retval set value %d", lw.storagePrefix, v.Value)
		return nil
	case *StrLit:
		b, err := marshalNoEscape(v.Value)
		if err != nil {
			return err
		}
		u.Linef("data modify storage %s retval set value %s", lw.storagePrefix, string(b))
		return nil
	case *RefExpr:
		u.Linef("execute store result storage %s retval int 1 run scoreboard players get %s",
			lw.storagePrefix, score(v.Ref))
		return nil
	case *BinaryExpr:
		// materialize into the scratch holder, then publish it
		obj := binaryObjective(v)
		if obj == "" {
			return lw.errf(s.Pos, "a computed return value must reference at least one register")
		}
		scratch := ScoreRef{Obj: obj, Name: scratchName(0)}
		if err := lw.lowerExprInto(u, scratch, v, 1); err != nil {
			return err
		}
		u.Linef("execute store result storage %s retval int 1 run scoreboard players get %s",
			lw.storagePrefix, score(scratch))
		return nil
	default:
		return internalErr("unhandled expression %T", s.Value)
	}
}

// binaryObjective picks the register family a binary return value is
// computed in: the family of the leftmost reference.
func binaryObjective(e Expr) string {
	switch e := e.(type) {
	case *RefExpr:
		return e.Ref.Obj
	case *BinaryExpr:
		if obj := binaryObjective(e.Left); obj != "" {
			return obj
		}
		return binaryObjective(e.Right)
	}
	return ""
}

// substitute applies $def expansion, converting failures to located faults.
func (lw *Lowerer) substitute(pos Position, text string) (string, error) {
	out, err := lw.defines.Substitute(text)
	if err != nil {
		return "", lw.errf(pos, "%v", err)
	}
	return out, nil
}

// errf builds a located fault carrying the current source path.
func (lw *Lowerer) errf(pos Position, format string, args ...interface{}) *Error {
	e := errAt(pos, format, args...)
	e.Path = lw.path
	return e
}
