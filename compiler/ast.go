package compiler

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for MCFN
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// ScoreRef identifies one scoreboard register as an (objective, holder) pair.
type ScoreRef struct {
	Obj  string // objective (register family)
	Name string // holder (player name)
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes. The variant family is closed:
// the lowering engine switches over every implementation and treats an
// unknown one as an internal fault.
type Expr interface {
	Node
	expr() // marker method
}

// IntLit represents an integer literal.
type IntLit struct {
	Pos   Position
	Value int
}

func (n *IntLit) node() {}
func (n *IntLit) expr() {}

// StrLit represents a string literal.
type StrLit struct {
	Pos   Position
	Value string
}

func (n *StrLit) node() {}
func (n *StrLit) expr() {}

// RefExpr represents a scoreboard reference used as a value.
type RefExpr struct {
	Pos Position
	Ref ScoreRef
}

func (n *RefExpr) node() {}
func (n *RefExpr) expr() {}

// BinaryExpr represents a left-associative binary arithmetic expression.
type BinaryExpr struct {
	Pos   Position
	Op    string // one of + - * /
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) node() {}
func (n *BinaryExpr) expr() {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes. Closed variant family.
type Stmt interface {
	Node
	stmt() // marker method
}

// ObjPair is one (objective, criterion) entry of an obj declaration.
type ObjPair struct {
	Name      string
	Criterion string
}

// ObjDecl declares one or more scoreboard objectives.
type ObjDecl struct {
	Pos   Position
	Pairs []ObjPair
}

func (n *ObjDecl) node() {}
func (n *ObjDecl) stmt() {}

// VarDecl initializes one or more scoreboard holders to 0.
type VarDecl struct {
	Pos  Position
	Refs []ScoreRef
}

func (n *VarDecl) node() {}
func (n *VarDecl) stmt() {}

// Assign sets a scoreboard register from an expression.
type Assign struct {
	Pos    Position
	Target ScoreRef
	Value  Expr
}

func (n *Assign) node() {}
func (n *Assign) stmt() {}

// CompoundAssign applies one of += -= *= /= to a register.
type CompoundAssign struct {
	Pos    Position
	Target ScoreRef
	Op     string // += -= *= /=
	Value  Expr
}

func (n *CompoundAssign) node() {}
func (n *CompoundAssign) stmt() {}

// If guards a body with a relational comparison. Slot, when non-empty, names
// the suspension slot for the statements following this one.
type If struct {
	Pos  Position
	LHS  Expr
	Op   string // == != < <= > >=
	RHS  Expr
	Body []Stmt
	Slot string
}

func (n *If) node() {}
func (n *If) stmt() {}

// While repeats a body while the condition register is >= 1.
type While struct {
	Pos  Position
	Cond ScoreRef
	Body []Stmt
	Slot string
}

func (n *While) node() {}
func (n *While) stmt() {}

// Rand stores a random value into a register. Lo/Hi are meaningful only
// when HasRange is true; the default range is 0..100.
type Rand struct {
	Pos      Position
	Target   ScoreRef
	HasRange bool
	Lo, Hi   int
}

func (n *Rand) node() {}
func (n *Rand) stmt() {}

// Run passes one command line through. Interp marks v-strings, which are
// interpolated and converted to tellraw.
type Run struct {
	Pos    Position
	Text   string
	Interp bool
}

func (n *Run) node() {}
func (n *Run) stmt() {}

// Runs passes a block of raw command lines through verbatim.
type Runs struct {
	Pos   Position
	Lines []string
}

func (n *Runs) node() {}
func (n *Runs) stmt() {}

// Show broadcasts interpolated text to all players.
type Show struct {
	Pos  Position
	Text string
}

func (n *Show) node() {}
func (n *Show) stmt() {}

// Title broadcasts a plain title. Newlines are rejected at lowering time.
type Title struct {
	Pos  Position
	Text string
}

func (n *Title) node() {}
func (n *Title) stmt() {}

// Call invokes another routine.
type Call struct {
	Pos  Position
	Name string
	Args []Expr
	Slot string
}

func (n *Call) node() {}
func (n *Call) stmt() {}

// VCall invokes another routine and captures its returned value.
type VCall struct {
	Pos  Position
	Dst  ScoreRef
	Name string
	Args []Expr
	Slot string
}

func (n *VCall) node() {}
func (n *VCall) stmt() {}

// Return ends a routine, optionally with a value. Value may be nil.
type Return struct {
	Pos   Position
	Value Expr
}

func (n *Return) node() {}
func (n *Return) stmt() {}

// StorValue is the closed family of storage-write value kinds.
type StorValue interface {
	Node
	storValue() // marker method
}

// StorInt is an integer storage value.
type StorInt struct {
	Value int
}

func (n *StorInt) node()      {}
func (n *StorInt) storValue() {}

// StorString is a string storage value.
type StorString struct {
	Value string
}

func (n *StorString) node()      {}
func (n *StorString) storValue() {}

// StorJSON is an embedded JSON fragment, preserved as flattened raw text.
type StorJSON struct {
	Text string
}

func (n *StorJSON) node()      {}
func (n *StorJSON) storValue() {}

// StorDef references a named define.
type StorDef struct {
	Name string
}

func (n *StorDef) node()      {}
func (n *StorDef) storValue() {}

// StorItem is one key/value pair of a stor statement.
type StorItem struct {
	Key   string
	Value StorValue
}

// Stor writes one or more values into the routine's storage path.
type Stor struct {
	Pos   Position
	Items []StorItem
}

func (n *Stor) node() {}
func (n *Stor) stmt() {}

// Exec wraps raw command and data lines in an as/at selector scope.
type Exec struct {
	Pos       Position
	Selector  string
	RunLines  []string
	DataLines []string
}

func (n *Exec) node() {}
func (n *Exec) stmt() {}

// ---------------------------------------------------------------------------
// Top-level declarations
// ---------------------------------------------------------------------------

// Routine special-name tags for engine entry points.
const (
	SpecialReady = "_ready" // on-load entry point
	SpecialTick  = "_tick"  // per-tick entry point
)

// Routine is one named, independently invocable unit of statements.
// Parameter names are recorded for documentation; no register binding is
// performed.
type Routine struct {
	Pos    Position
	Name   string
	Params []string
	Body   []Stmt
}

func (n *Routine) node() {}

// Special returns the entry-point tag of the routine, or "".
func (n *Routine) Special() string {
	switch n.Name {
	case SpecialReady, SpecialTick:
		return n.Name
	}
	return ""
}

// SourceFile is the parse result of one .mcfn file.
type SourceFile struct {
	Path     string
	Routines []*Routine
}
