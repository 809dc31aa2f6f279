package minilogic

// Expr represents a predicate expression.
type Expr interface {
	isExpr()
	String() string
}

// LiteralExpr represents a literal value (int, bool, string, nil).
type LiteralExpr struct {
	Val Value
}

func (LiteralExpr) isExpr() {}
func (e LiteralExpr) String() string {
	return e.Val.String()
}

// VarExpr represents a reference to a name in the state snapshot.
type VarExpr struct {
	Name string
}

func (VarExpr) isExpr() {}
func (e VarExpr) String() string {
	return e.Name
}

// BinaryOp represents binary operators.
type BinaryOp int

const (
	_ BinaryOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "?"
	}
}

// precedence follows Go's binary operator levels.
func (op BinaryOp) precedence() int {
	switch op {
	case OpOr:
		return 1
	case OpAnd:
		return 2
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return 3
	case OpAdd, OpSub:
		return 4
	case OpMul, OpDiv, OpMod:
		return 5
	default:
		return 0
	}
}

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (BinaryExpr) isExpr() {}

// String renders the expression with the minimum parentheses needed to
// read it back unchanged.
func (e BinaryExpr) String() string {
	prec := e.Op.precedence()
	left := e.Left.String()
	if l, ok := e.Left.(BinaryExpr); ok && l.Op.precedence() < prec {
		left = "(" + left + ")"
	}
	right := e.Right.String()
	if r, ok := e.Right.(BinaryExpr); ok && r.Op.precedence() <= prec {
		right = "(" + right + ")"
	}
	return left + " " + e.Op.String() + " " + right
}

// UnaryOp represents unary operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	default:
		return "?"
	}
}

// UnaryExpr represents a unary expression.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
}

func (UnaryExpr) isExpr() {}
func (e UnaryExpr) String() string {
	if _, ok := e.Operand.(BinaryExpr); ok {
		return e.Op.String() + "(" + e.Operand.String() + ")"
	}
	return e.Op.String() + e.Operand.String()
}

// OldExpr evaluates its operand against the before-state.
type OldExpr struct {
	Operand Expr
}

func (OldExpr) isExpr() {}
func (e OldExpr) String() string {
	return "old(" + e.Operand.String() + ")"
}

// HasOld reports whether expr reads the before-state anywhere.
func HasOld(expr Expr) bool {
	switch e := expr.(type) {
	case OldExpr:
		return true
	case BinaryExpr:
		return HasOld(e.Left) || HasOld(e.Right)
	case UnaryExpr:
		return HasOld(e.Operand)
	default:
		return false
	}
}

// Names returns the distinct snapshot names expr refers to, in order of
// first appearance.
func Names(expr Expr) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(x Expr) {
		switch e := x.(type) {
		case VarExpr:
			if !seen[e.Name] {
				seen[e.Name] = true
				names = append(names, e.Name)
			}
		case BinaryExpr:
			walk(e.Left)
			walk(e.Right)
		case UnaryExpr:
			walk(e.Operand)
		case OldExpr:
			walk(e.Operand)
		}
	}
	walk(expr)
	return names
}

// Helper functions to construct AST nodes

// Lit creates a literal expression from a value.
func Lit(v Value) Expr {
	return LiteralExpr{Val: v}
}

// IntLit creates an integer literal expression.
func IntLit(v int64) Expr {
	return LiteralExpr{Val: IntValue{Val: v}}
}

// BoolLit creates a boolean literal expression.
func BoolLit(v bool) Expr {
	return LiteralExpr{Val: BoolValue{Val: v}}
}

// StrLit creates a string literal expression.
func StrLit(v string) Expr {
	return LiteralExpr{Val: StringValue{Val: v}}
}

// NilLit creates a nil literal expression.
func NilLit() Expr {
	return LiteralExpr{Val: NilValue{}}
}

// Var creates a variable reference expression.
func Var(name string) Expr {
	return VarExpr{Name: name}
}

// Old creates an old-value expression.
func Old(e Expr) Expr {
	return OldExpr{Operand: e}
}

// Binary creates a binary expression.
func Binary(op BinaryOp, left, right Expr) Expr {
	return BinaryExpr{Op: op, Left: left, Right: right}
}

// Unary creates a unary expression.
func Unary(op UnaryOp, operand Expr) Expr {
	return UnaryExpr{Op: op, Operand: operand}
}

// Not creates a logical not expression.
func Not(e Expr) Expr {
	return UnaryExpr{Op: OpNot, Operand: e}
}

// And creates a logical and expression.
func And(left, right Expr) Expr {
	return BinaryExpr{Op: OpAnd, Left: left, Right: right}
}

// Or creates a logical or expression.
func Or(left, right Expr) Expr {
	return BinaryExpr{Op: OpOr, Left: left, Right: right}
}

// Eq creates an equality expression.
func Eq(left, right Expr) Expr {
	return BinaryExpr{Op: OpEq, Left: left, Right: right}
}

// Neq creates a not-equal expression.
func Neq(left, right Expr) Expr {
	return BinaryExpr{Op: OpNeq, Left: left, Right: right}
}

// Lt creates a less-than expression.
func Lt(left, right Expr) Expr {
	return BinaryExpr{Op: OpLt, Left: left, Right: right}
}

// Gte creates a greater-or-equal expression.
func Gte(left, right Expr) Expr {
	return BinaryExpr{Op: OpGte, Left: left, Right: right}
}
