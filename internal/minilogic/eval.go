package minilogic

// Evaluator evaluates predicate expressions over a pair of snapshots.
type Evaluator struct {
	before *Env
	after  *Env
}

// NewEvaluator creates an evaluator for a transition from before to after.
// For single-state checks pass the same snapshot twice.
func NewEvaluator(before, after *Env) *Evaluator {
	return &Evaluator{before: before, after: after}
}

// Eval evaluates expr against the after-state; old(e) reads the before-state.
func Eval(expr Expr, before, after *Env) Value {
	return NewEvaluator(before, after).EvalExpr(expr)
}

// EvalExpr evaluates an expression in the current (after) state.
func (ev *Evaluator) EvalExpr(expr Expr) Value {
	return ev.eval(expr, ev.after)
}

func (ev *Evaluator) eval(expr Expr, env *Env) Value {
	switch e := expr.(type) {
	case LiteralExpr:
		return e.Val

	case VarExpr:
		val := env.Get(e.Name)
		if val == nil {
			return SymbolicValue{Name: "unbound " + e.Name}
		}
		return val

	case OldExpr:
		return ev.eval(e.Operand, ev.before)

	case BinaryExpr:
		left := ev.eval(e.Left, env)
		right := ev.eval(e.Right, env)
		return ev.evalBinary(e.Op, left, right)

	case UnaryExpr:
		operand := ev.eval(e.Operand, env)
		return ev.evalUnary(e.Op, operand)

	default:
		return SymbolicValue{Name: "unknown"}
	}
}

func (ev *Evaluator) evalBinary(op BinaryOp, left, right Value) Value {
	// a known false/true operand decides && and || on its own
	switch op {
	case OpAnd:
		if IsKnownFalse(left) || IsKnownFalse(right) {
			return BoolValue{Val: false}
		}
	case OpOr:
		if IsKnownTrue(left) || IsKnownTrue(right) {
			return BoolValue{Val: true}
		}
	}

	_, leftSym := left.(SymbolicValue)
	_, rightSym := right.(SymbolicValue)
	if leftSym {
		return left
	}
	if rightSym {
		return right
	}

	switch op {
	case OpAdd:
		if l, ok := left.(IntValue); ok {
			if r, ok := right.(IntValue); ok {
				return IntValue{Val: l.Val + r.Val}
			}
		}
		if l, ok := left.(StringValue); ok {
			if r, ok := right.(StringValue); ok {
				return StringValue{Val: l.Val + r.Val}
			}
		}

	case OpSub:
		if l, ok := left.(IntValue); ok {
			if r, ok := right.(IntValue); ok {
				return IntValue{Val: l.Val - r.Val}
			}
		}

	case OpMul:
		if l, ok := left.(IntValue); ok {
			if r, ok := right.(IntValue); ok {
				return IntValue{Val: l.Val * r.Val}
			}
		}

	case OpDiv:
		if l, ok := left.(IntValue); ok {
			if r, ok := right.(IntValue); ok {
				if r.Val == 0 {
					return SymbolicValue{Name: "division by zero"}
				}
				return IntValue{Val: l.Val / r.Val}
			}
		}

	case OpMod:
		if l, ok := left.(IntValue); ok {
			if r, ok := right.(IntValue); ok {
				if r.Val == 0 {
					return SymbolicValue{Name: "division by zero"}
				}
				return IntValue{Val: l.Val % r.Val}
			}
		}

	case OpEq:
		return BoolValue{Val: left.Equal(right)}

	case OpNeq:
		return BoolValue{Val: !left.Equal(right)}

	case OpLt, OpLte, OpGt, OpGte:
		return compare(op, left, right)

	case OpAnd:
		if l, ok := left.(BoolValue); ok {
			if r, ok := right.(BoolValue); ok {
				return BoolValue{Val: l.Val && r.Val}
			}
		}

	case OpOr:
		if l, ok := left.(BoolValue); ok {
			if r, ok := right.(BoolValue); ok {
				return BoolValue{Val: l.Val || r.Val}
			}
		}
	}

	return SymbolicValue{Name: "mismatched operands for " + op.String()}
}

func compare(op BinaryOp, left, right Value) Value {
	var c int
	switch l := left.(type) {
	case IntValue:
		r, ok := right.(IntValue)
		if !ok {
			return SymbolicValue{Name: "mismatched operands for " + op.String()}
		}
		c = cmpInt(l.Val, r.Val)
	case StringValue:
		r, ok := right.(StringValue)
		if !ok {
			return SymbolicValue{Name: "mismatched operands for " + op.String()}
		}
		c = cmpString(l.Val, r.Val)
	default:
		return SymbolicValue{Name: "mismatched operands for " + op.String()}
	}

	switch op {
	case OpLt:
		return BoolValue{Val: c < 0}
	case OpLte:
		return BoolValue{Val: c <= 0}
	case OpGt:
		return BoolValue{Val: c > 0}
	default:
		return BoolValue{Val: c >= 0}
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (ev *Evaluator) evalUnary(op UnaryOp, operand Value) Value {
	if sym, ok := operand.(SymbolicValue); ok {
		return sym
	}

	switch op {
	case OpNot:
		if b, ok := operand.(BoolValue); ok {
			return BoolValue{Val: !b.Val}
		}

	case OpNeg:
		if i, ok := operand.(IntValue); ok {
			return IntValue{Val: -i.Val}
		}
	}

	return SymbolicValue{Name: "mismatched operand for " + op.String()}
}

// IsKnownTrue returns true if the value is definitively true.
func IsKnownTrue(v Value) bool {
	if b, ok := v.(BoolValue); ok {
		return b.Val
	}
	return false
}

// IsKnownFalse returns true if the value is definitively false.
func IsKnownFalse(v Value) bool {
	if b, ok := v.(BoolValue); ok {
		return !b.Val
	}
	return false
}

// IsDecided reports whether v is a boolean, i.e. a predicate produced
// a definite answer.
func IsDecided(v Value) bool {
	_, ok := v.(BoolValue)
	return ok
}
