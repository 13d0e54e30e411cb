package sema

import (
	"github.com/shkhuz/aria/internal/ast"
	"github.com/shkhuz/aria/internal/bigint"
)

// checkExpr is the bidirectional type-checking entry point (§4.5.4):
// every expression Kind is handled exactly once here. target, when
// non-nil, is the type the surrounding context expects; most cases
// infer n's type independent of target and let checkExprTargetReport
// (called by the caller, not here) do the final coercion/diagnostic —
// the exceptions are array/tuple literals, unary operators, arithmetic
// binops, and block/if/while/for forms, which thread target down to
// their elements, operands or branches.
//
// A nil return means "already reported, don't cascade": callers must
// not derive further diagnostics from a nil sub-result (§7).
func (c *Checker) checkExpr(n *ast.Node, target *ast.Typespec, peer bool) *ast.Typespec {
	if n == nil {
		return nil
	}
	var t *ast.Typespec
	switch n.Kind {
	case ast.KindIntLit:
		t = c.checkIntLit(n)
	case ast.KindStringLit:
		t = c.checkStringLit(n)
	case ast.KindCharLit:
		t = c.checkCharLit(n)
	case ast.KindArrayLit:
		t = c.checkArrayLit(n, target)
	case ast.KindTupleLit:
		t = c.checkTupleLit(n, target)
	case ast.KindAggregateLit:
		t = c.checkAggregateLit(n)
	case ast.KindSymbol:
		t = c.checkSymbol(n)
	case ast.KindBuiltinSym:
		t = c.checkBuiltinSym(n)
	case ast.KindUnary:
		t = c.checkUnary(n, target)
	case ast.KindDeref:
		t = c.checkDeref(n)
	case ast.KindIndex:
		t = c.checkIndex(n)
	case ast.KindAccess:
		t = c.checkAccess(n)
	case ast.KindArithBinop:
		t = c.checkArithBinop(n, target)
	case ast.KindBoolBinop:
		t = c.checkBoolBinop(n)
	case ast.KindCmpBinop:
		t = c.checkCmpBinop(n)
	case ast.KindAssign:
		t = c.checkAssign(n)
	case ast.KindCast:
		t = c.checkCast(n)
	case ast.KindCall:
		t = c.checkCall(n)
	case ast.KindBlock:
		t = c.checkBlock(n, target)
	case ast.KindIf:
		t = c.checkIf(n, target)
	case ast.KindWhile:
		t = c.checkWhile(n, target)
	case ast.KindFor:
		t = c.checkFor(n, target)
	case ast.KindBreak:
		t = c.checkBreak(n)
	case ast.KindContinue:
		n.Typespec = ast.Noreturn
		t = ast.Noreturn
	case ast.KindReturn:
		t = c.checkReturn(n)
	default:
		return nil
	}
	return t
}

func (c *Checker) checkIntLit(n *ast.Node) *ast.Typespec {
	if !n.IntVal.FitsUint64() {
		c.diag.Errorf(n.Span, "integer literal does not fit in 64 bits")
	}
	ts := ast.NewComptimeInt(n.IntVal)
	n.Typespec = ts
	return ts
}

func (c *Checker) checkStringLit(n *ast.Node) *ast.Typespec {
	size := syntheticIntLit(len(n.Str))
	ts := &ast.Typespec{
		Kind:      ast.TSPtr,
		Immutable: true,
		Child:     &ast.Typespec{Kind: ast.TSArray, ArraySize: size, Child: ast.PrimU8},
	}
	n.Typespec = ts
	return ts
}

func syntheticIntLit(v int) *ast.Node {
	return &ast.Node{Kind: ast.KindIntLit, IntVal: bigint.FromInt64(int64(v))}
}

// checkCharLit types a char literal as a comptime_integer carrying its
// codepoint value — Aria has no distinct character type, only sized
// integers and bool, so a char literal is just an integer literal
// spelled with quotes (an Open Question resolution; see DESIGN.md).
func (c *Checker) checkCharLit(n *ast.Node) *ast.Typespec {
	ts := ast.NewComptimeInt(bigint.FromInt64(int64(n.CharVal)))
	n.Typespec = ts
	return ts
}

func (c *Checker) checkSymbol(n *ast.Node) *ast.Typespec {
	if n.Ref == nil {
		return nil
	}
	t := c.declTypespec(n.Ref)
	n.Typespec = t
	return t
}

func (c *Checker) checkBuiltinSym(n *ast.Node) *ast.Typespec {
	var t *ast.Typespec
	switch n.Builtin {
	case ast.BuiltinTrue, ast.BuiltinFalse:
		t = ast.PrimBool
	case ast.BuiltinVoid:
		t = &ast.Typespec{Kind: ast.TSType, Child: ast.Void}
	case ast.BuiltinNoreturn:
		t = &ast.Typespec{Kind: ast.TSType, Child: ast.Noreturn}
	case ast.BuiltinPrimName:
		prim := ast.PrimByName[n.Name]
		if prim == nil {
			return nil
		}
		t = &ast.Typespec{Kind: ast.TSType, Child: prim}
	default:
		return nil
	}
	n.Typespec = t
	return t
}

func (c *Checker) checkUnary(n *ast.Node, target *ast.Typespec) *ast.Typespec {
	switch n.UnaryOp {
	case ast.UnaryNeg:
		operandTarget := target
		t := c.checkExpr(n.Operand, operandTarget, false)
		if t == nil {
			return nil
		}
		if !(t.Kind == ast.TSPrim && (t.Prim == ast.ComptimeInteger || (t.Prim.IsInteger() && t.Prim.Signed()))) {
			c.diag.Errorf(n.Span, "unary `-` requires a signed or comptime integer, got `%s`", t.String())
			return nil
		}
		var result *ast.Typespec
		if t.Prim == ast.ComptimeInteger {
			result = ast.NewComptimeInt(t.Comptime.Neg())
		} else {
			result = t
		}
		n.Typespec = result
		return result

	case ast.UnaryNot:
		t := c.checkExpr(n.Operand, ast.PrimBool, false)
		if t == nil {
			return nil
		}
		if !isBoolType(t) {
			c.diag.Errorf(n.Span, "`!` requires `bool`, got `%s`", t.String())
			return nil
		}
		n.Typespec = ast.PrimBool
		return ast.PrimBool

	case ast.UnaryAddr:
		opType := c.checkExpr(n.Operand, nil, false)
		if opType == nil {
			return nil
		}
		ok, immutable, _ := c.classifyLValue(n.Operand)
		if !ok {
			c.diag.Errorf(n.Span, "cannot take the address of a non-l-value")
			return nil
		}
		result := &ast.Typespec{Kind: ast.TSPtr, Immutable: immutable, Child: opType}
		n.Typespec = result
		return result

	default:
		return nil
	}
}

func (c *Checker) checkDeref(n *ast.Node) *ast.Typespec {
	opType := c.checkExpr(n.Operand, nil, false)
	if opType == nil {
		return nil
	}
	if opType.Kind != ast.TSPtr {
		c.diag.Errorf(n.Operand.Span, "cannot dereference non-pointer type `%s`", opType.String())
		return nil
	}
	n.Typespec = opType.Child
	return opType.Child
}

func elementTypeForIndex(t *ast.Typespec) *ast.Typespec {
	switch t.Kind {
	case ast.TSMultiPtr, ast.TSSlice, ast.TSArray:
		return t.Child
	case ast.TSPtr:
		if t.Child != nil && t.Child.Kind == ast.TSArray {
			return t.Child.Child
		}
		return nil
	default:
		return nil
	}
}

func (c *Checker) checkIndex(n *ast.Node) *ast.Typespec {
	targetType := c.checkExpr(n.Target, nil, false)
	idxType := c.checkExpr(n.Index, nil, false)
	if idxType != nil {
		ok := false
		switch {
		case idxType.Kind == ast.TSPrim && idxType.Prim == ast.ComptimeInteger:
			ok = idxType.Comptime.Sign() >= 0
		case idxType.Kind == ast.TSPrim && idxType.Prim.IsInteger() && !idxType.Prim.Signed():
			ok = true
		}
		if !ok {
			c.diag.Errorf(n.Index.Span, "index must be an unsigned integer, got `%s`", idxType.String())
		}
	}
	if targetType == nil {
		return nil
	}
	elem := elementTypeForIndex(targetType)
	if elem == nil {
		c.diag.Errorf(n.Target.Span, "type `%s` is not indexable", targetType.String())
		return nil
	}
	n.Typespec = elem
	return elem
}

func (c *Checker) checkAccess(n *ast.Node) *ast.Typespec {
	targetType := c.checkExpr(n.Target, nil, false)
	if n.Accessed {
		if n.Ref == nil {
			return nil
		}
		t := c.declTypespec(n.Ref)
		n.Typespec = t
		return t
	}
	if targetType == nil {
		return nil
	}

	var structTS *ast.Typespec
	switch {
	case targetType.Kind == ast.TSStruct:
		structTS = targetType
	case targetType.Kind == ast.TSPtr && targetType.Child != nil && targetType.Child.Kind == ast.TSStruct:
		structTS = targetType.Child
	case targetType.Kind == ast.TSSlice:
		switch n.Name {
		case "ptr":
			t := &ast.Typespec{Kind: ast.TSMultiPtr, Immutable: targetType.Immutable, Child: targetType.Child}
			n.Typespec = t
			return t
		case "len":
			n.Typespec = ast.PrimU64
			return ast.PrimU64
		default:
			c.diag.Errorf(n.Span, "slice has no field `%s`", n.Name)
			return nil
		}
	default:
		c.diag.Errorf(n.Span, "cannot access field `%s` on type `%s`", n.Name, targetType.String())
		return nil
	}

	decl := structTS.Decl
	for i, f := range decl.StructFields {
		if f.Name == n.Name {
			n.FieldIndex = i
			n.Typespec = f.Typespec
			return f.Typespec
		}
	}
	c.diag.Errorf(n.Span, "struct `%s` has no field `%s`", decl.Name, n.Name)
	return nil
}

func (c *Checker) checkArithBinop(n *ast.Node, target *ast.Typespec) *ast.Typespec {
	lt := c.checkExpr(n.Target, target, true)
	rt := c.checkExpr(n.Value, target, true)
	if lt == nil || rt == nil {
		return nil
	}
	if !isIntType(lt) || !isIntType(rt) {
		c.diag.Errorf(n.Span, "arithmetic requires integer operands, got `%s` and `%s`", lt.String(), rt.String())
		return nil
	}

	if lt.Prim == ast.ComptimeInteger && rt.Prim == ast.ComptimeInteger {
		result, ok := foldArith(n.ArithOp, lt.Comptime, rt.Comptime)
		if !ok {
			c.diag.Errorf(n.Span, "division by zero (comptime)")
			return nil
		}
		ts := ast.NewComptimeInt(result)
		n.Typespec = ts
		return ts
	}

	unified, r := c.peerUnify(lt, rt)
	if r != AssignOk {
		if r == AssignReported {
			// One side is a comptime literal that doesn't fit the
			// other (sized) operand's range (§8 scenario 2: "integer
			// 256 does not fit in u8 on the literal's span").
			span, value, sized := n.Span, "", ""
			switch {
			case lt.Prim == ast.ComptimeInteger:
				span, value, sized = n.Target.Span, lt.Comptime.String(), rt.String()
			case rt.Prim == ast.ComptimeInteger:
				span, value, sized = n.Value.Span, rt.Comptime.String(), lt.String()
			}
			c.diag.Errorf(span, "integer %s does not fit in `%s`", value, sized)
		} else {
			c.diag.Errorf(n.Span, "type mismatch: `%s` and `%s`", lt.String(), rt.String())
		}
		return nil
	}
	n.Typespec = unified
	return unified
}

// foldArith folds a comptime_integer arithmetic operation, returning
// ok=false on division by zero (§4.5.4: "comptime+comptime
// folds the operation on the bigints").
func foldArith(op ast.ArithOp, a, b bigint.Int) (result bigint.Int, ok bool) {
	switch op {
	case ast.ArithAdd:
		return a.Add(b), true
	case ast.ArithSub:
		return a.Sub(b), true
	case ast.ArithMul:
		return a.Mul(b), true
	case ast.ArithDiv:
		q, _, divOk := a.DivMod(b)
		if !divOk {
			return bigint.Int{}, false
		}
		return q, true
	default:
		return bigint.Int{}, false
	}
}

func (c *Checker) checkBoolBinop(n *ast.Node) *ast.Typespec {
	lt := c.checkExpr(n.Target, ast.PrimBool, false)
	rt := c.checkExpr(n.Value, ast.PrimBool, false)
	if lt != nil && !isBoolType(lt) {
		c.diag.Errorf(n.Target.Span, "`&&`/`||` requires `bool`, got `%s`", lt.String())
	}
	if rt != nil && !isBoolType(rt) {
		c.diag.Errorf(n.Value.Span, "`&&`/`||` requires `bool`, got `%s`", rt.String())
	}
	n.Typespec = ast.PrimBool
	return ast.PrimBool
}

func (c *Checker) checkCmpBinop(n *ast.Node) *ast.Typespec {
	lt := c.checkExpr(n.Target, nil, true)
	rt := c.checkExpr(n.Value, nil, true)
	if lt == nil || rt == nil {
		n.Typespec = ast.PrimBool
		return ast.PrimBool
	}
	shapeOk := true
	if n.CmpOp.IsOrdering() {
		if !isIntType(lt) || !isIntType(rt) {
			c.diag.Errorf(n.Span, "ordering comparison requires integer operands, got `%s` and `%s`", lt.String(), rt.String())
			shapeOk = false
		}
	} else {
		okPair := (lt.Kind == ast.TSPrim && rt.Kind == ast.TSPrim) ||
			(lt.Kind == ast.TSPtr && rt.Kind == ast.TSPtr) ||
			(lt.Kind == ast.TSMultiPtr && rt.Kind == ast.TSMultiPtr)
		if !okPair {
			c.diag.Errorf(n.Span, "`==`/`!=` is not defined for `%s` and `%s`", lt.String(), rt.String())
			shapeOk = false
		}
	}
	if shapeOk {
		if peerT, r := c.peerUnify(lt, rt); r == AssignOk {
			n.PeerType = peerT
		} else {
			c.diag.Errorf(n.Span, "type mismatch: `%s` and `%s`", lt.String(), rt.String())
		}
	}
	n.Typespec = ast.PrimBool
	return ast.PrimBool
}

func (c *Checker) checkAssign(n *ast.Node) *ast.Typespec {
	targetType := c.checkExpr(n.Target, nil, false)
	ok, immutable, declSpan := c.classifyLValue(n.Target)
	if !ok {
		c.diag.Errorf(n.Target.Span, "invalid assignment target")
	} else if immutable {
		msg := c.diag.Errorf(n.Target.Span, "cannot assign to an immutable value")
		if declSpan != nil {
			msg.Fat(*declSpan, "declared here")
		}
	}
	valueType := c.checkExprTargetReport(n.Value, targetType, false)
	result := ast.Void
	if valueType != nil && valueType.Kind == ast.TSNoreturn {
		result = ast.Noreturn
	}
	n.Typespec = result
	return result
}

func castAllowed(from, to *ast.Typespec) bool {
	if from == nil || to == nil {
		return false
	}
	if from.Kind == ast.TSPrim && to.Kind == ast.TSPrim {
		return true
	}
	ptrLike := func(t *ast.Typespec) bool { return t.Kind == ast.TSPtr || t.Kind == ast.TSMultiPtr }
	if ptrLike(from) && to.Kind == ast.TSPrim && to.Prim.IsInteger() && to.Prim != ast.ComptimeInteger {
		return true
	}
	if from.Kind == ast.TSPrim && from.Prim.IsInteger() && from.Prim != ast.ComptimeInteger && ptrLike(to) {
		return true
	}
	if ptrLike(from) && ptrLike(to) {
		if from.Immutable && !to.Immutable {
			return false
		}
		return true
	}
	if from.Kind == ast.TSPtr && from.Child != nil && from.Child.Kind == ast.TSArray &&
		(to.Kind == ast.TSMultiPtr || to.Kind == ast.TSSlice) {
		if !ast.ExactEqual(from.Child.Child, to.Child) {
			return false
		}
		if from.Immutable && !to.Immutable {
			return false
		}
		return true
	}
	if from.Kind == ast.TSArray && to.Kind == ast.TSArray {
		return ast.ExactEqual(from, to)
	}
	if from.Kind == ast.TSStruct && to.Kind == ast.TSStruct {
		return from.Decl == to.Decl
	}
	return false
}

func (c *Checker) checkCast(n *ast.Node) *ast.Typespec {
	opType := c.checkExpr(n.Operand, nil, false)
	targetTS := c.evalTypespec(n.Child)
	if opType == nil || targetTS == nil {
		return targetTS
	}
	if !castAllowed(opType, targetTS) {
		c.diag.Errorf(n.Span, "invalid cast from `%s` to `%s`", opType.String(), targetTS.String())
	}
	n.Typespec = targetTS
	return targetTS
}

func (c *Checker) checkCall(n *ast.Node) *ast.Typespec {
	calleeType := c.checkExpr(n.Target, nil, false)
	if calleeType == nil {
		for _, a := range n.Args {
			c.checkExpr(a.Value, nil, false)
		}
		return nil
	}
	var fn *ast.Typespec
	switch {
	case calleeType.Kind == ast.TSFunc:
		fn = calleeType
	case calleeType.Kind == ast.TSPtr && calleeType.Child != nil && calleeType.Child.Kind == ast.TSFunc:
		fn = calleeType.Child
	default:
		c.diag.Errorf(n.Target.Span, "cannot call a value of type `%s`", calleeType.String())
		for _, a := range n.Args {
			c.checkExpr(a.Value, nil, false)
		}
		return nil
	}

	if len(n.Args) < len(fn.Params) {
		c.diag.Errorf(n.Span, "too few arguments: expected %d, got %d", len(fn.Params), len(n.Args))
	} else if len(n.Args) > len(fn.Params) {
		c.diag.Errorf(n.Args[len(fn.Params)].Value.Span, "too many arguments: expected %d, got %d", len(fn.Params), len(n.Args))
	}
	for i, a := range n.Args {
		var pt *ast.Typespec
		if i < len(fn.Params) {
			pt = fn.Params[i]
		}
		c.checkExprTargetReport(a.Value, pt, false)
	}
	n.Typespec = fn.Ret
	return fn.Ret
}

func (c *Checker) checkArrayLit(n *ast.Node, target *ast.Typespec) *ast.Typespec {
	var elemTarget *ast.Typespec
	if target != nil && target.Kind == ast.TSArray {
		elemTarget = target.Child
	}

	if len(n.Elems) == 0 {
		if elemTarget == nil {
			c.diag.Errorf(n.Span, "empty array literal needs a target type")
			return nil
		}
		ts := &ast.Typespec{Kind: ast.TSArray, ArraySize: syntheticIntLit(0), Child: elemTarget}
		n.Typespec = ts
		return ts
	}

	var elemType *ast.Typespec
	if elemTarget != nil {
		for _, e := range n.Elems {
			c.checkExprTargetReport(e, elemTarget, false)
		}
		elemType = elemTarget
	} else {
		elemType = c.checkExpr(n.Elems[0], nil, false)
		for _, e := range n.Elems[1:] {
			et := c.checkExpr(e, elemType, true)
			if elemType == nil || et == nil {
				continue
			}
			u, r := c.peerUnify(elemType, et)
			if r != AssignOk {
				c.diag.Errorf(e.Span, "array element type mismatch: `%s` and `%s`", elemType.String(), et.String())
				continue
			}
			elemType = u
		}
		if elemType != nil && elemType.AcceptKind() == ast.AcceptComptime {
			c.diag.Errorf(n.Span, "array elements are unsized and no type annotation was provided")
		}
	}
	if elemType == nil {
		return nil
	}
	ts := &ast.Typespec{Kind: ast.TSArray, ArraySize: syntheticIntLit(len(n.Elems)), Child: elemType}
	n.Typespec = ts
	return ts
}

func (c *Checker) checkTupleLit(n *ast.Node, target *ast.Typespec) *ast.Typespec {
	var targetElems []*ast.Typespec
	if target != nil && target.Kind == ast.TSTuple && len(target.Elems) == len(n.Elems) {
		targetElems = target.Elems
	}
	elems := make([]*ast.Typespec, 0, len(n.Elems))
	for i, e := range n.Elems {
		var et *ast.Typespec
		if targetElems != nil {
			et = targetElems[i]
		}
		elems = append(elems, c.checkExprTargetReport(e, et, false))
	}
	ts := &ast.Typespec{Kind: ast.TSTuple, Elems: elems}
	n.Typespec = ts
	return ts
}

func (c *Checker) checkAggregateLit(n *ast.Node) *ast.Typespec {
	targetType := c.checkExpr(n.Target, nil, false)
	if targetType == nil || targetType.Kind != ast.TSType || targetType.Child == nil || targetType.Child.Kind != ast.TSStruct {
		c.diag.Errorf(n.Target.Span, "aggregate literal target is not a struct type")
		for _, f := range n.Fields {
			c.checkExpr(f.Value, nil, false)
		}
		return nil
	}
	structTS := targetType.Child
	decl := structTS.Decl
	seen := make(map[string]bool, len(n.Fields))
	for _, f := range n.Fields {
		var fieldDecl *ast.Node
		for _, fd := range decl.StructFields {
			if fd.Name == f.Name {
				fieldDecl = fd
				break
			}
		}
		if fieldDecl == nil {
			c.diag.Errorf(f.Value.Span, "struct `%s` has no field `%s`", decl.Name, f.Name)
			c.checkExpr(f.Value, nil, false)
			continue
		}
		seen[f.Name] = true
		c.checkExprTargetReport(f.Value, fieldDecl.Typespec, false)
	}
	for _, fd := range decl.StructFields {
		if !seen[fd.Name] {
			c.diag.Errorf(n.Span, "missing field `%s`", fd.Name)
		}
	}
	n.Typespec = structTS
	return structTS
}

func (c *Checker) checkBreak(n *ast.Node) *ast.Typespec {
	if n.HasValue {
		c.checkExpr(n.Value, nil, false)
	}
	n.Typespec = ast.Noreturn
	return ast.Noreturn
}

func (c *Checker) checkReturn(n *ast.Node) *ast.Typespec {
	var funcRetType *ast.Typespec
	if n.FuncRef != nil && n.FuncRef.Header != nil && n.FuncRef.Header.Typespec != nil {
		funcRetType = n.FuncRef.Header.Typespec.Ret
	}
	switch {
	case funcRetType != nil && funcRetType.Kind == ast.TSNoreturn:
		c.diag.Errorf(n.Span, "`return` used in a `noreturn` function")
		if n.HasValue {
			c.checkExpr(n.Value, nil, false)
		}
	case funcRetType != nil && funcRetType.Kind == ast.TSVoid:
		if n.HasValue {
			c.diag.Errorf(n.Span, "`return` in a `void` function must not have a value")
			c.checkExpr(n.Value, nil, false)
		}
	case funcRetType != nil:
		if !n.HasValue {
			c.diag.Errorf(n.Span, "`return` must have a value of type `%s`", funcRetType.String())
		} else {
			c.checkExprTargetReport(n.Value, funcRetType, false)
		}
	default:
		if n.HasValue {
			c.checkExpr(n.Value, nil, false)
		}
	}
	n.Typespec = ast.Noreturn
	return ast.Noreturn
}
