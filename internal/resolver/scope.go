package resolver

import "github.com/shkhuz/aria/internal/ast"

// scope is one level of a lexical scope stack: a map from name to the
// declaration Node that introduced it, plus a link to the enclosing
// scope (§4.4: "a stack of scopes: current block → enclosing blocks →
// function params → file module → imported modules").
type scope struct {
	names        map[string]*ast.Node
	parent       *scope
	funcBoundary bool // true for a function's param scope — shadow warnings stop climbing here
}

func newScope(parent *scope, funcBoundary bool) *scope {
	return &scope{names: make(map[string]*ast.Node), parent: parent, funcBoundary: funcBoundary}
}

// define binds name to decl in s. It reports (prev, true) if name was
// already bound directly in s (a same-block redeclaration, an error);
// callers handle the cross-scope shadowing warning separately via
// shadowedInFunction.
func (s *scope) define(name string, decl *ast.Node) (*ast.Node, bool) {
	if prev, ok := s.names[name]; ok {
		return prev, true
	}
	s.names[name] = decl
	return nil, false
}

// lookup searches s and its ancestors, returning the declaring scope
// along with the declaration.
func (s *scope) lookup(name string) (*ast.Node, *scope) {
	for cur := s; cur != nil; cur = cur.parent {
		if d, ok := cur.names[name]; ok {
			return d, cur
		}
	}
	return nil, nil
}

// shadowedInFunction looks for name in s and ancestor scopes up to and
// including the nearest funcBoundary scope (inclusive), stopping
// before climbing past it into file/module scope. It is used only to
// decide whether a new local binding deserves a shadow warning (§4.4:
// "a local shadows a symbol visible through an outer scope of the
// same function").
func (s *scope) shadowedInFunction(name string) *ast.Node {
	for cur := s; cur != nil; cur = cur.parent {
		if d, ok := cur.names[name]; ok {
			return d
		}
		if cur.funcBoundary {
			break
		}
	}
	return nil
}
