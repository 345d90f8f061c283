package parser

import "fmt"

// maxScopeRecursionDepth bounds Scoped resolution depth. Pathological
// grammars (a production that ultimately references itself with no base
// case) would otherwise recurse until the goroutine stack overflows;
// instead such a grammar fails with a ParseError. Compilation is
// documented as single-threaded and non-concurrent (spec.md §5), so a
// package-level counter is sufficient — there is never more than one
// parse in flight per process at a time in this design.
const maxScopeRecursionDepth = 512

var scopeDepth int

// Scope is a named table of mutually recursive productions. It is built by
// invoking a user-supplied assembler once, passing it a factory that hands
// back a Scoped reference for any name — including names not yet present
// in the table being assembled. This closes the recursive knot without
// cycles in the construction graph itself.
type Scope struct {
	Name        string
	productions map[string]Matcher
}

// NewScope constructs a Scope by calling assembler exactly once.
func NewScope(name string, assembler func(scoped func(string) *Scoped) map[string]Matcher) *Scope {
	s := &Scope{Name: name}
	factory := func(production string) *Scoped {
		return &Scoped{scope: s, Name: production, Ctor: nil}
	}
	s.productions = assembler(factory)
	return s
}

// Resolve looks up a production by name. Failure is a ConstructionError:
// the configuration's grammar references something the host program never
// defined.
func (s *Scope) Resolve(name string) (Matcher, error) {
	m, ok := s.productions[name]
	if !ok {
		return nil, &ConstructionError{
			Message: fmt.Sprintf("scoped parser construction failed, %s::%s does not exist", s.Name, name),
		}
	}
	return m, nil
}

// Scoped is a late-bound reference into a named scope. It never holds the
// target parser directly — only a pointer to the owning scope and a name —
// and resolves on every call, which is how recursion is expressed without
// a cycle in the Go object graph.
type Scoped struct {
	scope *Scope
	Name  string
	Ctor  Constructor
}

func (s *Scoped) resolve() Matcher {
	m, err := s.scope.Resolve(s.Name)
	if err != nil {
		panic(err)
	}
	return m
}

func (s *Scoped) IsMatching(target any, shallow bool) bool {
	scopeDepth++
	defer func() { scopeDepth-- }()
	if scopeDepth > maxScopeRecursionDepth {
		return false
	}
	return s.resolve().IsMatching(target, shallow)
}

func (s *Scoped) SyntaxString(continue_ bool) string {
	if !continue_ {
		return s.scope.Name + "::" + s.Name
	}
	m, err := s.scope.Resolve(s.Name)
	if err != nil {
		return s.scope.Name + "::" + s.Name
	}
	return s.scope.Name + "::" + s.Name + " = \n" + m.SyntaxString(false)
}

func (s *Scoped) Parse(target any, blind bool) (any, error) {
	scopeDepth++
	defer func() { scopeDepth-- }()
	if scopeDepth > maxScopeRecursionDepth {
		return nil, newParseError(target, s.SyntaxString(true), []string{"recursion depth exceeded"})
	}

	inner, err := s.resolve().Parse(target, blind)
	if err != nil {
		return nil, err
	}
	ctor := s.Ctor
	if ctor == nil {
		ctor = identity
	}
	return ctor(inner), nil
}
