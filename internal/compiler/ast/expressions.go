package ast

// Name represents an identifier reference: `self` or a module-level constant
type Name struct {
	Identifier string
	Loc        SourceLocation
}

func (n *Name) exprNode() {}

func (n *Name) Location() SourceLocation {
	return n.Loc
}

// Member represents a member access on an instance (self.some_property)
type Member struct {
	Instance ExprNode
	Name     string
	Loc      SourceLocation
}

func (m *Member) exprNode() {}

func (m *Member) Location() SourceLocation {
	return m.Loc
}

// Constant represents a literal constant.
// Value is one of: bool, int64, float64, string.
type Constant struct {
	Value interface{}
	Loc   SourceLocation
}

func (c *Constant) exprNode() {}

func (c *Constant) Location() SourceLocation {
	return c.Loc
}

// Comparison represents a binary comparison (len(self.x) < 42)
type Comparison struct {
	Left  ExprNode
	Op    Comparator
	Right ExprNode
	Loc   SourceLocation
}

func (c *Comparison) exprNode() {}

func (c *Comparison) Location() SourceLocation {
	return c.Loc
}

// And represents a conjunction of two or more values
type And struct {
	Values []ExprNode
	Loc    SourceLocation
}

func (a *And) exprNode() {}

func (a *And) Location() SourceLocation {
	return a.Loc
}

// Or represents a disjunction of two or more values
type Or struct {
	Values []ExprNode
	Loc    SourceLocation
}

func (o *Or) exprNode() {}

func (o *Or) Location() SourceLocation {
	return o.Loc
}

// Implication represents `antecedent implies consequent`.
// The parser desugars `not X or Y` into an implication, so matchers never
// see a bare negation node.
type Implication struct {
	Antecedent ExprNode
	Consequent ExprNode
	Loc        SourceLocation
}

func (i *Implication) exprNode() {}

func (i *Implication) Location() SourceLocation {
	return i.Loc
}

// IsNone represents the check `x is None`
type IsNone struct {
	Value ExprNode
	Loc   SourceLocation
}

func (i *IsNone) exprNode() {}

func (i *IsNone) Location() SourceLocation {
	return i.Loc
}

// IsNotNone represents the check `x is not None`
type IsNotNone struct {
	Value ExprNode
	Loc   SourceLocation
}

func (i *IsNotNone) exprNode() {}

func (i *IsNotNone) Location() SourceLocation {
	return i.Loc
}

// IsIn represents the membership test `member in container`
type IsIn struct {
	Member    ExprNode
	Container ExprNode
	Loc       SourceLocation
}

func (i *IsIn) exprNode() {}

func (i *IsIn) Location() SourceLocation {
	return i.Loc
}

// FunctionCall represents a call of a built-in or verification function
type FunctionCall struct {
	Name string
	Args []ExprNode
	Loc  SourceLocation
}

func (f *FunctionCall) exprNode() {}

func (f *FunctionCall) Location() SourceLocation {
	return f.Loc
}
