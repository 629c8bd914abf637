package shader

import (
	"fmt"

	"github.com/gogpu/spvkit/spirv"
)

// If opens a selection. The then-branch runs until Else or Fi.
//
//	c.If(a.Lt(b))
//	x.Store(one)
//	c.Else()
//	x.Store(two)
//	c.Fi()
//
// Both branches and the merge block are always emitted.
func (c *Context) If(cond Bool) {
	s := &scope{kind: ScopeSelection, header: c.CurrentBlock(), merge: c.b.AllocID(), elseLabel: c.b.AllocID()}
	then := c.b.AllocID()
	c.EmitVoid(spirv.OpSelectionMerge, s.merge, uint32(spirv.SelectionControlNone))
	c.EmitVoid(spirv.OpBranchConditional, cond.id, then, s.elseLabel)
	c.push(s)
	c.openBlock(then)
}

// Else switches to the false branch of the innermost selection.
func (c *Context) Else() {
	s := c.peek(ScopeSelection)
	if s == nil {
		return
	}
	if s.hasElse {
		c.fail(fmt.Errorf("%w: second Else in one selection", ErrScopeMismatch))
		return
	}
	s.hasElse = true
	c.branch(s.merge)
	c.openBlock(s.elseLabel)
}

// Fi closes the innermost selection. A selection without Else gets an
// empty false branch.
func (c *Context) Fi() {
	s := c.pop(ScopeSelection)
	if s == nil {
		return
	}
	c.branch(s.merge)
	if !s.hasElse {
		c.openBlock(s.elseLabel)
		c.branch(s.merge)
	}
	c.openBlock(s.merge)
}

// Do opens a loop. Code up to While computes the exit condition; code after
// While is the body. Without While the loop only exits through Break.
func (c *Context) Do() {
	s := &scope{kind: ScopeLoop, header: c.b.AllocID(), merge: c.b.AllocID(), cont: c.b.AllocID()}
	check := c.b.AllocID()
	c.startBlock(s.header)
	c.EmitVoid(spirv.OpLoopMerge, s.merge, s.cont, uint32(spirv.LoopControlNone))
	c.EmitVoid(spirv.OpBranch, check)
	c.push(s)
	c.openBlock(check)
}

// While leaves the innermost loop when cond is false.
func (c *Context) While(cond Bool) {
	s := c.peek(ScopeLoop)
	if s == nil {
		return
	}
	if s.hasCond {
		c.fail(fmt.Errorf("%w: second While in one loop", ErrScopeMismatch))
		return
	}
	s.hasCond = true
	s.body = c.b.AllocID()
	c.EmitVoid(spirv.OpBranchConditional, cond.id, s.body, s.merge)
	c.openBlock(s.body)
}

// Od closes the innermost loop. The continue block runs the For step, if
// any, and jumps back to the header.
func (c *Context) Od() {
	s := c.pop(ScopeLoop)
	if s == nil {
		return
	}
	c.startBlock(s.cont)
	if s.step != nil {
		s.step()
	}
	c.branch(s.header)
	c.openBlock(s.merge)
}

// For counts v from lo while v < hi, adding step (default 1) after each
// iteration. Close it with Rof.
func (c *Context) For(v Var[Int], lo, hi Int, step ...Int) {
	inc := c.Int(1)
	if len(step) > 0 {
		inc = step[0]
	}
	v.Store(lo)
	c.Do()
	c.While(v.Load().Lt(hi))
	if s := c.peek(ScopeLoop); s != nil {
		s.step = func() { v.Store(v.Load().Add(inc)) }
	}
}

// Rof closes a For loop.
func (c *Context) Rof() { c.Od() }

// Switch opens a multi-way branch on an integer selector. Cases fall
// through to the next one unless they end with Break.
func (c *Context) Switch(sel Int) {
	s := &scope{kind: ScopeSwitch, header: c.CurrentBlock(), merge: c.b.AllocID(), selector: sel.id}
	c.EmitVoid(spirv.OpSelectionMerge, s.merge, uint32(spirv.SelectionControlNone))
	// The targets are only known at EndSwitch.
	s.fn = c.fn
	s.at = c.appendInst(spirv.NewInstruction(spirv.OpSwitch, sel.id, s.merge))
	c.push(s)
}

// Case starts the block taken when the selector equals n.
func (c *Context) Case(n int32) {
	s := c.peek(ScopeSwitch)
	if s == nil {
		return
	}
	for i := 0; i < len(s.cases); i += 2 {
		if s.cases[i] == uint32(n) {
			c.fail(fmt.Errorf("%w: duplicate case %d", ErrScopeMismatch, n))
			return
		}
	}
	label := c.b.AllocID()
	c.startBlock(label)
	s.cases = append(s.cases, uint32(n), label)
}

// Default starts the block taken when no case matches.
func (c *Context) Default() {
	s := c.peek(ScopeSwitch)
	if s == nil {
		return
	}
	if s.deflt != 0 {
		c.fail(fmt.Errorf("%w: second Default in one switch", ErrScopeMismatch))
		return
	}
	s.deflt = c.b.AllocID()
	c.startBlock(s.deflt)
}

// EndSwitch closes the innermost switch.
func (c *Context) EndSwitch() {
	s := c.pop(ScopeSwitch)
	if s == nil {
		return
	}
	c.branch(s.merge)
	deflt := s.deflt
	if deflt == 0 {
		deflt = s.merge
	}
	words := append([]uint32{s.selector, deflt}, s.cases...)
	if s.fn != nil && s.at >= 0 {
		s.fn.body[s.at] = spirv.NewInstruction(spirv.OpSwitch, words...)
	}
	c.openBlock(s.merge)
}

// Break leaves the innermost loop or switch.
func (c *Context) Break() {
	s := c.innermost(ScopeLoop, ScopeSwitch)
	if s == nil {
		c.fail(fmt.Errorf("%w: Break outside a loop or switch", ErrScopeMismatch))
		return
	}
	c.branch(s.merge)
}

// Continue jumps to the continue block of the innermost loop.
func (c *Context) Continue() {
	s := c.innermost(ScopeLoop)
	if s == nil {
		c.fail(fmt.Errorf("%w: Continue outside a loop", ErrScopeMismatch))
		return
	}
	c.branch(s.cont)
}

// Return leaves the current function. Functions with a result use
// Func.Return instead.
func (c *Context) Return() {
	if c.fn != nil && c.fn.result != nil {
		c.fail(fmt.Errorf("%w: Return without a value in a function returning %s", ErrType, c.fn.result.key()))
		return
	}
	c.EmitVoid(spirv.OpReturn)
}

// Kill discards the fragment.
func (c *Context) Kill() {
	if c.model != spirv.ExecutionModelFragment {
		c.fail(fmt.Errorf("%w: Kill outside a fragment shader", ErrType))
		return
	}
	c.EmitVoid(spirv.OpKill)
}

// IfThen emits a selection with the branches given as closures, which
// keeps If, Else and Fi paired.
func (c *Context) IfThen(cond Bool, then func(), otherwise ...func()) {
	c.If(cond)
	then()
	if len(otherwise) > 0 {
		c.Else()
		for _, fn := range otherwise {
			fn()
		}
	}
	c.Fi()
}

// Loop runs body while cond holds. cond is emitted once, in the loop's
// condition block.
func (c *Context) Loop(cond func() Bool, body func()) {
	c.Do()
	c.While(cond())
	body()
	c.Od()
}

// Range is For with the body as a closure.
func (c *Context) Range(v Var[Int], lo, hi Int, body func(i Int)) {
	c.For(v, lo, hi)
	body(v.Load())
	c.Rof()
}
