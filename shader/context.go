package shader

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/spvkit/diag"
	"github.com/gogpu/spvkit/spirv"
)

// Errors recorded by a Context. The first one sticks and is returned from
// Finish.
var (
	ErrUnbalancedScopes = errors.New("shader: unbalanced control-flow scopes")
	ErrScopeMismatch    = errors.New("shader: scope mismatch")
	ErrLayout           = errors.New("shader: layout violation")
	ErrType             = errors.New("shader: type error")
)

// EntryPointName is the name of every generated entry point.
const EntryPointName = "main"

// Options control module generation.
type Options struct {
	// Version is the SPIR-V version to target. The zero value means 1.3.
	Version spirv.Version
	// Debug emits OpName and OpMemberName for declared objects.
	Debug bool
	// Reporter receives IR dumps and diagnostics. Nil uses diag.Default.
	Reporter diag.Reporter
}

func (o Options) version() spirv.Version {
	if o.Version == (spirv.Version{}) {
		return spirv.Version1_3
	}
	return o.Version
}

func (o Options) reporter() diag.Reporter {
	if o.Reporter == nil {
		return diag.Default()
	}
	return o.Reporter
}

var irDump atomic.Bool

// SetIRDump enables IR dumps process-wide. A stage is dumped only when its
// method also calls DumpIR.
func SetIRDump(on bool) { irDump.Store(on) }

// ScopeKind identifies an open control-flow construct.
type ScopeKind uint8

const (
	ScopeFunction ScopeKind = iota + 1
	ScopeSelection
	ScopeLoop
	ScopeSwitch
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFunction:
		return "function"
	case ScopeSelection:
		return "selection"
	case ScopeLoop:
		return "loop"
	case ScopeSwitch:
		return "switch"
	}
	return fmt.Sprintf("ScopeKind(%d)", uint8(k))
}

type scope struct {
	kind   ScopeKind
	header uint32
	merge  uint32

	// selection
	elseLabel uint32
	hasElse   bool

	// loop
	cont    uint32
	body    uint32
	hasCond bool
	step    func()

	// switch
	fn       *function
	at       int
	selector uint32
	cases    []uint32
	deflt    uint32

	def *Func
}

// function accumulates one OpFunction. Local variables are kept apart from
// the body so they can be hoisted into the entry block.
type function struct {
	id         uint32
	result     Type
	header     []spirv.Instruction
	entry      uint32
	vars       []spirv.Instruction
	body       []spirv.Instruction
	block      uint32
	terminated bool
	parent     *function
}

func (f *function) instructions() []spirv.Instruction {
	out := make([]spirv.Instruction, 0, len(f.header)+len(f.vars)+len(f.body)+2)
	out = append(out, f.header...)
	out = append(out, spirv.NewInstruction(spirv.OpLabel, f.entry))
	out = append(out, f.vars...)
	out = append(out, f.body...)
	return append(out, spirv.NewInstruction(spirv.OpFunctionEnd))
}

type execMode struct {
	mode   spirv.ExecutionMode
	params []uint32
}

// Context is the emission state of one shader module. Every typed value,
// control-flow call and binding accessor writes into the Context it was
// created from. A Context is not safe for concurrent use.
type Context struct {
	b     *spirv.ModuleBuilder
	opts  Options
	debug bool
	model spirv.ExecutionModel
	label string
	glsl  uint32

	types  map[string]uint32
	consts map[string]uint32

	scopes []*scope
	fn     *function
	entry  *function

	interfaces []uint32
	modes      []execMode
	builtins   map[spirv.BuiltIn]uint32
	release    []func()

	dump bool
	done bool
	err  error
}

// NewContext starts a module for the given execution model with an open
// entry function.
func NewContext(model spirv.ExecutionModel, opts Options) *Context {
	c := &Context{
		b:        spirv.NewModuleBuilder(opts.version()),
		opts:     opts,
		debug:    opts.Debug,
		model:    model,
		label:    modelName(model),
		types:    make(map[string]uint32),
		consts:   make(map[string]uint32),
		builtins: make(map[spirv.BuiltIn]uint32),
	}
	c.b.AddCapability(spirv.CapabilityShader)
	c.glsl = c.b.AddExtInstImport(spirv.GLSLImportName)
	c.b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	c.entry = c.openFunction(c.b.AllocID(), nil, nil)
	if model == spirv.ExecutionModelFragment {
		c.addMode(spirv.ExecutionModeOriginUpperLeft)
	}
	return c
}

func modelName(m spirv.ExecutionModel) string {
	switch m {
	case spirv.ExecutionModelVertex:
		return "vertex"
	case spirv.ExecutionModelFragment:
		return "fragment"
	case spirv.ExecutionModelGLCompute:
		return "compute"
	}
	return m.String()
}

func (c *Context) context() *Context { return c }

// Model returns the execution model of the module.
func (c *Context) Model() spirv.ExecutionModel { return c.model }

// Version returns the targeted SPIR-V version.
func (c *Context) Version() spirv.Version { return c.b.Version() }

// Err returns the first recorded error.
func (c *Context) Err() error { return c.err }

func (c *Context) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *Context) name(id uint32, name string) {
	if c.debug && name != "" {
		c.b.AddName(id, name)
	}
}

func (c *Context) require(capability spirv.Capability) {
	c.b.AddCapability(capability)
}

func (c *Context) addMode(mode spirv.ExecutionMode, params ...uint32) {
	for _, m := range c.modes {
		if m.mode == mode {
			return
		}
	}
	c.modes = append(c.modes, execMode{mode: mode, params: params})
}

func (c *Context) onFinish(fn func()) {
	c.release = append(c.release, fn)
}

// DeclareType returns the id of t, declaring it on first use.
func (c *Context) DeclareType(t Type) uint32 {
	k := t.key()
	if id, ok := c.types[k]; ok {
		return id
	}
	id := t.declare(c)
	c.types[k] = id
	return id
}

// DeclareConstant returns the id of k, declaring it on first use.
func (c *Context) DeclareConstant(k Constant) uint32 {
	key := k.constKey()
	if id, ok := c.consts[key]; ok {
		return id
	}
	id := k.declareConst(c)
	c.consts[key] = id
	return id
}

// Emit appends an instruction with a result type and returns its fresh
// result id. Writing after a block terminator opens a new unreachable block.
func (c *Context) Emit(op spirv.OpCode, resultType uint32, operands ...uint32) uint32 {
	id := c.b.AllocID()
	words := make([]uint32, 0, len(operands)+2)
	words = append(words, resultType, id)
	words = append(words, operands...)
	c.appendInst(spirv.NewInstruction(op, words...))
	return id
}

// EmitVoid appends an instruction that has no result.
func (c *Context) EmitVoid(op spirv.OpCode, operands ...uint32) {
	c.appendInst(spirv.NewInstruction(op, operands...))
}

func (c *Context) emitT(op spirv.OpCode, t Type, operands ...uint32) value {
	return value{c, c.Emit(op, c.DeclareType(t), operands...), t}
}

func (c *Context) appendInst(inst spirv.Instruction) int {
	f := c.fn
	if f == nil {
		c.fail(fmt.Errorf("%w: %s emitted outside a function", ErrScopeMismatch, inst.Opcode))
		return -1
	}
	if f.terminated {
		c.openBlock(c.b.AllocID())
	}
	f.body = append(f.body, inst)
	if inst.Opcode.IsTerminator() {
		f.terminated = true
	}
	return len(f.body) - 1
}

// openBlock places a label. The previous block must already be terminated.
func (c *Context) openBlock(label uint32) {
	f := c.fn
	if f == nil {
		return
	}
	f.body = append(f.body, spirv.NewInstruction(spirv.OpLabel, label))
	f.block = label
	f.terminated = false
}

// branch closes the current block with a jump unless it already ended.
func (c *Context) branch(target uint32) {
	if c.fn != nil && !c.fn.terminated {
		c.appendInst(spirv.NewInstruction(spirv.OpBranch, target))
	}
}

// startBlock falls through from the current block into label.
func (c *Context) startBlock(label uint32) {
	c.branch(label)
	c.openBlock(label)
}

// CurrentBlock returns the label of the block being written.
func (c *Context) CurrentBlock() uint32 {
	if c.fn == nil {
		return 0
	}
	return c.fn.block
}

// Depth returns the number of open control-flow scopes.
func (c *Context) Depth() int { return len(c.scopes) }

// OpenScope pushes a bare scope of the given kind.
func (c *Context) OpenScope(kind ScopeKind) {
	c.push(&scope{kind: kind})
}

// CloseScope pops the innermost scope. Closing a kind that does not match,
// or closing with no open scope, records ErrScopeMismatch.
func (c *Context) CloseScope(kind ScopeKind) {
	c.pop(kind)
}

func (c *Context) push(s *scope) {
	if s.header == 0 {
		s.header = c.CurrentBlock()
	}
	c.scopes = append(c.scopes, s)
}

func (c *Context) peek(kind ScopeKind) *scope {
	if len(c.scopes) == 0 {
		c.fail(fmt.Errorf("%w: no open %s", ErrScopeMismatch, kind))
		return nil
	}
	top := c.scopes[len(c.scopes)-1]
	if top.kind != kind {
		c.fail(fmt.Errorf("%w: expected %s, innermost scope is %s", ErrScopeMismatch, kind, top.kind))
		return nil
	}
	return top
}

func (c *Context) pop(kind ScopeKind) *scope {
	top := c.peek(kind)
	if top != nil {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
	return top
}

// innermost finds the closest open scope of one of the kinds.
func (c *Context) innermost(kinds ...ScopeKind) *scope {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		s := c.scopes[i]
		if s.kind == ScopeFunction {
			return nil
		}
		for _, k := range kinds {
			if s.kind == k {
				return s
			}
		}
	}
	return nil
}

func (c *Context) openFunction(id uint32, result Type, params []*param) *function {
	resultType := result
	if resultType == nil {
		resultType = voidType
	}
	ft := FunctionType{Result: resultType}
	for _, p := range params {
		ft.Params = append(ft.Params, p.t)
	}
	f := &function{id: id, result: result, parent: c.fn, entry: c.b.AllocID()}
	f.header = append(f.header, spirv.NewInstruction(spirv.OpFunction,
		c.DeclareType(resultType), id, uint32(spirv.FunctionControlNone), c.DeclareType(ft)))
	for _, p := range params {
		f.header = append(f.header, spirv.NewInstruction(spirv.OpFunctionParameter, c.DeclareType(p.t), p.id))
	}
	f.block = f.entry
	c.fn = f
	return f
}

func (c *Context) closeFunction(f *function) {
	if !f.terminated {
		if f.result == nil {
			c.appendInst(spirv.NewInstruction(spirv.OpReturn))
		} else {
			c.fail(fmt.Errorf("%w: function %%%d ends without a return value", ErrType, f.id))
			c.appendInst(spirv.NewInstruction(spirv.OpUnreachable))
		}
	}
	c.b.AddFunctionInstructions(f.instructions()...)
	c.fn = f.parent
}

// localVar declares a Function-class variable in the entry block of the
// current function.
func (c *Context) localVar(t Type, name string) uint32 {
	ptr := c.DeclareType(PointerType{Class: spirv.StorageClassFunction, Elem: t})
	id := c.b.AllocID()
	if c.fn == nil {
		c.fail(fmt.Errorf("%w: local %q declared outside a function", ErrScopeMismatch, name))
		return id
	}
	c.fn.vars = append(c.fn.vars, spirv.NewInstruction(spirv.OpVariable, ptr, id, uint32(spirv.StorageClassFunction)))
	c.name(id, name)
	return id
}

// globalVar declares a module-scope variable and lists it on the entry
// point where the target version requires it.
func (c *Context) globalVar(t Type, class spirv.StorageClass, name string) uint32 {
	ptr := c.DeclareType(PointerType{Class: class, Elem: t})
	id := c.b.AddVariable(ptr, class)
	c.name(id, name)
	if class == spirv.StorageClassInput || class == spirv.StorageClassOutput || c.Version().AtLeast(spirv.Version1_4) {
		c.interfaces = append(c.interfaces, id)
	}
	return id
}

func (c *Context) builtin(b spirv.BuiltIn, class spirv.StorageClass, t Type) uint32 {
	if id, ok := c.builtins[b]; ok {
		return id
	}
	id := c.globalVar(t, class, b.String())
	c.b.AddDecorate(id, spirv.DecorationBuiltIn, uint32(b))
	if class == spirv.StorageClassInput && c.model == spirv.ExecutionModelFragment && numKind(t) != NumFloat {
		c.b.AddDecorate(id, spirv.DecorationFlat)
	}
	c.builtins[b] = id
	return id
}

// DumpIR asks for this module's disassembly to be sent to the reporter.
// It has no effect unless SetIRDump(true) was called.
func (c *Context) DumpIR() { c.dump = true }

// Finish closes the entry function and returns the module words. It fails
// when scopes are still open or an error was recorded during emission.
func (c *Context) Finish() ([]uint32, error) {
	if c.done {
		return nil, fmt.Errorf("%w: module already finished", ErrScopeMismatch)
	}
	c.done = true
	defer func() {
		for _, fn := range c.release {
			fn()
		}
		c.release = nil
	}()

	if n := len(c.scopes); n > 0 {
		// A misordered closer leaves its scope open, so report both.
		c.err = errors.Join(c.err, fmt.Errorf("%w: %d scope(s) still open, innermost %s", ErrUnbalancedScopes, n, c.scopes[n-1].kind))
	}
	if c.err != nil {
		return nil, c.err
	}

	c.closeFunction(c.entry)
	c.name(c.entry.id, EntryPointName)
	c.b.AddEntryPoint(c.model, c.entry.id, EntryPointName, c.interfaces)
	for _, m := range c.modes {
		c.b.AddExecutionMode(c.entry.id, m.mode, m.params...)
	}
	if c.err != nil {
		return nil, c.err
	}
	words := c.b.Words()

	if c.dump && irDump.Load() {
		text, err := spirv.DisassembleWords(words)
		if err != nil {
			return nil, fmt.Errorf("shader: dump %s: %w", c.label, err)
		}
		c.opts.reporter().DumpIR(c.label, text)
	}
	return words, nil
}

// Capabilities returns the capabilities declared so far.
func (c *Context) Capabilities() []spirv.Capability { return c.b.Capabilities() }
