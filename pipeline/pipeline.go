// Package pipeline turns a shader configuration into stage modules plus the
// layout a native pipeline needs, and hands both to a Device.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/spvkit/diag"
	"github.com/gogpu/spvkit/internal/logger"
	"github.com/gogpu/spvkit/shader"
	"github.com/gogpu/spvkit/spirv"
)

var (
	ErrDuplicateBinding      = errors.New("pipeline: duplicate binding")
	ErrMissingStage          = errors.New("pipeline: missing stage")
	ErrMixedStages           = errors.New("pipeline: compute and graphics stages in one configuration")
	ErrUnsupportedCapability = errors.New("pipeline: capability not supported by device")
)

// Configuration is a shader configuration. Any struct embedding
// shader.Base implements it through a pointer.
type Configuration interface {
	Bindings() []shader.BindingInfo
	Stages() []*shader.Stage
}

// Program is a translated configuration: one module per stage and the
// collected layout.
type Program struct {
	ID      uuid.UUID
	Modules []*shader.Module
	Layout  Layout
	// Workgroup is the local size of a compute program.
	Workgroup [3]uint32
}

// Compute reports whether p is a compute program.
func (p *Program) Compute() bool {
	return len(p.Modules) == 1 && p.Modules[0].Stage == spirv.ExecutionModelGLCompute
}

// Capabilities returns the union of the capabilities of every module.
func (p *Program) Capabilities() []spirv.Capability {
	var out []spirv.Capability
	seen := map[spirv.Capability]bool{}
	for _, m := range p.Modules {
		for _, c := range m.Capabilities {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Translate compiles every stage of cfg in declaration order and collects
// the layout from its binding points.
func Translate(cfg Configuration, opts shader.Options) (*Program, error) {
	stages := cfg.Stages()
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: configuration declares no stages", ErrMissingStage)
	}
	p := &Program{ID: uuid.New()}
	var vertex, compute bool
	for _, s := range stages {
		switch s.Model() {
		case spirv.ExecutionModelVertex:
			vertex = true
		case spirv.ExecutionModelGLCompute:
			compute = true
			p.Workgroup = s.WorkgroupSize()
		}
	}
	switch {
	case compute && len(stages) > 1:
		return nil, ErrMixedStages
	case !compute && !vertex:
		return nil, fmt.Errorf("%w: graphics configuration without a vertex stage", ErrMissingStage)
	}

	for _, s := range stages {
		start := time.Now()
		m, err := s.Compile(opts)
		if err != nil {
			return nil, err
		}
		logger.Debug("translated stage", "program", p.ID, "stage", m.Stage, "words", len(m.Words), "elapsed", time.Since(start))
		p.Modules = append(p.Modules, m)
	}

	l, err := collectLayout(cfg.Bindings())
	if err != nil {
		return nil, err
	}
	p.Layout = l
	logger.Debug("collected layout", "program", p.ID,
		"sets", len(l.Sets), "push", len(l.PushConstants),
		"attributes", len(l.VertexAttributes), "attachments", len(l.ColorAttachments))
	return p, nil
}

// Handle is an opaque native object created by a Device.
type Handle any

// Device creates native objects. The vulkan package implements it.
type Device interface {
	SupportsCapability(c spirv.Capability) bool
	CreateShaderModule(ctx context.Context, m *shader.Module) (Handle, error)
	CreateSetLayout(ctx context.Context, l SetLayout) (Handle, error)
	CreatePipelineLayout(ctx context.Context, sets []Handle, push []PushRange) (Handle, error)
	CreateGraphicsPipeline(ctx context.Context, d GraphicsDesc) (Handle, error)
	CreateComputePipeline(ctx context.Context, d ComputeDesc) (Handle, error)
}

// GraphicsDesc is everything CreateGraphicsPipeline needs. Modules is
// parallel to Program.Modules.
type GraphicsDesc struct {
	Program *Program
	Modules []Handle
	Layout  Handle
	State   State
}

type ComputeDesc struct {
	Program *Program
	Module  Handle
	Layout  Handle
}

// Pipeline is a created native pipeline and the objects it owns.
type Pipeline struct {
	ID         uuid.UUID
	Program    *Program
	Modules    []Handle
	SetLayouts []Handle
	Layout     Handle
	Handle     Handle
}

// Compile translates cfg and creates its pipeline on dev. Translation and
// device errors are reported to opts.Reporter and returned. Capabilities
// dev does not support are reported as errors too; they stop compilation
// only when the reporter aborts.
func Compile(ctx context.Context, dev Device, cfg Configuration, state State, opts shader.Options) (*Pipeline, error) {
	p, err := Translate(cfg, opts)
	if err != nil {
		return nil, fail(opts.Reporter, "translator", err)
	}
	return build(ctx, dev, p, state, opts.Reporter)
}

// Job is one configuration for CompileAll.
type Job struct {
	Config Configuration
	State  State
}

func build(ctx context.Context, dev Device, p *Program, state State, r diag.Reporter) (*Pipeline, error) {
	if err := checkCapabilities(dev, p, r); err != nil {
		return nil, err
	}
	if err := state.validate(p); err != nil {
		return nil, fail(r, "pipeline", err)
	}
	pl, err := create(ctx, dev, p, state)
	if err != nil {
		return nil, fail(r, "device", err)
	}
	logger.Info("created pipeline", "pipeline", pl.ID, "stages", len(p.Modules), "sets", len(p.Layout.Sets))
	return pl, nil
}

func create(ctx context.Context, dev Device, p *Program, state State) (*Pipeline, error) {
	pl := &Pipeline{ID: uuid.New(), Program: p}
	for _, m := range p.Modules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, err := dev.CreateShaderModule(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %s module: %w", m.Stage, err)
		}
		pl.Modules = append(pl.Modules, h)
	}
	for _, s := range p.Layout.Sets {
		h, err := dev.CreateSetLayout(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("pipeline: set %d layout: %w", s.Set, err)
		}
		pl.SetLayouts = append(pl.SetLayouts, h)
	}
	layout, err := dev.CreatePipelineLayout(ctx, pl.SetLayouts, p.Layout.PushConstants)
	if err != nil {
		return nil, fmt.Errorf("pipeline: layout: %w", err)
	}
	pl.Layout = layout
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Compute() {
		pl.Handle, err = dev.CreateComputePipeline(ctx, ComputeDesc{Program: p, Module: pl.Modules[0], Layout: layout})
	} else {
		pl.Handle, err = dev.CreateGraphicsPipeline(ctx, GraphicsDesc{Program: p, Modules: pl.Modules, Layout: layout, State: state})
	}
	if err != nil {
		return nil, fmt.Errorf("pipeline: create: %w", err)
	}
	return pl, nil
}

// fail reports err and returns it, joined with the abort if the reporter
// asked to stop.
func fail(r diag.Reporter, source string, err error) error {
	if aerr := diag.Check(r, diag.Message{Severity: diag.SeverityError, Source: source, Text: err.Error()}); aerr != nil {
		return errors.Join(err, diag.ErrAborted)
	}
	return err
}
