package programs

import (
	"github.com/gogpu/spvkit/shader"
)

type Particle struct {
	Pos [2]float32
	Vel [2]float32
}

// ParticleBuffer is a storage block holding every particle.
type ParticleBuffer struct {
	Items []Particle
}

// HistogramBuffer counts particles per horizontal bin.
type HistogramBuffer struct {
	Counts []uint32
}

// Step is the push constant block of Particles.
type Step struct {
	DT   float32
	Bins uint32
}

var (
	particleItems = shader.FieldOf[ParticleBuffer, shader.Array[shader.Struct[Particle]]](func(b *ParticleBuffer) any { return &b.Items })
	particlePos   = shader.FieldOf[Particle, shader.Vec2](func(p *Particle) any { return &p.Pos })
	particleVel   = shader.FieldOf[Particle, shader.Vec2](func(p *Particle) any { return &p.Vel })
	histCounts    = shader.FieldOf[HistogramBuffer, shader.Array[shader.Uint]](func(h *HistogramBuffer) any { return &h.Counts })
	stepDT        = shader.FieldOf[Step, shader.Float](func(s *Step) any { return &s.DT })
	stepBins      = shader.FieldOf[Step, shader.Uint](func(s *Step) any { return &s.Bins })
)

// ParticleGroupSize is the workgroup width of Particles.
const ParticleGroupSize = 64

// Particles advances particles in the unit square, wrapping at the edges,
// and bins their new x coordinate into a histogram with atomic adds.
type Particles struct {
	shader.Base
	Particles *shader.StorageBuffer[ParticleBuffer]
	Histogram *shader.StorageBuffer[HistogramBuffer]
	Step      *shader.PushConstant[Step]
	CS        *shader.Stage
}

func NewParticles(process, device any) *Particles {
	p := &Particles{}
	p.Init(process, device)
	p.Particles = shader.NewStorageBuffer[ParticleBuffer](&p.Base, "particles")
	p.Histogram = shader.NewStorageBuffer[HistogramBuffer](&p.Base, "histogram")
	p.Step = shader.NewPushConstant[Step](&p.Base, "step")
	p.CS = shader.NewComputeShader(&p.Base, p.advance, ParticleGroupSize, 1, 1)
	return p
}

func (p *Particles) advance(c *shader.ComputeContext) {
	id := c.GlobalInvocationID().X()
	particles := shader.Access(c, p.Particles)
	c.If(id.Lt(shader.ArrayLength(particles, particleItems)))

	step := shader.Access(c, p.Step)
	dt := shader.Member(step, stepDT).Load()
	bins := shader.Member(step, stepBins).Load()

	particle := shader.Elem(shader.Member(particles, particleItems), shader.Convert[shader.I32](id))
	pos := shader.MemberOf(particle, particlePos)
	vel := shader.MemberOf(particle, particleVel).Load()
	next := shader.Fract(pos.Load().Add(vel.Scale(dt)))
	pos.Store(next)

	bin := shader.Convert[shader.U32](next.X().Mul(shader.Convert[shader.F32](bins)))
	bin = shader.Min(bin, bins.Sub(c.Uint(1)))
	counts := shader.Member(shader.Access(c, p.Histogram), histCounts)
	shader.AtomicAdd(shader.Elem(counts, shader.Convert[shader.I32](bin)), c.Uint(1))

	c.Fi()
}
