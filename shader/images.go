package shader

import (
	"fmt"

	"github.com/gogpu/spvkit/format"
	"github.com/gogpu/spvkit/spirv"
)

// Texture is a sampled image used with a separate Sampler.
type Texture[F format.Texel] struct{ *point }

// Sampler is a separate sampler.
type Sampler struct{ *point }

// SampledTexture is a combined image and sampler.
type SampledTexture[F format.Texel] struct{ *point }

// StorageImage is an image read and written without a sampler.
type StorageImage[F format.Texel] struct{ *point }

// Array forms. A leading index selects the descriptor.
type (
	TextureArray[F format.Texel]        struct{ *point }
	SamplerArray                        struct{ *point }
	SampledTextureArray[F format.Texel] struct{ *point }
	StorageImageArray[F format.Texel]   struct{ *point }
)

func newImagePoint(b *Base, name string, kind BindingKind, info format.Info, opts []Option) *point {
	p := newPoint(name, kind, opts)
	p.info.Format = info
	b.register(p)
	return p
}

// NewTexture declares a separate sampled image of format F.
func NewTexture[F format.Texel](b *Base, name string, opts ...Option) *Texture[F] {
	return &Texture[F]{newImagePoint(b, name, KindTexture, format.Of[F](), opts)}
}

// NewSampler declares a separate sampler.
func NewSampler(b *Base, name string, opts ...Option) *Sampler {
	return &Sampler{newImagePoint(b, name, KindSampler, format.Info{}, opts)}
}

// NewSampledTexture declares a combined image sampler of format F.
func NewSampledTexture[F format.Texel](b *Base, name string, opts ...Option) *SampledTexture[F] {
	return &SampledTexture[F]{newImagePoint(b, name, KindSampledTexture, format.Of[F](), opts)}
}

// NewStorageImage declares a read-write image of format F.
func NewStorageImage[F format.Texel](b *Base, name string, opts ...Option) *StorageImage[F] {
	return &StorageImage[F]{newImagePoint(b, name, KindStorageImage, format.Of[F](), opts)}
}

// NewTextureArray declares count textures at one binding.
func NewTextureArray[F format.Texel](b *Base, name string, count uint32, opts ...Option) *TextureArray[F] {
	return &TextureArray[F]{newImagePoint(b, name, KindTexture, format.Of[F](), append(opts, Count(count)))}
}

// NewSamplerArray declares count samplers at one binding.
func NewSamplerArray(b *Base, name string, count uint32, opts ...Option) *SamplerArray {
	return &SamplerArray{newImagePoint(b, name, KindSampler, format.Info{}, append(opts, Count(count)))}
}

// NewSampledTextureArray declares count combined image samplers at one binding.
func NewSampledTextureArray[F format.Texel](b *Base, name string, count uint32, opts ...Option) *SampledTextureArray[F] {
	return &SampledTextureArray[F]{newImagePoint(b, name, KindSampledTexture, format.Of[F](), append(opts, Count(count)))}
}

// NewStorageImageArray declares count storage images at one binding.
func NewStorageImageArray[F format.Texel](b *Base, name string, count uint32, opts ...Option) *StorageImageArray[F] {
	return &StorageImageArray[F]{newImagePoint(b, name, KindStorageImage, format.Of[F](), append(opts, Count(count)))}
}

// imageType derives the SPIR-V image type of p from its format and options.
func (p *point) imageType() ImageType {
	storage := p.info.Kind == KindStorageImage
	it := ImageType{
		Sampled:      shaderKind(p.info.Format.ScalarKind()),
		Dim:          p.opts.dim,
		Depth:        p.opts.depth,
		Arrayed:      p.opts.arrayed,
		Multisampled: p.opts.ms,
		Storage:      storage,
	}
	if storage {
		it.Format = p.info.Format.Image
	}
	return it
}

// resourceType is the type of one descriptor of p.
func (p *point) resourceType() Type {
	switch p.info.Kind {
	case KindSampler:
		return SamplerType{}
	case KindSampledTexture:
		return SampledImageType{Image: p.imageType()}
	}
	return p.imageType()
}

func (p *point) dynamicCapability() spirv.Capability {
	if p.info.Kind == KindStorageImage {
		return spirv.CapabilityStorageImageArrayDynamicIndexing
	}
	return spirv.CapabilitySampledImageArrayDynamicIndexing
}

// loadResource loads descriptor at (constant, -1 for single forms) or dyn.
func (p *point) loadResource(c *Context, at int, dyn *Int) value {
	t := p.resourceType()
	var ptr uint32
	switch {
	case dyn != nil:
		if dyn.c != c {
			c.fail(errForeignIndex(p.info.Name))
			return value{c, 0, t}
		}
		ptr = p.elementPtr(c, t, spirv.StorageClassUniformConstant, dyn.id, p.dynamicCapability())
	case at >= 0:
		if !p.checkIndex(c, at) {
			return value{c, 0, t}
		}
		ptr = p.elementPtr(c, t, spirv.StorageClassUniformConstant, c.constI32(int32(at)))
	default:
		ptr = p.elementPtr(c, t, spirv.StorageClassUniformConstant, 0)
	}
	return c.emitT(spirv.OpLoad, t, ptr)
}

// Sources accepted by the image functions. Single binding points and the
// refs returned by the array forms implement them.
type (
	ImageSource   interface{ image(c *Context) value }
	SamplerSource interface{ sampler(c *Context) value }
	SampledSource interface{ sampledImage(c *Context) value }
	StorageSource interface{ storageImage(c *Context) value }
)

// Refs to one descriptor of an array form.
type (
	TextureRef struct{ v value }
	SamplerRef struct{ v value }
	SampledRef struct{ v value }
	StorageRef struct{ v value }
)

func (t *Texture[F]) image(c *Context) value               { return t.loadResource(c, -1, nil) }
func (s *Sampler) sampler(c *Context) value                { return s.loadResource(c, -1, nil) }
func (t *SampledTexture[F]) sampledImage(c *Context) value { return t.loadResource(c, -1, nil) }
func (s *StorageImage[F]) storageImage(c *Context) value   { return s.loadResource(c, -1, nil) }

func (r TextureRef) image(*Context) value        { return r.v }
func (r SamplerRef) sampler(*Context) value      { return r.v }
func (r SampledRef) sampledImage(*Context) value { return r.v }
func (r StorageRef) storageImage(*Context) value { return r.v }

// At selects texture i with a constant index.
func (a *TextureArray[F]) At(c Emitter, i int) TextureRef {
	return TextureRef{a.loadResource(c.context(), i, nil)}
}

// Index selects a texture with a runtime index.
func (a *TextureArray[F]) Index(c Emitter, i Int) TextureRef {
	return TextureRef{a.loadResource(c.context(), -1, &i)}
}

// At selects sampler i with a constant index.
func (a *SamplerArray) At(c Emitter, i int) SamplerRef {
	return SamplerRef{a.loadResource(c.context(), i, nil)}
}

// Index selects a sampler with a runtime index.
func (a *SamplerArray) Index(c Emitter, i Int) SamplerRef {
	return SamplerRef{a.loadResource(c.context(), -1, &i)}
}

// At selects combined image sampler i with a constant index.
func (a *SampledTextureArray[F]) At(c Emitter, i int) SampledRef {
	return SampledRef{a.loadResource(c.context(), i, nil)}
}

// Index selects a combined image sampler with a runtime index.
func (a *SampledTextureArray[F]) Index(c Emitter, i Int) SampledRef {
	return SampledRef{a.loadResource(c.context(), -1, &i)}
}

// At selects storage image i with a constant index.
func (a *StorageImageArray[F]) At(c Emitter, i int) StorageRef {
	return StorageRef{a.loadResource(c.context(), i, nil)}
}

// Index selects a storage image with a runtime index.
func (a *StorageImageArray[F]) Index(c Emitter, i Int) StorageRef {
	return StorageRef{a.loadResource(c.context(), -1, &i)}
}

func imageOf(t Type) (ImageType, bool) {
	switch tt := t.(type) {
	case ImageType:
		return tt, true
	case SampledImageType:
		return tt.Image, true
	}
	return ImageType{}, false
}

// texel checks that K matches the shader kind of the image's format.
func texel[K Numeric](c *Context, img value, coord Value) (Type, bool) {
	t := Vector[K, N4]{}.describe()
	it, ok := imageOf(img.t)
	switch {
	case !ok || img.c != c:
		c.fail(fmt.Errorf("%w: not an image of this module", ErrType))
		return t, false
	case coord.Context() != c:
		c.fail(fmt.Errorf("%w: image coordinate from another context", ErrType))
		return t, false
	case it.Sampled.key() != kindOf[K]().key():
		c.fail(fmt.Errorf("%w: image texels are %s, requested %s", ErrType, it.Sampled.key(), kindOf[K]().key()))
		return t, false
	}
	return t, true
}

func sample[K Numeric](c *Context, si value, coord Value, lod *Float) Vector[K, N4] {
	t, ok := texel[K](c, si, coord)
	if !ok {
		return Vector[K, N4]{value{c, 0, t}}
	}
	if lod == nil && c.model == spirv.ExecutionModelFragment {
		return Vector[K, N4]{c.emitT(spirv.OpImageSampleImplicitLod, t, si.id, coord.ID())}
	}
	// Implicit derivatives exist only in fragment shaders.
	level := c.Float(0)
	if lod != nil {
		level = *lod
	}
	return Vector[K, N4]{c.emitT(spirv.OpImageSampleExplicitLod, t, si.id, coord.ID(), uint32(spirv.ImageOperandsLod), level.id)}
}

// Sample samples a combined texture. Outside fragment shaders it samples
// level 0.
func Sample[K Numeric](c Emitter, src SampledSource, coord Value) Vector[K, N4] {
	ctx := c.context()
	return sample[K](ctx, src.sampledImage(ctx), coord, nil)
}

// SampleLod samples a combined texture at an explicit level of detail.
func SampleLod[K Numeric](c Emitter, src SampledSource, coord Value, lod Float) Vector[K, N4] {
	ctx := c.context()
	return sample[K](ctx, src.sampledImage(ctx), coord, &lod)
}

// SampleWith combines a texture with a separate sampler and samples it.
func SampleWith[K Numeric](c Emitter, img ImageSource, s SamplerSource, coord Value) Vector[K, N4] {
	ctx := c.context()
	iv, sv := img.image(ctx), s.sampler(ctx)
	it, ok := imageOf(iv.t)
	if !ok {
		ctx.fail(fmt.Errorf("%w: SampleWith on a non-image", ErrType))
		return Vector[K, N4]{value{ctx, 0, Vector[K, N4]{}.describe()}}
	}
	st := SampledImageType{Image: it}
	si := ctx.emitT(spirv.OpSampledImage, st, iv.id, sv.id)
	return sample[K](ctx, si, coord, nil)
}

// Fetch reads one texel of a texture by integer coordinate and level.
func Fetch[K Numeric](c Emitter, img ImageSource, coord Value, lod Int) Vector[K, N4] {
	ctx := c.context()
	iv := img.image(ctx)
	t, ok := texel[K](ctx, iv, coord)
	if !ok {
		return Vector[K, N4]{value{ctx, 0, t}}
	}
	return Vector[K, N4]{ctx.emitT(spirv.OpImageFetch, t, iv.id, coord.ID(), uint32(spirv.ImageOperandsLod), lod.id)}
}

// Load reads one texel of a storage image.
func Load[K Numeric](c Emitter, img StorageSource, coord Value) Vector[K, N4] {
	ctx := c.context()
	iv := img.storageImage(ctx)
	t, ok := texel[K](ctx, iv, coord)
	if !ok {
		return Vector[K, N4]{value{ctx, 0, t}}
	}
	return Vector[K, N4]{ctx.emitT(spirv.OpImageRead, t, iv.id, coord.ID())}
}

// Store writes one texel of a storage image.
func Store[K Numeric](c Emitter, img StorageSource, coord Value, v Vector[K, N4]) {
	ctx := c.context()
	iv := img.storageImage(ctx)
	if _, ok := texel[K](ctx, iv, coord); !ok || v.c != ctx {
		ctx.fail(fmt.Errorf("%w: Store of a foreign or mistyped texel", ErrType))
		return
	}
	ctx.EmitVoid(spirv.OpImageWrite, iv.id, coord.ID(), v.id)
}

// ImageSize returns the size of a 2D storage image.
func ImageSize(c Emitter, img StorageSource) IVec2 {
	ctx := c.context()
	iv := img.storageImage(ctx)
	t := IVec2{}.describe()
	it, ok := imageOf(iv.t)
	if !ok || it.Dim != spirv.Dim2D || it.Arrayed {
		ctx.fail(fmt.Errorf("%w: ImageSize needs a non-arrayed 2D image", ErrType))
		return IVec2{value{ctx, 0, t}}
	}
	ctx.require(spirv.CapabilityImageQuery)
	return IVec2{ctx.emitT(spirv.OpImageQuerySize, t, iv.id)}
}
