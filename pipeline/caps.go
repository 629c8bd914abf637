package pipeline

import (
	"fmt"

	"github.com/gogpu/spvkit/diag"
	"github.com/gogpu/spvkit/internal/spin"
	"github.com/gogpu/spvkit/spirv"
)

type capKey struct {
	dev Device
	cap spirv.Capability
}

// capCache remembers device answers process-wide. Sections are single map
// operations; the device is queried outside the lock.
var capCache = struct {
	lock spin.Lock
	m    map[capKey]bool
}{m: make(map[capKey]bool)}

// Supports reports whether dev supports c, asking dev once per capability.
// Devices must be comparable, as pointer types are.
func Supports(dev Device, c spirv.Capability) bool {
	k := capKey{dev, c}
	capCache.lock.Lock()
	ok, hit := capCache.m[k]
	capCache.lock.Unlock()
	if hit {
		return ok
	}
	ok = dev.SupportsCapability(c)
	capCache.lock.Lock()
	capCache.m[k] = ok
	capCache.lock.Unlock()
	return ok
}

// Forget drops the cached answers for dev. Call it when dev is destroyed.
func Forget(dev Device) {
	capCache.lock.Lock()
	defer capCache.lock.Unlock()
	for k := range capCache.m {
		if k.dev == dev {
			delete(capCache.m, k)
		}
	}
}

// checkCapabilities reports every capability of p that dev lacks. It fails
// only if the reporter aborts.
func checkCapabilities(dev Device, p *Program, r diag.Reporter) error {
	for _, c := range p.Capabilities() {
		if Supports(dev, c) {
			continue
		}
		err := diag.Check(r, diag.Message{
			Severity: diag.SeverityError,
			Source:   "pipeline",
			Text:     fmt.Sprintf("program %s requires capability %s", p.ID, c),
		})
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnsupportedCapability, c, err)
		}
	}
	return nil
}
