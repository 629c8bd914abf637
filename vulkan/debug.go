package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/spvkit/diag"
)

func severity(flags vk.DebugReportFlags) diag.Severity {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return diag.SeverityError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return diag.SeverityWarning
	}
	return diag.SeverityInfo
}

// reportFunc forwards validation layer messages to r. A reporter that
// aborts makes the failing Vulkan call return VK_ERROR_VALIDATION_FAILED.
func reportFunc(r diag.Reporter) func(vk.DebugReportFlags, vk.DebugReportObjectType, uint64, uint64, int32, string, string, unsafe.Pointer) vk.Bool32 {
	return func(flags vk.DebugReportFlags, _ vk.DebugReportObjectType, _, _ uint64, code int32, prefix, msg string, _ unsafe.Pointer) vk.Bool32 {
		stop := r.Report(diag.Message{
			Severity: severity(flags),
			Source:   prefix,
			Code:     code,
			Text:     msg,
		})
		return boolean(stop)
	}
}

// DebugReport installs a debug report callback on inst that routes messages
// to r, or to diag.Default when r is nil. The instance must have been
// created with VK_EXT_debug_report.
func DebugReport(inst vk.Instance, r diag.Reporter) (vk.DebugReportCallback, error) {
	if r == nil {
		r = diag.Default()
	}
	var cb vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(inst, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit),
		PfnCallback: reportFunc(r),
	}, nil, &cb)
	if err := newError("create debug report callback", ret); err != nil {
		return vk.NullDebugReportCallback, err
	}
	return cb, nil
}
