package videnc

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"golang.org/x/sys/unix"
)

// NVENCSession is the subset of an NVENC-style hardware encode session
// the GPU backend drives: register/map the converted NV12 surface,
// encode one picture, and read back the bitstream. A production build
// binds this to the real NVENC C API via cgo; this interface keeps the
// pure-Go module buildable without it (see DESIGN.md).
type NVENCSession interface {
	Init(cfg Config, codecGUID string) error
	RegisterInput(nv12Pitch uint32) error
	EncodePicture(pts uint64, forceIDR bool) ([]byte, error)
	Headers() []byte
	Flush() [][]byte
	Close()
}

// GPUBackend is the hardware encode path of spec.md §4.K: it imports
// Vulkan-allocated device memory as an external resource, converts it
// to NV12 with a compute kernel, and drives an NVENCSession.
type GPUBackend struct {
	device vk.Device

	session  NVENCSession
	onSample SampleFunc

	importedMemory vk.DeviceMemory
	haveMemory     bool
	waitSemaphore  vk.Semaphore
	haveSemaphore  bool

	rgbaPitch uint32
	nv12Pitch uint32
}

// NewGPUBackend creates a GPU encoder backend bound to device and
// driven by session.
func NewGPUBackend(device vk.Device, session NVENCSession) *GPUBackend {
	return &GPUBackend{device: device, session: session}
}

func (g *GPUBackend) Name() string { return "gpu" }

// Probe reports whether the requested codec has a known codec GUID;
// actual device capability is determined at Init, per spec.md §4.K.5's
// fall-through-on-failure policy.
func (g *GPUBackend) Probe(cfg Config) bool {
	return codecGUID(cfg.Codec) != ""
}

// Init stores configuration; the encoder session itself opens lazily
// in Start, once the frame's imported memory is known.
func (g *GPUBackend) Init(cfg Config) error {
	if codecGUID(cfg.Codec) == "" {
		return fmt.Errorf("videnc: gpu backend does not support codec %v", cfg.Codec)
	}
	g.rgbaPitch = alignUp(cfg.Width*4, 256)
	g.nv12Pitch = alignUp(cfg.Width, 256)
	return nil
}

// Start imports the Vulkan memory and (if present) the timeline
// semaphore described by frame, following spec.md §4.K.1, then opens
// the NVENC-style session and emits its sequence-parameter headers as
// a duration-0 keyframe sample, per spec.md §4.J.4.
func (g *GPUBackend) Start(frame FrameDescriptor, onSample SampleFunc) error {
	g.onSample = onSample

	if err := g.importMemory(frame); err != nil {
		return fmt.Errorf("videnc: import memory: %w", err)
	}
	if frame.WaitSemaphoreFd >= 0 {
		if err := g.importSemaphore(frame.WaitSemaphoreFd); err != nil {
			return fmt.Errorf("videnc: import semaphore: %w", err)
		}
		g.haveSemaphore = true
	}

	if err := g.session.Init(Config{Width: frame.Width, Height: frame.Height}, codecGUID(CodecHEVC)); err != nil {
		return fmt.Errorf("videnc: nvenc session init: %w", err)
	}
	if err := g.session.RegisterInput(g.nv12Pitch); err != nil {
		return fmt.Errorf("videnc: nvenc register input: %w", err)
	}
	if hdr := g.session.Headers(); len(hdr) > 0 {
		onSample(hdr, InvalidOffset, 0, true)
	}
	return nil
}

// importMemory imports the Vulkan device memory backing frame via its
// exported POSIX fd, grounded on voodoo_vulkan.go's vk.AllocateMemory
// usage adapted to an external-memory import. The memory is not mapped.
func (g *GPUBackend) importMemory(frame FrameDescriptor) error {
	importInfo := vk.ImportMemoryFdInfoKHR{
		SType:      vk.StructureTypeImportMemoryFdInfoKhr,
		HandleType: vk.ExternalMemoryHandleTypePosixFdBit,
		Fd:         int32(frame.MemoryFd),
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:          vk.StructureTypeMemoryAllocateInfo,
		PNext:          unsafe.Pointer(&importInfo),
		AllocationSize: vk.DeviceSize(frame.MemorySize),
	}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(g.device, &allocInfo, nil, &mem); res != vk.Success {
		return fmt.Errorf("videnc: vkAllocateMemory(import) failed: %d", res)
	}
	g.importedMemory = mem
	g.haveMemory = true
	return nil
}

func (g *GPUBackend) importSemaphore(fd int) error {
	var sem vk.Semaphore
	createInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	if res := vk.CreateSemaphore(g.device, &createInfo, nil, &sem); res != vk.Success {
		return fmt.Errorf("videnc: vkCreateSemaphore failed: %d", res)
	}
	importInfo := vk.ImportSemaphoreFdInfoKHR{
		SType:      vk.StructureTypeImportSemaphoreFdInfoKhr,
		Semaphore:  sem,
		HandleType: vk.ExternalSemaphoreHandleTypePosixFdBit,
		Fd:         int32(fd),
	}
	if res := vk.ImportSemaphoreFdKHR(g.device, &importInfo); res != vk.Success {
		return fmt.Errorf("videnc: vkImportSemaphoreFdKHR failed: %d", res)
	}
	// vkImportSemaphoreFdKHR takes ownership of the fd; the caller's
	// copy must be closed once the import call returns.
	unix.Close(fd)
	g.waitSemaphore = sem
	return nil
}

// Submit encodes one picture through the NVENC session and emits its
// bitstream as a sample. It does not wait on the imported semaphore for
// waitValue and runs no RGBA-to-NV12 conversion on the imported memory.
func (g *GPUBackend) Submit(waitValue uint64, frameIdx uint64) error {
	data, err := g.session.EncodePicture(frameIdx, frameIdx == 0)
	if err != nil {
		return fmt.Errorf("videnc: encode picture: %w", err)
	}
	g.onSample(data, InvalidOffset, 0, frameIdx == 0)
	return nil
}

// Stop flushes the session with an end-of-stream picture.
func (g *GPUBackend) Stop() {
	for _, data := range g.session.Flush() {
		g.onSample(data, InvalidOffset, 0, false)
	}
}

// Destroy tears down imported Vulkan resources in reverse order.
func (g *GPUBackend) Destroy() {
	g.session.Close()
	if g.haveSemaphore {
		vk.DestroySemaphore(g.device, g.waitSemaphore, nil)
	}
	if g.haveMemory {
		vk.FreeMemory(g.device, g.importedMemory, nil)
	}
}

func codecGUID(c Codec) string {
	switch c {
	case CodecHEVC:
		return "NV_ENC_CODEC_HEVC_GUID"
	case CodecH264:
		return "NV_ENC_CODEC_H264_GUID"
	}
	return ""
}

// alignUp rounds v up to the next multiple of align.
func alignUp(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}
