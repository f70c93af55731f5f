package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alkime/scope/pkg/collections"
	"github.com/gen2brain/malgo"
)

// Device wraps one malgo audio device, either capture or playback.
// The data callback runs on the OS audio thread on every hardware
// frame block; it must never block.
type Device interface {
	// Start starts the underlying device, allocating it on first use.
	Start(ctx context.Context) error
	// Stop stops the underlying device.
	// If it has already been deallocated this is a no-op.
	Stop(ctx context.Context) error
	// IsStarted returns whether the device is currently started.
	IsStarted() bool
	// Dealloc deallocates the underlying device and frees resources.
	Dealloc(ctx context.Context)
}

// DataFunc receives one hardware frame block. For capture devices
// input holds the recorded PCM bytes; for playback devices the
// callback must fill output.
type DataFunc func(output, input []byte, frameCount uint32)

// DeviceConfig selects the sample encoding miniaudio delivers (or
// expects) in the callback, plus channel count, rate, and which
// physical device to open. A nil ID opens the system default.
type DeviceConfig struct {
	Format     malgo.FormatType
	Channels   int
	SampleRate int
	ID         *malgo.DeviceID
}

type device struct {
	conf    *DeviceConfig
	devType malgo.DeviceType
	onData  DataFunc

	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
}

// NewCaptureDevice creates an input device that feeds recorded frame
// blocks to onData.
func NewCaptureDevice(conf *DeviceConfig, onData DataFunc) Device {
	return &device{conf: conf, devType: malgo.Capture, onData: onData}
}

// NewPlaybackDevice creates an output device that pulls frame blocks
// from onData.
func NewPlaybackDevice(conf *DeviceConfig, onData DataFunc) Device {
	return &device{conf: conf, devType: malgo.Playback, onData: onData}
}

func (d *device) Start(ctx context.Context) error {
	if d.mgDevice == nil {
		var err error
		d.mgCtx, d.mgDevice, err = d.allocMGDevice()
		if err != nil {
			return fmt.Errorf("failed to allocate malgo device: %w", err)
		}
	}

	if d.mgDevice.IsStarted() {
		// noop
		return nil
	}

	if err := d.mgDevice.Start(); err != nil {
		return fmt.Errorf("failed to start malgo device: %w", err)
	}

	return nil
}

func (d *device) Stop(ctx context.Context) error {
	if d.mgDevice == nil {
		// noop
		return nil
	}

	if err := d.mgDevice.Stop(); err != nil {
		return fmt.Errorf("failed to stop malgo device: %w", err)
	}

	return nil
}

func (d *device) IsStarted() bool {
	if d.mgDevice == nil {
		return false
	}

	return d.mgDevice.IsStarted()
}

func (d *device) Dealloc(ctx context.Context) {
	if d.mgDevice == nil {
		return
	}

	d.mgDevice.Uninit()
	uninitializeContext(d.mgCtx)
	d.mgDevice = nil
	d.mgCtx = nil
}

func (d *device) allocMGDevice() (*malgo.AllocatedContext, *malgo.Device, error) {
	if d.onData == nil {
		return nil, nil, fmt.Errorf("data callback is nil. unable to allocate device")
	}

	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	devCnf := malgo.DefaultDeviceConfig(d.devType)
	devCnf.SampleRate = uint32(d.conf.SampleRate)

	switch d.devType { //nolint:exhaustive // Only capture and playback are supported
	case malgo.Capture:
		devCnf.Capture.Format = d.conf.Format
		devCnf.Capture.Channels = uint32(d.conf.Channels)
		if d.conf.ID != nil {
			devCnf.Capture.DeviceID = d.conf.ID.Pointer()
		}

	case malgo.Playback:
		devCnf.Playback.Format = d.conf.Format
		devCnf.Playback.Channels = uint32(d.conf.Channels)
		if d.conf.ID != nil {
			devCnf.Playback.DeviceID = d.conf.ID.Pointer()
		}

	default:
		uninitializeContext(mgCtx)
		return nil, nil, fmt.Errorf("unsupported device type: %v", d.devType)
	}

	callbacks := malgo.DeviceCallbacks{
		Data: malgo.DataProc(d.onData),
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callbacks)
	if err != nil {
		uninitializeContext(mgCtx)
		return nil, nil, fmt.Errorf("failed to initialize malgo device: %w", err)
	}

	return mgCtx, mgDevice, nil
}

// Info describes one enumerated device.
type Info struct {
	ID        malgo.DeviceID
	Name      string
	IsDefault bool
	Formats   []string
}

// EnumerateDevices lists the available devices of the given type.
func EnumerateDevices(ctx context.Context, devType malgo.DeviceType) ([]Info, error) {
	// An empty context is fine for just enumerating devices.
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	devices, err := devCtx.Devices(devType)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	return collections.Apply(devices, malgoDeviceInfoToInfo), nil
}

func malgoDeviceInfoToInfo(mdi malgo.DeviceInfo) Info {
	formats := collections.Apply(mdi.Formats, func(mf malgo.DataFormat) string {
		return fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
			malgo.SampleSizeInBytes(mf.Format),
			mf.Channels, mf.SampleRate)
	})

	return Info{
		ID:        mdi.ID,
		Name:      mdi.Name(),
		IsDefault: mdi.IsDefault != 0,
		Formats:   formats,
	}
}

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
