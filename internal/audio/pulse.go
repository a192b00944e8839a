// Package audio decodes pad sounds and plays PCM through PulseAudio/PipeWire sinks.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const (
	appName  = "aacboard"
	iconName = "audio-speakers"
)

// Device describes one Pulse output sink.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Selection is the resolved output sink plus an optional fallback warning.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

// Sink plays clips. volume is sampled while playing so changes apply live.
type Sink interface {
	Play(ctx context.Context, clip Clip, volume func() float64) error
}

func newClient() (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName(appName),
		pulse.ClientApplicationIconName(iconName),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	return client, nil
}

// ListDevices returns Pulse output sinks with default/availability metadata.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	defaultSink, err := client.DefaultSink()
	if err != nil {
		return nil, fmt.Errorf("read default sink: %w", err)
	}
	defaultID := defaultSink.ID()

	var sinkInfos pulseproto.GetSinkInfoListReply
	if err := client.RawRequest(&pulseproto.GetSinkInfoList{}, &sinkInfos); err != nil {
		return nil, fmt.Errorf("list sinks: %w", err)
	}

	devices := make([]Device, 0, len(sinkInfos))
	for _, sink := range sinkInfos {
		if sink == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          sink.SinkName,
			Description: sink.Device,
			State:       sinkStateString(sink.State),
			Available:   sinkAvailable(sink),
			Muted:       sink.Mute,
			Default:     sink.SinkName == defaultID,
		})
	}
	return devices, nil
}

// SelectDevice resolves the audio.sink preference against live sinks.
func SelectDevice(ctx context.Context, preferred string) (Selection, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Selection{}, err
	}
	return selectDeviceFromList(devices, preferred)
}

// selectDeviceFromList applies selection policy to a pre-fetched sink list.
// An unusable preferred sink falls back to the default sink with a warning.
func selectDeviceFromList(devices []Device, preferred string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.New("no audio output devices found")
	}

	var defaultDevice, byName *Device
	preferred = strings.TrimSpace(strings.ToLower(preferred))
	for i := range devices {
		dev := &devices[i]
		if dev.Default {
			defaultDevice = dev
		}
		if byName == nil && preferred != "" && preferred != "default" && deviceMatches(*dev, preferred) {
			byName = dev
		}
	}

	if preferred == "" || preferred == "default" {
		if defaultDevice == nil {
			return Selection{}, errors.New("default audio sink is unavailable")
		}
		if !defaultDevice.Available {
			return Selection{}, fmt.Errorf("default audio sink %q is not available", defaultDevice.ID)
		}
		return Selection{Device: *defaultDevice}, nil
	}
	if byName == nil {
		return Selection{}, fmt.Errorf("audio.sink %q did not match any device", preferred)
	}
	if byName.Available && !byName.Muted {
		return Selection{Device: *byName}, nil
	}

	reason := "unavailable"
	if byName.Muted {
		reason = "muted"
	}
	if defaultDevice == nil || !defaultDevice.Available {
		return Selection{}, fmt.Errorf("audio.sink %q is %s and no usable default sink", byName.ID, reason)
	}
	return Selection{
		Device:   *defaultDevice,
		Warning:  fmt.Sprintf("audio.sink %q is %s; falling back to %q", byName.ID, reason, defaultDevice.ID),
		Fallback: byName.ID != defaultDevice.ID,
	}, nil
}

// deviceMatches reports whether a search term matches a device id or description.
func deviceMatches(device Device, term string) bool {
	if term == "" {
		return false
	}
	id := strings.ToLower(device.ID)
	desc := strings.ToLower(device.Description)
	return strings.Contains(id, term) || strings.Contains(desc, term)
}

// PulseSink plays clips on one sink, or the server default when ID is empty.
type PulseSink struct {
	ID        string
	MediaName string
}

// Play streams clip until it ends or ctx is canceled. Each call opens its own
// stream, so concurrent calls mix on the server.
func (s PulseSink) Play(ctx context.Context, clip Clip, volume func() float64) error {
	if len(clip.Samples) == 0 {
		return nil
	}
	if clip.Channels < 1 || clip.Channels > 2 || clip.SampleRate <= 0 {
		return ErrUnsupportedFormat
	}
	if volume == nil {
		volume = func() float64 { return 1 }
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	mediaName := s.MediaName
	if mediaName == "" {
		mediaName = appName + " pad"
	}
	opts := []pulse.PlaybackOption{
		pulse.PlaybackSampleRate(clip.SampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName(mediaName),
	}
	if clip.Channels == 2 {
		opts = append(opts, pulse.PlaybackStereo)
	} else {
		opts = append(opts, pulse.PlaybackMono)
	}
	if s.ID != "" {
		sink, err := client.SinkByID(s.ID)
		if err != nil {
			return fmt.Errorf("resolve sink %q: %w", s.ID, err)
		}
		opts = append(opts, pulse.PlaybackSink(sink))
	}

	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if ctx.Err() != nil || cursor >= len(clip.Samples) {
			return 0, pulse.EndOfData
		}

		n := copy(buf, clip.Samples[cursor:])
		gain := volume()
		for i := 0; i < n; i++ {
			buf[i] = Scale(buf[i], gain)
		}
		cursor += n
		if cursor >= len(clip.Samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(reader, opts...)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play stream: %w", err)
	}
	return nil
}

// sinkStateString maps Pulse sink state constants to human-readable values.
func sinkStateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// sinkAvailable maps Pulse sink port availability to a simple boolean.
func sinkAvailable(sink *pulseproto.GetSinkInfoReply) bool {
	if sink == nil {
		return false
	}
	if len(sink.Ports) == 0 {
		return true
	}
	for _, port := range sink.Ports {
		if port.Name != sink.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available == 0 || port.Available == 2
	}
	return true
}
