package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/aacboard/internal/version"
)

// ErrUnsupportedFormat reports audio the sink cannot play.
var ErrUnsupportedFormat = errors.New("unsupported audio format (want PCM16 WAV)")

// Clip is decoded interleaved PCM16 audio.
type Clip struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Duration is the playback length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// ClipFromPCM wraps little-endian PCM16 bytes.
func ClipFromPCM(pcm []byte, sampleRate, channels int) Clip {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return Clip{SampleRate: sampleRate, Channels: channels, Samples: samples}
}

// DecodeWAV reads a RIFF/WAVE file holding mono or stereo PCM16.
func DecodeWAV(r io.Reader) (Clip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Clip{}, fmt.Errorf("read wav: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Clip{}, ErrUnsupportedFormat
	}

	var (
		clip      Clip
		haveFmt   bool
		offset    = 12
		bitsDepth uint16
	)
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if size < 0 || body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return Clip{}, fmt.Errorf("%w: short fmt chunk", ErrUnsupportedFormat)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			clip.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsDepth = binary.LittleEndian.Uint16(data[body+14 : body+16])
			if format != 1 || bitsDepth != 16 || clip.Channels < 1 || clip.Channels > 2 || clip.SampleRate <= 0 {
				return Clip{}, fmt.Errorf("%w: format=%d bits=%d channels=%d", ErrUnsupportedFormat, format, bitsDepth, clip.Channels)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return Clip{}, fmt.Errorf("%w: data before fmt chunk", ErrUnsupportedFormat)
			}
			pcm := data[body : body+size]
			return ClipFromPCM(pcm[:len(pcm)&^1], clip.SampleRate, clip.Channels), nil
		}

		// chunks are word aligned
		offset = body + size + size%2
	}
	return Clip{}, fmt.Errorf("%w: missing data chunk", ErrUnsupportedFormat)
}

// EncodeWAV writes clip as a PCM16 RIFF/WAVE file.
func EncodeWAV(w io.Writer, clip Clip) error {
	dataSize := uint32(len(clip.Samples) * 2)
	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(clip.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(clip.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(clip.SampleRate*clip.Channels*2))
	binary.LittleEndian.PutUint16(header[32:34], uint16(clip.Channels*2))
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, clip.Samples)
}

// Scale applies a [0,1] gain to one sample.
func Scale(sample int16, gain float64) int16 {
	switch {
	case gain >= 1:
		return sample
	case gain <= 0:
		return 0
	}
	return int16(math.Round(float64(sample) * gain))
}

// Resolve turns a pad sound location into an absolute URL or file path.
// Relative locations resolve against base, the board's own source.
func Resolve(source, base string) string {
	source = strings.TrimSpace(source)
	if isHTTP(source) {
		return source
	}

	if isHTTP(base) {
		baseURL, err := url.Parse(base)
		if err != nil {
			return source
		}
		ref, err := url.Parse(source)
		if err != nil {
			return source
		}
		return baseURL.ResolveReference(ref).String()
	}

	if filepath.IsAbs(source) {
		if _, err := os.Stat(source); err == nil || base == "" {
			return source
		}
	}
	if base == "" {
		return source
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(strings.TrimPrefix(source, "/")))
}

// Fetch loads and decodes a sound from an http(s) URL or a file path.
func Fetch(ctx context.Context, location string, timeout time.Duration) (Clip, error) {
	var (
		data []byte
		err  error
	)
	if isHTTP(location) {
		data, err = fetchHTTP(ctx, location, timeout)
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return Clip{}, fmt.Errorf("load sound %q: %w", location, err)
	}

	clip, err := DecodeWAV(bytes.NewReader(data))
	if err != nil {
		return Clip{}, fmt.Errorf("decode sound %q: %w", location, err)
	}
	return clip, nil
}

func fetchHTTP(ctx context.Context, location string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}

func isHTTP(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
