package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rbright/aacboard/internal/audio"
)

const (
	synthesizeMethod  = "/nvidia.riva.tts.RivaSpeechSynthesis/Synthesize"
	encodingLinearPCM = 1
)

// RivaSpeaker synthesizes through a Riva TTS server and plays the PCM on Sink.
type RivaSpeaker struct {
	Endpoint    string
	SampleRate  int
	DialTimeout time.Duration
	Sink        audio.Sink

	mu   sync.Mutex
	conn *grpc.ClientConn
}

// Speak synthesizes req and plays it at req.Volume.
func (s *RivaSpeaker) Speak(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return nil
	}
	conn, err := s.connection(ctx)
	if err != nil {
		return err
	}

	sampleRate := s.SampleRate
	if sampleRate <= 0 {
		sampleRate = 22050
	}
	in := &rawFrame{data: encodeSynthesizeRequest(req, sampleRate)}
	out := &rawFrame{}
	if err := conn.Invoke(ctx, synthesizeMethod, in, out, grpc.ForceCodec(rawCodec{})); err != nil {
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		return fmt.Errorf("riva synthesize: %w", err)
	}

	pcm, err := decodeSynthesizeResponse(out.data)
	if err != nil {
		return fmt.Errorf("decode riva response: %w", err)
	}
	volume := req.Volume
	err = s.Sink.Play(ctx, audio.ClipFromPCM(pcm, sampleRate, 1), func() float64 { return volume })
	if ctx.Err() != nil {
		return ErrInterrupted
	}
	return err
}

// Voices is empty: Riva picks the voice server-side when voice_name is blank.
func (s *RivaSpeaker) Voices(context.Context) ([]Voice, error) {
	return nil, nil
}

// Close releases the cached connection.
func (s *RivaSpeaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *RivaSpeaker) connection(ctx context.Context) (*grpc.ClientConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil && s.conn.GetState() != connectivity.Shutdown {
		return s.conn, nil
	}
	conn, err := DialRiva(ctx, s.Endpoint, s.DialTimeout)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

// DialRiva connects to endpoint and waits until the channel is ready.
func DialRiva(ctx context.Context, endpoint string, timeout time.Duration) (*grpc.ClientConn, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("riva endpoint is empty")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial riva grpc %q: %w", endpoint, err)
	}

	readyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn.Connect()
	if err := waitForReady(readyCtx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("wait for riva grpc readiness: %w", err)
	}
	return conn, nil
}

// waitForReady blocks until gRPC connection enters Ready or fails.
func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("grpc connection entered shutdown state")
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("grpc readiness wait timed out in state %s", state.String())
		}
	}
}

// rivaLanguage widens a base language to the region-qualified code Riva expects.
func rivaLanguage(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "en-US"
	}
	base, _ := tag.Base()
	region, _ := tag.Region()
	return base.String() + "-" + region.String()
}

// SynthesizeSpeechRequest: text=1 language_code=2 encoding=3 sample_rate_hz=4 voice_name=5.
func encodeSynthesizeRequest(req Request, sampleRate int) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, req.Text)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, rivaLanguage(req.Language))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, encodingLinearPCM)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(sampleRate))
	if voice := strings.TrimSpace(req.Voice); voice != "" {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendString(b, voice)
	}
	return b
}

// SynthesizeSpeechResponse: audio=1.
func decodeSynthesizeResponse(data []byte) ([]byte, error) {
	var pcm []byte
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		if num == 1 && typ == protowire.BytesType {
			value, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			pcm = append(pcm, value...)
			data = data[m:]
			continue
		}
		m := protowire.ConsumeFieldValue(num, typ, data)
		if m < 0 {
			return nil, protowire.ParseError(m)
		}
		data = data[m:]
	}
	return pcm, nil
}

// rawFrame carries already-encoded protobuf bytes through grpc.
type rawFrame struct {
	data []byte
}

type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	frame, ok := v.(*rawFrame)
	if !ok {
		return nil, fmt.Errorf("raw codec: unexpected message type %T", v)
	}
	return frame.data, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	frame, ok := v.(*rawFrame)
	if !ok {
		return fmt.Errorf("raw codec: unexpected message type %T", v)
	}
	frame.data = append(frame.data[:0], data...)
	return nil
}

func (rawCodec) Name() string { return "proto" }
