package speech

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rbright/aacboard/internal/audio"
)

type recordingSink struct {
	mu     sync.Mutex
	clips  []audio.Clip
	volume float64
}

func (s *recordingSink) Play(_ context.Context, clip audio.Clip, volume func() float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips = append(s.clips, clip)
	s.volume = volume()
	return nil
}

type synthRequest struct {
	text, language, voice string
	encoding, sampleRate  uint64
}

func parseSynthRequest(t *testing.T, data []byte) synthRequest {
	t.Helper()
	var req synthRequest
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		require.GreaterOrEqual(t, n, 0)
		data = data[n:]
		switch typ {
		case protowire.BytesType:
			v, m := protowire.ConsumeString(data)
			require.GreaterOrEqual(t, m, 0)
			data = data[m:]
			switch num {
			case 1:
				req.text = v
			case 2:
				req.language = v
			case 5:
				req.voice = v
			}
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			require.GreaterOrEqual(t, m, 0)
			data = data[m:]
			switch num {
			case 3:
				req.encoding = v
			case 4:
				req.sampleRate = v
			}
		default:
			t.Fatalf("unexpected wire type %v", typ)
		}
	}
	return req
}

func startFakeRiva(t *testing.T, pcm []byte) (string, <-chan synthRequest) {
	t.Helper()
	requests := make(chan synthRequest, 4)

	handler := func(_ any, stream grpc.ServerStream) error {
		method, _ := grpc.MethodFromServerStream(stream)
		require.Equal(t, synthesizeMethod, method)

		in := &rawFrame{}
		if err := stream.RecvMsg(in); err != nil {
			return err
		}
		requests <- parseSynthRequest(t, in.data)

		var resp []byte
		resp = protowire.AppendTag(resp, 1, protowire.BytesType)
		resp = protowire.AppendBytes(resp, pcm)
		resp = protowire.AppendTag(resp, 9, protowire.VarintType)
		resp = protowire.AppendVarint(resp, 7)
		return stream.SendMsg(&rawFrame{data: resp})
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	server := grpc.NewServer(
		grpc.ForceServerCodec(rawCodec{}),
		grpc.UnknownServiceHandler(handler),
	)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	return lis.Addr().String(), requests
}

func TestRivaSpeakerSynthesizesAndPlays(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xff, 0xff, 0x10, 0x00}
	endpoint, requests := startFakeRiva(t, pcm)

	sink := &recordingSink{}
	speaker := &RivaSpeaker{Endpoint: endpoint, SampleRate: 16000, DialTimeout: 2 * time.Second, Sink: sink}
	t.Cleanup(func() { _ = speaker.Close() })

	err := speaker.Speak(context.Background(), Request{Text: "hello", Language: "en", Voice: "English-US.Female-1", Volume: 0.4})
	require.NoError(t, err)

	req := <-requests
	require.Equal(t, synthRequest{
		text:       "hello",
		language:   "en-US",
		voice:      "English-US.Female-1",
		encoding:   encodingLinearPCM,
		sampleRate: 16000,
	}, req)

	require.Len(t, sink.clips, 1)
	require.Equal(t, audio.Clip{SampleRate: 16000, Channels: 1, Samples: []int16{1, -1, 16}}, sink.clips[0])
	require.InDelta(t, 0.4, sink.volume, 1e-9)

	// connection is reused
	require.NoError(t, speaker.Speak(context.Background(), Request{Text: "again", Language: "de"}))
	require.Equal(t, "de-DE", (<-requests).language)
}

func TestDialRivaFailsFast(t *testing.T) {
	_, err := DialRiva(context.Background(), "", time.Second)
	require.Error(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	_, err = DialRiva(context.Background(), addr, 200*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "readiness")
}

func TestDecodeSynthesizeResponseRejectsGarbage(t *testing.T) {
	_, err := decodeSynthesizeResponse([]byte{0x0a, 0x05, 0x01})
	require.Error(t, err)

	pcm, err := decodeSynthesizeResponse(nil)
	require.NoError(t, err)
	require.Empty(t, pcm)
}

func TestRivaLanguage(t *testing.T) {
	require.Equal(t, "en-US", rivaLanguage("en"))
	require.Equal(t, "es-ES", rivaLanguage("es"))
	require.Equal(t, "en-GB", rivaLanguage("en-GB"))
	require.Equal(t, "en-US", rivaLanguage("not a tag"))
}
