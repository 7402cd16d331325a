// Package encode writes processed buffers out to audio files.
package encode

import (
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/clearcast-audio/clearcast/internal/audio"
)

// EncodeError reports a failure to encode a buffer. It fails the file it
// occurred on, never the whole batch.
type EncodeError struct {
	Format string
	Msg    string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encode %s: %s: %v", e.Format, e.Msg, e.Err)
	}
	return fmt.Sprintf("encode %s: %s", e.Format, e.Msg)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Encoder serialises a buffer into one output format.
type Encoder interface {
	// Extension is the file extension without the dot.
	Extension() string

	Encode(w io.WriteSeeker, buf *audio.Buffer) error
}

// For returns the encoder for a format name. MP3 and Ogg Vorbis are decode
// only; requesting them for output is an EncodeError at lookup time so the
// batch runner can reject the configuration before processing anything.
func For(format string) (Encoder, error) {
	switch format {
	case "wav":
		return wavEncoder{}, nil
	case "mp3", "ogg":
		return nil, &EncodeError{Format: format, Msg: "decode-only format, output must be wav"}
	default:
		return nil, &EncodeError{Format: format, Msg: "unknown format"}
	}
}

// wavEncoder writes 16-bit PCM WAV.
type wavEncoder struct{}

func (wavEncoder) Extension() string { return "wav" }

func (wavEncoder) Encode(w io.WriteSeeker, buf *audio.Buffer) error {
	enc := wav.NewEncoder(w, buf.SampleRate, 16, buf.Channels(), 1)

	frames := buf.Frames()
	channels := buf.Channels()
	data := make([]int, frames*channels)
	for ch, plane := range buf.Data {
		for i, s := range plane {
			data[i*channels+ch] = clampPCM16(s)
		}
	}

	out := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(out); err != nil {
		return &EncodeError{Format: "wav", Msg: "write samples", Err: err}
	}
	if err := enc.Close(); err != nil {
		return &EncodeError{Format: "wav", Msg: "finalize container", Err: err}
	}
	return nil
}

// clampPCM16 converts a normalised float sample to int16 range with
// saturation. The pipeline's peak ceiling should keep samples in range,
// but rounding must never wrap.
func clampPCM16(s float64) int {
	v := math.Round(s * 32767)
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int(v)
}
