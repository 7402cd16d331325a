package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// ErrUnsupportedFormat is returned for file extensions no decoder handles.
var ErrUnsupportedFormat = errors.New("audio: unsupported input format")

// Extensions lists the input file extensions with a native decoder, in the
// order they are matched. Used by the batch scanner for directory discovery.
var Extensions = []string{".wav", ".mp3", ".ogg"}

// Supported reports whether path has a decodable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Open decodes an audio file into a planar float64 buffer.
// The decoder is selected by file extension.
func Open(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: open %q: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(f)
	case ".mp3":
		return decodeMP3(f)
	case ".ogg":
		return decodeOgg(f)
	default:
		return nil, fmt.Errorf("audio: %q: %w", path, ErrUnsupportedFormat)
	}
}

// decodeWAV reads a whole PCM WAV file via go-audio.
func decodeWAV(r io.ReadSeeker) (*Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("audio: invalid WAV file")
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode wav: %w", err)
	}
	channels := pcm.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("audio: wav reports %d channels", channels)
	}

	bitDepth := pcm.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	// Full-scale divisor for the source bit depth, e.g. 32768 for 16-bit.
	scale := math.Pow(2, float64(bitDepth-1))

	frames := len(pcm.Data) / channels
	buf := NewBuffer(pcm.Format.SampleRate, channels, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			buf.Data[ch][i] = float64(pcm.Data[i*channels+ch]) / scale
		}
	}
	return buf, nil
}

// decodeMP3 reads a whole MP3 stream. go-mp3 always outputs 16-bit
// little-endian stereo at the stream's sample rate.
func decodeMP3(r io.Reader) (*Buffer, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("audio: decode mp3: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("audio: decode mp3: %w", err)
	}

	const channels = 2
	frames := len(raw) / (2 * channels)
	buf := NewBuffer(dec.SampleRate(), channels, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			v := int16(uint16(raw[off]) | uint16(raw[off+1])<<8)
			buf.Data[ch][i] = float64(v) / 32768.0
		}
	}
	return buf, nil
}

// decodeOgg reads a whole Ogg Vorbis stream.
func decodeOgg(r io.Reader) (*Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("audio: decode ogg: %w", err)
	}
	channels := format.Channels
	if channels <= 0 {
		return nil, fmt.Errorf("audio: ogg reports %d channels", channels)
	}

	frames := len(samples) / channels
	buf := NewBuffer(format.SampleRate, channels, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			buf.Data[ch][i] = float64(samples[i*channels+ch])
		}
	}
	return buf, nil
}
