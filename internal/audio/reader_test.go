package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"episode.wav", true},
		{"episode.WAV", true},
		{"episode.mp3", true},
		{"episode.ogg", true},
		{"episode.flac", false},
		{"episode.txt", false},
		{"episode", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.path); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestOpenUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open = %v, want ErrUnsupportedFormat", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("Open of a missing file succeeded")
	}
}

func TestOpenCorruptWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("RIFFgarbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("Open of a corrupt wav succeeded")
	}
}

func TestBufferHelpers(t *testing.T) {
	buf := NewBuffer(44100, 2, 441)
	if buf.Channels() != 2 || buf.Frames() != 441 {
		t.Fatalf("shape = %d ch/%d frames, want 2/441", buf.Channels(), buf.Frames())
	}
	if ms := buf.Duration().Milliseconds(); ms != 10 {
		t.Errorf("Duration = %dms, want 10", ms)
	}

	buf.Data[0][0] = -0.8
	buf.Data[1][440] = 0.5
	if peak := buf.SamplePeak(); peak != 0.8 {
		t.Errorf("SamplePeak = %g, want 0.8", peak)
	}

	clone := buf.Clone()
	clone.Data[0][0] = 0
	if buf.Data[0][0] != -0.8 {
		t.Error("Clone aliases the original data")
	}
}
