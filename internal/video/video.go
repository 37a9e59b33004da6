// Package video hands evaluated frames to the external renderer.
package video

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/idamadam/promovideo/internal/engine"
)

// FrameSink receives frames in order and is closed once rendering ends
type FrameSink interface {
	engine.Sink
	Close() error
}

// JSONLWriter writes one RenderState per line
type JSONLWriter struct {
	w      *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
	frames int
}

// NewJSONLWriter wraps w. Closing the writer flushes it and closes w when w
// is an io.Closer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriterSize(w, 1<<16)
	jw := &JSONLWriter{w: bw, enc: json.NewEncoder(bw)}
	if c, ok := w.(io.Closer); ok {
		jw.closer = c
	}
	return jw
}

// Create opens path for writing, creating its directory first
func Create(path string) (*JSONLWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create frame file: %w", err)
	}
	return NewJSONLWriter(f), nil
}

func (jw *JSONLWriter) WriteFrame(rs engine.RenderState) error {
	if err := jw.enc.Encode(rs); err != nil {
		return err
	}
	jw.frames++
	return nil
}

// Frames returns the number of frames written so far
func (jw *JSONLWriter) Frames() int {
	return jw.frames
}

func (jw *JSONLWriter) Close() error {
	err := jw.w.Flush()
	if jw.closer != nil {
		if cerr := jw.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ReadFrames decodes a JSON Lines stream written by JSONLWriter
func ReadFrames(r io.Reader) ([]engine.RenderState, error) {
	dec := json.NewDecoder(r)
	var frames []engine.RenderState
	for {
		var rs engine.RenderState
		err := dec.Decode(&rs)
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		frames = append(frames, rs)
	}
}

// Discard drops every frame; used to time evaluation alone
type Discard struct{}

func (Discard) WriteFrame(engine.RenderState) error { return nil }
func (Discard) Close() error                        { return nil }
