package video

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idamadam/promovideo/internal/director"
	"github.com/idamadam/promovideo/internal/engine"
)

func TestJSONLWriterWritesOneLinePerFrame(t *testing.T) {
	comp, err := engine.NewComposition(director.Reference())
	require.NoError(t, err)

	var buf bytes.Buffer
	jw := NewJSONLWriter(&buf)
	_, err = engine.RenderAll(context.Background(), comp, engine.Options{Workers: 2, From: 710, To: 740}, jw)
	require.NoError(t, err)
	require.NoError(t, jw.Close())
	assert.Equal(t, 30, jw.Frames())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 30)
	assert.True(t, strings.HasPrefix(lines[0], `{"frame":710,`))

	frames, err := ReadFrames(&buf)
	require.NoError(t, err)
	require.Len(t, frames, 30)

	f727 := frames[727-710]
	assert.Equal(t, 727, f727.Frame)
	require.Len(t, f727.Layers, 2)
	assert.InDelta(t, 1.0, f727.Layers[0].Blend+f727.Layers[1].Blend, 1e-12)
	assert.Equal(t, "Latest", f727.States["activePreset"].State)
	assert.Equal(t, "outro", f727.Elements["cta"].Scene)
}

func TestCreateMakesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "frames.jsonl")
	jw, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, jw.WriteFrame(engine.RenderState{Frame: 3}))
	require.NoError(t, jw.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"frame\":3,\"layers\":null,\"elements\":null}\n", string(data))
}

func TestReadFramesReportsBadLine(t *testing.T) {
	_, err := ReadFrames(strings.NewReader("{\"frame\":0}\n{oops\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 1")
}

func TestDiscard(t *testing.T) {
	var s FrameSink = Discard{}
	assert.NoError(t, s.WriteFrame(engine.RenderState{}))
	assert.NoError(t, s.Close())
}
