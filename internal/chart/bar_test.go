package chart

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/jask/emotionpoll/internal/api"
)

type recordingCanvas struct {
	attached []*Bar
}

func (c *recordingCanvas) Attach(b *Bar) { c.attached = append(c.attached, b) }

func (c *recordingCanvas) Detach(b *Bar) {
	for i, a := range c.attached {
		if a == b {
			c.attached = append(c.attached[:i], c.attached[i+1:]...)
			return
		}
	}
}

func seeded() Option { return WithRand(rand.New(rand.NewPCG(1, 2))) }

func TestRenderAttachesAndDestroyDetaches(t *testing.T) {
	canvas := &recordingCanvas{}
	r := NewRenderer(canvas, 40, 10, seeded())

	b := r.Render(api.Stats{{Label: "Happy", Votes: 3}, {Label: "Sad", Votes: 1}})
	require.Equal(t, []*Bar{b}, canvas.attached)
	require.False(t, b.Destroyed())

	b.Destroy()
	b.Destroy()
	require.True(t, b.Destroyed())
	require.Empty(t, canvas.attached)
}

type countingCanvas struct {
	mu       sync.Mutex
	detached int
}

func (c *countingCanvas) Attach(*Bar) {}

func (c *countingCanvas) Detach(*Bar) {
	c.mu.Lock()
	c.detached++
	c.mu.Unlock()
}

func TestDestroyConcurrentWithDestroyed(t *testing.T) {
	canvas := &countingCanvas{}
	b := NewRenderer(canvas, 40, 10, seeded()).Render(api.Stats{{Label: "Calm", Votes: 2}})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.Destroy()
		}()
		go func() {
			defer wg.Done()
			_ = b.Destroyed()
		}()
	}
	wg.Wait()

	require.True(t, b.Destroyed())
	require.Equal(t, 1, canvas.detached)
}

func TestRenderColorsAreTranslucentPerBar(t *testing.T) {
	r := NewRenderer(nil, 40, 10, seeded())
	stats := api.Stats{{Label: "A", Votes: 1}, {Label: "B", Votes: 2}, {Label: "C", Votes: 0}}

	b := r.Render(stats)
	require.Len(t, b.Colors(), len(stats))
	for _, c := range b.Colors() {
		require.Equal(t, 0.2, c.A)
		require.Less(t, c.R, uint8(255))
		require.True(t, strings.HasPrefix(c.String(), "rgba("))
	}
	require.Equal(t, stats, b.Stats())
}

func TestViewListsEveryLabel(t *testing.T) {
	r := NewRenderer(nil, 40, 10, seeded())
	out := ansi.Strip(r.Render(api.Stats{{Label: "Happy", Votes: 3}, {Label: "Calm", Votes: 0}}).View())
	require.Contains(t, out, "Happy (3)")
	require.Contains(t, out, "Calm (0)")
}

func TestViewEmpty(t *testing.T) {
	r := NewRenderer(nil, 40, 10)
	require.Equal(t, "No votes yet.", ansi.Strip(r.Render(api.Stats{}).View()))
}

func TestOverBlendsTowardBackground(t *testing.T) {
	c := RGBA{R: 255, G: 0, B: 0, A: 0.2}
	require.Equal(t, "#FFCCCC", string(c.Over([3]uint8{255, 255, 255})))
	require.Equal(t, "#330000", string(c.Over([3]uint8{0, 0, 0})))
	require.Equal(t, "rgba(255, 0, 0, 0.2)", c.String())
}

func TestParseHex(t *testing.T) {
	bg, err := parseHex("#1a2B3c")
	require.NoError(t, err)
	require.Equal(t, [3]uint8{0x1a, 0x2b, 0x3c}, bg)

	_, err = parseHex("fff")
	require.Error(t, err)
	_, err = parseHex("#zzzzzz")
	require.Error(t, err)
}
