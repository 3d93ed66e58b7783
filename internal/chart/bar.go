// Package chart draws vote statistics as a terminal bar chart.
package chart

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/emotionpoll/internal/api"
)

const (
	defaultAlpha      = 0.2
	defaultBackground = "#FFFFFF"
)

var (
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	legendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0"))
)

// Canvas is where rendered bars are attached. A bar detaches itself when
// destroyed.
type Canvas interface {
	Attach(b *Bar)
	Detach(b *Bar)
}

// Renderer builds bar charts for one canvas.
type Renderer struct {
	canvas     Canvas
	width      int
	height     int
	alpha      float64
	background [3]uint8

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRand sets the color source.
func WithRand(rng *rand.Rand) Option {
	return func(r *Renderer) { r.rng = rng }
}

// WithBackground sets the color bars are blended over. Invalid values are
// ignored.
func WithBackground(hex string) Option {
	return func(r *Renderer) {
		if bg, err := parseHex(hex); err == nil {
			r.background = bg
		}
	}
}

// NewRenderer returns a renderer drawing width x height charts on canvas.
func NewRenderer(canvas Canvas, width, height int, opts ...Option) *Renderer {
	bg, _ := parseHex(defaultBackground)
	r := &Renderer{
		canvas:     canvas,
		width:      max(width, 10),
		height:     max(height, 4),
		alpha:      defaultAlpha,
		background: bg,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		now := uint64(time.Now().UnixNano())
		r.rng = rand.New(rand.NewPCG(now, now>>1))
	}
	return r
}

// Render draws stats as one bar per label and attaches the chart to the
// canvas. Every bar gets its own random translucent color.
func (r *Renderer) Render(stats api.Stats) *Bar {
	r.mu.Lock()
	colors := randomColors(r.rng, len(stats), r.alpha)
	r.mu.Unlock()

	b := &Bar{
		stats:  append(api.Stats(nil), stats...),
		colors: colors,
		canvas: r.canvas,
		fills:  make([]lipgloss.Color, len(colors)),
	}
	for i, c := range colors {
		b.fills[i] = c.Over(r.background)
	}

	top := 1
	data := make([]barchart.BarData, 0, len(stats))
	for i, s := range stats {
		top = max(top, s.Votes)
		data = append(data, barchart.BarData{
			Label: s.Label,
			Values: []barchart.BarValue{{
				Name:  s.Label,
				Value: float64(s.Votes),
				Style: lipgloss.NewStyle().Foreground(b.fills[i]),
			}},
		})
	}
	// The value axis always starts at zero.
	b.model = barchart.New(r.width, r.height,
		barchart.WithStyles(axisStyle, labelStyle),
		barchart.WithNoAutoMaxValue(),
		barchart.WithMaxValue(float64(top)),
		barchart.WithBarGap(1),
	)
	b.model.PushAll(data)
	b.model.Draw()

	if r.canvas != nil {
		r.canvas.Attach(b)
	}
	return b
}

// Bar is one rendered chart.
type Bar struct {
	model  barchart.Model
	stats  api.Stats
	colors []RGBA
	fills  []lipgloss.Color
	canvas Canvas

	once      sync.Once
	destroyed atomic.Bool
}

// Stats returns the data the chart was drawn from.
func (b *Bar) Stats() api.Stats { return b.stats }

// Colors returns the bar fills in label order.
func (b *Bar) Colors() []RGBA { return b.colors }

// Destroy detaches the chart from its canvas. Later calls do nothing.
func (b *Bar) Destroy() {
	b.once.Do(func() {
		b.destroyed.Store(true)
		if b.canvas != nil {
			b.canvas.Detach(b)
		}
	})
}

// Destroyed reports whether Destroy ran.
func (b *Bar) Destroyed() bool { return b.destroyed.Load() }

// View renders the chart followed by a color legend.
func (b *Bar) View() string {
	if len(b.stats) == 0 {
		return labelStyle.Render("No votes yet.")
	}
	parts := make([]string, 0, len(b.stats))
	for i, s := range b.stats {
		swatch := lipgloss.NewStyle().Foreground(b.fills[i]).Render("■")
		parts = append(parts, swatch+" "+legendStyle.Render(s.Label+" ("+strconv.Itoa(s.Votes)+")"))
	}
	return b.model.View() + "\n" + strings.Join(parts, "  ")
}
