package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/chewxy/math32"
)

// Point is one plotted value at an instant.
type Point struct {
	T time.Time
	V float64
}

// TraceSpec names and colors one curve on a Widget.
type TraceSpec struct {
	Name  string
	Color color.RGBA
}

type trace struct {
	spec    TraceSpec
	display []Point
}

// Widget is a custom Fyne widget that displays one or more time series in an
// oscilloscope style. Writers push points with SetPoints; the renderer reads
// them under the widget lock.
type Widget struct {
	widget.BaseWidget

	title string
	unit  string

	// Data (protected by mu)
	mu     sync.RWMutex
	traces []trace

	// Auto-scaling
	yMin, yMax float32
	xMin, xMax time.Time

	maxDisplayPoints int
}

// New creates a scope with one trace per spec. The unit suffixes the Y-axis
// labels ("mV", or empty for raw ADC codes).
func New(title, unit string, specs ...TraceSpec) *Widget {
	w := &Widget{
		title:            title,
		unit:             unit,
		traces:           make([]trace, len(specs)),
		maxDisplayPoints: 1000, // Limit points for efficient rendering
	}
	for i, spec := range specs {
		w.traces[i] = trace{spec: spec, display: make([]Point, 0, 128)}
	}
	w.ExtendBaseWidget(w)
	w.Refresh()
	return w
}

// SetPoints replaces one trace's data and refreshes the widget. The slice is
// downsampled into an internal buffer, the caller keeps ownership of pts.
// Must be called on the Fyne main thread (wrap in fyne.Do from goroutines).
func (w *Widget) SetPoints(traceIdx int, pts []Point) {
	if traceIdx < 0 || traceIdx >= len(w.traces) {
		return
	}

	w.mu.Lock()
	w.traces[traceIdx].display = Downsample(w.traces[traceIdx].display, pts, w.maxDisplayPoints)
	w.updateAutoScale()
	w.mu.Unlock()

	w.Refresh()
}

// updateAutoScale recomputes the axis ranges from the display buffers.
// Caller holds mu.
func (w *Widget) updateAutoScale() {
	first := true
	var tMin, tMax time.Time

	for _, tr := range w.traces {
		for _, p := range tr.display {
			v := float32(p.V)
			if first {
				w.yMin, w.yMax = v, v
				tMin, tMax = p.T, p.T
				first = false
				continue
			}
			w.yMin = math32.Min(w.yMin, v)
			w.yMax = math32.Max(w.yMax, v)
			if p.T.Before(tMin) {
				tMin = p.T
			}
			if p.T.After(tMax) {
				tMax = p.T
			}
		}
	}

	if first {
		// No data yet
		w.yMin, w.yMax = 0, 1
		w.xMin = time.Now()
		w.xMax = w.xMin.Add(10 * time.Second)
		return
	}

	span := w.yMax - w.yMin
	if span == 0 {
		span = 1
	}
	margin := span * 0.1
	w.yMin -= margin
	w.yMax += margin

	w.xMin = tMin
	w.xMax = tMax
	if w.xMax.Sub(w.xMin) < time.Second {
		w.xMax = w.xMin.Add(time.Second)
	}
}

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &scopeRenderer{
		scope:    w,
		bg:       background,
		objects:  []fyne.CanvasObject{background},
		lastSize: fyne.Size{Width: 0, Height: 0},
	}
}
