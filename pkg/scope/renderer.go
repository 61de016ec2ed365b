package scope

import (
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *Widget

	bg *canvas.Rectangle

	objects []fyne.CanvasObject

	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 180)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	if r.lastSize.Width != size.Width || r.lastSize.Height != size.Height {
		r.lastSize = size
		// Redraw with the new dimensions
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the canvas objects from the current trace data.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	traces := r.scope.traces
	yMin := r.scope.yMin
	yMax := r.scope.yMax
	xMin := r.scope.xMin
	xMax := r.scope.xMax
	title := r.scope.title
	unit := r.scope.unit
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.bg}

	marginLeft := float32(52.0)
	marginRight := float32(10.0)
	marginTop := float32(22.0)
	marginBottom := float32(24.0)

	plotW := size.Width - marginLeft - marginRight
	plotH := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	r.drawTitle(title, plotX)
	r.drawGrid(plotX, plotY, plotW, plotH, yMin, yMax, xMin, xMax, unit)

	for i := range traces {
		r.drawTrace(plotX, plotY, plotW, plotH, &traces[i], yMin, yMax, xMin, xMax)
	}
	r.drawLegend(traces, plotX, plotW)

	canvas.Refresh(r.scope)
}

func (r *scopeRenderer) drawTitle(title string, plotX float32) {
	text := canvas.NewText(title, color.RGBA{R: 220, G: 220, B: 220, A: 255})
	text.TextSize = 12
	text.TextStyle = fyne.TextStyle{Bold: true}
	text.Move(fyne.NewPos(plotX, 2))
	r.objects = append(r.objects, text)
}

// drawGrid draws the oscilloscope-style grid with axis labels.
func (r *scopeRenderer) drawGrid(plotX, plotY, plotW, plotH float32, yMin, yMax float32, xMin, xMax time.Time, unit string) {
	gridColor := color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor := color.RGBA{R: 150, G: 150, B: 150, A: 255}

	numHLines := 4
	for i := 0; i <= numHLines; i++ {
		y := plotY + float32(i)*plotH/float32(numHLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(plotX, y)
		line.Position2 = fyne.NewPos(plotX+plotW, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		value := yMax - float32(i)*(yMax-yMin)/float32(numHLines)
		text := canvas.NewText(formatValue(value, unit), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plotX-5, y-6))
		r.objects = append(r.objects, text)
	}

	numVLines := 5
	span := xMax.Sub(xMin)
	for i := 0; i <= numVLines; i++ {
		x := plotX + float32(i)*plotW/float32(numVLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotH)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		offset := time.Duration(float64(span) * float64(i) / float64(numVLines))
		text := canvas.NewText(formatOffset(offset), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-16, plotY+plotH+4))
		r.objects = append(r.objects, text)
	}
}

// drawTrace draws one curve as connected line segments.
func (r *scopeRenderer) drawTrace(plotX, plotY, plotW, plotH float32, tr *trace, yMin, yMax float32, xMin, xMax time.Time) {
	pts := tr.display
	if len(pts) < 2 {
		return
	}

	span := xMax.Sub(xMin).Seconds()
	if span <= 0 {
		return
	}
	ySpan := yMax - yMin
	if ySpan <= 0 {
		ySpan = 1
	}

	positions := make([]fyne.Position, 0, len(pts))
	for _, p := range pts {
		x := plotX + float32(p.T.Sub(xMin).Seconds()/span)*plotW
		y := plotY + plotH - (float32(p.V)-yMin)/ySpan*plotH
		positions = append(positions, fyne.NewPos(x, y))
	}

	for i := 0; i < len(positions)-1; i++ {
		line := canvas.NewLine(tr.spec.Color)
		line.Position1 = positions[i]
		line.Position2 = positions[i+1]
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
	}
}

// drawLegend labels each trace in its own color, right-aligned on one row.
func (r *scopeRenderer) drawLegend(traces []trace, plotX, plotW float32) {
	x := plotX + plotW
	for i := len(traces) - 1; i >= 0; i-- {
		text := canvas.NewText(traces[i].spec.Name, traces[i].spec.Color)
		text.TextSize = 11
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(x, 2))
		x -= float32(len(traces[i].spec.Name))*8 + 12
		r.objects = append(r.objects, text)
	}
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}

func formatValue(v float32, unit string) string {
	return strconv.FormatFloat(float64(v), 'f', 1, 32) + unit
}

func formatOffset(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
}
