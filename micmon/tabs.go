package main

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2/container"

	"github.com/stm32mic/micmon/pkg/scope"
	"github.com/stm32mic/micmon/pkg/stm32"
)

var (
	colorRMS = color.RGBA{R: 100, G: 149, B: 237, A: 255}
	colorMax = color.RGBA{R: 220, G: 70, B: 70, A: 255}
	colorMin = color.RGBA{R: 70, G: 180, B: 90, A: 255}
	colorAmp = color.RGBA{R: 170, G: 110, B: 220, A: 255}
)

// createTabs builds the tab set: three overview tabs with one plot per
// channel, then one detail tab per channel.
func createTabs(state *appState) *container.AppTabs {
	tabs := container.NewAppTabs(
		createRMSTab(state),
		createMinMaxTab(state),
		createAmplitudeTab(state),
	)
	for ch := 0; ch < stm32.NumChannels; ch++ {
		tabs.Append(createChannelTab(state, ch))
	}
	return tabs
}

func createRMSTab(state *appState) *container.TabItem {
	grid := container.NewGridWithColumns(2)
	for ch := 0; ch < stm32.NumChannels; ch++ {
		w := scope.New(fmt.Sprintf("Mic A%d - RMS", ch), "mV",
			scope.TraceSpec{Name: "RMS", Color: colorRMS},
		)
		state.rmsScopes[ch] = w
		grid.Add(w)
	}
	return container.NewTabItem("RMS", grid)
}

func createMinMaxTab(state *appState) *container.TabItem {
	grid := container.NewGridWithColumns(2)
	for ch := 0; ch < stm32.NumChannels; ch++ {
		w := scope.New(fmt.Sprintf("Mic A%d - MAX/MIN", ch), "",
			scope.TraceSpec{Name: "MAX", Color: colorMax},
			scope.TraceSpec{Name: "MIN", Color: colorMin},
		)
		state.minmaxScopes[ch] = w
		grid.Add(w)
	}
	return container.NewTabItem("MAX/MIN", grid)
}

func createAmplitudeTab(state *appState) *container.TabItem {
	grid := container.NewGridWithColumns(2)
	for ch := 0; ch < stm32.NumChannels; ch++ {
		w := scope.New(fmt.Sprintf("Mic A%d - Amplitude", ch), "mV",
			scope.TraceSpec{Name: "p-p", Color: colorAmp},
		)
		state.ampScopes[ch] = w
		grid.Add(w)
	}
	return container.NewTabItem("Amplitude", grid)
}

// createChannelTab builds the four-plot detail view for one microphone.
func createChannelTab(state *appState, ch int) *container.TabItem {
	rms := scope.New(fmt.Sprintf("A%d - RMS", ch), "mV",
		scope.TraceSpec{Name: "RMS", Color: colorRMS})
	amp := scope.New(fmt.Sprintf("A%d - Amplitude", ch), "mV",
		scope.TraceSpec{Name: "p-p", Color: colorAmp})
	maxW := scope.New(fmt.Sprintf("A%d - MAX", ch), "",
		scope.TraceSpec{Name: "MAX", Color: colorMax})
	minW := scope.New(fmt.Sprintf("A%d - MIN", ch), "",
		scope.TraceSpec{Name: "MIN", Color: colorMin})

	state.detailScopes[ch] = [4]*scope.Widget{rms, amp, maxW, minW}

	grid := container.NewGridWithColumns(2, rms, maxW, amp, minW)
	return container.NewTabItem(fmt.Sprintf("Mic A%d", ch), grid)
}
