package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/stm32mic/micmon/pkg/stm32"
)

// showSettingsDialog displays the configuration dialog. Serial and history
// changes apply to the next connection; history capacity takes effect on
// restart since the buffers are sized at construction.
func showSettingsDialog(state *appState) {
	// Serial tab
	portOptions := []string{state.cfg.Serial.Port}
	if ports, err := stm32.Ports(); err == nil {
		for _, p := range ports {
			if p.Name != state.cfg.Serial.Port {
				portOptions = append(portOptions, p.Name)
			}
		}
	}
	portSelect := widget.NewSelect(portOptions, nil)
	portSelect.SetSelected(state.cfg.Serial.Port)

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	serialTab := container.NewTabItem("Serial", widget.NewForm(
		widget.NewFormItem("Port", portSelect),
		widget.NewFormItem("Baud rate", baudEntry),
	))

	// History tab
	pointsEntry := widget.NewEntry()
	pointsEntry.SetText(strconv.Itoa(state.cfg.History.Points))

	historyTab := container.NewTabItem("History", container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Points per channel", pointsEntry),
		),
		widget.NewLabel("Takes effect on restart."),
	))

	// Mock tab
	mockRateEntry := widget.NewEntry()
	mockRateEntry.SetText(state.cfg.Mock.SampleRate.String())
	mockAmpEntry := widget.NewEntry()
	mockAmpEntry.SetText(strconv.FormatFloat(state.cfg.Mock.Amplitude, 'f', -1, 64))
	mockNoiseEntry := widget.NewEntry()
	mockNoiseEntry.SetText(strconv.FormatFloat(state.cfg.Mock.NoiseLevel, 'f', -1, 64))

	mockTab := container.NewTabItem("Mock", widget.NewForm(
		widget.NewFormItem("Frame interval", mockRateEntry),
		widget.NewFormItem("Amplitude (mV)", mockAmpEntry),
		widget.NewFormItem("Noise (mV)", mockNoiseEntry),
	))

	tabs := container.NewAppTabs(serialTab, historyTab, mockTab)
	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(500, 400))

	d := dialog.NewCustomConfirm("Settings", "Save", "Cancel", content, func(save bool) {
		if !save {
			return
		}

		if err := applySettings(state,
			portSelect.Selected, baudEntry.Text, pointsEntry.Text,
			mockRateEntry.Text, mockAmpEntry.Text, mockNoiseEntry.Text,
		); err != nil {
			dialog.ShowError(err, state.window)
			return
		}

		if err := state.cfg.Save(state.configPath); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save settings: %w", err), state.window)
			return
		}
		state.logger.Info("settings saved", zap.String("path", state.configPath))
		state.portLabel.SetText("Port: " + state.portName())
	}, state.window)
	d.Resize(fyne.NewSize(500, 400))
	d.Show()
}

// applySettings validates the entries and writes them into the config.
func applySettings(state *appState, port, baud, points, mockRate, mockAmp, mockNoise string) error {
	baudRate, err := strconv.Atoi(baud)
	if err != nil || baudRate <= 0 {
		return fmt.Errorf("invalid baud rate %q", baud)
	}

	pts, err := strconv.Atoi(points)
	if err != nil || pts <= 0 {
		return fmt.Errorf("invalid history points %q", points)
	}

	rate, err := time.ParseDuration(mockRate)
	if err != nil || rate <= 0 {
		return fmt.Errorf("invalid frame interval %q", mockRate)
	}

	amp, err := strconv.ParseFloat(mockAmp, 64)
	if err != nil || amp < 0 {
		return fmt.Errorf("invalid amplitude %q", mockAmp)
	}

	noise, err := strconv.ParseFloat(mockNoise, 64)
	if err != nil || noise < 0 {
		return fmt.Errorf("invalid noise level %q", mockNoise)
	}

	if port != "" {
		state.cfg.Serial.Port = port
	}
	state.cfg.Serial.BaudRate = baudRate
	state.cfg.History.Points = pts
	state.cfg.Mock.SampleRate = rate
	state.cfg.Mock.Amplitude = amp
	state.cfg.Mock.NoiseLevel = noise

	return nil
}
