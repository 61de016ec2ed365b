package main

import (
	"flag"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/stm32mic/micmon/pkg/config"
	"github.com/stm32mic/micmon/pkg/monitor"
	"github.com/stm32mic/micmon/pkg/scope"
	"github.com/stm32mic/micmon/pkg/stm32"
)

func main() {
	var (
		portFlag      = flag.String("p", "", "Serial port override (e.g., /dev/ttyUSB0 or COM3)")
		baudFlag      = flag.Int("b", 0, "Baud rate override")
		pointsFlag    = flag.Int("points", 0, "History points per channel (overrides config)")
		configFlag    = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag      = flag.Bool("mock", false, "Use mocked device instead of serial port")
		listPortsFlag = flag.Bool("list-ports", false, "List available serial ports and exit")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *listPortsFlag {
		listPorts()
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *baudFlag > 0 {
		cfg.Serial.BaudRate = *baudFlag
	}
	if *pointsFlag > 0 {
		cfg.History.Points = *pointsFlag
	}

	var opts []monitor.Option
	if *mockFlag {
		opts = append(opts, monitor.WithDial(func(cfg *config.Config) stm32.Device {
			return stm32.NewMock(&cfg.Mock, logger)
		}))
	}
	session := monitor.NewSession(cfg, logger, opts...)

	application := app.NewWithID("com.stm32mic.micmon")

	window := application.NewWindow("STM32 Mic Monitor")
	window.Resize(fyne.NewSize(1400, 900))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		useMock:    *mockFlag,
		logger:     logger,
		session:    session,
		window:     window,
		quit:       make(chan struct{}),
	}

	toolbar := createToolbar(state)
	header := createHeader(state)
	tabs := createTabs(state)

	window.SetContent(container.NewBorder(
		container.NewVBox(toolbar, header),
		nil,
		nil,
		nil,
		tabs,
	))

	state.startRefreshers()

	window.SetOnClosed(func() {
		close(state.quit)
		if err := session.Disconnect(); err != nil {
			logger.Warn("disconnect on close", zap.Error(err))
		}
	})
	window.ShowAndRun()
}

func listPorts() {
	ports, err := stm32.Ports()
	if err != nil {
		fmt.Println("failed to list serial ports:", err)
		return
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return
	}
	for _, p := range ports {
		fmt.Println(p.Name)
	}
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	useMock    bool
	logger     *zap.Logger
	session    *monitor.Session
	window     fyne.Window
	quit       chan struct{}

	connectBtn *widget.Button

	timeLabel  *widget.Label
	freqLabel  *widget.Label
	stateLabel *widget.Label
	portLabel  *widget.Label

	// Overview plots, one per channel
	rmsScopes    [stm32.NumChannels]*scope.Widget
	minmaxScopes [stm32.NumChannels]*scope.Widget
	ampScopes    [stm32.NumChannels]*scope.Widget
	// Detail plots per channel: RMS, amplitude, MAX, MIN
	detailScopes [stm32.NumChannels][4]*scope.Widget

	// Throttling for plot updates
	updateMu       sync.Mutex
	lastUpdateTime time.Time
}

// createToolbar creates the toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("Connect", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewHBox(connectBtn, settingsBtn)
}

// createHeader creates the info labels shown above the plots.
func createHeader(state *appState) fyne.CanvasObject {
	state.timeLabel = widget.NewLabel("Time: --:--:--")
	state.freqLabel = widget.NewLabel("Sampling: -- Hz")
	state.stateLabel = widget.NewLabel("State: disconnected")
	state.portLabel = widget.NewLabel("Port: " + state.portName())

	return container.NewHBox(state.timeLabel, state.freqLabel, state.stateLabel, state.portLabel)
}

func (state *appState) portName() string {
	if state.useMock {
		return "mock"
	}
	return state.cfg.Serial.Port
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.session.Connected() {
		if err := state.session.Disconnect(); err != nil {
			state.logger.Warn("disconnect", zap.Error(err))
		}
		state.connectBtn.SetText("Connect")
		return
	}

	if _, err := state.session.Connect(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.portName(), err), state.window)
		return
	}
	state.connectBtn.SetText("Disconnect")
}

// startRefreshers wires the data paths into the UI: a monitor callback for
// the plots (throttled) and a wall-clock ticker for the header labels.
func (state *appState) startRefreshers() {
	const plotInterval = 100 * time.Millisecond

	state.session.Monitor().OnUpdate(func(s stm32.Sample, passComplete bool) {
		state.updateMu.Lock()
		now := time.Now()
		tooSoon := now.Sub(state.lastUpdateTime) < plotInterval
		if !tooSoon {
			state.lastUpdateTime = now
		}
		state.updateMu.Unlock()
		if tooSoon {
			return
		}

		fyne.Do(func() {
			state.refreshPlots()
		})
	})

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-state.quit:
				return
			case <-ticker.C:
				h := state.session.Header()
				fyne.Do(func() {
					state.refreshHeader(h)
				})
			}
		}
	}()
}

// refreshPlots rebuilds every plot from history snapshots. Runs on the Fyne
// main thread.
func (state *appState) refreshPlots() {
	for ch := 0; ch < stm32.NumChannels; ch++ {
		hist := state.session.History(ch)

		rms := make([]scope.Point, len(hist))
		amp := make([]scope.Point, len(hist))
		maxPts := make([]scope.Point, len(hist))
		minPts := make([]scope.Point, len(hist))
		for i, s := range hist {
			rms[i] = scope.Point{T: s.Timestamp, V: s.RMS.Millivolts()}
			amp[i] = scope.Point{T: s.Timestamp, V: s.Amplitude.Millivolts()}
			maxPts[i] = scope.Point{T: s.Timestamp, V: float64(s.Max)}
			minPts[i] = scope.Point{T: s.Timestamp, V: float64(s.Min)}
		}

		state.rmsScopes[ch].SetPoints(0, rms)
		state.ampScopes[ch].SetPoints(0, amp)
		state.minmaxScopes[ch].SetPoints(0, maxPts)
		state.minmaxScopes[ch].SetPoints(1, minPts)

		state.detailScopes[ch][0].SetPoints(0, rms)
		state.detailScopes[ch][1].SetPoints(0, amp)
		state.detailScopes[ch][2].SetPoints(0, maxPts)
		state.detailScopes[ch][3].SetPoints(0, minPts)
	}
}

// refreshHeader updates the info labels. Runs on the Fyne main thread.
func (state *appState) refreshHeader(h monitor.Header) {
	state.timeLabel.SetText("Time: " + h.Time.Format("15:04:05"))

	if h.RateKnown {
		state.freqLabel.SetText(fmt.Sprintf("Sampling: %.2f Hz", h.RateHz))
	} else {
		state.freqLabel.SetText("Sampling: -- Hz")
	}

	stateText := "State: " + h.Status.State.String()
	if h.Status.State == stm32.Failed && h.Status.Err != nil {
		stateText += " (" + h.Status.Err.Error() + ")"
		state.connectBtn.SetText("Connect")
	}
	state.stateLabel.SetText(stateText)
	state.portLabel.SetText("Port: " + state.portName())
}
