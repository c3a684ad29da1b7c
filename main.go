package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-haptics/actuator"
	"go-haptics/config"
	"go-haptics/debug"
	"go-haptics/haptics"
	"go-haptics/midi"
	"go-haptics/theme"
	"go-haptics/tui"
)

func main() {
	dry := flag.Bool("dry", false, "Record buzzes in memory instead of opening MIDI ports")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Debug {
		if err := debug.Enable(); err == nil {
			defer debug.Disable()
		}
	}

	// Load theme
	th := theme.New(theme.Load(cfg.UI.Palette))

	// Create MIDI device manager (handles hot-plug of input controllers)
	deviceMgr := midi.NewDeviceManager(cfg.Input.Ports)

	// Start device manager in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deviceMgr.Run(ctx)

	opts := []haptics.Option{haptics.WithSources(deviceMgr)}
	if *dry {
		opts = append(opts, haptics.WithDriver(actuator.NewMemoryDriver("dry", nil)))
	} else {
		opts = append(opts, haptics.WithProbes(midi.Probes(cfg.Actuator, nil)...))
		if cfg.Actuator.Policy == config.PolicyAttempt {
			if fallback, err := midi.OpenFallback(cfg.Actuator, nil); err == nil && fallback != nil {
				opts = append(opts, haptics.WithFallback(fallback))
			}
		}
	}

	fmt.Println("go-haptics")
	fmt.Println("Looking for an actuator port...")
	engine := haptics.New(cfg, opts...)
	if !engine.Enabled() {
		fmt.Println("No actuator found - effects will run without output")
	}

	// Create and run TUI
	m := tui.NewModel(engine, deviceMgr, th)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
