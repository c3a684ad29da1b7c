package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"go-haptics/config"
	hmidi "go-haptics/midi"
	"go-haptics/recorder"
	"go-haptics/scheduler"
	"go-haptics/timeline"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "detect":
		detectActuator()
	case "buzz":
		testBuzz(os.Args[2:])
	case "taps":
		testTaps(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                 - List all MIDI ports")
	fmt.Println("  detect               - Show which configured port would be the actuator")
	fmt.Println("  buzz <port> [ms]     - Note on/off pulse on the first output matching <port>")
	fmt.Println("  taps <port> [sec]    - Record presses on an input and print the on durations")
}

func scan() (hmidi.Ports, bool) {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := hmidi.Scan(hmidi.ScanTimeout)
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return ports, false
	}
	return ports, true
}

func listPorts() {
	ports, ok := scan()
	if !ok {
		return
	}
	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ports.Ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range ports.Outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func detectActuator() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	ports, ok := scan()
	if !ok {
		return
	}

	fmt.Printf("Looking for %s...\n", strings.Join(cfg.Actuator.Ports, ", "))
	for _, fragment := range cfg.Actuator.Ports {
		if out := ports.FindOut(fragment); out != nil {
			fmt.Printf("Actuator: %s (matched %q)\n", out.String(), fragment)
			return
		}
	}
	fmt.Println("No actuator port found")
}

func testBuzz(args []string) {
	if len(args) < 1 {
		usage()
		return
	}
	d := 500 * time.Millisecond
	if len(args) > 1 {
		v, err := timeline.DefaultNames().Resolve(args[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		d = v
	}

	ports, ok := scan()
	if !ok {
		return
	}
	out := ports.FindOut(args[0])
	if out == nil {
		fmt.Printf("No output matching %q\n", args[0])
		return
	}

	cfg := config.DefaultConfig()
	drv, err := hmidi.OpenOutput(out, cfg.Actuator, nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Buzzing %s for %v (note %d)\n", out.String(), d, cfg.Actuator.Note)
	if err := drv.Buzz(d); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	time.Sleep(d + 100*time.Millisecond)
	midi.CloseDriver()
	fmt.Println("Done!")
}

func testTaps(args []string) {
	if len(args) < 1 {
		usage()
		return
	}
	wait := 5 * time.Second
	if len(args) > 1 {
		v, err := time.ParseDuration(args[1] + "s")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		wait = v
	}

	ports, ok := scan()
	if !ok {
		return
	}
	in := ports.FindIn(args[0])
	if in == nil {
		fmt.Printf("No input matching %q\n", args[0])
		return
	}

	kb, err := hmidi.NewKeyboardController(in.String(), in)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer kb.Close()

	rec := recorder.New(scheduler.RealClock{}, kb)
	rec.Record()
	fmt.Printf("Recording from %s for %v - play some notes...\n", in.String(), wait)
	time.Sleep(wait)

	l := rec.Finish()
	fmt.Printf("Recorded %d pulses: %v\n", len(l), l)
}
