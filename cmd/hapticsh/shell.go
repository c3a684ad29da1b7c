package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"go-haptics/debug"
	"go-haptics/haptics"
	"go-haptics/pattern"
	"go-haptics/timeline"
)

// errQuit ends the command loop.
var errQuit = errors.New("quit")

// Shell runs engine commands typed one per line.
type Shell struct {
	engine   *haptics.Engine
	out      io.Writer
	recorded timeline.List
}

func NewShell(engine *haptics.Engine, out io.Writer) *Shell {
	return &Shell{engine: engine, out: out}
}

// Run reads commands until quit, EOF or ctx ends.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "haptics> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s.out = rl.Stdout()
	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}

		if err := s.Exec(line); err != nil {
			if errors.Is(err, errQuit) {
				fmt.Fprintln(s.out, "Exiting...")
				return nil
			}
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

// Exec runs one command line.
func (s *Shell) Exec(line string) error {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
		return nil
	case "names", "n":
		return s.cmdNames()
	case "play", "p":
		return s.cmdPlay(args)
	case "vibrate", "v":
		return s.cmdVibrate(args)
	case "pwm":
		return s.cmdPWM(args)
	case "make":
		return s.cmdMake(args)
	case "record", "rec":
		s.engine.Record()
		fmt.Fprintln(s.out, "Recording. Use 'tap' or controller pads, then 'finish'.")
		return nil
	case "tap", "t":
		if !s.engine.Recording() {
			return fmt.Errorf("not recording")
		}
		s.engine.Tap()
		return nil
	case "finish", "f":
		return s.cmdFinish()
	case "replay":
		return s.cmdReplay(args)
	case "status":
		return s.cmdStatus()
	case "log":
		return s.cmdLog(args)
	case "stop", "s":
		s.engine.Stop()
		fmt.Fprintln(s.out, "Stopped.")
		return nil
	case "quit", "exit", "q":
		s.engine.Stop()
		return errQuit
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Haptics Commands:
  Effects:
    play <effect> <dur|list>   - Play a named effect (e.g. play heartbeat slow)
    vibrate <dur|list>         - Buzz for a duration or an on,off,on... list
    pwm <on> <off> <dur|list>  - Square wave with fixed on/off times
    make <part>... <dur|list>  - Combine effects and ratio lists (make clunk 1,2,1 900)
    names                      - List effects and named durations

  Recording:
    record                     - Start recording
    tap                        - Add a timestamp
    finish                     - Stop and show the recorded list
    replay [effect]            - Play the recording (vibrate or through an effect)

  General:
    status                     - Show actuator and playback status
    log [n]                    - Show the last n log lines
    stop                       - Stop everything
    help                       - Show this help
    quit                       - Exit

  Durations are milliseconds, Go durations (1.5s) or names (slow, medium, fast).`)
}

func (s *Shell) cmdNames() error {
	fmt.Fprintf(s.out, "Effects:   %s\n", strings.Join(s.engine.Effects(), ", "))
	var named []string
	for _, name := range s.engine.DurationNames() {
		d, _ := s.engine.Duration(name)
		named = append(named, fmt.Sprintf("%s=%v", name, d))
	}
	fmt.Fprintf(s.out, "Durations: %s\n", strings.Join(named, ", "))
	return nil
}

func (s *Shell) effectArg(args []string) (timeline.Effect, error) {
	return s.engine.ParseEffect(strings.Join(args, ","))
}

func (s *Shell) cmdPlay(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: play <effect> <dur|list>")
	}
	eff, err := s.effectArg(args[1:])
	if err != nil {
		return err
	}
	pb, err := s.engine.Play(strings.ToLower(args[0]), eff)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Playing %s %v [%s] actuated=%v\n", args[0], eff, pb.ID().String()[:8], pb.Actuating())
	return nil
}

func (s *Shell) cmdVibrate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: vibrate <dur|list>")
	}
	eff, err := s.effectArg(args)
	if err != nil {
		return err
	}
	_, ok, err := s.engine.Vibrate(eff)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Vibrate %v actuated=%v\n", eff, ok)
	return nil
}

func (s *Shell) cmdPWM(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: pwm <on> <off> <dur|list>")
	}
	on, err := s.engine.Duration(args[0])
	if err != nil {
		return fmt.Errorf("on: %w", err)
	}
	off, err := s.engine.Duration(args[1])
	if err != nil {
		return fmt.Errorf("off: %w", err)
	}
	eff, err := s.effectArg(args[2:])
	if err != nil {
		return err
	}
	pb, err := s.engine.PWM(eff, on, off)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "PWM %v/%v %v actuated=%v\n", on, off, eff, pb.Actuating())
	return nil
}

// cmdMake builds a pattern from every argument but the last, which is the
// effect to play it with. A part is an effect name, "rec" for the last
// recording, or a comma separated ratio list.
func (s *Shell) cmdMake(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: make <part>... <dur|list>")
	}

	parts := make([]pattern.Part, 0, len(args)-1)
	for _, arg := range args[:len(args)-1] {
		part, err := s.part(arg)
		if err != nil {
			return err
		}
		parts = append(parts, part)
	}

	p, err := s.engine.MakePattern(parts...)
	if err != nil {
		return err
	}
	eff, err := s.engine.ParseEffect(args[len(args)-1])
	if err != nil {
		return err
	}
	pb, err := p.Play(eff)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Playing %d parts %v actuated=%v\n", len(parts), eff, pb.Actuating())
	return nil
}

func (s *Shell) part(arg string) (pattern.Part, error) {
	name := strings.ToLower(arg)
	if p, ok := s.engine.Effect(name); ok {
		return pattern.Of(p), nil
	}
	if name == "rec" {
		if len(s.recorded) == 0 {
			return pattern.Part{}, fmt.Errorf("nothing recorded")
		}
		return pattern.Ratios(s.recorded...), nil
	}

	var weights []time.Duration
	for _, f := range strings.Split(arg, ",") {
		w, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return pattern.Part{}, fmt.Errorf("part %q: not an effect or ratio list", arg)
		}
		weights = append(weights, timeline.Millis(w))
	}
	return pattern.Ratios(weights...), nil
}

func (s *Shell) cmdFinish() error {
	if !s.engine.Recording() {
		return fmt.Errorf("not recording")
	}
	s.recorded = s.engine.Finish()
	fmt.Fprintf(s.out, "Recorded %v (total %v)\n", s.recorded, s.recorded.Sum())
	return nil
}

func (s *Shell) cmdReplay(args []string) error {
	if len(s.recorded) == 0 {
		return fmt.Errorf("nothing recorded")
	}
	eff := timeline.Timeline(s.recorded...)
	if len(args) == 0 {
		_, ok, err := s.engine.Vibrate(eff)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Replaying %v actuated=%v\n", eff, ok)
		return nil
	}
	pb, err := s.engine.Play(strings.ToLower(args[0]), eff)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Replaying %v through %s actuated=%v\n", eff, args[0], pb.Actuating())
	return nil
}

func (s *Shell) cmdStatus() error {
	driver := s.engine.DriverName()
	if driver == "" {
		driver = "none"
	}
	fmt.Fprintf(s.out, "Actuator:  %s (enabled=%v)\n", driver, s.engine.Enabled())
	fmt.Fprintf(s.out, "Active:    %d\n", len(s.engine.Active()))
	fmt.Fprintf(s.out, "Recording: %v\n", s.engine.Recording())
	if len(s.recorded) > 0 {
		fmt.Fprintf(s.out, "Last:      %v\n", s.recorded)
	}
	return nil
}

func (s *Shell) cmdLog(args []string) error {
	n := 20
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return fmt.Errorf("usage: log [n]")
		}
		n = v
	}

	history := debug.History()
	if len(history) > n {
		history = history[len(history)-n:]
	}
	for _, e := range history {
		fmt.Fprintf(s.out, "[%s] %-10s %s\n", e.Time.Format("15:04:05.000"), e.Category, e.Message)
	}
	return nil
}
