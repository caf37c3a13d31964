package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nambucca-eng/talus"
	"github.com/nambucca-eng/talus/internal/config"
	"github.com/nambucca-eng/talus/internal/presentation/tui"
	"github.com/nambucca-eng/talus/internal/report"
	"github.com/nambucca-eng/talus/pkg/domain"
	"github.com/nambucca-eng/talus/pkg/session"
)

// Stubbed in tests.
var timeNow = time.Now

const promptHelp = `Commands:
  show                                current inputs and session phase
  slope <field> <value|->             height, angle, length, uphill, water,
                                      left, right, slices, iterations
                                      ('-' clears an optional field)
  layer add <unit_wt> <phi> <c> <depth>
  layer rm <id>
  udl <magnitude> <offset> [length]   uniform load ([length] omitted = infinite)
  line <magnitude> <offset>           line load at the surface
  load rm <id>
  project <field> <text...>           name, ref, location, client, engineer
  example                             load the documented example inputs
  run [boundary|critical|all_planes]  run the analysis (default: boundary)
  plot <mode> <file.png>              export a retained plot artifact
  summary                             short results block of the last run
  report [file.md]                    full report (to screen or file)
  exit`

// RunSession starts the interactive session loop.
func RunSession(cfg *config.Config, opts RunOptions) error {
	logger := createLogger(cfg.LogLevel, opts.Debug)

	if !opts.Plain {
		tui.PrintBanner(talus.Version)
	}

	engine, err := talus.NewEngine(cfg, logger)
	if err != nil {
		return err
	}

	manager, cleanup, err := talus.NewManager(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	shellOpts := []session.Option{
		session.WithLogger(logger),
		session.WithTimeout(cfg.Engine.Timeout),
		session.WithMaxFOS(cfg.MaxFOS),
	}

	// Hydrate from the store when a named session is used.
	persisted := opts.SessionID != ""
	if persisted {
		state, err := manager.LoadOrStart(sigCtx, opts.SessionID)
		if err != nil {
			return fmt.Errorf("failed to init session: %w", err)
		}
		resumed := state.Phase != domain.PhaseIdle || len(state.Layers) > 0
		shellOpts = append(shellOpts, session.WithState(state))
		if resumed {
			logger.Info("session resumed", "session_id", opts.SessionID, "phase", string(state.Phase))
			printSystemMessage("Resuming session '%s' (%s).", opts.SessionID, state.Phase)
		} else {
			logger.Info("session created", "session_id", opts.SessionID)
			printSystemMessage("Session '%s' active.", opts.SessionID)
		}
	}

	shell := session.NewShell(engine, shellOpts...)

	if cfg.Example && len(shell.Layers()) == 0 {
		shell.LoadDefaultExample()
		printSystemMessage("Loaded the documented example inputs.")
	}

	save := func() {
		if !persisted {
			return
		}
		// Background context: the final save after an interrupt must
		// still reach the store.
		if err := manager.Save(context.Background(), opts.SessionID, shell.Snapshot()); err != nil {
			logger.Warn("failed to persist session", "session_id", opts.SessionID, "err", err)
		}
	}
	save()

	render := renderFunc(opts.Plain)

	printSystemMessage("Type 'help' for commands.")

	scanner := bufio.NewScanner(NewInterruptibleReader(os.Stdin, sigCtx.Done()))
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "exit", "quit":
			save()
			printSystemMessage("Bye.")
			return nil
		case "help":
			fmt.Println(promptHelp)
		default:
			if err := dispatch(sigCtx, shell, render, fields); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
			save()
		}

		if sigCtx.Err() != nil {
			break
		}
	}

	save()
	if sigCtx.Signal() == os.Interrupt {
		fmt.Println("[CTRL+C]")
	}
	printSystemMessage("Session closed.")
	return handleExecutionError(scanner.Err())
}

func dispatch(ctx context.Context, shell *session.Shell, render func(string) string, fields []string) error {
	switch fields[0] {
	case "show":
		fmt.Print(render(describe(shell)))
		return nil
	case "slope":
		return cmdSlope(shell, fields[1:])
	case "layer":
		return cmdLayer(shell, fields[1:])
	case "udl":
		return cmdUDL(shell, fields[1:])
	case "line":
		return cmdLine(shell, fields[1:])
	case "load":
		return cmdLoad(shell, fields[1:])
	case "project":
		return cmdProject(shell, fields[1:])
	case "example":
		shell.LoadDefaultExample()
		printSystemMessage("Loaded the documented example inputs.")
		return nil
	case "run":
		return cmdRun(ctx, shell, render, fields[1:])
	case "plot":
		return cmdPlot(shell, fields[1:])
	case "summary":
		md, err := report.Summary(shell.Snapshot())
		if err != nil {
			return err
		}
		fmt.Print(render(md))
		return nil
	case "report":
		return cmdReport(shell, render, fields[1:])
	default:
		return fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}
}

func cmdSlope(shell *session.Shell, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: slope <field> <value|->")
	}
	field, raw := args[0], args[1]

	snapshot := shell.Snapshot()
	cfg := snapshot.Slope

	switch field {
	case "height":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid height %q", raw)
		}
		cfg.Height = v
	case "angle":
		v, err := parseOptional(raw)
		if err != nil {
			return err
		}
		cfg.Angle = v
	case "length":
		v, err := parseOptional(raw)
		if err != nil {
			return err
		}
		cfg.Length = v
	case "uphill":
		v, err := parseOptional(raw)
		if err != nil {
			return err
		}
		cfg.UphillAngle = v
	case "water":
		v, err := parseOptional(raw)
		if err != nil {
			return err
		}
		cfg.WaterTableDepth = v
	case "left":
		v, err := parseOptional(raw)
		if err != nil {
			return err
		}
		cfg.LeftLimit = v
	case "right":
		v, err := parseOptional(raw)
		if err != nil {
			return err
		}
		cfg.RightLimit = v
	case "slices":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid slices %q", raw)
		}
		cfg.Slices = n
	case "iterations":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid iterations %q", raw)
		}
		cfg.Iterations = n
	default:
		return fmt.Errorf("unknown slope field %q", field)
	}

	shell.UpdateSlope(cfg)
	return nil
}

func cmdLayer(shell *session.Shell, args []string) error {
	if len(args) == 5 && args[0] == "add" {
		vals := make([]float64, 4)
		for i, raw := range args[1:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("invalid number %q", raw)
			}
			vals[i] = v
		}
		id := shell.AddLayer(domain.MaterialLayer{
			UnitWeight:    vals[0],
			FrictionAngle: vals[1],
			Cohesion:      vals[2],
			DepthToBottom: vals[3],
		})
		printSystemMessage("Added layer %s.", id)
		return nil
	}
	if len(args) == 2 && args[0] == "rm" {
		if err := shell.RemoveLayer(args[1]); err != nil {
			return err
		}
		printSystemMessage("Removed layer %s.", args[1])
		return nil
	}
	return fmt.Errorf("usage: layer add <unit_wt> <phi> <c> <depth> | layer rm <id>")
}

func cmdUDL(shell *session.Shell, args []string) error {
	if len(args) != 2 && len(args) != 3 {
		return fmt.Errorf("usage: udl <magnitude> <offset> [length]")
	}
	magnitude, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid magnitude %q", args[0])
	}
	offset, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid offset %q", args[1])
	}
	var length *float64
	if len(args) == 3 {
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid length %q", args[2])
		}
		length = &v
	}
	id, err := shell.AddLoad(domain.NewUDL(magnitude, offset, length))
	if err != nil {
		return err
	}
	printSystemMessage("Added load %s.", id)
	return nil
}

func cmdLine(shell *session.Shell, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: line <magnitude> <offset>")
	}
	magnitude, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid magnitude %q", args[0])
	}
	offset, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid offset %q", args[1])
	}
	id, err := shell.AddLoad(domain.NewLineLoad(magnitude, offset))
	if err != nil {
		return err
	}
	printSystemMessage("Added load %s.", id)
	return nil
}

func cmdLoad(shell *session.Shell, args []string) error {
	if len(args) != 2 || args[0] != "rm" {
		return fmt.Errorf("usage: load rm <id>")
	}
	if err := shell.RemoveLoad(args[1]); err != nil {
		return err
	}
	printSystemMessage("Removed load %s.", args[1])
	return nil
}

func cmdProject(shell *session.Shell, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: project <field> <text...>")
	}
	value := strings.Join(args[1:], " ")

	info := shell.Snapshot().Project
	switch args[0] {
	case "name":
		info.Name = value
	case "ref":
		info.Reference = value
	case "location":
		info.Location = value
	case "client":
		info.Client.Name = value
	case "engineer":
		info.Engineer.Name = value
	default:
		return fmt.Errorf("unknown project field %q", args[0])
	}
	shell.SetProject(info)
	return nil
}

func cmdRun(ctx context.Context, shell *session.Shell, render func(string) string, args []string) error {
	raw := string(domain.PlotBoundary)
	if len(args) > 0 {
		raw = args[0]
	}
	mode, err := domain.ParsePlotMode(raw)
	if err != nil {
		return err
	}

	printSystemMessage("Running analysis...")
	result, err := shell.RunAnalysis(ctx, mode)
	if err != nil {
		return err
	}

	printSystemMessage("Critical FOS: %.4f (%d surfaces, %s)",
		result.CriticalFOS, result.Surfaces, result.Elapsed.Round(0))

	md, err := report.Summary(shell.Snapshot())
	if err != nil {
		return err
	}
	fmt.Print(render(md))
	return nil
}

func cmdPlot(shell *session.Shell, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: plot <mode> <file.png>")
	}
	mode, err := domain.ParsePlotMode(args[0])
	if err != nil {
		return err
	}
	data, err := shell.UpdatePlot(mode)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0644); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	printSystemMessage("Wrote %s plot to %s (%d bytes).", mode, args[1], len(data))
	return nil
}

func cmdReport(shell *session.Shell, render func(string) string, args []string) error {
	md, err := report.Build(shell.Snapshot(), timeNow())
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Print(render(md))
		return nil
	}
	if err := os.WriteFile(args[0], []byte(md), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	printSystemMessage("Wrote report to %s.", args[0])
	return nil
}

// describe renders the current inputs as markdown for the 'show' command.
func describe(shell *session.Shell) string {
	state := shell.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "## Session (%s)\n\n", state.Phase)
	if state.LastError != "" {
		fmt.Fprintf(&b, "Last error: %s\n\n", state.LastError)
	}

	fmt.Fprintf(&b, "**Slope:** height %g m", state.Slope.Height)
	if state.Slope.Angle != nil {
		fmt.Fprintf(&b, ", angle %g°", *state.Slope.Angle)
	}
	if state.Slope.Length != nil {
		fmt.Fprintf(&b, ", length %g m", *state.Slope.Length)
	}
	if state.Slope.UphillAngle != nil {
		fmt.Fprintf(&b, ", uphill %g°", *state.Slope.UphillAngle)
	}
	if state.Slope.WaterTableDepth != nil {
		fmt.Fprintf(&b, ", water table %g m", *state.Slope.WaterTableDepth)
	}
	fmt.Fprintf(&b, " (%d slices, %d iterations)\n\n", state.Slope.Slices, state.Slope.Iterations)

	if len(state.Layers) == 0 {
		b.WriteString("No material layers.\n")
	}
	for _, l := range state.Layers {
		fmt.Fprintf(&b, "- %s: γ=%g kN/m³, φ=%g°, c=%g kPa, depth %g m\n",
			l.ID, l.UnitWeight, l.FrictionAngle, l.Cohesion, l.DepthToBottom)
	}
	for _, l := range state.Loads {
		switch l.Kind {
		case domain.LoadUDL:
			length := "infinite"
			if l.Length != nil {
				length = fmt.Sprintf("%g m", *l.Length)
			}
			fmt.Fprintf(&b, "- %s: UDL %g kPa at %g m, length %s\n", l.ID, l.Magnitude, l.Offset, length)
		case domain.LoadLine:
			fmt.Fprintf(&b, "- %s: line load %g kN/m at %g m\n", l.ID, l.Magnitude, l.Offset)
		}
	}
	if state.Result != nil {
		fmt.Fprintf(&b, "\nLast run: FOS %.4f at %s\n",
			state.Result.CriticalFOS, state.Result.RunAt.Format("15:04:05"))
	}
	return b.String()
}

func renderFunc(plain bool) func(string) string {
	if plain {
		return func(md string) string { return md + "\n" }
	}
	styled := tui.NewRenderer()
	return func(md string) string {
		out, err := styled(md)
		if err != nil {
			return md + "\n"
		}
		return out
	}
}

// parseOptional parses a float, treating "-" as a cleared value.
func parseOptional(raw string) (*float64, error) {
	if raw == "-" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q", raw)
	}
	return &v, nil
}
