package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/justyntemme/vst3host/pkg/config"
	"github.com/justyntemme/vst3host/pkg/debug"
	"github.com/justyntemme/vst3host/pkg/host"
	"github.com/justyntemme/vst3host/pkg/inproc"
)

func main() {
	var (
		pluginPath  = flag.String("plugin", inproc.Scheme+inproc.GainName, "Plugin module path")
		configPath  = flag.String("config", "", "Config file (default ~/.config/vst3host/config.json)")
		blocks      = flag.Int("blocks", 0, "Number of blocks to render")
		blockSize   = flag.Int("block-size", 512, "Samples per block")
		notes       = flag.Bool("notes", false, "Play a test chord while rendering")
		setParams   = flag.String("set", "", "Parameter values before rendering (ID=VALUE,ID2=VALUE2)")
		stateIn     = flag.String("state-in", "", "Restore plugin state from file")
		stateOut    = flag.String("state-out", "", "Write plugin state to file")
		list        = flag.Bool("list", false, "List in-process plugins and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		mcpServer   = flag.Bool("mcp", false, "Serve MCP tools on stdio")
		logLevel    = flag.String("log-level", "", "Log level override (debug, info, warn, error, off)")
	)
	flag.Parse()

	if *list {
		for _, name := range inproc.Names() {
			fmt.Println(inproc.Scheme + name)
		}
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	// stdout carries the MCP protocol and the TUI
	if (*mcpServer || *interactive) && cfg.Log.File == "" {
		cfg.Log.Level = debug.LevelOff
	}

	log, err := debug.NewLogger(debug.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	host.SetLogger(log)

	opts := host.WithOptions(cfg.HostOptions())

	switch {
	case *mcpServer:
		err = runMCP(*pluginPath, cfg.Audio.SampleRate, *blockSize, opts)
	case *interactive:
		err = runInteractive(*pluginPath, cfg.Audio.SampleRate, *blockSize, opts)
	default:
		err = run(log, *pluginPath, runConfig{
			sampleRate: cfg.Audio.SampleRate,
			blocks:     *blocks,
			blockSize:  *blockSize,
			notes:      *notes,
			set:        *setParams,
			stateIn:    *stateIn,
			stateOut:   *stateOut,
		}, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

type runConfig struct {
	sampleRate float64
	blocks     int
	blockSize  int
	notes      bool
	set        string
	stateIn    string
	stateOut   string
}

func run(log *zap.Logger, path string, rc runConfig, opts ...host.Option) error {
	p, err := host.Load(path, opts...)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	defer p.Destroy()

	describe(p)

	if rc.stateIn != "" {
		data, err := os.ReadFile(rc.stateIn)
		if err != nil {
			return fmt.Errorf("read state: %w", err)
		}
		if err := p.SetState(data); err != nil {
			return fmt.Errorf("restore state: %w", err)
		}
		fmt.Printf("\nRestored %d bytes of state from %s\n", len(data), rc.stateIn)
	}

	if rc.set != "" {
		values, err := parseAssignments(rc.set)
		if err != nil {
			return err
		}
		for id, v := range values {
			p.SetParameterFromUI(id, v)
		}
		if rc.blocks == 0 {
			// An empty block hands the values to the processor
			if _, err := newSession(p, rc.sampleRate, 0).render(nil); err != nil {
				return err
			}
		}
	}

	if rc.blocks > 0 {
		s := newSession(p, rc.sampleRate, rc.blockSize)
		var seq *noteSequence
		if rc.notes {
			seq = chordSequence(rc.blockSize)
		}

		if err := p.SetProcessing(true); err != nil {
			return err
		}
		fmt.Printf("\nRendering %d blocks of %d samples:\n", rc.blocks, rc.blockSize)
		for i := 0; i < rc.blocks; i++ {
			res, err := s.render(seq.next())
			if err != nil {
				log.Warn("block failed", zap.Int("block", i), zap.Error(err))
				continue
			}
			fmt.Printf("  block %4d  peak %7.2f dBFS  rms %.4f\n", i, res.analysis.PeakDB(), res.analysis.RMS)
			for _, e := range res.events {
				fmt.Printf("             %s\n", e)
			}
		}
		if err := p.SetProcessing(false); err != nil {
			return err
		}
		fmt.Printf("\n%s", s.profiler.Report(rc.blockSize))
	}

	if rc.stateOut != "" {
		blob, err := p.State()
		if err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		defer blob.Release()
		if err := os.WriteFile(rc.stateOut, blob.Bytes(), 0644); err != nil {
			return fmt.Errorf("write state: %w", err)
		}
		fmt.Printf("\nWrote %d bytes of state to %s\n", blob.Len(), rc.stateOut)
	}
	return nil
}

func describe(p *host.Plugin) {
	d := p.Descriptor()
	io := p.IOConfig()

	fmt.Printf("Plugin:  %s\n", d.Name)
	fmt.Printf("Vendor:  %s\n", d.Vendor)
	fmt.Printf("Version: %s\n", d.Version)
	fmt.Printf("ID:      %s\n", d.ID)
	fmt.Printf("Latency: %d samples\n", d.Latency)
	fmt.Printf("Audio:   in %v, out %v\n", io.AudioInputs, io.AudioOutputs)
	fmt.Printf("Events:  in %d, out %d\n", io.EventInputs, io.EventOutputs)

	fmt.Printf("\nParameters:\n")
	for _, pd := range p.Parameters() {
		var flags []string
		if pd.Flags.IsAutomatable() {
			flags = append(flags, "automate")
		}
		if pd.Flags.IsReadOnly() {
			flags = append(flags, "read-only")
		}
		if pd.Flags.IsHidden() {
			flags = append(flags, "hidden")
		}
		if pd.Flags.IsWrapAround() {
			flags = append(flags, "wrap")
		}
		fmt.Printf("  %3d  %-16s %.3f  %-10s %s\n", pd.ID, pd.Name, pd.Value, pd.Formatted, strings.Join(flags, ","))
	}
}

// parseAssignments parses "ID=VALUE,ID2=VALUE2".
func parseAssignments(s string) (map[uint32]float64, error) {
	out := make(map[uint32]float64)
	for _, kv := range strings.Split(s, ",") {
		parts := strings.SplitN(strings.TrimSpace(kv), "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid assignment %q", kv)
		}
		id, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter id %q: %w", parts[0], err)
		}
		v, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", parts[1], err)
		}
		out[uint32(id)] = v
	}
	return out, nil
}
