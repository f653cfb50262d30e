package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/justyntemme/vst3host/pkg/debug"
	"github.com/justyntemme/vst3host/pkg/host"
)

// mcpHost serializes tool calls against one loaded plugin.
type mcpHost struct {
	mu      sync.Mutex
	plugin  *host.Plugin
	session *session
	log     *zap.Logger
}

type pluginSummary struct {
	Name         string  `json:"name"`
	Vendor       string  `json:"vendor"`
	Version      string  `json:"version"`
	ID           string  `json:"id"`
	Latency      uint32  `json:"latency"`
	AudioInputs  []int32 `json:"audioInputs"`
	AudioOutputs []int32 `json:"audioOutputs"`
	EventInputs  int     `json:"eventInputs"`
	EventOutputs int     `json:"eventOutputs"`
	State        string  `json:"state"`
}

type renderSummary struct {
	Blocks   int      `json:"blocks"`
	PeakDB   float64  `json:"peakDb"`
	RMS      float32  `json:"rms"`
	Clipped  int      `json:"clippedSamples"`
	Events   []string `json:"events,omitempty"`
	Failures int      `json:"failures,omitempty"`
}

func runMCP(path string, sampleRate float64, blockSize int, opts ...host.Option) error {
	p, err := host.Load(path, opts...)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	defer p.Destroy()

	h := &mcpHost{
		plugin:  p,
		session: newSession(p, sampleRate, blockSize),
		log:     host.Logger().Named("mcp"),
	}

	s := server.NewMCPServer(
		"vst3host",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("describe_plugin",
		mcp.WithDescription("Returns the loaded plugin's name, vendor, version, latency and bus layout."),
	), h.describe)

	s.AddTool(mcp.NewTool("list_parameters",
		mcp.WithDescription("Lists every parameter with its id, normalized value and display string."),
	), h.listParameters)

	s.AddTool(mcp.NewTool("get_parameter",
		mcp.WithDescription("Returns one parameter by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("The parameter id.")),
	), h.getParameter)

	s.AddTool(mcp.NewTool("set_parameter",
		mcp.WithDescription("Sets a parameter to a normalized value. The processor sees it on the next rendered block."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("The parameter id.")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("The normalized value (0.0-1.0).")),
	), h.setParameter)

	s.AddTool(mcp.NewTool("render_blocks",
		mcp.WithDescription("Renders blocks of a 440 Hz test tone through the plugin and reports the output level and plugin events."),
		mcp.WithNumber("blocks", mcp.Required(), mcp.Description("Number of blocks to render (1-1000).")),
		mcp.WithBoolean("notes", mcp.Description("Strike a C major chord in the first block.")),
	), h.renderBlocks)

	s.AddTool(mcp.NewTool("save_state",
		mcp.WithDescription("Returns the plugin state as base64."),
	), h.saveState)

	s.AddTool(mcp.NewTool("load_state",
		mcp.WithDescription("Restores plugin state from base64 produced by save_state."),
		mcp.WithString("state", mcp.Required(), mcp.Description("The base64 encoded state.")),
	), h.loadState)

	h.log.Info("serving MCP on stdio", zap.String("plugin", path))
	return server.ServeStdio(s)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	asJson, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result to JSON: %v", err)
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

func (h *mcpHost) describe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	d := h.plugin.Descriptor()
	io := h.plugin.IOConfig()
	return jsonResult(pluginSummary{
		Name:         d.Name,
		Vendor:       d.Vendor,
		Version:      d.Version,
		ID:           d.ID,
		Latency:      h.plugin.Latency(),
		AudioInputs:  io.AudioInputs,
		AudioOutputs: io.AudioOutputs,
		EventInputs:  io.EventInputs,
		EventOutputs: io.EventOutputs,
		State:        h.plugin.Lifecycle().String(),
	})
}

func (h *mcpHost) listParameters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return jsonResult(h.plugin.Parameters())
}

func (h *mcpHost) getParameter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	d := h.plugin.Parameter(uint32(id))
	if d.IsZero() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown parameter %d", id)), nil
	}
	return jsonResult(d)
}

func (h *mcpHost) setParameter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireFloat("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.plugin.SetParameterInController(uint32(id), value); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !h.plugin.SetParameterFromUI(uint32(id), value) {
		return mcp.NewToolResultError("event queue full"), nil
	}
	h.log.Debug("parameter set", zap.Int("id", id), zap.Float64("value", value))
	return jsonResult(h.plugin.Parameter(uint32(id)))
}

func (h *mcpHost) renderBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blocks, err := request.RequireInt("blocks")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if blocks < 1 || blocks > 1000 {
		return mcp.NewToolResultError("blocks must be between 1 and 1000"), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var seq *noteSequence
	if request.GetBool("notes", false) {
		seq = chordSequence(h.session.blockSize)
	}

	if err := h.plugin.SetProcessing(true); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer h.plugin.SetProcessing(false)

	var sum renderSummary
	var peak debug.AnalysisResult
	for i := 0; i < blocks; i++ {
		if ctx.Err() != nil {
			break
		}
		res, err := h.session.render(seq.next())
		if err != nil {
			sum.Failures++
			continue
		}
		sum.Blocks++
		peak.Peak = max(peak.Peak, res.analysis.Peak)
		sum.RMS = max(sum.RMS, res.analysis.RMS)
		sum.Clipped += res.analysis.ClippedSamples
		for _, e := range res.events {
			sum.Events = append(sum.Events, e.String())
		}
	}
	sum.PeakDB = max(peak.PeakDB(), -120)
	return jsonResult(sum)
}

func (h *mcpHost) saveState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	blob, err := h.plugin.State()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer blob.Release()
	return mcp.NewToolResultText(base64.StdEncoding.EncodeToString(blob.Bytes())), nil
}

func (h *mcpHost) loadState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	encoded, err := request.RequireString("state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid base64: %v", err)), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.plugin.SetState(data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Restored %d bytes of state.", len(data))), nil
}
