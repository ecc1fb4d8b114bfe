package radio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/zachfi/zkit/pkg/tracing"

	"github.com/zachfi/radiomcp/pkg/player"
	"github.com/zachfi/radiomcp/pkg/radiobrowser"
	"github.com/zachfi/radiomcp/pkg/vlc"
)

// toolFunc returns the value to report. A non-nil value alongside an error
// is reported as a structured failure.
type toolFunc func(ctx context.Context, req mcp.CallToolRequest, logger *slog.Logger) (any, error)

// rcReply is what every VLC rc tool returns.
type rcReply struct {
	OK       bool   `json:"ok"`
	Target   string `json:"target"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (r *Radio) registerTools() {
	r.addTool(mcp.NewTool("find_station",
		mcp.WithDescription("Search Radio Browser for stations and return a list of candidates. "+
			"Prefer 'url_resolved' if present; otherwise use 'url' and call get_playable_stream."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query", mcp.Required(), mcp.Description("Station name to search for.")),
		mcp.WithString("country", mcp.Description("Only stations from this country.")),
		mcp.WithString("tag", mcp.Description("Only stations with this tag, e.g. jazz.")),
		mcp.WithNumber("limit", mcp.DefaultNumber(radiobrowser.DefaultLimit), mcp.Min(1), mcp.Max(radiobrowser.MaxLimit),
			mcp.Description("Maximum number of stations.")),
	), r.findStation)

	r.addTool(mcp.NewTool("get_playable_stream",
		mcp.WithDescription("Resolve a station URL (playlist/redirect) to a direct stream if possible. "+
			"Call this before play() if you are not sure the URL is a raw audio stream."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("url", mcp.Required(), mcp.Description("Station or playlist URL.")),
	), r.getPlayableStream)

	r.addTool(mcp.NewTool("now_playing",
		mcp.WithDescription("Read the ICY metadata of a stream and return the current title."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("url", mcp.Required(), mcp.Description("Stream or playlist URL.")),
	), r.nowPlaying)

	r.addTool(mcp.NewTool("play",
		mcp.WithDescription("Play a stream URL. backend=auto tries the default handler (via .m3u) on desktops "+
			"and falls back to VLC; default always uses the OS handler; vlc always launches VLC."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Stream URL.")),
		mcp.WithString("backend", mcp.DefaultString(string(player.BackendAuto)),
			mcp.Enum(string(player.BackendAuto), string(player.BackendDefault), string(player.BackendVLC))),
		mcp.WithBoolean("force_playlist", mcp.DefaultBool(true),
			mcp.Description("Open a temporary .m3u instead of the raw URL with the default handler.")),
	), r.play)

	r.addTool(mcp.NewTool("play_default",
		mcp.WithDescription("Open a stream with the OS default handler. By default a .m3u is written and opened, "+
			"which is more likely to start a media player than a browser."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Stream URL.")),
		mcp.WithBoolean("force_playlist", mcp.DefaultBool(true)),
	), r.playDefault)

	r.addTool(mcp.NewTool("play_vlc",
		mcp.WithDescription("Launch VLC to play the given URL and return immediately. "+
			"with_rc exposes VLC's rc interface on rc_host:rc_port so the vlc_* tools can control it."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Stream URL.")),
		mcp.WithString("vlc_path", mcp.Description("VLC executable to use.")),
		mcp.WithArray("extra_args", mcp.Items(map[string]any{"type": "string"}),
			mcp.Description(`Extra VLC arguments, e.g. ["--one-instance","--play-and-exit"].`)),
		mcp.WithBoolean("with_rc", mcp.DefaultBool(false)),
		mcp.WithString("rc_host", mcp.DefaultString(r.cfg.VLC.Host)),
		mcp.WithNumber("rc_port", mcp.DefaultNumber(float64(r.cfg.VLC.Port))),
	), r.playVLC)

	r.addTool(r.rcTool("vlc_pause", "Toggle pause/play on VLC (rc)."), r.rc(func(ctx context.Context, c *vlc.Client, _ mcp.CallToolRequest) (string, error) {
		return c.Pause(ctx)
	}))

	r.addTool(r.rcTool("vlc_stop", "Stop playback in VLC (rc)."), r.rc(func(ctx context.Context, c *vlc.Client, _ mcp.CallToolRequest) (string, error) {
		return c.Stop(ctx)
	}))

	r.addTool(r.rcTool("vlc_status", "Return VLC rc 'status' output.", mcp.WithReadOnlyHintAnnotation(true)),
		r.rc(func(ctx context.Context, c *vlc.Client, _ mcp.CallToolRequest) (string, error) {
			return c.Status(ctx)
		}))

	r.addTool(r.rcTool("vlc_volume_set", "Set VLC volume in percent (0-100), mapped onto VLC's 0-512 scale.",
		mcp.WithNumber("percent", mcp.Required(), mcp.Min(vlc.MinVolume), mcp.Max(vlc.MaxVolume)),
	), r.rc(func(ctx context.Context, c *vlc.Client, req mcp.CallToolRequest) (string, error) {
		percent, err := req.RequireInt("percent")
		if err != nil {
			return "", err
		}
		return c.SetVolume(ctx, percent)
	}))

	r.addTool(r.rcTool("vlc_volume_change", "Change VLC volume by +/- percent. Positive raises, negative lowers.",
		mcp.WithNumber("delta", mcp.Required()),
	), r.rc(func(ctx context.Context, c *vlc.Client, req mcp.CallToolRequest) (string, error) {
		delta, err := req.RequireInt("delta")
		if err != nil {
			return "", err
		}
		return c.ChangeVolume(ctx, delta)
	}))

	r.addTool(mcp.NewTool("check_players",
		mcp.WithDescription("Probe the environment to help choose a playback backend."),
		mcp.WithReadOnlyHintAnnotation(true),
	), r.checkPlayers)
}

// rcTool declares a tool addressed at a VLC rc listener.
func (r *Radio) rcTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append([]mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("rc_host", mcp.DefaultString(r.cfg.VLC.Host), mcp.Description("VLC rc host.")),
		mcp.WithNumber("rc_port", mcp.DefaultNumber(float64(r.cfg.VLC.Port)), mcp.Description("VLC rc port.")),
	}, opts...)
	return mcp.NewTool(name, opts...)
}

func (r *Radio) addTool(tool mcp.Tool, fn toolFunc) {
	r.mcp.AddTool(tool, r.handle(tool.Name, fn))
}

// handle wraps fn with a call ID, a span and metrics.
func (r *Radio) handle(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := r.logger.With("tool", name, "call_id", uuid.NewString())
		ctx, span := r.tracer.Start(ctx, "tool."+name)

		start := time.Now()
		out, err := fn(ctx, req, logger)
		toolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		_ = tracing.ErrHandler(span, err, "tool call failed", logger)

		if err != nil {
			toolCalls.WithLabelValues(name, "error").Inc()
			return failure(out, err), nil
		}

		toolCalls.WithLabelValues(name, "ok").Inc()
		logger.Debug("tool call", "duration", time.Since(start))

		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}

func failure(out any, err error) *mcp.CallToolResult {
	if out == nil {
		return mcp.NewToolResultError(err.Error())
	}

	b, merr := json.MarshalIndent(out, "", "  ")
	if merr != nil {
		return mcp.NewToolResultError(err.Error())
	}

	res := mcp.NewToolResultText(string(b))
	res.IsError = true
	return res
}

func (r *Radio) findStation(ctx context.Context, req mcp.CallToolRequest, _ *slog.Logger) (any, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return nil, err
	}

	stations, err := r.directory.Search(ctx, radiobrowser.SearchParams{
		Name:    query,
		Country: req.GetString("country", ""),
		Tag:     req.GetString("tag", ""),
		Limit:   req.GetInt("limit", radiobrowser.DefaultLimit),
	})
	if err != nil {
		return nil, err
	}
	return stations, nil
}

func (r *Radio) getPlayableStream(ctx context.Context, req mcp.CallToolRequest, _ *slog.Logger) (any, error) {
	u, err := req.RequireString("url")
	if err != nil {
		return nil, err
	}
	res, err := r.resolver.Resolve(ctx, u)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Radio) nowPlaying(ctx context.Context, req mcp.CallToolRequest, logger *slog.Logger) (any, error) {
	u, err := req.RequireString("url")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Resolver.NowPlayingTimeout)
	defer cancel()

	np, err := r.resolver.NowPlaying(ctx, u, logger)
	if err != nil {
		return nil, err
	}
	return np, nil
}

func (r *Radio) play(ctx context.Context, req mcp.CallToolRequest, _ *slog.Logger) (any, error) {
	u, err := req.RequireString("url")
	if err != nil {
		return nil, err
	}

	backend, err := player.ParseBackend(req.GetString("backend", string(player.BackendAuto)))
	if err != nil {
		return nil, err
	}

	return r.launcher.Play(ctx, u, backend, req.GetBool("force_playlist", true))
}

func (r *Radio) playDefault(ctx context.Context, req mcp.CallToolRequest, _ *slog.Logger) (any, error) {
	u, err := req.RequireString("url")
	if err != nil {
		return nil, err
	}
	return r.launcher.OpenDefault(ctx, u, req.GetBool("force_playlist", true))
}

func (r *Radio) playVLC(ctx context.Context, req mcp.CallToolRequest, _ *slog.Logger) (any, error) {
	u, err := req.RequireString("url")
	if err != nil {
		return nil, err
	}

	return r.launcher.PlayVLC(ctx, player.VLCOptions{
		URL:       u,
		Path:      req.GetString("vlc_path", ""),
		ExtraArgs: req.GetStringSlice("extra_args", nil),
		WithRC:    req.GetBool("with_rc", false),
		RCHost:    req.GetString("rc_host", r.cfg.VLC.Host),
		RCPort:    req.GetInt("rc_port", r.cfg.VLC.Port),
	})
}

func (r *Radio) checkPlayers(_ context.Context, _ mcp.CallToolRequest, _ *slog.Logger) (any, error) {
	return r.launcher.Probe(), nil
}

// rc adapts a VLC exchange to a tool. The target comes from rc_host and
// rc_port, falling back to the configured defaults.
func (r *Radio) rc(fn func(ctx context.Context, c *vlc.Client, req mcp.CallToolRequest) (string, error)) toolFunc {
	return func(ctx context.Context, req mcp.CallToolRequest, logger *slog.Logger) (any, error) {
		c := vlc.NewClient(
			req.GetString("rc_host", r.cfg.VLC.Host),
			req.GetInt("rc_port", r.cfg.VLC.Port),
			r.cfg.VLC.Timeout,
		)

		reply := &rcReply{Target: c.Addr}
		resp, err := fn(ctx, c, req)
		if err != nil {
			reply.Response = resp
			reply.Error = err.Error()
			return reply, err
		}

		logger.Debug("vlc rc reply", "target", c.Addr, "bytes", len(resp))
		reply.OK = true
		reply.Response = resp
		return reply, nil
	}
}
