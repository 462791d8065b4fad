// Command seabattle runs the two-player battleship server.
//
// Commands:
//  1. "server" (default) – HTTP server with the WebSocket game endpoint, read-only REST API and an /mcp endpoint
//  2. "stdio-mcp" – MCP stdio server backed by an external API or an internal loopback server
//  3. "validate" – checks fleet layout JSON files
//  4. "random-board" – prints a valid random fleet layout
//  5. "bot" – plays one match against a running server
//
// Settings come from defaults, an optional YAML file, .env, environment
// variables and flags, in increasing order of precedence.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/seabattle/api"
	"github.com/wricardo/mcp-training/seabattle/bot"
	"github.com/wricardo/mcp-training/seabattle/config"
	"github.com/wricardo/mcp-training/seabattle/game/board"
	"github.com/wricardo/mcp-training/seabattle/game/service"
	"github.com/wricardo/mcp-training/seabattle/game/session"
	"github.com/wricardo/mcp-training/seabattle/logging"
	"github.com/wricardo/mcp-training/seabattle/transport/mcp"
	"github.com/wricardo/mcp-training/seabattle/transport/websocket"
	"github.com/wricardo/mcp-training/seabattle/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Sea Battle Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configFlags are shared by every command that starts a server.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file", Sources: cli.EnvVars("SEABATTLE_CONFIG")},
		&cli.StringFlag{Name: "host", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
		&cli.IntFlag{Name: "port", Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
		&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", Sources: cli.EnvVars("LOG_LEVEL")},
		&cli.StringFlag{Name: "log-format", Usage: "console or json", Sources: cli.EnvVars("LOG_FORMAT")},
		&cli.StringSliceFlag{Name: "allowed-origin", Usage: "WebSocket origin to accept (repeatable, default any)", Sources: cli.EnvVars("ALLOWED_ORIGINS")},
		&cli.DurationFlag{Name: "idle-room-timeout", Usage: "Close rooms idle for this long (0 disables)", Sources: cli.EnvVars("IDLE_ROOM_TIMEOUT")},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
	}
}

func newApp() *cli.Command {
	serverCmd := &cli.Command{
		Name:    "server",
		Aliases: []string{"http"},
		Usage:   "Run the HTTP server with WebSocket, REST and MCP endpoints",
		Action:  runServer,
	}

	return &cli.Command{
		Name:    "seabattle",
		Usage:   AppName,
		Version: Version,
		Flags:   configFlags(),
		Action:  runServer,
		Commands: []*cli.Command{
			serverCmd,
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run an MCP stdio server backed by the REST API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "External API to use when reachable", Sources: cli.EnvVars("SEABATTLE_API_URL")},
				},
				Action: runStdioMCP,
			},
			{
				Name:      "validate",
				Usage:     "Validate fleet layout JSON files",
				ArgsUsage: "FILE...",
				Action:    runValidate,
			},
			{
				Name:  "random-board",
				Usage: "Print a valid random fleet layout",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "seed", Usage: "Seed for a reproducible layout (0 picks one)"},
					&cli.BoolFlag{Name: "json", Usage: "Print the board as a JSON array"},
				},
				Action: runRandomBoard,
			},
			{
				Name:  "bot",
				Usage: "Play one match as an automated player",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Value: "ws://localhost:8080/ws", Usage: "WebSocket endpoint", Sources: cli.EnvVars("SEABATTLE_WS_URL")},
					&cli.StringFlag{Name: "room", Usage: "Room code to join (empty creates a room)"},
					&cli.IntFlag{Name: "seed", Usage: "Seed for fleet and shots (0 picks one)"},
					&cli.DurationFlag{Name: "settle", Value: 50 * time.Millisecond, Usage: "Pause before each shot"},
				},
				Action: runBot,
			},
		},
	}
}

// loadConfig reads the config file and applies flags and environment
// variables that were explicitly set.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("debug") {
		cfg.Logging.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("log-level") {
		cfg.Logging.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Logging.Format = cmd.String("log-format")
	}
	if cmd.IsSet("allowed-origin") {
		cfg.Server.AllowedOrigins = cmd.StringSlice("allowed-origin")
	}
	if cmd.IsSet("idle-room-timeout") {
		cfg.Game.IdleRoomTimeout = cmd.Duration("idle-room-timeout")
	}
	if cmd.IsSet("ngrok") {
		cfg.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		cfg.Ngrok.Authtoken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newHandler wires the registry, game service, hub and HTTP routes. The
// caller runs the returned hub.
func newHandler(cfg *config.Config, baseURL string, log *zap.Logger) (http.Handler, *websocket.Hub) {
	rooms := session.NewRegistry()
	gameService := service.NewGameService(rooms, log.Named("service"))

	hub := websocket.NewHub(gameService, log.Named("ws"), websocket.Options{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxMessageSize:  cfg.Server.MaxMessageSize,
		SendBuffer:      cfg.Server.SendBuffer,
		IdleRoomTimeout: cfg.Game.IdleRoomTimeout,
		SweepInterval:   cfg.Game.SweepInterval,
	})

	apiServer := api.NewServer(gameService, hub, log.Named("api"))
	apiServer.Mount("/mcp", mcp.NewClient(baseURL))
	return apiServer, hub
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Addr()
	handler, hub := newHandler(cfg, "http://"+addr, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("websocket", "ws://"+addr+"/ws"),
			zap.String("api", "http://"+addr+"/api"),
			zap.String("mcp", "http://"+addr+"/mcp"),
			zap.String("version", Version))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveNgrok(ctx, cfg.Ngrok, handler, log.Named("ngrok"))
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown", zap.Error(err))
	}

	wg.Wait()
	log.Info("server stopped")
	return nil
}

// serveNgrok exposes handler through an ngrok tunnel until ctx is done.
func serveNgrok(ctx context.Context, cfg config.NgrokConfig, handler http.Handler, log *zap.Logger) {
	if cfg.Authtoken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.Authtoken))
	if err != nil {
		log.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	url := tun.URL()
	log.Info("ngrok tunnel established",
		zap.String("url", url),
		zap.String("websocket", url+"/ws"),
		zap.String("mcp", url+"/mcp"))

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		log.Error("ngrok server error", zap.Error(err))
	}
	log.Info("ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// it answers; otherwise it starts an internal server on a random loopback
// port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseURL := cmd.String("api-url")
	if !apiReachable(ctx, baseURL) {
		log.Info("no external API server found, starting internal HTTP server", zap.String("checked", baseURL))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		handler, hub := newHandler(cfg, baseURL, log)
		go hub.Run(ctx)

		internal := &http.Server{Handler: handler}
		go func() {
			if err := internal.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer internal.Close()
	}

	log.Info("MCP stdio server ready", zap.String("api", baseURL))
	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return errors.New("validate: at least one FILE is required")
	}

	results := make([]validate.ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validate.ValidateFile(file))
	}
	if !validate.Report(cmd.Root().Writer, results) {
		return errors.New("some boards have errors")
	}
	return nil
}

func runRandomBoard(ctx context.Context, cmd *cli.Command) error {
	seed := uint64(cmd.Int("seed"))
	if seed == 0 {
		seed = rand.Uint64()
	}
	b := board.RandomFleet(rand.New(rand.NewPCG(seed, seed)))

	w := cmd.Root().Writer
	if cmd.Bool("json") {
		return json.NewEncoder(w).Encode(map[string]any{"board": b.Rows()})
	}
	_, err := fmt.Fprintf(w, "%s\n", b.String())
	return err
}

func runBot(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := cmd.Root().Writer
	b := bot.New(bot.Options{
		URL:      cmd.String("url"),
		RoomCode: cmd.String("room"),
		Seed:     uint64(cmd.Int("seed")),
		Settle:   cmd.Duration("settle"),
		OnRoom: func(code string) {
			fmt.Fprintf(w, "Room %s created, waiting for an opponent\n", code)
		},
	}, log.Named("bot"))

	result, err := b.Play(ctx)
	if err != nil {
		return err
	}
	outcome := "lost"
	if result.Won {
		outcome = "won"
	}
	_, err = fmt.Fprintf(w, "Room %s: %s (%s) with %d hits from %d shots\n",
		result.RoomCode, outcome, result.Reason, result.Hits, result.Shots)
	return err
}
