// Package main is the entry point for questforge.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/samdwyer/questforge/internal/config"
	"github.com/samdwyer/questforge/internal/logger"
	"github.com/samdwyer/questforge/internal/telemetry"
	"github.com/samdwyer/questforge/internal/world"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, cfg *config.Config, args []string) error
}

var commands = []command{
	{"generate", "generate one map and print it", runGenerate},
	{"patch", "generate a map and apply patches to it", runPatch},
	{"suite", "run the reliability suite", runSuite},
	{"replay", "re-run failures recorded by a suite", runReplay},
	{"serve", "serve the HTTP API", runServe},
	{"view", "preview maps in the terminal", runView},
	{"schema", "print or write JSON Schemas", runSchema},
}

// errFailed signals a command that ran but whose outcome is a failure.
// Its message has already been printed.
var errFailed = errors.New("failed")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("questforge", flag.ContinueOnError)
	configPath := global.String("config", envOr("QUESTFORGE_CONFIG", "questforge.yaml"), "path to YAML config")
	global.Usage = func() { usage(global) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		usage(global)
		return 2
	}

	// Load .env file for local development
	envErr := godotenv.Load()

	// Set up OTEL environment variables from our .env variables
	setupOTelEnv()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", *configPath, err)
		return 1
	}
	cfg.ApplyEnv()

	if err := logger.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		return 1
	}
	if envErr != nil {
		// Not fatal - env vars might be set directly
		logger.Debug("Note: .env file not loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(ctx, telemetry.Options{
			ServiceVersion: world.Version,
			SampleRatio:    cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			logger.Warning("Telemetry setup failed, continuing without tracing", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error("Error shutting down telemetry", "error", err)
				}
			}()
		}
	}

	name, rest := global.Arg(0), global.Args()[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(ctx, cfg, rest); err != nil {
			if !errors.Is(err, errFailed) && !errors.Is(err, flag.ErrHelp) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			return 1
		}
		return 0
	}

	fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", name)
	usage(global)
	return 2
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "Usage: questforge [-config path] <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Global flags:")
	fs.PrintDefaults()
}

// setupOTelEnv configures OTEL environment variables from our custom env vars.
func setupOTelEnv() {
	apiKey := os.Getenv("HONEYCOMB_QUESTFORGE_API_KEY")
	if apiKey == "" {
		return
	}
	dataset := os.Getenv("HONEYCOMB_QUESTFORGE_DATASET")
	if dataset == "" {
		dataset = "questforge" // default dataset name
	}
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")
	os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
		fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
