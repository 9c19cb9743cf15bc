package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/christianacho/espresso/internal/profile"
	"github.com/christianacho/espresso/plugin/ai"
	"github.com/christianacho/espresso/plugin/ai/braindump"
	"github.com/christianacho/espresso/server"
	"github.com/christianacho/espresso/store"
	"github.com/christianacho/espresso/store/db"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:   "espresso",
		Short: "Turn brain dumps into calendar events.",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if cfg := viper.GetString("config"); cfg != "" {
				viper.SetConfigFile(cfg)
				if err := viper.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read config %s: %w", cfg, err)
				}
			}
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 5001)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-format", "text")
	viper.SetDefault("cors-origins", "http://localhost:3000")

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to a yaml/toml/json config file")
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 5001, "port of server")
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "database driver (sqlite or postgres)")
	flags.String("dsn", "", "database source name")
	flags.String("cors-origins", "http://localhost:3000", "comma separated origins allowed to call the API")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.String("ai-provider", "", "LLM provider (openai or deepseek)")
	flags.String("ai-model", "", "LLM model")
	flags.Float32("ai-temperature", 0.3, "LLM sampling temperature, 0 allowed")
	flags.Float64("rate-limit", 2, "oracle requests per second allowed per client")
	flags.Int("rate-burst", 5, "oracle request burst allowed per client")

	for _, name := range []string{
		"config", "mode", "addr", "port", "data", "driver", "dsn", "cors-origins",
		"log-level", "log-format", "ai-provider", "ai-model", "ai-temperature", "rate-limit", "rate-burst",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("espresso")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd, newExtractCmd(), newDatesCmd())
}

// loadProfile reads flags, environment and the optional config file.
func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:               viper.GetString("mode"),
		Addr:               viper.GetString("addr"),
		Port:               viper.GetInt("port"),
		Data:               viper.GetString("data"),
		Driver:             viper.GetString("driver"),
		DSN:                viper.GetString("dsn"),
		Version:            version,
		CORSOrigins:        splitList(viper.GetString("cors-origins")),
		LogLevel:           viper.GetString("log-level"),
		LogFormat:          viper.GetString("log-format"),
		AILLMProvider:      viper.GetString("ai-provider"),
		AILLMModel:         viper.GetString("ai-model"),
		RateLimitPerSecond: viper.GetFloat64("rate-limit"),
		RateLimitBurst:     viper.GetInt("rate-burst"),
	}
	if viper.IsSet("ai-temperature") {
		t := float32(viper.GetFloat64("ai-temperature"))
		p.AITemperature = &t
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func newExtractor(p *profile.Profile, logger *slog.Logger) (*braindump.Extractor, error) {
	cfg := ai.NewConfigFromProfile(p)
	if !cfg.Enabled {
		logger.Warn("no LLM API key configured, every request will use the fallback")
	}
	return braindump.NewFromConfig(cfg, braindump.WithLogger(logger))
}

func serve(ctx context.Context) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}
	logger := server.NewLogger(os.Stderr, p)
	slog.SetDefault(logger)

	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		return fmt.Errorf("failed to create db driver: %w", err)
	}
	storeInstance := store.New(dbDriver, p)
	if err := storeInstance.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	extractor, err := newExtractor(p, logger)
	if err != nil {
		return err
	}
	s, err := server.NewServer(ctx, p, storeInstance, extractor, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown(context.Background())
	})

	printGreetings(p)
	return g.Wait()
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("espresso %s started successfully!\n", p.Version)
	fmt.Printf("Data directory: %s\n", p.Data)
	fmt.Printf("Database driver: %s\n", p.Driver)
	fmt.Printf("Mode: %s\n", p.Mode)
	fmt.Printf("Listening on %s:%d\n", p.Addr, p.Port)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
