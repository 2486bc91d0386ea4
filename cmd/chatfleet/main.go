// ABOUTME: Entry point for chatfleet, a fleet of chat bots driven by whispered commands
// ABOUTME: Runs the master and its slaves, lists registered slaves, prints derived credentials

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"

	"github.com/2389/chatfleet/internal/auth"
	"github.com/2389/chatfleet/internal/config"
	"github.com/2389/chatfleet/internal/fleet"
	"github.com/2389/chatfleet/internal/store"
	"github.com/2389/chatfleet/internal/transport"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
       _           _    __ _           _
   ___| |__   __ _| |_ / _| | ___  ___| |_
  / __| '_ \ / _' | __| |_| |/ _ \/ _ \ __|
 | (__| | | | (_| | |_|  _| |  __/  __/ |_
  \___|_| |_|\__,_|\__|_| |_|\___|\___|\__|
`

// getConfigPath returns the path to the fleet config file.
// Priority: CHATFLEET_CONFIG env var > XDG_CONFIG_HOME/chatfleet/fleet.yaml > ~/.config/chatfleet/fleet.yaml
func getConfigPath() string {
	if envPath := os.Getenv("CHATFLEET_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "fleet.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "chatfleet", "fleet.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: chatfleet <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                  Connect the master and all registered slaves")
		fmt.Println("  slaves                 List registered slave identities")
		fmt.Println("  credential IDENTITY    Print the login credential for an identity")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "slaves":
		err = runSlaves(ctx)
	case "credential":
		err = runCredential(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := installLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Server:    %s\n", cfg.Server.Addr())
	green.Print("    ▶ ")
	fmt.Printf("Master:    ")
	cyan.Println(cfg.Master.Identity)
	green.Print("    ▶ ")
	fmt.Printf("Registry:  %s\n", describeRegistry(cfg.Registry))
	green.Print("    ▶ ")
	fmt.Printf("Trusted:   %d players\n", len(cfg.AllowList))
	if cfg.Agents.RetryMaxDelay > cfg.Agents.RetryDelay {
		green.Print("    ▶ ")
		fmt.Printf("Retry:     %s up to %s\n", cfg.Agents.RetryDelay, cfg.Agents.RetryMaxDelay)
	} else {
		green.Print("    ▶ ")
		fmt.Printf("Retry:     every %s\n", cfg.Agents.RetryDelay)
	}
	fmt.Println()

	logger.Info("starting chatfleet",
		"config", configPath,
		"server", cfg.Server.Addr(),
		"master", cfg.Master.Identity,
		"registry", cfg.Registry.Driver,
	)

	registry, err := openRegistry(ctx, cfg.Registry)
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	defer registry.Close()

	dialer := transport.NewTCPDialer(transport.TCPDialerParams{
		Addr:        cfg.Server.Addr(),
		DialTimeout: cfg.Agents.DialTimeout,
		SendRate:    cfg.Agents.SendRate,
		SendBurst:   cfg.Agents.SendBurst,
		Logger:      logger,
	})

	f, err := fleet.New(fleet.Params{
		MasterIdentity: cfg.Master.Identity,
		AllowList:      cfg.AllowList,
		Credentials:    auth.NewCredentials(cfg.Master.Identity, cfg.Master.Credential, cfg.Auth.SharedSecret),
		Registry:       registry,
		Dialer:         dialer,
		RetryDelay:     cfg.Agents.RetryDelay,
		MaxRetryDelay:  cfg.Agents.RetryMaxDelay,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("creating fleet: %w", err)
	}

	return f.Run(ctx)
}

func runSlaves(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	installLogger(config.LoggingConfig{Level: "warn", Format: cfg.Logging.Format})

	registry, err := openRegistry(ctx, cfg.Registry)
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	defer registry.Close()

	slaves, err := registry.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing slaves: %w", err)
	}

	if len(slaves) == 0 {
		fmt.Println("No slaves registered.")
		return nil
	}
	for _, identity := range slaves {
		fmt.Println(identity)
	}
	color.New(color.FgHiBlack).Printf("%d registered\n", len(slaves))
	return nil
}

func runCredential(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: chatfleet credential IDENTITY")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	creds := auth.NewCredentials(cfg.Master.Identity, cfg.Master.Credential, cfg.Auth.SharedSecret)
	fmt.Println(creds.For(args[0]))
	return nil
}

// openRegistry connects to the configured slave registry backend.
func openRegistry(ctx context.Context, cfg config.RegistryConfig) (store.Registry, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		return store.NewRedisRegistry(ctx, &redis.Options{Addr: cfg.RedisAddr}, cfg.RedisKey)
	default:
		return store.NewSQLiteRegistry(cfg.Path)
	}
}

func describeRegistry(cfg config.RegistryConfig) string {
	if cfg.Driver == config.DriverRedis {
		return fmt.Sprintf("redis %s (%s)", cfg.RedisAddr, cfg.RedisKey)
	}
	return "sqlite " + cfg.Path
}
