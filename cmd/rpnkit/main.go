// Package main is the entry point for the rpnkit calculator.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rpnkit/rpnkit/pkg/api"
	"github.com/rpnkit/rpnkit/pkg/config"
	"github.com/rpnkit/rpnkit/pkg/session"
	"github.com/rpnkit/rpnkit/pkg/store"
	"github.com/rpnkit/rpnkit/web"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:          "rpnkit",
	Short:        "RPN expression calculator",
	Long:         "An interactive calculator that resolves infix math expressions through reverse Polish notation, with exact integer arithmetic, variables, and a fixed math function library.",
	SilenceUsage: true,
	RunE:         runREPL,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the calculator HTTP API and web UI",
	RunE:  runServe,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("rpnkit version {{.Version}}\n")

	rootCmd.PersistentFlags().String("config", "", "Config file path (default ~/.rpnkit.yaml, env RPNKIT_CONFIG)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env RPNKIT_LOG_LEVEL)")

	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress the startup banner")
	rootCmd.Flags().StringP("eval", "e", "", "Evaluate a single expression and exit")

	serveCmd.Flags().String("host", "", "Bind address (default 127.0.0.1, env HOST)")
	serveCmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	serveCmd.Flags().Duration("session-ttl", 0, "Idle session expiry (default 30m)")

	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config file and applies the log level overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := os.Getenv("RPNKIT_CONFIG")
	if v, _ := cmd.Flags().GetString("config"); v != "" {
		path = v
	}

	var cfg config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return cfg, err
	}

	if v := os.Getenv("RPNKIT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	logrus.SetLevel(cfg.Level())

	return cfg, nil
}

// newSession builds the long-lived session with the configured presets.
func newSession(cfg config.Config) *session.Session {
	sess := session.New(cfg.RPNLimits())
	env := sess.Environment()
	for name, v := range cfg.Variables {
		env.SetFloat(name, v)
	}
	return sess
}

func runREPL(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sess := newSession(cfg)

	if expr, _ := cmd.Flags().GetString("eval"); expr != "" {
		result, err := sess.Eval(expr)
		if err != nil {
			return err
		}
		fmt.Println(result)
		return nil
	}

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		fmt.Printf("rpnkit v.%s - RPN expression calculator.\n", version)
		fmt.Println("Type quit to exit.")
	}

	historyFile, err := config.ExpandHome(cfg.HistoryFile)
	if err != nil {
		historyFile = ""
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("initializing line editor: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			fmt.Println("quit")
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") {
			break
		}

		result, err := sess.Eval(line)
		if err != nil {
			fmt.Printf("Error: %s\n", err)
			continue
		}
		fmt.Println(result)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	host := envOrDefault("HOST", cfg.Server.Host)
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		host = v
	}

	port := cfg.Server.Port
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		port = v
	}

	ttl := cfg.Server.SessionTTL.Std()
	if v, _ := cmd.Flags().GetDuration("session-ttl"); v != 0 {
		ttl = v
	}

	addr := fmt.Sprintf("%s:%d", host, port)

	st := store.New(cfg.RPNLimits(), ttl)
	server := api.New(st, cfg)

	// Register the web UI (non-fatal if template parsing fails)
	func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.Warnf("web UI disabled due to template error: %v", r)
			}
		}()
		ui := web.New(st, cfg)
		ui.Register(server.App())
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st.StartSweeper(ctx, sweepInterval(ttl))

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logrus.Info("shutting down")
		cancel()
		if err := server.Shutdown(); err != nil {
			logrus.Errorf("shutdown: %v", err)
		}
	}()

	logrus.Infof("rpnkit API listening on %s (session ttl %s)", addr, ttl)
	return server.Listen(addr)
}

// sweepInterval picks how often to scan for idle sessions.
func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	interval := ttl / 10
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
