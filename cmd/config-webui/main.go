// Command config-webui serves the web-based configuration editor for
// the proxy's provider config and dotenv secrets.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/router-for-me/ProxyConfigUI/internal/api"
	"github.com/router-for-me/ProxyConfigUI/internal/logging"
	"github.com/router-for-me/ProxyConfigUI/internal/session"
	"github.com/router-for-me/ProxyConfigUI/internal/store"
	"github.com/router-for-me/ProxyConfigUI/internal/watcher"
)

const defaultPort = 8099

func main() {
	configPath := flag.String("config", "config.yaml", "provider configuration file")
	envPath := flag.String("env", ".env", "dotenv secrets file")
	secretPath := flag.String("secret", ".webui_secret_key", "session secret file")
	logPath := flag.String("log", "logs/config-webui.log", "service log file")
	flag.Parse()

	// .env values feed the process environment too, so WEBUI_* settings
	// can live alongside the proxy secrets.
	_ = godotenv.Load(*envPath)

	debug := truthy(os.Getenv("WEBUI_DEBUG"))
	logging.Init(logging.Options{FilePath: *logPath, Debug: debug})

	st := store.New(*configPath, *envPath)
	if err := st.Load(); err != nil {
		log.WithError(err).Warn("initial configuration load had errors, continuing with defaults")
	}

	secret, err := session.LoadOrCreateSecret(*secretPath)
	if err != nil {
		log.WithError(err).Fatal("failed to resolve session secret")
	}
	sessions, err := session.NewManager(secret)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize session manager")
	}

	server := api.NewServer(api.Options{
		Host:        os.Getenv("WEBUI_HOST"),
		Port:        portFromEnv(),
		Debug:       debug,
		LogFilePath: *logPath,
	}, st, sessions)

	fileWatcher, err := watcher.New(st)
	if err != nil {
		log.WithError(err).Fatal("failed to start file watcher")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return server.Run(groupCtx) })
	group.Go(func() error {
		if errRun := fileWatcher.Run(groupCtx); errRun != nil && !isCancel(errRun) {
			return errRun
		}
		return nil
	})

	if errWait := group.Wait(); errWait != nil && !isCancel(errWait) {
		log.WithError(errWait).Fatal("config web UI exited with error")
	}
}

func portFromEnv() int {
	raw := strings.TrimSpace(os.Getenv("WEBUI_PORT"))
	if raw == "" {
		return defaultPort
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		log.WithField("value", raw).Warn("invalid WEBUI_PORT, using default")
		return defaultPort
	}
	return port
}

func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes", "y":
		return true
	default:
		return false
	}
}

func isCancel(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}
