// Moderation console web server for go-modconsole
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/go-while/go-modconsole/internal/apiclient"
	"github.com/go-while/go-modconsole/internal/config"
	"github.com/go-while/go-modconsole/internal/database"
	"github.com/go-while/go-modconsole/internal/logging"
	"github.com/go-while/go-modconsole/internal/web"
)

var (
	// command-line flags
	configFile  string
	webport     int
	webssl      bool
	webcertFile string
	webkeyFile  string
	staticDir   string
	apiBaseURL  string
	sessionDB   string
	logLevel    string
	logFormat   string
	pprofAddr   string
	debug       bool
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&configFile, "config", "", "YAML or JSON config file (flags override its values)")
	flag.IntVar(&webport, "webport", 0, "Web server port (default: 11980 (no ssl) or 19443 (webssl))")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&webcertFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&webkeyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.StringVar(&staticDir, "static", "", "Serve the shell from this directory instead of the embedded files")
	flag.StringVar(&apiBaseURL, "api", "", "Moderation backend base URL (default: "+config.DefaultAPIBaseURL+")")
	flag.StringVar(&sessionDB, "sessiondb", "", "Session database path (default: "+config.DefaultSessionDB+")")
	flag.StringVar(&logLevel, "loglevel", "", "Log level: "+logging.LevelNames())
	flag.StringVar(&logFormat, "logformat", "", "Log format: text or json")
	flag.StringVar(&pprofAddr, "pprof", "", "Serve pprof on this address, e.g. 127.0.0.1:51111 (disabled when empty)")
	flag.BoolVar(&debug, "debug", false, "Debug logging for sessions and gin")
	flag.Parse()

	mainConfig := config.NewDefaultConfig()
	if configFile != "" {
		if err := mainConfig.LoadFile(configFile); err != nil {
			log.Fatalf("[WEB]: %v", err)
		}
	}
	applyFlags(mainConfig)

	if err := logging.Setup(logging.Options{Level: mainConfig.Log.Level, Format: mainConfig.Log.Format}); err != nil {
		log.Fatalf("[WEB]: %v", err)
	}
	if err := mainConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: Invalid configuration: %v", err)
	}
	log.Printf("Starting go-modconsole: Web Server (version: %s)", appVersion)
	log.Printf("[WEB]: Using moderation backend %s", mainConfig.API.BaseURL)

	if pprofAddr != "" {
		profiler := prof.NewProf()
		go profiler.PprofWeb(pprofAddr)
		log.Printf("[WEB]: pprof listening on %s", pprofAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storeConfig := database.DefaultStoreConfig()
	storeConfig.Path = mainConfig.Session.DBPath
	storeConfig.Secret = mainConfig.Session.Secret
	storeConfig.TTL = mainConfig.Session.TTL.Std()
	store, err := database.Open(ctx, storeConfig)
	if err != nil {
		log.Fatalf("[WEB]: Failed to open session store: %v", err)
	}
	if mainConfig.Session.Secret == "" {
		log.Printf("[WEB]: No session secret configured, sessions will not survive a restart")
	}

	api := apiclient.New(mainConfig.API.BaseURL,
		apiclient.WithTimeout(mainConfig.API.Timeout.Std()),
		apiclient.WithUserAgent(mainConfig.API.UserAgent))

	server, err := web.NewServer(mainConfig, store, api)
	if err != nil {
		log.Fatalf("[WEB]: Failed to create web server: %v", err)
	}
	server.StartSessionCleanup(ctx)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	protocol := "http"
	if mainConfig.Web.SSL {
		protocol = "https"
	}
	log.Printf("[WEB]: Starting go-modconsole web server on %s://localhost:%d", protocol, mainConfig.Web.ListenPort)

	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			webServerErrChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		log.Printf("[WEB]: Failed to start web server: %v", err)
		_ = store.Close()
		os.Exit(1)
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WEB]: Error stopping web server: %v", err)
	}
	if err := store.Close(); err != nil {
		log.Printf("[WEB]: Failed to close session store: %v", err)
	} else {
		log.Printf("[WEB]: Session store closed")
	}

	log.Printf("[WEB]: Graceful shutdown completed")
}

// applyFlags overrides config values with the flags that were given
func applyFlags(cfg *config.MainConfig) {
	if webssl {
		cfg.Web.SSL = true
		if webport == 0 && cfg.Web.ListenPort == config.DefaultWebPort {
			cfg.Web.ListenPort = config.DefaultWebSSLPort
		}
	}
	if webport > 0 {
		cfg.Web.ListenPort = webport
	}
	if webcertFile != "" {
		cfg.Web.CertFile = webcertFile
	}
	if webkeyFile != "" {
		cfg.Web.KeyFile = webkeyFile
	}
	if staticDir != "" {
		cfg.Web.StaticDir = staticDir
	}
	if debug {
		cfg.Web.Debug = true
		cfg.Log.Level = "debug"
	}
	if apiBaseURL != "" {
		cfg.API.BaseURL = apiBaseURL
	}
	if sessionDB != "" {
		cfg.Session.DBPath = sessionDB
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
}
