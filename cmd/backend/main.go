package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"empower/checker"
	"empower/config"
	"empower/devapi"
	"empower/logger"
	"empower/ui"

	"github.com/maxence-charriere/go-app/v9/pkg/app"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "empower",
		Short:        "Empower Library front end and development API",
		SilenceUsage: true,
	}
	config.AddFlags(root.PersistentFlags())
	root.AddCommand(serveCommand(), devAPICommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and starts the logger.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the library web app",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Flush()

			// Register the components on the server side too for correct routing generation
			ui.Routes()

			handler := &app.Handler{
				Name:        "Empower Library",
				ShortName:   "Library",
				Description: "Browse, borrow and return library books",
				RawHeaders: []string{
					`<link href="https://fonts.googleapis.com/css2?family=Roboto:wght@400;500;700&display=swap" rel="stylesheet">`,
					`<link rel="stylesheet" href="https://fonts.googleapis.com/css2?family=Material+Symbols+Rounded:opsz,wght,FILL,GRAD@24,400,0,0" />`,
				},
				Styles: []string{
					"/web/app.css",
				},
				Env: app.Environment{
					ui.APIURLEnv: cfg.API.BaseURL,
				},
			}

			mux := http.NewServeMux()
			mux.Handle("/", handler)
			mux.HandleFunc("/api/status", statusHandler(cfg.API.BaseURL))

			logger.Info("Starting Empower Library on %s (API %s)", cfg.Server.Addr, cfg.API.BaseURL)
			return listen(cmd.Context(), cfg.Server.Addr, mux)
		},
	}
}

func statusHandler(apiURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := checker.CheckSystem(r.Context(), apiURL)
		if err != nil {
			logger.Error("Failed to get system status: %v", err)
			http.Error(w, "Failed to get system status: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}

func devAPICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devapi",
		Short: "Run the development library API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Flush()

			store, err := openStore(cmd.Context(), cfg.DevAPI)
			if err != nil {
				return err
			}
			defer store.Close()

			if cfg.DevAPI.Seed {
				if err := devapi.Seed(cmd.Context(), store); err != nil {
					return err
				}
			}

			srv := devapi.NewServer(store, devapi.Options{
				Secret:         []byte(cfg.DevAPI.Secret),
				TokenTTL:       cfg.DevAPI.TokenTTL,
				AllowedOrigins: cfg.DevAPI.AllowedOrigins,
			})

			logger.Info("Starting development API on %s (%s store)", cfg.DevAPI.Addr, cfg.DevAPI.Driver)
			return listen(cmd.Context(), cfg.DevAPI.Addr, srv)
		},
	}
}

func openStore(ctx context.Context, cfg config.DevAPIConfig) (devapi.Store, error) {
	if cfg.Driver == "memory" {
		return devapi.NewMemoryStore(), nil
	}
	return devapi.OpenSQL(ctx, cfg.Driver, cfg.DSN)
}

// listen serves h on addr until SIGINT or SIGTERM.
func listen(ctx context.Context, addr string, h http.Handler) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down %s", addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
