// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tabsift/internal/menu"
	"github.com/pdiddy/tabsift/internal/secrets"
	"github.com/pdiddy/tabsift/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the run, reset and status actions over HTTP",
	Long: `Serve exposes the menu actions: POST /run, POST /reset and GET /status.
GET /menu lists them. Only one invocation runs at a time; a concurrent
POST /run is answered with 409 Conflict.

When <secrets-dir>/menu-token exists, every action requires the header
"Authorization: Bearer <token>".`,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindSiftFlags(cmd)
		viper.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		a, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		sec, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		var opts []menu.Option
		if token, ok := sec.Get(secrets.MenuToken); ok {
			opts = append(opts, menu.WithToken(token))
		} else {
			logger.Warn("serving menu without authentication", "missing", filepath.Join(secretsDir, secrets.MenuToken))
		}

		srv := &http.Server{
			Addr:              cfg.Serve.Addr,
			Handler:           menu.NewServer(a.runner, logger, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("menu listening", "addr", cfg.Serve.Addr)
			fmt.Printf("serving menu on %s\n", cfg.Serve.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	addSiftFlags(serveCmd)
	serveCmd.Flags().String("addr", types.DefaultServeAddr, "listen address")
	serveCmd.Flags().String("secrets-dir", secrets.DefaultDir, "directory holding the menu-token file")
	rootCmd.AddCommand(serveCmd)
}
