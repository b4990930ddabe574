package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/csrsef/chatbot/internal/api/handlers"
	"github.com/csrsef/chatbot/internal/chatui"
	"github.com/csrsef/chatbot/internal/chatui/tui"
	"github.com/csrsef/chatbot/internal/config"
	"github.com/csrsef/chatbot/internal/services"
	"github.com/csrsef/chatbot/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chatbot",
		Short:         "Minimal LLM chat relay and terminal client",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the relay server (default)",
		RunE:  runServe,
	})
	rootCmd.AddCommand(newChatCmd())

	return rootCmd
}

func newChatCmd() *cobra.Command {
	var (
		serverURL  string
		clientGate bool
		promptMode bool
		raw        bool
	)

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the terminal chat client",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(io.Discard)
			cfg := config.Load()

			if cfg.LogFile != "" {
				f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logger.Init(f)
			}

			if serverURL == "" {
				serverURL = cfg.ServerURL
			}

			client, err := chatui.NewClient(serverURL)
			if err != nil {
				return err
			}

			var auth chatui.Authenticator = client
			if clientGate {
				logger.Warn(logger.UI, "Using client-side password gate; the secret ships with the client")
				auth = chatui.NewClientSecretAuthenticator(cfg.ClientPassword)
			}

			var opts []chatui.Option
			if promptMode {
				opts = append(opts, chatui.WithMode(chatui.ModePrompt))
			}
			if raw {
				opts = append(opts, chatui.WithoutNormalization())
			}

			machine := chatui.NewMachine(client, auth, opts...)
			pref := chatui.NewSettablePreference(lipgloss.HasDarkBackground())

			logger.Info(logger.UI, "Starting chat client against %s", serverURL)
			return tui.Run(cmd.Context(), machine, pref)
		},
	}

	chatCmd.Flags().StringVar(&serverURL, "server", "", "relay server base URL (default CHATBOT_SERVER_URL)")
	chatCmd.Flags().BoolVar(&clientGate, "client-gate", false, "check CLIENT_PASSWORD locally instead of asking the server")
	chatCmd.Flags().BoolVar(&promptMode, "prompt", false, "start in prompt-rewrite mode")
	chatCmd.Flags().BoolVar(&raw, "raw", false, "show replies without newline normalization")

	return chatCmd
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Init(os.Stderr)
	cfg := config.Load()

	svcs, err := services.InitializeServices(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize services")
		return err
	}
	defer svcs.Close()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(svcs),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server stopped unexpectedly")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	svcs.GetConnectionManager().CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}

func setupRouter(svcs *services.Services) *mux.Router {
	r := mux.NewRouter()
	handlers.RegisterRoutes(r, svcs)
	return r
}
