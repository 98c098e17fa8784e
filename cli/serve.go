package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/robopages/robopages"
	"github.com/robopages/robopages/daemon"
	"github.com/robopages/robopages/dispatch"
	robotel "github.com/robopages/robopages/otel"
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pages as a local API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().StringP("path", "p", "", "Page file or directory containing pages (default: $ROBOPAGES_PATH or ~/.robopages)")
	cmd.Flags().StringP("filter", "f", "", "Only serve pages whose name or categories contain this string")
	cmd.Flags().StringP("address", "a", robopages.DefaultAddress, "Address to bind to")
	cmd.Flags().Int("workers", 4, "Max concurrent call executions")
	cmd.Flags().Duration("timeout", dispatch.DefaultCallTimeout, "Per call execution timeout")
	cmd.Flags().String("cors-origin", "*", "Allowed CORS origin")
	cmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", 15*time.Minute, "HTTP write timeout")
	cmd.Flags().Int64("max-body", 1<<20, "Max request body size in bytes")
	cmd.Flags().String("otel-endpoint", "", "OTLP/HTTP endpoint for traces (disabled when empty)")
	cmd.Flags().Bool("otel-insecure", false, "Use plain HTTP for the OTLP endpoint")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	filter, _ := cmd.Flags().GetString("filter")
	book, err := loadBookForCommand(cmd, robopages.WithFilter(filter))
	if err != nil {
		return err
	}

	address, _ := cmd.Flags().GetString("address")
	workers, _ := cmd.Flags().GetInt("workers")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	corsOrigin, _ := cmd.Flags().GetString("cors-origin")
	readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
	writeTimeout, _ := cmd.Flags().GetDuration("write-timeout")
	maxBody, _ := cmd.Flags().GetInt64("max-body")

	if otelEndpoint, _ := cmd.Flags().GetString("otel-endpoint"); otelEndpoint != "" {
		otelInsecure, _ := cmd.Flags().GetBool("otel-insecure")
		shutdown, err := robotel.Setup(cmd.Context(), robotel.Config{
			Endpoint: otelEndpoint,
			Insecure: otelInsecure,
		})
		if err != nil {
			return exitError(exitRuntime, "initializing tracing: %v", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	observer, err := robotel.NewCallObserver(
		otelapi.GetMeterProvider().Meter("robopages/dispatch"),
		otelapi.GetTracerProvider().Tracer("robopages/dispatch"),
	)
	if err != nil {
		return exitError(exitRuntime, "initializing call observability: %v", err)
	}
	dispatch.SetObserver(observer)
	defer dispatch.SetObserver(nil)

	server, err := daemon.NewServer(daemon.ServerConfig{
		Book:        book,
		Workers:     workers,
		CallTimeout: timeout,
	})
	if err != nil {
		return exitError(exitRuntime, "creating server: %v", err)
	}

	if !isLoopback(address) {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: binding to an external address, this is unsafe as no authentication is provided")
	}

	handler := withCORS(server.Handler(), corsOrigin)
	handler = maxBodyMiddleware(handler, maxBody)

	httpServer := &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	// SIGINT/SIGTERM trigger a graceful drain.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "serving %d functions on http://%s\n", book.Len(), address)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return exitError(exitRuntime, "shutdown error: %v", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitError(exitRuntime, "server error: %v", err)
		}
		return nil
	}
}

func isLoopback(address string) bool {
	host := address
	if h, _, err := net.SplitHostPort(address); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

func withCORS(next http.Handler, allowedOrigin string) http.Handler {
	origin := strings.TrimSpace(allowedOrigin)
	if origin == "" {
		origin = "*"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func maxBodyMiddleware(next http.Handler, maxBody int64) http.Handler {
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		next.ServeHTTP(w, r)
	})
}
