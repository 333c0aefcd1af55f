// Command catalog serves the product catalog front-end, or exports it as static files.
//
// Usage:
//
//	catalog [-config catalog.toml] [serve] [-listen :8080]
//	catalog [-config catalog.toml] export -out DIR [-strict]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohsenKh75/next-patterns/internal/pages"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("catalog", flag.ContinueOnError)
	configPath := global.String("config", "", "path of a TOML configuration file")
	if err := global.Parse(args); err != nil {
		return err
	}
	config, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rest := global.Args()
	command := "serve"
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}
	switch command {
	case "serve":
		return serve(ctx, config, rest)
	case "export":
		return export(ctx, config, rest)
	}
	return fmt.Errorf("unknown command %q", command)
}

func serve(ctx context.Context, config Config, args []string) error {
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	flags.StringVar(&config.Listen, "listen", config.Listen, "address to listen on")
	if err := flags.Parse(args); err != nil {
		return err
	}

	a, err := newApp(config)
	if err != nil {
		return err
	}
	defer a.Close()
	a.startRevalidation(config.Revalidation)

	server := &http.Server{
		Addr:              config.Listen,
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.loggers.Infof("Listening on %s", config.Listen)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.loggers.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func export(ctx context.Context, config Config, args []string) error {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	out := flags.String("out", "", "directory to write the exported site to")
	flags.BoolVar(&config.Export.Strict, "strict", config.Export.Strict,
		"fail if the product list or any page cannot be generated")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("export: -out is required")
	}

	a, err := newApp(config)
	if err != nil {
		return err
	}
	defer a.Close()

	manifest, err := a.site.Export(ctx, *out, pages.ExportOptions{Strict: config.Export.Strict})
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d pages (build %s)\n", len(manifest.Pages), manifest.BuildID)
	return nil
}
