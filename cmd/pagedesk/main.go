// Command pagedesk serves the page editor API over HTTP. Any PDF paths
// given on the command line are opened before the server starts
// listening.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wudi/pagedesk/engine/hybrid"
	"github.com/wudi/pagedesk/observability"
	"github.com/wudi/pagedesk/server"
	"github.com/wudi/pagedesk/service"
	"github.com/wudi/pagedesk/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr    string
		dpi     int
		verbose bool
	)
	cmd := &cobra.Command{
		Use:          "pagedesk [pdf...]",
		Short:        "In-memory, non-destructive PDF page editor",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			log := observability.NewSlog(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			st := store.New(hybrid.New())
			st.SetDPI(dpi)
			svc := service.New(st, log.With(observability.String("component", "service")))

			for _, path := range args {
				doc, _, err := svc.OpenDocument(store.SourcePath, filepath.Base(path), path, nil)
				if err != nil {
					return fmt.Errorf("open %s: %w", path, err)
				}
				log.Info("document loaded",
					observability.Int("doc", doc.ID),
					observability.String("name", doc.Name),
					observability.Int("pages", doc.PageCount))
			}

			srv := server.New(svc, log.With(observability.String("component", "server")))
			log.Info("listening", observability.String("addr", addr))
			return srv.Router().Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&dpi, "dpi", store.DefaultDPI, "thumbnail render resolution")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}
