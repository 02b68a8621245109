package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/speedatlas-cli/internal/pipeline"
	"github.com/KaramelBytes/speedatlas-cli/internal/server"
	"github.com/KaramelBytes/speedatlas-cli/internal/state"
	"github.com/spf13/cobra"
)

var (
	srvAddr      string
	srvWorkspace string
	srvSheet     string
)

var serveCmd = &cobra.Command{
	Use:   "serve [source]",
	Short: "Serve the loaded dataset and its aggregates as a JSON API",
	Long: `Load a dataset into memory and serve it over HTTP. Routes live under /api
(records, summary, groups, outliers, top, series, load) plus /healthz. Records
POSTed to /api/records are saved to the workspace when -w is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		parseOpt, err := c.ParseOptions()
		if err != nil {
			return err
		}
		aopt, err := analysisOptions("")
		if err != nil {
			return err
		}
		ws, err := openWorkspace(srvWorkspace)
		if err != nil {
			return err
		}
		src, err := resolveSource(args, ws, srvSheet)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store := state.New()
		out, err := pipeline.Load(ctx, store, src, parseOpt, ws)
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = srvAddr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Loaded %d record(s) from %s; listening on http://%s\n", out.Records, out.Source, addr)

		srv := server.New(store, server.Config{
			Parse:       parseOpt,
			Analysis:    aopt,
			HTTPTimeout: c.HTTPTimeout(),
			Logger:      logger.With(slog.String("component", "server")),
			Workspace:   ws,
		})
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "127.0.0.1:8080", "listen address (default: listen_addr)")
	serveCmd.Flags().StringVarP(&srvWorkspace, "workspace", "w", "", "workspace for manual entries")
	serveCmd.Flags().StringVar(&srvSheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
}
