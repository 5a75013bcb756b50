// Package main provides the rgraph CLI entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/orneryd/rgraph/pkg/client"
	"github.com/orneryd/rgraph/pkg/config"
	"github.com/orneryd/rgraph/pkg/logging"
	"github.com/orneryd/rgraph/pkg/metrics"
	"github.com/orneryd/rgraph/pkg/resultset"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rgraph",
		Short: "rgraph - RedisGraph command line client",
		Long: `rgraph sends Cypher queries to a RedisGraph server using the compact
reply format and prints the decoded results.

Connection settings come from --config, RGRAPH_* environment variables
and the flags below, in increasing priority.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("addr", "", "Server address (host:port)")
	rootCmd.PersistentFlags().String("password", "", "Server password")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Client-side deadline for each command")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("stats", false, "Print client metrics after the command")

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rgraph v%s (%s)\n", version, commit)
		},
	})

	// Query commands
	queryCmd := &cobra.Command{
		Use:   "query [graph] [cypher]",
		Short: "Run a read-write query",
		Args:  cobra.ExactArgs(2),
		RunE:  runQuery(false),
	}
	queryCmd.Flags().Duration("server-timeout", 0, "Ask the server to abort the query after this long")
	rootCmd.AddCommand(queryCmd)

	roQueryCmd := &cobra.Command{
		Use:   "ro-query [graph] [cypher]",
		Short: "Run a read-only query",
		Args:  cobra.ExactArgs(2),
		RunE:  runQuery(true),
	}
	roQueryCmd.Flags().Duration("server-timeout", 0, "Ask the server to abort the query after this long")
	rootCmd.AddCommand(roQueryCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "explain [graph] [cypher]",
		Short: "Show the execution plan of a query",
		Args:  cobra.ExactArgs(2),
		RunE:  runExplain,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "delete [graph]",
		Short: "Delete a graph",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List graphs",
		Args:  cobra.NoArgs,
		RunE:  runList,
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// session bundles what every subcommand needs.
type session struct {
	client *client.Client
	reg    *prometheus.Registry
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *session) close(cmd *cobra.Command) {
	s.cancel()
	s.client.Close()
	if s.reg != nil {
		printMetrics(cmd.ErrOrStderr(), s.reg)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if addr, _ := flags.GetString("addr"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password, _ := flags.GetString("password"); password != "" {
		cfg.Redis.Password = password
	}
	if timeout, _ := flags.GetDuration("timeout"); timeout > 0 {
		cfg.Query.DefaultTimeout = timeout
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if stats, _ := flags.GetBool("stats"); stats {
		cfg.Metrics.Enabled = true
	}
	return cfg, cfg.Validate()
}

func connect(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	opts := []client.Option{
		client.WithLogger(logging.New(logging.FromConfig(cfg.Logging))),
	}
	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		opts = append(opts, client.WithMetrics(metrics.New(reg)))
	}

	c, err := client.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return &session{client: c, reg: reg, ctx: ctx, cancel: cancel}, nil
}

func runQuery(readOnly bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd)
		if err != nil {
			return err
		}
		defer s.close(cmd)

		var opts []client.QueryOption
		if d, _ := cmd.Flags().GetDuration("server-timeout"); d > 0 {
			opts = append(opts, client.WithTimeout(d))
		}

		start := time.Now()
		var rs *resultset.ResultSet
		if readOnly {
			rs, err = s.client.ReadOnlyQuery(s.ctx, args[0], args[1], nil, opts...)
		} else {
			rs, err = s.client.Query(s.ctx, args[0], args[1], nil, opts...)
		}
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), rs, time.Since(start))
	}
}

func runExplain(cmd *cobra.Command, args []string) error {
	s, err := connect(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	plan, err := s.client.Explain(s.ctx, args[0], args[1], nil)
	if err != nil {
		return err
	}
	for _, line := range plan {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := connect(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	msg, err := s.client.DeleteGraph(s.ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := connect(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	graphs, err := s.client.ListGraphs(s.ctx)
	if err != nil {
		return err
	}
	for _, g := range graphs {
		fmt.Fprintln(cmd.OutOrStdout(), g)
	}
	return nil
}

// printResult writes the header, one tab-separated line per record and the
// statistics.
func printResult(w io.Writer, rs *resultset.ResultSet, elapsed time.Duration) error {
	if names := rs.Header().Names(); len(names) > 0 {
		fmt.Fprintln(w, strings.Join(names, "\t"))
	}
	for rs.HasNext() {
		rec, err := rs.Next()
		if err != nil {
			return err
		}
		fields := make([]string, rec.Size())
		for i := range fields {
			fields[i] = rec.GetStringByIndex(i)
		}
		fmt.Fprintln(w, strings.Join(fields, "\t"))
	}

	fmt.Fprintln(w)
	stats := rs.Statistics()
	for _, label := range resultset.StatLabels() {
		if v, ok := stats.Value(label); ok {
			fmt.Fprintf(w, "%s: %s\n", label, v)
		}
	}
	fmt.Fprintf(w, "%d record(s) in %s\n", rs.Size(), elapsed.Round(time.Microsecond))
	return nil
}

// printMetrics writes every counter and gauge sample of reg.
func printMetrics(w io.Writer, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		fmt.Fprintf(w, "metrics: %v\n", err)
		return
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = m.GetHistogram().GetSampleSum()
			}
			fmt.Fprintf(w, "%s{%s} %g\n", f.GetName(), strings.Join(labels, ","), value)
		}
	}
}
