// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

// Command dirwatch recursively watches a directory tree and prints a line
// for every file or directory created or deleted under it. On interrupt it
// tears down all watches and prints the net counters together with the
// registry sizes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/olandr/dirwatch"
)

var version = "devel"

var (
	flagConfig   string
	flagLogLevel string
	flagBuffer   int
	flagExclude  []string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "dirwatch [dir]",
	Short: "Watch a directory tree for created and deleted files",
	Long: `dirwatch recursively monitors a directory tree for creation and
deletion of files and subdirectories, printing one line per change.

Pre-existing subdirectories are not scanned and subdirectories created
faster than their watches can be registered go unwatched; see the package
documentation for the inherent inotify races.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().IntVar(&flagBuffer, "buffer", 0, "notification channel capacity")
	rootCmd.Flags().StringArrayVar(&flagExclude, "exclude", nil, "glob pattern to exclude (repeatable)")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress per-event output, print only the summary")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print dirwatch version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("dirwatch " + version)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges the optional config file with command line overrides;
// flags win.
func loadConfig(args []string) (dirwatch.Config, error) {
	cfg := dirwatch.DefaultConfig()
	if flagConfig != "" {
		loaded, err := dirwatch.LoadConfig(flagConfig)
		if err != nil {
			return dirwatch.Config{}, err
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Root = args[0]
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagBuffer > 0 {
		cfg.Buffer = flagBuffer
	}
	cfg.Exclude = append(cfg.Exclude, flagExclude...)
	if err := cfg.Validate(); err != nil {
		return dirwatch.Config{}, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := make(chan dirwatch.Notification, cfg.Buffer)
	m, err := dirwatch.NewMonitor(cfg.Root, c,
		dirwatch.WithLogger(logger),
		dirwatch.WithFilter(cfg.Filter()),
	)
	if err != nil {
		return err
	}
	logger.Info("watching", "root", cfg.Root)

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	for {
		select {
		case n := <-c:
			report(cmd, n)
		case err := <-done:
			// Flush whatever the loop emitted before it stopped.
			for {
				select {
				case n := <-c:
					report(cmd, n)
				default:
					s := m.Summary()
					fmt.Fprintf(cmd.OutOrStdout(),
						"total dirs = %d, total files = %d\n", s.Dirs, s.Files)
					fmt.Fprintf(cmd.OutOrStdout(),
						"number of watches=%d & reverse watches=%d\n", s.Forward, s.Reverse)
					return err
				}
			}
		}
	}
}

func report(cmd *cobra.Command, n dirwatch.Notification) {
	if flagQuiet {
		return
	}
	out := cmd.OutOrStdout()
	switch n.Kind {
	case dirwatch.DirCreated:
		fmt.Fprintf(out, "new directory %s created\n", n.Path)
	case dirwatch.FileCreated:
		fmt.Fprintf(out, "new file %s created\n", n.Path)
	case dirwatch.DirRemoved:
		fmt.Fprintf(out, "directory %s deleted\n", n.Path)
	case dirwatch.FileRemoved:
		fmt.Fprintf(out, "file %s deleted\n", n.Path)
	}
}
