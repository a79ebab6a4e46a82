// Package cli implements the userstable command line: a one-shot listing and the
// interactive terminal table.
package cli

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chybatronik/goUsersTable/internal/cache"
	"github.com/chybatronik/goUsersTable/internal/config"
	"github.com/chybatronik/goUsersTable/internal/directory"
	"github.com/chybatronik/goUsersTable/internal/logging"
	"github.com/chybatronik/goUsersTable/internal/source"
)

const serviceName = "userstable"

// isTerminal checks if the given file is a terminal.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	version   string
	upstream  string
	timeout   time.Duration
	redisAddr string
	cacheTTL  time.Duration
	logLevel  string
}

// NewRootCmd creates the root Cobra command for the userstable CLI.
func NewRootCmd(ver string) *cobra.Command {
	opts := &rootOptions{version: ver}

	cmd := &cobra.Command{
		Use:          "userstable",
		Short:        "Browse the users directory as a table",
		Long:         "userstable fetches the users directory, flattens it and shows it as a searchable, sortable, paginated table.",
		Version:      ver,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.validate()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.upstream, "upstream", envOr("UPSTREAM_URL", config.DefaultUpstreamURL),
		"users directory URL")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "upstream request timeout")
	cmd.PersistentFlags().StringVar(&opts.redisAddr, "redis-addr", os.Getenv("REDIS_ADDR"),
		"cache the upstream payload in this Redis server (empty disables the cache)")
	cmd.PersistentFlags().DurationVar(&opts.cacheTTL, "cache-ttl", 5*time.Minute, "lifetime of a cached payload")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(newListCmd(opts), newTUICmd(opts))

	return cmd
}

func (o *rootOptions) validate() error {
	u, err := url.Parse(o.upstream)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("--upstream must be an absolute http(s) URL, got %q", o.upstream)
	}
	if o.timeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %s", o.timeout)
	}
	if o.redisAddr != "" && o.cacheTTL <= 0 {
		return fmt.Errorf("--cache-ttl must be positive, got %s", o.cacheTTL)
	}
	return nil
}

// newSource builds the record source for one run. The returned func releases the cache
// connection.
func (o *rootOptions) newSource(logger *logging.Logger) (*source.Source, func()) {
	client := directory.NewClient(o.upstream, o.timeout)

	if o.redisAddr == "" {
		return source.New(client, logger), func() {}
	}

	r := cache.NewRedis(config.CacheConfig{Enabled: true, Addr: o.redisAddr, TTL: o.cacheTTL}, logger)
	return source.New(client, logger, source.WithCache(r)), func() {
		if err := r.Close(); err != nil {
			logger.Warn("failed to close redis client", logging.Err(err))
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
