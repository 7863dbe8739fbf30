package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/markstack/pkg/cache"
	"github.com/matzehuels/markstack/pkg/jobs"
	"github.com/matzehuels/markstack/pkg/pipeline"
	"github.com/matzehuels/markstack/pkg/server"
)

// redisKeyPrefix scopes font cache keys in a shared Redis instance.
const redisKeyPrefix = appName + ":"

// serveCommand creates the serve command that starts the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		redisAddr   string
		mongoURI    string
		mongoDB     string
		presetsFile string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API used by the web front end.

Fonts are cached on disk by default, or in Redis with --redis so several
server processes share downloads. Job records are kept in memory, or in
MongoDB with --mongo.`,
		Example: `  markstack serve --addr :5000
  markstack serve --redis localhost:6379 --mongo mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			set, err := loadPresets(presetsFile)
			if err != nil {
				return err
			}

			var (
				fc    cache.Cache
				keyer cache.Keyer
			)
			if redisAddr != "" && !noCache {
				rc, err := cache.NewRedisCache(ctx, redisAddr)
				if err != nil {
					return err
				}
				fc, keyer = rc, cache.NewScopedKeyer(nil, redisKeyPrefix)
			} else {
				if fc, err = newCache(noCache); err != nil {
					return err
				}
			}
			defer fc.Close()

			var store jobs.Store
			if mongoURI != "" {
				ms, err := jobs.NewMongoStore(ctx, mongoURI, mongoDB)
				if err != nil {
					return err
				}
				store = ms
				defer func() {
					closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = store.Close(closeCtx)
				}()
			}

			srv := server.New(server.Config{
				Addr:    addr,
				Presets: set,
				Runner:  pipeline.NewRunner(fc, keyer, logger),
				Jobs:    store,
				Logger:  logger,
			})

			printSuccess("Serving %d presets", len(set))
			printKeyValue("Address", StyleLink.Render("http://"+displayAddr(addr)))
			printKeyValue("Font cache", cacheLabel(redisAddr, noCache))
			printKeyValue("Job store", storeLabel(mongoURI))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for the shared font cache")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI for job records")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", jobs.DefaultDatabase, "MongoDB database name")
	cmd.Flags().StringVar(&presetsFile, "presets", "", "presets TOML file (default: user config presets.toml)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the font download cache")

	return cmd
}

// displayAddr turns a listen address like ":5000" into a browsable host.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func cacheLabel(redisAddr string, noCache bool) string {
	switch {
	case noCache:
		return "disabled"
	case redisAddr != "":
		return "redis " + redisAddr
	}
	dir, err := cacheDir()
	if err != nil {
		return "disabled"
	}
	return dir
}

func storeLabel(mongoURI string) string {
	if mongoURI == "" {
		return "memory"
	}
	return "mongodb"
}
