package cli

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-formalize/internal/examples"
	"github.com/alnah/go-formalize/internal/interrupt"
	"github.com/alnah/go-formalize/internal/server"
)

// drainNotice is printed on the first Ctrl+C while serving.
const drainNotice = "\nShutting down, waiting for in-flight requests. Press Ctrl+C again to abort."

// serveOptions holds validated options for the serve command.
type serveOptions struct {
	pipelineOptions
	addr         string
	watch        bool
	examplesPath string
}

// ServeCmd creates the serve command (local HTTP API).
// The env parameter provides injectable dependencies for testing.
func ServeCmd(env *Env) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translation API on a local address",
		Long: `Serve a local JSON API for translating, editing pairs and managing examples.

Endpoints:
  POST   /api/translate             {"text": "..."}
  GET    /api/pairs                 current result
  PATCH  /api/pairs/:id             {"translated": "..."}
  POST   /api/pairs/:id/examples    add one pair to the corpus
  POST   /api/pairs/examples        add all translated pairs
  GET    /api/examples              list, POST to add
  PUT    /api/examples/:index       replace (0-based), DELETE to remove
  DELETE /api/examples              clear
  POST   /api/examples/import       CSV body or multipart "file" (?append=1)
  GET    /api/examples/export       CSV download

With --watch, edits made to the JSON corpus file by other processes are
picked up without restarting. Press Ctrl+C once to drain, twice to abort.`,
		Example: `  formalize serve
  formalize serve --addr :9000 --watch
  formalize serve --provider deepseek --examples ~/examples.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			handler, ctx := interrupt.NewHandler(cmd.Context(), drainNotice)
			defer handler.Stop()
			return runServe(ctx, env, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default "+server.DefaultAddr+")")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload examples when the corpus file changes on disk")
	cmd.Flags().StringVar(&opts.examplesPath, "examples", "", "Example corpus file (.json, or .db for SQLite)")
	addPipelineFlags(cmd, &opts.pipelineOptions)

	return cmd
}

// runServe serves until ctx is canceled, then drains.
func runServe(ctx context.Context, env *Env, opts serveOptions) error {
	cfg := loadConfig(env)

	svc, provider, err := newService(ctx, env, cfg, opts.pipelineOptions, nil)
	if err != nil {
		return err
	}

	coll, path, closeStore, err := openCollection(ctx, env, opts.examplesPath, cfg.ExamplesPath)
	if err != nil {
		return err
	}
	defer closeStore()

	addr := opts.addr
	if addr == "" {
		addr = cfg.ListenAddr
	}
	if addr == "" {
		addr = server.DefaultAddr
	}

	if opts.watch && examples.IsSQLitePath(path) {
		return fmt.Errorf("--watch needs a JSON corpus, got %s: %w", path, examples.ErrUnsupportedStore)
	}

	ln, err := env.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(svc, coll, server.WithLogger(env.Logger))

	fmt.Fprintf(env.Stderr, "Serving on http://%s (provider: %s, %d examples)\n", ln.Addr(), provider, coll.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})
	if opts.watch {
		g.Go(func() error {
			return examples.Watch(gctx, path, env.Logger, func() {
				if err := coll.Reload(gctx); err != nil {
					env.Logger.Warn("reload examples", zap.Error(err))
					return
				}
				fmt.Fprintf(env.Stderr, "Reloaded %d examples\n", coll.Len())
			})
		})
	}

	return g.Wait()
}
