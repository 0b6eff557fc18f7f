package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/sem-merge/internal/cache"
	"github.com/dshills/sem-merge/internal/config"
	"github.com/dshills/sem-merge/internal/gitctx"
	"github.com/dshills/sem-merge/internal/logging"
	"github.com/dshills/sem-merge/internal/merge"
	"github.com/dshills/sem-merge/internal/output"
	"github.com/dshills/sem-merge/internal/providers"
)

const version = "0.3.0"

// Exit codes. A merge run never fails a commit, so only startup problems
// produce a non-zero code.
const (
	ExitSuccess     = 0
	ExitUsageError  = 2
	ExitConfigError = 3
)

// Root command flags
var (
	flagProvider  string
	flagModel     string
	flagMaxTokens int
	flagTimeout   time.Duration
	flagCacheDir  string
	flagFormat    string
	flagVerbose   bool
	flagStage     bool
)

var rootCmd = &cobra.Command{
	Use:   "sem-merge [flags] [files...]",
	Short: "Semantically merge documentation with the upstream main branch",
	Long: "sem-merge is a pre-commit hook that merges each documentation file with its version on the " +
		"remote main branch using an OpenAI-compatible model, and remembers its own output so the " +
		"same file is not merged twice.",
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runMerge,
}

// Run executes the root command and returns an exit code.
func Run() int {
	exitCode = ExitSuccess
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print sem-merge version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sem-merge version %s\n", version)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagProvider, "ai-provider", "", "AI provider (openai, deepseek); required when both API keys are set")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "Model name (default: the provider's default model)")
	rootCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "Maximum tokens in the merged reply")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Timeout for each merge call (default 2m)")
	rootCmd.Flags().StringVar(&flagFormat, "format", "text", "Output format (text, json)")
	rootCmd.Flags().BoolVar(&flagStage, "stage", false, "git add the files that were merged (whole files, including unstaged hunks)")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "Cache directory (default .sem-merge-cache)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every file's outcome")

	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(versionCmd)
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagMaxTokens > 0 {
		m["maxTokens"] = strconv.Itoa(flagMaxTokens)
	}
	if flagTimeout > 0 {
		m["timeout"] = flagTimeout.String()
	}
	if flagCacheDir != "" {
		m["cache.dir"] = flagCacheDir
	}
	return m
}

// configError reports a startup failure and sets the config exit code.
func configError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	exitCode = ExitConfigError
}

func runMerge(cmd *cobra.Command, args []string) error {
	writer, err := output.GetWriter(flagFormat, flagVerbose)
	if err != nil {
		return err
	}

	// Nothing staged: stay silent even without credentials.
	if len(args) == 0 {
		return nil
	}

	log := logging.New(flagVerbose, cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(buildOverrides())
	if err != nil {
		configError(cmd, err)
		return nil
	}
	settings, err := config.Resolve(cfg)
	if err != nil {
		configError(cmd, err)
		return nil
	}
	client, err := providers.New(settings)
	if err != nil {
		configError(cmd, err)
		return nil
	}

	files := merge.FilterDocumentationFiles(args, cfg.Extensions)
	if len(files) == 0 {
		log.Debug("no documentation files to merge", zap.Int("args", len(args)))
		return nil
	}

	log.Debug("starting merge",
		zap.String("provider", string(client.Name())),
		zap.String("model", client.Model()),
		zap.Int("files", len(files)))

	var remote merge.RemoteSource
	src, err := gitctx.New(".", gitctx.Options{
		Remote:  cfg.Remote.Name,
		Branch:  cfg.Remote.Branch,
		Backend: cfg.Remote.Backend,
		Logger:  log,
	})
	switch {
	case errors.Is(err, gitctx.ErrNotRepository):
		log.Warn("not inside a git repository; no upstream versions available")
		remote = noRemote{}
	case err != nil:
		configError(cmd, err)
		return nil
	default:
		remote = src
	}

	store := cache.New(cfg.Cache.Dir, cache.WithLogger(log))
	engine := merge.NewEngine(remote, merge.NewService(client, cfg.MaxTokens, cfg.Temperature), store, merge.Options{
		Timeout:     cfg.Timeout.Std(),
		Concurrency: cfg.Concurrency,
		SkipSecrets: cfg.Privacy.SkipSecrets,
		SkipPaths:   cfg.Privacy.SkipPaths,
		Logger:      log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := engine.ProcessFiles(ctx, files)
	if res.Err != nil {
		log.Debug("some files were not merged", zap.Int("failed", res.Count(merge.OutcomeFailed)))
	}

	if flagStage {
		if err := gitctx.Stage(ctx, mergedPaths(res)); err != nil {
			log.Warn("restaging merged files", zap.Error(err))
		}
	}

	if err := writer.Write(cmd.OutOrStdout(), res); err != nil {
		log.Warn("writing summary", zap.Error(err))
	}
	return nil
}

// mergedPaths returns the files whose content was rewritten by this run.
func mergedPaths(res merge.Result) []string {
	return lo.FilterMap(res.Files, func(f merge.FileResult, _ int) (string, bool) {
		return f.Path, f.Outcome == merge.OutcomeMerged
	})
}

// noRemote reports every file as absent upstream.
type noRemote struct{}

func (noRemote) Content(context.Context, string) (string, bool) { return "", false }
