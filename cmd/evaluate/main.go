// Command evaluate runs the plan, translate and scoring pipeline over many
// graphs without the viewer and prints a report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AmitMY/chimera/internal/catalog"
	"github.com/AmitMY/chimera/internal/evaluate"
	"github.com/AmitMY/chimera/internal/source"
	"github.com/AmitMY/chimera/internal/storage"
	"github.com/AmitMY/chimera/internal/util"
	"github.com/AmitMY/chimera/pkg/ai"
	"github.com/AmitMY/chimera/pkg/chimera"
	"github.com/AmitMY/chimera/pkg/common"
	"github.com/AmitMY/chimera/pkg/logger"
	"github.com/AmitMY/chimera/pkg/logger/console"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
)

var (
	flagURL      string
	flagSource   string
	flagGraphs   string
	flagSize     int
	flagLimit    int
	flagMode     string
	flagSample   bool
	flagCount    int
	flagBeam     int
	flagBestOnly bool
	flagParallel int
	flagRetries  int
	flagRounds   int
	flagSeed     uint64
	flagRPS      float64
	flagFormat   string
	flagOutput   string
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score plan rankings over a set of graphs",
	Long: `Score plan rankings over a set of graphs.

For every selected graph the planner service generates plans, which are
optionally sampled down to a display budget and then translated. Each
translation is checked for mentioning every entity of its graph and the
resulting ranking is scored with average precision, next to a baseline of
shuffled rankings.

Examples:
  evaluate --size 3 --limit 50
  evaluate --graphs 0,12,500 --sample --count 11 --format yaml
  evaluate --source s3://corpus/webnlg/test.json --retries 3 -o report.json`,
	SilenceUsage: true,
	RunE:         run,
}

// registerFlags runs after the .env file is loaded so that it can provide
// defaults.
func registerFlags() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagURL, "url", util.GetEnvString("CHIMERA_URL", "http://localhost:5001"), "planner service base URL")
	flags.StringVar(&flagSource, "source", util.GetEnv("GRAPHS_SOURCE"), "graph corpus file, http(s) or s3 URI (default: the planner's /graphs)")
	flags.StringVar(&flagGraphs, "graphs", "", "comma separated graph indices")
	flags.IntVar(&flagSize, "size", 0, "only graphs with this many triples")
	flags.IntVar(&flagLimit, "limit", 0, "evaluate at most this many graphs")
	flags.StringVar(&flagMode, "mode", string(common.PlanModeFull), "plan mode: full or partial")
	flags.BoolVar(&flagSample, "sample", false, "sample plans down to --count")
	flags.IntVar(&flagCount, "count", util.GetEnvInt("SAMPLE_COUNT", 11), "display budget when sampling")
	flags.IntVar(&flagBeam, "beam", 0, "beam width for translation")
	flags.BoolVar(&flagBestOnly, "best-only", false, "translate only the best plan")
	flags.IntVar(&flagParallel, "parallel", 4, "graphs evaluated at once")
	flags.IntVar(&flagRetries, "retries", 1, "attempts per remote call")
	flags.IntVar(&flagRounds, "shuffle-rounds", util.GetEnvInt("SHUFFLE_ROUNDS", 5), "shuffled baselines per graph")
	flags.Uint64Var(&flagSeed, "seed", 0, "seed for the shuffled baselines (0: random)")
	flags.Float64Var(&flagRPS, "rps", util.GetEnvNumeric("REMOTE_RPS", 0), "request rate limit towards the planner (0: unlimited)")
	flags.StringVar(&flagFormat, "format", "json", "report format: json or yaml")
	flags.StringVarP(&flagOutput, "output", "o", "", "write the report to a file instead of stdout")
	flags.BoolVar(&flagDebug, "debug", util.GetEnvBool("DEBUG", false), "debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  flagDebug,
		Prefix: "evaluate",
	}))

	mode := common.PlanMode(flagMode)
	if !mode.Valid() {
		return fmt.Errorf("unknown plan mode %q", flagMode)
	}
	indices, err := evaluate.ParseIndices(flagGraphs)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	client, err := chimera.NewClient(chimera.NewClientParams{
		BaseURL:           flagURL,
		Timeout:           time.Duration(util.GetEnvInt("REMOTE_TIMEOUT_SECONDS", 120)) * time.Second,
		RequestsPerSecond: flagRPS,
		Burst:             util.GetEnvInt("REMOTE_BURST", 1),
	})
	if err != nil {
		return err
	}

	fetch := client.Graphs
	if flagSource != "" {
		loader, err := newLoader(ctx, flagSource)
		if err != nil {
			return err
		}
		fetch = func(ctx context.Context) ([]common.Graph, error) {
			return source.LoadJSON[[]common.Graph](ctx, loader, flagSource)
		}
	}

	cat := catalog.NewCatalog(fetch, 0)
	graphs, err := cat.Load(ctx)
	if err != nil {
		return err
	}
	summaries, err := cat.Summaries(ctx)
	if err != nil {
		return err
	}
	selected := evaluate.Select(summaries, evaluate.Selection{Indices: indices, Size: flagSize, Limit: flagLimit})
	if len(selected) == 0 {
		return fmt.Errorf("no graph matches the selection")
	}
	logger.Info("Evaluating graphs", "graphs", len(selected), "of", len(graphs), "mode", mode, "service", client.BaseURL())

	evaluator := evaluate.NewEvaluator(client, client, evaluate.Options{
		Mode:          mode,
		Sample:        flagSample,
		Count:         flagCount,
		Translate:     ai.TranslateOptions{Beam: flagBeam, BestOnly: flagBestOnly},
		Parallel:      flagParallel,
		Retries:       flagRetries,
		ShuffleRounds: flagRounds,
		Seed:          flagSeed,
	})
	report, err := evaluator.Run(ctx, graphs, selected)
	if err != nil {
		return err
	}
	logger.Info("Evaluation finished", "evaluated", report.Evaluated, "failed", report.Failed, "precision", report.MeanPrecision, "shuffled", report.MeanShuffled)

	out := cmd.OutOrStdout()
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return evaluate.WriteReport(out, report, flagFormat)
}

func newLoader(ctx context.Context, uri string) (*source.Loader, error) {
	var s3Client *s3.Client
	if strings.HasPrefix(uri, "s3://") {
		var err error
		s3Client, err = storage.NewS3Client(ctx, storage.S3Params{
			Region:    util.GetEnvString("AWS_REGION", "us-east-1"),
			Endpoint:  util.GetEnv("AWS_ENDPOINT"),
			AccessKey: util.GetEnv("AWS_ACCESS_KEY"),
			SecretKey: util.GetEnv("AWS_SECRET_KEY"),
		})
		if err != nil {
			return nil, err
		}
	}
	return source.NewLoader(source.NewLoaderParams{S3: s3Client}), nil
}

func main() {
	util.LoadEnv()
	registerFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
