package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stocktag/internal/catalog"
	"stocktag/internal/config"
	"stocktag/internal/embed"
	"stocktag/internal/export"
	"stocktag/internal/pipeline"
	"stocktag/internal/provider"
	"stocktag/internal/results"
	"stocktag/internal/storage"
)

const logFileName = "stocktag.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Try to load existing config.env file
	config.LoadEnvFile()

	var (
		providerName = flag.String("provider", config.ProviderGemini, "AI provider: gemini or openai")
		model        = flag.String("model", "", "model name (empty for the provider default)")
		customPrompt = flag.String("prompt", "", "custom prompt text (default prompt when empty)")
		negative     = flag.String("negative", "", "comma-separated subjects to exclude from metadata")
		fieldsFlag   = flag.String("fields", "title,description,keywords,category", "comma-separated fields to generate")
		concurrency  = flag.Int("concurrency", 4, "max concurrent provider requests")
		retries      = flag.Int("retries", 3, "retries per item after the first attempt")
		timeout      = flag.Duration("timeout", 2*time.Minute, "per-request timeout")
		platformFlag = flag.String("platform", string(export.PlatformGeneric), "export platform: freepik, shutterstock, adobestock, istock or generic")
		outPath      = flag.String("out", "", "export file path (stdout when empty)")
		dbPath       = flag.String("db", "stocktag.db", "project database path")
		embedMeta    = flag.Bool("embed", false, "write generated metadata into the image files (requires exiftool)")
		noLogFile    = flag.Bool("no-log-file", false, "log to stderr only")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <file-or-directory>...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Supported formats: %s\n\n", strings.Join(catalog.SupportedExtensions(), " "))
		flag.PrintDefaults()
		os.Exit(2)
	}

	setupLogging(*noLogFile)

	cfg := config.Default()
	cfg.Provider = *providerName
	cfg.Model = *model
	cfg.NegativeText = *negative
	cfg.Concurrency = *concurrency
	cfg.RetryCap = *retries
	cfg.RequestTimeout = *timeout
	if *customPrompt != "" {
		cfg.PromptMode = config.ModeCustom
		cfg.CustomText = *customPrompt
	}
	cfg.Fields = nil
	for _, f := range strings.Split(*fieldsFlag, ",") {
		cfg.Fields = append(cfg.Fields, config.Field(strings.TrimSpace(f)))
	}
	if err := cfg.Validate(); err != nil {
		fatal("%v", err)
	}

	platform := export.Platform(*platformFlag)

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	apiKey := apiKeyFor(cfg.Provider)
	if apiKey == "" {
		fatal("%s API key is not set", strings.ToUpper(cfg.Provider))
	}

	// Validate the key before burning requests on a bad one
	checker := provider.NewKeyChecker(provider.KeyCheckerOpts{})
	if err := checker.Validate(ctx, cfg.Provider, apiKey); err != nil {
		fatal("api key validation failed: %v", err)
	}
	log.Info().Str("provider", cfg.Provider).Msg("api key validated")

	client, err := newClient(ctx, cfg, apiKey)
	if err != nil {
		fatal("failed to initialize provider client: %v", err)
	}

	project, err := storage.Open(*dbPath)
	if err != nil {
		fatal("failed to open project database: %v", err)
	}
	defer project.Close()

	recorder := &runRecorder{store: project}
	if *embedMeta {
		embedder, err := embed.NewWriter()
		if err != nil {
			fatal("failed to start metadata embedder: %v", err)
		}
		defer embedder.Close()
		recorder.embedder = embedder
	}

	cat := catalog.New()
	enrolled, rejected := cat.Enroll(collectPaths(flag.Args()))
	for _, rej := range rejected {
		fmt.Fprintf(os.Stderr, "skipping %s: %s\n", rej.Path, rej.Reason)
	}
	if len(enrolled) == 0 {
		fatal("no supported media files to process")
	}
	log.Info().Int("enrolled", len(enrolled)).Int("rejected", len(rejected)).Msg("catalog ready")

	store := results.NewStore()
	policy := pipeline.DefaultRetryPolicy()

	observer := pipeline.ObserverFunc(func(ev pipeline.Event) {
		switch ev.Type {
		case pipeline.EventItemSucceeded:
			log.Info().Str("file", ev.Filename).Int("remaining", ev.Counters.Remaining()).Msg("item succeeded")
		case pipeline.EventItemFailed:
			log.Error().Str("file", ev.Filename).Str("reason", ev.Err).Int("remaining", ev.Counters.Remaining()).Msg("item failed")
		case pipeline.EventItemCancelled:
			log.Warn().Str("file", ev.Filename).Msg("item cancelled")
		}
	})

	sched := pipeline.NewScheduler(cat, store, client, policy, observer, recorder)

	ids := make([]string, 0, len(enrolled))
	for _, item := range enrolled {
		ids = append(ids, item.ID)
	}

	run, err := sched.Start(ctx, cfg, ids)
	if err != nil {
		fatal("failed to start run: %v", err)
	}

	// Cooperative cancellation on signal: in-flight requests finish, the
	// rest of the batch is marked cancelled.
	go func() {
		<-ctx.Done()
		run.Cancel()
	}()

	summary := run.Wait()
	renderSummary(os.Stderr, summary)

	entries := store.Succeeded(cat)
	if len(entries) == 0 {
		log.Warn().Msg("nothing to export")
		return
	}

	out := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fatal("failed to create export file: %v", err)
		}
		defer f.Close()
		out = f
	}

	report, err := export.Export(out, platform, entries)
	if err != nil {
		fatal("export failed: %v", err)
	}
	for _, skip := range report.Skipped {
		fmt.Fprintf(os.Stderr, "excluded from export %s: %v\n", skip.Filename, skip.Err)
	}
	log.Info().
		Str("platform", string(platform)).
		Int("rows", report.Rows).
		Int("skipped", len(report.Skipped)).
		Msg("export written")
}

func setupLogging(noLogFile bool) {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
	if noLogFile {
		log.Logger = log.Output(consoleWriter)
		return
	}
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.Logger = log.Output(consoleWriter)
		log.Warn().Err(err).Msg("failed to open log file")
		return
	}
	fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
	log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))
}

func apiKeyFor(providerName string) string {
	switch providerName {
	case config.ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	case config.ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

func newClient(ctx context.Context, cfg config.RunConfig, apiKey string) (provider.Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return provider.NewGemini(ctx, apiKey, cfg.Model)
	case config.ProviderOpenAI:
		return provider.NewOpenAI(apiKey, cfg.Model), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

// collectPaths expands directories into the supported media files they
// contain; plain file paths pass through untouched so enrollment can report
// unsupported ones.
func collectPaths(args []string) []string {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		_ = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if _, _, ok := catalog.KindForPath(path); ok {
				paths = append(paths, path)
			}
			return nil
		})
	}
	return paths
}

func renderSummary(w io.Writer, summary *pipeline.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"File", "Status", "Attempts", "Error"})
	for _, item := range summary.Items {
		t.AppendRow(table.Row{item.Filename, item.Status, item.Attempts, item.Err})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d items", summary.Counters.Total),
		fmt.Sprintf("%d ok / %d failed / %d cancelled",
			summary.Counters.Succeeded, summary.Counters.Failed, summary.Counters.Cancelled),
		"", summary.EndedAt.Sub(summary.StartedAt).Round(time.Second),
	})
	t.Render()
}

// runRecorder persists item transitions and, when enabled, embeds generated
// metadata into the image file after each success.
type runRecorder struct {
	store    *storage.ProjectStore
	embedder *embed.Writer
}

func (r *runRecorder) RecordStatus(item catalog.MediaItem) error {
	return r.store.RecordStatus(item)
}

func (r *runRecorder) RecordResult(item catalog.MediaItem, result provider.Result) error {
	if err := r.store.RecordResult(item, result); err != nil {
		return err
	}
	if r.embedder != nil && item.Kind == catalog.KindImage {
		return r.embedder.Write(item.Path, result.Meta)
	}
	return nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
