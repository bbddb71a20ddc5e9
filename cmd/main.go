package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cart-extractor/adapters"
	"cart-extractor/extractor"
	"cart-extractor/internal/types"
	"cart-extractor/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	defaults := types.DefaultConfig()

	var (
		urlFlag      = flag.String("url", "", "Cart page URL to extract")
		fileFlag     = flag.String("file", "", "Saved cart page HTML to extract (requires --host)")
		hostFlag     = flag.String("host", "", "Hostname used to pick the strategy (default: host of --url)")
		sitesFlag    = flag.String("sites", os.Getenv("SITES_FILE"), "Extra YAML file with declarative site configs")
		outputFlag   = flag.String("output", "", "Output file path (default: stdout)")
		listFlag     = flag.Bool("list", false, "List registered strategies and exit")
		inspectFlag  = flag.Bool("inspect", false, "Run every strategy against the page and report what each finds")
		requestDelay = flag.Duration("delay", defaults.RequestDelay, "Delay between HTTP requests")
		maxRetries   = flag.Int("retries", defaults.MaxRetries, "Maximum retry attempts")
		timeout      = flag.Duration("timeout", defaults.Timeout, "Request timeout")
		useBrowser   = flag.Bool("browser", false, "Render the page in a headless browser")
		httpOnly     = flag.Bool("http-only", false, "Use HTTP requests only (disable headless browser)")
		pollAttempts = flag.Int("poll-attempts", defaults.PollAttempts, "Browser readiness checks before capturing the page")
		pollInterval = flag.Duration("poll-interval", defaults.PollInterval, "Delay between browser readiness checks")
		readySel     = flag.String("ready", defaults.ReadySelector, "Selector the browser waits for before capturing")
		maxGeneric   = flag.Int("max-generic", defaults.MaxGenericItems, "Cap on items returned by the generic fallback")
		noiseFlag    = flag.String("noise", os.Getenv("NOISE_WORDS"), "Comma-separated extra words never accepted as item names")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := newLogger(*verbose)

	config := &types.Config{
		RequestDelay:       *requestDelay,
		MaxRetries:         *maxRetries,
		Timeout:            *timeout,
		UseHeadlessBrowser: *useBrowser && !*httpOnly,
		UserAgent:          defaults.UserAgent,
		PollAttempts:       *pollAttempts,
		PollInterval:       *pollInterval,
		ReadySelector:      *readySel,
		MaxGenericItems:    *maxGeneric,
		SitesFile:          *sitesFlag,
		ExtraNoiseWords:    splitList(*noiseFlag),
	}

	registry, err := extractor.NewDefaultRegistry(config, logger)
	if err != nil {
		logger.Fatalf("Failed to build strategy registry: %v", err)
	}

	if *listFlag {
		listStrategies(registry)
		return
	}

	// Validate flags - exactly one of --url or --file must be provided
	if *urlFlag == "" && *fileFlag == "" {
		logger.Fatal("Either --url or --file flag is required")
	}
	if *urlFlag != "" && *fileFlag != "" {
		logger.Fatal("Cannot use both --url and --file flags")
	}
	if *fileFlag != "" && *hostFlag == "" {
		logger.Fatal("--file requires --host")
	}

	var source types.PageSource
	var closeSource func()
	target := *urlFlag
	switch {
	case *fileFlag != "":
		source = utils.NewFileSource(logger)
		target = *fileFlag
	case config.UseHeadlessBrowser:
		source = utils.NewBrowserClient(config, logger)
	default:
		httpClient := utils.NewHTTPClient(config, logger)
		source = httpClient
		closeSource = httpClient.Close
	}
	if closeSource != nil {
		defer closeSource()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *inspectFlag {
		if err := inspect(ctx, registry, source, target, *hostFlag); err != nil {
			logger.Fatalf("Inspection failed: %v", err)
		}
		return
	}

	cartExtractor := extractor.NewCartExtractor(registry, source, logger)
	result, err := cartExtractor.Extract(ctx, target, *hostFlag)
	if err != nil {
		logger.Fatalf("Extraction failed: %v", err)
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to marshal results: %v", err)
	}

	if *outputFlag != "" {
		if err := os.WriteFile(*outputFlag, jsonData, 0644); err != nil {
			logger.Fatalf("Failed to write output file: %v", err)
		}
		logger.Infof("Results written to: %s", *outputFlag)
	} else {
		fmt.Println(string(jsonData))
	}

	logger.Infof("Extracted %d items from %s using %s", len(result.Items), result.Hostname, result.Strategy)
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	// Logs go to stderr so JSON on stdout stays clean
	logger.SetOutput(os.Stderr)

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

func listStrategies(registry *extractor.Registry) {
	for _, s := range registry.Strategies() {
		fmt.Printf("%-12s %-16s %s\n", s.SiteID(), s.DisplayName(), strings.Join(s.URLPatterns(), ", "))
	}
	if fb := registry.Fallback(); fb != nil {
		fmt.Printf("%-12s %-16s (fallback)\n", fb.SiteID(), fb.DisplayName())
	}
}

// inspect runs every strategy directly against the page, bypassing hostname
// resolution, and prints a per-strategy item count
func inspect(ctx context.Context, registry *extractor.Registry, source types.PageSource, target, hostname string) error {
	html, err := source.GetPageContent(ctx, target)
	if err != nil {
		return err
	}
	doc, err := adapters.ParseHTML(html)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	if hostname == "" {
		hostname, err = extractor.HostnameFromURL(target)
		if err != nil {
			return err
		}
	}
	selected, err := registry.FindExtractor(hostname)
	if err != nil {
		return err
	}
	fmt.Printf("Hostname %q resolves to %s\n\n", hostname, selected.SiteID())

	strategies := append(registry.Strategies(), registry.Fallback())
	for _, s := range strategies {
		items, err := safeExtract(s, doc)
		if err != nil {
			fmt.Printf("%-12s error: %v\n", s.SiteID(), err)
			continue
		}
		fmt.Printf("%-12s %d items\n", s.SiteID(), len(items))
		for i, item := range items {
			if i >= 3 {
				fmt.Printf("%-12s   ...\n", "")
				break
			}
			fmt.Printf("%-12s   %s | %s | %d\n", "", item.Name, item.Price, item.Quantity)
		}
	}
	return nil
}

func safeExtract(s types.SiteStrategy, doc *goquery.Document) (items []types.CartItem, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return s.Extract(doc)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
