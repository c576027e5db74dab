package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corescan/corescan/pkg/scanner"
)

var (
	version = "1.0.0"

	configFile string
	verbose    bool
	debug      bool

	maxDepth          int
	concurrency       int
	timeoutSeconds    int
	rateLimit         float64
	rateLimitBurst    int
	outputFile        string
	stateFile         string
	settingsFile      string
	userAgent         string
	allowSubdomains   bool
	allowAllDomains   bool
	noScanJS          bool
	noScanHTML        bool
	scanAPI           bool
	noVueDetector     bool
	deep              bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "corescan",
		Short:   "corescan - client-side static source scanner",
		Long:    "corescan discovers sensitive information and attack surface in web application client-side source: endpoints, credentials, tokens, Vue routes, and webpack chunk maps.",
		Version: version,
	}

	scanCmd := &cobra.Command{
		Use:   "scan [target]",
		Short: "Scan a target URL",
		Long:  "Fetch a target URL and extract endpoints, credentials, and other sensitive detections from its client-side source. Pass --deep to follow discovered links.",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}

	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume a deep scan from a saved state file",
		RunE:  runResume,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug-level logging")

	scanCmd.Flags().IntVarP(&maxDepth, "max-depth", "d", 3, "Maximum deep-crawl layer depth")
	scanCmd.Flags().IntVarP(&concurrency, "concurrency", "n", 4, "Per-layer worker pool size")
	scanCmd.Flags().IntVarP(&timeoutSeconds, "timeout", "t", 5, "Per-request timeout in seconds")
	scanCmd.Flags().Float64VarP(&rateLimit, "rate-limit", "r", 5, "Requests per second, per domain")
	scanCmd.Flags().IntVar(&rateLimitBurst, "rate-limit-burst", 10, "Rate limiter burst size")
	scanCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for the JSON result (default: stdout)")
	scanCmd.Flags().StringVar(&stateFile, "state-file", "", "BoltDB state file for persistence")
	scanCmd.Flags().StringVar(&settingsFile, "settings-file", "", "Settings file with regex/domain/Vue overrides")
	scanCmd.Flags().StringVar(&userAgent, "user-agent", "corescan/1.0", "User-Agent header sent with requests")
	scanCmd.Flags().BoolVar(&allowSubdomains, "allow-subdomains", false, "Follow links onto subdomains of the target")
	scanCmd.Flags().BoolVar(&allowAllDomains, "allow-all-domains", false, "Follow links onto any domain")
	scanCmd.Flags().BoolVar(&noScanJS, "no-scan-js", false, "Do not follow discovered .js files")
	scanCmd.Flags().BoolVar(&noScanHTML, "no-scan-html", false, "Do not follow discovered HTML pages")
	scanCmd.Flags().BoolVar(&scanAPI, "scan-api", false, "Follow discovered API-shaped URLs")
	scanCmd.Flags().BoolVar(&noVueDetector, "no-vue-detector", false, "Disable Vue route extraction and webpack chunk analysis")
	scanCmd.Flags().BoolVar(&deep, "deep", false, "Run a deep crawl instead of a single-page scan")

	resumeCmd.Flags().StringVar(&stateFile, "state-file", "", "State file to resume from")
	resumeCmd.MarkFlagRequired("state-file")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resumeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]

	opts := []scanner.Option{
		scanner.WithTarget(target),
		scanner.WithMaxDepth(maxDepth),
		scanner.WithConcurrency(concurrency),
		scanner.WithTimeout(time.Duration(timeoutSeconds) * time.Second),
		scanner.WithRateLimit(rateLimit, rateLimitBurst),
		scanner.WithUserAgent(userAgent),
		scanner.WithDomainScope(allowSubdomains, allowAllDomains),
		scanner.WithFrontierFilters(!noScanJS, !noScanHTML, scanAPI),
		scanner.WithVerbose(verbose),
		scanner.WithDebug(debug),
	}
	if settingsFile != "" {
		opts = append(opts, scanner.WithSettingsFile(settingsFile))
	}
	if stateFile != "" {
		opts = append(opts, scanner.WithStateFile(stateFile))
	}
	if noVueDetector {
		opts = append(opts, scanner.WithVueDetector(scanner.VueDetectorConfig{Enabled: false}))
	}

	if configFile != "" {
		fileCfg, err := scanner.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		fileCfg.Target = target
		opts = []scanner.Option{scanner.WithConfig(fileCfg)}
	}

	s, err := scanner.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create scanner: %w", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
		s.Stop()
		cancel()
	}()

	fmt.Printf("corescan v%s - scanning %s\n", version, target)

	var result *scanner.ScanResult
	if deep {
		result, err = s.DeepScan(ctx, target)
	} else {
		result, err = s.ScanPage(ctx, target)
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	return writeResult(result)
}

func runResume(cmd *cobra.Command, args []string) error {
	s, err := scanner.New(scanner.WithTarget(stateFile), scanner.WithStateFile(stateFile))
	if err != nil {
		return fmt.Errorf("failed to create scanner: %w", err)
	}
	defer s.Close()

	fmt.Printf("Resuming deep scan from state file %s\n", stateFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		s.Stop()
		cancel()
	}()

	result, err := s.DeepScan(ctx, stateFile)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("resumed scan failed: %w", err)
	}
	return writeResult(result)
}

func writeResult(result *scanner.ScanResult) error {
	if result == nil {
		return nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if outputFile == "" {
		printSummary(result)
		return nil
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Printf("Results written to %s\n", outputFile)
	printSummary(result)
	return nil
}

func printSummary(result *scanner.ScanResult) {
	fmt.Println()
	fmt.Println("Scan Summary")
	fmt.Printf("Duration:          %v\n", result.Stats.Duration.Round(time.Millisecond))
	fmt.Printf("Pages scanned:     %d\n", result.Stats.PagesScanned)
	fmt.Printf("Detections found:  %d\n", result.Stats.DetectionsMerged)
	fmt.Printf("Errors:            %d\n", result.Stats.ErrorCount)
	fmt.Println()

	for category, detections := range result.Categories {
		if len(detections) == 0 {
			continue
		}
		fmt.Printf("%s: %d\n", category, len(detections))
	}

	if len(result.VueRoutes) > 0 {
		fmt.Printf("\nVue routes: %d\n", len(result.VueRoutes))
	}
	if len(result.WebpackChunks) > 0 {
		fmt.Printf("Webpack chunks: %d\n", len(result.WebpackChunks))
	}
}
