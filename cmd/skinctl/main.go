// Command skinctl drives the analysis backend from a terminal, using the same
// validation and normalization code as the web server.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	infoColor    = color.New(color.FgBlue).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	warningColor = color.New(color.FgYellow).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
	titleColor   = color.New(color.Bold).SprintFunc()
)

type options struct {
	apiURL    string
	legacyURL string
	timeout   time.Duration
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorColor("[-]"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "skinctl",
		Short:         "Piel Sana diagnostic client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", os.Getenv("ANALYSIS_API_URL"), "analysis backend origin")
	root.PersistentFlags().StringVar(&opts.legacyURL, "legacy-url", os.Getenv("LEGACY_API_URL"), "legacy analyze origin (defaults to --api-url)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "backend request timeout")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newNormalizeCmd(),
		newConditionCmd(opts),
	)
	return root
}

func (o *options) legacyBase() string {
	if o.legacyURL != "" {
		return o.legacyURL
	}
	return o.apiURL
}
