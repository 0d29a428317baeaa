package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pielsanaia/pielsana/internal/ai"
	"github.com/pielsanaia/pielsana/internal/ai/backend"
	"github.com/pielsanaia/pielsana/internal/analysis"
	"github.com/pielsanaia/pielsana/internal/conditions"
	"github.com/pielsanaia/pielsana/internal/legacy"
	"github.com/pielsanaia/pielsana/internal/skinapi"
	"github.com/pielsanaia/pielsana/internal/web"
	"github.com/pielsanaia/pielsana/pkg/models"
	"github.com/spf13/cobra"
)

const maxImageBytes = 10 << 20

func newAnalyzeCmd(opts *options) *cobra.Command {
	var (
		analysisType string
		consent      bool
		legacyMode   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Submit an image and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			req := models.AnalysisRequest{
				Type:        models.AnalysisType(strings.ToLower(analysisType)),
				Filename:    filepath.Base(args[0]),
				ContentType: http.DetectContentType(data),
				Image:       data,
				Consent:     models.ConsentState(consent),
			}

			client := skinapi.NewHTTPClient(opts.apiURL, opts.legacyBase(), opts.timeout)
			recs := ai.NewService(backend.NewProvider(client), nil, opts.timeout, 0)
			svc := analysis.NewService(client, recs, maxImageBytes)
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			if legacyMode {
				raw, err := svc.SubmitLegacy(ctx, req)
				if err != nil {
					return explain(err)
				}
				report, err := legacy.Parse(raw)
				if err != nil {
					return err
				}
				printReport(out, report)
				return nil
			}

			sub, err := svc.Submit(ctx, req)
			if err != nil {
				return explain(err)
			}
			if sub.Payload != nil {
				printResult(out, sub.Payload, svc.Recommendations(ctx, sub.Payload.Prediction))
				return nil
			}

			fmt.Fprintf(out, "%s submitted, result id %s\n", infoColor("[*]"), sub.ResultID)
			view, err := svc.Result(ctx, sub.ResultID)
			if err != nil {
				return fmt.Errorf("fetching result %s: %w", sub.ResultID, err)
			}
			printResult(out, view.Result, view.Recommendations)
			return nil
		},
	}

	cmd.Flags().StringVarP(&analysisType, "type", "t", string(models.AnalysisMoles), "analysis type: acne, rosacea, sunspots or moles")
	cmd.Flags().BoolVar(&consent, "accept-consent", false, "accept the data processing disclosure for this upload")
	cmd.Flags().BoolVar(&legacyMode, "legacy", false, "use the legacy facial analysis endpoint")
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <payload.json|->",
		Short: "Print the report built from a legacy analyze payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1<<20))
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			report, err := legacy.Parse(raw)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func newConditionCmd(opts *options) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "condition [slug]",
		Short: "Print condition reference content, or list the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := conditions.DefaultCatalog()
			if err != nil {
				return err
			}
			var src conditions.Remote
			if remote {
				src = skinapi.NewHTTPClient(opts.apiURL, opts.legacyBase(), opts.timeout)
			}
			svc := conditions.NewService(nil, catalog, src, nil, 0)
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, c := range svc.List(cmd.Context()) {
					fmt.Fprintf(out, "%-12s %s\n", c.Slug, c.Title)
				}
				return nil
			}

			info, err := svc.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printCondition(out, info)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "fall back to the backend for slugs missing from the catalog")
	return cmd
}

// explain rewrites validation errors into terminal hints.
func explain(err error) error {
	switch {
	case errors.Is(err, analysis.ErrConsentRequired):
		return errors.New("consent not accepted: pass --accept-consent")
	case errors.Is(err, analysis.ErrUnknownType):
		return fmt.Errorf("unknown analysis type: %w", err)
	case errors.Is(err, skinapi.ErrBackendTimeout):
		return fmt.Errorf("backend timed out: %w", err)
	}
	return err
}

func printResult(w io.Writer, res *models.AnalysisResult, recs *models.Recommendations) {
	switch {
	case res.Error != "":
		fmt.Fprintf(w, "%s %s\n", warningColor("[!]"), res.Error)
	case res.Condition != "":
		fmt.Fprintf(w, "%s %s\n", successColor("[+]"), res.Condition)
	case res.Prediction != "":
		fmt.Fprintf(w, "%s Predicción: %s\n", successColor("[+]"), res.Prediction)
	}
	if res.Description != "" {
		fmt.Fprintln(w, res.Description)
	}
	if len(res.Probabilities) > 0 {
		fmt.Fprintln(w, web.Pretty(res.Probabilities))
	}
	if recs.Empty() {
		return
	}
	fmt.Fprintln(w, titleColor("Recomendaciones"))
	if recs.Description != "" {
		fmt.Fprintln(w, recs.Description)
	}
	for _, item := range recs.Items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func printReport(w io.Writer, r *models.SkinReport) {
	fmt.Fprintf(w, "%s payload shape: %s\n", infoColor("[*]"), r.Shape)
	for _, m := range []struct {
		name string
		m    models.Metric
	}{
		{"Hidratación", r.Hydration},
		{"Textura", r.Texture},
		{"Poros", r.Pores},
		{"Oleosidad", r.Oiliness},
	} {
		fmt.Fprintf(w, "%-12s %5.1f  %s\n", m.name, m.m.Score, levelColor(m.m.Level))
	}
	fmt.Fprintf(w, "Fatiga: %s  Nutrición: %s  Rojez: %s\n",
		r.Health.FatigueLevel, r.Health.NutritionLevel, r.Health.RednessLevel)
	fmt.Fprintf(w, "Tono: %s\n", r.Derm.Tone)
	for _, c := range r.Derm.Conditions {
		fmt.Fprintf(w, "  - %s\n", c)
	}
	if r.Emotion != nil {
		fmt.Fprintf(w, "Emoción dominante: %s\n", r.Emotion.Dominant)
	}
}

func levelColor(level string) string {
	switch level {
	case "Excelente", "Bueno":
		return successColor(level)
	case "Regular":
		return warningColor(level)
	case "Bajo", "Muy bajo":
		return errorColor(level)
	}
	return level
}

func printCondition(w io.Writer, c *models.ConditionInfo) {
	fmt.Fprintf(w, "%s (%s, %s)\n", titleColor(c.Title), c.Slug, c.Source)
	fmt.Fprintln(w, c.Description)
	for _, sec := range []struct {
		title string
		items []string
	}{
		{"Causas", c.Causes},
		{"Síntomas", c.Symptoms},
		{"Tratamiento", c.Treatment},
		{"Prevención", c.Prevention},
	} {
		if len(sec.items) == 0 {
			continue
		}
		fmt.Fprintln(w, titleColor(sec.title))
		for _, item := range sec.items {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
}
