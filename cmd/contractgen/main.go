// Command contractgen generates a lease contract from flags and writes it as
// DOCX, PDF or plain text.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/contractui/api/internal/catalog"
	"github.com/contractui/api/internal/config"
	"github.com/contractui/api/internal/contract"
	"github.com/contractui/api/internal/export"
	"github.com/contractui/api/internal/generation"
	"github.com/contractui/api/internal/models"
	"go.uber.org/zap"
)

type generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (string, error)
}

type options struct {
	form        url.Values
	model       string
	temperature string
	out         string
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	cat := catalog.Load(cfg.ModelsPath, logger)
	client := generation.New(generation.Options{
		URL:     cfg.OpenRouterURL,
		APIKey:  cfg.OpenRouterAPIKey,
		Referer: cfg.Referer,
		Title:   cfg.AppTitle,
		Timeout: cfg.GenerationTimeout,
	}, logger)

	if err := run(context.Background(), opts, cfg, cat, client, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("contractgen", flag.ContinueOnError)

	fields := []struct {
		name  string
		usage string
	}{
		{models.FieldTenantName, "tenant full name"},
		{models.FieldLandlordName, "landlord full name"},
		{models.FieldRent, "monthly rent in MAD"},
		{models.FieldSecurityDeposit, "security deposit in MAD"},
		{models.FieldDurationMonths, "lease duration in months"},
		{models.FieldAddress, "property address"},
		{models.FieldStartDate, "lease start date"},
	}
	values := make(map[string]*string, len(fields))
	for _, f := range fields {
		values[f.name] = fs.String(strings.ReplaceAll(f.name, "_", "-"), "", f.usage)
	}

	var opts options
	fs.StringVar(&opts.model, "model", "", "model id (defaults to the catalog default)")
	fs.StringVar(&opts.temperature, "temperature", "", "sampling temperature between 0 and 2")
	fs.StringVar(&opts.out, "out", "-", "output path ending in .docx or .pdf, or - for text on stdout")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.form = url.Values{}
	for name, v := range values {
		opts.form.Set(name, *v)
	}
	return opts, nil
}

func run(ctx context.Context, opts options, cfg *config.Config, cat *catalog.Catalog, gen generator, stdout io.Writer) error {
	params, err := contract.Validate(contract.Intake(opts.form))
	if err != nil {
		return err
	}

	var render func(title, body string) ([]byte, error)
	switch strings.ToLower(filepath.Ext(opts.out)) {
	case ".docx":
		render = export.DOCX
	case ".pdf":
		render = export.PDF
	default:
		if opts.out != "-" {
			return fmt.Errorf("unsupported output %q: use .docx, .pdf or -", opts.out)
		}
	}

	text, err := gen.Generate(ctx, models.GenerationRequest{
		ModelID:     cat.Resolve(opts.model, ""),
		Prompt:      contract.BuildPrompt(params),
		Temperature: models.ClampTemperature(contract.FloatOr(opts.temperature, cfg.DefaultTemperature)),
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return err
	}

	if render == nil {
		_, err = fmt.Fprintln(stdout, text)
		return err
	}

	data, err := render(export.Title, text)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", opts.out, len(data))
	return nil
}
