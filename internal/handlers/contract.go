package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/contractui/api/internal/catalog"
	"github.com/contractui/api/internal/config"
	"github.com/contractui/api/internal/contract"
	"github.com/contractui/api/internal/export"
	"github.com/contractui/api/internal/generation"
	"github.com/contractui/api/internal/middleware"
	"github.com/contractui/api/internal/models"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/contractui/api/internal/handlers")

// Generator produces contract text from a prompt
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (string, error)
}

// Messages shown to users
const (
	msgNothingToDownload = "Pas de contrat à télécharger."
	msgMissingCredential = "Clé API OpenRouter absente : définissez OPENROUTER_API_KEY."
	msgExportFailed      = "Le document n'a pas pu être généré."
	msgInvalidForm       = "Formulaire illisible."
)

// ContractHandler serves the entry form, the generation and the downloads
type ContractHandler struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	generator Generator
	flasher   *middleware.Flasher
	metrics   *middleware.Metrics
	logger    *zap.Logger
}

// NewContractHandler creates a new contract handler
func NewContractHandler(cfg *config.Config, cat *catalog.Catalog, generator Generator, flasher *middleware.Flasher, metrics *middleware.Metrics, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{
		cfg:       cfg,
		catalog:   cat,
		generator: generator,
		flasher:   flasher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Index renders the entry form
func (h *ContractHandler) Index(c *gin.Context) {
	var flash *middleware.Flash
	var values map[string]string
	if f, ok := h.flasher.Pop(c); ok {
		flash = &f
		values = f.Values
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":        export.Title,
		"Flash":        flash,
		"Values":       values,
		"Models":       h.catalog.Models(),
		"DefaultModel": h.catalog.Default(),
		"CustomOption": models.CustomModelOption,
		"Temperature":  strconv.FormatFloat(h.cfg.DefaultTemperature, 'f', -1, 64),
	})
}

// Generate validates the form, calls the model and renders the result
func (h *ContractHandler) Generate(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "Generate")
	defer span.End()

	if err := c.Request.ParseForm(); err != nil {
		h.fail(c, msgInvalidForm, nil, err)
		return
	}
	form := c.Request.PostForm

	candidate := contract.Intake(form)
	params, err := contract.Validate(candidate)
	if err != nil {
		h.metrics.ObserveGeneration(h.modelLabel(""), models.OutcomeInvalidInput, 0)
		h.fail(c, userMessage(err), candidate.Values(), err)
		return
	}

	modelID := h.catalog.Resolve(form.Get(models.FieldModelID), form.Get(models.FieldModelIDCustom))
	temperature := models.ClampTemperature(contract.FloatOr(form.Get(models.FieldTemperature), h.cfg.DefaultTemperature))
	span.SetAttributes(attribute.String("generation.model", modelID))

	req := models.GenerationRequest{
		ModelID:     modelID,
		Prompt:      contract.BuildPrompt(params),
		Temperature: temperature,
		MaxTokens:   h.cfg.MaxTokens,
	}

	start := time.Now()
	text, err := h.generator.Generate(ctx, req)
	entry := models.GenerationLog{
		RequestID: middleware.GetRequestID(c),
		ModelID:   modelID,
		Outcome:   outcomeOf(err),
		PromptLen: len(req.Prompt),
		OutputLen: len(text),
		Latency:   time.Since(start),
	}
	h.metrics.ObserveGeneration(h.modelLabel(modelID), entry.Outcome, entry.Latency)
	h.logGeneration(entry, err)

	if err != nil {
		h.fail(c, userMessage(err), candidate.Values(), err)
		return
	}

	c.HTML(http.StatusOK, "result.html", gin.H{
		"Title":        export.Title,
		"Flash":        nil,
		"ContractText": text,
		"Params":       params,
		"ModelID":      modelID,
		"Temperature":  strconv.FormatFloat(temperature, 'f', -1, 64),
	})
}

// DownloadDOCX returns the posted contract text as a Word document
func (h *ContractHandler) DownloadDOCX(c *gin.Context) {
	h.download(c, "docx", export.DOCXFilename, export.DOCXMimeType, export.DOCX)
}

// DownloadPDF returns the posted contract text as a PDF document
func (h *ContractHandler) DownloadPDF(c *gin.Context) {
	h.download(c, "pdf", export.PDFFilename, export.PDFMimeType, export.PDF)
}

func (h *ContractHandler) download(c *gin.Context, format, filename, mimeType string, render func(title, body string) ([]byte, error)) {
	_, span := tracer.Start(c.Request.Context(), "Download")
	defer span.End()
	span.SetAttributes(attribute.String("export.format", format))

	text := c.PostForm(models.FieldContractText)
	if strings.TrimSpace(text) == "" {
		h.fail(c, msgNothingToDownload, nil, export.ErrEmptyBody)
		return
	}

	data, err := render(export.Title, text)
	if err != nil {
		h.fail(c, userMessage(err), nil, err)
		return
	}

	h.metrics.ObserveExport(format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, mimeType, data)
}

func (h *ContractHandler) fail(c *gin.Context, message string, values map[string]string, err error) {
	h.logger.Warn("request rejected",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	middleware.RedirectWithFlash(c, h.flasher, h.logger, message, values)
}

func (h *ContractHandler) logGeneration(entry models.GenerationLog, err error) {
	fields := []zap.Field{
		zap.String("request_id", entry.RequestID),
		zap.String("model", entry.ModelID),
		zap.String("outcome", string(entry.Outcome)),
		zap.Int("prompt_len", entry.PromptLen),
		zap.Int("output_len", entry.OutputLen),
		zap.Duration("latency", entry.Latency),
	}
	if err != nil {
		h.logger.Error("generation failed", append(fields, zap.Error(err))...)
		return
	}
	h.logger.Info("generation completed", fields...)
}

// modelLabel keeps free-text model ids out of metric labels
func (h *ContractHandler) modelLabel(modelID string) string {
	switch {
	case modelID == "":
		return "none"
	case h.catalog.Contains(modelID):
		return modelID
	default:
		return "custom"
	}
}

func outcomeOf(err error) models.GenerationOutcome {
	switch {
	case err == nil:
		return models.OutcomeSuccess
	case errors.Is(err, generation.ErrMissingCredential):
		return models.OutcomeConfigError
	default:
		return models.OutcomeUpstreamError
	}
}

// userMessage turns pipeline errors into the flash text
func userMessage(err error) string {
	var verr *contract.ValidationError
	var upstream *generation.UpstreamError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, generation.ErrMissingCredential):
		return msgMissingCredential
	case errors.As(err, &upstream):
		return upstream.Error()
	case errors.Is(err, export.ErrEmptyBody):
		return msgNothingToDownload
	default:
		return msgExportFailed
	}
}
