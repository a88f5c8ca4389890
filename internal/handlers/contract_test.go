package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/contractui/api/internal/catalog"
	"github.com/contractui/api/internal/config"
	"github.com/contractui/api/internal/export"
	"github.com/contractui/api/internal/generation"
	"github.com/contractui/api/internal/middleware"
	"github.com/contractui/api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	calls []models.GenerationRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req models.GenerationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.text, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Port:               "5000",
		Environment:        "test",
		OpenRouterAPIKey:   "test-key",
		MaxTokens:          1600,
		DefaultTemperature: 0.4,
		SecretKey:          "test-secret",
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, gen Generator) (*gin.Engine, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	cat := catalog.New("openai/gpt-4o-mini", []models.ModelChoice{
		{ID: "openai/gpt-4o-mini", Label: "GPT-4o mini"},
		{ID: "anthropic/claude-3.5-sonnet", Label: "Claude 3.5 Sonnet"},
	})

	router, err := NewRouter(RouterDeps{
		Config:    cfg,
		Catalog:   cat,
		Generator: gen,
		Registry:  reg,
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)
	return router, reg
}

func validForm() url.Values {
	return url.Values{
		models.FieldTenantName:      {"Amine Benali"},
		models.FieldLandlordName:    {"Sara Idrissi"},
		models.FieldRent:            {"7 000"},
		models.FieldSecurityDeposit: {"14000"},
		models.FieldDurationMonths:  {"12"},
		models.FieldAddress:         {"12 rue des Oliviers, Rabat"},
		models.FieldStartDate:       {"2025-01-01"},
		models.FieldModelID:         {"anthropic/claude-3.5-sonnet"},
		models.FieldTemperature:     {"0,7"},
	}
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// followFlash replays the flash cookie of a redirect on the entry page
func followFlash(t *testing.T, router http.Handler, w *httptest.ResponseRecorder) string {
	t.Helper()

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, middleware.EntryPath, w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, middleware.EntryPath, nil)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.FlashCookie {
			req.AddCookie(ck)
		}
	}
	page := httptest.NewRecorder()
	router.ServeHTTP(page, req)
	require.Equal(t, http.StatusOK, page.Code)
	return page.Body.String()
}

func TestIndexRendersForm(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), &fakeGenerator{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<option value="openai/gpt-4o-mini" selected>GPT-4o mini</option>`)
	assert.Contains(t, body, `value="__custom__"`)
	assert.Contains(t, body, `name="temperature" inputmode="decimal" value="0.4"`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestGenerateSuccess(t *testing.T) {
	gen := &fakeGenerator{text: "CONTRAT DE LOCATION\n\nArticle 1 : objet."}
	router, reg := newTestRouter(t, testConfig(), gen)

	w := postForm(router, "/generate", validForm())

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "CONTRAT DE LOCATION")
	assert.Contains(t, body, "7000 MAD")
	assert.Contains(t, body, "anthropic/claude-3.5-sonnet")

	require.Len(t, gen.calls, 1)
	call := gen.calls[0]
	assert.Equal(t, "anthropic/claude-3.5-sonnet", call.ModelID)
	assert.InDelta(t, 0.7, call.Temperature, 1e-9)
	assert.Equal(t, 1600, call.MaxTokens)
	assert.Contains(t, call.Prompt, "Amine Benali")
	assert.Contains(t, call.Prompt, "12 rue des Oliviers, Rabat")

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "contractui_generation_requests_total")
}

func TestGenerateCustomModelAndClampedTemperature(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	router, _ := newTestRouter(t, testConfig(), gen)

	form := validForm()
	form.Set(models.FieldModelID, models.CustomModelOption)
	form.Set(models.FieldModelIDCustom, " mistralai/mistral-large ")
	form.Set(models.FieldTemperature, "5")

	w := postForm(router, "/generate", form)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, gen.calls, 1)
	assert.Equal(t, "mistralai/mistral-large", gen.calls[0].ModelID)
	assert.InDelta(t, models.MaxTemperature, gen.calls[0].Temperature, 1e-9)
}

func TestGenerateUnparsableTemperatureUsesDefault(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	router, _ := newTestRouter(t, testConfig(), gen)

	form := validForm()
	form.Set(models.FieldTemperature, "chaud")

	w := postForm(router, "/generate", form)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, gen.calls, 1)
	assert.InDelta(t, 0.4, gen.calls[0].Temperature, 1e-9)
}

func TestGenerateValidationFailure(t *testing.T) {
	gen := &fakeGenerator{text: "never"}
	router, _ := newTestRouter(t, testConfig(), gen)

	form := validForm()
	form.Set(models.FieldTenantName, "  ")
	form.Set(models.FieldDurationMonths, "douze")

	w := postForm(router, "/generate", form)
	page := followFlash(t, router, w)

	assert.Empty(t, gen.calls)
	assert.Contains(t, page, "Champs manquants : tenant_name")
	assert.Contains(t, page, "duration_months")
	assert.Contains(t, page, `name="rent" inputmode="decimal" value="7 000"`)
	assert.Contains(t, page, `value="douze"`)
}

func TestGenerateLongAddressKeepsFlash(t *testing.T) {
	gen := &fakeGenerator{text: "never"}
	router, _ := newTestRouter(t, testConfig(), gen)

	form := validForm()
	form.Set(models.FieldAddress, strings.Repeat("12 rue des Oliviers ", 144))
	form.Set(models.FieldRent, "sept mille")

	w := postForm(router, "/generate", form)
	assert.Less(t, len(w.Header().Get("Set-Cookie")), 4096)

	page := followFlash(t, router, w)
	assert.Empty(t, gen.calls)
	assert.Contains(t, page, "Champs numériques invalides : rent")
	assert.Contains(t, page, `value="sept mille"`)
}

func TestGenerateUpstreamFailure(t *testing.T) {
	gen := &fakeGenerator{err: &generation.UpstreamError{StatusCode: http.StatusBadRequest, Body: "model not found"}}
	router, _ := newTestRouter(t, testConfig(), gen)

	w := postForm(router, "/generate", validForm())
	page := followFlash(t, router, w)

	require.Len(t, gen.calls, 1)
	assert.Contains(t, page, "OpenRouter 400")
	assert.Contains(t, page, "model not found")
	assert.Contains(t, page, `value="Amine Benali"`)
}

func TestGenerateMissingCredential(t *testing.T) {
	gen := &fakeGenerator{err: generation.ErrMissingCredential}
	router, _ := newTestRouter(t, testConfig(), gen)

	w := postForm(router, "/generate", validForm())
	page := followFlash(t, router, w)

	assert.Contains(t, page, "OPENROUTER_API_KEY")
}

func TestFlashShownOnce(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), &fakeGenerator{})

	w := postForm(router, "/download-pdf", url.Values{})
	page := followFlash(t, router, w)
	assert.Contains(t, page, "Pas de contrat à télécharger.")

	again := httptest.NewRecorder()
	router.ServeHTTP(again, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, again.Body.String(), "Pas de contrat")
}

func TestDownloadDOCX(t *testing.T) {
	router, reg := newTestRouter(t, testConfig(), &fakeGenerator{})

	w := postForm(router, "/download-docx", url.Values{models.FieldContractText: {"Para1.\n\nPara2."}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.DOCXMimeType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="contrat.docx"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == "contractui_documents_exported_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDownloadPDF(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), &fakeGenerator{})

	w := postForm(router, "/download-pdf", url.Values{models.FieldContractText: {"Para1.\n\nPara2."}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.PDFMimeType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="contrat.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestDownloadBlankTextRedirects(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), &fakeGenerator{})

	for _, path := range []string{"/download-docx", "/download-pdf"} {
		w := postForm(router, path, url.Values{models.FieldContractText: {" \n\n "}})
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, middleware.EntryPath, w.Header().Get("Location"), path)
	}
}

func TestUnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), &fakeGenerator{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticAndMetricsRoutes(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), &fakeGenerator{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `contractui_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, msgNothingToDownload, userMessage(export.ErrEmptyBody))
	assert.Equal(t, msgMissingCredential, userMessage(generation.ErrMissingCredential))
	assert.Equal(t, msgExportFailed, userMessage(assert.AnError))
}
