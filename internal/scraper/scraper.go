package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/logger"
)

// program pages on the admissions site
func DefaultSources() []Source {
	return []Source{
		{Program: corpus.ProgramAI, URL: "https://abit.itmo.ru/program/master/ai"},
		{Program: corpus.ProgramAIProduct, URL: "https://abit.itmo.ru/program/master/ai_product"},
	}
}

func New(config Config) *Scraper {
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}

	if config.PageTimeout <= 0 {
		config.PageTimeout = defaultPageTimeout
	}

	if config.PDFTimeout <= 0 {
		config.PDFTimeout = defaultPDFTimeout
	}

	if len(config.Sources) == 0 {
		config.Sources = DefaultSources()
	}

	return &Scraper{
		config: config,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		// one request per second towards the admissions site
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// path of a per-program artifact inside the data directory
func (s *Scraper) path(name string) string {
	return filepath.Join(s.config.DataDir, name)
}

// scrapes every configured program. a failing program is logged and
// skipped; the results of the others are saved to study_plans_results.json.
func (s *Scraper) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(s.config.Sources))

	for _, src := range s.config.Sources {
		result, err := s.ProcessProgram(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}

			logger.Warn("failed to process program", "program", src.Program, "url", src.URL, "error", err)

			continue
		}

		results = append(results, *result)
	}

	if err := s.SaveResults(results); err != nil {
		return results, err
	}

	logger.Info("scraping finished", "programs", len(s.config.Sources), "succeeded", len(results))

	return results, nil
}

// fetches the program page, writes <program>_program_info.txt, downloads
// the curriculum PDF and extracts its text and tables
func (s *Scraper) ProcessProgram(ctx context.Context, src Source) (*Result, error) {
	log := logger.With("program", src.Program)
	log.Info("processing program", "url", src.URL)

	nextData, err := s.FetchNextData(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	if err := s.SaveProgramText(nextData, src.Program); err != nil {
		return nil, err
	}

	planURL, err := AcademicPlanURL(nextData, src.URL)
	if err != nil {
		return nil, err
	}

	log.Info("found academic plan", "url", planURL)

	pdfPath := s.path(fmt.Sprintf("%s_academic_plan.pdf", src.Program))
	if err := s.DownloadPDF(ctx, planURL, pdfPath); err != nil {
		return nil, err
	}

	text, err := ExtractText(pdfPath)
	if err != nil {
		return nil, err
	}

	tablesFolder := fmt.Sprintf("%s_tables", src.Program)
	if _, err := ExtractTables(pdfPath, s.path(tablesFolder)); err != nil {
		return nil, err
	}

	return &Result{
		Program:            src.Program,
		URL:                src.URL,
		AcademicPlanPDFURL: planURL,
		AcademicPlanText:   preview(text, previewLength),
		TablesFolder:       tablesFolder,
	}, nil
}

// downloads pageURL and returns the __NEXT_DATA__ JSON
func (s *Scraper) FetchNextData(ctx context.Context, pageURL string) (string, error) {
	body, err := s.get(ctx, pageURL, s.config.PageTimeout)
	if err != nil {
		return "", fmt.Errorf("failed to load page: %w", err)
	}

	return ParseNextData(bytes.NewReader(body))
}

func (s *Scraper) SaveProgramText(nextData string, program corpus.Program) error {
	path := s.path(fmt.Sprintf("%s_program_info.txt", program))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, []byte(RenderProgramText(nextData, program)), 0o644); err != nil { //nolint:gosec // G306: shared data file
		return fmt.Errorf("failed to write program text: %w", err)
	}

	logger.Info("saved program text", "program", program, "path", path)

	return nil
}

func (s *Scraper) DownloadPDF(ctx context.Context, pdfURL, path string) error {
	body, err := s.get(ctx, pdfURL, s.config.PDFTimeout)
	if err != nil {
		return fmt.Errorf("failed to download pdf: %w", err)
	}

	if err := os.WriteFile(path, body, 0o644); err != nil { //nolint:gosec // G306: shared data file
		return fmt.Errorf("failed to save pdf: %w", err)
	}

	logger.Info("saved pdf", "path", path, "bytes", len(body))

	return nil
}

func (s *Scraper) SaveResults(results []Result) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	path := s.path(ResultsFile)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // G306: shared data file
		return fmt.Errorf("failed to write results: %w", err)
	}

	logger.Info("saved scraping results", "path", path, "programs", len(results))

	return nil
}

func (s *Scraper) get(ctx context.Context, target string, timeout time.Duration) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s failed with status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[:n])
}
