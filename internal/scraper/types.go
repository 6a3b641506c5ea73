package scraper

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
)

const (
	defaultUserAgent   = "Mozilla/5.0 (compatible; Bot/1.0)"
	defaultPageTimeout = 10 * time.Second
	defaultPDFTimeout  = 15 * time.Second

	nextDataScriptID = "__NEXT_DATA__"
	previewLength    = 2000

	ResultsFile = "study_plans_results.json"
)

var (
	ErrNextDataNotFound = errors.New("script __NEXT_DATA__ not found")
	ErrEmptyNextData    = errors.New("script __NEXT_DATA__ is empty")
	ErrInvalidNextData  = errors.New("script __NEXT_DATA__ is not valid JSON")
	ErrPlanURLNotFound  = errors.New("academic plan url not found")
)

// a program page to scrape
type Source struct {
	Program corpus.Program
	URL     string
}

type Config struct {
	DataDir     string
	UserAgent   string
	PageTimeout time.Duration
	PDFTimeout  time.Duration
	Sources     []Source
}

// summary of one scraped program, written to study_plans_results.json
type Result struct {
	Program            corpus.Program `json:"program"`
	URL                string         `json:"url"`
	AcademicPlanPDFURL string         `json:"academic_plan_pdf_url"`
	AcademicPlanText   string         `json:"academic_plan_text_preview"`
	TablesFolder       string         `json:"tables_folder"`
}

type Scraper struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}
