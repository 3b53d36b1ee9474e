package app

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/gazette-ocr/internal/auth"
	"github.com/joseph-ayodele/gazette-ocr/internal/captcha"
	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/export"
	"github.com/joseph-ayodele/gazette-ocr/internal/extract"
	"github.com/joseph-ayodele/gazette-ocr/internal/metrics"
	"github.com/joseph-ayodele/gazette-ocr/internal/ocr"
	"github.com/joseph-ayodele/gazette-ocr/internal/parser"
	"github.com/joseph-ayodele/gazette-ocr/internal/site"
)

// App holds the wired pipeline shared by the daemon and the CLI.
type App struct {
	Config       *common.Config
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Client       *site.Client
	Auth         *auth.Coordinator
	Cascade      *ocr.Cascade
	Parser       *parser.Parser
	Orchestrator *extract.Orchestrator
	Export       *export.Service
}

// New wires every component from cfg. One site client and one session are
// shared by everything built here.
func New(cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := metrics.New()

	client, err := site.NewClient(cfg.Site.BaseURL, cfg.HTTP, logger)
	if err != nil {
		return nil, fmt.Errorf("site client: %w", err)
	}

	offices, err := site.LoadOfficeDirectory(cfg.Site.OfficesFile)
	if err != nil {
		return nil, fmt.Errorf("office directory: %w", err)
	}
	if offices.Len() == 0 {
		logger.Warn("office directory is empty, every company will be skipped; see offices.example.yaml",
			"path", cfg.Site.OfficesFile)
	}

	engine := ocr.NewTesseractEngine(cfg.OCR.TessdataDir)
	solver := captcha.NewSolver(client, engine, cfg.Captcha.MaxAttempts, m, logger)

	session := auth.NewSession(cfg.Site.SessionTTL, logger)
	coordinator := auth.NewCoordinator(client, solver, session, auth.Options{
		Credentials: auth.Credentials{Email: cfg.Site.LoginEmail, Password: cfg.Site.LoginPassword},
		MaxRetries:  cfg.HTTP.MaxRetries,
		RetryDelay:  cfg.Site.LoginRetryDelay,
	}, m, logger)

	cascade := ocr.NewCascade(ocr.ConfigFrom(cfg.OCR), engine, logger, ocr.WithMetrics(m))
	p := parser.New(logger)

	orch := extract.NewOrchestrator(extract.Deps{
		Auth:    coordinator,
		Names:   site.NewNameSearch(client, solver, logger),
		Gazette: site.NewGazetteSearch(client, logger),
		Offices: offices,
		Fetcher: site.NewFetcher(client, cfg.OCR.MaxPDFBytes(), logger),
		Text:    cascade,
		Parser:  p,
	}, extract.Options{
		NameRetries:    extract.DefaultNameRetries,
		NameRetryDelay: cfg.Site.SearchRetryDelay,
	}, m, logger)

	logger.Info("pipeline ready",
		"base_url", cfg.Site.BaseURL,
		"offices", offices.Len(),
		"credentials", cfg.Site.HasCredentials(),
		"ocr_lang", cfg.OCR.Lang,
	)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Metrics:      m,
		Client:       client,
		Auth:         coordinator,
		Cascade:      cascade,
		Parser:       p,
		Orchestrator: orch,
		Export:       export.NewService(logger),
	}, nil
}

// NoticeReader runs the OCR cascade and parser on local PDF bytes.
func (a *App) NoticeReader() *extract.NoticeReader {
	return extract.NewNoticeReader(a.Cascade, a.Parser, a.Logger)
}
