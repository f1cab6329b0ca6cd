package auditor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"store-auditor/analyzers"
	"store-auditor/document"
	"store-auditor/fingerprint"
	"store-auditor/internal/types"
	"store-auditor/retriever"
	"store-auditor/scoring"
)

// AuditDateLayout is the format of StoreInfo.AuditDate
const AuditDateLayout = "2006-01-02"

var tracer = otel.Tracer("store-auditor/auditor")

// Auditor runs the audit pipeline: retrieval, store validation, fingerprinting,
// category analysis and score aggregation
type Auditor struct {
	config    *types.Config
	logger    types.Logger
	retriever *retriever.Retriever
	analyzers []analyzers.Analyzer
	now       func() time.Time
}

// NewAuditor creates an auditor that retrieves pages over HTTP
func NewAuditor(config *types.Config, logger types.Logger) *Auditor {
	return newAuditor(config, logger, retriever.New(config, logger))
}

// NewAuditorWithFetcher creates an auditor whose transports all go through fetcher
func NewAuditorWithFetcher(config *types.Config, logger types.Logger, fetcher retriever.Fetcher) *Auditor {
	return newAuditor(config, logger, retriever.NewWithFetcher(config, logger, fetcher))
}

func newAuditor(config *types.Config, logger types.Logger, r *retriever.Retriever) *Auditor {
	return &Auditor{
		config:    config,
		logger:    logger,
		retriever: r,
		analyzers: analyzers.All(logger),
		now:       time.Now,
	}
}

// SetClock replaces the clock used for the audit date
func (a *Auditor) SetClock(now func() time.Time) {
	a.now = now
}

// AuditStore retrieves rawURL and audits it
func (a *Auditor) AuditStore(ctx context.Context, rawURL string) (*types.AuditReport, error) {
	ctx, span := tracer.Start(ctx, "auditor:audit_store")
	defer span.End()

	startTime := time.Now()
	a.logger.Infof("Starting audit of %s", rawURL)

	page, err := a.retriever.Retrieve(ctx, rawURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Warnf("Retrieval of %s failed: %v", rawURL, err)
		return nil, err
	}

	report, err := a.AuditPage(ctx, page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("store.url", report.StoreInfo.URL),
		attribute.String("store.platform", report.StoreInfo.Platform),
		attribute.Int("audit.overall_score", report.OverallScore),
	)
	a.logger.Infof("Audit of %s completed in %v with overall score %d", report.StoreInfo.URL, time.Since(startTime), report.OverallScore)
	return report, nil
}

// AuditPage audits an already retrieved page. page.URL must be the normalized store URL.
func (a *Auditor) AuditPage(ctx context.Context, page *document.Page) (*types.AuditReport, error) {
	if err := fingerprint.AssertIsStore(page, page.URL); err != nil {
		a.logger.Infof("Rejected %s: %v", page.URL, err)
		return nil, err
	}

	identity := fingerprint.Identify(page, page.URL)
	a.logger.Debugf("Platform %s, free theme %v (%s)", identity.Platform, identity.ThemeInfo.IsFreeTheme, identity.ThemeInfo.Name())

	input := analyzers.Input{
		Page:     page,
		Platform: identity.Platform,
		Theme:    identity.ThemeInfo,
	}
	categories, err := a.analyze(ctx, input)
	if err != nil {
		return nil, err
	}

	raw := scoring.CategoryScores{}
	for _, category := range categories {
		raw.Set(category.ID, category.Score)
	}
	aggregation := scoring.Aggregate(raw)
	a.logger.Debugf("Raw overall %d, displayed %d", aggregation.RawOverall, aggregation.OverallScore)

	for i := range categories {
		categories[i].Score = aggregation.Adjusted.Get(categories[i].ID)
		categories[i].Status = scoring.StatusLabel(categories[i].Score)
	}

	loss := scoring.EstimateRevenueLoss(aggregation.OverallScore, aggregation.Adjusted, identity.ThemeInfo)

	return &types.AuditReport{
		StoreInfo: types.StoreInfo{
			URL:       page.URL,
			Domain:    domainOf(page.URL),
			Platform:  identity.Platform,
			AuditDate: a.now().Format(AuditDateLayout),
			ThemeName: strings.ToLower(identity.ThemeInfo.Name()),
		},
		OverallScore: aggregation.OverallScore,
		Status:       scoring.StatusLabel(aggregation.OverallScore),
		RevenueLoss:  loss,
		Categories:   categories,
		ActionPlan:   scoring.BuildActionPlan(aggregation.Adjusted, identity.ThemeInfo, loss),
	}, nil
}

// analyze runs every analyzer over input. Results keep analyzer order whether or not they run concurrently.
func (a *Auditor) analyze(ctx context.Context, input analyzers.Input) ([]types.CategoryResult, error) {
	ctx, span := tracer.Start(ctx, "auditor:analyze")
	defer span.End()

	results := make([]types.CategoryResult, len(a.analyzers))

	if !a.config.AnalyzeConcurrently {
		for i, analyzer := range a.analyzers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = analyzer.Analyze(input)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, analyzer := range a.analyzers {
		i, analyzer := i, analyzer
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = analyzer.Analyze(input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to analyze store: %w", err)
	}
	return results, nil
}

// Close cleans up resources
func (a *Auditor) Close() {
	if a.retriever != nil {
		a.retriever.Close()
	}
}

// AuditStore audits rawURL with the default configuration
func AuditStore(ctx context.Context, rawURL string, logger types.Logger) (*types.AuditReport, error) {
	a := NewAuditor(types.DefaultConfig(), logger)
	defer a.Close()
	return a.AuditStore(ctx, rawURL)
}

func domainOf(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}
