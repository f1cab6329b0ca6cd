package types

import "time"

// CheckStatus is the outcome of a single heuristic check
type CheckStatus string

const (
	StatusGood     CheckStatus = "good"
	StatusWarning  CheckStatus = "warning"
	StatusCritical CheckStatus = "critical"
)

// Check is one heuristic evaluation over the fetched document
type Check struct {
	Item    string      `json:"item" yaml:"item"`
	Status  CheckStatus `json:"status" yaml:"status"`
	Details string      `json:"details" yaml:"details"`
}

// Confidence levels reported by the theme fingerprinter
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
)

// ThemeInfo describes the storefront theme, when it could be identified
type ThemeInfo struct {
	IsFreeTheme bool    `json:"isFreeTheme" yaml:"isFreeTheme"`
	ThemeName   *string `json:"themeName" yaml:"themeName"`
	Confidence  *string `json:"confidence" yaml:"confidence"`
}

// Name returns the theme name or an empty string
func (t ThemeInfo) Name() string {
	if t.ThemeName == nil {
		return ""
	}
	return *t.ThemeName
}

// CategoryResult is the outcome of one category analyzer
type CategoryResult struct {
	ID             string     `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	Score          int        `json:"score" yaml:"score"`
	Status         string     `json:"status" yaml:"status"`
	Checks         []Check    `json:"checks" yaml:"checks"`
	Impact         string     `json:"impact" yaml:"impact"`
	Recommendation string     `json:"recommendation" yaml:"recommendation"`
	ThemeInfo      *ThemeInfo `json:"themeInfo,omitempty" yaml:"themeInfo,omitempty"`
}

// Category identifiers, in report order
const (
	CategoryTrust   = "trust"
	CategoryUX      = "ux"
	CategoryProduct = "product"
	CategorySEO     = "seo"
	CategoryEmail   = "email"
	CategoryAds     = "ads"
)

// BreakdownItem is one cause in the revenue loss breakdown
type BreakdownItem struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
	Percentage  int    `json:"percentage" yaml:"percentage"`
	ColorTag    string `json:"colorTag" yaml:"colorTag"`
}

// RevenueLoss is the estimated monthly revenue loss range
type RevenueLoss struct {
	Min       int             `json:"min" yaml:"min"`
	Max       int             `json:"max" yaml:"max"`
	Breakdown []BreakdownItem `json:"breakdown" yaml:"breakdown"`
}

// Priority tiers used by the action plan
const (
	PriorityHigh   = "High Impact"
	PriorityMedium = "Medium Impact"
	PriorityLow    = "Low Impact"
)

// ActionItem is one remediation step
type ActionItem struct {
	Action        string `json:"action" yaml:"action"`
	Priority      string `json:"priority" yaml:"priority"`
	TimeEstimate  string `json:"timeEstimate" yaml:"timeEstimate"`
	RevenueImpact string `json:"revenueImpact" yaml:"revenueImpact"`
	Icon          string `json:"icon" yaml:"icon"`
}

// StoreInfo identifies the audited store
type StoreInfo struct {
	URL       string `json:"url" yaml:"url"`
	Domain    string `json:"domain" yaml:"domain"`
	Platform  string `json:"platform" yaml:"platform"`
	AuditDate string `json:"auditDate" yaml:"auditDate"`
	ThemeName string `json:"themeName,omitempty" yaml:"themeName,omitempty"`
}

// AuditReport is the complete result handed to the PDF renderer and persistence layer
type AuditReport struct {
	StoreInfo    StoreInfo        `json:"storeInfo" yaml:"storeInfo"`
	OverallScore int              `json:"overallScore" yaml:"overallScore"`
	Status       string           `json:"status" yaml:"status"`
	RevenueLoss  RevenueLoss      `json:"revenueLoss" yaml:"revenueLoss"`
	Categories   []CategoryResult `json:"categories" yaml:"categories"`
	ActionPlan   []ActionItem     `json:"actionPlan" yaml:"actionPlan"`
}

// Category returns the category with the given id, or nil
func (r *AuditReport) Category(id string) *CategoryResult {
	for i := range r.Categories {
		if r.Categories[i].ID == id {
			return &r.Categories[i]
		}
	}
	return nil
}

// Envelope describes how a transport wraps the target markup
type Envelope string

const (
	EnvelopeAuto Envelope = "auto"
	EnvelopeJSON Envelope = "json"
	EnvelopeRaw  Envelope = "raw"
)

// Transport is one entry of the retrieval fallback chain
type Transport struct {
	Name string `yaml:"name"`
	// Endpoint template; {url} is replaced with the query-escaped target, {raw} with the target as is
	Endpoint string        `yaml:"endpoint"`
	Envelope Envelope      `yaml:"envelope"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Config holds the configuration for the auditor
type Config struct {
	UserAgent           string        `yaml:"user_agent"`
	BaseTimeout         time.Duration `yaml:"base_timeout"`
	TimeoutStep         time.Duration `yaml:"timeout_step"`
	MaxBodyBytes        int64         `yaml:"max_body_bytes"`
	Transports          []Transport   `yaml:"transports"`
	AnalyzeConcurrently bool          `yaml:"analyze_concurrently"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		UserAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		BaseTimeout:  8 * time.Second,
		TimeoutStep:  3 * time.Second,
		MaxBodyBytes: 5 << 20,
		Transports: []Transport{
			{Name: "direct", Endpoint: "{raw}", Envelope: EnvelopeRaw},
			{Name: "allorigins", Endpoint: "https://api.allorigins.win/get?url={url}", Envelope: EnvelopeJSON},
			{Name: "corsproxy", Endpoint: "https://corsproxy.io/?url={url}", Envelope: EnvelopeAuto},
			{Name: "codetabs", Endpoint: "https://api.codetabs.com/v1/proxy?quest={url}", Envelope: EnvelopeAuto},
		},
		AnalyzeConcurrently: true,
	}
}

// AttemptTimeout returns the timeout for the transport at index i of the chain
func (c *Config) AttemptTimeout(i int) time.Duration {
	if i >= 0 && i < len(c.Transports) && c.Transports[i].Timeout > 0 {
		return c.Transports[i].Timeout
	}
	return c.BaseTimeout + time.Duration(i)*c.TimeoutStep
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
