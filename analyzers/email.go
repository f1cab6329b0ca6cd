package analyzers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"store-auditor/internal/types"
	"store-auditor/scoring"
)

// EmailAnalyzer checks email capture and automation
type EmailAnalyzer struct {
	*BaseAnalyzer
}

const (
	itemCaptureForm        = "Email Capture Form"
	itemAutomationPlatform = "Email Automation Platform"
)

type emailPlatform struct {
	name       string
	signatures []string
}

// Known email automation platforms, matched against the lowercased markup
var emailPlatforms = []emailPlatform{
	{"Klaviyo", []string{"klaviyo", "static.klaviyo.com", "_learnq"}},
	{"Mailchimp", []string{"mailchimp", "list-manage.com", "chimpstatic.com"}},
	{"Omnisend", []string{"omnisend", "omnisrc.com"}},
	{"Privy", []string{"privy.com", "widget.privy"}},
	{"Shopify Email", []string{"shopify-email", "shopify_email"}},
	{"Drip", []string{"getdrip.com", "drip.com/"}},
	{"ActiveCampaign", []string{"activecampaign", "trackcmp.net"}},
	{"ConvertKit", []string{"convertkit", "ck.page"}},
	{"Sendinblue", []string{"sendinblue", "brevo.com", "sibforms.com"}},
	{"HubSpot", []string{"hs-scripts.com", "hsforms", "hubspot"}},
	{"Attentive", []string{"attentivemobile", "attn.tv"}},
	{"Postscript", []string{"postscript.io"}},
	{"Justuno", []string{"justuno"}},
	{"OptinMonster", []string{"optinmonster", "omappapi"}},
	{"Sumo", []string{"sumo.com", "load.sumo"}},
	{"MailerLite", []string{"mailerlite", "ml-embedded"}},
	{"Constant Contact", []string{"constantcontact", "ctctcdn.com"}},
	{"Campaign Monitor", []string{"createsend"}},
	{"Yotpo SMS & Email", []string{"smsbump"}},
	{"Seguno", []string{"seguno"}},
}

var popupSelectors = []string{
	"[class*='popup']", "[id*='popup']", "[class*='modal']", "[class*='newsletter']", "[id*='newsletter']",
	"[class*='subscribe']", "[class*='signup']", "[class*='announcement']", "[class*='klaviyo-form']",
}

// DetectEmailPlatforms returns the email automation platforms found in lowercased markup
func DetectEmailPlatforms(lower string) []string {
	var found []string
	for _, platform := range emailPlatforms {
		if containsAny(lower, platform.signatures...) {
			found = append(found, platform.name)
		}
	}
	return found
}

// ID returns the category id
func (a *EmailAnalyzer) ID() string {
	return types.CategoryEmail
}

// Analyze runs the email marketing checks
func (a *EmailAnalyzer) Analyze(in Input) types.CategoryResult {
	page := in.Page

	checks := []types.Check{}

	// Embedded signup forms, with visible popups as a weaker signal
	emailInputs := page.Find("form input[type='email'], form input[name*='email'], form input[name='contact[email]']")
	popups := page.Find(joinSelectors(popupSelectors)).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return containsAny(lowerText(s), "subscribe", "newsletter", "sign up", "join", "% off", "discount", "email")
	})
	switch {
	case emailInputs.Length() > 0:
		checks = append(checks, good(itemCaptureForm, "Email signup form found"))
	case popups.Length() > 0:
		checks = append(checks, warning(itemCaptureForm, "A signup popup or banner is present but no embedded email form"))
	default:
		checks = append(checks, critical(itemCaptureForm, "No email capture form found; visitors leave without a way to follow up"))
	}

	// Automation platforms
	if platforms := DetectEmailPlatforms(page.LowerHTML()); len(platforms) > 0 {
		checks = append(checks, good(itemAutomationPlatform, "Email automation detected: %s", strings.Join(platforms, ", ")))
	} else {
		checks = append(checks, critical(itemAutomationPlatform, "No email automation platform detected"))
	}

	score := scoring.ScoreChecks(checks)
	impact, recommendation := emailNarrative(checks)
	return newResult(types.CategoryEmail, "Email Marketing", checks, score, impact, recommendation)
}

func emailNarrative(checks []types.Check) (string, string) {
	capture := findCheck(checks, itemCaptureForm)
	automation := findCheck(checks, itemAutomationPlatform)
	switch {
	case capture.Status == types.StatusCritical && automation.Status == types.StatusCritical:
		return "Most visitors do not buy on their first visit, and without email capture they are gone for good.",
			"Add a signup popup with a first-order discount and connect an email platform such as Klaviyo or Omnisend."
	case automation.Status == types.StatusCritical:
		return "Collected emails are not followed up automatically, so abandoned carts are never recovered.",
			"Connect an email automation platform and set up welcome and abandoned cart flows."
	case capture.Status != types.StatusGood:
		return "An automation platform is installed but few visitors are asked for their email.",
			"Add an embedded signup form and a timed popup with a clear incentive."
	default:
		return "Email capture and automation are in place.",
			"Review your welcome, browse abandonment and cart recovery flows to raise their revenue."
	}
}
