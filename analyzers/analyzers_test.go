package analyzers

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"store-auditor/document"
	"store-auditor/internal/types"
)

const richStore = `<!DOCTYPE html>
<html>
<head>
	<title>Northwind Outfitters | Outdoor clothing and gear for every season</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<meta name="description" content="Northwind Outfitters makes durable outdoor clothing, rain jackets and wool socks, designed in Oslo and shipped worldwide with free returns on every order.">
	<meta name="google-site-verification" content="abc123">
	<meta property="og:title" content="Northwind Outfitters">
	<meta property="og:type" content="website">
	<meta property="og:image" content="https://northwind.example.com/og.jpg">
	<link rel="canonical" href="https://northwind.example.com/">
	<script src="https://cdn.shopify.com/s/trekkie.js"></script>
	<script src="https://static.klaviyo.com/onsite/js/klaviyo.js"></script>
	<script>
		!function(f){f.fbq=function(){}}(window);
		fbq('init', '123'); fbq('track', 'ViewContent'); fbq('track', 'AddToCart'); fbq('track', 'Purchase');
	</script>
	<script async src="https://www.googletagmanager.com/gtag/js?id=AW-1"></script>
	<script>gtag('event', 'add_to_cart'); var source = new URLSearchParams(location.search).get('utm_source');</script>
	<script src="https://analytics.tiktok.com/i18n/pixel/events.js"></script>
	<script>ttq.load('X'); pintrk('load', '1');</script>
	<script type="application/ld+json">{"@context":"https://schema.org","@type":"Product","name":"Rain Jacket","offers":{"@type":"Offer","price":"129.00"}}</script>
</head>
<body>
	<a class="skip-to-content-link" href="#MainContent">Skip to content</a>
	<header>
		<button class="menu-toggle" aria-controls="menu-drawer" aria-label="Open menu"></button>
		<nav>
			<a href="/collections/rain-jackets">Rain Jackets</a>
			<a href="/collections/wool-socks">Wool Socks</a>
			<a href="/collections/base-layers">Base Layers</a>
			<a href="/pages/about">Our Story</a>
		</nav>
		<form action="/search"><input type="search" name="q" aria-label="Search"></form>
	</header>
	<main id="MainContent">
		<nav class="breadcrumb"><a href="/">Home</a> / Jackets</nav>
		<section class="hero"><h1>Built for the weather</h1><a href="/collections/all">Shop now</a></section>
		<section class="product">
			<h2 class="product__title">Rain Jacket</h2>
			<div class="product__media">
				<img src="1.jpg" alt="Rain jacket front" loading="lazy">
				<img src="2.jpg" alt="Rain jacket back" loading="lazy">
				<img src="3.jpg" alt="Rain jacket hood" loading="lazy">
			</div>
			<span class="price">$129.00</span>
			<form action="/cart/add">
				<label for="size">Size</label>
				<select id="size" name="options[Size]"><option>M</option></select>
				<button type="submit" name="add">Add to cart</button>
			</form>
			<div class="jdgm-widget review-badge">★★★★★ 4.8 (120 reviews)</div>
			<table class="specs"><tr><td>Material</td><td>Recycled nylon</td></tr></table>
			<a href="/pages/size-guide">Size guide</a>
			<p class="stock">In stock, ships in 2 days. Free shipping and free returns within 30 days. Money-back guarantee.</p>
			<video src="jacket.mp4"></video>
		</section>
		<section class="related"><h2>You may also like</h2></section>
		<section><h2>Loved by 25,000 happy customers</h2><p>Secure checkout with 256-bit encryption.</p></section>
		<section class="newsletter"><h3>Join our newsletter</h3>
			<form><label for="email">Email</label><input type="email" id="email" name="contact[email]"><button>Subscribe</button></form>
		</section>
		<img src="badge.png" alt="Trusted store badge">
	</main>
	<footer>
		<a href="/policies/privacy-policy">Privacy</a>
		<a href="/policies/terms-of-service">Terms</a>
		<a href="/policies/refund-policy">Refunds</a>
		<a href="/policies/shipping-policy">Shipping</a>
		<a href="/pages/contact">Contact</a>
		<a href="mailto:help@northwind.example.com">Email us</a>
		<a href="https://instagram.com/northwind" target="_blank" rel="noopener">Instagram</a>
		<a href="https://facebook.com/northwind" target="_blank" rel="noopener">Facebook</a>
		<a href="/pages/faq">FAQ</a>
		<a href="/pages/returns">Returns</a>
	</footer>
</body>
</html>`

const minimalStore = `<html><head><title>Shop</title></head>
<body><div>Buy our mugs for $12</div><a href="/cart">Cart</a></body></html>`

func parse(t *testing.T, markup string) *document.Page {
	t.Helper()
	page, err := document.Parse(markup, "https://northwind.example.com")
	require.NoError(t, err)
	return page
}

func analyze(t *testing.T, analyzer Analyzer, markup string) types.CategoryResult {
	t.Helper()
	return analyzer.Analyze(Input{Page: parse(t, markup)})
}

func testBase() *BaseAnalyzer {
	return NewBaseAnalyzer(logrus.New())
}

func TestAll_ReportOrder(t *testing.T) {
	ids := []string{}
	for _, analyzer := range All(logrus.New()) {
		ids = append(ids, analyzer.ID())
	}
	assert.Equal(t, []string{"trust", "ux", "product", "seo", "email", "ads"}, ids)
}

func TestAll_EveryResultHasChecks(t *testing.T) {
	for _, markup := range []string{richStore, minimalStore, "<html><body></body></html>"} {
		for _, analyzer := range All(logrus.New()) {
			result := analyze(t, analyzer, markup)
			assert.NotEmpty(t, result.Checks, analyzer.ID())
			assert.Equal(t, analyzer.ID(), result.ID)
			assert.GreaterOrEqual(t, result.Score, 0)
			assert.LessOrEqual(t, result.Score, 100)
			assert.NotEmpty(t, result.Status)
			assert.NotEmpty(t, result.Impact)
			assert.NotEmpty(t, result.Recommendation)
		}
	}
}

func TestTrust_RichStore(t *testing.T) {
	result := analyze(t, &TrustAnalyzer{testBase()}, richStore)

	require.Len(t, result.Checks, 10)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemReviews).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemPolicyPages).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemSocialProof).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemContactInfo).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemCustomerCount).Status)
}

func TestTrust_MinimalStore(t *testing.T) {
	result := analyze(t, &TrustAnalyzer{testBase()}, minimalStore)

	assert.Equal(t, types.StatusCritical, findCheck(result.Checks, itemReviews).Status)
	assert.Equal(t, types.StatusCritical, findCheck(result.Checks, itemPolicyPages).Status)
	assert.Contains(t, result.Impact, "reviews")
}

func TestUX_AlwaysAtLeastFourFindings(t *testing.T) {
	for _, markup := range []string{richStore, minimalStore, "<html><body></body></html>"} {
		result := analyze(t, &UXAnalyzer{testBase()}, markup)

		require.Len(t, result.Checks, 17)
		nonGood := len(result.Checks) - countStatus(result.Checks, types.StatusGood)
		assert.GreaterOrEqual(t, nonGood, MinUXFindings)
		assert.LessOrEqual(t, result.Score, 81)
		require.NotNil(t, result.ThemeInfo)
	}
}

func TestEnforceFindingFloor_DemotesFromTheEnd(t *testing.T) {
	checks := make([]types.Check, 10)
	for i := range checks {
		checks[i] = types.Check{Item: "check", Status: types.StatusGood}
	}
	checks[0].Status = types.StatusCritical

	out := EnforceFindingFloor(checks)

	statuses := []types.CheckStatus{}
	for _, check := range out {
		statuses = append(statuses, check.Status)
	}
	assert.Equal(t, []types.CheckStatus{
		types.StatusCritical,
		types.StatusGood, types.StatusGood, types.StatusGood, types.StatusGood, types.StatusGood, types.StatusGood,
		types.StatusWarning, types.StatusWarning, types.StatusWarning,
	}, statuses)
	// input is left untouched
	assert.Equal(t, types.StatusGood, checks[9].Status)
}

func TestEnforceFindingFloor_NoChangeWhenEnoughFindings(t *testing.T) {
	checks := []types.Check{
		{Item: "a", Status: types.StatusGood},
		{Item: "b", Status: types.StatusWarning},
		{Item: "c", Status: types.StatusCritical},
		{Item: "d", Status: types.StatusWarning},
		{Item: "e", Status: types.StatusCritical},
	}

	assert.Equal(t, checks, EnforceFindingFloor(checks))
}

func TestUX_FreeThemeIsCritical(t *testing.T) {
	name := "Dawn"
	theme := types.ThemeInfo{IsFreeTheme: true, ThemeName: &name}

	result := (&UXAnalyzer{testBase()}).Analyze(Input{Page: parse(t, richStore), Theme: theme})

	check := findCheck(result.Checks, itemTheme)
	assert.Equal(t, types.StatusCritical, check.Status)
	assert.Contains(t, check.Details, "Dawn")
	assert.True(t, result.ThemeInfo.IsFreeTheme)
	assert.Contains(t, result.Impact, "free theme")
}

func TestNavigation_CriticalWithoutCollectionLinks(t *testing.T) {
	page := parse(t, `<html><body><nav>
		<a href="/pages/about">About</a>
		<a href="/blogs/news">Journal</a>
		<a href="https://other.example.org/collections/shoes">Partner shoes</a>
	</nav></body></html>`)

	nav := ClassifyNavigation(page)

	assert.True(t, nav.Present)
	assert.Len(t, nav.Links, 3)
	assert.Equal(t, 0, nav.CollectionLinks())
	assert.Equal(t, types.StatusCritical, checkNavigation(nav).Status)
}

func TestNavigation_CriticalForNonShopifyCatalogPaths(t *testing.T) {
	page := parse(t, `<html><body><nav>
		<a href="/category/shoes">Shoes</a>
		<a href="/catalog/bags">Bags</a>
		<a href="/pages/about">About</a>
	</nav></body></html>`)

	nav := ClassifyNavigation(page)

	assert.Len(t, nav.Links, 3)
	assert.Equal(t, 0, nav.CollectionLinks())
	assert.Equal(t, types.StatusCritical, checkNavigation(nav).Status)
}

func TestNavigation_Good(t *testing.T) {
	nav := ClassifyNavigation(parse(t, richStore))

	assert.Equal(t, 3, nav.CollectionLinks())
	assert.Equal(t, 3, nav.DescriptiveCollectionLinks())
	assert.Equal(t, types.StatusGood, checkNavigation(nav).Status)
}

func TestNavigation_GenericLabelsOnlyWarn(t *testing.T) {
	page := parse(t, `<html><body><nav>
		<a href="/collections/all">Shop</a>
		<a href="/collections/all-products">Products</a>
		<a href="/collections/frontpage">Collections</a>
	</nav></body></html>`)

	nav := ClassifyNavigation(page)

	assert.Equal(t, 3, nav.CollectionLinks())
	assert.Equal(t, 0, nav.DescriptiveCollectionLinks())
	assert.Equal(t, types.StatusWarning, checkNavigation(nav).Status)
}

func TestIsGenericLabel(t *testing.T) {
	assert.True(t, IsGenericLabel(""))
	assert.True(t, IsGenericLabel("Shop"))
	assert.True(t, IsGenericLabel(" Products "))
	assert.True(t, IsGenericLabel("Product"))
	assert.False(t, IsGenericLabel("Men"))
	assert.False(t, IsGenericLabel("Running Shoes"))
	assert.False(t, IsGenericLabel("Rain Jackets"))
}

func TestProductReviews_Widget(t *testing.T) {
	check := (&ProductAnalyzer{testBase()}).checkProductReviews(Input{Page: parse(t, richStore)})

	assert.Equal(t, types.StatusGood, check.Status)
}

func TestProductReviews_MarkupFallback(t *testing.T) {
	page := parse(t, `<html><body><p>Rated 4.9 out of 5 stars by our buyers</p></body></html>`)

	check := (&ProductAnalyzer{testBase()}).checkProductReviews(Input{Page: page})

	assert.Equal(t, types.StatusGood, check.Status)
}

func TestProductReviews_StructuredData(t *testing.T) {
	page := parse(t, `<html><head><script type="application/ld+json">
		{"@context": "https://schema.org", "@type": "Product", "name": "Mug",
		 "aggregateRating": {"@type": "AggregateRating", "ratingValue": "4.6", "reviewCount": "42"}}
	</script></head><body><p>Mug</p></body></html>`)

	check := (&ProductAnalyzer{testBase()}).checkProductReviews(Input{Page: page})

	assert.Equal(t, types.StatusGood, check.Status)
	assert.Contains(t, check.Details, "structured data")
}

func TestProductReviews_LenientStructuredData(t *testing.T) {
	page := parse(t, `<html><head><script type="application/ld+json">
		{"@type": "Product", "aggregateRating": {"@type": "AggregateRating", "ratingValue": 4.6,},}
	</script></head><body><p>Mug</p></body></html>`)

	check := (&ProductAnalyzer{testBase()}).checkProductReviews(Input{Page: page})

	assert.Equal(t, types.StatusGood, check.Status)
}

func TestProductReviews_BrokenStructuredDataIsSkipped(t *testing.T) {
	page := parse(t, `<html><head><script type="application/ld+json">{"@type": "Product", </script></head>
		<body><p>Mug</p></body></html>`)

	check := (&ProductAnalyzer{testBase()}).checkProductReviews(Input{Page: page})

	assert.Equal(t, types.StatusCritical, check.Status)
}

func TestProduct_RichStore(t *testing.T) {
	result := analyze(t, &ProductAnalyzer{testBase()}, richStore)

	require.Len(t, result.Checks, 13)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemProductImages).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemAddToCart).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemSizeGuide).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemProductVideo).Status)
}

func TestSEO_ScoreStaysInBand(t *testing.T) {
	for _, markup := range []string{richStore, minimalStore, "<html><body></body></html>"} {
		result := analyze(t, &SEOAnalyzer{testBase()}, markup)
		assert.GreaterOrEqual(t, result.Score, 30)
		assert.LessOrEqual(t, result.Score, 50)
	}
}

func TestSEO_RichStore(t *testing.T) {
	result := analyze(t, &SEOAnalyzer{testBase()}, richStore)

	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemTitleTag).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemMetaDescription).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemH1).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemCanonical).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemSearchConsole).Status)
	assert.Equal(t, types.StatusWarning, findCheck(result.Checks, itemMerchantCenter).Status)
}

func TestSEO_TitleAndDescriptionReads(t *testing.T) {
	empty := analyze(t, &SEOAnalyzer{testBase()}, "<html><body></body></html>")
	assert.Equal(t, types.StatusCritical, findCheck(empty.Checks, itemTitleTag).Status)
	assert.Equal(t, types.StatusCritical, findCheck(empty.Checks, itemMetaDescription).Status)

	short := analyze(t, &SEOAnalyzer{testBase()}, `<html><head><title>  Lumen  </title><meta name="description" content="  Candles "></head><body></body></html>`)
	assert.Equal(t, types.StatusWarning, findCheck(short.Checks, itemTitleTag).Status)
	assert.Contains(t, findCheck(short.Checks, itemTitleTag).Details, "5 characters")
	assert.Equal(t, types.StatusWarning, findCheck(short.Checks, itemMetaDescription).Status)
}

func TestSEO_MerchantCenterCriticalWhenAbsent(t *testing.T) {
	result := analyze(t, &SEOAnalyzer{testBase()}, minimalStore)

	assert.Equal(t, types.StatusCritical, findCheck(result.Checks, itemMerchantCenter).Status)
	assert.Equal(t, types.StatusWarning, findCheck(result.Checks, itemSearchConsole).Status)
	assert.Contains(t, result.Impact, "Google Shopping")
}

func TestEmail(t *testing.T) {
	rich := analyze(t, &EmailAnalyzer{testBase()}, richStore)
	require.Len(t, rich.Checks, 2)
	assert.Equal(t, 100, rich.Score)
	assert.Contains(t, rich.Checks[1].Details, "Klaviyo")

	none := analyze(t, &EmailAnalyzer{testBase()}, minimalStore)
	assert.Equal(t, 0, none.Score)
	assert.Equal(t, types.StatusCritical, none.Checks[0].Status)
	assert.Equal(t, types.StatusCritical, none.Checks[1].Status)

	popup := analyze(t, &EmailAnalyzer{testBase()}, `<html><body><div class="popup-overlay">Get 10% off, join our list</div></body></html>`)
	assert.Equal(t, types.StatusWarning, popup.Checks[0].Status)
}

func TestDetectEmailPlatforms(t *testing.T) {
	assert.Equal(t, []string{"Klaviyo", "Omnisend"}, DetectEmailPlatforms(`<script src="https://static.klaviyo.com/x.js"></script><script src="https://omnisrc.com/a.js"></script>`))
	assert.Empty(t, DetectEmailPlatforms("<html></html>"))
}

func TestAds_RichStore(t *testing.T) {
	result := analyze(t, &AdsAnalyzer{testBase()}, richStore)

	require.Len(t, result.Checks, 12)
	assert.LessOrEqual(t, result.Score, 50)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemMetaPixel).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemGoogleTag).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemPurchaseEvent).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemAddToCartEvent).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemRetargeting).Status)
	assert.Equal(t, types.StatusGood, findCheck(result.Checks, itemUTMHandling).Status)
	assert.Equal(t, types.StatusWarning, findCheck(result.Checks, itemServerSide).Status)
	assert.Equal(t, types.StatusWarning, findCheck(result.Checks, itemCheckoutTracking).Status)
}

func TestAds_NoTracking(t *testing.T) {
	result := analyze(t, &AdsAnalyzer{testBase()}, minimalStore)

	assert.Equal(t, types.StatusCritical, findCheck(result.Checks, itemMetaPixel).Status)
	assert.Equal(t, types.StatusCritical, findCheck(result.Checks, itemGoogleTag).Status)
	assert.Equal(t, types.StatusWarning, findCheck(result.Checks, itemTikTokPixel).Status)
	assert.Equal(t, types.StatusWarning, findCheck(result.Checks, itemPinterestTag).Status)
	assert.Equal(t, types.StatusCritical, findCheck(result.Checks, itemRetargeting).Status)
	assert.Equal(t, types.StatusWarning, findCheck(result.Checks, itemServerSide).Status)
}
