package analyzers

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"store-auditor/internal/types"
	"store-auditor/scoring"
)

// ProductAnalyzer checks how well product pages sell
type ProductAnalyzer struct {
	*BaseAnalyzer
}

const (
	itemProductInfo     = "Product Information"
	itemProductImages   = "Product Images"
	itemPricing         = "Pricing Display"
	itemAddToCart       = "Add to Cart Button"
	itemVariants        = "Product Variants"
	itemProductReviews  = "Product Reviews"
	itemSpecifications  = "Product Specifications"
	itemSizeGuide       = "Size Guide"
	itemStock           = "Stock Availability"
	itemRelated         = "Related Products"
	itemProductVideo    = "Product Video"
	itemProductShipping = "Shipping Details"
	itemProductReturns  = "Return Information"
)

var (
	ratingTextPattern   = regexp.MustCompile(`(★|☆|\bstars?\b|\bratings?\b|\breviews?\b|\d(\.\d)?\s*/\s*5\b|\d(\.\d)?\s+out of\s+5)`)
	ratingMarkupPattern = regexp.MustCompile(`(\d(\.\d+)?\s*(out of|/)\s*5\s*stars?|\(\d[\d,]*\s+reviews?\)|\b\d[\d,]*\s+(customer\s+)?reviews\b|★★)`)
	priceTextPattern    = regexp.MustCompile(`([$€£¥₹]\s?\d|\d[\d,.]*\s?(usd|eur|gbp|inr|cad|aud)\b)`)
)

var reviewWidgetSelectors = []string{
	"[class*='review']", "[id*='review']", "[class*='rating']", "[class*='star']",
	"[data-rating]", "[itemprop='aggregateRating']", "[itemprop='review']",
}

// ID returns the category id
func (a *ProductAnalyzer) ID() string {
	return types.CategoryProduct
}

// Analyze runs the product page checks
func (a *ProductAnalyzer) Analyze(in Input) types.CategoryResult {
	page := in.Page
	text := page.Text()

	checks := []types.Check{}

	// Titles and descriptions
	switch {
	case page.Has("[class*='product-title'], [class*='product__title'], [class*='product-description'], [class*='product__description'], [itemprop='description'], [itemprop='name']"):
		checks = append(checks, good(itemProductInfo, "Product titles and descriptions are marked up"))
	case page.Has("[class*='product'], [id*='product']"):
		checks = append(checks, warning(itemProductInfo, "Products are listed but without clear titles or descriptions"))
	default:
		checks = append(checks, critical(itemProductInfo, "No product information found"))
	}

	// Gallery images
	images := page.Count("[class*='product'] img, [class*='gallery'] img, [class*='media'] img, [itemprop='image']")
	checks = append(checks, tiered(itemProductImages, images, 3, 1,
		"%d product images found",
		"Only %d product image found; shoppers want several angles",
		"%d product images found"))

	// Prices
	switch {
	case page.Has("[class*='price'], [itemprop='price'], [data-price], [data-product-price]"):
		checks = append(checks, good(itemPricing, "Prices are clearly displayed"))
	case priceTextPattern.MatchString(text):
		checks = append(checks, warning(itemPricing, "Prices appear in text but are not clearly marked up"))
	default:
		checks = append(checks, critical(itemPricing, "No prices found"))
	}

	// Add to cart
	switch {
	case page.Has("form[action*='/cart/add'], button[name='add'], [class*='add-to-cart'], [class*='add_to_cart'], [class*='addtocart'], [class*='AddToCart'], [id*='AddToCart'], [id*='add-to-cart']") ||
		containsAny(text, "add to cart", "add to bag", "add to basket"):
		checks = append(checks, good(itemAddToCart, "Add to cart buttons are present"))
	case containsAny(text, "buy now", "order now", "shop now"):
		checks = append(checks, warning(itemAddToCart, "Buy buttons link away instead of adding to the cart"))
	default:
		checks = append(checks, critical(itemAddToCart, "No add to cart button found"))
	}

	// Size, color and other variant pickers
	if page.Has("select[name*='option'], select[name='id'], input[name*='option'], [class*='variant'], [class*='swatch'], variant-radios, variant-selects") {
		checks = append(checks, good(itemVariants, "Variant selection is available"))
	} else {
		checks = append(checks, warning(itemVariants, "No size, color or variant selectors found"))
	}

	// Reviews
	checks = append(checks, a.checkProductReviews(in))

	switch {
	case page.Has("[class*='spec'], [class*='product-details'], [class*='product__details'], table, dl") &&
		containsAny(text, "specification", "material", "dimensions", "ingredients", "details", "features"):
		checks = append(checks, good(itemSpecifications, "Product specifications are shown"))
	case containsAny(text, "specification", "material", "dimensions", "ingredients"):
		checks = append(checks, warning(itemSpecifications, "Specifications are mentioned but not structured"))
	default:
		checks = append(checks, critical(itemSpecifications, "No product specifications found"))
	}

	// Size guide
	if containsAny(text, "size guide", "size chart", "sizing", "fit guide", "find your size") || page.Has("[class*='size-chart'], [class*='size-guide'], [class*='sizeguide']") {
		checks = append(checks, good(itemSizeGuide, "A size guide is available"))
	} else {
		checks = append(checks, warning(itemSizeGuide, "No size guide found"))
	}

	// Stock and urgency
	switch {
	case page.Has("[class*='stock'], [class*='inventory']") || containsAny(text, "in stock", "left in stock", "low stock", "only a few left"):
		checks = append(checks, good(itemStock, "Stock availability is shown"))
	case containsAny(text, "sold out", "out of stock", "available"):
		checks = append(checks, warning(itemStock, "Availability is only shown when products sell out"))
	default:
		checks = append(checks, warning(itemStock, "No stock or urgency indicators found"))
	}

	// Cross-sell
	if page.Has("[class*='related'], [class*='recommend'], [class*='upsell'], [class*='cross-sell'], product-recommendations") ||
		containsAny(text, "you may also like", "related products", "customers also bought", "frequently bought together", "complete the look") {
		checks = append(checks, good(itemRelated, "Related products are recommended"))
	} else {
		checks = append(checks, warning(itemRelated, "No related product recommendations found"))
	}

	// Video
	if page.Has("video, iframe[src*='youtube'], iframe[src*='vimeo'], [class*='video']") {
		checks = append(checks, good(itemProductVideo, "Product video is used"))
	} else {
		checks = append(checks, warning(itemProductVideo, "No product videos found"))
	}

	// Shipping and returns on the product page
	switch {
	case containsAny(text, "free shipping", "free delivery", "ships in", "delivery in", "estimated delivery", "shipping calculated"):
		checks = append(checks, good(itemProductShipping, "Shipping costs or times are stated"))
	case containsAny(text, "shipping", "delivery"):
		checks = append(checks, warning(itemProductShipping, "Shipping is mentioned without costs or times"))
	default:
		checks = append(checks, critical(itemProductShipping, "No shipping details found"))
	}

	switch {
	case containsAny(text, "free returns", "easy returns", "day return", "days return", "return policy", "hassle-free return", "exchange"):
		checks = append(checks, good(itemProductReturns, "Return terms are stated"))
	case containsAny(text, "return", "refund"):
		checks = append(checks, warning(itemProductReturns, "Returns are mentioned without clear terms"))
	default:
		checks = append(checks, critical(itemProductReturns, "No return information found"))
	}

	score := scoring.ScoreChecks(checks)
	impact, recommendation := productNarrative(checks)
	return newResult(types.CategoryProduct, "Product Pages", checks, score, impact, recommendation)
}

// checkProductReviews tries review widgets, then rating text in the markup, then ld+json ratings
func (a *ProductAnalyzer) checkProductReviews(in Input) types.Check {
	page := in.Page

	widget := false
	page.Find(joinSelectors(reviewWidgetSelectors)).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if _, ok := s.Attr("data-rating"); ok || ratingTextPattern.MatchString(lowerText(s)) {
			widget = true
			return false
		}
		return true
	})
	if widget {
		return good(itemProductReviews, "Product reviews and star ratings are displayed")
	}

	if match := ratingMarkupPattern.FindString(page.LowerHTML()); match != "" {
		return good(itemProductReviews, "Product ratings found in the page (%s)", match)
	}

	for _, block := range a.structuredData(page) {
		if hasSchemaType(block, "AggregateRating", "Review") || hasSchemaKey(block, "aggregateRating", "review") {
			return good(itemProductReviews, "Product ratings are published as structured data")
		}
	}

	return critical(itemProductReviews, "No product reviews found; reviews are the strongest product page signal")
}

func productNarrative(checks []types.Check) (string, string) {
	reviews := findCheck(checks, itemProductReviews)
	images := findCheck(checks, itemProductImages)
	switch {
	case reviews.Status == types.StatusCritical:
		return "Product pages without reviews convert far worse because shoppers have no proof others bought and liked the product.",
			"Collect and display product reviews with star ratings, and publish them as structured data."
	case images.Status != types.StatusGood:
		return "Too few product images leave shoppers unsure about what they are buying.",
			"Show at least three high quality images per product, including lifestyle and detail shots."
	case countStatus(checks, types.StatusCritical) > 0:
		return "Some key product page elements are missing and cost conversions.",
			"Fix the critical product page items above first."
	default:
		return "Product pages cover the basics but can do more to remove purchase doubts.",
			"Add video, size guides and stock indicators where they are missing."
	}
}
