package constants

// Confidence is the qualitative trust label attached to each extracted record.
// Tabular sources are always HIGH; document sources report what the model says;
// outright extraction failures are LOW.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// CategoryKeywords maps well-known category display names to the keyword lists
// the classifier scores against vendor name + description. The table is keyed
// by display name on purpose: a user whose categories use different names only
// gets the verbatim name-in-text bonus. Known limitation, kept as-is.
var CategoryKeywords = map[string][]string{
	"Software": {
		"software", "saas", "subscription", "license", "adobe", "figma",
		"github", "jetbrains", "microsoft", "google workspace", "notion",
		"slack", "zoom", "dropbox",
	},
	"Infrastructure": {
		"hosting", "server", "cloud", "aws", "amazon web services", "gcp",
		"azure", "digitalocean", "vercel", "netlify", "cloudflare", "domain",
	},
	"Office Supplies": {
		"office", "supplies", "paper", "ink", "toner", "staples", "pens",
		"notebook", "printer",
	},
	"Equipment": {
		"laptop", "computer", "monitor", "keyboard", "mouse", "hardware",
		"apple", "dell", "lenovo", "camera", "microphone", "headset",
	},
	"Travel": {
		"flight", "airline", "hotel", "airbnb", "uber", "lyft", "taxi",
		"train", "rental car", "parking", "mileage",
	},
	"Meals": {
		"restaurant", "lunch", "dinner", "coffee", "cafe", "catering",
		"doordash", "grubhub",
	},
	"Marketing": {
		"advertising", "ads", "marketing", "facebook", "google ads",
		"linkedin", "mailchimp", "promotion", "sponsor",
	},
	"Professional Services": {
		"legal", "lawyer", "attorney", "accountant", "accounting",
		"consulting", "bookkeeping", "notary",
	},
	"Insurance": {
		"insurance", "liability", "premium", "coverage",
	},
	"Utilities": {
		"electric", "electricity", "water", "gas", "internet", "phone",
		"mobile", "utility", "broadband",
	},
	"Education": {
		"course", "training", "book", "conference", "workshop", "udemy",
		"coursera", "certification",
	},
	"Rent": {
		"rent", "lease", "coworking", "wework", "office space",
	},
}

// NameBonus is added to a category's score when its display name appears
// verbatim in the search text.
const NameBonus = 2
