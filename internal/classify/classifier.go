// Package classify separates editorial newsletter content from promotional
// mail using the message subject alone. Bodies are deliberately not
// analyzed; subject-only classification keeps the decision free of network
// and summarizer cost.
package classify

import "strings"

// Verdict is the binary classification outcome for a message.
type Verdict int

const (
	Editorial Verdict = iota
	Promotional
)

// String returns the verdict name for logging.
func (v Verdict) String() string {
	if v == Promotional {
		return "promotional"
	}
	return "editorial"
}

// promotionalKeywords are matched as lowercase substrings of the subject.
// The list mixes English and French commercial vocabulary. Substring
// matching has known false positives ("price" matches inside "pricing");
// that trade-off is accepted to keep the matcher trivial.
var promotionalKeywords = []string{
	// English
	"% off",
	"act now",
	"best deal",
	"big sale",
	"black friday",
	"buy now",
	"cash back",
	"cashback",
	"clearance",
	"coupon",
	"cyber monday",
	"deal of",
	"discount",
	"don't miss",
	"exclusive offer",
	"expires",
	"final hours",
	"flash sale",
	"free gift",
	"free shipping",
	"free trial",
	"last chance",
	"limited offer",
	"limited time",
	"lowest price",
	"on sale",
	"order now",
	"price drop",
	"promo code",
	"save up to",
	"shop now",
	"special offer",
	"unsubscribe",
	"upgrade now",
	"webinar",
	// French
	"abonnez-vous",
	"bon plan",
	"code promo",
	"démarquez",
	"dernière chance",
	"derniers jours",
	"en solde",
	"exclusivité",
	"livraison gratuite",
	"offre exclusive",
	"offre limitée",
	"offre spéciale",
	"prix cassé",
	"profitez",
	"promotion",
	"réduction",
	"soldes",
	"vente flash",
	"économisez",
}

// Classify returns the verdict for a subject line. The subject is
// lower-cased and checked for any promotional keyword as a substring; no
// stemming and no word-boundary handling.
func Classify(subject string) Verdict {
	s := strings.ToLower(subject)
	for _, kw := range promotionalKeywords {
		if strings.Contains(s, kw) {
			return Promotional
		}
	}
	return Editorial
}
