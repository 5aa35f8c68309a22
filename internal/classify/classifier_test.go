package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    Verdict
	}{
		{"percent off", "50% OFF - Limited offer!", Promotional},
		{"editorial", "This week in AI research", Editorial},
		{"promo code", "Your promo code inside", Promotional},
		{"french soldes", "SOLDES : jusqu'à -70%", Promotional},
		{"french reduction", "Réduction exceptionnelle ce week-end", Promotional},
		{"case insensitive", "LAST CHANCE to register", Promotional},
		{"plain issue", "Issue #42: the state of open source", Editorial},
		{"empty subject", "", Editorial},
		// Substring matching, no word boundaries: "promotion" inside a
		// longer word still triggers.
		{"embedded keyword", "Self-promotional writing considered", Promotional},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.subject))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	subject := "Flash sale ends tonight"
	first := Classify(subject)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, Classify(subject))
	}
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "editorial", Editorial.String())
	assert.Equal(t, "promotional", Promotional.String())
}
