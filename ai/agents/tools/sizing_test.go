package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommendSize(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{"M/L", AdviceBetweenML},
		{"m and l", AdviceBetweenML},
		{"L", AdvicePreferL},
		{"M", AdvicePreferM},
		{"", AdviceTrueToSize},
		{"xs", AdviceTrueToSize},
		// Letter tests, not word tests.
		{"small", AdviceBetweenML},
		{"tall", AdvicePreferL},
	}
	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			assert.Equal(t, tt.want, RecommendSize(tt.hint))
		})
	}
}

func TestEstimateDelivery(t *testing.T) {
	zip := "560001"
	empty := ""

	assert.Equal(t, "2–5 business days", EstimateDelivery(&zip))
	assert.Equal(t, "3–7 business days", EstimateDelivery(nil))
	assert.Equal(t, "3–7 business days", EstimateDelivery(&empty))
}
