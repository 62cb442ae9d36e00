package listing

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidations(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())
	require.NoError(t, RegisterValidations(v))

	tests := []struct {
		name    string
		l       Listing
		wantErr bool
	}{
		{"lower status", &LandListing{Base: Base{ID: "1", AgentID: "A", Status: "offmarket"}}, false},
		{"camel status", &LandListing{Base: Base{ID: "1", AgentID: "A", Status: "offMarket"}}, false},
		{"upper status", &LandListing{Base: Base{ID: "1", AgentID: "A", Status: "SOLD"}}, false},
		{"empty status", &LandListing{Base: Base{ID: "1", AgentID: "A"}}, false},
		{"unknown status", &LandListing{Base: Base{ID: "1", AgentID: "A", Status: "pending"}}, true},
		{"mixed case frequency", &RentalListing{Base: Base{ID: "1", AgentID: "A"}, Pricing: &RentalPricing{PaymentFrequency: "Weekly"}}, false},
		{"bad frequency", &RentalListing{Base: Base{ID: "1", AgentID: "A"}, Pricing: &RentalPricing{PaymentFrequency: "fortnightly"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.l)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
