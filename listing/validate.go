package listing

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Accepted values of Base.Status and RentalPricing.PaymentFrequency. Feeds
// send them in any case ("offMarket", "Weekly").
var (
	Statuses           = []string{"current", "sold", "leased", "withdrawn", "offmarket", "unknown"}
	PaymentFrequencies = []string{"unknown", "weekly", "monthly"}
)

// RegisterValidations adds the listingstatus and paymentfrequency struct tags
// used by the listing types to v.
func RegisterValidations(v *validator.Validate) error {
	return errors.Join(
		v.RegisterValidation("listingstatus", oneOfFold(Statuses)),
		v.RegisterValidation("paymentfrequency", oneOfFold(PaymentFrequencies)),
	)
}

func oneOfFold(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, v := range values {
			if strings.EqualFold(s, v) {
				return true
			}
		}
		return false
	}
}
