package validation

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"

	"genwear/internal/service/order"
)

// New returns the configured validator shared by the HTTP layer. It carries
// a struct-level rule for order creation so the claimed total always equals
// the sum of line totals before the request reaches the service.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(createOrderStructValidation, order.CreateInput{})
	return v
}

func createOrderStructValidation(sl validatorv10.StructLevel) {
	in := sl.Current().Interface().(order.CreateInput)

	var sum int64
	for _, it := range in.Items {
		sum += it.PriceCents * int64(it.Quantity)
	}
	if in.DiscountCents < 0 || in.DiscountCents > sum {
		sl.ReportError(in.DiscountCents, "discountCents", "DiscountCents", "discount_bound", "")
		return
	}
	if want := sum - in.DiscountCents; in.TotalCents != want {
		sl.ReportError(in.TotalCents, "totalCents", "TotalCents", "total_match_items",
			fmt.Sprintf("items total %d != claimed %d", want, in.TotalCents))
	}
}
