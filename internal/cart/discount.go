package cart

import "strings"

// discountCodes is the fixed promotion table: code to percentage off the
// subtotal. Codes match case-insensitively.
var discountCodes = map[string]int64{
	"GEN101": 10,
	"GW2025": 25,
}

func lookupDiscount(code string) (pct int64, canonical string, ok bool) {
	canonical = strings.ToUpper(strings.TrimSpace(code))
	pct, ok = discountCodes[canonical]
	if !ok {
		return 0, "", false
	}
	return pct, canonical, true
}
