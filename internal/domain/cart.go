package domain

import "strings"

// Customization is a per-line override applied to a base product: a color
// swap, a user-supplied design overlay, or both.
type Customization struct {
	Color    string `json:"color,omitempty"`
	ImageURL string `json:"image,omitempty"`
}

func (c Customization) signature() string {
	return "color=" + c.Color + ";image=" + c.ImageURL
}

// CartLine is one distinct entry in a cart. Two lines are the same iff
// product id, size and customization all match; everything else (name,
// price, image) rides along as display data.
type CartLine struct {
	ProductID  string         `json:"productId"`
	Name       string         `json:"name"`
	PriceCents int64          `json:"priceCents"`
	Image      string         `json:"image,omitempty"`
	Quantity   int            `json:"quantity"`
	Size       string         `json:"size"`
	Color      string         `json:"color,omitempty"`
	Custom     *Customization `json:"customizations,omitempty"`
}

// Key returns the line identity used to decide whether two adds collapse
// into one line. A nil customization is distinct from a zero-valued one.
func (l CartLine) Key() string {
	var b strings.Builder
	b.WriteString(l.ProductID)
	b.WriteByte(0x1f)
	b.WriteString(l.Size)
	b.WriteByte(0x1f)
	if l.Custom != nil {
		b.WriteString(l.Custom.signature())
	}
	return b.String()
}

// TotalCents is the line subtotal.
func (l CartLine) TotalCents() int64 {
	return l.PriceCents * int64(l.Quantity)
}

// CloneLines deep-copies a line list so stored snapshots never alias live
// cart state.
func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	for i := range out {
		if out[i].Custom != nil {
			c := *out[i].Custom
			out[i].Custom = &c
		}
	}
	return out
}
