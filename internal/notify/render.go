package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/olimp-shop/backend/internal/models"
)

// renderItems produces one Markdown line per cart item, matching the
// original bot's "name | flavor | qty | line total" layout.
func renderItems(items []models.OrderItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		flavor := it.Flavor
		if flavor == "" {
			flavor = "-"
		}
		lines = append(lines, fmt.Sprintf("▫ %s | %s | x%d | %s ₽", it.Name, flavor, it.Qty, it.LineTotal()))
	}
	return strings.Join(lines, "\n")
}

// RenderCustomer renders the confirmation sent back to the customer:
// itemization, delivery details, the applied discount and the final charge.
func RenderCustomer(o *models.Order, percent int, charge decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("✅ *Order confirmed!*\n\n")
	b.WriteString(renderItems(o.Payload.Items))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "📍 District: %s\n", o.Payload.District)
	fmt.Fprintf(&b, "🏠 Address: %s\n", o.Payload.Address)
	if percent > 0 {
		fmt.Fprintf(&b, "💸 Referral discount: %d%%\n", percent)
	}
	fmt.Fprintf(&b, "💰 Total due: *%s ₽*\n\n", charge.StringFixed(2))
	b.WriteString("A courier will contact you shortly.")
	return b.String()
}

// RenderManager renders the alert for the manager channel. The embedded
// "order #<id>" reference is what a later manager accept/reject correlates
// on.
func RenderManager(o *models.Order, u *models.User, inviterActivated, percent int, charge decimal.Decimal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚡ *NEW ORDER #%d*\n\n", o.ID)
	b.WriteString(renderItems(o.Payload.Items))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "📍 District: %s\n", o.Payload.District)
	fmt.Fprintf(&b, "🏠 Address: %s\n", o.Payload.Address)
	fmt.Fprintf(&b, "💰 Declared: %s ₽, charge: *%s ₽* (discount %d%%)\n", o.Payload.Total, charge.StringFixed(2), percent)
	name := u.DisplayName
	if name == "" {
		name = u.ID
	}
	fmt.Fprintf(&b, "👤 From: %s (id %s)\n", name, u.ID)
	if u.InvitedBy != nil {
		fmt.Fprintf(&b, "🤝 Invited by %s, inviter has %d activated referrals\n", *u.InvitedBy, inviterActivated)
	}
	return b.String()
}
