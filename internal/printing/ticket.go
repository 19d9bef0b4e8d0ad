// Package printing is the kitchen ticket collaborator. The API process hands
// tickets to a Printer after the SENT_TO_KITCHEN transition commits; failures
// stay inside this package's caller as log lines.
package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
)

// Render formats an order as a plain-text kitchen ticket.
func Render(o orders.Order, printedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "==== KITCHEN #%d ====\n", o.ID)
	table := o.TableLabel
	if table == "" {
		table = fmt.Sprintf("%d", o.TableID)
	}
	fmt.Fprintf(&b, "Table: %s\n", table)
	fmt.Fprintf(&b, "Time:  %s\n", printedAt.Format("2006-01-02 15:04"))
	b.WriteString("--------------------\n")
	for _, it := range o.Items {
		name := it.ProductName
		if name == "" {
			name = fmt.Sprintf("product %d", it.ProductID)
		}
		fmt.Fprintf(&b, "%3d x %s\n", it.Qty, name)
	}
	if len(o.Items) == 0 {
		b.WriteString("(no items)\n")
	}
	b.WriteString("====================\n")
	return b.String()
}
