// Package notify formats orders for the shop and hands them to a delivery channel.
package notify

import (
	"fmt"
	"strings"

	"acai-store/models"
)

const separator = "-----------------------"

// FormatSummary renders the order the way the shop reads it on WhatsApp.
func FormatSummary(order *models.Order) string {
	var b strings.Builder

	b.WriteString("*Novo Pedido Recebido*\n\n")
	if c := order.Customer; c != nil {
		fmt.Fprintf(&b, "*Cliente:* %s\n", c.Name)
		fmt.Fprintf(&b, "*Telefone:* %s\n", c.Phone)
		fmt.Fprintf(&b, "*Endereço:* %s\n\n", c.Address)
	}
	b.WriteString("*Itens do Pedido:*\n")
	b.WriteString(separator + "\n")

	for _, item := range order.Items {
		fmt.Fprintf(&b, "*Produto:* %s (%s)\n", item.ProductName, item.VariationName)

		if included := item.Included(); len(included) > 0 {
			b.WriteString("  *Inclusos:*\n")
			for _, c := range included {
				fmt.Fprintf(&b, "    - %s\n", c.Name)
			}
		}
		if extras := item.Extras(); len(extras) > 0 {
			b.WriteString("  *Extras:*\n")
			for _, c := range extras {
				fmt.Fprintf(&b, "    - %s (%dx)\n", c.Name, c.Quantity)
			}
		}
		if item.Note != "" {
			fmt.Fprintf(&b, "  *Obs:* %s\n", item.Note)
		}
		fmt.Fprintf(&b, "  *Subtotal:* R$ %s\n", item.FinalPrice.StringFixed(2))
		b.WriteString(separator + "\n")
	}

	fmt.Fprintf(&b, "\n*Total do Pedido:* R$ %s", order.Total.StringFixed(2))
	return b.String()
}
