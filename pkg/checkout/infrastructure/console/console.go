package console

import (
	"fmt"
	"io"

	cartmodel "pos/pkg/cart/domain/model"
)

// Cue rings the terminal bell as the checkout confirmation sound.
type Cue struct {
	Out io.Writer
}

func (c *Cue) Play() error {
	_, err := fmt.Fprint(c.Out, "\a")
	return err
}

// Printer renders an order ticket to a writer, standing in for the
// receipt printer.
type Printer struct {
	Out io.Writer
}

func (p *Printer) PrintOrder(cart *cartmodel.Cart) error {
	if _, err := fmt.Fprintf(p.Out, "ORDER %s  [%s / %s]\n", cart.ID, cart.OrderType, cart.PaymentMethod); err != nil {
		return err
	}
	for _, line := range cart.Lines {
		if _, err := fmt.Fprintf(p.Out, "  %dx %-24s %10.2f\n", line.Quantity, line.Name, line.Subtotal()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(p.Out, "  TOTAL %36.2f\n", cart.TotalAmountDisplay())
	return err
}
