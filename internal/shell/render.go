package shell

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Brugger-UFMG/Online-Market/internal/domain/order"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/product"
	"github.com/Brugger-UFMG/Online-Market/internal/domain/user"
)

func renderProducts(w io.Writer, products []product.Product) {
	if len(products) == 0 {
		_, _ = fmt.Fprintln(w, "No products.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQUANTITY")
	for _, p := range products {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Name, p.Price.StringFixed(2), p.Quantity)
	}
	_ = tw.Flush()
}

func renderOrder(w io.Writer, o order.Order) {
	_, _ = fmt.Fprintf(w, "Order %d [%s] customer %d total %s\n", o.ID, o.Status, o.CustomerID, o.Total.StringFixed(2))
	for _, p := range o.Products {
		_, _ = fmt.Fprintf(w, "  product %d %s x%d @ %s = %s\n",
			p.ID, p.Name, p.Quantity, p.Price.StringFixed(2), p.TotalPrice().StringFixed(2))
	}
}

func renderOrders(w io.Writer, orders []order.Order) {
	if len(orders) == 0 {
		_, _ = fmt.Fprintln(w, "No orders.")
		return
	}
	for _, o := range orders {
		renderOrder(w, o)
	}
}

func renderCustomers(w io.Writer, customers []*user.Customer) {
	if len(customers) == 0 {
		_, _ = fmt.Fprintln(w, "No customers.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tCITY\tZIP\tORDERS")
	for _, c := range customers {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Address.City, c.Address.ZipCode, len(c.OrderIDs()))
	}
	_ = tw.Flush()
}
