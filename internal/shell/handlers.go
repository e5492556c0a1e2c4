package shell

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Brugger-UFMG/Online-Market/internal/domain/user"
	"github.com/Brugger-UFMG/Online-Market/internal/market"
)

type handler func(s *Shell, ctx context.Context, acct market.Account) error

var labels = map[market.Capability]string{
	market.CapListProducts:   "List products",
	market.CapPlaceOrder:     "Place an order",
	market.CapListMyOrders:   "My orders",
	market.CapReceiveOrder:   "Confirm an order arrived",
	market.CapCancelMyOrder:  "Cancel one of my orders",
	market.CapAddProduct:     "Add a product",
	market.CapRestockProduct: "Restock a product",
	market.CapEditProduct:    "Edit a product",
	market.CapDeleteProduct:  "Delete a product",
	market.CapListOrders:     "List all orders",
	market.CapSendOrder:      "Send an order",
	market.CapCancelOrder:    "Cancel an order",
	market.CapListCustomers:  "List customers",
	market.CapChangePassword: "Change password",
	market.CapLogout:         "Logout",
}

var handlers = map[market.Capability]handler{
	market.CapListProducts:   (*Shell).listProducts,
	market.CapPlaceOrder:     (*Shell).placeOrder,
	market.CapListMyOrders:   (*Shell).listMyOrders,
	market.CapReceiveOrder:   (*Shell).receiveOrder,
	market.CapCancelMyOrder:  (*Shell).cancelMyOrder,
	market.CapAddProduct:     (*Shell).addProduct,
	market.CapRestockProduct: (*Shell).restockProduct,
	market.CapEditProduct:    (*Shell).editProduct,
	market.CapDeleteProduct:  (*Shell).deleteProduct,
	market.CapListOrders:     (*Shell).listOrders,
	market.CapSendOrder:      (*Shell).sendOrder,
	market.CapCancelOrder:    (*Shell).cancelOrder,
	market.CapListCustomers:  (*Shell).listCustomers,
	market.CapChangePassword: (*Shell).changePassword,
	market.CapLogout:         (*Shell).logout,
}

func (s *Shell) listProducts(_ context.Context, _ market.Account) error {
	renderProducts(s.out, s.m.Catalog().List())
	return nil
}

func (s *Shell) placeOrder(ctx context.Context, acct market.Account) error {
	var selections []market.Selection
	for {
		line, err := s.prompt("Product id (empty to finish)")
		if err != nil {
			return err
		}
		if line == "" {
			break
		}
		id, err := parseInt(line)
		if err != nil {
			s.printf("Product id %v.\n", err)
			continue
		}
		if _, err := s.m.Catalog().Get(id); err != nil {
			s.printf("Error: %v\n", err)
			continue
		}
		qty, err := promptParse(s, "Quantity", parsePositive)
		if err != nil {
			return err
		}
		selections = append(selections, market.Selection{ProductID: id, Quantity: qty})
	}
	if len(selections) == 0 {
		s.printf("Nothing selected.\n")
		return nil
	}

	o, err := s.m.PlaceOrder(ctx, acct.Customer.ID, selections)
	if err != nil {
		return err
	}
	s.printf("Order %d placed.\n", o.ID)
	renderOrder(s.out, o)
	return nil
}

func (s *Shell) listMyOrders(_ context.Context, acct market.Account) error {
	orders, err := s.m.CustomerOrders(acct.Customer.ID)
	if err != nil {
		return err
	}
	renderOrders(s.out, orders)
	return nil
}

func (s *Shell) receiveOrder(ctx context.Context, acct market.Account) error {
	return s.ownOrderTransition(ctx, acct, "received", s.m.ReceiveOrder)
}

func (s *Shell) cancelMyOrder(ctx context.Context, acct market.Account) error {
	return s.ownOrderTransition(ctx, acct, "canceled", s.m.CancelOrder)
}

func (s *Shell) ownOrderTransition(ctx context.Context, acct market.Account, verb string, apply func(context.Context, int) (bool, error)) error {
	id, err := promptParse(s, "Order id", parseInt)
	if err != nil {
		return err
	}
	if _, err := s.m.CustomerOrder(acct.Customer.ID, id); err != nil {
		return err
	}
	return s.reportTransition(ctx, id, verb, apply)
}

func (s *Shell) reportTransition(ctx context.Context, id int, verb string, apply func(context.Context, int) (bool, error)) error {
	ok, err := apply(ctx, id)
	if err != nil {
		return err
	}
	o, err := s.m.Orders().Get(id)
	if err != nil {
		return err
	}
	if ok {
		s.printf("Order %d %s.\n", id, verb)
	} else {
		s.printf("Order %d cannot be %s, it is %s.\n", id, verb, o.Status)
	}
	return nil
}

func (s *Shell) addProduct(ctx context.Context, _ market.Account) error {
	name, err := s.promptValid("Name", validProductName)
	if err != nil {
		return err
	}
	price, err := promptParse(s, "Price", parsePrice)
	if err != nil {
		return err
	}
	qty, err := promptParse(s, "Quantity", parseInt)
	if err != nil {
		return err
	}

	p, err := s.m.AddProduct(ctx, name, price, qty)
	if err != nil {
		return err
	}
	s.printf("Product %d added.\n", p.ID)
	return nil
}

func (s *Shell) restockProduct(_ context.Context, _ market.Account) error {
	id, err := promptParse(s, "Product id", parseInt)
	if err != nil {
		return err
	}
	amount, err := promptParse(s, "Amount", parsePositive)
	if err != nil {
		return err
	}
	if err := s.m.Catalog().Restock(id, amount); err != nil {
		return err
	}
	p, err := s.m.Catalog().Get(id)
	if err != nil {
		return err
	}
	s.printf("Product %d now has %d units.\n", p.ID, p.Quantity)
	return nil
}

func (s *Shell) editProduct(_ context.Context, _ market.Account) error {
	id, err := promptParse(s, "Product id", parseInt)
	if err != nil {
		return err
	}
	if _, err := s.m.Catalog().Get(id); err != nil {
		return err
	}

	name, err := s.promptValid("New name (empty to keep)", optional(validProductName))
	if err != nil {
		return err
	}
	price, err := promptParse(s, "New price (empty to keep)", func(v string) (decimal.Decimal, error) {
		if v == "" {
			return decimal.Decimal{}, nil
		}
		return parsePrice(v)
	})
	if err != nil {
		return err
	}

	if name != "" {
		if err := s.m.Catalog().Rename(id, name); err != nil {
			return err
		}
	}
	if !price.IsZero() {
		if err := s.m.Catalog().Reprice(id, price); err != nil {
			return err
		}
	}
	s.printf("Product %d updated.\n", id)
	return nil
}

func (s *Shell) deleteProduct(ctx context.Context, _ market.Account) error {
	id, err := promptParse(s, "Product id", parseInt)
	if err != nil {
		return err
	}
	if err := s.m.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.printf("Product %d deleted.\n", id)
	return nil
}

func (s *Shell) listOrders(_ context.Context, _ market.Account) error {
	renderOrders(s.out, s.m.Orders().List())
	return nil
}

func (s *Shell) sendOrder(ctx context.Context, _ market.Account) error {
	id, err := promptParse(s, "Order id", parseInt)
	if err != nil {
		return err
	}
	return s.reportTransition(ctx, id, "sent", s.m.SendOrder)
}

func (s *Shell) cancelOrder(ctx context.Context, _ market.Account) error {
	id, err := promptParse(s, "Order id", parseInt)
	if err != nil {
		return err
	}
	return s.reportTransition(ctx, id, "canceled", s.m.CancelOrder)
}

func (s *Shell) listCustomers(_ context.Context, _ market.Account) error {
	renderCustomers(s.out, s.m.Customers().List())
	return nil
}

func (s *Shell) changePassword(_ context.Context, acct market.Account) error {
	current, err := s.prompt("Current password")
	if err != nil {
		return err
	}
	next, err := s.promptValid("New password", validPassword)
	if err != nil {
		return err
	}
	if err := acct.Identity.ChangePassword(current, next); err != nil {
		return err
	}
	s.printf("Password changed.\n")
	return nil
}

func (s *Shell) logout(_ context.Context, acct market.Account) error {
	s.printf("Goodbye, %s.\n", acct.Identity.Name)
	return errLogout
}

func (s *Shell) promptAddress() (user.Address, error) {
	var (
		a   user.Address
		err error
	)
	if a.Street, err = s.promptValid("Street", validWords); err != nil {
		return a, err
	}
	if a.HouseNumber, err = promptParse(s, "House number", parsePositive); err != nil {
		return a, err
	}
	if a.Complement, err = s.promptValid("Complement", anything); err != nil {
		return a, err
	}
	if a.City, err = s.promptValid("City", validWords); err != nil {
		return a, err
	}
	if a.State, err = s.promptValid("State", validWords); err != nil {
		return a, err
	}
	if a.ZipCode, err = s.promptValid("Zip code", validZipCode); err != nil {
		return a, err
	}
	return a, nil
}
