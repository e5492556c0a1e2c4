package market

import (
	"fmt"
	"slices"

	"github.com/Brugger-UFMG/Online-Market/internal/domain/user"
)

// Capability identifies an operation offered to a logged in account.
type Capability uint8

const (
	CapListProducts Capability = iota + 1
	CapPlaceOrder
	CapListMyOrders
	CapReceiveOrder
	CapCancelMyOrder
	CapAddProduct
	CapRestockProduct
	CapEditProduct
	CapDeleteProduct
	CapListOrders
	CapSendOrder
	CapCancelOrder
	CapListCustomers
	CapChangePassword
	CapLogout
)

var capabilityNames = map[Capability]string{
	CapListProducts:   "list-products",
	CapPlaceOrder:     "place-order",
	CapListMyOrders:   "list-my-orders",
	CapReceiveOrder:   "receive-order",
	CapCancelMyOrder:  "cancel-my-order",
	CapAddProduct:     "add-product",
	CapRestockProduct: "restock-product",
	CapEditProduct:    "edit-product",
	CapDeleteProduct:  "delete-product",
	CapListOrders:     "list-orders",
	CapSendOrder:      "send-order",
	CapCancelOrder:    "cancel-order",
	CapListCustomers:  "list-customers",
	CapChangePassword: "change-password",
	CapLogout:         "logout",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Capability(%d)", uint8(c))
}

// capabilities is the fixed role to operation table. Menu order follows
// slice order.
var capabilities = map[user.Role][]Capability{
	user.RoleCustomer: {
		CapListProducts,
		CapPlaceOrder,
		CapListMyOrders,
		CapReceiveOrder,
		CapCancelMyOrder,
		CapChangePassword,
		CapLogout,
	},
	user.RoleOwner: {
		CapListProducts,
		CapAddProduct,
		CapRestockProduct,
		CapEditProduct,
		CapDeleteProduct,
		CapListOrders,
		CapSendOrder,
		CapCancelOrder,
		CapListCustomers,
		CapChangePassword,
		CapLogout,
	},
}

// Capabilities returns the operations available to role, in menu order.
func Capabilities(role user.Role) []Capability {
	return slices.Clone(capabilities[role])
}

// Allowed reports whether role may invoke c.
func Allowed(role user.Role, c Capability) bool {
	return slices.Contains(capabilities[role], c)
}
