package file

import (
	"fmt"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/Brugger-UFMG/Online-Market/internal/domain/order"
	"github.com/Brugger-UFMG/Online-Market/internal/storage"
)

// Encode renders snap as an indented JSON document.
func Encode(snap *storage.Snapshot) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.SetIdent(2)

	e.Obj(func(e *jx.Encoder) {
		e.Field("owner", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Int(snap.Owner.ID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(snap.Owner.Name) })
				e.Field("password", func(e *jx.Encoder) { e.Str(snap.Owner.Password) })
			})
		})
		e.Field("customers", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, c := range snap.Customers {
					encodeCustomer(e, c)
				}
			})
		})
		e.Field("products", func(e *jx.Encoder) {
			encodeProducts(e, snap.Products)
		})
		e.Field("orders", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, o := range snap.Orders {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Int(o.ID) })
						e.Field("customer_id", func(e *jx.Encoder) { e.Int(o.CustomerID) })
						e.Field("status", func(e *jx.Encoder) { e.Str(o.Status) })
						e.Field("products", func(e *jx.Encoder) { encodeProducts(e, o.Products) })
					})
				}
			})
		})
	})

	return append([]byte(nil), e.Bytes()...)
}

func encodeCustomer(e *jx.Encoder, c storage.CustomerRecord) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int(c.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("password", func(e *jx.Encoder) { e.Str(c.Password) })
		e.Field("address", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("street", func(e *jx.Encoder) { e.Str(c.Address.Street) })
				e.Field("city", func(e *jx.Encoder) { e.Str(c.Address.City) })
				e.Field("state", func(e *jx.Encoder) { e.Str(c.Address.State) })
				e.Field("zip_code", func(e *jx.Encoder) { e.Str(c.Address.ZipCode) })
				e.Field("house_number", func(e *jx.Encoder) { e.Int(c.Address.HouseNumber) })
				e.Field("complement", func(e *jx.Encoder) { e.Str(c.Address.Complement) })
			})
		})
	})
}

func encodeProducts(e *jx.Encoder, products []storage.ProductRecord) {
	e.Arr(func(e *jx.Encoder) {
		for _, p := range products {
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Int(p.ID) })
				e.Field("owner_id", func(e *jx.Encoder) { e.Int(p.OwnerID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
				e.Field("price", func(e *jx.Encoder) { e.Raw([]byte(p.Price.String())) })
				e.Field("quantity", func(e *jx.Encoder) { e.Int(p.Quantity) })
			})
		}
	})
}

// Decode parses a JSON document into a snapshot. Every field of the schema is
// required; unknown fields are ignored.
func Decode(data []byte) (*storage.Snapshot, error) {
	var snap storage.Snapshot

	d := jx.DecodeBytes(data)
	seen := keys{}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		seen.add(key)
		switch key {
		case "owner":
			return decodeOwner(d, &snap.Owner)
		case "customers":
			return d.Arr(func(d *jx.Decoder) error {
				var c storage.CustomerRecord
				if err := decodeCustomer(d, &c); err != nil {
					return err
				}
				snap.Customers = append(snap.Customers, c)
				return nil
			})
		case "products":
			products, err := decodeProducts(d, "product")
			snap.Products = products
			return err
		case "orders":
			return d.Arr(func(d *jx.Decoder) error {
				var o storage.OrderRecord
				if err := decodeOrder(d, &o); err != nil {
					return err
				}
				snap.Orders = append(snap.Orders, o)
				return nil
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, formatError(err)
	}
	if err := d.Skip(); !errors.Is(err, io.EOF) {
		return nil, storage.Formatf("unexpected data after document")
	}
	if err := seen.require("document", "owner", "customers", "products", "orders"); err != nil {
		return nil, err
	}

	return &snap, nil
}

func decodeOwner(d *jx.Decoder, o *storage.OwnerRecord) error {
	seen := keys{}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		seen.add(key)
		var err error
		switch key {
		case "id":
			o.ID, err = d.Int()
		case "name":
			o.Name, err = d.Str()
		case "password":
			o.Password, err = d.Str()
		default:
			err = d.Skip()
		}
		return field("owner", key, err)
	}); err != nil {
		return err
	}
	return seen.require("owner", "id", "name", "password")
}

func decodeCustomer(d *jx.Decoder, c *storage.CustomerRecord) error {
	seen := keys{}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		seen.add(key)
		var err error
		switch key {
		case "id":
			c.ID, err = d.Int()
		case "name":
			c.Name, err = d.Str()
		case "password":
			c.Password, err = d.Str()
		case "address":
			return decodeAddress(d, &c.Address)
		default:
			err = d.Skip()
		}
		return field("customer", key, err)
	}); err != nil {
		return err
	}
	return seen.require("customer", "id", "name", "password", "address")
}

func decodeAddress(d *jx.Decoder, a *storage.AddressRecord) error {
	seen := keys{}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		seen.add(key)
		var err error
		switch key {
		case "street":
			a.Street, err = d.Str()
		case "city":
			a.City, err = d.Str()
		case "state":
			a.State, err = d.Str()
		case "zip_code":
			a.ZipCode, err = d.Str()
		case "house_number":
			a.HouseNumber, err = d.Int()
		case "complement":
			a.Complement, err = d.Str()
		default:
			err = d.Skip()
		}
		return field("address", key, err)
	}); err != nil {
		return err
	}
	return seen.require("address", "street", "city", "state", "zip_code", "house_number", "complement")
}

func decodeOrder(d *jx.Decoder, o *storage.OrderRecord) error {
	seen := keys{}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		seen.add(key)
		var err error
		switch key {
		case "id":
			o.ID, err = d.Int()
		case "customer_id":
			o.CustomerID, err = d.Int()
		case "status":
			o.Status, err = d.Str()
		case "products":
			o.Products, err = decodeProducts(d, "order product")
			return err
		default:
			err = d.Skip()
		}
		return field("order", key, err)
	}); err != nil {
		return err
	}
	if err := seen.require("order", "id", "customer_id", "status", "products"); err != nil {
		return err
	}
	if !order.Status(o.Status).Valid() {
		return storage.Formatf("order %d: unknown status %q", o.ID, o.Status)
	}
	return nil
}

func decodeProducts(d *jx.Decoder, obj string) ([]storage.ProductRecord, error) {
	var out []storage.ProductRecord
	err := d.Arr(func(d *jx.Decoder) error {
		var p storage.ProductRecord
		seen := keys{}
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			seen.add(key)
			var err error
			switch key {
			case "id":
				p.ID, err = d.Int()
			case "owner_id":
				p.OwnerID, err = d.Int()
			case "name":
				p.Name, err = d.Str()
			case "price":
				p.Price, err = decodePrice(d)
			case "quantity":
				p.Quantity, err = d.Int()
			default:
				err = d.Skip()
			}
			return field(obj, key, err)
		}); err != nil {
			return err
		}
		if err := seen.require(obj, "id", "owner_id", "name", "price", "quantity"); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() != jx.Number {
		return decimal.Decimal{}, errors.Errorf("expected number, got %v", d.Next())
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}

// keys tracks which fields of an object were present.
type keys map[string]struct{}

func (k keys) add(key string) { k[key] = struct{}{} }

func (k keys) require(obj string, names ...string) error {
	for _, name := range names {
		if _, ok := k[name]; !ok {
			return storage.Formatf("%s: missing field %q", obj, name)
		}
	}
	return nil
}

func field(obj, key string, err error) error {
	if err == nil {
		return nil
	}
	return &storage.FormatError{Msg: fmt.Sprintf("%s.%s", obj, key), Err: err}
}

func formatError(err error) error {
	var fErr *storage.FormatError
	if errors.As(err, &fErr) {
		return fErr
	}
	return &storage.FormatError{Msg: "decode document", Err: err}
}
