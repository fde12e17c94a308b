package upstream

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/lumea/checkout-bff/internal/domain/cart"
	"github.com/lumea/checkout-bff/internal/domain/order"
)

// Wire codecs for the storefront API envelopes. The backend wraps every
// request and response body in a "data" object and flags outcomes with
// "success"; money amounts may arrive as integers or fractions, so they are
// decoded from the raw number to keep decimal precision.

func decodeAmount(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "parse amount")
	}
	return v, nil
}

func decodeProductInfo(d *jx.Decoder) (cart.ProductInfo, error) {
	var p cart.ProductInfo
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
		case "title":
			p.Title, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "imageUrl":
			p.ImageURL, err = d.Str()
		case "price":
			p.UnitPrice, err = decodeAmount(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return p, err
}

func decodeCartLine(d *jx.Decoder) (cart.Line, error) {
	var l cart.Line
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			l.ID, err = d.Str()
		case "product_id":
			l.ProductID, err = d.Str()
		case "qty":
			l.Quantity, err = d.Int()
		case "total":
			l.Total, err = decodeAmount(d)
		case "product":
			l.Product, err = decodeProductInfo(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return l, err
}

// decodeCartEnvelope parses GET /cart responses:
//
//	{"success":true,"data":{"carts":[...],"total":N,"final_total":N}}
func decodeCartEnvelope(data []byte) (cart.Cart, error) {
	var c cart.Cart
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "data":
			return d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "carts":
					err = d.Arr(func(d *jx.Decoder) error {
						l, err := decodeCartLine(d)
						if err != nil {
							return err
						}
						c.Lines = append(c.Lines, l)
						return nil
					})
				case "total":
					c.Subtotal, err = decodeAmount(d)
				case "final_total":
					c.FinalTotal, err = decodeAmount(d)
				default:
					err = d.Skip()
				}
				return err
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return cart.Cart{}, errors.Wrap(err, "decode cart")
	}
	return c, nil
}

// messageEnvelope is the common {"success":bool,"message":string} shape.
type messageEnvelope struct {
	Success bool
	Message string
	OrderID string
}

func decodeMessageEnvelope(data []byte) (messageEnvelope, error) {
	var env messageEnvelope
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "success":
			env.Success, err = d.Bool()
		case "message":
			// Some endpoints send non-string messages on failure; keep
			// whatever renders as text and skip the rest.
			if d.Next() == jx.String {
				env.Message, err = d.Str()
			} else {
				err = d.Skip()
			}
		case "orderId":
			env.OrderID, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return messageEnvelope{}, errors.Wrap(err, "decode envelope")
	}
	return env, nil
}

func decodeOrderLine(d *jx.Decoder) (order.Line, error) {
	var l order.Line
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			l.ID, err = d.Str()
		case "product_id":
			l.ProductID, err = d.Str()
		case "qty":
			l.Quantity, err = d.Int()
		case "final_total":
			l.FinalTotal, err = decodeAmount(d)
		case "product":
			l.Product, err = decodeProductInfo(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return l, err
}

// decodeOrderEnvelope parses GET /order/{id} responses. The backend keys
// order lines by line ID in an object rather than an array.
func decodeOrderEnvelope(data []byte) (*order.Order, error) {
	o := &order.Order{}
	found := false
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "order":
			if d.Next() == jx.Null {
				return d.Null()
			}
			found = true
			return d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "id":
					o.ID, err = d.Str()
				case "total":
					o.Total, err = decodeAmount(d)
				case "is_paid":
					o.Paid, err = d.Bool()
				case "message":
					if d.Next() == jx.String {
						o.Message, err = d.Str()
					} else {
						err = d.Skip()
					}
				case "create_at":
					var sec int64
					sec, err = d.Int64()
					if err == nil {
						o.CreatedAt = time.Unix(sec, 0).UTC()
					}
				case "user":
					err = d.Obj(func(d *jx.Decoder, key string) error {
						var err error
						switch key {
						case "name":
							o.Contact.Name, err = d.Str()
						case "email":
							o.Contact.Email, err = d.Str()
						case "tel":
							o.Contact.Tel, err = d.Str()
						case "address":
							o.Contact.Address, err = d.Str()
						default:
							err = d.Skip()
						}
						return err
					})
				case "products":
					err = d.Obj(func(d *jx.Decoder, _ string) error {
						l, err := decodeOrderLine(d)
						if err != nil {
							return err
						}
						o.Lines = append(o.Lines, l)
						return nil
					})
				default:
					err = d.Skip()
				}
				return err
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	if !found {
		return nil, errors.New("order missing from response")
	}
	return o, nil
}

// encodeCartItem builds {"data":{"product_id":...,"qty":...}}.
func encodeCartItem(productID string, qty int) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("data", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("product_id", func(e *jx.Encoder) { e.Str(productID) })
				e.Field("qty", func(e *jx.Encoder) { e.Int(qty) })
			})
		})
	})
	return e.Bytes()
}

// encodeCoupon builds {"data":{"code":...}}.
func encodeCoupon(code string) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("data", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("code", func(e *jx.Encoder) { e.Str(code) })
			})
		})
	})
	return e.Bytes()
}

// encodeOrder builds the POST /order payload:
//
//	{"data":{"user":{...},"message":...,"products":[{"product_id":...,"qty":...}]}}
func encodeOrder(req OrderRequest) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("data", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("user", func(e *jx.Encoder) {
					e.Obj(func(e *jx.Encoder) {
						e.Field("name", func(e *jx.Encoder) { e.Str(req.Contact.Name) })
						e.Field("email", func(e *jx.Encoder) { e.Str(req.Contact.Email) })
						e.Field("tel", func(e *jx.Encoder) { e.Str(req.Contact.Tel) })
						e.Field("address", func(e *jx.Encoder) { e.Str(req.Contact.Address) })
					})
				})
				if req.Message != "" {
					e.Field("message", func(e *jx.Encoder) { e.Str(req.Message) })
				}
				e.Field("products", func(e *jx.Encoder) {
					e.Arr(func(e *jx.Encoder) {
						for _, it := range req.Items {
							e.Obj(func(e *jx.Encoder) {
								e.Field("product_id", func(e *jx.Encoder) { e.Str(it.ProductID) })
								e.Field("qty", func(e *jx.Encoder) { e.Int(it.Quantity) })
							})
						}
					})
				})
			})
		})
	})
	return e.Bytes()
}
