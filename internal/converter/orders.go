package converter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xshopai/seeder/internal/fixtures"
	"github.com/xshopai/seeder/internal/identity"
)

const (
	TaxRate               = 0.08
	ShippingFee           = 9.99
	FreeShippingThreshold = 100.0
)

type Customer struct {
	Name  string
	Email string
	Phone string
}

var customers = map[string]Customer{
	"user_1": {Name: "Guest User", Email: "guest@xshopai.com", Phone: "+1-555-0100"},
	"user_2": {Name: "Admin User", Email: "admin@xshopai.com", Phone: "+1-555-0101"},
	"user_3": {Name: "Jane Smith", Email: "jane.smith@example.com", Phone: "+1-555-0102"},
	"user_4": {Name: "John Doe", Email: "john.doe@example.com", Phone: "+1-555-0103"},
	"user_5": {Name: "Maria Garcia", Email: "maria.garcia@example.com", Phone: "+1-555-0104"},
}

var unknownCustomer = Customer{Name: "Customer", Email: "customer@example.com", Phone: "+1-555-0000"}

// LookupCustomer returns the contact details for a logical user key.
func LookupCustomer(userKey string) Customer {
	if c, ok := customers[userKey]; ok {
		return c
	}
	return unknownCustomer
}

type OrderItem struct {
	ID          uuid.UUID
	ProductKey  string
	ProductID   string
	ProductName string
	SKU         string
	UnitPrice   float64
	Quantity    int
}

func (i OrderItem) LineTotal() float64 { return i.UnitPrice * float64(i.Quantity) }

type Order struct {
	Key             string
	ID              uuid.UUID
	OrderNumber     string
	UserKey         string
	CustomerID      string
	Customer        Customer
	Status          string
	PaymentStatus   string
	PaymentMethod   string
	Items           []OrderItem
	Subtotal        float64
	Discount        float64
	Tax             float64
	Shipping        float64
	Total           float64
	Currency        string
	ShippingStreet  string
	ShippingCity    string
	ShippingState   string
	ShippingZip     string
	ShippingCountry string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Totals computes subtotal, tax, shipping and total for the given items.
func Totals(items []OrderItem, discount float64) (subtotal, tax, shipping, total float64) {
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	tax = (subtotal - discount) * TaxRate
	if subtotal <= FreeShippingThreshold {
		shipping = ShippingFee
	}
	total = subtotal - discount + tax + shipping
	return subtotal, tax, shipping, total
}

func (o Order) Record() map[string]interface{} {
	return map[string]interface{}{
		"id":               o.ID.String(),
		"order_number":     o.OrderNumber,
		"customer_id":      o.CustomerID,
		"customer_name":    o.Customer.Name,
		"customer_email":   o.Customer.Email,
		"customer_phone":   o.Customer.Phone,
		"status":           o.Status,
		"payment_status":   o.PaymentStatus,
		"payment_method":   o.PaymentMethod,
		"subtotal":         round(o.Subtotal, 2),
		"discount_amount":  round(o.Discount, 2),
		"tax_amount":       round(o.Tax, 2),
		"shipping_cost":    round(o.Shipping, 2),
		"total_amount":     round(o.Total, 2),
		"currency":         o.Currency,
		"shipping_street":  o.ShippingStreet,
		"shipping_city":    o.ShippingCity,
		"shipping_state":   o.ShippingState,
		"shipping_zip":     o.ShippingZip,
		"shipping_country": o.ShippingCountry,
		"created_at":       o.CreatedAt,
		"updated_at":       o.UpdatedAt,
		"created_by":       "SEEDER",
	}
}

func (o Order) ItemRecords() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, map[string]interface{}{
			"id":           it.ID.String(),
			"order_id":     o.ID.String(),
			"product_id":   it.ProductID,
			"product_name": it.ProductName,
			"sku":          it.SKU,
			"unit_price":   round(it.UnitPrice, 2),
			"quantity":     it.Quantity,
			"total_price":  round(it.LineTotal(), 2),
			"created_at":   o.CreatedAt,
		})
	}
	return out
}

// OrderResult holds converted orders and the fixture positions that could not
// be resolved against the identity mapper.
type OrderResult struct {
	Orders     []Order
	Unresolved []int
}

// ConvertOrders resolves each order's user and line-item products through the
// mapper. Orders whose user is unknown, or that end up with no resolvable
// items, are reported in Unresolved.
func ConvertOrders(raw []fixtures.Record, catalog map[string]CatalogEntry, ctx *Context) OrderResult {
	var result OrderResult
	stamp := strconv.FormatInt(ctx.Now().Unix(), 10)
	if len(stamp) > 6 {
		stamp = stamp[len(stamp)-6:]
	}

	for i, r := range raw {
		key := identity.Key("order", i+1)
		userKey, ok := identity.ResolvePlaceholder(r.String("userId"))
		if !ok {
			result.Unresolved = append(result.Unresolved, i+1)
			continue
		}
		userID, ok := ctx.IDs.LookupObjectID(userKey)
		if !ok {
			result.Unresolved = append(result.Unresolved, i+1)
			continue
		}

		orderID := ctx.IDs.GetOrCreateUUID(key)
		var items []OrderItem
		for m, rawItem := range r.Slice("items") {
			productKey, ok := identity.ResolvePlaceholder(rawItem.String("productId"))
			if !ok {
				continue
			}
			productID, ok := ctx.IDs.LookupObjectID(productKey)
			if !ok {
				continue
			}
			entry := catalog[productKey]
			price := entry.Price
			if rawItem.Has("unitPrice") {
				price = rawItem.Float("unitPrice")
			}
			itemKey := fmt.Sprintf("%s_item_%d", key, m+1)
			items = append(items, OrderItem{
				ID:          ctx.IDs.GetOrCreateUUID(itemKey),
				ProductKey:  productKey,
				ProductID:   productID.Hex(),
				ProductName: rawItem.StringOr("productName", entry.Name),
				SKU:         rawItem.StringOr("sku", entry.SKU),
				UnitPrice:   price,
				Quantity:    max(1, rawItem.IntOr("quantity", 1)),
			})
			ctx.IDs.AddRelationship(key, itemKey)
		}
		if len(items) == 0 {
			result.Unresolved = append(result.Unresolved, i+1)
			continue
		}
		ctx.IDs.AddRelationship(userKey, key)

		discount := r.Float("discount")
		subtotal, tax, shipping, total := Totals(items, discount)
		addr := r.Map("shippingAddress")
		created := ctx.RecentTime(90)

		result.Orders = append(result.Orders, Order{
			Key:             key,
			ID:              orderID,
			OrderNumber:     fmt.Sprintf("ORD-%s-%04d", stamp, len(result.Orders)+1),
			UserKey:         userKey,
			CustomerID:      userID.Hex(),
			Customer:        LookupCustomer(userKey),
			Status:          r.StringOr("status", "delivered"),
			PaymentStatus:   r.StringOr("paymentStatus", "paid"),
			PaymentMethod:   r.StringOr("paymentMethod", "credit_card"),
			Items:           items,
			Subtotal:        subtotal,
			Discount:        discount,
			Tax:             tax,
			Shipping:        shipping,
			Total:           total,
			Currency:        r.StringOr("currency", "USD"),
			ShippingStreet:  addr.StringOr("street", "123 Main St"),
			ShippingCity:    addr.StringOr("city", "Seattle"),
			ShippingState:   addr.StringOr("state", "WA"),
			ShippingZip:     addr.StringOr("zipCode", "98101"),
			ShippingCountry: addr.StringOr("country", "US"),
			CreatedAt:       created,
			UpdatedAt:       created,
		})
	}
	return result
}
