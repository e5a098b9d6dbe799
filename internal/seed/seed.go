// Package seed loads the demo fixtures: a product catalog, a customer
// roster (including the demo login), and a spread of orders across the
// lifecycle statuses. IDs are fixed so reseeding is idempotent-enough for
// local development.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shoplite/shoplite/api/internal/store"
	"github.com/shoplite/shoplite/api/pkg/models"
)

// DemoEmail is the account the storefront's demo login uses.
const DemoEmail = "demo@example.com"

func pid(n int) string { return fmt.Sprintf("64b0f0a1c2d3e4f5a6b7%04d", n) }
func cid(n int) string { return fmt.Sprintf("64c1e1b2d3e4f5a6b7c8%04d", n) }
func oid(n int) string { return fmt.Sprintf("64d2f2c3e4f5a6b7c8d9%04d", n) }

// Needed reports whether the store has no catalog yet.
func Needed(ctx context.Context, st store.Store) (bool, error) {
	count, err := st.CountProducts(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Run inserts the full fixture set.
func Run(ctx context.Context, st store.Store) error {
	now := time.Now().UTC()

	products := fixtureProducts(now)
	for i := range products {
		if err := st.CreateProduct(ctx, &products[i]); err != nil {
			return fmt.Errorf("seed product %s: %w", products[i].ID, err)
		}
	}

	customers := fixtureCustomers(now)
	for i := range customers {
		if err := st.CreateCustomer(ctx, &customers[i]); err != nil {
			return fmt.Errorf("seed customer %s: %w", customers[i].ID, err)
		}
	}

	orders := fixtureOrders(now, products)
	for i := range orders {
		if err := st.CreateOrder(ctx, &orders[i]); err != nil {
			return fmt.Errorf("seed order %s: %w", orders[i].ID, err)
		}
	}

	log.Info().
		Int("products", len(products)).
		Int("customers", len(customers)).
		Int("orders", len(orders)).
		Msg("demo fixtures seeded")
	return nil
}

func fixtureProducts(now time.Time) []models.Product {
	type p struct {
		name, desc, category string
		price                float64
		tags                 []string
		stock                int
	}
	defs := []p{
		{"4K Ultra HD Smart TV", "A 55-inch 4K UHD Smart TV with stunning picture quality.", "Electronics", 479.99, []string{"Electronics", "Smart Home"}, 50},
		{"Wireless Surround Sound System", "A 5.1 channel wireless surround sound system for an immersive home theater experience.", "Electronics", 329.50, []string{"Electronics", "Audio"}, 40},
		{"Curved Gaming Monitor", "A 27-inch curved gaming monitor with a 144Hz refresh rate for smooth gameplay.", "Electronics", 279.95, []string{"Electronics", "Gaming", "Computer"}, 60},
		{"Noise-Cancelling Over-Ear Headphones", "High-fidelity noise-cancelling headphones with a 30-hour battery life.", "Electronics", 349.00, []string{"Electronics", "Audio", "Accessories"}, 80},
		{"Smartwatch with Health Tracking", "A sleek smartwatch with GPS, heart rate monitoring, and a vibrant display.", "Electronics", 249.99, []string{"Electronics", "Health & Fitness", "Smart Home"}, 70},
		{"Digital SLR Camera Kit", "A 24MP DSLR camera with an 18-55mm lens, perfect for aspiring photographers.", "Electronics", 499.99, []string{"Electronics", "Camera"}, 25},
		{"Next-Gen Gaming Console", "The latest gaming console with next-gen graphics and an ultra-fast SSD.", "Electronics", 499.99, []string{"Electronics", "Gaming"}, 35},
		{"Immersive Virtual Reality Headset", "An immersive VR headset with high-resolution displays and intuitive controls.", "Electronics", 399.00, []string{"Electronics", "Gaming"}, 45},
		{"4K Action Camera Drone", "A foldable 4K drone with a 3-axis gimbal for capturing stunning aerial footage.", "Electronics", 450.00, []string{"Electronics", "Camera", "Outdoors"}, 20},
		{"Portable Power Bank (20,000mAh)", "A 20,000mAh portable power bank to keep your devices charged on the go.", "Accessories", 59.95, []string{"Accessories", "Lifestyle"}, 150},
		{"Lightweight Travel Tripod", "A lightweight and sturdy tripod for capturing stable shots and videos.", "Accessories", 79.99, []string{"Accessories", "Camera"}, 100},
		{"Smart Home Hub (Gen 2)", "Control all your smart home devices with this central smart home hub.", "Electronics", 99.00, []string{"Electronics", "Smart Home"}, 90},
		{"Mechanical Bluetooth Keyboard", "A compact mechanical keyboard with Bluetooth connectivity and customizable RGB lighting.", "Computer", 149.99, []string{"Computer", "Accessories", "Gaming"}, 110},
		{"Ergonomic Vertical Mouse", "Reduces wrist strain with a natural handshake grip.", "Computer", 69.50, []string{"Computer", "Accessories"}, 130},
		{"High-Speed Blender", "Powerful blender for smoothies, soups, and crushing ice.", "Appliances", 129.99, []string{"Appliances", "Lifestyle"}, 75},
		{"Waterproof Hiking Boots", "Durable and waterproof boots for all-terrain hiking.", "Fashion", 139.95, []string{"Outdoors", "Lifestyle"}, 80},
		{"Portable Bluetooth Speaker", "Compact, waterproof speaker with 12-hour battery life.", "Electronics", 89.99, []string{"Electronics", "Audio", "Outdoors"}, 110},
		{"Fast Wireless Charging Pad", "A fast wireless charging pad compatible with all Qi-enabled devices.", "Accessories", 39.99, []string{"Accessories", "Electronics"}, 200},
		{"Insulated Water Bottle", "Keeps drinks cold for 24 hours or hot for 12.", "Lifestyle", 29.95, []string{"Lifestyle", "Outdoors", "Health & Fitness"}, 200},
		{"Scented Soy Candle", "A hand-poured soy wax candle with a lavender scent.", "Home Decor", 24.50, []string{"Lifestyle"}, 120},
	}
	products := make([]models.Product, len(defs))
	for i, d := range defs {
		products[i] = models.Product{
			ID:          pid(i + 1),
			Name:        d.name,
			Description: d.desc,
			Price:       d.price,
			Category:    d.category,
			Tags:        d.tags,
			Stock:       d.stock,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	return products
}

func fixtureCustomers(now time.Time) []models.Customer {
	type c struct{ name, email, phone, address string }
	defs := []c{
		{"Alice Johnson", "alice.j@example.com", "123-456-7890", "123 Maple St, Springfield, IL 62704"},
		{"Bob Smith", "bob.smith@example.com", "234-567-8901", "456 Oak Ave, Shelbyville, TN 37160"},
		{"Charlie Brown", "charlie.b@example.com", "345-678-9012", "789 Pine Ln, Capital City, CA 90210"},
		{"Demo User", DemoEmail, "555-555-5555", "101 Demo Ct, Testville, TX 75001"},
		{"Diana Prince", "diana.p@example.com", "456-789-0123", "22 Themyscira Blvd, Paradise Island, DC 20001"},
		{"Ethan Hunt", "ethan.h@example.com", "567-890-1234", "789 Impossible Rd, Langley, VA 22101"},
		{"Fiona Glenanne", "fiona.g@example.com", "678-901-2345", "456 Burn Notice Way, Miami, FL 33101"},
		{"George Costanza", "george.c@example.com", "789-012-3456", "1344 Vandelay St, New York, NY 10001"},
		{"Hannah Montana", "hannah.m@example.com", "890-123-4567", "987 Popstar Dr, Malibu, CA 90265"},
		{"Indiana Jones", "indy.j@example.com", "901-234-5678", "321 Museum Arch, Barnett College, CT 06510"},
	}
	customers := make([]models.Customer, len(defs))
	for i, d := range defs {
		customers[i] = models.Customer{
			ID:        cid(i + 1),
			Name:      d.name,
			Email:     d.email,
			Phone:     d.phone,
			Address:   d.address,
			CreatedAt: now,
		}
	}
	return customers
}

func fixtureOrders(now time.Time, products []models.Product) []models.Order {
	item := func(i, qty int) models.OrderItem {
		return models.OrderItem{
			ProductID: products[i].ID,
			Name:      products[i].Name,
			Price:     products[i].Price,
			Quantity:  qty,
		}
	}
	eta := func(days int) *time.Time {
		t := now.Add(time.Duration(days) * 24 * time.Hour)
		return &t
	}
	ago := func(hours int) time.Time { return now.Add(-time.Duration(hours) * time.Hour) }

	demoID := cid(4)
	orders := []models.Order{
		// Three orders for the demo account, one per interesting status.
		{ID: oid(1), CustomerID: demoID, Items: []models.OrderItem{item(2, 1)}, Total: 279.95, Status: models.OrderProcessing, CreatedAt: ago(24), UpdatedAt: now},
		{ID: oid(2), CustomerID: demoID, Items: []models.OrderItem{item(5, 1), item(9, 2)}, Total: 619.89, Status: models.OrderShipped, Carrier: "FedEx", EstimatedDelivery: eta(3), CreatedAt: ago(96), UpdatedAt: now},
		{ID: oid(3), CustomerID: demoID, Items: []models.OrderItem{item(19, 1)}, Total: 24.50, Status: models.OrderDelivered, CreatedAt: ago(240), UpdatedAt: now},

		{ID: oid(4), CustomerID: cid(1), Items: []models.OrderItem{item(0, 1)}, Total: 479.99, Status: models.OrderDelivered, CreatedAt: ago(480), UpdatedAt: now},
		{ID: oid(5), CustomerID: cid(2), Items: []models.OrderItem{item(12, 1)}, Total: 149.99, Status: models.OrderPending, CreatedAt: ago(2), UpdatedAt: now},
		{ID: oid(6), CustomerID: cid(3), Items: []models.OrderItem{item(8, 1), item(9, 1)}, Total: 509.95, Status: models.OrderShipped, Carrier: "DHL", EstimatedDelivery: eta(1), CreatedAt: ago(48), UpdatedAt: now},
		{ID: oid(7), CustomerID: cid(5), Items: []models.OrderItem{item(15, 1)}, Total: 139.95, Status: models.OrderDelivered, CreatedAt: ago(720), UpdatedAt: now},
		{ID: oid(8), CustomerID: cid(6), Items: []models.OrderItem{item(3, 2)}, Total: 698.00, Status: models.OrderProcessing, CreatedAt: ago(48), UpdatedAt: now},
		{ID: oid(9), CustomerID: cid(7), Items: []models.OrderItem{item(18, 1)}, Total: 29.95, Status: models.OrderPending, CreatedAt: ago(5), UpdatedAt: now},
		{ID: oid(10), CustomerID: cid(8), Items: []models.OrderItem{item(13, 1)}, Total: 69.50, Status: models.OrderShipped, Carrier: "UPS", EstimatedDelivery: eta(4), CreatedAt: ago(72), UpdatedAt: now},
		{ID: oid(11), CustomerID: cid(9), Items: []models.OrderItem{item(1, 1)}, Total: 329.50, Status: models.OrderProcessing, CreatedAt: ago(12), UpdatedAt: now},
		{ID: oid(12), CustomerID: cid(10), Items: []models.OrderItem{item(10, 1), item(11, 3)}, Total: 376.99, Status: models.OrderDelivered, CreatedAt: ago(1080), UpdatedAt: now},
	}
	return orders
}
