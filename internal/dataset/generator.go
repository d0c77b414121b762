package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

type GeneratorConfig struct {
	Seed     int64
	Users    int
	Products int
	Orders   int
	Events   int
	Start    time.Time
	Days     int
}

// Generator builds a coherent demo snapshot: every order item points at a
// real order, product, and inventory unit, and timestamps line up along the
// order lifecycle. The same seed always yields the same dataset.
type Generator struct {
	cfg GeneratorConfig
	rnd *rand.Rand
}

func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.Users <= 0 {
		cfg.Users = 200
	}
	if cfg.Products <= 0 {
		cfg.Products = 120
	}
	if cfg.Orders <= 0 {
		cfg.Orders = 600
	}
	if cfg.Events <= 0 {
		cfg.Events = 2000
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if cfg.Days <= 0 {
		cfg.Days = 365
	}
	return &Generator{cfg: cfg, rnd: rand.New(rand.NewSource(cfg.Seed))}
}

var (
	categories     = []string{"Accessories", "Activewear", "Jeans", "Outerwear", "Shorts", "Sweaters", "Tops"}
	brands         = []string{"Northway", "Calder", "Brightline", "Fernhill", "Moxie", "Atlas Supply", "Juniper"}
	departments    = []string{"Men", "Women"}
	adjectives     = []string{"Classic", "Slim", "Relaxed", "Heavyweight", "Lightweight", "Vintage", "Everyday"}
	firstNames     = []string{"Ana", "Ben", "Carla", "Diego", "Elena", "Felix", "Grace", "Hugo", "Iris", "Jonas", "Kim", "Luca", "Mara", "Noel", "Olga", "Pavel"}
	lastNames      = []string{"Adams", "Becker", "Castillo", "Dietrich", "Evans", "Fischer", "Gomez", "Huang", "Ibrahim", "Jensen", "Keller", "Lopez", "Meyer", "Novak", "Ortiz", "Peters"}
	trafficSources = []string{"Search", "Organic", "Email", "Display", "Facebook"}
	browsers       = []string{"Chrome", "Safari", "Firefox", "Edge", "Other"}
	orderStatuses  = []weighted{{"Complete", 55}, {"Shipped", 18}, {"Processing", 12}, {"Cancelled", 8}, {"Returned", 7}}
	eventTypes     = []weighted{{"home", 20}, {"department", 22}, {"product", 33}, {"cart", 13}, {"purchase", 8}, {"cancel", 4}}
)

type weighted struct {
	value  string
	weight int
}

type place struct {
	city, state, postal string
}

var places = []place{
	{"Memphis", "Tennessee", "38103"},
	{"Chicago", "Illinois", "60607"},
	{"Houston", "Texas", "77002"},
	{"Los Angeles", "California", "90013"},
	{"Portland", "Oregon", "97205"},
	{"Columbus", "Ohio", "43215"},
	{"Savannah", "Georgia", "31401"},
	{"Denver", "Colorado", "80202"},
}

func (g *Generator) Generate() *Dataset {
	d := &Dataset{DistributionCenters: distributionCenters()}
	g.generateProducts(d)
	g.generateUsers(d)
	g.generateOrders(d)
	g.generateStockOnHand(d)
	g.generateEvents(d)
	return d
}

func distributionCenters() []DistributionCenterRow {
	return []DistributionCenterRow{
		{ID: 1, Name: "Memphis TN", Latitude: 35.1174, Longitude: -89.9711},
		{ID: 2, Name: "Chicago IL", Latitude: 41.8369, Longitude: -87.6847},
		{ID: 3, Name: "Houston TX", Latitude: 29.7604, Longitude: -95.3698},
		{ID: 4, Name: "Los Angeles CA", Latitude: 34.0522, Longitude: -118.2437},
		{ID: 5, Name: "Port Everglades FL", Latitude: 26.0946, Longitude: -80.1230},
	}
}

func (g *Generator) generateProducts(d *Dataset) {
	for i := 0; i < g.cfg.Products; i++ {
		category := pickOne(g.rnd, categories)
		brand := pickOne(g.rnd, brands)
		retail := round2(15 + g.rnd.Float64()*185)
		d.Products = append(d.Products, ProductRow{
			ID:                   int64(i + 1),
			Cost:                 round2(retail * (0.35 + g.rnd.Float64()*0.3)),
			Category:             category,
			Name:                 fmt.Sprintf("%s %s %s", brand, pickOne(g.rnd, adjectives), category),
			Brand:                brand,
			RetailPrice:          retail,
			Department:           pickOne(g.rnd, departments),
			SKU:                  fmt.Sprintf("SW-%05d", i+1),
			DistributionCenterID: int64(g.rnd.Intn(5) + 1),
		})
	}
}

func (g *Generator) generateUsers(d *Dataset) {
	for i := 0; i < g.cfg.Users; i++ {
		first := pickOne(g.rnd, firstNames)
		last := pickOne(g.rnd, lastNames)
		home := pickOne(g.rnd, places)
		// Signups stretch from half a year before the window into the
		// window itself so signup-trend questions have data.
		offsetDays := g.rnd.Intn(g.cfg.Days+180) - 180
		gender := "F"
		if g.rnd.Intn(2) == 0 {
			gender = "M"
		}
		d.Users = append(d.Users, UserRow{
			ID:            int64(i + 1),
			FirstName:     first,
			LastName:      last,
			Email:         strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", first, last, i+1)),
			Age:           int64(18 + g.rnd.Intn(52)),
			Gender:        gender,
			State:         home.state,
			StreetAddress: fmt.Sprintf("%d %s Street", g.rnd.Intn(900)+100, pickOne(g.rnd, adjectives)),
			PostalCode:    home.postal,
			City:          home.city,
			Country:       "United States",
			Latitude:      round4(24 + g.rnd.Float64()*24),
			Longitude:     round4(-124 + g.rnd.Float64()*57),
			TrafficSource: pickOne(g.rnd, trafficSources),
			CreatedAt:     g.cfg.Start.Add(time.Duration(offsetDays)*24*time.Hour + g.timeOfDay()),
		})
	}
}

func (g *Generator) generateOrders(d *Dataset) {
	for i := 0; i < g.cfg.Orders; i++ {
		user := d.Users[g.rnd.Intn(len(d.Users))]
		status := pickWeighted(g.rnd, orderStatuses)
		// sqrt-biased day pick: order volume ramps up over the window so
		// trend questions have a visible shape.
		day := int(float64(g.cfg.Days) * math.Sqrt(g.rnd.Float64()))
		createdAt := g.cfg.Start.Add(time.Duration(day)*24*time.Hour + g.timeOfDay())

		var shippedAt, deliveredAt, returnedAt *time.Time
		switch status {
		case "Shipped":
			shippedAt = g.after(createdAt, 1, 3)
		case "Complete":
			shippedAt = g.after(createdAt, 1, 3)
			deliveredAt = g.after(*shippedAt, 1, 4)
		case "Returned":
			shippedAt = g.after(createdAt, 1, 3)
			deliveredAt = g.after(*shippedAt, 1, 4)
			returnedAt = g.after(*deliveredAt, 1, 14)
		}

		orderID := int64(i + 1)
		itemCount := g.rnd.Intn(4) + 1
		for j := 0; j < itemCount; j++ {
			product := d.Products[g.rnd.Intn(len(d.Products))]
			inventoryID := int64(len(d.InventoryItems) + 1)
			stockedAt := createdAt.Add(-time.Duration(g.rnd.Intn(30)+10) * 24 * time.Hour)
			soldAt := createdAt
			d.InventoryItems = append(d.InventoryItems, inventoryItemFor(product, inventoryID, stockedAt, &soldAt))
			d.OrderItems = append(d.OrderItems, OrderItemRow{
				ID:              int64(len(d.OrderItems) + 1),
				OrderID:         orderID,
				UserID:          user.ID,
				ProductID:       product.ID,
				InventoryItemID: inventoryID,
				Status:          status,
				CreatedAt:       createdAt,
				ShippedAt:       shippedAt,
				DeliveredAt:     deliveredAt,
				ReturnedAt:      returnedAt,
				SalePrice:       round2(product.RetailPrice * (0.7 + g.rnd.Float64()*0.4)),
			})
		}

		d.Orders = append(d.Orders, OrderRow{
			OrderID:     orderID,
			UserID:      user.ID,
			Status:      status,
			Gender:      user.Gender,
			CreatedAt:   createdAt,
			ReturnedAt:  returnedAt,
			ShippedAt:   shippedAt,
			DeliveredAt: deliveredAt,
			NumOfItem:   int64(itemCount),
		})
	}
}

// generateStockOnHand adds unsold inventory units so stock-level questions
// return more than zero.
func (g *Generator) generateStockOnHand(d *Dataset) {
	for _, product := range d.Products {
		count := g.rnd.Intn(3) + 1
		for j := 0; j < count; j++ {
			stockedAt := g.cfg.Start.Add(time.Duration(g.rnd.Intn(g.cfg.Days)) * 24 * time.Hour)
			d.InventoryItems = append(d.InventoryItems, inventoryItemFor(product, int64(len(d.InventoryItems)+1), stockedAt, nil))
		}
	}
}

func inventoryItemFor(product ProductRow, id int64, createdAt time.Time, soldAt *time.Time) InventoryItemRow {
	return InventoryItemRow{
		ID:                          id,
		ProductID:                   product.ID,
		CreatedAt:                   createdAt,
		SoldAt:                      soldAt,
		Cost:                        product.Cost,
		ProductCategory:             product.Category,
		ProductName:                 product.Name,
		ProductBrand:                product.Brand,
		ProductRetailPrice:          product.RetailPrice,
		ProductDepartment:           product.Department,
		ProductSKU:                  product.SKU,
		ProductDistributionCenterID: product.DistributionCenterID,
	}
}

func (g *Generator) generateEvents(d *Dataset) {
	eventID := int64(0)
	for eventID < int64(g.cfg.Events) {
		sessionID := fmt.Sprintf("sess-%08x", g.rnd.Uint32())
		sessionPlace := pickOne(g.rnd, places)
		browser := pickOne(g.rnd, browsers)
		source := pickOne(g.rnd, trafficSources)
		ip := fmt.Sprintf("%d.%d.%d.%d", g.rnd.Intn(200)+10, g.rnd.Intn(255), g.rnd.Intn(255), g.rnd.Intn(255))

		var userID *int64
		if g.rnd.Intn(100) < 85 {
			id := d.Users[g.rnd.Intn(len(d.Users))].ID
			userID = &id
		}

		day := g.rnd.Intn(g.cfg.Days)
		at := g.cfg.Start.Add(time.Duration(day)*24*time.Hour + g.timeOfDay())

		steps := g.rnd.Intn(5) + 1
		for s := 0; s < steps && eventID < int64(g.cfg.Events); s++ {
			eventID++
			eventType := pickWeighted(g.rnd, eventTypes)
			d.Events = append(d.Events, EventRow{
				ID:             eventID,
				UserID:         userID,
				SequenceNumber: int64(s + 1),
				SessionID:      sessionID,
				CreatedAt:      at.Add(time.Duration(s) * time.Minute),
				IPAddress:      ip,
				City:           sessionPlace.city,
				State:          sessionPlace.state,
				PostalCode:     sessionPlace.postal,
				Browser:        browser,
				TrafficSource:  source,
				URI:            g.uriFor(eventType),
				EventType:      eventType,
			})
		}
	}
}

func (g *Generator) uriFor(eventType string) string {
	switch eventType {
	case "department":
		return "/department/" + strings.ToLower(pickOne(g.rnd, categories))
	case "product":
		return fmt.Sprintf("/product/%d", g.rnd.Intn(g.cfg.Products)+1)
	case "cart":
		return "/cart"
	case "purchase":
		return "/purchase"
	case "cancel":
		return "/cancel"
	default:
		return "/"
	}
}

func (g *Generator) timeOfDay() time.Duration {
	return time.Duration(g.rnd.Intn(24*60*60)) * time.Second
}

func (g *Generator) after(base time.Time, minDays, maxDays int) *time.Time {
	at := base.Add(time.Duration(g.rnd.Intn(maxDays-minDays+1)+minDays) * 24 * time.Hour)
	return &at
}

func pickOne[T any](r *rand.Rand, values []T) T {
	return values[r.Intn(len(values))]
}

func pickWeighted(r *rand.Rand, values []weighted) string {
	total := 0
	for _, v := range values {
		total += v.weight
	}
	p := r.Intn(total)
	for _, v := range values {
		if p < v.weight {
			return v.value
		}
		p -= v.weight
	}
	return values[len(values)-1].value
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
