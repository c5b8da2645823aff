package admin

import (
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

func seedProducts() []domain.Product {
	p := func(id, name, category string, price int64, stock int, description string) domain.Product {
		return domain.Product{
			ID:          id,
			Name:        name,
			Category:    category,
			Price:       decimal.NewFromInt(price),
			Stock:       stock,
			Images:      []string{"https://picsum.photos/seed/prod" + id + "/200/200"},
			Description: description,
		}
	}
	return []domain.Product{
		p("1", "Nike Air Max", "Mens Wear", 120, 45, "Premium running shoes"),
		p("2", "Summer Dress", "Kids Wear", 35, 12, "Light summer dress for kids"),
		p("3", "Wireless Earbuds", "Electronics", 89, 0, "Bluetooth 5.0 earbuds"),
		p("4", "Leather Jacket", "Mens Wear", 199, 8, "Genuine leather jacket"),
		p("5", "Smart Watch", "Electronics", 249, 25, "Fitness tracker with GPS"),
	}
}

func seedOrders() []domain.Order {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	item := func(name string, qty int, price string) domain.OrderItem {
		return domain.OrderItem{Name: name, Quantity: qty, Price: domain.RequireAmount(price)}
	}
	return []domain.Order{
		{
			ID:            "#ORD001",
			ShippingInfo:  domain.ShippingInfo{FullName: "Dhruvil", Email: "dhruvil@example.com", PhoneNumber: "+1 234-567-8900", Address: "123 Main St, New York, NY 10001"},
			Items:         []domain.OrderItem{item("Nike Air Max Shoes", 1, "120"), item("Sports Socks", 2, "18.49")},
			PaymentMethod: domain.PaymentCredit,
			TotalPrice:    domain.RequireAmount("156.98"),
			Status:        domain.OrderStatusDelivered,
			CreatedAt:     day(2025, time.December, 28),
		},
		{
			ID:            "#ORD002",
			ShippingInfo:  domain.ShippingInfo{FullName: "Dhrumil Savaliya", Email: "dhrumil@example.com", PhoneNumber: "+1 234-567-8901", Address: "456 Park Ave, San Francisco, CA 94107"},
			Items:         []domain.OrderItem{item("Summer Dress", 1, "89")},
			PaymentMethod: domain.PaymentCash,
			TotalPrice:    domain.RequireAmount("89"),
			Status:        domain.OrderStatusProcessing,
			CreatedAt:     day(2025, time.December, 30),
		},
		{
			ID:            "#ORD003",
			ShippingInfo:  domain.ShippingInfo{FullName: "Meet", Email: "meet@example.com", PhoneNumber: "+1 234-567-8902", Address: "789 Broadway, Chicago, IL 60601"},
			Items:         []domain.OrderItem{item("Gaming Laptop", 1, "320.50")},
			PaymentMethod: domain.PaymentUPI,
			TotalPrice:    domain.RequireAmount("320.50"),
			Status:        domain.OrderStatusShipped,
			CreatedAt:     day(2026, time.January, 1),
		},
		{
			ID:           "#ORD004",
			ShippingInfo: domain.ShippingInfo{FullName: "Miraj Rajput", Email: "rajput@example.com", PhoneNumber: "+1 234-567-8903", Address: "321 Oak Street, Boston, MA 02101"},
			Items: []domain.OrderItem{
				item("Wireless Headphones", 1, "129.99"),
				item("Phone Case", 2, "24.99"),
				item("Screen Protector", 1, "9.99"),
				item("USB Cable", 3, "18.59"),
			},
			PaymentMethod: domain.PaymentCredit,
			TotalPrice:    domain.RequireAmount("245.75"),
			Status:        domain.OrderStatusProcessing,
			CreatedAt:     day(2026, time.January, 2),
		},
		{
			ID:            "#ORD005",
			ShippingInfo:  domain.ShippingInfo{FullName: "Neel patel", Email: "neel@example.com", PhoneNumber: "+1 234-567-8904", Address: "654 Pine Road, Miami, FL 33101"},
			Items:         []domain.OrderItem{item("T-Shirt", 2, "19.99"), item("Jeans", 1, "28.01")},
			PaymentMethod: domain.PaymentCredit,
			TotalPrice:    domain.RequireAmount("67.99"),
			Status:        domain.OrderStatusCancelled,
			CreatedAt:     day(2026, time.January, 3),
		},
	}
}

func seedUsers() []domain.User {
	return []domain.User{
		{ID: "1", Name: "John Doe", Email: "john@example.com", Phone: "+1 234-567-8900", Role: domain.RoleCustomer, Status: domain.UserActive, Joined: "Oct 2025", Orders: 12, TotalSpent: domain.RequireAmount("1245.50")},
		{ID: "2", Name: "Admin User", Email: "admin@shopify.com", Phone: "+1 234-567-8901", Role: domain.RoleAdmin, Status: domain.UserActive, Joined: "Jan 2025"},
		{ID: "3", Name: "Alice Smith", Email: "alice@gmail.com", Phone: "+1 234-567-8902", Role: domain.RoleCustomer, Status: domain.UserActive, Joined: "Dec 2025", Orders: 3, TotalSpent: domain.RequireAmount("289.99")},
		{ID: "4", Name: "Bob Johnson", Email: "bob@yahoo.com", Phone: "+1 234-567-8903", Role: domain.RoleCustomer, Status: domain.UserInactive, Joined: "Nov 2025", Orders: 8, TotalSpent: domain.RequireAmount("756.00")},
		{ID: "5", Name: "Emma Wilson", Email: "emma@hotmail.com", Phone: "+1 234-567-8904", Role: domain.RoleModerator, Status: domain.UserActive, Joined: "Sep 2025"},
	}
}

func seedSettings() domain.StoreSettings {
	return domain.StoreSettings{
		StoreName:    "Shopify Store",
		StoreEmail:   "support@shopify.com",
		StorePhone:   "+1 234-567-8900",
		StoreAddress: "123 Main St, San Francisco, CA",
		Currency:     "USD",
		Timezone:     "America/Los_Angeles",
		Notifications: domain.NotificationSettings{
			Email: true,
			Push:  true,
		},
		Security: domain.SecuritySettings{
			SessionTimeout: 30,
		},
	}
}
