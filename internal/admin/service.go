package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/shopspring/decimal"
)

// All matches every category, status or role in a listing filter.
const All = "all"

const lowStockLimit = 20

type StockStatus string

const (
	StockIn  StockStatus = "In Stock"
	StockLow StockStatus = "Low Stock"
	StockOut StockStatus = "Out of Stock"
)

func StockStatusOf(stock int) StockStatus {
	switch {
	case stock > lowStockLimit:
		return StockIn
	case stock > 0:
		return StockLow
	default:
		return StockOut
	}
}

type ProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

func (in ProductInput) product() domain.Product {
	p := domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Category:    in.Category,
		Price:       decimal.NewFromFloat(in.Price),
		Stock:       in.Stock,
		Description: strings.TrimSpace(in.Description),
	}
	if img := strings.TrimSpace(in.Image); img != "" {
		p.Images = []string{img}
	}
	return p
}

type UserInput struct {
	Name   string            `json:"name" validate:"required"`
	Email  string            `json:"email" validate:"required,email"`
	Phone  string            `json:"phone"`
	Role   domain.Role       `json:"role" validate:"required,oneof=customer admin moderator"`
	Status domain.UserStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (in UserInput) user() domain.User {
	return domain.User{
		Name:   strings.TrimSpace(in.Name),
		Email:  strings.TrimSpace(in.Email),
		Phone:  strings.TrimSpace(in.Phone),
		Role:   in.Role,
		Status: in.Status,
	}
}

type ProductStats struct {
	Total      int `json:"total"`
	InStock    int `json:"inStock"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

type OrderStats struct {
	Total      int             `json:"total"`
	Revenue    decimal.Decimal `json:"revenue"`
	Delivered  int             `json:"delivered"`
	Processing int             `json:"processing"`
}

type UserStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Admins    int `json:"admins"`
	Customers int `json:"customers"`
}

type Dashboard struct {
	Products     ProductStats   `json:"products"`
	Orders       OrderStats     `json:"orders"`
	Users        UserStats      `json:"users"`
	RecentOrders []domain.Order `json:"recentOrders"`
}

const recentOrders = 5

type Service struct {
	products Products
	orders   Orders
	users    Users
	settings Settings
	validate *validation.Validator
	log      *slog.Logger
}

func NewService(products Products, orders Orders, users Users, settings Settings, log *slog.Logger) *Service {
	return &Service{
		products: products,
		orders:   orders,
		users:    users,
		settings: settings,
		validate: validation.New(),
		log:      log,
	}
}

// Products lists products whose name or description contains text and
// whose category matches. An empty or All category matches everything.
func (s *Service) Products(ctx context.Context, text, category string) ([]domain.Product, error) {
	all, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	text = strings.ToLower(strings.TrimSpace(text))
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if !anyMatch(text, p.Name, p.Description) || !matchesOption(category, p.Category) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	if err := s.validate.Check(in); err != nil {
		return domain.Product{}, err
	}
	p, err := s.products.CreateProduct(ctx, in.product())
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	s.log.InfoContext(ctx, "product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	if err := s.validate.Check(in); err != nil {
		return domain.Product{}, err
	}
	p, err := s.products.UpdateProduct(ctx, id, in.product())
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	s.log.InfoContext(ctx, "product updated", "product_id", id)
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	s.log.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

// Orders lists orders whose id, customer name or email contains text and
// whose status matches.
func (s *Service) Orders(ctx context.Context, text, status string) ([]domain.Order, error) {
	all, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	text = strings.ToLower(strings.TrimSpace(text))
	out := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if !anyMatch(text, o.ID, o.ShippingInfo.FullName, o.ShippingInfo.Email) || !matchesOption(status, string(o.Status)) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	o, err := s.orders.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to update order %s: %w", id, err)
	}
	s.log.InfoContext(ctx, "order status updated", "order_id", id, "status", status)
	return o, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if err := s.orders.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	s.log.InfoContext(ctx, "order deleted", "order_id", id)
	return nil
}

// Users lists users whose name, email or phone contains text and whose
// role matches.
func (s *Service) Users(ctx context.Context, text, role string) ([]domain.User, error) {
	all, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	text = strings.ToLower(strings.TrimSpace(text))
	out := make([]domain.User, 0, len(all))
	for _, u := range all {
		if !anyMatch(text, u.Name, u.Email, u.Phone) || !matchesOption(role, string(u.Role)) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Service) CreateUser(ctx context.Context, in UserInput) (domain.User, error) {
	if err := s.validate.Check(in); err != nil {
		return domain.User{}, err
	}
	u, err := s.users.CreateUser(ctx, in.user())
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, in UserInput) (domain.User, error) {
	if err := s.validate.Check(in); err != nil {
		return domain.User{}, err
	}
	u, err := s.users.UpdateUser(ctx, id, in.user())
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	s.log.InfoContext(ctx, "user updated", "user_id", id)
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	s.log.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *Service) Settings(ctx context.Context) (domain.StoreSettings, error) {
	return s.settings.GetSettings(ctx)
}

func (s *Service) SaveSettings(ctx context.Context, in domain.StoreSettings) (domain.StoreSettings, error) {
	if err := s.validate.Check(in); err != nil {
		return domain.StoreSettings{}, err
	}
	out, err := s.settings.SaveSettings(ctx, in)
	if err != nil {
		return domain.StoreSettings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	s.log.InfoContext(ctx, "settings saved", "store_name", out.StoreName)
	return out, nil
}

// Dashboard aggregates every record set. A failing source fails the whole
// dashboard.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to list products: %w", err)
	}
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to list orders: %w", err)
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to list users: %w", err)
	}

	return Dashboard{
		Products:     productStats(products),
		Orders:       orderStats(orders),
		Users:        userStats(users),
		RecentOrders: orders[max(0, len(orders)-recentOrders):],
	}, nil
}

func productStats(products []domain.Product) ProductStats {
	st := ProductStats{Total: len(products)}
	for _, p := range products {
		switch StockStatusOf(p.Stock) {
		case StockLow:
			st.LowStock++
			st.InStock++
		case StockIn:
			st.InStock++
		case StockOut:
			st.OutOfStock++
		}
	}
	return st
}

// orderStats counts revenue over every order that was not cancelled.
func orderStats(orders []domain.Order) OrderStats {
	st := OrderStats{Total: len(orders), Revenue: decimal.Zero}
	for _, o := range orders {
		switch o.Status {
		case domain.OrderStatusDelivered:
			st.Delivered++
		case domain.OrderStatusProcessing:
			st.Processing++
		}
		if o.Status != domain.OrderStatusCancelled {
			st.Revenue = st.Revenue.Add(o.TotalPrice.Decimal)
		}
	}
	return st
}

func userStats(users []domain.User) UserStats {
	st := UserStats{Total: len(users)}
	for _, u := range users {
		if u.Status == domain.UserActive {
			st.Active++
		}
		switch u.Role {
		case domain.RoleAdmin:
			st.Admins++
		case domain.RoleCustomer:
			st.Customers++
		}
	}
	return st
}

// anyMatch reports whether any field contains the lowercased needle.
func anyMatch(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func matchesOption(want, got string) bool {
	return want == "" || strings.EqualFold(want, All) || want == got
}

