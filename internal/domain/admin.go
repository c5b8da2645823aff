package domain

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User is an account record shown in the admin console.
type User struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Role       Role       `json:"role"`
	Status     UserStatus `json:"status"`
	Joined     string     `json:"joined,omitempty"`
	Orders     int        `json:"orders"`
	TotalSpent Amount     `json:"totalSpent"`
}

type NotificationSettings struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

type SecuritySettings struct {
	TwoFactorAuth  bool   `json:"twoFactorAuth"`
	SessionTimeout int    `json:"sessionTimeout" validate:"gte=1"`
	IPWhitelist    string `json:"ipWhitelist"`
}

type StoreSettings struct {
	StoreName       string               `json:"storeName" validate:"required"`
	StoreEmail      string               `json:"storeEmail" validate:"required,email"`
	StorePhone      string               `json:"storePhone"`
	StoreAddress    string               `json:"storeAddress"`
	Currency        string               `json:"currency" validate:"required,len=3"`
	Timezone        string               `json:"timezone" validate:"required"`
	MaintenanceMode bool                 `json:"maintenanceMode"`
	Notifications   NotificationSettings `json:"notifications"`
	Security        SecuritySettings     `json:"security"`
}
