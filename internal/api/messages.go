package api

import "time"

type Empty struct{}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	UserID string `json:"user_id"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
}

type WhoAmIResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Item is the wire form of an inventory item.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Quantity    int64     `json:"quantity"`
	Category    string    `json:"category"`
	ImageURL    *string   `json:"image_url,omitempty"`
	StoragePath *string   `json:"storage_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateItemRequest struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Category string `json:"category"`
}

type CreateItemResponse struct {
	ID string `json:"id"`
}

// UpdateItemRequest carries a merge patch; absent fields stay untouched.
type UpdateItemRequest struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	Quantity *int64  `json:"quantity,omitempty"`
	Category *string `json:"category,omitempty"`
}

type ItemRef struct {
	ID string `json:"id"`
}

type ItemList struct {
	Items []Item `json:"items"`
}

type AdjustQuantityRequest struct {
	ID    string `json:"id"`
	Delta int64  `json:"delta"`
}

type AdjustQuantityResponse struct {
	Quantity int64 `json:"quantity"`
}

type AttachImageRequest struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

type AttachImageResponse struct {
	ImageURL string `json:"image_url"`
}

type Settings struct {
	DarkMode  bool      `json:"dark_mode"`
	LowStock  int64     `json:"low_stock"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpdateSettingsRequest struct {
	DarkMode *bool  `json:"dark_mode,omitempty"`
	LowStock *int64 `json:"low_stock,omitempty"`
}

type StepLowStockRequest struct {
	Delta int64 `json:"delta"`
}
