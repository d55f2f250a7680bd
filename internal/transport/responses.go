package transport

import (
	"net/http"
	"time"

	"ecofinds/internal/domain"
	"ecofinds/internal/middleware"

	"github.com/google/uuid"
)

// UserProfile represents public account data. The password hash never
// crosses this boundary.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SellerProfileResponse is the seller projection attached to listings
type SellerProfileResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// ProductResponse represents a listing
type ProductResponse struct {
	ID               string                 `json:"id"`
	SellerID         string                 `json:"seller_id"`
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	Category         string                 `json:"category"`
	Price            float64                `json:"price"`
	Quantity         int                    `json:"quantity"`
	Condition        string                 `json:"condition"`
	WorkingCondition string                 `json:"working_condition,omitempty"`
	Images           []string               `json:"images"`
	Tags             []string               `json:"tags"`
	Details          domain.ProductDetails  `json:"details"`
	Seller           *SellerProfileResponse `json:"seller,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// CartItemResponse represents one cart line with its product joined
type CartItemResponse struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	AddedAt   time.Time        `json:"added_at"`
	Product   *ProductResponse `json:"product,omitempty"`
}

// CartResponse wraps the cart lines
type CartResponse struct {
	Items []CartItemResponse `json:"items"`
}

// OrderItemResponse is a frozen order line. Product is the listing as it
// exists now and may be absent if the seller deleted it; the price and
// quantity are the snapshot taken at checkout.
type OrderItemResponse struct {
	ProductID       *string          `json:"product_id"`
	Quantity        int              `json:"quantity"`
	PriceAtPurchase float64          `json:"price_at_purchase"`
	Product         *ProductResponse `json:"product,omitempty"`
}

// OrderResponse represents a completed checkout
type OrderResponse struct {
	ID            string              `json:"id"`
	Total         float64             `json:"total"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	PaymentStatus string              `json:"payment_status"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
}

func toUserProfile(u *domain.User) UserProfile {
	return UserProfile{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toProductResponse(p *domain.Product) *ProductResponse {
	if p == nil {
		return nil
	}

	resp := &ProductResponse{
		ID:               p.ID.String(),
		SellerID:         p.SellerID.String(),
		Title:            p.Title,
		Description:      p.Description,
		Category:         p.Category,
		Price:            p.Price,
		Quantity:         p.Quantity,
		Condition:        string(p.Condition),
		WorkingCondition: p.WorkingCondition,
		Images:           p.Images,
		Tags:             p.Tags,
		Details:          p.Details,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if p.Seller != nil {
		resp.Seller = &SellerProfileResponse{
			ID:     p.Seller.ID.String(),
			Name:   p.Seller.Name,
			Avatar: p.Seller.Avatar,
		}
	}
	return resp
}

func toProductList(products []*domain.Product) []*ProductResponse {
	out := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toCartResponse(items []*domain.CartItem) CartResponse {
	resp := CartResponse{Items: make([]CartItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, CartItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
			Product:   toProductResponse(item.Product),
		})
	}
	return resp
}

func toOrderResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID.String(),
		Total:         o.Total,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Items:         make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt,
	}
	for _, item := range o.Items {
		line := OrderItemResponse{
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			Product:         toProductResponse(item.Product),
		}
		if item.ProductID != nil {
			id := item.ProductID.String()
			line.ProductID = &id
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

func toOrderList(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

// actingUserID extracts and parses the authenticated user's ID from the
// request context. A failure here means the auth middleware did not run.
func actingUserID(r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
