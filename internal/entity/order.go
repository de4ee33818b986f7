package entity

import (
	"context"
	"time"
)

// Entidade: Order (tabela cacife_orders, somente leitura)
// Vem do e-commerce integrado; o sync nunca escreve nela.
type Order struct {
	CustomerEmail  string    `json:"customer_email"`
	CustomerName   string    `json:"customer_name"`
	CustomerPhone  string    `json:"customer_phone"`
	ProductName    string    `json:"product_name"`
	Total          float64   `json:"total"`
	Status         string    `json:"status"`
	ShippingStatus string    `json:"shipping_status"`
	PaymentStatus  string    `json:"payment_status"`
	CreatedAt      time.Time `json:"created_at"`
}

type OrderRepositoryInterface interface {
	FetchSince(ctx context.Context, since time.Time) ([]Order, error)
}

// LeadPost: linha de leads_capturados_posts (somente leitura),
// análise de IA de posts capturados por username.
type LeadPost struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Analysis  string    `json:"analysis"`
	CreatedAt time.Time `json:"created_at"`
}

type LeadPostRepositoryInterface interface {
	FindByUsername(ctx context.Context, username string) (*LeadPost, error)
}
