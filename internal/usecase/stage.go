package usecase

import (
	"strings"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
)

// Etapas do pipeline Cacife alimentadas pelo sync de pedidos.
const (
	StageNewOrder  = "Novo Pedido"
	StageToShip    = "A Enviar"
	StageShipped   = "Enviados"
	StageDelivered = "Entregues"
	StageCancelled = "Cancelados"
	StageRefunded  = "Trocas e Devoluções"
)

// MapOrderToStage classifica um pedido na etapa do board.
// Sempre retorna uma etapa (default "Novo Pedido"), ignorando
// caixa e espaços nos campos de status.
//
// A ordem importa: shipping_status é sinal mais forte da situação
// real do pedido do que payment_status, então é avaliado primeiro.
func MapOrderToStage(order entity.Order) string {
	shipStatus := strings.ToLower(strings.TrimSpace(order.ShippingStatus))
	status := strings.ToLower(strings.TrimSpace(order.Status))

	// 1. Regras explícitas de shipping_status (prioridade alta)
	if shipStatus == "entregue" || shipStatus == "delivered" {
		return StageDelivered
	}
	if shipStatus == "enviado" || shipStatus == "shipped" {
		return StageShipped
	}
	if isNotPacked(shipStatus) {
		return StageToShip
	}

	// Alguns sistemas marcam cancelado no shipping, outros no status geral
	if shipStatus == "cancelado" || shipStatus == "cancelled" ||
		status == "cancelled" || status == "cancelado" {
		return StageCancelled
	}

	// 2. Status geral do pedido
	if status == "refunded" || status == "reembolsado" {
		return StageRefunded
	}

	// 3. Pagamento confirmado vira pedido novo no board
	payStatus := strings.ToLower(strings.TrimSpace(order.PaymentStatus))
	if payStatus == "paid" || payStatus == "approved" || payStatus == "pago" {
		return StageNewOrder
	}

	return StageNewOrder
}

// isNotPacked cobre as variações (com e sem acento) de "não está embalado"
// que o e-commerce já mandou em produção.
func isNotPacked(shipStatus string) bool {
	switch shipStatus {
	case "não está embalado", "nao esta embalado":
		return true
	}
	return strings.Contains(shipStatus, "não esta embalado") ||
		strings.Contains(shipStatus, "nao está embalado")
}
