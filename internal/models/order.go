package models

// LineItem is one product line inside an order. Quantities for the same
// product name accumulate across orders when ranking products.
type LineItem struct {
	ProductName string `json:"nome_produto"`
	Quantity    int    `json:"quantidade" validate:"gt=0"`
}

// Customer carries only a display name. The order log has no stable customer
// id, so all orders sharing a name are rolled up as one customer.
type Customer struct {
	Name string `json:"nome" validate:"required"`
}

type Order struct {
	ID           string     `json:"id,omitempty"`
	Customer     Customer   `json:"cliente"`
	Total        float64    `json:"valor_total" validate:"gt=0"`
	OrderedAt    string     `json:"data_pedido"`
	WeekdayName  string     `json:"dia_semana,omitempty"`
	ReceivedAt   string     `json:"horario_recebimento,omitempty"`
	DispatchedAt string     `json:"horario_despacho,omitempty"`
	Items        []LineItem `json:"itens" validate:"dive"`
}

// OrderLog is the parsed order payload: the restaurant section plus the raw
// order records, exactly as persisted in pedidos.json.
type OrderLog struct {
	Restaurant RestaurantInfo `json:"restaurante"`
	Orders     []Order        `json:"pedidos"`
}

type RestaurantInfo struct {
	Name string `json:"nome"`
}
