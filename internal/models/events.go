package models

import "time"

// Event names pushed to every connected terminal. They correspond 1:1 to
// the mutations the HTTP surface can perform.
const (
	EventTableCreated     = "tableCreated"
	EventTableUpdated     = "tableUpdated"
	EventTableDeleted     = "tableDeleted"
	EventCategoryCreated  = "categoryCreated"
	EventCategoryUpdated  = "categoryUpdated"
	EventCategoryDeleted  = "categoryDeleted"
	EventCategoriesSorted = "categoriesSorted"
	EventProductCreated   = "productCreated"
	EventProductUpdated   = "productUpdated"
	EventProductDeleted   = "productDeleted"
	EventProductsSorted   = "productsSorted"
	EventOrderCreated     = "orderCreated"
	EventOrderUpdated     = "orderUpdated"
	EventOrderDeleted     = "orderDeleted"
	EventOrdersTransfer   = "ordersTransferred"
	EventPaymentCompleted = "paymentCompleted"
	EventPaymentRequested = "paymentRequested"
	EventSettingUpdated   = "settingUpdated"
)

// Event is one broadcast frame. Data carries enough for a subscriber to
// patch its local view or know to re-fetch.
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"ts"`
}
