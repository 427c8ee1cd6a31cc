package models

// DocStatus mirrors the document lifecycle of the upstream ERP:
// 0 = draft (mutable), 1 = submitted (immutable), 2 = cancelled.
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

type StockStatus string

const (
	StockStatusInStock    StockStatus = "In Stock"
	StockStatusOutOfStock StockStatus = "Out of Stock"
	StockStatusInProcess  StockStatus = "In Process"
)

type OrderSource string

const (
	OrderSourceWeb OrderSource = "web"
)

type WorkOrderStatus string

const (
	WorkOrderStatusDraft      WorkOrderStatus = "Draft"
	WorkOrderStatusSubmitted  WorkOrderStatus = "Submitted"
	WorkOrderStatusNotStarted WorkOrderStatus = "Not Started"
	WorkOrderStatusInProcess  WorkOrderStatus = "In Process"
	WorkOrderStatusCompleted  WorkOrderStatus = "Completed"
	WorkOrderStatusStopped    WorkOrderStatus = "Stopped"
	WorkOrderStatusCancelled  WorkOrderStatus = "Cancelled"
)
