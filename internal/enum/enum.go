package enum

// ── Roles ──

const (
	RoleAdmin = "ADMIN"
)

// ── Payment (stored in shirts.payment_method, no DB constraint) ──

const (
	PaymentMethodPix   = "pix"
	PaymentMethodOther = "outro"
)

// ── Order events (websocket + message bus) ──

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderPaid    = "order.paid"
	EventOrderDeleted = "order.deleted"
)

// ── Report export formats ──

const (
	ReportFormatJSON = "json"
	ReportFormatPDF  = "pdf"
	ReportFormatCSV  = "csv"
	ReportFormatText = "txt"
)
