// internal/pkg/email/types.go
package email

// Message is a rendered email ready to send
type Message struct {
	To      string
	Subject string
	HTML    string
}

// OrderLine is one row of the order confirmation table
type OrderLine struct {
	Name     string
	Variant  string
	Quantity int
	Subtotal int64 // Paise
}

// OrderConfirmationData feeds the order confirmation template
type OrderConfirmationData struct {
	CustomerName  string
	CustomerEmail string
	OrderNumber   string
	Items         []OrderLine
	Subtotal      int64
	Discount      int64
	Shipping      int64
	Total         int64
	PaymentMethod string
}

// ReturnStatusData feeds the return status update template
type ReturnStatusData struct {
	CustomerName  string
	CustomerEmail string
	ReturnNumber  string
	OrderNumber   string
	Status        string
	RefundAmount  int64
}
