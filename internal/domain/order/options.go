package order

// ListOptions provides filtering options for listing scheduled orders.
type ListOptions struct {
	LineID   string
	Statuses []Status
	Limit    int
	Offset   int
}
