package orders

const (
	TopicOrderCreated  = "storefront.order.created"
	TopicStatusChanged = "storefront.order.status"
)

// Partition key = order_id so all events of one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
