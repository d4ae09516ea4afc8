package partner

// Notifier delivers messages to users over the messaging transport.
// Delivery is best-effort: the engine logs failures and never lets them
// affect financial state.
type Notifier interface {
	SendMessage(telegramID int64, text string) error
}
