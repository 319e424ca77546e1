package constants

const (
	ExchangeName = "sync_exchange"

	QueueMediaBackup      = "media_backup"
	RoutingKeyMediaBackup = "media.backup"

	// Shared final dead-letter infrastructure for all consumers of this
	// service. Messages land here after exhausting their retries.
	FinalDLXExchange   = "final_dlx_exchange"
	FinalDLQ           = "final_dlq"
	FinalDLQRoutingKey = "final"
)
