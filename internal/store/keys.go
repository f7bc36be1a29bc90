package store

const (
	KeyAccount        = "account:%s"
	KeyPendingPayouts = "payouts:pending"
	KeyRateLimit      = "ratelimit:%s:%s"
)
