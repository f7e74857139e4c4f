package config

import (
	"github.com/spf13/viper"
)

const (
	DBURL         = "database.mysql"
	StoreDriver   = "store.driver"
	StoreSeedFile = "store.seed_file"

	Port      = "server.port"
	Secret    = "server.secret"
	LogLevel  = "server.log_level"
	GateToken = "server.gate_token_ttl"

	RedisAddress  = "redis.address"
	RedisPassword = "redis.password"
	RedisDB       = "redis.db"
	ScanCacheTTL  = "scan_cache.ttl"

	VaultAddress    = "vault.address"
	VaultToken      = "vault.token"
	VaultSecretPath = "vault.secret_path"
	QRSecretKey     = "vault.qr_secret_key"

	QRSecret = "qr.secret"

	BrandPrefix       = "ticket.brand_prefix"
	CommissionRateBPS = "commission.rate_bps"
	MaxQuantity       = "purchase.max_quantity"

	PaymentBaseURL   = "payment.base_url"
	PaymentAPIKey    = "payment.api_key"
	PaymentAPISecret = "payment.api_secret"
	PaymentTimeout   = "payment.timeout"

	TwilioAccountSID = "twilio.account_sid"
	TwilioAuthToken  = "twilio.auth_token"
	TwilioURL        = "twilio.url"
	TwilioFrom       = "twilio.from"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

func init() {
	viper.AutomaticEnv()
	viper.SetDefault(Port, ":9000")
	viper.SetDefault(LogLevel, "info")
	viper.SetDefault(GateToken, "12h")
	viper.SetDefault(StoreDriver, DriverMySQL)
	viper.SetDefault(ScanCacheTTL, "72h")
	viper.SetDefault(VaultSecretPath, "secret/ticketing")
	viper.SetDefault(QRSecretKey, "qr_secret")
	viper.SetDefault(BrandPrefix, "EVT")
	viper.SetDefault(CommissionRateBPS, 500)
	viper.SetDefault(MaxQuantity, 10)
	viper.SetDefault(PaymentTimeout, "30s")
}
