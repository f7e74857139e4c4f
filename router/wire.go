package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"eventers-ticketing/auth"
	"eventers-ticketing/clock"
	"eventers-ticketing/codec"
	"eventers-ticketing/commission"
	"eventers-ticketing/config"
	"eventers-ticketing/factory"
	"eventers-ticketing/handler"
	"eventers-ticketing/logger"
	"eventers-ticketing/model"
	"eventers-ticketing/notify"
	"eventers-ticketing/payment"
	"eventers-ticketing/purchase"
	"eventers-ticketing/scancache"
	"eventers-ticketing/store"
	"eventers-ticketing/ticketid"
	"eventers-ticketing/twilio"
	"eventers-ticketing/validation"
	"eventers-ticketing/vault"

	"github.com/spf13/viper"
)

// Build assembles Services from configuration. Misconfiguration is fatal.
func Build(ctx context.Context, f factory.Factory) Services {
	s, health := buildStore(ctx, f)

	secret, err := qrSecret()
	if err != nil {
		logger.Fatalf(ctx, "router: %+v", err)
	}
	qr, err := codec.New([]byte(secret))
	if err != nil {
		logger.Fatalf(ctx, "router: error creating qr codec: %+v", err)
	}

	calc, err := commission.New(viper.GetInt64(config.CommissionRateBPS))
	if err != nil {
		logger.Fatalf(ctx, "router: %+v", err)
	}

	gate, err := auth.NewGate([]byte(viper.GetString(config.Secret)), viper.GetDuration(config.GateToken), clock.NewSystem())
	if err != nil {
		logger.Fatalf(ctx, "router: error creating gate authenticator: %+v", err)
	}

	gateway := payment.NewHTTPGateway(
		viper.GetString(config.PaymentBaseURL),
		viper.GetString(config.PaymentAPIKey),
		viper.GetString(config.PaymentAPISecret),
		viper.GetDuration(config.PaymentTimeout),
	)

	notifier := notify.Nop()
	if sid := viper.GetString(config.TwilioAccountSID); sid != "" {
		notifier = notify.NewSMS(twilio.NewSender(
			sid,
			viper.GetString(config.TwilioAuthToken),
			viper.GetString(config.TwilioURL),
			viper.GetString(config.TwilioFrom),
		))
	}

	cache := scancache.Nop()
	if client := f.Redis(ctx); client != nil {
		cache = scancache.NewRedis(client, viper.GetDuration(config.ScanCacheTTL))
		health["redis"] = func(ctx context.Context) error {
			return client.WithContext(ctx).Ping().Err()
		}
	}

	orchestrator := purchase.New(s, gateway, ticketid.New(viper.GetString(config.BrandPrefix)), qr, calc,
		purchase.WithNotifier(notifier),
		purchase.WithMaxQuantity(viper.GetInt(config.MaxQuantity)),
	)
	engine := validation.New(qr, s,
		validation.WithScanCache(cache),
		validation.WithNotifier(notifier),
	)

	return Services{
		Purchases: orchestrator,
		Scans:     engine,
		Tickets:   s,
		Payments:  gateway,
		Gate:      gate,
		Health:    health,
	}
}

func buildStore(ctx context.Context, f factory.Factory) (store.Store, map[string]handler.Check) {
	health := map[string]handler.Check{}

	switch driver := viper.GetString(config.StoreDriver); driver {
	case config.DriverMySQL:
		db := f.DB(ctx)
		if err := store.Migrate(ctx, db); err != nil {
			logger.Fatalf(ctx, "router: %+v", err)
		}
		health["mysql"] = db.PingContext
		return store.NewMySQL(db), health
	case config.DriverMemory:
		events, err := seedEvents(viper.GetString(config.StoreSeedFile))
		if err != nil {
			logger.Fatalf(ctx, "router: %+v", err)
		}
		logger.Warnf(ctx, "router: using in-memory store with %d events, data is lost on restart", len(events))
		return store.NewMemory(events...), health
	default:
		logger.Fatalf(ctx, "router: unknown store driver %q", driver)
		return nil, nil
	}
}

func seedEvents(path string) ([]model.Event, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seedEvents: unable to read %s: %w", path, err)
	}
	var events []model.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("seedEvents: unable to parse %s: %w", path, err)
	}
	return events, nil
}

// qrSecret prefers vault and falls back to the configured secret.
func qrSecret() (string, error) {
	if addr := viper.GetString(config.VaultAddress); addr != "" {
		v, err := vault.New(viper.GetString(config.VaultToken), addr, viper.GetString(config.VaultSecretPath))
		if err != nil {
			return "", fmt.Errorf("qrSecret: error creating vault client: %w", err)
		}
		return v.Secret(viper.GetString(config.QRSecretKey))
	}

	secret := viper.GetString(config.QRSecret)
	if secret == "" {
		return "", fmt.Errorf("qrSecret: neither %s nor %s is configured", config.VaultAddress, config.QRSecret)
	}
	return secret, nil
}
