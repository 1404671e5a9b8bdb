package notifysink

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/familylog/internal/domain/reminder"
	"github.com/yanqian/familylog/internal/infra/config"
)

// Open returns the Valkey sink when enabled and reachable, otherwise the memory sink.
func Open(cfg config.ValkeyConfig, ttl time.Duration, logger *slog.Logger) (reminder.Sink, func()) {
	if !cfg.Enabled {
		return NewMemorySink(ttl), func() {}
	}
	opt, err := buildValkeyOptions(cfg.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory sink", "error", err)
		return NewMemorySink(ttl), func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory sink", "error", err)
		return NewMemorySink(ttl), func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory sink", "error", err)
		client.Close()
		return NewMemorySink(ttl), func() {}
	}
	logger.Info("valkey notification sink enabled", "addr", cfg.Addr)
	return NewValkeySink(client, cfg.KeyPrefix, cfg.DeliveryKey, ttl, logger), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
