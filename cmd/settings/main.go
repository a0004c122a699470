package main

import (
	"context"
	"database/sql"
	"filedrop/internal/adapters/eventbroker/nats"
	"filedrop/internal/adapters/repository/postgres"
	"filedrop/internal/config"
	"filedrop/internal/core/domain"
	"flag"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// settings lists or updates app_settings rows and tells running servers to reload them.
//
//	settings -list
//	settings -set upload_file_max_size=10737418240 -set blacklisted_extensions=exe,bat
func main() {
	var (
		list bool
		sets multiFlag
	)
	flag.BoolVar(&list, "list", false, "Print every stored setting")
	flag.Var(&sets, "set", "key=value to store, repeatable")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if !list && len(sets) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadAdmin()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := postgres.NewSqlSettingsRepository(db)

	if len(sets) > 0 {
		keys := make([]string, 0, len(sets))
		for _, kv := range sets {
			key, value, _ := strings.Cut(kv, "=")
			if err := repo.Set(ctx, key, value); err != nil {
				logger.Error("failed to store setting", "key", key, "error", err)
				os.Exit(1)
			}
			keys = append(keys, key)
		}
		logger.Info("settings stored", "keys", keys)
		notify(ctx, cfg.NATS, keys, logger)
	}

	if list {
		values, err := repo.GetAll(ctx)
		if err != nil {
			logger.Error("failed to read settings", "error", err)
			os.Exit(1)
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			os.Stdout.WriteString(k + "=" + values[k] + "\n")
		}
	}
}

// notify is best effort, servers also refresh when their cache ttl expires
func notify(ctx context.Context, cfg config.NATSConfig, keys []string, logger *slog.Logger) {
	if cfg.URL == "" {
		return
	}
	publisher, err := nats.NewNATSPublisher(ctx, cfg, logger)
	if err != nil {
		logger.Warn("could not reach nats, servers will reload on cache expiry", "error", err)
		return
	}
	defer publisher.Close()

	if err := publisher.PublishSettingsChanged(ctx, domain.SettingsChangedEvent{Keys: keys}); err != nil {
		logger.Warn("failed to publish settings change", "error", err)
	}
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	if !strings.Contains(v, "=") {
		return flag.ErrHelp
	}
	*m = append(*m, v)
	return nil
}
