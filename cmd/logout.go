package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/session"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session token",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := initLogger(cfg)

	if err := session.NewFileStore(config.SessionPath(cfg)).Clear(); err != nil {
		return err
	}
	fmt.Printf("  Removed %s\n", config.SessionPath(cfg))

	if cfg.Session.RedisURL == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := session.NewRedisClient(ctx, session.RedisConfig{URL: cfg.Session.RedisURL, DialTimeout: 3 * time.Second})
	if err != nil {
		log.Warn().Err(err).Msg("redis session store unavailable")
		return nil
	}
	defer rdb.Close()
	if err := session.NewRedisStore(rdb, cfg.Session.Key).Clear(ctx); err != nil {
		return fmt.Errorf("clearing redis session: %w", err)
	}
	fmt.Printf("  Cleared redis key %s\n", cfg.Session.Key)
	return nil
}
