package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/mockapi"
	"github.com/theirongolddev/cbudget/internal/session"

	"github.com/spf13/cobra"
)

var (
	flagMockAddr      string
	flagMockSecret    string
	flagMockTTL       time.Duration
	flagMockLatency   time.Duration
	flagMockRate      int
	flagMockSaveToken bool
)

var serveMockCmd = &cobra.Command{
	Use:   "serve-mock",
	Short: "Run a local stand-in for the planner backend",
	Long: "Serve POST /api/budget/generate locally with deterministic allocations.\n" +
		"A development token is issued on start.",
	RunE: runServeMock,
}

func init() {
	def := mockapi.DefaultConfig()
	serveMockCmd.Flags().StringVar(&flagMockAddr, "addr", "127.0.0.1:5000", "Listen address")
	serveMockCmd.Flags().StringVar(&flagMockSecret, "secret", def.Secret, "HMAC secret for issued tokens")
	serveMockCmd.Flags().DurationVar(&flagMockTTL, "token-ttl", def.TokenTTL, "Lifetime of the issued token")
	serveMockCmd.Flags().DurationVar(&flagMockLatency, "latency", 0, "Artificial delay per request")
	serveMockCmd.Flags().IntVar(&flagMockRate, "rate", def.RateLimitPerMinute, "Requests per minute per client")
	serveMockCmd.Flags().BoolVar(&flagMockSaveToken, "save-token", false, "Store the issued token in the session file")
	rootCmd.AddCommand(serveMockCmd)
}

func runServeMock(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Log.Level == "warn" && flagLogLevel == "" {
		cfg.Log.Level = "info"
	}
	log := initLogger(cfg)

	srv := mockapi.New(mockapi.Config{
		Secret:             flagMockSecret,
		TokenTTL:           flagMockTTL,
		RateLimitPerMinute: flagMockRate,
		Latency:            flagMockLatency,
	}, log)

	token, exp, err := srv.Tokens.Issue("dev")
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}

	if flagMockSaveToken {
		files := session.NewFileStore(config.SessionPath(cfg))
		if err := files.Save(session.UserInfo{Token: token, Name: "dev"}); err != nil {
			return fmt.Errorf("saving token: %w", err)
		}
		fmt.Printf("  Token saved to %s\n", files.Path)

		if cfg.Session.RedisURL != "" {
			if err := saveRedisToken(cfg, session.UserInfo{Token: token, Name: "dev"}, flagMockTTL); err != nil {
				log.Warn().Err(err).Msg("token not stored in redis")
			} else {
				fmt.Printf("  Token saved to redis key %s\n", cfg.Session.Key)
			}
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return srv.Run(ctx, flagMockAddr, func(addr net.Addr) {
		fmt.Printf("  Mock backend listening on http://%s\n", addr)
		fmt.Printf("  Token (expires %s):\n\n    %s\n\n", exp.Local().Format("2006-01-02 15:04"), token)
		fmt.Printf("  Use it with: CBUDGET_TOKEN=<token> cbudget --api-url http://%s\n", addr)
	})
}

func saveRedisToken(cfg config.Config, info session.UserInfo, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := session.NewRedisClient(ctx, session.RedisConfig{URL: cfg.Session.RedisURL, DialTimeout: 3 * time.Second})
	if err != nil {
		return err
	}
	defer rdb.Close()
	return session.NewRedisStore(rdb, cfg.Session.Key).Save(ctx, info, ttl)
}
