package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/jobnado/internal/alerts"
	"github.com/spigell/jobnado/internal/logger"
	"github.com/spigell/jobnado/internal/server"
	"github.com/spigell/jobnado/internal/session"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the alert scheduler",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")
	serveCmd.Flags().Bool("sweep-on-start", false, "run an alert sweep right after startup")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, config := setup()

	a, err := newApplication(ctx, config, log, true)
	if err != nil {
		log.Fatal("building the application", zap.Error(err))
	}
	defer a.Close()

	sessions, closeSessions, err := newSessionStore(ctx, config.Session)
	if err != nil {
		log.Fatal("building the session store", zap.Error(err))
	}
	defer closeSessions()

	deps := server.Deps{
		Sessions:  session.NewManager(sessions, a.analyzer, a.searcher, log),
		Artifacts: a.artifacts,
	}

	if a.sweeper != nil {
		deps.Subscriptions = a.subscriptions
		deps.Sweeper = a.sweeper

		sweepOnStart, _ := cmd.Flags().GetBool("sweep-on-start")
		scheduler := alerts.NewScheduler(config.Alerts.Schedule, a.sweeper, logger.ForStage(log, "alerts"))
		if err := scheduler.Start(ctx, sweepOnStart); err != nil {
			log.Fatal("starting the alert scheduler", zap.Error(err))
		}
		defer scheduler.Stop()
	} else {
		log.Info("alerts are disabled")
	}

	opts := server.Options{}
	if config.Server != nil {
		opts.RateLimit = config.Server.RateLimit
		opts.Burst = config.Server.Burst
	}

	listen := ":8080"
	if config.Server != nil && config.Server.Listen != "" {
		listen = config.Server.Listen
	}

	if err := server.New(deps, opts, log).ListenAndServe(ctx, listen); err != nil {
		log.Error("server stopped", zap.Error(err))
		return
	}

	log.Info("exiting", zap.String("reason", "shutdown requested"))
}
