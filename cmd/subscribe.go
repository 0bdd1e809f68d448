package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spigell/jobnado/internal/geo"
	"go.uber.org/zap"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Create a job alert and send the confirmation email",
	Run: func(cmd *cobra.Command, _ []string) {
		subscribe(cmd)
	},
}

var unsubscribeCmd = &cobra.Command{
	Use:   "unsubscribe ALERT_ID",
	Short: "Deactivate a job alert",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		unsubscribe(args[0])
	},
}

func init() {
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(unsubscribeCmd)

	subscribeCmd.Flags().String("email", "", "address the alerts are sent to")
	subscribeCmd.Flags().String("role", "", "role to watch")
	subscribeCmd.Flags().String("country", "", "country to search in")
	subscribeCmd.Flags().String("frequency", "daily", "daily or weekly")
	subscribeCmd.Flags().Bool("detect-country", false, "detect the country from the public IP when --country is empty")

	subscribeCmd.MarkFlagRequired("email")
	subscribeCmd.MarkFlagRequired("role")
}

func subscribe(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := setup()

	email, _ := cmd.Flags().GetString("email")
	role, _ := cmd.Flags().GetString("role")
	country, _ := cmd.Flags().GetString("country")
	frequency, _ := cmd.Flags().GetString("frequency")
	detect, _ := cmd.Flags().GetBool("detect-country")

	if country == "" && detect {
		detected, err := geo.NewLocator(nil, log.Named("geo")).Country(ctx)
		if err != nil {
			log.Warn("country detection failed", zap.Error(err))
		}
		country = detected
	}

	if country == "" {
		log.Fatal("country is required", zap.String("hint", "pass --country or --detect-country"))
	}

	a, err := newApplication(ctx, config, log, true)
	if err != nil {
		log.Fatal("building the application", zap.Error(err))
	}
	defer a.Close()

	if a.subscriptions == nil {
		log.Fatal("alerts are disabled", zap.String("hint", "set alerts.enabled to true"))
	}

	warnEphemeral(config, log)

	sub, err := a.subscriptions.Subscribe(ctx, email, role, country, frequency)
	if sub == nil {
		log.Fatal("subscribing", zap.Error(err))
	}
	if err != nil {
		log.Warn("confirmation email was not sent", zap.Error(err))
	}

	log.Info("alert created",
		zap.String("alert_id", sub.Alert.ID),
		zap.Bool("persisted", sub.Persisted),
	)
	fmt.Println(sub.Message)
}

func unsubscribe(id string) {
	ctx := context.Background()
	log, config := setup()

	a, err := newApplication(ctx, config, log, true)
	if err != nil {
		log.Fatal("building the application", zap.Error(err))
	}
	defer a.Close()

	if a.subscriptions == nil {
		log.Fatal("alerts are disabled", zap.String("hint", "set alerts.enabled to true"))
	}

	warnEphemeral(config, log)

	if err := a.subscriptions.Unsubscribe(ctx, id); err != nil {
		log.Fatal("unsubscribing", zap.Error(err))
	}
}

// warnEphemeral flags one-shot commands running against the in-memory alert store.
func warnEphemeral(config *Config, log *zap.Logger) {
	if config.Alerts == nil {
		return
	}
	if store := strings.ToLower(strings.TrimSpace(config.Alerts.Store)); store == "" || store == "memory" {
		log.Warn("alerts are kept in memory and are lost when the command exits",
			zap.String("hint", "set alerts.store to postgres or sqlite"),
		)
	}
}
