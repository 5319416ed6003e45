package utils

import (
	"context"

	"caresaviour/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// InitFCM builds the Firebase messaging client. It returns nil when no
// credentials file is configured; push delivery is then skipped.
func InitFCM(ctx context.Context) (*messaging.Client, error) {
	path := config.AppConfig.FirebaseCredentialsFile
	if path == "" {
		GetLogger().Info("firebase: no credentials configured, push delivery disabled")
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(path))
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	GetLogger().Info("firebase: messaging client ready", zap.String("credentials", path))
	return client, nil
}
