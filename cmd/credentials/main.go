// Command credentials cadastra as credenciais de plataforma de um usuário,
// cifradas com AUTH_SECRET.
//
// Uso:
//
//	credentials -user 42 -platform meta -access-token EAAB... -account-id 123
//	credentials -user 42 -platform google_ads -account-id 1234567890 \
//	    -client-id ... -client-secret ... -developer-token ... -refresh-token ...
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/live-performance-api/infrastructure/database/postgres"
	"github.com/vfg2006/live-performance-api/infrastructure/repository"
	"github.com/vfg2006/live-performance-api/internal/config"
	"github.com/vfg2006/live-performance-api/internal/domain"
	"github.com/vfg2006/live-performance-api/pkg/secrets"
	"github.com/vfg2006/live-performance-api/pkg/utils"
)

func main() {
	userID := flag.Int("user", 0, "id do usuário dono das credenciais")
	platform := flag.String("platform", "", "plataforma: meta ou google_ads")
	accessToken := flag.String("access-token", "", "token de acesso (meta)")
	accountID := flag.String("account-id", "", "conta de anúncios (meta) ou customer id (google_ads)")
	clientID := flag.String("client-id", "", "OAuth client id (google_ads)")
	clientSecret := flag.String("client-secret", "", "OAuth client secret (google_ads)")
	developerToken := flag.String("developer-token", "", "developer token (google_ads)")
	refreshToken := flag.String("refresh-token", "", "OAuth refresh token (google_ads)")
	loginCustomerID := flag.String("login-customer-id", "", "conta gerenciadora (google_ads, opcional)")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	creds := &domain.PlatformCredentials{
		Platform:        domain.Platform(*platform),
		AccessToken:     *accessToken,
		AccountID:       *accountID,
		ClientID:        *clientID,
		ClientSecret:    *clientSecret,
		DeveloperToken:  *developerToken,
		RefreshToken:    *refreshToken,
		LoginCustomerID: *loginCustomerID,
	}

	if err := validate(*userID, creds); err != nil {
		logrus.Fatal(err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}
	defer conn.Close()

	box, err := secrets.NewBox(cfg.Auth.Secret)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao inicializar a cifra de credenciais")
	}

	if err := repository.NewCredentialsRepository(conn, box).Save(ctx, *userID, creds); err != nil {
		logrus.WithError(err).Fatal("Erro ao salvar credenciais")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  *userID,
		"platform": creds.Platform,
	}).Info("Credenciais salvas com sucesso")

	fmt.Println(utils.PrettyJson(map[string]any{
		"userId":     *userID,
		"platform":   creds.Platform,
		"accountId":  creds.AccountID,
		"hasToken":   creds.AccessToken != "" || creds.RefreshToken != "",
		"configured": !creds.IsEmpty(),
	}))
}

func validate(userID int, creds *domain.PlatformCredentials) error {
	if userID <= 0 {
		return fmt.Errorf("-user é obrigatório")
	}

	switch creds.Platform {
	case domain.PlatformMeta:
		// -account-id só é usado por campanhas sem id externo
		if creds.AccessToken == "" {
			return fmt.Errorf("meta exige -access-token")
		}
	case domain.PlatformGoogleAds:
		if creds.AccountID == "" || creds.ClientID == "" || creds.ClientSecret == "" ||
			creds.DeveloperToken == "" || creds.RefreshToken == "" {
			return fmt.Errorf("google_ads exige -account-id, -client-id, -client-secret, -developer-token e -refresh-token")
		}
	default:
		return fmt.Errorf("plataforma inválida: %q", creds.Platform)
	}

	return nil
}
