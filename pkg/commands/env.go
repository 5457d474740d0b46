package commands

import (
	"github.com/rs/zerolog"

	"tableflip.dev/focussync/pkg/config"
	"tableflip.dev/focussync/pkg/logging"
	"tableflip.dev/focussync/pkg/onboarding"
	"tableflip.dev/focussync/pkg/store"
	"tableflip.dev/focussync/pkg/wallet"
)

// env is what a command needs from configuration.
type env struct {
	cfg config.Config
	log zerolog.Logger
}

func loadEnv(component string) (env, error) {
	cfg, err := config.Load()
	if err != nil {
		return env{}, err
	}
	return env{cfg: cfg, log: logging.New(component, cfg.LogLevel)}, nil
}

func (e env) persistence() (store.Persistence, error) {
	if storeOpts.Ephemeral {
		return store.NewMemory(), nil
	}
	return store.Load(e.cfg, store.WithLogger(e.log))
}

func (e env) policy() wallet.FallbackPolicy {
	if walletOpts.Strict || !e.cfg.FailOpen {
		return wallet.StrictPolicy()
	}
	return wallet.DefaultPolicy()
}

func (e env) serverURL() string {
	if walletOpts.ServerURL != "" {
		return walletOpts.ServerURL
	}
	return e.cfg.AppServerURL
}

func (e env) walletClient(r wallet.ChallengeResponder, codes wallet.AuthCodeProvider) *wallet.Client {
	return wallet.NewClient(e.serverURL(),
		wallet.WithResponder(r),
		wallet.WithAuthCodeProvider(codes),
		wallet.WithGoogle(wallet.GoogleConfig{
			ClientID:     e.cfg.GoogleClientID,
			ClientSecret: e.cfg.GoogleClientSecret,
			RedirectURL:  e.cfg.GoogleRedirectURL,
		}),
		wallet.WithPolicy(e.policy()),
		wallet.WithLogger(e.log),
	)
}

func (e env) onboardingOptions(amount string) onboarding.Options {
	if amount == "" {
		amount = e.cfg.PaymentAmount
	}
	log := e.log
	return onboarding.Options{
		Amount:                  amount,
		DestinationWalletID:     e.cfg.DestinationWalletID,
		ImportSkipsVerification: e.cfg.ImportSkipsVerification,
		Logger:                  &log,
	}
}
