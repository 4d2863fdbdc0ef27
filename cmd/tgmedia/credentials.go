package main

import (
	"errors"
	"fmt"
	"io"

	"tgmedia/pkg/auth"
	"tgmedia/pkg/config"
	"tgmedia/pkg/logger"
	"tgmedia/pkg/ui"
)

// applyProfile copies stored credentials into the configuration. The phone
// number from the configuration wins when both are set.
func applyProfile(cfg *config.Config, profile *auth.Profile) {
	cfg.Telegram.APIID = profile.APIID
	cfg.Telegram.APIHash = profile.APIHash
	if cfg.Telegram.Phone == "" {
		cfg.Telegram.Phone = profile.Phone
	}
}

// loadCredentials fills the API credentials from an explicit profile, the
// configuration sources, or the default stored profile, in that order.
func loadCredentials(cfg *config.Config, manager *auth.Manager, profile string, out io.Writer) error {
	if profile != "" {
		stored, err := manager.Retrieve(profile)
		if err != nil {
			return fmt.Errorf("profile %q: %w (see 'tgmedia auth list')", profile, err)
		}
		applyProfile(cfg, stored)
		fmt.Fprintf(out, "Using saved credentials from profile %s.\n", ui.Yellow(stored.Name))
		return nil
	}

	if cfg.HasCredentials() {
		fmt.Fprintln(out, "Using credentials from configuration.")
		return nil
	}

	stored, err := manager.RetrieveDefault()
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			return nil
		}
		return err
	}
	applyProfile(cfg, stored)
	fmt.Fprintf(out, "Using saved credentials from profile %s.\n", ui.Yellow(stored.Name))
	return nil
}

// askCredentials prompts for a new API id and hash
func askCredentials(p *prompter) (int, string, error) {
	apiID, err := p.AskInt("Enter your Telegram API ID", 0)
	if err != nil {
		return 0, "", err
	}
	var apiHash string
	for apiHash == "" {
		if apiHash, err = p.Ask("Enter your Telegram API Hash", ""); err != nil {
			return 0, "", err
		}
	}
	return apiID, apiHash, nil
}

// saveCredentials stores the credentials under name, falling back to the
// plain config.json file when no secure store accepts them
func saveCredentials(manager *auth.Manager, name string, cfg *config.Config) error {
	profile := &auth.Profile{
		Name:    name,
		APIID:   cfg.Telegram.APIID,
		APIHash: cfg.Telegram.APIHash,
		Phone:   cfg.Telegram.Phone,
	}
	err := manager.Store(profile)
	if err == nil {
		return nil
	}
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return err
	}

	logger.WithError(err).Warn("Secure credential storage failed, writing config.json")
	return config.SaveLegacy("", cfg.Telegram.APIID, cfg.Telegram.APIHash)
}

// setupCredentials runs first-time setup when nothing is configured and
// otherwise offers to replace the credentials unless assumeYes is set
func setupCredentials(cfg *config.Config, manager *auth.Manager, p *prompter, assumeYes bool) error {
	update := false
	if !cfg.HasCredentials() {
		fmt.Fprintln(p.out, ui.Magenta("First time setup"))
		auth.ShowQuickGuide(p.out)
		update = true
	} else if !assumeYes {
		var err error
		if update, err = p.Confirm("Do you want to update API credentials?", false); err != nil {
			return err
		}
	}
	if !update {
		return nil
	}

	apiID, apiHash, err := askCredentials(p)
	if err != nil {
		return err
	}
	cfg.Telegram.APIID = apiID
	cfg.Telegram.APIHash = apiHash

	name := profileName
	if name == "" {
		name = auth.DefaultProfile
	}
	if err := saveCredentials(manager, name, cfg); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	ui.PrintSuccess("Credentials saved as profile " + name)
	return nil
}
