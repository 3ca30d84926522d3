package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/alphabot-ai/slashboard/internal/client"
	"github.com/alphabot-ai/slashboard/internal/model"
)

// identity is the signed-in account persisted between client commands.
type identity struct {
	BaseURL    string    `json:"base_url"`
	Name       string    `json:"name"`
	AccountID  int64     `json:"account_id"`
	PrivateKey string    `json:"private_key"`
	Token      string    `json:"token"`
	TokenExp   time.Time `json:"token_expires"`
}

func identityPath() string {
	if p := os.Getenv("SLASHBOARD_IDENTITY"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".slashboard", "identity.json")
}

func loadIdentity() (identity, error) {
	data, err := os.ReadFile(identityPath())
	if err != nil {
		return identity{}, errors.New("not registered - run 'slashboard register --name <name>'")
	}
	var id identity
	if err := json.Unmarshal(data, &id); err != nil {
		return identity{}, err
	}
	return id, nil
}

func saveIdentity(id identity) error {
	path := identityPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, _ := json.MarshalIndent(id, "", "  ")
	return os.WriteFile(path, data, 0o600)
}

// newClient returns a client for the configured server, carrying the saved
// token when it is still valid for that server.
func newClient() (*client.Client, model.ViewerID) {
	c := client.New(cfg.Client.BaseURL)
	c.HTTPClient.Timeout = cfg.Client.Timeout
	id, err := loadIdentity()
	if err != nil || id.BaseURL != c.BaseURL || time.Now().After(id.TokenExp) {
		return c, model.Anonymous
	}
	c.Token = id.Token
	c.TokenExp = id.TokenExp
	return c, model.ViewerID(id.AccountID)
}

func authenticatedClient() (*client.Client, error) {
	c, viewer := newClient()
	if viewer.IsAnonymous() {
		return nil, errors.New("not authenticated - run 'slashboard login'")
	}
	return c, nil
}

var (
	registerName string
	registerBio  string

	registerCmd = &cobra.Command{
		Use:   "register",
		Short: "Create a keypair and an account, then sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if registerName == "" {
				return errors.New("--name is required")
			}
			creds, err := client.GenerateCredentials(registerName)
			if err != nil {
				return fmt.Errorf("generate keypair: %w", err)
			}
			c := client.New(cfg.Client.BaseURL)
			accountID, err := c.Register(cmd.Context(), creds, registerBio)
			if err != nil {
				return err
			}
			if err := saveSignedIn(c, creds, accountID); err != nil {
				return err
			}
			fmt.Printf("✓ Registered '%s' (account %d)\n", creds.Name, accountID)
			return nil
		},
	}

	loginCmd = &cobra.Command{
		Use:     "login",
		Aliases: []string{"auth"},
		Short:   "Refresh the bearer token with the saved key",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			creds, err := client.CredentialsFromKey(id.Name, id.PrivateKey)
			if err != nil {
				return err
			}
			c := client.New(id.BaseURL)
			accountID, err := c.Authenticate(cmd.Context(), creds)
			if err != nil {
				return err
			}
			if err := saveSignedIn(c, creds, accountID); err != nil {
				return err
			}
			fmt.Printf("✓ Authenticated as '%s' (expires %s)\n", id.Name, c.TokenExp.Format(time.RFC3339))
			return nil
		},
	}
)

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "display name (required)")
	registerCmd.Flags().StringVar(&registerBio, "bio", "", "optional bio")
}

func saveSignedIn(c *client.Client, creds *client.Credentials, accountID int64) error {
	return saveIdentity(identity{
		BaseURL:    c.BaseURL,
		Name:       creds.Name,
		AccountID:  accountID,
		PrivateKey: creds.EncodedPrivateKey(),
		Token:      c.Token,
		TokenExp:   c.TokenExp,
	})
}
