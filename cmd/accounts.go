package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/predict-account/internal/signing"
	"github.com/mselser95/predict-account/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage stored exchange accounts",
}

//nolint:gochecknoglobals // Cobra boilerplate
var accountsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new account",
	Long: `Registers an account for trading. The address is always derived from
the private key, never supplied by the caller.`,
	RunE: runAccountsAdd,
}

//nolint:gochecknoglobals // Cobra boilerplate
var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	RunE:  runAccountsList,
}

//nolint:gochecknoglobals // Cobra boilerplate
var accountsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update an account's metadata",
	RunE:  runAccountsUpdate,
}

//nolint:gochecknoglobals // Cobra boilerplate
var accountsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a stored account",
	RunE:  runAccountsDelete,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsAddCmd, accountsListCmd, accountsUpdateCmd, accountsDeleteCmd)

	accountsAddCmd.Flags().String("name", "", "Account name (required)")
	accountsAddCmd.Flags().String("private-key", "", "Hex private key (required)")
	accountsAddCmd.Flags().String("smart-account", "", "Smart account address presented to the exchange")
	accountsAddCmd.Flags().String("api-key", "", "Per-account exchange API key")
	accountsAddCmd.Flags().String("proxy-url", "", "Outbound proxy for this account's submissions")
	accountsAddCmd.Flags().StringSlice("tags", nil, "Tags")
	accountsAddCmd.Flags().String("notes", "", "Free-form notes")
	_ = accountsAddCmd.MarkFlagRequired("name")
	_ = accountsAddCmd.MarkFlagRequired("private-key")

	accountsUpdateCmd.Flags().String("account", "", "Account id or name (required)")
	accountsUpdateCmd.Flags().String("name", "", "New name")
	accountsUpdateCmd.Flags().String("notes", "", "New notes")
	accountsUpdateCmd.Flags().StringSlice("tags", nil, "Replace tags")
	accountsUpdateCmd.Flags().Bool("active", true, "Whether the account may trade")
	_ = accountsUpdateCmd.MarkFlagRequired("account")

	accountsDeleteCmd.Flags().String("account", "", "Account id or name (required)")
	_ = accountsDeleteCmd.MarkFlagRequired("account")
}

func runAccountsAdd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	name, _ := cmd.Flags().GetString("name")
	privateKey, _ := cmd.Flags().GetString("private-key")
	smartAccount, _ := cmd.Flags().GetString("smart-account")
	apiKey, _ := cmd.Flags().GetString("api-key")
	proxyURL, _ := cmd.Flags().GetString("proxy-url")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	notes, _ := cmd.Flags().GetString("notes")

	signer, err := signing.NewEOASigner(privateKey)
	if err != nil {
		return fmt.Errorf("parse private key: %w", err)
	}

	ctx := context.Background()

	store, err := newStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	now := time.Now().UTC()
	acct := &types.Account{
		ID:           uuid.New().String(),
		Name:         name,
		Address:      signer.Address(),
		PrivateKey:   privateKey,
		SmartAccount: smartAccount,
		APIKey:       apiKey,
		ProxyURL:     proxyURL,
		Active:       true,
		Tags:         tags,
		Notes:        notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := store.CreateAccount(ctx, acct); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	publisher, closeEvents := newPublisher(cfg, logger)
	defer closeEvents()
	publisher.PublishAccount(ctx, types.EventAccountCreated, map[string]any{
		"account_id": acct.ID,
		"name":       acct.Name,
		"address":    acct.Address,
	})

	fmt.Printf("Account created: %s\n", acct.ID)
	fmt.Printf("  Name:    %s\n", acct.Name)
	fmt.Printf("  Address: %s\n", acct.Address)

	return nil
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()

	store, err := newStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	fmt.Printf("%d accounts:\n\n", len(accounts))
	fmt.Printf("%-36s %-20s %-44s %-8s %s\n", "ID", "NAME", "ADDRESS", "ACTIVE", "TAGS")
	for _, acct := range accounts {
		fmt.Printf("%-36s %-20s %-44s %-8t %s\n",
			acct.ID, acct.Name, acct.Address, acct.Active, strings.Join(acct.Tags, ","))
	}

	return nil
}

func runAccountsUpdate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	accountRef, _ := cmd.Flags().GetString("account")
	ctx := context.Background()

	store, err := newStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	acct, err := findAccount(ctx, store, accountRef)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("name") {
		acct.Name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("notes") {
		acct.Notes, _ = cmd.Flags().GetString("notes")
	}
	if cmd.Flags().Changed("tags") {
		acct.Tags, _ = cmd.Flags().GetStringSlice("tags")
	}
	if cmd.Flags().Changed("active") {
		acct.Active, _ = cmd.Flags().GetBool("active")
	}
	acct.UpdatedAt = time.Now().UTC()

	if err := store.UpdateAccount(ctx, acct); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	publisher, closeEvents := newPublisher(cfg, logger)
	defer closeEvents()
	publisher.PublishAccount(ctx, types.EventAccountUpdated, map[string]any{
		"account_id": acct.ID,
		"name":       acct.Name,
	})

	fmt.Printf("Account updated: %s (%s)\n", acct.ID, acct.Name)

	return nil
}

func runAccountsDelete(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	accountRef, _ := cmd.Flags().GetString("account")
	ctx := context.Background()

	store, err := newStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	acct, err := findAccount(ctx, store, accountRef)
	if err != nil {
		return err
	}

	if err := store.DeleteAccount(ctx, acct.ID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	publisher, closeEvents := newPublisher(cfg, logger)
	defer closeEvents()
	publisher.PublishAccount(ctx, types.EventAccountDeleted, map[string]any{
		"account_id": acct.ID,
		"name":       acct.Name,
	})

	fmt.Printf("Account deleted: %s (%s)\n", acct.ID, acct.Name)

	return nil
}
