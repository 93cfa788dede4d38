// Package cmd contains the wallet app.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edublock/edublock/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
)

const keyExtension = ".json"

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.json", "Name of the key file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with key files.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage keys and talk to a node",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	if !strings.HasSuffix(accountName, keyExtension) {
		accountName += keyExtension
	}

	return filepath.Join(accountPath, accountName)
}

func loadWallet() (*wallet.Wallet, error) {
	data, err := os.ReadFile(getPrivateKeyPath())
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	return wallet.FromJSON(data)
}
