package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/edublock/edublock/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	w, err := wallet.New()
	if err != nil {
		log.Fatal(err)
	}
	defer w.Zero()

	data, err := w.ExportJSON()
	if err != nil {
		log.Fatal(err)
	}

	path := getPrivateKeyPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		log.Fatal(err)
	}

	fmt.Println("address:", w.Address())
	fmt.Println("key file:", path)
}
