package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address for the key file",
	Run:   addressRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

func addressRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}
	defer w.Zero()

	fmt.Println("address:", w.Address())
	fmt.Println("public key:", w.PublicKeyHex())
}
