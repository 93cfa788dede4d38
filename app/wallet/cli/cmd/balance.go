package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}
	defer w.Zero()

	fmt.Println("for account:", w.Address())

	resp, err := http.Get(fmt.Sprintf("%s/balance/%s", url, w.Address()))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var balance struct {
		Address string  `json:"address"`
		Balance float64 `json:"balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		log.Fatal(err)
	}

	fmt.Println("balance:", balance.Balance)
}
