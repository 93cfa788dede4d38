package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/edublock/edublock/foundation/blockchain/ledger"
	"github.com/spf13/cobra"
)

var (
	url    string
	to     string
	amount float64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and submit a transaction",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Recipient address.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "v", 0, "Amount to send.")
}

func sendRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}
	defer w.Zero()

	tx := ledger.NewTx(w.Address(), to, amount)
	if err := tx.Sign(w); err != nil {
		log.Fatal(err)
	}

	data, err := json.Marshal(tx)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/transactions/new", url), "application/json", bytes.NewReader(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(body))
}
