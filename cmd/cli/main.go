package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	account string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "agentledger-cli",
		Short: "AgentLedger CLI tool",
		Long:  `A command line interface for interacting with the AgentLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the AgentLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&account, "account", "", "Account to operate on (defaults to the server's agent wallet)")

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the account balance",
		Run: func(cmd *cobra.Command, args []string) {
			path := "/api/v1/balance"
			if account != "" {
				path += "?account=" + account
			}
			get(path)
		},
	}

	depositCmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Credit the account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/deposit", map[string]any{
				"account": account,
				"amount":  args[0],
			})
		},
	}

	spendCmd := &cobra.Command{
		Use:   "spend <amount> [description]",
		Short: "Debit the account",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			body := map[string]any{
				"account": account,
				"amount":  args[0],
			}
			if len(args) > 1 {
				body["description"] = args[1]
			}
			post("/api/v1/spend", body)
		},
	}

	var searchQuery string
	chargeCmd := &cobra.Command{
		Use:   "charge <operation>",
		Short: "Run a metered operation (web_search, phone_call, menu_vision, ...)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/charges", map[string]any{
				"account":   account,
				"operation": args[0],
				"params":    map[string]any{"query": searchQuery},
			})
		},
	}
	chargeCmd.Flags().StringVar(&searchQuery, "query", "", "Query for search operations")

	var (
		pickupAddress  string
		dropoffAddress string
		orderValue     string
		tipAmount      string
	)
	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Request a delivery quote",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/deliveries/quotes", map[string]any{
				"account":        account,
				"pickupAddress":  pickupAddress,
				"dropoffAddress": dropoffAddress,
				"orderValue":     orderValue,
				"tipAmount":      tipAmount,
			})
		},
	}
	quoteCmd.Flags().StringVar(&pickupAddress, "pickup", "", "Pickup address")
	quoteCmd.Flags().StringVar(&dropoffAddress, "dropoff", "", "Dropoff address")
	quoteCmd.Flags().StringVar(&orderValue, "order-value", "0", "Order value")
	quoteCmd.Flags().StringVar(&tipAmount, "tip", "0", "Tip amount")

	confirmCmd := &cobra.Command{
		Use:   "confirm <quote-id>",
		Short: "Confirm a delivery quote",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/deliveries/quotes/"+args[0]+"/confirm", nil)
		},
	}

	rootCmd.AddCommand(balanceCmd, depositCmd, spendCmd, chargeCmd, quoteCmd, confirmCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func get(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	printResponse(resp)
}

func post(path string, body map[string]any) {
	payload, err := json.Marshal(body)
	if err != nil {
		fmt.Printf("Failed to encode request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	printResponse(resp)
}

func printResponse(resp *http.Response) {
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode >= 400 {
		fmt.Printf("Request failed (Status: %d)\n", resp.StatusCode)
		os.Exit(1)
	}
}
