// Command starctl is the command-line interface for a starchain registry.
//
// It can generate keys, request and sign ownership challenges, submit stars,
// and read the chain back.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/star-registry/starchain/internal/signature"
	"github.com/star-registry/starchain/pkg/client"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	registryURL string
	testnet     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "starctl",
	Short: "starchain registry CLI",
	Long: `starctl is the command-line interface for a starchain registry.

It generates keys, requests ownership challenges, signs them, submits star
registrations, and queries the chain.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		home, _ := os.UserHomeDir()
		viper.AddConfigPath(home + "/.starchain")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if registryURL == "" {
			registryURL = viper.GetString("registry_url")
		}
		if registryURL == "" {
			registryURL = "http://localhost:8000"
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryURL, "registry", "", "registry base URL")

	keyCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use testnet address encoding")
	keyCmd.AddCommand(keyNewCmd, keySignCmd)

	submitCmd.Flags().String("message", "", "signed challenge message (required)")
	submitCmd.Flags().String("signature", "", "base64 signature over the message (required)")
	submitCmd.Flags().String("star", "", "star data as a JSON object (required)")
	_ = submitCmd.MarkFlagRequired("message")
	_ = submitCmd.MarkFlagRequired("signature")
	_ = submitCmd.MarkFlagRequired("star")

	rootCmd.AddCommand(challengeCmd, submitCmd, blockCmd, starsCmd, chainCmd, validateCmd, keyCmd, versionCmd)
}

func apiClient() *client.Client {
	return client.New(registryURL)
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func netParams() *chaincfg.Params {
	if testnet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

var challengeCmd = &cobra.Command{
	Use:   "challenge <address>",
	Short: "Request an ownership challenge for an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		msg, err := apiClient().RequestChallenge(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(msg)
		fmt.Fprintln(os.Stderr, "sign this message within 5 minutes and submit with 'starctl submit'")
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <address>",
	Short: "Submit a signed star registration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")
		sig, _ := cmd.Flags().GetString("signature")
		star, _ := cmd.Flags().GetString("star")
		if !json.Valid([]byte(star)) {
			return fmt.Errorf("--star must be valid JSON")
		}

		ctx, cancel := cmdContext()
		defer cancel()

		b, err := apiClient().SubmitStar(ctx, client.SubmitStarRequest{
			Address:   args[0],
			Message:   message,
			Signature: sig,
			Star:      json.RawMessage(star),
		})
		if err != nil {
			return err
		}
		fmt.Printf("star registered at height %d\nhash: %s\n", b.Height, b.Hash)
		return nil
	},
}

var blockCmd = &cobra.Command{
	Use:   "block <height | hash>",
	Short: "Fetch a block by height or hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		var (
			b   *client.Block
			err error
		)
		if height, convErr := strconv.Atoi(args[0]); convErr == nil {
			b, err = apiClient().BlockByHeight(ctx, height)
		} else {
			b, err = apiClient().BlockByHash(ctx, args[0])
		}
		if err != nil {
			return err
		}
		return printJSON(b)
	},
}

var starsCmd = &cobra.Command{
	Use:   "stars <address>",
	Short: "List the stars registered by an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		stars, err := apiClient().StarsByOwner(ctx, args[0])
		if err != nil {
			return err
		}
		if len(stars) == 0 {
			fmt.Println("no stars registered")
			return nil
		}
		return printJSON(stars)
	},
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Show the chain height and tip hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		info, err := apiClient().Chain(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "height:\t%d\n", info.Height)
		fmt.Fprintf(w, "tip:\t%s\n", info.Tip)
		return w.Flush()
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run a full-chain integrity check",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		res, err := apiClient().Validate(ctx)
		if err != nil {
			return err
		}
		if res.Valid {
			fmt.Println("chain is consistent")
			return nil
		}
		for _, v := range res.Violations {
			fmt.Printf("height %d: %s\n", v.Height, v.Kind)
		}
		return fmt.Errorf("%d integrity violation(s) found", len(res.Violations))
	},
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Generate keys and sign challenges locally",
}

var keyNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new private key and its address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		priv, err := btcec.NewPrivateKey()
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		wif, err := btcutil.NewWIF(priv, netParams(), true)
		if err != nil {
			return fmt.Errorf("encode WIF: %w", err)
		}
		addr, err := signature.Address(priv, true, netParams())
		if err != nil {
			return err
		}
		fmt.Printf("address: %s\nprivate key (WIF): %s\n", addr, wif.String())
		fmt.Fprintln(os.Stderr, "keep the private key secret; it proves ownership of the address")
		return nil
	},
}

var keySignCmd = &cobra.Command{
	Use:   "sign <wif> <message>",
	Short: "Sign a challenge message with a WIF-encoded private key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		wif, err := btcutil.DecodeWIF(args[0])
		if err != nil {
			return fmt.Errorf("decode WIF: %w", err)
		}
		sig, err := signature.Sign(args[1], wif.PrivKey, wif.CompressPubKey)
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the starctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("starctl", version)
	},
}
