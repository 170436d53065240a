package cli

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"metastor/internal/auth"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

const defaultAppName = "MetaStor"

// LoginPayload is the body POST /api/auth expects.
type LoginPayload struct {
	PubKey    string `json:"pubKey"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`
}

// BuildLoginPayload signs a fresh login nonce with the wallet key.
func BuildLoginPayload(key solana.PrivateKey, appName string, now time.Time) (*LoginPayload, error) {
	nonce := auth.GenerateNonce(appName, now)
	sig, err := key.Sign([]byte(nonce))
	if err != nil {
		return nil, fmt.Errorf("sign nonce: %w", err)
	}
	return &LoginPayload{
		PubKey:    key.PublicKey().String(),
		Signature: base64.StdEncoding.EncodeToString(sig[:]),
		Nonce:     nonce,
	}, nil
}

func defaultKeypairPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "solana", "id.json")
	}
	return filepath.Join(home, ".config", "solana", "id.json")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func newLoginPayloadCmd(opts *options) *cobra.Command {
	var keypairPath, appName string

	cmd := &cobra.Command{
		Use:   "login-payload",
		Short: "Sign a login nonce with a Solana CLI keypair",
		Long: `Loads a keypair in the Solana CLI keygen format, signs a fresh
"<app> Login <unix>" nonce and prints the request body for POST /api/auth.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := solana.PrivateKeyFromSolanaKeygenFile(expandHome(keypairPath))
			if err != nil {
				return fmt.Errorf("failed to load wallet %s: %w", keypairPath, err)
			}

			payload, err := BuildLoginPayload(key, appName, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.outputFormat == "json" {
				return printJSON(out, payload)
			}
			if err := printJSON(out, payload); err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Public Key:", payload.PubKey)
			fmt.Fprintln(out, "Signature: ", payload.Signature)
			fmt.Fprintln(out, "Nonce:     ", payload.Nonce)
			return nil
		},
	}

	cmd.Flags().StringVar(&keypairPath, "keypair", defaultKeypairPath(), "path to the Solana CLI keypair file")
	cmd.Flags().StringVar(&appName, "app", defaultAppName, "application name embedded in the nonce")

	return cmd
}
