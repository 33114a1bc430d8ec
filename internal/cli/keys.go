package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	Out   string
	Force bool
}

// KeygenResult describes a written keypair file.
type KeygenResult struct {
	Path      string `json:"path"`
	PublicKey string `json:"public_key"`
}

func (r KeygenResult) String() string {
	return fmt.Sprintf("Wrote new keypair to %s\npubkey: %s", r.Path, r.PublicKey)
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a keypair file",
		Long: `Generate a new ed25519 keypair and write it as a JSON byte array,
the same format solana-keygen produces.

Example:
  lottery keygen --out admin.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "keypair file to write (required)")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing file")

	return cmd
}

func runKeygen(opts *KeygenOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	if !opts.Force {
		if _, err := os.Stat(opts.Out); err == nil {
			return out.Fail(ExitCommandError, CodeInput, "refusing to overwrite keypair",
				fmt.Errorf("%s exists (use --force)", opts.Out))
		} else if !errors.Is(err, os.ErrNotExist) {
			return out.Fail(ExitCommandError, CodeKeypair, "failed to check keypair path", err)
		}
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return out.Fail(ExitCommandError, CodeKeypair, "failed to generate keypair", err)
	}
	if err := writeKeypair(opts.Out, key); err != nil {
		return out.Fail(ExitCommandError, CodeKeypair, "failed to write keypair", err)
	}

	return out.Success(KeygenResult{Path: opts.Out, PublicKey: key.PublicKey().String()})
}

// writeKeypair stores key as a JSON array of byte values, readable by
// solana.PrivateKeyFromSolanaKeygenFile.
func writeKeypair(path string, key solana.PrivateKey) error {
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
