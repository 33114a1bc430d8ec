package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/solongwallet/lottery/internal/testutil"
)

// cliEnv is a config file, a database path and keypair files in a temp dir.
type cliEnv struct {
	dir    string
	config string
	db     string

	admin     solana.PrivateKey
	pool      solana.PublicKey
	billboard solana.PublicKey
	fee       solana.PublicKey
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	e := &cliEnv{
		dir:       dir,
		config:    filepath.Join(dir, "lottery.yaml"),
		db:        filepath.Join(dir, "lottery.db"),
		admin:     testutil.Keypair("admin"),
		pool:      testutil.PublicKey("pool"),
		billboard: testutil.PublicKey("billboard"),
		fee:       testutil.PublicKey("fee"),
	}

	cfg := fmt.Sprintf(`program_id: %s
admin: %s
admin_keypair: %s
database: %s
clock: logical
pool: %s
billboard: %s
fee: %s
`, testutil.PublicKey("program"), e.admin.PublicKey(), e.keypair(t, "admin"), e.db, e.pool, e.billboard, e.fee)
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o644))
	return e
}

// keypair writes the deterministic keypair for name and returns its path.
func (e *cliEnv) keypair(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.dir, name+".json")
	require.NoError(t, writeKeypair(path, testutil.Keypair(name)))
	return path
}

// run executes the root command with the env's config and returns stdout.
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, append([]string{"--config", e.config}, args...)...)
}

// runJSON runs with --format json and decodes the response.
func (e *cliEnv) runJSON(t *testing.T, args ...string) (jsonResponse, error) {
	t.Helper()
	out, runErr := e.run(t, append([]string{"--format", "json"}, args...)...)
	var resp jsonResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, runErr
}

// deploy creates the pool accounts, funds the admin and initializes.
func (e *cliEnv) deploy(t *testing.T, fund, price uint64) {
	t.Helper()
	_, err := e.run(t, "create-pool")
	require.NoError(t, err)
	_, err = e.run(t, "airdrop", e.admin.PublicKey().String(), "1000000")
	require.NoError(t, err)
	_, err = e.run(t, "initialize", "--keypair", e.keypair(t, "admin"),
		"--fund", fmt.Sprint(fund), "--price", fmt.Sprint(price))
	require.NoError(t, err)
}

type jsonResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
	Error  *CLIError      `json:"error"`
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
