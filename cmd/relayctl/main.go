// Command relayctl is the operator companion of the intake relay: it shows
// the active tab schemas, maps payloads offline and mints debug tokens.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/parisxmas/intake-relay/internal/auth"
	"github.com/parisxmas/intake-relay/internal/repository"
	"github.com/parisxmas/intake-relay/internal/service"
)

var (
	schemasPath string
	tokenTTL    time.Duration
	operator    string
)

var rootCmd = &cobra.Command{
	Use:           "relayctl",
	Short:         "Operator tools for the clinic intake relay",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List submission kinds, destination tabs and columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listSchemas(cmd.OutOrStdout())
	},
}

var mapCmd = &cobra.Command{
	Use:   "map <kind> [payload.json]",
	Short: "Map a JSON payload to the row the relay would append",
	Long: `Runs the same validation and column mapping as POST /api/<kind>
without contacting the spreadsheet. Reads the payload from stdin when no
file is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 2 {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		return mapPayload(cmd.OutOrStdout(), args[0], in)
	},
}

var debugTokenCmd = &cobra.Command{
	Use:   "debug-token",
	Short: "Mint a bearer token for /_debug/auth (uses DEBUG_AUTH_SECRET)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mintToken(cmd.OutOrStdout(), os.Getenv("DEBUG_AUTH_SECRET"), operator, tokenTTL)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&schemasPath, "schemas", os.Getenv("SCHEMAS_PATH"), "tab schema YAML (default: built-in)")
	debugTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	debugTokenCmd.Flags().StringVar(&operator, "operator", "ops", "operator name stamped in the token")

	rootCmd.AddCommand(schemasCmd, mapCmd, debugTokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func listSchemas(out io.Writer) error {
	repo, err := repository.LoadSchemas(schemasPath)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tTAB\tCOLUMNS")
	for _, s := range repo.All() {
		cols := []string{"timestamp"}
		for _, c := range s.Columns {
			name := c.Field
			switch {
			case c.Constant != "":
				name += "=" + c.Constant
			case c.Required:
				name += "*"
			}
			cols = append(cols, name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Kind, s.Tab, strings.Join(cols, ", "))
	}
	return tw.Flush()
}

func mapPayload(out io.Writer, kind string, in io.Reader) error {
	repo, err := repository.LoadSchemas(schemasPath)
	if err != nil {
		return err
	}

	payload := map[string]any{}
	dec := json.NewDecoder(in)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("payload: %w", err)
	}

	// No store: Preview never appends.
	sub, err := service.NewSubmissionService(repo, nil, nil).Preview(kind, payload)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	return enc.Encode(map[string]any{"tab": sub.Tab, "row": sub.Row()})
}

func mintToken(out io.Writer, secret, operator string, ttl time.Duration) error {
	if secret == "" {
		return errors.New("DEBUG_AUTH_SECRET is not set")
	}
	tok, err := auth.GenerateToken(secret, operator, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}
