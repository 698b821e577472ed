package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"backoffice/core/config"
	"backoffice/core/database"
	"backoffice/core/logger"
	"backoffice/core/reconcile"
	"backoffice/feature/imports"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	// Flags for the import command
	importTenant string
	importFile   string
	importDryRun bool
	yesConfirm   bool
)

// importCmd runs a bulk import from a rows file.
var importCmd = &cobra.Command{
	Use:   "import <entity>",
	Short: "Import clients or suppliers from a rows file",
	Long: `Import a batch of already parsed spreadsheet rows for one tenant.

The rows file is YAML (or JSON): a list of mappings from column name to cell
value, in spreadsheet order. The plan is always printed first; records missing
from the file and without dependents are deleted once confirmed.

Examples:
  # Show the plan only
  import clients --tenant acme --file clients.yaml --dry-run

  # Apply with interactive confirmation
  import suppliers --tenant acme --file suppliers.json

  # Apply without prompting
  import clients --tenant acme --file clients.yaml --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importTenant, "tenant", "", "Tenant (company) ID the rows belong to")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Rows file (YAML or JSON)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Print the plan without applying it")
	importCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	_ = importCmd.MarkFlagRequired("tenant")
	_ = importCmd.MarkFlagRequired("file")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	entity := args[0]

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	l = logger.WithImport(l, entity, importTenant)

	rows, err := readRows(importFile)
	if err != nil {
		return err
	}
	l.Info("Rows loaded", zap.String("file", importFile), zap.Int("rows", len(rows)))

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}
	svc := newImportService(cfg, l, db, store)

	confirm := func() bool { return confirmDestructiveAction(cmd.InOrStdin(), cmd.OutOrStdout()) }
	return planAndApply(ctx, svc, l, cmd.OutOrStdout(), entity, rows, confirm)
}

// planAndApply prints the plan and, once confirmed, applies that same plan.
func planAndApply(ctx context.Context, svc *imports.Service, l *zap.Logger, w io.Writer, entity string, rows []reconcile.Row, confirm func() bool) error {
	// Step 1: Plan (always runs, writes nothing)
	out, err := svc.Import(ctx, entity, importTenant, rows, reconcile.Options{DryRun: true})
	var rejected *reconcile.RejectedError
	if errors.As(err, &rejected) {
		fmt.Fprintln(w, rejected.Error())
		return fmt.Errorf("import rejected with %d errors", len(rejected.Errors))
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out.Summary)

	if importDryRun {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	// Step 2: Apply the plan shown above (if confirmed)
	if !confirm() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	out, err = svc.Apply(ctx, out)
	if errors.Is(err, reconcile.ErrPlanChanged) {
		fmt.Fprintln(w, "\nThe stored records changed after the plan was printed. Run the import again to review the new plan.")
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out.Summary)
	return nil
}

// readRows decodes a rows file. JSON files are valid YAML.
func readRows(path string) ([]reconcile.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rows file: %w", err)
	}
	defer f.Close()
	return decodeRows(f)
}

func decodeRows(r io.Reader) ([]reconcile.Row, error) {
	var rows []reconcile.Row
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return []reconcile.Row{}, nil
		}
		return nil, fmt.Errorf("failed to decode rows file: %w", err)
	}
	return rows, nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(in io.Reader, out io.Writer) bool {
	if yesConfirm {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(out, "\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
