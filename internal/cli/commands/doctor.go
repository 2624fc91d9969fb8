package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aactmcp/internal/catalog"
	"github.com/leapstack-labs/aactmcp/internal/cli/output"
	"github.com/leapstack-labs/aactmcp/pkg/adapter"
)

// Check statuses.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "fail"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, markdown, json
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Checks []HealthCheck `json:"checks"`
	Drift  *Drift        `json:"drift,omitempty"`
}

// HealthCheck is the result of one check.
type HealthCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// Drift lists tables present on only one side of the catalog comparison.
type Drift struct {
	MissingFromDatabase []string `json:"missing_from_database"`
	MissingFromCatalog  []string `json:"missing_from_catalog"`
}

// Failed returns the number of failed checks.
func (o *DoctorOutput) Failed() int {
	n := 0
	for _, c := range o.Checks {
		if c.Status == StatusFail {
			n++
		}
	}
	return n
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, catalog and database connectivity",
		Long: `Check that the server is ready to serve:

- Configuration: the target and governed schema
- Catalog: the schema document loads and lists tables
- Connectivity: the database answers a ping
- Drift: tables in the catalog match tables in the database

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  aactmcp doctor
  aactmcp doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	return cmd
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(opts.Format))
	}

	store, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := diagnose(cmd.Context(), cmdCtx, store)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}

	if n := out.Failed(); n > 0 {
		return fmt.Errorf("%d check(s) failed", n)
	}
	return nil
}

// diagnose runs every check against store. Checks after a failed ping are skipped.
func diagnose(ctx context.Context, cmdCtx *CommandContext, store adapter.Adapter) *DoctorOutput {
	cfg := cmdCtx.Cfg
	gw := cmdCtx.NewGateway(store)
	out := &DoctorOutput{}

	out.Checks = append(out.Checks, HealthCheck{
		Name:   "Configuration",
		Status: StatusPass,
		Detail: fmt.Sprintf("%s target %s, schema %s", cfg.Target.Type, targetLabel(cfg.Target.Host, cfg.Target.Port, cfg.Target.Database), gw.Schema()),
	})

	cat, catCheck := checkCatalog(cfg.SchemaPath)
	out.Checks = append(out.Checks, catCheck)

	if err := store.Ping(ctx); err != nil {
		out.Checks = append(out.Checks, HealthCheck{Name: "Connectivity", Status: StatusFail, Detail: err.Error()})
		return out
	}
	out.Checks = append(out.Checks, HealthCheck{Name: "Connectivity", Status: StatusPass, Detail: "database answered ping"})

	tables, err := gw.ListTables(ctx)
	if err != nil {
		out.Checks = append(out.Checks, HealthCheck{Name: "Drift", Status: StatusFail, Detail: err.Error()})
		return out
	}
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.TableName)
	}
	if cat.Len() == 0 {
		out.Checks = append(out.Checks, HealthCheck{
			Name:   "Drift",
			Status: StatusWarn,
			Detail: fmt.Sprintf("no catalog to compare; database has %d tables", len(names)),
		})
		return out
	}

	out.Drift = compareTables(cat.TableNames(), names)
	check := HealthCheck{Name: "Drift", Status: StatusPass, Detail: fmt.Sprintf("catalog matches %d tables", len(names))}
	if n := len(out.Drift.MissingFromDatabase) + len(out.Drift.MissingFromCatalog); n > 0 {
		check.Status = StatusWarn
		check.Detail = fmt.Sprintf("%d table(s) differ; run 'aactmcp schema generate' to refresh", n)
	}
	out.Checks = append(out.Checks, check)
	return out
}

func checkCatalog(path string) (*catalog.Catalog, HealthCheck) {
	check := HealthCheck{Name: "Catalog"}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		check.Status = StatusWarn
		check.Detail = fmt.Sprintf("%s not found; schema://database will be {}", path)
		return catalog.Empty(), check
	case err != nil:
		check.Status = StatusFail
		check.Detail = err.Error()
		return catalog.Empty(), check
	}

	cat, err := catalog.Parse(data)
	if err != nil {
		check.Status = StatusFail
		check.Detail = fmt.Sprintf("%s: %v", path, err)
		return catalog.Empty(), check
	}

	check.Status = StatusPass
	check.Detail = fmt.Sprintf("%s: %d tables (version %s)", path, cat.Len(), cat.Version())
	return cat, check
}

// compareTables returns the names found in only one of the two sorted lists.
func compareTables(catalogTables, dbTables []string) *Drift {
	d := &Drift{MissingFromDatabase: []string{}, MissingFromCatalog: []string{}}
	for _, t := range catalogTables {
		if _, found := slices.BinarySearch(dbTables, t); !found {
			d.MissingFromDatabase = append(d.MissingFromDatabase, t)
		}
	}
	for _, t := range dbTables {
		if _, found := slices.BinarySearch(catalogTables, t); !found {
			d.MissingFromCatalog = append(d.MissingFromCatalog, t)
		}
	}
	return d
}

func targetLabel(host string, port int, database string) string {
	if host == "" {
		return database
	}
	if port > 0 {
		return fmt.Sprintf("%s:%d/%s", host, port, database)
	}
	return host + "/" + database
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	r.Header("aactmcp doctor")
	r.Println()
	for _, c := range out.Checks {
		var mark string
		switch c.Status {
		case StatusPass:
			mark = styles.Success.Render("✓")
		case StatusWarn:
			mark = styles.Warning.Render("!")
		default:
			mark = styles.Error.Render("✗")
		}
		r.Printf("  %s %s\n", mark, styles.FormatKeyValue(c.Name, styles.Muted.Render(c.Detail)))
	}

	if out.Drift != nil {
		printDriftList(r, "Missing from database", out.Drift.MissingFromDatabase)
		printDriftList(r, "Missing from catalog", out.Drift.MissingFromCatalog)
	}
}

func printDriftList(r *output.Renderer, title string, tables []string) {
	if len(tables) == 0 {
		return
	}
	r.Println()
	r.Printf("  %s\n", r.Styles().Warning.Render(title+":"))
	for _, t := range tables {
		r.Printf("    - %s\n", t)
	}
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println("# aactmcp doctor")
	r.Println()
	r.Println("| Check | Status | Detail |")
	r.Println("| --- | --- | --- |")
	for _, c := range out.Checks {
		r.Printf("| %s | %s | %s |\n", c.Name, c.Status, strings.ReplaceAll(c.Detail, "|", `\|`))
	}

	if out.Drift == nil {
		return
	}
	for _, section := range []struct {
		title  string
		tables []string
	}{
		{"Missing from database", out.Drift.MissingFromDatabase},
		{"Missing from catalog", out.Drift.MissingFromCatalog},
	} {
		if len(section.tables) == 0 {
			continue
		}
		r.Println()
		r.Printf("## %s\n\n", section.title)
		for _, t := range section.tables {
			r.Printf("- %s\n", t)
		}
	}
}
