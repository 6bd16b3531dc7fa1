package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/dopamenu/internal/intervention/catalog"
	"github.com/runger/dopamenu/internal/intervention/model"
	"github.com/runger/dopamenu/internal/picker"
)

var (
	catalogFormat    string
	catalogInit      bool
	catalogOverwrite bool
)

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Short:   "List the activities suggestions are drawn from",
	GroupID: groupSetup,
	Long: `List the active catalog. The catalog is read from engine.catalog_path,
else from catalog.yaml in the config directory, else the built-in list.

Use --init to write the built-in catalog to catalog.yaml as a starting
point for your own.

Examples:
  dopamenu catalog
  dopamenu catalog --format=yaml > my-catalog.yaml
  dopamenu catalog --init`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogFormat, "format", "text", "output format: text, yaml, or json")
	catalogCmd.Flags().BoolVar(&catalogInit, "init", false, "write the built-in catalog to the config directory")
	catalogCmd.Flags().BoolVar(&catalogOverwrite, "overwrite", false, "with --init, replace an existing catalog file")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if catalogInit {
		path := a.paths.CatalogFile()
		if err := writeDefaultCatalog(path, catalogOverwrite); err != nil {
			return err
		}
		a.logger.Info("catalog written", "path", path)
		fmt.Fprintf(out, "Wrote %d activities to %s\n", catalog.Default().Len(), path)
		return nil
	}

	cat, err := a.catalog()
	if err != nil {
		return err
	}

	switch catalogFormat {
	case "yaml":
		data, err := cat.Marshal()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "json":
		return writeJSON(out, cat.All())
	case "text":
		for _, c := range cat.All() {
			fmt.Fprintf(out, "%s %-10s %s%s\n",
				styleCyan.Render(fmt.Sprintf("%-16s", c.ID)),
				string(c.RequiredEffort),
				picker.Clean(c.Label),
				styleDim.Render(constraintSummary(c.ContextConstraints)))
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (must be text, yaml, or json)", catalogFormat)
	}
}

func writeDefaultCatalog(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%s already exists (use --overwrite to replace it)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	data, err := catalog.Default().Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

func constraintSummary(cs []model.ContextConstraint) string {
	if len(cs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, fmt.Sprintf("%s %s %s", c.Type, operatorSymbol(c.Operator), c.Value))
	}
	return "  (" + strings.Join(parts, ", ") + ")"
}

func operatorSymbol(op model.ConstraintOperator) string {
	switch op {
	case model.OpEquals:
		return "="
	case model.OpNotEquals:
		return "!="
	default:
		return string(op)
	}
}
