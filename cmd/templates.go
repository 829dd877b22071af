package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/benchmark-cli/internal/template"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect and validate industry reference templates",
}

// -- templates list --

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded templates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := initTemplates()
		if err != nil {
			return err
		}
		tpls, err := cache.List(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "templates list")
		}
		if len(tpls) == 0 {
			fmt.Fprintln(os.Stderr, "No templates found.")
			return nil
		}
		formatTemplatesList(os.Stdout, tpls, cfg.Templates.DefaultID)
		return nil
	},
}

// -- templates validate --

var templatesValidateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate template files (default: the configured directory)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			if err := cfg.Validate("templates"); err != nil {
				return err
			}
			tpls, err := template.DirSource{Dir: cfg.Templates.Dir}.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%d templates valid in %s\n", len(tpls), cfg.Templates.Dir)
			return nil
		}

		var failed int
		for _, path := range args {
			t, err := template.LoadFile(path)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stdout, "FAIL  %s: %v\n", path, err)
				continue
			}
			fmt.Fprintf(os.Stdout, "OK    %s (%s v%s)\n", path, t.ID, t.Version)
		}
		if failed > 0 {
			return eris.Errorf("templates validate: %d of %d files invalid", failed, len(args))
		}
		return nil
	},
}

// -- templates show --

var templatesShowCmd = &cobra.Command{
	Use:   "show <template-id>",
	Short: "Print a template as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := initTemplates()
		if err != nil {
			return err
		}
		t, err := cache.Get(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "templates show")
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return eris.Wrap(err, "encode template")
		}
		return enc.Close()
	},
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesValidateCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	rootCmd.AddCommand(templatesCmd)
}

func formatTemplatesList(out io.Writer, tpls []*template.Template, defaultID string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tVERSION\tINDUSTRY\tSUB_INDUSTRY\tMETRICS\tSYSTEMS\tROLES\tDEFAULT")
	_, _ = fmt.Fprintln(w, "--\t-------\t--------\t------------\t-------\t-------\t-----\t-------")

	for _, t := range tpls {
		def := ""
		if t.ID == defaultID {
			def = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			t.ID,
			t.Version,
			t.Industry,
			t.SubIndustry,
			len(t.Metrics),
			len(t.Systems.All()),
			len(t.Organization.Roles),
			def,
		)
	}
	_ = w.Flush()
}
