package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/selvaggiesteban/hands-on-ai-sub000/pkg/persona"
)

func newListCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List personas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			if category != "" && len(reg.ByCategory(category)) == 0 {
				return fmt.Errorf("unknown category %q (known: %s)", category, strings.Join(reg.Categories(), ", "))
			}
			infos := persona.ListInfo(reg, category)

			if a.output != formatTable {
				return encode(cmd.OutOrStdout(), a.output, infos)
			}
			t := newTable("NAME", "CATEGORY", "MODEL", "SOURCE", "DESCRIPTION")
			for _, info := range infos {
				t.addRow(info.Name, info.Category, info.Model, info.Source, info.Description)
			}
			return t.render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only list personas in this category")
	cmd.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "List categories and how many personas each holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			counts := make(map[string]int)
			for _, c := range reg.Categories() {
				counts[c] = len(reg.ByCategory(c))
			}
			if a.output != formatTable {
				return encode(cmd.OutOrStdout(), a.output, counts)
			}
			t := newTable("CATEGORY", "PERSONAS")
			for _, c := range reg.Categories() {
				t.addRow(c, strconv.Itoa(counts[c]))
			}
			return t.render(cmd.OutOrStdout())
		},
	})
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var (
		promptOnly bool
		raw        bool
	)
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one persona",
		Long: `Show one persona. NAME is the persona name ("backend-developer") or its
identifier form ("BACKEND_DEVELOPER"). With --raw the persona is printed in
its Markdown file format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			def, err := reg.Lookup(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case raw:
				data, err := persona.Render(def)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			case promptOnly:
				return renderMarkdown(out, def.SystemPrompt)
			case a.output != formatTable:
				return encode(out, a.output, def)
			}

			t := newTable("FIELD", "VALUE")
			t.addRow("name", def.Type)
			t.addRow("identifier", persona.Identifier(def.Type))
			t.addRow("category", def.Category())
			t.addRow("model", persona.ResolveModel(def, "", persona.ModelInherit))
			t.addRow("tools", strings.Join(def.ToolPermissions, ", "))
			if !slices.Equal(def.Capabilities, def.ToolPermissions) {
				t.addRow("capabilities", strings.Join(def.Capabilities, ", "))
			}
			t.addRow("source", def.Source.String())
			if def.FilePath != "" {
				t.addRow("file", def.FilePath)
			}
			if err := t.render(out); err != nil {
				return err
			}
			fmt.Fprintln(out, mutedStyle.Render(def.Description))
			fmt.Fprintln(out)
			return renderMarkdown(out, def.SystemPrompt)
		},
	}
	cmd.Flags().BoolVar(&promptOnly, "prompt", false, "print only the system prompt")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the persona as a Markdown definition file")
	return cmd
}

func newMatchCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "match TASK...",
		Short: "Suggest personas for a task description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			results := persona.Match(reg, strings.Join(args, " "), limit)
			if len(results) == 0 {
				return fmt.Errorf("no persona matches and fallback %q is not defined", persona.FallbackPersona)
			}
			if a.output != formatTable {
				return encode(cmd.OutOrStdout(), a.output, results)
			}
			t := newTable("NAME", "SCORE", "DESCRIPTION")
			for _, r := range results {
				def, _ := reg.Lookup(r.Name)
				t.addRow(r.Name, strconv.Itoa(r.Score), def.Description)
			}
			return t.render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum number of suggestions")
	return cmd
}

func newToolsCmd(a *app) *cobra.Command {
	var check string
	cmd := &cobra.Command{
		Use:   "tools [NAME]",
		Short: "List known tools, or the tools a persona may use",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				known := persona.KnownTools()
				if a.output != formatTable {
					return encode(out, a.output, known)
				}
				t := newTable("TOOL")
				for _, name := range known {
					t.addRow(name)
				}
				return t.render(out)
			}

			reg, err := a.registry()
			if err != nil {
				return err
			}
			def, err := reg.Lookup(args[0])
			if err != nil {
				return err
			}

			if check != "" {
				allowed := def.Allows(check)
				if a.output != formatTable {
					return encode(out, a.output, map[string]any{"persona": def.Type, "tool": check, "allowed": allowed})
				}
				verdict := "denied"
				if allowed {
					verdict = "allowed"
				}
				fmt.Fprintf(out, "%s: %s %s\n", def.Type, check, verdict)
				return nil
			}

			restriction, rest := persona.ParseTaskRestriction(def.ToolPermissions)
			type toolsView struct {
				Persona   string   `json:"persona" yaml:"persona"`
				Tools     []string `json:"tools" yaml:"tools"`
				Task      bool     `json:"task" yaml:"task"`
				Subagents []string `json:"subagents,omitempty" yaml:"subagents,omitempty"`
			}
			view := toolsView{Persona: def.Type, Tools: rest}
			if restriction != nil {
				view.Task = true
				view.Subagents = restriction.AllowedTypes
			}
			if a.output != formatTable {
				return encode(out, a.output, view)
			}
			t := newTable("TOOL", "NOTE")
			for _, name := range rest {
				t.addRow(name, "")
			}
			if restriction != nil {
				note := "any subagent"
				if len(restriction.AllowedTypes) > 0 {
					note = "only " + strings.Join(restriction.AllowedTypes, ", ")
				}
				t.addRow(persona.ToolTask, note)
			}
			return t.render(out)
		},
	}
	cmd.Flags().StringVar(&check, "check", "", "report whether the persona may use this tool")
	return cmd
}
