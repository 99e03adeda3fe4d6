package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/selvaggiesteban/hands-on-ai-sub000/pkg/persona"
)

func newValidateCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check persona definitions for integrity problems",
		Long: `Validate checks every persona: legal name, type matching its key,
non-empty description and system prompt, known tools, existing task(...)
targets, and unique identifiers. With --dir only the Markdown tree under that
directory is checked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var reg *persona.Registry
			if dir != "" {
				info, err := os.Stat(dir)
				if err != nil {
					return err
				}
				if !info.IsDir() {
					return fmt.Errorf("%s is not a directory", dir)
				}
				defs, err := persona.LoadFS(os.DirFS(dir), ".", persona.SourceProject, persona.PriorityProject, a.logger)
				if err != nil {
					return err
				}
				reg = persona.NewRegistry(defs)
			} else {
				var err error
				if reg, err = a.registry(); err != nil {
					return err
				}
			}

			verr := persona.Validate(reg)
			problems := unwrapAll(verr)

			out := cmd.OutOrStdout()
			if a.output != formatTable {
				msgs := make([]string, 0, len(problems))
				for _, p := range problems {
					msgs = append(msgs, p.Error())
				}
				if err := encode(out, a.output, map[string]any{"personas": reg.Len(), "problems": msgs}); err != nil {
					return err
				}
			} else {
				for _, p := range problems {
					fmt.Fprintln(out, p)
				}
				if len(problems) == 0 {
					fmt.Fprintf(out, "%d personas OK\n", reg.Len())
				}
			}
			if verr != nil {
				return fmt.Errorf("%d problem(s) in %d personas", len(problems), reg.Len())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "validate the persona tree under this directory instead of the merged catalog")
	return cmd
}

// unwrapAll flattens an errors.Join tree into its leaves.
func unwrapAll(err error) []error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, unwrapAll(e)...)
		}
		return out
	}
	return []error{err}
}

func newExportCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the merged catalog as a JSON or YAML document",
		Long: `Export writes every persona as one versioned document. Without --file the
document goes to stdout in the --output format (json when table is selected).
With --file the format follows the file extension and the file is replaced
atomically under a lock.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}

			if file == "" {
				format := a.output
				if format == formatTable {
					format = persona.FormatJSON
				}
				return persona.Export(reg, format, cmd.OutOrStdout())
			}

			var buf bytes.Buffer
			if err := persona.Export(reg, persona.FormatFromPath(file), &buf); err != nil {
				return err
			}
			if err := persona.WriteFileLocked(file, buf.Bytes(), 0o644); err != nil {
				return err
			}
			a.logger.Info("exported personas", zap.String("file", file), zap.Int("personas", reg.Len()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "write to this file instead of stdout")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import SRC DST",
		Short: "Import persona definitions into a directory tree",
		Long: `Import normalizes foreign persona definitions and writes them as
DST/<category>/<name>.md. SRC is either a directory of Markdown subagent files
laid out as <category>/<name>.md, or a JSON/YAML document produced by export.
Definitions that fail validation are skipped and reported.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			info, err := os.Stat(src)
			if err != nil {
				return err
			}

			var summary *persona.ImportSummary
			if info.IsDir() {
				summary, err = persona.ImportTree(src, dst, a.logger)
			} else {
				summary, err = importDocument(src, dst, a.logger)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.output != formatTable {
				return encode(out, a.output, summary)
			}
			fmt.Fprintf(out, "imported %d personas into %s\n", len(summary.Imported), dst)
			t := newTable("CATEGORY", "PERSONAS")
			for _, c := range sortedKeys(summary.Categories) {
				t.addRow(c, fmt.Sprint(summary.Categories[c]))
			}
			if err := t.render(out); err != nil {
				return err
			}
			for _, name := range sortedKeys(summary.Skipped) {
				fmt.Fprintf(out, "skipped %s: %s\n", name, summary.Skipped[name])
			}
			return nil
		},
	}
	return cmd
}

// importDocument writes the personas of an exported document as Markdown
// files under dst.
func importDocument(path, dst string, log *zap.Logger) (*persona.ImportSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	defs, err := persona.ImportDocument(f, persona.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return persona.WriteTree(defs, dst, log)
}

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload personas whenever the persona directories change",
		Long: `Watch loads the catalog, then watches the user and project persona
directories and reloads on every Markdown change, reporting what changed.
It runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.embeddedOnly {
				return errors.New("watch needs persona directories; drop --embedded-only")
			}
			out := cmd.OutOrStdout()

			var prev *persona.Registry
			store, err := a.openStore(func(reg *persona.Registry) {
				if prev != nil {
					added, removed := diffNames(prev, reg)
					fmt.Fprintf(out, "%s reloaded: %d personas (+%d -%d)\n",
						time.Now().Format(time.TimeOnly), reg.Len(), len(added), len(removed))
					if len(added) > 0 {
						fmt.Fprintf(out, "  added: %s\n", strings.Join(added, ", "))
					}
					if len(removed) > 0 {
						fmt.Fprintf(out, "  removed: %s\n", strings.Join(removed, ", "))
					}
					if err := persona.Validate(reg); err != nil {
						fmt.Fprintf(out, "  %d validation problem(s); run personas validate\n", len(unwrapAll(err)))
					}
				}
				prev = reg
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "watching %s (%d personas)\n", strings.Join(nonEmpty(a.cfg.UserDir, a.cfg.ProjectDir), ", "), store.Registry().Len())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := store.Watch(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	return cmd
}

// diffNames reports persona names present only in next (added) and only in
// prev (removed).
func diffNames(prev, next *persona.Registry) (added, removed []string) {
	for _, name := range next.Names() {
		if !prev.Has(name) {
			added = append(added, name)
		}
	}
	for _, name := range prev.Names() {
		if !next.Has(name) {
			removed = append(removed, name)
		}
	}
	return added, removed
}

func nonEmpty(ss ...string) []string {
	var out []string
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
