package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/jsonform"
)

func newCheckCmd(a *app) *cobra.Command {
	var changed string

	cmd := &cobra.Command{
		Use:   "check <form.yaml|->",
		Short: "Run the file size guard for a change to a file control",
		Long: `Run the file size guard as if the named file control had just been
changed to its current selection. A rejected selection is reported and the
command exits with an error.

Examples:
  # Check the upload control against the form's size limit
  jsonform check upload.yaml --changed attachment`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := decodeForm(cmd, args[0])
			if err != nil {
				return err
			}
			control, ok := form.Control(changed)
			if !ok {
				return fmt.Errorf("no control named %q", changed)
			}

			var rejected *jsonform.FileSizeExceeded
			guard := jsonform.NewSizeGuard(jsonform.EmitterFunc(func(_ *jsonform.Form, _ string, detail interface{}) {
				if d, ok := detail.(jsonform.FileSizeExceeded); ok {
					rejected = &d
				}
			}), a.options()...)

			if guard.Check(form, control) {
				fmt.Fprintf(cmd.OutOrStdout(), "ok: %s within limit of %d bytes\n", changed, guard.Limit(form))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s selection of %d bytes exceeds limit of %d bytes\n",
				jsonform.EventFileSizeExceeded, changed, rejected.TotalSize, rejected.MaxSize)
			return fmt.Errorf("selection of %q rejected", changed)
		},
	}
	cmd.Flags().StringVar(&changed, "changed", "", "name of the changed file control")
	_ = cmd.MarkFlagRequired("changed")
	return cmd
}
