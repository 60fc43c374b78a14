package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/jsonform"
)

func newQueryCmd(a *app) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "query <urlencoded|->",
		Short: "Re-shape urlencoded form data into a JSON body",
		Long: `Re-shape application/x-www-form-urlencoded data into the JSON body the same
fields would submit from a JSON form. Pair order is preserved.

Examples:
  jsonform query 'user[name]=jane&tags[]=a&tags[]=b'
  printf 'a=1&a=2' | jsonform query -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := args[0]
			if data == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				data = strings.TrimSpace(string(b))
			}

			form, err := jsonform.ParseQuery([]byte(data))
			if err != nil {
				return err
			}
			body, err := jsonform.NewBuilder(a.options()...).Marshal(cmd.Context(), form)
			if err != nil {
				return err
			}
			return writeBody(cmd.OutOrStdout(), body, pretty)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}
