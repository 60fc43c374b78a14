package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/jsonform"
)

func newEncodeCmd(a *app) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "encode <form.yaml|->",
		Short: "Print the JSON body of a form descriptor",
		Long: `Print the JSON body a form descriptor submits.

Relative file paths in the descriptor are resolved against the descriptor's
directory, or the working directory when reading stdin.

Examples:
  # Encode a descriptor
  jsonform encode signup.yaml

  # Encode from stdin with indentation
  cat signup.yaml | jsonform encode --pretty -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := decodeForm(cmd, args[0])
			if err != nil {
				return err
			}
			if !form.Matches() {
				a.logger.Warn("form is not marked for JSON submission")
			}

			var buf bytes.Buffer
			if err := jsonform.NewEncoder(&buf, a.options()...).Encode(cmd.Context(), form); err != nil {
				return err
			}
			return writeBody(cmd.OutOrStdout(), buf.Bytes(), pretty)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}

func decodeForm(cmd *cobra.Command, name string) (*jsonform.Form, error) {
	r, err := openInput(cmd, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	dec := jsonform.NewDecoder(r)
	if name != "-" {
		dec.BaseDir(filepath.Dir(name))
	}
	return dec.Decode()
}

func writeBody(w io.Writer, body []byte, pretty bool) error {
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err != nil {
			return fmt.Errorf("failed to indent body: %w", err)
		}
		body = buf.Bytes()
	}
	_, err := fmt.Fprintln(w, string(body))
	return err
}
