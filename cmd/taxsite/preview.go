package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/triangletax/taxsite/internal/lib/email"
	"github.com/triangletax/taxsite/internal/lib/utils"
)

const modeJSON = "json"

// newPreviewCmd creates the 'preview' command, which renders emails from
// sample data without sending anything.
func newPreviewCmd() *cobra.Command {
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Render an email with sample data",
	}

	var mode string
	contactCmd := &cobra.Command{
		Use:   "contact",
		Short: "Render the contact notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return previewContact(cmd.OutOrStdout(), mode)
		},
	}
	contactCmd.Flags().StringVar(&mode, "mode", string(email.ModeHTML), "output: html, text or json (the full provider request)")

	previewCmd.AddCommand(contactCmd)
	return previewCmd
}

func previewContact(w io.Writer, mode string) error {
	sample := email.PreviewData[email.TemplateContact]

	switch mode {
	case string(email.ModeHTML), string(email.ModeText):
		body, err := email.Render(email.Mode(mode), email.TemplateContact, email.NewContactView(sample))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, body)
		return err

	case modeJSON:
		params, err := email.BuildContactEmail(sample)
		if err != nil {
			return err
		}
		return utils.PrintJSON(w, params)

	default:
		return fmt.Errorf("unknown mode %q: want html, text or json", mode)
	}
}
