package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-handler/internal/codec"
	"github.com/ironsheep/image-handler/internal/picture"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List supported input codecs and output chromas",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, c := range codec.NewRegistry().Codecs() {
				kind := "encoded"
				output := "no"
				if c.IsRaw() {
					kind = "raw"
					output = "yes"
				}
				rows = append(rows, []string{string(c), kind, output})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Format", "Kind", "Output"}, rows, nil))
			return nil
		},
	}
}
