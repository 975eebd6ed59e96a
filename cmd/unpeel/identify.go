package main

import (
	"github.com/spf13/cobra"
)

func newIdentifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "identify <file.png>",
		Short: "Report PNG metadata and chunks without writing an output image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.log.Sync()

			in, err := s.inspect(cmd.OutOrStdout(), args[0])
			if err != nil {
				return err
			}
			return s.finish(cmd.OutOrStdout(), in)
		},
	}
}
