package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oishikohei/pacemaker/options"
)

// engineOptions documents EngineConfig's own tunables through the same
// sink the rest of this package uses for resource-agent metadata: the
// option schema doubles as this CLI's own self-description.
func engineOptions() []*options.Option {
	defaultMaxPerNode := "1"
	return []*options.Option{
		{
			Name:             "default-max-per-node",
			Type:             "integer",
			DescriptionShort: "Default instance cap per node",
			DescriptionLong:  "Upper bound on instances of any one collective placed on a single node when the collective doesn't set its own clone-node-max.",
			DefaultValue:     &defaultMaxPerNode,
		},
		{
			Name:             "strict-availability",
			Type:             "boolean",
			DescriptionShort: "Exclude standby nodes from preferred-node stickiness",
			DescriptionLong:  "When set, an instance's current node must not be in standby to be preferred for re-placement.",
			DefaultValue:     strPtr("false"),
		},
		{
			Name:             "enable-notifications",
			Type:             "boolean",
			DescriptionShort: "Build notify/notified pseudo-actions",
			DescriptionLong:  "When set, the pseudo-action builder asks the working set's NotifyBuilder for pre/post notify pairs around start and stop.",
			DefaultValue:     strPtr("false"),
			Flags:            options.FlagAdvanced,
		},
	}
}

func strPtr(s string) *string { return &s }

type metadataFlags struct {
	format string
	all    bool
	legacy bool
}

func newMetadataCmd(root *rootFlags) *cobra.Command {
	flags := &metadataFlags{}
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Emit pacemakerctl's own option metadata (text or OCF-style XML)",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := options.ListSpec{
				Name:             "pacemakerctl",
				DescriptionShort: "Tunables accepted by the scheduler Engine",
				DescriptionLong:  "Cluster-wide defaults applied to every collective placed in a scheduling round.",
				All:              flags.all,
				Legacy:           flags.legacy,
			}
			opts := engineOptions()
			switch flags.format {
			case "xml":
				out, err := options.RenderXML(spec, opts)
				if err != nil {
					return err
				}
				os.Stdout.Write(out)
				os.Stdout.Write([]byte("\n"))
				return nil
			default:
				options.RenderText(options.NewWriterSink(os.Stdout), spec, opts)
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text or xml")
	cmd.Flags().BoolVar(&flags.all, "all", false, "include advanced and deprecated options")
	cmd.Flags().BoolVar(&flags.legacy, "legacy", false, "XML only: daemon-metadata legacy rendering")
	return cmd
}
