// Package devices implements the capture device listing command.
package devices

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/audiosession/internal/conf"
	"github.com/tphakala/audiosession/internal/device"
)

// Command creates the devices command, which prints the available capture
// devices with the index accepted by the capture command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List available capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := device.NewMalgoBackend()
			infos, err := backend.Enumerate()
			if err != nil {
				return fmt.Errorf("enumerating capture devices: %w", err)
			}
			if len(infos) == 0 {
				fmt.Println("no capture devices found")
				return nil
			}
			for _, info := range infos {
				marker := " "
				if info.IsDefault {
					marker = "*"
				}
				fmt.Printf("%s %3d  %s\n", marker, info.Index, info.Name)
			}
			return nil
		},
	}
	return cmd
}
