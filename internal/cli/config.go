package cli

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/spanruler/pkg/config"
	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "info",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := toml.NewEncoder(cmd.OutOrStdout())
			if err := enc.Encode(a.cfg); err != nil {
				return errors.Wrap(err, errors.ErrRender, "failed to encode configuration")
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "defaults",
		Short: MsgConfigDefaultsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.DefaultsContent())
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: MsgConfigPathShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(config.UserConfigDir(), "config.toml"))
			return err
		},
	})
	return cmd
}
