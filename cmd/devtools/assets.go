package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/1siamBot/scenekit/engine/assets"
	"github.com/1siamBot/scenekit/engine/registry"
)

func newAssetsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assets [manifest]",
		Short: "Validate an asset manifest and summarise it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.cfg.Assets.Manifest
			if len(args) == 1 {
				path = args[0]
			}
			m, err := assets.Load(path)
			if err != nil {
				return err
			}
			// building the assets catches what static validation cannot
			r := registry.New(zerolog.Nop())
			populated, err := m.Populate(r)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(path))
			section := func(name string, names []string) {
				fmt.Fprintln(out, column(labelStyle.Render(name), 14)+
					fmt.Sprintf("%-3d %s", len(names), strings.Join(names, ", ")))
			}
			var scenes, evts, items, invs []string
			for _, s := range m.Scenes {
				scenes = append(scenes, s.Name)
			}
			for _, e := range m.Events {
				evts = append(evts, e.Name+":"+e.Kind)
			}
			for _, it := range populated.Items {
				items = append(items, it.Name())
			}
			for _, inv := range populated.Inventories {
				invs = append(invs, inv.Name())
			}
			section("scenes", scenes)
			section("events", evts)
			section("items", items)
			section("inventories", invs)
			fmt.Fprintln(out, column(labelStyle.Render("bindings"), 14)+fmt.Sprintf("%d", populated.Bindings.Len()))
			fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("OK: %d assets", r.Len())))
			return nil
		},
	}
}
