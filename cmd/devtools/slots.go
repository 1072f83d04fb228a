package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/1siamBot/scenekit/engine/core"
	"github.com/1siamBot/scenekit/engine/savedata"
)

func newSlotsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List, show and delete save slots",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the slots in the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(store savedata.Store, codec savedata.Codec) error {
				return listSlots(cmd, store, codec)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <slot>",
		Short: "Print the containers stored in a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			return withStore(opts, func(store savedata.Store, codec savedata.Codec) error {
				return showSlot(cmd, store, codec, slot)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <slot>",
		Short: "Delete a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			return withStore(opts, func(store savedata.Store, _ savedata.Codec) error {
				if err := store.Delete(cmd.Context(), slot); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("Deleted slot %d", slot)))
				return nil
			})
		},
	})
	return cmd
}

func parseSlot(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("slot must be a number, got %q", s)
	}
	return n, nil
}

func withStore(opts *rootOptions, fn func(savedata.Store, savedata.Codec) error) error {
	codec, err := savedata.CodecByName(opts.cfg.Save.Codec)
	if err != nil {
		return err
	}
	store, err := core.OpenStore(opts.cfg, codec)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store, codec)
}

func listSlots(cmd *cobra.Command, store savedata.Store, codec savedata.Codec) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	slots, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(out, warnStyle.Render("No save slots"))
		return nil
	}

	fmt.Fprintln(out, headerStyle.Render(column("SLOT", 8)+column("CONTAINERS", 14)+"BYTES"))
	for _, n := range slots {
		data, err := store.Read(ctx, n)
		if err != nil {
			return err
		}
		containers := "corrupt"
		if s, err := codec.Decode(data); err == nil {
			containers = strconv.Itoa(s.Len())
		}
		fmt.Fprintln(out, column(strconv.Itoa(n), 8)+column(containers, 14)+strconv.Itoa(len(data)))
	}
	return nil
}

func showSlot(cmd *cobra.Command, store savedata.Store, codec savedata.Codec, n int) error {
	out := cmd.OutOrStdout()
	data, err := store.Read(cmd.Context(), n)
	if err != nil {
		return err
	}
	s, err := codec.Decode(data)
	if err != nil {
		return fmt.Errorf("%w %d: %w", savedata.ErrCorruptSlot, n, err)
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Slot %d", n))+" "+
		labelStyle.Render(fmt.Sprintf("(%d containers, %s)", s.Len(), codec.Name())))
	for _, id := range s.IDs() {
		e, _ := s.Get(id)
		fmt.Fprintln(out, headerStyle.Render(id)+" "+labelStyle.Render(e.Type))
		v, err := e.Data()
		if err != nil {
			fmt.Fprintln(out, dataStyle.Render(warnStyle.Render("unreadable: "+err.Error())))
			continue
		}
		pretty, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, dataStyle.Render(string(pretty)))
	}
	return nil
}
