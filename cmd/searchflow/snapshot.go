package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/smallnest/searchflow/config"
	"github.com/smallnest/searchflow/persist"
	"github.com/smallnest/searchflow/store"
)

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect saved search sessions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the snapshots of the configured session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withStore(cmd.Context(), a.listSnapshots)
			},
		},
		&cobra.Command{
			Use:   "show [id]",
			Short: "Print a snapshot, the latest one by default",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withStore(cmd.Context(), func(ctx context.Context, s store.SnapshotStore) error {
					id := ""
					if len(args) == 1 {
						id = args[0]
					}
					return a.showSnapshot(ctx, s, id)
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every snapshot of the configured session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withStore(cmd.Context(), func(ctx context.Context, s store.SnapshotStore) error {
					if err := s.Clear(ctx, a.cfg.Store.Session); err != nil {
						return err
					}
					fmt.Fprintf(a.stdout, "cleared session %s\n", a.cfg.Store.Session)
					return nil
				})
			},
		},
	)
	return cmd
}

func (a *app) withStore(ctx context.Context, fn func(context.Context, store.SnapshotStore) error) error {
	s, closeFn, err := config.OpenStore(ctx, a.cfg.Store)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, s)
}

func (a *app) listSnapshots(ctx context.Context, s store.SnapshotStore) error {
	list, err := s.List(ctx, a.cfg.Store.Session)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(a.stdout, "no snapshots for session %s\n", a.cfg.Store.Session)
		return nil
	}

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tID\tSAVED\tPHRASE\tSTATUS\tPROFILES")
	for _, snap := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%q\t%v\t%v\n",
			snap.Version,
			snap.ID,
			snap.Timestamp.Local().Format(time.DateTime),
			snap.Metadata["phrase"],
			snap.Metadata["status"],
			snap.Metadata["profiles"],
		)
	}
	return w.Flush()
}

func (a *app) showSnapshot(ctx context.Context, s store.SnapshotStore, id string) error {
	var snap *store.Snapshot
	var err error
	if id == "" {
		snap, err = store.Latest(ctx, s, a.cfg.Store.Session)
		if err == nil && snap == nil {
			return fmt.Errorf("%w: session %s has no snapshots", store.ErrNotFound, a.cfg.Store.Session)
		}
	} else {
		snap, err = s.Load(ctx, id)
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap.Record, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "snapshot %s v%d\n%s\n\n", snap.ID, snap.Version, data)

	vs, ok, err := persist.Deserialize(snap.Record)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprint(a.stdout, newRenderer(a.stdout).view(vs))
	}
	return nil
}
