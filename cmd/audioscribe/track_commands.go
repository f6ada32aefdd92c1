package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"audioscribe/internal/catalog"
	"audioscribe/internal/config"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(cfg *config.Config, tracks *catalog.Store) error {
				found, err := tracks.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printTracks(cmd, found, asJSON)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum tracks to list (0 means all)")
	addJSONFlag(cmd, &asJSON)
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search tracks by title or artist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(cfg *config.Config, tracks *catalog.Store) error {
				found, err := tracks.Search(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				return printTracks(cmd, found, asJSON)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum tracks to list (0 means all)")
	addJSONFlag(cmd, &asJSON)
	return cmd
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var title string
	var artist string

	cmd := &cobra.Command{
		Use:   "edit TRACK_ID",
		Short: "Edit a track's title or artist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := catalog.Update{}
			if cmd.Flags().Changed("title") {
				update.Title = &title
			}
			if cmd.Flags().Changed("artist") {
				update.Artist = &artist
			}
			if update.Title == nil && update.Artist == nil {
				return fmt.Errorf("nothing to change; pass --title or --artist")
			}

			return ctx.withCatalog(func(cfg *config.Config, tracks *catalog.Store) error {
				updated, err := tracks.Update(cmd.Context(), args[0], update)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s\n", shortID(updated.ID), trackLabel(updated))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New track title")
	cmd.Flags().StringVar(&artist, "artist", "", "New track artist (empty clears it)")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var hard bool

	cmd := &cobra.Command{
		Use:   "delete TRACK_ID",
		Short: "Delete a track from the catalog",
		Long: `Delete soft-deletes a track by default so it can be purged later.
With --hard the catalog row is removed immediately. Neither variant touches
files on disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(cfg *config.Config, tracks *catalog.Store) error {
				if err := tracks.Delete(cmd.Context(), args[0], hard); err != nil {
					return err
				}
				if hard {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted track %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Soft-deleted track %s (run `audioscribe purge --confirm` to remove permanently)\n", args[0])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "Remove the catalog row immediately")
	return cmd
}

func newPurgeCommand(ctx *commandContext) *cobra.Command {
	var olderThanDays int
	var confirm bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Permanently remove soft-deleted tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(cfg *config.Config, tracks *catalog.Store) error {
				var olderThan *time.Duration
				if olderThanDays > 0 {
					cutoff := time.Duration(olderThanDays) * 24 * time.Hour
					olderThan = &cutoff
				}
				removed, err := tracks.Purge(cmd.Context(), olderThan, confirm)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d track(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&olderThanDays, "older-than-days", 0, "Only purge tracks deleted more than N days ago")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm permanent removal")
	return cmd
}

func printTracks(cmd *cobra.Command, tracks []catalog.Track, asJSON bool) error {
	if asJSON {
		if tracks == nil {
			tracks = []catalog.Track{}
		}
		return writeJSON(cmd, tracks)
	}
	if len(tracks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tracks found")
		return nil
	}

	rows := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, []string{
			shortID(track.ID),
			track.Title,
			trimmedOrDash(track.Artist),
			formatDuration(track.DurationSeconds),
			formatBitrate(track.BitrateKbps),
			yesNo(track.UploadedAt != nil),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]tableColumn{
			{header: "ID"},
			{header: "Title"},
			{header: "Artist"},
			{header: "Duration", align: alignRight},
			{header: "Bitrate", align: alignRight},
			{header: "Uploaded"},
		},
		rows,
	))
	return nil
}

func trackLabel(track catalog.Track) string {
	if track.Artist != "" {
		return fmt.Sprintf("%s - %s", track.Artist, track.Title)
	}
	return track.Title
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	total := int(seconds)
	minutes := total / 60
	secs := total % 60
	if minutes >= 60 {
		return fmt.Sprintf("%d:%02d:%02d", minutes/60, minutes%60, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

func formatBitrate(kbps int) string {
	if kbps <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d kbps", kbps)
}
