package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/visualink/studio/internal/gallery"
	"github.com/visualink/studio/internal/media"
	"github.com/visualink/studio/internal/upload"
)

// mediaFlags control preprocessing before upload.
type mediaFlags struct {
	start        float64
	end          float64
	profile      string
	skipOptimize bool
}

func (f *mediaFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.start, "start", 0, "trim start in seconds (video only)")
	cmd.Flags().Float64Var(&f.end, "end", 0, "trim end in seconds, 0 for the end of the clip (video only)")
	cmd.Flags().StringVar(&f.profile, "profile", media.ProfileOriginal, "transcode profile (original, balanced, compressed, or one from --profiles)")
	cmd.Flags().BoolVar(&f.skipOptimize, "skip-optimize", false, "upload the file as-is")
}

func (f mediaFlags) trim() media.TrimRange {
	return media.TrimRange{
		Start: time.Duration(f.start * float64(time.Second)),
		End:   time.Duration(f.end * float64(time.Second)),
	}
}

func newPublishCommand(a *app) *cobra.Command {
	var (
		mf       mediaFlags
		title    string
		category string
	)
	cmd := &cobra.Command{
		Use:   "publish FILE",
		Short: "Preprocess, upload and add a file to the gallery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ticket, err := a.stage(ctx, cmd.ErrOrStderr(), args[0], mf)
			if err != nil {
				return err
			}
			it, err := a.api.CreateItem(ctx, gallery.CreateRequest{URL: ticket.PublicURL, Title: title, Category: category})
			if err != nil {
				// The object is uploaded but unrecorded; surface its URL so it can be recorded by hand.
				a.log.Error("upload succeeded but gallery record failed", slog.String("url", ticket.PublicURL))
				return err
			}
			printItem(cmd.OutOrStdout(), *it)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "item title")
	cmd.Flags().StringVar(&category, "category", "", "item category (default: "+gallery.DefaultCategory+")")
	mf.register(cmd)
	return cmd
}

func newReplaceCommand(a *app) *cobra.Command {
	var (
		mf       mediaFlags
		oldURL   string
		title    string
		category string
	)
	cmd := &cobra.Command{
		Use:   "replace ID FILE",
		Short: "Upload a new file for an existing gallery item and remove the old one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ticket, err := a.stage(ctx, cmd.ErrOrStderr(), args[1], mf)
			if err != nil {
				return err
			}

			req := gallery.UpdateRequest{ID: id, URL: &ticket.PublicURL, OldURL: oldURL}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("category") {
				req.Category = &category
			}
			it, err := a.api.UpdateItem(ctx, req)
			if err != nil {
				a.log.Error("upload succeeded but gallery update failed", slog.String("url", ticket.PublicURL))
				return err
			}
			printItem(cmd.OutOrStdout(), *it)
			return nil
		},
	}
	cmd.Flags().StringVar(&oldURL, "old-url", "", "URL being replaced (default: the item's stored URL)")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	mf.register(cmd)
	return cmd
}

// stage preprocesses path when it is a video, requests a ticket and uploads
// the bytes. Nothing is recorded, so a cancelled stage needs no cleanup.
func (a *app) stage(ctx context.Context, progressOut io.Writer, path string, mf mediaFlags) (*upload.Ticket, error) {
	src, err := media.OpenFile(path)
	if err != nil {
		return nil, err
	}

	file := src
	if !mf.skipOptimize && upload.IsVideo(src.ContentType) {
		profile, ok := a.profiles.Get(mf.profile)
		if !ok {
			return nil, fmt.Errorf("unknown profile %q (have %s)", mf.profile, strings.Join(a.profiles.Names(), ", "))
		}
		file, err = a.pre.PreprocessOrOriginal(ctx, src, mf.trim(), profile)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.log.Warn("preprocessing failed, uploading original", slog.String("error", err.Error()))
		}
		if file != src {
			defer func() {
				if err := a.pre.Discard(file); err != nil {
					a.log.Warn("remove work file", slog.String("path", file.Path), slog.String("error", err.Error()))
				}
			}()
		}
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ticket, err := a.api.RequestTicket(ctx, file.Name, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("request upload ticket: %w", err)
	}
	a.log.Debug("ticket issued", slog.String("key", ticket.ObjectKey), slog.Time("expires_at", ticket.ExpiresAt))

	if err := a.uploader.Put(ctx, ticket, f, file.Size, newProgress(progressOut, file.Name)); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		return nil, err
	}
	fmt.Fprintln(progressOut)
	return ticket, nil
}

// newProgress prints whole-percent updates on a single line.
func newProgress(w io.Writer, name string) func(sent, total int64) {
	last := -1
	return func(sent, total int64) {
		if total <= 0 {
			return
		}
		pct := int(sent * 100 / total)
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(w, "\ruploading %s %3d%%", name, pct)
	}
}
