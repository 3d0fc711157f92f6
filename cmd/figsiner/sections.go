package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"figsiner/internal/bridge"
	"figsiner/internal/llm"
	"figsiner/internal/section"
	"figsiner/internal/studio"

	"github.com/spf13/cobra"
)

var (
	intoFrames []string
	fromFile   string
	serveAddr  string
)

func init() {
	generateCmd.Flags().StringSliceVar(&intoFrames, "into", nil, "Existing frame ids to render into: desktop first, then mobile")
	generateCmd.Flags().StringVar(&fromFile, "from", "", "Render a generation envelope from a file instead of asking the model")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides the config")
}

func printSkips(skipped []section.Skip) {
	for _, s := range skipped {
		fmt.Printf("  ⚠️  op %d (%s) skipped: %v\n", s.Index, s.Op, s.Reason)
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate [brief]",
	Short: "Generate a section from a natural-language brief",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ws := mustWorkspace(ctx)
		defer ws.Close()

		var (
			res *studio.GenerateResult
			err error
		)
		start := time.Now()
		switch {
		case fromFile != "":
			b, rerr := os.ReadFile(fromFile)
			if rerr != nil {
				log.Fatalf("Failed to read %s: %v", fromFile, rerr)
			}
			resp, derr := llm.DecodeSection(string(b))
			if derr != nil {
				log.Fatalf("Invalid section envelope: %v", derr)
			}
			fmt.Println("🎨 Rendering section...")
			res, err = ws.studio.Render(ctx, resp, intoFrames)
		case len(args) == 1 && strings.TrimSpace(args[0]) != "":
			fmt.Println("🧠 Asking the model for a section...")
			res, err = ws.studio.Generate(ctx, args[0], intoFrames)
		default:
			log.Fatalf("Provide a brief or --from a file")
		}
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		fmt.Printf("✅ Section generated in %v.\n", time.Since(start).Round(time.Millisecond))
		for _, vp := range []section.Viewport{section.ViewportDesktop, section.ViewportMobile} {
			if id, ok := res.Frames[vp]; ok {
				fmt.Printf("  -> %-7s %s\n", vp, id)
			}
		}
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <frame-id> <brief>",
	Short: "Edit a generated section with a natural-language brief",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ws := mustWorkspace(ctx)
		defer ws.Close()

		fmt.Println("🧠 Asking the model for a patch...")
		res, err := ws.studio.Edit(ctx, args[0], args[1])
		if err != nil {
			log.Fatalf("Edit failed: %v", err)
		}
		fmt.Printf("✅ Patch applied: %d operations.\n", res.Applied)
		printSkips(res.Skipped)
	},
}

var patchCmd = &cobra.Command{
	Use:   "patch <frame-id> <patch.json>",
	Short: "Apply a patch envelope file to a section without the model",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ws := mustWorkspace(ctx)
		defer ws.Close()

		b, err := os.ReadFile(args[1])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", args[1], err)
		}
		patch, err := llm.DecodePatch(string(b))
		if err != nil {
			log.Fatalf("Invalid patch envelope: %v", err)
		}
		res, err := ws.studio.ApplyPatch(ctx, args[0], patch, "patch "+args[1])
		if err != nil {
			log.Fatalf("Patch failed: %v", err)
		}
		fmt.Printf("✅ Patch applied: %d operations.\n", res.Applied)
		printSkips(res.Skipped)
	},
}

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "List the frames stored in the workspace",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ws := mustWorkspace(ctx)
		defer ws.Close()

		frames, err := ws.store.ListFrames(ctx)
		if err != nil {
			log.Fatalf("Failed to list frames: %v", err)
		}
		if len(frames) == 0 {
			fmt.Println("No frames yet. Run 'figsiner generate' first.")
			return
		}
		for _, f := range frames {
			vp := f.Viewport
			if vp == "" {
				vp = "-"
			}
			fmt.Printf("%s  %-7s  %s  (%s)\n", f.ID, vp, f.Name, f.UpdatedAt.Local().Format(time.DateTime))
		}
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <frame-id>",
	Short: "Show the edits applied to a frame",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ws := mustWorkspace(ctx)
		defer ws.Close()

		edits, err := ws.store.ListEdits(ctx, args[0])
		if err != nil {
			log.Fatalf("Failed to list edits: %v", err)
		}
		for _, e := range edits {
			fmt.Printf("#%d %s  applied=%d skipped=%d  %s\n", e.ID, e.CreatedAt.Local().Format(time.DateTime), e.Applied, e.Skipped, e.Brief)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the plugin UI message protocol over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ws := mustWorkspace(ctx)
		defer ws.Close()

		addr := ws.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           bridge.New(ws.studio, ws.store, bridge.WithBaseSettings(ws.cfg.Model)).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Printf("🚀 Listening on http://%s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
		fmt.Println("👋 Server stopped.")
	},
}
