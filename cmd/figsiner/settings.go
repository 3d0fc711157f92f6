package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"figsiner/internal/config"
	"figsiner/internal/llm"
	"figsiner/internal/studio"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show, change or verify the model settings",
}

var newSettings config.Settings

func init() {
	f := settingsSetCmd.Flags()
	f.StringVar(&newSettings.Provider, "provider", "", "Model provider (openai|gemini)")
	f.StringVar(&newSettings.Host, "host", "", "Model host base URL")
	f.StringVar(&newSettings.APIKey, "key", "", "API key")
	f.StringVar(&newSettings.Model, "model", "", "Model id")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsVerifyCmd)
}

func currentSettings(ctx context.Context, ws *workspace) config.Settings {
	s, err := studio.ResolveSettings(ctx, ws.cfg.Model, ws.store)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	return s
}

func maskKey(k string) string {
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return strings.Repeat("*", len(k)-4) + k[len(k)-4:]
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective model settings",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ws := mustWorkspace(ctx)
		defer ws.Close()

		s := currentSettings(ctx, ws)
		fmt.Printf("provider: %s\nhost:     %s\nmodel:    %s\napi key:  %s\n", s.Provider, s.Host, s.Model, maskKey(s.APIKey))
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save model settings to the workspace",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ws := mustWorkspace(ctx)
		defer ws.Close()

		saved, _, err := ws.store.LoadSettings(ctx)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		if err := ws.store.SaveSettings(ctx, saved.Merge(newSettings)); err != nil {
			log.Fatalf("Failed to save settings: %v", err)
		}
		fmt.Println("💾 Settings saved.")
	},
}

var settingsVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the host answers and serves the configured model",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ws := mustWorkspace(ctx)
		defer ws.Close()

		s := currentSettings(ctx, ws)
		client, err := llm.NewClient(ctx, llm.Options{Provider: s.Provider, Host: s.Host, APIKey: s.APIKey, Model: s.Model})
		if err != nil {
			log.Fatalf("Failed to create client: %v", err)
		}
		fmt.Printf("🔍 Verifying %s at %s...\n", s.Model, s.Host)
		models, err := llm.Verify(ctx, client, s.Model)
		if err != nil {
			if len(models) > 0 {
				fmt.Printf("Available models: %s\n", strings.Join(models, ", "))
			}
			log.Fatalf("Verification failed: %v", err)
		}
		fmt.Printf("✅ Connected. %d models available.\n", len(models))
	},
}
