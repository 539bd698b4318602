// diagnose は推論エンジンをコマンドラインから使うためのツールです。
//
// Usage:
//
//	diagnose symptoms
//	diagnose rules
//	diagnose run Q2 Q8 [--json]
//	diagnose check
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	config "machine-diagnosis-api/configs"
	"machine-diagnosis-api/pkg/inference"
	"machine-diagnosis-api/pkg/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootOptions struct {
	knowledgeBase string
	catalog       string
	partialMatch  bool
	policy        inference.MatchPolicy
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &rootOptions{policy: cfg.MatchPolicy()}

	root := &cobra.Command{
		Use:   "diagnose",
		Short: "Rule-based fault diagnosis for rotating machinery",
		Long:  "diagnose runs the forward-chaining certainty-factor engine\nagainst a knowledge base and diagnosis catalog.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		Version:      version,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.knowledgeBase, "kb", cfg.KnowledgeBasePath, "Knowledge base file (.json, .yaml, .xlsx)")
	f.StringVar(&opts.catalog, "catalog", cfg.DiagnosisDataPath, "Diagnosis catalog file (.json, .yaml, .xlsx)")
	f.BoolVar(&opts.partialMatch, "partial", cfg.PartialMatch, "Allow partial matches on short rules")

	root.AddCommand(newSymptomsCmd(opts))
	root.AddCommand(newRulesCmd(opts))
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	return root
}

// loadEngine はフラグで指定されたファイルからエンジンを構築します。
func (o *rootOptions) loadEngine(ctx context.Context) (*inference.Engine, error) {
	policy := o.policy
	policy.PartialMatch = o.partialMatch

	engine, err := services.NewKnowledgeBaseService(o.knowledgeBase, o.catalog, policy).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	return engine, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	if err := newRootCmd(config.LoadConfig()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
