package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Proteobench/Proteobench/internal/publish"
)

func publishCmd(a *app) *cobra.Command {
	var (
		file   string
		title  string
		body   string
		branch string
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Open a pull request adding a results file to the results repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			cfg := publish.FromConfig(a.cfg.Publish)
			if cfg.CloneDir == "" {
				cfg.CloneDir = filepath.Join(os.TempDir(), "proteobench-results-"+uuid.NewString())
			}
			if cfg.CloneDirPR == "" {
				cfg.CloneDirPR = filepath.Join(os.TempDir(), "proteobench-results-pr-"+uuid.NewString())
			}
			if branch == "" {
				branch = "submission-" + time.Now().UTC().Format("20060102-150405")
			}

			n, err := publish.New(cfg, a.logger).Submit(cmd.Context(), publish.Submission{
				Branch:   branch,
				FileName: filepath.Base(file),
				Data:     data,
				Title:    title,
				Body:     body,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "opened pull request #%d\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Results file to submit")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Pull request title and commit subject")
	cmd.Flags().StringVar(&body, "body", "", "Pull request body")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch name; timestamped when empty")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
