package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"badgeclock/internal/codec"
	"badgeclock/internal/config"
	"badgeclock/internal/handler"
	"badgeclock/internal/watcher"

	"github.com/spf13/cobra"
)

const defaultServerURL = "http://127.0.0.1:8080"

var httpClientFactory = func() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <card-uid>",
		Short: "Submit a badge scan to a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			result, err := postScan(server, args[0])
			if err != nil {
				return err
			}
			fmt.Println(string(result))
			return nil
		},
	}
	cmd.Flags().String("server", defaultServerURL, "badgeclock server base URL")
	return cmd
}

// postScan sends a scan to server and returns the raw result body
func postScan(server, cardUID string) ([]byte, error) {
	body, err := json.Marshal(handler.ScanRequest{CardUID: cardUID})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := httpClientFactory().Post(server+"/api/scans", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("submit scan: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var payload handler.ErrorResponse
		if err := json.Unmarshal(data, &payload); err != nil || payload.Error == "" {
			return nil, fmt.Errorf("status %s", resp.Status)
		}
		if payload.Details != "" {
			return nil, fmt.Errorf("%s: %s", payload.Error, payload.Details)
		}
		return nil, fmt.Errorf("%s", payload.Error)
	}
	return data, nil
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <roster-file>",
		Short: "Upsert employees from a YAML or JSON roster into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := context.Background()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := watcher.LoadRoster(ctx, args[0], a.directory)
			if err != nil {
				return err
			}

			fmt.Printf("created %d, updated %d, skipped %d\n", result.Created, result.Updated, result.Skipped)
			for _, msg := range result.Errors {
				fmt.Printf("  %s\n", msg)
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the employee directory as a roster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			if output != "" && !cmd.Flags().Changed("format") {
				format = filepath.Ext(output)
			}
			c, err := codec.ForFormat(format)
			if err != nil {
				return err
			}

			ctx := context.Background()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			employees, err := a.directory.ListEmployees(ctx)
			if err != nil {
				return err
			}

			if output == "" {
				return c.Export(employees, os.Stdout)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := c.Export(employees, f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().String("format", "yaml", "roster format: yaml or json")
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if path == "" {
				path = "defaults"
			}
			fmt.Printf("# source: %s\n", path)
			fmt.Println(cfg.Summary())
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
