package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"sinacrawler/pkg/sina"
	"sinacrawler/pkg/ui"
)

// checkpointCmd represents the checkpoint command
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or reset stored checkpoints",
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show <uid>",
	Short: "Print the stored checkpoint for an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpointShow,
}

var checkpointResetCmd = &cobra.Command{
	Use:   "reset <uid>",
	Short: "Delete the stored checkpoint so the next run starts from scratch",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpointReset,
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointResetCmd)

	checkpointCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "checkpoint store: redis or file")
	checkpointCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "redis address for the checkpoint store")
	checkpointCmd.PersistentFlags().StringVar(&checkpointDir, "checkpoint-dir", "", "directory for the file checkpoint store")
}

func checkpointFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if storeBackend != "" {
		flags["store"] = storeBackend
	}
	if redisAddr != "" {
		flags["redis-addr"] = redisAddr
	}
	if checkpointDir != "" {
		flags["checkpoint-dir"] = checkpointDir
	}
	return flags
}

func runCheckpointShow(cmd *cobra.Command, args []string) error {
	uid := strings.TrimSpace(args[0])
	if !sina.IsValidUID(uid) {
		return fmt.Errorf("invalid uid %q", uid)
	}

	cfg, err := loadConfig(checkpointFlags())
	if err != nil {
		return err
	}
	repo, closeStore, err := openRepository(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	cp, err := repo.Load(cmd.Context(), uid)
	if err != nil {
		return err
	}

	ui.PrintInfo("Key", repo.Key(uid))
	fmt.Fprintln(cmd.OutOrStdout(), cp.MarshalIndent())
	return nil
}

func runCheckpointReset(cmd *cobra.Command, args []string) error {
	uid := strings.TrimSpace(args[0])
	if !sina.IsValidUID(uid) {
		return fmt.Errorf("invalid uid %q", uid)
	}

	cfg, err := loadConfig(checkpointFlags())
	if err != nil {
		return err
	}
	repo, closeStore, err := openRepository(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := repo.Reset(cmd.Context(), uid); err != nil {
		return err
	}
	ui.PrintSuccess("Checkpoint removed: " + repo.Key(uid))
	return nil
}
