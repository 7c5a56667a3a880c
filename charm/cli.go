// ABOUTME: CLI commands for syncing settings through Charm KV
// ABOUTME: Status, manual sync, auto-sync toggle, host selection and wipe

package charm

import (
	"flag"
	"fmt"
	"sort"
)

// SettingsSyncCommand routes "settings sync <subcommand>".
func SettingsSyncCommand(args []string) error {
	if len(args) == 0 {
		return SyncStatusCommand(nil)
	}

	switch args[0] {
	case "status":
		return SyncStatusCommand(args[1:])
	case "now":
		return SyncNowCommand(args[1:])
	case "auto":
		return SetAutoSyncCommand(args[1:])
	case "host":
		return SetHostCommand(args[1:])
	case "wipe":
		return SyncWipeCommand(args[1:])
	default:
		return fmt.Errorf("unknown settings sync command: %s", args[0])
	}
}

// SyncStatusCommand shows sync configuration and which settings blobs exist.
func SyncStatusCommand(args []string) error {
	fs := flag.NewFlagSet("settings sync status", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("Settings Sync")
	fmt.Println("─────────────")
	fmt.Printf("Server:    %s\n", cfg.Host)
	fmt.Printf("Auto-sync: %v\n", cfg.AutoSync)

	c, err := GetClient()
	if err != nil {
		fmt.Println("\nStatus: KV store unavailable")
		return nil //nolint:nilerr // an unreachable store is reported, not fatal
	}

	if id, err := c.ID(); err != nil {
		fmt.Println("\nStatus: Not connected")
	} else {
		fmt.Println("\nStatus: Connected")
		fmt.Printf("ID:        %s\n", id)
	}

	keys, err := c.Keys()
	if err == nil {
		names := make([]string, 0, len(keys))
		for _, k := range keys {
			names = append(names, string(k))
		}
		sort.Strings(names)
		fmt.Printf("Keys:      %d\n", len(names))
		for _, n := range names {
			fmt.Printf("  - %s\n", n)
		}
	}

	return nil
}

// SyncNowCommand performs an immediate sync.
func SyncNowCommand(args []string) error {
	fs := flag.NewFlagSet("settings sync now", flag.ExitOnError)
	_ = fs.Parse(args)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}

	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Println("✓ Settings synced")
	return nil
}

// SetAutoSyncCommand enables or disables auto-sync.
func SetAutoSyncCommand(args []string) error {
	fs := flag.NewFlagSet("settings sync auto", flag.ExitOnError)
	enable := fs.Bool("enable", false, "Enable auto-sync")
	disable := fs.Bool("disable", false, "Disable auto-sync")
	_ = fs.Parse(args)

	if *enable == *disable {
		fmt.Println("Usage: amplify settings sync auto --enable|--disable")
		return nil
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.SetAutoSync(*enable); err != nil {
		return fmt.Errorf("failed to save auto-sync: %w", err)
	}

	if *enable {
		fmt.Println("✓ Auto-sync enabled")
	} else {
		fmt.Println("✓ Auto-sync disabled")
	}
	return nil
}

// SetHostCommand points settings sync at another charm server.
func SetHostCommand(args []string) error {
	fs := flag.NewFlagSet("settings sync host", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: amplify settings sync host <hostname>")
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.SetHost(fs.Arg(0)); err != nil {
		return fmt.Errorf("failed to save host: %w", err)
	}

	fmt.Printf("✓ Settings sync host set to %s\n", cfg.Host)
	return nil
}

// SyncWipeCommand deletes every settings blob. Rules and responder settings
// fall back to their defaults afterwards.
func SyncWipeCommand(args []string) error {
	fs := flag.NewFlagSet("settings sync wipe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm settings wipe")
	_ = fs.Parse(args)

	if !*confirm {
		fmt.Println("WARNING: This resets automation rules and responder settings to defaults!")
		fmt.Println()
		fmt.Println("To confirm, run:")
		fmt.Println("  amplify settings sync wipe --confirm")
		return nil
	}

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}

	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}

	fmt.Println("✓ Settings wiped")
	return nil
}
