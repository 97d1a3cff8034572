package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/sagarc03/cardfs/clientcli"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage server profiles",
	Long: `Manage server profiles in the configuration file.

A profile names one card server: its endpoint, the mount root it serves
paths under, and the timeout for short requests. Switch between profiles
with --profile or CARDFS_PROFILE.

Configuration is stored in ~/.cardfs/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	Long: `List all profiles configured in the config file.

The default profile is marked with an asterisk (*).`,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a profile",
	Long: `Add a profile, or update one with the same name.

Values given as flags are not prompted for. With --yes nothing is
prompted: missing values take their defaults and an unreachable server
does not stop the profile from being saved.

Before saving, the server is asked for a shallow listing and the paths it
returns are checked against the mount root.

Examples:
  cardfs-cli configure add cam
  cardfs-cli configure add deck -e http://192.168.4.1 --mount-root /card --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile details",
	Long: `Show details for a profile.

If no name is provided, shows the default profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

var (
	addTimeout time.Duration
	addDefault bool
	addYes     bool
)

func init() {
	configureAddCmd.Flags().DurationVar(&addTimeout, "timeout", 0, "timeout for list, delete and mkdir requests (default: 30s)")
	configureAddCmd.Flags().BoolVar(&addDefault, "default", false, "make this the default profile")
	configureAddCmd.Flags().BoolVarP(&addYes, "yes", "y", false, "do not prompt")

	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureAddCmd)
	configureCmd.AddCommand(configureRemoveCmd)
	configureCmd.AddCommand(configureSetDefaultCmd)
	configureCmd.AddCommand(configureShowCmd)
}

// loadProfiles reads the profile file. A missing file is an empty one when
// allowMissing is set.
func loadProfiles(allowMissing bool) (*clientcli.ConfigFile, error) {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	if err == nil {
		return cfg, nil
	}
	if allowMissing && errors.Is(err, os.ErrNotExist) {
		return &clientcli.ConfigFile{}, nil
	}
	return nil, fmt.Errorf("load config: %w", err)
}

func saveProfiles(cfg *clientcli.ConfigFile) error {
	if err := cfg.Save(getConfigPath()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	cfg, err := loadProfiles(true)
	if err != nil {
		return err
	}

	if len(cfg.Profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("Run 'cardfs-cli configure add <name>' to create one.")
		return nil
	}

	def, err := cfg.GetDefaultProfile()
	if err != nil {
		return err
	}
	return getFormatter().FormatProfileList(os.Stdout, cfg.Profiles, def.Name)
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadProfiles(true)
	if err != nil {
		return err
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil && !addYes {
		if !confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)) {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	p := clientcli.Profile{Name: name}
	if existing != nil {
		p = *existing
	}

	p.Endpoint, err = ask(cmd, "endpoint", endpoint, "Endpoint URL", valueOr(p.Endpoint, clientcli.DefaultEndpoint),
		func(s string) error { return (&clientcli.Config{Endpoint: s}).Validate() })
	if err != nil {
		return handlePromptError(err)
	}
	p.Endpoint = strings.TrimSuffix(p.Endpoint, "/")

	p.MountRoot, err = ask(cmd, "mount-root", mountRoot, "Mount root", valueOr(p.MountRoot, clientcli.DefaultMountRoot),
		func(s string) error { return (&clientcli.Config{MountRoot: s}).Validate() })
	if err != nil {
		return handlePromptError(err)
	}

	timeout, err := ask(cmd, "timeout", addTimeout.String(), "Request timeout", durationOr(p.Timeout, clientcli.DefaultTimeout),
		func(s string) error {
			d, parseErr := time.ParseDuration(s)
			if parseErr != nil {
				return parseErr
			}
			return (&clientcli.Config{Timeout: d}).Validate()
		})
	if err != nil {
		return handlePromptError(err)
	}
	if p.Timeout, err = time.ParseDuration(timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	// the default is not worth writing to the file
	if p.Timeout == clientcli.DefaultTimeout {
		p.Timeout = 0
	}
	if p.MountRoot == clientcli.DefaultMountRoot {
		p.MountRoot = ""
	}

	makeDefault := len(cfg.Profiles) == 0 || addDefault ||
		(existing != nil && existing.Default)
	if !makeDefault && !addYes && !cmd.Flags().Changed("default") {
		makeDefault = confirm("Set as default profile")
	}

	fmt.Print("Testing connection... ")
	if connErr := testServerConnection(&p); connErr != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: %v\n", connErr)
		if !addYes && !confirm("Save profile anyway") {
			fmt.Println("Cancelled.")
			return nil
		}
	} else {
		fmt.Println("OK")
	}

	if existing != nil {
		err = cfg.UpdateProfile(p)
	} else {
		err = cfg.AddProfile(p)
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if makeDefault {
		if err := cfg.SetDefault(name); err != nil {
			return err
		}
	}

	if err := saveProfiles(cfg); err != nil {
		return err
	}

	verb := "added"
	if existing != nil {
		verb = "updated"
	}
	fmt.Printf("Profile '%s' %s.\n", name, verb)
	if makeDefault {
		fmt.Println("Set as default profile.")
	}
	return nil
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}
	if _, err = cfg.GetProfile(name); err != nil {
		return err
	}

	if !confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}
	if err := saveProfiles(cfg); err != nil {
		return err
	}

	fmt.Printf("Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}
	if err := cfg.SetDefault(name); err != nil {
		return err
	}
	if err := saveProfiles(cfg); err != nil {
		return err
	}

	fmt.Printf("Default profile set to '%s'.\n", name)
	return nil
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}
	def, err := cfg.GetDefaultProfile()
	if err != nil {
		return err
	}

	return getFormatter().FormatProfileShow(os.Stdout, *p, p.Name == def.Name)
}

// ask returns the flag value when the flag was set, the default under
// --yes, and otherwise prompts for it.
func ask(cmd *cobra.Command, flag, value, label, def string, validate promptui.ValidateFunc) (string, error) {
	if cmd.Flags().Changed(flag) {
		if err := validate(value); err != nil {
			return "", fmt.Errorf("--%s: %w", flag, err)
		}
		return value, nil
	}
	if addYes {
		return def, nil
	}

	prompt := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	return prompt.Run()
}

func confirm(label string) bool {
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := prompt.Run()
	return err == nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func durationOr(d, def time.Duration) string {
	if d == 0 {
		return def.String()
	}
	return d.String()
}

// testServerConnection asks the server for a shallow listing and checks
// that the paths it returns sit under the profile's mount root.
func testServerConnection(p *clientcli.Profile) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := clientcli.New(clientcli.ConfigFromProfile(p), clientcli.WithTimeout(5*time.Second))
	if err != nil {
		return err
	}

	result, err := client.List(ctx, clientcli.ListOptions{Depth: 0})
	if err != nil {
		return fmt.Errorf("could not reach server: %w", err)
	}
	for _, n := range result.Nodes {
		if !strings.HasPrefix(n.Path, client.MountRoot()+"/") {
			return fmt.Errorf("server lists %s, which is outside mount root %s", n.Path, client.MountRoot())
		}
	}
	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
