package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "a11yscan"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage a11yscan configuration.

Running bare 'a11yscan config' is the same as 'a11yscan config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# a11yscan configuration
# See: a11yscan config show (for effective values and sources)

# SQLite database path (default: ~/.config/a11yscan/a11yscan.db)
# db_path: {{ .DBPath }}

# Browser rendering
render:
  # DevTools HTTP endpoint of an already-running browser
  # (launch with: chromium --headless --remote-debugging-port=9222)
  debugger_url: "{{ .DebuggerURL }}"

  # Per-page navigation timeout
  nav_timeout: "{{ .NavTimeout }}"

# Scan pipeline
scan:
  # Concurrent page scans; each worker drives its own browser tab
  workers: {{ .Workers }}

  # Ruleset identifier passed to the external linter
  standard: "{{ .Standard }}"

  # Also warn about keyboard handlers on elements without an
  # interactive role (noisier, but catches div-buttons early)
  strict_focus: {{ .StrictFocus }}

# Audit scoring
audit:
  # Target conformance level: A, AA, AAA
  level: "{{ .Level }}"

  # What page scan errors mean for unevidenced criteria:
  # strict = any errored page degrades them to NOT RUN
  # lenient = NOT RUN only when no page scanned at all
  not_run_policy: "{{ .NotRunPolicy }}"

# External linter
linter:
  enabled: {{ .LinterEnabled }}
  command: "{{ .LinterCommand }}"
  timeout: "{{ .LinterTimeout }}"
`

type configTemplateData struct {
	DBPath        string
	DebuggerURL   string
	NavTimeout    string
	Workers       int
	Standard      string
	StrictFocus   bool
	Level         string
	NotRunPolicy  string
	LinterEnabled bool
	LinterCommand string
	LinterTimeout string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		DBPath:        viper.GetString("db_path"),
		DebuggerURL:   viper.GetString("render.debugger_url"),
		NavTimeout:    viper.GetString("render.nav_timeout"),
		Workers:       viper.GetInt("scan.workers"),
		Standard:      viper.GetString("scan.standard"),
		StrictFocus:   viper.GetBool("scan.strict_focus"),
		Level:         viper.GetString("audit.level"),
		NotRunPolicy:  viper.GetString("audit.not_run_policy"),
		LinterEnabled: viper.GetBool("linter.enabled"),
		LinterCommand: viper.GetString("linter.command"),
		LinterTimeout: viper.GetString("linter.timeout"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
}

var configKeys = []configKeyInfo{
	{Key: "db_path", EnvVar: "A11YSCAN_DB_PATH"},
	{Key: "render.debugger_url", EnvVar: "A11YSCAN_RENDER_DEBUGGER_URL"},
	{Key: "render.nav_timeout", EnvVar: "A11YSCAN_RENDER_NAV_TIMEOUT"},
	{Key: "scan.workers", EnvVar: "A11YSCAN_SCAN_WORKERS"},
	{Key: "scan.standard", EnvVar: "A11YSCAN_SCAN_STANDARD"},
	{Key: "scan.strict_focus", EnvVar: "A11YSCAN_SCAN_STRICT_FOCUS"},
	{Key: "audit.level", EnvVar: "A11YSCAN_AUDIT_LEVEL"},
	{Key: "audit.not_run_policy", EnvVar: "A11YSCAN_AUDIT_NOT_RUN_POLICY"},
	{Key: "linter.enabled", EnvVar: "A11YSCAN_LINTER_ENABLED"},
	{Key: "linter.command", EnvVar: "A11YSCAN_LINTER_COMMAND"},
	{Key: "linter.timeout", EnvVar: "A11YSCAN_LINTER_TIMEOUT"},
	{Key: "anthropic.model", EnvVar: "A11YSCAN_ANTHROPIC_MODEL"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-24s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set — set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'a11yscan config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
