package commands

import (
	"fmt"
	"sync"

	"github.com/flowlens/flowlens/pkg/config"
	"github.com/flowlens/flowlens/pkg/logger"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flowlens",
	Short: "A heuristic source snippet analyzer with flowcharts and step narration",
	Long: `FlowLens analyzes short source snippets without compiling or executing
them. It classifies each line against a language profile, builds a
control-flow graph, computes complexity and quality metrics, runs
heuristic detectors, and narrates the snippet as ordered execution
steps a reader can follow.

Key Features:
  • Line classification for JavaScript, Python, Java, and C snippets
  • Mermaid flowcharts of the control flow
  • Cyclomatic complexity, nesting depth, and quality scoring
  • Heuristic findings for quality, performance, and security
  • Step-by-step execution narration with variable tracking
  • LLM-backed plain-language explanations
  • MCP server exposing the analyzer to LLM applications

Example workflow:
  1. Initialize configuration:  flowlens init
  2. Analyze a snippet:         flowlens analyze fibonacci.js
  3. Render the flowchart:      flowlens flowchart fibonacci.js
  4. Walk the execution:        flowlens steps fibonacci.js --interactive

For more information, visit: https://github.com/flowlens/flowlens`,
}

var (
	initRootOnce sync.Once
	cfgFile      string
	debugLogs    bool
	quietLogs    bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Initialize configuration
	InitConfig()

	// Initialize all commands
	InitAnalyzeCommand()
	InitFlowchartCommand()
	InitStepsCommand()
	InitProfilesCommand()
	InitInitCommand()
	InitVersionCommand()
	RegisterExplainCommand()
	RegisterMCPCommand()

	// Compact help output: long description followed by usage
	rootCmd.SetHelpTemplate(`{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasAvailableSubCommands}}{{.UsageString}}{{end}}`)

	rootCmd.SetUsageTemplate(`Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`)

	cobra.CheckErr(rootCmd.Execute())
}

// InitConfig initializes the global flags
func InitConfig() {
	initRootOnce.Do(func() {
		rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./flowlens.yaml)")
		rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "enable debug logging")
		rootCmd.PersistentFlags().BoolVar(&quietLogs, "quiet", false, "only log errors")
		cobra.OnInitialize(initLogging)
	})
}

// initLogging applies the logging flags once cobra has parsed them
func initLogging() {
	logger.SetDebug(debugLogs)
	if quietLogs {
		logger.Quiet()
	}
}

// loadConfig resolves the file configuration honoring the global --config flag
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
