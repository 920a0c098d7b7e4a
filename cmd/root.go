package cmd

import (
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marvin-bot/marvin/conf"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Version: conf.GitVersion,
		Use:     conf.Executable,
		Short:   "Marvin is a community-management bot for Slack",
		Long: `Marvin is a community-management bot for Slack's Events API. It routes
events, slash commands and interactive actions to registered handlers,
keeps durable state in Airtable, and ships a document ingester for
semantic search over community docs.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.OnInitialize(initConfig)
	rootCmd := newRootCmd()
	setupFlags(rootCmd)
	addSubcommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func setupFlags(c *cobra.Command) {
	c.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.marvin.yaml)")
	c.MarkPersistentFlagFilename("config")
}

func addSubcommands(c *cobra.Command) {
	c.AddCommand(newVersionCmd())
	c.AddCommand(newServerCmd())
	c.AddCommand(newIngestCmd())
	c.AddCommand(newSearchCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			println(err.Error())
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".marvin")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		println("Using config file:", viper.ConfigFileUsed())
	}
}
