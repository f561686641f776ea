package main

import (
	"os"

	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {

	var listenAddr string
	var monitoringAddr string

	// rootCmd represents the base command when called without any subcommands
	var rootCmd = &cobra.Command{
		Use: "femto-gateway",
	}

	var apiServerCmd = &cobra.Command{
		Use:   "api_server",
		Short: "Webhook gateway API server",
		Run: func(cmd *cobra.Command, args []string) {
			startGatewayApiServer(listenAddr, monitoringAddr)
		},
	}

	var refTypesToExclude string

	var channelCountReporterCmd = &cobra.Command{
		Use:   "tenant_channel_count_reporter",
		Short: "Report tenant channel counts grouped by ref type",
		Run: func(cmd *cobra.Command, args []string) {
			startTenantChannelCountReport(refTypesToExclude)
		},
	}

	rootCmd.AddCommand(apiServerCmd)
	apiServerCmd.Flags().StringVarP(&listenAddr, "listen-addr", "l", ":8080", "Hostname:port")
	apiServerCmd.Flags().StringVarP(&monitoringAddr, "monitoring-addr", "m", ":9090", "Hostname:port")

	rootCmd.AddCommand(channelCountReporterCmd)
	channelCountReporterCmd.Flags().StringVarP(&refTypesToExclude, "exclude-ref-types", "e", "", "Comma separated list of ref types to exclude from the report")

	return rootCmd
}

func main() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
