package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	defaultConfigFileName  = "config.yml"
	defaultGenesisFileName = "genesis.json"
)

const (
	TaskConvertAddr = "convert-addr"
	TaskStakers     = "stakers"
	TaskShooter     = "shooter"
	TaskGiveMoney   = "give-money"
)

// Task is the admin sub-command picked on the command line, if any.
type Task struct {
	Name    string
	Args    []string
	Out     string
	Prefix  uint16
	Utility string
	Dnt     string
}

var (
	cfgPath    string
	paramsPath string
	replay     bool
	task       Task
	rootCmd    = &cobra.Command{
		Use:   "liquid-staking-service",
		Short: "Liquid staking ledger service",
		Run:   func(cmd *cobra.Command, args []string) {},
	}
)

func selectTask(cmd *cobra.Command, args []string) {
	task.Name = cmd.Name()
	task.Args = args
}

func Setup() error {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	defaultConfigPath := getDefaultConfigFile(homePath, defaultConfigFileName)
	defaultParamsPath := getDefaultConfigFile(homePath, defaultGenesisFileName)

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, fmt.Sprintf("config file (default %s)", defaultConfigPath))
	rootCmd.PersistentFlags().StringVar(&paramsPath, "params", defaultParamsPath, fmt.Sprintf("genesis params file (default %s)", defaultParamsPath))
	rootCmd.PersistentFlags().BoolVar(&replay, "replay", false, "Replay unprocessable queue messages")

	convertAddrCmd := &cobra.Command{
		Use:   TaskConvertAddr + " <evm-address>...",
		Short: "Print the SS58 form of EVM addresses",
		Args:  cobra.MinimumNArgs(1),
		Run:   selectTask,
	}
	convertAddrCmd.Flags().Uint16Var(&task.Prefix, "prefix", 5, "SS58 network prefix")

	stakersCmd := &cobra.Command{
		Use:   TaskStakers,
		Short: "Export every staker to a JSON file",
		Args:  cobra.NoArgs,
		Run:   selectTask,
	}
	stakersCmd.Flags().StringVar(&task.Out, "out", "stakers.json", "output file")

	shooterCmd := &cobra.Command{
		Use:   TaskShooter + " <stakers-file>",
		Short: "Enqueue an era shot for every staker of a stakers file",
		Args:  cobra.ExactArgs(1),
		Run:   selectTask,
	}
	shooterCmd.Flags().StringVar(&task.Utility, "utility", "", "utility to snapshot (default the liquid staking utility)")
	shooterCmd.Flags().StringVar(&task.Dnt, "dnt", "", "receipt token to snapshot (default the liquid staking token)")

	giveMoneyCmd := &cobra.Command{
		Use:   TaskGiveMoney + " <evm-address> <amount>",
		Short: "Credit native balance, needs ledger.faucet",
		Args:  cobra.ExactArgs(2),
		Run:   selectTask,
	}

	rootCmd.AddCommand(convertAddrCmd, stakersCmd, shooterCmd, giveMoneyCmd)

	if err := rootCmd.Execute(); err != nil {
		return err
	}

	return nil
}

func getDefaultConfigFile(homePath, filename string) string {
	return filepath.Join(homePath, filename)
}

func GetConfigPath() string {
	return cfgPath
}

func GetGenesisParamsPath() string {
	return paramsPath
}

func GetReplayFlag() bool {
	return replay
}

// GetTask returns the selected admin task. Name is empty when the service
// should run.
func GetTask() Task {
	return task
}
