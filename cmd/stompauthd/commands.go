package main

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/anthonyraymond/stompauth/internal/app"
	"github.com/anthonyraymond/stompauth/internal/broker"
	"github.com/anthonyraymond/stompauth/pkg/auth/simple"
	"github.com/anthonyraymond/stompauth/pkg/logs"
	"github.com/go-stomp/stomp/v3"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const brokerDialTimeout = 5 * time.Second

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "stompauthd",
		Short:         "STOMP broker guarded by a credential file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		NewServeCommand(),
		NewVerifyCommand(),
		NewProbeCommand(),
		NewInitConfigCommand(),
	)
	return root
}

func NewServeCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := app.ParseConfigOverDefault(configFile)
			if err != nil {
				return err
			}
			if err := logs.ReplaceLogger(conf.Log); err != nil {
				return err
			}
			log := logs.GetLogger()

			a, err := app.Start(conf, log)
			if err != nil {
				log.Error("failed to start", zap.Error(err))
				return err
			}
			a.Run(cmd.Context())
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "config.yml", "Path to the yaml config file")
	return cmd
}

func NewVerifyCommand() *cobra.Command {
	var authFile, login, passcode string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a login/passcode pair against a credential file, exits 1 on mismatch and 2 on load failure",
		RunE: func(cmd *cobra.Command, args []string) error {
			return verify(cmd.OutOrStdout(), authFile, login, passcode)
		},
	}
	addCredentialFlags(cmd.Flags(), &login, &passcode)
	cmd.Flags().StringVarP(&authFile, "auth-file", "f", "", "Path to the credential file")
	return cmd
}

func verify(out io.Writer, authFile, login, passcode string) error {
	a, err := simple.NewFromConfig(&simple.Config{AuthFile: authFile})
	if err != nil {
		return &exitError{code: exitLoadError, err: err}
	}
	if !a.Authenticate(login, passcode) {
		_, _ = fmt.Fprintln(out, "rejected")
		return &exitError{code: exitMismatch}
	}
	_, _ = fmt.Fprintln(out, "accepted")
	return nil
}

func NewProbeCommand() *cobra.Command {
	var addr, login, passcode string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Try to connect to a running broker with the given credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return probe(cmd.OutOrStdout(), addr, login, passcode, logs.GetLogger())
		},
	}
	addCredentialFlags(cmd.Flags(), &login, &passcode)
	cmd.Flags().StringVarP(&addr, "addr", "a", broker.StompConfig{}.Default().Addr, "Broker stomp address")
	return cmd
}

func probe(out io.Writer, addr, login, passcode string, log *zap.Logger) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return &exitError{code: exitLoadError, err: errors.Wrapf(err, "invalid broker address '%s'", addr)}
	}
	if host == "" {
		host = "localhost"
	}

	// dial separately so that an unreachable broker is not reported as a rejection
	netConn, err := net.DialTimeout("tcp", addr, brokerDialTimeout)
	if err != nil {
		_, _ = fmt.Fprintf(out, "unreachable: %s\n", err.Error())
		return &exitError{code: exitLoadError, err: errors.Wrapf(err, "failed to reach '%s'", addr)}
	}

	conn, err := stomp.Connect(netConn,
		stomp.ConnOpt.Login(login, passcode),
		stomp.ConnOpt.Host(host),
		stomp.ConnOpt.Logger(broker.WrapZapLogger(log)),
	)
	if err != nil {
		_ = netConn.Close()
		_, _ = fmt.Fprintf(out, "rejected: %s\n", err.Error())
		return &exitError{code: exitMismatch, err: errors.Wrapf(err, "broker '%s' refused the credentials", addr)}
	}
	_ = conn.Disconnect()
	_, _ = fmt.Fprintln(out, "accepted")
	return nil
}

func NewInitConfigCommand() *cobra.Command {
	var configFile, authFile string

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.WriteDefaultConfig(configFile, authFile); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", configFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "config.yml", "Path of the yaml config file to create")
	cmd.Flags().StringVarP(&authFile, "auth-file", "f", "auth.ini", "Credential file referenced by the config")
	return cmd
}

func addCredentialFlags(flags *pflag.FlagSet, login, passcode *string) {
	flags.StringVarP(login, "login", "l", "", "Login to check")
	flags.StringVarP(passcode, "passcode", "p", "", "Passcode to check")
}
