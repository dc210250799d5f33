package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	clamav "github.com/DevHatRo/clamav-sdk-go"
)

var errUnhealthy = errors.New("service is unhealthy")

func healthCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the ClamAV service is reachable and healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, closeFn, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := s.HealthCheck(cmd.Context())
			if err != nil {
				return err
			}
			if !res.Healthy {
				fmt.Fprintf(cmd.OutOrStdout(), "unhealthy: %s\n", res.Message)
				return errUnhealthy
			}
			fmt.Fprintln(cmd.OutOrStdout(), "healthy")
			return nil
		},
	}
}

// versioner is implemented by the REST client only.
type versioner interface {
	Version(ctx context.Context) (*clamav.VersionResult, error)
}

func versionCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ClamAV API server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, closeFn, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			v, ok := s.(versioner)
			if !ok {
				return fmt.Errorf("version is not available over %s", e.cfg.Transport)
			}
			res, err := v.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\ncommit: %s\nbuild: %s\n", res.Version, res.Commit, res.Build)
			return nil
		},
	}
}
