package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"adminstore/internal/core/tenant"
	"adminstore/internal/infrastructure/storage/postgres"
)

func tablesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "tables", Short: "Manage the application tables"}

	var withTenants bool
	build := &cobra.Command{
		Use:   "build",
		Short: "Create missing tables and add missing columns",
		Long: "Builds the tables on the default database when one is configured, " +
			"and on every active tenant database with --tenants.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var manager *tenant.Manager
			if withTenants {
				m, _, err := a.tenants(ctx)
				if err != nil {
					return err
				}
				manager = m
			}
			builder := postgres.NewTableBuilder(a.defaultDB, manager, a.log)

			var errs []error
			ran := false
			if a.cfg.Database.URL != "" {
				ran = true
				errs = append(errs, builder.BuildMaster(ctx))
			}
			if withTenants {
				ran = true
				errs = append(errs, builder.BuildTenants(ctx))
			}
			if !ran {
				return fmt.Errorf("nothing to build: no default database and --tenants not given")
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}
			fmt.Println("tables are up to date")
			return nil
		},
	}
	build.Flags().BoolVar(&withTenants, "tenants", false, "also build every active tenant database")

	cmd.AddCommand(build)
	return cmd
}
