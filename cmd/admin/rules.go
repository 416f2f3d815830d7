package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"adminstore/internal/core/tenant"
	"adminstore/internal/domain/rules"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/internal/infrastructure/storage/postgres/rule_repo"
)

func rulesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "rules", Short: "Manage access rules"}

	var withTenants bool
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Grant the administrators role full access to every resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !withTenants {
				seeder := rules.NewSeeder(rule_repo.NewRuleRepo(a.defaultDB), a.log)
				n, err := seeder.SeedAdministratorRules(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("default database: %d rules inserted\n", n)
				return nil
			}

			manager, _, err := a.tenants(ctx)
			if err != nil {
				return err
			}
			// ForEachActive binds each tenant to ctx, which the tenant provider resolves.
			seeder := rules.NewSeeder(rule_repo.NewRuleRepo(postgres.NewTenantProvider(manager, nil)), a.log)
			return manager.ForEachActive(ctx, func(ctx context.Context, mp *tenant.ManagedPool) error {
				n, err := seeder.SeedAdministratorRules(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %d rules inserted\n", mp.Tenant().Slug, n)
				return nil
			})
		},
	}
	seed.Flags().BoolVar(&withTenants, "tenants", false, "seed every active tenant database instead of the default one")

	cmd.AddCommand(seed)
	return cmd
}
