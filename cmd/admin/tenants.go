package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"adminstore/internal/core/tenant"
)

func tenantsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "tenants", Short: "Manage tenants in the meta database"}
	cmd.AddCommand(
		tenantsListCommand(a),
		tenantsCreateCommand(a),
		tenantsStatusCommand(a, "suspend", tenant.StatusSuspended),
		tenantsStatusCommand(a, "activate", tenant.StatusActive),
	)
	return cmd
}

func tenantsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, registry, err := a.tenants(cmd.Context())
			if err != nil {
				return err
			}
			tenants, err := registry.ListAll(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSLUG\tNAME\tDATABASE\tSTATUS")
			for _, t := range tenants {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Slug, t.DisplayName, t.DBName, t.Status)
			}
			return w.Flush()
		},
	}
}

func tenantsCreateCommand(a *app) *cobra.Command {
	var (
		input    tenant.CreateTenantInput
		createDB bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := input.Validate(); err != nil {
				return err
			}

			_, registry, err := a.tenants(ctx)
			if err != nil {
				return err
			}
			if err := registry.EnsureSchema(ctx); err != nil {
				return err
			}

			t := input.ToTenant()
			if createDB {
				if t.ConnectionString != nil {
					return fmt.Errorf("--create-db cannot be combined with --dsn")
				}
				_, err := a.metaPool.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{t.DBName}.Sanitize())
				switch {
				case err != nil && strings.Contains(err.Error(), "already exists"):
					fmt.Printf("database %s already exists\n", t.DBName)
				case err != nil:
					return fmt.Errorf("create database %s: %w", t.DBName, err)
				default:
					fmt.Printf("database %s created\n", t.DBName)
				}
			}

			if err := registry.Create(ctx, t); err != nil {
				return err
			}
			fmt.Printf("tenant %s registered with id %s\n", t.Slug, t.ID)
			fmt.Println("run 'admin tables build --tenants' to create its tables")
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Slug, "slug", "", "URL-safe tenant identifier (required)")
	cmd.Flags().StringVar(&input.DisplayName, "name", "", "human-readable tenant name (required)")
	cmd.Flags().StringVar(&input.ConnectionString, "dsn", "", "explicit connection string for the tenant database")
	cmd.Flags().StringVar(&input.DBHost, "db-host", "", "tenant database host (default localhost)")
	cmd.Flags().IntVar(&input.DBPort, "db-port", 0, "tenant database port (default 5432)")
	cmd.Flags().BoolVar(&createDB, "create-db", false, "create the tenant database on the meta database server")
	_ = cmd.MarkFlagRequired("slug")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func tenantsStatusCommand(a *app, use string, status tenant.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <tenant-id>",
		Short: fmt.Sprintf("Set tenant status to %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, registry, err := a.tenants(cmd.Context())
			if err != nil {
				return err
			}
			if err := registry.UpdateStatusByID(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Printf("tenant %s is now %s\n", args[0], status)
			return nil
		},
	}
}
