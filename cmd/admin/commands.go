package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cinedeck/internal/core/config"
	"cinedeck/internal/core/logger"
	"cinedeck/internal/domain"
	"cinedeck/internal/feature/directory"
	"cinedeck/internal/repo"
	"cinedeck/internal/service"
)

// opener 打开 store；测试里替换成内存后端
type opener func(ctx context.Context, configPath string) (*service.Store, func() error, error)

// openStore 以分离会话打开 store，命令行登录不会顶掉网页端的会话
func openStore(ctx context.Context, configPath string) (*service.Store, func() error, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, cleanup := logger.New(cfg.Log)
	kv, closeKV, err := repo.OpenKV(ctx, cfg, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	s, err := service.Open(ctx, kv, service.Options{HashCost: cfg.Security.BcryptCost, Detached: true}, log)
	if err != nil {
		_ = closeKV()
		cleanup()
		return nil, nil, err
	}
	return s, func() error {
		defer cleanup()
		return errors.Join(s.Close(context.Background()), closeKV())
	}, nil
}

type cli struct {
	open       opener
	configPath string
	username   string
	password   string
	asJSON     bool

	store *service.Store
	close func() error
	out   io.Writer
}

// execute 运行一次命令；无论成功与否都会关闭 store
func execute(ctx context.Context, open opener, out io.Writer, args []string) error {
	c := &cli{open: open}
	root := c.rootCmd()
	root.SetOut(out)
	root.SetErr(out)
	if args != nil {
		root.SetArgs(args)
	}
	err := root.ExecuteContext(ctx)
	if c.close != nil {
		err = errors.Join(err, c.close())
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cinedeck-admin",
		Short:         "Administer cinedeck accounts and featured lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.connect(cmd)
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&c.configPath, "config", os.Getenv("CONFIG_PATH"), "config file path")
	f.StringVarP(&c.username, "user", "u", os.Getenv("CINEDECK_ADMIN_USER"), "admin username")
	f.StringVarP(&c.password, "password", "p", os.Getenv("CINEDECK_ADMIN_PASSWORD"), "admin password")
	f.BoolVar(&c.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(c.usersCmd(), c.featuredCmd())
	return root
}

func (c *cli) connect(cmd *cobra.Command) error {
	if c.username == "" || c.password == "" {
		return errors.New("admin credentials required (--user/--password or CINEDECK_ADMIN_USER/CINEDECK_ADMIN_PASSWORD)")
	}
	c.out = cmd.OutOrStdout()
	ctx := cmd.Context()
	s, closeFn, err := c.open(ctx, c.configPath)
	if err != nil {
		return err
	}
	c.store, c.close = s, closeFn
	_, err = unwrap(s.Login(ctx, c.username, c.password))
	return err
}

func unwrap[T any](r service.Result[T]) (T, error) {
	if !r.Success {
		var zero T
		return zero, fmt.Errorf("%s: %s", r.Code, r.Message)
	}
	return r.Data, nil
}

func argID(args []string) (int64, error) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printAccounts(accs ...domain.Account) error {
	if c.asJSON {
		return c.printJSON(accs)
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tROLE\tACTIVE")
	for _, a := range accs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", a.ID, a.Username, a.Name, a.Role, a.Active)
	}
	return w.Flush()
}

func (c *cli) printLists(lists []domain.ListView) error {
	if c.asJSON {
		return c.printJSON(lists)
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tOWNER\tITEMS\tOFFICIAL\tFEATURED")
	for _, l := range lists {
		owner := l.OwnerUsername
		if l.IsOfficial {
			owner = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%t\t%t\n", l.ID, l.Name, owner, len(l.Items), l.IsOfficial, l.IsFeatured)
	}
	return w.Flush()
}

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage accounts"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			accs, err := unwrap(c.store.GetAllUsers())
			if err != nil {
				return err
			}
			return c.printAccounts(accs...)
		},
	}

	var in directory.NewUser
	var admin bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Role = domain.RoleRegular
			if admin {
				in.Role = domain.RoleAdmin
			}
			acc, err := unwrap(c.store.CreateUser(cmd.Context(), in))
			if err != nil {
				return err
			}
			return c.printAccounts(acc)
		},
	}
	create.Flags().StringVar(&in.Username, "username", "", "username")
	create.Flags().StringVar(&in.Password, "new-password", "", "password of the new account")
	create.Flags().StringVar(&in.Name, "name", "", "display name")
	create.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("new-password")

	byID := func(use, short string, run func(ctx context.Context, id int64) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := argID(args)
				if err != nil {
					return err
				}
				return run(cmd.Context(), id)
			},
		}
	}
	activate := byID("activate", "Re-enable an account", func(ctx context.Context, id int64) error {
		acc, err := unwrap(c.store.ActivateUser(ctx, id))
		if err != nil {
			return err
		}
		return c.printAccounts(acc)
	})
	deactivate := byID("deactivate", "Disable an account", func(ctx context.Context, id int64) error {
		acc, err := unwrap(c.store.DeactivateUser(ctx, id))
		if err != nil {
			return err
		}
		return c.printAccounts(acc)
	})
	del := byID("delete", "Delete an account with its lists", func(ctx context.Context, id int64) error {
		if _, err := unwrap(c.store.DeleteUser(ctx, id)); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "deleted user %d\n", id)
		return nil
	})

	cmd.AddCommand(list, create, activate, deactivate, del)
	return cmd
}

func (c *cli) featuredCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "featured", Short: "Manage featured lists"}

	var candidates bool
	list := &cobra.Command{
		Use:   "list",
		Short: "Show featured lists, or lists that can be featured",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			r := c.store.FeaturedLists()
			if candidates {
				r = c.store.ListsForFeaturing()
			}
			lists, err := unwrap(r)
			if err != nil {
				return err
			}
			return c.printLists(lists)
		},
	}
	list.Flags().BoolVar(&candidates, "candidates", false, "list public user lists instead")

	toggle := func(use, short string, op func(ctx context.Context, id int64) service.Result[service.None]) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <list-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := argID(args)
				if err != nil {
					return err
				}
				if _, err := unwrap(op(cmd.Context(), id)); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%s %d\n", use, id)
				return nil
			},
		}
	}
	add := toggle("add", "Feature a public list", func(ctx context.Context, id int64) service.Result[service.None] {
		return c.store.AddToFeatured(ctx, id)
	})
	remove := toggle("remove", "Stop featuring a list", func(ctx context.Context, id int64) service.Result[service.None] {
		return c.store.RemoveFromFeatured(ctx, id)
	})

	cmd.AddCommand(list, add, remove)
	return cmd
}
