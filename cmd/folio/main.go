package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"folio/internal/app"
	"folio/internal/config"
	"folio/internal/encryption"
	"folio/internal/folio"

	"github.com/spf13/cobra"
)

func main() {
	if err := app.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newApp reads the config and creates a FolioApp. The caller must defer app.Close().
// command identifies the CLI command being run (e.g. "project save", "watch").
func newApp(ctx context.Context, command string) (*app.FolioApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewFolioApp(ctx, cfg, app.NewSession(command, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// reportFault prints a storage warning and swallows it: the change is kept
// for this session even though it could not be written.
func reportFault(err error) error {
	if folio.IsStorageFault(err) {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return nil
	}
	return err
}

var rootCmd = &cobra.Command{
	Use:          "folio",
	Short:        "Portfolio projects and contact inbox",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Medium:     %s\n", cfg.Medium.Type)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		fmt.Printf("Poll every: %s\n", cfg.Notify.Interval.Std())
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the age identity used to seal stored documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		recipient, err := encryption.GenerateIdentity(cfg.Encryption.IdentityPath)
		if err != nil {
			return fmt.Errorf("generating identity: %w", err)
		}

		fmt.Printf("Identity written to %s\n", cfg.Encryption.IdentityPath)
		fmt.Printf("Public key: %s\n", recipient)
		if cfg.Encryption.Type != "age" {
			fmt.Println(`Set encryption.type = "age" in the config to seal documents.`)
		}
		return nil
	},
}

// project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage portfolio projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		tech, _ := cmd.Flags().GetString("tech")

		a, err := newApp(cmd.Context(), "project list")
		if err != nil {
			return err
		}
		defer a.Close()

		projects, err := a.SearchProjects(cmd.Context(), tech, "")
		if err != nil {
			return err
		}
		printProjects(projects)
		return nil
	},
}

var projectSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Create a project, or update one with --id",
	RunE: func(cmd *cobra.Command, args []string) error {
		form := app.ProjectForm{}
		form.ID, _ = cmd.Flags().GetString("id")
		form.Title = changedString(cmd, "title")
		form.Description = changedString(cmd, "description")
		form.Technologies = changedString(cmd, "tech")
		form.LiveURL = changedString(cmd, "live-url")
		form.GithubURL = changedString(cmd, "github-url")
		form.ProjectImage = changedString(cmd, "image")
		form.BannerImage = changedString(cmd, "banner")

		a, err := newApp(cmd.Context(), "project save")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.SaveProject(cmd.Context(), form)
		if err := reportFault(err); err != nil {
			return fmt.Errorf("saving project: %w", err)
		}

		fmt.Printf("Saved project %s (%s)\n", p.ID, p.Title)
		return nil
	},
}

// changedString returns the flag value only if it was given on the command line.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

var projectRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "project rm")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := reportFault(a.Service().DeleteProject(cmd.Context(), args[0])); err != nil {
			return fmt.Errorf("deleting project: %w", err)
		}
		fmt.Printf("Deleted project %s\n", args[0])
		return nil
	},
}

var projectFacetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "List the technologies projects can be filtered by",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "project facets")
		if err != nil {
			return err
		}
		defer a.Close()

		facets, err := a.Facets(cmd.Context())
		if err != nil {
			return err
		}
		for _, f := range facets {
			fmt.Println(f)
		}
		return nil
	},
}

var projectSearchCmd = &cobra.Command{
	Use:   "search [TERM]",
	Short: "Search projects by title, description or technology",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tech, _ := cmd.Flags().GetString("tech")
		interactive, _ := cmd.Flags().GetBool("interactive")

		a, err := newApp(cmd.Context(), "project search")
		if err != nil {
			return err
		}
		defer a.Close()

		if !interactive {
			term := ""
			if len(args) > 0 {
				term = args[0]
			}
			projects, err := a.SearchProjects(cmd.Context(), tech, term)
			if err != nil {
				return err
			}
			printProjects(projects)
			return nil
		}

		return interactiveSearch(cmd.Context(), a, tech)
	},
}

// interactiveSearch reads search terms from stdin, one per line, and prints
// the matches once input settles.
func interactiveSearch(ctx context.Context, a *app.FolioApp, tech string) error {
	s, err := a.NewSearchSession(ctx, tech, func(term string, projects []folio.Project) {
		fmt.Printf("-- %q: %d match(es)\n", term, len(projects))
		printProjects(projects)
	})
	if err != nil {
		return err
	}
	defer s.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		s.Type(scanner.Text())
	}
	s.Submit()
	return scanner.Err()
}

func printProjects(projects []folio.Project) {
	if len(projects) == 0 {
		fmt.Println("No projects.")
		return
	}
	for _, p := range projects {
		fmt.Printf("%s  %s  %-24s  %s\n",
			p.ID,
			p.CreatedAt.Format("2006-01-02"),
			p.Title,
			strings.Join(p.Technologies, ", "),
		)
	}
}

// contact command
var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Manage contact messages",
}

var contactSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Leave a contact message",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in folio.ContactInput
		in.Name, _ = cmd.Flags().GetString("name")
		in.Email, _ = cmd.Flags().GetString("email")
		in.Message, _ = cmd.Flags().GetString("message")

		a, err := newApp(cmd.Context(), "contact submit")
		if err != nil {
			return err
		}
		defer a.Close()

		receipt, err := a.Service().SubmitContact(cmd.Context(), in)
		if err := reportFault(err); err != nil {
			return fmt.Errorf("submitting message: %w", err)
		}
		fmt.Println(receipt.Message)
		return nil
	},
}

var contactListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contact messages, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")

		a, err := newApp(cmd.Context(), "contact list")
		if err != nil {
			return err
		}
		defer a.Close()

		contacts, err := a.Contacts(cmd.Context(), filter)
		if err != nil {
			return err
		}

		if len(contacts) == 0 {
			fmt.Println("No messages.")
			return nil
		}

		for _, c := range contacts {
			marker := " "
			if !c.Read {
				marker = "*"
			}
			fmt.Printf("%s %s  %s  %-8s  %s <%s>: %s\n",
				marker,
				c.ID,
				c.CreatedAt.Format("2006-01-02 15:04"),
				c.Status,
				c.Name,
				c.Email,
				c.Message,
			)
		}
		return nil
	},
}

// contactStatusCmd builds a command applying one status change to a message.
func contactStatusCmd(use, short, done string, apply func(*folio.RecordService, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), "contact "+use)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := reportFault(apply(a.Service(), cmd.Context(), args[0])); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", done, args[0])
			return nil
		},
	}
}

var (
	contactReadCmd  = contactStatusCmd("read", "Mark a message as read", "Marked read", (*folio.RecordService).MarkContactRead)
	contactReplyCmd = contactStatusCmd("reply", "Mark a message as replied", "Marked replied", (*folio.RecordService).MarkContactReplied)
	contactRmCmd    = contactStatusCmd("rm", "Delete a message", "Deleted", (*folio.RecordService).DeleteContact)
)

// unread command
var unreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Print the number of unread messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "unread")
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Println(a.Service().UnreadCount())
		return nil
	},
}

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for unread messages and notify while running in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "watch")
		if err != nil {
			return err
		}
		defer a.Close()

		last := -1
		return a.Watch(cmd.Context(), app.WatchOptions{
			Out: os.Stdout,
			In:  os.Stdin,
			OnCount: func(count int) {
				if count != last {
					fmt.Printf("unread: %d\n", count)
					last = count
				}
			},
		})
	},
}

// profile-image command
var profileImageCmd = &cobra.Command{
	Use:   "profile-image",
	Short: "Manage the profile image",
}

var profileImageSetCmd = &cobra.Command{
	Use:   "set URL|PATH",
	Short: "Set the profile image from a URL or an image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "profile-image set")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := reportFault(a.SetProfileImage(cmd.Context(), args[0])); err != nil {
			return err
		}
		fmt.Println("Profile image updated")
		return nil
	},
}

var profileImageClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the profile image",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "profile-image clear")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().ClearProfileImage(cmd.Context()); err != nil {
			return fmt.Errorf("clearing profile image: %w", err)
		}
		fmt.Println("Profile image removed")
		return nil
	},
}

var profileImageShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the profile image reference",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "profile-image show")
		if err != nil {
			return err
		}
		defer a.Close()

		ref, err := a.Service().ProfileImage(cmd.Context())
		if err != nil {
			return err
		}
		if ref == "" {
			fmt.Println("No profile image set.")
			return nil
		}
		fmt.Println(ref)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// project subcommands
	projectCmd.AddCommand(projectListCmd)
	projectListCmd.Flags().StringP("tech", "t", folio.AllFacet, "Only show projects using this technology")
	projectCmd.AddCommand(projectSaveCmd)
	projectSaveCmd.Flags().String("id", "", "ID of the project to update")
	projectSaveCmd.Flags().String("title", "", "Project title")
	projectSaveCmd.Flags().String("description", "", "Project description")
	projectSaveCmd.Flags().String("tech", "", "Comma-separated technologies")
	projectSaveCmd.Flags().String("live-url", "", "Live site URL")
	projectSaveCmd.Flags().String("github-url", "", "Source repository URL")
	projectSaveCmd.Flags().String("image", "", "Project image URL or file (empty clears it)")
	projectSaveCmd.Flags().String("banner", "", "Banner image URL or file (empty clears it)")
	projectCmd.AddCommand(projectRmCmd)
	projectCmd.AddCommand(projectFacetsCmd)
	projectCmd.AddCommand(projectSearchCmd)
	projectSearchCmd.Flags().StringP("tech", "t", folio.AllFacet, "Only search projects using this technology")
	projectSearchCmd.Flags().BoolP("interactive", "i", false, "Read search terms from stdin as they are typed")

	// contact subcommands
	contactCmd.AddCommand(contactSubmitCmd)
	contactSubmitCmd.Flags().String("name", "", "Your name")
	contactSubmitCmd.Flags().String("email", "", "Your email address")
	contactSubmitCmd.Flags().String("message", "", "The message")
	contactCmd.AddCommand(contactListCmd)
	contactListCmd.Flags().StringP("filter", "f", string(folio.FilterAll), "all, new, read or replied")
	contactCmd.AddCommand(contactReadCmd)
	contactCmd.AddCommand(contactReplyCmd)
	contactCmd.AddCommand(contactRmCmd)

	// profile-image subcommands
	profileImageCmd.AddCommand(profileImageSetCmd)
	profileImageCmd.AddCommand(profileImageShowCmd)
	profileImageCmd.AddCommand(profileImageClearCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(contactCmd)
	rootCmd.AddCommand(unreadCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(profileImageCmd)
}
