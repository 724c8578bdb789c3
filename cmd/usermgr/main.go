package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/go-while/go-modconsole/internal/apiclient"
	"github.com/go-while/go-modconsole/internal/config"
	"github.com/go-while/go-modconsole/internal/console"
	"github.com/go-while/go-modconsole/internal/models"
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion
	log.Printf("go-modconsole User Manager (version: %s)", config.AppVersion)
	var (
		createUser = flag.Bool("create", false, "Create a new staff user")
		listUsers  = flag.Bool("list", false, "List all staff users")
		deleteUser = flag.Bool("delete", false, "Delete a staff user")
		updateUser = flag.Bool("update", false, "Update a user's password")
		changeRole = flag.Bool("role", false, "Change a user's role")
		username   = flag.String("username", "", "Username for user operations")
		role       = flag.String("newrole", "", "Role for -create and -role ("+models.RoleNames()+")")
		admin      = flag.String("admin", "admin", "Account used to log in to the backend")
		apiBase    = flag.String("api", config.DefaultAPIBaseURL, "Moderation backend base URL")
		timeout    = flag.Duration("timeout", config.DefaultAPITimeout, "Backend request timeout")
	)
	flag.Parse()

	if !*createUser && !*listUsers && !*deleteUser && !*updateUser && !*changeRole {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -list\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -create -username john -newrole MODERATOR\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -update -username john\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -role -username john -newrole VIEWER\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -delete -username john\n", os.Args[0])
		os.Exit(1)
	}
	if !*listUsers && *username == "" {
		log.Fatal("Username is required for this operation")
	}

	ctx := context.Background()
	api := apiclient.New(*apiBase,
		apiclient.WithTimeout(*timeout),
		apiclient.WithUserAgent("go-modconsole-usermgr/"+appVersion))

	fmt.Printf("Password for %s: ", *admin)
	adminPassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	login, err := api.Login(ctx, *admin, string(adminPassword))
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	if login.Role != models.RoleAdmin {
		log.Fatalf("%s is %s, user management needs %s", *admin, login.Role, models.RoleAdmin)
	}
	api = api.WithTokens(apiclient.NewStaticToken(login.Token))

	switch {
	case *listUsers:
		err = listAllUsers(ctx, api)
	case *createUser:
		err = createNewUser(ctx, api, *username, *role)
	case *updateUser:
		err = updateUserPassword(ctx, api, *username)
	case *changeRole:
		err = changeUserRole(ctx, api, *username, *role)
	case *deleteUser:
		if strings.EqualFold(*username, *admin) {
			log.Fatal(console.MsgCannotDeleteSelf)
		}
		err = deleteExistingUser(ctx, api, *username)
	}
	if err != nil {
		log.Fatalf("Operation failed: %v", err)
	}
}

func listAllUsers(ctx context.Context, api *apiclient.Client) error {
	users, err := api.Users(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Role, console.FormatDate(u.CreatedAt, time.Local))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("Total users: %d\n", len(users))
	return nil
}

func createNewUser(ctx context.Context, api *apiclient.Client, username, role string) error {
	if role == "" {
		role = promptLine(fmt.Sprintf("Role (%s): ", models.RoleNames()))
	}
	password, err := promptNewPassword()
	if err != nil {
		return err
	}
	parsed, err := console.NewUserForm{Username: username, Password: password, Role: role}.Validate()
	if err != nil {
		return err
	}
	if err := api.CreateUser(ctx, username, password, parsed); err != nil {
		return err
	}
	fmt.Printf("User '%s' created successfully as %s\n", username, parsed)
	return nil
}

func updateUserPassword(ctx context.Context, api *apiclient.Client, username string) error {
	password, err := promptNewPassword()
	if err != nil {
		return err
	}
	if err := api.UpdatePassword(ctx, username, password); err != nil {
		return err
	}
	fmt.Printf("Password for user '%s' updated successfully\n", username)
	return nil
}

func changeUserRole(ctx context.Context, api *apiclient.Client, username, role string) error {
	parsed, err := models.ParseRole(role)
	if err != nil {
		return err
	}
	if err := api.UpdateRole(ctx, username, parsed); err != nil {
		return err
	}
	fmt.Printf("Role of user '%s' changed to %s\n", username, parsed)
	return nil
}

func deleteExistingUser(ctx context.Context, api *apiclient.Client, username string) error {
	answer := promptLine(fmt.Sprintf("Are you sure you want to delete user '%s'? (y/N): ", username))
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Println("User deletion cancelled")
		return nil
	}
	if err := api.DeleteUser(ctx, username); err != nil {
		return err
	}
	fmt.Printf("User '%s' deleted successfully\n", username)
	return nil
}

// promptNewPassword asks twice and insists both answers match
func promptNewPassword() (string, error) {
	fmt.Print("Enter new password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Print("Confirm new password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password confirmation: %w", err)
	}
	if err := console.ValidatePasswordChange(string(password), string(confirm)); err != nil {
		return "", err
	}
	return string(password), nil
}

func promptLine(prompt string) string {
	fmt.Print(prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}
