// Command intakectl runs operator tasks against the intake database:
// migrations, superuser bootstrap, identity listing and reference data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go-intake-backend/config"
	"go-intake-backend/internal/domain"
	"go-intake-backend/internal/repository/postgres"
	"go-intake-backend/internal/usecase"
	"go-intake-backend/migrations"
	"go-intake-backend/pkg/apperror"
	"go-intake-backend/pkg/database"
	"go-intake-backend/pkg/logger"
	"go-intake-backend/pkg/security"
	"go-intake-backend/pkg/validation"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/crypto/bcrypt"
)

var defaultQualifications = []string{"Below SSC", "SSC", "HSC", "Diploma", "Bachelor", "Masters"}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: intakectl <command> [flags]

commands:
  migrate                          apply pending migrations
  createsuperuser -email E         create a staff superuser (password from INTAKE_PASSWORD or -password)
  identities [-page N] [-size N]   list identities
  seed-qualifications [NAME...]    add academic qualifications (defaults when none given)
  hash-password PASSWORD           print a bcrypt hash
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cmd, args := os.Args[1], os.Args[2:]

	if cmd == "hash-password" {
		exitOn(hashPassword(args))
		return
	}

	cfg, err := config.LoadConfig()
	exitOn(err)
	logger.Init(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	exitOn(err)
	defer db.Close()

	switch cmd {
	case "migrate":
		err = migrate(ctx, db)
	case "createsuperuser":
		err = createSuperuser(ctx, db, cfg, args)
	case "identities":
		err = listIdentities(ctx, db, args)
	case "seed-qualifications":
		err = seedQualifications(ctx, db, args)
	default:
		usage()
	}
	exitOn(err)
}

func exitOn(err error) {
	if err == nil {
		return
	}
	color.Red("error: %v", err)
	if fields := fieldsOf(err); len(fields) > 0 {
		for field, msg := range fields {
			color.Red("  %s: %s", field, msg)
		}
	}
	os.Exit(1)
}

func fieldsOf(err error) map[string]string {
	if appErr, ok := err.(*apperror.AppError); ok {
		return appErr.Fields
	}
	return nil
}

func migrate(ctx context.Context, db *pgxpool.Pool) error {
	applied, err := database.NewMigrator(db, migrations.FS).Up(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		color.Green("Database is up to date")
		return nil
	}
	for _, v := range applied {
		color.Green("applied %s", v)
	}
	return nil
}

func createSuperuser(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ExitOnError)
	email := fs.String("email", "", "superuser email")
	password := fs.String("password", os.Getenv("INTAKE_PASSWORD"), "superuser password")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("-email and a password are required")
	}

	identityUC := usecase.NewIdentityUsecase(
		postgres.NewIdentityRepository(db),
		security.NewPasswordHasher(cfg.BcryptCost),
		validation.New(),
		security.NewLoginTracker(security.DefaultLoginTrackerConfig(), nil, nil),
		nil,
		security.DefaultLogger(),
		nil,
	)
	identity, err := identityUC.CreateSuperuser(ctx, *email, *password)
	if err != nil {
		return err
	}
	color.Green("Superuser %s created (%s)", identity.Email, identity.ID)
	return nil
}

func listIdentities(ctx context.Context, db *pgxpool.Pool, args []string) error {
	fs := flag.NewFlagSet("identities", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 50, "page size")
	_ = fs.Parse(args)

	p, s := domain.NormalizePage(*page, *size)
	identities, total, err := postgres.NewIdentityRepository(db).List(ctx, s, (p-1)*s)
	if err != nil {
		return err
	}

	color.Cyan("\nIdentities (page %d, %d total)", p, total)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Email", "Name", "Staff", "Superuser", "Capabilities", "Reset", "Joined"})
	for _, i := range identities {
		caps := make([]string, 0, len(i.Capabilities))
		for _, c := range i.Capabilities {
			caps = append(caps, string(c))
		}
		table.Append([]string{
			i.ID,
			i.Email,
			i.Name,
			strconv.FormatBool(i.IsStaff),
			strconv.FormatBool(i.IsSuperuser),
			strings.Join(caps, ","),
			strconv.FormatBool(i.MustResetPassword),
			i.DateJoined.Format("2006-01-02"),
		})
	}
	table.Render()
	return nil
}

func seedQualifications(ctx context.Context, db *pgxpool.Pool, names []string) error {
	if len(names) == 0 {
		names = defaultQualifications
	}

	repo := postgres.NewAcademicQualificationRepository(db)
	for _, name := range names {
		err := repo.Create(ctx, &domain.AcademicQualification{Name: strings.TrimSpace(name)})
		switch {
		case err == nil:
			color.Green("added %s", name)
		case apperror.IsKind(err, apperror.KindValidation):
			color.Yellow("exists %s", name)
		default:
			return err
		}
	}
	return nil
}

func hashPassword(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("hash-password takes exactly one argument")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Println(string(hash))
	return nil
}
