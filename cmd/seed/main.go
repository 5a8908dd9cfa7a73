// seed inserts an admin, an employer, an applicant and a handful of jobs
// into the local dev database. Registration never grants the admin role, so
// this is also how a fresh environment gets its first admin.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/infrastructure/postgres"
)

const seedPassword = "password123"

var users = []domain.User{
	{Name: "Seed Admin", Email: "admin@test.local", Role: domain.RoleAdmin},
	{Name: "Seed Employer", Email: "employer@test.local", Role: domain.RoleEmployer},
	{Name: "Seed Applicant", Email: "applicant@test.local", Role: domain.RoleUser},
}

type jobSpec struct {
	title      string
	city       string
	zipcode    string
	lat, lng   float64
	industry   string
	experience string
	salary     float64
}

// Coordinates are fixed so seeding never needs the geocoder.
var jobs = []jobSpec{
	{"Go Backend Engineer", "Boston", "02108", 42.3588, -71.0638, "Information Technology", "2 Years - 5 Years", 125000},
	{"Senior Go Engineer", "Cambridge", "02139", 42.3647, -71.1042, "Information Technology", "5 Years+", 160000},
	{"Junior Data Analyst", "Boston", "02110", 42.3570, -71.0537, "Banking", "No Experience", 62000},
	{"Insurance Claims Specialist", "Providence", "02903", 41.8240, -71.4128, "Insurance", "1 Year - 2 Years", 58000},
	{"Network Engineer", "New York", "10001", 40.7506, -73.9972, "Telco", "2 Years - 5 Years", 98000},
	{"Business Analyst Intern", "New York", "10018", 40.7549, -73.9925, "Business", "No Experience", 30000},
	{"Site Reliability Engineer", "Worcester", "01608", 42.2626, -71.8023, "Information Technology", "5 Years+", 145000},
	{"Risk Analyst", "Hartford", "06103", 41.7658, -72.6734, "Insurance", "2 Years - 5 Years", 88000},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ids := map[domain.Role]string{}
	for _, u := range users {
		u.PasswordHash = string(hash)
		created, err := userRepo.Create(ctx, &u)
		if errors.Is(err, domain.ErrConflict) {
			created, err = userRepo.FindByEmail(ctx, u.Email)
		}
		if err != nil {
			log.Fatalf("seed user %s: %v", u.Email, err)
		}
		ids[u.Role] = created.ID
	}

	now := time.Now()
	var inserted int
	for i, spec := range jobs {
		_, err := jobRepo.Create(ctx, &domain.Job{
			UserID:      ids[domain.RoleEmployer],
			Title:       spec.title,
			Slug:        slug.Make(spec.title),
			Description: fmt.Sprintf("%s role based in %s. Seeded for local development.", spec.title, spec.city),
			Email:       "jobs@test.local",
			Address:     fmt.Sprintf("%s, %s", spec.city, spec.zipcode),
			Location: domain.Location{
				Type:             "Point",
				Coordinates:      [2]float64{spec.lng, spec.lat},
				FormattedAddress: fmt.Sprintf("%s %s, US", spec.city, spec.zipcode),
				City:             spec.city,
				Zipcode:          spec.zipcode,
				Country:          "US",
			},
			Company:      "Seed Corp",
			Industry:     []string{spec.industry},
			JobType:      domain.JobTypes[i%len(domain.JobTypes)],
			MinEducation: domain.EducationLevels[i%len(domain.EducationLevels)],
			Positions:    1 + i%3,
			Experience:   spec.experience,
			Salary:       spec.salary,
			PostingDate:  now,
			LastDate:     now.Add(domain.DefaultApplyWindow),
		})
		if err != nil {
			log.Fatalf("seed job %q: %v", spec.title, err)
		}
		inserted++
	}

	fmt.Println("Seed complete")
	fmt.Println()
	for _, u := range users {
		fmt.Printf("  %-9s %-22s password: %s\n", u.Role, u.Email, seedPassword)
	}
	fmt.Printf("  Jobs created: %d\n", inserted)
	fmt.Println()
	fmt.Println("Try:")
	fmt.Println()
	fmt.Println("  curl -s 'http://localhost:8080/api/v1/jobs?salary[gte]=90000&sort=-salary'")
	fmt.Println("  curl -s http://localhost:8080/api/v1/jobs/02108/10")
	fmt.Println("  curl -s http://localhost:8080/api/v1/stats/engineer")
	fmt.Println()
	fmt.Println("  curl -s -X POST http://localhost:8080/api/v1/login \\")
	fmt.Println("    -H 'Content-Type: application/json' \\")
	fmt.Printf("    -d '{\"email\":\"employer@test.local\",\"password\":\"%s\"}'\n", seedPassword)
}
