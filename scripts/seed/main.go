// Command seed provisions a development database with one user per role and a
// small course catalog so the API is usable immediately after schema setup.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/primeops/primeops-api/internal/models"
	"github.com/primeops/primeops-api/pkg/config"
	"github.com/primeops/primeops-api/pkg/database"
)

type seedUser struct {
	Email    string
	FullName string
	Role     models.UserRole
}

var users = []seedUser{
	{Email: "superadmin@primeops.local", FullName: "Super Admin", Role: models.RoleSuperAdmin},
	{Email: "admin@primeops.local", FullName: "Office Admin", Role: models.RoleAdmin},
	{Email: "marketing@primeops.local", FullName: "Marketing One", Role: models.RoleDigitalMarketing},
	{Email: "admission@primeops.local", FullName: "Admission One", Role: models.RoleAdmission},
	{Email: "accountant@primeops.local", FullName: "Accountant One", Role: models.RoleAccountant},
}

type seedCourse struct {
	Name    string
	Fee     float64
	Batches []string
}

var courses = []seedCourse{
	{Name: "Graphic Design", Fee: 15000, Batches: []string{"GD-Batch-01", "GD-Batch-02"}},
	{Name: "Digital Marketing", Fee: 12000, Batches: []string{"DM-Batch-01"}},
	{Name: "Web Development", Fee: 20000, Batches: []string{"WD-Batch-01"}},
}

func main() {
	var password string
	flag.StringVar(&password, "password", "changeme123", "password assigned to every seeded user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	for _, u := range users {
		const query = `INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
            ON CONFLICT (email) DO NOTHING`
		if _, err := db.ExecContext(ctx, query, uuid.NewString(), u.Email, string(hash), u.FullName, u.Role, now); err != nil {
			log.Fatalf("seed user %s: %v", u.Email, err)
		}
		log.Printf("user %s (%s)", u.Email, u.Role)
	}

	for _, c := range courses {
		courseID := uuid.NewString()
		const courseQuery = `INSERT INTO courses (id, name, fee, active, created_at)
            VALUES ($1, $2, $3, TRUE, $4)
            ON CONFLICT (name) DO UPDATE SET fee = EXCLUDED.fee
            RETURNING id`
		if err := db.GetContext(ctx, &courseID, courseQuery, courseID, c.Name, c.Fee, now); err != nil {
			log.Fatalf("seed course %s: %v", c.Name, err)
		}
		for i, batchName := range c.Batches {
			start := now.AddDate(0, i+1, 0)
			const batchQuery = `INSERT INTO batches (id, course_id, name, start_date, created_at)
                VALUES ($1, $2, $3, $4, $5)
                ON CONFLICT (course_id, name) DO NOTHING`
			if _, err := db.ExecContext(ctx, batchQuery, uuid.NewString(), courseID, batchName, start, now); err != nil {
				log.Fatalf("seed batch %s: %v", batchName, err)
			}
		}
		log.Printf("course %s with %d batches", c.Name, len(c.Batches))
	}

	log.Println("seed complete")
}
