package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/nutriagenda/scheduling-portal/internal/db"
)

// Every seeded account signs in with this password.
const seedPassword = "nutriagenda"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash seed password: %v", err)
	}

	nutritionists, err := seedNutritionists(context.Background(), pool, string(hash), 30)
	if err != nil {
		log.Fatalf("seed nutritionists: %v", err)
	}
	if err := seedPatients(context.Background(), pool, string(hash), 2000); err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedSchedules(context.Background(), pool, nutritionists); err != nil {
		log.Fatalf("seed schedules: %v", err)
	}

	log.Println("seed complete")
}

func seedNutritionists(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d nutritionists", count)

	states := []struct {
		name string
		id   int
		city string
	}{
		{"São Paulo", 35, "São Paulo"},
		{"Rio de Janeiro", 33, "Rio de Janeiro"},
		{"Minas Gerais", 31, "Belo Horizonte"},
		{"Paraná", 41, "Curitiba"},
		{"Bahia", 29, "Salvador"},
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		email := fmt.Sprintf("nutri%d@example.com", i+1)
		crf := fmt.Sprintf("CRN-%d/%05d", gofakeit.Number(1, 10), gofakeit.Number(10000, 99999))
		acceptsRemote := gofakeit.Bool()

		_, err := tx.Exec(ctx, `
			INSERT INTO nutritionists (id, name, email, password_hash, crf, accepts_remote, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		`, id, name, email, passwordHash, crf, acceptsRemote)
		if err != nil {
			return nil, err
		}

		st := states[gofakeit.Number(0, len(states)-1)]
		_, err = tx.Exec(ctx, `
			INSERT INTO locations (id, nutritionist_id, ibge_state, ibge_state_id, ibge_city, address, phone1, phone2, phone3)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, NULL)
		`, uuid.New(), id, st.name, st.id, st.city, gofakeit.Street(), gofakeit.Phone())
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("nutritionists seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := fmt.Sprintf("paciente%d@example.com", i+1)

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, password_hash, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, id, name, email, passwordHash)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}

// seedSchedules fills the next two weeks of working hours with open slots.
func seedSchedules(ctx context.Context, pool *pgxpool.Pool, nutritionists []uuid.UUID) error {
	log.Printf("seeding schedules for %d nutritionists", len(nutritionists))

	durations := []int{15, 30, 45, 60}
	dayStart := 8
	dayEnd := 18

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tomorrow := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)

	total := 0
	for _, nid := range nutritionists {
		duration := durations[gofakeit.Number(0, len(durations)-1)]

		for day := 0; day < 14; day++ {
			date := tomorrow.AddDate(0, 0, day)
			if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
				continue
			}

			for hour := dayStart; hour < dayEnd; hour++ {
				// Leave roughly a third of the grid unoffered so calendars look lived in.
				if gofakeit.Number(0, 2) == 0 {
					continue
				}

				start := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.Local)
				_, err := tx.Exec(ctx, `
					INSERT INTO schedules (id, nutritionist_id, start_time, duration_minutes, created_at, updated_at)
					VALUES ($1, $2, $3, $4, now(), now())
				`, uuid.New(), nid, start, duration)
				if err != nil {
					return err
				}
				total++
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("schedules seeded: %d", total)
	return nil
}
