package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutriagenda/scheduling-portal/internal/config"
	"github.com/nutriagenda/scheduling-portal/internal/db"
)

// Exercises the booking flow end to end against a running api-server:
// patients race to book open slots, nutritionists push bookings through
// request-confirmation, patients confirm. Accounts come from cmd/seed.

const seedPassword = "nutriagenda"

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	PatientCount int
	PostgresDSN  string
}

type actor struct {
	ID    uuid.UUID
	Token string
}

type booking struct {
	AppointmentID  uuid.UUID
	Patient        actor
	NutritionistID uuid.UUID
}

type dataPool struct {
	patients      []actor
	nutritionists map[uuid.UUID]actor
	schedules     []struct{ ID, NutritionistID uuid.UUID }

	mu       sync.Mutex
	pending  []booking // AGENDADO, waiting for request-confirmation
	awaiting []booking // ESPERANDO_CONFIRMACAO, waiting for patient confirm
}

func (dp *dataPool) pushPending(b booking) {
	dp.mu.Lock()
	dp.pending = append(dp.pending, b)
	dp.mu.Unlock()
}

func (dp *dataPool) popPending() (booking, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	if len(dp.pending) == 0 {
		return booking{}, false
	}
	b := dp.pending[len(dp.pending)-1]
	dp.pending = dp.pending[:len(dp.pending)-1]
	return b, true
}

func (dp *dataPool) pushAwaiting(b booking) {
	dp.mu.Lock()
	dp.awaiting = append(dp.awaiting, b)
	dp.mu.Unlock()
}

func (dp *dataPool) popAwaiting() (booking, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	if len(dp.awaiting) == 0 {
		return booking{}, false
	}
	b := dp.awaiting[len(dp.awaiting)-1]
	dp.awaiting = dp.awaiting[:len(dp.awaiting)-1]
	return b, true
}

type opMetrics struct {
	mu        sync.Mutex
	success   int64
	conflict  int64
	failure   int64
	latencies []time.Duration
}

func (m *opMetrics) record(latency time.Duration, status int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case err == nil && status < 300:
		m.success++
	case err == nil && status == http.StatusConflict:
		m.conflict++
	default:
		m.failure++
	}
	m.latencies = append(m.latencies, latency)
}

func (m *opMetrics) report(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.success + m.conflict + m.failure
	if total == 0 {
		return
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}
	avg := sum / time.Duration(len(sorted))
	p95 := sorted[len(sorted)*95/100]

	fmt.Printf("%-22s total=%d success=%d conflict=%d failure=%d avg=%s p95=%s\n",
		name, total, m.success, m.conflict, m.failure,
		avg.Round(time.Millisecond), p95.Round(time.Millisecond))
}

type simulator struct {
	cfg    SimConfig
	pool   *dataPool
	client *http.Client

	book    opMetrics
	request opMetrics
	confirm opMetrics
	list    opMetrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	base, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		PatientCount: getInt("SIM_PATIENTS", 200),
		PostgresDSN:  base.PostgresDSN,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	sim := &simulator{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	sim.pool, err = sim.loadPool(ctx, pgPool)
	if err != nil {
		log.Fatalf("load pool: %v", err)
	}
	log.Printf("loaded %d patients, %d nutritionists, %d open slots",
		len(sim.pool.patients), len(sim.pool.nutritionists), len(sim.pool.schedules))

	sim.run()

	fmt.Println()
	sim.book.report("book")
	sim.request.report("request-confirmation")
	sim.confirm.report("confirm")
	sim.list.report("list future")
}

func (s *simulator) loadPool(ctx context.Context, pgPool *pgxpool.Pool) (*dataPool, error) {
	dp := &dataPool{nutritionists: make(map[uuid.UUID]actor)}

	rows, err := pgPool.Query(ctx, `SELECT id, email FROM patients ORDER BY created_at LIMIT $1`, s.cfg.PatientCount)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	patients, err := s.signInAll(ctx, rows)
	if err != nil {
		return nil, err
	}
	dp.patients = patients

	rows, err = pgPool.Query(ctx, `SELECT id, email FROM nutritionists`)
	if err != nil {
		return nil, fmt.Errorf("load nutritionists: %w", err)
	}
	nutritionists, err := s.signInAll(ctx, rows)
	if err != nil {
		return nil, err
	}
	for _, n := range nutritionists {
		dp.nutritionists[n.ID] = n
	}

	rows, err = pgPool.Query(ctx, `
		SELECT id, nutritionist_id FROM schedules WHERE start_time > now()
	`)
	if err != nil {
		return nil, fmt.Errorf("load schedules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc struct{ ID, NutritionistID uuid.UUID }
		if err := rows.Scan(&sc.ID, &sc.NutritionistID); err != nil {
			return nil, err
		}
		dp.schedules = append(dp.schedules, sc)
	}

	if len(dp.patients) == 0 || len(dp.schedules) == 0 {
		return nil, fmt.Errorf("empty pool, run cmd/seed first")
	}
	return dp, rows.Err()
}

type idEmailRows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}

func (s *simulator) signInAll(ctx context.Context, rows idEmailRows) ([]actor, error) {
	defer rows.Close()

	var out []actor
	for rows.Next() {
		var id uuid.UUID
		var email string
		if err := rows.Scan(&id, &email); err != nil {
			return nil, err
		}

		token, err := s.signIn(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("sign in %s: %w", email, err)
		}
		out = append(out, actor{ID: id, Token: token})
	}
	return out, rows.Err()
}

func (s *simulator) signIn(ctx context.Context, email string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": seedPassword})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIBaseURL+"/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login status %d", resp.StatusCode)
	}

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", err
	}
	return auth.Token, nil
}

func (s *simulator) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Duration)
	defer cancel()

	log.Printf("running for %s with %d workers", s.cfg.Duration, s.cfg.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}
	wg.Wait()

	log.Println("simulation complete")
}

func (s *simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		switch r := rng.Float64(); {
		case r < 0.45:
			s.doBook(ctx, rng)
		case r < 0.65:
			s.doRequestConfirmation(ctx)
		case r < 0.85:
			s.doConfirm(ctx)
		default:
			s.doListFuture(ctx, rng)
		}
	}
}

func (s *simulator) do(ctx context.Context, method, path, token string, body any) (int, []byte, time.Duration, error) {
	var rd io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.APIBaseURL+path, rd)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, nil, latency, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, latency, nil
}

func (s *simulator) doBook(ctx context.Context, rng *rand.Rand) {
	sc := s.pool.schedules[rng.Intn(len(s.pool.schedules))]
	patient := s.pool.patients[rng.Intn(len(s.pool.patients))]

	status, raw, latency, err := s.do(ctx, http.MethodPost,
		"/appointments/schedules/"+sc.ID.String(), patient.Token,
		map[string]any{"isRemote": false})
	s.book.record(latency, status, err)

	if err != nil || status != http.StatusCreated {
		return
	}

	var appt struct {
		ID uuid.UUID `json:"id"`
	}
	if json.Unmarshal(raw, &appt) == nil && appt.ID != uuid.Nil {
		s.pool.pushPending(booking{
			AppointmentID:  appt.ID,
			Patient:        patient,
			NutritionistID: sc.NutritionistID,
		})
	}
}

func (s *simulator) doRequestConfirmation(ctx context.Context) {
	b, ok := s.pool.popPending()
	if !ok {
		return
	}
	nutri, ok := s.pool.nutritionists[b.NutritionistID]
	if !ok {
		return
	}

	status, _, latency, err := s.do(ctx, http.MethodPatch,
		"/appointments/"+b.AppointmentID.String()+"/request-confirmation", nutri.Token, nil)
	s.request.record(latency, status, err)

	if err == nil && status == http.StatusOK {
		s.pool.pushAwaiting(b)
	}
}

func (s *simulator) doConfirm(ctx context.Context) {
	b, ok := s.pool.popAwaiting()
	if !ok {
		return
	}

	status, _, latency, err := s.do(ctx, http.MethodPatch,
		"/appointments/"+b.AppointmentID.String()+"/confirm", b.Patient.Token, nil)
	s.confirm.record(latency, status, err)
}

func (s *simulator) doListFuture(ctx context.Context, rng *rand.Rand) {
	patient := s.pool.patients[rng.Intn(len(s.pool.patients))]

	status, _, latency, err := s.do(ctx, http.MethodGet,
		"/appointments/patient/future?page=0&size=20", patient.Token, nil)
	s.list.record(latency, status, err)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
