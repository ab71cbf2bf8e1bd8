// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"internship-workers/internal/catalog"
	"internship-workers/internal/common/camunda"
	"internship-workers/internal/common/config"
	"internship-workers/internal/common/database"
	"internship-workers/internal/common/logger"
	"internship-workers/internal/matching"
	"internship-workers/internal/profile"

	notifyrecommendations "internship-workers/internal/workers/communication/notify-recommendations"
	normalizeskills "internship-workers/internal/workers/matching/normalize-skills"
	rankinternships "internship-workers/internal/workers/matching/rank-internships"
	scoreinternship "internship-workers/internal/workers/matching/score-internship"
)

const (
	processID     = "internship-matching"
	testCandidate = "e2e-candidate-001"
)

var (
	zeebe  *camunda.Client
	zapLog *zap.Logger
)

// TestMain runs the suite only against a live stack, e.g. docker compose up.
func TestMain(m *testing.M) {
	address := os.Getenv("ZEEBE_ADDRESS")
	if address == "" {
		fmt.Println("ZEEBE_ADDRESS not set, skipping e2e tests")
		os.Exit(0)
	}

	var err error
	zeebe, err = camunda.NewClient(config.CamundaConfig{
		BrokerAddress:          address,
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewProduction()

	code := m.Run()

	zeebe.Close()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	t.Log("Starting E2E test with real services...")

	pg, rdb := assertServicesConnectivity(t, cfg)
	defer pg.Close()
	defer rdb.Close()

	seedDatabase(t, pg.DB)
	require.NoError(t, rdb.Client.Del(context.Background(), profile.CacheKey(testCandidate)).Err())

	t.Run("workers", func(t *testing.T) {
		testWorkers(t, cfg, pg.DB, rdb.Client)
	})
	t.Run("process", func(t *testing.T) {
		testProcess(t, cfg, pg.DB, rdb.Client)
	})
}

// ==========================
// 1. Connectivity
// ==========================

func assertServicesConnectivity(t *testing.T, cfg *config.Config) (*database.PostgresClient, *database.RedisClient) {
	t.Log("Checking service connectivity...")
	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")

	rdb := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")

	err = zeebe.ExecuteWithRetry(ctx, "topology", func(ctx context.Context) error {
		return zeebe.HealthCheck(ctx)
	})
	require.NoError(t, err, "Zeebe topology request failed")

	return pg, rdb
}

// ==========================
// 2. Schema + Test Data
// ==========================

func seedDatabase(t *testing.T, db *sql.DB) {
	t.Log("Creating tables and inserting test data...")

	queries := []string{
		`CREATE TABLE IF NOT EXISTS internships (
			id VARCHAR(255) PRIMARY KEY,
			title VARCHAR(255),
			organization VARCHAR(255),
			required_skills JSONB,
			preferred_skills JSONB,
			locations JSONB,
			sector VARCHAR(100),
			modality VARCHAR(20),
			capacity INTEGER,
			application_deadline TIMESTAMPTZ,
			stipend_min NUMERIC,
			duration_months NUMERIC,
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS candidate_profiles (
			id VARCHAR(255) PRIMARY KEY,
			full_name VARCHAR(255),
			email VARCHAR(255),
			phone VARCHAR(50),
			skills JSONB,
			preferred_locations JSONB,
			preferred_sectors JSONB,
			preferred_modality VARCHAR(20),
			min_stipend NUMERIC,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`INSERT INTO internships (id, title, organization, required_skills, preferred_skills, locations, sector, modality, capacity, application_deadline, stipend_min, duration_months)
		VALUES
			('e2e-int-001', 'Backend Intern', 'Acme', '["go","postgresql"]', '["docker"]', '["Pune"]', 'fintech', 'hybrid', 3, NOW() + INTERVAL '30 days', 15000, 6),
			('e2e-int-002', 'Frontend Intern', 'Beta', '["react"]', '[]', '["Remote"]', 'edtech', 'remote', 2, NULL, 10000, 3),
			('e2e-int-003', 'Closed Intern', 'Gamma', '["go"]', '[]', '["Pune"]', 'fintech', 'onsite', 0, NULL, NULL, NULL)
		ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO candidate_profiles (id, full_name, email, phone, skills, preferred_locations, preferred_sectors, preferred_modality, min_stipend)
		VALUES ('e2e-candidate-001', 'E2E Candidate', NULL, NULL, '["Golang","Postgres","Docker"]', '["Pune"]', '["fintech"]', 'hybrid', 12000)
		ON CONFLICT (id) DO NOTHING`,
	}

	for _, q := range queries {
		_, err := db.Exec(q)
		require.NoError(t, err)
	}
	t.Log("Database seeded")
}

// ==========================
// 3. Workers against real services
// ==========================

func testWorkers(t *testing.T, cfg *config.Config, db *sql.DB, rdb *redis.Client) {
	ctx := context.Background()
	log := logger.NewZapAdapter(zapLog)
	engine := matching.NewEngine(matching.NewNormalizer(cfg.Matching.AliasTable()), nil)
	profiles := profile.NewStore(db, rdb, time.Minute, log)

	t.Run("normalize-skills", func(t *testing.T) {
		handler := normalizeskills.NewHandler(&normalizeskills.Config{Timeout: 5 * time.Second}, engine, nil, log)

		out, err := handler.Execute(ctx, &normalizeskills.Input{Skills: []string{"Golang", "K8s", "golang"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "kubernetes"}, out.Skills)
	})

	t.Run("score-internship", func(t *testing.T) {
		handler := scoreinternship.NewHandler(&scoreinternship.Config{
			Timeout:  5 * time.Second,
			Matching: matching.DefaultMatchConfig(),
		}, engine, profiles, nil, log)

		out, err := handler.Execute(ctx, &scoreinternship.Input{
			CandidateID: testCandidate,
			Internship:  matching.Internship{ID: "adhoc", RequiredSkills: []string{"go"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 1.0, out.Recommendation.Breakdown.RequiredCoverage)
	})

	t.Run("rank-internships", func(t *testing.T) {
		handler := rankinternships.NewHandler(&rankinternships.Config{
			Timeout:      10 * time.Second,
			Matching:     matching.DefaultMatchConfig(),
			TopN:         5,
			CatalogLimit: 100,
		}, engine, profiles, catalog.NewRepository(db), nil, log)

		out, err := handler.Execute(ctx, &rankinternships.Input{CandidateID: testCandidate})
		require.NoError(t, err)
		require.NotEmpty(t, out.Recommendations)
		assert.Equal(t, "e2e-int-001", out.Recommendations[0].Internship.ID)
		for _, rec := range out.Recommendations {
			assert.NotEqual(t, "e2e-int-003", rec.Internship.ID, "full internship must be filtered")
		}
	})

	t.Run("notify-recommendations", func(t *testing.T) {
		handler := notifyrecommendations.NewHandler(&notifyrecommendations.Config{
			Timeout:  5 * time.Second,
			MaxItems: 3,
		}, nil, nil, nil, log)

		out, err := handler.Execute(ctx, &notifyrecommendations.Input{CandidateID: testCandidate})
		require.NoError(t, err)
		assert.Equal(t, notifyrecommendations.StatusDisabled, out.Status)
	})
}

// ==========================
// 4. Full process through Zeebe
// ==========================

func testProcess(t *testing.T, cfg *config.Config, db *sql.DB, rdb *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := zeebe.Zeebe()
	log := logger.NewZapAdapter(zapLog)
	engine := matching.NewEngine(matching.NewNormalizer(cfg.Matching.AliasTable()), nil)
	profiles := profile.NewStore(db, rdb, time.Minute, log)

	err := zeebe.ExecuteWithRetry(ctx, "deploy", func(ctx context.Context) error {
		_, err := client.NewDeployResourceCommand().AddResourceFile("testdata/internship-matching.bpmn").Send(ctx)
		return err
	})
	require.NoError(t, err, "BPMN deployment failed")

	wcfg := config.WorkerConfig{Enabled: true, MaxJobsActive: 2, Timeout: 30000}
	rank := camunda.StartWorker(client, rankinternships.TaskType, wcfg,
		rankinternships.NewHandler(rankinternships.LoadConfig(wcfg, cfg.Matching), engine, profiles,
			catalog.NewRepository(db), nil, log).Handle, nil, zapLog)
	defer rank.Stop()

	notify := camunda.StartWorker(client, notifyrecommendations.TaskType, wcfg,
		notifyrecommendations.NewHandler(&notifyrecommendations.Config{Timeout: 5 * time.Second, MaxItems: 3},
			nil, nil, nil, log).Handle, nil, zapLog)
	defer notify.Stop()

	var result *pb.CreateProcessInstanceWithResultResponse
	err = zeebe.ExecuteWithRetry(ctx, "create-instance", func(ctx context.Context) error {
		cmd, err := client.NewCreateInstanceCommand().
			BPMNProcessId(processID).
			LatestVersion().
			VariablesFromMap(map[string]interface{}{
				"candidateId": testCandidate,
				"topN":        3,
			})
		if err != nil {
			return err
		}
		result, err = cmd.WithResult().Send(ctx)
		return err
	})
	require.NoError(t, err, "process instance failed")
	require.NotNil(t, result)

	assert.Contains(t, result.Variables, `"rankingId"`)
	assert.Contains(t, result.Variables, `"status":"disabled"`)
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkHandler_RankInternships(b *testing.B) {
	engine := matching.NewEngine(nil, nil)
	handler := rankinternships.NewHandler(&rankinternships.Config{
		Timeout:  5 * time.Second,
		Matching: matching.DefaultMatchConfig(),
		TopN:     10,
	}, engine, nil, nil, nil, logger.NewNoOpLogger())

	internships := make([]matching.Internship, 0, 500)
	for i := 0; i < 500; i++ {
		internships = append(internships, matching.Internship{
			ID:              fmt.Sprintf("bench-%03d", i),
			RequiredSkills:  []string{"go", "sql", "docker"}[:1+i%3],
			PreferredSkills: []string{"kubernetes"},
			Locations:       []string{"Pune", "Remote"}[i%2:],
			Sector:          "fintech",
			Modality:        matching.ModalityHybrid,
		})
	}
	input := &rankinternships.Input{
		CandidateSkills: []string{"Golang", "SQL", "k8s"},
		Preferences:     &matching.Preferences{Locations: []string{"Pune"}},
		Internships:     internships,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_NormalizeSkills(b *testing.B) {
	handler := normalizeskills.NewHandler(&normalizeskills.Config{Timeout: 5 * time.Second},
		matching.NewEngine(nil, nil), nil, logger.NewNoOpLogger())
	input := &normalizeskills.Input{Skills: []string{"ReactJS", "Node.js", "golang", "C++", "ML", "Amazon Web Services"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}
