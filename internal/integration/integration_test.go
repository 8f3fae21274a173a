package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"quizbank-service/internal/app"
	"quizbank-service/internal/clock"
	"quizbank-service/internal/domain"
	"quizbank-service/internal/infra/memory"
	"quizbank-service/internal/infra/postgres"
	pgmigrations "quizbank-service/internal/infra/postgres/migrations"
	infraredis "quizbank-service/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openDB(pgURL)
	defer db.Close()
	migrateAndSeed(t, ctx, db)
	// seeding twice leaves existing rows alone
	if err := postgres.Seed(ctx, db, memory.SampleCatalog()); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	loader := postgres.NewCatalogLoader(pool)
	catalog := infraredis.NewCachedCatalog(redisClient, loader, 5*time.Minute)
	recorder := postgres.NewAttemptRecorder(db)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	manual := clock.NewManual()
	service := app.NewQuizService(catalog, recorder, sessions, manual, 5*time.Second)

	banks, err := app.NewCatalogService(catalog).ListQuestionBanks(ctx, "math", "class-1")
	if err != nil || len(banks) != 6 {
		t.Fatalf("expected 6 banks for math class-1, got %d (%v)", len(banks), err)
	}
	if _, err := catalog.GetQuestionBank(ctx, "nope"); !errors.Is(err, domain.ErrQuestionBankNotFound) {
		t.Fatalf("expected ErrQuestionBankNotFound, got %v", err)
	}

	snap, err := service.StartQuiz(ctx, "math-class-1-basic", "u1")
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if snap.TimeRemaining != 1200 || snap.Question.Text != "What is 15 + 27?" {
		t.Fatalf("unexpected first snapshot: %+v", snap)
	}
	exists, err := redisClient.Exists(ctx, "quiz:session:"+snap.SessionID).Result()
	if err != nil || exists != 1 {
		t.Fatalf("expected session marker in redis, got %d (%v)", exists, err)
	}

	for i := 1; i <= 3; i++ {
		if _, err := service.SelectAnswer(snap.SessionID, fmt.Sprintf("math-class-1-basic-q%d", i), 1); err != nil {
			t.Fatalf("select: %v", err)
		}
	}
	manual.Advance(500)

	done, err := service.Submit(ctx, snap.SessionID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if done.State != app.StateCompleted || done.Result.Percentage != 100 || done.Result.Message != "Outstanding!" {
		t.Fatalf("unexpected completion: %+v", done)
	}

	attempts, err := recorder.ListAttemptsByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected 1 attempt row, got %d", len(attempts))
	}
	got := attempts[0]
	if got.Score != 3 || got.TotalQuestions != 3 || got.TimeSpentSeconds != 500 || got.Answers["math-class-1-basic-q2"] != 1 {
		t.Fatalf("unexpected attempt row: %+v", got)
	}

	if _, err := recorder.CreateAttempt(ctx, domain.AttemptInput{QuestionBankID: "math-class-1-basic", Score: 1, TotalQuestions: 3, Answers: map[string]int{}}); err != nil {
		t.Fatalf("anonymous attempt: %v", err)
	}
	var anonymous int
	if err := db.NewSelect().Table("quiz_attempts").ColumnExpr("count(*)").Where("user_id IS NULL").Scan(ctx, &anonymous); err != nil {
		t.Fatalf("count anonymous: %v", err)
	}
	if anonymous != 1 {
		t.Fatalf("expected anonymous attempt stored with NULL user, got %d", anonymous)
	}

	service.Abandon(snap.SessionID)
	exists, _ = redisClient.Exists(ctx, "quiz:session:"+snap.SessionID).Result()
	if exists != 0 {
		t.Fatalf("expected session marker removed")
	}
}

func openDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func migrateAndSeed(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := postgres.Seed(ctx, db, memory.SampleCatalog()); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quizbank", "POSTGRES_PASSWORD": "quizbank", "POSTGRES_DB": "quizbank"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quizbank:quizbank@%s:%s/quizbank?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	return fmt.Sprintf("redis://%s:%s", host, port.Port()), func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
