package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/postboard/config"
	"github.com/d60-Lab/postboard/internal/cache"
	"github.com/d60-Lab/postboard/internal/event"
	"github.com/d60-Lab/postboard/internal/model"
	"github.com/d60-Lab/postboard/internal/repository"
	"github.com/d60-Lab/postboard/internal/service"
	"github.com/d60-Lab/postboard/pkg/database"
)

func main() {
	ctx := context.Background()

	// DATABASE_URL 指向 PostgreSQL 时使用真实库，否则使用内存 SQLite
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      "file:boardbench?mode=memory&cache=shared",
		LogLevel: "silent",
	}}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.Driver = "postgres"
		cfg.Database.DSN = dsn
		cfg.Database.MaxOpenConns = 20
		cfg.Database.MaxIdleConns = 5
	}

	db := must(database.InitDB(cfg))
	defer database.Close(db)

	mustDo(db.Migrator().DropTable(&model.Post{}, &model.User{}))
	mustDo(repository.AutoMigrate(db))

	const (
		userCount    = 200
		postsPerUser = 10
		reads        = 3000
		writeEvery   = 50
		ttl          = 30 * time.Second
	)

	fmt.Println("Setting up test data...")
	postIDs := seedBoard(db, userCount, postsPerUser)
	fmt.Printf("Test data ready: %d users, %d posts\n", userCount, len(postIDs))

	// REDIS_ADDR 未设置时使用进程内 miniredis
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		mr := must(miniredis.Run())
		defer mr.Close()
		redisAddr = mr.Addr()
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
	}

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	store := cache.NewRedisStore(client, "boardbench:")

	noCache := runScenario(ctx, service.NewBoardService(users, posts, nil, ttl), nil, reads, 0, postIDs, client, nil)
	cached := runScenario(ctx, service.NewBoardService(users, posts, store, ttl), nil, reads, 0, postIDs, client, store)

	board := service.NewBoardService(users, posts, store, ttl)
	dispatcher := event.NewDispatcher(1024)
	stop := dispatcher.Start(2)
	postSvc := service.NewPostService(posts, event.Sync(service.InvalidateOn(board), dispatcher))
	withWrites := runScenario(ctx, board, postSvc, reads, writeEvery, postIDs, client, store)
	mustDo(stop(ctx))
	checkCounts(ctx, board, users, posts)

	fmt.Printf("\nBoard read latency (%d reads, %d users, %d posts, driver=%s)\n", reads, userCount, len(postIDs), cfg.Database.Driver)
	for _, r := range []struct {
		name string
		res  scenarioResult
	}{
		{"No cache", noCache},
		{"Redis cache", cached},
		{"Redis + writes", withWrites},
	} {
		fmt.Printf("%-16s avg=%v p95=%v p99=%v hits=%d misses=%d writes=%d cache_keys=%d\n",
			r.name, avg(r.res.durations), pct(r.res.durations, 0.95), pct(r.res.durations, 0.99),
			r.res.hits, r.res.misses, r.res.writes, r.res.cacheKeys,
		)
	}
	st := dispatcher.Stats()
	fmt.Printf("events handled=%d dropped=%d handler_errors=%d\n", st.Handled, st.Dropped, st.HandlerErrors)
}

type scenarioResult struct {
	durations []time.Duration
	hits      int64
	misses    int64
	writes    int
	cacheKeys int64
}

// runScenario 读取看板 reads 次；writeEvery > 0 时每隔若干次读切换一篇帖子的发布状态
func runScenario(ctx context.Context, board service.BoardService, posts service.PostService, reads, writeEvery int, postIDs []int64, client *redis.Client, store *cache.RedisStore) scenarioResult {
	client.FlushAll(ctx)
	if store != nil {
		store.ResetCounters()
	}
	rnd := rand.New(rand.NewSource(42))

	fmt.Print("  Running benchmark...")
	res := scenarioResult{durations: make([]time.Duration, 0, reads)}
	for i := 0; i < reads; i++ {
		if writeEvery > 0 && posts != nil && i > 0 && i%writeEvery == 0 {
			id := postIDs[rnd.Intn(len(postIDs))]
			if _, err := posts.TogglePublished(ctx, id, rnd.Intn(2) == 0); err != nil {
				panic(err)
			}
			res.writes++
		}
		start := time.Now()
		if _, err := board.Board(ctx); err != nil {
			panic(err)
		}
		res.durations = append(res.durations, time.Since(start))
	}
	fmt.Println(" done")

	if store != nil {
		res.hits, res.misses = store.Counters()
	}
	res.cacheKeys, _ = client.DBSize(ctx).Result()
	return res
}

// checkCounts 对比看板计数与数据库 COUNT，缓存失效遗漏时两者不一致
func checkCounts(ctx context.Context, board service.BoardService, users repository.UserRepository, posts repository.PostRepository) {
	b := must(board.Board(ctx))
	userCount := must(users.Count(ctx))
	postCount := must(posts.Count(ctx))
	if int64(b.Stats.TotalUsers) != userCount || int64(b.Stats.TotalPosts) != postCount {
		panic(fmt.Sprintf("board stats users=%d posts=%d, database users=%d posts=%d",
			b.Stats.TotalUsers, b.Stats.TotalPosts, userCount, postCount))
	}
	fmt.Printf("Board counts match database: users=%d posts=%d\n", userCount, postCount)
}

func seedBoard(db *gorm.DB, userCount, postsPerUser int) []int64 {
	users := make([]model.User, userCount)
	for i := range users {
		name := fmt.Sprintf("user_%d", i)
		users[i] = model.User{Name: &name, Email: fmt.Sprintf("user_%d@example.com", i)}
	}
	mustDo(db.CreateInBatches(&users, 100).Error)

	posts := make([]model.Post, 0, userCount*postsPerUser)
	for _, u := range users {
		for j := 0; j < postsPerUser; j++ {
			posts = append(posts, model.Post{
				Title:     fmt.Sprintf("post %d by %s", j, u.Email),
				Content:   "benchmark content",
				Published: j%3 != 0,
				AuthorID:  u.ID,
			})
		}
	}
	mustDo(db.Omit("Author").CreateInBatches(&posts, 500).Error)

	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
