package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/vfs/memdb"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/clefscore/clef/internal/adapters/repository"
	"github.com/clefscore/clef/internal/adapters/security"
	service "github.com/clefscore/clef/internal/app"
	"github.com/clefscore/clef/internal/domain/model"
	"github.com/clefscore/clef/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func openTestStore(t *testing.T, ctx context.Context) *repository.SQLiteStore {
	t.Helper()
	dsn := "file:/" + uuid.NewString() + ".db?vfs=memdb"
	store, err := repository.OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func startTestService(t *testing.T, ctx context.Context) *service.Service {
	t.Helper()
	svc := service.New(openTestStore(t, ctx),
		service.WithWorkerCount(2),
		service.WithQueueSize(64),
		service.WithBcryptCost(4),
		service.WithRecentRounds(10),
	)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func testRound(userID string, n, score, questions int, difficulty string) model.RoundRecord {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return model.RoundRecord{
		ID:            uuid.NewString(),
		UserID:        userID,
		NetScore:      score,
		QuestionCount: questions,
		Difficulty:    difficulty,
		OccurredAt:    base.Add(time.Duration(n) * time.Minute),
	}
}

func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running service", t, func() {
		svc := startTestService(t, ctx)

		Convey("When registering a user", func() {
			u, err := svc.Register(ctx, "alice", "secret123")
			So(err, ShouldBeNil)
			So(u.ID, ShouldNotBeEmpty)

			Convey("Then the credentials authenticate", func() {
				got, err := svc.Authenticate(ctx, "alice", "secret123")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, u.ID)
			})

			Convey("And a wrong password is rejected", func() {
				_, err := svc.Authenticate(ctx, "alice", "hunter2")
				So(err, ShouldEqual, security.ErrPasswordMismatch)
			})

			Convey("And the username cannot be reused", func() {
				_, err := svc.Register(ctx, "alice", "secret456")
				So(err, ShouldEqual, repository.ErrDuplicateUsername)
			})

			Convey("And the profile resolves by id", func() {
				got, err := svc.UserByID(ctx, u.ID)
				So(err, ShouldBeNil)
				So(got.Username, ShouldEqual, "alice")
			})
		})

		Convey("When authenticating an unknown user", func() {
			_, err := svc.Authenticate(ctx, "nobody", "secret123")
			So(err, ShouldEqual, repository.ErrNotFound)
		})
	})
}

func TestRoundReplayPipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running service with a registered user", t, func() {
		svc := startTestService(t, ctx)
		u, err := svc.Register(ctx, "bob", "secret123")
		So(err, ShouldBeNil)

		Convey("When a perfect medium round is submitted and enqueued", func() {
			So(svc.SubmitRound(ctx, testRound(u.ID, 0, 10, 10, "medium")), ShouldBeNil)
			So(svc.Enqueue(ctx, u.ID), ShouldBeTrue)

			Convey("Then the board converges to the replayed rating", func() {
				ok := eventually(func() bool {
					entry, err := svc.Rank(ctx, u.ID)
					return err == nil && entry.Rating == 1131
				})
				So(ok, ShouldBeTrue)

				entry, err := svc.Rank(ctx, u.ID)
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 1)
			})
		})

		Convey("When two rounds are submitted", func() {
			So(svc.SubmitRound(ctx, testRound(u.ID, 0, 10, 10, "medium")), ShouldBeNil)
			So(svc.SubmitRound(ctx, testRound(u.ID, 1, -1, 5, "hard")), ShouldBeNil)

			Convey("Then the rating report chains deltas over the series", func() {
				report, err := svc.RatingReport(ctx, u.ID)
				So(err, ShouldBeNil)
				So(report.Rating, ShouldEqual, 1127)
				So(report.History, ShouldHaveLength, 2)
				So(report.History[0].Rating, ShouldEqual, 1131)
				So(report.History[0].Delta, ShouldEqual, 131)
				So(report.History[1].Rating, ShouldEqual, 1127)
				So(report.History[1].Delta, ShouldEqual, -4)
			})
		})

		Convey("When the history holds an unratable round", func() {
			So(svc.SubmitRound(ctx, testRound(u.ID, 0, 10, 10, "medium")), ShouldBeNil)
			So(svc.SubmitRound(ctx, testRound(u.ID, 1, 3, 0, "")), ShouldBeNil)

			Convey("Then stats annotate only the rated round", func() {
				report, err := svc.StatsReport(ctx, u.ID)
				So(err, ShouldBeNil)
				So(report.Stats.Rounds, ShouldEqual, 2)
				So(report.Stats.TotalScore, ShouldEqual, 13)
				So(report.Recent, ShouldHaveLength, 2)

				// Newest first.
				So(report.Recent[0].Rated, ShouldBeFalse)
				So(report.Recent[0].Rating, ShouldBeNil)
				So(report.Recent[1].Rated, ShouldBeTrue)
				So(*report.Recent[1].Rating, ShouldEqual, 1131)
				So(*report.Recent[1].Delta, ShouldEqual, 131)
			})
		})

		Convey("When several users are on the board", func() {
			other, err := svc.Register(ctx, "carol", "secret123")
			So(err, ShouldBeNil)

			So(svc.SubmitRound(ctx, testRound(u.ID, 0, 10, 10, "medium")), ShouldBeNil)
			So(svc.SubmitRound(ctx, testRound(other.ID, 0, -4, 4, "easy")), ShouldBeNil)
			So(svc.Enqueue(ctx, u.ID), ShouldBeTrue)
			So(svc.Enqueue(ctx, other.ID), ShouldBeTrue)

			Convey("Then the leaderboard orders by rating", func() {
				ok := eventually(func() bool {
					entries, err := svc.TopN(ctx, 10)
					return err == nil && len(entries) == 2
				})
				So(ok, ShouldBeTrue)

				entries, err := svc.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(entries[0].UserID, ShouldEqual, u.ID)
				So(entries[0].Rating, ShouldEqual, 1131)
				So(entries[1].UserID, ShouldEqual, other.ID)
				So(entries[1].Rating, ShouldEqual, 908)
			})
		})

		Convey("When tracking round ids", func() {
			So(svc.SeenAndRecord(ctx, "round-1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "round-1"), ShouldBeTrue)

			Convey("Then unrecording allows a retry", func() {
				svc.Unrecord(ctx, "round-1")
				So(svc.SeenAndRecord(ctx, "round-1"), ShouldBeFalse)
			})
		})
	})
}
