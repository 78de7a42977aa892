package main

import (
	"context"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/clefscore/clef/internal/config"
)

func TestConfigWiring(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		_ = os.Setenv("CLEF_ADDR", ":8081")
		_ = os.Setenv("CLEF_QUEUE_SIZE", "1000")
		_ = os.Setenv("CLEF_WORKER_COUNT", "4")
		defer func() {
			_ = os.Unsetenv("CLEF_ADDR")
			_ = os.Unsetenv("CLEF_QUEUE_SIZE")
			_ = os.Unsetenv("CLEF_WORKER_COUNT")
		}()

		convey.Convey("When loading the configuration", func() {
			cfg, err := config.Load(context.Background())

			convey.Convey("Then the overrides are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})
	})
}
