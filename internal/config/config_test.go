package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/clefscore/clef/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.New()

		Convey("Then the rating table matches the fixed tiers", func() {
			So(cfg.InitialRating, ShouldEqual, 1000.0)
			So(cfg.KFactor, ShouldEqual, 32.0)
			So(cfg.OpponentRatings["easy"], ShouldEqual, 800.0)
			So(cfg.OpponentRatings["medium"], ShouldEqual, 1000.0)
			So(cfg.OpponentRatings["hard"], ShouldEqual, 1200.0)
		})

		Convey("And the server defaults are sane", func() {
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.QueueSize, ShouldBeGreaterThan, 0)
			So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CLEF_ADDR", ":9999")
	t.Setenv("CLEF_LOG_LEVEL", "debug")
	t.Setenv("CLEF_K_FACTOR", "16")

	Convey("Given environment overrides, loading prefers them", t, func() {
		cfg, err := config.Load(context.Background())

		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":9999")
		So(cfg.LogLevel, ShouldEqual, "debug")
		So(cfg.KFactor, ShouldEqual, 16.0)
	})
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clef.yaml")
	yaml := "addr: \":7070\"\nopponent_ratings:\n  hard: 1400\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CLEF_CONFIG", path)

	Convey("Given a YAML file, its values override defaults", t, func() {
		cfg, err := config.Load(context.Background())

		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":7070")
		So(cfg.OpponentRatings["hard"], ShouldEqual, 1400.0)
	})
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("CLEF_ADDR", "")

	Convey("Given an empty addr override, validation rejects it", t, func() {
		_, err := config.Load(context.Background())

		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "addr")
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CLEF_CONFIG", "/nonexistent/clef.yaml")

	Convey("Given a bad CLEF_CONFIG path, loading fails", t, func() {
		_, err := config.Load(context.Background())

		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "load config failed")
	})
}
