package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/wikidle/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("WIKIDLE_ADDR", ":8080")
			t.Setenv("WIKIDLE_STORE_DRIVER", "sqlite")
			t.Setenv("WIKIDLE_STORE_DSN", "file:test.db")
			t.Setenv("WIKIDLE_LEADERBOARD_LIMIT", "5")
			t.Setenv("WIKIDLE_LIVE_ENABLED", "false")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.StoreDSN, convey.ShouldEqual, "file:test.db")
				convey.So(cfg.LeaderboardLimit, convey.ShouldEqual, 5)
				convey.So(cfg.LiveEnabled, convey.ShouldBeFalse)
				convey.So(cfg.MaxGuessLength, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeFile(t, "config.yaml", `
addr: ":9090"
documents_path: /srv/wikidle/documents.yaml
refresh_workers: 3
log_format: json
`)
			t.Setenv("WIKIDLE_CONFIG", path)
			t.Setenv("WIKIDLE_REFRESH_WORKERS", "4")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DocumentsPath, convey.ShouldEqual, "/srv/wikidle/documents.yaml")
				convey.So(cfg.LogFormat, convey.ShouldEqual, config.LogFormatJSON)
				convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 4)
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			t.Setenv("WIKIDLE_CONFIG", writeFile(t, "bad.yaml", `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("WIKIDLE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			t.Setenv("WIKIDLE_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			t.Setenv("WIKIDLE_REFRESH_WORKERS", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestLoadDotEnv(t *testing.T) {
	convey.Convey("Given a .env file", t, func() {
		path := writeFile(t, ".env", "WIKIDLE_TEST_DOTENV_ADDR=:7070\nWIKIDLE_TEST_DOTENV_KEPT=file\n")
		t.Setenv("WIKIDLE_TEST_DOTENV_KEPT", "process")
		t.Setenv("WIKIDLE_TEST_DOTENV_ADDR", "")
		_ = os.Unsetenv("WIKIDLE_TEST_DOTENV_ADDR")

		convey.Convey("When loading it", func() {
			err := config.LoadDotEnv(path)

			convey.Convey("Then unset variables are exported and set ones are kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(os.Getenv("WIKIDLE_TEST_DOTENV_ADDR"), convey.ShouldEqual, ":7070")
				convey.So(os.Getenv("WIKIDLE_TEST_DOTENV_KEPT"), convey.ShouldEqual, "process")
			})
		})
	})

	convey.Convey("Given a missing .env file", t, func() {
		convey.Convey("Then loading it is not an error", func() {
			convey.So(config.LoadDotEnv(filepath.Join(t.TempDir(), ".env")), convey.ShouldBeNil)
		})
	})
}
