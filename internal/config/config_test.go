package config_test

import (
	"errors"
	"testing"

	"github.com/okian/wikidle/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, config.LogFormatText)
			convey.So(cfg.DocumentsPath, convey.ShouldEqual, "documents.yaml")
			convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.LeaderboardLimit, convey.ShouldEqual, 20)
			convey.So(cfg.MaxGuessLength, convey.ShouldEqual, 100)
			convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 1)
			convey.So(cfg.LiveEnabled, convey.ShouldBeTrue)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid field", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":             func(c *config.Config) { c.Addr = "" },
			"empty documents path":   func(c *config.Config) { c.DocumentsPath = "" },
			"unknown log format":     func(c *config.Config) { c.LogFormat = "xml" },
			"zero leaderboard limit": func(c *config.Config) { c.LeaderboardLimit = 0 },
			"zero max guess length":  func(c *config.Config) { c.MaxGuessLength = 0 },
			"zero queue size":        func(c *config.Config) { c.RefreshQueueSize = 0 },
			"zero workers":           func(c *config.Config) { c.RefreshWorkers = 0 },
			"unknown driver":         func(c *config.Config) { c.StoreDriver = "mongo" },
			"sqlite without dsn":     func(c *config.Config) { c.StoreDriver = config.StoreSQLite },
			"postgres without dsn":   func(c *config.Config) { c.StoreDriver = config.StorePostgres },
			"unknown timezone":       func(c *config.Config) { c.Timezone = "Mars/Olympus_Mons" },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)

			convey.Convey("Then validation fails for "+name, func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given a sql driver with a dsn", t, func() {
		cfg := config.New()
		cfg.StoreDriver = config.StoreSQLite
		cfg.StoreDSN = "file:wikidle.db"

		convey.Convey("Then it is valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given the UTC timezone", t, func() {
		loc, err := config.New().Location()

		convey.Convey("Then it resolves", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(loc.String(), convey.ShouldEqual, "UTC")
		})
	})
}
