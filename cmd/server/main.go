package main

import (
	"context"
	"flag"
	"os"

	configloader "github.com/bionicotaku/lingo-services-feed/internal/infrastructure/config"
	"github.com/bionicotaku/lingo-services-feed/internal/infrastructure/logger"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name string
	// Version is the version of the compiled software.
	Version string
	// flagconf is the config flag.
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs", "config path, eg: -conf configs")
}

func newApp(logger log.Logger, hs *khttp.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			hs,
		),
	)
}

func main() {
	flag.Parse()
	if Name == "" {
		Name = "lingo-services-feed"
	}
	if Version == "" {
		Version = "dev"
	}

	klogger, err := logger.New(Name, Version)
	if err != nil {
		panic(err)
	}

	bc, err := configloader.Load(flagconf)
	if err != nil {
		panic(err)
	}

	app, cleanup, err := wireApp(context.Background(), bc, klogger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}
