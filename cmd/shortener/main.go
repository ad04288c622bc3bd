package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/akarpov/urlmap/internal/app"
	"github.com/akarpov/urlmap/internal/config"
	"github.com/akarpov/urlmap/internal/logger"
)

var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

func writeHeapProfile(path string) {
	f, err := os.Create(path)
	if err == nil {
		runtime.GC()
		pprof.WriteHeapProfile(f)
		_ = f.Close()
	}
}

func main() {
	logger.InitLogger()

	cfg := config.NewConfig()

	if *memprofile != "" {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-c
			writeHeapProfile(*memprofile)
			os.Exit(0)
		}()
	}

	if cfg.MaxProcs > 0 {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing application")
	}

	if err := application.Run(); err != nil {
		if *memprofile != "" {
			writeHeapProfile(*memprofile)
		}
		log.Fatal().Err(err).Msg("Error running application")
	}

	if *memprofile != "" {
		writeHeapProfile(*memprofile)
	}
}
